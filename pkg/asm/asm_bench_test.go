package asm

import (
	"strings"
	"testing"
)

// smallProgram is what the compiler emits for "a=3;b=a*2;a+b;".
const smallProgram = `.intel_syntax noprefix
.globl main
main:
  push rbp
  mov rbp, rsp
  sub rsp, 208
  mov rax, rbp
  sub rax, 8
  push rax
  push 3
  pop rdi
  pop rax
  mov [rax], rdi
  push rdi
  pop rax
  mov rsp, rbp
  pop rbp
  ret
`

// largeProgram repeats a statement body to get a few thousand lines.
var largeProgram = func() string {
	var b strings.Builder
	b.WriteString(".intel_syntax noprefix\n.globl main\nmain:\n  push rbp\n  mov rbp, rsp\n  sub rsp, 208\n")
	for i := 0; i < 500; i++ {
		b.WriteString("  push 1\n  push 2\n  pop rdi\n  pop rax\n  add rax, rdi\n  push rax\n  pop rax\n")
	}
	b.WriteString("  mov rsp, rbp\n  pop rbp\n  ret\n")
	return b.String()
}()

func BenchmarkAssembleSmall(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := Assemble(smallProgram); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAssembleLarge(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Assemble(largeProgram); err != nil {
			b.Fatal(err)
		}
	}
}
