package compiler

import (
	"fmt"
	"math"
	"strings"
)

// CodeGen walks an AST and emits x86-64 Intel-syntax assembly for a stack
// evaluation model: every expression pushes exactly one value.
type CodeGen struct {
	out   strings.Builder
	depth int // values currently on the evaluation stack
}

func newCodeGen() *CodeGen {
	return &CodeGen{}
}

func (cg *CodeGen) line(format string, args ...any) {
	fmt.Fprintf(&cg.out, format+"\n", args...)
}

func (cg *CodeGen) push(operand string) {
	cg.line("  push %s", operand)
	cg.depth++
}

func (cg *CodeGen) pop(reg string) {
	cg.line("  pop %s", reg)
	cg.depth--
}

// cmp emits a comparison of rax with rdi leaving 0 or 1 in rax.
func (cg *CodeGen) cmp(set string) {
	cg.line("  cmp rax, rdi")
	cg.line("  %s al", set)
	cg.line("  movzb rax, al")
}

// genAddress pushes the frame address of v rather than its value.
// Only assignment targets go through here.
func (cg *CodeGen) genAddress(v *VarRef) {
	cg.line("  mov rax, rbp")
	cg.line("  sub rax, %d", v.Offset)
	cg.push("rax")
}

// genExpr emits the instructions that evaluate e and push its value.
func (cg *CodeGen) genExpr(e Expr) {
	switch n := e.(type) {
	case *Literal:
		// push only encodes a sign-extended imm32.
		if n.Value < math.MinInt32 || n.Value > math.MaxInt32 {
			cg.line("  mov rax, %d", n.Value)
			cg.push("rax")
			return
		}
		cg.push(fmt.Sprintf("%d", n.Value))

	case *VarRef:
		cg.genAddress(n)
		cg.pop("rax")
		cg.line("  mov rax, [rax]")
		cg.push("rax")

	case *Assign:
		cg.genAddress(n.Target)
		cg.genExpr(n.Value)
		cg.pop("rdi")
		cg.pop("rax")
		cg.line("  mov [rax], rdi")
		cg.push("rdi")

	case *BinaryExpr:
		cg.genExpr(n.Left)
		cg.genExpr(n.Right)
		// right was pushed last
		cg.pop("rdi")
		cg.pop("rax")

		switch n.Op {
		case OpAdd:
			cg.line("  add rax, rdi")
		case OpSub:
			cg.line("  sub rax, rdi")
		case OpMul:
			cg.line("  imul rax, rdi")
		case OpDiv:
			cg.line("  cqo")
			cg.line("  idiv rdi")
		case OpEq:
			cg.cmp("sete")
		case OpNe:
			cg.cmp("setne")
		case OpLt:
			cg.cmp("setl")
		case OpLe:
			cg.cmp("setle")
		default:
			panic(fmt.Sprintf("codegen: unknown operator %s", n.Op))
		}
		cg.push("rax")

	default:
		panic(fmt.Sprintf("codegen: unexpected node %T", e))
	}
}

// genStmt evaluates e and discards its value, leaving the stack as it was.
func (cg *CodeGen) genStmt(e Expr) {
	cg.genExpr(e)
	cg.pop("rax")
	if cg.depth != 0 {
		panic(fmt.Sprintf("codegen: stack depth %d after statement %s", cg.depth, e))
	}
}

func (cg *CodeGen) prologue() {
	cg.line(".intel_syntax noprefix")
	cg.line(".globl main")
	cg.line("main:")
	cg.line("  push rbp")
	cg.line("  mov rbp, rsp")
	cg.line("  sub rsp, %d", FrameSize)
}

// epilogue returns whatever the last statement left in rax.
func (cg *CodeGen) epilogue() {
	cg.line("  mov rsp, rbp")
	cg.line("  pop rbp")
	cg.line("  ret")
}

// Generate emits the complete assembly listing for prog.
func Generate(prog *Program) string {
	cg := newCodeGen()
	cg.prologue()
	for _, stmt := range prog.Stmts {
		cg.genStmt(stmt)
	}
	cg.epilogue()
	return cg.out.String()
}
