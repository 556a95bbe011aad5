package compiler

import (
	"fmt"
	"strings"
	"testing"
)

// smallProgram touches every operator once.
const smallProgram = `a = 3; b = a * 2 + 1; c = (a + b) / 2;
d = -c; e = a < b; f = a >= b; g = e == f; h = g != 1;
a + b + c + d + e + f + g + h;`

// largeProgram chains many assignments so every variable slot is used.
var largeProgram = func() string {
	var sb strings.Builder
	for i := 0; i < 400; i++ {
		v := 'a' + i%26
		fmt.Fprintf(&sb, "%c = (%c + %d) * 3 - (%d / 2) > %d;\n", v, 'a'+(i+1)%26, i, i+7, i%5)
	}
	return sb.String()
}()

func BenchmarkLex(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Lex(largeProgram); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParse(b *testing.B) {
	tokens, err := Lex(largeProgram)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Parse(tokens); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCompileSmall(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := Compile(smallProgram); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCompileLarge(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Compile(largeProgram); err != nil {
			b.Fatal(err)
		}
	}
}
