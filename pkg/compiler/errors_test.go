package compiler

import (
	"errors"
	"fmt"
	"testing"
)

func TestDiagnostic(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "Missing Paren",
			src:  "a = (1 + 2;",
			want: "a = (1 + 2;\n          ^ expected \")\", found \";\"",
		},
		{
			name: "Missing Operand",
			src:  "1+",
			want: "1+\n  ^ expected expression, found end of input",
		},
		{
			name: "Invalid Character",
			src:  "1 $ 2;",
			want: "1 $ 2;\n  ^ invalid token '$'",
		},
		{
			name: "Bad Target",
			src:  "1 = 2;",
			want: "1 = 2;\n^ expected variable, found \"1\"",
		},
		{
			name: "Second Line",
			src:  "a=1;\nb=2",
			want: "2 | b=2\n       ^ expected \";\", found end of input",
		},
		{
			name: "Tab Indent",
			src:  "\t\t1 + ;",
			want: "\t\t1 + ;\n\t\t    ^ expected expression, found \";\"",
		},
		{
			name: "Tab After Line Number",
			src:  "a=1;\n\tb=(2;",
			want: "2 | \tb=(2;\n    \t    ^ expected \")\", found \";\"",
		},
		{
			name: "Invalid Byte",
			src:  "1 \xff;",
			want: "1 \xff;\n  ^ invalid token '\\xff'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.src)
			if err == nil {
				t.Fatalf("Compile(%q) succeeded; want error", tt.src)
			}
			if got := Diagnostic(tt.src, err); got != tt.want {
				t.Errorf("Diagnostic() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestDiagnosticWrappedError(t *testing.T) {
	src := "1+"
	_, err := Compile(src)
	wrapped := fmt.Errorf("compiling: %w", err)
	if got, want := Diagnostic(src, wrapped), Diagnostic(src, err); got != want {
		t.Errorf("wrapped Diagnostic() = %q; want %q", got, want)
	}
}

func TestDiagnosticPlainError(t *testing.T) {
	if got := Diagnostic("1;", errors.New("boom")); got != "boom" {
		t.Errorf("Diagnostic() = %q; want %q", got, "boom")
	}
}

func TestErrorStrings(t *testing.T) {
	lexErr := &LexError{Pos: 3, Char: '#'}
	if got, want := lexErr.Error(), "invalid token '#' at offset 3"; got != want {
		t.Errorf("LexError.Error() = %q; want %q", got, want)
	}

	parseErr := &ParseError{Pos: 2, Expected: `";"`, Found: "end of input"}
	if got, want := parseErr.Error(), `expected ";", found end of input at offset 2`; got != want {
		t.Errorf("ParseError.Error() = %q; want %q", got, want)
	}
}
