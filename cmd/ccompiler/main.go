// Command ccompiler dumps every pipeline stage for a program: source,
// tokens, AST, variable slots and the generated assembly.
package main

import (
	"flag"
	"fmt"
	"os"

	"ninecc/pkg/compiler"
	"ninecc/pkg/utils"
)

const testSource = `a = 3;
b = a * 2 + 1;
a > b;
`

func main() {
	file := flag.String("f", "", "read the program from a file")
	flag.Parse()

	src, _, err := utils.LoadSource(*file, flag.Args())
	if err != nil {
		if *file != "" || flag.NArg() > 0 {
			fmt.Fprintln(os.Stderr, "read error:", err)
			os.Exit(1)
		}
		src = testSource
	}

	fmt.Printf("Source:\n%s\n", src)

	// Lex
	tokens, err := compiler.Lex(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, "lex error:")
		fmt.Fprintln(os.Stderr, compiler.Diagnostic(src, err))
		os.Exit(1)
	}

	fmt.Printf("Tokens (%d)\n", len(tokens))
	for _, tok := range tokens {
		fmt.Println(" ", tok)
	}
	fmt.Println()

	// Parse
	prog, err := compiler.Parse(tokens)
	if err != nil {
		fmt.Fprintln(os.Stderr, "parse error:")
		fmt.Fprintln(os.Stderr, compiler.Diagnostic(src, err))
		os.Exit(1)
	}

	fmt.Println("AST")
	for _, s := range prog.Stmts {
		fmt.Println(" ", s)
	}
	fmt.Println()
	fmt.Print(prog.Vars)
	fmt.Println()

	// code Generation
	fmt.Println("Generated Assembly")
	fmt.Print(compiler.Generate(prog))
}
