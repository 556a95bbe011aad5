// Command ninecc compiles a program given as its only argument and writes
// x86-64 assembly to standard output:
//
//	ninecc 'a=3; b=5; a+b;' > out.s && cc -o prog out.s && ./prog; echo $?
package main

import (
	"fmt"
	"io"
	"os"

	"ninecc/pkg/compiler"
)

const usage = "usage: ninecc <program>"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run is main without the process exit, returning the exit status.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, usage)
		return 1
	}

	src := args[0]
	assembly, err := compiler.Compile(src)
	if err != nil {
		fmt.Fprintln(stderr, compiler.Diagnostic(src, err))
		return 1
	}

	if _, err := io.WriteString(stdout, assembly); err != nil {
		fmt.Fprintf(stderr, "write failed: %v\n", err)
		return 1
	}
	return 0
}
