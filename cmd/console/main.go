// Command console compiles a program, assembles it for the emulator and runs
// it, printing the value main returns.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"ninecc/pkg/asm"
	"ninecc/pkg/compiler"
	"ninecc/pkg/cpu"
	"ninecc/pkg/utils"
)

func main() {
	file := flag.String("f", "", "read the program from a file")
	showAsm := flag.Bool("show-asm", false, "print the generated assembly")
	trace := flag.Bool("trace", false, "print every executed instruction")
	flag.Parse()

	src, name, err := utils.LoadSource(*file, flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, "usage: console [-show-asm] [-trace] (-f file | <program>)")
		log.Fatal(err)
	}

	assembly, err := compiler.Compile(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, compiler.Diagnostic(src, err))
		os.Exit(1)
	}

	if *showAsm {
		fmt.Printf("Generated Assembly (%s):\n%s\n", name, assembly)
	}

	prog, err := asm.Assemble(assembly)
	if err != nil {
		log.Fatalf("Assembly failed: %v", err)
	}

	vm := cpu.NewCPU()
	if *trace {
		vm.Trace = os.Stdout
	}
	if err := vm.Load(prog.Code, prog.Entry); err != nil {
		log.Fatalf("Load failed: %v", err)
	}

	if err := vm.Run(); err != nil {
		if line, ok := prog.SourceMap[vm.PC]; ok {
			log.Printf("fault near assembly line %d", line)
		}
		log.Fatalf("Run failed: %v", err)
	}

	result := vm.Result()
	fmt.Printf("result: %d (exit status %d, %d steps)\n", result, uint8(result), vm.Steps)
}
