// Command repl is an interactive session: each statement entered is added to
// the program, which is recompiled and run on the emulator.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := runREPL(); err != nil {
		fmt.Fprintf(os.Stderr, "repl error: %v\n", err)
		os.Exit(1)
	}
}
