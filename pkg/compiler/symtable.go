package compiler

import (
	"fmt"
	"strings"
)

const (
	WordSize  = 8                  // bytes per variable slot
	NumVars   = 26                 // 'a' through 'z'
	FrameSize = WordSize * NumVars // bytes reserved by the prologue
)

// Symbol is a resolved variable.
type Symbol struct {
	Name   byte
	Offset int // the slot lives at [rbp - Offset]
}

// Offset returns the frame offset of the variable named by a lowercase letter.
func Offset(name byte) int {
	if name < 'a' || name > 'z' {
		panic(fmt.Sprintf("variable name %q outside a-z", name))
	}
	return (int(name-'a') + 1) * WordSize
}

// SymbolTable maps variable letters to frame slots.
// The mapping is fixed; the table only remembers which letters were used.
type SymbolTable struct {
	used [NumVars]bool
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{}
}

// Resolve returns the slot for name, reserving it on first use.
func (s *SymbolTable) Resolve(name byte) Symbol {
	off := Offset(name)
	s.used[name-'a'] = true
	return Symbol{Name: name, Offset: off}
}

// Used returns the referenced variables in alphabetical order.
func (s *SymbolTable) Used() []Symbol {
	var syms []Symbol
	for i, ok := range s.used {
		if ok {
			name := byte('a' + i)
			syms = append(syms, Symbol{Name: name, Offset: Offset(name)})
		}
	}
	return syms
}

// String returns a deterministically ordered dump of the table.
func (s *SymbolTable) String() string {
	used := s.Used()
	if len(used) == 0 {
		return "Variables: (none)\n"
	}
	var sb strings.Builder
	sb.WriteString("Variables:\n")
	for _, sym := range used {
		fmt.Fprintf(&sb, "  %c  Offset: -%d\n", sym.Name, sym.Offset)
	}
	return sb.String()
}
