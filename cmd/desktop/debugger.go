package main

import (
	"errors"
	"fmt"
	"strings"

	"ninecc/pkg/asm"
	"ninecc/pkg/compiler"
	"ninecc/pkg/cpu"
	"ninecc/pkg/grid"
)

const (
	// maxHistory bounds step-back; each snapshot holds a full memory image.
	maxHistory = 256

	// maxRunSteps stops a run that never returns.
	maxRunSteps = 1_000_000

	listingWindow = 24
	stackCols     = 2
	stackRows     = 8
)

// frameBase is rbp inside main: below the return sentinel and the saved rbp.
const frameBase = cpu.StackTop - 16

// debugger single-steps one compiled program. It has no ebiten dependency so
// the stepping logic can be tested headless.
type debugger struct {
	src     string
	listing []string
	prog    *asm.Program
	vars    []compiler.Symbol
	vm      *cpu.CPU
	history snapshotRing
	fault   error
}

// snapshotRing holds the most recent maxHistory states. Once full, a push
// overwrites the oldest slot.
type snapshotRing struct {
	buf   []cpu.State
	head  int // oldest state
	count int
}

func (r *snapshotRing) len() int { return r.count }

func (r *snapshotRing) clear() {
	r.head, r.count = 0, 0
}

// push saves vm into the next slot.
func (r *snapshotRing) push(vm *cpu.CPU) {
	if r.buf == nil {
		r.buf = make([]cpu.State, 0, maxHistory)
	}
	if r.count == len(r.buf) && len(r.buf) < maxHistory {
		r.buf = append(r.buf, cpu.State{})
	}

	var i int
	if r.count < len(r.buf) {
		i = (r.head + r.count) % len(r.buf)
		r.count++
	} else {
		i = r.head
		r.head = (r.head + 1) % len(r.buf)
	}
	vm.Snapshot(&r.buf[i])
}

// pop returns the newest state, or nil when empty. The state stays valid
// until the next push.
func (r *snapshotRing) pop() *cpu.State {
	if r.count == 0 {
		return nil
	}
	r.count--
	return &r.buf[(r.head+r.count)%len(r.buf)]
}

func newDebugger(src string) (*debugger, error) {
	tokens, err := compiler.Lex(src)
	if err != nil {
		return nil, errors.New(compiler.Diagnostic(src, err))
	}
	parsed, err := compiler.Parse(tokens)
	if err != nil {
		return nil, errors.New(compiler.Diagnostic(src, err))
	}
	assembly := compiler.Generate(parsed)

	prog, err := asm.Assemble(assembly)
	if err != nil {
		return nil, fmt.Errorf("assembly failed: %w", err)
	}

	d := &debugger{
		src:     src,
		listing: strings.Split(strings.TrimSuffix(assembly, "\n"), "\n"),
		prog:    prog,
		vars:    parsed.Vars.Used(),
		vm:      cpu.NewCPU(),
	}
	if err := d.reset(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *debugger) reset() error {
	d.history.clear()
	d.fault = nil
	return d.vm.Load(d.prog.Code, d.prog.Entry)
}

// step executes one instruction, remembering the previous state.
func (d *debugger) step() bool {
	if d.vm.Halted {
		return false
	}
	d.history.push(d.vm)
	d.exec()
	return true
}

func (d *debugger) exec() {
	if err := d.vm.Step(); err != nil {
		d.fault = err
	}
}

// back undoes the most recent step.
func (d *debugger) back() bool {
	s := d.history.pop()
	if s == nil {
		return false
	}
	d.vm.Restore(s)
	d.fault = nil
	return true
}

// run executes until the program halts or maxRunSteps pass. Only the state
// before the run is saved, so one back undoes the whole run.
func (d *debugger) run() {
	if d.vm.Halted {
		return
	}
	d.history.push(d.vm)
	for i := 0; i < maxRunSteps && !d.vm.Halted; i++ {
		d.exec()
	}
}

// currentLine is the 1-based listing line about to execute, or 0 once halted.
func (d *debugger) currentLine() int {
	if d.vm.Halted && d.fault == nil {
		return 0
	}
	return d.prog.SourceMap[d.vm.PC]
}

func (d *debugger) status() string {
	switch {
	case d.fault != nil:
		return "fault: " + d.fault.Error()
	case d.vm.Halted:
		return fmt.Sprintf("returned %d (exit status %d)", d.vm.Result(), uint8(d.vm.Result()))
	}
	return fmt.Sprintf("step %d", d.vm.Steps)
}

// listingText renders a window of the assembly around the current line,
// marking it with ">".
func (d *debugger) listingText() string {
	cur := d.currentLine()
	start := 0
	if cur > listingWindow/2 {
		start = cur - listingWindow/2
	}
	end := min(start+listingWindow, len(d.listing))

	var sb strings.Builder
	for i := start; i < end; i++ {
		marker := "  "
		if i+1 == cur {
			marker = "> "
		}
		fmt.Fprintf(&sb, "%s%3d %s\n", marker, i+1, d.listing[i])
	}
	return sb.String()
}

// stateText renders registers, flags, the stack and the variable slots.
func (d *debugger) stateText() string {
	var sb strings.Builder
	vm := d.vm

	for i, name := range cpu.RegNames {
		fmt.Fprintf(&sb, "%s %d\n", name, int64(vm.Regs[i]))
	}
	fmt.Fprintf(&sb, "pc  0x%04X\n", vm.PC)
	fmt.Fprintf(&sb, "ZF=%d SF=%d OF=%d CF=%d\n\n", b2i(vm.Z), b2i(vm.N), b2i(vm.V), b2i(vm.C))

	sb.WriteString("stack (top first)\n")
	sb.WriteString(d.stackText())
	sb.WriteString("\nvariables\n")
	if len(d.vars) == 0 {
		sb.WriteString("  (none)\n")
	}
	for _, sym := range d.vars {
		val, err := vm.Read64(frameBase - uint64(sym.Offset))
		if err != nil {
			continue
		}
		fmt.Fprintf(&sb, "  %c = %d\n", sym.Name, int64(val))
	}

	sb.WriteString("\n")
	sb.WriteString(d.status())
	sb.WriteString("\n")
	return sb.String()
}

// stackText lays the top stack words out in a small grid, row-major.
func (d *debugger) stackText() string {
	words := d.vm.Stack()
	if len(words) > stackCols*stackRows {
		words = words[:stackCols*stackRows]
	}
	rows := make([][]string, stackRows)
	for i, w := range words {
		x, y := grid.GetGridCoords(i, stackCols)
		cell := fmt.Sprintf("%d", int64(w))
		if w == cpu.ReturnSentinel {
			cell = "<ret>"
		}
		if rows[y] == nil {
			rows[y] = make([]string, stackCols)
		}
		rows[y][x] = cell
	}

	var sb strings.Builder
	for _, row := range rows {
		if row == nil {
			break
		}
		fmt.Fprintf(&sb, "  %-12s %s\n", row[0], strings.Join(row[1:], " "))
	}
	return sb.String()
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
