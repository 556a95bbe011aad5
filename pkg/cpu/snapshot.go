package cpu

// State is a complete copy of the machine, used to step backwards.
type State struct {
	Regs       [8]uint64
	PC         uint16
	Z, N, V, C bool
	Halted     bool
	Steps      int
	Memory     [MemorySize]byte
}

// Snapshot copies the machine into dst. dst is overwritten in place so a
// caller can reuse one buffer per saved state.
func (c *CPU) Snapshot(dst *State) {
	dst.Regs = c.Regs
	dst.PC = c.PC
	dst.Z, dst.N, dst.V, dst.C = c.Z, c.N, c.V, c.C
	dst.Halted = c.Halted
	dst.Steps = c.Steps
	dst.Memory = c.Memory
}

// Restore rewinds the machine to s. Trace is left untouched.
func (c *CPU) Restore(s *State) {
	c.Regs = s.Regs
	c.PC = s.PC
	c.Z, c.N, c.V, c.C = s.Z, s.N, s.V, s.C
	c.Halted = s.Halted
	c.Steps = s.Steps
	c.Memory = s.Memory
}
