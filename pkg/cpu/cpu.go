package cpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/big"
)

const (
	OpHLT   uint16 = 0x00
	OpNOP   uint16 = 0x01
	OpPUSH  uint16 = 0x02 // push regA
	OpPUSHI uint16 = 0x03 // push imm
	OpPOP   uint16 = 0x04 // pop regA
	OpMOV   uint16 = 0x05 // regA = regB
	OpMOVI  uint16 = 0x06 // regA = imm
	OpLD    uint16 = 0x07 // regA = [regB]
	OpST    uint16 = 0x08 // [regA] = regB
	OpADD   uint16 = 0x09
	OpSUB   uint16 = 0x0A
	OpIMUL  uint16 = 0x0B
	OpADDI  uint16 = 0x0C
	OpSUBI  uint16 = 0x0D
	OpCQO   uint16 = 0x0E // rdx = sign of rax
	OpIDIV  uint16 = 0x0F // rax, rdx = rdx:rax / regA
	OpCMP   uint16 = 0x10
	OpSETE  uint16 = 0x11
	OpSETNE uint16 = 0x12
	OpSETL  uint16 = 0x13
	OpSETLE uint16 = 0x14
	OpSETG  uint16 = 0x15
	OpSETGE uint16 = 0x16
	OpMOVZB uint16 = 0x17 // regA = low byte of regB
	OpRET   uint16 = 0x18
	OpNEG   uint16 = 0x19
)

// Register numbers follow the x86-64 encoding of the legacy GPRs.
const (
	RegAX uint16 = 0
	RegCX uint16 = 1
	RegDX uint16 = 2
	RegBX uint16 = 3
	RegSP uint16 = 4
	RegBP uint16 = 5
	RegSI uint16 = 6
	RegDI uint16 = 7
)

var RegNames = [8]string{"rax", "rcx", "rdx", "rbx", "rsp", "rbp", "rsi", "rdi"}

// ByteRegNames are the low-byte views usable with setcc and movzb.
var ByteRegNames = [4]string{"al", "cl", "dl", "bl"}

const (
	MemorySize = 0x10000

	// StackTop is the initial rsp; the stack grows down from the top of memory.
	StackTop uint64 = MemorySize

	// ReturnSentinel is pushed by Load; returning to it halts the machine.
	ReturnSentinel uint64 = 0xFFFF_FFFF_FFFF_FFF0

	// StackReserve bytes at the top of memory are never used for code.
	StackReserve = 0x4000
)

var (
	ErrDivide = errors.New("divide error")
	ErrMemory = errors.New("memory access out of range")
	ErrOpcode = errors.New("invalid opcode")
)

type CPU struct {
	Regs [8]uint64

	PC uint16

	Z bool // zero
	N bool // sign
	V bool // signed overflow
	C bool // unsigned borrow

	Memory [MemorySize]byte

	Halted bool
	Steps  int

	// Trace, when set, receives one disassembled line per executed instruction.
	Trace io.Writer
}

func NewCPU() *CPU {
	c := &CPU{}
	c.Regs[RegSP] = StackTop
	return c
}

// Load copies code to address 0, points PC at entry and pushes the return
// sentinel, as if entry had been called.
func (c *CPU) Load(code []byte, entry uint16) error {
	if len(code) > MemorySize-StackReserve {
		return fmt.Errorf("program too large for memory: %d bytes > %d bytes", len(code), MemorySize-StackReserve)
	}
	*c = CPU{Trace: c.Trace}
	copy(c.Memory[:], code)
	c.PC = entry
	c.Regs[RegSP] = StackTop
	return c.push(ReturnSentinel)
}

// Result is the signed value of rax, the function return register.
func (c *CPU) Result() int64 {
	return int64(c.Regs[RegAX])
}

func (c *CPU) Read16(addr uint64) (uint16, error) {
	if addr > MemorySize-2 {
		return 0, ErrMemory
	}
	return binary.LittleEndian.Uint16(c.Memory[addr:]), nil
}

func (c *CPU) Read64(addr uint64) (uint64, error) {
	if addr > MemorySize-8 {
		return 0, ErrMemory
	}
	return binary.LittleEndian.Uint64(c.Memory[addr:]), nil
}

func (c *CPU) Write64(addr uint64, val uint64) error {
	if addr > MemorySize-8 {
		return ErrMemory
	}
	binary.LittleEndian.PutUint64(c.Memory[addr:], val)
	return nil
}

func (c *CPU) push(val uint64) error {
	sp := c.Regs[RegSP] - 8
	if err := c.Write64(sp, val); err != nil {
		return err
	}
	c.Regs[RegSP] = sp
	return nil
}

func (c *CPU) pop() (uint64, error) {
	sp := c.Regs[RegSP]
	val, err := c.Read64(sp)
	if err != nil {
		return 0, err
	}
	c.Regs[RegSP] = sp + 8
	return val, nil
}

// Stack returns the words between rsp and the top of memory, top of stack first.
func (c *CPU) Stack() []uint64 {
	var words []uint64
	for sp := c.Regs[RegSP]; sp <= StackTop-8; sp += 8 {
		w, err := c.Read64(sp)
		if err != nil {
			break
		}
		words = append(words, w)
	}
	return words
}

// fetch decodes the instruction at PC without executing it.
func (c *CPU) fetch() (Instruction, error) {
	word, err := c.Read16(uint64(c.PC))
	if err != nil {
		return Instruction{}, err
	}
	in := DecodeInstruction(word)
	if in.Op > OpNEG {
		return in, fmt.Errorf("%w 0x%02X", ErrOpcode, in.Op)
	}
	if HasImmediate(in.Op) {
		imm, err := c.Read64(uint64(c.PC) + 2)
		if err != nil {
			return in, err
		}
		in.Imm = int64(imm)
	}
	return in, nil
}

// fault halts with PC left on the faulting instruction.
func (c *CPU) fault(pc uint16, err error) error {
	c.PC = pc
	c.Halted = true
	return fmt.Errorf("pc=0x%04X: %w", pc, err)
}

// setFlagsSub sets flags for a - b.
func (c *CPU) setFlagsSub(a, b uint64) uint64 {
	res := a - b
	c.Z = res == 0
	c.N = int64(res) < 0
	c.C = a < b
	c.V = ((a^b)&(a^res))>>63 == 1
	return res
}

// setFlagsAdd sets flags for a + b.
func (c *CPU) setFlagsAdd(a, b uint64) uint64 {
	res := a + b
	c.Z = res == 0
	c.N = int64(res) < 0
	c.C = res < a
	c.V = (^(a^b)&(a^res))>>63 == 1
	return res
}

func (c *CPU) setByte(reg uint16, cond bool) {
	var b uint64
	if cond {
		b = 1
	}
	c.Regs[reg] = c.Regs[reg]&^0xFF | b
}

// idiv divides the 128-bit rdx:rax by divisor, truncating toward zero.
func (c *CPU) idiv(divisor int64) error {
	if divisor == 0 {
		return ErrDivide
	}
	dividend := new(big.Int).SetInt64(int64(c.Regs[RegDX]))
	dividend.Lsh(dividend, 64)
	dividend.Or(dividend, new(big.Int).SetUint64(c.Regs[RegAX]))

	q, r := new(big.Int).QuoRem(dividend, big.NewInt(divisor), new(big.Int))
	if !q.IsInt64() {
		return ErrDivide
	}
	c.Regs[RegAX] = uint64(q.Int64())
	c.Regs[RegDX] = uint64(r.Int64())
	return nil
}

func (c *CPU) Step() error {
	if c.Halted {
		return nil
	}

	pc := c.PC
	in, err := c.fetch()
	if err != nil {
		return c.fault(pc, err)
	}
	if c.Trace != nil {
		fmt.Fprintf(c.Trace, "%04X  %s\n", pc, in)
	}
	c.PC += in.Size()
	c.Steps++

	a, b := in.A, in.B
	switch in.Op {
	case OpHLT:
		c.Halted = true

	case OpNOP:
		// No operation.

	case OpPUSH:
		err = c.push(c.Regs[a])

	case OpPUSHI:
		err = c.push(uint64(in.Imm))

	case OpPOP:
		var v uint64
		if v, err = c.pop(); err == nil {
			c.Regs[a] = v
		}

	case OpMOV:
		c.Regs[a] = c.Regs[b]

	case OpMOVI:
		c.Regs[a] = uint64(in.Imm)

	case OpLD:
		var v uint64
		if v, err = c.Read64(c.Regs[b]); err == nil {
			c.Regs[a] = v
		}

	case OpST:
		err = c.Write64(c.Regs[a], c.Regs[b])

	case OpADD:
		c.Regs[a] = c.setFlagsAdd(c.Regs[a], c.Regs[b])

	case OpSUB:
		c.Regs[a] = c.setFlagsSub(c.Regs[a], c.Regs[b])

	case OpADDI:
		c.Regs[a] = c.setFlagsAdd(c.Regs[a], uint64(in.Imm))

	case OpSUBI:
		c.Regs[a] = c.setFlagsSub(c.Regs[a], uint64(in.Imm))

	case OpIMUL:
		c.Regs[a] = uint64(int64(c.Regs[a]) * int64(c.Regs[b]))

	case OpNEG:
		c.Regs[a] = c.setFlagsSub(0, c.Regs[a])

	case OpCQO:
		if int64(c.Regs[RegAX]) < 0 {
			c.Regs[RegDX] = ^uint64(0)
		} else {
			c.Regs[RegDX] = 0
		}

	case OpIDIV:
		err = c.idiv(int64(c.Regs[a]))

	case OpCMP:
		c.setFlagsSub(c.Regs[a], c.Regs[b])

	case OpSETE:
		c.setByte(a, c.Z)
	case OpSETNE:
		c.setByte(a, !c.Z)
	case OpSETL:
		c.setByte(a, c.N != c.V)
	case OpSETLE:
		c.setByte(a, c.Z || c.N != c.V)
	case OpSETG:
		c.setByte(a, !c.Z && c.N == c.V)
	case OpSETGE:
		c.setByte(a, c.N == c.V)

	case OpMOVZB:
		c.Regs[a] = c.Regs[b] & 0xFF

	case OpRET:
		var addr uint64
		if addr, err = c.pop(); err != nil {
			break
		}
		if addr == ReturnSentinel {
			c.Halted = true
			break
		}
		if addr >= MemorySize {
			err = ErrMemory
			break
		}
		c.PC = uint16(addr)
	}

	if err != nil {
		return c.fault(pc, err)
	}
	return nil
}

// Run steps until the machine halts or faults.
func (c *CPU) Run() error {
	for !c.Halted {
		if err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}
