package cpu

import "fmt"

// Instruction is a decoded instruction word plus its optional immediate.
type Instruction struct {
	Op  uint16
	A   uint16
	B   uint16
	Imm int64
}

// EncodeInstruction packs an opcode and two register numbers into one word.
func EncodeInstruction(opcode, regA, regB uint16) uint16 {
	return (opcode << 10) | ((regA & 0x07) << 7) | ((regB & 0x07) << 4)
}

func DecodeInstruction(word uint16) Instruction {
	return Instruction{
		Op: (word >> 10) & 0x3F,
		A:  (word >> 7) & 0x07,
		B:  (word >> 4) & 0x07,
	}
}

// HasImmediate reports whether op is followed by an 8-byte immediate.
func HasImmediate(op uint16) bool {
	switch op {
	case OpPUSHI, OpMOVI, OpADDI, OpSUBI:
		return true
	}
	return false
}

// Size is the encoded length in bytes.
func (in Instruction) Size() uint16 {
	if HasImmediate(in.Op) {
		return 10
	}
	return 2
}

var mnemonics = map[uint16]string{
	OpHLT:   "hlt",
	OpNOP:   "nop",
	OpPUSH:  "push",
	OpPUSHI: "push",
	OpPOP:   "pop",
	OpMOV:   "mov",
	OpMOVI:  "mov",
	OpLD:    "mov",
	OpST:    "mov",
	OpADD:   "add",
	OpSUB:   "sub",
	OpIMUL:  "imul",
	OpADDI:  "add",
	OpSUBI:  "sub",
	OpCQO:   "cqo",
	OpIDIV:  "idiv",
	OpCMP:   "cmp",
	OpSETE:  "sete",
	OpSETNE: "setne",
	OpSETL:  "setl",
	OpSETLE: "setle",
	OpSETG:  "setg",
	OpSETGE: "setge",
	OpMOVZB: "movzb",
	OpRET:   "ret",
	OpNEG:   "neg",
}

// String disassembles the instruction back to Intel syntax.
func (in Instruction) String() string {
	name, ok := mnemonics[in.Op]
	if !ok {
		return fmt.Sprintf(".word 0x%04X", EncodeInstruction(in.Op, in.A, in.B))
	}
	a, b := RegNames[in.A], RegNames[in.B]

	switch in.Op {
	case OpHLT, OpNOP, OpCQO, OpRET:
		return name
	case OpPUSH, OpPOP, OpIDIV, OpNEG:
		return fmt.Sprintf("%s %s", name, a)
	case OpPUSHI:
		return fmt.Sprintf("%s %d", name, in.Imm)
	case OpMOVI, OpADDI, OpSUBI:
		return fmt.Sprintf("%s %s, %d", name, a, in.Imm)
	case OpLD:
		return fmt.Sprintf("%s %s, [%s]", name, a, b)
	case OpST:
		return fmt.Sprintf("%s [%s], %s", name, a, b)
	case OpSETE, OpSETNE, OpSETL, OpSETLE, OpSETG, OpSETGE:
		return fmt.Sprintf("%s %s", name, ByteRegNames[in.A&0x03])
	case OpMOVZB:
		return fmt.Sprintf("%s %s, %s", name, a, ByteRegNames[in.B&0x03])
	}
	return fmt.Sprintf("%s %s, %s", name, a, b)
}
