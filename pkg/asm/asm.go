package asm

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"ninecc/pkg/cpu"
)

var registers = map[string]uint16{
	"rax": cpu.RegAX,
	"rcx": cpu.RegCX,
	"rdx": cpu.RegDX,
	"rbx": cpu.RegBX,
	"rsp": cpu.RegSP,
	"rbp": cpu.RegBP,
	"rsi": cpu.RegSI,
	"rdi": cpu.RegDI,
}

var byteRegisters = map[string]uint16{
	"al": cpu.RegAX,
	"cl": cpu.RegCX,
	"dl": cpu.RegDX,
	"bl": cpu.RegBX,
}

var zeroOperandOps = map[string]uint16{
	"hlt": cpu.OpHLT,
	"nop": cpu.OpNOP,
	"cqo": cpu.OpCQO,
	"ret": cpu.OpRET,
}

var oneRegisterOps = map[string]uint16{
	"pop":  cpu.OpPOP,
	"idiv": cpu.OpIDIV,
	"neg":  cpu.OpNEG,
}

var twoRegisterOps = map[string]uint16{
	"imul": cpu.OpIMUL,
	"cmp":  cpu.OpCMP,
}

var setccOps = map[string]uint16{
	"sete":  cpu.OpSETE,
	"setne": cpu.OpSETNE,
	"setl":  cpu.OpSETL,
	"setle": cpu.OpSETLE,
	"setg":  cpu.OpSETG,
	"setge": cpu.OpSETGE,
}

type operandKind int

const (
	operandReg operandKind = iota
	operandByteReg
	operandMem // [reg]
	operandImm
)

type operand struct {
	kind operandKind
	reg  uint16
	imm  int64
}

type parsedLine struct {
	lineNo   int
	labels   []string
	mnemonic string
	operands []string
}

// encodedLine is an instruction selected in pass 1 and written in pass 2.
type encodedLine struct {
	lineNo  int
	address uint16
	instr   cpu.Instruction
}

// Program is an assembled image.
type Program struct {
	Code      []byte
	SourceMap map[uint16]int // instruction address -> 1-based source line
	Entry     uint16
	Labels    map[string]uint16
}

type Assembler struct {
	labels  map[string]uint16
	globals []string
	lines   []encodedLine
}

func NewAssembler() *Assembler {
	return &Assembler{
		labels: make(map[string]uint16),
	}
}

func Assemble(code string) (*Program, error) {
	return NewAssembler().Assemble(code)
}

func (a *Assembler) Assemble(code string) (*Program, error) {
	lines := strings.Split(code, "\n")

	if err := a.pass1(lines); err != nil {
		return nil, err
	}

	return a.pass2()
}

// pass1 records labels and directives and selects an encoding for every
// instruction, which fixes each instruction's address.
func (a *Assembler) pass1(lines []string) error {
	var address uint32

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return err
		}

		for _, lbl := range p.labels {
			if _, exists := a.labels[lbl]; exists {
				return fmt.Errorf("duplicate label '%s' on line %d", lbl, lineNo)
			}
			a.labels[lbl] = uint16(address)
		}

		if p.mnemonic == "" {
			continue
		}

		if strings.HasPrefix(p.mnemonic, ".") {
			if err := a.directive(p); err != nil {
				return err
			}
			continue
		}

		instr, err := selectInstruction(p)
		if err != nil {
			return err
		}
		a.lines = append(a.lines, encodedLine{lineNo: lineNo, address: uint16(address), instr: instr})
		address += uint32(instr.Size())
		if address > cpu.MemorySize-cpu.StackReserve {
			return fmt.Errorf("program too large near line %d", lineNo)
		}
	}
	return nil
}

func (a *Assembler) pass2() (*Program, error) {
	var code []byte
	sourceMap := make(map[uint16]int)

	for _, l := range a.lines {
		sourceMap[l.address] = l.lineNo
		code = binary.LittleEndian.AppendUint16(code, cpu.EncodeInstruction(l.instr.Op, l.instr.A, l.instr.B))
		if cpu.HasImmediate(l.instr.Op) {
			code = binary.LittleEndian.AppendUint64(code, uint64(l.instr.Imm))
		}
	}

	entry, err := a.entry()
	if err != nil {
		return nil, err
	}

	return &Program{Code: code, SourceMap: sourceMap, Entry: entry, Labels: a.labels}, nil
}

// entry resolves the global symbol execution starts at, preferring main.
func (a *Assembler) entry() (uint16, error) {
	if len(a.globals) == 0 {
		return 0, fmt.Errorf("no .globl entry symbol")
	}
	name := a.globals[0]
	for _, g := range a.globals {
		if g == "main" {
			name = g
		}
	}
	addr, ok := a.labels[name]
	if !ok {
		return 0, fmt.Errorf("undefined entry symbol '%s'", name)
	}
	return addr, nil
}

func (a *Assembler) directive(p parsedLine) error {
	switch p.mnemonic {
	case ".intel_syntax":
		if len(p.operands) != 1 || p.operands[0] != "noprefix" {
			return fmt.Errorf(".intel_syntax supports only noprefix on line %d", p.lineNo)
		}
	case ".globl", ".global":
		if len(p.operands) != 1 || !isIdentifier(p.operands[0]) {
			return fmt.Errorf("%s expects one symbol on line %d", p.mnemonic, p.lineNo)
		}
		a.globals = append(a.globals, p.operands[0])
	case ".text":
	default:
		return fmt.Errorf("unknown directive '%s' on line %d", p.mnemonic, p.lineNo)
	}
	return nil
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := strings.TrimSpace(stripComments(raw))
	if line == "" {
		return p, nil
	}

	for {
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			break
		}

		beforeColon := strings.TrimSpace(line[:colon])
		if strings.ContainsAny(beforeColon, " \t") {
			break
		}

		if !isIdentifier(beforeColon) {
			return p, fmt.Errorf("invalid label '%s' on line %d", beforeColon, lineNo)
		}

		p.labels = append(p.labels, beforeColon)
		line = strings.TrimSpace(line[colon+1:])
		if line == "" {
			return p, nil
		}
	}

	mnemonic, rest, _ := strings.Cut(line, " ")
	if tab := strings.IndexByte(mnemonic, '\t'); tab >= 0 {
		mnemonic, rest = mnemonic[:tab], mnemonic[tab+1:]+" "+rest
	}
	p.mnemonic = strings.ToLower(mnemonic)

	rest = strings.TrimSpace(rest)
	if rest != "" {
		for _, op := range strings.Split(rest, ",") {
			p.operands = append(p.operands, strings.TrimSpace(op))
		}
	}
	return p, nil
}

// stripComments drops a gas "#" comment.
func stripComments(line string) string {
	if cut := strings.IndexByte(line, '#'); cut >= 0 {
		return line[:cut]
	}
	return line
}

func parseOperand(token string, lineNo int) (operand, error) {
	lower := strings.ToLower(token)

	if reg, ok := registers[lower]; ok {
		return operand{kind: operandReg, reg: reg}, nil
	}
	if reg, ok := byteRegisters[lower]; ok {
		return operand{kind: operandByteReg, reg: reg}, nil
	}
	if strings.HasPrefix(lower, "[") && strings.HasSuffix(lower, "]") {
		inner := strings.TrimSpace(lower[1 : len(lower)-1])
		if reg, ok := registers[inner]; ok {
			return operand{kind: operandMem, reg: reg}, nil
		}
		return operand{}, fmt.Errorf("unsupported memory operand '%s' on line %d", token, lineNo)
	}
	if value, err := strconv.ParseInt(token, 0, 64); err == nil {
		return operand{kind: operandImm, imm: value}, nil
	}
	return operand{}, fmt.Errorf("invalid operand '%s' on line %d", token, lineNo)
}

func fitsImm32(v int64) bool {
	return v >= math.MinInt32 && v <= math.MaxInt32
}

// selectInstruction picks the opcode for a mnemonic and its operand forms.
func selectInstruction(p parsedLine) (cpu.Instruction, error) {
	if !knownMnemonic(p.mnemonic) {
		return cpu.Instruction{}, fmt.Errorf("unknown instruction '%s' on line %d", p.mnemonic, p.lineNo)
	}

	ops := make([]operand, len(p.operands))
	for i, tok := range p.operands {
		op, err := parseOperand(tok, p.lineNo)
		if err != nil {
			return cpu.Instruction{}, err
		}
		ops[i] = op
	}

	bad := func() (cpu.Instruction, error) {
		return cpu.Instruction{}, fmt.Errorf("invalid operands for %s on line %d: %s", p.mnemonic, p.lineNo, strings.Join(p.operands, ", "))
	}
	is := func(kinds ...operandKind) bool {
		if len(ops) != len(kinds) {
			return false
		}
		for i, k := range kinds {
			if ops[i].kind != k {
				return false
			}
		}
		return true
	}

	if op, ok := zeroOperandOps[p.mnemonic]; ok {
		if !is() {
			return bad()
		}
		return cpu.Instruction{Op: op}, nil
	}
	if op, ok := oneRegisterOps[p.mnemonic]; ok {
		if !is(operandReg) {
			return bad()
		}
		return cpu.Instruction{Op: op, A: ops[0].reg}, nil
	}
	if op, ok := twoRegisterOps[p.mnemonic]; ok {
		if !is(operandReg, operandReg) {
			return bad()
		}
		return cpu.Instruction{Op: op, A: ops[0].reg, B: ops[1].reg}, nil
	}
	if op, ok := setccOps[p.mnemonic]; ok {
		if !is(operandByteReg) {
			return bad()
		}
		return cpu.Instruction{Op: op, A: ops[0].reg}, nil
	}

	switch p.mnemonic {
	case "push":
		switch {
		case is(operandReg):
			return cpu.Instruction{Op: cpu.OpPUSH, A: ops[0].reg}, nil
		case is(operandImm):
			if !fitsImm32(ops[0].imm) {
				return cpu.Instruction{}, fmt.Errorf("immediate out of range on line %d: %s", p.lineNo, p.operands[0])
			}
			return cpu.Instruction{Op: cpu.OpPUSHI, Imm: ops[0].imm}, nil
		}
	case "mov":
		switch {
		case is(operandReg, operandReg):
			return cpu.Instruction{Op: cpu.OpMOV, A: ops[0].reg, B: ops[1].reg}, nil
		case is(operandReg, operandMem):
			return cpu.Instruction{Op: cpu.OpLD, A: ops[0].reg, B: ops[1].reg}, nil
		case is(operandMem, operandReg):
			return cpu.Instruction{Op: cpu.OpST, A: ops[0].reg, B: ops[1].reg}, nil
		case is(operandReg, operandImm):
			return cpu.Instruction{Op: cpu.OpMOVI, A: ops[0].reg, Imm: ops[1].imm}, nil
		}
	case "add", "sub":
		reg, imm := cpu.OpADD, cpu.OpADDI
		if p.mnemonic == "sub" {
			reg, imm = cpu.OpSUB, cpu.OpSUBI
		}
		switch {
		case is(operandReg, operandReg):
			return cpu.Instruction{Op: reg, A: ops[0].reg, B: ops[1].reg}, nil
		case is(operandReg, operandImm):
			if !fitsImm32(ops[1].imm) {
				return cpu.Instruction{}, fmt.Errorf("immediate out of range on line %d: %s", p.lineNo, p.operands[1])
			}
			return cpu.Instruction{Op: imm, A: ops[0].reg, Imm: ops[1].imm}, nil
		}
	case "movzb", "movzx":
		if is(operandReg, operandByteReg) {
			return cpu.Instruction{Op: cpu.OpMOVZB, A: ops[0].reg, B: ops[1].reg}, nil
		}
	}
	return bad()
}

func knownMnemonic(m string) bool {
	switch m {
	case "push", "mov", "add", "sub", "movzb", "movzx":
		return true
	}
	_, z := zeroOperandOps[m]
	_, one := oneRegisterOps[m]
	_, two := twoRegisterOps[m]
	_, set := setccOps[m]
	return z || one || two || set
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' && r != '.' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '.' {
			return false
		}
	}

	return true
}
