// Package isa describes the instruction set of the target machine: opcodes,
// operand forms and the layout of the 16-bit instruction word.
package isa

import (
	"fmt"
	"strings"

	"github.com/retroenv/retrogolib/set"
)

// Opcode is the 6-bit instruction identifier stored in bits 15..10 of the first word.
type Opcode uint8

// Opcodes of all instructions.
const (
	OpNop Opcode = iota
	OpHlt
	OpMov
	OpLdcon
	OpLd
	OpSt
	OpLdIndirect
	OpStIndirect
	OpJmp
	OpJz
	OpJnz
	OpJc
	OpJr
	OpJzr
	OpJnzr
	OpJcr
	OpAdd3
	OpAddc
	OpSub
	OpSubc
	OpMul
	OpAnd
	OpOr
	OpXor
	OpXnor
	OpShl
	OpShr
	OpNot
	OpNeg
	OpInc
	OpDec
	OpTst

	opcodeCount
)

// Form is the operand shape shared by a group of mnemonics.
type Form int

const (
	FormNone         Form = iota // no operands
	FormMove                     // register, register
	FormConstant                 // register, 16-bit constant
	FormMemory                   // register, RAM address, label or address register
	FormTernary                  // register, register, register
	FormUnary                    // register, register
	FormSingle                   // register
	FormCompare                  // register, register
	FormJump                     // absolute address, label or relative marker
	FormRelativeJump             // signed offset or label
)

// Condition of a jump instruction.
type Condition int

const (
	Always Condition = iota
	Zero
	NotZero
	Carry
)

// Mnemonic describes one instruction name of the assembly language.
type Mnemonic struct {
	Name      string
	Opcode    Opcode
	Form      Form
	Condition Condition // jumps only
}

var names = [opcodeCount]string{
	OpNop:        "nop",
	OpHlt:        "hlt",
	OpMov:        "mov",
	OpLdcon:      "ldcon",
	OpLd:         "ld",
	OpSt:         "st",
	OpLdIndirect: "ld",
	OpStIndirect: "st",
	OpJmp:        "jmp",
	OpJz:         "jz",
	OpJnz:        "jnz",
	OpJc:         "jc",
	OpJr:         "jr",
	OpJzr:        "jzr",
	OpJnzr:       "jnzr",
	OpJcr:        "jcr",
	OpAdd3:       "add3",
	OpAddc:       "addc",
	OpSub:        "sub",
	OpSubc:       "subc",
	OpMul:        "mul",
	OpAnd:        "and",
	OpOr:         "or",
	OpXor:        "xor",
	OpXnor:       "xnor",
	OpShl:        "shl",
	OpShr:        "shr",
	OpNot:        "not",
	OpNeg:        "neg",
	OpInc:        "inc",
	OpDec:        "dec",
	OpTst:        "tst",
}

var mnemonics = map[string]Mnemonic{}

// twoWord contains the opcodes that are followed by a 16-bit operand word.
var twoWord = set.New[Opcode]()

func init() {
	add := func(op Opcode, form Form, cond Condition) {
		mnemonics[names[op]] = Mnemonic{Name: names[op], Opcode: op, Form: form, Condition: cond}
	}

	add(OpNop, FormNone, Always)
	add(OpHlt, FormNone, Always)
	add(OpMov, FormMove, Always)
	add(OpLdcon, FormConstant, Always)
	add(OpLd, FormMemory, Always)
	add(OpSt, FormMemory, Always)

	add(OpJmp, FormJump, Always)
	add(OpJz, FormJump, Zero)
	add(OpJnz, FormJump, NotZero)
	add(OpJc, FormJump, Carry)
	add(OpJr, FormRelativeJump, Always)
	add(OpJzr, FormRelativeJump, Zero)
	add(OpJnzr, FormRelativeJump, NotZero)
	add(OpJcr, FormRelativeJump, Carry)

	for op := OpAdd3; op <= OpShr; op++ {
		add(op, FormTernary, Always)
	}
	add(OpNot, FormUnary, Always)
	add(OpNeg, FormUnary, Always)
	add(OpInc, FormSingle, Always)
	add(OpDec, FormSingle, Always)
	add(OpTst, FormCompare, Always)

	twoWord.Add(OpLdcon)
	twoWord.Add(OpLd)
	twoWord.Add(OpSt)
}

// Lookup returns the mnemonic for the given instruction name, matched case-insensitively.
func Lookup(name string) (Mnemonic, bool) {
	m, ok := mnemonics[strings.ToLower(name)]
	return m, ok
}

// Mnemonics returns all known mnemonics.
func Mnemonics() []Mnemonic {
	list := make([]Mnemonic, 0, len(mnemonics))
	for op := Opcode(0); op < opcodeCount; op++ {
		if m, ok := mnemonics[names[op]]; ok && m.Opcode == op {
			list = append(list, m)
		}
	}
	return list
}

// Valid returns whether the opcode is part of the instruction set.
func (o Opcode) Valid() bool {
	return o < opcodeCount
}

// Size returns the number of words an instruction with this opcode occupies.
func (o Opcode) Size() int {
	if twoWord.Contains(o) {
		return 2
	}
	return 1
}

func (o Opcode) String() string {
	if !o.Valid() {
		return fmt.Sprintf("opcode(0x%02x)", uint8(o))
	}
	return names[o]
}

// JumpOpcode returns the opcode of a jump with the given condition and addressing.
func JumpOpcode(cond Condition, relative bool) Opcode {
	if relative {
		return OpJr + Opcode(cond)
	}
	return OpJmp + Opcode(cond)
}

// JumpCondition returns the condition and addressing of a jump opcode.
func JumpCondition(o Opcode) (cond Condition, relative bool, ok bool) {
	switch {
	case o >= OpJmp && o <= OpJc:
		return Condition(o - OpJmp), false, true
	case o >= OpJr && o <= OpJcr:
		return Condition(o - OpJr), true, true
	default:
		return Always, false, false
	}
}

// IsALU returns whether the opcode belongs to the arithmetic/logic family.
func (o Opcode) IsALU() bool {
	return o >= OpAdd3 && o <= OpTst
}
