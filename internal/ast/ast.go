// Package ast contains the parsed, unresolved form of an assembly program.
package ast

import (
	"fmt"

	"github.com/moseschmiedel/masm/internal/isa"
)

// File is a parsed source file.
type File struct {
	Statements []Statement
	Trailing   []Label // labels after the last instruction
}

// Label is a label definition.
type Label struct {
	Name string
	Line int
}

// Statement is one parsed instruction with the labels attached to it.
type Statement struct {
	Line   int
	Labels []Label
	Instr  Instruction
}

// Instruction is one of the instruction variants of this package.
type Instruction interface {
	fmt.Stringer
	Size() int // number of words
	statement()
}

// Ref references a code or RAM address either by label or by numeric value.
type Ref struct {
	Label string // empty for numeric references
	Value int
}

// IsLabel returns whether the reference uses a label.
func (r Ref) IsLabel() bool {
	return r.Label != ""
}

func (r Ref) String() string {
	if r.IsLabel() {
		return r.Label
	}
	return fmt.Sprintf("%d", r.Value)
}

// None is an instruction without operands, nop or hlt.
type None struct {
	Op isa.Opcode
}

// Move copies a register.
type Move struct {
	Dst, Src isa.Register
}

// LoadConst loads a 16-bit constant into a register.
type LoadConst struct {
	Dst   isa.Register
	Value uint16
}

// Load reads a RAM address into a register.
type Load struct {
	Dst  isa.Register
	Addr Ref
}

// Store writes a register to a RAM address.
type Store struct {
	Src  isa.Register
	Addr Ref
}

// LoadIndirect reads the RAM address held in a register.
type LoadIndirect struct {
	Dst, Addr isa.Register
}

// StoreIndirect writes to the RAM address held in a register.
type StoreIndirect struct {
	Src, Addr isa.Register
}

// ALU is a three register arithmetic or logic operation: Dst = A op B.
type ALU struct {
	Op        isa.Opcode
	Dst, A, B isa.Register
}

// Unary is a two register operation: Dst = op Src.
type Unary struct {
	Op       isa.Opcode
	Dst, Src isa.Register
}

// Step increments or decrements a register in place.
type Step struct {
	Op  isa.Opcode
	Reg isa.Register
}

// Test compares two registers and only sets the flags.
type Test struct {
	A, B isa.Register
}

// Jump transfers control to a code address. A relative jump with a numeric
// target stores the signed offset in Target.Value.
type Jump struct {
	Cond     isa.Condition
	Relative bool
	Target   Ref
}

func (None) statement()          {}
func (Move) statement()          {}
func (LoadConst) statement()     {}
func (Load) statement()          {}
func (Store) statement()         {}
func (LoadIndirect) statement()  {}
func (StoreIndirect) statement() {}
func (ALU) statement()           {}
func (Unary) statement()         {}
func (Step) statement()          {}
func (Test) statement()          {}
func (Jump) statement()          {}

func (None) Size() int          { return 1 }
func (Move) Size() int          { return 1 }
func (LoadConst) Size() int     { return isa.OpLdcon.Size() }
func (Load) Size() int          { return isa.OpLd.Size() }
func (Store) Size() int         { return isa.OpSt.Size() }
func (LoadIndirect) Size() int  { return 1 }
func (StoreIndirect) Size() int { return 1 }
func (ALU) Size() int           { return 1 }
func (Unary) Size() int         { return 1 }
func (Step) Size() int          { return 1 }
func (Test) Size() int          { return 1 }
func (Jump) Size() int          { return 1 }

func (i None) String() string { return i.Op.String() }

func (i Move) String() string { return fmt.Sprintf("mov %s %s", i.Dst, i.Src) }

func (i LoadConst) String() string { return fmt.Sprintf("ldcon %s %d", i.Dst, i.Value) }

func (i Load) String() string { return fmt.Sprintf("ld %s %s", i.Dst, i.Addr) }

func (i Store) String() string { return fmt.Sprintf("st %s %s", i.Src, i.Addr) }

func (i LoadIndirect) String() string { return fmt.Sprintf("ld %s %s", i.Dst, i.Addr) }

func (i StoreIndirect) String() string { return fmt.Sprintf("st %s %s", i.Src, i.Addr) }

func (i ALU) String() string { return fmt.Sprintf("%s %s %s %s", i.Op, i.Dst, i.A, i.B) }

func (i Unary) String() string { return fmt.Sprintf("%s %s %s", i.Op, i.Dst, i.Src) }

func (i Step) String() string { return fmt.Sprintf("%s %s", i.Op, i.Reg) }

func (i Test) String() string { return fmt.Sprintf("tst %s %s", i.A, i.B) }

func (i Jump) String() string {
	op := isa.JumpOpcode(i.Cond, i.Relative)
	if i.Relative && !i.Target.IsLabel() {
		return fmt.Sprintf("%s %+d", op, i.Target.Value)
	}
	return fmt.Sprintf("%s %s", op, i.Target)
}
