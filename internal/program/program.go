// Package program represents a resolved assembly program, every operand is numeric
// and every instruction has its final address.
package program

import (
	"fmt"

	"github.com/moseschmiedel/masm/internal/isa"
	"github.com/moseschmiedel/masm/internal/symbols"
)

// Program is the output of the label resolution.
type Program struct {
	Instructions []Instruction
	Symbols      *symbols.Table
	End          int // address following the last instruction, the program size in words
}

// Size returns the program size in words.
func (p *Program) Size() int {
	return p.End
}

// Instruction is a resolved instruction at its code address.
type Instruction struct {
	Address uint16
	Line    int
	Labels  []string
	Op      Operation
}

func (i Instruction) String() string {
	return i.Op.String()
}

// Operation is one of the resolved instruction variants of this package.
type Operation interface {
	fmt.Stringer
	operation()
}

// None is an instruction without operands, nop or hlt.
type None struct {
	Op isa.Opcode
}

// Move copies a register.
type Move struct {
	Dst, Src isa.Register
}

// LoadConst loads a 16-bit constant.
type LoadConst struct {
	Dst   isa.Register
	Value uint16
}

// Load reads RAM at a fixed address.
type Load struct {
	Dst  isa.Register
	Addr uint16
}

// Store writes RAM at a fixed address.
type Store struct {
	Src  isa.Register
	Addr uint16
}

// LoadIndirect reads RAM at the address held in a register.
type LoadIndirect struct {
	Dst, Addr isa.Register
}

// StoreIndirect writes RAM at the address held in a register.
type StoreIndirect struct {
	Src, Addr isa.Register
}

// ALU computes Dst = A op B.
type ALU struct {
	Op        isa.Opcode
	Dst, A, B isa.Register
}

// Unary computes Dst = op Src.
type Unary struct {
	Op       isa.Opcode
	Dst, Src isa.Register
}

// Step increments or decrements a register.
type Step struct {
	Op  isa.Opcode
	Reg isa.Register
}

// Test sets the flags from comparing A and B.
type Test struct {
	A, B isa.Register
}

// Jump is an absolute jump.
type Jump struct {
	Cond   isa.Condition
	Target uint16
}

// RelativeJump is a jump relative to its own address.
type RelativeJump struct {
	Cond   isa.Condition
	Offset int
}

func (None) operation()          {}
func (Move) operation()          {}
func (LoadConst) operation()     {}
func (Load) operation()          {}
func (Store) operation()         {}
func (LoadIndirect) operation()  {}
func (StoreIndirect) operation() {}
func (ALU) operation()           {}
func (Unary) operation()         {}
func (Step) operation()          {}
func (Test) operation()          {}
func (Jump) operation()          {}
func (RelativeJump) operation()  {}

func (o None) String() string          { return o.Op.String() }
func (o Move) String() string          { return fmt.Sprintf("mov %s %s", o.Dst, o.Src) }
func (o LoadConst) String() string     { return fmt.Sprintf("ldcon %s %d", o.Dst, o.Value) }
func (o Load) String() string          { return fmt.Sprintf("ld %s 0x%04x", o.Dst, o.Addr) }
func (o Store) String() string         { return fmt.Sprintf("st %s 0x%04x", o.Src, o.Addr) }
func (o LoadIndirect) String() string  { return fmt.Sprintf("ld %s %s", o.Dst, o.Addr) }
func (o StoreIndirect) String() string { return fmt.Sprintf("st %s %s", o.Src, o.Addr) }
func (o ALU) String() string           { return fmt.Sprintf("%s %s %s %s", o.Op, o.Dst, o.A, o.B) }
func (o Unary) String() string         { return fmt.Sprintf("%s %s %s", o.Op, o.Dst, o.Src) }
func (o Step) String() string          { return fmt.Sprintf("%s %s", o.Op, o.Reg) }
func (o Test) String() string          { return fmt.Sprintf("tst %s %s", o.A, o.B) }

func (o Jump) String() string {
	return fmt.Sprintf("%s %d", isa.JumpOpcode(o.Cond, false), o.Target)
}

func (o RelativeJump) String() string {
	return fmt.Sprintf("%s %+d", isa.JumpOpcode(o.Cond, true), o.Offset)
}
