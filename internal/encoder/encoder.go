// Package encoder converts resolved instructions to machine words.
package encoder

import (
	"fmt"

	"github.com/moseschmiedel/masm/internal/asmerr"
	"github.com/moseschmiedel/masm/internal/isa"
	"github.com/moseschmiedel/masm/internal/program"
)

// Encode encodes all instructions of the program in program order.
func Encode(prog *program.Program) ([]isa.Word, error) {
	words := make([]isa.Word, 0, prog.Size())
	for _, instr := range prog.Instructions {
		encoded, err := Instruction(instr)
		if err != nil {
			return nil, err
		}
		words = append(words, encoded...)
	}
	return words, nil
}

// Instruction encodes a single instruction to one or two words. All field
// widths are validated again.
func Instruction(instr program.Instruction) ([]isa.Word, error) {
	e := encoding{line: instr.Line}

	switch op := instr.Op.(type) {
	case program.None:
		return e.registers(op.Op)
	case program.Move:
		return e.registers(isa.OpMov, op.Dst, op.Src)
	case program.LoadConst:
		return e.twoWords(isa.OpLdcon, op.Dst, op.Value)
	case program.Load:
		return e.twoWords(isa.OpLd, op.Dst, op.Addr)
	case program.Store:
		return e.twoWords(isa.OpSt, op.Src, op.Addr)
	case program.LoadIndirect:
		return e.registers(isa.OpLdIndirect, op.Dst, op.Addr)
	case program.StoreIndirect:
		return e.registers(isa.OpStIndirect, op.Src, op.Addr)
	case program.ALU:
		return e.registers(op.Op, op.Dst, op.A, op.B)
	case program.Unary:
		return e.registers(op.Op, op.Dst, op.Src)
	case program.Step:
		return e.registers(op.Op, op.Reg)
	case program.Test:
		return e.registers(isa.OpTst, op.A, op.B)
	case program.Jump:
		return e.jump(op)
	case program.RelativeJump:
		return e.relativeJump(op)
	default:
		return nil, asmerr.Newf(asmerr.ErrInvalidOperand, instr.Line, "", "unsupported instruction type %T", instr.Op)
	}
}

type encoding struct {
	line int
}

func (e encoding) registers(op isa.Opcode, regs ...isa.Register) ([]isa.Word, error) {
	var fields [3]isa.Register
	for i, reg := range regs {
		if !reg.Valid() {
			return nil, asmerr.New(asmerr.ErrInvalidRegister, e.line, reg.String(), "")
		}
		fields[i] = reg
	}
	return []isa.Word{isa.Registers(op, fields[0], fields[1], fields[2])}, nil
}

func (e encoding) twoWords(op isa.Opcode, reg isa.Register, operand uint16) ([]isa.Word, error) {
	words, err := e.registers(op, reg)
	if err != nil {
		return nil, err
	}
	return append(words, isa.Word(operand)), nil
}

func (e encoding) jump(j program.Jump) ([]isa.Word, error) {
	if j.Target > isa.MaxAddress {
		return nil, asmerr.Newf(asmerr.ErrAddressOutOfRange, e.line, fmt.Sprintf("%d", j.Target),
			"jump target exceeds %d", isa.MaxAddress)
	}
	return []isa.Word{isa.Address(isa.JumpOpcode(j.Cond, false), j.Target)}, nil
}

func (e encoding) relativeJump(j program.RelativeJump) ([]isa.Word, error) {
	if j.Offset < isa.MinOffset || j.Offset > isa.MaxOffset {
		return nil, asmerr.Newf(asmerr.ErrOffsetOutOfRange, e.line, fmt.Sprintf("%+d", j.Offset),
			"offsets are %d..%d", isa.MinOffset, isa.MaxOffset)
	}
	return []isa.Word{isa.Offset(isa.JumpOpcode(j.Cond, true), j.Offset)}, nil
}
