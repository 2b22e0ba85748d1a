package isa

import (
	"errors"
	"fmt"
	"strings"
)

var (
	errInvalidOpcode   = errors.New("invalid opcode")
	errTruncatedStream = errors.New("missing operand word")
)

// Decoded is an instruction extracted from a word stream.
type Decoded struct {
	Address uint16
	Opcode  Opcode
	Words   []Word

	RA, RB, RC Register
	Target     uint16 // absolute jump target
	Offset     int    // relative jump offset
	Operand    uint16 // second word of two word instructions
}

// Decode splits a word stream into instructions and extracts their fields.
func Decode(words []Word) ([]Decoded, error) {
	var result []Decoded

	for i := 0; i < len(words); {
		w := words[i]
		op := w.Opcode()
		if !op.Valid() {
			return nil, fmt.Errorf("word %04x at address %d: %w", uint16(w), i, errInvalidOpcode)
		}

		size := op.Size()
		if i+size > len(words) {
			return nil, fmt.Errorf("%s at address %d: %w", op, i, errTruncatedStream)
		}

		d := Decoded{
			Address: uint16(i),
			Opcode:  op,
			Words:   words[i : i+size],
			RA:      w.RA(),
			RB:      w.RB(),
			RC:      w.RC(),
		}
		if _, relative, ok := JumpCondition(op); ok {
			if relative {
				d.Offset = w.Offset()
			} else {
				d.Target = w.Address()
			}
			d.RA, d.RB, d.RC = 0, 0, 0
		}
		if size == 2 {
			d.Operand = uint16(words[i+1])
		}

		result = append(result, d)
		i += size
	}

	return result, nil
}

// String returns the instruction in assembly syntax.
func (d Decoded) String() string {
	var operands []string

	switch d.Opcode {
	case OpNop, OpHlt:

	case OpMov, OpNot, OpNeg, OpTst, OpLdIndirect, OpStIndirect:
		operands = append(operands, d.RA.String(), d.RB.String())

	case OpLdcon:
		operands = append(operands, d.RA.String(), fmt.Sprintf("%d", d.Operand))

	case OpLd, OpSt:
		operands = append(operands, d.RA.String(), fmt.Sprintf("0x%04x", d.Operand))

	case OpInc, OpDec:
		operands = append(operands, d.RA.String())

	case OpJmp, OpJz, OpJnz, OpJc:
		operands = append(operands, fmt.Sprintf("%d", d.Target))

	case OpJr, OpJzr, OpJnzr, OpJcr:
		operands = append(operands, fmt.Sprintf("%+d", d.Offset))

	default:
		operands = append(operands, d.RA.String(), d.RB.String(), d.RC.String())
	}

	if len(operands) == 0 {
		return d.Opcode.String()
	}
	return d.Opcode.String() + " " + strings.Join(operands, " ")
}
