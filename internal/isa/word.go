package isa

import "fmt"

// Word is one 16-bit machine word.
type Word uint16

// Register is a general purpose register index.
type Register uint8

// RegisterCount is the number of general purpose registers.
const RegisterCount = 8

// Field layout of the first instruction word.
const (
	opcodeShift = 10
	raShift     = 7
	rbShift     = 4
	rcShift     = 1

	opcodeMask   = 0x3f
	registerMask = 0x7
	addressMask  = 0x3ff
)

// Limits of the encodable operand values.
const (
	AddressBits = 10
	MaxAddress  = 1<<AddressBits - 1 // highest absolute jump target
	MinOffset   = -(1 << (AddressBits - 1))
	MaxOffset   = 1<<(AddressBits-1) - 1
	MaxConstant = 0xffff
	MaxRAM      = 0xffff
)

func (r Register) String() string {
	return fmt.Sprintf("reg%d", uint8(r))
}

// Valid returns whether the register index fits the 3-bit register field.
func (r Register) Valid() bool {
	return r < RegisterCount
}

// Registers packs an opcode and up to three register fields into a word.
// Unused fields must be passed as zero.
func Registers(op Opcode, ra, rb, rc Register) Word {
	return Word(op&opcodeMask)<<opcodeShift |
		Word(ra&registerMask)<<raShift |
		Word(rb&registerMask)<<rbShift |
		Word(rc&registerMask)<<rcShift
}

// Address packs an opcode and an unsigned 10-bit address into a word.
func Address(op Opcode, address uint16) Word {
	return Word(op&opcodeMask)<<opcodeShift | Word(address&addressMask)
}

// Offset packs an opcode and a signed 10-bit offset in two's complement into a word.
func Offset(op Opcode, offset int) Word {
	return Word(op&opcodeMask)<<opcodeShift | Word(uint16(int16(offset))&addressMask)
}

// Opcode extracts the opcode field.
func (w Word) Opcode() Opcode {
	return Opcode(w >> opcodeShift & opcodeMask)
}

// RA extracts the first register field.
func (w Word) RA() Register {
	return Register(w >> raShift & registerMask)
}

// RB extracts the second register field.
func (w Word) RB() Register {
	return Register(w >> rbShift & registerMask)
}

// RC extracts the third register field.
func (w Word) RC() Register {
	return Register(w >> rcShift & registerMask)
}

// Address extracts the unsigned 10-bit address field.
func (w Word) Address() uint16 {
	return uint16(w & addressMask)
}

// Offset extracts the 10-bit address field as a signed offset.
func (w Word) Offset() int {
	v := int(w & addressMask)
	if v > MaxOffset {
		v -= 1 << AddressBits
	}
	return v
}
