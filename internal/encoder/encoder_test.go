package encoder

import (
	"errors"
	"testing"

	"github.com/moseschmiedel/masm/internal/asmerr"
	"github.com/moseschmiedel/masm/internal/isa"
	"github.com/moseschmiedel/masm/internal/program"
	"github.com/retroenv/retrogolib/assert"
)

//nolint:funlen // test functions can be long
func TestInstruction(t *testing.T) {
	tests := []struct {
		name  string
		op    program.Operation
		words []isa.Word
	}{
		{"nop", program.None{Op: isa.OpNop}, []isa.Word{0x0000}},
		{"hlt", program.None{Op: isa.OpHlt}, []isa.Word{0x0400}},
		{"mov", program.Move{Dst: 0, Src: 1}, []isa.Word{0x0810}},
		{"ldcon", program.LoadConst{Dst: 2, Value: 0xffff}, []isa.Word{0x0d00, 0xffff}},
		{"ld direct", program.Load{Dst: 1, Addr: 0x1234}, []isa.Word{0x1080, 0x1234}},
		{"st direct", program.Store{Src: 3, Addr: 0x10}, []isa.Word{0x1580, 0x0010}},
		{"ld indirect", program.LoadIndirect{Dst: 1, Addr: 2}, []isa.Word{0x18a0}},
		{"st indirect", program.StoreIndirect{Src: 1, Addr: 2}, []isa.Word{0x1ca0}},
		{"add3", program.ALU{Op: isa.OpAdd3, Dst: 1, A: 2, B: 3}, []isa.Word{0x40a6}},
		{"not", program.Unary{Op: isa.OpNot, Dst: 7, Src: 7}, []isa.Word{0x6ff0}},
		{"inc", program.Step{Op: isa.OpInc, Reg: 7}, []isa.Word{0x7780}},
		{"tst", program.Test{A: 1, B: 2}, []isa.Word{0x7ca0}},
		{"jmp", program.Jump{Cond: isa.Always, Target: 5}, []isa.Word{0x2005}},
		{"jnz max", program.Jump{Cond: isa.NotZero, Target: isa.MaxAddress}, []isa.Word{0x2bff}},
		{"jr back", program.RelativeJump{Cond: isa.Always, Offset: -1}, []isa.Word{0x33ff}},
		{"jcr max", program.RelativeJump{Cond: isa.Carry, Offset: isa.MaxOffset}, []isa.Word{0x3dff}},
		{"jcr min", program.RelativeJump{Cond: isa.Carry, Offset: isa.MinOffset}, []isa.Word{0x3e00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			words, err := Instruction(program.Instruction{Line: 1, Op: tt.op})
			assert.NoError(t, err)
			assert.Equal(t, tt.words, words)

			decoded, err := isa.Decode(words)
			assert.NoError(t, err)
			assert.Len(t, decoded, 1)
			assert.Equal(t, tt.op.String(), decoded[0].String())
		})
	}
}

func TestInstructionRevalidates(t *testing.T) {
	tests := []struct {
		name string
		op   program.Operation
		kind error
	}{
		{"register", program.Move{Dst: 8, Src: 0}, asmerr.ErrInvalidRegister},
		{"address", program.Jump{Target: isa.MaxAddress + 1}, asmerr.ErrAddressOutOfRange},
		{"offset high", program.RelativeJump{Offset: isa.MaxOffset + 1}, asmerr.ErrOffsetOutOfRange},
		{"offset low", program.RelativeJump{Offset: isa.MinOffset - 1}, asmerr.ErrOffsetOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Instruction(program.Instruction{Line: 4, Op: tt.op})
			assert.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind))

			var asmErr *asmerr.Error
			assert.True(t, errors.As(err, &asmErr))
			assert.Equal(t, 4, asmErr.Line)
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	prog := &program.Program{}
	var address uint16
	add := func(op program.Operation) {
		prog.Instructions = append(prog.Instructions, program.Instruction{Address: address, Op: op})
		words, err := Instruction(program.Instruction{Op: op})
		assert.NoError(t, err)
		address += uint16(len(words))
	}

	for r := isa.Register(0); r < isa.RegisterCount; r++ {
		add(program.Move{Dst: r, Src: isa.RegisterCount - 1 - r})
	}
	for _, value := range []uint16{0, 1, 0x7fff, 0xffff} {
		add(program.LoadConst{Dst: 3, Value: value})
	}
	add(program.Jump{Cond: isa.Zero, Target: 0})
	add(program.None{Op: isa.OpHlt})
	prog.End = int(address)

	words, err := Encode(prog)
	assert.NoError(t, err)
	assert.Len(t, words, prog.Size())

	decoded, err := isa.Decode(words)
	assert.NoError(t, err)
	assert.Len(t, decoded, len(prog.Instructions))
	for i, d := range decoded {
		assert.Equal(t, prog.Instructions[i].Address, d.Address)
		assert.Equal(t, prog.Instructions[i].String(), d.String())
	}
}
