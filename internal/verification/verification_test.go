package verification

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/moseschmiedel/masm/internal/encoder"
	"github.com/moseschmiedel/masm/internal/isa"
	"github.com/moseschmiedel/masm/internal/program"
	"github.com/moseschmiedel/masm/internal/writer"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func testProgram() *program.Program {
	return &program.Program{
		Instructions: []program.Instruction{
			{Address: 0, Line: 1, Op: program.LoadConst{Dst: 1, Value: 5}},
			{Address: 2, Line: 2, Op: program.Step{Op: isa.OpDec, Reg: 1}},
			{Address: 3, Line: 3, Op: program.RelativeJump{Cond: isa.NotZero, Offset: -1}},
			{Address: 4, Line: 4, Op: program.None{Op: isa.OpHlt}},
		},
		End: 5,
	}
}

func writeHex(t *testing.T, words []isa.Word, format writer.Format) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "prog.hex")
	file, err := os.Create(path)
	assert.NoError(t, err)
	assert.NoError(t, writer.New(words, file, writer.Options{Format: format}).Write())
	assert.NoError(t, file.Close())
	return path
}

func TestVerifyOutput(t *testing.T) {
	logger := log.NewTestLogger(t)
	prog := testProgram()
	words, err := encoder.Encode(prog)
	assert.NoError(t, err)

	for _, format := range writer.Formats() {
		t.Run(string(format), func(t *testing.T) {
			path := writeHex(t, words, format)
			assert.NoError(t, VerifyOutput(context.Background(), logger, path, format, prog, words))
		})
	}
}

func TestVerifyOutputMismatch(t *testing.T) {
	logger := log.NewTestLogger(t)
	prog := testProgram()
	words, err := encoder.Encode(prog)
	assert.NoError(t, err)

	t.Run("changed word", func(t *testing.T) {
		changed := append([]isa.Word{}, words...)
		changed[1] = 6
		path := writeHex(t, changed, writer.Plain)

		err := VerifyOutput(context.Background(), logger, path, writer.Plain, prog, words)
		assert.ErrorContains(t, err, "word mismatch: 1 address mismatches")
	})

	t.Run("truncated file", func(t *testing.T) {
		path := writeHex(t, words[:3], writer.Plain)

		err := VerifyOutput(context.Background(), logger, path, writer.Plain, prog, words)
		assert.ErrorContains(t, err, "mismatched lengths, 5 != 3")
	})

	t.Run("decoding differs from program", func(t *testing.T) {
		other := testProgram()
		other.Instructions[1].Op = program.Step{Op: isa.OpInc, Reg: 1}
		path := writeHex(t, words, writer.Plain)

		err := VerifyOutput(context.Background(), logger, path, writer.Plain, other, words)
		assert.ErrorContains(t, err, "decoding mismatch: 1 instruction mismatches")
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		path := writeHex(t, words, writer.Plain)

		err := VerifyOutput(ctx, logger, path, writer.Plain, prog, words)
		assert.ErrorContains(t, err, "canceled")
	})

	t.Run("missing path", func(t *testing.T) {
		err := VerifyOutput(context.Background(), logger, "", writer.Plain, prog, words)
		assert.Error(t, err)
	})
}
