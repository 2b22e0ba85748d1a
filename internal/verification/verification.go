// Package verification verifies that a written hex file recreates the assembled program.
package verification

import (
	"context"
	"errors"
	"fmt"

	"github.com/moseschmiedel/masm/internal/isa"
	"github.com/moseschmiedel/masm/internal/loader"
	"github.com/moseschmiedel/masm/internal/program"
	"github.com/moseschmiedel/masm/internal/writer"
	"github.com/retroenv/retrogolib/log"
)

const maxReportedMismatches = 10

// VerifyOutput reads the hex file at path back and checks that it contains the
// exact assembled words and that these decode to the instructions of the program.
func VerifyOutput(ctx context.Context, logger *log.Logger, path string, format writer.Format,
	prog *program.Program, words []isa.Word) error {

	if path == "" {
		return errors.New("can not verify without output file")
	}

	readBack, err := loader.New().LoadHex(path, format)
	if err != nil {
		return fmt.Errorf("reading output file for comparison: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("verification canceled: %w", err)
	}

	if err := checkBufferEqual(logger, words, readBack); err != nil {
		return fmt.Errorf("word mismatch: %w", err)
	}
	if err := checkDecoding(logger, prog, readBack); err != nil {
		return fmt.Errorf("decoding mismatch: %w", err)
	}
	return nil
}

func checkBufferEqual(logger *log.Logger, input, output []isa.Word) error {
	if len(input) != len(output) {
		return fmt.Errorf("mismatched lengths, %d != %d", len(input), len(output))
	}

	var diffs uint64
	for i := range input {
		if input[i] == output[i] {
			continue
		}

		diffs++
		if diffs < maxReportedMismatches {
			logger.Error("Address mismatch",
				log.Hex("address", i),
				log.Hex("expected", uint16(input[i])),
				log.Hex("got", uint16(output[i])))
		}
	}
	if diffs == 0 {
		return nil
	}
	return fmt.Errorf("%d address mismatches", diffs)
}

// checkDecoding decodes the words and compares every instruction with the program.
func checkDecoding(logger *log.Logger, prog *program.Program, words []isa.Word) error {
	decoded, err := isa.Decode(words)
	if err != nil {
		return fmt.Errorf("decoding words: %w", err)
	}
	if len(decoded) != len(prog.Instructions) {
		return fmt.Errorf("mismatched instruction count, %d != %d", len(prog.Instructions), len(decoded))
	}

	var diffs uint64
	for i, instr := range prog.Instructions {
		d := decoded[i]
		if d.Address == instr.Address && d.String() == instr.String() {
			continue
		}

		diffs++
		if diffs < maxReportedMismatches {
			logger.Error("Instruction mismatch",
				log.Int("line", instr.Line),
				log.Hex("address", instr.Address),
				log.String("expected", instr.String()),
				log.String("got", d.String()))
		}
	}
	if diffs == 0 {
		return nil
	}
	return fmt.Errorf("%d instruction mismatches", diffs)
}
