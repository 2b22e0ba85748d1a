// Package pipeline orchestrates the assembly workflow stages.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/moseschmiedel/masm/internal/ast"
	"github.com/moseschmiedel/masm/internal/detector"
	"github.com/moseschmiedel/masm/internal/encoder"
	"github.com/moseschmiedel/masm/internal/isa"
	"github.com/moseschmiedel/masm/internal/loader"
	"github.com/moseschmiedel/masm/internal/options"
	"github.com/moseschmiedel/masm/internal/parser"
	"github.com/moseschmiedel/masm/internal/program"
	"github.com/moseschmiedel/masm/internal/resolver"
	"github.com/moseschmiedel/masm/internal/scanner"
	"github.com/moseschmiedel/masm/internal/writer"
	"github.com/retroenv/retrogolib/log"
)

// Pipeline orchestrates the complete assembly workflow.
type Pipeline struct {
	logger   *log.Logger
	detector *detector.Detector
	loader   *loader.Loader
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Program *program.Program
	Words   []isa.Word
	Format  writer.Format
}

// New creates a new assembly pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger:   logger,
		detector: detector.New(logger),
		loader:   loader.New(),
	}
}

// Execute loads the input file and runs the complete assembly pipeline.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program, asmOpts options.Assembler,
	output io.Writer) (*Result, error) {

	src, err := p.loader.LoadSource(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("loading source: %w", err)
	}
	return p.ExecuteSource(ctx, src, opts, asmOpts, output)
}

// ExecuteSource runs the assembly pipeline with source text that is already in memory.
// Nothing is written to output if any stage fails.
func (p *Pipeline) ExecuteSource(ctx context.Context, src string, opts options.Program,
	asmOpts options.Assembler, output io.Writer) (*Result, error) {

	p.printInfo(opts)

	prog, err := p.assemble(ctx, src, asmOpts)
	if err != nil {
		return nil, err
	}

	words, err := encoder.Encode(prog)
	if err != nil {
		return nil, fmt.Errorf("encoding instructions: %w", err)
	}
	p.logListing(prog, words)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("encoding instructions: %w", err)
	}

	format := p.detector.Detect(opts)
	w := writer.New(words, output, writer.Options{
		Format:       format,
		WordsPerLine: asmOpts.WordsPerLine,
	})
	if err := w.Write(); err != nil {
		return nil, fmt.Errorf("writing hex output: %w", err)
	}

	return &Result{
		Program: prog,
		Words:   words,
		Format:  format,
	}, nil
}

// assemble runs the stages up to the resolved program, the context is checked
// between the stages.
func (p *Pipeline) assemble(ctx context.Context, src string, asmOpts options.Assembler) (*program.Program, error) {
	lines, err := scanner.Scan(src, asmOpts.FailFast)
	if err != nil {
		return nil, fmt.Errorf("scanning source: %w", err)
	}
	p.logger.Debug("Scanned source", log.Int("lines", len(lines)))
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scanning source: %w", err)
	}

	file, err := parser.Parse(lines, parser.Options{
		FailFast:     asmOpts.FailFast,
		ImplicitHalt: asmOpts.ImplicitHalt,
	})
	if err != nil {
		return nil, fmt.Errorf("parsing source: %w", err)
	}
	p.logStatements(file)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parsing source: %w", err)
	}

	layout, err := resolver.Pass1(file, asmOpts.FailFast)
	if err != nil {
		return nil, fmt.Errorf("collecting labels: %w", err)
	}
	for _, sym := range layout.Symbols.Sorted() {
		p.logger.Debug("Label",
			log.String("name", sym.Name),
			log.Hex("address", sym.Address),
			log.Int("line", sym.Line))
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("collecting labels: %w", err)
	}

	prog, err := resolver.Pass2(layout, asmOpts.FailFast)
	if err != nil {
		return nil, fmt.Errorf("resolving references: %w", err)
	}
	for _, sym := range prog.Symbols.Unused() {
		p.logger.Debug("Unreferenced label",
			log.String("name", sym.Name),
			log.Int("line", sym.Line))
	}
	return prog, nil
}

func (p *Pipeline) logStatements(file *ast.File) {
	p.logger.Debug("Parsed source",
		log.Int("statements", len(file.Statements)),
		log.Int("trailing_labels", len(file.Trailing)))

	for _, stmt := range file.Statements {
		p.logger.Debug("Statement",
			log.Int("line", stmt.Line),
			log.String("code", stmt.Instr.String()))
	}
}

// logListing logs every instruction with its address and encoded words.
func (p *Pipeline) logListing(prog *program.Program, words []isa.Word) {
	for i, instr := range prog.Instructions {
		end := len(words)
		if i+1 < len(prog.Instructions) {
			end = int(prog.Instructions[i+1].Address)
		}

		encoded := make([]string, 0, 2)
		for _, word := range words[instr.Address:end] {
			encoded = append(encoded, fmt.Sprintf("%04x", uint16(word)))
		}

		p.logger.Debug("Instruction",
			log.Hex("address", instr.Address),
			log.String("code", instr.String()),
			log.String("words", strings.Join(encoded, " ")),
			log.Int("line", instr.Line))
	}
}

// printInfo prints information about the file being processed.
func (p *Pipeline) printInfo(opts options.Program) {
	if opts.Quiet {
		return
	}

	p.logger.Info("Assembling source",
		log.String("file", opts.Input),
		log.String("output", opts.Output),
	)
}
