// Package fileprocessor handles file loading and processing operations
package fileprocessor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/moseschmiedel/masm/internal/options"
	"github.com/moseschmiedel/masm/internal/pipeline"
	"github.com/moseschmiedel/masm/internal/verification"
	"github.com/retroenv/retrogolib/log"
)

const outputFileMode = 0o644

// Processor assembles files and writes the output files. Output is written to a
// temporary file next to the output path that is only renamed after success.
type Processor struct {
	logger   *log.Logger
	pipeline *pipeline.Pipeline

	mu   sync.Mutex
	temp map[string]struct{} // temporary files that still exist
}

// New creates a new file processor.
func New(logger *log.Logger) *Processor {
	return &Processor{
		logger:   logger,
		pipeline: pipeline.New(logger),
		temp:     map[string]struct{}{},
	}
}

// ProcessFile handles the complete file processing workflow. The output file is
// not created or changed if any step fails.
func (p *Processor) ProcessFile(ctx context.Context, opts options.Program, asmOptions options.Assembler) error {
	if opts.Output == "" {
		opts.Output = GenerateOutputFilename(opts.Input)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(opts.Output), "."+filepath.Base(opts.Output)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmpFile.Name()
	p.track(tmpName)
	defer p.Cleanup()

	result, err := p.pipeline.Execute(ctx, opts, asmOptions, tmpFile)
	if closeErr := tmpFile.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err != nil {
		return err
	}

	if opts.Verify {
		if err := verification.VerifyOutput(ctx, p.logger, tmpName, result.Format, result.Program, result.Words); err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
		p.logger.Info("Verification successful")
	}

	if err := os.Chmod(tmpName, outputFileMode); err != nil {
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err := os.Rename(tmpName, opts.Output); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", opts.Output, err)
	}
	p.untrack(tmpName)

	if !opts.Quiet {
		p.logger.Info("Wrote output file",
			log.String("file", opts.Output),
			log.String("format", string(result.Format)),
			log.Int("instructions", len(result.Program.Instructions)),
			log.Int("words", len(result.Words)))
	}
	return nil
}

// Cleanup removes all temporary files that have not been renamed to their
// output file yet.
func (p *Processor) Cleanup() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for name := range p.temp {
		if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
			p.logger.Warn("Removing temp file failed", log.String("file", name), log.Err(err))
		}
		delete(p.temp, name)
	}
}

func (p *Processor) track(name string) {
	p.mu.Lock()
	p.temp[name] = struct{}{}
	p.mu.Unlock()
}

func (p *Processor) untrack(name string) {
	p.mu.Lock()
	delete(p.temp, name)
	p.mu.Unlock()
}

// GenerateOutputFilename generates output filename for a given input file
func GenerateOutputFilename(inputFile string) string {
	ext := filepath.Ext(inputFile)
	return inputFile[:len(inputFile)-len(ext)] + ".hex"
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	logger.Info("rasm", log.String("version", VersionString(version, commit)))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}

// VersionString returns the version with the short commit hash appended.
func VersionString(version, commit string) string {
	if commit == "" {
		return version
	}
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("%s (%s)", version, commit)
}
