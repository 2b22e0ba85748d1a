// Package detector handles output format detection.
package detector

import (
	"path/filepath"
	"strings"

	"github.com/moseschmiedel/masm/internal/options"
	"github.com/moseschmiedel/masm/internal/writer"
	"github.com/retroenv/retrogolib/log"
)

// Detector handles output format detection from file extensions and options.
type Detector struct {
	logger *log.Logger
}

// New creates a new format detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
	}
}

// Detect determines the output format from options or the output file extension.
// An explicitly specified format takes precedence over the file extension.
func (d *Detector) Detect(opts options.Program) writer.Format {
	format, err := writer.ParseFormat(opts.Format)
	if err != nil {
		format = d.detectFromFile(opts.Output)
		d.logger.Debug("Auto-detected output format",
			log.String("format", string(format)),
			log.String("file", opts.Output))
	}
	return format
}

// detectFromFile determines the output format based on file extension.
func (d *Detector) detectFromFile(filename string) writer.Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".ihx", ".ihex":
		return writer.IntelHex
	default:
		return writer.Plain
	}
}
