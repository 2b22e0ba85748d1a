// Package writer implements the hex file output of assembled machine words.
package writer

import (
	"fmt"
	"io"
	"strings"

	"github.com/moseschmiedel/masm/internal/isa"
)

const (
	DefaultWordsPerLine = 1
	ihexBytesPerRecord  = 16
	ihexEndOfFile       = ":00000001FF"
)

// Format of the hex output file.
type Format string

// Supported output formats.
const (
	Plain    Format = "plain"
	IntelHex Format = "ihex"
)

// Formats returns all supported formats.
func Formats() []Format {
	return []Format{Plain, IntelHex}
}

// ParseFormat returns the format for the given name.
func ParseFormat(name string) (Format, error) {
	for _, format := range Formats() {
		if strings.EqualFold(name, string(format)) {
			return format, nil
		}
	}
	return "", fmt.Errorf("unsupported output format '%s'", name)
}

type lineWriterFunc func(line string, words []isa.Word, address int) error

// Writer writes machine words in a hex format.
type Writer struct {
	words   []isa.Word
	options Options
	writer  io.Writer
}

// Options of the writer.
type Options struct {
	Format       Format
	WordsPerLine int // words per line of the plain format
}

// New creates a new writer.
func New(words []isa.Word, writer io.Writer, options Options) *Writer {
	if options.Format == "" {
		options.Format = Plain
	}
	if options.WordsPerLine <= 0 {
		options.WordsPerLine = DefaultWordsPerLine
	}
	return &Writer{
		words:   words,
		options: options,
		writer:  writer,
	}
}

// Write writes all words in the configured format.
func (w Writer) Write() error {
	switch w.options.Format {
	case Plain:
		return w.BundleWordWrites(w.options.WordsPerLine, w.plainLineWriter)

	case IntelHex:
		ihex := &ihexWriter{writer: w.writer}
		if err := w.BundleWordWrites(ihexBytesPerRecord/2, ihex.lineWriter); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w.writer, "%s\n", ihexEndOfFile); err != nil {
			return fmt.Errorf("writing end of file record: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("unsupported output format '%s'", w.options.Format)
	}
}

// BundleWordWrites bundles writes of words to pass wordsPerLine words per line
// to the line writer. The last line can contain fewer words.
func (w Writer) BundleWordWrites(wordsPerLine int, lineWriter lineWriterFunc) error {
	remaining := len(w.words)
	for i := 0; remaining > 0; {
		toWrite := min(remaining, wordsPerLine)
		words := w.words[i : i+toWrite]

		buf := &strings.Builder{}
		for j, word := range words {
			if j > 0 {
				buf.WriteByte(' ')
			}
			if _, err := fmt.Fprintf(buf, "%04x", uint16(word)); err != nil {
				return fmt.Errorf("writing data word: %w", err)
			}
		}

		if err := lineWriter(buf.String(), words, i); err != nil {
			return fmt.Errorf("writing data line: %w", err)
		}

		i += toWrite
		remaining -= toWrite
	}

	return nil
}

func (w Writer) plainLineWriter(line string, _ []isa.Word, _ int) error {
	_, err := fmt.Fprintf(w.writer, "%s\n", line)
	return err
}

// ihexWriter writes Intel HEX records, words are stored big endian at byte
// address = word address * 2.
type ihexWriter struct {
	writer io.Writer
	upper  int // upper 16 bits of the current linear base address
}

func (h *ihexWriter) lineWriter(_ string, words []isa.Word, address int) error {
	byteAddress := address * 2
	if upper := byteAddress >> 16; upper != h.upper {
		if err := h.record(0x04, 0, []byte{byte(upper >> 8), byte(upper)}); err != nil {
			return err
		}
		h.upper = upper
	}

	data := make([]byte, 0, len(words)*2)
	for _, word := range words {
		data = append(data, byte(word>>8), byte(word))
	}
	return h.record(0x00, uint16(byteAddress), data)
}

func (h *ihexWriter) record(typ byte, address uint16, data []byte) error {
	record := make([]byte, 0, 4+len(data))
	record = append(record, byte(len(data)), byte(address>>8), byte(address), typ)
	record = append(record, data...)

	var sum byte
	for _, b := range record {
		sum += b
	}

	_, err := fmt.Fprintf(h.writer, ":%X%02X\n", record, -sum)
	return err
}
