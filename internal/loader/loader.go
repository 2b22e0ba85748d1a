// Package loader handles loading of source and hex files.
package loader

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/moseschmiedel/masm/internal/isa"
	"github.com/moseschmiedel/masm/internal/writer"
)

var errInvalidUTF8 = errors.New("file is not valid UTF-8")

// Loader handles loading files from disk.
type Loader struct{}

// New creates a new file loader.
func New() *Loader {
	return &Loader{}
}

// LoadSource reads an assembly source file.
func (l *Loader) LoadSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading file %s: %w", path, err)
	}
	return l.SourceFromBytes(data)
}

// SourceFromBytes converts file content to source text.
func (l *Loader) SourceFromBytes(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", errInvalidUTF8
	}
	return string(data), nil
}

// LoadHex reads a hex file in the given format back into words.
func (l *Loader) LoadHex(path string, format writer.Format) ([]isa.Word, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	words, err := l.ReadHex(file, format)
	if err != nil {
		return nil, fmt.Errorf("reading hex file %s: %w", path, err)
	}
	return words, nil
}

// ReadHex reads words from hex data in the given format.
func (l *Loader) ReadHex(reader io.Reader, format writer.Format) ([]isa.Word, error) {
	switch format {
	case writer.Plain:
		return readPlain(reader)
	case writer.IntelHex:
		return readIntelHex(reader)
	default:
		return nil, fmt.Errorf("unsupported hex format '%s'", format)
	}
}

func readPlain(reader io.Reader) ([]isa.Word, error) {
	var words []isa.Word
	scanner := bufio.NewScanner(reader)

	for line := 1; scanner.Scan(); line++ {
		for _, field := range strings.Fields(scanner.Text()) {
			if len(field) != 4 {
				return nil, fmt.Errorf("line %d: invalid word '%s'", line, field)
			}
			value, err := strconv.ParseUint(field, 16, 16)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid word '%s': %w", line, field, err)
			}
			words = append(words, isa.Word(value))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning lines: %w", err)
	}
	return words, nil
}

func readIntelHex(reader io.Reader) ([]isa.Word, error) {
	var data []byte
	var base int
	scanner := bufio.NewScanner(reader)

	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		record, err := decodeRecord(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		count := int(record[0])
		address := int(record[1])<<8 | int(record[2])
		payload := record[4 : 4+count]

		switch record[3] {
		case 0x00:
			start := base + address
			if start != len(data) {
				return nil, fmt.Errorf("line %d: non contiguous data at byte address 0x%x", line, start)
			}
			data = append(data, payload...)

		case 0x01:
			if len(data)%2 != 0 {
				return nil, errors.New("odd number of data bytes")
			}
			words := make([]isa.Word, len(data)/2)
			for i := range words {
				words[i] = isa.Word(data[2*i])<<8 | isa.Word(data[2*i+1])
			}
			return words, nil

		case 0x04:
			if count != 2 {
				return nil, fmt.Errorf("line %d: invalid extended linear address record", line)
			}
			base = (int(payload[0])<<8 | int(payload[1])) << 16

		default:
			return nil, fmt.Errorf("line %d: unsupported record type %02x", line, record[3])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning lines: %w", err)
	}
	return nil, errors.New("missing end of file record")
}

// decodeRecord decodes and validates a record line, the returned slice
// starts with the byte count.
func decodeRecord(text string) ([]byte, error) {
	if !strings.HasPrefix(text, ":") {
		return nil, errors.New("missing record start code")
	}
	record, err := hex.DecodeString(text[1:])
	if err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}
	if len(record) < 5 || len(record) != 5+int(record[0]) {
		return nil, errors.New("invalid record length")
	}

	var sum byte
	for _, b := range record {
		sum += b
	}
	if sum != 0 {
		return nil, errors.New("invalid record checksum")
	}
	return record, nil
}
