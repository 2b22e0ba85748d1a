// Package scanner splits assembly source into lines, strips comments and
// separates label definitions from instruction text.
package scanner

import (
	"strings"

	"github.com/moseschmiedel/masm/internal/asmerr"
)

// Line is a non blank source line after comment stripping.
type Line struct {
	Number int    // 1-based source line number
	Raw    string // line as written in the source
	Labels []string
	Text   string // instruction text, empty for label only lines
}

// HasInstruction returns whether the line contains an instruction.
func (l Line) HasInstruction() bool {
	return l.Text != ""
}

// Scan classifies all lines of the source. Errors of all lines are collected
// unless failFast is set, in which case scanning stops at the first error.
func Scan(src string, failFast bool) ([]Line, error) {
	errs := asmerr.NewList(failFast)
	var lines []Line

	for i, raw := range strings.Split(src, "\n") {
		raw = strings.TrimSuffix(raw, "\r")
		line, ok, err := scanLine(i+1, raw)
		if err != nil {
			errs.Add(err)
			if errs.Full() {
				break
			}
			continue
		}
		if ok {
			lines = append(lines, line)
		}
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// scanLine returns false for lines that are blank after comment stripping.
func scanLine(number int, raw string) (Line, bool, error) {
	text := strings.TrimSpace(StripComment(raw))
	if text == "" {
		return Line{}, false, nil
	}

	line := Line{
		Number: number,
		Raw:    raw,
	}

	for {
		idx := strings.IndexByte(text, ':')
		if idx < 0 {
			break
		}
		name := text[:idx]
		if strings.ContainsAny(name, " \t") {
			break // colon belongs to an operand
		}
		if !IsLabelName(name) {
			return Line{}, false, asmerr.New(asmerr.ErrSyntax, number, name, "invalid label name")
		}
		line.Labels = append(line.Labels, name)
		text = strings.TrimSpace(text[idx+1:])
	}

	if text != "" {
		words := strings.FieldsFunc(text, IsSeparator)
		if len(words) == 0 || !isMnemonic(words[0]) {
			return Line{}, false, asmerr.New(asmerr.ErrSyntax, number, strings.TrimSpace(raw), "expected instruction")
		}
	}

	line.Text = text
	return line, true, nil
}

// IsSeparator returns whether r separates the words of an instruction.
func IsSeparator(r rune) bool {
	return r == ' ' || r == '\t' || r == ','
}

// StripComment removes the comment starting at the first ';' that is not
// preceded by a backslash. Escaped semicolons are unescaped.
func StripComment(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == ';' && (i == 0 || s[i-1] != '\\') {
			s = s[:i]
			break
		}
	}
	return strings.ReplaceAll(s, `\;`, ";")
}
