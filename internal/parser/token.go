package parser

import (
	"strings"

	"github.com/moseschmiedel/masm/internal/asmerr"
	"github.com/moseschmiedel/masm/internal/isa"
	"github.com/moseschmiedel/masm/internal/scanner"
)

type tokenKind int

const (
	tokenRegister tokenKind = iota
	tokenNumber             // unsigned literal
	tokenSigned             // relative marker +N or -N
	tokenLabel
)

// maxLiteral bounds numeric literals so that they fit an int on all platforms,
// exact range checks are done depending on the operand kind.
const maxLiteral = 1<<31 - 1

func (k tokenKind) String() string {
	switch k {
	case tokenRegister:
		return "register"
	case tokenNumber:
		return "constant"
	case tokenSigned:
		return "offset"
	default:
		return "label"
	}
}

type token struct {
	kind     tokenKind
	text     string
	register isa.Register
	value    int
	tooWide  bool // literal exceeds maxLiteral
}

// classify converts an operand word to a token.
func classify(line int, text string) (token, error) {
	t := token{text: text}

	index, isRegister, valid := scanner.ParseRegister(text)
	if isRegister {
		if !valid {
			return t, asmerr.Newf(asmerr.ErrInvalidRegister, line, text, "registers are reg0..reg%d and regA..regH",
				isa.RegisterCount-1)
		}
		t.kind = tokenRegister
		t.register = index
		return t, nil
	}

	sign := 0
	digits := text
	switch {
	case strings.HasPrefix(text, "+"):
		sign = 1
		digits = text[1:]
	case strings.HasPrefix(text, "-"):
		sign = -1
		digits = text[1:]
	}

	if scanner.IsNumber(digits) {
		value, err := scanner.ParseNumber(digits) // only fails for too wide numbers

		t.kind = tokenNumber
		if sign != 0 {
			t.kind = tokenSigned
		} else {
			sign = 1
		}
		if err != nil || value > maxLiteral {
			t.tooWide = true
			value = maxLiteral
		}
		t.value = sign * int(value)
		return t, nil
	}

	if sign == 0 && scanner.IsLabelName(text) {
		t.kind = tokenLabel
		return t, nil
	}

	return t, asmerr.New(asmerr.ErrInvalidOperand, line, text, "malformed operand")
}

// shape returns the operand kinds in the form used by error messages.
func shape(tokens []token) string {
	kinds := make([]string, len(tokens))
	for i, t := range tokens {
		kinds[i] = t.kind.String()
	}
	return "(" + strings.Join(kinds, ", ") + ")"
}
