package scanner

import (
	"errors"
	"strconv"
	"strings"

	"github.com/moseschmiedel/masm/internal/isa"
)

var (
	errNotANumber    = errors.New("not a number")
	ErrNumberTooWide = errors.New("number exceeds 64 bits")
)

// ParseNumber parses a decimal, 0x prefixed hexadecimal or 0b prefixed binary literal.
func ParseNumber(s string) (uint64, error) {
	base := 10
	digits := s
	switch {
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		base = 16
		digits = s[2:]
	case strings.HasPrefix(s, "0b"), strings.HasPrefix(s, "0B"):
		base = 2
		digits = s[2:]
	}
	if digits == "" || !allDigits(digits, base) {
		return 0, errNotANumber
	}

	value, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return 0, ErrNumberTooWide
	}
	return value, nil
}

// IsNumber returns whether s has the syntax of a numeric literal.
func IsNumber(s string) bool {
	_, err := ParseNumber(s)
	return !errors.Is(err, errNotANumber)
}

// ParseRegister returns whether s names a register. valid is false for names
// that look like a register but are outside of reg0..reg7 and regA..regH.
func ParseRegister(s string) (index isa.Register, isRegister, valid bool) {
	suffix, ok := strings.CutPrefix(s, "reg")
	if !ok || suffix == "" {
		return 0, false, false
	}

	if len(suffix) == 1 && suffix[0] >= 'A' && suffix[0] <= 'Z' {
		if suffix[0] > 'H' {
			return 0, true, false
		}
		return isa.Register(suffix[0] - 'A'), true, true
	}

	if !allDigits(suffix, 10) {
		return 0, false, false
	}
	if len(suffix) != 1 || suffix[0] > '7' {
		return 0, true, false
	}
	return isa.Register(suffix[0] - '0'), true, true
}

// IsLabelName returns whether s is a valid label name: letters, digits and
// underscores, neither a numeric literal nor a register name.
func IsLabelName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isLetter(c) && !isDigit(c, 10) && c != '_' {
			return false
		}
	}
	if IsNumber(s) {
		return false
	}
	_, isRegister, _ := ParseRegister(s)
	return !isRegister
}

// isMnemonic returns whether s has the syntax of an instruction name.
func isMnemonic(s string) bool {
	if s == "" || !isLetter(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isLetter(s[i]) && !isDigit(s[i], 10) {
			return false
		}
	}
	return true
}

func allDigits(s string, base int) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i], base) {
			return false
		}
	}
	return true
}

func isDigit(c byte, base int) bool {
	switch base {
	case 2:
		return c == '0' || c == '1'
	case 16:
		return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
	default:
		return c >= '0' && c <= '9'
	}
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
