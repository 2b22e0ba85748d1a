// Package asmerr defines the error kinds reported by the assembler stages.
package asmerr

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Use errors.Is to check the kind of a returned error.
var (
	ErrSyntax             = errors.New("syntax error")
	ErrUnknownInstruction = errors.New("unknown instruction")
	ErrInvalidOperand     = errors.New("invalid operand")
	ErrDuplicateLabel     = errors.New("duplicate label")
	ErrUndefinedLabel     = errors.New("undefined label")
	ErrOffsetOutOfRange   = errors.New("offset out of range")
	ErrAddressOutOfRange  = errors.New("address out of range")

	// invalid operand sub kinds
	ErrInvalidRegister    = fmt.Errorf("invalid register: %w", ErrInvalidOperand)
	ErrConstantOutOfRange = fmt.Errorf("constant out of range: %w", ErrInvalidOperand)
)

// Error is an assembly error at a source line.
type Error struct {
	Kind   error
	Line   int
	Token  string // offending token, may be empty
	Detail string // additional description, may be empty
}

// New returns a new error of the given kind.
func New(kind error, line int, token, detail string) *Error {
	return &Error{
		Kind:   kind,
		Line:   line,
		Token:  token,
		Detail: detail,
	}
}

// Newf returns a new error of the given kind with a formatted detail description.
func Newf(kind error, line int, token, format string, args ...any) *Error {
	return New(kind, line, token, fmt.Sprintf(format, args...))
}

func (e *Error) Error() string {
	buf := &strings.Builder{}
	if e.Line > 0 {
		fmt.Fprintf(buf, "line %d: ", e.Line)
	}
	buf.WriteString(kindName(e.Kind))
	if e.Token != "" {
		fmt.Fprintf(buf, " '%s'", e.Token)
	}
	if e.Detail != "" {
		fmt.Fprintf(buf, " (%s)", e.Detail)
	}
	return buf.String()
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// kindName returns the short kind text, without the parent kind of a sub kind.
func kindName(kind error) string {
	switch kind {
	case ErrInvalidRegister:
		return "invalid register"
	case ErrConstantOutOfRange:
		return "constant out of range"
	case nil:
		return "error"
	default:
		return kind.Error()
	}
}

// List collects the errors of a stage.
type List struct {
	errs     []error
	failFast bool
}

// NewList returns a new error list. If failFast is set, Full reports true
// as soon as the first error has been added.
func NewList(failFast bool) *List {
	return &List{failFast: failFast}
}

// Add appends an error to the list, nil errors are ignored.
func (l *List) Add(err error) {
	if err == nil {
		return
	}
	l.errs = append(l.errs, err)
}

// Full returns whether the stage should stop collecting errors.
func (l *List) Full() bool {
	return l.failFast && len(l.errs) > 0
}

// Len returns the number of collected errors.
func (l *List) Len() int {
	return len(l.errs)
}

// Err returns nil for an empty list, the only error for a list of one error
// and a joined error otherwise.
func (l *List) Err() error {
	switch len(l.errs) {
	case 0:
		return nil
	case 1:
		return l.errs[0]
	default:
		return errors.Join(l.errs...)
	}
}
