// Package parser converts scanned source lines into unresolved statements.
package parser

import (
	"fmt"
	"strings"

	"github.com/moseschmiedel/masm/internal/asmerr"
	"github.com/moseschmiedel/masm/internal/ast"
	"github.com/moseschmiedel/masm/internal/isa"
	"github.com/moseschmiedel/masm/internal/scanner"
)

// Options controls the parser behavior.
type Options struct {
	FailFast     bool // stop at the first error instead of collecting all errors
	ImplicitHalt bool // append a hlt instruction after the last instruction
}

// Parse parses all scanned lines. Labels of label only lines attach to the next
// instruction, labels following the last instruction are returned as trailing
// labels of the file.
func Parse(lines []scanner.Line, opts Options) (*ast.File, error) {
	errs := asmerr.NewList(opts.FailFast)
	file := &ast.File{}
	var pending []ast.Label
	lastLine := 0

	for _, line := range lines {
		lastLine = line.Number
		for _, name := range line.Labels {
			pending = append(pending, ast.Label{Name: name, Line: line.Number})
		}
		if !line.HasInstruction() {
			continue
		}

		instr, err := parseInstruction(line.Number, line.Text)
		if err != nil {
			errs.Add(err)
			if errs.Full() {
				break
			}
			pending = nil
			continue
		}

		file.Statements = append(file.Statements, ast.Statement{
			Line:   line.Number,
			Labels: pending,
			Instr:  instr,
		})
		pending = nil
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}

	if opts.ImplicitHalt {
		file.Statements = append(file.Statements, ast.Statement{
			Line:   lastLine,
			Labels: pending,
			Instr:  ast.None{Op: isa.OpHlt},
		})
		pending = nil
	}
	file.Trailing = pending
	return file, nil
}

// parseInstruction parses the text of a single instruction.
func parseInstruction(line int, text string) (ast.Instruction, error) {
	words := strings.FieldsFunc(text, scanner.IsSeparator)
	name := words[0]

	m, ok := isa.Lookup(name)
	if !ok {
		return nil, asmerr.New(asmerr.ErrUnknownInstruction, line, name, "")
	}

	tokens := make([]token, 0, len(words)-1)
	for _, word := range words[1:] {
		t, err := classify(line, word)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}

	p := &instructionParser{
		line:     line,
		mnemonic: m,
		tokens:   tokens,
	}
	return p.parse()
}

type instructionParser struct {
	line     int
	mnemonic isa.Mnemonic
	tokens   []token
}

func (p *instructionParser) parse() (ast.Instruction, error) {
	m := p.mnemonic

	switch m.Form {
	case isa.FormNone:
		if err := p.expect("()"); err != nil {
			return nil, err
		}
		return ast.None{Op: m.Opcode}, nil

	case isa.FormMove, isa.FormUnary, isa.FormCompare:
		if err := p.expect("(register, register)", tokenRegister, tokenRegister); err != nil {
			return nil, err
		}
		a, b := p.tokens[0].register, p.tokens[1].register
		switch m.Form {
		case isa.FormMove:
			return ast.Move{Dst: a, Src: b}, nil
		case isa.FormUnary:
			return ast.Unary{Op: m.Opcode, Dst: a, Src: b}, nil
		default:
			return ast.Test{A: a, B: b}, nil
		}

	case isa.FormTernary:
		if err := p.expect("(register, register, register)", tokenRegister, tokenRegister, tokenRegister); err != nil {
			return nil, err
		}
		return ast.ALU{
			Op:  m.Opcode,
			Dst: p.tokens[0].register,
			A:   p.tokens[1].register,
			B:   p.tokens[2].register,
		}, nil

	case isa.FormSingle:
		if err := p.expect("(register)", tokenRegister); err != nil {
			return nil, err
		}
		return ast.Step{Op: m.Opcode, Reg: p.tokens[0].register}, nil

	case isa.FormConstant:
		return p.parseConstant()

	case isa.FormMemory:
		return p.parseMemory()

	case isa.FormJump:
		return p.parseJump()

	case isa.FormRelativeJump:
		return p.parseRelativeJump()

	default:
		panic(fmt.Sprintf("unsupported operand form %d", m.Form))
	}
}

func (p *instructionParser) parseConstant() (ast.Instruction, error) {
	const expected = "(register, constant)"
	if len(p.tokens) != 2 || p.tokens[0].kind != tokenRegister {
		return nil, p.shapeError(expected)
	}

	t := p.tokens[1]
	switch t.kind {
	case tokenNumber:
		if t.tooWide || t.value > isa.MaxConstant {
			return nil, p.constantError(t)
		}
		return ast.LoadConst{Dst: p.tokens[0].register, Value: uint16(t.value)}, nil

	case tokenSigned:
		if strings.HasPrefix(t.text, "-") {
			return nil, p.constantError(t) // constants are unsigned
		}
		return nil, p.shapeError(expected)

	default:
		return nil, p.shapeError(expected)
	}
}

func (p *instructionParser) parseMemory() (ast.Instruction, error) {
	const expected = "(register, address) or (register, register)"
	if len(p.tokens) != 2 || p.tokens[0].kind != tokenRegister {
		return nil, p.shapeError(expected)
	}

	reg := p.tokens[0].register
	t := p.tokens[1]
	var addr ast.Ref

	switch t.kind {
	case tokenRegister:
		if p.mnemonic.Opcode == isa.OpLd {
			return ast.LoadIndirect{Dst: reg, Addr: t.register}, nil
		}
		return ast.StoreIndirect{Src: reg, Addr: t.register}, nil

	case tokenLabel:
		addr = ast.Ref{Label: t.text}

	case tokenNumber:
		if t.tooWide || t.value > isa.MaxRAM {
			return nil, asmerr.Newf(asmerr.ErrAddressOutOfRange, p.line, t.text, "RAM addresses are 0..%d", isa.MaxRAM)
		}
		addr = ast.Ref{Value: t.value}

	default:
		return nil, p.shapeError(expected)
	}

	if p.mnemonic.Opcode == isa.OpLd {
		return ast.Load{Dst: reg, Addr: addr}, nil
	}
	return ast.Store{Src: reg, Addr: addr}, nil
}

func (p *instructionParser) parseJump() (ast.Instruction, error) {
	if len(p.tokens) != 1 {
		return nil, p.shapeError("(address)")
	}

	t := p.tokens[0]
	jump := ast.Jump{Cond: p.mnemonic.Condition}

	switch t.kind {
	case tokenLabel:
		jump.Target = ast.Ref{Label: t.text}

	case tokenNumber:
		if t.tooWide {
			return nil, asmerr.Newf(asmerr.ErrAddressOutOfRange, p.line, t.text, "jump addresses are 0..%d", isa.MaxAddress)
		}
		jump.Target = ast.Ref{Value: t.value}

	case tokenSigned:
		if t.tooWide {
			return nil, p.offsetError(t)
		}
		jump.Relative = true
		jump.Target = ast.Ref{Value: t.value}

	default:
		return nil, p.shapeError("(address)")
	}

	return jump, nil
}

func (p *instructionParser) parseRelativeJump() (ast.Instruction, error) {
	if len(p.tokens) != 1 {
		return nil, p.shapeError("(offset)")
	}

	t := p.tokens[0]
	jump := ast.Jump{
		Cond:     p.mnemonic.Condition,
		Relative: true,
	}

	switch t.kind {
	case tokenLabel:
		jump.Target = ast.Ref{Label: t.text}

	case tokenNumber, tokenSigned:
		if t.tooWide {
			return nil, p.offsetError(t)
		}
		jump.Target = ast.Ref{Value: t.value}

	default:
		return nil, p.shapeError("(offset)")
	}

	return jump, nil
}

// expect checks that the operands have exactly the given kinds.
func (p *instructionParser) expect(expected string, kinds ...tokenKind) error {
	if len(p.tokens) != len(kinds) {
		return p.shapeError(expected)
	}
	for i, kind := range kinds {
		if p.tokens[i].kind != kind {
			return p.shapeError(expected)
		}
	}
	return nil
}

func (p *instructionParser) shapeError(expected string) error {
	return asmerr.Newf(asmerr.ErrInvalidOperand, p.line, "", "%s expects %s but got %s",
		p.mnemonic.Name, expected, shape(p.tokens))
}

func (p *instructionParser) constantError(t token) error {
	return asmerr.Newf(asmerr.ErrConstantOutOfRange, p.line, t.text, "constants are 0..%d", isa.MaxConstant)
}

func (p *instructionParser) offsetError(t token) error {
	return asmerr.Newf(asmerr.ErrOffsetOutOfRange, p.line, t.text, "offsets are %d..%d", isa.MinOffset, isa.MaxOffset)
}
