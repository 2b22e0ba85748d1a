package resolver

import (
	"errors"
	"strings"
	"testing"

	"github.com/moseschmiedel/masm/internal/asmerr"
	"github.com/moseschmiedel/masm/internal/ast"
	"github.com/moseschmiedel/masm/internal/isa"
	"github.com/moseschmiedel/masm/internal/parser"
	"github.com/moseschmiedel/masm/internal/program"
	"github.com/moseschmiedel/masm/internal/scanner"
	"github.com/retroenv/retrogolib/assert"
)

func parse(t *testing.T, src string) *ast.File {
	t.Helper()

	lines, err := scanner.Scan(src, false)
	assert.NoError(t, err)
	file, err := parser.Parse(lines, parser.Options{})
	assert.NoError(t, err)
	return file
}

// nops returns n nop statements starting at the given line.
func nops(line, n int) []ast.Statement {
	stmts := make([]ast.Statement, n)
	for i := range stmts {
		stmts[i] = ast.Statement{Line: line + i, Instr: ast.None{Op: isa.OpNop}}
	}
	return stmts
}

func TestPass1Addresses(t *testing.T) {
	file := parse(t, `
start:	ldcon reg0 5
loop:	dec reg0
	ld reg1 0x10
	jnz loop
end:
`)

	layout, err := Pass1(file, false)
	assert.NoError(t, err)
	assert.Equal(t, []uint16{0, 2, 3, 5}, layout.Addresses)
	assert.Equal(t, 6, layout.End)
	assert.Equal(t, map[string]uint16{"start": 0, "loop": 2, "end": 6}, layout.Symbols.Addresses())
}

func TestBackwardReferencesKeepSymbols(t *testing.T) {
	file := parse(t, `
a:	nop
b:	jmp a
	jz b
	jr a
`)

	layout, err := Pass1(file, false)
	assert.NoError(t, err)
	before := layout.Symbols.Addresses()

	prog, err := Pass2(layout, false)
	assert.NoError(t, err)
	assert.Equal(t, before, prog.Symbols.Addresses())
	assert.Empty(t, prog.Symbols.Unused())
}

func TestForwardAndBackwardReferences(t *testing.T) {
	prog, err := Resolve(parse(t, `
	jmp target
	jz target
target:	nop
	jnz target
	jr target
	jcr target
`), false)
	assert.NoError(t, err)

	assert.Equal(t, program.Operation(program.Jump{Cond: isa.Always, Target: 2}), prog.Instructions[0].Op)
	assert.Equal(t, program.Operation(program.Jump{Cond: isa.Zero, Target: 2}), prog.Instructions[1].Op)
	assert.Equal(t, program.Operation(program.Jump{Cond: isa.NotZero, Target: 2}), prog.Instructions[3].Op)
	assert.Equal(t, program.Operation(program.RelativeJump{Cond: isa.Always, Offset: -2}), prog.Instructions[4].Op)
	assert.Equal(t, program.Operation(program.RelativeJump{Cond: isa.Carry, Offset: -3}), prog.Instructions[5].Op)
	assert.Equal(t, []string{"target"}, prog.Instructions[2].Labels)
	assert.Equal(t, uint16(2), prog.Instructions[2].Address)
}

func TestDataReferences(t *testing.T) {
	prog, err := Resolve(parse(t, `
	ld reg1 value
	st reg1 0xffff
	ld reg2 reg3
value:
`), false)
	assert.NoError(t, err)

	assert.Equal(t, program.Operation(program.Load{Dst: 1, Addr: 5}), prog.Instructions[0].Op)
	assert.Equal(t, program.Operation(program.Store{Src: 1, Addr: 0xffff}), prog.Instructions[1].Op)
	assert.Equal(t, program.Operation(program.LoadIndirect{Dst: 2, Addr: 3}), prog.Instructions[2].Op)
	assert.Equal(t, 5, prog.End)
}

func TestDuplicateLabel(t *testing.T) {
	_, err := Resolve(parse(t, "x: nop\nx: nop\n"), false)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, asmerr.ErrDuplicateLabel))

	var asmErr *asmerr.Error
	assert.True(t, errors.As(err, &asmErr))
	assert.Equal(t, 2, asmErr.Line)
	assert.Equal(t, "x", asmErr.Token)
	assert.Equal(t, "first defined on line 1", asmErr.Detail)
}

func TestUndefinedLabel(t *testing.T) {
	_, err := Resolve(parse(t, "nop\njmp nowhere\n"), false)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, asmerr.ErrUndefinedLabel))
	assert.ErrorContains(t, err, "line 2: undefined label 'nowhere'")
}

func TestCollectsErrors(t *testing.T) {
	file := parse(t, "jmp a\njmp b\n")

	_, err := Resolve(file, false)
	assert.ErrorContains(t, err, "'a'")
	assert.ErrorContains(t, err, "'b'")

	_, err = Resolve(file, true)
	assert.ErrorContains(t, err, "'a'")
	assert.False(t, strings.Contains(err.Error(), "'b'"))
}

func TestRelativeOffsetLimits(t *testing.T) {
	backward := func(distance int) *ast.File {
		stmts := nops(1, distance)
		stmts[0].Labels = []ast.Label{{Name: "target", Line: 1}}
		stmts = append(stmts, ast.Statement{
			Line:  distance + 1,
			Instr: ast.Jump{Relative: true, Target: ast.Ref{Label: "target"}},
		})
		return &ast.File{Statements: stmts}
	}

	forward := func(distance int) *ast.File {
		stmts := []ast.Statement{{
			Line:  1,
			Instr: ast.Jump{Relative: true, Target: ast.Ref{Label: "target"}},
		}}
		stmts = append(stmts, nops(2, distance)...)
		stmts[distance].Labels = []ast.Label{{Name: "target", Line: distance + 1}}
		return &ast.File{Statements: stmts}
	}

	tests := []struct {
		name   string
		file   *ast.File
		offset int
		ok     bool
	}{
		{name: "backward -512", file: backward(512), offset: -512, ok: true},
		{name: "backward -513", file: backward(513), ok: false},
		{name: "forward 511", file: forward(511), offset: 511, ok: true},
		{name: "forward 512", file: forward(512), ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := Resolve(tt.file, false)
			if !tt.ok {
				assert.True(t, errors.Is(err, asmerr.ErrOffsetOutOfRange))
				return
			}

			assert.NoError(t, err)
			var jump program.RelativeJump
			for _, instr := range prog.Instructions {
				if j, ok := instr.Op.(program.RelativeJump); ok {
					jump = j
				}
			}
			assert.Equal(t, tt.offset, jump.Offset)
		})
	}
}

func TestNumericRanges(t *testing.T) {
	tests := []struct {
		src  string
		kind error
	}{
		{"jmp 1024", asmerr.ErrAddressOutOfRange},
		{"jr -513", asmerr.ErrOffsetOutOfRange},
		{"jzr 512", asmerr.ErrOffsetOutOfRange},
		{"jc +600", asmerr.ErrOffsetOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Resolve(parse(t, tt.src), false)
			assert.True(t, errors.Is(err, tt.kind))
		})
	}

	src := strings.Repeat("nop\n", 512) + "jmp 1023\njr -512\njr 511\n"
	prog, err := Resolve(parse(t, src), false)
	assert.NoError(t, err)
	assert.Len(t, prog.Instructions, 515)
}

func TestRelativeTargetOutsideProgram(t *testing.T) {
	tests := []struct {
		src string
		ok  bool
	}{
		{"jmp -5", false},
		{"jr -1", false},
		{"nop\nnop\njzr -3", false},
		{"nop\nnop\njzr -2", true},
		{"jr 0", true},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Resolve(parse(t, tt.src), false)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, asmerr.ErrAddressOutOfRange))
			assert.ErrorContains(t, err, "relative target")
		})
	}
}

func TestLabelBeyondJumpRange(t *testing.T) {
	stmts := nops(1, 1100)
	stmts[1099].Labels = []ast.Label{{Name: "far", Line: 1100}}
	stmts = append(stmts, ast.Statement{Line: 1101, Instr: ast.Jump{Target: ast.Ref{Label: "far"}}})

	_, err := Resolve(&ast.File{Statements: stmts}, false)
	assert.True(t, errors.Is(err, asmerr.ErrAddressOutOfRange))
}
