// Package resolver implements the two label resolution passes: pass 1 assigns
// addresses and collects label definitions, pass 2 replaces all label references
// by addresses and checks the operand ranges.
package resolver

import (
	"fmt"

	"github.com/moseschmiedel/masm/internal/asmerr"
	"github.com/moseschmiedel/masm/internal/ast"
	"github.com/moseschmiedel/masm/internal/isa"
	"github.com/moseschmiedel/masm/internal/program"
	"github.com/moseschmiedel/masm/internal/symbols"
)

// maxCodeAddress is the highest address a label can refer to.
const maxCodeAddress = 0xffff

// Layout is the result of pass 1.
type Layout struct {
	Statements []ast.Statement
	Addresses  []uint16 // address of every statement
	Symbols    *symbols.Table
	End        int // program size in words
}

// Resolve runs both passes.
func Resolve(file *ast.File, failFast bool) (*program.Program, error) {
	layout, err := Pass1(file, failFast)
	if err != nil {
		return nil, fmt.Errorf("collecting labels: %w", err)
	}
	prog, err := Pass2(layout, failFast)
	if err != nil {
		return nil, fmt.Errorf("resolving references: %w", err)
	}
	return prog, nil
}

// Pass1 assigns an address to every statement and inserts all label definitions
// into the symbol table. Trailing labels get the end address.
func Pass1(file *ast.File, failFast bool) (*Layout, error) {
	errs := asmerr.NewList(failFast)
	layout := &Layout{
		Statements: file.Statements,
		Addresses:  make([]uint16, len(file.Statements)),
		Symbols:    symbols.New(),
	}

	address := 0
	define := func(labels []ast.Label) {
		for _, label := range labels {
			if errs.Full() {
				return
			}
			errs.Add(defineLabel(layout.Symbols, label, address))
		}
	}

	for i, stmt := range file.Statements {
		define(stmt.Labels)
		if address <= maxCodeAddress {
			layout.Addresses[i] = uint16(address)
		}
		address += stmt.Instr.Size()
	}
	define(file.Trailing)

	if address > maxCodeAddress+1 {
		errs.Add(asmerr.Newf(asmerr.ErrAddressOutOfRange, 0, "", "program size of %d words exceeds %d words",
			address, maxCodeAddress+1))
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	layout.End = address
	return layout, nil
}

func defineLabel(table *symbols.Table, label ast.Label, address int) error {
	if address > maxCodeAddress {
		return asmerr.Newf(asmerr.ErrAddressOutOfRange, label.Line, label.Name, "label address %d exceeds 0x%04x",
			address, maxCodeAddress)
	}

	existing, ok := table.Define(symbols.Symbol{
		Name:    label.Name,
		Address: uint16(address),
		Line:    label.Line,
	})
	if !ok {
		return asmerr.Newf(asmerr.ErrDuplicateLabel, label.Line, label.Name, "first defined on line %d", existing.Line)
	}
	return nil
}

// Pass2 converts all statements to resolved instructions. The symbol table is
// only read.
func Pass2(layout *Layout, failFast bool) (*program.Program, error) {
	errs := asmerr.NewList(failFast)
	prog := &program.Program{
		Instructions: make([]program.Instruction, 0, len(layout.Statements)),
		Symbols:      layout.Symbols,
		End:          layout.End,
	}

	for i, stmt := range layout.Statements {
		r := &reference{
			symbols: layout.Symbols,
			line:    stmt.Line,
			address: layout.Addresses[i],
		}
		op, err := r.resolve(stmt.Instr)
		if err != nil {
			errs.Add(err)
			if errs.Full() {
				break
			}
			continue
		}

		labels := make([]string, len(stmt.Labels))
		for j, label := range stmt.Labels {
			labels[j] = label.Name
		}
		prog.Instructions = append(prog.Instructions, program.Instruction{
			Address: r.address,
			Line:    stmt.Line,
			Labels:  labels,
			Op:      op,
		})
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}
	return prog, nil
}

// reference resolves the operands of the statement at a given address.
type reference struct {
	symbols *symbols.Table
	line    int
	address uint16
}

func (r *reference) resolve(instr ast.Instruction) (program.Operation, error) {
	switch i := instr.(type) {
	case ast.None:
		return program.None{Op: i.Op}, nil
	case ast.Move:
		return program.Move{Dst: i.Dst, Src: i.Src}, nil
	case ast.LoadConst:
		return program.LoadConst{Dst: i.Dst, Value: i.Value}, nil
	case ast.LoadIndirect:
		return program.LoadIndirect{Dst: i.Dst, Addr: i.Addr}, nil
	case ast.StoreIndirect:
		return program.StoreIndirect{Src: i.Src, Addr: i.Addr}, nil
	case ast.ALU:
		return program.ALU{Op: i.Op, Dst: i.Dst, A: i.A, B: i.B}, nil
	case ast.Unary:
		return program.Unary{Op: i.Op, Dst: i.Dst, Src: i.Src}, nil
	case ast.Step:
		return program.Step{Op: i.Op, Reg: i.Reg}, nil
	case ast.Test:
		return program.Test{A: i.A, B: i.B}, nil

	case ast.Load:
		addr, err := r.ramAddress(i.Addr)
		if err != nil {
			return nil, err
		}
		return program.Load{Dst: i.Dst, Addr: addr}, nil

	case ast.Store:
		addr, err := r.ramAddress(i.Addr)
		if err != nil {
			return nil, err
		}
		return program.Store{Src: i.Src, Addr: addr}, nil

	case ast.Jump:
		if i.Relative {
			offset, err := r.offset(i.Target)
			if err != nil {
				return nil, err
			}
			return program.RelativeJump{Cond: i.Cond, Offset: offset}, nil
		}
		target, err := r.jumpTarget(i.Target)
		if err != nil {
			return nil, err
		}
		return program.Jump{Cond: i.Cond, Target: target}, nil

	default:
		panic(fmt.Sprintf("unsupported instruction type %T", instr))
	}
}

func (r *reference) lookup(label string) (uint16, error) {
	sym, ok := r.symbols.Lookup(label)
	if !ok {
		return 0, asmerr.New(asmerr.ErrUndefinedLabel, r.line, label, "")
	}
	return sym.Address, nil
}

func (r *reference) ramAddress(ref ast.Ref) (uint16, error) {
	if !ref.IsLabel() {
		if ref.Value < 0 || ref.Value > isa.MaxRAM {
			return 0, asmerr.Newf(asmerr.ErrAddressOutOfRange, r.line, ref.String(), "RAM addresses are 0..%d", isa.MaxRAM)
		}
		return uint16(ref.Value), nil
	}
	return r.lookup(ref.Label)
}

func (r *reference) jumpTarget(ref ast.Ref) (uint16, error) {
	target := ref.Value
	if ref.IsLabel() {
		address, err := r.lookup(ref.Label)
		if err != nil {
			return 0, err
		}
		target = int(address)
	}

	if target < 0 || target > isa.MaxAddress {
		return 0, asmerr.Newf(asmerr.ErrAddressOutOfRange, r.line, ref.String(), "jump target %d exceeds %d",
			target, isa.MaxAddress)
	}
	return uint16(target), nil
}

// offset returns the signed distance from the current instruction to the target.
func (r *reference) offset(ref ast.Ref) (int, error) {
	offset := ref.Value
	if ref.IsLabel() {
		address, err := r.lookup(ref.Label)
		if err != nil {
			return 0, err
		}
		offset = int(address) - int(r.address)
	}

	if offset < isa.MinOffset || offset > isa.MaxOffset {
		return 0, asmerr.Newf(asmerr.ErrOffsetOutOfRange, r.line, ref.String(), "offset %d is outside of %d..%d",
			offset, isa.MinOffset, isa.MaxOffset)
	}
	if target := int(r.address) + offset; target < 0 || target > maxCodeAddress {
		return 0, asmerr.Newf(asmerr.ErrAddressOutOfRange, r.line, ref.String(), "relative target %d is outside of 0..%d",
			target, maxCodeAddress)
	}
	return offset, nil
}
