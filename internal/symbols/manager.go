// Package symbols provides the label table of an assembly program.
package symbols

import (
	"sort"

	"github.com/retroenv/retrogolib/set"
)

// Symbol is a defined label.
type Symbol struct {
	Name    string
	Address uint16 // code address in words
	Line    int    // line of the definition
}

// Table maps label names to their definitions and tracks which labels are referenced.
type Table struct {
	items map[string]Symbol
	used  set.Set[string]
}

// New creates a new label table.
func New() *Table {
	return &Table{
		items: make(map[string]Symbol),
		used:  set.New[string](),
	}
}

// Define adds a label. If the label already exists, the existing definition is
// kept and returned with false.
func (t *Table) Define(sym Symbol) (Symbol, bool) {
	if existing, ok := t.items[sym.Name]; ok {
		return existing, false
	}
	t.items[sym.Name] = sym
	return sym, true
}

// Get returns the label with the given name without marking it as used.
func (t *Table) Get(name string) (Symbol, bool) {
	sym, ok := t.items[name]
	return sym, ok
}

// Lookup returns the label with the given name and marks it as used.
func (t *Table) Lookup(name string) (Symbol, bool) {
	sym, ok := t.items[name]
	if ok {
		t.used.Add(name)
	}
	return sym, ok
}

// Has returns whether a label is defined.
func (t *Table) Has(name string) bool {
	_, ok := t.items[name]
	return ok
}

// Len returns the number of defined labels.
func (t *Table) Len() int {
	return len(t.items)
}

// IsUsed returns whether a label has been looked up.
func (t *Table) IsUsed(name string) bool {
	return t.used.Contains(name)
}

// Sorted returns all labels sorted by address, labels at the same address
// are sorted by definition line.
func (t *Table) Sorted() []Symbol {
	items := make([]Symbol, 0, t.Len())
	for _, sym := range t.items {
		items = append(items, sym)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Address != items[j].Address {
			return items[i].Address < items[j].Address
		}
		return items[i].Line < items[j].Line
	})
	return items
}

// Unused returns all labels that were never looked up, sorted by address.
func (t *Table) Unused() []Symbol {
	var unused []Symbol
	for _, sym := range t.Sorted() {
		if !t.used.Contains(sym.Name) {
			unused = append(unused, sym)
		}
	}
	return unused
}

// Addresses returns a copy of the label to address mapping.
func (t *Table) Addresses() map[string]uint16 {
	m := make(map[string]uint16, len(t.items))
	for name, sym := range t.items {
		m[name] = sym.Address
	}
	return m
}
