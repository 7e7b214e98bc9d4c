// Package asm implements a two-pass assembler which turns LC-3
// assembly source into an object image, ready for use on a VM.
package asm

import (
	"github.com/hexaflex/lc3/asm/obj"
	"github.com/hexaflex/lc3/asm/parser"
)

// Symbol is a label with its resolved address and defining location.
type Symbol struct {
	Name     string // Upper-cased label name.
	Addr     uint16 // Resolved address; zero for external symbols.
	Pos      parser.Position
	End      parser.Position
	Defined  bool // False for symbols only declared with .EXTERNAL.
	External bool // Declared with .EXTERNAL.
	Global   bool // Declared with .GLOBAL.
}

// SymbolTable maps upper-cased label names to their symbols.
type SymbolTable map[string]*Symbol

// Placement records where a statement landed in the address layout.
// Statements that emit no words have Size 0.
type Placement struct {
	Addr    uint16
	Size    int
	Segment int // Index into Unit.Segments; -1 when outside a segment.
}

// Unit is the fully analyzed form of one assembly source: the parsed
// statements, the address layout, the symbol table, the encoded
// segments and every diagnostic found along the way. All passes run
// to completion regardless of errors, so editor tooling can query a
// broken source.
type Unit struct {
	Statements []parser.Statement
	Placements []Placement // Parallel to Statements.
	Symbols    SymbolTable
	Segments   []obj.Segment
	Errors     []*parser.Error
}

// Analyze parses and assembles the given source, accumulating all
// diagnostics. The filename provides source context and may be empty.
func Analyze(filename, source string) *Unit {
	u := &Unit{Symbols: make(SymbolTable)}
	u.Statements, u.Errors = parser.Parse(filename, source)

	layout(u)
	encode(u)
	return u
}

// Build assembles the given source into an object image.
// It fails on the first diagnostic.
func Build(filename, source string) (*obj.Image, error) {
	u := Analyze(filename, source)
	if len(u.Errors) > 0 {
		return nil, u.Errors[0]
	}
	return u.Image(), nil
}

// Image returns the encoded segments as an object image.
func (u *Unit) Image() *obj.Image {
	img := obj.New()
	img.Segments = u.Segments
	return img
}

// LineFor resolves an address back to the 1-based source line of the
// statement occupying it. Returns false if no statement covers addr.
func (u *Unit) LineFor(addr uint16) (int, bool) {
	for i, p := range u.Placements {
		if p.Size == 0 {
			continue
		}
		if addr >= p.Addr && int(addr) < int(p.Addr)+p.Size {
			return u.Statements[i].Pos.Line, true
		}
	}
	return 0, false
}

// SymbolAddrs returns the address-to-name mapping for all defined
// symbols, as consumed by the disassembler.
func (u *Unit) SymbolAddrs() map[uint16]string {
	out := make(map[uint16]string, len(u.Symbols))
	for _, sym := range u.Symbols {
		if sym.Defined {
			out[sym.Addr] = sym.Name
		}
	}
	return out
}

func (u *Unit) errorf(pos, end parser.Position, f string, argv ...interface{}) {
	u.Errors = append(u.Errors, parser.NewError(pos, end, f, argv...))
}
