package asm

import (
	"sort"

	"github.com/hexaflex/lc3/asm/obj"
	"github.com/hexaflex/lc3/asm/parser"
)

// layout is the first assembler pass. It carves the statement list
// into segments, assigns every statement an address, and records all
// label definitions. Each instruction and .FILL consumes one word,
// .BLKW n consumes n and .STRINGZ consumes one per character plus the
// terminator.
func layout(u *Unit) {
	u.Placements = make([]Placement, len(u.Statements))

	var addr int  // Current address within the open segment.
	var open bool // Is a segment open?
	var implicit bool
	var overflowed bool
	seg := -1

	openSegment := func(origin int, imp bool) {
		u.Segments = append(u.Segments, obj.Segment{Origin: uint16(origin)})
		seg = len(u.Segments) - 1
		addr = origin
		open = true
		implicit = imp
		overflowed = false
	}

	for i := range u.Statements {
		s := &u.Statements[i]
		u.Placements[i] = Placement{Segment: -1}

		switch s.Op {
		case ".ORIG":
			if open && !implicit {
				u.errorf(s.OpPos, s.OpEnd, "missing .END before .ORIG")
			}
			origin := 0x3000
			if op := s.Operand(0); op != nil {
				if op.Value < 0 || op.Value > 0xFFFF {
					u.errorf(op.Pos, op.End, "origin %s is outside the address space", op.Text)
				} else {
					origin = int(op.Value)
				}
			}
			openSegment(origin, false)
			u.Placements[i] = Placement{Addr: uint16(addr), Segment: seg}
			u.defineLabel(s, uint16(addr))
			continue

		case ".END":
			if !open {
				u.errorf(s.OpPos, s.OpEnd, "missing .ORIG before .END")
				continue
			}
			u.defineLabel(s, uint16(addr))
			u.Placements[i] = Placement{Addr: uint16(addr), Segment: seg}
			open = false
			continue

		case ".EXTERNAL":
			u.declareExternal(s)
			continue

		case ".GLOBAL":
			u.declareGlobal(s)
			continue
		}

		// Anything else needs an address. A source without a leading
		// .ORIG assembles at the default origin.
		if !open {
			if seg == -1 {
				openSegment(0x3000, true)
			} else {
				u.errorf(s.Pos, s.End, "statement outside of a .ORIG/.END block")
				continue
			}
		}

		u.defineLabel(s, uint16(addr))

		size := statementSize(u, s)
		u.Placements[i] = Placement{Addr: uint16(addr), Size: size, Segment: seg}

		addr += size
		if addr > 0x10000 && !overflowed {
			overflowed = true
			u.errorf(s.Pos, s.End, "segment at %04x grows past the end of memory",
				u.Segments[seg].Origin)
		}
	}

	if open && !implicit {
		last := &u.Statements[len(u.Statements)-1]
		u.errorf(last.Pos, last.End, "missing .END at end of input")
	}

	u.checkGlobals()
	u.checkOverlap()
}

// defineLabel records the statement's label, if any, at the given
// address. Redefinition keeps the first occurrence and reports the
// second.
func (u *Unit) defineLabel(s *parser.Statement, addr uint16) {
	if s.Label == "" {
		return
	}

	if prev, ok := u.Symbols[s.Label]; ok {
		if prev.Defined {
			u.errorf(s.LabelPos, s.LabelEnd, "duplicate label %q", s.Label)
			return
		}
		if prev.External {
			u.errorf(s.LabelPos, s.LabelEnd,
				"label %q is declared external and may not be defined here", s.Label)
			return
		}
		// Forward .GLOBAL declaration; fill in the definition.
		prev.Addr = addr
		prev.Pos, prev.End = s.LabelPos, s.LabelEnd
		prev.Defined = true
		return
	}

	u.Symbols[s.Label] = &Symbol{
		Name:    s.Label,
		Addr:    addr,
		Pos:     s.LabelPos,
		End:     s.LabelEnd,
		Defined: true,
	}
}

func (u *Unit) declareExternal(s *parser.Statement) {
	op := s.Operand(0)
	if op == nil {
		return
	}

	if prev, ok := u.Symbols[op.Sym]; ok {
		if prev.Defined {
			u.errorf(op.Pos, op.End, "label %q is defined here and cannot be external", op.Sym)
		}
		prev.External = true
		return
	}

	u.Symbols[op.Sym] = &Symbol{
		Name:     op.Sym,
		Pos:      op.Pos,
		End:      op.End,
		External: true,
	}
}

func (u *Unit) declareGlobal(s *parser.Statement) {
	op := s.Operand(0)
	if op == nil {
		return
	}

	if prev, ok := u.Symbols[op.Sym]; ok {
		prev.Global = true
		return
	}

	u.Symbols[op.Sym] = &Symbol{
		Name:   op.Sym,
		Pos:    op.Pos,
		End:    op.End,
		Global: true,
	}
}

// checkGlobals verifies that every .GLOBAL symbol found a definition.
func (u *Unit) checkGlobals() {
	for _, sym := range sortedSymbols(u.Symbols) {
		if sym.Global && !sym.Defined && !sym.External {
			u.errorf(sym.Pos, sym.End, "global symbol %q is never defined", sym.Name)
		}
	}
}

// checkOverlap reports segments whose address ranges intersect.
func (u *Unit) checkOverlap() {
	type span struct {
		lo, hi int // hi is exclusive
		seg    int
	}

	spans := make([]span, 0, len(u.Segments))
	for i := range u.Segments {
		lo := int(u.Segments[i].Origin)
		hi := lo
		for _, p := range u.Placements {
			if p.Segment != i {
				continue
			}
			if end := int(p.Addr) + p.Size; end > hi {
				hi = end
			}
		}
		if hi > lo {
			spans = append(spans, span{lo, hi, i})
		}
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].lo < spans[j].lo })

	for i := 1; i < len(spans); i++ {
		if spans[i].lo < spans[i-1].hi {
			pos, end := u.segmentPos(spans[i].seg)
			u.errorf(pos, end, "segment at %04x overlaps the segment at %04x",
				spans[i].lo, spans[i-1].lo)
		}
	}
}

// segmentPos finds the source span of the statement that opened the
// given segment.
func (u *Unit) segmentPos(seg int) (parser.Position, parser.Position) {
	for i, p := range u.Placements {
		if p.Segment == seg {
			return u.Statements[i].Pos, u.Statements[i].End
		}
	}
	return parser.Position{}, parser.Position{}
}

// statementSize returns the number of words the statement occupies.
func statementSize(u *Unit, s *parser.Statement) int {
	switch s.Op {
	case "":
		return 0
	case ".FILL":
		return 1
	case ".BLKW":
		op := s.Operand(0)
		if op == nil {
			return 0
		}
		if op.Value < 0 || op.Value > 0x10000 {
			u.errorf(op.Pos, op.End, ".BLKW size %s is out of range", op.Text)
			return 0
		}
		return int(op.Value)
	case ".STRINGZ":
		op := s.Operand(0)
		if op == nil {
			return 1
		}
		return len([]rune(op.Str)) + 1
	default:
		if s.IsDirective() {
			return 0
		}
		return 1
	}
}

// sortedSymbols returns the table's symbols ordered by position,
// for deterministic diagnostics.
func sortedSymbols(table SymbolTable) []*Symbol {
	out := make([]*Symbol, 0, len(table))
	for _, sym := range table {
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Pos.Offset < out[j].Pos.Offset
	})
	return out
}
