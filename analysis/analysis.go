// Package analysis provides source analysis for LC-3 assembly,
// designed for integration with code editors. A Document parses its
// source once and answers diagnostic, symbol, hover, definition,
// reference, completion and semantic token queries over it. All
// positions are 1-based line/column pairs.
package analysis

import (
	"fmt"

	"github.com/hexaflex/lc3/arch"
	"github.com/hexaflex/lc3/asm"
	"github.com/hexaflex/lc3/asm/parser"
)

// Severity grades a diagnostic.
type Severity int

// Known severities.
const (
	SeverityError Severity = 1 + iota
	SeverityWarning
	SeverityInfo
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	}
	return "unknown"
}

// Location is a source range in 1-based line/column coordinates.
// The end column is exclusive.
type Location struct {
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// Diagnostic is a single analysis finding.
type Diagnostic struct {
	Message  string
	Severity Severity
	Location
}

// SymbolKind classifies a defined label.
type SymbolKind int

// Known symbol kinds. A label is a subroutine if it is the target of a
// JSR, data if it labels a data directive, and a plain label otherwise.
const (
	KindLabel SymbolKind = 1 + iota
	KindSubroutine
	KindData
)

func (k SymbolKind) String() string {
	switch k {
	case KindSubroutine:
		return "subroutine"
	case KindData:
		return "data"
	}
	return "label"
}

// SymbolInfo describes one defined label.
type SymbolInfo struct {
	Name    string
	Kind    SymbolKind
	Address string // Hex form ("x3000"), or "" while unresolved.
	Location
}

// CompletionKind classifies a completion item.
type CompletionKind int

// Known completion kinds.
const (
	CompletionKeyword CompletionKind = 1 + iota
	CompletionDirective
	CompletionRegister
	CompletionLabel
)

// CompletionItem is a single completion proposal.
type CompletionItem struct {
	Label  string
	Kind   CompletionKind
	Detail string
}

// TokenType classifies a semantic token.
type TokenType int

// Known semantic token types.
const (
	TokenKeyword TokenType = 1 + iota
	TokenDirective
	TokenRegister
	TokenNumber
	TokenString
	TokenComment
	TokenLabel    // label definition
	TokenLabelRef // label use
	TokenOperator
)

// SemanticToken is one highlighted source range.
type SemanticToken struct {
	Line     int
	StartCol int
	Length   int
	Type     TokenType
}

// labelRef records one use of a label name.
type labelRef struct {
	name string
	pos  parser.Position
	end  parser.Position
}

// Document is the analyzed form of one source text. It is immutable
// once built; concurrent queries on distinct documents do not
// interact.
type Document struct {
	source string
	unit   *asm.Unit
	tokens []parser.Token
	refs   []labelRef
	kinds  map[string]SymbolKind
}

// NewDocument analyzes source and returns a queryable document.
// Analysis always completes: a source that fails to encode still
// yields symbols, tokens and partial hovers, with the failures
// reported as diagnostics.
func NewDocument(source string) *Document {
	d := &Document{
		source: source,
		unit:   asm.Analyze("", source),
	}
	d.tokens, _ = parser.Tokenize("", source)
	d.collectRefs()
	d.classifySymbols()
	return d
}

// collectRefs gathers every label use from the parsed statements.
func (d *Document) collectRefs() {
	for i := range d.unit.Statements {
		s := &d.unit.Statements[i]
		for j := range s.Operands {
			op := &s.Operands[j]
			if op.Kind == parser.Symbol {
				d.refs = append(d.refs, labelRef{name: op.Sym, pos: op.Pos, end: op.End})
			}
		}
	}
}

// classifySymbols derives a kind for every defined symbol: JSR targets
// are subroutines, labels on data directives are data.
func (d *Document) classifySymbols() {
	d.kinds = make(map[string]SymbolKind, len(d.unit.Symbols))

	dataOps := map[string]bool{".FILL": true, ".BLKW": true, ".STRINGZ": true}

	// A label binds to its own statement, or to the next sized
	// statement when it stands alone on a line.
	for i := range d.unit.Statements {
		s := &d.unit.Statements[i]
		if s.Label == "" {
			continue
		}
		op := s.Op
		for j := i + 1; op == "" && j < len(d.unit.Statements); j++ {
			op = d.unit.Statements[j].Op
		}
		if dataOps[op] {
			d.kinds[s.Label] = KindData
		}
	}

	for i := range d.unit.Statements {
		s := &d.unit.Statements[i]
		if s.Op != "JSR" {
			continue
		}
		if op := s.Operand(0); op != nil && op.Kind == parser.Symbol {
			d.kinds[op.Sym] = KindSubroutine
		}
	}
}

// Unit exposes the underlying assembly unit, including the address
// layout used for PC-to-line mapping.
func (d *Document) Unit() *asm.Unit {
	return d.unit
}

// location converts a parser position pair to a Location.
func location(pos, end parser.Position) Location {
	return Location{
		StartLine: pos.Line,
		StartCol:  pos.Col,
		EndLine:   end.Line,
		EndCol:    end.Col,
	}
}

// hexAddr renders an address the way LC-3 listings do.
func hexAddr(addr uint16) string {
	return fmt.Sprintf("x%04X", addr)
}

// symbolAt returns the name of the symbol whose definition or use
// covers the given position.
func (d *Document) symbolAt(line, col int) (string, bool) {
	for _, sym := range d.unit.Symbols {
		if covers(sym.Pos, sym.End, line, col) {
			return sym.Name, true
		}
	}
	for _, ref := range d.refs {
		if covers(ref.pos, ref.end, line, col) {
			return ref.name, true
		}
	}
	return "", false
}

// covers reports whether the [pos, end) range contains line/col.
func covers(pos, end parser.Position, line, col int) bool {
	if line != pos.Line {
		return false
	}
	return col >= pos.Col && col < end.Col
}

// tokenAt returns the raw token covering the given position.
func (d *Document) tokenAt(line, col int) (parser.Token, bool) {
	for _, t := range d.tokens {
		if covers(t.Pos, t.End, line, col) {
			return t, true
		}
	}
	return parser.Token{}, false
}

// isMnemonicToken reports whether t names an instruction.
func isMnemonicToken(t parser.Token) bool {
	return t.Kind == parser.TokIdent && arch.IsMnemonic(t.Text)
}
