package analysis

import (
	"fmt"
	"sort"

	"github.com/hexaflex/lc3/arch"
	"github.com/hexaflex/lc3/asm/parser"
)

// Diagnostics returns all findings for the document, in source order.
// The list is empty exactly when the source assembles cleanly.
func (d *Document) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, 0, len(d.unit.Errors))
	for _, e := range d.unit.Errors {
		out = append(out, Diagnostic{
			Message:  e.Msg,
			Severity: SeverityError,
			Location: location(e.Pos, e.End),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartLine != out[j].StartLine {
			return out[i].StartLine < out[j].StartLine
		}
		return out[i].StartCol < out[j].StartCol
	})
	return out
}

// Symbols returns every defined label, plus every label declared with
// .EXTERNAL (with an empty address), with its kind, address and
// defining location, ordered by position in the source.
func (d *Document) Symbols() []SymbolInfo {
	var out []SymbolInfo
	for _, sym := range d.unit.Symbols {
		if !sym.Defined && !sym.External {
			continue
		}

		info := SymbolInfo{
			Name:     sym.Name,
			Kind:     d.kind(sym.Name),
			Location: location(sym.Pos, sym.End),
		}
		if sym.Defined {
			info.Address = hexAddr(sym.Addr)
		}
		out = append(out, info)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].StartLine != out[j].StartLine {
			return out[i].StartLine < out[j].StartLine
		}
		return out[i].StartCol < out[j].StartCol
	})
	return out
}

func (d *Document) kind(name string) SymbolKind {
	if k, ok := d.kinds[name]; ok {
		return k
	}
	return KindLabel
}

// Definition resolves the label at the given position to its defining
// location. Returns nil if the position is not on a label or the label
// is undefined.
func (d *Document) Definition(line, col int) *Location {
	name, ok := d.symbolAt(line, col)
	if !ok {
		return nil
	}
	sym, ok := d.unit.Symbols[name]
	if !ok || !(sym.Defined || sym.External) {
		return nil
	}
	loc := location(sym.Pos, sym.End)
	return &loc
}

// References returns the defining location and every use of the label
// at the given position.
func (d *Document) References(line, col int) []Location {
	name, ok := d.symbolAt(line, col)
	if !ok {
		return nil
	}

	var out []Location
	if sym, ok := d.unit.Symbols[name]; ok && sym.Defined {
		out = append(out, location(sym.Pos, sym.End))
	}
	for _, ref := range d.refs {
		if ref.name == name {
			out = append(out, location(ref.pos, ref.end))
		}
	}
	return out
}

// Hover returns a markdown description of the construct at the given
// position: instruction and directive documentation, register roles,
// or a label's kind and resolved address. Returns "" when there is
// nothing to show.
func (d *Document) Hover(line, col int) string {
	t, ok := d.tokenAt(line, col)
	if !ok {
		return ""
	}

	switch t.Kind {
	case parser.TokDirective:
		if doc, ok := directiveDocs[upperName(t.Text)]; ok {
			return fmt.Sprintf("**%s**\n\n%s", doc.signature, doc.summary)
		}

	case parser.TokIdent:
		if r := arch.RegisterIndex(t.Text); r > -1 {
			return registerHover(r)
		}
		if isMnemonicToken(t) {
			if doc, ok := instructionDocs[mnemonicKey(t.Text)]; ok {
				return fmt.Sprintf("**%s**\n\n%s", doc.signature, doc.summary)
			}
		}
		if name, ok := d.symbolAt(line, col); ok {
			return d.labelHover(name)
		}
	}

	return ""
}

func (d *Document) labelHover(name string) string {
	sym, ok := d.unit.Symbols[name]
	if !ok {
		return fmt.Sprintf("**%s** (undefined)", name)
	}
	if !sym.Defined {
		return fmt.Sprintf("**%s** (external)", name)
	}
	return fmt.Sprintf("**%s** (%s)\n\nAddress: `%s`",
		sym.Name, d.kind(name), hexAddr(sym.Addr))
}

func registerHover(r int) string {
	switch r {
	case 6:
		return "**R6**\n\nGeneral purpose register; stack pointer by convention."
	case 7:
		return "**R7**\n\nGeneral purpose register; holds the return address for JSR, JSRR and TRAP."
	}
	return fmt.Sprintf("**R%d**\n\nGeneral purpose register.", r)
}

// Completions returns the full completion set at the given position:
// instruction keywords, directives, registers and all labels reported
// by Symbols.
func (d *Document) Completions(line, col int) []CompletionItem {
	var out []CompletionItem

	for _, name := range instructionOrder {
		out = append(out, CompletionItem{
			Label:  name,
			Kind:   CompletionKeyword,
			Detail: instructionDocs[name].signature,
		})
	}
	for _, name := range directiveOrder {
		out = append(out, CompletionItem{
			Label:  name,
			Kind:   CompletionDirective,
			Detail: directiveDocs[name].signature,
		})
	}
	for r := 0; r < arch.RegisterCount; r++ {
		out = append(out, CompletionItem{
			Label: arch.RegisterName(r),
			Kind:  CompletionRegister,
		})
	}

	for _, info := range d.Symbols() {
		detail := info.Kind.String()
		if info.Address != "" {
			detail = fmt.Sprintf("%s at %s", detail, info.Address)
		}
		out = append(out, CompletionItem{
			Label:  info.Name,
			Kind:   CompletionLabel,
			Detail: detail,
		})
	}

	return out
}

// Tokens returns semantic highlight tokens covering the source, in
// source order.
func (d *Document) Tokens() []SemanticToken {
	var out []SemanticToken

	for _, t := range d.tokens {
		var typ TokenType

		switch t.Kind {
		case parser.TokComment:
			typ = TokenComment
		case parser.TokString:
			typ = TokenString
		case parser.TokNumber:
			typ = TokenNumber
		case parser.TokComma:
			typ = TokenOperator
		case parser.TokDirective:
			typ = TokenDirective
		case parser.TokIdent:
			switch {
			case arch.IsRegister(t.Text):
				typ = TokenRegister
			case isMnemonicToken(t):
				typ = TokenKeyword
			case d.isDefinition(t):
				typ = TokenLabel
			default:
				typ = TokenLabelRef
			}
		default:
			continue
		}

		out = append(out, SemanticToken{
			Line:     t.Pos.Line,
			StartCol: t.Pos.Col,
			Length:   t.End.Offset - t.Pos.Offset,
			Type:     typ,
		})
	}

	return out
}

// isDefinition reports whether the identifier token is the defining
// occurrence of a symbol.
func (d *Document) isDefinition(t parser.Token) bool {
	sym, ok := d.unit.Symbols[upperName(t.Text)]
	return ok && sym.Pos.Offset == t.Pos.Offset
}
