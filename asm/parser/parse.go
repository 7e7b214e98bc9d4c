// Package parser implements tokenizing and parsing of LC-3 assembly
// source into a flat statement list with source positions.
package parser

import (
	"strings"

	"github.com/hexaflex/lc3/arch"
)

// Parse scans and parses LC-3 assembly source. It returns the
// statement list in source order together with all scan and parse
// errors. Parsing continues after an error by resynchronizing at the
// next line, so the statement list is as complete as the input allows.
func Parse(filename, source string) ([]Statement, []*Error) {
	tokens, errors := Tokenize(filename, source)

	p := parse{tokens: tokens, errors: errors}
	p.run()
	return p.statements, p.errors
}

// parse holds parser state.
type parse struct {
	tokens     []Token
	index      int
	statements []Statement
	errors     []*Error
}

func (p *parse) run() {
	for !p.atEOF() {
		if !p.parseLine() {
			p.syncLine()
		}
	}
}

// parseLine consumes one source line. Returns false if the line could
// not be parsed and the parser should resynchronize.
func (p *parse) parseLine() bool {
	p.skipTrivia()
	if p.atEOF() {
		return true
	}
	if p.peek().Kind == TokNewline {
		p.next()
		return true
	}

	var s Statement
	s.Pos = p.peek().Pos

	// Optional leading label: an identifier that is neither a
	// mnemonic nor a register.
	if t := p.peek(); t.Kind == TokIdent && !arch.IsReserved(t.Text) {
		p.next()
		s.Label = strings.ToUpper(t.Text)
		s.LabelPos, s.LabelEnd = t.Pos, t.End
		s.End = t.End
	}

	p.skipTrivia()

	// Optional mnemonic or directive.
	if !p.atEOF() && p.peek().Kind != TokNewline {
		t := p.next()
		switch t.Kind {
		case TokIdent:
			if !arch.IsMnemonic(t.Text) {
				p.error(t, "unknown instruction %q", t.Text)
				return false
			}
			s.Op = strings.ToUpper(t.Text)
		case TokDirective:
			if _, ok := arch.Directive(t.Text); !ok {
				p.error(t, "unknown directive %q", t.Text)
				return false
			}
			s.Op = strings.ToUpper(t.Text)
		default:
			p.error(t, "expected instruction or directive, found %s", t.Kind)
			return false
		}
		s.OpPos, s.OpEnd = t.Pos, t.End
		s.End = t.End

		if !p.parseOperands(&s) {
			return false
		}
		if !p.checkOperands(&s) {
			// Keep the label so later passes still see its
			// definition; drop the malformed operation.
			if s.Label == "" {
				return true
			}
			s.Op = ""
			s.Operands = nil
		}
	}

	if s.Label == "" && s.Op == "" {
		t := p.next()
		p.error(t, "expected label, instruction or directive, found %s", t.Kind)
		return false
	}

	p.statements = append(p.statements, s)
	return true
}

// parseOperands consumes operands up to the end of the line.
// The comma between operands is optional, matching common LC-3
// assembler behavior.
func (p *parse) parseOperands(s *Statement) bool {
	for {
		p.skipTrivia()
		if p.atEOF() || p.peek().Kind == TokNewline {
			return true
		}

		t := p.next()
		switch t.Kind {
		case TokComma:
			continue
		case TokNumber:
			v, _ := ParseNumber(t.Text)
			s.Operands = append(s.Operands, Operand{
				Kind: Immediate, Pos: t.Pos, End: t.End, Text: t.Text, Value: v,
			})
		case TokString:
			s.Operands = append(s.Operands, Operand{
				Kind: String, Pos: t.Pos, End: t.End, Text: t.Text, Str: Unquote(t.Text),
			})
		case TokIdent:
			op := Operand{Pos: t.Pos, End: t.End, Text: t.Text}
			if r := arch.RegisterIndex(t.Text); r > -1 {
				op.Kind = Register
				op.Reg = r
			} else {
				op.Kind = Symbol
				op.Sym = strings.ToUpper(t.Text)
			}
			s.Operands = append(s.Operands, op)
		default:
			p.error(t, "unexpected %s in operand list", t.Kind)
			return false
		}
		s.End = t.End
	}
}

// checkOperands verifies operand count and kinds against the
// signature of the statement's mnemonic or directive.
func (p *parse) checkOperands(s *Statement) bool {
	var want string
	if s.IsDirective() {
		want, _ = arch.Directive(s.Op)
	} else {
		_, _, want, _ = arch.Mnemonic(s.Op)
	}

	if len(s.Operands) != len(want) {
		p.errorAt(s.OpPos, s.End, "%s expects %d operands, found %d",
			s.Op, len(want), len(s.Operands))
		return false
	}

	for i, op := range s.Operands {
		if operandMatches(s.Op, want[i], op.Kind) {
			continue
		}
		p.errorAt(op.Pos, op.End, "operand %d of %s must be a %s, found %s",
			i+1, s.Op, kindName(want[i]), op.Kind)
		return false
	}
	return true
}

// operandMatches reports whether an operand kind satisfies a signature
// byte. .FILL additionally accepts a label reference in place of its
// immediate.
func operandMatches(op string, want byte, have OperandKind) bool {
	switch want {
	case arch.OperandRegister:
		return have == Register
	case arch.OperandImmediate:
		if op == ".FILL" && have == Symbol {
			return true
		}
		return have == Immediate
	case arch.OperandSymbol:
		return have == Symbol
	case arch.OperandString:
		return have == String
	case arch.OperandRegOrImm:
		return have == Register || have == Immediate
	}
	return false
}

func kindName(want byte) string {
	switch want {
	case arch.OperandRegister:
		return "register"
	case arch.OperandImmediate:
		return "number"
	case arch.OperandSymbol:
		return "label"
	case arch.OperandString:
		return "string"
	case arch.OperandRegOrImm:
		return "register or number"
	}
	return "operand"
}

// skipTrivia consumes comments and illegal tokens. Scan errors for
// illegal tokens were already recorded by the tokenizer.
func (p *parse) skipTrivia() {
	for !p.atEOF() {
		switch p.peek().Kind {
		case TokComment, TokIllegal:
			p.next()
		default:
			return
		}
	}
}

// syncLine discards tokens through the next newline.
func (p *parse) syncLine() {
	for !p.atEOF() {
		if p.next().Kind == TokNewline {
			return
		}
	}
}

func (p *parse) atEOF() bool {
	return p.index >= len(p.tokens)
}

func (p *parse) peek() Token {
	return p.tokens[p.index]
}

func (p *parse) next() Token {
	t := p.tokens[p.index]
	p.index++
	return t
}

func (p *parse) error(t Token, f string, argv ...interface{}) {
	p.errors = append(p.errors, NewError(t.Pos, t.End, f, argv...))
}

func (p *parse) errorAt(pos, end Position, f string, argv ...interface{}) {
	p.errors = append(p.errors, NewError(pos, end, f, argv...))
}
