package asm

import (
	"github.com/hexaflex/lc3/arch"
	"github.com/hexaflex/lc3/asm/parser"
)

// encode is the second assembler pass. It walks the placed statements
// and emits one or more 16-bit words per statement into the owning
// segment, resolving label references against the symbol table built
// by the first pass.
func encode(u *Unit) {
	for i := range u.Statements {
		s := &u.Statements[i]
		p := u.Placements[i]
		if p.Segment < 0 || p.Size == 0 {
			continue
		}

		seg := &u.Segments[p.Segment]
		switch s.Op {
		case ".FILL":
			seg.Code = append(seg.Code, u.encodeFill(s))
		case ".BLKW":
			seg.Code = append(seg.Code, make([]uint16, p.Size)...)
		case ".STRINGZ":
			for _, r := range s.Operand(0).Str {
				seg.Code = append(seg.Code, uint16(r))
			}
			seg.Code = append(seg.Code, 0)
		default:
			seg.Code = append(seg.Code, u.encodeInstruction(s, p.Addr))
		}
	}
}

// encodeFill resolves a .FILL operand to its word value. External
// symbols encode as zero for the loader to patch.
func (u *Unit) encodeFill(s *parser.Statement) uint16 {
	op := s.Operand(0)

	if op.Kind == parser.Symbol {
		sym, ok := u.Symbols[op.Sym]
		if !ok {
			u.errorf(op.Pos, op.End, "undefined label %q", op.Sym)
			return 0
		}
		return sym.Addr
	}

	if op.Value < -0x8000 || op.Value > 0xFFFF {
		u.errorf(op.Pos, op.End, ".FILL value %s does not fit in a word", op.Text)
		return 0
	}
	return uint16(op.Value)
}

// encodeInstruction produces the word for a single instruction
// statement at the given address.
func (u *Unit) encodeInstruction(s *parser.Statement, addr uint16) uint16 {
	opcode, cond, _, _ := arch.Mnemonic(s.Op)
	word := uint16(opcode) << 12

	switch s.Op {
	case "ADD", "AND":
		word |= reg(s, 0) << 9
		word |= reg(s, 1) << 6
		if src2 := s.Operand(2); src2.Kind == parser.Register {
			word |= uint16(src2.Reg)
		} else {
			word |= 1 << 5
			word |= u.immediate(src2, 5)
		}

	case "NOT":
		word |= reg(s, 0) << 9
		word |= reg(s, 1) << 6
		word |= 0x3F

	case "JMP":
		word |= reg(s, 0) << 6

	case "RET":
		word |= 7 << 6

	case "JSR":
		word |= 1 << 11
		word |= u.pcOffset(s.Operand(0), addr, 11)

	case "JSRR":
		word |= reg(s, 0) << 6

	case "LD", "LDI", "LEA", "ST", "STI":
		word |= reg(s, 0) << 9
		word |= u.pcOffset(s.Operand(1), addr, 9)

	case "LDR", "STR":
		word |= reg(s, 0) << 9
		word |= reg(s, 1) << 6
		word |= u.immediate(s.Operand(2), 6)

	case "RTI":
		// Opcode only.

	case "TRAP":
		op := s.Operand(0)
		if op.Value < 0 || op.Value > 0xFF {
			u.errorf(op.Pos, op.End, "trap vector %s is out of range (x00 to xFF)", op.Text)
			break
		}
		word |= uint16(op.Value)

	default:
		if cond != 0 { // BR variants
			word |= cond << 9
			word |= u.pcOffset(s.Operand(0), addr, 9)
			break
		}
		if vector, ok := arch.TrapVector(s.Op); ok {
			word |= vector
		}
	}

	return word
}

// immediate range-checks a signed immediate operand against the given
// field width and returns its masked encoding.
func (u *Unit) immediate(op *parser.Operand, bits int) uint16 {
	min := -(1 << (bits - 1))
	max := 1<<(bits-1) - 1

	if op.Value < int64(min) || op.Value > int64(max) {
		u.errorf(op.Pos, op.End, "immediate value %s is out of range (%d to %d)",
			op.Text, min, max)
		return 0
	}
	return uint16(op.Value) & (1<<bits - 1)
}

// pcOffset resolves a label reference to a PC-relative offset from
// addr+1 and range-checks it against the given field width.
func (u *Unit) pcOffset(op *parser.Operand, addr uint16, bits int) uint16 {
	sym, ok := u.Symbols[op.Sym]
	if !ok {
		u.errorf(op.Pos, op.End, "undefined label %q", op.Sym)
		return 0
	}
	if !sym.Defined {
		u.errorf(op.Pos, op.End,
			"external symbol %q cannot be used as a PC-relative target", op.Sym)
		return 0
	}

	offset := int(sym.Addr) - (int(addr) + 1)
	min := -(1 << (bits - 1))
	max := 1<<(bits-1) - 1

	if offset < min || offset > max {
		u.errorf(op.Pos, op.End, "offset to %q is out of range (%d to %d)",
			op.Sym, min, max)
		return 0
	}
	return uint16(offset) & (1<<bits - 1)
}

func reg(s *parser.Statement, i int) uint16 {
	return uint16(s.Operand(i).Reg)
}
