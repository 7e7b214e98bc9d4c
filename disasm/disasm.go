// Package disasm converts 16-bit LC-3 machine words back into
// human-readable assembly mnemonics.
package disasm

import (
	"fmt"

	"github.com/hexaflex/lc3/arch"
)

// SymbolTable maps addresses to label names. PC-relative operands that
// resolve to a mapped address render as the label instead of hex.
type SymbolTable map[uint16]string

// Decode disassembles a single instruction word. pc is the address of
// the word plus one, matching the incremented PC the offset fields are
// relative to. Words that do not decode to a legal instruction render
// as ".FILL xNNNN".
func Decode(word, pc uint16, symbols SymbolTable) string {
	dr := word >> 9 & 0x7
	sr := word >> 6 & 0x7

	switch int(word >> 12) {
	case arch.ADD:
		return alu("ADD", word)

	case arch.AND:
		return alu("AND", word)

	case arch.NOT:
		return fmt.Sprintf("NOT R%d, R%d", dr, sr)

	case arch.BR:
		var cond string
		if word&0x0800 != 0 {
			cond += "n"
		}
		if word&0x0400 != 0 {
			cond += "z"
		}
		if word&0x0200 != 0 {
			cond += "p"
		}
		if cond == "nzp" {
			cond = ""
		}
		return fmt.Sprintf("BR%s %s", cond, target(pc, word, 9, symbols))

	case arch.JMP:
		if sr == 7 {
			return "RET"
		}
		return fmt.Sprintf("JMP R%d", sr)

	case arch.JSR:
		if word&0x0800 != 0 {
			return fmt.Sprintf("JSR %s", target(pc, word, 11, symbols))
		}
		return fmt.Sprintf("JSRR R%d", sr)

	case arch.LD:
		return fmt.Sprintf("LD R%d, %s", dr, target(pc, word, 9, symbols))

	case arch.LDI:
		return fmt.Sprintf("LDI R%d, %s", dr, target(pc, word, 9, symbols))

	case arch.LDR:
		return fmt.Sprintf("LDR R%d, R%d, %s", dr, sr, immediate(word, 6))

	case arch.LEA:
		return fmt.Sprintf("LEA R%d, %s", dr, target(pc, word, 9, symbols))

	case arch.ST:
		return fmt.Sprintf("ST R%d, %s", dr, target(pc, word, 9, symbols))

	case arch.STI:
		return fmt.Sprintf("STI R%d, %s", dr, target(pc, word, 9, symbols))

	case arch.STR:
		return fmt.Sprintf("STR R%d, R%d, %s", dr, sr, immediate(word, 6))

	case arch.TRAP:
		vector := word & 0xFF
		if name, ok := arch.TrapName(vector); ok {
			return name
		}
		return fmt.Sprintf("TRAP x%02X", vector)

	case arch.RTI:
		return "RTI"
	}

	return fmt.Sprintf(".FILL x%04X", word)
}

// Disassemble decodes a contiguous memory slice loaded at base.
// It returns one mnemonic string per word.
func Disassemble(words []uint16, base uint16, symbols SymbolTable) []string {
	out := make([]string, len(words))
	for i, word := range words {
		pc := base + uint16(i) + 1
		out[i] = Decode(word, pc, symbols)
	}
	return out
}

// alu renders the shared ADD/AND operand shape.
func alu(name string, word uint16) string {
	dr := word >> 9 & 0x7
	sr1 := word >> 6 & 0x7
	if word&0x20 != 0 {
		return fmt.Sprintf("%s R%d, R%d, %s", name, dr, sr1, immediate(word, 5))
	}
	return fmt.Sprintf("%s R%d, R%d, R%d", name, dr, sr1, word&0x7)
}

// immediate renders a sign-extended immediate field.
func immediate(word uint16, bits int) string {
	v := arch.SignExtend(word, bits)
	return fmt.Sprintf("#%d", int16(v))
}

// target renders a PC-relative target address, preferring a label from
// the symbol table.
func target(pc, word uint16, bits int, symbols SymbolTable) string {
	addr := pc + arch.SignExtend(word, bits)
	if name, ok := symbols[addr]; ok {
		return name
	}
	return fmt.Sprintf("x%04X", addr)
}
