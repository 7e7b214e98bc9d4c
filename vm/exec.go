package vm

import "github.com/hexaflex/lc3/arch"

// execute runs the fetch/decode/execute sequence for one instruction.
// Host-visible effects are queued through emit; a privilege violation
// or illegal opcode enters the corresponding exception and abandons
// the rest of the instruction.
func (m *VM) execute() {
	word, ok := m.loadChecked(m.pc)
	if !ok {
		return
	}
	m.pc++

	dr := int(word >> 9 & 0x7)
	sr := int(word >> 6 & 0x7)

	switch int(word >> 12) {
	case arch.ADD:
		m.setResult(dr, m.regs[sr]+m.aluSrc2(word))

	case arch.AND:
		m.setResult(dr, m.regs[sr]&m.aluSrc2(word))

	case arch.NOT:
		m.setResult(dr, ^m.regs[sr])

	case arch.BR:
		if word>>9&0x7&m.psr.Cond() != 0 {
			m.pc += arch.SignExtend(word, 9)
		}

	case arch.JMP:
		m.pc = m.regs[sr]

	case arch.JSR:
		ret := m.pc
		if word&0x0800 != 0 {
			m.pc += arch.SignExtend(word, 11)
		} else {
			m.pc = m.regs[sr]
		}
		m.regs[7] = ret

	case arch.LD:
		if v, ok := m.loadChecked(m.pc + arch.SignExtend(word, 9)); ok {
			m.setResult(dr, v)
		}

	case arch.LDI:
		ptr, ok := m.loadChecked(m.pc + arch.SignExtend(word, 9))
		if !ok {
			return
		}
		if v, ok := m.loadChecked(ptr); ok {
			m.setResult(dr, v)
		}

	case arch.LDR:
		if v, ok := m.loadChecked(m.regs[sr] + arch.SignExtend(word, 6)); ok {
			m.setResult(dr, v)
		}

	case arch.LEA:
		m.setResult(dr, m.pc+arch.SignExtend(word, 9))

	case arch.ST:
		m.storeChecked(m.pc+arch.SignExtend(word, 9), m.regs[dr])

	case arch.STI:
		if ptr, ok := m.loadChecked(m.pc + arch.SignExtend(word, 9)); ok {
			m.storeChecked(ptr, m.regs[dr])
		}

	case arch.STR:
		m.storeChecked(m.regs[sr]+arch.SignExtend(word, 6), m.regs[dr])

	case arch.TRAP:
		m.trap(word & 0xFF)

	case arch.RTI:
		m.rti()

	default:
		m.exception(arch.VecIllegal, "illegal opcode %04b at %04x", word>>12, m.pc-1)
	}
}

// aluSrc2 decodes the second ALU source: a register, or a
// sign-extended 5-bit immediate when bit 5 is set.
func (m *VM) aluSrc2(word uint16) uint16 {
	if word&0x20 != 0 {
		return arch.SignExtend(word, 5)
	}
	return m.regs[word&0x7]
}

// setResult writes a general purpose register and updates the
// condition codes from the stored value.
func (m *VM) setResult(dr int, v uint16) {
	m.regs[dr] = v
	m.psr = m.psr.SetCondFromValue(v)
}
