package vm

import "github.com/hexaflex/lc3/arch"

// inPrompt is printed by the IN service routine before reading a
// character, matching the stock OS behavior.
const inPrompt = "\nInput a character> "

// trap dispatches a TRAP instruction. With an OS loaded, the vector is
// resolved through the trap table in memory per the ISA. In shortcut
// mode, known vectors run as built-in service routines that talk to
// the host event stream instead of executing handler code.
func (m *VM) trap(vector uint16) {
	m.regs[7] = m.pc

	if m.osMode {
		m.pc = m.read(arch.ZeroExtend(vector, 8))
		return
	}

	switch vector {
	case arch.TrapGETC:
		m.waiting = true
		m.emit(ReadChar{})

	case arch.TrapOUT:
		m.emit(Output{Char: m.regs[0] & 0xFF})

	case arch.TrapPUTS:
		m.emit(OutputString{Chars: m.readString(m.regs[0])})

	case arch.TrapIN:
		m.emit(OutputString{Chars: stringChars(inPrompt)})
		m.waiting = true
		m.emit(ReadChar{})

	case arch.TrapPUTSP:
		m.emit(OutputString{Chars: m.readPackedString(m.regs[0])})

	case arch.TrapHALT:
		m.mcr &^= 0x8000
		m.emit(Halt{})

	default:
		m.exception(arch.VecIllegal, "unimplemented trap vector x%02x", vector)
	}
}

// readString collects words starting at addr up to the zero
// terminator, one character per word.
func (m *VM) readString(addr uint16) []uint16 {
	var out []uint16
	for n := 0; n < 0x10000; n++ {
		word := m.read(addr)
		if word == 0 {
			break
		}
		out = append(out, word)
		addr++
	}
	return out
}

// readPackedString collects characters from words holding two bytes
// each, low byte first. A zero word terminates the string; a word
// whose low byte is zero ends it as well, emitting neither byte of
// that word.
func (m *VM) readPackedString(addr uint16) []uint16 {
	var out []uint16
	for n := 0; n < 0x10000; n++ {
		word := m.read(addr)
		if word&0xFF == 0 {
			break
		}
		out = append(out, word&0xFF)
		if word>>8 != 0 {
			out = append(out, word>>8)
		}
		addr++
	}
	return out
}

func stringChars(s string) []uint16 {
	out := make([]uint16, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = uint16(s[i])
	}
	return out
}
