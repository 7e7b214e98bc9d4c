package vm

import (
	"fmt"

	"github.com/hexaflex/lc3/arch"
)

// read routes a memory read through the device dispatcher.
func (m *VM) read(addr uint16) uint16 {
	switch addr {
	case arch.KBSR:
		var v uint16
		if m.keyReady {
			v |= 0x8000
		}
		if m.keyIntEna {
			v |= 0x4000
		}
		// Polling an empty keyboard under an OS surfaces the
		// suspension to the host, which supplies the character the
		// next poll will see.
		if !m.keyReady && m.osMode {
			m.emit(ReadChar{})
		}
		return v

	case arch.KBDR:
		// Consuming the character clears the ready latch.
		m.keyReady = false
		return m.keyData

	case arch.DSR:
		// The display accepts a character every cycle.
		return 0x8000

	case arch.DDR:
		return 0

	case arch.MCR:
		return m.mcr
	}

	return m.mem[addr]
}

// write routes a memory write through the device dispatcher.
func (m *VM) write(addr, v uint16) {
	switch addr {
	case arch.KBSR:
		// Only the interrupt-enable bit is writable.
		m.keyIntEna = v&0x4000 != 0
		return

	case arch.KBDR, arch.DSR:
		return

	case arch.DDR:
		m.emit(Output{Char: v & 0xFF})
		return

	case arch.MCR:
		m.mcr = v
		if v&0x8000 == 0 {
			m.emit(Halt{})
		}
		return
	}

	m.mem[addr] = v
}

// checkAccess verifies that the current privilege mode may touch addr.
// On a violation it enters the privilege exception and returns false;
// the caller must abandon the instruction.
func (m *VM) checkAccess(addr uint16) bool {
	if m.psr.User() && addr < arch.UserSpace {
		m.exception(arch.VecPrivilege,
			"privilege violation: user mode access to %04x", addr)
		return false
	}
	return true
}

// loadChecked reads addr subject to the privilege check.
func (m *VM) loadChecked(addr uint16) (uint16, bool) {
	if !m.checkAccess(addr) {
		return 0, false
	}
	return m.read(addr), true
}

// storeChecked writes addr subject to the privilege check.
func (m *VM) storeChecked(addr, v uint16) bool {
	if !m.checkAccess(addr) {
		return false
	}
	m.write(addr, v)
	return true
}

// push stores a word on the supervisor stack, bypassing the privilege
// check: pushes only happen during exception entry, after the switch
// to the supervisor stack pointer.
func (m *VM) push(v uint16) {
	m.regs[6]--
	m.mem[m.regs[6]] = v
}

// pop removes the top word from the supervisor stack.
func (m *VM) pop() uint16 {
	v := m.mem[m.regs[6]]
	m.regs[6]++
	return v
}

// exception reports a runtime fault to the host and transfers control
// through the vector table, preserving the current priority level.
func (m *VM) exception(vector uint16, f string, argv ...interface{}) {
	m.emit(Error{Msg: fmt.Sprintf(f, argv...)})
	m.enter(vector, m.psr.Priority())
}

// interrupt transfers control through the vector table at the given
// priority level.
func (m *VM) interrupt(vector uint16, priority int) {
	m.enter(vector, priority)
}

// enter performs the exception/interrupt entry sequence: switch to the
// supervisor stack, push PSR then PC, drop to supervisor mode at the
// given priority and fetch the handler address from the vector table.
func (m *VM) enter(vector uint16, priority int) {
	if m.psr.User() {
		m.savedUSP = m.regs[6]
		m.regs[6] = m.savedSSP
	}

	m.push(uint16(m.psr))
	m.push(m.pc)

	m.psr = m.psr.SetUser(false).SetPriority(priority)
	m.pc = m.mem[arch.VectorTable|vector]
}

// rti reverses the entry sequence: pop PC and PSR and, when the
// restored status selects user mode, switch back to the user stack.
func (m *VM) rti() {
	if m.psr.User() {
		m.exception(arch.VecPrivilege, "privilege violation: RTI in user mode")
		return
	}

	m.pc = m.pop()
	m.psr = arch.PSR(m.pop())

	if m.psr.User() {
		m.savedSSP = m.regs[6]
		m.regs[6] = m.savedUSP
	}
}
