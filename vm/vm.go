// Package vm implements the LC-3 virtual machine: 64K words of
// memory, eight general purpose registers, the packed processor
// status register, memory mapped keyboard and display devices and a
// step/run execution surface that yields tagged events to the host.
package vm

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/hexaflex/lc3/arch"
	"github.com/hexaflex/lc3/asm/obj"
)

// VM holds the complete machine state. The zero value is not ready
// for use; create instances with New.
type VM struct {
	mem  [0x10000]uint16
	regs [arch.RegisterCount]uint16
	pc   uint16
	psr  arch.PSR
	mcr  uint16

	// The stack pointer of the inactive privilege mode. R6 always
	// holds the stack for the current mode.
	savedSSP uint16
	savedUSP uint16

	// Keyboard latches live outside the memory array so host input
	// can set them without touching backing storage.
	keyReady  bool
	keyIntEna bool
	keyData   uint16

	osMode  bool    // Dispatch traps through the vector table in memory?
	waiting bool    // Stalled on character input?
	pending []Event // Events produced but not yet returned.
}

// New constructs a machine in reset state.
func New() *VM {
	m := &VM{}
	m.Reset()
	return m
}

// Reset returns the machine to its power-on state: zeroed memory and
// registers, PC at the default origin, supervisor mode with Z set and
// the clock enabled.
func (m *VM) Reset() {
	m.mem = [0x10000]uint16{}
	m.regs = [arch.RegisterCount]uint16{}
	m.pc = arch.UserSpace
	m.psr = arch.PSRInit
	m.mcr = 0x8000

	// The supervisor stack grows down from the top of system space;
	// the user stack from the top of user space.
	m.regs[6] = arch.UserSpace
	m.savedSSP = arch.UserSpace
	m.savedUSP = arch.DeviceSpace

	m.keyReady = false
	m.keyIntEna = false
	m.keyData = 0
	m.osMode = false
	m.waiting = false
	m.pending = nil
}

// Load copies a block of words into memory at origin and points the
// PC at it. Returns an error if the block does not fit.
func (m *VM) Load(origin uint16, words []uint16) error {
	if len(words) > 0x10000-int(origin) {
		return errors.Errorf("vm: program of %d words does not fit at %04x", len(words), origin)
	}
	copy(m.mem[origin:], words)
	m.pc = origin
	return nil
}

// LoadBytes interprets data as an object image (big-endian words,
// origin first) and loads it.
func (m *VM) LoadBytes(data []byte) error {
	img := obj.New()
	if err := img.Load(bytes.NewReader(data)); err != nil {
		return errors.Wrap(err, "vm")
	}
	for _, s := range img.Segments {
		if err := m.Load(s.Origin, s.Code); err != nil {
			return err
		}
	}
	return nil
}

// LoadOSBytes installs an operating system image without moving the
// PC. It does not switch trap dispatch; see SetOSMode.
func (m *VM) LoadOSBytes(data []byte) error {
	pc := m.pc
	err := m.LoadBytes(data)
	m.pc = pc
	return err
}

// SetOSMode selects how TRAP instructions execute. With an OS loaded,
// traps follow the ISA semantics through the trap vector table; in
// shortcut mode the machine maps known vectors onto built-in service
// routines that talk to the host event stream directly.
func (m *VM) SetOSMode(enabled bool) {
	m.osMode = enabled
}

// PatchOSUserPC overwrites the OS image's saved user PC word so its
// startup sequence transfers control to the given origin. The slot
// location matches the stock LC-3 OS image.
func (m *VM) PatchOSUserPC(origin uint16) {
	m.mem[0x020A] = origin
}

// SetInput hands the machine one input character. It satisfies a
// pending ReadChar suspension and latches the keyboard device; if the
// keyboard interrupt is armed and the current priority allows it, the
// interrupt is taken before the next instruction.
func (m *VM) SetInput(c byte) {
	m.keyData = uint16(c)
	m.keyReady = true

	if m.waiting {
		// Shortcut GETC consumes the character immediately.
		m.regs[0] = uint16(c)
		m.waiting = false
		m.keyReady = false
		return
	}

	if m.keyIntEna && m.psr.Priority() < arch.KeyboardPriority {
		m.interrupt(arch.VecKeyboard, arch.KeyboardPriority)
	}
}

// Step executes exactly one instruction, or returns a previously
// queued event without executing anything. A nil result means the
// instruction completed silently.
func (m *VM) Step() Event {
	if ev := m.popPending(); ev != nil {
		return ev
	}
	if m.waiting {
		return ReadChar{}
	}
	if m.mcr&0x8000 == 0 {
		return Halt{}
	}

	m.execute()
	return m.popPending()
}

// Run executes instructions back to back and returns on the first
// host-visible event.
func (m *VM) Run() Event {
	for {
		if ev := m.Step(); ev != nil {
			return ev
		}
	}
}

// Accessors over the machine surface.

func (m *VM) PC() uint16         { return m.pc }
func (m *VM) SetPC(pc uint16)    { m.pc = pc }
func (m *VM) PSR() uint16        { return uint16(m.psr) }
func (m *VM) MCR() uint16        { return m.mcr }
func (m *VM) N() bool            { return m.psr.N() }
func (m *VM) Z() bool            { return m.psr.Z() }
func (m *VM) P() bool            { return m.psr.P() }
func (m *VM) CondString() string { return m.psr.CondString() }

// Reg returns the value of general purpose register r.
func (m *VM) Reg(r int) uint16 {
	return m.regs[r&7]
}

// SetReg replaces the value of general purpose register r.
func (m *VM) SetReg(r int, v uint16) {
	m.regs[r&7] = v
}

// Regs returns a snapshot of all general purpose registers.
func (m *VM) Regs() [arch.RegisterCount]uint16 {
	return m.regs
}

// Mem returns the backing word at addr, bypassing device dispatch.
func (m *VM) Mem(addr uint16) uint16 {
	return m.mem[addr]
}

// SetMem replaces the backing word at addr, bypassing device dispatch.
func (m *VM) SetMem(addr, v uint16) {
	m.mem[addr] = v
}

// MemSlice copies n words of backing memory starting at addr. The
// slice is clamped at the end of the address space.
func (m *VM) MemSlice(addr uint16, n int) []uint16 {
	end := int(addr) + n
	if end > 0x10000 {
		end = 0x10000
	}
	out := make([]uint16, end-int(addr))
	copy(out, m.mem[addr:end])
	return out
}

// emit queues an event for the host.
func (m *VM) emit(ev Event) {
	m.pending = append(m.pending, ev)
}

func (m *VM) popPending() Event {
	if len(m.pending) == 0 {
		return nil
	}
	ev := m.pending[0]
	m.pending = m.pending[1:]
	return ev
}
