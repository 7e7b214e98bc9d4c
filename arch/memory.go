package arch

// Memory layout boundaries.
const (
	TrapTable   uint16 = 0x0000 // trap vector table
	VectorTable uint16 = 0x0100 // exception and interrupt vector table
	UserSpace   uint16 = 0x3000 // first unprivileged address; default origin
	DeviceSpace uint16 = 0xFE00 // start of the memory mapped device region
)

// Memory mapped device registers.
const (
	KBSR uint16 = 0xFE00 // keyboard status: bit 15 ready, bit 14 interrupt enable
	KBDR uint16 = 0xFE02 // keyboard data
	DSR  uint16 = 0xFE04 // display status: bit 15 ready
	DDR  uint16 = 0xFE06 // display data
	MCR  uint16 = 0xFFFE // machine control: bit 15 is the clock enable
)

// Exception and interrupt vector numbers, resolved through VectorTable.
const (
	VecPrivilege uint16 = 0x00 // privilege mode violation
	VecIllegal   uint16 = 0x01 // illegal opcode
	VecKeyboard  uint16 = 0x80 // keyboard interrupt
)

// KeyboardPriority is the priority level at which the keyboard
// interrupt is requested.
const KeyboardPriority = 4

// Trap vectors with built-in service routines.
const (
	TrapGETC  uint16 = 0x20
	TrapOUT   uint16 = 0x21
	TrapPUTS  uint16 = 0x22
	TrapIN    uint16 = 0x23
	TrapPUTSP uint16 = 0x24
	TrapHALT  uint16 = 0x25
)

// TrapName returns the pseudonym mnemonic for a trap vector.
// Returns false if the vector has no pseudonym.
func TrapName(vector uint16) (string, bool) {
	switch vector {
	case TrapGETC:
		return "GETC", true
	case TrapOUT:
		return "OUT", true
	case TrapPUTS:
		return "PUTS", true
	case TrapIN:
		return "IN", true
	case TrapPUTSP:
		return "PUTSP", true
	case TrapHALT:
		return "HALT", true
	}
	return "", false
}

// TrapVector returns the vector for a trap pseudonym mnemonic.
// Returns false if name is not a pseudonym.
func TrapVector(name string) (uint16, bool) {
	switch name {
	case "GETC":
		return TrapGETC, true
	case "OUT":
		return TrapOUT, true
	case "PUTS":
		return TrapPUTS, true
	case "IN":
		return TrapIN, true
	case "PUTSP":
		return TrapPUTSP, true
	case "HALT":
		return TrapHALT, true
	}
	return 0, false
}
