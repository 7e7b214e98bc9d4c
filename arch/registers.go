package arch

// RegisterCount is the number of general purpose registers.
const RegisterCount = 8

// IsRegister returns true if the given name represents a known register.
func IsRegister(name string) bool {
	return RegisterIndex(name) > -1
}

// RegisterIndex returns the index for the given register name (R0-R7,
// case-insensitive). Returns -1 if the name is not recognized.
func RegisterIndex(name string) int {
	if len(name) != 2 {
		return -1
	}
	if name[0] != 'r' && name[0] != 'R' {
		return -1
	}
	if name[1] < '0' || name[1] > '7' {
		return -1
	}
	return int(name[1] - '0')
}

// RegisterName returns the name associated with the given register index.
// Returns "" if the index is not recognized.
func RegisterName(n int) string {
	if n < 0 || n >= RegisterCount {
		return ""
	}
	return "R" + string(rune('0'+n))
}

// IsReserved returns true if name may not be used as a label because it
// collides with a mnemonic or register name.
func IsReserved(name string) bool {
	return IsRegister(name) || IsMnemonic(name)
}
