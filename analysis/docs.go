package analysis

import "strings"

// instrDoc documents one instruction or directive for hovers and
// completions.
type instrDoc struct {
	signature string
	summary   string
}

var instructionDocs = map[string]instrDoc{
	"ADD":   {"ADD DR, SR1, SR2 | ADD DR, SR1, imm5", "Add: DR = SR1 + SR2 or DR = SR1 + imm5. Sets condition codes."},
	"AND":   {"AND DR, SR1, SR2 | AND DR, SR1, imm5", "Bitwise AND: DR = SR1 & SR2 or DR = SR1 & imm5. Sets condition codes."},
	"NOT":   {"NOT DR, SR", "Bitwise complement: DR = ~SR. Sets condition codes."},
	"BR":    {"BR[n][z][p] LABEL", "Branch to LABEL when any listed condition code is set. A bare BR branches always."},
	"JMP":   {"JMP BaseR", "Jump to the address in BaseR."},
	"RET":   {"RET", "Return from subroutine (JMP R7)."},
	"JSR":   {"JSR LABEL", "Jump to subroutine: R7 = PC, then PC-relative jump to LABEL."},
	"JSRR":  {"JSRR BaseR", "Jump to subroutine at the address in BaseR; R7 = PC."},
	"LD":    {"LD DR, LABEL", "Load: DR = mem[LABEL]. Sets condition codes."},
	"LDI":   {"LDI DR, LABEL", "Load indirect: DR = mem[mem[LABEL]]. Sets condition codes."},
	"LDR":   {"LDR DR, BaseR, offset6", "Load base+offset: DR = mem[BaseR + offset6]. Sets condition codes."},
	"LEA":   {"LEA DR, LABEL", "Load effective address: DR = address of LABEL. Sets condition codes."},
	"ST":    {"ST SR, LABEL", "Store: mem[LABEL] = SR."},
	"STI":   {"STI SR, LABEL", "Store indirect: mem[mem[LABEL]] = SR."},
	"STR":   {"STR SR, BaseR, offset6", "Store base+offset: mem[BaseR + offset6] = SR."},
	"TRAP":  {"TRAP trapvect8", "Call the service routine at the given trap vector; R7 = PC."},
	"GETC":  {"GETC", "Read a character into R0 (TRAP x20)."},
	"OUT":   {"OUT", "Write the character in R0 to the display (TRAP x21)."},
	"PUTS":  {"PUTS", "Write the zero-terminated string at mem[R0] to the display (TRAP x22)."},
	"IN":    {"IN", "Prompt for and read a character into R0 (TRAP x23)."},
	"PUTSP": {"PUTSP", "Write the packed zero-terminated string at mem[R0] to the display (TRAP x24)."},
	"HALT":  {"HALT", "Stop execution (TRAP x25)."},
	"RTI":   {"RTI", "Return from interrupt: pop PC and PSR from the supervisor stack. Privileged."},
}

// instructionOrder fixes the completion ordering.
var instructionOrder = []string{
	"ADD", "AND", "NOT",
	"LD", "LDI", "LDR", "LEA", "ST", "STI", "STR",
	"BR", "JMP", "RET", "JSR", "JSRR", "RTI",
	"TRAP", "GETC", "OUT", "PUTS", "IN", "PUTSP", "HALT",
}

var directiveDocs = map[string]instrDoc{
	".ORIG":     {".ORIG address", "Start a segment at the given load address."},
	".END":      {".END", "Close the current segment."},
	".FILL":     {".FILL value", "Allocate one word holding the given value or label address."},
	".BLKW":     {".BLKW count", "Allocate count zeroed words."},
	".STRINGZ":  {`.STRINGZ "text"`, "Allocate a zero-terminated string, one word per character."},
	".EXTERNAL": {".EXTERNAL LABEL", "Declare a label resolved outside this unit."},
	".GLOBAL":   {".GLOBAL LABEL", "Export a label for use by other units."},
}

var directiveOrder = []string{
	".ORIG", ".END", ".FILL", ".BLKW", ".STRINGZ", ".EXTERNAL", ".GLOBAL",
}

// upperName canonicalizes an identifier or directive for table lookup.
func upperName(s string) string {
	return strings.ToUpper(s)
}

// mnemonicKey maps a mnemonic to its documentation key; all BR
// condition variants share the BR entry.
func mnemonicKey(s string) string {
	key := upperName(s)
	if strings.HasPrefix(key, "BR") {
		return "BR"
	}
	return key
}
