package asm

import (
	"strings"
	"testing"
)

// build assembles source and returns the single segment's words.
func build(t *testing.T, source string) []uint16 {
	t.Helper()

	img, err := Build("test.asm", source)
	if err != nil {
		t.Fatal(err)
	}
	if len(img.Segments) != 1 {
		t.Fatalf("expected 1 segment; have %d", len(img.Segments))
	}
	return img.Segments[0].Code
}

// buildError assembles source expecting failure and returns the first
// error message.
func buildError(t *testing.T, source string) string {
	t.Helper()

	_, err := Build("test.asm", source)
	if err == nil {
		t.Fatal("expected build error")
	}
	return err.Error()
}

func TestSimpleProgram(t *testing.T) {
	code := build(t, ".ORIG x3000\nADD R0, R1, R2\nHALT\n.END")

	want := []uint16{0x1042, 0xF025}
	if len(code) != len(want) {
		t.Fatalf("expected %d words; have %d", len(want), len(code))
	}
	for i, w := range want {
		if code[i] != w {
			t.Fatalf("word %d: expected %04x; have %04x", i, w, code[i])
		}
	}
}

func TestEncodings(t *testing.T) {
	tests := []struct {
		source string
		want   uint16
	}{
		{"ADD R0, R0, #1", 0x1021},
		{"ADD R0, R1, R2", 0x1042},
		{"ADD R0, R0, #-16", 0x1030},
		{"AND R0, R1, #0", 0x5060},
		{"AND R0, R1, R2", 0x5042},
		{"NOT R0, R1", 0x907F},
		{"JMP R3", 0xC0C0},
		{"RET", 0xC1C0},
		{"JSRR R2", 0x4080},
		{"LDR R2, R3, #5", 0x64C5},
		{"STR R2, R3, #-1", 0x74FF},
		{"TRAP x23", 0xF023},
		{"GETC", 0xF020},
		{"OUT", 0xF021},
		{"PUTS", 0xF022},
		{"IN", 0xF023},
		{"PUTSP", 0xF024},
		{"HALT", 0xF025},
		{"RTI", 0x8000},
	}

	for _, tc := range tests {
		code := build(t, ".ORIG x3000\n"+tc.source+"\n.END")
		if code[0] != tc.want {
			t.Fatalf("%q: expected %04x; have %04x", tc.source, tc.want, code[0])
		}
	}
}

func TestBranchEncoding(t *testing.T) {
	code := build(t, ".ORIG x3000\nLOOP ADD R0, R0, #1\nBRz LOOP\nBR LOOP\n.END")

	// BRz at x3001: offset = x3000 - x3002 = -2.
	if code[1] != 0x05FE {
		t.Fatalf("BRz: expected 05FE; have %04x", code[1])
	}
	// Bare BR sets all three condition bits.
	if code[2] != 0x0FFD {
		t.Fatalf("BR: expected 0FFD; have %04x", code[2])
	}
}

func TestJSREncoding(t *testing.T) {
	code := build(t, ".ORIG x3000\nJSR SUB\nHALT\nSUB RET\n.END")

	// SUB at x3002; offset = x3002 - x3001 = 1.
	if code[0] != 0x4801 {
		t.Fatalf("JSR: expected 4801; have %04x", code[0])
	}
}

func TestPCOffsetBoundary(t *testing.T) {
	// FAR sits exactly 255 words past PC+1: offset 255 encodes.
	src := ".ORIG x3000\nLD R0, FAR\n.BLKW 255\nFAR .FILL #1\n.END"
	code := build(t, src)
	if code[0] != 0x20FF {
		t.Fatalf("LD: expected 20FF; have %04x", code[0])
	}

	// One word further is out of range.
	src = ".ORIG x3000\nLD R0, FAR\n.BLKW 256\nFAR .FILL #1\n.END"
	msg := buildError(t, src)
	if !strings.Contains(msg, "out of range") {
		t.Fatalf("unexpected error: %s", msg)
	}
}

func TestImmediateBoundary(t *testing.T) {
	build(t, ".ORIG x3000\nADD R0, R0, #-16\nADD R0, R0, #15\n.END")

	for _, src := range []string{"ADD R0, R0, #-17", "ADD R0, R0, #16"} {
		msg := buildError(t, ".ORIG x3000\n"+src+"\n.END")
		if !strings.Contains(msg, "out of range") {
			t.Fatalf("%q: unexpected error: %s", src, msg)
		}
	}
}

func TestStringz(t *testing.T) {
	code := build(t, ".ORIG x3000\nMSG .STRINGZ \"Hi\"\n.END")

	want := []uint16{'H', 'i', 0}
	for i, w := range want {
		if code[i] != w {
			t.Fatalf("word %d: expected %04x; have %04x", i, w, code[i])
		}
	}
}

func TestFillForms(t *testing.T) {
	code := build(t, ".ORIG x3000\nA .FILL x10\nB .FILL #-2\nC .FILL A\n.END")

	if code[0] != 0x0010 || code[1] != 0xFFFE || code[2] != 0x3000 {
		t.Fatalf("unexpected words: %04x %04x %04x", code[0], code[1], code[2])
	}
}

func TestBlkw(t *testing.T) {
	code := build(t, ".ORIG x3000\n.BLKW 3\nEND .FILL #7\n.END")

	if len(code) != 4 {
		t.Fatalf("expected 4 words; have %d", len(code))
	}
	if code[3] != 7 {
		t.Fatalf("label after .BLKW landed at the wrong address")
	}
}

func TestDuplicateLabel(t *testing.T) {
	u := Analyze("test.asm", ".ORIG x3000\nA .FILL #1\nA .FILL #2\n.END")

	if len(u.Errors) != 1 {
		t.Fatalf("expected exactly 1 error; have %v", u.Errors)
	}
	if !strings.Contains(u.Errors[0].Msg, "duplicate label") {
		t.Fatalf("unexpected error: %s", u.Errors[0].Msg)
	}

	// The table keeps the first occurrence.
	sym := u.Symbols["A"]
	if sym == nil || sym.Addr != 0x3000 {
		t.Fatalf("expected first occurrence at x3000; have %+v", sym)
	}
}

func TestUndefinedLabel(t *testing.T) {
	msg := buildError(t, ".ORIG x3000\nBR NOWHERE\n.END")
	if !strings.Contains(msg, "undefined label") {
		t.Fatalf("unexpected error: %s", msg)
	}
}

func TestMultiSegment(t *testing.T) {
	img, err := Build("test.asm", ".ORIG x3000\nHALT\n.END\n.ORIG x4000\nHALT\n.END")
	if err != nil {
		t.Fatal(err)
	}
	if len(img.Segments) != 2 {
		t.Fatalf("expected 2 segments; have %d", len(img.Segments))
	}
	if img.Segments[1].Origin != 0x4000 {
		t.Fatalf("unexpected second origin %04x", img.Segments[1].Origin)
	}
}

func TestSegmentOverlap(t *testing.T) {
	msg := buildError(t, ".ORIG x3000\n.BLKW 16\n.END\n.ORIG x3008\nHALT\n.END")
	if !strings.Contains(msg, "overlap") {
		t.Fatalf("unexpected error: %s", msg)
	}
}

func TestSegmentAtEndOfMemory(t *testing.T) {
	// origin + length = 65536 is legal.
	build(t, ".ORIG xFFFE\n.FILL #1\n.FILL #2\n.END")

	// One more word runs off the end.
	msg := buildError(t, ".ORIG xFFFE\n.FILL #1\n.FILL #2\n.FILL #3\n.END")
	if !strings.Contains(msg, "end of memory") {
		t.Fatalf("unexpected error: %s", msg)
	}
}

func TestMissingEnd(t *testing.T) {
	msg := buildError(t, ".ORIG x3000\nHALT")
	if !strings.Contains(msg, ".END") {
		t.Fatalf("unexpected error: %s", msg)
	}
}

func TestImplicitOrigin(t *testing.T) {
	u := Analyze("test.asm", "HALT")
	if len(u.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", u.Errors)
	}
	if len(u.Segments) != 1 || u.Segments[0].Origin != 0x3000 {
		t.Fatalf("expected implicit segment at x3000; have %+v", u.Segments)
	}
}

func TestExternalAndGlobal(t *testing.T) {
	src := ".ORIG x3000\n.EXTERNAL LIB\n.GLOBAL MAIN\nMAIN .FILL LIB\n.END"
	u := Analyze("test.asm", src)
	if len(u.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", u.Errors)
	}

	// External references in .FILL encode as zero for the loader.
	if u.Segments[0].Code[0] != 0 {
		t.Fatalf("external .FILL: expected 0; have %04x", u.Segments[0].Code[0])
	}

	if sym := u.Symbols["MAIN"]; sym == nil || !sym.Global || !sym.Defined {
		t.Fatalf("unexpected MAIN symbol: %+v", u.Symbols["MAIN"])
	}
}

func TestExternalPCRelativeRejected(t *testing.T) {
	msg := buildError(t, ".ORIG x3000\n.EXTERNAL LIB\nLD R0, LIB\n.END")
	if !strings.Contains(msg, "external") {
		t.Fatalf("unexpected error: %s", msg)
	}
}

func TestUndefinedGlobal(t *testing.T) {
	msg := buildError(t, ".ORIG x3000\n.GLOBAL MISSING\nHALT\n.END")
	if !strings.Contains(msg, "never defined") {
		t.Fatalf("unexpected error: %s", msg)
	}
}

func TestLabelBindsToNextAddress(t *testing.T) {
	u := Analyze("test.asm", ".ORIG x3000\nADD R0, R0, #0\nHERE\nHALT\n.END")
	if len(u.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", u.Errors)
	}
	if sym := u.Symbols["HERE"]; sym == nil || sym.Addr != 0x3001 {
		t.Fatalf("expected HERE at x3001; have %+v", u.Symbols["HERE"])
	}
}

func TestLineFor(t *testing.T) {
	u := Analyze("test.asm", ".ORIG x3000\nADD R0, R0, #0\nHALT\n.END")

	line, ok := u.LineFor(0x3001)
	if !ok || line != 3 {
		t.Fatalf("expected line 3 for x3001; have %d/%v", line, ok)
	}
	if _, ok := u.LineFor(0x4000); ok {
		t.Fatal("expected no line for unmapped address")
	}
}
