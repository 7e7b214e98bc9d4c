package analysis

import (
	"strings"
	"testing"

	"github.com/hexaflex/lc3/asm"
)

const cleanSource = `.ORIG x3000
LOOP	ADD R0, R0, #1
	BRz DONE
	BRnzp LOOP
DONE	HALT
.END`

func TestCleanSourceHasNoDiagnostics(t *testing.T) {
	d := NewDocument(cleanSource)
	if diags := d.Diagnostics(); len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if syms := d.Symbols(); len(syms) != 2 {
		t.Fatalf("expected 2 symbols; have %+v", syms)
	}
}

func TestDiagnosticsMatchBuild(t *testing.T) {
	sources := []string{
		cleanSource,
		".ORIG x3000\nBRz MISSING\n.END",
		".ORIG x3000\nADD R0, R0, #16\n.END",
		".ORIG x3000\nA .FILL #1\nA .FILL #2\n.END",
		"garbage !!",
	}

	// Diagnostics are empty exactly when the build succeeds.
	for _, src := range sources {
		diags := Diagnostics(src)
		_, err := asm.Build("", src)
		if (len(diags) == 0) != (err == nil) {
			t.Fatalf("%q: %d diagnostics but build error %v", src, len(diags), err)
		}
	}
}

func TestUndefinedLabelDiagnostic(t *testing.T) {
	diags := Diagnostics(".ORIG x3000\nBRz MISSING\n.END")

	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic; have %+v", diags)
	}
	d := diags[0]
	if !strings.Contains(d.Message, "undefined label") || d.Severity != SeverityError {
		t.Fatalf("unexpected diagnostic: %+v", d)
	}
	if d.StartLine != 2 || d.StartCol != 5 {
		t.Fatalf("unexpected location %d:%d", d.StartLine, d.StartCol)
	}
}

func TestDuplicateLabelDiagnostic(t *testing.T) {
	src := ".ORIG x3000\nA .FILL #1\nA .FILL #2\n.END"

	diags := Diagnostics(src)
	if len(diags) != 1 {
		t.Fatalf("expected exactly 1 diagnostic; have %+v", diags)
	}
	if diags[0].StartLine != 3 {
		t.Fatalf("expected diagnostic at the redefinition (line 3); have line %d", diags[0].StartLine)
	}

	// The symbol query reports the first occurrence only.
	syms := Symbols(src)
	if len(syms) != 1 || syms[0].StartLine != 2 {
		t.Fatalf("unexpected symbols: %+v", syms)
	}
}

func TestSymbolKinds(t *testing.T) {
	src := `.ORIG x3000
	JSR FUNC
	LD R0, VALUE
	HALT
FUNC	RET
VALUE	.FILL x0001
PLAIN	HALT
.END`

	kinds := make(map[string]SymbolKind)
	for _, s := range Symbols(src) {
		kinds[s.Name] = s.Kind
	}

	if kinds["FUNC"] != KindSubroutine {
		t.Fatalf("expected FUNC to be a subroutine; have %s", kinds["FUNC"])
	}
	if kinds["VALUE"] != KindData {
		t.Fatalf("expected VALUE to be data; have %s", kinds["VALUE"])
	}
	if kinds["PLAIN"] != KindLabel {
		t.Fatalf("expected PLAIN to be a label; have %s", kinds["PLAIN"])
	}
}

func TestSymbolAddresses(t *testing.T) {
	syms := Symbols(cleanSource)

	addrs := make(map[string]string)
	for _, s := range syms {
		addrs[s.Name] = s.Address
	}
	if addrs["LOOP"] != "x3000" || addrs["DONE"] != "x3003" {
		t.Fatalf("unexpected addresses: %+v", addrs)
	}
}

func TestDefinition(t *testing.T) {
	// Position inside "LOOP" in "BRnzp LOOP" (line 4, col 8).
	loc := Definition(cleanSource, 4, 8)
	if loc == nil {
		t.Fatal("expected definition")
	}
	if loc.StartLine != 2 || loc.StartCol != 1 {
		t.Fatalf("expected definition at 2:1; have %d:%d", loc.StartLine, loc.StartCol)
	}

	// Not a label.
	if loc := Definition(cleanSource, 2, 6); loc != nil {
		t.Fatalf("expected no definition on mnemonic; have %+v", loc)
	}
}

func TestReferences(t *testing.T) {
	refs := References(cleanSource, 2, 1) // on the LOOP definition

	// Definition plus one use.
	if len(refs) != 2 {
		t.Fatalf("expected 2 locations; have %+v", refs)
	}
	if refs[0].StartLine != 2 || refs[1].StartLine != 4 {
		t.Fatalf("unexpected locations: %+v", refs)
	}
}

func TestHoverInstruction(t *testing.T) {
	hover := Hover(cleanSource, 2, 6) // on ADD
	if !strings.Contains(hover, "ADD DR, SR1") {
		t.Fatalf("unexpected hover: %q", hover)
	}

	hover = Hover(cleanSource, 3, 2) // on BRz
	if !strings.Contains(hover, "BR[n][z][p]") {
		t.Fatalf("unexpected hover: %q", hover)
	}
}

func TestHoverRegister(t *testing.T) {
	hover := Hover(cleanSource, 2, 10) // on R0
	if !strings.Contains(hover, "General purpose register") {
		t.Fatalf("unexpected hover: %q", hover)
	}
}

func TestHoverLabel(t *testing.T) {
	hover := Hover(cleanSource, 4, 8) // on LOOP reference
	if !strings.Contains(hover, "LOOP") || !strings.Contains(hover, "x3000") {
		t.Fatalf("unexpected hover: %q", hover)
	}
}

func TestHoverDirective(t *testing.T) {
	hover := Hover(cleanSource, 1, 2) // on .ORIG
	if !strings.Contains(hover, ".ORIG") {
		t.Fatalf("unexpected hover: %q", hover)
	}
}

func TestHoverNothing(t *testing.T) {
	if hover := Hover(cleanSource, 2, 13); hover != "" {
		t.Fatalf("expected empty hover; have %q", hover)
	}
}

func TestCompletions(t *testing.T) {
	items := Completions(cleanSource, 2, 1)

	var labels, keywords, directives, registers int
	byLabel := make(map[string]CompletionItem)
	for _, item := range items {
		byLabel[item.Label] = item
		switch item.Kind {
		case CompletionLabel:
			labels++
		case CompletionKeyword:
			keywords++
		case CompletionDirective:
			directives++
		case CompletionRegister:
			registers++
		}
	}

	if labels != 2 {
		t.Fatalf("expected 2 label completions; have %d", labels)
	}
	if registers != 8 {
		t.Fatalf("expected 8 register completions; have %d", registers)
	}
	if keywords == 0 || directives == 0 {
		t.Fatalf("expected keyword and directive completions")
	}
	if item, ok := byLabel["LOOP"]; !ok || !strings.Contains(item.Detail, "x3000") {
		t.Fatalf("unexpected LOOP completion: %+v", item)
	}
}

func TestTokens(t *testing.T) {
	src := `.ORIG x3000
LOOP	ADD R0, R1, #5	; increment
	BRz DONE
DONE	HALT
.END`

	counts := make(map[TokenType]int)
	for _, tok := range Tokens(src) {
		counts[tok.Type]++
	}

	if counts[TokenDirective] != 2 {
		t.Fatalf("expected 2 directives; have %d", counts[TokenDirective])
	}
	if counts[TokenKeyword] != 3 { // ADD, BRz, HALT
		t.Fatalf("expected 3 keywords; have %d", counts[TokenKeyword])
	}
	if counts[TokenRegister] != 2 {
		t.Fatalf("expected 2 registers; have %d", counts[TokenRegister])
	}
	if counts[TokenNumber] != 2 { // x3000, #5
		t.Fatalf("expected 2 numbers; have %d", counts[TokenNumber])
	}
	if counts[TokenComment] != 1 {
		t.Fatalf("expected 1 comment; have %d", counts[TokenComment])
	}
	if counts[TokenLabel] != 2 { // LOOP, DONE definitions
		t.Fatalf("expected 2 label definitions; have %d", counts[TokenLabel])
	}
	if counts[TokenLabelRef] != 1 { // DONE in BRz
		t.Fatalf("expected 1 label reference; have %d", counts[TokenLabelRef])
	}
	if counts[TokenOperator] != 2 { // two commas
		t.Fatalf("expected 2 operators; have %d", counts[TokenOperator])
	}
}

func TestTokensSurviveBrokenSource(t *testing.T) {
	// Encoding fails, yet tokens and symbols are still produced.
	src := ".ORIG x3000\nFAR .FILL #1\nLD R0, MISSING\n.END"

	d := NewDocument(src)
	if len(d.Diagnostics()) == 0 {
		t.Fatal("expected diagnostics")
	}
	if len(d.Tokens()) == 0 {
		t.Fatal("expected tokens despite errors")
	}
	if len(d.Symbols()) != 1 {
		t.Fatalf("expected FAR symbol despite errors; have %+v", d.Symbols())
	}
}

func TestExternalSymbolHover(t *testing.T) {
	src := ".ORIG x3000\n.EXTERNAL LIB\nREF .FILL LIB\n.END"

	hover := Hover(src, 2, 12) // on LIB
	if !strings.Contains(hover, "external") {
		t.Fatalf("unexpected hover: %q", hover)
	}
}
