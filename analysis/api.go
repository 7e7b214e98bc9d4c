package analysis

// Stateless variants of the document queries. Each analyzes the full
// source text; hosts issuing several queries against the same text
// should build a Document once instead.

// Diagnostics analyzes source and returns all findings.
func Diagnostics(source string) []Diagnostic {
	return NewDocument(source).Diagnostics()
}

// Symbols analyzes source and returns all defined and external labels.
func Symbols(source string) []SymbolInfo {
	return NewDocument(source).Symbols()
}

// Tokens analyzes source and returns its semantic highlight tokens.
func Tokens(source string) []SemanticToken {
	return NewDocument(source).Tokens()
}

// Hover analyzes source and describes the construct at line/col.
func Hover(source string, line, col int) string {
	return NewDocument(source).Hover(line, col)
}

// Definition analyzes source and resolves the label at line/col to
// its defining location.
func Definition(source string, line, col int) *Location {
	return NewDocument(source).Definition(line, col)
}

// References analyzes source and returns all locations of the label
// at line/col.
func References(source string, line, col int) []Location {
	return NewDocument(source).References(line, col)
}

// Completions analyzes source and returns the completion set at
// line/col.
func Completions(source string, line, col int) []CompletionItem {
	return NewDocument(source).Completions(line, col)
}
