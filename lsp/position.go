// Copyright © 2024 The ELPS authors

package lsp

import (
	"strings"

	"github.com/luthersystems/minischeme/parser/token"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// schemeToLSPPosition converts a 1-based source location to a 0-based LSP
// position.
func schemeToLSPPosition(loc *token.Location) protocol.Position {
	line := loc.Line
	col := loc.Col
	if line > 0 {
		line--
	}
	if col > 0 {
		col--
	}
	return protocol.Position{
		Line:      safeUint(line),
		Character: safeUint(col),
	}
}

// safeUint converts a non-negative int to protocol.UInteger, clamping
// negative values to zero.
func safeUint(n int) protocol.UInteger {
	if n < 0 {
		return 0
	}
	return protocol.UInteger(n) // #nosec G115 -- line/col are always small positive ints
}

// schemeToLSPRange converts a source location to a single line LSP range
// width characters wide.
func schemeToLSPRange(loc *token.Location, width int) protocol.Range {
	start := schemeToLSPPosition(loc)
	end := protocol.Position{
		Line:      start.Line,
		Character: start.Character + safeUint(width),
	}
	return protocol.Range{Start: start, End: end}
}

// wordAtPosition extracts the symbol-like word at the given 0-based LSP
// position from the document content. The cursor can be inside or at the
// end of a word; in both cases the full word is returned.
func wordAtPosition(content string, line, col int) string {
	start, end, ln, ok := wordBounds(content, line, col)
	if !ok {
		return ""
	}
	return ln[start:end]
}

// prefixAtPosition returns the part of the word at the cursor that lies
// before it.
func prefixAtPosition(content string, line, col int) string {
	start, _, ln, ok := wordBounds(content, line, col)
	if !ok {
		return ""
	}
	if col > len(ln) {
		col = len(ln)
	}
	return ln[start:col]
}

func wordBounds(content string, line, col int) (start, end int, ln string, ok bool) {
	lines := strings.Split(content, "\n")
	if line < 0 || line >= len(lines) {
		return 0, 0, "", false
	}
	ln = strings.TrimSuffix(lines[line], "\r")
	if col < 0 || col > len(ln) {
		return 0, 0, "", false
	}
	start = col
	for start > 0 && isSymbolChar(ln[start-1]) {
		start--
	}
	end = col
	for end < len(ln) && isSymbolChar(ln[end]) {
		end++
	}
	return start, end, ln, true
}

func isSymbolChar(c byte) bool {
	if c >= 'a' && c <= 'z' {
		return true
	}
	if c >= 'A' && c <= 'Z' {
		return true
	}
	if c >= '0' && c <= '9' {
		return true
	}
	switch c {
	case '-', '_', '!', '?', '+', '*', '/', '<', '>', '=', '%', '&', '.', '#', '^':
		return true
	}
	return false
}

// uriToPath converts a file:// URI to a filesystem path.
func uriToPath(uri string) string {
	if path, ok := strings.CutPrefix(uri, "file://"); ok {
		return path
	}
	return uri
}

// pathToURI converts a filesystem path to a file:// URI.
func pathToURI(path string) string {
	if strings.HasPrefix(path, "/") {
		return "file://" + path
	}
	return path
}
