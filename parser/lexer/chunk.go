// Copyright © 2024 The ELPS authors

package lexer

import (
	"strings"

	"github.com/luthersystems/minischeme/parser/token"
)

// Chunk is one top-level unit of a source file.
type Chunk struct {
	Text  string
	Start token.Location
}

// ChunkSource splits a file into its top-level units so that each can be
// lexed and evaluated on its own.  A unit is either a parenthesized group,
// which may span several lines, or a bare atom at depth zero.  Comments and
// whitespace between units are dropped.  An unterminated group extends to
// the end of the input and a stray close paren forms a unit of its own, so
// that lexing the unit reports the syntax error.
func ChunkSource(file string, src string) []Chunk {
	var chunks []Chunk
	var buf strings.Builder
	var start token.Location
	depth := 0
	inAtom := false
	emit := func() {
		if buf.Len() > 0 {
			chunks = append(chunks, Chunk{Text: buf.String(), Start: start})
		}
		buf.Reset()
		depth = 0
		inAtom = false
	}
	sc := newRuneScanner(token.Location{File: file, Line: 1, Col: 1})
	for _, c := range src {
		class := sc.classify(c)
		switch {
		case depth > 0:
			buf.WriteRune(c)
			switch class {
			case classOpen:
				depth++
			case classClose:
				depth--
				if depth == 0 {
					emit()
				}
			}
		case inAtom:
			switch class {
			case classText:
				buf.WriteRune(c)
			case classOpen:
				emit()
				start = sc.loc
				buf.WriteRune(c)
				depth = 1
			case classClose:
				emit()
				start = sc.loc
				buf.WriteRune(c)
				emit()
			default:
				emit()
			}
		default:
			switch class {
			case classOpen:
				start = sc.loc
				buf.WriteRune(c)
				depth = 1
			case classClose:
				start = sc.loc
				buf.WriteRune(c)
				emit()
			case classText:
				start = sc.loc
				buf.WriteRune(c)
				inAtom = true
			}
		}
		sc.advance(c)
	}
	emit()
	return chunks
}
