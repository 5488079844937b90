// Copyright © 2024 The ELPS authors

// Package lexer splits mini-scheme source text into tokens.
//
// Lexing happens in two passes over a chunk of source.  CheckBalance first
// verifies that parentheses are balanced, so that malformed input is
// rejected before anything can be evaluated.  Tokenize then emits parens as
// standalone tokens and groups everything else into whitespace separated
// atoms, treating single-quoted strings as opaque text.
package lexer

import (
	"errors"
	"strings"
	"unicode"

	"github.com/luthersystems/minischeme/parser/token"
)

// ErrUnbalanced is reported when the parentheses in a source chunk do not
// pair up.
var ErrUnbalanced = errors.New("missing closing or opening parenthesis")

const (
	stringDelim = '\''
	escapeChar  = '\\'
	commentChar = ';'
)

// Lex checks src for balanced parentheses and tokenizes it.  Locations are
// reported relative to the beginning of file.
func Lex(file string, src string) ([]*token.Token, error) {
	return LexAt(token.Location{File: file, Line: 1, Col: 1}, src)
}

// LexAt is like Lex but src begins at location start, as is the case for a
// chunk produced by ChunkSource.
func LexAt(start token.Location, src string) ([]*token.Token, error) {
	err := CheckBalance(start, src)
	if err != nil {
		return nil, err
	}
	return Tokenize(start, src), nil
}

// CheckBalance counts `(` as +1 and `)` as -1 over all of src, ignoring
// parens inside string literals and comments.  A close paren with no
// matching open paren, or open parens left over at the end of the input,
// result in a *token.LocationError wrapping ErrUnbalanced.
func CheckBalance(start token.Location, src string) error {
	var open []token.Location
	sc := newRuneScanner(start)
	for _, c := range src {
		switch sc.classify(c) {
		case classOpen:
			open = append(open, sc.loc)
		case classClose:
			if len(open) == 0 {
				loc := sc.loc
				return &token.LocationError{Err: ErrUnbalanced, Source: &loc}
			}
			open = open[:len(open)-1]
		}
		sc.advance(c)
	}
	if len(open) > 0 {
		loc := open[len(open)-1]
		return &token.LocationError{Err: ErrUnbalanced, Source: &loc}
	}
	return nil
}

// Tokenize splits src into tokens without checking paren balance.  When src
// consists of a single token it is wrapped in a pair of implicit parens so
// that a parser always sees either a list or a lone wrapped atom.
func Tokenize(start token.Location, src string) []*token.Token {
	var toks []*token.Token
	var buf strings.Builder
	var bufStart token.Location
	flush := func() {
		if buf.Len() == 0 {
			return
		}
		text := buf.String()
		typ := token.ATOM
		if text[0] == stringDelim {
			typ = token.STRING
		}
		loc := bufStart
		toks = append(toks, &token.Token{Type: typ, Text: text, Source: &loc})
		buf.Reset()
	}
	sc := newRuneScanner(start)
	for _, c := range src {
		inQuote := sc.inQuote
		class := sc.classify(c)
		switch {
		case class == classComment:
			flush()
		case class == classOpen || class == classClose:
			flush()
			typ := token.PAREN_L
			if class == classClose {
				typ = token.PAREN_R
			}
			loc := sc.loc
			toks = append(toks, &token.Token{Type: typ, Text: string(c), Source: &loc})
		case class == classSpace:
			flush()
		default:
			if buf.Len() == 0 {
				bufStart = sc.loc
			}
			buf.WriteRune(c)
			if inQuote && !sc.inQuote {
				// the closing delimiter ends the string immediately
				flush()
			}
		}
		sc.advance(c)
	}
	flush()
	if len(toks) == 1 {
		toks = wrapImplicit(toks[0])
	}
	return toks
}

func wrapImplicit(tok *token.Token) []*token.Token {
	return []*token.Token{
		{Type: token.PAREN_L, Text: "(", Source: tok.Source, Implicit: true},
		tok,
		{Type: token.PAREN_R, Text: ")", Source: tok.Source, Implicit: true},
	}
}

type runeClass int

const (
	classText runeClass = iota
	classSpace
	classOpen
	classClose
	classComment
)

// runeScanner tracks the lexical state shared by the balance check, the
// tokenizer and the chunker: the location of the current rune and whether
// it sits inside a string literal or a comment.
type runeScanner struct {
	loc       token.Location
	inQuote   bool
	escaped   bool
	inComment bool
}

func newRuneScanner(start token.Location) *runeScanner {
	if start.Line == 0 {
		start.Line = 1
	}
	if start.Col == 0 {
		start.Col = 1
	}
	return &runeScanner{loc: start}
}

// classify updates quote and comment state for c and reports how c should
// be treated.
func (sc *runeScanner) classify(c rune) runeClass {
	if sc.inComment {
		if c == '\n' {
			sc.inComment = false
			return classSpace
		}
		return classComment
	}
	if sc.inQuote {
		switch {
		case sc.escaped:
			sc.escaped = false
		case c == escapeChar:
			sc.escaped = true
		case c == stringDelim:
			sc.inQuote = false
		}
		return classText
	}
	switch {
	case c == stringDelim:
		sc.inQuote = true
		return classText
	case c == commentChar:
		sc.inComment = true
		return classComment
	case c == '(':
		return classOpen
	case c == ')':
		return classClose
	case unicode.IsSpace(c):
		return classSpace
	}
	return classText
}

func (sc *runeScanner) advance(c rune) {
	sc.loc = sc.loc.Next(c)
}
