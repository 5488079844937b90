// Copyright © 2024 The ELPS authors

// Package token defines the lexical tokens produced by the mini-scheme lexer
// and the source locations attached to them.
package token

import (
	"fmt"
	"unicode/utf8"
)

type Token struct {
	Type   Type
	Text   string
	Source *Location
	// Implicit marks parens synthesized by the lexer around a lone atom.
	Implicit bool
}

func (tok *Token) String() string {
	if tok.Source == nil {
		return fmt.Sprintf("%s %q", tok.Type, tok.Text)
	}
	return fmt.Sprintf("%s: %s %q", tok.Source, tok.Type, tok.Text)
}

type Type uint

const (
	INVALID Type = iota
	ERROR

	// Atomic expressions & literals.  The lexer only distinguishes strings
	// from other atoms; numbers, booleans, nil and symbols are classified
	// by the parser.
	ATOM
	STRING

	// Delimiters
	PAREN_L
	PAREN_R

	numTokenTypes
)

func (typ Type) String() string {
	typeStrings := [numTokenTypes]string{
		INVALID: "invalid",
		ERROR:   "error",
		ATOM:    "atom",
		STRING:  "string",
		PAREN_L: "(",
		PAREN_R: ")",
	}
	if typ >= numTokenTypes {
		return typeStrings[INVALID]
	}
	return typeStrings[typ]
}

type Location struct {
	File string // a name representing the source stream
	Path string // a physical location which may differ from File
	Pos  int
	Line int // line number (starting at 1 when tracked)
	Col  int // line column number (starting at 1 when tracked)
}

func (loc *Location) String() string {
	switch {
	case loc.Pos < 0:
		return loc.File
	case loc.Line == 0:
		return fmt.Sprintf("%s[%d]", loc.File, loc.Pos)
	case loc.Col == 0:
		return fmt.Sprintf("%s:%d", loc.File, loc.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Col)
	}
}

// Advance returns the location reached after reading text starting at loc.
func (loc Location) Advance(text string) Location {
	for _, c := range text {
		loc = loc.Next(c)
	}
	return loc
}

// Next returns the location of the rune following c, which is located at
// loc.  Pos counts bytes while Col counts runes.
func (loc Location) Next(c rune) Location {
	loc.Pos += utf8.RuneLen(c)
	if c == '\n' {
		loc.Line++
		loc.Col = 1
		return loc
	}
	loc.Col++
	return loc
}

type LocationError struct {
	Err    error
	Source *Location
}

func (err *LocationError) Error() string {
	return fmt.Sprintf("%s: %s", err.Source, err.Err)
}

func (err *LocationError) Unwrap() error {
	return err.Err
}
