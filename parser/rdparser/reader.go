// Copyright © 2024 The ELPS authors

package rdparser

import (
	"io"

	"github.com/luthersystems/minischeme/lisp"
	"github.com/luthersystems/minischeme/parser/lexer"
	"github.com/luthersystems/minischeme/parser/token"
)

type reader struct {
}

// NewReader returns a lisp.Reader to use in a lisp.Runtime.
func NewReader() lisp.Reader {
	return &reader{}
}

// Read implements lisp.Reader.
func (*reader) Read(name string, r io.Reader) ([]*lisp.LVal, error) {
	return readLocation(name, "", r)
}

// ReadLocation implements lisp.LocationReader.
func (*reader) ReadLocation(name string, loc string, r io.Reader) ([]*lisp.LVal, error) {
	return readLocation(name, loc, r)
}

func readLocation(name string, loc string, r io.Reader) ([]*lisp.LVal, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseProgram(name, loc, string(b))
}

// ParseProgram chunks src into top-level units, lexes and parses each of
// them.  Nothing is returned unless every chunk is well formed.
func ParseProgram(name string, loc string, src string) ([]*lisp.LVal, error) {
	var exprs []*lisp.LVal
	for _, chunk := range lexer.ChunkSource(name, src) {
		start := chunk.Start
		start.Path = loc
		toks, err := lexer.LexAt(start, chunk.Text)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, Parse(toks))
	}
	return exprs, nil
}

// ParseString lexes and parses text as a single chunk, as the REPL does
// with one line of input.
func ParseString(name string, text string) (*lisp.LVal, error) {
	toks, err := lexer.LexAt(token.Location{File: name, Line: 1, Col: 1}, text)
	if err != nil {
		return nil, err
	}
	return Parse(toks), nil
}
