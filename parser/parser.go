// Copyright © 2024 The ELPS authors

// Package parser selects a lisp.Reader implementation.
package parser

import (
	"fmt"

	"github.com/luthersystems/minischeme/lisp"
	"github.com/luthersystems/minischeme/parser/rdparser"
	"github.com/luthersystems/minischeme/parser/regexparser"
)

// Reader implementation names accepted by NewReaderNamed.
const (
	ReaderDefault = "rd"
	ReaderParsec  = "parsec"
)

// NewReader returns a new lisp.Reader
func NewReader() lisp.Reader {
	return rdparser.NewReader()
}

// NewReaderNamed returns the lisp.Reader registered under name.  An empty
// name selects the default reader.
func NewReaderNamed(name string) (lisp.Reader, error) {
	switch name {
	case "", ReaderDefault:
		return rdparser.NewReader(), nil
	case ReaderParsec:
		return regexparser.NewReader(), nil
	}
	return nil, fmt.Errorf("unknown reader: %q", name)
}
