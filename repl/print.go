// Copyright © 2024 The ELPS authors

package repl

import (
	"io"
	"os"
	"strings"

	"github.com/luthersystems/minischeme/diagnostic"
	"github.com/luthersystems/minischeme/lisp"
)

type palette struct {
	number string
	str    string
	atom   string
	symbol string
	lambda string
	red    string
	reset  string
}

var ansiPalette = palette{
	number: "\033[34m",
	str:    "\033[32m",
	atom:   "\033[35m",
	symbol: "\033[33m",
	lambda: "\033[36m",
	red:    "\033[31m",
	reset:  "\033[0m",
}

func choosePalette(mode diagnostic.ColorMode, w io.Writer) palette {
	switch mode {
	case diagnostic.ColorAlways:
		return ansiPalette
	case diagnostic.ColorNever:
		return palette{}
	}
	if os.Getenv("NO_COLOR") != "" || !diagnostic.IsTerminal(w) {
		return palette{}
	}
	return ansiPalette
}

// format prints v with its atoms colored by type.
func (p palette) format(v *lisp.LVal) string {
	if p.reset == "" {
		return v.String()
	}
	var b strings.Builder
	p.write(&b, v)
	return b.String()
}

func (p palette) write(b *strings.Builder, v *lisp.LVal) {
	var color string
	switch v.Type {
	case lisp.LList:
		b.WriteString("(")
		for i, c := range v.Cells {
			if i > 0 {
				b.WriteString(" ")
			}
			p.write(b, c)
		}
		b.WriteString(")")
		return
	case lisp.LNumber:
		color = p.number
	case lisp.LString:
		color = p.str
	case lisp.LBool, lisp.LNil:
		color = p.atom
	case lisp.LSymbol:
		color = p.symbol
	case lisp.LLambda:
		color = p.lambda
	}
	b.WriteString(color)
	b.WriteString(v.String())
	if color != "" {
		b.WriteString(p.reset)
	}
}
