// Copyright © 2024 The ELPS authors

// Package libhelp renders documentation for builtin operators and global
// definitions.
package libhelp

import (
	"fmt"
	"io"
	"strings"

	"github.com/luthersystems/minischeme/lisp"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

// WrapWidth is the column at which documentation text is wrapped.
const WrapWidth = 72

// RenderOpList writes one line per builtin operator to w with the first
// sentence of its documentation.
func RenderOpList(w io.Writer) error {
	for _, op := range lisp.Ops() {
		_, err := fmt.Fprintf(w, "  %-8s  %s\n", op, summary(op.Doc()))
		if err != nil {
			return err
		}
	}
	return nil
}

// RenderGlobals writes the signature or value of every global definition
// in env to w, sorted by name.
func RenderGlobals(w io.Writer, env *lisp.LEnv) error {
	for _, name := range env.GlobalNames() {
		expr, _ := env.Global.Get(name)
		if err := renderGlobal(w, name, expr); err != nil {
			return fmt.Errorf("global %s: %w", name, err)
		}
	}
	return nil
}

// RenderVar writes to w documentation for the builtin operator or global
// definition named sym.  The exact formatting of the rendered
// documentation is subject to change across versions.
func RenderVar(w io.Writer, env *lisp.LEnv, sym string) error {
	if op, ok := lisp.LookupOp(sym); ok {
		return renderOp(w, op)
	}
	if env != nil {
		if expr, _ := env.Global.Get(sym); expr != nil {
			return renderGlobal(w, sym, expr)
		}
	}
	return fmt.Errorf("no documentation for %q", sym)
}

func renderOp(w io.Writer, op lisp.Op) error {
	_, err := fmt.Fprintf(w, "builtin %s\n", op.Signature())
	if err != nil {
		return fmt.Errorf("rendering signature: %w", err)
	}
	doc := cleanDocstring(op.Doc())
	if doc != "" {
		_, err = fmt.Fprintln(w, doc)
	}
	return err
}

func renderGlobal(w io.Writer, name string, expr *lisp.LVal) error {
	if params, ok := lambdaParams(expr); ok {
		siglist := lisp.List(append([]*lisp.LVal{lisp.Symbol(name)}, params...)...)
		_, err := fmt.Fprintf(w, "lambda %v\n", siglist)
		return err
	}
	_, err := fmt.Fprintf(w, "global %s %v\n", name, expr)
	return err
}

// lambdaParams returns the parameter list of a lambda expression or
// closure.  A lone parameter symbol is returned as a one element list.
func lambdaParams(expr *lisp.LVal) ([]*lisp.LVal, bool) {
	switch {
	case expr.Type == lisp.LLambda:
		return expr.Lambda.Params, true
	case expr.Type == lisp.LList && len(expr.Cells) == 3 &&
		expr.Cells[0].Type == lisp.LSymbol && expr.Cells[0].Str == "lambda":
		params := expr.Cells[1]
		if params.Type == lisp.LList {
			return params.Cells, true
		}
		return []*lisp.LVal{params}, true
	}
	return nil, false
}

// cleanDocstring joins the lines of each paragraph in doc, wraps them and
// indents the result.
func cleanDocstring(doc string) string {
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return ""
	}
	paras := strings.Split(doc, "\n\n")
	for i, p := range paras {
		paras[i] = strings.Join(strings.Fields(p), " ")
	}
	doc = strings.Join(paras, "\n\n")
	doc = indent.String(wordwrap.String(doc, WrapWidth), 2)
	return strings.TrimSuffix(doc, "\n")
}

// summary returns the first sentence of doc.
func summary(doc string) string {
	doc = strings.Join(strings.Fields(doc), " ")
	if i := strings.Index(doc, ". "); i >= 0 {
		return doc[:i+1]
	}
	return doc
}
