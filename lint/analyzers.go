// Copyright © 2024 The ELPS authors

package lint

import (
	"github.com/luthersystems/minischeme/lisp"
	"github.com/luthersystems/minischeme/parser/token"
)

// AnalyzerBuiltinArity checks the argument count of calls to builtin
// operators.  Builtins cannot be shadowed by define so every call through
// an operator name reaches the builtin.
var AnalyzerBuiltinArity = &Analyzer{
	Name:     "builtin-arity",
	Doc:      "Check argument counts of builtin operator calls.\n\nEach builtin accepts a fixed range of arguments. A call outside that range always fails with an arity-mismatch error.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		WalkCalls(pass.Exprs, func(call *lisp.LVal, depth int) {
			op, ok := lisp.LookupOp(HeadSymbol(call))
			if !ok {
				return
			}
			argc := ArgCount(call)
			lo, hi := op.Arity()
			src := SourceOf(call).Source
			switch {
			case lo == hi && argc != lo:
				pass.Reportf(src, "%s expects %d %s but got %d", op, lo, plural(lo, "argument"), argc)
			case argc < lo:
				pass.Reportf(src, "%s expects at least %d %s but got %d", op, lo, plural(lo, "argument"), argc)
			case hi >= 0 && argc > hi:
				pass.Reportf(src, "%s expects at most %d %s but got %d", op, hi, plural(hi, "argument"), argc)
			}
		})
		return nil
	},
}

// AnalyzerDefineStructure checks that define binds a symbol.
var AnalyzerDefineStructure = &Analyzer{
	Name:     "define-structure",
	Doc:      "Check that the first argument of `define` is a symbol.\n\nDefining a number, string or list is a type error. Defining the name of a builtin succeeds but calls through that name still reach the builtin.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		WalkCalls(pass.Exprs, func(call *lisp.LVal, depth int) {
			if HeadSymbol(call) != "define" || ArgCount(call) < 1 {
				return
			}
			name := call.Cells[1]
			if name.Type != lisp.LSymbol {
				pass.Reportf(SourceOf(call).Source, "define target must be a symbol but got %v: %v", name.Type, name)
				return
			}
			if _, ok := lisp.LookupOp(name.Str); ok {
				pass.Report(Diagnostic{
					Pos:      position(SourceOf(name).Source),
					Message:  "define of builtin name " + name.Str + " cannot be called",
					Severity: SeverityWarning,
					Notes:    []string{"calls to " + name.Str + " always use the builtin operator"},
				})
			}
			if depth > 0 {
				pass.Report(Diagnostic{
					Pos:      position(SourceOf(call).Source),
					Message:  "nested define of " + name.Str + " binds a global",
					Severity: SeverityInfo,
					Notes:    []string{"the value is evaluated in the global scope when " + name.Str + " is referenced"},
				})
			}
		})
		return nil
	},
}

// AnalyzerLambdaParams checks lambda parameter lists.
var AnalyzerLambdaParams = &Analyzer{
	Name:     "lambda-params",
	Doc:      "Check that lambda parameters are distinct symbols.\n\nA parameter that is not a symbol makes every call to the lambda fail. A repeated parameter hides the earlier argument.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		WalkCalls(pass.Exprs, func(call *lisp.LVal, depth int) {
			if HeadSymbol(call) != "lambda" || ArgCount(call) < 1 {
				return
			}
			params := call.Cells[1]
			if params.Type != lisp.LList {
				params = lisp.List(params)
			}
			seen := make(map[string]bool)
			for _, p := range params.Cells {
				src := SourceOf(p).Source
				if src == nil {
					src = SourceOf(call).Source
				}
				if p.Type != lisp.LSymbol {
					pass.Reportf(src, "lambda parameter must be a symbol but got %v: %v", p.Type, p)
					continue
				}
				if seen[p.Str] {
					pass.Report(Diagnostic{
						Pos:      position(src),
						Message:  "duplicate lambda parameter " + p.Str,
						Severity: SeverityWarning,
					})
				}
				seen[p.Str] = true
			}
		})
		return nil
	},
}

// AnalyzerSelfDefine reports defines which bind a symbol to itself.
var AnalyzerSelfDefine = &Analyzer{
	Name:     "self-define",
	Doc:      "Report `(define a a)`.\n\nDefining a symbol as itself does nothing.",
	Severity: SeverityWarning,
	Run: func(pass *Pass) error {
		WalkCalls(pass.Exprs, func(call *lisp.LVal, depth int) {
			if HeadSymbol(call) != "define" || ArgCount(call) != 2 {
				return
			}
			name, expr := call.Cells[1], call.Cells[2]
			if name.Type == lisp.LSymbol && expr.Type == lisp.LSymbol && name.Str == expr.Str {
				pass.Reportf(SourceOf(call).Source, "symbol %s is defined as itself", name.Str)
			}
		})
		return nil
	},
}

// AnalyzerEmptyCall reports empty lists which would be evaluated.
var AnalyzerEmptyCall = &Analyzer{
	Name:     "empty-call",
	Doc:      "Report `()` in an evaluated position.\n\nEvaluating an empty list is an empty-expression error. Use (quote ()) for an empty list value.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		WalkCalls(pass.Exprs, func(call *lisp.LVal, depth int) {
			if len(call.Cells) == 0 {
				pass.Reportf(call.Source, "empty list cannot be evaluated")
			}
		})
		return nil
	},
}

func position(src *token.Location) Position {
	if src == nil {
		return Position{}
	}
	return Position{File: src.File, Line: src.Line, Col: src.Col}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
