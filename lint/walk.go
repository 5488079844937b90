// Copyright © 2024 The ELPS authors

package lint

import "github.com/luthersystems/minischeme/lisp"

// WalkCalls calls fn for every list in an evaluated position, depth-first.
// The argument of quote, the name given to define and the parameters of
// lambda are not evaluated and are skipped.  The depth of a top-level
// expression is zero.
func WalkCalls(exprs []*lisp.LVal, fn func(call *lisp.LVal, depth int)) {
	for _, expr := range exprs {
		walkCall(expr, 0, fn)
	}
}

func walkCall(v *lisp.LVal, depth int, fn func(*lisp.LVal, int)) {
	if v == nil || v.Type != lisp.LList {
		return
	}
	fn(v, depth)
	if len(v.Cells) == 0 {
		return
	}
	args := v.Cells[1:]
	switch HeadSymbol(v) {
	case "quote":
		return
	case "define", "lambda":
		if len(args) > 0 {
			args = args[1:]
		}
	}
	// A list in head position is evaluated to find the function.
	walkCall(v.Cells[0], depth+1, fn)
	for _, arg := range args {
		walkCall(arg, depth+1, fn)
	}
}

// HeadSymbol returns the symbol name at the head of a list, or "".
func HeadSymbol(call *lisp.LVal) string {
	if call.Type != lisp.LList || len(call.Cells) == 0 {
		return ""
	}
	head := call.Cells[0]
	if head.Type == lisp.LSymbol {
		return head.Str
	}
	return ""
}

// ArgCount returns the number of arguments in a call, excluding the head.
func ArgCount(call *lisp.LVal) int {
	if len(call.Cells) <= 1 {
		return 0
	}
	return len(call.Cells) - 1
}

// SourceOf returns the best source location for a node, preferring the
// node's own source and falling back to its first child.
func SourceOf(v *lisp.LVal) *lisp.LVal {
	if v.Source != nil && v.Source.Line > 0 {
		return v
	}
	if len(v.Cells) > 0 && v.Cells[0].Source != nil {
		return v.Cells[0]
	}
	return v
}
