// Copyright © 2024 The ELPS authors

package profiler

import (
	"regexp"

	"github.com/luthersystems/minischeme/lisp"
)

// SkipFilter returns true for calls which should not be traced.
type SkipFilter func(fun *lisp.LVal) bool

func defaultSkipFilter(fun *lisp.LVal) bool {
	switch fun.Type {
	case lisp.LSymbol, lisp.LLambda:
		return false
	default:
		return true
	}
}

// WithSkipFilter sets the filter for tracing spans.
func WithSkipFilter(skipFilter SkipFilter) Option {
	return func(p *profiler) {
		p.skipFilter = skipFilter
	}
}

// WithoutBuiltins skips calls to builtin operators so that only lambda
// calls are traced.
func WithoutBuiltins() Option {
	return WithSkipFilter(isBuiltin)
}

// WithNameFilter traces only calls whose function name matches re.
func WithNameFilter(re *regexp.Regexp) Option {
	return WithSkipFilter(func(fun *lisp.LVal) bool {
		return !re.MatchString(funName(fun))
	})
}
