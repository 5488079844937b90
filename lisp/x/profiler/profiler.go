// Copyright © 2024 The ELPS authors

// Package profiler provides lisp.Profiler implementations which record
// the calls made by the evaluator as trace spans, pprof labels or
// callgrind profiles.
package profiler

import (
	"errors"

	"github.com/luthersystems/minischeme/lisp"
	"github.com/luthersystems/minischeme/parser/token"
)

// profiler is a minimal lisp.Profiler
type profiler struct {
	runtime    *lisp.Runtime
	enabled    bool
	skipFilter SkipFilter
	funLabeler FunLabeler
}

var _ lisp.Profiler = &profiler{}

// Option configures a profiler.
type Option func(*profiler)

func (p *profiler) applyConfigs(opts ...Option) {
	for _, opt := range opts {
		opt(p)
	}
}

func (p *profiler) IsEnabled() bool {
	return p.enabled
}

func (p *profiler) Enable() error {
	if p.enabled {
		return errors.New("profiler already enabled")
	}
	p.enabled = true
	return nil
}

func (p *profiler) SetFile(filename string) error {
	return errors.New("no need to set a file for this profiler type")
}

func (p *profiler) Complete() error {
	return nil
}

func (p *profiler) Start(fun *lisp.LVal) func() {
	return func() {}
}

// funName returns the name a call was made through.  The evaluator passes
// the called symbol for named calls and the lambda itself for anonymous
// ones.
func funName(fun *lisp.LVal) string {
	switch fun.Type {
	case lisp.LSymbol:
		return fun.Str
	case lisp.LLambda:
		return "lambda"
	}
	return ""
}

// prettyFunName returns a pretty name and original name for a fun. If there is
// no pretty name, then the pretty name is the original name.
func (p *profiler) prettyFunName(fun *lisp.LVal) (string, string) {
	origLabel := funName(fun)
	if origLabel == "" {
		return "", ""
	}
	prettyLabel := origLabel
	if p.funLabeler != nil {
		prettyLabel = p.funLabeler(p.runtime, fun)
	}
	if prettyLabel == "" {
		prettyLabel = origLabel
	}
	return prettyLabel, origLabel
}

// skipTrace is a helper function to decide whether to skip tracing.
func (p *profiler) skipTrace(v *lisp.LVal) bool {
	return !p.enabled || defaultSkipFilter(v) || p.skipFilter != nil && p.skipFilter(v)
}

func getSourceLoc(fun *lisp.LVal) *token.Location {
	return fun.Source
}

// isBuiltin reports whether fun names a builtin operator.
func isBuiltin(fun *lisp.LVal) bool {
	if fun.Type != lisp.LSymbol {
		return false
	}
	_, ok := lisp.LookupOp(fun.Str)
	return ok
}
