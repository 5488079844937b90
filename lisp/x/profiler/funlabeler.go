// Copyright © 2024 The ELPS authors

package profiler

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/luthersystems/minischeme/lisp"
)

// FunLabeler provides an alternative name for a function label in the trace.
type FunLabeler func(runtime *lisp.Runtime, fun *lisp.LVal) string

// WithFunLabeler sets the labeler for tracing spans.
func WithFunLabeler(funLabeler FunLabeler) Option {
	return func(p *profiler) {
		p.funLabeler = funLabeler
	}
}

// WithSourceLabeler labels spans with the function name followed by the
// base name and line of the file containing the call.
func WithSourceLabeler() Option {
	return WithFunLabeler(sourceFunLabeler)
}

var (
	sanitizeRegExp   = regexp.MustCompile(`[\s_]+`)
	validLabelRegExp = regexp.MustCompile(`[[:graph:]]*`)
)

func sanitizeLabel(userLabel string) string {
	if userLabel == "" {
		return ""
	}

	// Replace spaces with underscores
	userLabel = sanitizeRegExp.ReplaceAllString(userLabel, "_")

	// Find the first valid label match
	matches := validLabelRegExp.FindStringSubmatch(userLabel)
	if len(matches) > 0 {
		return matches[0]
	}

	return ""
}

func sourceFunLabeler(runtime *lisp.Runtime, fun *lisp.LVal) string {
	name := funName(fun)
	loc := getSourceLoc(fun)
	if loc == nil || loc.File == "" {
		return sanitizeLabel(name)
	}
	return sanitizeLabel(fmt.Sprintf("%s@%s:%d", name, filepath.Base(loc.File), loc.Line))
}
