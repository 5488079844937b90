// Copyright © 2024 The ELPS authors

package lisp

import (
	"github.com/luthersystems/minischeme/diagnostic"
)

// Diagnostic converts the error to a diagnostic for rendering.  The message
// is prefixed with the condition and the source span points at the failing
// expression.  Each stack frame becomes a note, innermost first.
func (e *ErrorVal) Diagnostic() diagnostic.Diagnostic {
	lerr := (*LVal)(e)
	d := diagnostic.Diagnostic{
		Severity: diagnostic.SeverityError,
		Message:  e.Condition() + ": " + e.ErrorMessage(),
	}
	if src := lerr.Source; src != nil && src.Pos >= 0 && src.Line > 0 {
		span := diagnostic.Span{
			File: src.File,
			Line: src.Line,
			Col:  src.Col,
		}
		// The physical path is readable when the display name is not.
		if src.Path != "" {
			span.File = src.Path
		}
		d.Spans = append(d.Spans, span)
	}
	stack := lerr.CallStack()
	if stack == nil {
		return d
	}
	for i := len(stack.Frames) - 1; i >= 0; i-- {
		frame := &stack.Frames[i]
		loc := "unknown"
		if frame.Source != nil {
			loc = frame.Source.String()
		}
		d.Notes = append(d.Notes, "in "+frame.Name+" at "+loc)
	}
	return d
}
