// Copyright © 2024 The ELPS authors

package cmd

import (
	"io"

	"github.com/luthersystems/minischeme/diagnostic"
	"github.com/luthersystems/minischeme/lisp"
	lintpkg "github.com/luthersystems/minischeme/lint"
)

func newRenderer(mode diagnostic.ColorMode) *diagnostic.Renderer {
	return &diagnostic.Renderer{Color: mode}
}

// lintDiagToDiagnostic converts a lint.Diagnostic to a diagnostic.Diagnostic.
func lintDiagToDiagnostic(ld lintpkg.Diagnostic) diagnostic.Diagnostic {
	d := diagnostic.Diagnostic{
		Severity: lintSeverity(ld.Severity),
		Message:  ld.Message + " (" + ld.Analyzer + ")",
	}
	if ld.Pos.Line > 0 {
		d.Spans = append(d.Spans, diagnostic.Span{
			File: ld.Pos.File,
			Line: ld.Pos.Line,
			Col:  ld.Pos.Col,
		})
	}
	d.Notes = append(d.Notes, ld.Notes...)
	d.Notes = append(d.Notes, "to suppress: add \"; nolint:"+ld.Analyzer+"\" as a comment on this line")
	return d
}

func lintSeverity(sev lintpkg.Severity) diagnostic.Severity {
	switch sev {
	case lintpkg.SeverityError:
		return diagnostic.SeverityError
	case lintpkg.SeverityInfo:
		return diagnostic.SeverityNote
	default:
		return diagnostic.SeverityWarning
	}
}

// renderLispError renders an error value with its source snippet and call
// stack.  If sourceFile is non-empty a hint to run the linter is appended.
func renderLispError(w io.Writer, mode diagnostic.ColorMode, lerr *lisp.LVal, sourceFile string) {
	d := (*lisp.ErrorVal)(lerr).Diagnostic()
	if sourceFile != "" {
		d.Notes = append(d.Notes, "try: mscheme lint "+sourceFile)
	}
	_ = newRenderer(mode).Render(w, d)
}

func renderLintDiagnostics(w io.Writer, mode diagnostic.ColorMode, diags []lintpkg.Diagnostic) {
	ds := make([]diagnostic.Diagnostic, 0, len(diags))
	for _, ld := range diags {
		ds = append(ds, lintDiagToDiagnostic(ld))
	}
	_ = newRenderer(mode).RenderAll(w, ds)
}
