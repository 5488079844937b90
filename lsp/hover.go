// Copyright © 2024 The ELPS authors

package lsp

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/luthersystems/minischeme/lint"
	"github.com/luthersystems/minischeme/lisp"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) textDocumentHover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}

	doc.mu.Lock()
	defer doc.mu.Unlock()

	name := wordAtPosition(doc.Content, int(params.Position.Line), int(params.Position.Character))
	if name == "" {
		return nil, nil
	}
	content := s.buildHoverContent(doc, name)
	if content == "" {
		return nil, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: content,
		},
	}, nil
}

// buildHoverContent builds Markdown hover text for name.  Builtins take
// precedence over definitions because a definition cannot shadow them.
func (s *Server) buildHoverContent(doc *Document, name string) string {
	var sb strings.Builder
	if op, ok := lisp.LookupOp(name); ok {
		fmt.Fprintf(&sb, "**builtin** `%s`", name)
		fmt.Fprintf(&sb, "\n\n```scheme\n%s\n```", op.Signature())
		if doc := op.Doc(); doc != "" {
			fmt.Fprintf(&sb, "\n\n%s", doc)
		}
		return sb.String()
	}
	if def, ok := doc.defs[name]; ok {
		fmt.Fprintf(&sb, "**definition** `%s`", name)
		if sig := lambdaSignature(name, defValue(def.Form)); sig != "" {
			fmt.Fprintf(&sb, "\n\n```scheme\n%s\n```", sig)
		}
		fmt.Fprintf(&sb, "\n\n```scheme\n%s\n```", def.Form)
		if def.Source != nil && def.Source.Line > 0 {
			fmt.Fprintf(&sb, "\n\n*Defined in %s:%d*", filepath.Base(def.Source.File), def.Source.Line)
		}
		return sb.String()
	}
	if expr := s.globalExpr(name); expr != nil {
		fmt.Fprintf(&sb, "**global** `%s`", name)
		if sig := lambdaSignature(name, expr); sig != "" {
			fmt.Fprintf(&sb, "\n\n```scheme\n%s\n```", sig)
		}
		fmt.Fprintf(&sb, "\n\n```scheme\n%s\n```", expr)
		return sb.String()
	}
	return ""
}

// globalExpr returns the unevaluated expression bound to name in the
// server environment, or nil.
func (s *Server) globalExpr(name string) *lisp.LVal {
	if s.env == nil {
		return nil
	}
	v, _ := s.env.Global.Get(name)
	return v
}

// defValue returns the bound expression of a define form, or nil.
func defValue(form *lisp.LVal) *lisp.LVal {
	if len(form.Cells) < 3 {
		return nil
	}
	return form.Cells[2]
}

// lambdaSignature renders "(name params...)" when expr is a lambda
// expression or closure, and "" otherwise.
func lambdaSignature(name string, expr *lisp.LVal) string {
	if expr == nil {
		return ""
	}
	var params []*lisp.LVal
	switch {
	case expr.Type == lisp.LLambda:
		params = expr.Lambda.Params
	case lint.HeadSymbol(expr) == "lambda" && len(expr.Cells) > 1 && expr.Cells[1].Type == lisp.LList:
		params = expr.Cells[1].Cells
	default:
		return ""
	}
	parts := []string{name}
	for _, p := range params {
		parts = append(parts, p.String())
	}
	return "(" + strings.Join(parts, " ") + ")"
}
