// Copyright © 2024 The ELPS authors

package lsp

import (
	"strings"

	"github.com/luthersystems/minischeme/lisp"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

var literalNames = []string{lisp.TrueLiteral, lisp.FalseLiteral, lisp.NilLiteral}

func (s *Server) textDocumentCompletion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}

	doc.mu.Lock()
	defer doc.mu.Unlock()

	prefix := prefixAtPosition(doc.Content, int(params.Position.Line), int(params.Position.Character))
	return s.completions(doc, prefix), nil
}

// completions returns the builtins, literals, document definitions and
// environment globals starting with prefix.  Labels are unique and sorted
// within each group.
func (s *Server) completions(doc *Document, prefix string) []protocol.CompletionItem {
	items := []protocol.CompletionItem{}
	seen := make(map[string]bool)
	add := func(label string, kind protocol.CompletionItemKind, detail string) {
		if seen[label] || !strings.HasPrefix(label, prefix) {
			return
		}
		seen[label] = true
		item := protocol.CompletionItem{Label: label, Kind: &kind}
		if detail != "" {
			item.Detail = strPtr(detail)
		}
		items = append(items, item)
	}

	for _, name := range lisp.OpNames() {
		op, _ := lisp.LookupOp(name)
		add(name, protocol.CompletionItemKindFunction, op.Signature())
	}
	for _, name := range literalNames {
		add(name, protocol.CompletionItemKindConstant, "")
	}
	for _, name := range doc.definitionNames() {
		def := doc.defs[name]
		kind := protocol.CompletionItemKindVariable
		sig := lambdaSignature(name, defValue(def.Form))
		if sig != "" {
			kind = protocol.CompletionItemKindFunction
		}
		add(name, kind, sig)
	}
	if s.env != nil {
		for _, name := range s.env.GlobalNames() {
			kind := protocol.CompletionItemKindVariable
			sig := lambdaSignature(name, s.globalExpr(name))
			if sig != "" {
				kind = protocol.CompletionItemKindFunction
			}
			add(name, kind, sig)
		}
	}
	return items
}
