// Copyright © 2024 The ELPS authors

package lsp

import (
	"github.com/luthersystems/minischeme/lint"
	"github.com/luthersystems/minischeme/lisp"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentDocumentSymbol lists the top-level definitions of a document
// in source order.
func (s *Server) textDocumentDocumentSymbol(_ *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}

	doc.mu.Lock()
	defer doc.mu.Unlock()

	symbols := []protocol.DocumentSymbol{}
	for _, expr := range doc.ast {
		def, ok := doc.defs[defineName(expr)]
		if !ok || def.Form != expr || def.Source == nil {
			continue
		}
		kind := protocol.SymbolKindVariable
		var detail *string
		if sig := lambdaSignature(def.Name, defValue(def.Form)); sig != "" {
			kind = protocol.SymbolKindFunction
			detail = strPtr(sig)
		}
		r := schemeToLSPRange(def.Source, len(def.Name))
		symbols = append(symbols, protocol.DocumentSymbol{
			Name:           def.Name,
			Detail:         detail,
			Kind:           kind,
			Range:          r,
			SelectionRange: r,
		})
	}
	return symbols, nil
}

// defineName returns the symbol named by a top-level define form, or "".
func defineName(expr *lisp.LVal) string {
	if lint.HeadSymbol(expr) != "define" || len(expr.Cells) < 2 || expr.Cells[1].Type != lisp.LSymbol {
		return ""
	}
	return expr.Cells[1].Str
}
