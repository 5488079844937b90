// Copyright © 2024 The ELPS authors

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) textDocumentDefinition(_ *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}

	doc.mu.Lock()
	defer doc.mu.Unlock()

	name := wordAtPosition(doc.Content, int(params.Position.Line), int(params.Position.Character))
	def, ok := doc.defs[name]
	// Builtins and environment globals have no navigable source.
	if !ok || def.Source == nil || def.Source.Line == 0 {
		return nil, nil
	}
	return protocol.Location{
		URI:   params.TextDocument.URI,
		Range: schemeToLSPRange(def.Source, len(def.Name)),
	}, nil
}
