// Copyright © 2024 The ELPS authors

package lsp

import (
	"sort"
	"sync"

	"github.com/luthersystems/minischeme/lint"
	"github.com/luthersystems/minischeme/lisp"
	"github.com/luthersystems/minischeme/parser/lexer"
	"github.com/luthersystems/minischeme/parser/rdparser"
	"github.com/luthersystems/minischeme/parser/token"
)

// Document represents an open text document tracked by the LSP server.
type Document struct {
	mu          sync.Mutex
	URI         string
	Version     int32
	Content     string
	ast         []*lisp.LVal
	parseErrors []error
	defs        map[string]*definition
}

// definition is a (define name expr) form found in a document.  When a
// name is defined more than once the first definition is kept.
type definition struct {
	Name string
	// Source is the location of the defined name.
	Source *token.Location
	// Form is the whole define expression.
	Form *lisp.LVal
}

// parse parses the document content and caches the AST.  Each top-level
// form is parsed on its own so that one unbalanced form does not hide the
// forms around it.  Forms that fail to parse are recorded in parseErrors.
func (d *Document) parse() {
	path := uriToPath(d.URI)
	d.ast = nil
	d.parseErrors = nil
	for _, chunk := range lexer.ChunkSource(path, d.Content) {
		start := chunk.Start
		start.Path = path
		toks, err := lexer.LexAt(start, chunk.Text)
		if err != nil {
			d.parseErrors = append(d.parseErrors, err)
			continue
		}
		d.ast = append(d.ast, rdparser.Parse(toks))
	}
	d.collectDefinitions()
}

func (d *Document) collectDefinitions() {
	d.defs = make(map[string]*definition)
	lint.WalkCalls(d.ast, func(call *lisp.LVal, _ int) {
		if lint.HeadSymbol(call) != "define" || len(call.Cells) < 2 {
			return
		}
		name := call.Cells[1]
		if name.Type != lisp.LSymbol {
			return
		}
		if _, dup := d.defs[name.Str]; dup {
			return
		}
		d.defs[name.Str] = &definition{
			Name:   name.Str,
			Source: name.Source,
			Form:   call,
		}
	})
}

// definitionNames returns the names defined in the document, sorted.
func (d *Document) definitionNames() []string {
	names := make([]string, 0, len(d.defs))
	for name := range d.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DocumentStore manages open documents with thread-safe access.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewDocumentStore creates an empty document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*Document)}
}

// Open adds a document to the store and parses it.
func (s *DocumentStore) Open(uri string, version int32, content string) *Document {
	doc := &Document{
		URI:     uri,
		Version: version,
		Content: content,
	}
	doc.parse()
	s.mu.Lock()
	s.docs[uri] = doc
	s.mu.Unlock()
	return doc
}

// Change updates a document's content (full sync) and re-parses it.
func (s *DocumentStore) Change(uri string, version int32, content string) *Document {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok {
		doc = &Document{URI: uri}
		s.docs[uri] = doc
	}
	s.mu.Unlock()

	doc.mu.Lock()
	doc.Version = version
	doc.Content = content
	doc.parse()
	doc.mu.Unlock()
	return doc
}

// Close removes a document from the store.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
}

// Get retrieves a document by URI. Returns nil if not found.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[uri]
}

// Len returns the number of open documents.
func (s *DocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
