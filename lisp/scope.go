// Copyright © 2024 The ELPS authors

package lisp

import (
	"sort"
)

// Scope is one layer of bindings.  Scopes are linked to their lexical
// parent.  The global scope has no parent.
type Scope struct {
	Parent   *Scope
	bindings map[string]*LVal
	global   bool
}

// NewScope returns an empty scope whose lookups fall back to parent.
func NewScope(parent *Scope) *Scope {
	return &Scope{
		Parent:   parent,
		bindings: make(map[string]*LVal),
	}
}

func newGlobalScope() *Scope {
	s := NewScope(nil)
	s.global = true
	return s
}

// IsGlobal returns true if s is the global scope of an environment.
func (s *Scope) IsGlobal() bool {
	return s.global
}

// Get looks up name in s and its ancestors.  Get returns the bound value
// along with the scope containing the binding, or nil values if name is
// unbound.
func (s *Scope) Get(name string) (*LVal, *Scope) {
	for cur := s; cur != nil; cur = cur.Parent {
		if v, ok := cur.bindings[name]; ok {
			return v, cur
		}
	}
	return nil, nil
}

// Put binds name to v in s, replacing any existing binding in s.
func (s *Scope) Put(name string, v *LVal) {
	s.bindings[name] = v
}

// Names returns the names bound directly in s, sorted.
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.bindings))
	for name := range s.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
