// Copyright © 2024 The ELPS authors

package repl

import (
	"sort"
	"strings"

	"github.com/luthersystems/minischeme/lisp"
)

// symbolCompleter implements readline.AutoCompleter over the builtin
// operators, the literals and the global definitions of env.
type symbolCompleter struct {
	env *lisp.LEnv
}

var literals = []string{lisp.TrueLiteral, lisp.FalseLiteral, lisp.NilLiteral}

func (c *symbolCompleter) Do(line []rune, pos int) ([][]rune, int) {
	// The word being typed extends back to whitespace or an open paren.
	start := pos
	for start > 0 {
		ch := line[start-1]
		if ch == ' ' || ch == '\t' || ch == '(' || ch == '\n' {
			break
		}
		start--
	}
	prefix := string(line[start:pos])
	if prefix == "" {
		return nil, 0
	}

	candidates := c.collectSymbols(prefix)
	if len(candidates) == 0 {
		return nil, 0
	}
	result := make([][]rune, 0, len(candidates))
	for _, sym := range candidates {
		result = append(result, []rune(sym[len(prefix):]))
	}
	return result, len(prefix)
}

func (c *symbolCompleter) collectSymbols(prefix string) []string {
	seen := make(map[string]bool)
	var result []string
	add := func(names []string) {
		for _, name := range names {
			if strings.HasPrefix(name, prefix) && !seen[name] {
				seen[name] = true
				result = append(result, name)
			}
		}
	}
	add(lisp.OpNames())
	add(literals)
	add(c.env.GlobalNames())
	sort.Strings(result)
	return result
}
