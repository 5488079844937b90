// Copyright © 2024 The ELPS authors

// Package regexparser provides an alternate mini-scheme reader built from
// parser combinators.
//
//	expr    := '(' <expr>* ')' | <string> | <atom>
//	string  := '\'' <strchar>* '\''
//	strchar := /[^'\\]/ | '\' /./
//	atom    := /[^\s()';]+/
//	comment := ';' /[^\n]*/
//
// Atoms are classified with the same rules the recursive descent parser uses,
// so the two readers produce identical trees for well formed input.
package regexparser

import (
	"fmt"
	"io"
	"sort"

	"github.com/luthersystems/minischeme/lisp"
	"github.com/luthersystems/minischeme/parser/lexer"
	"github.com/luthersystems/minischeme/parser/rdparser"
	"github.com/luthersystems/minischeme/parser/token"
	parsec "github.com/prataprc/goparsec"
)

// NewReader returns a lisp.Reader.
func NewReader() lisp.Reader {
	return &parsecReader{}
}

type parsecReader struct{}

func (p *parsecReader) Read(name string, r io.Reader) ([]*lisp.LVal, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	err = lexer.CheckBalance(token.Location{File: name, Line: 1, Col: 1}, string(b))
	if err != nil {
		return nil, err
	}
	vals, n, err := ParseLVal(name, b)
	if err != nil {
		return nil, err
	}
	if n != len(b) {
		return nil, io.ErrUnexpectedEOF
	}
	return vals, nil
}

const (
	nodeInvalid nodeType = iota
	nodeTerm
	nodeList
)

var nodeTypeStrings = []string{
	nodeInvalid: "INVALID",
	nodeTerm:    "TERM",
	nodeList:    "LIST",
}

type nodeType uint

func (t nodeType) String() string {
	if int(t) >= len(nodeTypeStrings) {
		return "INVALID"
	}
	return nodeTypeStrings[t]
}

// ParseLVal parses LVal values from text and returns them.  The number of
// bytes read is returned along with any error that was encountered in parsing.
func ParseLVal(name string, text []byte) ([]*lisp.LVal, int, error) {
	var v []*lisp.LVal
	lines := newLineIndex(name, text)
	s := parsec.NewScanner(text)
	parser := newParsecParser(lines)
	root, s := parser(s)
	for root != nil {
		if lval := getLVal(root); lval != nil {
			v = append(v, lval)
		}
		root, s = parser(s)
	}
	_, s = s.SkipWS()
	if !s.Endof() {
		b, _ := s.Match(`.{1,16}`)
		if len(b) > 15 {
			b = append(b[:15:15], []byte("...")...)
		}
		loc := lines.location(s.GetCursor())
		return v, s.GetCursor(), &token.LocationError{
			Err:    fmt.Errorf("unexpected source text possibly starting: %s", b),
			Source: loc,
		}
	}
	return v, s.GetCursor(), nil
}

func newParsecParser(lines *lineIndex) parsec.Parser {
	openP := parsec.Atom("(", "OPENP")
	closeP := parsec.Atom(")", "CLOSEP")
	comment := parsec.Token(`;[^\n]*`, "COMMENT")
	str := parsec.Token(`'(?:[^'\\]|\\(?s:.))*'`, "STRING")
	atom := parsec.Token(`[^\s()';]+`, "ATOM")
	term := parsec.OrdChoice(termNode(lines), str, atom)
	var expr parsec.Parser // forward declaration allows for recursive parsing
	exprList := parsec.Kleene(nil, &expr)
	list := parsec.And(listNode(lines), openP, exprList, closeP)
	expr = parsec.OrdChoice(nil, comment, term, list)
	return expr
}

func termNode(lines *lineIndex) parsec.Nodify {
	return func(nodes []parsec.ParsecNode) parsec.ParsecNode {
		return newAST(nodeTerm, nodes, lines)
	}
}

func listNode(lines *lineIndex) parsec.Nodify {
	return func(nodes []parsec.ParsecNode) parsec.ParsecNode {
		return newAST(nodeList, nodes, lines)
	}
}

func newAST(typ nodeType, nodes []parsec.ParsecNode, lines *lineIndex) parsec.ParsecNode {
	nodes = cleanParsecNodeList(nodes)
	switch typ {
	case nodeTerm:
		term, ok := nodes[0].(*parsec.Terminal)
		if !ok {
			panic(fmt.Sprintf("unexpected term node: %T", nodes[0]))
		}
		return rdparser.ParseAtom(&token.Token{
			Type:   token.ATOM,
			Text:   term.GetValue(),
			Source: lines.location(term.GetPosition()),
		})
	case nodeList:
		lval := lisp.List()
		for _, c := range nodes {
			switch c := c.(type) {
			case *lisp.LVal:
				lval.Cells = append(lval.Cells, c)
			case *parsec.Terminal:
				if c.GetName() == "OPENP" {
					lval.Source = lines.location(c.GetPosition())
				}
			}
		}
		return lval
	default:
		panic(fmt.Sprintf("unknown nodeType: %s (%d)", typ, typ))
	}
}

// cleanParsecNodeList flattens nested node lists and drops comments.
func cleanParsecNodeList(lis []parsec.ParsecNode) []parsec.ParsecNode {
	var nodes []parsec.ParsecNode
	for _, n := range lis {
		switch node := n.(type) {
		case *parsec.Terminal:
			if node.GetName() == "COMMENT" {
				continue
			}
			nodes = append(nodes, node)
		case []parsec.ParsecNode:
			nodes = append(nodes, cleanParsecNodeList(node)...)
		default:
			nodes = append(nodes, node)
		}
	}
	return nodes
}

func getLVal(root parsec.ParsecNode) *lisp.LVal {
	nodes := cleanParsecNodeList([]parsec.ParsecNode{root})
	if len(nodes) == 0 {
		return nil
	}
	lval, ok := nodes[0].(*lisp.LVal)
	if !ok {
		// we can be here if there is only a comment on a line
		return nil
	}
	return lval
}

// lineIndex maps byte offsets reported by goparsec to line and column
// locations.
type lineIndex struct {
	name   string
	text   []byte
	starts []int
}

func newLineIndex(name string, text []byte) *lineIndex {
	idx := &lineIndex{name: name, text: text, starts: []int{0}}
	for i, c := range text {
		if c == '\n' {
			idx.starts = append(idx.starts, i+1)
		}
	}
	return idx
}

func (idx *lineIndex) location(pos int) *token.Location {
	line := sort.Search(len(idx.starts), func(i int) bool { return idx.starts[i] > pos }) - 1
	if line < 0 {
		line = 0
	}
	lineStart := idx.starts[line]
	end := pos
	if end > len(idx.text) {
		end = len(idx.text)
	}
	col := len([]rune(string(idx.text[lineStart:end]))) + 1
	return &token.Location{File: idx.name, Pos: pos, Line: line + 1, Col: col}
}
