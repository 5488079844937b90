// Copyright © 2024 The ELPS authors

// Package rdparser builds expression trees from the token stream produced by
// package lexer.
//
// The parser is a recursive descent over a flat token slice.  Tokens
// accumulate in a buffer until the parens in the buffer balance, at which
// point the buffer is closed off as one child and parsing continues with a
// fresh buffer.  A closed buffer holding a parenthesized group is parsed
// recursively from its inner tokens.
package rdparser

import (
	"strings"

	"github.com/luthersystems/minischeme/lisp"
	"github.com/luthersystems/minischeme/parser/token"
	"github.com/shopspring/decimal"
)

// Parse returns the expression represented by tokens.  Parse never fails.
// Input with unbalanced parentheses must be rejected by the lexer before it
// reaches Parse, though stray tokens are tolerated.
//
// An atom wrapped in implicit parens by the lexer is returned unwrapped.  If
// tokens hold more than one top-level expression the result is a list of
// them, and an empty token stream results in nil.
func Parse(tokens []*token.Token) *lisp.LVal {
	if len(tokens) == 3 && tokens[0].Implicit {
		return ParseAtom(tokens[1])
	}
	children := parseSeq(tokens)
	switch len(children) {
	case 0:
		return lisp.Nil()
	case 1:
		return children[0]
	}
	v := lisp.List(children...)
	v.Source = children[0].Source
	return v
}

// parseSeq splits tokens into balanced groups and parses each of them.
func parseSeq(tokens []*token.Token) []*lisp.LVal {
	var children []*lisp.LVal
	var buf []*token.Token
	depth := 0
	for _, tok := range tokens {
		switch tok.Type {
		case token.PAREN_L:
			depth++
		case token.PAREN_R:
			depth--
		}
		if depth < 0 {
			// an unmatched close paren
			depth = 0
			continue
		}
		buf = append(buf, tok)
		if depth == 0 {
			children = append(children, parseGroup(buf, true))
			buf = nil
		}
	}
	if len(buf) > 0 {
		children = append(children, parseGroup(buf, false))
	}
	return children
}

// parseGroup parses a buffer closed off by parseSeq.  The buffer is either a
// single atom token or begins with an open paren.  When closed is true the
// final token is the matching close paren.
func parseGroup(buf []*token.Token, closed bool) *lisp.LVal {
	if buf[0].Type != token.PAREN_L {
		return ParseAtom(buf[0])
	}
	end := len(buf)
	if closed {
		end--
	}
	v := lisp.List(parseSeq(buf[1:end])...)
	v.Source = buf[0].Source
	return v
}

// ParseAtom classifies the text of a single token.  The classifications
// are tried in order and the first match wins: a quoted string, a decimal
// number, a boolean literal, the nil literal.  Anything else is a symbol.
func ParseAtom(tok *token.Token) *lisp.LVal {
	v := parseAtomText(tok.Text)
	v.Source = tok.Source
	return v
}

func parseAtomText(text string) *lisp.LVal {
	if s, ok := Unquote(text); ok {
		return lisp.String(s)
	}
	if d, err := decimal.NewFromString(text); err == nil {
		return lisp.Number(d)
	}
	switch text {
	case lisp.TrueLiteral:
		return lisp.Bool(true)
	case lisp.FalseLiteral:
		return lisp.Bool(false)
	case lisp.NilLiteral:
		return lisp.Nil()
	}
	return lisp.Symbol(text)
}

// IsString reports whether text is a string literal.  String literals begin
// and end with a single quote and every quote between them is preceded by a
// backslash.
func IsString(text string) bool {
	if len(text) < 2 || text[0] != '\'' || text[len(text)-1] != '\'' {
		return false
	}
	inner := text[1 : len(text)-1]
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\'' && (i == 0 || inner[i-1] != '\\') {
			return false
		}
	}
	return true
}

// Unquote strips the delimiters from a string literal and resolves its
// escape sequences.  The second return value is false if text is not a
// string literal.
func Unquote(text string) (string, bool) {
	if !IsString(text) {
		return "", false
	}
	inner := text[1 : len(text)-1]
	if !strings.ContainsRune(inner, '\\') {
		return inner, true
	}
	var b strings.Builder
	b.Grow(len(inner))
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if c != '\\' || i == len(inner)-1 {
			b.WriteByte(c)
			continue
		}
		i++
		switch inner[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case '\'', '\\':
			b.WriteByte(inner[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(inner[i])
		}
	}
	return b.String(), true
}
