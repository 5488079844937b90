// Copyright © 2024 The ELPS authors

package rdparser

import (
	"strings"
	"testing"

	"github.com/luthersystems/minischeme/lisp"
	"github.com/luthersystems/minischeme/parser/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser(t *testing.T) {
	tests := []struct {
		source string
		output string
	}{
		{`0`, `0`},
		{`12`, `12`},
		{`0.3`, `0.3`},
		{`-1`, `-1`},
		{`1.50`, `1.5`},
		{`abc`, `abc`},
		{`-`, `-`},
		{`#t`, `#t`},
		{`#f`, `#f`},
		{`nil`, `nil`},
		{`'xyz'`, `'xyz'`},
		{`'x y z'`, `'x y z'`},
		{`'it\'s'`, `'it\'s'`},
		{`''`, `''`},
		{`()`, `()`},
		{`(f)`, `(f)`},
		{`(and)`, `(and)`},
		{`(+ 1 1)`, `(+ 1 1)`},
		{`(1 'abc' (x y z))`, `(1 'abc' (x y z))`},
		{`(car (quote ()))`, `(car (quote ()))`},
		{`((lambda x x) 1)`, `((lambda x x) 1)`},
		{`(define add2 (lambda n (+ n 2)))`, `(define add2 (lambda n (+ n 2)))`},
		{`(a (b (c (d))))`, `(a (b (c (d))))`},
		{`(a) (b)`, `((a) (b))`},
	}
	for i, test := range tests {
		toks, err := lexer.Lex("test", test.source)
		if !assert.NoError(t, err, "test %d", i) {
			continue
		}
		v := Parse(toks)
		assert.Equal(t, test.output, v.String(), "test %d: %q", i, test.source)
	}
}

func TestParseAtom(t *testing.T) {
	tests := []struct {
		text string
		typ  lisp.LType
	}{
		{`'hello'`, lisp.LString},
		{`'a\'b'`, lisp.LString},
		{`'a'b'`, lisp.LSymbol},
		{`'abc`, lisp.LSymbol},
		{`42`, lisp.LNumber},
		{`-3.25`, lisp.LNumber},
		{`1e3`, lisp.LNumber},
		{`#t`, lisp.LBool},
		{`#f`, lisp.LBool},
		{`#T`, lisp.LSymbol},
		{`nil`, lisp.LNil},
		{`NIL`, lisp.LSymbol},
		{`car`, lisp.LSymbol},
		{`+`, lisp.LSymbol},
	}
	for i, test := range tests {
		v := parseAtomText(test.text)
		assert.Equal(t, test.typ, v.Type, "test %d: %q", i, test.text)
	}
}

func TestParseNumberIsExact(t *testing.T) {
	v := parseAtomText("0.1")
	require.Equal(t, lisp.LNumber, v.Type)
	assert.Equal(t, "0.1", v.Num.String())

	v = parseAtomText("123456789012345678901234567890.000000000000000000001")
	require.Equal(t, lisp.LNumber, v.Type)
	assert.Equal(t, "123456789012345678901234567890.000000000000000000001", v.Num.String())
}

func TestUnquote(t *testing.T) {
	tests := []struct {
		text string
		out  string
		ok   bool
	}{
		{`'abc'`, "abc", true},
		{`'a\'b'`, "a'b", true},
		{`'a\\b'`, `a\b`, true},
		{`'line\n'`, "line\n", true},
		{`'tab\tstop'`, "tab\tstop", true},
		{`'\q'`, `\q`, true},
		{`abc`, "", false},
		{`'`, "", false},
		{`'a'b'`, "", false},
	}
	for i, test := range tests {
		out, ok := Unquote(test.text)
		assert.Equal(t, test.ok, ok, "test %d: %q", i, test.text)
		assert.Equal(t, test.out, out, "test %d: %q", i, test.text)
	}
}

func TestParseSource(t *testing.T) {
	toks, err := lexer.Lex("test.scm", "(define x\n  (quote (1 2)))")
	require.NoError(t, err)
	v := Parse(toks)
	require.Equal(t, lisp.LList, v.Type)
	require.NotNil(t, v.Source)
	assert.Equal(t, "test.scm:1:1", v.Source.String())
	quoted := v.Cells[2]
	require.NotNil(t, quoted.Source)
	assert.Equal(t, 2, quoted.Source.Line)
	assert.Equal(t, 3, quoted.Source.Col)
}

func TestReader(t *testing.T) {
	src := `; constants
(define a 2)
(define b 1)

(+ a
   b)
`
	exprs, err := NewReader().Read("test.scm", strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, exprs, 3)
	assert.Equal(t, "(define a 2)", exprs[0].String())
	assert.Equal(t, "(+ a b)", exprs[2].String())
	assert.Equal(t, 5, exprs[2].Source.Line)
}

func TestReaderSyntaxError(t *testing.T) {
	exprs, err := NewReader().Read("test.scm", strings.NewReader("(define a 2)\n(+ a 1"))
	assert.Nil(t, exprs)
	assert.ErrorIs(t, err, lexer.ErrUnbalanced)
	assert.Contains(t, err.Error(), "test.scm:2:1")
}

func TestReadLocation(t *testing.T) {
	r := NewReader().(lisp.LocationReader)
	exprs, err := r.ReadLocation("logical", "/path/to/file.scm", strings.NewReader("(foo)"))
	require.NoError(t, err)
	require.Len(t, exprs, 1)
	assert.Equal(t, "logical", exprs[0].Source.File)
	assert.Equal(t, "/path/to/file.scm", exprs[0].Source.Path)
}

func TestParseString(t *testing.T) {
	v, err := ParseString("stdin", "(+ 1 1)")
	require.NoError(t, err)
	assert.Equal(t, "(+ 1 1)", v.String())

	_, err = ParseString("stdin", "(+ 1 1")
	assert.ErrorIs(t, err, lexer.ErrUnbalanced)
}
