// Copyright © 2024 The ELPS authors

package regexparser_test

import (
	"strings"
	"testing"

	"github.com/luthersystems/minischeme/lisp"
	"github.com/luthersystems/minischeme/parser/lexer"
	"github.com/luthersystems/minischeme/parser/rdparser"
	"github.com/luthersystems/minischeme/parser/regexparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var corpus = []string{
	`42`,
	`-0.5`,
	`abc`,
	`#t`,
	`nil`,
	`'hello world'`,
	`'it\'s (quoted)'`,
	`()`,
	`(and)`,
	`(+ 1 1)`,
	`(car (quote ()))`,
	`(define add2 (lambda n (+ n 2)))`,
	`((lambda (x y) (* x y)) 3 4)`,
	"(define a 2)\n(define b 1)\n(+ a b)",
	"; leading comment\n(println 'hi') ; trailing comment\n",
	"(if (= 1 1)\n    'yes'\n    'no')",
	`(a (b (c (d 'e;f'))))`,
	";; a comment line */ with a block terminator\n(+ 1 2)\n",
}

func TestReadersAgree(t *testing.T) {
	for i, src := range corpus {
		want, err := rdparser.NewReader().Read("test", strings.NewReader(src))
		require.NoError(t, err, "test %d", i)
		got, err := regexparser.NewReader().Read("test", strings.NewReader(src))
		require.NoError(t, err, "test %d", i)
		if !assert.Len(t, got, len(want), "test %d: %q", i, src) {
			continue
		}
		for j := range want {
			assert.True(t, want[j].Equal(got[j]), "test %d expr %d: %v != %v", i, j, want[j], got[j])
			assert.Equal(t, want[j].String(), got[j].String(), "test %d expr %d", i, j)
		}
	}
}

func TestReaderLocations(t *testing.T) {
	exprs, err := regexparser.NewReader().Read("test.scm", strings.NewReader("(define a 2)\n  (+ a\n b)"))
	require.NoError(t, err)
	require.Len(t, exprs, 2)
	require.NotNil(t, exprs[1].Source)
	assert.Equal(t, "test.scm:2:3", exprs[1].Source.String())
	b := exprs[1].Cells[2]
	require.NotNil(t, b.Source)
	assert.Equal(t, 3, b.Source.Line)
	assert.Equal(t, 2, b.Source.Col)
}

func TestReaderUnbalanced(t *testing.T) {
	_, err := regexparser.NewReader().Read("test", strings.NewReader("(+ 1 2"))
	assert.ErrorIs(t, err, lexer.ErrUnbalanced)
}

func TestParseLValTypes(t *testing.T) {
	vals, n, err := regexparser.ParseLVal("test", []byte(`(1 'a' b #f nil)`))
	require.NoError(t, err)
	assert.Equal(t, 16, n)
	require.Len(t, vals, 1)
	types := []lisp.LType{lisp.LNumber, lisp.LString, lisp.LSymbol, lisp.LBool, lisp.LNil}
	for i, typ := range types {
		assert.Equal(t, typ, vals[0].Cells[i].Type, "cell %d", i)
	}
}
