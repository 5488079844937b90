// Copyright © 2024 The ELPS authors

package lisp_test

import (
	"testing"

	"github.com/luthersystems/minischeme/lisp"
	"github.com/luthersystems/minischeme/parser/rdparser"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLValString(t *testing.T) {
	tests := []struct {
		v   *lisp.LVal
		out string
	}{
		{lisp.Int(3), "3"},
		{lisp.Number(decimal.RequireFromString("1.2500")), "1.25"},
		{lisp.Bool(true), "#t"},
		{lisp.Bool(false), "#f"},
		{lisp.Nil(), "nil"},
		{lisp.Symbol("car"), "car"},
		{lisp.String("a 'b'\n"), `'a \'b\'\n'`},
		{lisp.List(), "()"},
		{lisp.List(lisp.Symbol("+"), lisp.Int(1), lisp.List(lisp.String("x"))), "(+ 1 ('x'))"},
		{lisp.Lambda([]*lisp.LVal{lisp.Symbol("x")}, lisp.List(lisp.Symbol("f"), lisp.Symbol("x")), nil), "(lambda (x) (f x))"},
		{lisp.ErrorConditionf(lisp.CondTypeError, "bad %s", "thing"), "type-error: bad thing"},
	}
	for i, test := range tests {
		assert.Equal(t, test.out, test.v.String(), "test %d", i)
	}
}

func TestLValEqual(t *testing.T) {
	one := lisp.Int(1)
	oneDotZero := lisp.Number(decimal.RequireFromString("1.0"))
	assert.True(t, one.Equal(oneDotZero))
	assert.False(t, one.Equal(lisp.String("1")))
	assert.False(t, lisp.List().Equal(lisp.Nil()))
	assert.True(t, lisp.Nil().Equal(lisp.Nil()))
	assert.True(t, lisp.List(one, lisp.List(lisp.Symbol("a"))).Equal(lisp.List(oneDotZero, lisp.List(lisp.Symbol("a")))))
	assert.False(t, lisp.List(one).Equal(lisp.List(one, one)))
	assert.False(t, lisp.Symbol("a").Equal(lisp.String("a")))

	global := lisp.NewEnv(nil).Scope()
	f := lisp.Lambda([]*lisp.LVal{lisp.Symbol("x")}, lisp.Symbol("x"), nil)
	g := lisp.Lambda([]*lisp.LVal{lisp.Symbol("x")}, lisp.Symbol("x"), global)
	h := lisp.Lambda([]*lisp.LVal{lisp.Symbol("y")}, lisp.Symbol("y"), nil)
	assert.True(t, f.Equal(g))
	assert.False(t, f.Equal(h))
}

func TestLValEqualIgnoresSource(t *testing.T) {
	a, err := rdparser.ParseString("a.scm", "(f 1 'x')")
	require.NoError(t, err)
	b, err := rdparser.ParseString("b.scm", "\n\n   (f 1 'x')")
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
}

func TestNumberRoundTrip(t *testing.T) {
	for _, text := range []string{"0", "42", "-17", "3.14159", "0.000001", "123456789012345678901234567890.5"} {
		v, err := rdparser.ParseString("test", text)
		require.NoError(t, err)
		require.Equal(t, lisp.LNumber, v.Type, text)
		again, err := rdparser.ParseString("test", v.String())
		require.NoError(t, err)
		assert.True(t, v.Equal(again), "%s != %s", v, again)
	}
}

func TestLTypeString(t *testing.T) {
	assert.Equal(t, "list", lisp.LList.String())
	assert.Equal(t, "number", lisp.LNumber.String())
	assert.Equal(t, "INVALID", lisp.LType(100).String())
}

func TestGoString(t *testing.T) {
	s, ok := lisp.GoString(lisp.String("abc"))
	assert.True(t, ok)
	assert.Equal(t, "abc", s)
	_, ok = lisp.GoString(lisp.Symbol("abc"))
	assert.False(t, ok)
}
