// Copyright © 2024 The ELPS authors

package lisp_test

import (
	"bytes"
	"testing"

	"github.com/luthersystems/minischeme/diagnostic"
	"github.com/luthersystems/minischeme/lisp"
	"github.com/luthersystems/minischeme/parser/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallStack(t *testing.T) {
	s := &lisp.CallStack{MaxHeight: 2}
	assert.Nil(t, s.Top())

	loc := &token.Location{File: "test", Line: 1, Col: 5}
	require.NoError(t, s.Push(loc, "f"))
	require.NoError(t, s.Push(nil, "g"))
	err := s.Push(nil, "h")
	var overflow *lisp.StackOverflowError
	require.ErrorAs(t, err, &overflow)
	assert.Equal(t, 3, overflow.Height)
	assert.Len(t, s.Frames, 2)

	cp := s.Copy()
	assert.Equal(t, "g", s.Pop().Name)
	assert.Equal(t, "f", s.Top().Name)
	assert.Len(t, cp.Frames, 2)

	var buf bytes.Buffer
	_, err = cp.DebugPrint(&buf)
	require.NoError(t, err)
	assert.Equal(t, `Stack Trace [2 frames -- entrypoint last]:
  height 1: g
  height 0: test:1:5: f
`, buf.String())

	s.Pop()
	assert.Panics(t, func() { s.Pop() })
}

func TestErrorTrace(t *testing.T) {
	env, _ := testLoaderEnv(t)
	v := env.LoadString("test", "(define f (lambda x (car x)))\n(f 1)")
	require.Equal(t, lisp.LError, v.Type)
	lerr := lisp.GoError(v).(*lisp.ErrorVal)
	assert.Equal(t, lisp.CondTypeError, lerr.Condition())
	assert.Equal(t, "car", lerr.FunName())
	assert.Equal(t, "car expects a list but got number: 1", lerr.ErrorMessage())

	var buf bytes.Buffer
	_, err := lerr.WriteTrace(&buf)
	require.NoError(t, err)
	assert.Equal(t, `test:1:21: type-error: car expects a list but got number: 1
Stack Trace [2 frames -- entrypoint last]:
  height 1: test:1:21: car
  height 0: test:2:1: f
`, buf.String())

	d := lerr.Diagnostic()
	assert.Equal(t, diagnostic.SeverityError, d.Severity)
	assert.Equal(t, "type-error: car expects a list but got number: 1", d.Message)
	require.Len(t, d.Spans, 1)
	assert.Equal(t, 1, d.Spans[0].Line)
	assert.Equal(t, 21, d.Spans[0].Col)
	assert.Equal(t, []string{"in car at test:1:21", "in f at test:2:1"}, d.Notes)
}

func TestGoError(t *testing.T) {
	assert.Nil(t, lisp.GoError(lisp.Int(1)))
	err := lisp.GoError(lisp.ErrorConditionf(lisp.CondIOError, "boom"))
	require.Error(t, err)
	assert.Equal(t, "io-error: boom", err.Error())
}
