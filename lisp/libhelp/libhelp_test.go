// Copyright © 2024 The ELPS authors

package libhelp_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/luthersystems/minischeme/lisp"
	"github.com/luthersystems/minischeme/lisp/libhelp"
	"github.com/luthersystems/minischeme/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEnv(t *testing.T) *lisp.LEnv {
	t.Helper()
	env := lisp.NewEnv(nil)
	rc := lisp.InitializeUserEnv(env, lisp.WithReader(parser.NewReader()))
	require.True(t, rc.IsNil(), "%v", rc)
	return env
}

func TestRenderOpList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, libhelp.RenderOpList(&buf))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, len(lisp.OpNames()))
	assert.Contains(t, buf.String(), "  car       Returns the first element of a list.\n")
	assert.NotContains(t, buf.String(), "Signals an error")
}

func TestRenderVarBuiltin(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, libhelp.RenderVar(&buf, nil, "car"))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "builtin (car list)\n"), out)
	assert.Contains(t, out, "  Returns the first element of a list.")
	for _, line := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
		assert.LessOrEqual(t, len(line), libhelp.WrapWidth+2, line)
	}
}

func TestRenderVarGlobal(t *testing.T) {
	env := newTestEnv(t)
	rc := env.LoadString("test.scm", `
(define square (lambda (x) (* x x)))
(define inc (lambda n (+ n 1)))
(define answer 42)`)
	require.False(t, rc.Type == lisp.LError, "%v", rc)

	var buf bytes.Buffer
	require.NoError(t, libhelp.RenderVar(&buf, env, "square"))
	assert.Equal(t, "lambda (square x)\n", buf.String())

	buf.Reset()
	require.NoError(t, libhelp.RenderVar(&buf, env, "inc"))
	assert.Equal(t, "lambda (inc n)\n", buf.String())

	buf.Reset()
	require.NoError(t, libhelp.RenderVar(&buf, env, "answer"))
	assert.Equal(t, "global answer 42\n", buf.String())

	buf.Reset()
	require.NoError(t, libhelp.RenderGlobals(&buf, env))
	assert.Equal(t, "global answer 42\nlambda (inc n)\nlambda (square x)\n", buf.String())

	err := libhelp.RenderVar(&buf, env, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"missing"`)
}
