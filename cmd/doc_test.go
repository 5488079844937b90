// Copyright © 2024 The ELPS authors

package cmd

import (
	"bytes"
	"testing"

	"github.com/luthersystems/minischeme/lisp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runDoc(t *testing.T, opts []Option, args ...string) (string, error) {
	t.Helper()
	cmd := DocCommand(opts...)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestDocCommand_List(t *testing.T) {
	out, err := runDoc(t, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "  car       Returns the first element of a list.\n")
	assert.Contains(t, out, "  lambda ")
}

func TestDocCommand_Builtin(t *testing.T) {
	out, err := runDoc(t, nil, "car")
	require.NoError(t, err)
	assert.Contains(t, out, "builtin (car list)\n")
}

func TestDocCommand_Unknown(t *testing.T) {
	_, err := runDoc(t, nil, "no-such-name")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"no-such-name"`)
}

func TestDocCommand_SourceFile(t *testing.T) {
	path := writeSource(t, "lib.scm", "(define square (lambda (x) (* x x)))\n(define answer 42)\n(println 'loaded')\n")

	out, err := runDoc(t, nil, "-f", path, "square")
	require.NoError(t, err)
	assert.Equal(t, "lambda (square x)\n", out)

	out, err = runDoc(t, nil, "-f", path, "-g")
	require.NoError(t, err)
	assert.Equal(t, "global answer 42\nlambda (square x)\n", out)
}

func TestDocCommand_SourceFileError(t *testing.T) {
	path := writeSource(t, "bad.scm", "(car (quote ()))\n")
	_, err := runDoc(t, nil, "-f", path, "-g")
	assert.Equal(t, 1, exitCode(err))
}

func TestDocCommand_WithEnv(t *testing.T) {
	env, err := settings{}.newEnv(&bytes.Buffer{}, &bytes.Buffer{})
	require.NoError(t, err)
	rc := env.LoadString("embed.scm", "(define greeting 'hi')")
	require.NotEqual(t, lisp.LError, rc.Type, "%v", rc)

	out, err := runDoc(t, []Option{WithEnv(env)}, "-g")
	require.NoError(t, err)
	assert.Contains(t, out, "global greeting")
}
