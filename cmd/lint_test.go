// Copyright © 2024 The ELPS authors

package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/luthersystems/minischeme/lint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runLint(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := LintCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func exitCode(err error) int {
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	if err != nil {
		return -1
	}
	return 0
}

func writeSource(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	return path
}

func TestLintCommand_Flags(t *testing.T) {
	cmd := LintCommand()
	assert.Equal(t, "lint [flags] [files...]", cmd.Use)
	for _, name := range []string{"json", "checks", "list", "exclude"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
	for _, a := range lint.DefaultAnalyzers() {
		assert.Contains(t, cmd.Long, a.Name)
	}
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)
}

func TestLintCommand_List(t *testing.T) {
	stdout, _, err := runLint(t, "", "--list")
	require.NoError(t, err)
	var names []string
	for _, a := range lint.DefaultAnalyzers() {
		names = append(names, a.Name)
	}
	assert.Equal(t, strings.Join(names, "\n")+"\n", stdout)
}

func TestLintCommand_Clean(t *testing.T) {
	path := writeSource(t, "ok.scm", "(define sq (lambda (x) (* x x)))\n(sq 3)\n")
	stdout, stderr, err := runLint(t, "", path)
	assert.Equal(t, 0, exitCode(err))
	assert.Empty(t, stdout)
	assert.Empty(t, stderr)
}

func TestLintCommand_Findings(t *testing.T) {
	path := writeSource(t, "bad.scm", "(car (quote (1)) 2)\n")
	_, stderr, err := runLint(t, "", path)
	assert.Equal(t, 1, exitCode(err))
	assert.Contains(t, stderr, "builtin-arity")
	assert.Contains(t, stderr, "bad.scm")
}

func TestLintCommand_JSON(t *testing.T) {
	stdout, _, err := runLint(t, "(define a a)\n", "--json")
	assert.Equal(t, 1, exitCode(err))
	assert.NotContains(t, stdout, "Usage:")
	var diags []lint.Diagnostic
	require.NoError(t, json.Unmarshal([]byte(stdout), &diags))
	require.Len(t, diags, 1)
	assert.Equal(t, "self-define", diags[0].Analyzer)
	assert.Equal(t, "<stdin>", diags[0].Pos.File)
	assert.Equal(t, 1, diags[0].Pos.Line)
}

func TestLintCommand_Checks(t *testing.T) {
	_, _, err := runLint(t, "(define a a)\n", "--checks=builtin-arity")
	assert.Equal(t, 0, exitCode(err))

	stdout, stderr, err := runLint(t, "", "--checks=no-such-check")
	assert.Equal(t, 2, exitCode(err))
	assert.Contains(t, stderr, "unknown check: no-such-check")
	assert.NotContains(t, stderr, "Usage:")
	assert.Empty(t, stdout)
}

func TestLintCommand_Nolint(t *testing.T) {
	_, _, err := runLint(t, "(define a a) ; nolint:self-define\n")
	assert.Equal(t, 0, exitCode(err))
}

func TestLintCommand_BadInput(t *testing.T) {
	_, stderr, err := runLint(t, "(car (quote (1))\n")
	assert.Equal(t, 2, exitCode(err))
	assert.Contains(t, stderr, "<stdin>")

	_, _, err = runLint(t, "", filepath.Join(t.TempDir(), "missing.scm"))
	assert.Equal(t, 2, exitCode(err))
}
