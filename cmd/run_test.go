// Copyright © 2024 The ELPS authors

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCommand() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	return cmd, &stdout, &stderr
}

func setRunPrint(t *testing.T, v bool) {
	t.Helper()
	old := runPrint
	runPrint = v
	t.Cleanup(func() { runPrint = old })
}

func TestRunFiles_Expressions(t *testing.T) {
	setRunPrint(t, true)
	cmd, stdout, stderr := testCommand()
	err := runFiles(cmd, settings{}, []string{
		"(define sq (lambda (x) (* x x)))",
		"(sq 12)",
	}, true)
	require.NoError(t, err, stderr.String())
	assert.Equal(t, "sq\n144\n", stdout.String())
}

func TestRunFiles_SharedEnvironment(t *testing.T) {
	setRunPrint(t, false)
	lib := writeSource(t, "lib.scm", "(define inc (lambda (n) (+ n 1)))\n")
	main := writeSource(t, "main.scm", "(println (string (inc 41)))\n")
	cmd, stdout, stderr := testCommand()
	require.NoError(t, runFiles(cmd, settings{}, []string{lib, main}, false), stderr.String())
	assert.Equal(t, "42\n", stdout.String())
}

func TestRunFiles_Error(t *testing.T) {
	setRunPrint(t, false)
	path := writeSource(t, "bad.scm", "(println '1')\n(car (quote ()))\n(println '2')\n")
	cmd, stdout, stderr := testCommand()
	err := runFiles(cmd, settings{}, []string{path}, false)
	assert.Equal(t, 1, exitCode(err))
	assert.Equal(t, "1\n", stdout.String())
	assert.Contains(t, stderr.String(), "empty-list")
	assert.Contains(t, stderr.String(), "bad.scm:2")
}

func TestRunFiles_SyntaxError(t *testing.T) {
	setRunPrint(t, false)
	cmd, _, stderr := testCommand()
	err := runFiles(cmd, settings{}, []string{"(car (quote (1))"}, true)
	assert.Equal(t, 1, exitCode(err))
	assert.Contains(t, stderr.String(), "syntax-error")
}

func TestRunFiles_MissingFile(t *testing.T) {
	cmd, _, _ := testCommand()
	err := runFiles(cmd, settings{}, []string{"/nonexistent/missing.scm"}, false)
	require.Error(t, err)
	assert.Equal(t, -1, exitCode(err))
}

func TestRunFiles_BadReader(t *testing.T) {
	cmd, _, _ := testCommand()
	err := runFiles(cmd, settings{Reader: "bogus"}, []string{"1"}, true)
	assert.Error(t, err)
}

func TestRunFiles_TraceOpenTelemetry(t *testing.T) {
	setRunPrint(t, false)
	cmd, _, stderr := testCommand()
	err := runFiles(cmd, settings{Trace: true}, []string{"(car (quote (1 2)))"}, true)
	require.NoError(t, err, stderr.String())
	assert.Contains(t, stderr.String(), "trace: car")
	assert.Contains(t, stderr.String(), "scheme.builtin=true")
}

func TestRunFiles_TraceOpenCensus(t *testing.T) {
	setRunPrint(t, false)
	cmd, _, stderr := testCommand()
	s := settings{Trace: true, TraceBackend: traceOpenCensus}
	err := runFiles(cmd, s, []string{"(car (quote (1 2)))"}, true)
	require.NoError(t, err, stderr.String())
	assert.Contains(t, stderr.String(), "trace: car")
	assert.Contains(t, stderr.String(), "builtin=true")
}

func TestRunFiles_TraceUnknownBackend(t *testing.T) {
	cmd, _, _ := testCommand()
	err := runFiles(cmd, settings{Trace: true, TraceBackend: "zipkin"}, []string{"1"}, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zipkin")
}

func TestRunFiles_Callgrind(t *testing.T) {
	setRunPrint(t, false)
	out := filepath.Join(t.TempDir(), "callgrind.out")
	cmd, _, stderr := testCommand()
	err := runFiles(cmd, settings{Callgrind: out}, []string{
		"(define sq (lambda (x) (* x x)))",
		"(sq 3)",
	}, true)
	require.NoError(t, err, stderr.String())
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "version: 1\ncreator: mscheme "))
	assert.Contains(t, string(b), "sq@expr2:1")
}

func TestRunFiles_CPUProfile(t *testing.T) {
	setRunPrint(t, false)
	out := filepath.Join(t.TempDir(), "cpu.pprof")
	cmd, _, stderr := testCommand()
	err := runFiles(cmd, settings{CPUProfile: out}, []string{"(+ 1 2)"}, true)
	require.NoError(t, err, stderr.String())
	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRunFiles_MultipleProfilers(t *testing.T) {
	cmd, _, _ := testCommand()
	s := settings{Trace: true, Callgrind: filepath.Join(t.TempDir(), "cg.out")}
	err := runFiles(cmd, s, []string{"1"}, true)
	assert.ErrorIs(t, err, errMultipleProfilers)
}
