// Copyright © 2024 The ELPS authors

package lisp_test

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/luthersystems/minischeme/lisp"
	"github.com/luthersystems/minischeme/parser"
	"github.com/luthersystems/minischeme/parser/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLoaderEnv(t *testing.T) (*lisp.LEnv, *bytes.Buffer) {
	var out bytes.Buffer
	env := lisp.NewEnv(nil)
	lerr := lisp.InitializeUserEnv(env,
		lisp.WithReader(parser.NewReader()),
		lisp.WithLibrary(&lisp.RelativeFileSystemLibrary{}),
		lisp.WithStdout(&out),
	)
	if !lerr.IsNil() {
		t.Fatalf("environment initialization failure: %v", lerr)
	}
	return env, &out
}

func TestLoadFile(t *testing.T) {
	env, _ := testLoaderEnv(t)
	lok := env.LoadFile("testfixtures/test1.scm")
	if lok.Type == lisp.LError {
		t.Fatalf("unable to load test fixture: %v", lok)
	}
	result := env.LoadString("test", "(greet)")
	assert.Equal(t, lisp.LString, result.Type)
	assert.Equal(t, "testing", result.Str)
}

func TestLoadFile_chain(t *testing.T) {
	env, _ := testLoaderEnv(t)
	lok := env.LoadFile("testfixtures/test2.scm")
	if lok.Type == lisp.LError {
		t.Fatalf("unable to load test fixture: %v", lok)
	}

	// test1 is loaded indirectly while test2 is being evaluated
	result := env.Get(lisp.Symbol("greeting"))
	assert.Equal(t, "testing", result.Str)
	result = env.Get(lisp.Symbol("shout"))
	assert.Equal(t, "TESTING", result.Str)
}

func TestLoadFile_chainRecursive(t *testing.T) {
	env, _ := testLoaderEnv(t)
	lok := env.LoadFile("testfixtures/test3.scm")
	if lok.Type == lisp.LError {
		t.Fatalf("unable to load test fixture: %v", lok)
	}
	assert.Equal(t, "__TESTING__", lok.Str)
	assert.Equal(t, []string{"greet", "greeting", "shout", "whisper"}, env.GlobalNames())
}

func TestLoadOperator(t *testing.T) {
	env, _ := testLoaderEnv(t)
	v := env.LoadString("test", "(load 'testfixtures/test3.scm')")
	require.NotEqual(t, lisp.LError, v.Type, "%v", v)
	assert.Equal(t, "__TESTING__", v.Str)

	v = env.LoadString("test", "(load 'testfixtures/missing.scm')")
	require.Equal(t, lisp.LError, v.Type)
	assert.Equal(t, lisp.CondIOError, v.Str)
	assert.ErrorIs(t, lisp.GoError(v), os.ErrNotExist)

	v = env.LoadString("test", "(load 12)")
	assert.Equal(t, lisp.CondTypeError, v.Str)
}

// dumb test asserting that it is not possible to load files without special
// configuration (nil default SourceLibrary).
func TestLoadFile_noSourceLibrary(t *testing.T) {
	env := lisp.NewEnv(nil)
	lerr := lisp.InitializeUserEnv(env, lisp.WithReader(parser.NewReader()))
	if !lerr.IsNil() {
		t.Fatalf("environment initialization failure: %v", lerr)
	}
	lok := env.LoadFile("testfixtures/test1.scm")
	assert.Equal(t, lok.Type, lisp.LError)
	assert.Equal(t, lisp.CondIOError, lok.Str)
}

func TestLoad_noReader(t *testing.T) {
	env := lisp.NewEnv(nil)
	lok := env.LoadString("test", "(+ 1 2)")
	assert.Equal(t, lisp.LError, lok.Type)
}

func TestLoadSyntaxError(t *testing.T) {
	env, _ := testLoaderEnv(t)
	v := env.LoadString("test.scm", "(define a 1)\n(+ a 2")
	require.Equal(t, lisp.LError, v.Type)
	assert.Equal(t, lisp.CondSyntaxError, v.Str)
	require.NotNil(t, v.Source)
	assert.Equal(t, 2, v.Source.Line)
	assert.ErrorIs(t, lisp.GoError(v), lexer.ErrUnbalanced)
	assert.Equal(t, "test.scm:2:1: syntax-error: missing closing or opening parenthesis", lisp.GoError(v).Error())
	// nothing was evaluated
	assert.Empty(t, env.GlobalNames())
}

func TestLoadEmpty(t *testing.T) {
	env, _ := testLoaderEnv(t)
	v := env.LoadString("test", "; nothing here\n\n")
	assert.True(t, v.IsNil())
}

func TestLoadStopsAtFirstError(t *testing.T) {
	env, out := testLoaderEnv(t)
	v := env.LoadString("test", "(println 'one')\n(car 1)\n(println 'two')")
	assert.Equal(t, lisp.CondTypeError, v.Str)
	assert.Equal(t, "one\n", out.String())
}

// plainReader wraps a lisp.Reader, exposing only the Read method so that the
// wrapper intentionally does NOT implement lisp.LocationReader.  This forces
// LoadLocation to take its fallback path.
type plainReader struct {
	inner lisp.Reader
	// lastName records the name argument from the most recent Read call.
	lastName string
}

func (r *plainReader) Read(name string, rd io.Reader) ([]*lisp.LVal, error) {
	r.lastName = name
	return r.inner.Read(name, rd)
}

func TestLoadLocation_fallbackUsesLoc(t *testing.T) {
	env := lisp.NewEnv(nil)
	pr := &plainReader{inner: parser.NewReader()}
	lerr := lisp.InitializeUserEnv(env, lisp.WithReader(pr))
	if !lerr.IsNil() {
		t.Fatalf("environment initialization failure: %v", lerr)
	}

	result := env.LoadLocation("loader.scm", "actual-file.scm", strings.NewReader(`(+ 1 2)`))
	if result.Type == lisp.LError {
		t.Fatalf("LoadLocation failed: %v", result)
	}
	assert.Equal(t, "actual-file.scm", pr.lastName)

	result = env.LoadLocation("expr1", "", strings.NewReader(`(+ 1 2)`))
	require.NotEqual(t, lisp.LError, result.Type, "%v", result)
	assert.Equal(t, "expr1", pr.lastName)
}

func TestReadErrorConditions(t *testing.T) {
	env, _ := testLoaderEnv(t)
	ioErr := errors.New("disk on fire")

	_, lerr := env.Read("broken.scm", iotest.ErrReader(ioErr))
	require.NotNil(t, lerr)
	assert.Equal(t, lisp.CondIOError, lerr.Str)
	assert.ErrorIs(t, lisp.GoError(lerr), ioErr)

	_, lerr = env.ReadLocation("broken.scm", "/tmp/broken.scm", iotest.ErrReader(ioErr))
	require.NotNil(t, lerr)
	assert.Equal(t, lisp.CondIOError, lerr.Str)

	_, lerr = env.ReadLocation("bad.scm", "/tmp/bad.scm", strings.NewReader("(+ 1"))
	require.NotNil(t, lerr)
	assert.Equal(t, lisp.CondSyntaxError, lerr.Str)
	require.NotNil(t, lerr.Source)
	assert.Equal(t, 1, lerr.Source.Line)
}

func TestSlurpAndWrite(t *testing.T) {
	dir := t.TempDir()
	env, _ := testLoaderEnv(t)
	env.Runtime.Library = &lisp.RelativeFileSystemLibrary{RootDir: dir}
	out := filepath.Join(dir, "out.txt")

	v := env.LoadString("test", "(write '"+out+"' 'hello\\nworld')")
	require.True(t, v.IsNil(), "%v", v)
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld", string(b))

	v = env.LoadString("test", "(slurp '"+out+"')")
	assert.Equal(t, lisp.LString, v.Type)
	assert.Equal(t, "hello\nworld", v.Str)

	v = env.LoadString("test", "(write '"+out+"' (quote (1 2)))")
	require.True(t, v.IsNil(), "%v", v)
	v = env.LoadString("test", "(slurp '"+out+"')")
	assert.Equal(t, "(1 2)", v.Str)

	v = env.LoadString("test", "(slurp '"+filepath.Join(dir, "missing")+"')")
	assert.Equal(t, lisp.CondIOError, v.Str)
}

func TestWriteReadOnlyLibrary(t *testing.T) {
	env, _ := testLoaderEnv(t)
	env.Runtime.Library = &lisp.FSLibrary{FS: os.DirFS("testfixtures")}
	v := env.LoadString("test", "(write 'x.txt' 'data')")
	assert.Equal(t, lisp.CondIOError, v.Str)

	v = env.LoadString("test", "(slurp 'test1.scm')")
	assert.Equal(t, lisp.LString, v.Type)
	assert.Contains(t, v.Str, "(define greeting 'testing')")
}
