// Copyright © 2024 The ELPS authors

// Package schemetest runs mini-scheme programs as Go tests.
package schemetest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/luthersystems/minischeme/lisp"
	"github.com/luthersystems/minischeme/parser"
)

// DefaultMaxStackHeight bounds recursion in test environments so runaway
// programs fail instead of exhausting the Go stack.
const DefaultMaxStackHeight = 10000

// BenchmarkParse returns a benchmark that parses the file at path with the
// reader returned by r.
func BenchmarkParse(path string, r func() lisp.Reader) func(*testing.B) {
	return func(b *testing.B) {
		buf, err := os.ReadFile(path) //#nosec G304
		if err != nil {
			b.Fatalf("Unable to read source file %v: %v", path, err)
		}
		b.SetBytes(int64(len(buf)))
		for i := 0; i < b.N; i++ {
			_, err := r().Read("test", bytes.NewReader(buf))
			if err != nil {
				b.Fatalf("Parse failure: %v", err)
			}
		}
	}
}

// Runner is a test runner for source files.
type Runner struct {
	// Reader parses test files.  When Reader is nil parser.NewReader is
	// used.
	Reader lisp.Reader

	// Config is applied to every test environment after the defaults.
	Config []lisp.Config
}

// NewEnv returns an environment that logs output to t.
func (r *Runner) NewEnv(t testing.TB) (*lisp.LEnv, error) {
	logger := NewLogger(t)
	reader := r.Reader
	if reader == nil {
		reader = parser.NewReader()
	}
	env := lisp.NewEnv(nil)
	config := append([]lisp.Config{
		lisp.WithMaximumStackHeight(DefaultMaxStackHeight),
		lisp.WithReader(reader),
		lisp.WithStdout(logger),
		lisp.WithStderr(logger),
		lisp.WithLibrary(&lisp.RelativeFileSystemLibrary{}),
	}, r.Config...)
	err := lisp.GoError(lisp.InitializeUserEnv(env, config...))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize lisp environment: %w", err)
	}
	return env, nil
}

// RunTestFile evaluates each top-level expression in the file at path as a
// subtest, in order, in a single environment.  An expression fails when it
// evaluates to an error, or when it is a call to = that does not evaluate to
// #t.
func (r *Runner) RunTestFile(t *testing.T, path string) {
	source, err := os.ReadFile(path) //#nosec G304
	if err != nil {
		t.Errorf("Unable to read test file: %v", err)
		return
	}
	env, err := r.NewEnv(t)
	if err != nil {
		t.Fatal(err.Error())
	}
	defer env.Runtime.Stdout.(*Logger).Flush()

	abs, err := filepath.Abs(path)
	if err != nil {
		t.Fatal(err.Error())
	}
	var exprs []*lisp.LVal
	if lr, ok := env.Runtime.Reader.(lisp.LocationReader); ok {
		exprs, err = lr.ReadLocation(filepath.Base(path), abs, bytes.NewReader(source))
	} else {
		exprs, err = env.Runtime.Reader.Read(filepath.Base(path), bytes.NewReader(source))
	}
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	for i, expr := range exprs {
		name := fmt.Sprintf("expr%d", i)
		if expr.Source != nil {
			name = fmt.Sprintf("%s:%d", filepath.Base(path), expr.Source.Line)
		}
		t.Run(name, func(t *testing.T) {
			r.runExpr(t, env, expr)
		})
	}
}

func (r *Runner) runExpr(t *testing.T, env *lisp.LEnv, expr *lisp.LVal) {
	v := env.Eval(expr)
	if v.Type == lisp.LError {
		LispError(t, lisp.GoError(v))
		return
	}
	if isAssertion(expr) && !(v.Type == lisp.LBool && v.Bool) {
		t.Errorf("assertion failed: %v", expr)
	}
}

func isAssertion(expr *lisp.LVal) bool {
	if expr.Type != lisp.LList || len(expr.Cells) == 0 {
		return false
	}
	head := expr.Cells[0]
	return head.Type == lisp.LSymbol && head.Str == lisp.OpEq.String()
}

// LispError reports err on t along with its stack trace.
func LispError(t testing.TB, err error) {
	var lerr *lisp.ErrorVal
	if !errors.As(err, &lerr) {
		t.Error(err)
		return
	}
	var buf bytes.Buffer
	_, ioerr := lerr.WriteTrace(&buf)
	if ioerr != nil {
		t.Errorf("io error: %v", ioerr)
		t.Error(err)
		return
	}
	t.Error(buf.String())
}

// TestSequence is a sequence of lisp expressions which are evaluated sequentially
// by a lisp.LEnv.
type TestSequence []struct {
	Expr   string // a lisp expression
	Result string // the evaluated result
	Output string // output written to Runtime.Stdout
}

// TestSuite is a set of named TestSequences
type TestSuite []struct {
	Name string
	TestSequence
}

// RunTestSuite runs each TestSequence in tests on isolated lisp.LEnvs.
func RunTestSuite(t *testing.T, tests TestSuite, config ...lisp.Config) {
	for i, test := range tests {
		env := lisp.NewEnv(nil)
		var outBuf bytes.Buffer
		cfg := append([]lisp.Config{
			lisp.WithMaximumStackHeight(DefaultMaxStackHeight),
			lisp.WithReader(parser.NewReader()),
			lisp.WithStdout(&outBuf),
			lisp.WithStderr(NewLogger(t)),
		}, config...)
		err := lisp.GoError(lisp.InitializeUserEnv(env, cfg...))
		if err != nil {
			t.Errorf("test %d %q: %v", i, test.Name, err)
			continue
		}
		for j, expr := range test.TestSequence {
			outBuf.Reset()
			v, err := env.Runtime.Reader.Read("test", strings.NewReader(expr.Expr))
			if err != nil {
				t.Errorf("test %d %q: expr %d: parse error: %v", i, test.Name, j, err)
				continue
			}
			if len(v) == 0 {
				t.Errorf("test %d %q: expr %d: no expression parsed", i, test.Name, j)
				continue
			}
			if len(v) != 1 {
				t.Errorf("test %d %q: expr %d: more than one expression parsed (%d)", i, test.Name, j, len(v))
				continue
			}
			result := env.Eval(v[0]).String()
			if result != expr.Result {
				t.Errorf("test %d %q: expr %d: expected result %s (got %s)", i, test.Name, j, expr.Result, result)
			}
			if outBuf.String() != expr.Output {
				t.Errorf("test %d %q: expr %d: expected output %q (got %q)", i, test.Name, j, expr.Output, outBuf.String())
			}
			if env.Depth() != 1 {
				t.Errorf("test %d %q: expr %d: scope stack not restored (depth %d)", i, test.Name, j, env.Depth())
			}
		}
	}
}

// RunBenchmark runs a standard benchmark that executes expressions parsed from
// source.
func RunBenchmark(b *testing.B, source string) {
	b.StopTimer()
	p := parser.NewReader()
	exprs, err := p.Read("benchmark", strings.NewReader(source))
	if err != nil {
		b.Fatalf("parse error: %v", err)
	}
	for i := 0; i < b.N; i++ {
		env := lisp.NewEnv(nil)
		err := lisp.GoError(lisp.InitializeUserEnv(env,
			lisp.WithMaximumStackHeight(DefaultMaxStackHeight),
			lisp.WithReader(p),
			lisp.WithStdout(io.Discard),
			lisp.WithStderr(io.Discard),
		))
		if err != nil {
			b.Fatal(err)
		}
		b.StartTimer()
		for i, expr := range exprs {
			lerr := env.Eval(expr)
			if lerr.Type == lisp.LError {
				b.Fatalf("expr %d: %v", i, lerr)
			}
		}
		b.StopTimer()
	}
}
