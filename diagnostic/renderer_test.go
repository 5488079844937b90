// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRenderer returns a Renderer with colors disabled and a fake source reader.
func testRenderer(sources map[string]string) *Renderer {
	return &Renderer{
		Color: ColorNever,
		SourceReader: func(name string) ([]byte, error) {
			s, ok := sources[name]
			if !ok {
				return nil, errors.New("not found: " + name)
			}
			return []byte(s), nil
		},
	}
}

func render(t *testing.T, r *Renderer, d Diagnostic) string {
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, d))
	return buf.String()
}

func TestRenderError(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.scm": "(define f (lambda (x) x))\n(f 1 2)",
	})
	got := render(t, r, Diagnostic{
		Severity: SeverityError,
		Message:  "arity-mismatch: f expects 1 argument but got 2",
		Spans: []Span{
			{File: "test.scm", Line: 2, Col: 1, Label: "called here"},
		},
	})
	assert.Equal(t, strings.Join([]string{
		"error: arity-mismatch: f expects 1 argument but got 2",
		"  --> test.scm:2:1",
		"   |",
		" 2 |  (f 1 2)",
		"   |  ^^^^^^^ called here",
		"   |",
		"",
	}, "\n"), got)
}

func TestRenderWarning(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.scm": "(define x 1)\n(define x x)",
	})
	got := render(t, r, Diagnostic{
		Severity: SeverityWarning,
		Message:  "symbol x is defined as itself",
		Spans: []Span{
			{File: "test.scm", Line: 2, Col: 11, EndCol: 11},
		},
	})
	assert.Contains(t, got, "warning: symbol x is defined as itself")
	assert.Contains(t, got, "--> test.scm:2:11")
	assert.Contains(t, got, " 2 |  (define x x)\n   |            ^\n")
}

func TestRenderNoSource(t *testing.T) {
	got := render(t, testRenderer(nil), Diagnostic{
		Severity: SeverityError,
		Message:  "some error",
		Spans: []Span{
			{File: "<stdin>", Line: 5, Col: 3},
		},
	})
	assert.Contains(t, got, "error: some error")
	assert.Contains(t, got, "--> <stdin>:5:3")
	assert.Contains(t, got, "|")
	assert.NotContains(t, got, "^")
}

func TestRenderNotes(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.scm": "(my-fn 1 2)",
	})
	got := render(t, r, Diagnostic{
		Severity: SeverityError,
		Message:  "unrecognized function 'my-fn'",
		Spans: []Span{
			{File: "test.scm", Line: 1, Col: 2, EndCol: 6},
		},
		Notes: []string{
			"in f at test.scm:1:1",
			"in g at main.scm:10:5",
		},
		Help: []string{"try: mscheme lint test.scm"},
	})
	assert.Contains(t, got, "   |   ^^^^^\n")
	assert.Contains(t, got, "= note: in f at test.scm:1:1")
	assert.Contains(t, got, "= note: in g at main.scm:10:5")
	assert.Contains(t, got, "= help: try: mscheme lint test.scm")
}

func TestDetectEndCol(t *testing.T) {
	tests := []struct {
		name   string
		source string
		col    int
		end    int
	}{
		{"symbol", "(define true 42)", 9, 12},
		{"list", "(+ (car x) 2)", 4, 10},
		{"whole line", "(+ (car x) 2)", 1, 13},
		{"string", "(print 'a (b) c')", 8, 16},
		{"escaped quote", `(print 'it\'s')`, 8, 14},
		{"string paren", "(f ')' x)", 1, 9},
		{"unclosed", "(define x", 1, 1},
		{"comment", "(f ; (", 1, 1},
		{"past end", "x", 4, 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.end, detectEndCol(tc.source, tc.col))
		})
	}
}

func TestRenderMultipleDiagnostics(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.scm": "(define x 1)\n(define x x)\n(if #t)",
	})
	diags := []Diagnostic{
		{
			Severity: SeverityWarning,
			Message:  "symbol x is defined as itself",
			Spans:    []Span{{File: "test.scm", Line: 2, Col: 1}},
		},
		{
			Severity: SeverityWarning,
			Message:  "if expects 3 arguments but got 1",
			Spans:    []Span{{File: "test.scm", Line: 3, Col: 1}},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, r.RenderAll(&buf, diags))
	got := buf.String()
	assert.GreaterOrEqual(t, len(strings.Split(got, "\n\n")), 2, "expected diagnostics separated by blank line")
	assert.Contains(t, got, "symbol x is defined as itself")
	assert.Contains(t, got, "if expects 3 arguments but got 1")
}

func TestRenderNoSpans(t *testing.T) {
	got := render(t, testRenderer(nil), Diagnostic{
		Severity: SeverityError,
		Message:  "io-error: load: open missing.scm: no such file or directory",
	})
	assert.Equal(t, "error: io-error: load: open missing.scm: no such file or directory\n", got)
}

func TestRenderColor(t *testing.T) {
	r := testRenderer(nil)
	r.Color = ColorAlways
	got := render(t, r, Diagnostic{Severity: SeverityNote, Message: "hi"})
	assert.Equal(t, "\033[1;36m\033[1mnote\033[0m: \033[1mhi\033[0m\n", got)

	var buf bytes.Buffer
	assert.False(t, IsTerminal(&buf))
	assert.Equal(t, ColorAlways, ParseColorMode("always"))
	assert.Equal(t, ColorNever, ParseColorMode("never"))
	assert.Equal(t, ColorAuto, ParseColorMode("bogus"))
}
