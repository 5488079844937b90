// Copyright © 2024 The ELPS authors

package profiler_test

import (
	"testing"

	"github.com/luthersystems/minischeme/lisp"
	"github.com/luthersystems/minischeme/parser"
	"github.com/stretchr/testify/require"
)

// testScheme makes one call to add-it, four calls to count-down and one
// anonymous lambda call.
const testScheme = `
(define add-it (lambda (x y) (+ x y)))
(define count-down
  (lambda (x)
    (if (< x 1)
        0
        (count-down (- x 1)))))
(add-it ((lambda (z) z) 1) (count-down 3))
`

const lambdaCalls = 6

func newTestEnv(t *testing.T) *lisp.LEnv {
	env := lisp.NewEnv(nil)
	lerr := lisp.InitializeUserEnv(env, lisp.WithReader(parser.NewReader()))
	require.NoError(t, lisp.GoError(lerr))
	return env
}

func runTestScheme(t *testing.T, env *lisp.LEnv) {
	res := env.LoadString("test.scm", testScheme)
	require.NoError(t, lisp.GoError(res))
	require.Equal(t, "1", res.String())
}
