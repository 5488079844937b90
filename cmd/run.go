// Copyright © 2018 The ELPS authors

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/luthersystems/minischeme/lisp"
	"github.com/spf13/cobra"
)

var (
	runExpression bool
	runPrint      bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [flags] FILE...",
	Short: "Run lisp code",
	Long: `Run lisp code supplied via the command line or files.

Files are evaluated in order in one environment, so definitions made by an
earlier file are visible to later ones. Evaluation stops at the first
error, which is reported with its source location and call stack.

Examples:
  mscheme run lib.scm main.scm
  mscheme run -e -p '(define sq (lambda (x) (* x x)))' '(sq 12)'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFiles(cmd, loadSettings(), args, runExpression)
	},
}

// runFiles evaluates each argument, as a file name or as source text when
// expr is true.  The value of every top-level expression is printed to
// stdout when -p is given.
func runFiles(cmd *cobra.Command, cfg settings, args []string, expr bool) (err error) {
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()
	env, err := cfg.newEnv(stdout, stderr)
	if err != nil {
		return err
	}
	done, perr := startProfiler(env, cfg, stderr)
	if perr != nil {
		return perr
	}
	defer func() {
		if cerr := done(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	for i, arg := range args {
		var name, loc, src string
		if expr {
			name = fmt.Sprintf("expr%d", i+1)
			src = arg
		} else {
			b, err := os.ReadFile(arg) //nolint:gosec // CLI tool reads user-specified files
			if err != nil {
				return err
			}
			name = filepath.Base(arg)
			loc = arg
			src = string(b)
		}
		if lerr := evalSource(env, name, loc, src, runPrint, stdout); lerr != nil {
			hint := ""
			if !expr {
				hint = arg
			}
			renderLispError(stderr, cfg.Color, lerr, hint)
			return &exitError{code: 1}
		}
	}
	return nil
}

// evalSource reads src, located at loc, and evaluates its expressions in
// order, returning the first error value.
func evalSource(env *lisp.LEnv, name, loc, src string, printValues bool, w io.Writer) *lisp.LVal {
	exprs, lerr := env.ReadLocation(name, loc, strings.NewReader(src))
	if lerr != nil {
		return lerr
	}
	for _, expr := range exprs {
		v := env.EvalTopLevel(expr)
		if v.Type == lisp.LError {
			return v
		}
		if printValues {
			fmt.Fprintln(w, v) //nolint:errcheck // best-effort output
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVarP(&runExpression, "expression", "e", false,
		"Interpret arguments as lisp expressions")
	runCmd.Flags().BoolVarP(&runPrint, "print", "p", false,
		"Print expression values to stdout")
}
