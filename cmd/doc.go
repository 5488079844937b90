// Copyright © 2024 The ELPS authors

package cmd

import (
	"bufio"
	"fmt"
	"io"

	"github.com/luthersystems/minischeme/lisp"
	"github.com/luthersystems/minischeme/lisp/libhelp"
	"github.com/spf13/cobra"
)

// DocCommand creates the "doc" cobra command.  Embedders can pass WithEnv
// to document the global definitions of their own environment.
func DocCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts...)

	var (
		sourceFile string
		listGlobal bool
	)

	cmd := &cobra.Command{
		Use:   "doc [flags] [QUERY]",
		Short: "Show documentation for builtins and definitions",
		Long: `Show documentation for Mini-Scheme builtin operators and global
definitions.

With no query, lists every builtin with a one line summary. With a query,
shows the signature and documentation of that builtin, or the signature
or value of a global definition. Use -f to load a source file first.

Examples:
  mscheme doc                      List all builtins
  mscheme doc car                  Show docs for car
  mscheme doc -f lib.scm square    Load a file, then show square
  mscheme doc -f lib.scm -g        List the definitions made by lib.scm`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := cfg.env
			if env == nil || sourceFile != "" {
				var err error
				env, err = docEnv(cmd, sourceFile)
				if err != nil {
					return err
				}
			}
			out := bufio.NewWriter(cmd.OutOrStdout())
			defer out.Flush() //nolint:errcheck // best-effort flush on exit
			return docExec(out, env, args, listGlobal)
		},
	}

	cmd.Flags().StringVarP(&sourceFile, "source-file", "f", "",
		"Evaluate a source file before querying documentation.")
	cmd.Flags().BoolVarP(&listGlobal, "globals", "g", false,
		"List global definitions instead of builtins.")
	return cmd
}

// docEnv creates an environment and evaluates sourceFile in it.  Program
// output is discarded.
func docEnv(cmd *cobra.Command, sourceFile string) (*lisp.LEnv, error) {
	s := loadSettings()
	env, err := s.newEnv(io.Discard, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	if sourceFile == "" {
		return env, nil
	}
	res := env.LoadFile(sourceFile)
	if res.Type == lisp.LError {
		renderLispError(cmd.ErrOrStderr(), s.Color, res, "")
		return nil, &exitError{code: 1}
	}
	return env, nil
}

func docExec(w io.Writer, env *lisp.LEnv, args []string, listGlobal bool) error {
	switch {
	case listGlobal:
		return libhelp.RenderGlobals(w, env)
	case len(args) == 0:
		return libhelp.RenderOpList(w)
	}
	if err := libhelp.RenderVar(w, env, args[0]); err != nil {
		return fmt.Errorf("doc: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(DocCommand())
}
