// Copyright © 2018 The ELPS authors

package cmd

import (
	"github.com/luthersystems/minischeme/repl"
	"github.com/spf13/cobra"
)

// replCmd represents the repl command
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive Mini-Scheme REPL",
	Long: `Start an interactive read-eval-print loop for Mini-Scheme.

Line editing, tab completion of builtins and definitions, and persistent
history (~/.mscheme_history) are supported via readline. An expression
may span several lines. Type exit or press Ctrl-D to leave.

Example REPL session:
  ~> (define square (lambda (x) (* x x)))
  square
  ~> (square 5)
  25
  ~> (car (quote ()))
  error: empty-list: car of an empty list`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRepl(cmd)
	},
}

func runRepl(cmd *cobra.Command) (err error) {
	cfg := loadSettings()
	env, err := cfg.newEnv(cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	done, perr := startProfiler(env, cfg, cmd.ErrOrStderr())
	if perr != nil {
		return perr
	}
	defer func() {
		if cerr := done(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	opts := []repl.Option{
		repl.WithEnv(env),
		repl.WithColor(cfg.Color),
	}
	if cfg.Prompt != "" {
		opts = append(opts, repl.WithPrompt(cfg.Prompt))
	}
	if cfg.HistoryFile != "" {
		opts = append(opts, repl.WithHistoryFile(cfg.HistoryFile))
	}
	return repl.RunRepl(opts...)
}

func init() {
	rootCmd.AddCommand(replCmd)
}
