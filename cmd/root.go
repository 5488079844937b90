// Copyright © 2018 The ELPS authors

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/luthersystems/minischeme/lisp"
	"github.com/luthersystems/minischeme/parser"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	replFlag bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mscheme [file]",
	Short: "Mini-Scheme interpreter",
	Long: `Mini-Scheme is a small Lisp interpreter with arbitrary precision decimal
numbers, closures and a fixed set of builtin operators.

Getting started:
  mscheme file.scm              Run a source file
  mscheme -r                    Start an interactive REPL
  mscheme run -e '(+ 1 2)' -p   Evaluate an expression and print it
  mscheme doc car               Show documentation for a builtin
  mscheme lint file.scm         Run static analysis checks
  mscheme lsp                   Start the language server

Language overview:
  Booleans are #t and #f and the empty value is nil. Strings are written
  with single quotes. (define name expr) binds expr unevaluated in the
  global scope, and (lambda (params) body) creates a closure.

Configuration is read from $HOME/.mscheme.yaml and from MSCHEME_*
environment variables, e.g. MSCHEME_MAX_STACK_HEIGHT=1000.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if replFlag || len(args) == 0 {
			return runRepl(cmd)
		}
		return runFiles(cmd, loadSettings(), args, false)
	},
}

// exitError carries a process exit code for a failure that has already
// been reported.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.mscheme.yaml)")
	flags.String(keyColor, "auto", `Control colored output: "auto", "always", or "never".`)
	flags.Bool(keyTrace, false, "Write a tracing span to stderr for every call.")
	flags.String(keyTraceBackend, traceOpenTelemetry, `Tracing library used by --trace: "otel" or "opencensus".`)
	flags.String(keyCallgrind, "", "Write a callgrind profile of evaluation to this file.")
	flags.String(keyCPUProfile, "", "Write a pprof CPU profile labelled by function to this file.")
	flags.Int(keyMaxStackHeight, 0, "Maximum call stack height (0 is unlimited).")
	flags.Int(keyDivisionPrecision, int(lisp.DefaultDivisionPrecision), "Fractional digits kept by division.")
	flags.String(keyRootDir, "", "Directory that load, slurp and write may not escape.")
	flags.String(keyReader, parser.ReaderDefault, `Source reader: "rd" or "parsec".`)
	for _, key := range []string{keyColor, keyTrace, keyTraceBackend, keyCallgrind, keyCPUProfile, keyMaxStackHeight, keyDivisionPrecision, keyRootDir, keyReader} {
		_ = viper.BindPFlag(key, flags.Lookup(key))
	}
	viper.SetDefault(keyPrompt, "")
	viper.SetDefault(keyHistoryFile, "")

	rootCmd.Flags().BoolVarP(&replFlag, "repl", "r", false, "Start the interactive REPL.")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		// Search config in home directory with name ".mscheme" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".mscheme")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("mscheme")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "config:", err)
		}
	}
}
