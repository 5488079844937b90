// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/luthersystems/minischeme/lint"
	"github.com/spf13/cobra"
)

// LintCommand creates the "lint" cobra command.
func LintCommand() *cobra.Command {
	var (
		jsonOut  bool
		checks   string
		listAll  bool
		excludes []string
	)

	cmd := &cobra.Command{
		Use:   "lint [flags] [files...]",
		Short: "Run static analysis checks on Mini-Scheme source files",
		Long: `Run static analysis checks on Mini-Scheme source files.

The linter reports likely mistakes without evaluating any code. Each check
is an independent analyzer over the parsed program. A file that fails to
parse is reported as a syntax error.

With no files, reads from stdin. A trailing "/..." expands to every .scm
file below that directory.

Exit codes:
  0  No problems found
  1  One or more problems were reported
  2  Bad invocation (unknown checks, unreadable or unparsable files)

To suppress a diagnostic, add a comment on the same line:
  (car 1 2) ; nolint:builtin-arity

Available checks (use --checks to select specific ones):
` + analyzerDoc() + `
Examples:
  mscheme lint file.scm
  mscheme lint --json file.scm
  mscheme lint --checks=builtin-arity,self-define ./...
  mscheme lint --exclude=vendor ./...
  cat file.scm | mscheme lint`,
		// Findings are reported by RunE itself and signalled through the
		// exit code, so cobra must not append usage or the error text.
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listAll {
				for _, a := range lint.DefaultAnalyzers() {
					fmt.Fprintln(cmd.OutOrStdout(), a.Name) //nolint:errcheck // best-effort output
				}
				return nil
			}

			analyzers, err := selectAnalyzers(checks)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "mscheme lint: %v\n", err) //nolint:errcheck // best-effort output
				return &exitError{code: 2}
			}
			l := &lint.Linter{Analyzers: analyzers}

			diags, err := lintArgs(cmd, l, args, excludes)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "mscheme lint: %v\n", err) //nolint:errcheck // best-effort output
				return &exitError{code: 2}
			}
			if len(diags) == 0 {
				return nil
			}
			if jsonOut {
				if err := lint.FormatJSON(cmd.OutOrStdout(), diags); err != nil {
					return err
				}
			} else {
				renderLintDiagnostics(cmd.ErrOrStderr(), loadSettings().Color, diags)
			}
			return &exitError{code: 1}
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false,
		"Output diagnostics as JSON.")
	cmd.Flags().StringVar(&checks, "checks", "",
		"Comma-separated list of checks to run (default: all).")
	cmd.Flags().BoolVar(&listAll, "list", false,
		"List available checks and exit.")
	cmd.Flags().StringArrayVar(&excludes, "exclude", nil,
		"Glob pattern for files to exclude (may be repeated).")
	return cmd
}

// selectAnalyzers resolves a comma separated list of check names.  An
// empty list selects every default analyzer.
func selectAnalyzers(checks string) ([]*lint.Analyzer, error) {
	if strings.TrimSpace(checks) == "" {
		return lint.DefaultAnalyzers(), nil
	}
	var analyzers []*lint.Analyzer
	for _, name := range strings.Split(checks, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		a := lint.AnalyzerByName(name)
		if a == nil {
			return nil, fmt.Errorf("unknown check: %s", name)
		}
		analyzers = append(analyzers, a)
	}
	return analyzers, nil
}

func lintArgs(cmd *cobra.Command, l *lint.Linter, args, excludes []string) ([]lint.Diagnostic, error) {
	if len(args) == 0 {
		src, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return l.LintFile(src, "<stdin>")
	}

	paths, err := expandArgs(args, excludes)
	if err != nil {
		return nil, err
	}
	var all []lint.Diagnostic
	for _, path := range paths {
		src, err := os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		diags, err := l.LintFile(src, path)
		if err != nil {
			return nil, err
		}
		all = append(all, diags...)
	}
	return all, nil
}

// analyzerDoc lists each default check with the first line of its doc.
func analyzerDoc() string {
	var sb strings.Builder
	for _, a := range lint.DefaultAnalyzers() {
		summary, _, _ := strings.Cut(a.Doc, "\n")
		fmt.Fprintf(&sb, "  %-18s %s\n", a.Name, summary)
	}
	return sb.String()
}

func init() {
	rootCmd.AddCommand(LintCommand())
}
