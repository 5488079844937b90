// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"log"

	"github.com/luthersystems/minischeme/lsp"
	"github.com/spf13/cobra"
)

// LSPCommand creates the "lsp" cobra command.  Embedders can pass WithEnv
// so hover and completion also cover the globals of their environment.
func LSPCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts...)

	var (
		stdio bool
		port  int
	)

	cmd := &cobra.Command{
		Use:   "lsp [flags]",
		Short: "Start the Mini-Scheme Language Server Protocol server",
		Long: `Start an LSP server for Mini-Scheme source files.

The language server publishes syntax and lint diagnostics and answers
hover, completion, go-to-definition and document symbol requests.

Transport modes:
  --stdio      Use stdin/stdout for LSP communication (default)
  --port N     Listen for an LSP client on TCP port N

Examples:
  mscheme lsp
  mscheme lsp --port 7998`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			var serverOpts []lsp.Option
			if cfg.env != nil {
				serverOpts = append(serverOpts, lsp.WithEnv(cfg.env))
			}
			srv := lsp.New(serverOpts...)

			var err error
			if !stdio && port > 0 {
				addr := fmt.Sprintf("localhost:%d", port)
				log.Printf("mscheme LSP server listening on %s", addr)
				err = srv.RunTCP(addr)
			} else {
				err = srv.RunStdio()
			}
			if err != nil {
				return fmt.Errorf("lsp server error: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&stdio, "stdio", false,
		"Use stdin/stdout for LSP communication (default behavior)")
	cmd.Flags().IntVar(&port, "port", 0,
		"TCP port for LSP server (use instead of --stdio)")

	return cmd
}

func init() {
	rootCmd.AddCommand(LSPCommand())
}
