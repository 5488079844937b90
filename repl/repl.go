// Copyright © 2024 The ELPS authors

// Package repl implements the interactive mini-scheme read-eval-print loop.
package repl

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"github.com/luthersystems/minischeme/diagnostic"
	"github.com/luthersystems/minischeme/lisp"
	"github.com/luthersystems/minischeme/parser"
	"github.com/luthersystems/minischeme/parser/lexer"
	"github.com/luthersystems/minischeme/parser/token"
)

// DefaultPrompt is shown while reading an expression.
const DefaultPrompt = "~> "

// HistoryFileName is the name of the history file in the home directory.
const HistoryFileName = ".mscheme_history"

// exitCommand ends the session when entered on its own line.
const exitCommand = "exit"

type config struct {
	stdin       io.ReadCloser
	stderr      io.WriteCloser
	prompt      string
	historyFile string
	color       diagnostic.ColorMode
	env         *lisp.LEnv
}

func newConfig(opts ...Option) *config {
	config := &config{
		prompt:      DefaultPrompt,
		historyFile: historyPath(),
	}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

// Option configures a REPL session.
type Option func(*config)

// WithStdin allows overriding the input to the REPL.
func WithStdin(stdin io.ReadCloser) Option {
	return func(c *config) {
		c.stdin = stdin
	}
}

// WithStderr allows overriding the output of the REPL.  Results, errors
// and prompts are all written to stderr.
func WithStderr(stderr io.WriteCloser) Option {
	return func(c *config) {
		c.stderr = stderr
	}
}

// WithPrompt sets the prompt shown before each expression.
func WithPrompt(prompt string) Option {
	return func(c *config) {
		c.prompt = prompt
	}
}

// WithHistoryFile persists history to path.  An empty path disables
// history persistence.
func WithHistoryFile(path string) Option {
	return func(c *config) {
		c.historyFile = path
	}
}

// WithColor controls colored output.
func WithColor(mode diagnostic.ColorMode) Option {
	return func(c *config) {
		c.color = mode
	}
}

// WithEnv evaluates input in env instead of a new environment.
func WithEnv(env *lisp.LEnv) Option {
	return func(c *config) {
		c.env = env
	}
}

// RunRepl runs a repl in a new mini-scheme environment, or the environment
// given by WithEnv, until the input ends or the user types exit.
func RunRepl(opts ...Option) error {
	cfg := newConfig(opts...)
	env := cfg.env
	if env == nil {
		env = lisp.NewEnv(nil)
		envOpts := []lisp.Config{
			lisp.WithReader(parser.NewReader()),
			lisp.WithLibrary(&lisp.RelativeFileSystemLibrary{}),
		}
		rc := lisp.InitializeUserEnv(env, envOpts...)
		if rc.Type == lisp.LError {
			return fmt.Errorf("language initialization failure: %w", lisp.GoError(rc))
		}
	}
	if cfg.stderr != nil {
		env.Runtime.Stderr = cfg.stderr
	}
	return runEnv(env, cfg)
}

func runEnv(env *lisp.LEnv, cfg *config) error {
	out := env.Runtime.Stderr
	if out == nil {
		out = os.Stderr
	}
	colors := choosePalette(cfg.color, out)

	ensureHistoryFilePermissions(cfg.historyFile)
	rlCfg := &readline.Config{
		Stdout:            out,
		Stderr:            out,
		Prompt:            cfg.prompt,
		HistoryFile:       cfg.historyFile,
		HistorySearchFold: true,
		AutoComplete:      &symbolCompleter{env: env},
	}
	if cfg.stdin != nil {
		rlCfg.Stdin = cfg.stdin
	}
	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return err
	}
	defer rl.Close() //nolint:errcheck // best-effort cleanup

	s := &session{
		env:      env,
		out:      out,
		colors:   colors,
		renderer: &diagnostic.Renderer{Color: cfg.color},
		prompt:   cfg.prompt,
		cont:     strings.Repeat(" ", len(cfg.prompt)),
	}
	fmt.Fprintf(out, "Mini-Scheme Version %s\n", lisp.Version) //nolint:errcheck // best-effort banner
	var pending bytes.Buffer
	for {
		rl.SetPrompt(s.currentPrompt(pending.Len() > 0))
		line, err := rl.ReadSlice()
		if errors.Is(err, readline.ErrInterrupt) {
			pending.Reset()
			continue
		}
		if err != nil {
			return nil
		}
		text := strings.TrimSpace(string(line))
		if pending.Len() == 0 {
			if text == exitCommand {
				return nil
			}
			if text == "" || strings.HasPrefix(text, ";") {
				continue
			}
		}
		pending.WriteString(text)
		pending.WriteString("\n")
		if openDepth(pending.String()) > 0 {
			continue
		}
		s.eval(pending.String())
		pending.Reset()
	}
}

// session is the state of one REPL run.
type session struct {
	env      *lisp.LEnv
	out      io.Writer
	colors   palette
	renderer *diagnostic.Renderer
	prompt   string
	cont     string
	failed   bool
}

func (s *session) currentPrompt(continuing bool) string {
	if continuing {
		return s.cont
	}
	if s.failed && s.colors.red != "" {
		return s.colors.red + s.prompt + s.colors.reset
	}
	return s.prompt
}

// eval evaluates every expression in src, printing each value, and stops at
// the first error.
func (s *session) eval(src string) {
	exprs, lerr := s.env.Read("stdin", strings.NewReader(src))
	if lerr != nil {
		s.fail(lerr)
		return
	}
	for _, expr := range exprs {
		v := s.env.EvalTopLevel(expr)
		if v.Type == lisp.LError {
			s.fail(v)
			return
		}
		fmt.Fprintln(s.out, s.colors.format(v)) //nolint:errcheck // best-effort REPL output
	}
	s.failed = false
}

func (s *session) fail(lerr *lisp.LVal) {
	s.failed = true
	_ = s.renderer.Render(s.out, (*lisp.ErrorVal)(lerr).Diagnostic())
}

// openDepth returns the number of parentheses in src that are still open.
func openDepth(src string) int {
	depth := 0
	for _, tok := range lexer.Tokenize(token.Location{File: "stdin", Line: 1, Col: 1}, src) {
		switch tok.Type {
		case token.PAREN_L:
			depth++
		case token.PAREN_R:
			depth--
		}
	}
	return depth
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, HistoryFileName)
}

// ensureHistoryFilePermissions creates the history file with mode 0600, or
// restricts an existing file to that mode.
func ensureHistoryFilePermissions(path string) {
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) //nolint:gosec // user-configured history path
	if err != nil {
		return
	}
	_ = f.Close()
	_ = os.Chmod(path, 0600)
}
