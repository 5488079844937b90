// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"io"

	"github.com/luthersystems/minischeme/diagnostic"
	"github.com/luthersystems/minischeme/lisp"
	"github.com/luthersystems/minischeme/parser"
	"github.com/spf13/viper"
)

// Configuration keys shared by flags, the config file and MSCHEME_*
// environment variables.
const (
	keyColor             = "color"
	keyReader            = "reader"
	keyMaxStackHeight    = "max-stack-height"
	keyDivisionPrecision = "division-precision"
	keyRootDir           = "root-dir"
	keyHistoryFile       = "history-file"
	keyPrompt            = "prompt"
	keyTrace             = "trace"
	keyTraceBackend      = "trace-backend"
	keyCallgrind         = "callgrind"
	keyCPUProfile        = "cpuprofile"
)

// settings is the interpreter configuration resolved by viper.
type settings struct {
	Color             diagnostic.ColorMode
	Reader            string
	MaxStackHeight    int
	DivisionPrecision int
	RootDir           string
	HistoryFile       string
	Prompt            string
	Trace             bool
	TraceBackend      string
	Callgrind         string
	CPUProfile        string
}

func loadSettings() settings {
	return settings{
		Color:             diagnostic.ParseColorMode(viper.GetString(keyColor)),
		Reader:            viper.GetString(keyReader),
		MaxStackHeight:    viper.GetInt(keyMaxStackHeight),
		DivisionPrecision: viper.GetInt(keyDivisionPrecision),
		RootDir:           viper.GetString(keyRootDir),
		HistoryFile:       viper.GetString(keyHistoryFile),
		Prompt:            viper.GetString(keyPrompt),
		Trace:             viper.GetBool(keyTrace),
		TraceBackend:      viper.GetString(keyTraceBackend),
		Callgrind:         viper.GetString(keyCallgrind),
		CPUProfile:        viper.GetString(keyCPUProfile),
	}
}

// newEnv creates an environment configured by s that writes program
// output to stdout and diagnostics to stderr.
func (s settings) newEnv(stdout, stderr io.Writer) (*lisp.LEnv, error) {
	reader, err := parser.NewReaderNamed(s.Reader)
	if err != nil {
		return nil, err
	}
	config := []lisp.Config{
		lisp.WithReader(reader),
		lisp.WithLibrary(&lisp.RelativeFileSystemLibrary{RootDir: s.RootDir}),
		lisp.WithStdout(stdout),
		lisp.WithStderr(stderr),
		lisp.WithMaximumStackHeight(s.MaxStackHeight),
	}
	if s.DivisionPrecision > 0 {
		config = append(config, lisp.WithDivisionPrecision(s.DivisionPrecision))
	}
	env := lisp.NewEnv(nil)
	rc := lisp.InitializeUserEnv(env, config...)
	if rc.Type == lisp.LError {
		return nil, fmt.Errorf("language initialization failure: %w", lisp.GoError(rc))
	}
	return env, nil
}

// Option configures an exported command factory (DocCommand, LSPCommand).
type Option func(*cmdConfig)

type cmdConfig struct {
	env *lisp.LEnv
}

// WithEnv injects a fully configured LEnv.  For the doc command this is
// the environment used for documentation queries.  For the lsp command
// the env's global definitions are offered in hover and completion.
func WithEnv(env *lisp.LEnv) Option {
	return func(c *cmdConfig) { c.env = env }
}

func newCmdConfig(opts ...Option) *cmdConfig {
	cfg := &cmdConfig{}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}
