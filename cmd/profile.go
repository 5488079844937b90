// Copyright © 2024 The ELPS authors

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/pprof"

	"github.com/luthersystems/minischeme/lisp"
	"github.com/luthersystems/minischeme/lisp/x/profiler"
)

var errMultipleProfilers = errors.New("only one of --trace, --callgrind and --cpuprofile may be used")

// startProfiler attaches the profiler selected by s to env.  The runtime
// holds a single profiler so at most one may be selected.  The returned
// function completes the profile and is never nil.
func startProfiler(env *lisp.LEnv, s settings, stderr io.Writer) (func() error, error) {
	var n int
	for _, on := range []bool{s.Trace, s.Callgrind != "", s.CPUProfile != ""} {
		if on {
			n++
		}
	}
	switch {
	case n > 1:
		return nil, errMultipleProfilers
	case s.Trace:
		return enableTrace(env, s.TraceBackend, stderr)
	case s.Callgrind != "":
		return enableCallgrind(env, s.Callgrind)
	case s.CPUProfile != "":
		return enableCPUProfile(env, s.CPUProfile)
	}
	return func() error { return nil }, nil
}

func enableCallgrind(env *lisp.LEnv, path string) (func() error, error) {
	p := profiler.NewCallgrindProfiler(env.Runtime, profiler.WithSourceLabeler())
	if err := p.SetFile(path); err != nil {
		return nil, fmt.Errorf("callgrind: %w", err)
	}
	if err := p.Enable(); err != nil {
		return nil, fmt.Errorf("callgrind: %w", err)
	}
	return p.Complete, nil
}

func enableCPUProfile(env *lisp.LEnv, path string) (func() error, error) {
	f, err := os.Create(path) //nolint:gosec // CLI tool writes user-specified files
	if err != nil {
		return nil, fmt.Errorf("cpuprofile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("cpuprofile: %w", err)
	}
	p := profiler.NewPprofAnnotator(env.Runtime, context.Background(), profiler.WithSourceLabeler())
	if err := p.Enable(); err != nil {
		pprof.StopCPUProfile()
		_ = f.Close()
		return nil, err
	}
	return func() error {
		perr := p.Complete()
		pprof.StopCPUProfile()
		if err := f.Close(); err != nil {
			return err
		}
		return perr
	}, nil
}
