// Copyright © 2024 The ELPS authors

package lisp

import (
	"io"
	"os"
)

// DefaultDivisionPrecision is the number of fractional digits kept by the
// division operator when a quotient does not terminate.
const DefaultDivisionPrecision = 32

// Runtime is an object underlying an LEnv.  It is responsible for holding
// shared environment state and writing output to streams.
type Runtime struct {
	Stdout   io.Writer
	Stderr   io.Writer
	Stack    *CallStack
	Reader   Reader
	Library  SourceLibrary
	Profiler Profiler
	// DivisionPrecision is the number of fractional digits kept by the
	// division operator.
	DivisionPrecision int32
}

// StandardRuntime returns a new Runtime with Stdout and Stderr set to
// os.Stdout and os.Stderr.
func StandardRuntime() *Runtime {
	return &Runtime{
		Stdout:            os.Stdout,
		Stderr:            os.Stderr,
		Stack:             &CallStack{},
		DivisionPrecision: DefaultDivisionPrecision,
	}
}

// sourceContext uses the CallStack to determine the location/name of the
// currently executing file (i.e. the file containing the function call
// `(load ...)` that is being evaluated).
func (r *Runtime) sourceContext() SourceContext {
	top := r.Stack.Top()
	if top != nil && top.Source != nil {
		return &sourceContext{
			name: top.Source.File,
			loc:  top.Source.Path,
		}
	}
	return &sourceContext{}
}

func (r *Runtime) profiling() bool {
	return r.Profiler != nil && r.Profiler.IsEnabled()
}
