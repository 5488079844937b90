// Copyright © 2024 The ELPS authors

package lisp

// Version is the interpreter version reported by the REPL banner.
const Version = "0.3.0"

// Profiler observes function calls made by the evaluator.
type Profiler interface {
	// Is the profiler enabled?
	IsEnabled() bool
	// Enable the profiler
	Enable() error
	// Set the file to output to
	SetFile(filename string) error
	// End the profiling session and output summary lines
	Complete() error
	// Start marks the start of a call to fun and returns a function that
	// marks its end.  For named calls fun is the called Symbol, carrying the
	// call's source location.  Anonymous lambda calls pass the lambda.
	Start(fun *LVal) func()
}
