// Copyright © 2024 The ELPS authors

package lisp

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/luthersystems/minischeme/parser/token"
)

// LEnv is a lisp environment.  It holds the global scope, which stores the
// expressions bound by define, and the stack of scopes that are active for
// the lambda calls currently being evaluated.
type LEnv struct {
	// Loc is the location of the expression currently being evaluated.
	Loc     *token.Location
	Global  *Scope
	Runtime *Runtime
	scopes  []*Scope
}

// NewEnv initializes and returns a new LEnv using the given runtime.  When rt
// is nil StandardRuntime() called to create a new Runtime for the returned
// LEnv.
func NewEnv(rt *Runtime) *LEnv {
	if rt == nil {
		rt = StandardRuntime()
	}
	global := newGlobalScope()
	return &LEnv{
		Global:  global,
		Runtime: rt,
		scopes:  []*Scope{global},
	}
}

// InitializeUserEnv applies config to env and returns the first error
// produced, or nil.  The builtin operators need no registration so a new
// LEnv is usable without calling InitializeUserEnv.
func InitializeUserEnv(env *LEnv, config ...Config) *LVal {
	if env.Runtime.Stack == nil {
		env.Runtime.Stack = &CallStack{}
	}
	for _, fn := range config {
		lerr := fn(env)
		if lerr.Type == LError {
			return lerr
		}
	}
	return Nil()
}

// Scope returns the innermost active scope.
func (env *LEnv) Scope() *Scope {
	return env.scopes[len(env.scopes)-1]
}

// Depth returns the number of active scopes, including the global scope.
func (env *LEnv) Depth() int {
	return len(env.scopes)
}

func (env *LEnv) pushScope(s *Scope) {
	env.scopes = append(env.scopes, s)
}

func (env *LEnv) popScope() {
	if len(env.scopes) <= 1 {
		panic("pop called on the global scope")
	}
	env.scopes[len(env.scopes)-1] = nil
	env.scopes = env.scopes[:len(env.scopes)-1]
}

// inGlobal evaluates fn with the global scope active.
func (env *LEnv) inGlobal(fn func() *LVal) *LVal {
	env.pushScope(env.Global)
	defer env.popScope()
	return fn()
}

// Define binds name to the unevaluated expression expr in the global scope.
func (env *LEnv) Define(name string, expr *LVal) {
	env.Global.Put(name, expr)
}

// GlobalNames returns the sorted names of all global definitions.
func (env *LEnv) GlobalNames() []string {
	return env.Global.Names()
}

// Get takes an LSymbol k and returns the value it is bound to in env.
func (env *LEnv) Get(k *LVal) *LVal {
	if k.Type != LSymbol {
		return env.ErrorConditionf(CondTypeError, "symbol expected but got %v", k.Type)
	}
	return env.Eval(k)
}

// Error returns an LError value with the condition "error" wrapping err.
func (env *LEnv) Error(err error) *LVal {
	return env.ErrorCondition(CondError, err)
}

// ErrorCondition returns an LError with the given condition wrapping err.
// Unlike the exported function, the ErrorCondition method returns an LVal
// with a copy env.Runtime.Stack.
func (env *LEnv) ErrorCondition(condition string, err error) *LVal {
	if locErr, ok := err.(*token.LocationError); ok && locErr.Source != nil {
		lerr := ErrorCondition(condition, locErr.Err)
		lerr.Source = locErr.Source
		env.ErrorAssociate(lerr)
		return lerr
	}
	lerr := ErrorCondition(condition, err)
	env.ErrorAssociate(lerr)
	return lerr
}

// Errorf returns an LError value with a formatted error message.
func (env *LEnv) Errorf(format string, v ...interface{}) *LVal {
	return env.ErrorConditionf(CondError, format, v...)
}

// ErrorConditionf returns an LError value with the given condition type and a
// a formatted error message rendered using fmt.Sprintf.
//
// Unlike the exported function, the ErrorConditionf method returns an LVal
// with a copy env.Runtime.Stack.
func (env *LEnv) ErrorConditionf(condition string, format string, v ...interface{}) *LVal {
	lerr := ErrorConditionf(condition, format, v...)
	env.ErrorAssociate(lerr)
	return lerr
}

// ErrorAssociate associates the LError value lerr with env's current call
// stack and source location.  ErrorAssociate panics if lerr is not LError.
func (env *LEnv) ErrorAssociate(lerr *LVal) {
	if lerr.Type != LError {
		panic("not an error: " + lerr.Type.String())
	}
	if lerr.CallStack() == nil {
		lerr.SetCallStack(env.Runtime.Stack.Copy())
	}
	if lerr.Source == nil {
		lerr.Source = env.Loc
	}
}

// LoadString reads exprs and evaluates them as Load does.
func (env *LEnv) LoadString(name, exprs string) *LVal {
	return env.Load(name, strings.NewReader(exprs))
}

// LoadFile attempts to use env.Runtime.Library to read a source file and
// evaluate expressions it contains.  Any error encountered will prevent
// execution of loaded source and be returned.
func (env *LEnv) LoadFile(loc string) *LVal {
	if env.Runtime.Library == nil {
		return env.ErrorConditionf(CondIOError, "no source library in environment runtime")
	}
	ctx := env.Runtime.sourceContext()
	name, loc, src, err := env.Runtime.Library.LoadSource(ctx, loc)
	if err != nil {
		return env.ErrorCondition(CondIOError, fmt.Errorf("load: %w", err))
	}
	return env.LoadLocation(name, loc, bytes.NewReader(src))
}

// Load reads LVals from r and evaluates them in order in the global scope.
// The value returned by the last evaluated LVal will be returned.  If
// env.Runtime.Reader has not been set then an error will be returned by Load.
func (env *LEnv) Load(name string, r io.Reader) *LVal {
	exprs, lerr := env.Read(name, r)
	if lerr != nil {
		return lerr
	}
	return env.load(exprs)
}

// Read parses the contents of r using env.Runtime.Reader without evaluating
// anything.  Failures are returned as an LError.
func (env *LEnv) Read(name string, r io.Reader) ([]*LVal, *LVal) {
	if env.Runtime.Reader == nil {
		return nil, env.Errorf("no reader for environment runtime")
	}
	exprs, err := env.Runtime.Reader.Read(name, r)
	if err != nil {
		return nil, env.readError(err)
	}
	return exprs, nil
}

// readError converts a reader failure to an LError.  Parse failures carry
// a source location and are syntax errors.  Anything else came from the
// underlying io.Reader.
func (env *LEnv) readError(err error) *LVal {
	var locErr *token.LocationError
	if errors.As(err, &locErr) {
		return env.ErrorCondition(CondSyntaxError, locErr)
	}
	return env.ErrorCondition(CondIOError, err)
}

// EvalTopLevel evaluates expr in the global scope, as a top level expression
// of a loaded file would be.
func (env *LEnv) EvalTopLevel(expr *LVal) *LVal {
	return env.inGlobal(func() *LVal {
		return env.Eval(expr)
	})
}

// LoadLocation is like Load but associates the stream with physical
// location loc, which lets nested calls to load resolve relative paths.
func (env *LEnv) LoadLocation(name string, loc string, r io.Reader) *LVal {
	exprs, lerr := env.ReadLocation(name, loc, r)
	if lerr != nil {
		return lerr
	}
	return env.load(exprs)
}

// ReadLocation is like Read but records loc as the physical location of
// the parsed expressions when the runtime reader supports it.
func (env *LEnv) ReadLocation(name string, loc string, r io.Reader) ([]*LVal, *LVal) {
	if env.Runtime.Reader == nil {
		return nil, env.Errorf("no reader for environment runtime")
	}
	reader, ok := env.Runtime.Reader.(LocationReader)
	if !ok {
		// Without physical locations the path is the only thing that ties
		// stack frames to the file being read.
		if loc == "" {
			loc = name
		}
		return env.Read(loc, r)
	}
	exprs, err := reader.ReadLocation(name, loc, r)
	if err != nil {
		return nil, env.readError(err)
	}
	return exprs, nil
}

func (env *LEnv) load(exprs []*LVal) *LVal {
	return env.inGlobal(func() *LVal {
		ret := Nil()
		for _, expr := range exprs {
			ret = env.Eval(expr)
			if ret.Type == LError {
				return ret
			}
		}
		return ret
	})
}
