// Copyright © 2024 The ELPS authors

package lisp

import (
	"fmt"
	"io"
)

// evalString evaluates arg and requires a String result.
func (env *LEnv) evalString(op Op, arg *LVal) (string, *LVal) {
	v := env.Eval(arg)
	if v.Type == LError {
		return "", v
	}
	if v.Type != LString {
		return "", env.ErrorConditionf(CondTypeError, "%s expects a string but got %v: %v", op, v.Type, v)
	}
	return v.Str, nil
}

func (env *LEnv) opLoad(arg *LVal) *LVal {
	path, lerr := env.evalString(OpLoad, arg)
	if lerr != nil {
		return lerr
	}
	return env.LoadFile(path)
}

func (env *LEnv) opSlurp(arg *LVal) *LVal {
	path, lerr := env.evalString(OpSlurp, arg)
	if lerr != nil {
		return lerr
	}
	if env.Runtime.Library == nil {
		return env.ErrorConditionf(CondIOError, "no source library in environment runtime")
	}
	_, _, b, err := env.Runtime.Library.LoadSource(env.Runtime.sourceContext(), path)
	if err != nil {
		return env.ErrorCondition(CondIOError, fmt.Errorf("slurp: %w", err))
	}
	return String(string(b))
}

func (env *LEnv) opWrite(pathArg *LVal, arg *LVal) *LVal {
	path, lerr := env.evalString(OpWrite, pathArg)
	if lerr != nil {
		return lerr
	}
	v := env.Eval(arg)
	if v.Type == LError {
		return v
	}
	lib, ok := env.Runtime.Library.(WritableLibrary)
	if !ok {
		return env.ErrorConditionf(CondIOError, "source library does not support writing files")
	}
	text, ok := GoString(v)
	if !ok {
		text = v.String()
	}
	err := lib.WriteSource(env.Runtime.sourceContext(), path, []byte(text))
	if err != nil {
		return env.ErrorCondition(CondIOError, fmt.Errorf("write: %w", err))
	}
	return Nil()
}

func (env *LEnv) opPrint(arg *LVal, newline bool) *LVal {
	op := OpPrint
	if newline {
		op = OpPrintln
	}
	s, lerr := env.evalString(op, arg)
	if lerr != nil {
		return lerr
	}
	var err error
	if newline {
		_, err = fmt.Fprintln(env.stdout(), s)
	} else {
		_, err = io.WriteString(env.stdout(), s)
	}
	if err != nil {
		return env.ErrorCondition(CondIOError, err)
	}
	return Nil()
}

func (env *LEnv) stdout() io.Writer {
	if env.Runtime.Stdout == nil {
		return io.Discard
	}
	return env.Runtime.Stdout
}
