// Copyright © 2024 The ELPS authors

package lisp

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// Error conditions produced by the evaluator and the builtin operators.  The
// condition of an LError is stored in its Str field.
const (
	CondError                = "error"
	CondSyntaxError          = "syntax-error"
	CondEmptyExpression      = "empty-expression"
	CondNotAFunctionName     = "not-a-function-name"
	CondUnboundSymbol        = "unbound-symbol"
	CondUnrecognizedFunction = "unrecognized-function"
	CondSymbolNotFunction    = "symbol-not-function"
	CondArityMismatch        = "arity-mismatch"
	CondTypeError            = "type-error"
	CondInvalidParameterName = "invalid-parameter-name"
	CondEmptyList            = "empty-list"
	CondDivisionByZero       = "division-by-zero"
	CondIOError              = "io-error"
	CondStackOverflow        = "stack-overflow"
)

// ErrorVal implements the error interface so that errors can be first class lisp
// objects.  The error message is stored in the Cells slice while the
// condition is stored in Str.
type ErrorVal LVal

// GoError returns an error that represents lisp error v.  If v is not an
// LError GoError returns nil.
func GoError(v *LVal) error {
	if v.Type != LError {
		return nil
	}
	return (*ErrorVal)(v)
}

// Error implements the error interface.  The source location of the error
// precedes the condition when it is known.
func (e *ErrorVal) Error() string {
	if e.Source != nil {
		return fmt.Sprintf("%s: %s: %s", e.Source, e.Str, e.ErrorMessage())
	}
	return fmt.Sprintf("%s: %s", e.Str, e.ErrorMessage())
}

// Condition returns the error condition name (e.g., "type-error").
func (e *ErrorVal) Condition() string {
	return e.Str
}

// FunName returns the name of function on the top of the call stack when
// the error occurred.
func (e *ErrorVal) FunName() string {
	top := (*LVal)(e).CallStack().Top()
	if top == nil {
		return ""
	}
	return top.Name
}

// ErrorMessage returns the underlying message in the error.
func (e *ErrorVal) ErrorMessage() string {
	if len(e.Cells) > 0 {
		switch v := e.Cells[0].Native.(type) {
		case error:
			return v.Error()
		}
	}

	var buf bytes.Buffer
	for i, cell := range e.Cells {
		if i > 0 {
			buf.WriteString(" ")
		}
		if cell.Type == LString {
			buf.WriteString(cell.Str)
		} else {
			buf.WriteString(cell.String())
		}
	}
	return buf.String()
}

// Unwrap returns the Go error wrapped by e, if any.
func (e *ErrorVal) Unwrap() error {
	if len(e.Cells) > 0 {
		if err, ok := e.Cells[0].Native.(error); ok {
			return err
		}
	}
	return nil
}

// WriteTrace writes the error and a stack trace to w
func (e *ErrorVal) WriteTrace(w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	var n int
	var err error
	wrote := func(_n int, _err error) bool {
		n += _n
		err = _err
		return err == nil
	}
	if !wrote(bw.WriteString(e.Error())) {
		return n, err
	}
	if !wrote(bw.WriteString("\n")) {
		return n, err
	}
	stack := (*LVal)(e).CallStack()
	if stack != nil && len(stack.Frames) > 0 {
		if !wrote(stack.DebugPrint(bw)) {
			return n, err
		}
	}
	return n, bw.Flush()
}
