// Copyright © 2024 The ELPS authors

package lisp

import (
	"fmt"
	"strings"

	"github.com/luthersystems/minischeme/parser/token"
	"github.com/shopspring/decimal"
)

// LType is the type of an LVal
type LType uint

// Possible LValue types.
const (
	// LInvalid (0) is not a valid lisp type.
	LInvalid LType = iota
	// LList is an ordered sequence of expressions.  An empty LList is
	// distinct from LNil.
	LList
	// LBool is a boolean atom.
	LBool
	// LNumber is an arbitrary precision decimal number.
	LNumber
	// LString is a string atom.  Its text is stored without delimiters.
	LString
	// LSymbol is an identifier that is resolved against the environment.
	LSymbol
	// LLambda is a closure created by the lambda operator.
	LLambda
	// LNil is the canonical empty value.
	LNil
	// LError is an error value.  The error condition is stored in Str and
	// the message in Cells.
	LError
	// LNative is an opaque Go value carried by error values.
	LNative
)

var lvalTypeStrings = []string{
	LInvalid: "INVALID",
	LList:    "list",
	LBool:    "boolean",
	LNumber:  "number",
	LString:  "string",
	LSymbol:  "symbol",
	LLambda:  "lambda",
	LNil:     "nil",
	LError:   "error",
	LNative:  "native",
}

func (t LType) String() string {
	if int(t) >= len(lvalTypeStrings) {
		return lvalTypeStrings[LInvalid]
	}
	return lvalTypeStrings[t]
}

// Literal tokens which the reader turns into constant atoms.
const (
	TrueLiteral  = "#t"
	FalseLiteral = "#f"
	NilLiteral   = "nil"
)

// LambdaDef holds the definition of a closure.
type LambdaDef struct {
	// Params should contain LSymbol values.  Other values are rejected
	// when the lambda is called.
	Params []*LVal
	Body   *LVal
	// Closure is the scope in which the lambda was created.
	Closure *Scope
}

// LVal is a lisp value
type LVal struct {
	// Native is generic storage for data which cannot be represented as an
	// LVal.  Errors keep a copy of the call stack here.
	Native interface{}

	// Source is the values originating location in source code.  Programs
	// should not modify the contents of Source as the reference may be shared
	// by multiple LVals.
	Source *token.Location

	// Str used by LSymbol, LString and LError values
	Str string

	// Cells holds the children of an LList and the message of an LError.
	Cells []*LVal

	// Num used by LNumber values
	Num decimal.Decimal

	// Lambda used by LLambda values
	Lambda *LambdaDef

	// Type is the native type for a value in lisp.
	Type LType

	// Bool used by LBool values
	Bool bool
}

// Bool returns an LVal with the given boolean value.
func Bool(b bool) *LVal {
	return &LVal{
		Type: LBool,
		Bool: b,
	}
}

// Number returns an LVal representing the number d.
func Number(d decimal.Decimal) *LVal {
	return &LVal{
		Type: LNumber,
		Num:  d,
	}
}

// Int returns an LVal representing the number x.
func Int(x int) *LVal {
	return Number(decimal.NewFromInt(int64(x)))
}

// String returns an LVal representing the string str.
func String(str string) *LVal {
	return &LVal{
		Type: LString,
		Str:  str,
	}
}

// Symbol returns an LVal representing the symbol s.
func Symbol(s string) *LVal {
	return &LVal{
		Type: LSymbol,
		Str:  s,
	}
}

// Nil returns an LVal representing nil.
func Nil() *LVal {
	return &LVal{
		Type: LNil,
	}
}

// List returns an LList containing cells.
func List(cells ...*LVal) *LVal {
	return &LVal{
		Type:  LList,
		Cells: cells,
	}
}

// Lambda returns a closure over scope which binds params before evaluating
// body.
func Lambda(params []*LVal, body *LVal, scope *Scope) *LVal {
	return &LVal{
		Type: LLambda,
		Lambda: &LambdaDef{
			Params:  params,
			Body:    body,
			Closure: scope,
		},
	}
}

// Native returns an LVal containing a native Go value.
func Native(v interface{}) *LVal {
	return &LVal{
		Type:   LNative,
		Native: v,
	}
}

// Error returns an LError representing err.  Errors store their message in
// Cells and their condition type in Str.
//
// The Env.Error() method is typically the preferred method for creating
// error LVal objects because it initializes Stack with an appropriate value.
func Error(err error) *LVal {
	return ErrorCondition(CondError, err)
}

// ErrorCondition returns an LError representing err and having the given
// condition type.
func ErrorCondition(condition string, err error) *LVal {
	return &LVal{
		Type:  LError,
		Str:   condition,
		Cells: []*LVal{Native(err)},
	}
}

// Errorf returns an LError with a formatted error message.
func Errorf(format string, v ...interface{}) *LVal {
	return ErrorConditionf(CondError, format, v...)
}

// ErrorConditionf returns an LError with a formatted error message and the
// given condition type.
func ErrorConditionf(condition string, format string, v ...interface{}) *LVal {
	return &LVal{
		Type:  LError,
		Str:   condition,
		Cells: []*LVal{String(fmt.Sprintf(format, v...))},
	}
}

// CallStack returns the call stack attached to an LError value, or nil.
func (v *LVal) CallStack() *CallStack {
	if v.Type != LError {
		return nil
	}
	stack, _ := v.Native.(*CallStack)
	return stack
}

// SetCallStack attaches stack to an LError value.
func (v *LVal) SetCallStack(stack *CallStack) {
	if v.Type != LError {
		panic("not an error: " + v.Type.String())
	}
	v.Native = stack
}

// Len returns the number of children in an LList.  Len returns zero for
// every other type.
func (v *LVal) Len() int {
	if v.Type != LList {
		return 0
	}
	return len(v.Cells)
}

// IsNil returns true if v represents nil.
func (v *LVal) IsNil() bool {
	return v.Type == LNil
}

// IsAtom returns true if v is not a list.
func (v *LVal) IsAtom() bool {
	return v.Type != LList
}

// Equal reports whether v and other are structurally equal.  Numbers compare
// by value so 2 and 2.0 are equal.  Lambdas are equal when their parameters
// and bodies are equal, regardless of the scope they captured.  Source
// locations are ignored.
func (v *LVal) Equal(other *LVal) bool {
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case LNumber:
		return v.Num.Equal(other.Num)
	case LBool:
		return v.Bool == other.Bool
	case LString, LSymbol:
		return v.Str == other.Str
	case LNil:
		return true
	case LList:
		return equalCells(v.Cells, other.Cells)
	case LLambda:
		return equalCells(v.Lambda.Params, other.Lambda.Params) &&
			v.Lambda.Body.Equal(other.Lambda.Body)
	case LError:
		return v.Str == other.Str &&
			(*ErrorVal)(v).ErrorMessage() == (*ErrorVal)(other).ErrorMessage()
	case LNative:
		return v.Native == other.Native
	}
	return false
}

func equalCells(a, b []*LVal) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// String returns the printed form of v.  Strings are printed with their
// delimiters so that the printed form of an atom can be read back.
func (v *LVal) String() string {
	var b strings.Builder
	v.write(&b)
	return b.String()
}

func (v *LVal) write(b *strings.Builder) {
	switch v.Type {
	case LNumber:
		b.WriteString(v.Num.String())
	case LBool:
		if v.Bool {
			b.WriteString(TrueLiteral)
		} else {
			b.WriteString(FalseLiteral)
		}
	case LString:
		b.WriteString(QuoteString(v.Str))
	case LSymbol:
		b.WriteString(v.Str)
	case LNil:
		b.WriteString(NilLiteral)
	case LList:
		writeCells(b, v.Cells)
	case LLambda:
		b.WriteString("(lambda ")
		writeCells(b, v.Lambda.Params)
		b.WriteString(" ")
		v.Lambda.Body.write(b)
		b.WriteString(")")
	case LError:
		b.WriteString(v.Str)
		b.WriteString(": ")
		b.WriteString((*ErrorVal)(v).ErrorMessage())
	case LNative:
		fmt.Fprint(b, v.Native)
	default:
		fmt.Fprintf(b, "<%s>", v.Type)
	}
}

func writeCells(b *strings.Builder, cells []*LVal) {
	b.WriteString("(")
	for i, c := range cells {
		if i > 0 {
			b.WriteString(" ")
		}
		c.write(b)
	}
	b.WriteString(")")
}

// QuoteString returns s as a string literal: wrapped in single quotes with
// quotes, backslashes, newlines and tabs escaped.
func QuoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for _, c := range s {
		switch c {
		case '\'':
			b.WriteString(`\'`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// GoString returns the string that v represents and the value true.  If v does
// not represent a string GoString returns a false second argument
func GoString(v *LVal) (string, bool) {
	if v.Type != LString {
		return "", false
	}
	return v.Str, true
}
