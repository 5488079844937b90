// Copyright © 2024 The ELPS authors

package lisp

import (
	"strings"
)

// Op is a builtin operator.  The set of operators is closed; any other
// function name is looked up in the environment.
type Op uint

// Builtin operators, in the order they are documented.
const (
	OpInvalid Op = iota
	OpEq
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLT
	OpGT
	OpLE
	OpGE
	OpCar
	OpCdr
	OpQuote
	OpString
	OpDefine
	OpLambda
	OpLoad
	OpIf
	OpAnd
	OpOr
	OpNot
	OpAtom
	OpSlurp
	OpWrite
	OpPrint
	OpPrintln
	numOps
)

// VarArgSymbol marks the final formal argument of a variadic operator.
const VarArgSymbol = "&rest"

// variadic is the maximum argument count of operators without an upper
// bound.
const variadic = -1

type opSpec struct {
	name    string
	formals []string
	min     int
	max     int
	doc     string
}

var opSpecs = [numOps]opSpec{
	OpInvalid: {name: "INVALID"},
	OpEq: {"=", []string{"expr", VarArgSymbol, "exprs"}, 1, variadic,
		`Returns #t if every argument is structurally equal to the first.
		Numbers compare by value and lists compare element by element.`},
	OpAdd: {"+", []string{VarArgSymbol, "numbers"}, 0, variadic,
		`Returns the sum of its arguments. With no arguments returns 0.`},
	OpSub: {"-", []string{"number", VarArgSymbol, "numbers"}, 1, variadic,
		`Subtracts the remaining arguments from the first. With a single
		argument returns its negation.`},
	OpMul: {"*", []string{VarArgSymbol, "numbers"}, 0, variadic,
		`Returns the product of its arguments. With no arguments returns 1.`},
	OpDiv: {"/", []string{"number", VarArgSymbol, "numbers"}, 1, variadic,
		`Divides the first argument by each remaining argument in turn.
		With a single argument returns its reciprocal. Quotients are
		rounded to the runtime division precision.`},
	OpMod: {"%", []string{"number", "divisor", VarArgSymbol, "divisors"}, 2, variadic,
		`Returns the remainder of dividing the first argument by each
		remaining argument in turn. The remainder has the sign of the
		dividend.`},
	OpLT: {"<", []string{"a", "b", VarArgSymbol, "numbers"}, 2, variadic,
		`Returns #t if the numeric arguments are strictly increasing.`},
	OpGT: {">", []string{"a", "b", VarArgSymbol, "numbers"}, 2, variadic,
		`Returns #t if the numeric arguments are strictly decreasing.`},
	OpLE: {"<=", []string{"a", "b", VarArgSymbol, "numbers"}, 2, variadic,
		`Returns #t if the numeric arguments are non-decreasing.`},
	OpGE: {">=", []string{"a", "b", VarArgSymbol, "numbers"}, 2, variadic,
		`Returns #t if the numeric arguments are non-increasing.`},
	OpCar: {"car", []string{"list"}, 1, 1,
		`Returns the first element of a list. Signals an error for an
		empty list or a non-list argument.`},
	OpCdr: {"cdr", []string{"list"}, 1, 1,
		`Returns a list containing every element of list but the first.
		The cdr of an empty list is an empty list.`},
	OpQuote: {"quote", []string{"expr"}, 1, 1,
		`Returns its argument unevaluated.`},
	OpString: {"string", []string{"expr"}, 1, 1,
		`Returns the printed form of its evaluated argument as a string.
		Strings are returned unchanged.`},
	OpDefine: {"define", []string{"symbol", "expr"}, 2, 2,
		`Binds symbol to the unevaluated expr in the global scope and
		returns the symbol. The expression is evaluated each time the
		symbol is referenced.`},
	OpLambda: {"lambda", []string{"params", "body"}, 2, 2,
		`Returns a function closing over the current scope. Params is a
		list of symbols or a single symbol. The body is one expression.`},
	OpLoad: {"load", []string{"path"}, 1, 1,
		`Evaluates every expression in the file at path in the global
		scope and returns the value of the last one. Relative paths are
		resolved against the file being evaluated.`},
	OpIf: {"if", []string{"condition", "then", "else"}, 3, 3,
		`Evaluates then if the boolean condition is #t and else if it is
		#f. Only the chosen branch is evaluated.`},
	OpAnd: {"and", []string{VarArgSymbol, "booleans"}, 0, variadic,
		`Returns #t if every argument is #t. Every argument is evaluated
		even after the result is known. With no arguments returns #t.`},
	OpOr: {"or", []string{VarArgSymbol, "booleans"}, 0, variadic,
		`Returns #t if any argument is #t. Every argument is evaluated
		even after the result is known. With no arguments returns #f.`},
	OpNot: {"not", []string{"boolean"}, 1, 1,
		`Returns the logical negation of a boolean.`},
	OpAtom: {"atom", []string{"expr"}, 1, 1,
		`Returns #t if its evaluated argument is not a list.`},
	OpSlurp: {"slurp", []string{"path"}, 1, 1,
		`Returns the contents of the file at path as a string.`},
	OpWrite: {"write", []string{"path", "expr"}, 2, 2,
		`Writes the text of a string, or the printed form of any other
		value, to the file at path, replacing its contents. Returns nil.`},
	OpPrint: {"print", []string{"string"}, 1, 1,
		`Writes a string to standard output. Returns nil.`},
	OpPrintln: {"println", []string{"string"}, 1, 1,
		`Writes a string followed by a newline to standard output.
		Returns nil.`},
}

var opIndex = func() map[string]Op {
	m := make(map[string]Op, numOps)
	for op := OpInvalid + 1; op < numOps; op++ {
		m[opSpecs[op].name] = op
	}
	return m
}()

// LookupOp returns the builtin operator with the given name.
func LookupOp(name string) (Op, bool) {
	op, ok := opIndex[name]
	return op, ok
}

// Ops returns every builtin operator in documentation order.
func Ops() []Op {
	ops := make([]Op, 0, numOps-1)
	for op := OpInvalid + 1; op < numOps; op++ {
		ops = append(ops, op)
	}
	return ops
}

// OpNames returns the names of every builtin operator.
func OpNames() []string {
	names := make([]string, 0, numOps-1)
	for _, op := range Ops() {
		names = append(names, op.String())
	}
	return names
}

func (op Op) spec() *opSpec {
	if op >= numOps {
		return &opSpecs[OpInvalid]
	}
	return &opSpecs[op]
}

func (op Op) String() string {
	return op.spec().name
}

// Formals returns the names of the arguments op takes.
func (op Op) Formals() []string {
	return op.spec().formals
}

// Arity returns the minimum and maximum number of arguments op accepts.  A
// negative maximum means op is variadic.
func (op Op) Arity() (lo int, hi int) {
	return op.spec().min, op.spec().max
}

// Doc returns the documentation for op with leading indentation removed
// from each line.
func (op Op) Doc() string {
	lines := strings.Split(op.spec().doc, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.Join(lines, "\n")
}

// Signature returns a call template like "(car list)".
func (op Op) Signature() string {
	parts := append([]string{op.String()}, op.Formals()...)
	return "(" + strings.Join(parts, " ") + ")"
}

func (op Op) checkArity(env *LEnv, n int) *LVal {
	lo, hi := op.Arity()
	switch {
	case lo == hi && n != lo:
		return env.ErrorConditionf(CondArityMismatch, "%s expects %d %s but got %d", op, lo, plural(lo, "argument"), n)
	case n < lo:
		return env.ErrorConditionf(CondArityMismatch, "%s expects at least %d %s but got %d", op, lo, plural(lo, "argument"), n)
	case hi >= 0 && n > hi:
		return env.ErrorConditionf(CondArityMismatch, "%s expects at most %d %s but got %d", op, hi, plural(hi, "argument"), n)
	}
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// dispatch runs op on unevaluated args.  Operators evaluate their own
// arguments so that quote, define, lambda, if, and or control evaluation.
func (env *LEnv) dispatch(op Op, args []*LVal) *LVal {
	switch op {
	case OpEq:
		return env.opEq(args)
	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		return env.opArithmetic(op, args)
	case OpLT, OpGT, OpLE, OpGE:
		return env.opCompare(op, args)
	case OpCar:
		return env.opCar(args[0])
	case OpCdr:
		return env.opCdr(args[0])
	case OpQuote:
		return args[0]
	case OpString:
		return env.opString(args[0])
	case OpDefine:
		return env.opDefine(args[0], args[1])
	case OpLambda:
		return env.opLambda(args[0], args[1])
	case OpLoad:
		return env.opLoad(args[0])
	case OpIf:
		return env.opIf(args[0], args[1], args[2])
	case OpAnd, OpOr:
		return env.opLogic(op, args)
	case OpNot:
		return env.opNot(args[0])
	case OpAtom:
		return env.opAtom(args[0])
	case OpSlurp:
		return env.opSlurp(args[0])
	case OpWrite:
		return env.opWrite(args[0], args[1])
	case OpPrint:
		return env.opPrint(args[0], false)
	case OpPrintln:
		return env.opPrint(args[0], true)
	default:
		return env.Errorf("invalid operator: %d", op)
	}
}
