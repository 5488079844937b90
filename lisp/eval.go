// Copyright © 2024 The ELPS authors

package lisp

// Eval evaluates v in the active scope of env and returns the resulting
// LVal.  Eval does not modify v.
func (env *LEnv) Eval(v *LVal) *LVal {
	switch v.Type {
	case LSymbol:
		return env.evalSymbol(v)
	case LList:
		return env.evalList(v)
	default:
		return v
	}
}

func (env *LEnv) evalSymbol(sym *LVal) *LVal {
	val, scope := env.Scope().Get(sym.Str)
	if scope == nil {
		lerr := env.ErrorConditionf(CondUnboundSymbol, "symbol of name '%s' is undefined", sym.Str)
		if sym.Source != nil {
			lerr.Source = sym.Source
		}
		return lerr
	}
	if !scope.IsGlobal() {
		return val
	}
	return env.evalGlobal(val)
}

// evalGlobal evaluates an expression stored by define.  Global definitions
// only see other global definitions.
func (env *LEnv) evalGlobal(expr *LVal) *LVal {
	return env.inGlobal(func() *LVal {
		return env.Eval(expr)
	})
}

func (env *LEnv) evalList(v *LVal) *LVal {
	if len(v.Cells) == 0 {
		lerr := env.ErrorConditionf(CondEmptyExpression, "cannot evaluate an empty expression")
		if v.Source != nil {
			lerr.Source = v.Source
		}
		return lerr
	}
	if v.Source != nil {
		loc := env.Loc
		env.Loc = v.Source
		defer func() { env.Loc = loc }()
	}
	ret := env.evalCall(v)
	if ret.Type == LError && ret.Source == nil {
		ret.Source = v.Source
	}
	return ret
}

func (env *LEnv) evalCall(v *LVal) *LVal {
	head := v.Cells[0]
	args := v.Cells[1:]
	if head.Type == LList {
		head = env.Eval(head)
		if head.Type == LError {
			return head
		}
		if head.Type == LList {
			return env.ErrorConditionf(CondNotAFunctionName, "list cannot be used as a function name: %v", head)
		}
	}
	switch head.Type {
	case LSymbol:
		return env.apply(head, args)
	case LLambda:
		anon := &LVal{Type: LLambda, Lambda: head.Lambda, Source: v.Source}
		return env.executeLambda(anon, head.Lambda, args)
	default:
		return env.ErrorConditionf(CondNotAFunctionName, "%v atom cannot be used as a function name: %v", head.Type, head)
	}
}

// lambdaName is the call stack name of anonymous function calls.
const lambdaName = "lambda"

func (env *LEnv) apply(name *LVal, args []*LVal) *LVal {
	if op, ok := LookupOp(name.Str); ok {
		return env.callOp(op, name, args)
	}
	val, scope := env.Scope().Get(name.Str)
	if scope == nil {
		return env.ErrorConditionf(CondUnrecognizedFunction, "unrecognized function '%s'", name.Str)
	}
	if scope.IsGlobal() {
		val = env.evalGlobal(val)
		if val.Type == LError {
			return val
		}
	}
	if val.Type != LLambda {
		return env.ErrorConditionf(CondSymbolNotFunction, "symbol '%s' is bound to a %v and cannot be used as a function", name.Str, val.Type)
	}
	return env.executeLambda(name, val.Lambda, args)
}

// callName returns the name a function was called through.  Anonymous
// lambdas are called through themselves.
func callName(fun *LVal) string {
	if fun.Type == LSymbol {
		return fun.Str
	}
	return lambdaName
}

// executeLambda binds the evaluated args to the parameters of def and
// evaluates its body.  The fun value is the called symbol, or the lambda
// itself for anonymous calls, and labels the call in stack traces and
// profiles.
func (env *LEnv) executeLambda(fun *LVal, def *LambdaDef, args []*LVal) *LVal {
	name := callName(fun)
	if len(def.Params) != len(args) {
		return env.ErrorConditionf(CondArityMismatch, "%s expects %d %s but got %d", name, len(def.Params), plural(len(def.Params), "argument"), len(args))
	}
	scope := NewScope(def.Closure)
	for i, param := range def.Params {
		switch param.Type {
		case LSymbol:
		case LList:
			return env.ErrorConditionf(CondInvalidParameterName, "list cannot be parameter name")
		default:
			return env.ErrorConditionf(CondInvalidParameterName, "%v atom cannot be parameter name: %v", param.Type, param)
		}
		val := env.Eval(args[i])
		if val.Type == LError {
			return val
		}
		scope.Put(param.Str, val)
	}

	err := env.Runtime.Stack.Push(env.Loc, name)
	if err != nil {
		return env.ErrorCondition(CondStackOverflow, err)
	}
	defer env.Runtime.Stack.Pop()
	if env.Runtime.profiling() {
		defer env.Runtime.Profiler.Start(fun)()
	}

	env.pushScope(scope)
	defer env.popScope()
	return env.Eval(def.Body)
}

func (env *LEnv) callOp(op Op, name *LVal, args []*LVal) *LVal {
	if lerr := op.checkArity(env, len(args)); lerr != nil {
		return lerr
	}
	err := env.Runtime.Stack.Push(env.Loc, op.String())
	if err != nil {
		return env.ErrorCondition(CondStackOverflow, err)
	}
	defer env.Runtime.Stack.Pop()
	if env.Runtime.profiling() {
		defer env.Runtime.Profiler.Start(name)()
	}
	return env.dispatch(op, args)
}
