// Copyright © 2024 The ELPS authors

package lisp

import (
	"github.com/shopspring/decimal"
)

// evalArgs evaluates args in order and stops at the first error.
func (env *LEnv) evalArgs(args []*LVal) ([]*LVal, *LVal) {
	vals := make([]*LVal, len(args))
	for i, arg := range args {
		v := env.Eval(arg)
		if v.Type == LError {
			return nil, v
		}
		vals[i] = v
	}
	return vals, nil
}

func (env *LEnv) opEq(args []*LVal) *LVal {
	vals, lerr := env.evalArgs(args)
	if lerr != nil {
		return lerr
	}
	eq := true
	for _, v := range vals[1:] {
		if !vals[0].Equal(v) {
			eq = false
		}
	}
	return Bool(eq)
}

func (env *LEnv) numbers(op Op, args []*LVal) ([]decimal.Decimal, *LVal) {
	vals, lerr := env.evalArgs(args)
	if lerr != nil {
		return nil, lerr
	}
	nums := make([]decimal.Decimal, len(vals))
	for i, v := range vals {
		if v.Type != LNumber {
			return nil, env.ErrorConditionf(CondTypeError, "non-number atom cannot have operator '%s' applied to it: %v", op, v)
		}
		nums[i] = v.Num
	}
	return nums, nil
}

func (env *LEnv) opArithmetic(op Op, args []*LVal) *LVal {
	nums, lerr := env.numbers(op, args)
	if lerr != nil {
		return lerr
	}
	switch op {
	case OpAdd:
		sum := decimal.Zero
		for _, x := range nums {
			sum = sum.Add(x)
		}
		return Number(sum)
	case OpMul:
		prod := decimal.NewFromInt(1)
		for _, x := range nums {
			prod = prod.Mul(x)
		}
		return Number(prod)
	case OpSub:
		if len(nums) == 1 {
			return Number(nums[0].Neg())
		}
		diff := nums[0]
		for _, x := range nums[1:] {
			diff = diff.Sub(x)
		}
		return Number(diff)
	case OpDiv:
		if len(nums) == 1 {
			nums = append([]decimal.Decimal{decimal.NewFromInt(1)}, nums...)
		}
		quo := nums[0]
		for _, x := range nums[1:] {
			if x.IsZero() {
				return env.ErrorConditionf(CondDivisionByZero, "division by zero")
			}
			quo = quo.DivRound(x, env.Runtime.DivisionPrecision)
		}
		return Number(quo)
	case OpMod:
		rem := nums[0]
		for _, x := range nums[1:] {
			if x.IsZero() {
				return env.ErrorConditionf(CondDivisionByZero, "modulus by zero")
			}
			rem = rem.Mod(x)
		}
		return Number(rem)
	}
	return env.Errorf("not an arithmetic operator: %v", op)
}

func (env *LEnv) opCompare(op Op, args []*LVal) *LVal {
	nums, lerr := env.numbers(op, args)
	if lerr != nil {
		return lerr
	}
	for i := 1; i < len(nums); i++ {
		c := nums[i-1].Cmp(nums[i])
		var ok bool
		switch op {
		case OpLT:
			ok = c < 0
		case OpGT:
			ok = c > 0
		case OpLE:
			ok = c <= 0
		case OpGE:
			ok = c >= 0
		}
		if !ok {
			return Bool(false)
		}
	}
	return Bool(true)
}

func (env *LEnv) opCar(arg *LVal) *LVal {
	lis := env.Eval(arg)
	if lis.Type == LError {
		return lis
	}
	if lis.Type != LList {
		return env.ErrorConditionf(CondTypeError, "car expects a list but got %v: %v", lis.Type, lis)
	}
	if len(lis.Cells) == 0 {
		return env.ErrorConditionf(CondEmptyList, "car of an empty list")
	}
	return lis.Cells[0]
}

func (env *LEnv) opCdr(arg *LVal) *LVal {
	lis := env.Eval(arg)
	if lis.Type == LError {
		return lis
	}
	if lis.Type != LList {
		return env.ErrorConditionf(CondTypeError, "cdr expects a list but got %v: %v", lis.Type, lis)
	}
	if len(lis.Cells) == 0 {
		return List()
	}
	rest := make([]*LVal, len(lis.Cells)-1)
	copy(rest, lis.Cells[1:])
	return List(rest...)
}

func (env *LEnv) opString(arg *LVal) *LVal {
	v := env.Eval(arg)
	switch v.Type {
	case LError, LString:
		return v
	default:
		return String(v.String())
	}
}

func (env *LEnv) opDefine(sym *LVal, expr *LVal) *LVal {
	if sym.Type != LSymbol {
		return env.ErrorConditionf(CondTypeError, "first argument to define must be a symbol but got %v: %v", sym.Type, sym)
	}
	if expr.Type == LSymbol && expr.Str == sym.Str {
		return Symbol(sym.Str)
	}
	env.Define(sym.Str, expr)
	return Symbol(sym.Str)
}

func (env *LEnv) opLambda(params *LVal, body *LVal) *LVal {
	var formals []*LVal
	if params.Type == LList {
		formals = params.Cells
	} else {
		formals = []*LVal{params}
	}
	fn := Lambda(formals, body, env.Scope())
	fn.Source = env.Loc
	return fn
}

func (env *LEnv) opIf(cond, then, els *LVal) *LVal {
	c := env.Eval(cond)
	if c.Type == LError {
		return c
	}
	if c.Type != LBool {
		return env.ErrorConditionf(CondTypeError, "if condition must be a boolean but got %v: %v", c.Type, c)
	}
	if c.Bool {
		return env.Eval(then)
	}
	return env.Eval(els)
}

// opLogic evaluates every argument, without short-circuiting, so that side
// effects of later arguments always happen.
func (env *LEnv) opLogic(op Op, args []*LVal) *LVal {
	acc := op == OpAnd
	for _, arg := range args {
		v := env.Eval(arg)
		if v.Type == LError {
			return v
		}
		if v.Type != LBool {
			return env.ErrorConditionf(CondTypeError, "non-boolean atom cannot have operator '%s' applied to it: %v", op, v)
		}
		if op == OpAnd {
			acc = acc && v.Bool
		} else {
			acc = acc || v.Bool
		}
	}
	return Bool(acc)
}

func (env *LEnv) opNot(arg *LVal) *LVal {
	v := env.Eval(arg)
	if v.Type == LError {
		return v
	}
	if v.Type != LBool {
		return env.ErrorConditionf(CondTypeError, "not expects a boolean but got %v: %v", v.Type, v)
	}
	return Bool(!v.Bool)
}

func (env *LEnv) opAtom(arg *LVal) *LVal {
	v := env.Eval(arg)
	if v.Type == LError {
		return v
	}
	return Bool(v.IsAtom())
}
