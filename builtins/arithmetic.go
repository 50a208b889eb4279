package builtins

import (
	"lispy/lisperr"
	"lispy/object"
)

func init() {
	register("+", arith("+", 0, func(a, b int64) int64 { return a + b }, func(a, b float64) float64 { return a + b }))
	register("*", arith("*", 1, func(a, b int64) int64 { return a * b }, func(a, b float64) float64 { return a * b }))
	register("-", subtract)
	register("/", divide)
	register("mod", modulo)

	register("=", numericCompare("=", func(a, b float64) bool { return a == b }))
	register("<", numericCompare("<", func(a, b float64) bool { return a < b }))
	register("<=", numericCompare("<=", func(a, b float64) bool { return a <= b }))
	register(">", numericCompare(">", func(a, b float64) bool { return a > b }))
	register(">=", numericCompare(">=", func(a, b float64) bool { return a >= b }))
	register("equal?", equalBuiltin)
}

func arith(name string, identity int64, intOp func(a, b int64) int64, floatOp func(a, b float64) float64) object.BuiltinFunc {
	return func(args []object.Value, env *object.Environment) (object.Value, error) {
		if len(args) == 0 {
			return object.Int{Value: identity}, nil
		}
		if allInt(args) {
			acc := args[0].(object.Int).Value
			for _, a := range args[1:] {
				acc = intOp(acc, a.(object.Int).Value)
			}
			return object.Int{Value: acc}, nil
		}
		acc, ok := numeric(args[0])
		if !ok {
			return nil, typeError(name, "a number", args[0])
		}
		for _, a := range args[1:] {
			n, ok := numeric(a)
			if !ok {
				return nil, typeError(name, "a number", a)
			}
			acc = floatOp(acc, n)
		}
		return object.Float{Value: acc}, nil
	}
}

func subtract(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) == 0 {
		return nil, arityError("-", "at least 1", 0)
	}
	if len(args) == 1 {
		if allInt(args) {
			return object.Int{Value: -args[0].(object.Int).Value}, nil
		}
		n, ok := numeric(args[0])
		if !ok {
			return nil, typeError("-", "a number", args[0])
		}
		return object.Float{Value: -n}, nil
	}
	if allInt(args) {
		acc := args[0].(object.Int).Value
		for _, a := range args[1:] {
			acc -= a.(object.Int).Value
		}
		return object.Int{Value: acc}, nil
	}
	acc, ok := numeric(args[0])
	if !ok {
		return nil, typeError("-", "a number", args[0])
	}
	for _, a := range args[1:] {
		n, ok := numeric(a)
		if !ok {
			return nil, typeError("-", "a number", a)
		}
		acc -= n
	}
	return object.Float{Value: acc}, nil
}

func divide(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) < 2 {
		return nil, arityError("/", "at least 2", len(args))
	}
	acc, ok := numeric(args[0])
	if !ok {
		return nil, typeError("/", "a number", args[0])
	}
	for _, a := range args[1:] {
		n, ok := numeric(a)
		if !ok {
			return nil, typeError("/", "a number", a)
		}
		if n == 0 {
			return nil, lisperr.New(lisperr.ZeroDivision, "division by zero")
		}
		acc /= n
	}
	if allInt(args) && isWhole(acc) {
		return object.Int{Value: int64(acc)}, nil
	}
	return object.Float{Value: acc}, nil
}

func isWhole(f float64) bool { return f == float64(int64(f)) }

func modulo(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 2 {
		return nil, arityError("mod", "2", len(args))
	}
	a, ok1 := args[0].(object.Int)
	b, ok2 := args[1].(object.Int)
	if !ok1 || !ok2 {
		return nil, typeError("mod", "two integers", args[0])
	}
	if b.Value == 0 {
		return nil, lisperr.New(lisperr.ZeroDivision, "modulo by zero")
	}
	return object.Int{Value: a.Value % b.Value}, nil
}

func numericCompare(name string, cmp func(a, b float64) bool) object.BuiltinFunc {
	return func(args []object.Value, env *object.Environment) (object.Value, error) {
		if len(args) < 2 {
			return nil, arityError(name, "at least 2", len(args))
		}
		for i := 0; i < len(args)-1; i++ {
			a, ok1 := numeric(args[i])
			b, ok2 := numeric(args[i+1])
			if !ok1 || !ok2 {
				return nil, typeError(name, "numbers", args[i])
			}
			if !cmp(a, b) {
				return object.False, nil
			}
		}
		return object.True, nil
	}
}

func equalBuiltin(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 2 {
		return nil, arityError("equal?", "2", len(args))
	}
	return object.NativeBool(object.Equal(args[0], args[1])), nil
}
