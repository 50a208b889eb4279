package builtins

import "lispy/object"

func init() {
	register("nil?", typePredicate(func(v object.Value) bool { _, ok := v.(object.Nil); return ok }))
	register("bool?", typePredicate(func(v object.Value) bool { _, ok := v.(object.Bool); return ok }))
	register("number?", typePredicate(func(v object.Value) bool {
		_, isInt := v.(object.Int)
		_, isFloat := v.(object.Float)
		return isInt || isFloat
	}))
	register("string?", typePredicate(func(v object.Value) bool { _, ok := v.(object.Str); return ok }))
	register("symbol?", typePredicate(func(v object.Value) bool { _, ok := v.(object.Symbol); return ok }))
	register("list?", typePredicate(func(v object.Value) bool { _, ok := v.(*object.List); return ok }))
	register("vector?", typePredicate(func(v object.Value) bool { _, ok := v.(*object.Vector); return ok }))
	register("map?", typePredicate(func(v object.Value) bool { _, ok := v.(*object.Map); return ok }))
	register("fn?", typePredicate(func(v object.Value) bool {
		_, isFn := v.(*object.Function)
		_, isBuiltin := v.(*object.Builtin)
		return isFn || isBuiltin
	}))
	register("promise?", typePredicate(func(v object.Value) bool { _, ok := v.(*object.Promise); return ok }))
	register("empty?", isEmpty)
	register("even?", parityPredicate(0))
	register("odd?", parityPredicate(1))
}

func typePredicate(check func(object.Value) bool) object.BuiltinFunc {
	return func(args []object.Value, env *object.Environment) (object.Value, error) {
		if len(args) != 1 {
			return nil, arityError("predicate", "1", len(args))
		}
		return object.NativeBool(check(args[0])), nil
	}
}

func isEmpty(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 1 {
		return nil, arityError("empty?", "1", len(args))
	}
	switch v := args[0].(type) {
	case object.Str:
		return object.NativeBool(len(v.Value) == 0), nil
	case *object.Map:
		return object.NativeBool(len(v.Pairs) == 0), nil
	default:
		elems, ok := elementsOf(args[0])
		if !ok {
			return nil, typeError("empty?", "a collection or string", args[0])
		}
		return object.NativeBool(len(elems) == 0), nil
	}
}

func parityPredicate(remainder int64) object.BuiltinFunc {
	return func(args []object.Value, env *object.Environment) (object.Value, error) {
		if len(args) != 1 {
			return nil, arityError("parity predicate", "1", len(args))
		}
		n, ok := args[0].(object.Int)
		if !ok {
			return nil, typeError("even?/odd?", "an integer", args[0])
		}
		m := n.Value % 2
		if m < 0 {
			m += 2
		}
		return object.NativeBool(m == remainder), nil
	}
}
