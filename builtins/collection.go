package builtins

import (
	"sort"

	"lispy/evaluator"
	"lispy/lisperr"
	"lispy/object"
)

func init() {
	register("conj", conj)
	register("reverse", reverseFn)
	register("nth", nth)
	register("get", get)
	register("count", count)
	register("first", first)
	register("rest", rest)
	register("cons", cons)
	register("assoc", assoc)
	register("dissoc", dissoc)
	register("keys", keys)
	register("vals", vals)
	register("map", mapFn)
	register("filter", filterFn)
	register("reduce", reduceFn)
	register("sort", sortFn)
	register("range", rangeFn)
	register("every?", everyFn)
	register("some", someFn)
}

// conj appends to a Vector (its append-efficient end) and prepends to a
// List (its prepend-efficient end), matching each container's stated
// efficiency profile.
func conj(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) < 1 {
		return nil, arityError("conj", "at least 1", len(args))
	}
	switch c := args[0].(type) {
	case *object.Vector:
		out := append(append([]object.Value{}, c.Elements...), args[1:]...)
		return object.NewVector(out...), nil
	case *object.List:
		out := make([]object.Value, 0, len(args[1:])+len(c.Elements))
		for i := len(args) - 1; i >= 1; i-- {
			out = append(out, args[i])
		}
		out = append(out, c.Elements...)
		return object.NewList(out...), nil
	default:
		return nil, typeError("conj", "a list or vector", args[0])
	}
}

func reverseFn(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 1 {
		return nil, arityError("reverse", "1", len(args))
	}
	elems, ok := elementsOf(args[0])
	if !ok {
		return nil, typeError("reverse", "a list or vector", args[0])
	}
	out := make([]object.Value, len(elems))
	for i, e := range elems {
		out[len(elems)-1-i] = e
	}
	return sameKindOf(args[0], out), nil
}

func nth(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 2 {
		return nil, arityError("nth", "2", len(args))
	}
	elems, ok := elementsOf(args[0])
	if !ok {
		return nil, typeError("nth", "a list or vector", args[0])
	}
	idx, ok := args[1].(object.Int)
	if !ok {
		return nil, typeError("nth", "an integer index", args[1])
	}
	if idx.Value < 0 || int(idx.Value) >= len(elems) {
		return nil, lisperr.New(lisperr.Index, "nth: index %d out of bounds for length %d", idx.Value, len(elems))
	}
	return elems[idx.Value], nil
}

func get(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 2 && len(args) != 3 {
		return nil, arityError("get", "2 or 3", len(args))
	}
	var fallback object.Value = object.NilValue
	if len(args) == 3 {
		fallback = args[2]
	}
	switch c := args[0].(type) {
	case *object.Map:
		if v, ok := c.Get(args[1]); ok {
			return v, nil
		}
		return fallback, nil
	case *object.Vector:
		idx, ok := args[1].(object.Int)
		if !ok || idx.Value < 0 || int(idx.Value) >= len(c.Elements) {
			return fallback, nil
		}
		return c.Elements[idx.Value], nil
	default:
		return nil, typeError("get", "a map or vector", args[0])
	}
}

func count(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 1 {
		return nil, arityError("count", "1", len(args))
	}
	switch v := args[0].(type) {
	case object.Str:
		return object.Int{Value: int64(len([]rune(v.Value)))}, nil
	case *object.Map:
		return object.Int{Value: int64(len(v.Pairs))}, nil
	default:
		elems, ok := elementsOf(args[0])
		if !ok {
			return nil, typeError("count", "a collection or string", args[0])
		}
		return object.Int{Value: int64(len(elems))}, nil
	}
}

func first(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 1 {
		return nil, arityError("first", "1", len(args))
	}
	elems, ok := elementsOf(args[0])
	if !ok {
		return nil, typeError("first", "a list or vector", args[0])
	}
	if len(elems) == 0 {
		return object.NilValue, nil
	}
	return elems[0], nil
}

func rest(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 1 {
		return nil, arityError("rest", "1", len(args))
	}
	elems, ok := elementsOf(args[0])
	if !ok {
		return nil, typeError("rest", "a list or vector", args[0])
	}
	if len(elems) == 0 {
		return sameKindOf(args[0], nil), nil
	}
	return sameKindOf(args[0], elems[1:]), nil
}

func cons(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 2 {
		return nil, arityError("cons", "2", len(args))
	}
	elems, ok := elementsOf(args[1])
	if !ok {
		return nil, typeError("cons", "a list or vector", args[1])
	}
	out := make([]object.Value, 0, len(elems)+1)
	out = append(out, args[0])
	out = append(out, elems...)
	return object.NewList(out...), nil
}

func assoc(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) < 3 || len(args)%2 != 1 {
		return nil, arityError("assoc", "an odd number (map, key, value, ...)", len(args))
	}
	m, ok := args[0].(*object.Map)
	if !ok {
		return nil, typeError("assoc", "a map", args[0])
	}
	out := object.NewMap()
	for _, p := range m.Pairs {
		_ = out.Set(p.Key, p.Value)
	}
	for i := 1; i < len(args); i += 2 {
		if err := out.Set(args[i], args[i+1]); err != nil {
			return nil, lisperr.Wrap(lisperr.TypeMismatch, err, "key", args[i].String())
		}
	}
	return out, nil
}

func dissoc(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) < 1 {
		return nil, arityError("dissoc", "at least 1", len(args))
	}
	m, ok := args[0].(*object.Map)
	if !ok {
		return nil, typeError("dissoc", "a map", args[0])
	}
	drop := make(map[object.HashKey]bool, len(args)-1)
	for _, k := range args[1:] {
		hk, err := object.Hash(k)
		if err != nil {
			return nil, err
		}
		drop[hk] = true
	}
	out := object.NewMap()
	for hk, p := range m.Pairs {
		if drop[hk] {
			continue
		}
		_ = out.Set(p.Key, p.Value)
	}
	return out, nil
}

func keys(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 1 {
		return nil, arityError("keys", "1", len(args))
	}
	m, ok := args[0].(*object.Map)
	if !ok {
		return nil, typeError("keys", "a map", args[0])
	}
	out := make([]object.Value, 0, len(m.Pairs))
	for _, p := range m.Pairs {
		out = append(out, p.Key)
	}
	return object.NewVector(out...), nil
}

func vals(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 1 {
		return nil, arityError("vals", "1", len(args))
	}
	m, ok := args[0].(*object.Map)
	if !ok {
		return nil, typeError("vals", "a map", args[0])
	}
	out := make([]object.Value, 0, len(m.Pairs))
	for _, p := range m.Pairs {
		out = append(out, p.Value)
	}
	return object.NewVector(out...), nil
}

func mapFn(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 2 {
		return nil, arityError("map", "2", len(args))
	}
	elems, ok := elementsOf(args[1])
	if !ok {
		return nil, typeError("map", "a list or vector", args[1])
	}
	out := make([]object.Value, len(elems))
	for i, el := range elems {
		v, err := evaluator.Apply(args[0], []object.Value{el}, env)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return sameKindOf(args[1], out), nil
}

func filterFn(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 2 {
		return nil, arityError("filter", "2", len(args))
	}
	elems, ok := elementsOf(args[1])
	if !ok {
		return nil, typeError("filter", "a list or vector", args[1])
	}
	out := make([]object.Value, 0, len(elems))
	for _, el := range elems {
		v, err := evaluator.Apply(args[0], []object.Value{el}, env)
		if err != nil {
			return nil, err
		}
		if object.Truthy(v) {
			out = append(out, el)
		}
	}
	return sameKindOf(args[1], out), nil
}

func reduceFn(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 3 {
		return nil, arityError("reduce", "3", len(args))
	}
	elems, ok := elementsOf(args[2])
	if !ok {
		return nil, typeError("reduce", "a list or vector", args[2])
	}
	acc := args[1]
	for _, el := range elems {
		v, err := evaluator.Apply(args[0], []object.Value{acc, el}, env)
		if err != nil {
			return nil, err
		}
		acc = v
	}
	return acc, nil
}

func sortFn(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 1 {
		return nil, arityError("sort", "1", len(args))
	}
	elems, ok := elementsOf(args[0])
	if !ok {
		return nil, typeError("sort", "a list or vector", args[0])
	}
	out := append([]object.Value{}, elems...)
	var sortErr error
	sort.SliceStable(out, func(i, j int) bool {
		a, aok := numeric(out[i])
		b, bok := numeric(out[j])
		if aok && bok {
			return a < b
		}
		as, aIsStr := out[i].(object.Str)
		bs, bIsStr := out[j].(object.Str)
		if aIsStr && bIsStr {
			return as.Value < bs.Value
		}
		sortErr = typeError("sort", "comparable elements (all numbers or all strings)", out[i])
		return false
	})
	if sortErr != nil {
		return nil, sortErr
	}
	return sameKindOf(args[0], out), nil
}

func rangeFn(args []object.Value, env *object.Environment) (object.Value, error) {
	var start, end, step int64 = 0, 0, 1
	switch len(args) {
	case 1:
		n, ok := args[0].(object.Int)
		if !ok {
			return nil, typeError("range", "integers", args[0])
		}
		end = n.Value
	case 2:
		s, ok1 := args[0].(object.Int)
		e, ok2 := args[1].(object.Int)
		if !ok1 || !ok2 {
			return nil, typeError("range", "integers", args[0])
		}
		start, end = s.Value, e.Value
	case 3:
		s, ok1 := args[0].(object.Int)
		e, ok2 := args[1].(object.Int)
		st, ok3 := args[2].(object.Int)
		if !ok1 || !ok2 || !ok3 {
			return nil, typeError("range", "integers", args[0])
		}
		start, end, step = s.Value, e.Value, st.Value
	default:
		return nil, arityError("range", "1, 2, or 3", len(args))
	}
	if step == 0 {
		return nil, lisperr.New(lisperr.Evaluation, "range: step cannot be zero")
	}
	var out []object.Value
	if step > 0 {
		for i := start; i < end; i += step {
			out = append(out, object.Int{Value: i})
		}
	} else {
		for i := start; i > end; i += step {
			out = append(out, object.Int{Value: i})
		}
	}
	return object.NewVector(out...), nil
}

func everyFn(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 2 {
		return nil, arityError("every?", "2", len(args))
	}
	elems, ok := elementsOf(args[1])
	if !ok {
		return nil, typeError("every?", "a list or vector", args[1])
	}
	for _, el := range elems {
		v, err := evaluator.Apply(args[0], []object.Value{el}, env)
		if err != nil {
			return nil, err
		}
		if !object.Truthy(v) {
			return object.False, nil
		}
	}
	return object.True, nil
}

func someFn(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 2 {
		return nil, arityError("some", "2", len(args))
	}
	elems, ok := elementsOf(args[1])
	if !ok {
		return nil, typeError("some", "a list or vector", args[1])
	}
	for _, el := range elems {
		v, err := evaluator.Apply(args[0], []object.Value{el}, env)
		if err != nil {
			return nil, err
		}
		if object.Truthy(v) {
			return v, nil
		}
	}
	return object.NilValue, nil
}
