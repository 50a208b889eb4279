package builtins

import (
	"strings"

	"lispy/object"
)

func init() {
	register("str", strFn)
	register("str-concat", strConcat)
	register("split", split)
	register("join", join)
	register("upper", upper)
	register("lower", lower)
	register("trim", trim)
	register("str-contains?", strContains)
}

// strFn concatenates the printed form of every argument, dropping quoting
// for strings — the same convention `(str 1 " " "two")` → `"1 two"` uses in
// Clojure-flavored dialects.
func strFn(args []object.Value, env *object.Environment) (object.Value, error) {
	var b strings.Builder
	for _, a := range args {
		if s, ok := a.(object.Str); ok {
			b.WriteString(s.Value)
			continue
		}
		b.WriteString(a.String())
	}
	return object.Str{Value: b.String()}, nil
}

func strConcat(args []object.Value, env *object.Environment) (object.Value, error) {
	var b strings.Builder
	for _, a := range args {
		s, ok := a.(object.Str)
		if !ok {
			return nil, typeError("str-concat", "strings", a)
		}
		b.WriteString(s.Value)
	}
	return object.Str{Value: b.String()}, nil
}

func split(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 2 {
		return nil, arityError("split", "2", len(args))
	}
	s, ok1 := args[0].(object.Str)
	sep, ok2 := args[1].(object.Str)
	if !ok1 || !ok2 {
		return nil, typeError("split", "two strings", args[0])
	}
	parts := strings.Split(s.Value, sep.Value)
	out := make([]object.Value, len(parts))
	for i, p := range parts {
		out[i] = object.Str{Value: p}
	}
	return object.NewVector(out...), nil
}

func join(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 2 {
		return nil, arityError("join", "2", len(args))
	}
	elems, ok := elementsOf(args[0])
	if !ok {
		return nil, typeError("join", "a list or vector", args[0])
	}
	sep, ok := args[1].(object.Str)
	if !ok {
		return nil, typeError("join", "a string separator", args[1])
	}
	parts := make([]string, len(elems))
	for i, e := range elems {
		if s, ok := e.(object.Str); ok {
			parts[i] = s.Value
			continue
		}
		parts[i] = e.String()
	}
	return object.Str{Value: strings.Join(parts, sep.Value)}, nil
}

func upper(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 1 {
		return nil, arityError("upper", "1", len(args))
	}
	s, ok := args[0].(object.Str)
	if !ok {
		return nil, typeError("upper", "a string", args[0])
	}
	return object.Str{Value: strings.ToUpper(s.Value)}, nil
}

func lower(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 1 {
		return nil, arityError("lower", "1", len(args))
	}
	s, ok := args[0].(object.Str)
	if !ok {
		return nil, typeError("lower", "a string", args[0])
	}
	return object.Str{Value: strings.ToLower(s.Value)}, nil
}

func trim(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 1 {
		return nil, arityError("trim", "1", len(args))
	}
	s, ok := args[0].(object.Str)
	if !ok {
		return nil, typeError("trim", "a string", args[0])
	}
	return object.Str{Value: strings.TrimSpace(s.Value)}, nil
}

func strContains(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 2 {
		return nil, arityError("str-contains?", "2", len(args))
	}
	s, ok1 := args[0].(object.Str)
	sub, ok2 := args[1].(object.Str)
	if !ok1 || !ok2 {
		return nil, typeError("str-contains?", "two strings", args[0])
	}
	return object.NativeBool(strings.Contains(s.Value, sub.Value)), nil
}
