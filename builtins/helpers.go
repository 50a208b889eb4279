package builtins

import (
	"lispy/lisperr"
	"lispy/object"
)

func arityError(name string, want string, got int) error {
	return lisperr.New(lisperr.Arity, "%s expects %s argument(s), got %d", name, want, got)
}

func typeError(name string, want string, got object.Value) error {
	return lisperr.New(lisperr.TypeMismatch, "%s expects %s, got %s", name, want, got.Type())
}

// numeric reads an Int or Float as a float64, reporting whether v was
// numeric at all.
func numeric(v object.Value) (float64, bool) {
	switch n := v.(type) {
	case object.Int:
		return float64(n.Value), true
	case object.Float:
		return n.Value, true
	}
	return 0, false
}

// allInt reports whether every value is an Int, letting arithmetic builtins
// stay in Int until a Float operand forces promotion.
func allInt(args []object.Value) bool {
	for _, a := range args {
		if _, ok := a.(object.Int); !ok {
			return false
		}
	}
	return true
}

func elementsOf(v object.Value) ([]object.Value, bool) {
	switch c := v.(type) {
	case *object.List:
		return c.Elements, true
	case *object.Vector:
		return c.Elements, true
	default:
		return nil, false
	}
}

// sameKindOf rebuilds a collection of the same kind (List vs Vector) as
// template, with new elements — used by builtins that transform a
// collection but must preserve its container kind.
func sameKindOf(template object.Value, elements []object.Value) object.Value {
	if _, ok := template.(*object.List); ok {
		return object.NewList(elements...)
	}
	return object.NewVector(elements...)
}
