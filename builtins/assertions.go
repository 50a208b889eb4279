// Assertion builtins, grounded on the original Python implementation's
// lispy/functions/bdd_assertions/ family (assert_equal_fn.py,
// assert_true_q_fn.py, assert_false_q_fn.py, assert_nil_q_fn.py — see
// original_source/_INDEX.md). Unlike ordinary predicates, these raise
// AssertionFailure rather than returning a boolean, and that error kind is
// never caught by try/catch.
package builtins

import (
	"lispy/lisperr"
	"lispy/object"
)

func init() {
	register("assert-equal?", assertEqual)
	register("assert-true?", assertTrue)
	register("assert-false?", assertFalse)
	register("assert-nil?", assertNil)
}

func assertEqual(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 2 {
		return nil, arityError("assert-equal?", "2", len(args))
	}
	if !object.Equal(args[0], args[1]) {
		return nil, lisperr.New(lisperr.Assertion, "expected %s to equal %s", args[0].String(), args[1].String())
	}
	return object.True, nil
}

func assertTrue(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 1 {
		return nil, arityError("assert-true?", "1", len(args))
	}
	if b, ok := args[0].(object.Bool); !ok || !b.Value {
		return nil, lisperr.New(lisperr.Assertion, "expected true, got %s", args[0].String())
	}
	return object.True, nil
}

func assertFalse(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 1 {
		return nil, arityError("assert-false?", "1", len(args))
	}
	if b, ok := args[0].(object.Bool); !ok || b.Value {
		return nil, lisperr.New(lisperr.Assertion, "expected false, got %s", args[0].String())
	}
	return object.True, nil
}

func assertNil(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 1 {
		return nil, arityError("assert-nil?", "1", len(args))
	}
	if _, ok := args[0].(object.Nil); !ok {
		return nil, lisperr.New(lisperr.Assertion, "expected nil, got %s", args[0].String())
	}
	return object.True, nil
}
