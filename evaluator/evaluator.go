// ==============================================================================================
// FILE: evaluator/evaluator.go
// ==============================================================================================
// PACKAGE: evaluator
// PURPOSE: The tree-walking engine: special-form dispatch,
//          function application, and the recur trampoline. Eval and Apply
//          are the two re-entry points builtins and the promise/module
//          packages call back into.
// ==============================================================================================
package evaluator

import (
	"lispy/lisperr"
	"lispy/object"
)

// MaxRecursionDepth bounds ordinary (non-tail) function application.
// `recur` is exempt: it is trampolined by applyFunction's loop
// instead of consuming Go call stack, so it never touches this counter.
const MaxRecursionDepth = 100

// Scheduler runs async work (a `promise` builtin call, a defn-async body).
// It defaults to an unbounded goroutine-per-task, and is overridden by the
// promise package with an ants.Pool-backed submission so the two don't
// fight over worker accounting — evaluator cannot import promise directly
// (promise must import evaluator to apply LisPy function values), so this
// package-level seam is the injection point.
var Scheduler func(func()) = func(fn func()) { go fn() }

// Eval evaluates expr in env.
func Eval(expr object.Value, env *object.Environment) (object.Value, error) {
	return evalD(expr, env, 0)
}

// Apply invokes callee with args, re-entering the same application logic
// Eval uses for a function-call-position list. Builtins use this to call
// back into user-defined LisPy functions (map, filter, reduce, promise
// combinators, ...).
func Apply(callee object.Value, args []object.Value, env *object.Environment) (object.Value, error) {
	return applyD(callee, args, env, 0)
}

func evalD(expr object.Value, env *object.Environment, depth int) (object.Value, error) {
	switch val := expr.(type) {
	case object.Int, object.Float, object.Str, object.Bool, object.Nil,
		*object.Function, *object.Builtin, *object.Vector, *object.Promise:
		// Self-evaluating.
		return expr, nil

	case object.Symbol:
		if v, ok := env.Get(val.Name); ok {
			return v, nil
		}
		return nil, lisperr.New(lisperr.UnboundSymbol, "unbound symbol: %s", val.Name)

	case *object.Map:
		return evalMap(val, env, depth)

	case *object.List:
		return evalList(val, env, depth)

	default:
		return nil, lisperr.New(lisperr.Evaluation, "cannot evaluate value of type %s", expr.Type())
	}
}

// evalMap implements cases 2 and 3: a literal map whose values
// contain no symbol or list is already fully evaluated and is returned with
// its Literal tag cleared; otherwise every value is (re-)evaluated into a
// fresh, non-literal map.
func evalMap(m *object.Map, env *object.Environment, depth int) (object.Value, error) {
	if !m.Literal {
		return m, nil
	}
	if !mapNeedsEval(m) {
		m.Literal = false
		return m, nil
	}
	out := object.NewMap()
	for _, pair := range m.Pairs {
		v, err := evalD(pair.Value, env, depth)
		if err != nil {
			return nil, err
		}
		if err := out.Set(pair.Key, v); err != nil {
			return nil, lisperr.Wrap(lisperr.Evaluation, err, "key", pair.Key.String())
		}
	}
	return out, nil
}

func mapNeedsEval(m *object.Map) bool {
	for _, pair := range m.Pairs {
		if needsEval(pair.Value) {
			return true
		}
	}
	return false
}

func needsEval(v object.Value) bool {
	switch val := v.(type) {
	case object.Symbol, *object.List:
		return true
	case *object.Vector:
		for _, el := range val.Elements {
			if needsEval(el) {
				return true
			}
		}
		return false
	case *object.Map:
		for _, pair := range val.Pairs {
			if needsEval(pair.Value) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// evalList implements case 6: special-form dispatch, falling
// back to the uniform call convention.
func evalList(list *object.List, env *object.Environment, depth int) (object.Value, error) {
	if len(list.Elements) == 0 {
		return nil, lisperr.New(lisperr.Evaluation, "() is not a valid expression")
	}
	head := list.Elements[0]
	rest := list.Elements[1:]

	if sym, ok := head.(object.Symbol); ok {
		if handler, ok := specialForms[sym.Name]; ok {
			return handler(rest, env, depth)
		}
	}

	callee, err := evalD(head, env, depth)
	if err != nil {
		return nil, err
	}
	args := make([]object.Value, len(rest))
	for i, e := range rest {
		a, err := evalD(e, env, depth)
		if err != nil {
			return nil, err
		}
		args[i] = a
	}
	return applyD(callee, args, env, depth)
}

// applyD implements "Application".
func applyD(callee object.Value, args []object.Value, env *object.Environment, depth int) (object.Value, error) {
	switch c := callee.(type) {
	case *object.Builtin:
		return c.Fn(args, env)
	case *object.Function:
		if c.Async {
			return beginAsyncCall(c, args)
		}
		if depth >= MaxRecursionDepth {
			return nil, lisperr.New(lisperr.Recursion,
				"max recursion depth (%d) exceeded; use recur for tail calls", MaxRecursionDepth)
		}
		return applyFunction(c, args, depth+1)
	default:
		return nil, lisperr.New(lisperr.Evaluation, "value of type %s is not callable", callee.Type())
	}
}

// applyFunction is the trampoline: each iteration binds
// parameters fresh in a child of the function's defining environment and
// evaluates the body; a TailCall result rebinds and loops instead of
// recursing, so `recur` is bounded by heap, not stack.
func applyFunction(fn *object.Function, args []object.Value, depth int) (object.Value, error) {
	currentArgs := args
	for {
		if len(fn.Params) != len(currentArgs) {
			return nil, lisperr.New(lisperr.Arity, "%s expects %d argument(s), got %d",
				fnLabel(fn), len(fn.Params), len(currentArgs))
		}
		callEnv := object.WithRecurTarget(fn.Env, fn)
		for i, p := range fn.Params {
			callEnv.Set(p.Name, currentArgs[i])
		}
		result, err := evalBody(fn.Body, callEnv, depth)
		if err != nil {
			return nil, err
		}
		if tc, ok := result.(*object.TailCall); ok {
			currentArgs = tc.Args
			continue
		}
		return result, nil
	}
}

func fnLabel(fn *object.Function) string {
	if fn.Name != "" {
		return fn.Name
	}
	return "anonymous function"
}

// beginAsyncCall implements defn-async application: calling
// such a function constructs a Promise immediately and runs the body on the
// Scheduler, resolving or rejecting the promise with the outcome.
func beginAsyncCall(fn *object.Function, args []object.Value) (object.Value, error) {
	if len(fn.Params) != len(args) {
		return nil, lisperr.New(lisperr.Arity, "%s expects %d argument(s), got %d",
			fnLabel(fn), len(fn.Params), len(args))
	}
	p := object.NewPromise()
	Scheduler(func() {
		callEnv := object.WithRecurTarget(fn.Env, fn)
		for i, param := range fn.Params {
			callEnv.Set(param.Name, args[i])
		}
		result, err := evalBody(fn.Body, callEnv, 0)
		if err != nil {
			p.Reject(err)
			return
		}
		p.Resolve(result)
	})
	return p, nil
}

// evalBody evaluates a sequence of body expressions, returning the value of
// the last one (Nil for an empty body).
func evalBody(exprs []object.Value, env *object.Environment, depth int) (object.Value, error) {
	var result object.Value = object.NilValue
	for _, e := range exprs {
		v, err := evalD(e, env, depth)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}
