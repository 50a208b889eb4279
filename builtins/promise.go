// The async/promise builtins. Every
// function here is a thin adapter: it validates and unwraps LisPy
// arguments, delegates to the lispy/promise package (scheduling,
// combinators, control flow), and returns the result as a LisPy value: an
// *object.Promise, or for debounce/throttle an *object.Builtin wrapper. The heavy lifting already lives in lispy/promise;
// this file exists only because builtins.Registry is where the evaluator
// looks up LisPy-callable names.
package builtins

import (
	"lispy/lisperr"
	"lispy/object"
	"lispy/promise"
)

func init() {
	register("promise", promiseFn)
	register("resolve", resolveFn)
	register("reject", rejectFn)
	register("then", thenFn)
	register("on-reject", onRejectFn)
	register("on-complete", onCompleteFn)
	register("promise-all", promiseAll)
	register("promise-race", promiseRace)
	register("promise-any", promiseAny)
	register("promise-all-settled", promiseAllSettled)
	register("timeout", timeoutFn)
	register("with-timeout", withTimeoutFn)
	register("retry", retryFn)
	register("debounce", debounceFn)
	register("throttle", throttleFn)
	register("async-map", asyncMapFn)
	register("async-filter", asyncFilterFn)
	register("async-reduce", asyncReduceFn)
}

func promiseFn(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 1 {
		return nil, arityError("promise", "1", len(args))
	}
	if !callable(args[0]) {
		return nil, typeError("promise", "a zero-argument function", args[0])
	}
	return promise.PromiseOf(args[0], env), nil
}

func resolveFn(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 1 {
		return nil, arityError("resolve", "1", len(args))
	}
	p := object.NewPromise()
	p.Resolve(args[0])
	return p, nil
}

func rejectFn(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 1 {
		return nil, arityError("reject", "1", len(args))
	}
	p := object.NewPromise()
	p.Reject(lisperr.Throw(args[0]))
	return p, nil
}

func thenFn(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 2 {
		return nil, arityError("then", "2", len(args))
	}
	p, ok := args[0].(*object.Promise)
	if !ok {
		return nil, typeError("then", "a promise", args[0])
	}
	return promise.Then(p, args[1], env), nil
}

func onRejectFn(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 2 {
		return nil, arityError("on-reject", "2", len(args))
	}
	p, ok := args[0].(*object.Promise)
	if !ok {
		return nil, typeError("on-reject", "a promise", args[0])
	}
	return promise.OnReject(p, args[1], env), nil
}

func onCompleteFn(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 2 {
		return nil, arityError("on-complete", "2", len(args))
	}
	p, ok := args[0].(*object.Promise)
	if !ok {
		return nil, typeError("on-complete", "a promise", args[0])
	}
	return promise.OnComplete(p, args[1], env), nil
}

func promiseAll(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 1 {
		return nil, arityError("promise-all", "1", len(args))
	}
	return promise.All(args[0])
}

func promiseRace(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 1 {
		return nil, arityError("promise-race", "1", len(args))
	}
	return promise.Race(args[0])
}

func promiseAny(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 1 {
		return nil, arityError("promise-any", "1", len(args))
	}
	return promise.Any(args[0])
}

func promiseAllSettled(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 1 {
		return nil, arityError("promise-all-settled", "1", len(args))
	}
	return promise.AllSettled(args[0])
}

func timeoutFn(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 2 {
		return nil, arityError("timeout", "2", len(args))
	}
	ms, ok := args[1].(object.Int)
	if !ok {
		return nil, typeError("timeout", "a millisecond count", args[1])
	}
	return promise.Timeout(ms.Value, args[0]), nil
}

func withTimeoutFn(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 3 {
		return nil, arityError("with-timeout", "3", len(args))
	}
	p, ok := args[0].(*object.Promise)
	if !ok {
		return nil, typeError("with-timeout", "a promise", args[0])
	}
	ms, ok := args[2].(object.Int)
	if !ok {
		return nil, typeError("with-timeout", "a millisecond count", args[2])
	}
	return promise.WithTimeout(p, args[1], ms.Value), nil
}

func retryFn(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 3 {
		return nil, arityError("retry", "3", len(args))
	}
	if !callable(args[0]) {
		return nil, typeError("retry", "a function", args[0])
	}
	maxAttempts, ok := args[1].(object.Int)
	if !ok {
		return nil, typeError("retry", "a max-attempts count", args[1])
	}
	delayMs, ok := args[2].(object.Int)
	if !ok {
		return nil, typeError("retry", "a base delay in milliseconds", args[2])
	}
	return promise.Retry(args[0], int(maxAttempts.Value), delayMs.Value, env), nil
}

func debounceFn(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 2 {
		return nil, arityError("debounce", "2", len(args))
	}
	if !callable(args[0]) {
		return nil, typeError("debounce", "a function", args[0])
	}
	ms, ok := args[1].(object.Int)
	if !ok {
		return nil, typeError("debounce", "a millisecond count", args[1])
	}
	return promise.Debounce(args[0], ms.Value, env), nil
}

func throttleFn(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 2 {
		return nil, arityError("throttle", "2", len(args))
	}
	if !callable(args[0]) {
		return nil, typeError("throttle", "a function", args[0])
	}
	ms, ok := args[1].(object.Int)
	if !ok {
		return nil, typeError("throttle", "a millisecond count", args[1])
	}
	return promise.Throttle(args[0], ms.Value, env), nil
}

func asyncMapFn(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 2 {
		return nil, arityError("async-map", "2", len(args))
	}
	if !callable(args[1]) {
		return nil, typeError("async-map", "a function", args[1])
	}
	return promise.AsyncMap(args[0], args[1], env)
}

func asyncFilterFn(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 2 {
		return nil, arityError("async-filter", "2", len(args))
	}
	if !callable(args[1]) {
		return nil, typeError("async-filter", "a function", args[1])
	}
	return promise.AsyncFilter(args[0], args[1], env)
}

func asyncReduceFn(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 3 {
		return nil, arityError("async-reduce", "3", len(args))
	}
	if !callable(args[1]) {
		return nil, typeError("async-reduce", "a function", args[1])
	}
	return promise.AsyncReduce(args[0], args[1], args[2], env)
}

func callable(v object.Value) bool {
	switch v.(type) {
	case *object.Function, *object.Builtin:
		return true
	default:
		return false
	}
}
