package promise

import (
	"lispy/evaluator"
	"lispy/object"
)

// Then implements `then`: on resolve, calls callback(value); if the result
// is itself a promise, the returned promise adopts its state (one-level
// flattening); on reject, passes the rejection through.
func Then(p *object.Promise, callback object.Value, env *object.Environment) *object.Promise {
	result := object.NewPromise()
	p.OnSettle(func(v object.Value, err error) {
		if err != nil {
			result.Reject(err)
			return
		}
		cbResult, cbErr := evaluator.Apply(callback, []object.Value{v}, env)
		if cbErr != nil {
			result.Reject(cbErr)
			return
		}
		if inner, ok := cbResult.(*object.Promise); ok {
			inner.OnSettle(func(iv object.Value, ierr error) {
				if ierr != nil {
					result.Reject(ierr)
					return
				}
				result.Resolve(iv)
			})
			return
		}
		result.Resolve(cbResult)
	})
	return result
}

// OnReject implements `on-reject`: on reject, calls callback(error) and
// resolves with its return value; on resolve, passes through.
func OnReject(p *object.Promise, callback object.Value, env *object.Environment) *object.Promise {
	result := object.NewPromise()
	p.OnSettle(func(v object.Value, err error) {
		if err == nil {
			result.Resolve(v)
			return
		}
		cbResult, cbErr := evaluator.Apply(callback, []object.Value{errValueOf(err)}, env)
		if cbErr != nil {
			result.Reject(cbErr)
			return
		}
		result.Resolve(cbResult)
	})
	return result
}

// OnComplete implements `on-complete`: runs callback(p) for side effects on
// any terminal state, preserving the original state unless the callback
// itself errors, in which case the returned promise rejects with that error.
func OnComplete(p *object.Promise, callback object.Value, env *object.Environment) *object.Promise {
	result := object.NewPromise()
	p.OnSettle(func(v object.Value, err error) {
		if _, cbErr := evaluator.Apply(callback, []object.Value{p}, env); cbErr != nil {
			result.Reject(cbErr)
			return
		}
		if err != nil {
			result.Reject(err)
			return
		}
		result.Resolve(v)
	})
	return result
}
