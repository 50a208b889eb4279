package promise

import (
	"golang.org/x/sync/errgroup"

	"lispy/evaluator"
	"lispy/object"
)

// await resolves v if it is itself a promise, otherwise returns it
// unchanged — the "if any application returns a promise" clause shared by
// async-map and async-filter.
func await(v object.Value) (object.Value, error) {
	if p, ok := v.(*object.Promise); ok {
		return p.Await()
	}
	return v, nil
}

// AsyncMap implements async-map: applies f to each element concurrently
// (all started before any awaited), preserving input order, failing fast on
// rejection.
func AsyncMap(coll object.Value, f object.Value, env *object.Environment) (*object.Promise, error) {
	elems, rebuild, err := elementsOf(coll)
	if err != nil {
		return nil, err
	}
	result := object.NewPromise()
	if len(elems) == 0 {
		result.Resolve(rebuild(nil))
		return result, nil
	}
	Default.Go(func() {
		var g errgroup.Group
		values := make([]object.Value, len(elems))
		for i, el := range elems {
			i, el := i, el
			g.Go(func() error {
				v, err := evaluator.Apply(f, []object.Value{el}, env)
				if err == nil {
					v, err = await(v)
				}
				if err != nil {
					result.Reject(err)
					return err
				}
				values[i] = v
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			result.Reject(err)
			return
		}
		result.Resolve(rebuild(values))
	})
	return result, nil
}

// AsyncFilter implements async-filter: same concurrency shape as AsyncMap,
// retaining elements whose awaited predicate result is truthy.
func AsyncFilter(coll object.Value, pred object.Value, env *object.Environment) (*object.Promise, error) {
	elems, rebuild, err := elementsOf(coll)
	if err != nil {
		return nil, err
	}
	result := object.NewPromise()
	if len(elems) == 0 {
		result.Resolve(rebuild(nil))
		return result, nil
	}
	Default.Go(func() {
		var g errgroup.Group
		keep := make([]bool, len(elems))
		for i, el := range elems {
			i, el := i, el
			g.Go(func() error {
				v, err := evaluator.Apply(pred, []object.Value{el}, env)
				if err == nil {
					v, err = await(v)
				}
				if err != nil {
					result.Reject(err)
					return err
				}
				keep[i] = object.Truthy(v)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			result.Reject(err)
			return
		}
		kept := make([]object.Value, 0, len(elems))
		for i, el := range elems {
			if keep[i] {
				kept = append(kept, el)
			}
		}
		result.Resolve(rebuild(kept))
	})
	return result, nil
}

// AsyncReduce implements async-reduce: sequential by contract, since each
// step depends on the prior accumulator.
func AsyncReduce(coll object.Value, reducer object.Value, init object.Value, env *object.Environment) (*object.Promise, error) {
	elems, _, err := elementsOf(coll)
	if err != nil {
		return nil, err
	}
	result := object.NewPromise()
	Default.Go(func() {
		acc := init
		for _, el := range elems {
			v, err := evaluator.Apply(reducer, []object.Value{acc, el}, env)
			if err != nil {
				result.Reject(err)
				return
			}
			v, err = await(v)
			if err != nil {
				result.Reject(err)
				return
			}
			acc = v
		}
		result.Resolve(acc)
	})
	return result, nil
}
