package promise

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"lispy/lisperr"
	"lispy/object"
)

// elementsOf extracts the elements of a List or Vector along with a
// constructor that rebuilds the same container kind, so combinators
// preserve "same container kind as input".
func elementsOf(coll object.Value) ([]object.Value, func([]object.Value) object.Value, error) {
	switch c := coll.(type) {
	case *object.List:
		return c.Elements, func(vs []object.Value) object.Value { return object.NewList(vs...) }, nil
	case *object.Vector:
		return c.Elements, func(vs []object.Value) object.Value { return object.NewVector(vs...) }, nil
	default:
		return nil, nil, lisperr.New(lisperr.TypeMismatch, "expected a list or vector, got %s", coll.Type())
	}
}

func asPromise(v object.Value) (*object.Promise, error) {
	p, ok := v.(*object.Promise)
	if !ok {
		return nil, lisperr.New(lisperr.TypeMismatch, "expected a promise, got %s", v.Type())
	}
	return p, nil
}

// errValueOf recovers the original thrown payload for a rejection, falling
// back to the error's message as a Str for any other error kind.
func errValueOf(err error) object.Value {
	if payload, ok := lisperr.AsThrown(err); ok {
		if v, ok := payload.(object.Value); ok {
			return v
		}
	}
	return object.Str{Value: err.Error()}
}

// All implements promise-all: waits for every promise, resolving with their
// values in input order, or rejecting fast with the first rejection
// encountered.
func All(coll object.Value) (*object.Promise, error) {
	elems, rebuild, err := elementsOf(coll)
	if err != nil {
		return nil, err
	}
	result := object.NewPromise()
	if len(elems) == 0 {
		result.Resolve(rebuild(nil))
		return result, nil
	}
	promises := make([]*object.Promise, len(elems))
	for i, e := range elems {
		p, err := asPromise(e)
		if err != nil {
			return nil, err
		}
		promises[i] = p
	}
	Default.Go(func() {
		var g errgroup.Group
		values := make([]object.Value, len(promises))
		for i, p := range promises {
			i, p := i, p
			g.Go(func() error {
				v, err := p.Await()
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

// Race implements promise-race: settles as the first input promise to
// settle. Empty input never settles.
func Race(coll object.Value) (*object.Promise, error) {
	elems, _, err := elementsOf(coll)
	if err != nil {
		return nil, err
	}
	result := object.NewPromise()
	for _, e := range elems {
		p, err := asPromise(e)
		if err != nil {
			return nil, err
		}
		p.OnSettle(func(v object.Value, err error) {
			if err != nil {
				result.Reject(err)
				return
			}
			result.Resolve(v)
		})
	}
	return result, nil
}

// Any implements promise-any: resolves with the first resolution; if every
// input rejects, rejects with an aggregate citing the per-position reasons
// in input order. Empty input rejects immediately.
func Any(coll object.Value) (*object.Promise, error) {
	elems, _, err := elementsOf(coll)
	if err != nil {
		return nil, err
	}
	result := object.NewPromise()
	if len(elems) == 0 {
		result.Reject(lisperr.New(lisperr.Evaluation, "promise-any: empty input"))
		return result, nil
	}
	promises := make([]*object.Promise, len(elems))
	for i, e := range elems {
		p, err := asPromise(e)
		if err != nil {
			return nil, err
		}
		promises[i] = p
	}
	reasons := make([]error, len(promises))
	var mu sync.Mutex
	remaining := len(promises)
	for i, p := range promises {
		i := i
		p.OnSettle(func(v object.Value, err error) {
			if err == nil {
				result.Resolve(v)
				return
			}
			mu.Lock()
			reasons[i] = err
			remaining--
			done := remaining == 0
			mu.Unlock()
			if done {
				result.Reject(lisperr.New(lisperr.Evaluation, "promise-any: all promises rejected: %v", reasons))
			}
		})
	}
	return result, nil
}

// AllSettled implements promise-all-settled: never rejects, resolving with
// a per-element {:status :value/:reason} map preserving order and
// container kind.
func AllSettled(coll object.Value) (*object.Promise, error) {
	elems, rebuild, err := elementsOf(coll)
	if err != nil {
		return nil, err
	}
	result := object.NewPromise()
	if len(elems) == 0 {
		result.Resolve(rebuild(nil))
		return result, nil
	}
	promises := make([]*object.Promise, len(elems))
	for i, e := range elems {
		p, err := asPromise(e)
		if err != nil {
			return nil, err
		}
		promises[i] = p
	}
	Default.Go(func() {
		statuses := make([]object.Value, len(promises))
		var wg sync.WaitGroup
		wg.Add(len(promises))
		for i, p := range promises {
			i, p := i, p
			go func() {
				defer wg.Done()
				v, err := p.Await()
				m := object.NewMap()
				if err != nil {
					_ = m.Set(object.Symbol{Name: ":status"}, object.Str{Value: "rejected"})
					_ = m.Set(object.Symbol{Name: ":reason"}, errValueOf(err))
				} else {
					_ = m.Set(object.Symbol{Name: ":status"}, object.Str{Value: "fulfilled"})
					_ = m.Set(object.Symbol{Name: ":value"}, v)
				}
				statuses[i] = m
			}()
		}
		wg.Wait()
		result.Resolve(rebuild(statuses))
	})
	return result, nil
}
