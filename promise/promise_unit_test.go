package promise

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lispy/lisperr"
	"lispy/object"
)

func resolved(v object.Value) *object.Promise {
	p := object.NewPromise()
	p.Resolve(v)
	return p
}

func rejected(err error) *object.Promise {
	p := object.NewPromise()
	p.Reject(err)
	return p
}

func TestAllPreservesPositionalOrder(t *testing.T) {
	coll := object.NewVector(resolved(object.Int{Value: 1}), resolved(object.Int{Value: 2}), resolved(object.Int{Value: 3}))
	result, err := All(coll)
	require.NoError(t, err)
	v, err := result.Await()
	require.NoError(t, err)
	vec := v.(*object.Vector)
	require.Len(t, vec.Elements, 3)
	assert.Equal(t, int64(1), vec.Elements[0].(object.Int).Value)
	assert.Equal(t, int64(2), vec.Elements[1].(object.Int).Value)
	assert.Equal(t, int64(3), vec.Elements[2].(object.Int).Value)
}

func TestAllRejectsOnFirstFailure(t *testing.T) {
	coll := object.NewVector(resolved(object.Int{Value: 1}), rejected(lisperr.New(lisperr.Evaluation, "boom")))
	result, err := All(coll)
	require.NoError(t, err)
	_, err = result.Await()
	assert.Error(t, err)
}

func TestAllSettledNeverRejects(t *testing.T) {
	coll := object.NewVector(resolved(object.Int{Value: 1}), rejected(lisperr.New(lisperr.Evaluation, "boom")))
	result, err := AllSettled(coll)
	require.NoError(t, err)
	v, err := result.Await()
	require.NoError(t, err, "promise-all-settled must never reject")
	vec := v.(*object.Vector)
	require.Len(t, vec.Elements, 2)
}

func TestAnyResolvesWithFirstSuccess(t *testing.T) {
	coll := object.NewVector(rejected(lisperr.New(lisperr.Evaluation, "boom")), resolved(object.Int{Value: 42}))
	result, err := Any(coll)
	require.NoError(t, err)
	v, err := result.Await()
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.(object.Int).Value)
}

func TestRaceSettlesWithFirstSettled(t *testing.T) {
	slow := object.NewPromise()
	time.AfterFunc(20*time.Millisecond, func() { slow.Resolve(object.Int{Value: 99}) })
	coll := object.NewVector(slow, resolved(object.Int{Value: 1}))
	result, err := Race(coll)
	require.NoError(t, err)
	v, err := result.Await()
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.(object.Int).Value)
}

func TestTimeoutResolvesAfterDelay(t *testing.T) {
	p := Timeout(5, object.Str{Value: "done"})
	v, err := p.Await()
	require.NoError(t, err)
	assert.Equal(t, "done", v.(object.Str).Value)
}

func TestWithTimeoutFallsBackWhenSlow(t *testing.T) {
	slow := object.NewPromise()
	time.AfterFunc(50*time.Millisecond, func() { slow.Resolve(object.Str{Value: "too-late"}) })
	p := WithTimeout(slow, object.Str{Value: "fallback"}, 5)
	v, err := p.Await()
	require.NoError(t, err)
	assert.Equal(t, "fallback", v.(object.Str).Value)
}

func TestDebounceCollapsesBurstsIntoOneCall(t *testing.T) {
	calls := 0
	var mu = make(chan struct{}, 1)
	fn := &object.Builtin{Name: "count", Fn: func(args []object.Value, env *object.Environment) (object.Value, error) {
		calls++
		mu <- struct{}{}
		return object.NilValue, nil
	}}
	debounced := Debounce(fn, 10, object.NewEnvironment())
	for i := 0; i < 5; i++ {
		_, _ = debounced.Fn(nil, nil)
		time.Sleep(2 * time.Millisecond)
	}
	select {
	case <-mu:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("debounced function never fired")
	}
	assert.Equal(t, 1, calls)
}
