// ==============================================================================================
// PACKAGE: promise
// PURPOSE: Backs the `promise`/`async`/`defn-async` machinery with an ants worker pool (unbounded by default;
//          WithPoolSize sets a capacity) instead of a bare goroutine per promise, grounded on Tangerg-lynx/future/pool.go's PoolOfAnts
//          adapter. object.Promise (the state machine) lives in package
//          object so the evaluator can self-evaluate a Promise value
//          without importing this package; this package supplies the
//          scheduling and the combinators on top of it.
// ==============================================================================================
package promise

import (
	"log/slog"

	"github.com/panjf2000/ants/v2"

	"lispy/evaluator"
	"lispy/object"
)

// Runtime owns the worker pool that executes promise bodies.
type Runtime struct {
	pool   *ants.Pool
	logger *slog.Logger
	size   int
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger overrides the runtime's slog.Logger (default slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) { r.logger = logger }
}

// WithPoolSize sets the worker pool's capacity. n <= 0 means unbounded,
// matching ants' own convention.
func WithPoolSize(n int) Option {
	return func(r *Runtime) { r.size = n }
}

// NewRuntime builds a Runtime, creating its ants.Pool.
func NewRuntime(opts ...Option) (*Runtime, error) {
	r := &Runtime{logger: slog.Default(), size: -1}
	for _, opt := range opts {
		opt(r)
	}
	pool, err := ants.NewPool(r.size, ants.WithNonblocking(false))
	if err != nil {
		return nil, err
	}
	r.pool = pool
	return r, nil
}

// Go submits fn to the pool, falling back to an unbounded goroutine (and a
// warning log) if the pool itself is saturated and rejects submission —
// requires promise(fn) to schedule fn, not silently drop it.
func (r *Runtime) Go(fn func()) {
	if err := r.pool.Submit(fn); err != nil {
		r.logger.Warn("promise pool submit failed, falling back to a bare goroutine", "error", err)
		go fn()
	}
}

// Release shuts the pool down, waiting for running tasks to finish.
func (r *Runtime) Release() {
	r.pool.Release()
}

// Default is the process-wide runtime backing the `promise`/defn-async
// builtins and evaluator.Scheduler (see evaluator.Scheduler's doc comment
// for why this indirection exists instead of a direct import).
var Default *Runtime

func init() {
	rt, err := NewRuntime()
	if err != nil {
		// ants.NewPool only fails on invalid options; none are used here.
		panic(err)
	}
	Default = rt
	evaluator.Scheduler = Default.Go
}

// PromiseOf runs fn (a zero-argument LisPy callable) on the Default runtime
// and returns a promise that settles with its outcome — the `promise(fn)`
// builtin schedules fn() on a background worker rather than running it
// inline.
func PromiseOf(fn object.Value, env *object.Environment) *object.Promise {
	p := object.NewPromise()
	Default.Go(func() {
		result, err := evaluator.Apply(fn, nil, env)
		if err != nil {
			p.Reject(err)
			return
		}
		p.Resolve(result)
	})
	return p
}
