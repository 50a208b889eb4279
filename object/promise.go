package object

import (
	"fmt"
	"sync"
)

// PromiseState is one of a promise's three lifecycle states.
type PromiseState string

const (
	Pending  PromiseState = "pending"
	Resolved PromiseState = "resolved"
	Rejected PromiseState = "rejected"
)

// Promise is a single-assignment container for an eventual value or error.
// State transitions are serialized under mu; done is closed
// exactly once, on the transition out of Pending, so Await can block on it
// without polling.
//
// The worker pool that actually runs promise-producing work (the `promise`
// builtin, defn-async bodies) lives outside this package — Promise itself
// only implements the state machine and notification, so object has no
// dependency on any scheduling library.
type Promise struct {
	mu        sync.Mutex
	state     PromiseState
	value     Value
	err       error
	done      chan struct{}
	callbacks []func(Value, error)
}

// NewPromise returns a Pending promise.
func NewPromise() *Promise {
	return &Promise{state: Pending, done: make(chan struct{})}
}

func (p *Promise) Type() Type { return PromiseType }

func (p *Promise) String() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fmt.Sprintf("#<promise %s>", p.state)
}

// State reports the promise's current state.
func (p *Promise) State() PromiseState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Resolve transitions Pending -> Resolved with v, running any registered
// callbacks in registration order. Reports false if already settled.
func (p *Promise) Resolve(v Value) bool {
	return p.settle(Resolved, v, nil)
}

// Reject transitions Pending -> Rejected with err. Reports false if already
// settled.
func (p *Promise) Reject(err error) bool {
	return p.settle(Rejected, nil, err)
}

func (p *Promise) settle(state PromiseState, v Value, err error) bool {
	p.mu.Lock()
	if p.state != Pending {
		p.mu.Unlock()
		return false
	}
	p.state, p.value, p.err = state, v, err
	cbs := p.callbacks
	p.callbacks = nil
	p.mu.Unlock()
	close(p.done)
	for _, cb := range cbs {
		cb(v, err)
	}
	return true
}

// OnSettle registers cb to run when the promise settles, in the order
// registered. If the promise has already settled, cb runs
// immediately with the terminal value/error.
func (p *Promise) OnSettle(cb func(Value, error)) {
	p.mu.Lock()
	if p.state == Pending {
		p.callbacks = append(p.callbacks, cb)
		p.mu.Unlock()
		return
	}
	v, err := p.value, p.err
	p.mu.Unlock()
	cb(v, err)
}

// Await blocks until the promise settles and returns its terminal value or
// error, the synchronous counterpart to OnSettle used by `await`/`async`
// and the promise combinators.
func (p *Promise) Await() (Value, error) {
	<-p.done
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value, p.err
}
