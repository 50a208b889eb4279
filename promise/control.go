package promise

import (
	"context"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"lispy/evaluator"
	"lispy/lisperr"
	"lispy/object"
)

// Timeout implements `timeout`: resolves with value after ms milliseconds.
func Timeout(ms int64, value object.Value) *object.Promise {
	p := object.NewPromise()
	time.AfterFunc(time.Duration(ms)*time.Millisecond, func() { p.Resolve(value) })
	return p
}

// WithTimeout implements `with-timeout`: resolves with p's value if it
// settles first, or with fallback if ms elapses first. First settlement
// wins; the loser's result is simply discarded.
func WithTimeout(p *object.Promise, fallback object.Value, ms int64) *object.Promise {
	result := object.NewPromise()
	timer := time.AfterFunc(time.Duration(ms)*time.Millisecond, func() {
		result.Resolve(fallback)
	})
	p.OnSettle(func(v object.Value, err error) {
		timer.Stop()
		if err != nil {
			result.Reject(err)
			return
		}
		result.Resolve(v)
	})
	return result
}

// Retry implements `retry`: invokes the zero-arg op up to maxAttempts times
// with exponential backoff starting at delayMs, resolving on first success
// and rejecting after exhausting attempts citing attempt count and the last
// error, via github.com/sethvargo/go-retry.
func Retry(op object.Value, maxAttempts int, delayMs int64, env *object.Environment) *object.Promise {
	result := object.NewPromise()
	Default.Go(func() {
		backoff := retry.WithMaxRetries(uint64(maxAttempts-1), retry.NewExponential(time.Duration(delayMs)*time.Millisecond))
		attempt := 0
		var lastErr error
		_ = retry.Do(context.Background(), backoff, func(ctx context.Context) error {
			attempt++
			v, err := evaluator.Apply(op, nil, env)
			if err == nil {
				result.Resolve(v)
				return nil
			}
			lastErr = err
			return retry.RetryableError(err)
		})
		if result.State() == object.Pending {
			result.Reject(lisperr.New(lisperr.Evaluation,
				"retry: exhausted %d attempt(s), last error: %v", attempt, lastErr))
		}
	})
	return result
}

// Debounce implements `debounce`: returns a callable that delays execution
// of fn until ms have elapsed without another invocation; each call cancels
// the previous pending timer.
func Debounce(fn object.Value, ms int64, env *object.Environment) *object.Builtin {
	var mu sync.Mutex
	var timer *time.Timer
	return &object.Builtin{
		Name: "debounced-fn",
		Fn: func(args []object.Value, callEnv *object.Environment) (object.Value, error) {
			mu.Lock()
			defer mu.Unlock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(time.Duration(ms)*time.Millisecond, func() {
				_, _ = evaluator.Apply(fn, args, env)
			})
			return object.NilValue, nil
		},
	}
}

// Throttle implements `throttle`: returns a callable that executes
// immediately, then ignores invocations until ms have elapsed; the call
// that crosses the window boundary executes immediately.
func Throttle(fn object.Value, ms int64, env *object.Environment) *object.Builtin {
	var mu sync.Mutex
	var blockedUntil time.Time
	return &object.Builtin{
		Name: "throttled-fn",
		Fn: func(args []object.Value, callEnv *object.Environment) (object.Value, error) {
			mu.Lock()
			now := time.Now()
			if now.Before(blockedUntil) {
				mu.Unlock()
				return object.NilValue, nil
			}
			blockedUntil = now.Add(time.Duration(ms) * time.Millisecond)
			mu.Unlock()
			return evaluator.Apply(fn, args, env)
		},
	}
}
