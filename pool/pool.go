package pool

import (
	"context"
)

// Completion receives the outcome of an acquire. Exactly one of err and
// resource is set. Completions run on the pool's delivery goroutine, never on
// the caller's stack; long work inside a completion delays later deliveries,
// so hand heavy work off to another goroutine and Release from there.
type Completion func(err error, resource interface{})

// The pool interface
type Pool interface {
	// Acquire enqueues a borrow request at the highest priority. The return
	// value reports whether the pool still has headroom: false means the
	// request is queued behind capacity and the caller should expect to wait.
	Acquire(done Completion) bool

	// AcquireWithPriority is Acquire with an explicit priority band.
	// Band 0 is served first; out-of-range bands are clamped.
	AcquireWithPriority(done Completion, priority int) bool

	// AcquireContext captures ctx at acquire time and attaches it to the
	// delivered resource via the configured AttachContext hook.
	AcquireContext(ctx context.Context, done Completion, priority int) bool

	// Release puts a borrowed resource back into the pool.
	Release(resource interface{})

	// Destroy removes a resource from the pool instead of returning it.
	Destroy(resource interface{})

	// Drain stops admitting new borrows. done fires once every borrowed
	// resource has been released and the remaining idle resources have been
	// handed to the factory for teardown. Safe to call repeatedly; every
	// passed done fires exactly once.
	Drain(done func())

	// DestroyAllNow tears the pool down immediately: the reaper stops, every
	// resource is handed to the factory for teardown, and outstanding waiters
	// fail. done fires after the last teardown returns.
	DestroyAllNow(done func())

	// Pooled wraps fn in an acquire/release bracket.
	Pooled(fn PooledFunc) func(done func(err error, results []interface{}))

	// Do acquires a resource, runs fn with it and releases it, blocking the
	// calling goroutine until fn returns. If ctx ends while still waiting for
	// a resource, Do returns ctx.Err() without running fn; once fn has
	// started, Do waits for it to return.
	Do(ctx context.Context, fn func(resource interface{}) error) error

	Name() string

	// Count returns the number of resources the pool tracks, including ones
	// currently being torn down.
	Count() int

	// AvailableCount returns the number of idle resources.
	AvailableCount() int

	// BorrowedCount returns the number of resources currently lent out.
	BorrowedCount() int

	// WaitingCount returns the number of queued borrow requests.
	WaitingCount() int

	// Min and Max report the configured bounds after clamping.
	Min() int
	Max() int
}
