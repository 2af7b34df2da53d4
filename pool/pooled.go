package pool

import (
	"context"
	"sync/atomic"
)

// PooledFunc is the borrow-side half of a decorated call. done must be
// invoked exactly once when the resource is no longer needed.
type PooledFunc func(resource interface{}, done func(results ...interface{}))

// Pooled wraps fn so that every invocation of the returned function borrows a
// resource for the duration of fn. If the acquire itself fails, fn is not
// invoked and the error goes to done. A nil done is tolerated; the resource
// is released either way.
func (p *resourcePool) Pooled(fn PooledFunc) func(done func(err error, results []interface{})) {
	return func(done func(err error, results []interface{})) {
		p.Acquire(func(err error, resource interface{}) {
			if err != nil {
				if done != nil {
					done(err, nil)
				}
				return
			}
			var once int32
			fn(resource, func(results ...interface{}) {
				if !atomic.CompareAndSwapInt32(&once, 0, 1) {
					return
				}
				p.Release(resource)
				if done != nil {
					done(nil, results)
				}
			})
		})
	}
}

const (
	doPending int32 = iota
	doDelivered
	doAbandoned
)

// Do acquires a resource, runs fn with it and releases it, in the calling
// goroutine. ctx is attached to the resource for the duration of the borrow.
// When ctx ends before a resource is delivered, the late delivery goes
// straight back to the pool.
func (p *resourcePool) Do(ctx context.Context, fn func(resource interface{}) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	type outcome struct {
		resource interface{}
		err      error
	}
	ch := make(chan outcome, 1)
	var state int32

	p.AcquireContext(ctx, func(err error, resource interface{}) {
		if atomic.CompareAndSwapInt32(&state, doPending, doDelivered) {
			ch <- outcome{resource: resource, err: err}
			return
		}
		if err == nil {
			p.Release(resource)
		}
	}, 0)

	select {
	case out := <-ch:
		if out.err != nil {
			return out.err
		}
		defer p.Release(out.resource)
		return fn(out.resource)
	case <-ctx.Done():
		if atomic.CompareAndSwapInt32(&state, doPending, doAbandoned) {
			return ctx.Err()
		}
		// the delivery won the race, take it and hand it back
		out := <-ch
		if out.err == nil {
			p.Release(out.resource)
		}
		return ctx.Err()
	}
}
