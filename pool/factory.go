package pool

import (
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

// factory normalises the user callbacks. produce and discard always run on
// the pool's run loop, so a create completion, even a synchronous one, takes
// effect only after the work queued ahead of it.
type factory struct {
	opts *Options
	run  *runLoop
	log  *log.Entry
}

// produce invokes the user create. done fires exactly once on the run loop,
// no matter how the user completes, and never re-entrantly.
func (f *factory) produce(done func(err error, resource interface{})) {
	f.run.enqueue(func() {
		var called int32
		f.opts.Create(func(err error, resource interface{}) {
			if !atomic.CompareAndSwapInt32(&called, 0, 1) {
				f.log.Warn("create completion invoked more than once, ignoring")
				return
			}
			f.run.enqueue(func() {
				done(err, resource)
			})
		})
	})
}

// discard hands a resource to the user destroy. Errors and panics are logged
// and swallowed; done always fires afterwards.
func (f *factory) discard(resource interface{}, done func()) {
	f.run.enqueue(func() {
		func() {
			defer func() {
				if p := recover(); p != nil {
					f.log.Warnf("destroy panicked: %v", p)
				}
			}()
			if err := f.opts.Destroy(resource); err != nil {
				f.log.Debugf("destroy err: %v", err)
			}
		}()
		done()
	})
}

// check runs the user validate, if any.
func (f *factory) check(resource interface{}) bool {
	if f.opts.Validate == nil {
		return true
	}
	return f.opts.Validate(resource)
}
