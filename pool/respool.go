package pool

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jasonkayzk/respool/errs"
)

type poolState int

const (
	stateOpen poolState = iota
	stateDraining
	stateShutdown
)

// resourcePool is the Pool implementation. One mutex guards all bookkeeping;
// completions, create, destroy and the context hooks are deferred to the run
// loop so they never run under the lock. Validate is the exception: it runs
// inside the dispatch pass, under the lock, on the calling goroutine.
type resourcePool struct {
	mu      sync.Mutex
	opts    Options
	reg     *registry
	waiters *waiterQueue
	fac     *factory
	run     *runLoop
	log     *log.Entry

	state           poolState
	creating        int
	pendingDiscards int

	drainDone  []func()
	drainFired bool

	shutdownDone  []func()
	shutdownFired bool

	reaperStop chan struct{}
	reaperOnce sync.Once
}

// Make sure resourcePool implements Pool interface.
var _ Pool = (*resourcePool)(nil)

// New builds a pool and primes it up to Options.Min resources.
func New(opts Options) (Pool, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}

	p := &resourcePool{
		opts:       opts,
		reg:        newRegistry(),
		waiters:    newWaiterQueue(opts.PriorityRange),
		run:        newRunLoop(),
		log:        log.WithField("pool", opts.Name),
		reaperStop: make(chan struct{}),
	}
	p.fac = &factory{opts: &p.opts, run: p.run, log: p.log}

	p.mu.Lock()
	p.dispatchLocked()
	p.mu.Unlock()

	go p.reapLoop()

	return p, nil
}

func (p *resourcePool) Acquire(done Completion) bool {
	return p.AcquireContext(context.Background(), done, 0)
}

func (p *resourcePool) AcquireWithPriority(done Completion, priority int) bool {
	return p.AcquireContext(context.Background(), done, priority)
}

func (p *resourcePool) AcquireContext(ctx context.Context, done Completion, priority int) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	if done == nil {
		done = func(error, interface{}) {}
	}

	p.mu.Lock()
	switch p.state {
	case stateDraining:
		p.mu.Unlock()
		p.run.enqueue(func() {
			done(errs.NewDefaultDrainErr(), nil)
		})
		return false
	case stateShutdown:
		p.mu.Unlock()
		p.run.enqueue(func() {
			done(errs.NewDefaultShutdownErr(), nil)
		})
		return false
	}

	p.waiters.push(&waiter{done: done, ctx: ctx, priority: priority})
	admitted := p.reg.live()+p.creating+p.waiters.size() < p.opts.Max
	p.dispatchLocked()
	p.mu.Unlock()
	return admitted
}

func (p *resourcePool) Release(resource interface{}) {
	p.mu.Lock()
	s := p.reg.get(resource)
	if s == nil || s.state != slotBorrowed {
		p.mu.Unlock()
		p.log.Warn("release of a resource the pool does not own")
		return
	}

	if detach := p.opts.DetachContext; detach != nil {
		p.run.enqueue(func() {
			detach(resource)
		})
	}

	p.reg.markIdle(s, time.Now())
	if p.state != stateOpen && p.waiters.size() == 0 && p.reg.live() > p.opts.Min {
		p.discardSlotLocked(s)
	}
	p.dispatchLocked()
	p.quiesceLocked()
	p.mu.Unlock()
}

func (p *resourcePool) Destroy(resource interface{}) {
	p.mu.Lock()
	s := p.reg.get(resource)
	if s == nil || s.state == slotDestroying {
		p.mu.Unlock()
		p.log.Warn("destroy of a resource the pool does not own")
		return
	}

	if detach := p.opts.DetachContext; detach != nil && s.state == slotBorrowed {
		p.run.enqueue(func() {
			detach(resource)
		})
	}

	p.discardSlotLocked(s)
	p.dispatchLocked()
	p.quiesceLocked()
	p.mu.Unlock()
}

// dispatchLocked matches waiters with resources. Runs whenever the set of
// (waiters, idle, creating, live) changed.
func (p *resourcePool) dispatchLocked() {
	// serve waiters from the warm end of the idle list
	for p.waiters.size() > 0 && p.reg.available() > 0 {
		s := p.reg.newestIdle()
		if !p.fac.check(s.resource) {
			p.log.Debug("validation failed, discarding resource")
			p.discardSlotLocked(s)
			continue
		}
		w := p.waiters.pop()
		p.reg.markBorrowed(s)
		p.deliverLocked(w, s.resource)
	}

	// expand while demand outruns in-flight supply
	for p.state == stateOpen && p.waiters.size() > p.creating && p.reg.live()+p.creating < p.opts.Max {
		p.startCreateLocked()
	}

	// keep the floor
	for p.state == stateOpen && p.reg.live()+p.creating < p.opts.Min {
		p.startCreateLocked()
	}
}

func (p *resourcePool) deliverLocked(w *waiter, resource interface{}) {
	attach := p.opts.AttachContext
	ctx := w.ctx
	done := w.done
	p.run.enqueue(func() {
		if attach != nil {
			attach(ctx, resource)
		}
		done(nil, resource)
	})
}

func (p *resourcePool) startCreateLocked() {
	p.creating++
	p.fac.produce(p.onCreateDone)
}

// onCreateDone runs on the run loop once a factory create settles.
func (p *resourcePool) onCreateDone(err error, resource interface{}) {
	p.mu.Lock()
	p.creating--

	if err != nil {
		if w := p.waiters.pop(); w != nil {
			done := w.done
			createErr := errs.NewCreateErr(err)
			p.run.enqueue(func() {
				done(createErr, nil)
			})
		}
		p.log.Debugf("create err: %v", err)
		p.dispatchLocked()
		p.quiesceLocked()
		p.finishShutdownLocked()
		p.mu.Unlock()
		return
	}

	if p.state == stateShutdown {
		// terminated while the create was in flight
		p.pendingDiscards++
		p.fac.discard(resource, func() {
			p.mu.Lock()
			p.pendingDiscards--
			p.finishShutdownLocked()
			p.mu.Unlock()
		})
		p.mu.Unlock()
		return
	}

	s := p.reg.add(resource)
	if w := p.waiters.pop(); w != nil {
		p.deliverLocked(w, resource)
	} else {
		p.reg.markIdle(s, time.Now())
	}
	p.dispatchLocked()
	p.quiesceLocked()
	p.mu.Unlock()
}

// discardSlotLocked transitions a slot to destroying and hands its resource
// to the factory. The slot leaves the registry once teardown returns.
func (p *resourcePool) discardSlotLocked(s *slot) {
	p.reg.markDestroying(s)
	p.pendingDiscards++
	p.fac.discard(s.resource, func() {
		p.mu.Lock()
		p.reg.remove(s)
		p.pendingDiscards--
		p.finishShutdownLocked()
		p.mu.Unlock()
	})
}

func (p *resourcePool) Name() string {
	return p.opts.Name
}

func (p *resourcePool) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reg.count()
}

func (p *resourcePool) AvailableCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reg.available()
}

func (p *resourcePool) BorrowedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reg.borrowed()
}

func (p *resourcePool) WaitingCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.waiters.size()
}

func (p *resourcePool) Min() int {
	return p.opts.Min
}

func (p *resourcePool) Max() int {
	return p.opts.Max
}
