package pool

import (
	"context"
	"errors"
	"time"
)

const (
	defaultIdleTimeout  = 30 * time.Second
	defaultReapInterval = time.Second
)

// Configs for pool
type Options struct {
	// Opaque label, used in logs and metrics
	Name string

	// The number of resources the pool keeps alive even when idle
	Min int

	// Max resource number in the pool
	Max int

	// Max life time for an idle resource before the reaper destroys it
	IdleTimeout time.Duration

	// How often the reaper wakes up
	ReapInterval time.Duration

	// Number of priority bands for waiting borrowers, band 0 first
	PriorityRange int

	// Whether the reaper destroys expired idle resources. nil means true.
	RefreshIdle *bool

	// The method to build a resource. done must be called exactly once,
	// either synchronously or later from another goroutine.
	Create func(done func(err error, resource interface{}))

	// The method to tear a resource down. The returned error is logged and
	// otherwise ignored.
	Destroy func(resource interface{}) error

	// Check resource health before lending it out. Must be a quick
	// synchronous predicate and must not call back into the pool.
	Validate func(resource interface{}) bool

	// Called with the borrower's context each time a resource is handed out
	AttachContext func(ctx context.Context, resource interface{})

	// Called when a borrowed resource comes back
	DetachContext func(resource interface{})
}

func (o *Options) normalize() error {
	if o.Create == nil {
		return errors.New("invalid create func settings")
	}
	if o.Destroy == nil {
		return errors.New("invalid destroy func settings")
	}
	if o.Max < 1 {
		o.Max = 1
	}
	if o.Min < 0 {
		o.Min = 0
	}
	if o.Min > o.Max {
		o.Min = o.Max
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = defaultIdleTimeout
	}
	if o.ReapInterval <= 0 {
		o.ReapInterval = defaultReapInterval
	}
	if o.PriorityRange < 1 {
		o.PriorityRange = 1
	}
	return nil
}

func (o *Options) refreshIdle() bool {
	return o.RefreshIdle == nil || *o.RefreshIdle
}

// SyncFactory adapts a plain constructor to the completion form Create
// expects.
func SyncFactory(fn func() (interface{}, error)) func(done func(err error, resource interface{})) {
	return func(done func(err error, resource interface{})) {
		resource, err := fn()
		done(err, resource)
	}
}
