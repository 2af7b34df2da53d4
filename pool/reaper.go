package pool

import (
	"time"
)

func (p *resourcePool) reapLoop() {
	ticker := time.NewTicker(p.opts.ReapInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.reap()
		case <-p.reaperStop:
			return
		}
	}
}

// reap destroys resources idle past IdleTimeout, oldest first, never dipping
// below Min, then tops the pool back up to Min.
func (p *resourcePool) reap() {
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != stateOpen {
		return
	}

	if p.opts.refreshIdle() {
		for {
			s := p.reg.oldestIdle()
			if s == nil {
				break
			}
			// the list is sorted, the first unexpired entry ends the scan
			if now.Sub(s.idleSince) < p.opts.IdleTimeout {
				break
			}
			if p.reg.live()-1 < p.opts.Min {
				break
			}
			p.log.Debugf("reaping resource idle for %v", now.Sub(s.idleSince))
			p.discardSlotLocked(s)
		}
	}

	p.dispatchLocked()
}

func (p *resourcePool) stopReaper() {
	p.reaperOnce.Do(func() {
		close(p.reaperStop)
	})
}
