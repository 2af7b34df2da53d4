package pool

import (
	"github.com/jasonkayzk/respool/errs"
)

func (p *resourcePool) Drain(done func()) {
	p.mu.Lock()
	if p.state == stateShutdown {
		p.mu.Unlock()
		if done != nil {
			p.run.enqueue(done)
		}
		return
	}

	if p.state == stateOpen {
		p.state = stateDraining
		p.log.Debug("draining")
		for _, w := range p.waiters.drainAll() {
			d := w.done
			p.run.enqueue(func() {
				d(errs.NewDefaultDrainErr(), nil)
			})
		}
	}

	if done != nil {
		if p.drainFired {
			p.run.enqueue(done)
		} else {
			p.drainDone = append(p.drainDone, done)
		}
	}
	p.quiesceLocked()
	p.mu.Unlock()
}

// quiesceLocked finishes a drain once nothing is borrowed and no create is in
// flight: remaining idle resources go to the factory for teardown and every
// registered drain completion fires.
func (p *resourcePool) quiesceLocked() {
	if p.state != stateDraining || p.reg.borrowed() > 0 || p.creating > 0 {
		return
	}
	for {
		s := p.reg.oldestIdle()
		if s == nil {
			break
		}
		p.discardSlotLocked(s)
	}
	p.fireDrainLocked()
}

func (p *resourcePool) fireDrainLocked() {
	if p.drainFired {
		return
	}
	p.drainFired = true
	for _, done := range p.drainDone {
		d := done
		p.run.enqueue(d)
	}
	p.drainDone = nil
}

func (p *resourcePool) DestroyAllNow(done func()) {
	p.mu.Lock()
	if p.state != stateShutdown {
		p.state = stateShutdown
		p.log.Debug("destroying all resources")
		p.stopReaper()

		for _, w := range p.waiters.drainAll() {
			d := w.done
			p.run.enqueue(func() {
				d(errs.NewDefaultShutdownErr(), nil)
			})
		}

		for _, s := range p.reg.all() {
			if s.state != slotDestroying {
				p.discardSlotLocked(s)
			}
		}

		// a drain still waiting on quiescence will never see another release
		p.fireDrainLocked()
	}

	if done != nil {
		if p.shutdownFired {
			p.mu.Unlock()
			p.run.enqueue(done)
			return
		}
		p.shutdownDone = append(p.shutdownDone, done)
	}
	p.finishShutdownLocked()
	p.mu.Unlock()
}

// finishShutdownLocked fires the shutdown completions once the last teardown
// has returned, then lets the run loop exit.
func (p *resourcePool) finishShutdownLocked() {
	if p.state != stateShutdown || p.shutdownFired {
		return
	}
	if p.creating > 0 || p.pendingDiscards > 0 || p.reg.count() > 0 {
		return
	}
	p.shutdownFired = true
	for _, done := range p.shutdownDone {
		d := done
		p.run.enqueue(d)
	}
	p.shutdownDone = nil
	p.run.close()
}
