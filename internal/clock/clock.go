// Package clock is the time seam shared by the cache janitor and the query
// runtime. Production code uses Real; tests drive a Fake by hand.
package clock

import (
	"sync"
	"time"
)

// Clock tells the time and schedules callbacks.
type Clock interface {
	Now() time.Time
	// AfterFunc calls f in its own goroutine once d has elapsed.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending AfterFunc callback.
type Timer interface {
	// Stop prevents the callback from firing. It reports whether the call
	// stopped the timer, false if it already fired or was stopped.
	Stop() bool
}

type realClock struct{}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Handle releases a scheduled resource (a repeating timer, a listener).
// Stop is safe to call more than once.
type Handle interface {
	Stop()
}

type onceHandle struct {
	once sync.Once
	f    func()
}

func (h *onceHandle) Stop() { h.once.Do(h.f) }

// HandleFunc wraps f so that it runs at most once, however often Stop is called.
func HandleFunc(f func()) Handle {
	return &onceHandle{f: f}
}

// repeater re-arms a one-shot timer after every tick.
type repeater struct {
	clk     Clock
	every   time.Duration
	fn      func()
	mu      sync.Mutex
	timer   Timer
	stopped bool
}

// Repeat calls fn every d, starting d from now, until the returned Handle
// is stopped. Ticks are not coalesced: fn is never awaited before the next
// tick is armed.
func Repeat(c Clock, d time.Duration, fn func()) Handle {
	r := &repeater{clk: c, every: d, fn: fn}
	r.mu.Lock()
	r.timer = c.AfterFunc(d, r.tick)
	r.mu.Unlock()
	return r
}

func (r *repeater) tick() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.timer = r.clk.AfterFunc(r.every, r.tick)
	r.mu.Unlock()

	r.fn()
}

func (r *repeater) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	r.stopped = true
	if r.timer != nil {
		r.timer.Stop()
	}
}
