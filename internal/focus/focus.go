// Package focus carries window-focus events from whatever surface owns the
// window (a browser socket, a terminal) to query consumers.
package focus

import "sync"

// Source delivers focus events to subscribed listeners.
type Source interface {
	// Subscribe registers listener and returns a function that removes it.
	Subscribe(listener func()) (cancel func())
}

// Emitter is a Source that fans every Focus call out to its listeners.
// Listeners are not deduplicated: each subscription is called once per event.
type Emitter struct {
	mu        sync.RWMutex
	next      uint64
	listeners map[uint64]func()
}

// NewEmitter returns an Emitter with no listeners.
func NewEmitter() *Emitter {
	return &Emitter{listeners: make(map[uint64]func())}
}

// Subscribe implements Source.
func (e *Emitter) Subscribe(listener func()) func() {
	e.mu.Lock()
	e.next++
	id := e.next
	e.listeners[id] = listener
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.listeners, id)
			e.mu.Unlock()
		})
	}
}

// Focus notifies every current listener. Listeners run on the caller's
// goroutine, outside the emitter's lock.
func (e *Emitter) Focus() {
	e.mu.RLock()
	ls := make([]func(), 0, len(e.listeners))
	for _, l := range e.listeners {
		ls = append(ls, l)
	}
	e.mu.RUnlock()

	for _, l := range ls {
		l()
	}
}

// Len returns the number of subscribed listeners.
func (e *Emitter) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners)
}
