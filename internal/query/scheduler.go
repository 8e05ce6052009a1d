package query

import "edu-dashboard-api/internal/clock"

// acquireLocked starts the consumer's revalidation triggers. Every trigger is
// held as a Handle and released by deactivate.
func (q *Query[T]) acquireLocked() {
	if q.opts.RefetchInterval > 0 {
		q.handles = append(q.handles, clock.Repeat(q.client.clock, q.opts.RefetchInterval, q.onInterval))
	}
	if q.opts.RefetchOnWindowFocus && q.client.focus != nil {
		q.handles = append(q.handles, clock.HandleFunc(q.client.focus.Subscribe(q.onFocus)))
	}
}

// onInterval polls regardless of staleness. A tick during an in-flight
// fetch still starts a new one.
func (q *Query[T]) onInterval() {
	q.fetch(true, true)
}

// onFocus revalidates only when the last completed fetch is older than
// StaleTime.
func (q *Query[T]) onFocus() {
	q.mu.Lock()
	if q.closed || !q.mounted {
		q.mu.Unlock()
		return
	}
	stale := q.client.clock.Now().Sub(q.lastFetch) > q.opts.StaleTime
	q.mu.Unlock()

	if !stale {
		return
	}
	q.logger.Debug().Msg("window focus revalidation")
	q.fetch(false, true)
}
