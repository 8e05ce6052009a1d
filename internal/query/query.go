package query

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"edu-dashboard-api/internal/cache"
	"edu-dashboard-api/internal/clock"
)

// Fetcher produces the value for a key. The key is only an addressing token
// for the store; nothing is threaded from it into the call.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Query is one mounted consumer of a key. Its State is private; the store
// entry it reads and writes is shared with every other consumer of the
// client.
type Query[T any] struct {
	client *Client
	key    string
	fn     Fetcher[T]
	opts   Options
	logger zerolog.Logger

	onSuccess func(T)
	onError   func(error)
	onSettled func(T, error)

	mu         sync.Mutex
	state      State[T]
	initial    State[T]
	enabled    bool
	mounted    bool
	closed     bool
	hasFetched bool
	lastFetch  time.Time
	attempts   int
	inflight   int
	seq        uint64
	settledSeq uint64
	retryTimer clock.Timer
	retrySeq   uint64
	handles    []clock.Handle
	subs       map[uint64]func(State[T])
	nextSub    uint64
	delivering bool
	dirty      bool
}

type attempt struct {
	seq uint64
	gen uint64
}

// Use creates a consumer of key and mounts it when enabled.
func Use[T any](c *Client, key string, fn Fetcher[T], opts ...Option) (*Query[T], error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	if fn == nil {
		return nil, ErrNilFetcher
	}

	o := c.options(opts)
	q := &Query[T]{
		client: c,
		key:    key,
		fn:     fn,
		opts:   o,
		logger: c.logger.With().Str("query", key).Logger(),
		subs:   make(map[uint64]func(State[T])),
	}
	q.bindCallbacks(o)

	if v, ok := o.InitialData.(T); ok {
		q.initial.Data = v
		q.initial.HasData = true
		q.initial.UpdatedAt = c.clock.Now()
	}
	q.state = q.initial

	if o.Enabled {
		q.SetEnabled(true)
	}
	return q, nil
}

func (q *Query[T]) bindCallbacks(o Options) {
	q.onError = o.onError
	if o.onSuccess != nil {
		if f, ok := o.onSuccess.(func(T)); ok {
			q.onSuccess = f
		} else {
			q.logger.Warn().Msg("OnSuccess callback type does not match query data, ignored")
		}
	}
	if o.onSettled != nil {
		if f, ok := o.onSettled.(func(T, error)); ok {
			q.onSettled = f
		} else {
			q.logger.Warn().Msg("OnSettled callback type does not match query data, ignored")
		}
	}
}

// Key returns the consumer's query key.
func (q *Query[T]) Key() string { return q.key }

// State returns a snapshot of the consumer's state.
func (q *Query[T]) State() State[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Data returns the current data and whether there is any.
func (q *Query[T]) Data() (T, bool) {
	s := q.State()
	return s.Data, s.HasData
}

func (q *Query[T]) Err() error       { return q.State().Err }
func (q *Query[T]) Status() Status   { return q.State().Status }
func (q *Query[T]) IsLoading() bool  { return q.State().IsLoading() }
func (q *Query[T]) IsSuccess() bool  { return q.State().IsSuccess() }
func (q *Query[T]) IsError() bool    { return q.State().IsError() }
func (q *Query[T]) IsFetching() bool { return q.State().IsFetching }

// Subscribe calls f with a snapshot after state changes until the returned
// cancel function is called or the consumer is closed. Changes racing with a
// delivery in progress are folded into one newer snapshot.
func (q *Query[T]) Subscribe(f func(State[T])) (cancel func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return func() {}
	}
	q.nextSub++
	id := q.nextSub
	q.subs[id] = f
	q.mu.Unlock()

	return func() {
		q.mu.Lock()
		delete(q.subs, id)
		q.mu.Unlock()
	}
}

// SetEnabled mounts (true) or unmounts (false) the consumer's triggers.
// Enabling runs the read path again.
func (q *Query[T]) SetEnabled(enabled bool) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.enabled = enabled
	q.mu.Unlock()

	if enabled {
		q.activate()
	} else {
		q.deactivate()
	}
}

// Refetch starts an attempt regardless of staleness or attempts already in
// flight. The retry counter is left as it is.
func (q *Query[T]) Refetch() error {
	if !q.fetch(true, false) {
		return ErrConsumerClosed
	}
	return nil
}

// Reset restores the state the consumer had before it was mounted. The
// store entry is kept.
func (q *Query[T]) Reset() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.state = q.initial
	q.state.IsFetching = q.inflight > 0
	q.mu.Unlock()

	q.publish()
}

// Close unmounts the consumer for good. Fetches still in flight may update
// the store but never this consumer.
func (q *Query[T]) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	q.deactivate()

	q.mu.Lock()
	q.subs = make(map[uint64]func(State[T]))
	q.mu.Unlock()
	q.logger.Debug().Msg("query closed")
}

// activate acquires the consumer's triggers and runs the read path.
func (q *Query[T]) activate() {
	q.mu.Lock()
	if q.closed || q.mounted {
		q.mu.Unlock()
		return
	}
	q.mounted = true
	q.acquireLocked()
	if q.inflight > 0 {
		// the attempt already running settles the read
		q.mu.Unlock()
		return
	}

	now := q.client.clock.Now()
	if e, ok := q.client.store.Get(q.key); ok {
		if data, typed := e.Data.(T); typed && e.Age(now) <= q.opts.StaleTime {
			q.state.Data = data
			q.state.HasData = true
			q.state.Err = nil
			q.state.Status = StatusSuccess
			q.state.UpdatedAt = e.Timestamp
			q.lastFetch = e.Timestamp
			q.mu.Unlock()

			q.logger.Debug().Dur("age", e.Age(now)).Msg("served fresh entry from cache")
			q.publish()
			return
		}
	}

	if !q.opts.RefetchOnMount && q.hasFetched {
		q.mu.Unlock()
		return
	}
	a := q.beginLocked()
	q.mu.Unlock()

	q.launch(a)
}

// deactivate releases every timer and listener the consumer holds.
func (q *Query[T]) deactivate() {
	q.mu.Lock()
	if !q.mounted {
		q.mu.Unlock()
		return
	}
	q.mounted = false
	handles := q.handles
	q.handles = nil
	q.stopRetryLocked()
	q.mu.Unlock()

	for _, h := range handles {
		h.Stop()
	}
}

// fetch starts an attempt. Unless forced it is skipped while an attempt is
// in flight or a retry is pending. needMounted guards timer and listener
// triggers that may race with teardown.
func (q *Query[T]) fetch(force, needMounted bool) bool {
	q.mu.Lock()
	if q.closed || (needMounted && !q.mounted) {
		q.mu.Unlock()
		return false
	}
	if !force && (q.inflight > 0 || q.retryTimer != nil) {
		q.mu.Unlock()
		return false
	}
	a := q.beginLocked()
	q.mu.Unlock()

	q.launch(a)
	return true
}

func (q *Query[T]) beginLocked() attempt {
	// a previous result stays visible until this attempt settles
	if q.state.Status == StatusIdle {
		q.state.Status = StatusLoading
	}
	q.inflight++
	q.state.IsFetching = true
	q.seq++
	return attempt{
		seq: q.seq,
		gen: q.client.store.Begin(q.key),
	}
}

func (q *Query[T]) launch(a attempt) {
	q.publish()
	q.client.metrics.FetchStarted()
	q.logger.Debug().Uint64("attempt", a.seq).Uint64("generation", a.gen).Msg("fetch started")

	go func() {
		started := q.client.clock.Now()
		data, err := q.call()
		q.settle(a, data, err, started)
	}()
}

func (q *Query[T]) call() (data T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()
	return q.fn(q.client.ctx)
}

func (q *Query[T]) settle(a attempt, data T, err error, started time.Time) {
	now := q.client.clock.Now()
	policy := q.client.policy

	if err == nil {
		if !q.client.store.Commit(q.key, a.gen, data, now, q.opts.CacheTime, policy) {
			q.logger.Debug().Uint64("generation", a.gen).Msg("superseded result not stored")
		}
		q.client.metrics.FetchSucceeded(now.Sub(started))
	} else {
		q.client.metrics.FetchFailed()
	}

	q.mu.Lock()
	q.inflight--
	if q.closed {
		q.mu.Unlock()
		q.logger.Debug().Msg("fetch settled after close")
		return
	}
	q.hasFetched = true
	q.state.IsFetching = q.inflight > 0

	// overlapping attempts land in start order; one resolving after a
	// younger attempt already settled is stale
	current := policy == cache.CommitLastResolved || a.seq > q.settledSeq
	if a.seq > q.settledSeq {
		q.settledSeq = a.seq
	}
	if current {
		if err == nil {
			q.state.Data = data
			q.state.HasData = true
			q.state.Err = nil
			q.state.Status = StatusSuccess
			q.state.UpdatedAt = now
			q.lastFetch = now
			q.attempts = 0
			q.stopRetryLocked()
		} else {
			q.state.Err = err
			q.state.Status = StatusError
			q.scheduleRetryLocked()
		}
	}
	q.mu.Unlock()

	if err != nil {
		q.logger.Warn().Err(err).Uint64("attempt", a.seq).Msg("fetch failed")
	}
	q.publish()

	if err == nil {
		if q.onSuccess != nil {
			q.onSuccess(data)
		}
		if q.onSettled != nil {
			q.onSettled(data, nil)
		}
		return
	}
	if q.onError != nil {
		q.onError(err)
	}
	if q.onSettled != nil {
		var zero T
		q.onSettled(zero, err)
	}
}

func (q *Query[T]) scheduleRetryLocked() {
	if !q.mounted || q.retryTimer != nil || !q.opts.Retry.Allows(q.attempts) {
		return
	}
	q.attempts++
	delay := q.opts.Retry.Delay(q.opts.RetryDelay, q.attempts)
	q.retrySeq++
	tok := q.retrySeq
	q.retryTimer = q.client.clock.AfterFunc(delay, func() { q.retry(tok) })

	q.client.metrics.RetryScheduled()
	q.logger.Debug().Int("retry", q.attempts).Dur("delay", delay).Msg("retry scheduled")
}

func (q *Query[T]) retry(tok uint64) {
	q.mu.Lock()
	if tok != q.retrySeq || q.retryTimer == nil || q.closed || !q.mounted {
		q.mu.Unlock()
		return
	}
	q.retryTimer = nil
	a := q.beginLocked()
	q.mu.Unlock()

	q.launch(a)
}

func (q *Query[T]) stopRetryLocked() {
	if q.retryTimer != nil {
		q.retryTimer.Stop()
		q.retryTimer = nil
	}
	q.retrySeq++
}

// publish hands the current state to subscribers. One goroutine delivers at
// a time and keeps going while the state changes under it, so the last
// snapshot a subscriber receives is always the current state. Subscribers
// may call back into the query.
func (q *Query[T]) publish() {
	q.mu.Lock()
	q.dirty = true
	if q.delivering {
		q.mu.Unlock()
		return
	}
	q.delivering = true
	for q.dirty {
		q.dirty = false
		snap := q.state
		subs := make([]func(State[T]), 0, len(q.subs))
		for _, f := range q.subs {
			subs = append(subs, f)
		}
		q.mu.Unlock()

		for _, f := range subs {
			f(snap)
		}
		q.mu.Lock()
	}
	q.delivering = false
	q.mu.Unlock()
}
