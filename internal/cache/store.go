package cache

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Entry is the last successful result stored for a key.
type Entry[V any] struct {
	Data      V
	Timestamp time.Time
	// Retention is how long the entry may live before the janitor evicts it.
	// Zero keeps the entry until it is deleted or overwritten.
	Retention time.Duration
	// Generation is the fetch generation that produced the entry.
	Generation uint64
}

// Age returns how old the entry is at now.
func (e Entry[V]) Age(now time.Time) time.Duration {
	return now.Sub(e.Timestamp)
}

// Expired reports whether the entry has outlived its own retention.
func (e Entry[V]) Expired(now time.Time) bool {
	return e.Retention > 0 && e.Age(now) > e.Retention
}

// CommitPolicy decides which completing fetch may write a key.
type CommitPolicy int

const (
	// CommitLatestIssued only accepts a generation newer than the one last
	// committed for the key. A slower fetch resolving after a younger one is
	// discarded; overlapping fetches still land in the order they started.
	// The name refers to start order winning over resolution order.
	CommitLatestIssued CommitPolicy = iota
	// CommitLastResolved accepts every completion, so the last one to
	// resolve wins even when it was started earlier.
	CommitLastResolved
)

func (p CommitPolicy) String() string {
	switch p {
	case CommitLatestIssued:
		return "latest-issued"
	case CommitLastResolved:
		return "last-resolved"
	default:
		return "unknown"
	}
}

// ErrUnknownPolicy is returned by ParseCommitPolicy.
var ErrUnknownPolicy = errors.New("unknown commit policy")

// ParseCommitPolicy reads the names printed by CommitPolicy.String.
func ParseCommitPolicy(s string) (CommitPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "latest-issued":
		return CommitLatestIssued, nil
	case "last-resolved":
		return CommitLastResolved, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// Store is the key -> entry mapping shared by every query consumer of a
// client. It is safe for concurrent use.
type Store[V any] struct {
	mu      sync.RWMutex
	items     map[string]Entry[V]
	issued    map[string]uint64
	committed map[string]uint64
	metrics Metrics
}

// Option configures a Store.
type Option func(*storeOptions)

type storeOptions struct {
	metrics Metrics
}

// WithMetrics reports store events to m.
func WithMetrics(m Metrics) Option {
	return func(o *storeOptions) {
		if m != nil {
			o.metrics = m
		}
	}
}

// NewStore constructs an empty Store.
func NewStore[V any](opts ...Option) *Store[V] {
	o := storeOptions{metrics: NoopMetrics{}}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[V]{
		items:     make(map[string]Entry[V]),
		issued:    make(map[string]uint64),
		committed: make(map[string]uint64),
		metrics:   o.metrics,
	}
}

// Get returns the entry for key and whether one exists. Staleness is the
// caller's decision; Get never filters by age.
func (s *Store[V]) Get(key string) (Entry[V], bool) {
	s.mu.RLock()
	e, ok := s.items[key]
	s.mu.RUnlock()

	if ok {
		s.metrics.Hit()
	} else {
		s.metrics.Miss()
	}
	return e, ok
}

// Begin issues a new fetch generation for key. Generations grow
// monotonically per key for the lifetime of the store.
func (s *Store[V]) Begin(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued[key]++
	return s.issued[key]
}

// Latest returns the newest generation issued for key, zero if none.
func (s *Store[V]) Latest(key string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.issued[key]
}

// Commit replaces the entry for key with data produced by generation gen.
// Under CommitLatestIssued a generation at or below the last committed one
// is dropped and Commit returns false.
func (s *Store[V]) Commit(key string, gen uint64, data V, at time.Time, retention time.Duration, policy CommitPolicy) bool {
	s.mu.Lock()
	if policy == CommitLatestIssued && gen <= s.committed[key] {
		s.mu.Unlock()
		s.metrics.StaleDiscard()
		return false
	}
	if gen > s.committed[key] {
		s.committed[key] = gen
	}
	s.items[key] = Entry[V]{
		Data:       data,
		Timestamp:  at,
		Retention:  retention,
		Generation: gen,
	}
	s.mu.Unlock()

	s.metrics.Write()
	return true
}

// Delete removes key if present. Generations are kept so that a fetch older
// than the deleted entry cannot bring it back.
func (s *Store[V]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
}

// Len returns the number of stored entries, expired ones included.
func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Keys returns the stored keys in lexical order.
func (s *Store[V]) Keys() []string {
	s.mu.RLock()
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	s.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Clear removes all entries.
func (s *Store[V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]Entry[V])
}

// Sweep evicts every entry whose age at now exceeds its own retention and
// returns how many were removed.
func (s *Store[V]) Sweep(now time.Time) int {
	s.mu.Lock()
	evicted := 0
	for k, e := range s.items {
		if e.Expired(now) {
			delete(s.items, k)
			evicted++
		}
	}
	s.mu.Unlock()

	if evicted > 0 {
		s.metrics.Evict(evicted)
	}
	return evicted
}
