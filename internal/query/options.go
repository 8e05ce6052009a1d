package query

import "time"

// Defaults applied to every consumer before its own options.
const (
	DefaultRetryCount = 3
	DefaultRetryDelay = time.Second
	DefaultCacheTime  = 5 * time.Minute
	DefaultStaleTime  = 0
)

// Options is the per-consumer configuration.
type Options struct {
	// InitialData seeds State.Data before any fetch. Set through WithInitialData.
	InitialData any
	Enabled     bool
	// RefetchInterval polls the fetcher while enabled; zero disables polling.
	RefetchInterval      time.Duration
	RefetchOnMount       bool
	RefetchOnWindowFocus bool
	Retry                RetryPolicy
	RetryDelay           time.Duration
	// CacheTime is recorded on every entry this consumer writes; the janitor
	// evicts the entry once it is older than that.
	CacheTime time.Duration
	// StaleTime is the maximum age of a stored entry served without fetching.
	StaleTime time.Duration

	onSuccess any // func(T)
	onError   func(error)
	onSettled any // func(T, error)
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		Enabled:              true,
		RefetchOnMount:       true,
		RefetchOnWindowFocus: true,
		Retry:                Retry(DefaultRetryCount),
		RetryDelay:           DefaultRetryDelay,
		CacheTime:            DefaultCacheTime,
		StaleTime:            DefaultStaleTime,
	}
}

// Option adjusts Options.
type Option func(*Options)

func WithEnabled(enabled bool) Option {
	return func(o *Options) { o.Enabled = enabled }
}

func WithRefetchInterval(d time.Duration) Option {
	return func(o *Options) { o.RefetchInterval = d }
}

func WithRefetchOnMount(b bool) Option {
	return func(o *Options) { o.RefetchOnMount = b }
}

func WithRefetchOnWindowFocus(b bool) Option {
	return func(o *Options) { o.RefetchOnWindowFocus = b }
}

func WithRetry(p RetryPolicy) Option {
	return func(o *Options) { o.Retry = p }
}

func WithRetryDelay(d time.Duration) Option {
	return func(o *Options) { o.RetryDelay = d }
}

func WithCacheTime(d time.Duration) Option {
	return func(o *Options) { o.CacheTime = d }
}

func WithStaleTime(d time.Duration) Option {
	return func(o *Options) { o.StaleTime = d }
}

// WithInitialData seeds the consumer's data. The value is ignored by a
// consumer whose type does not match.
func WithInitialData[T any](v T) Option {
	return func(o *Options) { o.InitialData = v }
}

// OnSuccess is called with the data of every successful attempt.
func OnSuccess[T any](f func(T)) Option {
	return func(o *Options) { o.onSuccess = f }
}

// OnError is called with the error of every failed attempt, retries included.
func OnError(f func(error)) Option {
	return func(o *Options) { o.onError = f }
}

// OnSettled is called after OnSuccess or OnError.
func OnSettled[T any](f func(T, error)) Option {
	return func(o *Options) { o.onSettled = f }
}
