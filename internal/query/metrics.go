package query

import "time"

// Metrics receives fetch lifecycle events.
type Metrics interface {
	FetchStarted()
	FetchSucceeded(elapsed time.Duration)
	FetchFailed()
	RetryScheduled()
}

// NoopMetrics ignores every event.
type NoopMetrics struct{}

func (NoopMetrics) FetchStarted()                {}
func (NoopMetrics) FetchSucceeded(time.Duration) {}
func (NoopMetrics) FetchFailed()                 {}
func (NoopMetrics) RetryScheduled()              {}
