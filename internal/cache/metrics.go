package cache

// Metrics receives store events. Implementations must be cheap; they run
// on every read.
type Metrics interface {
	Hit()
	Miss()
	Write()
	StaleDiscard()
	Evict(n int)
}

// NoopMetrics ignores every event.
type NoopMetrics struct{}

func (NoopMetrics) Hit()          {}
func (NoopMetrics) Miss()         {}
func (NoopMetrics) Write()        {}
func (NoopMetrics) StaleDiscard() {}
func (NoopMetrics) Evict(int)     {}
