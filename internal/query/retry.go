package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RetryPolicy bounds how many extra attempts follow a failed fetch.
type RetryPolicy struct {
	max       int
	unlimited bool
}

// Retry allows up to n additional attempts after the first one fails.
// Negative values are treated as zero.
func Retry(n int) RetryPolicy {
	if n < 0 {
		n = 0
	}
	return RetryPolicy{max: n}
}

// RetryForever retries every failure.
func RetryForever() RetryPolicy { return RetryPolicy{unlimited: true} }

// NoRetry disables retries.
func NoRetry() RetryPolicy { return RetryPolicy{} }

// Allows reports whether another attempt may follow once attempts retries
// have already been scheduled.
func (p RetryPolicy) Allows(attempts int) bool {
	return p.unlimited || attempts < p.max
}

// Delay returns the wait before retry n (1-based): unit * n.
func (p RetryPolicy) Delay(unit time.Duration, n int) time.Duration {
	return unit * time.Duration(n)
}

func (p RetryPolicy) String() string {
	switch {
	case p.unlimited:
		return "true"
	case p.max == 0:
		return "false"
	default:
		return strconv.Itoa(p.max)
	}
}

// ParseRetry reads "true" (retry forever), "false" (never) or a
// non-negative count.
func ParseRetry(s string) (RetryPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return RetryForever(), nil
	case "false":
		return NoRetry(), nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return RetryPolicy{}, fmt.Errorf("%w: %q", ErrInvalidRetry, s)
	}
	return Retry(n), nil
}
