package query

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidKey     = errors.New("query key cannot be empty")
	ErrNilFetcher     = errors.New("query fetcher cannot be nil")
	ErrConsumerClosed = errors.New("query consumer is closed")
	ErrInvalidRetry   = errors.New("retry must be true, false or a non-negative count")
	ErrFetchPanic     = errors.New("fetch panicked")
)

// panicError normalizes a recovered panic value into an error. Values that
// already are errors stay reachable through errors.Is/As.
func panicError(v any) error {
	if err, ok := v.(error); ok {
		return fmt.Errorf("%w: %w", ErrFetchPanic, err)
	}
	return fmt.Errorf("%w: %v", ErrFetchPanic, v)
}
