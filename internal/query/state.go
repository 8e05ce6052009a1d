package query

import (
	"fmt"
	"time"
)

// Status is where a consumer is in its fetch lifecycle.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText renders the status name in JSON payloads.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// State is a consumer's private view of its query. It can lag behind the
// shared store until the consumer's next read.
type State[T any] struct {
	Data T
	// HasData is false until data was seeded, adopted from the store or fetched.
	HasData    bool
	Err        error
	Status     Status
	IsFetching bool
	// UpdatedAt is when Data was last replaced.
	UpdatedAt time.Time
}

func (s State[T]) IsLoading() bool { return s.Status == StatusLoading }
func (s State[T]) IsSuccess() bool { return s.Status == StatusSuccess }
func (s State[T]) IsError() bool   { return s.Status == StatusError }
