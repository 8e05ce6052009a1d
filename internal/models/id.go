package models

import "github.com/oklog/ulid/v2"

// NewID returns a lexically sortable identifier.
func NewID() string {
	return ulid.Make().String()
}
