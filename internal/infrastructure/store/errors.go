package store

import "errors"

var (
	// ErrNilEvent is returned when Append receives a nil event.
	ErrNilEvent = errors.New("event must not be nil")

	// ErrNilState is returned when Upsert receives a nil state.
	ErrNilState = errors.New("state must not be nil")

	// ErrMissingAggregateID is returned when Upsert receives a state without
	// an aggregate id.
	ErrMissingAggregateID = errors.New("aggregate id must not be empty")

	// ErrVersionConflict is returned when a snapshot save loses an optimistic
	// concurrency race. The store never retries; callers may.
	ErrVersionConflict = errors.New("snapshot version conflict")
)
