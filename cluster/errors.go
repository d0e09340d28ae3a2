package cluster

import "errors"

var (
	// ErrEmptyVector is returned when an empty or zero-length vector is
	// inserted into the index.
	ErrEmptyVector = errors.New("empty vector")

	// ErrUnknownID is returned when querying an ID the index has never seen.
	ErrUnknownID = errors.New("unknown report id")
)
