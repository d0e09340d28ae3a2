package registry

import "errors"

var (
	// ErrProviderRequired is returned when a nil provider is passed to New.
	ErrProviderRequired = errors.New("ai provider is required")

	// ErrUnknownCapability is returned for capabilities outside the known set.
	ErrUnknownCapability = errors.New("unknown capability")

	// ErrLoadInProgress is returned when a load is requested for a capability
	// that another goroutine is already loading.
	ErrLoadInProgress = errors.New("capability load already in progress")
)
