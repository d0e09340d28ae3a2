package pipeline

import "errors"

var (
	// ErrRegistryRequired is returned when a nil registry is passed to a
	// constructor.
	ErrRegistryRequired = errors.New("registry is required")

	// ErrIndexRequired is returned when clustering is requested without a
	// similarity index.
	ErrIndexRequired = errors.New("similarity index is required")

	// ErrOrchestratorRequired is returned when a nil orchestrator is passed
	// to the batch scheduler.
	ErrOrchestratorRequired = errors.New("orchestrator is required")
)
