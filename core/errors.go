// Copyright 2025 ADEGuard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"errors"
	"fmt"
)

// Error taxonomy for the orchestration engine.
var (
	// ErrInvalidReport indicates a Report failed validation.
	ErrInvalidReport = errors.New("invalid report")

	// ErrEmptyText indicates the report text is empty or whitespace-only.
	ErrEmptyText = errors.New("report text cannot be empty")

	// ErrInvalidPatientAge indicates a patient age outside the accepted range.
	ErrInvalidPatientAge = errors.New("patient age out of range")

	// ErrCapabilityUnavailable indicates a model is not in the ready state.
	// Stages translate this into a skip or fallback, never a hard failure.
	ErrCapabilityUnavailable = errors.New("capability unavailable")

	// ErrInferenceTimeout indicates a stage exceeded its deadline.
	ErrInferenceTimeout = errors.New("inference timed out")

	// ErrInternal wraps unexpected faults inside a stage. They are caught at
	// the stage boundary and never propagate to sibling stages or batch items.
	ErrInternal = errors.New("internal stage error")
)

// ValidationError reports malformed input. It is raised before any stage
// runs and is the only failure surfaced to callers as an error rather than
// a degraded result.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrInvalidReport, e.Field, e.Reason)
}

// Unwrap allows errors.Is(err, ErrInvalidReport) checks.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidReport
}
