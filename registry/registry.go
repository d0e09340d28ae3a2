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

package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ghanashyam9348/adeguard/ai"
	"github.com/ghanashyam9348/adeguard/core"
)

// Registry tracks the lifecycle state of every inference capability and
// gates access to the provider behind readiness checks.
type Registry struct {
	provider ai.Provider
	logger   *slog.Logger

	mu     sync.RWMutex
	states map[core.Capability]core.ModelStatus
}

// Option configures a Registry.
type Option func(*Registry) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger.With("component", "registry")
		return nil
	}
}

// New creates a registry over the given provider. All capabilities start
// unloaded.
func New(provider ai.Provider, opts ...Option) (*Registry, error) {
	if provider == nil {
		return nil, ErrProviderRequired
	}

	r := &Registry{
		provider: provider,
		logger:   slog.Default().With("component", "registry"),
		states:   make(map[core.Capability]core.ModelStatus, len(core.Capabilities)),
	}
	for _, capability := range core.Capabilities {
		r.states[capability] = core.ModelStatus{State: core.StateUnloaded}
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Load brings a capability to ready by probing the provider.
// It is idempotent when the capability is already ready. A failed probe
// leaves the capability failed with the error recorded; it never panics
// or propagates beyond the returned error.
func (r *Registry) Load(ctx context.Context, capability core.Capability) error {
	r.mu.Lock()
	status, ok := r.states[capability]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownCapability, capability)
	}
	switch status.State {
	case core.StateReady:
		r.mu.Unlock()
		return nil
	case core.StateLoading:
		r.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrLoadInProgress, capability)
	}
	r.states[capability] = core.ModelStatus{State: core.StateLoading}
	r.mu.Unlock()

	r.logger.Info("loading capability", "capability", capability)
	err := r.provider.Probe(ctx, capability)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.states[capability] = core.ModelStatus{
			State: core.StateFailed,
			Err:   err.Error(),
		}
		r.logger.Error("capability load failed", "capability", capability, "err", err)
		return fmt.Errorf("loading %q: %w", capability, err)
	}

	r.states[capability] = core.ModelStatus{
		State:    core.StateReady,
		Version:  r.provider.Version(capability),
		LoadedAt: time.Now().UTC(),
	}
	r.logger.Info("capability ready", "capability", capability, "version", r.states[capability].Version)
	return nil
}

// LoadAll loads every capability in parallel. Each capability settles to
// ready or failed independently; the returned error is the first load
// failure, if any.
func (r *Registry) LoadAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, capability := range core.Capabilities {
		g.Go(func() error {
			return r.Load(ctx, capability)
		})
	}
	return g.Wait()
}

// Status returns a non-blocking snapshot of the capability state.
func (r *Registry) Status(capability core.Capability) core.ModelStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.states[capability]
}

// StatusAll returns a snapshot of every capability state.
func (r *Registry) StatusAll() map[core.Capability]core.ModelStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[core.Capability]core.ModelStatus, len(r.states))
	for capability, status := range r.states {
		out[capability] = status
	}
	return out
}

// Unload returns a capability to unloaded. Unloading an unknown capability
// is an error; unloading an unloaded one is a no-op.
func (r *Registry) Unload(capability core.Capability) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.states[capability]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCapability, capability)
	}
	r.states[capability] = core.ModelStatus{State: core.StateUnloaded}
	r.logger.Info("capability unloaded", "capability", capability)
	return nil
}

// UnloadAll returns every capability to unloaded.
func (r *Registry) UnloadAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for capability := range r.states {
		r.states[capability] = core.ModelStatus{State: core.StateUnloaded}
	}
	r.logger.Info("all capabilities unloaded")
}

// MarkFailed administratively demotes a capability to failed. Used for
// runtime fault isolation when a ready capability starts erroring.
func (r *Registry) MarkFailed(capability core.Capability, cause error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.states[capability]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCapability, capability)
	}

	status := core.ModelStatus{State: core.StateFailed}
	if cause != nil {
		status.Err = cause.Error()
	}
	r.states[capability] = status
	r.logger.Warn("capability marked failed", "capability", capability, "err", status.Err)
	return nil
}

// ready reports whether the capability is in the ready state.
func (r *Registry) ready(capability core.Capability) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	status, ok := r.states[capability]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCapability, capability)
	}
	if status.State != core.StateReady {
		return fmt.Errorf("%w: %q is %s", core.ErrCapabilityUnavailable, capability, status.State)
	}
	return nil
}

// Extractor returns the entity extraction capability if it is ready.
func (r *Registry) Extractor() (ai.EntityExtractor, error) {
	if err := r.ready(core.CapabilityExtractor); err != nil {
		return nil, err
	}
	return r.provider.Extractor(), nil
}

// Classifier returns the severity classification capability if it is ready.
func (r *Registry) Classifier() (ai.SeverityClassifier, error) {
	if err := r.ready(core.CapabilityClassifier); err != nil {
		return nil, err
	}
	return r.provider.Classifier(), nil
}

// Encoder returns the similarity encoding capability if it is ready.
func (r *Registry) Encoder() (ai.Encoder, error) {
	if err := r.ready(core.CapabilityEncoder); err != nil {
		return nil, err
	}
	return r.provider.Encoder(), nil
}

// Explainer returns the additive explanation capability if it is ready.
func (r *Registry) Explainer() (ai.Explainer, error) {
	if err := r.ready(core.CapabilityExplainer); err != nil {
		return nil, err
	}
	return r.provider.Explainer(), nil
}

// Version reports the loaded model version for the capability, or the
// empty string when it is not ready.
func (r *Registry) Version(capability core.Capability) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.states[capability].Version
}
