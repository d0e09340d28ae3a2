package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghanashyam9348/adeguard/ai/mock"
	"github.com/ghanashyam9348/adeguard/core"
)

func TestNewRequiresProvider(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrProviderRequired)
}

func TestLoadTransitionsToReady(t *testing.T) {
	provider := mock.NewMockProvider()
	reg, err := New(provider)
	require.NoError(t, err)

	status := reg.Status(core.CapabilityClassifier)
	assert.Equal(t, core.StateUnloaded, status.State)

	require.NoError(t, reg.Load(context.Background(), core.CapabilityClassifier))

	status = reg.Status(core.CapabilityClassifier)
	assert.Equal(t, core.StateReady, status.State)
	assert.Equal(t, "mock-severity_classifier-v1", status.Version)
	assert.False(t, status.LoadedAt.IsZero())
	assert.Empty(t, status.Err)
}

func TestLoadIsIdempotentWhenReady(t *testing.T) {
	provider := mock.NewMockProvider()
	reg, err := New(provider)
	require.NoError(t, err)

	require.NoError(t, reg.Load(context.Background(), core.CapabilityEncoder))
	first := reg.Status(core.CapabilityEncoder)

	require.NoError(t, reg.Load(context.Background(), core.CapabilityEncoder))
	second := reg.Status(core.CapabilityEncoder)

	assert.Equal(t, first.LoadedAt, second.LoadedAt)
}

func TestLoadFailureStaysIsolated(t *testing.T) {
	provider := mock.NewMockProvider()
	probeErr := errors.New("model file corrupt")
	provider.ProbeFunc = func(ctx context.Context, capability core.Capability) error {
		if capability == core.CapabilityExtractor {
			return probeErr
		}
		return nil
	}

	reg, err := New(provider)
	require.NoError(t, err)

	err = reg.Load(context.Background(), core.CapabilityExtractor)
	assert.ErrorIs(t, err, probeErr)

	status := reg.Status(core.CapabilityExtractor)
	assert.Equal(t, core.StateFailed, status.State)
	assert.Contains(t, status.Err, "model file corrupt")

	// Other capabilities are unaffected.
	require.NoError(t, reg.Load(context.Background(), core.CapabilityClassifier))
	assert.Equal(t, core.StateReady, reg.Status(core.CapabilityClassifier).State)
}

func TestLoadUnknownCapability(t *testing.T) {
	reg, err := New(mock.NewMockProvider())
	require.NoError(t, err)

	err = reg.Load(context.Background(), core.Capability("sentiment"))
	assert.ErrorIs(t, err, ErrUnknownCapability)
}

func TestLoadAll(t *testing.T) {
	reg, err := New(mock.NewMockProvider())
	require.NoError(t, err)

	require.NoError(t, reg.LoadAll(context.Background()))

	all := reg.StatusAll()
	require.Len(t, all, len(core.Capabilities))
	for capability, status := range all {
		assert.Equal(t, core.StateReady, status.State, "capability %s", capability)
	}
}

func TestLoadAllPartialFailure(t *testing.T) {
	provider := mock.NewMockProvider()
	provider.ProbeFunc = func(ctx context.Context, capability core.Capability) error {
		if capability == core.CapabilityExplainer {
			return errors.New("explainer backend down")
		}
		return nil
	}

	reg, err := New(provider)
	require.NoError(t, err)

	err = reg.LoadAll(context.Background())
	assert.Error(t, err)

	assert.Equal(t, core.StateFailed, reg.Status(core.CapabilityExplainer).State)
	assert.Equal(t, core.StateReady, reg.Status(core.CapabilityClassifier).State)
	assert.Equal(t, core.StateReady, reg.Status(core.CapabilityEncoder).State)
}

func TestUnload(t *testing.T) {
	reg, err := New(mock.NewMockProvider())
	require.NoError(t, err)

	require.NoError(t, reg.Load(context.Background(), core.CapabilityEncoder))
	require.NoError(t, reg.Unload(core.CapabilityEncoder))
	assert.Equal(t, core.StateUnloaded, reg.Status(core.CapabilityEncoder).State)

	// Unloading an unloaded capability is a no-op.
	require.NoError(t, reg.Unload(core.CapabilityEncoder))

	assert.ErrorIs(t, reg.Unload(core.Capability("bogus")), ErrUnknownCapability)
}

func TestUnloadAll(t *testing.T) {
	reg, err := New(mock.NewMockProvider())
	require.NoError(t, err)

	require.NoError(t, reg.LoadAll(context.Background()))
	reg.UnloadAll()

	for _, capability := range core.Capabilities {
		assert.Equal(t, core.StateUnloaded, reg.Status(capability).State)
	}
}

func TestMarkFailed(t *testing.T) {
	reg, err := New(mock.NewMockProvider())
	require.NoError(t, err)

	require.NoError(t, reg.Load(context.Background(), core.CapabilityClassifier))
	require.NoError(t, reg.MarkFailed(core.CapabilityClassifier, errors.New("repeated inference errors")))

	status := reg.Status(core.CapabilityClassifier)
	assert.Equal(t, core.StateFailed, status.State)
	assert.Contains(t, status.Err, "repeated inference errors")

	_, err = reg.Classifier()
	assert.ErrorIs(t, err, core.ErrCapabilityUnavailable)
}

func TestGatedAccessors(t *testing.T) {
	reg, err := New(mock.NewMockProvider())
	require.NoError(t, err)

	// Not ready yet: every accessor reports unavailable.
	_, err = reg.Extractor()
	assert.ErrorIs(t, err, core.ErrCapabilityUnavailable)
	_, err = reg.Classifier()
	assert.ErrorIs(t, err, core.ErrCapabilityUnavailable)
	_, err = reg.Encoder()
	assert.ErrorIs(t, err, core.ErrCapabilityUnavailable)
	_, err = reg.Explainer()
	assert.ErrorIs(t, err, core.ErrCapabilityUnavailable)

	require.NoError(t, reg.LoadAll(context.Background()))

	extractor, err := reg.Extractor()
	require.NoError(t, err)
	assert.NotNil(t, extractor)

	classifier, err := reg.Classifier()
	require.NoError(t, err)
	assert.NotNil(t, classifier)

	encoder, err := reg.Encoder()
	require.NoError(t, err)
	assert.NotNil(t, encoder)

	explainer, err := reg.Explainer()
	require.NoError(t, err)
	assert.NotNil(t, explainer)
}

func TestVersion(t *testing.T) {
	reg, err := New(mock.NewMockProvider())
	require.NoError(t, err)

	assert.Empty(t, reg.Version(core.CapabilityEncoder))

	require.NoError(t, reg.Load(context.Background(), core.CapabilityEncoder))
	assert.Equal(t, "mock-similarity_encoder-v1", reg.Version(core.CapabilityEncoder))
}
