package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corelens/rca-engine/internal/apierrors"
)

type fakeProvider struct {
	err      error
	calls    int
	errsLeft int
}

func (f *fakeProvider) Chat(ctx context.Context, systemPrompt string, messages []Message, tools []ToolDefinition) (*Response, error) {
	f.calls++
	if f.errsLeft > 0 {
		f.errsLeft--
		return nil, f.err
	}
	return &Response{Content: "ok"}, nil
}
func (f *fakeProvider) Name() string  { return "fake" }
func (f *fakeProvider) Model() string { return "fake-model" }

func TestCircuitBreaker_TripsAfterThreshold(t *testing.T) {
	fp := &fakeProvider{err: errors.New("boom"), errsLeft: 100}
	cb := NewCircuitBreaker(fp, CircuitConfig{FailureThreshold: 3, ResetTimeout: time.Hour})

	for i := 0; i < 3; i++ {
		_, err := cb.Chat(context.Background(), "", nil, nil)
		require.Error(t, err)
	}
	assert.Equal(t, CircuitStateOpen, cb.State())

	_, err := cb.Chat(context.Background(), "", nil, nil)
	require.Error(t, err)
	assert.True(t, apierrors.Is(err, apierrors.KindCircuitOpen))
	assert.Equal(t, 3, fp.calls) // the 4th call never reaches the inner provider
}

func TestCircuitBreaker_HalfOpenClosesAfterSuccesses(t *testing.T) {
	fp := &fakeProvider{err: errors.New("boom"), errsLeft: 2}
	cb := NewCircuitBreaker(fp, CircuitConfig{FailureThreshold: 2, SuccessThreshold: 2, ResetTimeout: time.Millisecond})

	for i := 0; i < 2; i++ {
		_, _ = cb.Chat(context.Background(), "", nil, nil)
	}
	assert.Equal(t, CircuitStateOpen, cb.State())

	time.Sleep(5 * time.Millisecond)
	for i := 0; i < 2; i++ {
		_, err := cb.Chat(context.Background(), "", nil, nil)
		require.NoError(t, err)
	}
	assert.Equal(t, CircuitStateClosed, cb.State())
}

func TestRetryingProvider_RetriesTimeoutThenSucceeds(t *testing.T) {
	fp := &fakeProvider{err: apierrors.New(apierrors.KindLLMTimeout, "timed out"), errsLeft: 2}
	rp := NewRetryingProvider(fp, 10*time.Second)

	resp, err := rp.Chat(context.Background(), "", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, 3, fp.calls)
}

func TestRetryingProvider_DoesNotRetryPermanentErrors(t *testing.T) {
	fp := &fakeProvider{err: apierrors.New(apierrors.KindValidation, "bad input"), errsLeft: 100}
	rp := NewRetryingProvider(fp, time.Second)

	_, err := rp.Chat(context.Background(), "", nil, nil)
	require.Error(t, err)
	assert.Equal(t, 1, fp.calls)
}

func TestRetryingProvider_StateDelegatesToWrappedBreaker(t *testing.T) {
	fp := &fakeProvider{err: errors.New("boom"), errsLeft: 100}
	cb := NewCircuitBreaker(fp, CircuitConfig{FailureThreshold: 1, ResetTimeout: time.Hour})
	rp := NewRetryingProvider(cb, time.Second)

	assert.Equal(t, CircuitStateClosed, rp.State())

	_, _ = rp.Chat(context.Background(), "", nil, nil)
	assert.Equal(t, CircuitStateOpen, rp.State())
}

func TestRetryingProvider_StateDefaultsToClosedWithoutABreaker(t *testing.T) {
	fp := &fakeProvider{}
	rp := NewRetryingProvider(fp, time.Second)
	assert.Equal(t, CircuitStateClosed, rp.State())
}
