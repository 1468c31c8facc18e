package llm

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/corelens/rca-engine/internal/apierrors"
)

// RetryingProvider wraps a Provider with exponential backoff, retrying
// transient failures (timeouts, rate limiting) up to MaxElapsedTime.
type RetryingProvider struct {
	inner          Provider
	maxElapsedTime time.Duration
}

// NewRetryingProvider wraps inner with the default backoff policy.
// maxElapsedTime of zero falls back to 30s.
func NewRetryingProvider(inner Provider, maxElapsedTime time.Duration) *RetryingProvider {
	if maxElapsedTime == 0 {
		maxElapsedTime = 30 * time.Second
	}
	return &RetryingProvider{inner: inner, maxElapsedTime: maxElapsedTime}
}

// Chat implements Provider, retrying on KindLLMTimeout/KindLLMRateLimit
// errors from the wrapped provider.
func (p *RetryingProvider) Chat(ctx context.Context, systemPrompt string, messages []Message, tools []ToolDefinition) (*Response, error) {
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = p.maxElapsedTime

	var resp *Response
	err := backoff.Retry(func() error {
		var chatErr error
		resp, chatErr = p.inner.Chat(ctx, systemPrompt, messages, tools)
		if chatErr == nil {
			return nil
		}
		if apierrors.Is(chatErr, apierrors.KindLLMTimeout) || apierrors.Is(chatErr, apierrors.KindLLMRateLimit) {
			return chatErr
		}
		return backoff.Permanent(chatErr)
	}, backoff.WithContext(policy, ctx))

	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Name implements Provider.
func (p *RetryingProvider) Name() string { return p.inner.Name() }

// Model implements Provider.
func (p *RetryingProvider) Model() string { return p.inner.Model() }

// State reports the wrapped circuit breaker's state, or
// CircuitStateClosed if inner isn't a *CircuitBreaker.
func (p *RetryingProvider) State() CircuitState {
	if cb, ok := p.inner.(*CircuitBreaker); ok {
		return cb.State()
	}
	return CircuitStateClosed
}
