package llm

import (
	"context"
	"sync"
	"time"

	"github.com/corelens/rca-engine/internal/apierrors"
)

// CircuitState is the state of a CircuitBreaker.
type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitConfig tunes a CircuitBreaker's trip and recovery behavior.
type CircuitConfig struct {
	FailureThreshold int           // consecutive failures before tripping to open
	SuccessThreshold int           // consecutive half-open successes before closing
	ResetTimeout     time.Duration // time open before probing with a half-open call
}

func (c CircuitConfig) withDefaults() CircuitConfig {
	if c.FailureThreshold == 0 {
		c.FailureThreshold = 5
	}
	if c.SuccessThreshold == 0 {
		c.SuccessThreshold = 2
	}
	if c.ResetTimeout == 0 {
		c.ResetTimeout = 30 * time.Second
	}
	return c
}

// CircuitBreaker wraps a Provider, tripping open after a run of
// consecutive failures and refusing calls (KindCircuitOpen) until the
// reset timeout elapses. It then goes half-open: any failure re-opens
// it, and SuccessThreshold consecutive successes close it.
type CircuitBreaker struct {
	inner  Provider
	config CircuitConfig

	mu           sync.Mutex
	state        CircuitState
	failureCount int
	successCount int
	stateChanged time.Time
}

// NewCircuitBreaker wraps inner with cfg, starting closed.
func NewCircuitBreaker(inner Provider, cfg CircuitConfig) *CircuitBreaker {
	return &CircuitBreaker{
		inner:        inner,
		config:       cfg.withDefaults(),
		state:        CircuitStateClosed,
		stateChanged: time.Now(),
	}
}

// State reports the breaker's current state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Chat implements Provider, gating calls through the breaker's state
// machine.
func (cb *CircuitBreaker) Chat(ctx context.Context, systemPrompt string, messages []Message, tools []ToolDefinition) (*Response, error) {
	if !cb.allow() {
		return nil, apierrors.New(apierrors.KindCircuitOpen, "llm: circuit open for provider %q", cb.inner.Name())
	}

	resp, err := cb.inner.Chat(ctx, systemPrompt, messages, tools)
	cb.record(err == nil)
	return resp, err
}

// Name implements Provider.
func (cb *CircuitBreaker) Name() string { return cb.inner.Name() }

// Model implements Provider.
func (cb *CircuitBreaker) Model() string { return cb.inner.Model() }

func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitStateClosed:
		return true
	case CircuitStateOpen:
		if time.Since(cb.stateChanged) >= cb.config.ResetTimeout {
			cb.transition(CircuitStateHalfOpen)
			return true
		}
		return false
	case CircuitStateHalfOpen:
		return true
	default:
		return true
	}
}

func (cb *CircuitBreaker) record(success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitStateClosed:
		if success {
			cb.failureCount = 0
			return
		}
		cb.failureCount++
		if cb.failureCount >= cb.config.FailureThreshold {
			cb.transition(CircuitStateOpen)
		}
	case CircuitStateHalfOpen:
		if !success {
			cb.transition(CircuitStateOpen)
			return
		}
		cb.successCount++
		if cb.successCount >= cb.config.SuccessThreshold {
			cb.transition(CircuitStateClosed)
		}
	}
}

// transition must be called with cb.mu held.
func (cb *CircuitBreaker) transition(next CircuitState) {
	cb.state = next
	cb.stateChanged = time.Now()
	cb.failureCount = 0
	cb.successCount = 0
}
