package clients

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// State is the circuit breaker state.
type State = gobreaker.State

// Circuit breaker states.
const (
	StateClosed   = gobreaker.StateClosed
	StateHalfOpen = gobreaker.StateHalfOpen
	StateOpen     = gobreaker.StateOpen
)

// CircuitBreakerConfig configures the circuit breaker behavior.
type CircuitBreakerConfig struct {
	// MaxFailures is the number of consecutive failures before the circuit opens.
	MaxFailures int

	// Timeout is how long the circuit stays open before probing again.
	Timeout time.Duration

	// HalfOpenLimit is the number of successful probes that close the circuit.
	HalfOpenLimit int
}

// CircuitBreaker guards one upstream provider.
//
//   - Closed → Open: after MaxFailures consecutive failures
//   - Open → HalfOpen: after Timeout
//   - HalfOpen → Closed: after HalfOpenLimit consecutive successes
//   - HalfOpen → Open: on any failure
type CircuitBreaker struct {
	tscb *gobreaker.TwoStepCircuitBreaker
}

// NewCircuitBreaker creates a breaker named after the provider it protects.
// onStateChange may be nil.
func NewCircuitBreaker(name string, cfg CircuitBreakerConfig, onStateChange func(from, to State)) *CircuitBreaker {
	maxFailures := uint32(max(cfg.MaxFailures, 1))

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: uint32(max(cfg.HalfOpenLimit, 1)),
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= maxFailures
		},
	}
	if onStateChange != nil {
		settings.OnStateChange = func(_ string, from, to gobreaker.State) {
			onStateChange(from, to)
		}
	}

	return &CircuitBreaker{tscb: gobreaker.NewTwoStepCircuitBreaker(settings)}
}

// Allow reserves a request slot. The caller must report the outcome through done.
// Returns ErrCircuitOpen when the request is rejected.
func (cb *CircuitBreaker) Allow() (done func(success bool), err error) {
	done, err = cb.tscb.Allow()
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %s", ErrCircuitOpen, cb.tscb.Name())
		}
		return nil, err
	}
	return done, nil
}

// Execute runs fn when the circuit allows it and records the outcome.
// Context cancellation is not counted as a provider failure.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	done, err := cb.Allow()
	if err != nil {
		return err
	}

	err = fn(ctx)
	done(err == nil || errors.Is(err, context.Canceled))

	return err
}

// State returns the current state.
func (cb *CircuitBreaker) State() State {
	return cb.tscb.State()
}
