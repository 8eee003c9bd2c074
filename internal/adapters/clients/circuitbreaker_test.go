package clients

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fail(t *testing.T, cb *CircuitBreaker) {
	t.Helper()
	done, err := cb.Allow()
	require.NoError(t, err)
	done(false)
}

func succeed(t *testing.T, cb *CircuitBreaker) {
	t.Helper()
	done, err := cb.Allow()
	require.NoError(t, err)
	done(true)
}

func TestCircuitBreaker_ClosedToOpen(t *testing.T) {
	cb := NewCircuitBreaker("deepl", CircuitBreakerConfig{
		MaxFailures:   3,
		Timeout:       30 * time.Second,
		HalfOpenLimit: 2,
	}, nil)

	assert.Equal(t, StateClosed, cb.State())

	fail(t, cb)
	fail(t, cb)
	assert.Equal(t, StateClosed, cb.State())

	fail(t, cb)
	assert.Equal(t, StateOpen, cb.State())

	_, err := cb.Allow()
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Contains(t, err.Error(), "deepl")
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb := NewCircuitBreaker("google", CircuitBreakerConfig{
		MaxFailures:   3,
		Timeout:       30 * time.Second,
		HalfOpenLimit: 2,
	}, nil)

	fail(t, cb)
	fail(t, cb)
	succeed(t, cb)
	fail(t, cb)
	fail(t, cb)
	assert.Equal(t, StateClosed, cb.State())

	fail(t, cb)
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	var (
		mu          sync.Mutex
		transitions []string
	)

	cb := NewCircuitBreaker("mymemory", CircuitBreakerConfig{
		MaxFailures:   1,
		Timeout:       50 * time.Millisecond,
		HalfOpenLimit: 2,
	}, func(from, to State) {
		mu.Lock()
		defer mu.Unlock()
		transitions = append(transitions, from.String()+"->"+to.String())
	})

	fail(t, cb)
	assert.Equal(t, StateOpen, cb.State())

	time.Sleep(70 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, cb.State())

	succeed(t, cb)
	assert.Equal(t, StateHalfOpen, cb.State())
	succeed(t, cb)
	assert.Equal(t, StateClosed, cb.State())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"closed->open", "open->half-open", "half-open->closed"}, transitions)
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("libretranslate", CircuitBreakerConfig{
		MaxFailures:   1,
		Timeout:       50 * time.Millisecond,
		HalfOpenLimit: 1,
	}, nil)

	fail(t, cb)
	time.Sleep(70 * time.Millisecond)

	fail(t, cb)
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_Execute(t *testing.T) {
	cb := NewCircuitBreaker("openai", CircuitBreakerConfig{
		MaxFailures:   2,
		Timeout:       time.Minute,
		HalfOpenLimit: 1,
	}, nil)

	boom := errors.New("boom")
	ctx := context.Background()

	require.NoError(t, cb.Execute(ctx, func(context.Context) error { return nil }))

	// cancellation does not count against the provider
	require.ErrorIs(t, cb.Execute(ctx, func(context.Context) error { return context.Canceled }), context.Canceled)
	require.ErrorIs(t, cb.Execute(ctx, func(context.Context) error { return context.Canceled }), context.Canceled)
	assert.Equal(t, StateClosed, cb.State())

	require.ErrorIs(t, cb.Execute(ctx, func(context.Context) error { return boom }), boom)
	require.ErrorIs(t, cb.Execute(ctx, func(context.Context) error { return boom }), boom)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(ctx, func(context.Context) error { called = true; return nil })
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}
