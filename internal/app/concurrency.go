package app

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Parallel2 runs both functions concurrently. The first error cancels the
// other and is returned.
func Parallel2[T1, T2 any](
	ctx context.Context,
	fn1 func(context.Context) (T1, error),
	fn2 func(context.Context) (T2, error),
) (T1, T2, error) {
	var (
		r1 T1
		r2 T2
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		r1, err = fn1(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		r2, err = fn2(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		var (
			zero1 T1
			zero2 T2
		)
		return zero1, zero2, fmt.Errorf("parallel execution failed: %w", err)
	}

	return r1, r2, nil
}

// PartialResult holds one outcome of a fan-out.
type PartialResult[T any] struct {
	Value T
	Err   error
}

// ParallelPartial runs every function to completion and keeps each outcome
// at its input index. One failure does not cancel the others.
func ParallelPartial[T any](ctx context.Context, fns ...func(context.Context) (T, error)) []PartialResult[T] {
	return ParallelPartialLimit(ctx, len(fns), fns...)
}

// ParallelPartialLimit is ParallelPartial with at most limit functions in
// flight. A limit below one runs them one at a time.
func ParallelPartialLimit[T any](ctx context.Context, limit int, fns ...func(context.Context) (T, error)) []PartialResult[T] {
	results := make([]PartialResult[T], len(fns))
	if limit < 1 {
		limit = 1
	}
	sem := make(chan struct{}, limit)

	var wg sync.WaitGroup

	for i, fn := range fns {
		wg.Go(func() {
			sem <- struct{}{}
			defer func() { <-sem }()

			value, err := fn(ctx)
			results[i] = PartialResult[T]{Value: value, Err: err}
		})
	}

	wg.Wait()

	return results
}
