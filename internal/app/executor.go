package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/platform/logging"
)

// Writes that touch history or stored audio run as a five-step pipeline:
//
//	validate -> perform -> verify -> archive -> respond
//
// Nothing is archived until the provider result has been verified, so a
// provider that returns an empty or malformed result never reaches storage.

// Step names a stage of the pipeline.
type Step string

const (
	StepValidate Step = "validate"
	StepPerform  Step = "perform"
	StepVerify   Step = "verify"
	StepArchive  Step = "archive"
	StepRespond  Step = "respond"
)

// ExecutionError records the step at which an operation stopped.
type ExecutionError struct {
	Op    string
	Step  Step
	Cause error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Op, e.Step, e.Cause)
}

// Unwrap exposes the cause so domain errors survive the pipeline.
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// FailedStep returns the step recorded in err, if any.
func FailedStep(err error) (Step, bool) {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Step, true
	}

	return "", false
}

// Executor runs operations and logs each step.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor creates an executor. A nil logger uses slog.Default.
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{logger: logger}
}

// Operation is the set of steps for one use case. Nil steps are skipped;
// a nil Verify passes the performed value through when P and V match.
type Operation[I, P, V, O any] struct {
	Name     string
	Validate func(ctx context.Context, in I) (I, error)
	Perform  func(ctx context.Context, in I) (P, error)
	Verify   func(ctx context.Context, in I, performed P) (V, error)
	Archive  func(ctx context.Context, in I, verified V) error
	Respond  func(ctx context.Context, in I, verified V) (O, error)
}

// Execute runs op on in.
func Execute[I, P, V, O any](ctx context.Context, exec *Executor, op Operation[I, P, V, O], in I) (O, error) {
	var zero O

	logger := loggerFor(ctx, exec.logger).With(slog.String("operation", op.Name))
	start := time.Now()

	fail := func(step Step, err error) (O, error) {
		level := slog.LevelError
		if step == StepValidate {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "operation step failed", slog.String("step", string(step)), slog.Any("error", err))

		return zero, &ExecutionError{Op: op.Name, Step: step, Cause: err}
	}

	if op.Validate != nil {
		validated, err := op.Validate(ctx, in)
		if err != nil {
			return fail(StepValidate, err)
		}
		in = validated
	}

	var performed P
	if op.Perform != nil {
		var err error
		if performed, err = op.Perform(ctx, in); err != nil {
			return fail(StepPerform, err)
		}
	}

	var verified V
	switch {
	case op.Verify != nil:
		var err error
		if verified, err = op.Verify(ctx, in, performed); err != nil {
			return fail(StepVerify, err)
		}
	default:
		v, ok := any(performed).(V)
		if !ok {
			return fail(StepVerify, errors.New("no verify step and performed value has a different type"))
		}
		verified = v
	}

	if op.Archive != nil {
		if err := op.Archive(ctx, in, verified); err != nil {
			return fail(StepArchive, err)
		}
	}

	var out O
	if op.Respond != nil {
		var err error
		if out, err = op.Respond(ctx, in, verified); err != nil {
			return fail(StepRespond, err)
		}
	}

	logger.DebugContext(ctx, "operation completed", slog.Duration("duration", time.Since(start)))

	return out, nil
}

// loggerFor prefers the request logger carried by ctx.
func loggerFor(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := logging.Lookup(ctx); ok {
		return logger
	}

	return fallback
}
