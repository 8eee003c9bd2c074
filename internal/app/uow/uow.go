package uow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/platform/logging"
)

// ErrAlreadyCommitted is returned when adding to or committing a unit that
// has already been committed.
var ErrAlreadyCommitted = errors.New("unit of work already committed")

// Action is a staged write.
type Action interface {
	Execute(ctx context.Context) error
	// Rollback undoes Execute. It is only called after Execute succeeded.
	Rollback(ctx context.Context) error
	Description() string
}

// Func adapts plain functions to Action. Undo may be nil.
type Func struct {
	Desc string
	Do   func(ctx context.Context) error
	Undo func(ctx context.Context) error
}

// Execute implements Action.
func (f Func) Execute(ctx context.Context) error { return f.Do(ctx) }

// Rollback implements Action.
func (f Func) Rollback(ctx context.Context) error {
	if f.Undo == nil {
		return nil
	}
	return f.Undo(ctx)
}

// Description implements Action.
func (f Func) Description() string { return f.Desc }

// Unit collects actions until Commit.
type Unit struct {
	mu        sync.Mutex
	actions   []Action
	committed bool
}

// New creates an empty unit.
func New() *Unit {
	return &Unit{}
}

// Add stages an action.
func (u *Unit) Add(action Action) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.committed {
		return ErrAlreadyCommitted
	}

	u.actions = append(u.actions, action)
	return nil
}

// Commit executes the staged actions in order. On failure the executed ones
// are rolled back in reverse order and the unit stays uncommitted.
func (u *Unit) Commit(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.committed {
		return ErrAlreadyCommitted
	}

	for i, action := range u.actions {
		if err := action.Execute(ctx); err != nil {
			u.rollback(ctx, u.actions[:i])
			return fmt.Errorf("action %q failed: %w", action.Description(), err)
		}
	}

	u.committed = true
	return nil
}

// Actions returns a copy of the staged actions.
func (u *Unit) Actions() []Action {
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make([]Action, len(u.actions))
	copy(out, u.actions)
	return out
}

func (u *Unit) rollback(ctx context.Context, executed []Action) {
	// Rollback must still run when the request context was what failed.
	ctx = context.WithoutCancel(ctx)

	for i := len(executed) - 1; i >= 0; i-- {
		if err := executed[i].Rollback(ctx); err != nil {
			logging.FromContext(ctx).WarnContext(ctx, "rollback failed",
				slog.String("action", executed[i].Description()),
				slog.Any("error", err),
			)
		}
	}
}
