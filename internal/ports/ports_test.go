package ports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	name     string
	err      error
	optional bool
}

func (s *stubChecker) Name() string                  { return s.name }
func (s *stubChecker) Check(_ context.Context) error { return s.err }
func (s *stubChecker) Optional() bool                { return s.optional }

type slowChecker struct{ name string }

func (c *slowChecker) Name() string { return c.name }

func (c *slowChecker) Check(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

func TestRegister_DuplicateName(t *testing.T) {
	registry := NewHealthRegistry()

	require.NoError(t, registry.Register(&stubChecker{name: "storage"}))

	err := registry.Register(&stubChecker{name: "storage"})
	require.ErrorIs(t, err, ErrDuplicateChecker)
	assert.Contains(t, err.Error(), "storage")
	assert.Len(t, registry.checkers, 1)
}

func TestCheckAll_NoCheckers(t *testing.T) {
	result := NewHealthRegistry().CheckAll(context.Background())

	assert.Equal(t, HealthStatusHealthy, result.Status)
	assert.Empty(t, result.Checks)
	assert.False(t, result.Timestamp.IsZero())
}

func TestCheckAll_Statuses(t *testing.T) {
	tests := []struct {
		name     string
		checkers []*stubChecker
		want     HealthStatus
	}{
		{
			name: "all healthy",
			checkers: []*stubChecker{
				{name: "storage"},
				{name: "google", optional: true},
			},
			want: HealthStatusHealthy,
		},
		{
			name: "optional provider down degrades",
			checkers: []*stubChecker{
				{name: "storage"},
				{name: "deepl", optional: true, err: errors.New("401")},
			},
			want: HealthStatusDegraded,
		},
		{
			name: "required component down is unhealthy",
			checkers: []*stubChecker{
				{name: "storage", err: errors.New("connection refused")},
				{name: "deepl", optional: true, err: errors.New("401")},
			},
			want: HealthStatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewHealthRegistry()
			for _, c := range tt.checkers {
				require.NoError(t, registry.Register(c))
			}

			result := registry.CheckAll(context.Background())

			assert.Equal(t, tt.want, result.Status)
			require.Len(t, result.Checks, len(tt.checkers))
			for _, c := range tt.checkers {
				cr := result.Checks[c.name]
				require.NotNil(t, cr)
				assert.Equal(t, c.optional, cr.Optional)
				if c.err != nil {
					assert.Equal(t, HealthStatusUnhealthy, cr.Status)
					assert.Equal(t, c.err.Error(), cr.Message)
				}
			}
		})
	}
}

func TestCheckAll_ContextCancelled(t *testing.T) {
	registry := NewHealthRegistry()
	require.NoError(t, registry.Register(&slowChecker{name: "minio"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := registry.CheckAll(ctx)

	assert.Equal(t, HealthStatusUnhealthy, result.Status)
	assert.Contains(t, result.Checks["minio"].Message, "context canceled")
}

func TestHistoryCursor_Admits(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cursor := &HistoryCursor{CreatedAt: base, ID: "m"}

	tests := []struct {
		name      string
		createdAt time.Time
		id        string
		want      bool
	}{
		{"older record", base.Add(-time.Second), "z", true},
		{"newer record", base.Add(time.Second), "a", false},
		{"same time lower id", base, "a", true},
		{"same time same id", base, "m", false},
		{"same time higher id", base, "z", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cursor.Admits(tt.createdAt, tt.id))
		})
	}

	var none *HistoryCursor
	assert.True(t, none.Admits(base, "x"))
}
