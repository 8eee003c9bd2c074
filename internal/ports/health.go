package ports

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrDuplicateChecker is returned when a checker name is registered twice.
var ErrDuplicateChecker = errors.New("duplicate health checker")

// HealthChecker is implemented by components that can report their health.
// Storage, audio stores, and translation providers register at startup.
type HealthChecker interface {
	// Name identifies the component in health responses.
	Name() string

	// Check returns nil when the component is healthy.
	Check(ctx context.Context) error
}

// OptionalChecker marks a checker whose failure degrades the service
// instead of making it unhealthy. Translation providers are optional
// because the fallback chain covers a single outage.
type OptionalChecker interface {
	Optional() bool
}

// HealthRegistry aggregates health checks from multiple components.
type HealthRegistry interface {
	Register(checker HealthChecker) error
	CheckAll(ctx context.Context) *HealthResult
}

// HealthStatus represents the overall health state.
type HealthStatus string

const (
	// HealthStatusHealthy indicates all checks passed.
	HealthStatusHealthy HealthStatus = "healthy"

	// HealthStatusDegraded indicates only optional checks failed.
	HealthStatusDegraded HealthStatus = "degraded"

	// HealthStatusUnhealthy indicates a required check failed.
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResult contains the aggregated health check results.
type HealthResult struct {
	Status    HealthStatus            `json:"status"`
	Checks    map[string]*CheckResult `json:"checks"`
	Timestamp time.Time               `json:"timestamp"`
}

// CheckResult contains the result of a single health check.
type CheckResult struct {
	Status   HealthStatus  `json:"status"`
	Optional bool          `json:"optional,omitempty"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// DefaultHealthRegistry is a thread-safe implementation of HealthRegistry.
type DefaultHealthRegistry struct {
	mu       sync.RWMutex
	checkers []HealthChecker
}

// NewHealthRegistry creates a new health registry.
func NewHealthRegistry() *DefaultHealthRegistry {
	return &DefaultHealthRegistry{
		checkers: make([]HealthChecker, 0),
	}
}

// Register adds a health checker to the registry.
func (r *DefaultHealthRegistry) Register(checker HealthChecker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := checker.Name()
	for _, c := range r.checkers {
		if c.Name() == name {
			return fmt.Errorf("%w: %s", ErrDuplicateChecker, name)
		}
	}

	r.checkers = append(r.checkers, checker)

	return nil
}

// CheckAll runs all registered health checks concurrently.
func (r *DefaultHealthRegistry) CheckAll(ctx context.Context) *HealthResult {
	r.mu.RLock()
	checkers := make([]HealthChecker, len(r.checkers))
	copy(checkers, r.checkers)
	r.mu.RUnlock()

	result := &HealthResult{
		Status:    HealthStatusHealthy,
		Checks:    make(map[string]*CheckResult, len(checkers)),
		Timestamp: time.Now(),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, checker := range checkers {
		wg.Go(func() {
			start := time.Now()
			err := checker.Check(ctx)

			cr := &CheckResult{
				Status:   HealthStatusHealthy,
				Optional: isOptional(checker),
				Duration: time.Since(start),
			}
			if err != nil {
				cr.Status = HealthStatusUnhealthy
				cr.Message = err.Error()
			}

			mu.Lock()
			defer mu.Unlock()

			result.Checks[checker.Name()] = cr
			result.Status = worse(result.Status, cr)
		})
	}

	wg.Wait()

	return result
}

func isOptional(c HealthChecker) bool {
	o, ok := c.(OptionalChecker)
	return ok && o.Optional()
}

// worse folds one check result into the overall status.
func worse(current HealthStatus, cr *CheckResult) HealthStatus {
	if cr.Status == HealthStatusHealthy || current == HealthStatusUnhealthy {
		return current
	}
	if cr.Optional {
		return HealthStatusDegraded
	}
	return HealthStatusUnhealthy
}
