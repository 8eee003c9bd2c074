// Package flags serves feature flags from configuration.
package flags

import (
	"context"
	"strconv"
	"strings"
	"sync"
)

// Store implements ports.FeatureFlags over a name to value map.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

// New creates a store from values. Names are matched case-insensitively,
// and dashes and underscores are interchangeable.
func New(values map[string]string) *Store {
	s := &Store{values: make(map[string]string, len(values))}
	for k, v := range values {
		s.values[normalize(k)] = strings.TrimSpace(v)
	}
	return s
}

// IsEnabled implements ports.FeatureFlags. Values that do not parse as a
// boolean yield defaultValue.
func (s *Store) IsEnabled(_ context.Context, flag string, defaultValue bool) bool {
	v, ok := s.lookup(flag)
	if !ok {
		return defaultValue
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue
	}
	return b
}

// GetString implements ports.FeatureFlags.
func (s *Store) GetString(_ context.Context, flag, defaultValue string) string {
	if v, ok := s.lookup(flag); ok && v != "" {
		return v
	}
	return defaultValue
}

// Set changes a flag at runtime.
func (s *Store) Set(flag, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[normalize(flag)] = strings.TrimSpace(value)
}

func (s *Store) lookup(flag string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[normalize(flag)]
	return v, ok
}

func normalize(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
}
