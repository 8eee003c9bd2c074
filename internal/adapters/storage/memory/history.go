// Package memory provides in-process implementations of the storage ports.
// Data does not survive a restart.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/ports"
)

// HistoryStore implements ports.HistoryRepository.
type HistoryStore struct {
	mu      sync.RWMutex
	records map[string][]domain.TranslationRecord
	now     func() time.Time
}

// NewHistoryStore creates an empty store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{
		records: make(map[string][]domain.TranslationRecord),
		now:     time.Now,
	}
}

// Save implements ports.HistoryRepository.
func (s *HistoryStore) Save(_ context.Context, rec *domain.TranslationRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[rec.UserID] = append(s.records[rec.UserID], *rec)

	return nil
}

// ListByUser implements ports.HistoryRepository.
func (s *HistoryStore) ListByUser(_ context.Context, userID string, limit int, cursor *ports.HistoryCursor) ([]domain.TranslationRecord, error) {
	s.mu.RLock()
	all := slices.Clone(s.records[userID])
	s.mu.RUnlock()

	slices.SortFunc(all, newestFirst)

	out := make([]domain.TranslationRecord, 0, min(limit, len(all)))
	for _, r := range all {
		if len(out) == limit {
			break
		}
		if cursor.Admits(r.CreatedAt, r.ID) {
			out = append(out, r)
		}
	}

	return out, nil
}

func newestFirst(a, b domain.TranslationRecord) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}
