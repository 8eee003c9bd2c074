package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
)

// ConversationStore implements ports.ConversationRepository.
type ConversationStore struct {
	mu            sync.RWMutex
	conversations map[string]*domain.Conversation
	maxEnded      int
}

// NewConversationStore creates an empty store that keeps at most
// domain.MaxStoredConversations ended conversations.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		conversations: make(map[string]*domain.Conversation),
		maxEnded:      domain.MaxStoredConversations,
	}
}

// Save implements ports.ConversationRepository. The stored value is a copy.
func (s *ConversationStore) Save(_ context.Context, c *domain.Conversation) error {
	cp := clone(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations[c.ID] = cp
	if c.Status == domain.StatusEnded {
		s.pruneLocked()
	}

	return nil
}

// Get implements ports.ConversationRepository.
func (s *ConversationStore) Get(_ context.Context, id string) (*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.conversations[id]
	if !ok {
		return nil, domain.NewNotFoundError("conversation", id)
	}

	return clone(c), nil
}

// List implements ports.ConversationRepository.
func (s *ConversationStore) List(_ context.Context) ([]domain.Conversation, error) {
	s.mu.RLock()
	out := make([]domain.Conversation, 0, len(s.conversations))
	for _, c := range s.conversations {
		out = append(out, *clone(c))
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b domain.Conversation) int {
		return b.StartTime.Compare(a.StartTime)
	})

	return out, nil
}

// Delete implements ports.ConversationRepository.
func (s *ConversationStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[id]; !ok {
		return domain.NewNotFoundError("conversation", id)
	}
	delete(s.conversations, id)

	return nil
}

// pruneLocked drops the oldest ended conversations beyond maxEnded.
func (s *ConversationStore) pruneLocked() {
	var ended []*domain.Conversation
	for _, c := range s.conversations {
		if c.Status == domain.StatusEnded {
			ended = append(ended, c)
		}
	}
	if len(ended) <= s.maxEnded {
		return
	}

	slices.SortFunc(ended, func(a, b *domain.Conversation) int {
		return endTime(a).Compare(endTime(b))
	})
	for _, c := range ended[:len(ended)-s.maxEnded] {
		delete(s.conversations, c.ID)
	}
}

func clone(c *domain.Conversation) *domain.Conversation {
	cp := *c
	cp.Messages = slices.Clone(c.Messages)
	if c.EndTime != nil {
		t := *c.EndTime
		cp.EndTime = &t
	}
	return &cp
}

func endTime(c *domain.Conversation) time.Time {
	if c.EndTime != nil {
		return *c.EndTime
	}
	return c.StartTime
}
