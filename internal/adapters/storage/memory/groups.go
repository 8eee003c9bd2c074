package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
)

// GroupStore implements ports.GroupRepository.
type GroupStore struct {
	mu       sync.RWMutex
	groups   map[string]*domain.Group
	maxEnded int
}

// NewGroupStore creates an empty store that keeps at most
// domain.MaxStoredGroups ended groups.
func NewGroupStore() *GroupStore {
	return &GroupStore{
		groups:   make(map[string]*domain.Group),
		maxEnded: domain.MaxStoredGroups,
	}
}

// Save implements ports.GroupRepository. The stored value is a copy.
func (s *GroupStore) Save(_ context.Context, g *domain.Group) error {
	cp := cloneGroup(g)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.groups[g.ID] = cp
	if g.Status == domain.GroupEnded {
		s.pruneLocked()
	}

	return nil
}

// Get implements ports.GroupRepository.
func (s *GroupStore) Get(_ context.Context, id string) (*domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.groups[id]
	if !ok {
		return nil, domain.NewNotFoundError("group", id)
	}

	return cloneGroup(g), nil
}

// List implements ports.GroupRepository.
func (s *GroupStore) List(_ context.Context) ([]domain.Group, error) {
	s.mu.RLock()
	out := make([]domain.Group, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, *cloneGroup(g))
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b domain.Group) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return out, nil
}

// Delete implements ports.GroupRepository.
func (s *GroupStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[id]; !ok {
		return domain.NewNotFoundError("group", id)
	}
	delete(s.groups, id)

	return nil
}

func (s *GroupStore) pruneLocked() {
	var ended []*domain.Group
	for _, g := range s.groups {
		if g.Status == domain.GroupEnded {
			ended = append(ended, g)
		}
	}
	if len(ended) <= s.maxEnded {
		return
	}

	slices.SortFunc(ended, func(a, b *domain.Group) int {
		return a.EndedAt.Compare(*b.EndedAt)
	})
	for _, g := range ended[:len(ended)-s.maxEnded] {
		delete(s.groups, g.ID)
	}
}

func cloneGroup(g *domain.Group) *domain.Group {
	cp := *g
	cp.Members = slices.Clone(g.Members)
	cp.Messages = make([]domain.GroupMessage, len(g.Messages))
	for i, m := range g.Messages {
		m.Translations = maps.Clone(m.Translations)
		cp.Messages[i] = m
	}
	if g.EndedAt != nil {
		t := *g.EndedAt
		cp.EndedAt = &t
	}
	return &cp
}
