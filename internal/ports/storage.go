package ports

import (
	"context"
	"time"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
)

// HistoryRepository stores saved translations.
type HistoryRepository interface {
	// Save assigns an ID and CreatedAt when they are empty.
	Save(ctx context.Context, rec *domain.TranslationRecord) error

	// ListByUser returns records newest first. The cursor is an opaque
	// position from a previous call; empty starts from the newest record.
	ListByUser(ctx context.Context, userID string, limit int, cursor *HistoryCursor) ([]domain.TranslationRecord, error)
}

// HistoryCursor positions a history listing after the given record.
type HistoryCursor struct {
	CreatedAt time.Time
	ID        string
}

// Admits reports whether a record sorts after the cursor in newest-first
// order. Ties on CreatedAt are broken by descending ID. A nil cursor admits all.
func (c *HistoryCursor) Admits(createdAt time.Time, id string) bool {
	if c == nil {
		return true
	}
	if createdAt.Equal(c.CreatedAt) {
		return id < c.ID
	}
	return createdAt.Before(c.CreatedAt)
}

// ConversationRepository stores conversations.
type ConversationRepository interface {
	// Save creates or replaces a conversation. Saving an ended conversation
	// prunes the oldest ended conversations beyond domain.MaxStoredConversations.
	Save(ctx context.Context, c *domain.Conversation) error

	// Get returns domain.ErrNotFound for unknown ids.
	Get(ctx context.Context, id string) (*domain.Conversation, error)

	// List returns conversations newest first.
	List(ctx context.Context) ([]domain.Conversation, error)

	// Delete returns domain.ErrNotFound for unknown ids.
	Delete(ctx context.Context, id string) error
}

// GroupRepository stores group conversations.
type GroupRepository interface {
	// Save creates or replaces a group. Saving an ended group prunes the
	// oldest ended groups beyond domain.MaxStoredGroups.
	Save(ctx context.Context, g *domain.Group) error

	// Get returns domain.ErrNotFound for unknown ids.
	Get(ctx context.Context, id string) (*domain.Group, error)

	// List returns groups newest first.
	List(ctx context.Context) ([]domain.Group, error)

	// Delete returns domain.ErrNotFound for unknown ids.
	Delete(ctx context.Context, id string) error
}

// Cache stores opaque values with a TTL.
type Cache interface {
	// Get returns domain.ErrNotFound if the key does not exist or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value. A TTL of 0 means no expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
}

// EventPublisher publishes usage events such as translation_success.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// Event is a named occurrence with attributes.
type Event struct {
	Type       string
	Attributes map[string]any
	OccurredAt time.Time
}
