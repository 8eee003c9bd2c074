package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
)

// ConversationRepository implements ports.ConversationRepository.
// Conversations are stored as JSON documents with indexed status and times.
type ConversationRepository struct {
	db       *sql.DB
	d        Dialect
	maxEnded int
}

// NewConversationRepository creates a repository on db. Call Migrate first.
func NewConversationRepository(db *sql.DB, d Dialect) *ConversationRepository {
	return &ConversationRepository{db: db, d: d, maxEnded: domain.MaxStoredConversations}
}

// Save implements ports.ConversationRepository.
func (r *ConversationRepository) Save(ctx context.Context, c *domain.Conversation) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding conversation %s: %w", c.ID, err)
	}

	var end sql.NullInt64
	if c.EndTime != nil {
		end = sql.NullInt64{Int64: c.EndTime.UnixNano(), Valid: true}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("saving conversation %s: %w", c.ID, err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, r.d.Rebind(`
		INSERT INTO conversations (id, status, start_time, end_time, data)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			data = excluded.data`),
		c.ID, string(c.Status), c.StartTime.UnixNano(), end, string(data),
	)
	if err != nil {
		return fmt.Errorf("saving conversation %s: %w", c.ID, err)
	}

	if c.Status == domain.StatusEnded {
		_, err = tx.ExecContext(ctx, r.d.Rebind(`
			DELETE FROM conversations
			WHERE status = ? AND id NOT IN (
				SELECT id FROM conversations WHERE status = ?
				ORDER BY end_time DESC, id DESC LIMIT ?
			)`),
			string(domain.StatusEnded), string(domain.StatusEnded), r.maxEnded,
		)
		if err != nil {
			return fmt.Errorf("pruning ended conversations: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("saving conversation %s: %w", c.ID, err)
	}

	return nil
}

// Get implements ports.ConversationRepository.
func (r *ConversationRepository) Get(ctx context.Context, id string) (*domain.Conversation, error) {
	var data string

	err := r.db.QueryRowContext(ctx, r.d.Rebind(`SELECT data FROM conversations WHERE id = ?`), id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("conversation", id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading conversation %s: %w", id, err)
	}

	return decodeConversation(data)
}

// List implements ports.ConversationRepository.
func (r *ConversationRepository) List(ctx context.Context) ([]domain.Conversation, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT data FROM conversations ORDER BY start_time DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Conversation
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		c, err := decodeConversation(data)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}

	return out, nil
}

// Delete implements ports.ConversationRepository.
func (r *ConversationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.d.Rebind(`DELETE FROM conversations WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting conversation %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting conversation %s: %w", id, err)
	}
	if n == 0 {
		return domain.NewNotFoundError("conversation", id)
	}

	return nil
}

func decodeConversation(data string) (*domain.Conversation, error) {
	var c domain.Conversation
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, fmt.Errorf("decoding conversation: %w", err)
	}
	return &c, nil
}
