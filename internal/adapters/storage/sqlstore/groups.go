package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
)

// GroupRepository implements ports.GroupRepository on the
// group_conversations table.
type GroupRepository struct {
	db       *sql.DB
	d        Dialect
	maxEnded int
}

// NewGroupRepository creates a repository on db. Call Migrate first.
func NewGroupRepository(db *sql.DB, d Dialect) *GroupRepository {
	return &GroupRepository{db: db, d: d, maxEnded: domain.MaxStoredGroups}
}

// Save implements ports.GroupRepository.
func (r *GroupRepository) Save(ctx context.Context, g *domain.Group) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encoding group %s: %w", g.ID, err)
	}

	var ended sql.NullInt64
	if g.EndedAt != nil {
		ended = sql.NullInt64{Int64: g.EndedAt.UnixNano(), Valid: true}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("saving group %s: %w", g.ID, err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, r.d.Rebind(`
		INSERT INTO group_conversations (id, status, created_at, ended_at, data)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			ended_at = excluded.ended_at,
			data = excluded.data`),
		g.ID, string(g.Status), g.CreatedAt.UnixNano(), ended, string(data),
	)
	if err != nil {
		return fmt.Errorf("saving group %s: %w", g.ID, err)
	}

	if g.Status == domain.GroupEnded {
		_, err = tx.ExecContext(ctx, r.d.Rebind(`
			DELETE FROM group_conversations
			WHERE status = ? AND id NOT IN (
				SELECT id FROM group_conversations WHERE status = ?
				ORDER BY ended_at DESC, id DESC LIMIT ?
			)`),
			string(domain.GroupEnded), string(domain.GroupEnded), r.maxEnded,
		)
		if err != nil {
			return fmt.Errorf("pruning ended groups: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("saving group %s: %w", g.ID, err)
	}

	return nil
}

// Get implements ports.GroupRepository.
func (r *GroupRepository) Get(ctx context.Context, id string) (*domain.Group, error) {
	var data string

	err := r.db.QueryRowContext(ctx, r.d.Rebind(`SELECT data FROM group_conversations WHERE id = ?`), id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("group", id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading group %s: %w", id, err)
	}

	return decodeGroup(data)
}

// List implements ports.GroupRepository.
func (r *GroupRepository) List(ctx context.Context) ([]domain.Group, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT data FROM group_conversations ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Group
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning group: %w", err)
		}
		g, err := decodeGroup(data)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}

	return out, nil
}

// Delete implements ports.GroupRepository.
func (r *GroupRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.d.Rebind(`DELETE FROM group_conversations WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting group %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting group %s: %w", id, err)
	}
	if n == 0 {
		return domain.NewNotFoundError("group", id)
	}

	return nil
}

func decodeGroup(data string) (*domain.Group, error) {
	var g domain.Group
	if err := json.Unmarshal([]byte(data), &g); err != nil {
		return nil, fmt.Errorf("decoding group: %w", err)
	}
	return &g, nil
}
