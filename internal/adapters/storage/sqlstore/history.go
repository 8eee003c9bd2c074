package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/ports"
)

// HistoryRepository implements ports.HistoryRepository.
type HistoryRepository struct {
	db  *sql.DB
	d   Dialect
	now func() time.Time
}

// NewHistoryRepository creates a repository on db. Call Migrate first.
func NewHistoryRepository(db *sql.DB, d Dialect) *HistoryRepository {
	return &HistoryRepository{db: db, d: d, now: time.Now}
}

// Save implements ports.HistoryRepository.
func (r *HistoryRepository) Save(ctx context.Context, rec *domain.TranslationRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.now().UTC()
	}

	_, err := r.db.ExecContext(ctx, r.d.Rebind(`
		INSERT INTO translations
			(id, user_id, original_text, translated_text, source_lang, target_lang, provider, mode, confidence, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		rec.ID, rec.UserID, rec.OriginalText, rec.TranslatedText, rec.SourceLang, rec.TargetLang,
		rec.Provider, string(rec.Mode), rec.Confidence, rec.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("saving translation %s: %w", rec.ID, err)
	}

	return nil
}

// ListByUser implements ports.HistoryRepository with keyset pagination on (created_at, id).
func (r *HistoryRepository) ListByUser(ctx context.Context, userID string, limit int, cursor *ports.HistoryCursor) ([]domain.TranslationRecord, error) {
	query := `
		SELECT id, user_id, original_text, translated_text, source_lang, target_lang, provider, mode, confidence, created_at
		FROM translations
		WHERE user_id = ?`
	args := []any{userID}

	if cursor != nil {
		at := cursor.CreatedAt.UnixNano()
		query += ` AND (created_at < ? OR (created_at = ? AND id < ?))`
		args = append(args, at, at, cursor.ID)
	}

	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, r.d.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("listing translations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]domain.TranslationRecord, 0, limit)
	for rows.Next() {
		var (
			rec   domain.TranslationRecord
			mode  string
			nanos int64
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.OriginalText, &rec.TranslatedText,
			&rec.SourceLang, &rec.TargetLang, &rec.Provider, &mode, &rec.Confidence, &nanos); err != nil {
			return nil, fmt.Errorf("scanning translation: %w", err)
		}
		rec.Mode = domain.Mode(mode)
		rec.CreatedAt = time.Unix(0, nanos).UTC()
		out = append(out, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing translations: %w", err)
	}

	return out, nil
}
