package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/ports"
)

// HistoryService stores and pages saved translations.
type HistoryService struct {
	repo         ports.HistoryRepository
	defaultLimit int
	logger       *slog.Logger
	now          func() time.Time
}

// NewHistoryService creates the service. A defaultLimit of zero uses
// domain.DefaultHistoryLimit.
func NewHistoryService(repo ports.HistoryRepository, defaultLimit int, logger *slog.Logger) *HistoryService {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultLimit <= 0 || defaultLimit > domain.MaxHistoryLimit {
		defaultLimit = domain.DefaultHistoryLimit
	}

	return &HistoryService{
		repo:         repo,
		defaultLimit: defaultLimit,
		logger:       logger.With(slog.String("component", "app.HistoryService")),
		now:          time.Now,
	}
}

// Save validates and stores rec, assigning an id, owner and timestamp when missing.
func (s *HistoryService) Save(ctx context.Context, rec *domain.TranslationRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	if rec.UserID == "" {
		rec.UserID = domain.AnonymousUser
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}

	if err := s.repo.Save(ctx, rec); err != nil {
		return fmt.Errorf("saving translation %s: %w", rec.ID, err)
	}

	loggerFor(ctx, s.logger).DebugContext(ctx, "translation saved",
		slog.String("id", rec.ID),
		slog.String("user_id", rec.UserID),
	)

	return nil
}

// List returns one page of userID's history, newest first. The page reports
// whether older records remain after it.
func (s *HistoryService) List(ctx context.Context, userID string, limit int, cursor *ports.HistoryCursor) (*domain.HistoryPage, error) {
	if userID == "" {
		userID = domain.AnonymousUser
	}

	limit = s.Limit(limit)

	records, err := s.repo.ListByUser(ctx, userID, limit+1, cursor)
	if err != nil {
		return nil, fmt.Errorf("listing history for %s: %w", userID, err)
	}

	page := &domain.HistoryPage{Records: records}
	if len(records) > limit {
		page.Records = records[:limit]
		page.HasMore = true
	}
	if page.Records == nil {
		page.Records = []domain.TranslationRecord{}
	}

	return page, nil
}

// Limit clamps a requested page size to the configured default and the
// hard maximum.
func (s *HistoryService) Limit(limit int) int {
	switch {
	case limit <= 0:
		return s.defaultLimit
	case limit > domain.MaxHistoryLimit:
		return domain.MaxHistoryLimit
	}
	return limit
}
