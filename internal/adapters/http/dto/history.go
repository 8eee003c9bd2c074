package dto

import (
	"time"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
)

// HistoryQuery holds the query of GET /translations.
type HistoryQuery struct {
	PageQuery

	UserID string `form:"userId" validate:"max=128"`
}

// SaveTranslationRequest is the body of POST /translations.
type SaveTranslationRequest struct {
	OriginalText   string  `json:"originalText"   validate:"required,notempty,max=5000"`
	TranslatedText string  `json:"translatedText" validate:"required,notempty,max=5000"`
	SourceLang     string  `json:"sourceLang"     validate:"required,lang"`
	TargetLang     string  `json:"targetLang"     validate:"required,target"`
	Provider       string  `json:"provider"       validate:"max=64"`
	Mode           string  `json:"mode"           validate:"omitempty,oneof=contextual formal casual creative technical"`
	Confidence     float64 `json:"confidence"     validate:"gte=0,lte=1"`
	UserID         string  `json:"userId"         validate:"max=128"`
}

// Record converts the body into a history record. userID wins over the
// body's userId when set.
func (r SaveTranslationRequest) Record(userID string) *domain.TranslationRecord {
	if userID == "" {
		userID = r.UserID
	}

	return &domain.TranslationRecord{
		UserID:         userID,
		OriginalText:   r.OriginalText,
		TranslatedText: r.TranslatedText,
		SourceLang:     r.SourceLang,
		TargetLang:     r.TargetLang,
		Provider:       r.Provider,
		Mode:           domain.Mode(r.Mode),
		Confidence:     r.Confidence,
	}
}

// HistoryRecord is one saved translation.
type HistoryRecord struct {
	ID             string      `json:"id"`
	UserID         string      `json:"userId"`
	OriginalText   string      `json:"originalText"`
	TranslatedText string      `json:"translatedText"`
	SourceLang     string      `json:"sourceLang"`
	TargetLang     string      `json:"targetLang"`
	Provider       string      `json:"provider,omitempty"`
	Mode           domain.Mode `json:"mode,omitempty"`
	Confidence     float64     `json:"confidence"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// NewHistoryRecord converts a stored record.
func NewHistoryRecord(r *domain.TranslationRecord) HistoryRecord {
	return HistoryRecord{
		ID:             r.ID,
		UserID:         r.UserID,
		OriginalText:   r.OriginalText,
		TranslatedText: r.TranslatedText,
		SourceLang:     r.SourceLang,
		TargetLang:     r.TargetLang,
		Provider:       r.Provider,
		Mode:           r.Mode,
		Confidence:     r.Confidence,
		CreatedAt:      r.CreatedAt.UTC(),
	}
}

// HistoryResponse answers GET /translations.
type HistoryResponse struct {
	Meta
	Page[HistoryRecord]

	Limit int `json:"limit"`
}

// NewHistoryResponse converts a history page.
func NewHistoryResponse(p *domain.HistoryPage, limit int) HistoryResponse {
	items := make([]HistoryRecord, 0, len(p.Records))
	for i := range p.Records {
		items = append(items, NewHistoryRecord(&p.Records[i]))
	}

	var next string
	if p.HasMore && len(p.Records) > 0 {
		next = HistoryCursorAfter(p.Records[len(p.Records)-1])
	}

	return HistoryResponse{
		Meta:  OK(),
		Page:  Page[HistoryRecord]{Items: items, NextCursor: next, HasMore: p.HasMore},
		Limit: limit,
	}
}

// SaveTranslationResponse answers POST /translations.
type SaveTranslationResponse struct {
	Meta
	Translation HistoryRecord `json:"translation"`
}
