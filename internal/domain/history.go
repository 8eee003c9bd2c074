package domain

import "time"

// AnonymousUser owns records saved without a user id.
const AnonymousUser = "anonymous"

// History listing bounds.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 100
)

// TranslationRecord is a saved translation.
type TranslationRecord struct {
	ID             string
	UserID         string
	OriginalText   string
	TranslatedText string
	SourceLang     string
	TargetLang     string
	Provider       string
	Mode           Mode
	Confidence     float64
	CreatedAt      time.Time
}

// Validate checks the fields required to save a record.
func (r *TranslationRecord) Validate() error {
	switch {
	case r.OriginalText == "":
		return NewValidationError("originalText", "is required")
	case r.TranslatedText == "":
		return NewValidationError("translatedText", "is required")
	case r.SourceLang == "":
		return NewValidationError("sourceLang", "is required")
	case r.TargetLang == "":
		return NewValidationError("targetLang", "is required")
	}
	return nil
}

// HistoryPage is one page of a user's history, newest first.
type HistoryPage struct {
	Records []TranslationRecord
	HasMore bool
}
