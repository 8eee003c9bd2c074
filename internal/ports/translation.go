// Package ports defines the interfaces the application layer depends on.
// Adapters implement them; the app package never imports an adapter.
//
// Every method takes a context first, returns domain types, and reports
// failures with domain errors (ErrNotFound, ErrUnavailable, ...).
package ports

import (
	"context"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
)

// Translator is one translation provider.
type Translator interface {
	// Name is the stable provider key, e.g. "google".
	Name() string

	// DisplayName is the human readable provider name.
	DisplayName() string

	// Available reports whether the provider is configured for use.
	Available() bool

	// Translate translates req.Text. req is already normalized.
	Translate(ctx context.Context, req domain.TranslateRequest) (*domain.Translation, error)
}

// LanguageDetector is implemented by providers that can identify a language.
type LanguageDetector interface {
	DetectLanguage(ctx context.Context, text string) (*domain.Detection, error)
}

// StyleTranslator produces one rendering per requested style.
// LLM-backed providers implement it for smart translation alternatives.
type StyleTranslator interface {
	TranslateStyles(ctx context.Context, req domain.TranslateRequest, styles []domain.Mode) (map[domain.Mode]string, error)
}
