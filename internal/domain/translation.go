package domain

import (
	"strings"
	"time"
)

// Mode selects the translation style.
type Mode string

// Translation modes.
const (
	ModeContextual Mode = "contextual"
	ModeFormal     Mode = "formal"
	ModeCasual     Mode = "casual"
	ModeCreative   Mode = "creative"
	ModeTechnical  Mode = "technical"
)

// AlternativeStyles are the styles offered as alternatives by smart translation.
var AlternativeStyles = []Mode{ModeFormal, ModeCasual, ModeCreative, ModeTechnical}

// ParseMode converts s to a Mode. Empty input yields ModeContextual.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeContextual, nil
	case ModeContextual, ModeFormal, ModeCasual, ModeCreative, ModeTechnical:
		return m, nil
	default:
		return "", NewValidationError("mode", "must be one of contextual, formal, casual, creative, technical")
	}
}

// Formality maps a mode to the formality level reported in insights.
func (m Mode) Formality() string {
	switch m {
	case ModeFormal:
		return "high"
	case ModeCasual:
		return "low"
	default:
		return "medium"
	}
}

// ContentType hints the subject area of the text.
type ContentType string

// Content types.
const (
	ContentGeneral   ContentType = "general"
	ContentBusiness  ContentType = "business"
	ContentAcademic  ContentType = "academic"
	ContentMedical   ContentType = "medical"
	ContentLegal     ContentType = "legal"
	ContentTechnical ContentType = "technical"
	ContentLiterary  ContentType = "literary"
)

// ParseContentType converts s to a ContentType. Empty input yields ContentGeneral.
func ParseContentType(s string) (ContentType, error) {
	switch c := ContentType(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return ContentGeneral, nil
	case ContentGeneral, ContentBusiness, ContentAcademic, ContentMedical, ContentLegal, ContentTechnical, ContentLiterary:
		return c, nil
	default:
		return "", NewValidationError("contentType", "unknown content type")
	}
}

// TranslateRequest is the input to a single translation.
type TranslateRequest struct {
	Text        string
	SourceLang  string
	TargetLang  string
	Mode        Mode
	ContentType ContentType
	Context     string
	UserID      string
}

// Normalize trims the text, fills defaults, and validates languages.
func (r TranslateRequest) Normalize() (TranslateRequest, error) {
	r.Text = strings.TrimSpace(r.Text)
	if r.Text == "" {
		return r, ErrEmptyText
	}

	r.SourceLang = strings.ToLower(strings.TrimSpace(r.SourceLang))
	if r.SourceLang == "" {
		r.SourceLang = AutoDetect
	}
	r.TargetLang = strings.ToLower(strings.TrimSpace(r.TargetLang))

	if err := ValidateSource(r.SourceLang); err != nil {
		return r, err
	}
	if err := ValidateTarget(r.TargetLang); err != nil {
		return r, err
	}

	if r.Mode == "" {
		r.Mode = ModeContextual
	}
	if r.ContentType == "" {
		r.ContentType = ContentGeneral
	}
	if r.UserID == "" {
		r.UserID = AnonymousUser
	}

	return r, nil
}

// Translation is the result of translating text with one provider.
type Translation struct {
	Provider         string
	OriginalText     string
	TranslatedText   string
	SourceLang       string
	TargetLang       string
	DetectedLanguage string
	Confidence       float64
	Mode             Mode
	Alternatives     []string
	CreatedAt        time.Time
}

// Detection is one provider's language guess.
type Detection struct {
	Provider   string
	Language   string
	Confidence float64
}

// ProviderInfo describes a registered translation provider.
type ProviderInfo struct {
	Name        string
	DisplayName string
	Available   bool
	CanDetect   bool
}

// Usage event names counted by the translation engine.
const (
	EventTranslationSuccess = "translation_success"
	EventTranslationError   = "translation_error"
	EventDetectionSuccess   = "detection_success"
	EventDetectionError     = "detection_error"
)

// ProviderTestText is translated when a provider is tested without explicit text.
const ProviderTestText = "Hello, world!"
