package dto

import (
	"time"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/app"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
)

// Text limits.
const (
	MaxTextLength    = 5000
	MaxContextLength = 1000
)

// Meta is embedded in every successful response.
type Meta struct {
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
}

// OK returns the metadata of a successful response.
func OK() Meta {
	return Meta{Success: true, Timestamp: time.Now().UTC()}
}

// TranslateRequest is the body of POST /translate and /smart-translate.
type TranslateRequest struct {
	Text        string `json:"text"        validate:"required,notempty,max=5000"`
	SourceLang  string `json:"sourceLang"  validate:"omitempty,lang"`
	TargetLang  string `json:"targetLang"  validate:"required,target"`
	Mode        string `json:"mode"        validate:"omitempty,oneof=contextual formal casual creative technical"`
	ContentType string `json:"contentType" validate:"omitempty,oneof=general business academic medical legal technical literary"`
	Context     string `json:"context"     validate:"max=1000"`

	// Save archives the result in the caller's history.
	Save bool `json:"save"`
}

// Domain converts the body into an engine request for userID.
func (r TranslateRequest) Domain(userID string) domain.TranslateRequest {
	return domain.TranslateRequest{
		Text:        r.Text,
		SourceLang:  r.SourceLang,
		TargetLang:  r.TargetLang,
		Mode:        domain.Mode(r.Mode),
		ContentType: domain.ContentType(r.ContentType),
		Context:     r.Context,
		UserID:      userID,
	}
}

// TranslationBody is one provider's translation.
type TranslationBody struct {
	OriginalText     string      `json:"originalText"`
	TranslatedText   string      `json:"translatedText"`
	SourceLanguage   string      `json:"sourceLanguage"`
	TargetLanguage   string      `json:"targetLanguage"`
	DetectedLanguage string      `json:"detectedLanguage,omitempty"`
	Provider         string      `json:"provider"`
	Mode             domain.Mode `json:"mode"`
	Confidence       float64     `json:"confidence"`
	Alternatives     []string    `json:"alternatives,omitempty"`
}

// NewTranslationBody converts a domain translation.
func NewTranslationBody(t *domain.Translation) TranslationBody {
	return TranslationBody{
		OriginalText:     t.OriginalText,
		TranslatedText:   t.TranslatedText,
		SourceLanguage:   t.SourceLang,
		TargetLanguage:   t.TargetLang,
		DetectedLanguage: t.DetectedLanguage,
		Provider:         t.Provider,
		Mode:             t.Mode,
		Confidence:       t.Confidence,
		Alternatives:     t.Alternatives,
	}
}

// TranslationResponse answers POST /translate.
type TranslationResponse struct {
	Meta
	TranslationBody
	Saved bool `json:"saved,omitempty"`
}

// MultiTranslationResponse answers POST /translate/multi.
type MultiTranslationResponse struct {
	Meta
	Results []TranslationBody `json:"results"`
	Count   int               `json:"count"`
}

// NewMultiTranslationResponse converts every successful provider result.
func NewMultiTranslationResponse(results []domain.Translation) MultiTranslationResponse {
	out := make([]TranslationBody, 0, len(results))
	for i := range results {
		out = append(out, NewTranslationBody(&results[i]))
	}

	return MultiTranslationResponse{Meta: OK(), Results: out, Count: len(out)}
}

// SmartTranslationResponse answers POST /smart-translate.
type SmartTranslationResponse struct {
	Meta
	OriginalText   string              `json:"originalText"`
	TranslatedText string              `json:"translatedText"`
	SourceLanguage string              `json:"sourceLanguage"`
	TargetLanguage string              `json:"targetLanguage"`
	Provider       string              `json:"provider"`
	Confidence     float64             `json:"confidence"`
	Mode           domain.Mode         `json:"mode"`
	ContentType    domain.ContentType  `json:"contentType"`
	Alternatives   []app.Alternative   `json:"alternatives"`
	Insights       domain.TextInsights `json:"insights"`
}

// NewSmartTranslationResponse converts a smart translation result.
func NewSmartTranslationResponse(r *app.SmartResult, contentType domain.ContentType) SmartTranslationResponse {
	alts := r.Alternatives
	if alts == nil {
		alts = []app.Alternative{}
	}
	if contentType == "" {
		contentType = domain.ContentGeneral
	}

	return SmartTranslationResponse{
		Meta:           OK(),
		OriginalText:   r.Translation.OriginalText,
		TranslatedText: r.Translation.TranslatedText,
		SourceLanguage: r.Translation.SourceLang,
		TargetLanguage: r.Translation.TargetLang,
		Provider:       r.Translation.Provider,
		Confidence:     r.Translation.Confidence,
		Mode:           r.Translation.Mode,
		ContentType:    contentType,
		Alternatives:   alts,
		Insights:       r.Insights,
	}
}

// DetectRequest is the body of POST /detect.
type DetectRequest struct {
	Text string `json:"text" validate:"required,notempty,max=5000"`
}

// DetectResponse answers POST /detect.
type DetectResponse struct {
	Meta
	Language     string  `json:"language"`
	LanguageName string  `json:"languageName"`
	Confidence   float64 `json:"confidence"`
	Provider     string  `json:"provider"`
}

// NewDetectResponse converts a detection.
func NewDetectResponse(d *domain.Detection) DetectResponse {
	return DetectResponse{
		Meta:         OK(),
		Language:     d.Language,
		LanguageName: domain.EnglishName(d.Language),
		Confidence:   d.Confidence,
		Provider:     d.Provider,
	}
}

// ProviderBody describes one registered provider.
type ProviderBody struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Available   bool   `json:"available"`
	CanDetect   bool   `json:"canDetect"`
}

// ProvidersResponse answers GET /providers.
type ProvidersResponse struct {
	Meta
	Primary   string         `json:"primary"`
	Providers []ProviderBody `json:"providers"`
	Available int            `json:"available"`
}

// NewProvidersResponse converts the provider list.
func NewProvidersResponse(primary string, infos []domain.ProviderInfo) ProvidersResponse {
	resp := ProvidersResponse{Meta: OK(), Primary: primary, Providers: make([]ProviderBody, 0, len(infos))}
	for _, p := range infos {
		resp.Providers = append(resp.Providers, ProviderBody(p))
		if p.Available {
			resp.Available++
		}
	}

	return resp
}

// StatsResponse answers GET /providers/stats.
type StatsResponse struct {
	Meta
	app.UsageStats
}

// ProviderTestRequest is the optional body of POST /providers/:name/test.
type ProviderTestRequest struct {
	Text string `json:"text" validate:"max=5000"`
}

// ProviderTestBody is the outcome of testing one provider.
type ProviderTestBody struct {
	Provider    string `json:"provider"`
	OK          bool   `json:"ok"`
	Translation string `json:"translation,omitempty"`
	LatencyMs   int64  `json:"latencyMs"`
	Error       string `json:"error,omitempty"`
}

// NewProviderTestBody converts one test result.
func NewProviderTestBody(name string, r app.ProviderTestResult) ProviderTestBody {
	body := ProviderTestBody{Provider: name, LatencyMs: r.Duration.Milliseconds()}
	if r.Err != nil {
		body.Error = r.Err.Error()
		return body
	}

	body.OK = true
	if r.Translation != nil {
		body.Translation = r.Translation.TranslatedText
	}

	return body
}

// ProviderTestResponse answers POST /providers/:name/test.
type ProviderTestResponse struct {
	Meta
	Results []ProviderTestBody `json:"results"`
}

// LanguagesResponse answers GET /languages.
type LanguagesResponse struct {
	Meta
	Languages []domain.Language `json:"languages"`
	Count     int               `json:"count"`
}
