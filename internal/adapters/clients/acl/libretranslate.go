package acl

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/clients"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
)

// LibreTranslateBaseURL is the public community instance.
const LibreTranslateBaseURL = "https://libretranslate.de"

const libreConfidence = 0.7

type libreTranslateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type libreTranslateResponse struct {
	TranslatedText string `json:"translatedText"`
	// Newer instances send {"language":"en","confidence":90}; older ones a bare code.
	DetectedLanguage json.RawMessage `json:"detectedLanguage"`
}

type libreDetection struct {
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
}

type libreDetectRequest struct {
	Q      string `json:"q"`
	APIKey string `json:"api_key,omitempty"`
}

// LibreTranslateAdapter talks to a LibreTranslate instance. The key is optional.
type LibreTranslateAdapter struct {
	BaseAdapter
	apiKey string
}

// NewLibreTranslateAdapter creates the adapter.
func NewLibreTranslateAdapter(client *clients.Client, apiKey string) *LibreTranslateAdapter {
	return &LibreTranslateAdapter{
		BaseAdapter: NewBaseAdapter(client, "LibreTranslate", true),
		apiKey:      apiKey,
	}
}

// Translate implements ports.Translator.
func (a *LibreTranslateAdapter) Translate(ctx context.Context, req domain.TranslateRequest) (*domain.Translation, error) {
	const op = "translate"

	body, err := a.PostJSON(ctx, "/translate", nil, libreTranslateRequest{
		Q:      req.Text,
		Source: req.SourceLang,
		Target: req.TargetLang,
		Format: "text",
		APIKey: a.apiKey,
	}, op)
	if err != nil {
		return nil, err
	}

	resp, err := DecodeResponse[libreTranslateResponse](body)
	if err != nil {
		return nil, Malformed(a.Name(), op, err)
	}
	if resp.TranslatedText == "" {
		return nil, Malformed(a.Name(), op, errors.New("empty translation"))
	}

	return &domain.Translation{
		Provider:         a.Name(),
		OriginalText:     req.Text,
		TranslatedText:   resp.TranslatedText,
		SourceLang:       req.SourceLang,
		TargetLang:       req.TargetLang,
		DetectedLanguage: libreDetected(resp.DetectedLanguage),
		Confidence:       libreConfidence,
		Mode:             req.Mode,
		CreatedAt:        time.Now(),
	}, nil
}

// DetectLanguage implements ports.LanguageDetector.
// LibreTranslate reports confidence as a percentage.
func (a *LibreTranslateAdapter) DetectLanguage(ctx context.Context, text string) (*domain.Detection, error) {
	const op = "detect"

	body, err := a.PostJSON(ctx, "/detect", nil, libreDetectRequest{Q: text, APIKey: a.apiKey}, op)
	if err != nil {
		return nil, err
	}

	resp, err := DecodeResponse[[]libreDetection](body)
	if err != nil {
		return nil, Malformed(a.Name(), op, err)
	}
	if len(*resp) == 0 {
		return nil, Malformed(a.Name(), op, errors.New("no detection"))
	}

	best := (*resp)[0]

	return &domain.Detection{
		Provider:   a.Name(),
		Language:   best.Language,
		Confidence: best.Confidence / 100,
	}, nil
}

func libreDetected(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var d libreDetection
	if err := json.Unmarshal(raw, &d); err == nil {
		return d.Language
	}

	var s string
	_ = json.Unmarshal(raw, &s)
	return s
}
