package acl

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/clients"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
)

// MicrosoftBaseURL is the Azure Translator global endpoint.
const MicrosoftBaseURL = "https://api.cognitive.microsofttranslator.com"

// Headers Azure uses for subscription auth.
const (
	MicrosoftKeyHeader    = "Ocp-Apim-Subscription-Key"
	MicrosoftRegionHeader = "Ocp-Apim-Subscription-Region"
)

const (
	microsoftAPIVersion        = "3.0"
	microsoftDefaultConfidence = 0.8
)

type microsoftText struct {
	Text string `json:"text"`
}

type microsoftTranslateResult struct {
	DetectedLanguage *struct {
		Language string  `json:"language"`
		Score    float64 `json:"score"`
	} `json:"detectedLanguage"`
	Translations []struct {
		Text       string   `json:"text"`
		To         string   `json:"to"`
		Confidence *float64 `json:"confidence"`
	} `json:"translations"`
}

type microsoftDetectResult struct {
	Language string  `json:"language"`
	Score    float64 `json:"score"`
}

// MicrosoftAdapter talks to Azure AI Translator v3.
// The subscription key and region are sent as client headers.
type MicrosoftAdapter struct {
	BaseAdapter
}

// NewMicrosoftAdapter creates the adapter. It is disabled without a key.
func NewMicrosoftAdapter(client *clients.Client, apiKey string) *MicrosoftAdapter {
	return &MicrosoftAdapter{BaseAdapter: NewBaseAdapter(client, "Microsoft Translator", apiKey != "")}
}

// Translate implements ports.Translator.
func (a *MicrosoftAdapter) Translate(ctx context.Context, req domain.TranslateRequest) (*domain.Translation, error) {
	const op = "translate"
	if err := a.Guard(op); err != nil {
		return nil, err
	}

	q := url.Values{"api-version": {microsoftAPIVersion}, "to": {req.TargetLang}}
	if req.SourceLang != domain.AutoDetect {
		q.Set("from", req.SourceLang)
	}

	body, err := a.PostJSON(ctx, "/translate", q, []microsoftText{{Text: req.Text}}, op)
	if err != nil {
		return nil, err
	}

	results, err := DecodeResponse[[]microsoftTranslateResult](body)
	if err != nil {
		return nil, Malformed(a.Name(), op, err)
	}
	if len(*results) == 0 || len((*results)[0].Translations) == 0 {
		return nil, Malformed(a.Name(), op, errors.New("no translations"))
	}

	res := (*results)[0]
	tr := res.Translations[0]

	confidence := microsoftDefaultConfidence
	if tr.Confidence != nil {
		confidence = *tr.Confidence
	}

	var detected string
	if res.DetectedLanguage != nil {
		detected = res.DetectedLanguage.Language
	}

	return &domain.Translation{
		Provider:         a.Name(),
		OriginalText:     req.Text,
		TranslatedText:   tr.Text,
		SourceLang:       req.SourceLang,
		TargetLang:       req.TargetLang,
		DetectedLanguage: detected,
		Confidence:       confidence,
		Mode:             req.Mode,
		CreatedAt:        time.Now(),
	}, nil
}

// DetectLanguage implements ports.LanguageDetector.
func (a *MicrosoftAdapter) DetectLanguage(ctx context.Context, text string) (*domain.Detection, error) {
	const op = "detect"
	if err := a.Guard(op); err != nil {
		return nil, err
	}

	q := url.Values{"api-version": {microsoftAPIVersion}}

	body, err := a.PostJSON(ctx, "/detect", q, []microsoftText{{Text: text}}, op)
	if err != nil {
		return nil, err
	}

	results, err := DecodeResponse[[]microsoftDetectResult](body)
	if err != nil {
		return nil, Malformed(a.Name(), op, err)
	}
	if len(*results) == 0 || (*results)[0].Language == "" {
		return nil, Malformed(a.Name(), op, errors.New("no detection"))
	}

	return &domain.Detection{
		Provider:   a.Name(),
		Language:   (*results)[0].Language,
		Confidence: (*results)[0].Score,
	}, nil
}
