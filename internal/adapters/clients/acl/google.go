package acl

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/clients"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
)

// GoogleBaseURL is the keyless gtx endpoint host.
const GoogleBaseURL = "https://translate.googleapis.com"

const (
	googleTranslateConfidence = 0.9
	googleDetectConfidence    = 0.8
	googleDetectSource        = "auto"
	googleDetectTarget        = "en"
)

// The gtx response is a positional array:
//
//	[[["hola","hello",null,null,10], ...], null, "en", ...]
//
// $[0][*][0] holds the translated segments and $[2] the detected source.
const (
	googleSegmentsPath = "$[0][*][0]"
	googleDetectedPath = "$[2]"
)

// GoogleAdapter talks to the public Google Translate gtx endpoint.
type GoogleAdapter struct {
	BaseAdapter
}

// NewGoogleAdapter creates the adapter. The endpoint needs no key.
func NewGoogleAdapter(client *clients.Client) *GoogleAdapter {
	return &GoogleAdapter{BaseAdapter: NewBaseAdapter(client, "Google Translate", true)}
}

// Translate implements ports.Translator.
func (a *GoogleAdapter) Translate(ctx context.Context, req domain.TranslateRequest) (*domain.Translation, error) {
	const op = "translate"

	// gtx auto-detects when sl is empty.
	source := req.SourceLang
	if source == domain.AutoDetect {
		source = ""
	}

	doc, err := a.query(ctx, req.Text, source, req.TargetLang, op)
	if err != nil {
		return nil, err
	}

	text, err := googleSegments(doc)
	if err != nil {
		return nil, Malformed(a.Name(), op, err)
	}

	detected := googleDetected(doc)
	if detected == "" {
		detected = req.SourceLang
	}

	return &domain.Translation{
		Provider:         a.Name(),
		OriginalText:     req.Text,
		TranslatedText:   text,
		SourceLang:       req.SourceLang,
		TargetLang:       req.TargetLang,
		DetectedLanguage: detected,
		Confidence:       googleTranslateConfidence,
		Mode:             req.Mode,
		CreatedAt:        time.Now(),
	}, nil
}

// DetectLanguage implements ports.LanguageDetector.
func (a *GoogleAdapter) DetectLanguage(ctx context.Context, text string) (*domain.Detection, error) {
	doc, err := a.query(ctx, text, googleDetectSource, googleDetectTarget, "detect")
	if err != nil {
		return nil, err
	}

	lang := googleDetected(doc)
	if lang == "" {
		lang = "unknown"
	}

	return &domain.Detection{Provider: a.Name(), Language: lang, Confidence: googleDetectConfidence}, nil
}

func (a *GoogleAdapter) query(ctx context.Context, text, source, target, op string) (any, error) {
	q := url.Values{
		"client": {"gtx"},
		"sl":     {source},
		"tl":     {target},
		"dt":     {"t"},
		"q":      {text},
	}

	body, err := a.Get(ctx, "/translate_a/single", q, op)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	var doc any
	if err := json.NewDecoder(body).Decode(&doc); err != nil {
		return nil, Malformed(a.Name(), op, err)
	}

	return doc, nil
}

func googleSegments(doc any) (string, error) {
	v, err := jsonpath.Get(googleSegmentsPath, doc)
	if err != nil {
		return "", err
	}

	segments, ok := v.([]any)
	if !ok {
		return "", errors.New("translation segments missing")
	}

	var sb strings.Builder
	for _, s := range segments {
		if str, ok := s.(string); ok {
			sb.WriteString(str)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("empty translation")
	}

	return sb.String(), nil
}

func googleDetected(doc any) string {
	v, err := jsonpath.Get(googleDetectedPath, doc)
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
