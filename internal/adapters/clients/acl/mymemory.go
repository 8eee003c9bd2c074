package acl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/clients"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
)

// MyMemoryBaseURL is the MyMemory API host.
const MyMemoryBaseURL = "https://api.mymemory.translated.net"

const (
	myMemoryDefaultConfidence = 0.6
	myMemoryAutoSource        = "Autodetect"
)

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string  `json:"translatedText"`
		Match          float64 `json:"match"`
	} `json:"responseData"`
	// MyMemory sends the status as a number on success and a string on some errors.
	ResponseStatus  json.Number `json:"responseStatus"`
	ResponseDetails string      `json:"responseDetails"`
}

// MyMemoryAdapter talks to the MyMemory translation memory API. The key is optional.
type MyMemoryAdapter struct {
	BaseAdapter
	apiKey string
}

// NewMyMemoryAdapter creates the adapter.
func NewMyMemoryAdapter(client *clients.Client, apiKey string) *MyMemoryAdapter {
	return &MyMemoryAdapter{
		BaseAdapter: NewBaseAdapter(client, "MyMemory", true),
		apiKey:      apiKey,
	}
}

// Translate implements ports.Translator.
func (a *MyMemoryAdapter) Translate(ctx context.Context, req domain.TranslateRequest) (*domain.Translation, error) {
	const op = "translate"

	source := req.SourceLang
	if source == domain.AutoDetect {
		source = myMemoryAutoSource
	}

	q := url.Values{
		"q":        {req.Text},
		"langpair": {source + "|" + req.TargetLang},
	}
	if a.apiKey != "" {
		q.Set("key", a.apiKey)
	}

	body, err := a.Get(ctx, "/get", q, op)
	if err != nil {
		return nil, err
	}

	resp, err := DecodeResponse[myMemoryResponse](body)
	if err != nil {
		return nil, Malformed(a.Name(), op, err)
	}
	if status := resp.ResponseStatus.String(); status != "" && status != "200" {
		return nil, domain.NewProviderError(a.Name(), op,
			fmt.Errorf("%w: status %s: %s", domain.ErrProviderUnavailable, status, resp.ResponseDetails))
	}
	if resp.ResponseData.TranslatedText == "" {
		return nil, Malformed(a.Name(), op, errors.New("empty translation"))
	}

	confidence := resp.ResponseData.Match
	if confidence <= 0 {
		confidence = myMemoryDefaultConfidence
	}

	return &domain.Translation{
		Provider:         a.Name(),
		OriginalText:     req.Text,
		TranslatedText:   resp.ResponseData.TranslatedText,
		SourceLang:       req.SourceLang,
		TargetLang:       req.TargetLang,
		DetectedLanguage: req.SourceLang,
		Confidence:       confidence,
		Mode:             req.Mode,
		CreatedAt:        time.Now(),
	}, nil
}
