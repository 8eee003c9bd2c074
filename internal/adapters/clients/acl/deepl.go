package acl

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/clients"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
)

// DeepLBaseURL is the free-tier API host. Pro keys use https://api.deepl.com.
const DeepLBaseURL = "https://api-free.deepl.com"

// DeepLAuthHeader carries "DeepL-Auth-Key <key>".
const DeepLAuthHeader = "Authorization"

const deeplConfidence = 0.95

type deeplResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}

// DeepLAdapter talks to the DeepL v2 API.
type DeepLAdapter struct {
	BaseAdapter
}

// NewDeepLAdapter creates the adapter. It is disabled without a key.
func NewDeepLAdapter(client *clients.Client, apiKey string) *DeepLAdapter {
	return &DeepLAdapter{BaseAdapter: NewBaseAdapter(client, "DeepL", apiKey != "")}
}

// DeepLAuthValue formats the authorization header value for key.
func DeepLAuthValue(key string) string {
	return "DeepL-Auth-Key " + key
}

// Translate implements ports.Translator.
func (a *DeepLAdapter) Translate(ctx context.Context, req domain.TranslateRequest) (*domain.Translation, error) {
	const op = "translate"
	if err := a.Guard(op); err != nil {
		return nil, err
	}

	form := url.Values{
		"text":        {req.Text},
		"target_lang": {strings.ToUpper(req.TargetLang)},
	}
	if req.SourceLang != domain.AutoDetect {
		form.Set("source_lang", strings.ToUpper(req.SourceLang))
	}
	switch req.Mode {
	case domain.ModeFormal:
		form.Set("formality", "prefer_more")
	case domain.ModeCasual:
		form.Set("formality", "prefer_less")
	}

	body, err := a.PostForm(ctx, "/v2/translate", form, op)
	if err != nil {
		return nil, err
	}

	resp, err := DecodeResponse[deeplResponse](body)
	if err != nil {
		return nil, Malformed(a.Name(), op, err)
	}
	if len(resp.Translations) == 0 {
		return nil, Malformed(a.Name(), op, errors.New("no translations"))
	}

	tr := resp.Translations[0]

	return &domain.Translation{
		Provider:         a.Name(),
		OriginalText:     req.Text,
		TranslatedText:   tr.Text,
		SourceLang:       req.SourceLang,
		TargetLang:       req.TargetLang,
		DetectedLanguage: strings.ToLower(tr.DetectedSourceLanguage),
		Confidence:       deeplConfidence,
		Mode:             req.Mode,
		CreatedAt:        time.Now(),
	}, nil
}
