// Package gemini adapts Google's Gemini models to the translation ports.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/clients"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/llm"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
)

// Name is the provider key.
const Name = "gemini"

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

const temperature float32 = 0.3

// Config configures the adapter.
type Config struct {
	APIKey        string
	Model         string
	BaseURL       string
	Circuit       clients.CircuitBreakerConfig
	OnStateChange func(from, to clients.State)
}

// generator is the slice of the genai client the adapter uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Adapter implements ports.Translator and ports.StyleTranslator.
type Adapter struct {
	gen   generator
	model string
	cb    *clients.CircuitBreaker
}

// New creates the adapter. Without an API key the adapter is returned unavailable.
func New(ctx context.Context, cfg Config) (*Adapter, error) {
	a := &Adapter{
		model: cfg.Model,
		cb:    clients.NewCircuitBreaker(Name, cfg.Circuit, cfg.OnStateChange),
	}
	if a.model == "" {
		a.model = DefaultModel
	}
	if cfg.APIKey == "" {
		return a, nil
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	a.gen = client.Models

	return a, nil
}

// Name returns the provider key.
func (a *Adapter) Name() string { return Name }

// DisplayName returns the human readable provider name.
func (a *Adapter) DisplayName() string { return "Google Gemini" }

// Available reports whether the adapter has a client.
func (a *Adapter) Available() bool { return a.gen != nil }

// Optional marks the health check as non-critical.
func (a *Adapter) Optional() bool { return true }

// Check reports the adapter unhealthy when unconfigured or when its circuit is open.
func (a *Adapter) Check(context.Context) error {
	if !a.Available() {
		return domain.NewProviderError(Name, "check", domain.ErrProviderUnavailable)
	}
	if a.cb.State() == clients.StateOpen {
		return domain.NewProviderError(Name, "check",
			fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, clients.ErrCircuitOpen))
	}
	return nil
}

// Translate implements ports.Translator.
func (a *Adapter) Translate(ctx context.Context, req domain.TranslateRequest) (*domain.Translation, error) {
	text, err := a.generate(ctx, "translate", llm.TranslationPrompt(req), "")
	if err != nil {
		return nil, err
	}

	text = llm.Clean(text)
	if text == "" {
		return nil, domain.NewProviderError(Name, "translate",
			fmt.Errorf("%w: empty response", domain.ErrProviderUnavailable))
	}

	return &domain.Translation{
		Provider:         Name,
		OriginalText:     req.Text,
		TranslatedText:   text,
		SourceLang:       req.SourceLang,
		TargetLang:       req.TargetLang,
		DetectedLanguage: req.SourceLang,
		Confidence:       llm.Confidence,
		Mode:             req.Mode,
		CreatedAt:        time.Now(),
	}, nil
}

// TranslateStyles implements ports.StyleTranslator using JSON output.
func (a *Adapter) TranslateStyles(ctx context.Context, req domain.TranslateRequest, styles []domain.Mode) (map[domain.Mode]string, error) {
	if len(styles) == 0 {
		return map[domain.Mode]string{}, nil
	}

	raw, err := a.generate(ctx, "translate styles", llm.StylesPrompt(req, styles), "application/json")
	if err != nil {
		return nil, err
	}

	out, err := llm.ParseStyles(raw, styles)
	if err != nil {
		return nil, domain.NewProviderError(Name, "translate styles",
			fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err))
	}

	return out, nil
}

func (a *Adapter) generate(ctx context.Context, op, prompt, mimeType string) (string, error) {
	if !a.Available() {
		return "", domain.NewProviderError(Name, op, domain.ErrProviderUnavailable)
	}

	temp := temperature
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: llm.SystemPrompt}}},
		Temperature:       &temp,
		ResponseMIMEType:  mimeType,
	}

	var text string
	err := a.cb.Execute(ctx, func(ctx context.Context) error {
		resp, err := a.gen.GenerateContent(ctx, a.model, genai.Text(prompt), cfg)
		if err != nil {
			return err
		}
		text, err = responseText(resp)
		return err
	})
	if err != nil {
		return "", domain.NewProviderError(Name, op, fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err))
	}

	return text, nil
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no candidates returned")
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil && !p.Thought {
			b.WriteString(p.Text)
		}
	}

	return b.String(), nil
}
