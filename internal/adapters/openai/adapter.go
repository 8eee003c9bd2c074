// Package openai adapts the OpenAI API to the translation, speech, and OCR ports.
// Every call goes through a circuit breaker shared by the adapter.
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/clients"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/llm"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
)

// Name is the provider key.
const Name = "openai"

// DefaultVoice is used when the caller asks for domain.DefaultVoice.
const DefaultVoice = openai.VoiceAlloy

const (
	whisperConfidence = 0.9
	ocrPrompt         = "Extract all text visible in this image. " +
		"Reply with the text only, preserving line breaks. Reply with an empty message if there is no text."
)

// Config configures the adapter.
type Config struct {
	APIKey string
	// BaseURL overrides the API endpoint, e.g. for Azure-compatible gateways.
	BaseURL            string
	ChatModel          string
	VisionModel        string
	TranscriptionModel string
	SpeechModel        string
	Timeout            time.Duration
	Circuit            clients.CircuitBreakerConfig
	OnStateChange      func(from, to clients.State)
}

// Adapter implements ports.Translator, ports.StyleTranslator, ports.SpeechRecognizer,
// ports.SpeechSynthesizer, and ports.TextExtractor.
type Adapter struct {
	client *openai.Client
	cfg    Config
	cb     *clients.CircuitBreaker
}

// New creates the adapter. Without an API key it reports itself unavailable.
func New(cfg Config) *Adapter {
	if cfg.ChatModel == "" {
		cfg.ChatModel = openai.GPT4oMini
	}
	if cfg.VisionModel == "" {
		cfg.VisionModel = openai.GPT4oMini
	}
	if cfg.TranscriptionModel == "" {
		cfg.TranscriptionModel = openai.Whisper1
	}
	if cfg.SpeechModel == "" {
		cfg.SpeechModel = string(openai.TTSModel1)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Adapter{
		client: openai.NewClientWithConfig(oc),
		cfg:    cfg,
		cb:     clients.NewCircuitBreaker(Name, cfg.Circuit, cfg.OnStateChange),
	}
}

// Name returns the provider key.
func (a *Adapter) Name() string { return Name }

// DisplayName returns the human readable provider name.
func (a *Adapter) DisplayName() string { return "OpenAI" }

// Available reports whether an API key is configured.
func (a *Adapter) Available() bool { return a.cfg.APIKey != "" }

// Optional marks the health check as non-critical.
func (a *Adapter) Optional() bool { return true }

// Check reports the adapter unhealthy when unconfigured or when its circuit is open.
// It does not call the API.
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
	text, err := a.chat(ctx, "translate", llm.TranslationPrompt(req), nil)
	if err != nil {
		return nil, err
	}

	text = llm.Clean(text)
	if text == "" {
		return nil, a.wrap("translate", errors.New("empty completion"))
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

// TranslateStyles implements ports.StyleTranslator with one JSON-mode completion.
func (a *Adapter) TranslateStyles(ctx context.Context, req domain.TranslateRequest, styles []domain.Mode) (map[domain.Mode]string, error) {
	if len(styles) == 0 {
		return map[domain.Mode]string{}, nil
	}

	format := &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}

	raw, err := a.chat(ctx, "translate styles", llm.StylesPrompt(req, styles), format)
	if err != nil {
		return nil, err
	}

	out, err := llm.ParseStyles(raw, styles)
	if err != nil {
		return nil, a.wrap("translate styles", err)
	}

	return out, nil
}

func (a *Adapter) chat(ctx context.Context, op, prompt string, format *openai.ChatCompletionResponseFormat) (string, error) {
	if !a.Available() {
		return "", domain.NewProviderError(Name, op, domain.ErrProviderUnavailable)
	}

	var content string
	err := a.cb.Execute(ctx, func(ctx context.Context) error {
		resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: a.cfg.ChatModel,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: llm.SystemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			Temperature:    0.3,
			ResponseFormat: format,
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errors.New("no choices returned")
		}
		content = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", a.wrap(op, err)
	}

	return content, nil
}

// Transcribe implements ports.SpeechRecognizer with Whisper.
func (a *Adapter) Transcribe(ctx context.Context, audio domain.Audio, language string) (*domain.Transcript, error) {
	const op = "transcribe"
	if !a.Available() {
		return nil, domain.NewProviderError(Name, op, domain.ErrProviderUnavailable)
	}

	filename := audio.Filename
	if filename == "" {
		filename = "audio.wav"
	}

	req := openai.AudioRequest{
		Model:    a.cfg.TranscriptionModel,
		FilePath: filename,
		Reader:   bytes.NewReader(audio.Data),
		Format:   openai.AudioResponseFormatVerboseJSON,
	}
	if language != "" && language != domain.AutoDetect {
		req.Language = language
	}

	var resp openai.AudioResponse
	err := a.cb.Execute(ctx, func(ctx context.Context) error {
		var err error
		resp, err = a.client.CreateTranscription(ctx, req)
		return err
	})
	if err != nil {
		return nil, a.wrap(op, err)
	}

	lang := req.Language
	if lang == "" {
		lang = whisperLanguageCode(resp.Language)
	}

	return &domain.Transcript{
		Provider:   Name,
		Text:       resp.Text,
		Language:   lang,
		Confidence: whisperConfidence,
	}, nil
}

// Synthesize implements ports.SpeechSynthesizer. Audio is returned as MP3.
func (a *Adapter) Synthesize(ctx context.Context, req domain.SpeechRequest) ([]byte, string, error) {
	const op = "synthesize"
	if !a.Available() {
		return nil, "", domain.NewProviderError(Name, op, domain.ErrProviderUnavailable)
	}

	var data []byte
	err := a.cb.Execute(ctx, func(ctx context.Context) error {
		resp, err := a.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
			Model:          openai.SpeechModel(a.cfg.SpeechModel),
			Input:          req.Text,
			Voice:          Voice(req.Voice),
			ResponseFormat: openai.SpeechResponseFormatMp3,
		})
		if err != nil {
			return err
		}
		defer func() { _ = resp.Close() }()

		data, err = io.ReadAll(resp)
		return err
	})
	if err != nil {
		return nil, "", a.wrap(op, err)
	}
	if len(data) == 0 {
		return nil, "", a.wrap(op, errors.New("no audio data received"))
	}

	return data, "audio/mpeg", nil
}

// ExtractText implements ports.TextExtractor with a vision-capable chat model.
func (a *Adapter) ExtractText(ctx context.Context, img domain.Image) (string, error) {
	const op = "extract text"
	if !a.Available() {
		return "", domain.NewProviderError(Name, op, domain.ErrProviderUnavailable)
	}

	dataURL := "data:" + img.ContentType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)

	var text string
	err := a.cb.Execute(ctx, func(ctx context.Context) error {
		resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: a.cfg.VisionModel,
			Messages: []openai.ChatCompletionMessage{{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: ocrPrompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL, Detail: openai.ImageURLDetailHigh},
					},
				},
			}},
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errors.New("no choices returned")
		}
		text = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", a.wrap(op, err)
	}

	return llm.Clean(text), nil
}

// Voice maps a requested voice name to an OpenAI voice. "default" and "" map to alloy.
func Voice(name string) openai.SpeechVoice {
	switch name {
	case "", domain.DefaultVoice:
		return DefaultVoice
	default:
		return openai.SpeechVoice(name)
	}
}

// wrap maps an API failure to a domain error.
func (a *Adapter) wrap(op string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusBadRequest:
			return domain.NewProviderError(Name, op, domain.NewValidationError("", apiErr.Message))
		default:
			return domain.NewProviderError(Name, op,
				fmt.Errorf("%w: status %d: %s", domain.ErrProviderUnavailable, apiErr.HTTPStatusCode, apiErr.Message))
		}
	}

	return domain.NewProviderError(Name, op, fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err))
}

// Whisper reports the detected language by English name in verbose_json.
var whisperLanguages = map[string]string{
	"arabic": "ar", "english": "en", "french": "fr", "spanish": "es", "german": "de",
	"italian": "it", "portuguese": "pt", "russian": "ru", "chinese": "zh", "japanese": "ja",
	"korean": "ko", "turkish": "tr", "hindi": "hi", "persian": "fa", "urdu": "ur", "hebrew": "he",
	"dutch": "nl", "polish": "pl", "swedish": "sv", "ukrainian": "uk",
}

func whisperLanguageCode(name string) string {
	if code, ok := whisperLanguages[name]; ok {
		return code
	}
	if name == "" {
		return domain.AutoDetect
	}
	return name
}
