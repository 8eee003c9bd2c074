package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/ports"
)

// AudioURLPrefix is where synthesized audio is served.
const AudioURLPrefix = "/api/v1/audio/"

// VoiceTranslation is the result of speech-in, translation-out.
type VoiceTranslation struct {
	Transcript  *domain.Transcript
	Translation *domain.Translation
	Audio       *domain.SynthesizedAudio
}

// SpeechService transcribes, synthesizes and stores audio.
type SpeechService struct {
	recognizer  ports.SpeechRecognizer
	synthesizer ports.SpeechSynthesizer
	store       ports.AudioStore
	engine      *TranslationService
	logger      *slog.Logger
	newID       func() string
}

// NewSpeechService creates the service. Any dependency may be nil; the
// operations that need it then report the provider as unavailable.
func NewSpeechService(
	recognizer ports.SpeechRecognizer,
	synthesizer ports.SpeechSynthesizer,
	store ports.AudioStore,
	engine *TranslationService,
	logger *slog.Logger,
) *SpeechService {
	if logger == nil {
		logger = slog.Default()
	}

	return &SpeechService{
		recognizer:  recognizer,
		synthesizer: synthesizer,
		store:       store,
		engine:      engine,
		logger:      logger.With(slog.String("component", "app.SpeechService")),
		newID:       uuid.NewString,
	}
}

// Transcribe converts audio to text. An empty language means auto-detect.
func (s *SpeechService) Transcribe(ctx context.Context, audio domain.Audio, language string) (*domain.Transcript, error) {
	if err := audio.Validate(); err != nil {
		return nil, err
	}

	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		language = domain.AutoDetect
	}
	if err := domain.ValidateSource(language); err != nil {
		return nil, err
	}

	if s.recognizer == nil {
		return nil, domain.NewProviderError("speech", "transcribe", domain.ErrProviderUnavailable)
	}

	tr, err := s.recognizer.Transcribe(ctx, audio, language)
	if err != nil {
		return nil, err
	}
	if tr.Provider == "" {
		tr.Provider = s.recognizer.Name()
	}
	if tr.Language == "" {
		tr.Language = language
	}

	loggerFor(ctx, s.logger).InfoContext(ctx, "audio transcribed",
		slog.String("provider", tr.Provider),
		slog.Int("bytes", len(audio.Data)),
		slog.String("language", tr.Language),
	)

	return tr, nil
}

// Synthesize renders text as speech, stores it and returns where to fetch it.
func (s *SpeechService) Synthesize(ctx context.Context, req domain.SpeechRequest) (*domain.SynthesizedAudio, error) {
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		return nil, domain.NewValidationError("text", "text is required for speech synthesis")
	}

	req.Language = strings.ToLower(strings.TrimSpace(req.Language))
	if req.Language == "" {
		req.Language = "en"
	}
	if err := domain.ValidateTarget(req.Language); err != nil {
		return nil, err
	}
	if req.Voice == "" {
		req.Voice = domain.DefaultVoice
	}

	if s.synthesizer == nil || s.store == nil {
		return nil, domain.NewProviderError("speech", "synthesize", domain.ErrProviderUnavailable)
	}

	data, contentType, err := s.synthesizer.Synthesize(ctx, req)
	if err != nil {
		return nil, err
	}

	id := s.newID()
	if err := s.store.Put(ctx, id, data, contentType); err != nil {
		return nil, fmt.Errorf("storing synthesized audio: %w", err)
	}

	return &domain.SynthesizedAudio{
		ID:          id,
		URL:         AudioURLPrefix + id,
		ContentType: contentType,
		Size:        int64(len(data)),
		Duration:    domain.EstimateSpeechDuration(req.Text),
		Language:    req.Language,
		Voice:       req.Voice,
	}, nil
}

// VoiceTranslate transcribes audio and translates the transcript. When speak
// is set the translation is synthesized too; a synthesis failure leaves
// Audio nil rather than failing the call.
func (s *SpeechService) VoiceTranslate(ctx context.Context, audio domain.Audio, sourceLang, targetLang string, speak bool) (*VoiceTranslation, error) {
	if s.engine == nil {
		return nil, domain.NewProviderError("translation", "translate", domain.ErrProviderUnavailable)
	}

	tr, err := s.Transcribe(ctx, audio, sourceLang)
	if err != nil {
		return nil, err
	}

	source := strings.ToLower(strings.TrimSpace(sourceLang))
	if (source == "" || source == domain.AutoDetect) && domain.IsSupported(tr.Language) {
		source = tr.Language
	}

	t, err := s.engine.Translate(ctx, domain.TranslateRequest{
		Text:       tr.Text,
		SourceLang: source,
		TargetLang: targetLang,
	})
	if err != nil {
		return nil, err
	}

	out := &VoiceTranslation{Transcript: tr, Translation: t}

	if speak {
		audio, err := s.Synthesize(ctx, domain.SpeechRequest{Text: t.TranslatedText, Language: t.TargetLang})
		if err != nil {
			loggerFor(ctx, s.logger).WarnContext(ctx, "speech synthesis skipped", slog.Any("error", err))
		} else {
			out.Audio = audio
		}
	}

	return out, nil
}

// Audio fetches stored audio. The caller closes the body.
func (s *SpeechService) Audio(ctx context.Context, id string) (*ports.AudioObject, error) {
	if s.store == nil {
		return nil, domain.NewNotFoundError("audio", id)
	}
	return s.store.Get(ctx, id)
}

// DeleteAudio removes stored audio.
func (s *SpeechService) DeleteAudio(ctx context.Context, id string) error {
	if s.store == nil {
		return nil
	}
	return s.store.Delete(ctx, id)
}

// CanSpeak reports whether synthesis is configured.
func (s *SpeechService) CanSpeak() bool {
	return s != nil && s.synthesizer != nil && s.store != nil
}
