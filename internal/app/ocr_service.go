package app

import (
	"context"
	"log/slog"
	"strings"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/ports"
)

// DefaultOCRTarget is the target language when none is given.
const DefaultOCRTarget = "en"

// OCRService reads text from images and translates it.
type OCRService struct {
	extractor ports.TextExtractor
	engine    *TranslationService
	logger    *slog.Logger
}

// NewOCRService creates the service. A nil extractor makes every call
// report the provider as unavailable.
func NewOCRService(extractor ports.TextExtractor, engine *TranslationService, logger *slog.Logger) *OCRService {
	if logger == nil {
		logger = slog.Default()
	}

	return &OCRService{
		extractor: extractor,
		engine:    engine,
		logger:    logger.With(slog.String("component", "app.OCRService")),
	}
}

// ExtractAndTranslate extracts the text in img and translates it into
// targetLang unless it is already in that language.
func (s *OCRService) ExtractAndTranslate(ctx context.Context, img domain.Image, targetLang string) (*domain.OCRResult, error) {
	targetLang = strings.ToLower(strings.TrimSpace(targetLang))
	if targetLang == "" {
		targetLang = DefaultOCRTarget
	}
	if err := domain.ValidateTarget(targetLang); err != nil {
		return nil, err
	}
	if err := img.Validate(); err != nil {
		return nil, err
	}

	if s.extractor == nil {
		return nil, domain.NewProviderError("ocr", "extract", domain.ErrProviderUnavailable)
	}

	text, err := s.extractor.ExtractText(ctx, img)
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.NewValidationError("image", "no text found in image")
	}

	result := &domain.OCRResult{
		ExtractedText:  text,
		TranslatedText: text,
		Language:       "unknown",
		TargetLang:     targetLang,
		Provider:       extractorName(s.extractor),
	}

	logger := loggerFor(ctx, s.logger)

	source := domain.AutoDetect
	if det, err := s.engine.DetectLanguage(ctx, text); err == nil {
		result.Language = det.Language
		result.Confidence = det.Confidence
		if domain.IsSupported(det.Language) {
			source = det.Language
		}
	} else {
		logger.DebugContext(ctx, "language detection failed for extracted text", slog.Any("error", err))
	}

	if result.Language == targetLang {
		return result, nil
	}

	t, err := s.engine.Translate(ctx, domain.TranslateRequest{Text: text, SourceLang: source, TargetLang: targetLang})
	if err != nil {
		return nil, err
	}

	result.TranslatedText = t.TranslatedText
	result.Confidence = t.Confidence
	result.Provider = t.Provider
	if result.Language == "unknown" && t.DetectedLanguage != "" {
		result.Language = t.DetectedLanguage
	}

	logger.InfoContext(ctx, "image text translated",
		slog.String("language", result.Language),
		slog.String("target", targetLang),
		slog.Int("chars", len(text)),
	)

	return result, nil
}

func extractorName(e ports.TextExtractor) string {
	if n, ok := e.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "ocr"
}
