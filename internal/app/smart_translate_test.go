package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/ports"
)

func smartRequest() domain.TranslateRequest {
	return domain.TranslateRequest{
		Text:       "Please send the API report. It is important.",
		SourceLang: "en",
		TargetLang: "ar",
		Mode:       domain.ModeFormal,
	}
}

func TestSmartTranslate_StyleAlternatives(t *testing.T) {
	f := newEngineFixture()
	f.google.On("Translate", mock.Anything, mock.Anything).Return(translation("google", "يرجى إرسال التقرير", 0.9), nil).Once()

	styler := &mockStyler{}
	styler.On("TranslateStyles", mock.Anything, mock.Anything,
		[]domain.Mode{domain.ModeCasual, domain.ModeCreative, domain.ModeTechnical},
	).Return(map[domain.Mode]string{
		domain.ModeCasual:    "ابعت التقرير",
		domain.ModeTechnical: "أرسل تقرير الـAPI",
	}, nil).Once()

	svc := NewSmartService(f.service(TranslationConfig{Primary: "google"}, nil, nil), styler, nil, discardLogger())

	got, err := svc.SmartTranslate(context.Background(), smartRequest())

	require.NoError(t, err)
	assert.Equal(t, "google", got.Translation.Provider)
	assert.Equal(t, []Alternative{
		{Style: domain.ModeCasual, Text: "ابعت التقرير", Provider: "openai"},
		{Style: domain.ModeTechnical, Text: "أرسل تقرير الـAPI", Provider: "openai"},
	}, got.Alternatives)
	assert.True(t, got.Insights.HasTechnicalTerms)
	assert.Equal(t, "high", got.Insights.Formality)
	assert.Equal(t, 2, got.Insights.SentenceCount)
	styler.AssertExpectations(t)
	f.assertExpectations(t)
}

func TestSmartTranslate_FallsBackToProviderAlternatives(t *testing.T) {
	tests := []struct {
		name   string
		styler func() ports.StyleTranslator
		flags  ports.FeatureFlags
	}{
		{
			name: "styler fails",
			styler: func() ports.StyleTranslator {
				s := &mockStyler{}
				s.On("TranslateStyles", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("429")).Once()
				return s
			},
		},
		{
			name:   "no styler",
			styler: func() ports.StyleTranslator { return nil },
		},
		{
			name:   "flag disables styler",
			styler: func() ports.StyleTranslator { return &mockStyler{} },
			flags:  staticFlags{bools: map[string]bool{ports.FlagLLMAlternatives: false}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEngineFixture()
			// Primary call, then the multi-provider round.
			f.google.On("Translate", mock.Anything, mock.Anything).Return(translation("google", "مرحبا", 0.9), nil).Twice()
			f.microsoft.On("Translate", mock.Anything, mock.Anything).Return(translation("microsoft", "مرحبا", 0.8), nil).Once()
			f.deepl.On("Translate", mock.Anything, mock.Anything).Return(translation("deepl", "أهلا", 0.95), nil).Once()
			f.libre.unavailable = true
			f.mymemory.On("Translate", mock.Anything, mock.Anything).Return(nil, errors.New("quota")).Once()

			svc := NewSmartService(f.service(TranslationConfig{Primary: "google"}, nil, nil), tt.styler(), tt.flags, discardLogger())

			got, err := svc.SmartTranslate(context.Background(), domain.TranslateRequest{Text: "Hello", TargetLang: "ar"})

			require.NoError(t, err)
			assert.Equal(t, "مرحبا", got.Translation.TranslatedText)
			assert.Equal(t, []Alternative{{Text: "أهلا", Provider: "deepl"}}, got.Alternatives)
			f.assertExpectations(t)
		})
	}
}

func TestSmartTranslate_PropagatesEngineFailure(t *testing.T) {
	f := newEngineFixture()
	f.google.On("Translate", mock.Anything, mock.Anything).Return(nil, errors.New("down")).Once()

	styler := &mockStyler{}
	styler.On("TranslateStyles", mock.Anything, mock.Anything, mock.Anything).Return(map[domain.Mode]string{}, nil).Maybe()

	svc := NewSmartService(f.service(TranslationConfig{Primary: "google"}, nil, nil), styler, nil, discardLogger())

	_, err := svc.SmartTranslate(context.Background(), domain.TranslateRequest{Text: "Hello", TargetLang: "ar"})

	assert.ErrorIs(t, err, domain.ErrAllProvidersFailed)
	var fb *domain.FallbackError
	assert.ErrorAs(t, err, &fb)
}
