package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
)

func TestTranslationPrompt(t *testing.T) {
	tests := []struct {
		name     string
		req      domain.TranslateRequest
		contains []string
		excludes []string
	}{
		{
			name:     "auto source",
			req:      domain.TranslateRequest{Text: "Hello", SourceLang: domain.AutoDetect, TargetLang: "ar", Mode: domain.ModeContextual},
			contains: []string{"into Arabic", "natural phrasing", "Text:\nHello"},
			excludes: []string{"from "},
		},
		{
			name:     "explicit source with content and context",
			req:      domain.TranslateRequest{Text: "Dosage", SourceLang: "en", TargetLang: "fr", Mode: domain.ModeFormal, ContentType: domain.ContentMedical, Context: "prescription"},
			contains: []string{"from English into French", "formal", "medical content", "Context: prescription"},
		},
		{
			name:     "general content omitted",
			req:      domain.TranslateRequest{Text: "x", SourceLang: "en", TargetLang: "de", Mode: domain.ModeCasual, ContentType: domain.ContentGeneral},
			contains: []string{"casual"},
			excludes: []string{"content."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TranslationPrompt(tt.req)
			for _, s := range tt.contains {
				assert.Contains(t, got, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, got, s)
			}
		})
	}
}

func TestModeInstruction_UnknownFallsBackToContextual(t *testing.T) {
	assert.Equal(t, ModeInstruction(domain.ModeContextual), ModeInstruction("bogus"))
}

func TestStylesPrompt(t *testing.T) {
	got := StylesPrompt(domain.TranslateRequest{Text: "Hi", TargetLang: "es"},
		[]domain.Mode{domain.ModeFormal, domain.ModeCreative})

	assert.Contains(t, got, "into Spanish")
	assert.Contains(t, got, "- formal:")
	assert.Contains(t, got, "- creative:")
	assert.NotContains(t, got, "- casual:")
	assert.Contains(t, got, "JSON object")
}

func TestParseStyles(t *testing.T) {
	styles := []domain.Mode{domain.ModeFormal, domain.ModeCasual}

	got, err := ParseStyles("```json\n{\"formal\":\"Buenos días\",\"casual\":\" Hola \",\"extra\":\"x\"}\n```", styles)
	require.NoError(t, err)
	assert.Equal(t, map[domain.Mode]string{
		domain.ModeFormal: "Buenos días",
		domain.ModeCasual: "Hola",
	}, got)

	got, err = ParseStyles(`{"formal":"Bonjour"}`, styles)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = ParseStyles("not json", styles)
	require.Error(t, err)
}

func TestClean(t *testing.T) {
	tests := map[string]string{
		"  hola  ":    "hola",
		`"hola"`:      "hola",
		`'hola'`:      "hola",
		`"`:           `"`,
		`"unbalanced`: `"unbalanced`,
	}

	for in, want := range tests {
		assert.Equal(t, want, Clean(in), in)
	}
}
