package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeText_Complexity(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		want      string
		sentences int
	}{
		{"short sentences", "Hello there. How are you?", ComplexitySimple, 2},
		{"eleven words", strings.Repeat("word ", 11) + ".", ComplexityMedium, 1},
		{"sixteen words", strings.Repeat("word ", 16) + "!", ComplexityComplex, 1},
		{"exactly fifteen", strings.Repeat("word ", 15), ComplexityMedium, 1},
		{"punctuation only", "...!?", ComplexitySimple, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeText(tt.text, ModeContextual)
			assert.Equal(t, tt.want, got.Complexity)
			assert.Equal(t, tt.sentences, got.SentenceCount)
		})
	}
}

func TestSentiment(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"This is a great and useful tool", SentimentPositive},
		{"There is a problem, it will fail", SentimentNegative},
		{"good but bad", SentimentNeutral},
		{"Please kindly accept, sincerely yours", SentimentFormal},
		{"هذا رائع وجميل", SentimentPositive},
		{"", SentimentNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, Sentiment(tt.text))
		})
	}
}

func TestDetectDomain(t *testing.T) {
	assert.Equal(t, "medical", DetectDomain("The doctor prescribed medicine"))
	assert.Equal(t, "technical", DetectDomain("كمبيوتر جديد"))
	assert.Equal(t, "legal", DetectDomain("Sign the CONTRACT today"))
	assert.Equal(t, DomainGeneral, DetectDomain("a sunny afternoon"))
	// medical is checked before technical
	assert.Equal(t, "medical", DetectDomain("surgery software"))
}

func TestAnalyzeText_TechnicalAndFormality(t *testing.T) {
	got := AnalyzeText("Call the HTTP API", ModeFormal)
	assert.True(t, got.HasTechnicalTerms)
	assert.Equal(t, "high", got.Formality)
	assert.Equal(t, 4, got.WordCount)

	got = AnalyzeText("call the api", ModeCasual)
	assert.False(t, got.HasTechnicalTerms)
	assert.Equal(t, "low", got.Formality)
}
