// Package llm holds the prompts and response parsing shared by the
// LLM-backed translation adapters.
package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
)

// Confidence is reported for LLM translations, which carry no score of their own.
const Confidence = 0.85

// SystemPrompt frames the model as a translator that returns only the translation.
const SystemPrompt = "You are a professional translator. " +
	"Reply with the translation only, without quotes, notes, or explanations."

var modeInstructions = map[domain.Mode]string{
	domain.ModeContextual: "Preserve the meaning and context and use natural phrasing.",
	domain.ModeFormal:     "Use a formal, professional register.",
	domain.ModeCasual:     "Use a casual, conversational register.",
	domain.ModeCreative:   "Adapt idioms and tone freely so the text reads as if written by a native speaker.",
	domain.ModeTechnical:  "Keep technical terms precise. Do not translate code, identifiers, or units.",
}

// ModeInstruction returns the style instruction for m.
func ModeInstruction(m domain.Mode) string {
	if s, ok := modeInstructions[m]; ok {
		return s
	}
	return modeInstructions[domain.ModeContextual]
}

// TranslationPrompt builds the user prompt for a single translation.
func TranslationPrompt(req domain.TranslateRequest) string {
	var b strings.Builder

	if req.SourceLang == "" || req.SourceLang == domain.AutoDetect {
		fmt.Fprintf(&b, "Translate the following text into %s.\n", domain.EnglishName(req.TargetLang))
	} else {
		fmt.Fprintf(&b, "Translate the following text from %s into %s.\n",
			domain.EnglishName(req.SourceLang), domain.EnglishName(req.TargetLang))
	}

	b.WriteString(ModeInstruction(req.Mode))
	b.WriteByte('\n')

	if req.ContentType != "" && req.ContentType != domain.ContentGeneral {
		fmt.Fprintf(&b, "The text is %s content.\n", req.ContentType)
	}
	if req.Context != "" {
		fmt.Fprintf(&b, "Context: %s\n", req.Context)
	}

	b.WriteString("\nText:\n")
	b.WriteString(req.Text)

	return b.String()
}

// StylesPrompt asks for one rendering per style as a JSON object keyed by style name.
func StylesPrompt(req domain.TranslateRequest, styles []domain.Mode) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Translate the following text into %s once for each style below.\n",
		domain.EnglishName(req.TargetLang))
	b.WriteString("Return a JSON object whose keys are the style names and whose values are the translations.\n\n")

	for _, s := range styles {
		fmt.Fprintf(&b, "- %s: %s\n", s, ModeInstruction(s))
	}

	b.WriteString("\nText:\n")
	b.WriteString(req.Text)

	return b.String()
}

// ParseStyles decodes a StylesPrompt reply. Styles missing from the reply are omitted.
// Replies wrapped in a markdown code fence are accepted.
func ParseStyles(raw string, styles []domain.Mode) (map[domain.Mode]string, error) {
	raw = stripFence(raw)

	var decoded map[string]string
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("decoding styles: %w", err)
	}

	out := make(map[domain.Mode]string, len(styles))
	for _, s := range styles {
		if v := strings.TrimSpace(decoded[string(s)]); v != "" {
			out[s] = v
		}
	}

	return out, nil
}

// Clean trims whitespace and surrounding quotes from a model reply.
func Clean(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
