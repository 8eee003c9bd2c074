package dto

import (
	"github.com/voicetranslatorpro/voice-translator-pro/internal/app"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
)

// Multipart field names.
const (
	FieldImage = "image"
	FieldAudio = "audio"
)

// OCRForm holds the form fields sent alongside the image.
type OCRForm struct {
	TargetLang string `form:"targetLang" validate:"omitempty,target"`
}

// OCRResponse answers POST /ocr.
type OCRResponse struct {
	Meta
	ExtractedText  string  `json:"extractedText"`
	TranslatedText string  `json:"translatedText"`
	Confidence     float64 `json:"confidence"`
	Language       string  `json:"language"`
	TargetLanguage string  `json:"targetLanguage"`
	Provider       string  `json:"provider"`
}

// NewOCRResponse converts an extraction result.
func NewOCRResponse(r *domain.OCRResult) OCRResponse {
	return OCRResponse{
		Meta:           OK(),
		ExtractedText:  r.ExtractedText,
		TranslatedText: r.TranslatedText,
		Confidence:     r.Confidence,
		Language:       r.Language,
		TargetLanguage: r.TargetLang,
		Provider:       r.Provider,
	}
}

// SpeechForm holds the form fields sent alongside the audio. When
// TargetLang is set the transcript is also translated, and Speak asks for
// the translation to be synthesized.
type SpeechForm struct {
	Language   string `form:"language"   validate:"omitempty,lang"`
	TargetLang string `form:"targetLang" validate:"omitempty,target"`
	Speak      bool   `form:"speak"`
}

// SpeechToTextResponse answers POST /speech-to-text.
type SpeechToTextResponse struct {
	Meta
	Text        string           `json:"text"`
	Confidence  float64          `json:"confidence"`
	Language    string           `json:"language"`
	Provider    string           `json:"provider"`
	Translation *TranslationBody `json:"translation,omitempty"`
	Audio       *AudioBody       `json:"audio,omitempty"`
}

// NewSpeechToTextResponse converts a transcript.
func NewSpeechToTextResponse(t *domain.Transcript) SpeechToTextResponse {
	return SpeechToTextResponse{
		Meta:       OK(),
		Text:       t.Text,
		Confidence: t.Confidence,
		Language:   t.Language,
		Provider:   t.Provider,
	}
}

// NewVoiceTranslationResponse converts a transcribe-translate-speak result.
func NewVoiceTranslationResponse(v *app.VoiceTranslation) SpeechToTextResponse {
	resp := NewSpeechToTextResponse(v.Transcript)
	if v.Translation != nil {
		body := NewTranslationBody(v.Translation)
		resp.Translation = &body
	}
	if v.Audio != nil {
		audio := NewAudioBody(v.Audio)
		resp.Audio = &audio
	}

	return resp
}

// TextToSpeechRequest is the body of POST /text-to-speech.
type TextToSpeechRequest struct {
	Text     string `json:"text"     validate:"required,notempty,max=4096"`
	Language string `json:"language" validate:"omitempty,target"`
	Voice    string `json:"voice"    validate:"max=32"`
}

// AudioBody describes stored synthesized audio.
type AudioBody struct {
	ID          string  `json:"id"`
	AudioURL    string  `json:"audioUrl"`
	ContentType string  `json:"contentType"`
	Size        int64   `json:"size"`
	Duration    float64 `json:"duration"`
	Language    string  `json:"language"`
	Voice       string  `json:"voice"`
}

// NewAudioBody converts synthesized audio. Duration is in seconds.
func NewAudioBody(a *domain.SynthesizedAudio) AudioBody {
	return AudioBody{
		ID:          a.ID,
		AudioURL:    a.URL,
		ContentType: a.ContentType,
		Size:        a.Size,
		Duration:    a.Duration.Seconds(),
		Language:    a.Language,
		Voice:       a.Voice,
	}
}

// TextToSpeechResponse answers POST /text-to-speech.
type TextToSpeechResponse struct {
	Meta
	AudioBody
}

// AudioURI binds the :id path parameter of GET /audio/:id.
type AudioURI struct {
	ID string `uri:"id" validate:"required,uuid"`
}
