package domain

import (
	"strings"
	"time"
)

// MaxUploadBytes bounds image and audio uploads.
const MaxUploadBytes = 10 << 20

// DefaultVoice is the voice name callers use when they have no preference.
const DefaultVoice = "default"

// speechWordsPerSecond estimates synthesized audio length.
const speechWordsPerSecond = 2.5

// Audio is an uploaded recording.
type Audio struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Validate rejects empty or oversized audio.
func (a Audio) Validate() error {
	if len(a.Data) == 0 {
		return NewValidationError("audio", "no audio file provided")
	}
	if len(a.Data) > MaxUploadBytes {
		return NewValidationError("audio", "file exceeds 10MB limit")
	}
	return nil
}

// Transcript is the result of speech recognition.
type Transcript struct {
	Provider   string
	Text       string
	Language   string
	Confidence float64
}

// SpeechRequest asks for text to be synthesized.
type SpeechRequest struct {
	Text     string
	Language string
	Voice    string
}

// SynthesizedAudio is generated speech stored in the audio store.
type SynthesizedAudio struct {
	ID          string
	URL         string
	ContentType string
	Size        int64
	Duration    time.Duration
	Language    string
	Voice       string
}

// EstimateSpeechDuration approximates how long text takes to speak.
func EstimateSpeechDuration(text string) time.Duration {
	words := len(strings.Fields(text))
	return time.Duration(float64(words) / speechWordsPerSecond * float64(time.Second))
}

// Image is an uploaded picture for text extraction.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// Validate rejects empty, oversized, or unsupported images.
func (i Image) Validate() error {
	if len(i.Data) == 0 {
		return NewValidationError("image", "no image file provided")
	}
	if len(i.Data) > MaxUploadBytes {
		return NewValidationError("image", "file exceeds 10MB limit")
	}
	if !imageTypes[strings.ToLower(i.ContentType)] {
		return NewValidationError("image", "unsupported image type "+i.ContentType)
	}
	return nil
}

// OCRResult is extracted text and its translation.
type OCRResult struct {
	ExtractedText  string
	TranslatedText string
	Language       string
	TargetLang     string
	Confidence     float64
	Provider       string
}
