package ports

import (
	"context"
	"io"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
)

// SpeechRecognizer turns recorded audio into text.
// language may be domain.AutoDetect.
type SpeechRecognizer interface {
	Name() string
	Transcribe(ctx context.Context, audio domain.Audio, language string) (*domain.Transcript, error)
}

// SpeechSynthesizer renders text as audio.
type SpeechSynthesizer interface {
	// Synthesize returns encoded audio and its content type.
	Synthesize(ctx context.Context, req domain.SpeechRequest) ([]byte, string, error)
}

// TextExtractor reads text out of an image.
type TextExtractor interface {
	ExtractText(ctx context.Context, img domain.Image) (string, error)
}

// AudioObject is a stored audio blob.
type AudioObject struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// AudioStore persists synthesized audio.
type AudioStore interface {
	// Put stores data under id.
	Put(ctx context.Context, id string, data []byte, contentType string) error

	// Get opens a stored object. Returns domain.ErrNotFound for unknown ids.
	// Callers must close Body.
	Get(ctx context.Context, id string) (*AudioObject, error)

	// Delete removes an object. Missing ids are not an error.
	Delete(ctx context.Context, id string) error
}
