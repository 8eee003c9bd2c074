package acl

import (
	"context"
	"errors"
	"net/url"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/clients"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
)

// DeepgramBaseURL is the Deepgram API host.
const DeepgramBaseURL = "https://api.deepgram.com"

// DeepgramAuthValue formats the authorization header value for key.
func DeepgramAuthValue(key string) string {
	return "Token " + key
}

const deepgramModel = "nova-2"

type deepgramResponse struct {
	Results struct {
		Channels []struct {
			DetectedLanguage string `json:"detected_language"`
			Alternatives     []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// DeepgramAdapter transcribes prerecorded audio with Deepgram.
type DeepgramAdapter struct {
	BaseAdapter
}

// NewDeepgramAdapter creates the adapter. It is disabled without a key.
func NewDeepgramAdapter(client *clients.Client, apiKey string) *DeepgramAdapter {
	return &DeepgramAdapter{BaseAdapter: NewBaseAdapter(client, "Deepgram", apiKey != "")}
}

// Transcribe implements ports.SpeechRecognizer.
func (a *DeepgramAdapter) Transcribe(ctx context.Context, audio domain.Audio, language string) (*domain.Transcript, error) {
	const op = "transcribe"
	if err := a.Guard(op); err != nil {
		return nil, err
	}

	q := url.Values{"model": {deepgramModel}, "smart_format": {"true"}}
	if language == "" || language == domain.AutoDetect {
		q.Set("detect_language", "true")
	} else {
		q.Set("language", language)
	}

	contentType := audio.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	body, err := a.PostBytes(ctx, "/v1/listen", q, contentType, audio.Data, op)
	if err != nil {
		return nil, err
	}

	resp, err := DecodeResponse[deepgramResponse](body)
	if err != nil {
		return nil, Malformed(a.Name(), op, err)
	}
	if len(resp.Results.Channels) == 0 || len(resp.Results.Channels[0].Alternatives) == 0 {
		return nil, Malformed(a.Name(), op, errors.New("no transcript"))
	}

	ch := resp.Results.Channels[0]
	alt := ch.Alternatives[0]

	lang := ch.DetectedLanguage
	if lang == "" {
		lang = language
	}

	return &domain.Transcript{
		Provider:   a.Name(),
		Text:       alt.Transcript,
		Language:   lang,
		Confidence: alt.Confidence,
	}, nil
}
