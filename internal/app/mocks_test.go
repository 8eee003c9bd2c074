package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockTranslator struct {
	mock.Mock
	name        string
	unavailable bool
}

func newTranslator(name string) *mockTranslator {
	return &mockTranslator{name: name}
}

func (m *mockTranslator) Name() string        { return m.name }
func (m *mockTranslator) DisplayName() string { return strings.ToUpper(m.name) }
func (m *mockTranslator) Available() bool     { return !m.unavailable }

func (m *mockTranslator) Translate(ctx context.Context, req domain.TranslateRequest) (*domain.Translation, error) {
	args := m.Called(ctx, req)
	t, _ := args.Get(0).(*domain.Translation)
	return t, args.Error(1)
}

type mockDetector struct {
	mockTranslator
}

func newDetector(name string) *mockDetector {
	return &mockDetector{mockTranslator: mockTranslator{name: name}}
}

func (m *mockDetector) DetectLanguage(ctx context.Context, text string) (*domain.Detection, error) {
	args := m.Called(ctx, text)
	d, _ := args.Get(0).(*domain.Detection)
	return d, args.Error(1)
}

type mockStyler struct {
	mock.Mock
}

func (m *mockStyler) Name() string { return "openai" }

func (m *mockStyler) TranslateStyles(ctx context.Context, req domain.TranslateRequest, styles []domain.Mode) (map[domain.Mode]string, error) {
	args := m.Called(ctx, req, styles)
	out, _ := args.Get(0).(map[domain.Mode]string)
	return out, args.Error(1)
}

type mockRecognizer struct {
	mock.Mock
}

func (m *mockRecognizer) Name() string { return "whisper" }

func (m *mockRecognizer) Transcribe(ctx context.Context, audio domain.Audio, language string) (*domain.Transcript, error) {
	args := m.Called(ctx, audio, language)
	tr, _ := args.Get(0).(*domain.Transcript)
	return tr, args.Error(1)
}

type mockSynthesizer struct {
	mock.Mock
}

func (m *mockSynthesizer) Synthesize(ctx context.Context, req domain.SpeechRequest) ([]byte, string, error) {
	args := m.Called(ctx, req)
	data, _ := args.Get(0).([]byte)
	return data, args.String(1), args.Error(2)
}

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) ExtractText(ctx context.Context, img domain.Image) (string, error) {
	args := m.Called(ctx, img)
	return args.String(0), args.Error(1)
}

// staticFlags answers from fixed maps and falls back to the default.
type staticFlags struct {
	bools   map[string]bool
	strings map[string]string
}

func (f staticFlags) IsEnabled(_ context.Context, flag string, def bool) bool {
	if v, ok := f.bools[flag]; ok {
		return v
	}
	return def
}

func (f staticFlags) GetString(_ context.Context, flag, def string) string {
	if v, ok := f.strings[flag]; ok {
		return v
	}
	return def
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []ports.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e ports.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type memAudioStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemAudioStore() *memAudioStore {
	return &memAudioStore{objects: make(map[string][]byte)}
}

func (s *memAudioStore) Put(_ context.Context, id string, data []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[id] = data
	return nil
}

func (s *memAudioStore) Get(_ context.Context, id string) (*ports.AudioObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[id]
	if !ok {
		return nil, domain.NewNotFoundError("audio", id)
	}
	return &ports.AudioObject{Body: io.NopCloser(bytes.NewReader(data)), ContentType: "audio/mpeg", Size: int64(len(data))}, nil
}

func (s *memAudioStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, id)
	return nil
}

func (s *memAudioStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func translation(provider, text string, confidence float64) *domain.Translation {
	return &domain.Translation{Provider: provider, TranslatedText: text, Confidence: confidence}
}
