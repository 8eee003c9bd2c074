package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/http/dto"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/storage/memory"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/app"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/buildinfo"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeProvider prefixes the text with the target language.
type fakeProvider struct {
	name string
	err  error
}

func (p fakeProvider) Name() string        { return p.name }
func (p fakeProvider) DisplayName() string { return strings.ToUpper(p.name) }
func (p fakeProvider) Available() bool     { return true }

func (p fakeProvider) Translate(_ context.Context, req domain.TranslateRequest) (*domain.Translation, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &domain.Translation{Provider: p.name, TranslatedText: "[" + req.TargetLang + "] " + req.Text, Confidence: 0.9}, nil
}

func (p fakeProvider) DetectLanguage(context.Context, string) (*domain.Detection, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &domain.Detection{Language: "es", Confidence: 0.8}, nil
}

type fakeRecognizer struct{}

func (fakeRecognizer) Name() string { return "whisper" }

func (fakeRecognizer) Transcribe(_ context.Context, _ domain.Audio, language string) (*domain.Transcript, error) {
	if language == "" {
		language = "en"
	}
	return &domain.Transcript{Text: "hello world", Language: language, Confidence: 0.95}, nil
}

type fakeSynthesizer struct{}

func (fakeSynthesizer) Synthesize(context.Context, domain.SpeechRequest) ([]byte, string, error) {
	return []byte("ID3-fake-mp3"), "audio/mpeg", nil
}

type fakeExtractor struct{}

func (fakeExtractor) ExtractText(context.Context, domain.Image) (string, error) {
	return "STOP", nil
}

type memAudio struct {
	mu   sync.Mutex
	objs map[string][]byte
}

func (m *memAudio) Put(_ context.Context, id string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objs[id] = data
	return nil
}

func (m *memAudio) Get(_ context.Context, id string) (*ports.AudioObject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objs[id]
	if !ok {
		return nil, domain.NewNotFoundError("audio", id)
	}
	return &ports.AudioObject{Body: io.NopCloser(bytes.NewReader(data)), ContentType: "audio/mpeg", Size: int64(len(data))}, nil
}

func (m *memAudio) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objs, id)
	return nil
}

type testServices struct {
	app.Services
	history *memory.HistoryStore
}

func newServices(t *testing.T, providers ...ports.Translator) testServices {
	t.Helper()

	if len(providers) == 0 {
		providers = []ports.Translator{fakeProvider{name: "google"}}
	}

	history := memory.NewHistoryStore()
	engine := app.NewTranslationService(providers, nil, nil, nil, history, &app.TranslationConfig{
		Primary:  "google",
		Fallback: true,
		Logger:   quiet,
	})
	speech := app.NewSpeechService(fakeRecognizer{}, fakeSynthesizer{}, &memAudio{objs: map[string][]byte{}}, engine, quiet)

	return testServices{
		Services: app.Services{
			Translation:   engine,
			Speech:        speech,
			OCR:           app.NewOCRService(fakeExtractor{}, engine, quiet),
			Conversations: app.NewConversationService(memory.NewConversationStore(), engine, speech, quiet),
			Groups:        app.NewGroupService(memory.NewGroupStore(), engine, quiet),
			History:       app.NewHistoryService(history, 0, quiet),
		},
		history: history,
	}
}

func newEngine(svcs app.Services) *gin.Engine {
	r := gin.New()
	api := r.Group("/api/v1")

	th := NewTranslationHandler(svcs.Translation, svcs.Smart, "google")
	api.POST("/translate", th.Translate)
	api.POST("/smart-translate", th.SmartTranslate)
	api.POST("/translate/multi", th.TranslateMulti)
	api.POST("/detect", th.Detect)
	api.GET("/providers", th.Providers)
	api.GET("/providers/stats", th.Stats)
	api.POST("/providers/:name/test", th.TestProvider)
	api.GET("/languages", th.Languages)

	mh := NewMediaHandler(svcs.Speech, svcs.OCR)
	api.POST("/ocr", mh.OCR)
	api.POST("/speech-to-text", mh.SpeechToText)
	api.POST("/text-to-speech", mh.TextToSpeech)
	api.GET("/audio/:id", mh.Audio)

	ch := NewConversationHandler(svcs.Conversations)
	api.POST("/conversation", ch.Converse)
	api.POST("/conversations", ch.Start)
	api.GET("/conversations", ch.List)
	api.GET("/conversations/:id", ch.Get)
	api.DELETE("/conversations/:id", ch.Delete)
	api.POST("/conversations/:id/messages", ch.AddMessage)
	api.POST("/conversations/:id/pause", ch.Pause)
	api.POST("/conversations/:id/resume", ch.Resume)
	api.POST("/conversations/:id/end", ch.End)

	gh := NewGroupHandler(svcs.Groups)
	api.POST("/groups", gh.Create)
	api.GET("/groups", gh.List)
	api.GET("/groups/:id", gh.Get)
	api.DELETE("/groups/:id", gh.Delete)
	api.POST("/groups/:id/join", gh.Join)
	api.POST("/groups/:id/leave", gh.Leave)
	api.POST("/groups/:id/end", gh.End)
	api.POST("/groups/:id/messages", gh.Send)
	api.PATCH("/groups/:id/settings", gh.UpdateSettings)

	hh := NewHistoryHandler(svcs.History)
	api.GET("/translations", hh.List)
	api.POST("/translations", hh.Save)

	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[dto.ErrorResponse](t, w).Error.Code
}

func TestTranslationHandler_Translate(t *testing.T) {
	tests := []struct {
		name       string
		providers  []ports.Translator
		body       any
		wantStatus int
		wantCode   string
		wantText   string
	}{
		{
			name:       "success",
			body:       map[string]any{"text": "hello", "targetLang": "es"},
			wantStatus: http.StatusOK,
			wantText:   "[es] hello",
		},
		{
			name:       "missing target",
			body:       map[string]any{"text": "hello"},
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrorCodeValidation,
		},
		{
			name:       "auto target",
			body:       map[string]any{"text": "hello", "targetLang": "auto"},
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrorCodeValidation,
		},
		{
			name:       "blank text",
			body:       map[string]any{"text": "   ", "targetLang": "es"},
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrorCodeValidation,
		},
		{
			name:       "unknown mode",
			body:       map[string]any{"text": "hello", "targetLang": "es", "mode": "pirate"},
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrorCodeValidation,
		},
		{
			name:       "malformed json",
			body:       "not an object",
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrorCodeBadRequest,
		},
		{
			name:       "every provider fails",
			providers:  []ports.Translator{fakeProvider{name: "google", err: errors.New("boom")}},
			body:       map[string]any{"text": "hello", "targetLang": "es"},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   dto.ErrorCodeUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newEngine(newServices(t, tt.providers...).Services)

			w := do(t, r, http.MethodPost, "/api/v1/translate", tt.body)

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(t, w))
				return
			}

			resp := decode[dto.TranslationResponse](t, w)
			assert.True(t, resp.Success)
			assert.Equal(t, tt.wantText, resp.TranslatedText)
			assert.Equal(t, "google", resp.Provider)
		})
	}
}

func TestTranslationHandler_TranslateAndSave(t *testing.T) {
	svcs := newServices(t)
	r := newEngine(svcs.Services)

	w := do(t, r, http.MethodPost, "/api/v1/translate", map[string]any{"text": "hello", "targetLang": "fr", "save": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode[dto.TranslationResponse](t, w).Saved)

	w = do(t, r, http.MethodGet, "/api/v1/translations", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	page := decode[dto.HistoryResponse](t, w)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "[fr] hello", page.Items[0].TranslatedText)
	assert.Equal(t, domain.AnonymousUser, page.Items[0].UserID)
}

func TestTranslationHandler_SmartUnavailable(t *testing.T) {
	r := newEngine(newServices(t).Services)

	w := do(t, r, http.MethodPost, "/api/v1/smart-translate", map[string]any{"text": "hello", "targetLang": "es"})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, dto.ErrorCodeUnavailable, errorCode(t, w))
}

func TestTranslationHandler_SmartTranslate(t *testing.T) {
	svcs := newServices(t)
	svcs.Smart = app.NewSmartService(svcs.Translation, nil, nil, quiet)
	r := newEngine(svcs.Services)

	w := do(t, r, http.MethodPost, "/api/v1/smart-translate", map[string]any{
		"text": "The quarterly revenue grew.", "targetLang": "de", "contentType": "business",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[dto.SmartTranslationResponse](t, w)
	assert.Equal(t, "[de] The quarterly revenue grew.", resp.TranslatedText)
	assert.Equal(t, domain.ContentBusiness, resp.ContentType)
}

func TestTranslationHandler_Multi(t *testing.T) {
	r := newEngine(newServices(t,
		fakeProvider{name: "google"},
		fakeProvider{name: "deepl"},
		fakeProvider{name: "mymemory", err: errors.New("quota")},
	).Services)

	w := do(t, r, http.MethodPost, "/api/v1/translate/multi", map[string]any{"text": "hi", "targetLang": "it"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[dto.MultiTranslationResponse](t, w)
	assert.Equal(t, 2, resp.Count)
}

func TestTranslationHandler_Detect(t *testing.T) {
	r := newEngine(newServices(t).Services)

	w := do(t, r, http.MethodPost, "/api/v1/detect", map[string]any{"text": "hola amigo"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[dto.DetectResponse](t, w)
	assert.Equal(t, "es", resp.Language)
	assert.Equal(t, "google", resp.Provider)

	w = do(t, r, http.MethodPost, "/api/v1/detect", map[string]any{"text": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTranslationHandler_ProvidersAndLanguages(t *testing.T) {
	r := newEngine(newServices(t, fakeProvider{name: "google"}, fakeProvider{name: "deepl"}).Services)

	w := do(t, r, http.MethodGet, "/api/v1/providers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	providers := decode[dto.ProvidersResponse](t, w)
	assert.Equal(t, "google", providers.Primary)
	assert.Len(t, providers.Providers, 2)
	assert.Equal(t, 2, providers.Available)

	w = do(t, r, http.MethodGet, "/api/v1/languages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	langs := decode[dto.LanguagesResponse](t, w)
	assert.Equal(t, len(domain.Languages()), langs.Count)
}

func TestTranslationHandler_Stats(t *testing.T) {
	r := newEngine(newServices(t).Services)

	do(t, r, http.MethodPost, "/api/v1/translate", map[string]any{"text": "hello", "targetLang": "es"})

	w := do(t, r, http.MethodGet, "/api/v1/providers/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	stats := decode[dto.StatsResponse](t, w)
	assert.Equal(t, int64(1), stats.Providers["google"].Success)
}

func TestTranslationHandler_TestProvider(t *testing.T) {
	r := newEngine(newServices(t,
		fakeProvider{name: "google"},
		fakeProvider{name: "deepl", err: errors.New("bad key")},
	).Services)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantOK     map[string]bool
	}{
		{name: "healthy provider", path: "/api/v1/providers/google/test", wantStatus: http.StatusOK, wantOK: map[string]bool{"google": true}},
		{name: "failing provider", path: "/api/v1/providers/deepl/test", wantStatus: http.StatusOK, wantOK: map[string]bool{"deepl": false}},
		{name: "all providers", path: "/api/v1/providers/all/test", wantStatus: http.StatusOK, wantOK: map[string]bool{"google": true, "deepl": false}},
		{name: "unknown provider", path: "/api/v1/providers/yandex/test", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, tt.path, nil)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantOK == nil {
				return
			}

			resp := decode[dto.ProviderTestResponse](t, w)
			got := make(map[string]bool, len(resp.Results))
			for _, res := range resp.Results {
				got[res.Provider] = res.OK
			}
			assert.Equal(t, tt.wantOK, got)
		})
	}
}

func multipartBody(t *testing.T, field, filename string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func postMultipart(t *testing.T, r http.Handler, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

func TestMediaHandler_OCR(t *testing.T) {
	tests := []struct {
		name       string
		field      string
		data       []byte
		fields     map[string]string
		wantStatus int
		wantCode   string
	}{
		{name: "extract and translate", field: dto.FieldImage, data: pngBytes, fields: map[string]string{"targetLang": "fr"}, wantStatus: http.StatusOK},
		{name: "missing file", field: "", wantStatus: http.StatusBadRequest, wantCode: dto.ErrorCodeValidation},
		{name: "not an image", field: dto.FieldImage, data: []byte("plain text"), wantStatus: http.StatusBadRequest, wantCode: dto.ErrorCodeValidation},
		{name: "bad target", field: dto.FieldImage, data: pngBytes, fields: map[string]string{"targetLang": "auto"}, wantStatus: http.StatusBadRequest, wantCode: dto.ErrorCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newEngine(newServices(t).Services)
			body, ct := multipartBody(t, tt.field, "sign.png", tt.data, tt.fields)

			w := postMultipart(t, r, "/api/v1/ocr", body, ct)

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(t, w))
				return
			}

			resp := decode[dto.OCRResponse](t, w)
			assert.Equal(t, "STOP", resp.ExtractedText)
			assert.Equal(t, "[fr] STOP", resp.TranslatedText)
		})
	}
}

func TestMediaHandler_OCRUnavailable(t *testing.T) {
	svcs := newServices(t)
	svcs.OCR = nil
	r := newEngine(svcs.Services)
	body, ct := multipartBody(t, dto.FieldImage, "sign.png", pngBytes, nil)

	w := postMultipart(t, r, "/api/v1/ocr", body, ct)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMediaHandler_NotMultipart(t *testing.T) {
	r := newEngine(newServices(t).Services)

	w := do(t, r, http.MethodPost, "/api/v1/speech-to-text", map[string]any{"audio": "x"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrorCodeBadRequest, errorCode(t, w))
}

func TestMediaHandler_SpeechToText(t *testing.T) {
	r := newEngine(newServices(t).Services)

	body, ct := multipartBody(t, dto.FieldAudio, "clip.webm", []byte("webm-bytes"), nil)
	w := postMultipart(t, r, "/api/v1/speech-to-text", body, ct)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	plain := decode[dto.SpeechToTextResponse](t, w)
	assert.Equal(t, "hello world", plain.Text)
	assert.Nil(t, plain.Translation)

	body, ct = multipartBody(t, dto.FieldAudio, "clip.webm", []byte("webm-bytes"), map[string]string{
		"language": "en", "targetLang": "es", "speak": "true",
	})
	w = postMultipart(t, r, "/api/v1/speech-to-text", body, ct)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	voice := decode[dto.SpeechToTextResponse](t, w)
	require.NotNil(t, voice.Translation)
	assert.Equal(t, "[es] hello world", voice.Translation.TranslatedText)
	require.NotNil(t, voice.Audio)
	assert.NotEmpty(t, voice.Audio.ID)
}

func TestMediaHandler_TextToSpeechAndAudio(t *testing.T) {
	r := newEngine(newServices(t).Services)

	w := do(t, r, http.MethodPost, "/api/v1/text-to-speech", map[string]any{"text": "good morning", "language": "en"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	tts := decode[dto.TextToSpeechResponse](t, w)
	require.NotEmpty(t, tts.ID)

	w = do(t, r, http.MethodGet, "/api/v1/audio/"+tts.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "audio/mpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, "ID3-fake-mp3", w.Body.String())

	w = do(t, r, http.MethodGet, "/api/v1/audio/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/audio/7d8f3b0e-7a43-4d2a-9f51-0d1b1c1e2f30", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMediaHandler_TextToSpeechUnavailable(t *testing.T) {
	svcs := newServices(t)
	svcs.Speech = app.NewSpeechService(fakeRecognizer{}, nil, nil, svcs.Translation, quiet)
	r := newEngine(svcs.Services)

	w := do(t, r, http.MethodPost, "/api/v1/text-to-speech", map[string]any{"text": "hi"})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestConversationHandler_Lifecycle(t *testing.T) {
	r := newEngine(newServices(t).Services)

	w := do(t, r, http.MethodPost, "/api/v1/conversations", map[string]any{
		"participant1Language": "en", "participant2Language": "es", "mode": "text",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	conv := decode[dto.ConversationResponse](t, w).Conversation
	require.NotNil(t, conv)
	base := "/api/v1/conversations/" + conv.ID

	w = do(t, r, http.MethodPost, base+"/messages", map[string]any{"participant": "participant1", "text": "hello"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	msg := decode[dto.MessageResponse](t, w)
	assert.Equal(t, "[es] hello", msg.Message.TranslatedText)

	steps := []struct {
		path       string
		wantStatus int
		wantState  domain.ConversationStatus
	}{
		{path: "/pause", wantStatus: http.StatusOK, wantState: domain.StatusPaused},
		{path: "/pause", wantStatus: http.StatusConflict},
		{path: "/resume", wantStatus: http.StatusOK, wantState: domain.StatusActive},
		{path: "/end", wantStatus: http.StatusOK, wantState: domain.StatusEnded},
		{path: "/resume", wantStatus: http.StatusConflict},
	}
	for _, s := range steps {
		w = do(t, r, http.MethodPost, base+s.path, nil)
		require.Equal(t, s.wantStatus, w.Code, "%s: %s", s.path, w.Body.String())
		if s.wantState != "" {
			assert.Equal(t, s.wantState, decode[dto.ConversationResponse](t, w).Conversation.Status)
		}
	}

	w = do(t, r, http.MethodGet, "/api/v1/conversations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[dto.ConversationsResponse](t, w).Count)

	w = do(t, r, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[dto.ConversationResponse](t, w).Conversation.MessageCount)

	w = do(t, r, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConversationHandler_Validation(t *testing.T) {
	r := newEngine(newServices(t).Services)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{name: "auto participant language", method: http.MethodPost, path: "/api/v1/conversations", body: map[string]any{"participant1Language": "auto", "participant2Language": "es"}},
		{name: "unknown mode", method: http.MethodPost, path: "/api/v1/conversations", body: map[string]any{"participant1Language": "en", "participant2Language": "es", "mode": "video"}},
		{name: "bad id", method: http.MethodGet, path: "/api/v1/conversations/123"},
		{name: "unknown speaker", method: http.MethodPost, path: "/api/v1/conversations/7d8f3b0e-7a43-4d2a-9f51-0d1b1c1e2f30/messages", body: map[string]any{"participant": "participant3", "text": "hi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestConversationHandler_Converse(t *testing.T) {
	r := newEngine(newServices(t).Services)

	w := do(t, r, http.MethodPost, "/api/v1/conversation", map[string]any{"message": "bonjour", "participantId": "alice"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[dto.SessionResponse](t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "[en] bonjour", resp.Translation)
	assert.NotEmpty(t, resp.SessionID)

	w = do(t, r, http.MethodPost, "/api/v1/conversation", map[string]any{"message": "bonjour"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGroupHandler_Lifecycle(t *testing.T) {
	r := newEngine(newServices(t).Services)

	w := do(t, r, http.MethodPost, "/api/v1/groups", map[string]any{
		"name": "Trip", "adminId": "amal", "adminName": "Amal", "adminLanguage": "en", "maxParticipants": 3,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	g := decode[dto.GroupResponse](t, w).Group
	require.NotNil(t, g)
	assert.True(t, g.Settings.AutoTranslate)
	base := "/api/v1/groups/" + g.ID

	for _, m := range []map[string]any{
		{"participantId": "ben", "name": "Ben", "language": "es"},
		{"participantId": "chen", "name": "Chen", "language": "fr"},
	} {
		w = do(t, r, http.MethodPost, base+"/join", m)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPost, base+"/join", map[string]any{"participantId": "dana", "language": "de"})
	assert.Equal(t, http.StatusConflict, w.Code, "group is full")

	w = do(t, r, http.MethodPost, base+"/messages", map[string]any{"senderId": "amal", "text": "hello"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	msg := decode[dto.GroupMessageResponse](t, w).Message
	assert.Equal(t, "[es] hello", msg.Translations["es"].Text)
	assert.Equal(t, "[fr] hello", msg.Translations["fr"].Text)

	w = do(t, r, http.MethodPatch, base+"/settings", map[string]any{"participantId": "ben", "autoTranslate": false})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, http.MethodPatch, base+"/settings", map[string]any{"participantId": "amal", "autoTranslate": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.False(t, decode[dto.GroupResponse](t, w).Group.Settings.AutoTranslate)

	w = do(t, r, http.MethodPost, base+"/leave", map[string]any{"participantId": "amal"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "ben", decode[dto.GroupResponse](t, w).Group.AdminID)

	w = do(t, r, http.MethodPost, base+"/end", map[string]any{"participantId": "ben"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.GroupEnded, decode[dto.GroupResponse](t, w).Group.Status)

	w = do(t, r, http.MethodPost, base+"/messages", map[string]any{"senderId": "ben", "text": "late"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/groups", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[dto.GroupsResponse](t, w).Count)

	w = do(t, r, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGroupHandler_Validation(t *testing.T) {
	r := newEngine(newServices(t).Services)
	missing := "/api/v1/groups/7d8f3b0e-7a43-4d2a-9f51-0d1b1c1e2f30"

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{name: "missing admin", method: http.MethodPost, path: "/api/v1/groups", body: map[string]any{"adminLanguage": "en"}},
		{name: "auto admin language", method: http.MethodPost, path: "/api/v1/groups", body: map[string]any{"adminId": "a", "adminLanguage": "auto"}},
		{name: "oversized group", method: http.MethodPost, path: "/api/v1/groups", body: map[string]any{"adminId": "a", "adminLanguage": "en", "maxParticipants": 51}},
		{name: "bad id", method: http.MethodGet, path: "/api/v1/groups/123"},
		{name: "blank message", method: http.MethodPost, path: missing + "/messages", body: map[string]any{"senderId": "a", "text": "   "}},
		{name: "join without language", method: http.MethodPost, path: missing + "/join", body: map[string]any{"participantId": "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestHistoryHandler(t *testing.T) {
	svcs := newServices(t)
	r := newEngine(svcs.Services)

	for _, text := range []string{"one", "two", "three"} {
		w := do(t, r, http.MethodPost, "/api/v1/translations", map[string]any{
			"originalText": text, "translatedText": "x-" + text, "sourceLang": "en", "targetLang": "es", "userId": "bob",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		saved := decode[dto.SaveTranslationResponse](t, w)
		assert.Equal(t, "bob", saved.Translation.UserID)
		assert.NotEmpty(t, saved.Translation.ID)
	}

	w := do(t, r, http.MethodGet, "/api/v1/translations?userId=bob&limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode[dto.HistoryResponse](t, w)
	assert.Len(t, first.Items, 2)
	assert.True(t, first.HasMore)
	assert.Equal(t, 2, first.Limit)
	require.NotEmpty(t, first.NextCursor)

	w = do(t, r, http.MethodGet, "/api/v1/translations?userId=bob&limit=2&cursor="+first.NextCursor, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	second := decode[dto.HistoryResponse](t, w)
	assert.Len(t, second.Items, 1)
	assert.False(t, second.HasMore)

	w = do(t, r, http.MethodGet, "/api/v1/translations?limit=500", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/translations?cursor=!!!!", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/translations", map[string]any{"originalText": "a"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Name() string                { return s.name }
func (s stubChecker) Check(context.Context) error { return s.err }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		checkers   []ports.HealthChecker
		wantStatus int
		wantHealth string
	}{
		{name: "no checks", wantStatus: http.StatusOK, wantHealth: "healthy"},
		{name: "healthy store", checkers: []ports.HealthChecker{stubChecker{name: "storage"}}, wantStatus: http.StatusOK, wantHealth: "healthy"},
		{name: "failed store", checkers: []ports.HealthChecker{stubChecker{name: "storage", err: errors.New("down")}}, wantStatus: http.StatusServiceUnavailable, wantHealth: "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := ports.NewHealthRegistry()
			for _, c := range tt.checkers {
				require.NoError(t, registry.Register(c))
			}
			h := NewHealthHandler(registry, buildDescriptor())

			r := gin.New()
			h.RegisterProbes(r.Group("/-"))
			r.GET("/api/health", h.Summary)

			w := do(t, r, http.MethodGet, "/-/live", nil)
			assert.Equal(t, http.StatusOK, w.Code)

			w = do(t, r, http.MethodGet, "/-/ready", nil)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantHealth, decode[readinessResponse](t, w).Status)

			w = do(t, r, http.MethodGet, "/api/health", nil)
			assert.Equal(t, tt.wantStatus, w.Code)
			summary := decode[healthSummary](t, w)
			assert.Equal(t, tt.wantHealth, summary.Status)
			assert.Equal(t, "9.9.9", summary.Version)
			assert.Len(t, summary.Services, len(tt.checkers))

			w = do(t, r, http.MethodGet, "/-/build", nil)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "9.9.9", decode[buildResponse](t, w).Version)
		})
	}
}

func buildDescriptor() buildinfo.Descriptor {
	return buildinfo.Descriptor{Name: "voice-translator-pro", Version: "9.9.9"}
}
