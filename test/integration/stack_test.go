//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/blob"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/clients"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/clients/acl"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/events"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/flags"
	httpadapter "github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/http"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/storage/memory"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/storage/sqlite"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/storage/sqlstore"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/app"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/buildinfo"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/platform/config"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/platform/telemetry"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// dictionary holds the fake upstream translations by target language.
var dictionary = map[string]map[string]string{
	"es": {"hello": "hola", "good morning": "buenos días", "thank you": "gracias"},
	"fr": {"hello": "bonjour", "good morning": "bonjour", "thank you": "merci"},
	"en": {"hola": "hello", "gracias": "thank you", "bonjour": "hello"},
}

func lookup(text, target string) string {
	if tr, ok := dictionary[target][strings.ToLower(text)]; ok {
		return tr
	}
	return "[" + target + "] " + text
}

// upstream fakes the keyless providers on one server: Google's gtx
// endpoint, MyMemory and LibreTranslate.
type upstream struct {
	server *httptest.Server

	googleDown   atomic.Bool
	myMemoryDown atomic.Bool
	libreDown    atomic.Bool

	googleCalls   atomic.Int32
	myMemoryCalls atomic.Int32
	libreCalls    atomic.Int32
}

func newUpstream(t testing.TB) *upstream {
	t.Helper()

	u := &upstream{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /translate_a/single", u.google)
	mux.HandleFunc("GET /get", u.myMemory)
	mux.HandleFunc("POST /translate", u.libreTranslate)
	mux.HandleFunc("POST /detect", u.libreDetect)

	u.server = httptest.NewServer(mux)
	t.Cleanup(u.server.Close)

	return u
}

func (u *upstream) google(w http.ResponseWriter, r *http.Request) {
	u.googleCalls.Add(1)
	if u.googleDown.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	q := r.URL.Query()
	text, target := q.Get("q"), q.Get("tl")
	detected := q.Get("sl")
	if detected == "" || detected == "auto" {
		detected = guessLanguage(text)
	}

	writeJSON(w, []any{
		[]any{[]any{lookup(text, target), text, nil, nil, 10}},
		nil,
		detected,
	})
}

func (u *upstream) myMemory(w http.ResponseWriter, r *http.Request) {
	u.myMemoryCalls.Add(1)
	if u.myMemoryDown.Load() {
		w.WriteHeader(http.StatusTooManyRequests)
		return
	}

	q := r.URL.Query()
	_, target, _ := strings.Cut(q.Get("langpair"), "|")

	writeJSON(w, map[string]any{
		"responseData":   map[string]any{"translatedText": lookup(q.Get("q"), target), "match": 0.85},
		"responseStatus": 200,
	})
}

func (u *upstream) libreTranslate(w http.ResponseWriter, r *http.Request) {
	u.libreCalls.Add(1)
	if u.libreDown.Load() {
		w.WriteHeader(http.StatusBadGateway)
		return
	}

	var req struct {
		Q      string `json:"q"`
		Target string `json:"target"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	writeJSON(w, map[string]any{"translatedText": lookup(req.Q, req.Target)})
}

func (u *upstream) libreDetect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Q string `json:"q"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	writeJSON(w, []map[string]any{{"language": guessLanguage(req.Q), "confidence": 90.0}})
}

func guessLanguage(text string) string {
	for lang, words := range dictionary {
		for _, tr := range words {
			if strings.EqualFold(tr, text) && lang != "en" {
				return lang
			}
		}
	}
	return "en"
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// stack is the whole service wired in-process against the fake upstream
// with SQLite storage.
type stack struct {
	upstream *upstream
	server   *httptest.Server
	services app.Services
	flags    *flags.Store
}

type stackOptions struct {
	primary   string
	fallback  bool
	cache     bool
	auth      bool
	rateLimit int
}

func defaultStackOptions() stackOptions {
	return stackOptions{primary: acl.ProviderGoogle, fallback: true}
}

func newStack(t testing.TB, opts stackOptions) *stack {
	t.Helper()
	ctx := context.Background()

	up := newUpstream(t)

	newClient := func(name string) *clients.Client {
		c, err := clients.New(&clients.Config{
			BaseURL:     up.server.URL,
			ServiceName: name,
			Timeout:     2 * time.Second,
			Retry: config.RetryConfig{
				MaxAttempts:     2,
				InitialInterval: 5 * time.Millisecond,
				MaxInterval:     20 * time.Millisecond,
				Multiplier:      2,
			},
			Circuit: config.CircuitBreakerConfig{
				MaxFailures:   3,
				Timeout:       200 * time.Millisecond,
				HalfOpenLimit: 1,
			},
			Logger: quiet,
		})
		require.NoError(t, err)
		return c
	}

	providers := []ports.Translator{
		acl.NewGoogleAdapter(newClient(acl.ProviderGoogle)),
		acl.NewMicrosoftAdapter(newClient(acl.ProviderMicrosoft), ""),
		acl.NewDeepLAdapter(newClient(acl.ProviderDeepL), ""),
		acl.NewLibreTranslateAdapter(newClient(acl.ProviderLibreTranslate), ""),
		acl.NewMyMemoryAdapter(newClient(acl.ProviderMyMemory), ""),
	}

	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "integration.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	history := sqlstore.NewHistoryRepository(db, sqlite.Dialect)
	conversations := sqlstore.NewConversationRepository(db, sqlite.Dialect)

	audio, err := blob.NewFileStore(t.TempDir())
	require.NoError(t, err)

	registry := ports.NewHealthRegistry()
	require.NoError(t, registry.Register(sqlstore.NewHealthChecker(db, sqlite.Dialect)))
	require.NoError(t, registry.Register(audio))
	for _, p := range providers {
		require.NoError(t, registry.Register(p.(ports.HealthChecker)))
	}

	var cache ports.Cache
	if opts.cache {
		cache = memory.NewCache(100, time.Minute)
	}

	prom := telemetry.NewPrometheus()
	flagStore := flags.New(nil)

	engine := app.NewTranslationService(providers, cache, events.NewPublisher(prom), flagStore, history, &app.TranslationConfig{
		Primary:      opts.primary,
		Fallback:     opts.fallback,
		CacheEnabled: opts.cache,
		CacheTTL:     time.Minute,
		Logger:       quiet,
	})
	speech := app.NewSpeechService(nil, nil, audio, engine, quiet)

	services := app.Services{
		Translation:   engine,
		Smart:         app.NewSmartService(engine, nil, flagStore, quiet),
		Speech:        speech,
		OCR:           app.NewOCRService(nil, engine, quiet),
		Conversations: app.NewConversationService(conversations, engine, speech, quiet),
		Groups:        app.NewGroupService(sqlstore.NewGroupRepository(db, sqlite.Dialect), engine, quiet),
		History:       app.NewHistoryService(history, 20, quiet),
	}

	rate := &config.RateLimitConfig{}
	if opts.rateLimit > 0 {
		rate = &config.RateLimitConfig{Enabled: true, Requests: opts.rateLimit, Window: time.Minute}
	}

	engineHTTP := gin.New()
	httpadapter.SetupRouter(engineHTTP, httpadapter.RouterConfig{
		Services:    services,
		Registry:    registry,
		Prometheus:  prom,
		Descriptor:  buildinfo.Describe(),
		Primary:     opts.primary,
		ServiceName: "voice-translator-integration",
		Auth: &config.AuthConfig{
			Enabled:       opts.auth,
			SubjectHeader: "X-User-ID",
			RolesHeader:   "X-User-Roles",
			AdminRole:     "admin",
		},
		CORS:           &config.CORSConfig{AllowedOrigins: []string{"*"}},
		RateLimit:      rate,
		MaxRequestSize: 11 << 20,
		Timeout:        5 * time.Second,
		Logger:         quiet,
	})

	server := httptest.NewServer(engineHTTP)
	t.Cleanup(server.Close)

	return &stack{upstream: up, server: server, services: services, flags: flagStore}
}
