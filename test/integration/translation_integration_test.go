//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/ports"
)

type response struct {
	status int
	header http.Header
	body   []byte
	doc    any
}

// field evaluates a JSONPath expression against the decoded body.
func (r *response) field(t testing.TB, path string) any {
	t.Helper()

	v, err := jsonpath.Get(path, r.doc)
	require.NoError(t, err, "%s in %s", path, r.body)
	return v
}

func (s *stack) do(t testing.TB, method, path string, body any, headers ...string) *response {
	t.Helper()

	var rdr io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, s.server.URL+path, rdr)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := s.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := &response{status: resp.StatusCode, header: resp.Header, body: raw}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out.doc)
	}

	return out
}

func translateBody(text, source, target string) map[string]any {
	return map[string]any{"text": text, "sourceLang": source, "targetLang": target}
}

func TestTranslate_PrimaryProvider(t *testing.T) {
	s := newStack(t, defaultStackOptions())

	r := s.do(t, http.MethodPost, "/api/v1/translate", translateBody("Hello", "en", "es"))
	require.Equal(t, http.StatusOK, r.status, string(r.body))

	assert.Equal(t, true, r.field(t, "$.success"))
	assert.Equal(t, "hola", r.field(t, "$.translatedText"))
	assert.Equal(t, "google", r.field(t, "$.provider"))
	assert.EqualValues(t, 1, s.upstream.googleCalls.Load())
	assert.Zero(t, s.upstream.libreCalls.Load())
}

func TestTranslate_AutoDetectsSource(t *testing.T) {
	s := newStack(t, defaultStackOptions())

	r := s.do(t, http.MethodPost, "/api/v1/translate", translateBody("Gracias", "auto", "en"))
	require.Equal(t, http.StatusOK, r.status, string(r.body))

	assert.Equal(t, "thank you", r.field(t, "$.translatedText"))
	assert.Equal(t, "es", r.field(t, "$.detectedLanguage"))
}

func TestTranslate_FallbackSkipsUnconfiguredProviders(t *testing.T) {
	s := newStack(t, defaultStackOptions())
	s.upstream.googleDown.Store(true)

	r := s.do(t, http.MethodPost, "/api/v1/translate", translateBody("Good morning", "en", "fr"))
	require.Equal(t, http.StatusOK, r.status, string(r.body))

	assert.Equal(t, "bonjour", r.field(t, "$.translatedText"))
	assert.Equal(t, "libretranslate", r.field(t, "$.provider"), "microsoft and deepl have no keys")
	assert.EqualValues(t, 2, s.upstream.googleCalls.Load(), "one retry on 503")
}

func TestTranslate_AllProvidersDown(t *testing.T) {
	s := newStack(t, defaultStackOptions())
	s.upstream.googleDown.Store(true)
	s.upstream.libreDown.Store(true)
	s.upstream.myMemoryDown.Store(true)

	r := s.do(t, http.MethodPost, "/api/v1/translate", translateBody("Hello", "en", "es"))
	require.Equal(t, http.StatusServiceUnavailable, r.status, string(r.body))

	assert.Equal(t, false, r.field(t, "$.success"))
	assert.Equal(t, "SERVICE_UNAVAILABLE", r.field(t, "$.error.code"))
	details, ok := r.field(t, "$.error.details").(map[string]any)
	require.True(t, ok)
	assert.Contains(t, details, "google")
	assert.Contains(t, details, "libretranslate")
	assert.Contains(t, details, "mymemory")
}

func TestTranslate_NoFallback(t *testing.T) {
	opts := defaultStackOptions()
	opts.fallback = false
	s := newStack(t, opts)
	s.upstream.googleDown.Store(true)

	r := s.do(t, http.MethodPost, "/api/v1/translate", translateBody("Hello", "en", "es"))
	assert.Equal(t, http.StatusServiceUnavailable, r.status)
	assert.Zero(t, s.upstream.libreCalls.Load())
	assert.Zero(t, s.upstream.myMemoryCalls.Load())
}

func TestTranslate_RuntimeFlagsOverridePrimary(t *testing.T) {
	s := newStack(t, defaultStackOptions())
	s.flags.Set(ports.FlagTranslationPrimary, "mymemory")

	r := s.do(t, http.MethodPost, "/api/v1/translate", translateBody("Thank you", "en", "es"))
	require.Equal(t, http.StatusOK, r.status, string(r.body))

	assert.Equal(t, "mymemory", r.field(t, "$.provider"))
	assert.Zero(t, s.upstream.googleCalls.Load())
}

func TestTranslate_CircuitBreakerOpensAndRecovers(t *testing.T) {
	s := newStack(t, defaultStackOptions())
	s.upstream.googleDown.Store(true)

	for i := range 3 {
		r := s.do(t, http.MethodPost, "/api/v1/translate", translateBody(fmt.Sprintf("Hello %d", i), "en", "es"))
		require.Equal(t, http.StatusOK, r.status)
	}
	require.EqualValues(t, 6, s.upstream.googleCalls.Load())

	r := s.do(t, http.MethodPost, "/api/v1/translate", translateBody("Hello again", "en", "es"))
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, "libretranslate", r.field(t, "$.provider"))
	assert.EqualValues(t, 6, s.upstream.googleCalls.Load(), "open circuit short-circuits google")

	ready := s.do(t, http.MethodGet, "/-/ready", nil)
	assert.Equal(t, http.StatusOK, ready.status, "providers are optional")
	assert.Equal(t, "degraded", ready.field(t, "$.status"))

	s.upstream.googleDown.Store(false)
	time.Sleep(250 * time.Millisecond)

	r = s.do(t, http.MethodPost, "/api/v1/translate", translateBody("Hello", "en", "es"))
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, "google", r.field(t, "$.provider"))
}

func TestTranslate_CacheServesRepeats(t *testing.T) {
	opts := defaultStackOptions()
	opts.cache = true
	s := newStack(t, opts)

	for range 3 {
		r := s.do(t, http.MethodPost, "/api/v1/translate", translateBody("Hello", "en", "fr"))
		require.Equal(t, http.StatusOK, r.status)
		assert.Equal(t, "bonjour", r.field(t, "$.translatedText"))
	}
	assert.EqualValues(t, 1, s.upstream.googleCalls.Load())

	stats := s.do(t, http.MethodGet, "/api/v1/providers/stats", nil)
	require.Equal(t, http.StatusOK, stats.status)
	assert.EqualValues(t, 1, stats.field(t, "$.providers.google.success"))
}

func TestTranslateMulti_AllAvailableProviders(t *testing.T) {
	s := newStack(t, defaultStackOptions())

	r := s.do(t, http.MethodPost, "/api/v1/translate/multi", translateBody("Hello", "en", "es"))
	require.Equal(t, http.StatusOK, r.status, string(r.body))

	assert.EqualValues(t, 3, r.field(t, "$.count"))
	providers, err := jsonpath.Get("$.results[*].provider", r.doc)
	require.NoError(t, err)
	assert.ElementsMatch(t, []any{"google", "libretranslate", "mymemory"}, providers)
}

func TestDetect_MostConfidentProvider(t *testing.T) {
	s := newStack(t, defaultStackOptions())

	r := s.do(t, http.MethodPost, "/api/v1/detect", map[string]string{"text": "Hola"})
	require.Equal(t, http.StatusOK, r.status, string(r.body))

	assert.Equal(t, "es", r.field(t, "$.language"))
	assert.Equal(t, "Spanish", r.field(t, "$.languageName"))
	assert.Equal(t, "libretranslate", r.field(t, "$.provider"))
}

func TestTranslate_ConcurrentRequests(t *testing.T) {
	s := newStack(t, defaultStackOptions())

	const n = 25
	var wg sync.WaitGroup
	statuses := make([]int, n)
	for i := range n {
		wg.Go(func() {
			r := s.do(t, http.MethodPost, "/api/v1/translate", translateBody(fmt.Sprintf("line %d", i), "en", "es"))
			statuses[i] = r.status
		})
	}
	wg.Wait()

	for i, status := range statuses {
		assert.Equal(t, http.StatusOK, status, "request %d", i)
	}
	assert.EqualValues(t, n, s.upstream.googleCalls.Load())
}

func TestTranslateBatch_KeepsOrder(t *testing.T) {
	s := newStack(t, defaultStackOptions())

	texts := []string{"Hello", "Good morning", "Thank you"}
	results := s.services.Translation.TranslateBatch(context.Background(), texts, domain.TranslateRequest{SourceLang: "en", TargetLang: "es"}, 2)
	require.Len(t, results, 3)

	want := []string{"hola", "buenos días", "gracias"}
	for i, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, want[i], r.Value.TranslatedText)
	}
}
