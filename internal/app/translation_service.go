package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/ports"
)

// FallbackChain is the order in which providers are tried after the primary.
var FallbackChain = []string{"google", "microsoft", "deepl", "libretranslate", "mymemory"}

// DefaultBatchConcurrency bounds TranslateBatch.
const DefaultBatchConcurrency = 4

// TranslationConfig holds the engine settings. Feature flags override
// Primary, Fallback and the cache toggle at request time.
type TranslationConfig struct {
	Primary      string
	Fallback     bool
	CacheEnabled bool
	CacheTTL     time.Duration
	Logger       *slog.Logger
}

// ProviderTestResult is the outcome of testing one provider.
type ProviderTestResult struct {
	Translation *domain.Translation
	Duration    time.Duration
	Err         error
}

// ProviderUsage counts outcomes for one provider.
type ProviderUsage struct {
	Success int64 `json:"success"`
	Errors  int64 `json:"errors"`
}

// UsageStats is a snapshot of the engine's event counters.
type UsageStats struct {
	Events    map[string]int64         `json:"events"`
	Providers map[string]ProviderUsage `json:"providers"`
	Since     time.Time                `json:"since"`
}

type usageCounter struct {
	mu        sync.Mutex
	events    map[string]int64
	providers map[string]ProviderUsage
	since     time.Time
}

func (u *usageCounter) add(event, provider string, ok bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.events[event]++
	if provider != "" {
		u.countLocked(provider, ok)
	}
}

// attempt counts one provider call without counting an event.
func (u *usageCounter) attempt(provider string, ok bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.countLocked(provider, ok)
}

func (u *usageCounter) countLocked(provider string, ok bool) {
	p := u.providers[provider]
	if ok {
		p.Success++
	} else {
		p.Errors++
	}
	u.providers[provider] = p
}

// TranslationService routes translation and detection across providers.
type TranslationService struct {
	providers []ports.Translator
	byName    map[string]ports.Translator
	cache     ports.Cache
	events    ports.EventPublisher
	flags     ports.FeatureFlags
	history   ports.HistoryRepository
	cfg       TranslationConfig
	exec      *Executor
	usage     *usageCounter
	logger    *slog.Logger
	now       func() time.Time
}

// NewTranslationService creates the engine. Providers keep their registration
// order for TranslateMulti and Providers. cache, events, flags and history
// may be nil.
func NewTranslationService(
	providers []ports.Translator,
	cache ports.Cache,
	events ports.EventPublisher,
	flags ports.FeatureFlags,
	history ports.HistoryRepository,
	cfg *TranslationConfig,
) *TranslationService {
	var c TranslationConfig
	if cfg != nil {
		c = *cfg
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Primary == "" {
		c.Primary = FallbackChain[0]
	}

	byName := make(map[string]ports.Translator, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}

	logger := c.Logger.With(slog.String("component", "app.TranslationService"))

	return &TranslationService{
		providers: providers,
		byName:    byName,
		cache:     cache,
		events:    events,
		flags:     flags,
		history:   history,
		cfg:       c,
		exec:      NewExecutor(logger),
		usage: &usageCounter{
			events:    make(map[string]int64),
			providers: make(map[string]ProviderUsage),
			since:     time.Now(),
		},
		logger: logger,
		now:    time.Now,
	}
}

// Translate translates with the primary provider and, when fallback is on,
// walks FallbackChain until one succeeds.
func (s *TranslationService) Translate(ctx context.Context, req domain.TranslateRequest) (*domain.Translation, error) {
	req, err := req.Normalize()
	if err != nil {
		return nil, err
	}

	logger := loggerFor(ctx, s.logger).With(
		slog.String("source", req.SourceLang),
		slog.String("target", req.TargetLang),
	)

	if t := s.cached(ctx, req); t != nil {
		logger.DebugContext(ctx, "translation served from cache", slog.String("provider", t.Provider))
		return t, nil
	}

	var attempts []error

	for i, p := range s.chain(ctx) {
		if err := ctx.Err(); err != nil {
			attempts = append(attempts, err)
			break
		}

		if !p.Available() {
			// Only the primary counts as an attempt; unconfigured fallbacks are skipped.
			if i == 0 {
				attempts = append(attempts, domain.NewProviderError(p.Name(), "translate", domain.ErrProviderUnavailable))
			}
			continue
		}

		t, err := p.Translate(ctx, req)
		if err == nil {
			err = checkTranslation(p.Name(), t)
		}
		if err != nil {
			logger.WarnContext(ctx, "provider failed, trying next",
				slog.String("provider", p.Name()),
				slog.Any("error", err),
			)
			s.usage.attempt(p.Name(), false)
			attempts = append(attempts, err)
			continue
		}

		t = s.complete(t, p, req)
		s.record(ctx, domain.EventTranslationSuccess, t.Provider, nil)
		s.store(ctx, req, t)

		return t, nil
	}

	logger.ErrorContext(ctx, "all translation providers failed", slog.Int("attempts", len(attempts)))

	fb := &domain.FallbackError{Attempts: attempts}
	s.record(ctx, domain.EventTranslationError, "", fb)

	return nil, fb
}

// TranslateMulti asks every available provider at once and returns the
// successful results in registration order. An empty result is not an error.
func (s *TranslationService) TranslateMulti(ctx context.Context, req domain.TranslateRequest) ([]domain.Translation, error) {
	req, err := req.Normalize()
	if err != nil {
		return nil, err
	}

	available := s.available()

	fns := make([]func(context.Context) (*domain.Translation, error), len(available))
	for i, p := range available {
		fns[i] = func(ctx context.Context) (*domain.Translation, error) {
			t, err := p.Translate(ctx, req)
			if err == nil {
				err = checkTranslation(p.Name(), t)
			}
			if err != nil {
				s.record(ctx, domain.EventTranslationError, p.Name(), err)
				return nil, err
			}
			t = s.complete(t, p, req)
			s.record(ctx, domain.EventTranslationSuccess, t.Provider, nil)
			return t, nil
		}
	}

	results := ParallelPartial(ctx, fns...)

	out := make([]domain.Translation, 0, len(results))
	for i, r := range results {
		if r.Err != nil {
			loggerFor(ctx, s.logger).DebugContext(ctx, "provider failed in multi translation",
				slog.String("provider", available[i].Name()),
				slog.Any("error", r.Err),
			)
			continue
		}
		out = append(out, *r.Value)
	}

	return out, nil
}

// DetectLanguage asks every available detector and keeps the most confident answer.
func (s *TranslationService) DetectLanguage(ctx context.Context, text string) (*domain.Detection, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyText
	}

	type detector struct {
		name string
		ports.LanguageDetector
	}

	var detectors []detector
	for _, p := range s.available() {
		if d, ok := p.(ports.LanguageDetector); ok {
			detectors = append(detectors, detector{p.Name(), d})
		}
	}

	fns := make([]func(context.Context) (*domain.Detection, error), len(detectors))
	for i, d := range detectors {
		fns[i] = func(ctx context.Context) (*domain.Detection, error) {
			det, err := d.DetectLanguage(ctx, text)
			if err != nil {
				s.record(ctx, domain.EventDetectionError, d.name, err)
				return nil, err
			}
			if det.Provider == "" {
				det.Provider = d.name
			}
			s.record(ctx, domain.EventDetectionSuccess, d.name, nil)
			return det, nil
		}
	}

	var best *domain.Detection
	for _, r := range ParallelPartial(ctx, fns...) {
		if r.Err != nil || r.Value == nil || !knownLanguage(r.Value.Language) {
			continue
		}
		if best == nil || r.Value.Confidence > best.Confidence {
			best = r.Value
		}
	}

	if best == nil {
		return nil, domain.ErrDetectionFailed
	}

	return best, nil
}

// Providers lists every registered provider in registration order.
func (s *TranslationService) Providers() []domain.ProviderInfo {
	out := make([]domain.ProviderInfo, 0, len(s.providers))
	for _, p := range s.providers {
		_, canDetect := p.(ports.LanguageDetector)
		out = append(out, domain.ProviderInfo{
			Name:        p.Name(),
			DisplayName: p.DisplayName(),
			Available:   p.Available(),
			CanDetect:   canDetect,
		})
	}

	return out
}

// UsageStats returns a copy of the event counters.
func (s *TranslationService) UsageStats() UsageStats {
	s.usage.mu.Lock()
	defer s.usage.mu.Unlock()

	stats := UsageStats{
		Events:    make(map[string]int64, len(s.usage.events)),
		Providers: make(map[string]ProviderUsage, len(s.usage.providers)),
		Since:     s.usage.since,
	}
	for k, v := range s.usage.events {
		stats.Events[k] = v
	}
	for k, v := range s.usage.providers {
		stats.Providers[k] = v
	}

	return stats
}

// TestProvider translates text from English to Arabic with one named provider,
// bypassing the fallback chain and the cache.
func (s *TranslationService) TestProvider(ctx context.Context, name, text string) (*domain.Translation, error) {
	p, ok := s.byName[name]
	if !ok {
		return nil, domain.NewNotFoundError("provider", name)
	}
	if !p.Available() {
		return nil, domain.NewProviderError(name, "test", domain.ErrProviderUnavailable)
	}

	if strings.TrimSpace(text) == "" {
		text = domain.ProviderTestText
	}

	req, err := domain.TranslateRequest{Text: text, SourceLang: "en", TargetLang: "ar"}.Normalize()
	if err != nil {
		return nil, err
	}

	t, err := p.Translate(ctx, req)
	if err == nil {
		err = checkTranslation(name, t)
	}
	if err != nil {
		s.record(ctx, domain.EventTranslationError, name, err)
		return nil, err
	}

	s.record(ctx, domain.EventTranslationSuccess, name, nil)

	return s.complete(t, p, req), nil
}

// TestAllProviders tests every registered provider concurrently.
func (s *TranslationService) TestAllProviders(ctx context.Context, text string) map[string]ProviderTestResult {
	fns := make([]func(context.Context) (ProviderTestResult, error), len(s.providers))
	for i, p := range s.providers {
		fns[i] = func(ctx context.Context) (ProviderTestResult, error) {
			start := time.Now()
			t, err := s.TestProvider(ctx, p.Name(), text)
			return ProviderTestResult{Translation: t, Duration: time.Since(start), Err: err}, nil
		}
	}

	out := make(map[string]ProviderTestResult, len(s.providers))
	for i, r := range ParallelPartial(ctx, fns...) {
		out[s.providers[i].Name()] = r.Value
	}

	return out
}

// TranslateBatch translates each text with the settings of tmpl, at most
// concurrency at a time. Results keep the input order.
func (s *TranslationService) TranslateBatch(
	ctx context.Context,
	texts []string,
	tmpl domain.TranslateRequest,
	concurrency int,
) []PartialResult[*domain.Translation] {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}

	fns := make([]func(context.Context) (*domain.Translation, error), len(texts))
	for i, text := range texts {
		req := tmpl
		req.Text = text
		fns[i] = func(ctx context.Context) (*domain.Translation, error) {
			return s.Translate(ctx, req)
		}
	}

	return ParallelPartialLimit(ctx, concurrency, fns...)
}

// TranslateAndRecord translates and archives the verified result to history.
// Without a history repository it behaves like Translate.
func (s *TranslationService) TranslateAndRecord(ctx context.Context, req domain.TranslateRequest) (*domain.Translation, error) {
	return Execute(ctx, s.exec, Operation[domain.TranslateRequest, *domain.Translation, *domain.Translation, *domain.Translation]{
		Name: "translate_and_record",
		Validate: func(_ context.Context, in domain.TranslateRequest) (domain.TranslateRequest, error) {
			return in.Normalize()
		},
		Perform: s.Translate,
		Verify: func(_ context.Context, _ domain.TranslateRequest, t *domain.Translation) (*domain.Translation, error) {
			if err := checkTranslation(t.Provider, t); err != nil {
				return nil, err
			}
			return t, nil
		},
		Archive: func(ctx context.Context, in domain.TranslateRequest, t *domain.Translation) error {
			if s.history == nil {
				return nil
			}
			return s.history.Save(ctx, recordFor(in.UserID, t, s.now()))
		},
		Respond: func(_ context.Context, _ domain.TranslateRequest, t *domain.Translation) (*domain.Translation, error) {
			return t, nil
		},
	}, req)
}

// chain returns the providers to try, primary first.
func (s *TranslationService) chain(ctx context.Context) []ports.Translator {
	primary := s.cfg.Primary
	fallback := s.cfg.Fallback
	if s.flags != nil {
		primary = s.flags.GetString(ctx, ports.FlagTranslationPrimary, primary)
		fallback = s.flags.IsEnabled(ctx, ports.FlagTranslationFallback, fallback)
	}

	var out []ports.Translator
	if p, ok := s.byName[primary]; ok {
		out = append(out, p)
	} else {
		loggerFor(ctx, s.logger).WarnContext(ctx, "primary provider is not registered", slog.String("provider", primary))
	}

	if !fallback && len(out) > 0 {
		return out
	}

	for _, name := range FallbackChain {
		if name == primary {
			continue
		}
		if p, ok := s.byName[name]; ok {
			out = append(out, p)
		}
	}

	return out
}

func (s *TranslationService) available() []ports.Translator {
	out := make([]ports.Translator, 0, len(s.providers))
	for _, p := range s.providers {
		if p.Available() {
			out = append(out, p)
		}
	}
	return out
}

// complete fills fields providers may leave empty.
func (s *TranslationService) complete(t *domain.Translation, p ports.Translator, req domain.TranslateRequest) *domain.Translation {
	if t.Provider == "" {
		t.Provider = p.Name()
	}
	if t.OriginalText == "" {
		t.OriginalText = req.Text
	}
	if t.SourceLang == "" {
		t.SourceLang = req.SourceLang
	}
	if t.TargetLang == "" {
		t.TargetLang = req.TargetLang
	}
	if t.DetectedLanguage == "" && req.SourceLang != domain.AutoDetect {
		t.DetectedLanguage = req.SourceLang
	}
	if t.Mode == "" {
		t.Mode = req.Mode
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now()
	}
	return t
}

func (s *TranslationService) record(ctx context.Context, event, provider string, err error) {
	s.usage.add(event, provider, err == nil)

	if s.events == nil {
		return
	}

	attrs := map[string]any{}
	if provider != "" {
		attrs["provider"] = provider
	}
	if err != nil {
		attrs["error"] = err.Error()
	}

	if perr := s.events.Publish(ctx, ports.Event{Type: event, Attributes: attrs, OccurredAt: s.now()}); perr != nil {
		loggerFor(ctx, s.logger).DebugContext(ctx, "event publish failed", slog.String("event", event), slog.Any("error", perr))
	}
}

func (s *TranslationService) cacheOn(ctx context.Context) bool {
	if s.cache == nil {
		return false
	}
	if s.flags == nil {
		return s.cfg.CacheEnabled
	}
	return s.flags.IsEnabled(ctx, ports.FlagTranslationCache, s.cfg.CacheEnabled)
}

func cacheKey(req domain.TranslateRequest) string {
	return strings.Join([]string{"tr", req.SourceLang, req.TargetLang, string(req.Mode), string(req.ContentType), req.Text}, "|")
}

func (s *TranslationService) cached(ctx context.Context, req domain.TranslateRequest) *domain.Translation {
	if !s.cacheOn(ctx) {
		return nil
	}

	data, err := s.cache.Get(ctx, cacheKey(req))
	if err != nil {
		return nil
	}

	var t domain.Translation
	if err := json.Unmarshal(data, &t); err != nil {
		_ = s.cache.Delete(ctx, cacheKey(req))
		return nil
	}

	return &t
}

func (s *TranslationService) store(ctx context.Context, req domain.TranslateRequest, t *domain.Translation) {
	if !s.cacheOn(ctx) {
		return
	}

	data, err := json.Marshal(t)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, cacheKey(req), data, s.cfg.CacheTTL); err != nil {
		loggerFor(ctx, s.logger).DebugContext(ctx, "cache write failed", slog.Any("error", err))
	}
}

func checkTranslation(provider string, t *domain.Translation) error {
	if t == nil || strings.TrimSpace(t.TranslatedText) == "" {
		return domain.NewProviderError(provider, "translate", errors.New("empty translation"))
	}
	return nil
}

func knownLanguage(code string) bool {
	return code != "" && code != "unknown" && code != domain.AutoDetect
}

func recordFor(userID string, t *domain.Translation, now time.Time) *domain.TranslationRecord {
	source := t.SourceLang
	if source == domain.AutoDetect && t.DetectedLanguage != "" {
		source = t.DetectedLanguage
	}

	return &domain.TranslationRecord{
		ID:             uuid.NewString(),
		UserID:         userID,
		OriginalText:   t.OriginalText,
		TranslatedText: t.TranslatedText,
		SourceLang:     source,
		TargetLang:     t.TargetLang,
		Provider:       t.Provider,
		Mode:           t.Mode,
		Confidence:     t.Confidence,
		CreatedAt:      now,
	}
}
