package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/blob"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/clients"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/clients/acl"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/events"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/flags"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/gemini"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/openai"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/storage/memory"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/storage/postgres"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/storage/sqlite"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/storage/sqlstore"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/app"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/platform/config"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/platform/telemetry"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/ports"
)

// deps is the wired application: services, health checks and metrics,
// plus the resources to release on exit.
type deps struct {
	services   app.Services
	registry   *ports.DefaultHealthRegistry
	prometheus *telemetry.Prometheus

	closers []func() error
}

// Close releases resources in reverse order of acquisition.
func (d *deps) Close() error {
	var errs []error
	for _, c := range slices.Backward(d.closers) {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// wire builds every adapter selected by cfg and the services on top of them.
// On failure the resources opened so far are released.
func wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*deps, error) {
	d := &deps{
		registry:   ports.NewHealthRegistry(),
		prometheus: telemetry.NewPrometheus(),
	}

	if err := d.build(ctx, cfg, logger); err != nil {
		if cerr := d.Close(); cerr != nil {
			return nil, errors.Join(err, fmt.Errorf("releasing resources: %w", cerr))
		}
		return nil, err
	}

	return d, nil
}

func (d *deps) build(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	providers, err := newTranslators(ctx, cfg, logger)
	if err != nil {
		return err
	}
	for _, p := range providers.all {
		if hc, ok := p.(ports.HealthChecker); ok {
			if err := d.registry.Register(hc); err != nil {
				return fmt.Errorf("registering %s health check: %w", p.Name(), err)
			}
		}
	}

	repos, err := d.openStorage(ctx, &cfg.Storage)
	if err != nil {
		return err
	}

	audio, err := d.openAudioStore(ctx, &cfg.Audio)
	if err != nil {
		return err
	}

	var cache ports.Cache
	if cfg.Translation.CacheEnabled {
		cache = memory.NewCache(cfg.Translation.CacheSize, cfg.Translation.CacheTTL)
	}

	flagStore := flags.New(cfg.Flags)

	engine := app.NewTranslationService(
		providers.all,
		cache,
		events.NewPublisher(d.prometheus),
		flagStore,
		repos.history,
		&app.TranslationConfig{
			Primary:      cfg.Translation.Primary,
			Fallback:     cfg.Translation.Fallback,
			CacheEnabled: cfg.Translation.CacheEnabled,
			CacheTTL:     cfg.Translation.CacheTTL,
			Logger:       logger,
		},
	)

	recognizer, err := d.newRecognizer(cfg, providers.openai, logger)
	if err != nil {
		return err
	}

	var (
		synthesizer ports.SpeechSynthesizer
		extractor   ports.TextExtractor
	)
	if providers.openai.Available() {
		synthesizer = providers.openai
		extractor = providers.openai
	}

	speech := app.NewSpeechService(recognizer, synthesizer, audio, engine, logger)

	d.services = app.Services{
		Translation:   engine,
		Smart:         app.NewSmartService(engine, providers.styler(), flagStore, logger),
		Speech:        speech,
		OCR:           app.NewOCRService(extractor, engine, logger),
		Conversations: app.NewConversationService(repos.conversations, engine, speech, logger),
		Groups:        app.NewGroupService(repos.groups, engine, logger),
		History:       app.NewHistoryService(repos.history, cfg.Storage.HistoryLimit, logger),
	}

	return nil
}

type translators struct {
	all    []ports.Translator
	openai *openai.Adapter
	gemini *gemini.Adapter
}

// styler prefers OpenAI, then Gemini, for smart translation alternatives.
func (t translators) styler() ports.StyleTranslator {
	switch {
	case t.openai.Available():
		return t.openai
	case t.gemini.Available():
		return t.gemini
	}
	return nil
}

func newTranslators(ctx context.Context, cfg *config.Config, logger *slog.Logger) (translators, error) {
	tc := &cfg.Translation

	google, err := newClient(cfg, logger, acl.ProviderGoogle, tc.Google.BaseURL, acl.GoogleBaseURL, nil)
	if err != nil {
		return translators{}, err
	}

	msHeaders := map[string]string{}
	if tc.Microsoft.APIKey != "" {
		msHeaders[acl.MicrosoftKeyHeader] = tc.Microsoft.APIKey
	}
	if tc.Microsoft.Region != "" {
		msHeaders[acl.MicrosoftRegionHeader] = tc.Microsoft.Region
	}
	microsoft, err := newClient(cfg, logger, acl.ProviderMicrosoft, tc.Microsoft.BaseURL, acl.MicrosoftBaseURL, msHeaders)
	if err != nil {
		return translators{}, err
	}

	deeplHeaders := map[string]string{}
	if tc.DeepL.APIKey != "" {
		deeplHeaders[acl.DeepLAuthHeader] = acl.DeepLAuthValue(tc.DeepL.APIKey)
	}
	deepl, err := newClient(cfg, logger, acl.ProviderDeepL, tc.DeepL.BaseURL, acl.DeepLBaseURL, deeplHeaders)
	if err != nil {
		return translators{}, err
	}

	libre, err := newClient(cfg, logger, acl.ProviderLibreTranslate, tc.LibreTranslate.BaseURL, acl.LibreTranslateBaseURL, nil)
	if err != nil {
		return translators{}, err
	}

	mymemory, err := newClient(cfg, logger, acl.ProviderMyMemory, tc.MyMemory.BaseURL, acl.MyMemoryBaseURL, nil)
	if err != nil {
		return translators{}, err
	}

	circuit := circuitConfig(cfg)

	oai := openai.New(openai.Config{
		APIKey:             tc.OpenAI.APIKey,
		BaseURL:            tc.OpenAI.BaseURL,
		ChatModel:          tc.OpenAI.Model,
		VisionModel:        cfg.OCR.VisionModel,
		TranscriptionModel: cfg.Speech.TranscriptionModel,
		SpeechModel:        cfg.Speech.SpeechModel,
		Circuit:            circuit,
		OnStateChange:      logStateChange(logger, openai.Name),
	})

	gem, err := gemini.New(ctx, gemini.Config{
		APIKey:        tc.Gemini.APIKey,
		Model:         tc.Gemini.Model,
		BaseURL:       tc.Gemini.BaseURL,
		Circuit:       circuit,
		OnStateChange: logStateChange(logger, gemini.Name),
	})
	if err != nil {
		return translators{}, fmt.Errorf("creating gemini adapter: %w", err)
	}

	return translators{
		all: []ports.Translator{
			acl.NewGoogleAdapter(google),
			acl.NewMicrosoftAdapter(microsoft, tc.Microsoft.APIKey),
			acl.NewDeepLAdapter(deepl, tc.DeepL.APIKey),
			acl.NewLibreTranslateAdapter(libre, tc.LibreTranslate.APIKey),
			acl.NewMyMemoryAdapter(mymemory, tc.MyMemory.APIKey),
			oai,
			gem,
		},
		openai: oai,
		gemini: gem,
	}, nil
}

// newRecognizer returns the configured speech recognizer, or nil when it
// cannot be used. Deepgram registers its own health check; OpenAI is
// already registered as a translator.
func (d *deps) newRecognizer(cfg *config.Config, oai *openai.Adapter, logger *slog.Logger) (ports.SpeechRecognizer, error) {
	if cfg.Speech.Recognizer != acl.ProviderDeepgram {
		if !oai.Available() {
			return nil, nil
		}
		return oai, nil
	}

	dg := cfg.Speech.Deepgram
	headers := map[string]string{}
	if dg.APIKey != "" {
		headers["Authorization"] = acl.DeepgramAuthValue(dg.APIKey)
	}

	client, err := newClient(cfg, logger, acl.ProviderDeepgram, dg.BaseURL, acl.DeepgramBaseURL, headers)
	if err != nil {
		return nil, err
	}

	adapter := acl.NewDeepgramAdapter(client, dg.APIKey)
	if err := d.registry.Register(adapter); err != nil {
		return nil, fmt.Errorf("registering deepgram health check: %w", err)
	}

	return adapter, nil
}

// newClient creates the instrumented client of one HTTP provider. The
// service name doubles as the provider key.
func newClient(cfg *config.Config, logger *slog.Logger, name, baseURL, defaultURL string, headers map[string]string) (*clients.Client, error) {
	if baseURL == "" {
		baseURL = defaultURL
	}

	c, err := clients.New(&clients.Config{
		BaseURL:     baseURL,
		ServiceName: name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		Headers:     headers,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s client: %w", name, err)
	}

	return c, nil
}

func circuitConfig(cfg *config.Config) clients.CircuitBreakerConfig {
	cb := cfg.Client.CircuitBreaker
	return clients.CircuitBreakerConfig{
		MaxFailures:   cb.MaxFailures,
		Timeout:       cb.Timeout,
		HalfOpenLimit: cb.HalfOpenLimit,
	}
}

func logStateChange(logger *slog.Logger, provider string) func(from, to clients.State) {
	return func(from, to clients.State) {
		logger.Warn("circuit breaker state changed",
			slog.String("provider", provider),
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	}
}

type repositories struct {
	history       ports.HistoryRepository
	conversations ports.ConversationRepository
	groups        ports.GroupRepository
}

func (d *deps) openStorage(ctx context.Context, cfg *config.StorageConfig) (*repositories, error) {
	var (
		dialect sqlstore.Dialect
		open    func() (*sql.DB, error)
	)

	switch cfg.Driver {
	case "sqlite":
		dialect = sqlite.Dialect
		open = func() (*sql.DB, error) { return sqlite.Open(ctx, cfg.DSN) }
	case "postgres":
		dialect = postgres.Dialect
		open = func() (*sql.DB, error) {
			return postgres.Open(ctx, cfg.DSN, postgres.PoolConfig{
				MaxOpenConns:    cfg.Pool.MaxOpenConns,
				MaxIdleConns:    cfg.Pool.MaxIdleConns,
				ConnMaxLifetime: cfg.Pool.ConnMaxLifetime,
			})
		}
	default:
		return &repositories{
			history:       memory.NewHistoryStore(),
			conversations: memory.NewConversationStore(),
			groups:        memory.NewGroupStore(),
		}, nil
	}

	db, err := open()
	if err != nil {
		return nil, err
	}
	d.closers = append(d.closers, db.Close)

	if err := d.registry.Register(sqlstore.NewHealthChecker(db, dialect)); err != nil {
		return nil, fmt.Errorf("registering %s health check: %w", dialect.Name, err)
	}

	return &repositories{
		history:       sqlstore.NewHistoryRepository(db, dialect),
		conversations: sqlstore.NewConversationRepository(db, dialect),
		groups:        sqlstore.NewGroupRepository(db, dialect),
	}, nil
}

func (d *deps) openAudioStore(ctx context.Context, cfg *config.AudioConfig) (ports.AudioStore, error) {
	var (
		store interface {
			ports.AudioStore
			ports.HealthChecker
		}
		err error
	)

	switch cfg.Store {
	case "minio":
		m := cfg.MinIO
		store, err = blob.NewMinIOStore(ctx, blob.MinIOConfig{
			Endpoint:  m.Endpoint,
			AccessKey: m.AccessKey,
			SecretKey: m.SecretKey,
			Bucket:    m.Bucket,
			Region:    m.Region,
			UseSSL:    m.UseSSL,
			Prefix:    m.Prefix,
		})
	default:
		store, err = blob.NewFileStore(cfg.Directory)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s audio store: %w", cfg.Store, err)
	}

	if err := d.registry.Register(store); err != nil {
		return nil, fmt.Errorf("registering audio store health check: %w", err)
	}

	return store, nil
}
