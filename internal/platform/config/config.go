// Package config provides configuration loading and management using koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override. A single underscore
// separates keys and a double underscore stands for an underscore inside a
// key: APP_TRANSLATION_DEEPL_API__KEY sets translation.deepl.api_key.
const EnvPrefix = "APP_"

// Default configuration values.
const (
	DefaultServerPort = 3000

	// DefaultMaxRequestSize leaves room for a 10MB upload plus multipart framing.
	DefaultMaxRequestSize = 11 << 20

	DefaultClientRetryMaxAttempts       = 3
	DefaultClientRetryMultiplier        = 2.0
	DefaultClientRetryJitterFactor      = 0.25
	DefaultClientCircuitMaxFailures     = 5
	DefaultClientCircuitHalfOpenLimit   = 3
	DefaultTransportMaxIdleConns        = 100
	DefaultTransportMaxIdleConnsPerHost = 10

	DefaultLogFileMaxSizeMB  = 100
	DefaultLogFileMaxBackups = 3
	DefaultLogFileMaxAgeDays = 28

	DefaultRateLimitRequests = 100
	DefaultCacheSize         = 1000
	DefaultHistoryLimit      = 50
)

// Config is the root configuration structure.
type Config struct {
	App         AppConfig         `koanf:"app"         validate:"required"`
	Server      ServerConfig      `koanf:"server"      validate:"required"`
	Log         LogConfig         `koanf:"log"         validate:"required"`
	Telemetry   TelemetryConfig   `koanf:"telemetry"`
	Auth        AuthConfig        `koanf:"auth"`
	Client      ClientConfig      `koanf:"client"      validate:"required"`
	CORS        CORSConfig        `koanf:"cors"`
	RateLimit   RateLimitConfig   `koanf:"rate_limit"`
	Translation TranslationConfig `koanf:"translation" validate:"required"`
	Speech      SpeechConfig      `koanf:"speech"      validate:"required"`
	OCR         OCRConfig         `koanf:"ocr"`
	Storage     StorageConfig     `koanf:"storage"     validate:"required"`
	Audio       AudioConfig       `koanf:"audio"       validate:"required"`
	// Flags holds runtime feature flags by name. Dashes and underscores in
	// names are interchangeable so flags can be set from the environment.
	Flags map[string]string `koanf:"flags"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	RequestTimeout  time.Duration `koanf:"request_timeout"  validate:"required,min=1s"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`

	ExportInterval time.Duration `koanf:"export_interval" validate:"omitempty,min=1s"`
}

// AuthConfig reads caller identity from headers set by an upstream gateway.
type AuthConfig struct {
	Enabled       bool   `koanf:"enabled"`
	SubjectHeader string `koanf:"subject_header" validate:"required_if=Enabled true"`
	RolesHeader   string `koanf:"roles_header"`
	AdminRole     string `koanf:"admin_role"`
}

// ClientConfig contains settings shared by every provider HTTP client.
type ClientConfig struct {
	Timeout        time.Duration        `koanf:"timeout"         validate:"required,min=1s"`
	Retry          RetryConfig          `koanf:"retry"           validate:"required"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
	Transport      TransportConfig      `koanf:"transport"       validate:"required"`
}

// RetryConfig contains retry settings for HTTP clients.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"     validate:"required,min=1,max=10"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"required,min=10ms"`
	MaxInterval     time.Duration `koanf:"max_interval"     validate:"required,min=100ms"`
	Multiplier      float64       `koanf:"multiplier"       validate:"required,min=1.1,max=10"`
	JitterFactor    float64       `koanf:"jitter_factor"    validate:"min=0,max=1"`
}

// CircuitBreakerConfig contains circuit breaker settings.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

// TransportConfig contains HTTP transport pool settings.
type TransportConfig struct {
	MaxIdleConns        int           `koanf:"max_idle_conns"          validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"       validate:"required,min=1s"`
}

// CORSConfig controls cross-origin access to the API.
type CORSConfig struct {
	AllowedOrigins []string      `koanf:"allowed_origins"`
	AllowedMethods []string      `koanf:"allowed_methods"`
	AllowedHeaders []string      `koanf:"allowed_headers"`
	MaxAge         time.Duration `koanf:"max_age"`
}

// RateLimitConfig limits requests per client IP on /api/v1.
type RateLimitConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Requests int           `koanf:"requests" validate:"required_if=Enabled true,omitempty,min=1"`
	Window   time.Duration `koanf:"window"   validate:"required_if=Enabled true"`
}

// TranslationConfig selects translation providers.
type TranslationConfig struct {
	Primary        string         `koanf:"primary"   validate:"required,oneof=google microsoft deepl libretranslate mymemory openai gemini"`
	Fallback       bool           `koanf:"fallback"`
	CacheEnabled   bool           `koanf:"cache_enabled"`
	CacheTTL       time.Duration  `koanf:"cache_ttl"  validate:"required_if=CacheEnabled true"`
	CacheSize      int            `koanf:"cache_size" validate:"omitempty,min=1"`
	Google         ProviderConfig `koanf:"google"`
	Microsoft      ProviderConfig `koanf:"microsoft"`
	DeepL          ProviderConfig `koanf:"deepl"`
	LibreTranslate ProviderConfig `koanf:"libretranslate"`
	MyMemory       ProviderConfig `koanf:"mymemory"`
	OpenAI         ProviderConfig `koanf:"openai"`
	Gemini         ProviderConfig `koanf:"gemini"`
}

// ProviderConfig configures one upstream provider. Providers that need a
// key stay unavailable until it is set.
type ProviderConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url" validate:"omitempty,url"`
	Region  string `koanf:"region"`
	Model   string `koanf:"model"`
}

// SpeechConfig selects the recognizer and synthesizer.
type SpeechConfig struct {
	Recognizer         string         `koanf:"recognizer"          validate:"required,oneof=openai deepgram"`
	TranscriptionModel string         `koanf:"transcription_model"`
	SpeechModel        string         `koanf:"speech_model"`
	Deepgram           ProviderConfig `koanf:"deepgram"`
}

// OCRConfig configures image text extraction.
type OCRConfig struct {
	VisionModel string `koanf:"vision_model"`
}

// StorageConfig selects where history and conversations are kept.
type StorageConfig struct {
	Driver       string     `koanf:"driver"        validate:"required,oneof=memory sqlite postgres"`
	DSN          string     `koanf:"dsn"           validate:"required_unless=Driver memory"`
	HistoryLimit int        `koanf:"history_limit" validate:"required,min=1,max=100"`
	Pool         PoolConfig `koanf:"pool"`
}

// PoolConfig sizes the postgres connection pool.
type PoolConfig struct {
	MaxOpenConns    int           `koanf:"max_open_conns"    validate:"omitempty,min=1"`
	MaxIdleConns    int           `koanf:"max_idle_conns"    validate:"omitempty,min=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

// AudioConfig selects where synthesized audio is stored.
type AudioConfig struct {
	Store     string      `koanf:"store"     validate:"required,oneof=filesystem minio"`
	Directory string      `koanf:"directory" validate:"required_if=Store filesystem"`
	MinIO     MinIOConfig `koanf:"minio"`
}

// MinIOConfig configures the S3 compatible audio bucket.
type MinIOConfig struct {
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Bucket    string `koanf:"bucket"`
	Region    string `koanf:"region"`
	UseSSL    bool   `koanf:"use_ssl"`
	Prefix    string `koanf:"prefix"`
}

// IsLocal reports whether the service runs on a developer machine.
func (c *Config) IsLocal() bool {
	return c.App.Environment == "local" || c.App.Environment == "test"
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func defaults() map[string]any {
	return map[string]any{
		"app.name":        "voice-translator-pro",
		"app.version":     "1.0.0",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "60s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.request_timeout":  "45s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/voice-translator.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":         false,
		"telemetry.endpoint":        "",
		"telemetry.service_name":    "voice-translator-pro",
		"telemetry.sampling_rate":   1.0,
		"telemetry.export_interval": "30s",

		"auth.enabled":        false,
		"auth.subject_header": "X-User-ID",
		"auth.roles_header":   "X-User-Roles",
		"auth.admin_role":     "admin",

		"client.timeout":                           "15s",
		"client.retry.max_attempts":                DefaultClientRetryMaxAttempts,
		"client.retry.initial_interval":            "100ms",
		"client.retry.max_interval":                "2s",
		"client.retry.multiplier":                  DefaultClientRetryMultiplier,
		"client.retry.jitter_factor":               DefaultClientRetryJitterFactor,
		"client.circuit_breaker.max_failures":      DefaultClientCircuitMaxFailures,
		"client.circuit_breaker.timeout":           "30s",
		"client.circuit_breaker.half_open_limit":   DefaultClientCircuitHalfOpenLimit,
		"client.transport.max_idle_conns":          DefaultTransportMaxIdleConns,
		"client.transport.max_idle_conns_per_host": DefaultTransportMaxIdleConnsPerHost,
		"client.transport.idle_conn_timeout":       "90s",

		"cors.allowed_origins": []string{"*"},
		"cors.allowed_methods": []string{"GET", "POST", "DELETE", "OPTIONS"},
		"cors.allowed_headers": []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Correlation-ID"},
		"cors.max_age":         "5m",

		"rate_limit.enabled":  true,
		"rate_limit.requests": DefaultRateLimitRequests,
		"rate_limit.window":   "15m",

		"translation.primary":                 "google",
		"translation.fallback":                true,
		"translation.cache_enabled":           true,
		"translation.cache_ttl":               "1h",
		"translation.cache_size":              DefaultCacheSize,
		"translation.google.base_url":         "https://translate.googleapis.com",
		"translation.microsoft.base_url":      "https://api.cognitive.microsofttranslator.com",
		"translation.microsoft.region":        "global",
		"translation.deepl.base_url":          "https://api-free.deepl.com",
		"translation.libretranslate.base_url": "https://libretranslate.de",
		"translation.mymemory.base_url":       "https://api.mymemory.translated.net",
		"translation.openai.model":            "gpt-4o-mini",
		"translation.gemini.model":            "gemini-2.0-flash",

		"speech.recognizer":          "openai",
		"speech.transcription_model": "whisper-1",
		"speech.speech_model":        "tts-1",
		"speech.deepgram.base_url":   "https://api.deepgram.com",
		"speech.deepgram.model":      "nova-2",

		"ocr.vision_model": "gpt-4o",

		"storage.driver":        "memory",
		"storage.history_limit": DefaultHistoryLimit,

		"audio.store":        "filesystem",
		"audio.directory":    "./data/audio",
		"audio.minio.bucket": "voice-translator-audio",
		"audio.minio.prefix": "tts/",
	}
}

// Options locate configuration files.
type Options struct {
	// Profile selects configs/{profile}.yaml.
	Profile string

	// Dir holds base.yaml and the profile files. Defaults to "configs".
	Dir string

	// EnvFile is loaded into the process environment before overrides are
	// read. A missing file is not an error.
	EnvFile string
}

// Load loads configuration with the following precedence (highest to lowest):
//  1. Environment variables (APP_ prefix)
//  2. Profile config file ({dir}/{profile}.yaml)
//  3. Base config file ({dir}/base.yaml)
//  4. Default values
func Load(profile string) (*Config, error) {
	return LoadWithOptions(Options{Profile: profile})
}

// LoadWithOptions is Load with explicit file locations.
func LoadWithOptions(opts Options) (*Config, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "configs"
	}

	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", opts.EnvFile, err)
		}
	}

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if err := loadFileIfExists(k, filepath.Join(dir, "base.yaml")); err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	if opts.Profile != "" {
		if err := loadFileIfExists(k, filepath.Join(dir, opts.Profile+".yaml")); err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", opts.Profile, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// envKey maps APP_SERVER_READ__TIMEOUT to server.read_timeout.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	s = strings.ReplaceAll(s, "__", "\x00")
	s = strings.ReplaceAll(s, "_", ".")
	return strings.ReplaceAll(s, "\x00", "_")
}

func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
