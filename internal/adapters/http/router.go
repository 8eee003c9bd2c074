package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/http/dto"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/http/handlers"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/http/middleware"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/app"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/buildinfo"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/platform/config"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/platform/telemetry"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/ports"
)

// DefaultRequestTimeout bounds /api/v1 requests when no timeout is configured.
const DefaultRequestTimeout = 30 * time.Second

// Upload routes run past the request timeout; transcription of a long
// recording can take longer than a text translation.
var timeoutExempt = []string{
	"/api/v1/speech-to-text",
	"/api/v1/ocr",
	"/api/v1/audio/",
}

// RouterConfig contains everything SetupRouter wires.
type RouterConfig struct {
	Services   app.Services
	Registry   ports.HealthRegistry
	Prometheus *telemetry.Prometheus
	Descriptor buildinfo.Descriptor

	// Primary is the configured primary translation provider.
	Primary string

	// ServiceName labels trace spans.
	ServiceName string

	Auth      *config.AuthConfig
	CORS      *config.CORSConfig
	RateLimit *config.RateLimitConfig

	MaxRequestSize int64
	Timeout        time.Duration

	Logger *slog.Logger
}

// SetupRouter configures middleware and routes on engine.
//
// Global middleware, first to last:
//  1. Recovery
//  2. Request ID and correlation ID
//  3. OpenTelemetry tracing and metrics
//  4. CORS
//  5. Request logging (skips /-/ probes and /metrics)
//  6. Body size limit
//
// Route groups:
//   - /-/ probes, /metrics and /api/health: no identity, no rate limit
//   - /api/v1: identity, rate limit, request timeout
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultRequestTimeout
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.TracingMiddleware(cfg.ServiceName),
		telemetry.Middleware(cfg.Prometheus),
		middleware.CORS(cfg.CORS),
		middleware.Logging("/metrics"),
		middleware.BodyLimit(cfg.MaxRequestSize),
	)

	health := handlers.NewHealthHandler(cfg.Registry, cfg.Descriptor)
	health.RegisterProbes(engine.Group("/-"))
	engine.GET("/api/health", health.Summary)
	if cfg.Prometheus != nil {
		engine.GET("/metrics", gin.WrapH(cfg.Prometheus.Handler()))
	}

	api := engine.Group("/api/v1")
	api.Use(
		middleware.Identity(cfg.Auth),
		middleware.RateLimit(cfg.RateLimit),
		middleware.Timeout(cfg.Timeout, timeoutExempt...),
	)

	setupAPIRoutes(api, cfg)

	engine.NoRoute(func(c *gin.Context) {
		dto.RespondWithCode(c, dto.ErrorCodeNotFound, "route not found")
	})

	if cfg.Logger != nil {
		cfg.Logger.Debug("routes registered", slog.Int("count", len(engine.Routes())))
	}
}

func setupAPIRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	svcs := cfg.Services

	th := handlers.NewTranslationHandler(svcs.Translation, svcs.Smart, cfg.Primary)
	rg.POST("/translate", th.Translate)
	rg.POST("/translate/multi", th.TranslateMulti)
	rg.POST("/smart-translate", th.SmartTranslate)
	rg.POST("/detect", th.Detect)
	rg.GET("/languages", th.Languages)
	rg.GET("/providers", th.Providers)
	rg.GET("/providers/stats", th.Stats)

	admin := rg.Group("")
	if cfg.Auth != nil && cfg.Auth.Enabled {
		admin.Use(middleware.RequireRole(cfg.Auth, ""))
	}
	admin.POST("/providers/:name/test", th.TestProvider)

	mh := handlers.NewMediaHandler(svcs.Speech, svcs.OCR)
	rg.POST("/ocr", mh.OCR)
	rg.POST("/speech-to-text", mh.SpeechToText)
	rg.POST("/text-to-speech", mh.TextToSpeech)
	rg.GET("/audio/:id", mh.Audio)

	ch := handlers.NewConversationHandler(svcs.Conversations)
	rg.POST("/conversation", ch.Converse)
	rg.POST("/conversations", ch.Start)
	rg.GET("/conversations", ch.List)
	rg.GET("/conversations/:id", ch.Get)
	rg.DELETE("/conversations/:id", ch.Delete)
	rg.POST("/conversations/:id/messages", ch.AddMessage)
	rg.POST("/conversations/:id/pause", ch.Pause)
	rg.POST("/conversations/:id/resume", ch.Resume)
	rg.POST("/conversations/:id/end", ch.End)

	gh := handlers.NewGroupHandler(svcs.Groups)
	rg.POST("/groups", gh.Create)
	rg.GET("/groups", gh.List)
	rg.GET("/groups/:id", gh.Get)
	rg.DELETE("/groups/:id", gh.Delete)
	rg.POST("/groups/:id/join", gh.Join)
	rg.POST("/groups/:id/leave", gh.Leave)
	rg.POST("/groups/:id/end", gh.End)
	rg.POST("/groups/:id/messages", gh.Send)
	rg.PATCH("/groups/:id/settings", gh.UpdateSettings)

	hh := handlers.NewHistoryHandler(svcs.History)
	rg.GET("/translations", hh.List)
	rg.POST("/translations", hh.Save)
}
