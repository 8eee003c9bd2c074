// Package events publishes usage events to the log and to metrics.
package events

import (
	"context"
	"log/slog"
	"strings"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/platform/logging"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/ports"
)

// Metrics receives event counts. *telemetry.Prometheus satisfies it.
type Metrics interface {
	CountTranslation(provider, outcome string)
	CountEvent(eventType string)
}

// Publisher implements ports.EventPublisher.
type Publisher struct {
	metrics Metrics
	level   slog.Level
}

// NewPublisher creates a publisher. metrics may be nil. Events are logged at
// debug level; errors at warn.
func NewPublisher(metrics Metrics) *Publisher {
	return &Publisher{metrics: metrics, level: slog.LevelDebug}
}

// Publish implements ports.EventPublisher. It never fails.
func (p *Publisher) Publish(ctx context.Context, e ports.Event) error {
	if p.metrics != nil {
		p.metrics.CountEvent(e.Type)

		provider, _ := e.Attributes["provider"].(string)
		if provider != "" && strings.HasPrefix(e.Type, "translation_") {
			p.metrics.CountTranslation(provider, outcome(e.Type))
		}
	}

	level := p.level
	if outcome(e.Type) == "error" {
		level = slog.LevelWarn
	}

	logger := logging.FromContext(ctx)
	if !logger.Enabled(ctx, level) {
		return nil
	}

	attrs := make([]slog.Attr, 0, len(e.Attributes)+1)
	attrs = append(attrs, slog.String("event", e.Type))
	for k, v := range e.Attributes {
		attrs = append(attrs, slog.Any(k, v))
	}

	logger.LogAttrs(ctx, level, "usage event", attrs...)

	return nil
}

func outcome(eventType string) string {
	switch {
	case eventType == domain.EventTranslationError, eventType == domain.EventDetectionError,
		strings.HasSuffix(eventType, "_error"):
		return "error"
	default:
		return "success"
	}
}
