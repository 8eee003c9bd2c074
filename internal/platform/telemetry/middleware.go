package telemetry

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/voicetranslatorpro/voice-translator-pro/internal/platform/telemetry"

// HeaderTraceID returns the trace id of the request span.
const HeaderTraceID = "X-Trace-ID"

// Metrics holds the OpenTelemetry HTTP server instruments.
type Metrics struct {
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
	activeRequests  metric.Int64UpDownCounter
}

// NewMetrics creates HTTP server instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"http.server.request.total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		activeRequests:  activeRequests,
	}, nil
}

// Middleware records OpenTelemetry and Prometheus request metrics and
// echoes the trace id. prom may be nil.
func Middleware(prom *Prometheus) gin.HandlerFunc {
	metrics, err := NewMetrics()
	if err != nil {
		otel.Handle(err)
	}

	return func(c *gin.Context) {
		start := time.Now()
		ctx := c.Request.Context()

		route := attribute.String("http.route", c.FullPath())
		method := attribute.String("http.method", c.Request.Method)

		if metrics != nil {
			metrics.activeRequests.Add(ctx, 1, metric.WithAttributes(method, route))
			defer metrics.activeRequests.Add(ctx, -1, metric.WithAttributes(method, route))
		}

		c.Next()

		if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().HasTraceID() {
			c.Header(HeaderTraceID, span.SpanContext().TraceID().String())
		}

		elapsed := time.Since(start)
		status := c.Writer.Status()

		if metrics != nil {
			attrs := metric.WithAttributes(method, route, attribute.Int("http.status_code", status))
			metrics.requestDuration.Record(ctx, elapsed.Seconds(), attrs)
			metrics.requestTotal.Add(ctx, 1, attrs)
		}

		if prom != nil {
			prom.ObserveHTTP(c.Request.Method, c.FullPath(), status, elapsed)
		}
	}
}

// TracingMiddleware starts a server span per request.
func TracingMiddleware(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}
