package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/http/middleware"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/platform/config"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/platform/logging"
)

const (
	instrumentationName = "github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/clients"

	httpStatusCategoryDivisor = 100

	// backoffJitterFactor is the jitter percentage for backoff calculation (±25%).
	backoffJitterFactor = 0.25

	defaultTimeout = 30 * time.Second

	// jitterRangeMultiplier converts rand [0,1) to [-1,1) for symmetric jitter.
	jitterRangeMultiplier = 2
)

// Config configures a client for one upstream provider.
type Config struct {
	// BaseURL is prefixed to every request path.
	BaseURL string

	// ServiceName identifies the provider in logs, traces, and metrics.
	ServiceName string

	// Timeout is the per-attempt request timeout.
	Timeout time.Duration

	Retry     config.RetryConfig
	Circuit   config.CircuitBreakerConfig
	Transport config.TransportConfig

	// Headers are set on every request, e.g. provider API keys.
	Headers map[string]string

	// Logger is optional; slog.Default is used when nil.
	Logger *slog.Logger
}

// Client is an instrumented HTTP client for translation and speech providers.
// It retries with exponential backoff and jitter, trips a circuit breaker,
// propagates request and correlation IDs, and records OpenTelemetry spans and metrics.
type Client struct {
	http        *http.Client
	baseURL     string
	serviceName string
	cfg         *Config
	logger      *slog.Logger
	cb          *CircuitBreaker

	tracer trace.Tracer

	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
}

// New creates a new instrumented HTTP client.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	if cfg.ServiceName == "" {
		return nil, errors.New("service name is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry.MaxAttempts = 1
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(
		slog.String("component", "clients.Client"),
		slog.String("provider", cfg.ServiceName),
	)

	cb := NewCircuitBreaker(cfg.ServiceName, CircuitBreakerConfig{
		MaxFailures:   cfg.Circuit.MaxFailures,
		Timeout:       cfg.Circuit.Timeout,
		HalfOpenLimit: cfg.Circuit.HalfOpenLimit,
	}, func(from, to State) {
		logger.Warn("circuit breaker state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})

	meter := otel.Meter(instrumentationName)

	requestDuration, err := meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("Duration of provider HTTP requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration metric: %w", err)
	}

	requestTotal, err := meter.Int64Counter(
		"http.client.request.total",
		metric.WithDescription("Total number of provider HTTP requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request counter: %w", err)
	}

	return &Client{
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: newTransport(cfg.Transport),
		},
		baseURL:         strings.TrimSuffix(cfg.BaseURL, "/"),
		serviceName:     cfg.ServiceName,
		cfg:             cfg,
		logger:          logger,
		cb:              cb,
		tracer:          otel.Tracer(instrumentationName),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
	}, nil
}

func newTransport(tc config.TransportConfig) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	if tc.MaxIdleConns > 0 {
		t.MaxIdleConns = tc.MaxIdleConns
	}
	if tc.MaxIdleConnsPerHost > 0 {
		t.MaxIdleConnsPerHost = tc.MaxIdleConnsPerHost
	}
	if tc.IdleConnTimeout > 0 {
		t.IdleConnTimeout = tc.IdleConnTimeout
	}
	return t
}

// ServiceName returns the provider name this client talks to.
func (c *Client) ServiceName() string {
	return c.serviceName
}

// Do executes an HTTP request with retry, circuit breaker, tracing, and logging.
// Bodies are replayed on retry through req.GetBody, which http.NewRequest sets
// for bytes and strings readers.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	startTime := time.Now()
	logger := logging.FromContext(ctx).With(
		slog.String("provider", c.serviceName),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
	)

	done, err := c.cb.Allow()
	if err != nil {
		c.recordMetrics(ctx, req.Method, 0, time.Since(startTime), "circuit_open")
		logger.Warn("request blocked by circuit breaker")
		return nil, err
	}

	c.injectHeaders(ctx, req)

	ctx, span := c.tracer.Start(ctx, fmt.Sprintf("HTTP %s %s", req.Method, c.serviceName),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.url", redactQuery(req.URL)),
			attribute.String("peer.service", c.serviceName),
		),
	)
	defer span.End()

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, lastErr := c.executeWithRetry(ctx, req, logger)

	duration := time.Since(startTime)
	if lastErr != nil {
		done(errors.Is(lastErr, context.Canceled))
		span.SetStatus(codes.Error, lastErr.Error())
		c.recordMetrics(ctx, req.Method, 0, duration, "error")
		logger.Error("request failed",
			slog.Duration("duration", duration),
			slog.Any("error", lastErr),
		)
		return nil, fmt.Errorf("%w: %w", ErrMaxRetriesExceeded, lastErr)
	}

	done(true)
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", resp.StatusCode))
	}

	c.recordMetrics(ctx, req.Method, resp.StatusCode, duration,
		fmt.Sprintf("%dxx", resp.StatusCode/httpStatusCategoryDivisor))

	logger.Debug("request completed",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", duration),
	)

	return resp, nil
}

func (c *Client) executeWithRetry(ctx context.Context, req *http.Request, logger *slog.Logger) (*http.Response, error) {
	var lastErr error

	for attempt := range c.cfg.Retry.MaxAttempts {
		if attempt > 0 {
			if err := c.waitForRetry(ctx, req, attempt, logger); err != nil {
				return nil, err
			}
		}

		resp, err := c.http.Do(req.WithContext(ctx))

		retry, err := c.handleAttemptResult(resp, err, attempt, logger)
		if retry {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}

		return resp, nil
	}

	return nil, lastErr
}

// waitForRetry sleeps for the backoff and rewinds the request body.
func (c *Client) waitForRetry(ctx context.Context, req *http.Request, attempt int, logger *slog.Logger) error {
	backoff := c.calculateBackoff(attempt)
	logger.Debug("retrying request",
		slog.Int("attempt", attempt+1),
		slog.Duration("backoff", backoff),
	)

	timer := time.NewTimer(backoff)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return fmt.Errorf("rewinding request body: %w", err)
		}
		req.Body = body
	}

	return nil
}

// handleAttemptResult reports whether the attempt should be retried.
func (c *Client) handleAttemptResult(resp *http.Response, err error, attempt int, logger *slog.Logger) (bool, error) {
	if err != nil {
		if isRetryableError(err) {
			logger.Debug("request failed with retryable error",
				slog.Int("attempt", attempt+1),
				slog.Any("error", err),
			)
			return true, err
		}
		return false, err
	}

	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		logger.Debug("request failed with retryable status",
			slog.Int("attempt", attempt+1),
			slog.Int("status", resp.StatusCode),
		)
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Debug("failed to close response body", slog.Any("error", closeErr))
		}
		return true, &StatusError{StatusCode: resp.StatusCode}
	}

	return false, nil
}

// Get performs an HTTP GET request with optional query parameters.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(path, query), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	return c.Do(ctx, req)
}

// PostJSON encodes body as JSON and POSTs it.
func (c *Client) PostJSON(ctx context.Context, path string, query url.Values, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}

	return c.PostBytes(ctx, path, query, "application/json", data)
}

// PostForm POSTs url-encoded form values.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values) (*http.Response, error) {
	return c.PostBytes(ctx, path, nil, "application/x-www-form-urlencoded", []byte(form.Encode()))
}

// PostBytes POSTs a raw payload such as recorded audio.
func (c *Client) PostBytes(ctx context.Context, path string, query url.Values, contentType string, data []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(path, query), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", contentType)

	return c.Do(ctx, req)
}

// CircuitState returns the current state of the circuit breaker.
func (c *Client) CircuitState() State {
	return c.cb.State()
}

func (c *Client) injectHeaders(ctx context.Context, req *http.Request) {
	if requestID := middleware.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set(middleware.HeaderRequestID, requestID)
	}

	if correlationID := middleware.CorrelationIDFromContext(ctx); correlationID != "" {
		req.Header.Set(middleware.HeaderCorrelationID, correlationID)
	}

	for k, v := range c.cfg.Headers {
		req.Header.Set(k, v)
	}
}

func (c *Client) buildURL(path string, query url.Values) string {
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	return u
}

// calculateBackoff returns initial * multiplier^attempt, capped and jittered.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := float64(c.cfg.Retry.InitialInterval) * math.Pow(c.cfg.Retry.Multiplier, float64(attempt))

	if backoff > float64(c.cfg.Retry.MaxInterval) {
		backoff = float64(c.cfg.Retry.MaxInterval)
	}

	jitterFactor := c.cfg.Retry.JitterFactor
	if jitterFactor <= 0 {
		jitterFactor = backoffJitterFactor
	}

	jitterMultiplier := rand.Float64()*jitterRangeMultiplier - 1 //nolint:gosec // No need for crypto-grade randomness
	backoff += backoff * jitterFactor * jitterMultiplier

	return time.Duration(backoff)
}

func (c *Client) recordMetrics(ctx context.Context, method string, statusCode int, duration time.Duration, result string) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("peer.service", c.serviceName),
		attribute.String("result", result),
	}

	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	c.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	c.requestTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// redactQuery drops query values, which may carry API keys.
func redactQuery(u *url.URL) string {
	clone := *u
	clone.RawQuery = ""
	return clone.String()
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError

	return errors.As(err, &opErr)
}
