package acl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/clients"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
)

// Provider keys. Clients are created with the key as their service name.
const (
	ProviderGoogle         = "google"
	ProviderMicrosoft      = "microsoft"
	ProviderDeepL          = "deepl"
	ProviderLibreTranslate = "libretranslate"
	ProviderMyMemory       = "mymemory"
	ProviderDeepgram       = "deepgram"
)

// BaseAdapter provides the plumbing shared by provider adapters.
// Embed it in provider-specific adapters.
type BaseAdapter struct {
	client      *clients.Client
	displayName string
	enabled     bool
}

// NewBaseAdapter creates a base adapter. enabled reports whether the provider
// has the credentials it needs; a disabled adapter never issues requests.
func NewBaseAdapter(client *clients.Client, displayName string, enabled bool) BaseAdapter {
	return BaseAdapter{
		client:      client,
		displayName: displayName,
		enabled:     enabled,
	}
}

// Name returns the provider key.
func (a *BaseAdapter) Name() string {
	return a.client.ServiceName()
}

// DisplayName returns the human readable provider name.
func (a *BaseAdapter) DisplayName() string {
	return a.displayName
}

// Available reports whether the provider is configured.
func (a *BaseAdapter) Available() bool {
	return a.enabled
}

// Optional marks provider health checks as non-critical.
func (a *BaseAdapter) Optional() bool {
	return true
}

// Check reports the provider unhealthy when unconfigured or when its circuit is open.
func (a *BaseAdapter) Check(context.Context) error {
	if !a.enabled {
		return domain.NewProviderError(a.Name(), "check", domain.ErrProviderUnavailable)
	}
	if a.client.CircuitState() == clients.StateOpen {
		return MapHTTPError(nil, clients.ErrCircuitOpen, a.Name(), "check")
	}
	return nil
}

// Guard returns ErrProviderUnavailable when the adapter is disabled.
func (a *BaseAdapter) Guard(operation string) error {
	if a.enabled {
		return nil
	}
	return domain.NewProviderError(a.Name(), operation, domain.ErrProviderUnavailable)
}

// Get performs a GET request and returns the response body (caller must close).
// Failures are returned as domain errors.
func (a *BaseAdapter) Get(ctx context.Context, path string, query url.Values, operation string) (io.ReadCloser, error) {
	resp, err := a.client.Get(ctx, path, query)
	return a.handle(resp, err, operation)
}

// PostJSON performs a JSON POST and returns the response body.
func (a *BaseAdapter) PostJSON(ctx context.Context, path string, query url.Values, body any, operation string) (io.ReadCloser, error) {
	resp, err := a.client.PostJSON(ctx, path, query, body)
	return a.handle(resp, err, operation)
}

// PostForm performs a form POST and returns the response body.
func (a *BaseAdapter) PostForm(ctx context.Context, path string, form url.Values, operation string) (io.ReadCloser, error) {
	resp, err := a.client.PostForm(ctx, path, form)
	return a.handle(resp, err, operation)
}

// PostBytes posts a raw payload and returns the response body.
func (a *BaseAdapter) PostBytes(ctx context.Context, path string, query url.Values, contentType string, data []byte, operation string) (io.ReadCloser, error) {
	resp, err := a.client.PostBytes(ctx, path, query, contentType, data)
	return a.handle(resp, err, operation)
}

func (a *BaseAdapter) handle(resp *http.Response, err error, operation string) (io.ReadCloser, error) {
	if err != nil {
		return nil, MapHTTPError(nil, err, a.Name(), operation)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		defer func() { _ = resp.Body.Close() }()

		return nil, MapHTTPError(resp, nil, a.Name(), operation)
	}

	return resp.Body, nil
}

// DecodeResponse reads and decodes a JSON response body into the target type.
// Closes the body after reading.
func DecodeResponse[T any](body io.ReadCloser) (*T, error) {
	if body == nil {
		return nil, fmt.Errorf("response body is nil")
	}
	defer func() { _ = body.Close() }()

	var result T
	if err := json.NewDecoder(body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &result, nil
}

// ValidateRequired checks that a required field is not empty.
func ValidateRequired(value, fieldName string) error {
	if value == "" {
		return domain.NewValidationError(fieldName, "is required")
	}

	return nil
}
