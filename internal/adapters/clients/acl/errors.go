package acl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/clients"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
)

// maxErrorBody bounds how much of an error body is read for a message.
const maxErrorBody = 4 << 10

// ErrorResponse is the union of the error bodies returned by the providers.
//
//	Microsoft:      {"error":{"code":400036,"message":"..."}}
//	DeepL:          {"message":"..."}
//	LibreTranslate: {"error":"..."}
//	MyMemory:       {"responseDetails":"..."}
type ErrorResponse struct {
	Error           json.RawMessage `json:"error,omitempty"`
	Message         string          `json:"message,omitempty"`
	ResponseDetails string          `json:"responseDetails,omitempty"`
}

// GetMessage returns the first non-empty message in the body.
func (e *ErrorResponse) GetMessage() string {
	if len(e.Error) > 0 {
		var s string
		if err := json.Unmarshal(e.Error, &s); err == nil && s != "" {
			return s
		}
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(e.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
	}
	if e.Message != "" {
		return e.Message
	}
	return e.ResponseDetails
}

// ParseErrorResponse reads a provider error body.
// Returns nil if the body is empty or carries no message.
func ParseErrorResponse(body io.Reader) *ErrorResponse {
	if body == nil {
		return nil
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(io.LimitReader(body, maxErrorBody)).Decode(&errResp); err != nil {
		return nil
	}
	if errResp.GetMessage() == "" {
		return nil
	}

	return &errResp
}

// MapHTTPError translates a provider response or client failure into a domain error.
// Returns nil for 2xx responses. The result is always a *domain.ProviderError.
//
//   - 400/413/422      → domain.ErrValidation
//   - 404              → domain.ErrNotFound
//   - 401/403/429/5xx  → domain.ErrProviderUnavailable
//   - transport errors → domain.ErrProviderUnavailable
func MapHTTPError(resp *http.Response, clientErr error, provider, operation string) error {
	if clientErr != nil {
		return mapClientError(clientErr, provider, operation)
	}
	if resp == nil {
		return domain.NewProviderError(provider, operation,
			fmt.Errorf("%w: no response", domain.ErrProviderUnavailable))
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var message string
	if errResp := ParseErrorResponse(resp.Body); errResp != nil {
		message = errResp.GetMessage()
	}

	return domain.NewProviderError(provider, operation, mapStatusCode(resp.StatusCode, message))
}

func mapClientError(err error, provider, operation string) error {
	if errors.Is(err, clients.ErrCircuitOpen) {
		err = fmt.Errorf("%w: circuit open", domain.ErrProviderUnavailable)
	} else {
		err = fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
	}
	return domain.NewProviderError(provider, operation, err)
}

func mapStatusCode(status int, message string) error {
	if message == "" {
		message = strings.ToLower(http.StatusText(status))
	}

	switch {
	case status == http.StatusBadRequest,
		status == http.StatusRequestEntityTooLarge,
		status == http.StatusUnprocessableEntity:
		return domain.NewValidationError("", message)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, message)
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return fmt.Errorf("%w: credentials rejected: %s", domain.ErrProviderUnavailable, message)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: rate limited: %s", domain.ErrProviderUnavailable, message)
	default:
		return fmt.Errorf("%w: status %d: %s", domain.ErrProviderUnavailable, status, message)
	}
}

// Malformed wraps an unparseable or empty provider payload.
func Malformed(provider, operation string, err error) error {
	return domain.NewProviderError(provider, operation,
		fmt.Errorf("%w: malformed response: %w", domain.ErrProviderUnavailable, err))
}
