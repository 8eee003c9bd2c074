// Package dto holds the JSON request and response bodies of the HTTP API.
package dto

import (
	"net/http"
	"time"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success   bool        `json:"success"`
	Error     ErrorDetail `json:"error"`
	TraceID   string      `json:"traceId,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ErrorDetail describes what went wrong.
type ErrorDetail struct {
	// Code is machine readable, e.g. "VALIDATION_ERROR".
	Code    string `json:"code"`
	Message string `json:"message"`

	// Details holds field-level messages for validation failures.
	Details map[string]string `json:"details,omitempty"`
}

// Error codes.
const (
	ErrorCodeNotFound     = "NOT_FOUND"
	ErrorCodeConflict     = "CONFLICT"
	ErrorCodeValidation   = "VALIDATION_ERROR"
	ErrorCodeForbidden    = "FORBIDDEN"
	ErrorCodeUnauthorized = "UNAUTHORIZED"
	ErrorCodeUnavailable  = "SERVICE_UNAVAILABLE"
	ErrorCodeTooLarge     = "PAYLOAD_TOO_LARGE"
	ErrorCodeRateLimited  = "RATE_LIMITED"
	ErrorCodeInternal     = "INTERNAL_ERROR"
	ErrorCodeTimeout      = "TIMEOUT"
	ErrorCodeBadRequest   = "BAD_REQUEST"
)

// NewErrorResponse creates an error body.
func NewErrorResponse(code, message string) *ErrorResponse {
	return NewErrorResponseWithDetails(code, message, nil)
}

// NewErrorResponseWithDetails creates an error body with field details.
func NewErrorResponseWithDetails(code, message string, details map[string]string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
		Timestamp: time.Now().UTC(),
	}
}

// WithTraceID sets the trace id and returns e.
func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}

// HTTPStatusFromCode maps an error code to its status.
func HTTPStatusFromCode(code string) int {
	switch code {
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeConflict:
		return http.StatusConflict
	case ErrorCodeValidation, ErrorCodeBadRequest:
		return http.StatusBadRequest
	case ErrorCodeForbidden:
		return http.StatusForbidden
	case ErrorCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrorCodeUnavailable:
		return http.StatusServiceUnavailable
	case ErrorCodeTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrorCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrorCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
