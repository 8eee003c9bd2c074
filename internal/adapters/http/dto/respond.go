package dto

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/platform/logging"
)

// MapDomainError maps err to a status code and error body. Errors outside the
// domain taxonomy become a generic 500 so internals do not leak.
func MapDomainError(err error) (int, *ErrorResponse) {
	var fe *domain.FallbackError

	switch {
	case err == nil:
		return http.StatusOK, nil

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, NewErrorResponse(ErrorCodeTimeout, "request timeout exceeded")

	case errors.As(err, &fe):
		return http.StatusServiceUnavailable, NewErrorResponseWithDetails(
			ErrorCodeUnavailable, domain.ErrAllProvidersFailed.Error(), attemptDetails(fe))

	case domain.IsNotFound(err):
		return http.StatusNotFound, NewErrorResponse(ErrorCodeNotFound, err.Error())

	case domain.IsConflict(err):
		return http.StatusConflict, NewErrorResponse(ErrorCodeConflict, err.Error())

	case domain.IsValidation(err):
		resp := NewErrorResponse(ErrorCodeValidation, err.Error())

		var ve *domain.ValidationError
		if errors.As(err, &ve) && ve.Field != "" {
			resp.Error.Details = map[string]string{ve.Field: ve.Message}
		}

		return http.StatusBadRequest, resp

	case domain.IsUnauthorized(err):
		return http.StatusUnauthorized, NewErrorResponse(ErrorCodeUnauthorized, err.Error())

	case domain.IsForbidden(err):
		return http.StatusForbidden, NewErrorResponse(ErrorCodeForbidden, err.Error())

	case domain.IsUnavailable(err):
		return http.StatusServiceUnavailable, NewErrorResponse(ErrorCodeUnavailable, err.Error())

	default:
		return http.StatusInternalServerError, NewErrorResponse(ErrorCodeInternal, "an internal error occurred")
	}
}

// attemptDetails lists each failed provider with its error.
func attemptDetails(fe *domain.FallbackError) map[string]string {
	if len(fe.Attempts) == 0 {
		return nil
	}

	out := make(map[string]string, len(fe.Attempts))
	for i, a := range fe.Attempts {
		var pe *domain.ProviderError
		if errors.As(a, &pe) {
			out[pe.Provider] = pe.Err.Error()
			continue
		}
		out[fmt.Sprintf("attempt_%d", i+1)] = a.Error()
	}

	return out
}

// HandleError writes the mapped error body for err. Binding and validator
// failures from this package become 400 responses with field details.
func HandleError(c *gin.Context, err error) {
	var (
		status int
		resp   *ErrorResponse
	)

	switch {
	case IsValidationError(err):
		status = http.StatusBadRequest
		resp = NewErrorResponseWithDetails(ErrorCodeValidation, "request validation failed", ValidationErrors(err))
	case errors.Is(err, ErrBinding):
		status = http.StatusBadRequest
		resp = NewErrorResponse(ErrorCodeBadRequest, "malformed request body")
	case errors.Is(err, ErrInvalidCursor):
		status = http.StatusBadRequest
		resp = NewErrorResponseWithDetails(ErrorCodeValidation, "request validation failed", map[string]string{"cursor": err.Error()})
	default:
		status, resp = MapDomainError(err)
	}

	resp.TraceID = traceID(c)

	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).ErrorContext(c.Request.Context(), "request failed",
			slog.Int("status", status),
			slog.Any("error", err),
			slog.String("trace_id", resp.TraceID),
		)
	}

	c.JSON(status, resp)
}

// RespondWithCode writes an error body for an adapter-level failure.
func RespondWithCode(c *gin.Context, code, message string) {
	c.JSON(HTTPStatusFromCode(code), NewErrorResponse(code, message).WithTraceID(traceID(c)))
}

// AbortWithCode stops the handler chain with an error body.
func AbortWithCode(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(HTTPStatusFromCode(code), NewErrorResponse(code, message).WithTraceID(traceID(c)))
}

func traceID(c *gin.Context) string {
	if sc := trace.SpanFromContext(c.Request.Context()).SpanContext(); sc.HasTraceID() {
		return sc.TraceID().String()
	}

	return ""
}
