// Package domain contains the translation, speech, and conversation types and errors.
// Domain errors represent business-level failures, NOT HTTP errors.
// Adapters map them to HTTP status codes.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates the entity is in a state that does not allow the operation.
	ErrConflict = errors.New("conflict")

	// ErrValidation indicates the input failed business rule validation.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden indicates the caller may not perform the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthorized indicates the caller did not present valid credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnavailable indicates a required dependency is unavailable.
	ErrUnavailable = errors.New("unavailable")
)

// Translation sentinels.
var (
	// ErrEmptyText is returned when the text to translate is blank after trimming.
	ErrEmptyText = fmt.Errorf("%w: text is required for translation", ErrValidation)

	// ErrUnsupportedLanguage is returned for language codes missing from the catalog.
	ErrUnsupportedLanguage = fmt.Errorf("%w: unsupported language", ErrValidation)

	// ErrProviderUnavailable is returned when a provider is not configured.
	ErrProviderUnavailable = fmt.Errorf("%w: provider not available", ErrUnavailable)

	// ErrAllProvidersFailed is returned when the primary provider and every fallback failed.
	ErrAllProvidersFailed = fmt.Errorf("%w: all translation providers failed", ErrUnavailable)

	// ErrDetectionFailed is returned when no detector produced a result.
	ErrDetectionFailed = fmt.Errorf("%w: language detection failed", ErrUnavailable)
)

// NotFoundError provides context for not found errors.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with id %q not found", e.Entity, e.ID)
	}

	return e.Entity + " not found"
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a not found error with context.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError reports an invalid state transition.
type ConflictError struct {
	Entity string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Entity, e.Reason)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// NewConflictError creates a conflict error with context.
func NewConflictError(entity, reason string) error {
	return &ConflictError{Entity: entity, Reason: reason}
}

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}

	return "validation failed: " + e.Message
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a validation error with context.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ProviderError wraps a failure from one upstream provider.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError wraps err with the provider name and operation.
func NewProviderError(provider, op string, err error) error {
	return &ProviderError{Provider: provider, Op: op, Err: err}
}

// FallbackError collects every attempt made by the fallback chain.
// It matches ErrAllProvidersFailed and each attempt's error.
type FallbackError struct {
	Attempts []error
}

func (e *FallbackError) Error() string {
	if len(e.Attempts) == 0 {
		return ErrAllProvidersFailed.Error()
	}

	msgs := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		msgs = append(msgs, a.Error())
	}

	return ErrAllProvidersFailed.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *FallbackError) Unwrap() []error {
	return append([]error{ErrAllProvidersFailed}, e.Attempts...)
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict checks if an error is a conflict error.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsUnavailable checks if an error is an unavailable error.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsForbidden checks if an error is a forbidden error.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsUnauthorized checks if an error is an unauthorized error.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
