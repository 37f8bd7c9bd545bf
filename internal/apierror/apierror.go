// Package apierror provides the error taxonomy shared by the store, the services
// and the local API, plus the JSON envelopes returned to API clients.
// Handlers never write raw DB errors; they go through Status and New.
package apierror

import (
	"errors"
	"net/http"
)

// Sentinel errors. Layers wrap them with fmt.Errorf("...: %w", Err...) and callers
// match with errors.Is.
var (
	ErrNotFound            = errors.New("record not found")
	ErrInvalidFormat       = errors.New("invalid backup format")
	ErrInvalidState        = errors.New("invalid state")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrTransactionAborted  = errors.New("transaction aborted")
	ErrSchemaMismatch      = errors.New("database schema is newer than this app")
	ErrValidation          = errors.New("validation failed")
	ErrUnauthorized        = errors.New("invalid PIN")

	ErrNetworkUnavailable = errors.New("no internet connection")
	ErrNotSignedIn        = errors.New("not signed in")
	ErrUploadFailed       = errors.New("upload failed")
	ErrSyncFailed         = errors.New("sync failed")
	ErrSyncDisabled       = errors.New("cloud sync is not configured")
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Validation error", Fields: fields}
}

// Status maps an error from the service layer to an HTTP status code.
// Anything unrecognised is a 500.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidFormat):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidState), errors.Is(err, ErrConstraintViolation):
		return http.StatusConflict
	case errors.Is(err, ErrNotSignedIn), errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNetworkUnavailable), errors.Is(err, ErrSyncDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrUploadFailed), errors.Is(err, ErrSyncFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-safe text for err. Internal errors are masked.
func Message(err error) string {
	if Status(err) == http.StatusInternalServerError {
		return "Internal server error"
	}
	return err.Error()
}
