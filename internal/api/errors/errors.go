package errors

import (
	stderrors "errors"
	"net/http"

	apperrors "voicenote/internal/app/errors"
)

// ErrorKind represents different types of API errors
type ErrorKind string

const (
	KindNotFound     ErrorKind = "not_found"
	KindUnauthorized ErrorKind = "unauthorized"
	KindInternal     ErrorKind = "internal"
	KindBadRequest   ErrorKind = "bad_request"
)

// APIError represents a structured API error response
type APIError struct {
	Kind      ErrorKind         `json:"kind"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Code      string            `json:"code,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for the error kind
func (e *APIError) HTTPStatus() int {
	switch e.Kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) *APIError {
	return &APIError{
		Kind:    KindNotFound,
		Message: message,
	}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *APIError {
	return &APIError{
		Kind:    KindUnauthorized,
		Message: message,
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *APIError {
	return &APIError{
		Kind:    KindInternal,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error
func NewBadRequestError(message string) *APIError {
	return &APIError{
		Kind:    KindBadRequest,
		Message: message,
	}
}

// NewBadRequestErrorWithDetails creates a bad request error listing offending fields
func NewBadRequestErrorWithDetails(message string, fields map[string]string) *APIError {
	return &APIError{
		Kind:    KindBadRequest,
		Message: message,
		Details: fields,
	}
}

// FromAppError maps a classified application error onto the API surface.
// Only input and auth problems expose their message; everything else is a
// generic internal error. The second result is false for unclassified errors.
func FromAppError(err error) (*APIError, bool) {
	switch kind := apperrors.KindOf(err); kind {
	case apperrors.KindInvalidInput:
		return NewBadRequestError(rootMessage(err)), true
	case apperrors.KindUnauthorized:
		return NewUnauthorizedError("Unauthorized"), true
	case apperrors.KindTranscriptionFailed, apperrors.KindEnhancementFailed:
		return &APIError{Kind: KindInternal, Message: "Failed to process audio file", Code: kind.String()}, true
	case apperrors.KindPersistence:
		return &APIError{Kind: KindInternal, Message: "Internal server error", Code: kind.String()}, true
	case apperrors.KindUnknown:
		return nil, false
	default:
		return nil, false
	}
}

// rootMessage returns the message of the outermost classified error without
// its cause chain.
func rootMessage(err error) string {
	var e *apperrors.Error
	if stderrors.As(err, &e) {
		if msg := e.Message(); msg != "" {
			return msg
		}
	}
	return err.Error()
}
