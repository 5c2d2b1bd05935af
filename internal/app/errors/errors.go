package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies failures so the HTTP layer can map them to status codes.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindUnauthorized
	KindTranscriptionFailed
	KindEnhancementFailed
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindUnauthorized:
		return "unauthorized"
	case KindTranscriptionFailed:
		return "transcription_failed"
	case KindEnhancementFailed:
		return "enhancement_failed"
	case KindPersistence:
		return "persistence_error"
	default:
		return "unknown"
	}
}

// Common error types
var (
	ErrFileTooLarge      = New(KindInvalidInput, "file too large")
	ErrUnsupportedFormat = New(KindInvalidInput, "unsupported audio format")
	ErrMissingFile       = New(KindInvalidInput, "no file provided")
	ErrUploadUnreadable  = New(KindInvalidInput, "unable to read uploaded file")
	ErrMissingID         = New(KindInvalidInput, "transcription id is required")

	ErrUnauthorized   = New(KindUnauthorized, "unauthorized")
	ErrSessionExpired = New(KindUnauthorized, "session expired")

	ErrTranscriptionFailed = New(KindTranscriptionFailed, "failed to transcribe audio")
	ErrEnhancementFailed   = New(KindEnhancementFailed, "failed to enhance text")

	ErrInsertFailed = New(KindPersistence, "insert failed")
	ErrUpdateFailed = New(KindPersistence, "update failed")
	ErrQueryFailed  = New(KindPersistence, "query failed")
)

// Error represents a standardized error
type Error struct {
	kind    Kind
	message string
	cause   error
}

// New creates a new error
func New(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

// Newf creates a new formatted error
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to err.
func Wrap(err error, kind Kind, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		kind:    kind,
		message: message,
		cause:   err,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, kind Kind, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{
		kind:    kind,
		message: fmt.Sprintf(format, args...),
		cause:   err,
	}
}

// WithCause returns a copy of the sentinel e carrying cause, so errors.Is
// matches both.
func (e *Error) WithCause(cause error) error {
	if cause == nil {
		return e
	}
	return &Error{kind: e.kind, message: e.message, cause: cause}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// Message returns e's own message without the cause.
func (e *Error) Message() string {
	return e.message
}

// Kind returns the classification of e.
func (e *Error) Kind() Kind {
	return e.kind
}

// Is matches on kind and message, so a wrapped sentinel still compares equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.kind == t.kind && e.message == t.message
}

// KindOf returns the kind of the outermost classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}

// Is reports whether err has the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
