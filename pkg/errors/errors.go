// Package errors defines AppError, the error shape every HTTP handler renders.
package errors

import (
	"errors"
	"net/http"
)

// AppError pairs a stable machine code and client message with an HTTP status. Internal
// is logged but never shown to clients.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

func (e *AppError) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.Internal != nil:
		return e.Message + ": " + e.Internal.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// Is matches any AppError with the same code, so copies made by WithMessage or
// WithInternal still satisfy errors.Is against the shared values below.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && e != nil && t != nil && e.Code == t.Code
}

// WithInternal returns a copy carrying err as the cause.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}
	cp := *e
	cp.Internal = err
	return &cp
}

// WithMessage returns a copy with a different client message.
func (e *AppError) WithMessage(message string) *AppError {
	if e == nil {
		return nil
	}
	cp := *e
	cp.Message = message
	return &cp
}

func New(code, message string, statusCode int) *AppError {
	return &AppError{Code: code, Message: message, StatusCode: statusCode}
}

var (
	ErrBadRequest         = New("BAD_REQUEST", "Invalid request", http.StatusBadRequest)
	ErrNoText             = New("NO_TEXT", "No text provided", http.StatusBadRequest)
	ErrCSRFInvalid        = New("CSRF_TOKEN_INVALID", "Invalid CSRF token", http.StatusForbidden)
	ErrNotFound           = New("NOT_FOUND", "Resource not found", http.StatusNotFound)
	ErrRateLimit          = New("RATE_LIMIT_EXCEEDED", "Too many requests, please slow down", http.StatusTooManyRequests)
	ErrInternalServer     = New("INTERNAL_SERVER_ERROR", "Internal server error", http.StatusInternalServerError)
	ErrTTSFailed          = New("TTS_FAILED", "TTS failed", http.StatusBadGateway)
	ErrModelUnavailable   = New("MODEL_UNAVAILABLE", "Model not available", http.StatusServiceUnavailable)
	ErrMetricsUnavailable = New("METRICS_UNAVAILABLE", "Metrics unavailable", http.StatusServiceUnavailable)
)

// NewBadRequest is a 400 with a caller supplied message, typically a validation summary.
func NewBadRequest(message string) *AppError {
	return ErrBadRequest.WithMessage(message)
}

// Wrap is a 500 with a custom client message that keeps err for the logs.
func Wrap(err error, message string) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: message, StatusCode: http.StatusInternalServerError, Internal: err}
}

// Surface is the request boundary mapping for the chat endpoints: AppErrors pass through
// and anything else becomes a 500 whose message is the error text.
func Surface(err error) *AppError {
	if appErr, ok := asAppError(err); ok || err == nil {
		return appErr
	}
	return Wrap(err, err.Error())
}

// FromError passes AppErrors through and hides anything else behind ErrInternalServer.
func FromError(err error) *AppError {
	if appErr, ok := asAppError(err); ok || err == nil {
		return appErr
	}
	return ErrInternalServer.WithInternal(err)
}

func asAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
