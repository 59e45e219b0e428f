package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Reason categorizes why a backend request failed. Reasons drive the
// one-shot fallback (unsupported call shape) and the user-visible apology
// for everything else.
type Reason string

const (
	// ReasonTimeout indicates a request timeout or cancelled deadline.
	ReasonTimeout Reason = "timeout"

	// ReasonRateLimit indicates throttling by the backend (HTTP 429).
	ReasonRateLimit Reason = "rate_limit"

	// ReasonAuth indicates an authentication failure (HTTP 401, 403).
	ReasonAuth Reason = "auth"

	// ReasonServerError indicates backend-side failure (HTTP 5xx).
	ReasonServerError Reason = "server_error"

	// ReasonUnsupported indicates the backend rejected the call shape,
	// typically a streaming request against a server that only does
	// single-shot completions.
	ReasonUnsupported Reason = "unsupported"

	// ReasonUnknown indicates an unclassified error.
	ReasonUnknown Reason = "unknown"
)

// BackendError is a structured error from a model backend.
type BackendError struct {
	// Reason categorizes the failure.
	Reason Reason

	// Backend is the backend name ("ollama", "openai", "anthropic").
	Backend string

	// Model is the model that was requested.
	Model string

	// Status is the HTTP status code, if applicable.
	Status int

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	parts := []string{fmt.Sprintf("[%s]", e.Reason)}
	if e.Backend != "" {
		parts = append(parts, e.Backend)
	}
	if e.Model != "" {
		parts = append(parts, "model="+e.Model)
	}
	if e.Status != 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.Status))
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, " ")
}

// Unwrap returns the underlying error.
func (e *BackendError) Unwrap() error {
	return e.Cause
}

// NewBackendError creates a BackendError, classifying the cause.
func NewBackendError(backend, model string, cause error) *BackendError {
	return &BackendError{
		Reason:  Classify(cause),
		Backend: backend,
		Model:   model,
		Cause:   cause,
	}
}

// WithStatus attaches an HTTP status and reclassifies from it.
func (e *BackendError) WithStatus(status int) *BackendError {
	e.Status = status
	if reason := classifyStatus(status); reason != ReasonUnknown {
		e.Reason = reason
	}
	return e
}

// WithReason overrides the classified reason.
func (e *BackendError) WithReason(reason Reason) *BackendError {
	e.Reason = reason
	return e
}

// Classify inspects an error and returns the matching Reason.
func Classify(err error) Reason {
	if err == nil {
		return ReasonUnknown
	}
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "does not support stream"),
		strings.Contains(msg, "streaming is not supported"),
		strings.Contains(msg, "stream not supported"):
		return ReasonUnsupported
	case strings.Contains(msg, "timeout"),
		strings.Contains(msg, "deadline exceeded"),
		strings.Contains(msg, "context canceled"):
		return ReasonTimeout
	case strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "too many requests"),
		strings.Contains(msg, "429"):
		return ReasonRateLimit
	case strings.Contains(msg, "unauthorized"),
		strings.Contains(msg, "invalid api key"),
		strings.Contains(msg, "authentication"):
		return ReasonAuth
	case strings.Contains(msg, "internal server"),
		strings.Contains(msg, "server error"),
		strings.Contains(msg, "bad gateway"),
		strings.Contains(msg, "service unavailable"):
		return ReasonServerError
	}
	return ReasonUnknown
}

func classifyStatus(status int) Reason {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ReasonAuth
	case status == http.StatusTooManyRequests:
		return ReasonRateLimit
	case status == http.StatusBadRequest:
		return ReasonUnsupported
	case status >= 500:
		return ReasonServerError
	default:
		return ReasonUnknown
	}
}

// IsUnsupported reports whether the error means the call shape was rejected,
// which is the only failure the fallback adapter retries.
func IsUnsupported(err error) bool {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Reason == ReasonUnsupported
	}
	return Classify(err) == ReasonUnsupported
}
