package llm

import (
	"errors"
	"fmt"
	"time"
)

// Error represents a provider-neutral LLM error.
type Error struct {
	Type        ErrorType
	Message     string
	Retryable   bool
	RetryAfter  *time.Duration
	StatusCode  int
	ProviderErr error // Original provider-specific error
}

// ErrorType represents the category of error.
type ErrorType string

const (
	ErrorTypeRateLimit      ErrorType = "rate_limit"
	ErrorTypeInvalidInput   ErrorType = "invalid_input"
	ErrorTypeInvalidRequest ErrorType = "invalid_request"
	ErrorTypeConfiguration  ErrorType = "configuration"
	ErrorTypeProvider       ErrorType = "provider"
	ErrorTypeNetwork        ErrorType = "network"
	ErrorTypeTimeout        ErrorType = "timeout"
	ErrorTypeExtraction     ErrorType = "extraction"
	ErrorTypeUnknown        ErrorType = "unknown"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.ProviderErr != nil {
		return e.Message + ": " + e.ProviderErr.Error()
	}
	return e.Message
}

// Unwrap returns the underlying provider error.
func (e *Error) Unwrap() error {
	return e.ProviderErr
}

// IsRetryableError checks if an error is worth another attempt. Errors that
// are not an *Error are treated as retryable: an unclassified failure from a
// provider SDK is assumed transient, matching the handling of timeouts and
// network hiccups.
func IsRetryableError(err error) bool {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Retryable
	}
	return true
}

// IsInputError checks if an error indicates caller misuse (empty prompt,
// malformed model identifier). Input errors are never retried and never
// converted into fallback responses.
func IsInputError(err error) bool {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Type == ErrorTypeInvalidInput
	}
	return false
}

// IsRateLimitError checks if an error is a rate limit error.
func IsRateLimitError(err error) bool {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Type == ErrorTypeRateLimit
	}
	return false
}

// ExtractRetryAfter extracts the retry-after duration from an error.
func ExtractRetryAfter(err error) *time.Duration {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.RetryAfter
	}
	return nil
}

// NewRateLimitError creates a new rate limit error.
func NewRateLimitError(message string, retryAfter *time.Duration, providerErr error) *Error {
	return &Error{
		Type:        ErrorTypeRateLimit,
		Message:     message,
		Retryable:   true,
		RetryAfter:  retryAfter,
		ProviderErr: providerErr,
	}
}

// NewProviderError creates a retryable provider-side error (5xx, transport
// failure, unexpected envelope).
func NewProviderError(message string, providerErr error) *Error {
	return &Error{
		Type:        ErrorTypeProvider,
		Message:     message,
		Retryable:   true,
		ProviderErr: providerErr,
	}
}

// NewTimeoutError creates an error for an attempt that hit its deadline.
func NewTimeoutError(message string, providerErr error) *Error {
	return &Error{
		Type:        ErrorTypeTimeout,
		Message:     message,
		Retryable:   true,
		ProviderErr: providerErr,
	}
}

// NewExtractionError creates an error for a response the extractor could not
// pull text from. Treated as retryable: the provider returned something
// unparseable, possibly transient or version skew.
func NewExtractionError(message string) *Error {
	return &Error{
		Type:      ErrorTypeExtraction,
		Message:   message,
		Retryable: true,
	}
}

// NewInputError creates a non-retryable error for caller misuse.
func NewInputError(format string, args ...any) *Error {
	return &Error{
		Type:      ErrorTypeInvalidInput,
		Message:   fmt.Sprintf(format, args...),
		Retryable: false,
	}
}

// NewConfigurationError creates a non-retryable error for a missing
// credential or other static configuration gap.
func NewConfigurationError(message string) *Error {
	return &Error{
		Type:      ErrorTypeConfiguration,
		Message:   message,
		Retryable: false,
	}
}

// NewInvalidRequestError creates a non-retryable error for a request the
// provider rejected as malformed (HTTP 400 and friends).
func NewInvalidRequestError(message string, statusCode int, providerErr error) *Error {
	return &Error{
		Type:        ErrorTypeInvalidRequest,
		Message:     message,
		Retryable:   false,
		StatusCode:  statusCode,
		ProviderErr: providerErr,
	}
}
