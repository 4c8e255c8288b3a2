package llm

import (
	"time"
)

// Request represents a single LLM generation request.
// The prompt is fully rendered by the caller; the model identifier uses the
// "provider:model_name" form. Requests are immutable per call.
type Request struct {
	// Prompt is the fully rendered prompt text. Must be non-empty.
	Prompt string

	// Model identifies the provider and model, e.g. "openai:gpt-4o-mini"
	// or "gemini:gemini-1.5-flash". A bare model name (no colon) is treated
	// as an OpenAI model for backward compatibility.
	Model string

	// Config overrides the gateway's default retry/timeout configuration.
	// Nil means use defaults.
	Config *Config

	// Fallback is the deterministic payload returned when no provider call
	// succeeds. May be empty (e.g. query generation returns an empty list
	// instead of a canned payload).
	Fallback string
}

// Config holds retry, timeout, and sampling configuration for LLM calls.
type Config struct {
	// MaxRetries is the total number of attempts, including the first.
	MaxRetries int

	// Timeout bounds each individual attempt.
	Timeout time.Duration

	// BaseDelay is the backoff delay after the first failed attempt.
	// The delay after attempt n (0-indexed) is min(BaseDelay * 2^n, MaxDelay).
	BaseDelay time.Duration

	// MaxDelay caps the backoff delay.
	MaxDelay time.Duration

	// Temperature is the sampling temperature passed to the provider.
	Temperature float64
}

// DefaultConfig returns the retry/timeout defaults used when a request does
// not specify its own configuration.
func DefaultConfig() Config {
	return Config{
		MaxRetries:  3,
		Timeout:     60 * time.Second,
		BaseDelay:   time.Second,
		MaxDelay:    10 * time.Second,
		Temperature: 0,
	}
}

// Response is the structured result of an LLM generation request.
// Success implies Content is non-empty and Error is empty; failure implies
// Error is populated (Content may still carry the fallback payload when
// FromFallback is set).
type Response struct {
	Content      string `json:"content,omitempty"`
	Success      bool   `json:"success"`
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	LatencyMS    int64  `json:"latency_ms"`
	Attempts     int    `json:"attempts"`
	TokensUsed   *int64 `json:"tokens_used,omitempty"`
	Error        string `json:"error,omitempty"`
	FromFallback bool   `json:"from_fallback"`
}

// Completion is the provider-neutral result of a single successful provider
// call: the extracted text plus token usage when the provider reports it.
type Completion struct {
	Text       string
	TokensUsed *int64
}
