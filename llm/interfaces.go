package llm

import (
	"context"
)

// Client provides a provider-neutral interface for making LLM API calls.
// Implementations translate the generic call into a provider SDK/API request
// and extract plain text from the provider's response envelope.
//
// Implementations must not retry internally (retries belong to the Executor),
// must not cache, and must not accumulate per-call mutable state: a single
// Client instance is reused across concurrent calls and holds only long-lived
// connection and credential state.
type Client interface {
	// Complete sends a single prompt and returns the extracted text content.
	// The model name is provider-local (the "provider:" prefix already
	// stripped). Cancellation and the per-attempt timeout arrive via ctx.
	Complete(ctx context.Context, prompt, model string, temperature float64) (*Completion, error)
}
