// Package llm provides a provider-neutral abstraction layer for Large Language Model (LLM) APIs.
//
// This package defines common types, interfaces, and utilities that allow the codebase
// to work with multiple LLM providers (OpenAI, Gemini, Anthropic, Ollama) without being
// tightly coupled to any specific provider's SDK.
//
// # Core Concepts
//
//  1. Client Interface: the Client interface provides Complete() for single-shot prompt
//     completion. Implementations handle provider-specific details, including pulling
//     plain text out of whatever response envelope the provider returns.
//
//  2. Registry: the ProviderRegistry resolves a "provider:model_name" identifier to a
//     concrete provider and checks whether a usable credential is configured for it.
//
//  3. Executor: the retry Executor wraps a single provider call with a per-attempt
//     timeout and capped exponential backoff, and reports a structured outcome
//     (attempt count, latency, last error).
//
//  4. Gateway: the Gateway ties the registry, clients, and executor together. Provider
//     failures never surface as errors; after exhausting retries the Gateway returns
//     the request's deterministic fallback payload, tagged with FromFallback, so the
//     caller always receives some protocol content. Only caller mistakes (empty
//     prompt, malformed model identifier) are returned as errors.
//
//  5. Errors: the Error type provides provider-neutral error handling with support for
//     rate limits, retryable errors, and provider-specific error details.
//
// Usage example:
//
//	registry := llm.NewProviderRegistry(&llm.ProviderConfig{OpenAIAPIKey: key}, []string{"openai"})
//	gateway := llm.NewGateway(registry, clients, defaults, logger)
//
//	resp, err := gateway.Generate(ctx, &llm.Request{
//	    Prompt:   prompt,
//	    Model:    "openai:gpt-4o-mini",
//	    Fallback: protocol.FallbackDraftJSON,
//	})
//
// # Extension Points
//
// To add a new LLM provider:
//  1. Implement the Client interface in a subpackage
//  2. Translate provider errors to llm.Error types
//  3. Register the provider name and its credential check in the registry
//  4. Hand the constructed client to the Gateway
package llm
