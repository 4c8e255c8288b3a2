package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Gateway routes generation requests to a provider client, applies the retry
// executor, and converts provider failures into deterministic fallback
// responses. It never returns an error for provider-side failures; only
// caller misuse (empty prompt, malformed model identifier) is surfaced as an
// error.
//
// A Gateway holds only read-only configuration and stateless collaborators,
// so concurrent calls need no synchronization.
type Gateway struct {
	registry *ProviderRegistry
	clients  map[string]Client
	executor *Executor
	defaults Config
	logger   zerolog.Logger
}

// NewGateway creates a Gateway. The clients map is keyed by provider name
// (ProviderOpenAI etc.); providers without a client entry behave as
// unconfigured. Client construction happens in the caller to avoid import
// cycles between this package and the provider subpackages.
func NewGateway(registry *ProviderRegistry, clients map[string]Client, defaults Config, logger zerolog.Logger) *Gateway {
	return &Gateway{
		registry: registry,
		clients:  clients,
		executor: NewExecutor(logger),
		defaults: defaults,
		logger:   logger.With().Str("component", "llmGateway").Logger(),
	}
}

// Generate runs a single generation request. On success the response carries
// the extracted content; after a configuration gap or retry exhaustion it
// carries the request's fallback payload with FromFallback set and the
// diagnostic fields (attempts, error) preserved.
func (g *Gateway) Generate(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, NewInputError("request is required")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, NewInputError("prompt is required")
	}

	provider, model, err := ParseModel(req.Model)
	if err != nil {
		return nil, err
	}

	cfg := g.defaults
	if req.Config != nil {
		cfg = *req.Config
	}

	if !g.registry.IsProviderConfigured(provider) {
		// Static configuration gap, not a transient fault: skip straight to
		// the fallback without touching the network.
		cfgErr := NewConfigurationError(fmt.Sprintf("no credential configured for provider %q", provider))
		g.logger.Warn().Str("provider", provider).Str("model", model).Msg("Provider not configured, returning fallback")
		return g.fallbackResponse(req, provider, model, 0, 0, cfgErr), nil
	}

	client, ok := g.clients[provider]
	if !ok {
		cfgErr := NewConfigurationError(fmt.Sprintf("no client wired for provider %q", provider))
		g.logger.Warn().Str("provider", provider).Msg("Provider has no client, returning fallback")
		return g.fallbackResponse(req, provider, model, 0, 0, cfgErr), nil
	}

	outcome := g.executor.Do(ctx, PolicyFromConfig(cfg), func(ctx context.Context) (*Completion, error) {
		return client.Complete(ctx, req.Prompt, model, cfg.Temperature)
	})

	if outcome.Err != nil {
		g.logger.Error().
			Err(outcome.Err).
			Str("provider", provider).
			Str("model", model).
			Int("attempts", outcome.Attempts).
			Int64("latency_ms", outcome.LatencyMS).
			Msg("LLM call failed after all attempts")
		return g.fallbackResponse(req, provider, model, outcome.Attempts, outcome.LatencyMS, outcome.Err), nil
	}

	g.logger.Info().
		Str("provider", provider).
		Str("model", model).
		Int("attempts", outcome.Attempts).
		Int64("latency_ms", outcome.LatencyMS).
		Msg("LLM call succeeded")

	return &Response{
		Content:    outcome.Completion.Text,
		Success:    true,
		Provider:   provider,
		Model:      model,
		LatencyMS:  outcome.LatencyMS,
		Attempts:   outcome.Attempts,
		TokensUsed: outcome.Completion.TokensUsed,
	}, nil
}

// CheckProviderHealth probes each configured provider with a single-attempt
// test prompt and reports availability. Providers without a credential or a
// wired client are omitted.
func (g *Gateway) CheckProviderHealth(ctx context.Context) map[string]bool {
	probeCfg := g.defaults
	probeCfg.MaxRetries = 1

	configured := lo.Filter(Providers(), func(provider string, _ int) bool {
		_, ok := g.clients[provider]
		return ok && g.registry.IsProviderConfigured(provider)
	})

	return lo.SliceToMap(configured, func(provider string) (string, bool) {
		model := g.registry.DefaultModel(provider)
		resp, err := g.Generate(ctx, &Request{
			Prompt: "test",
			Model:  provider + ":" + model,
			Config: &probeCfg,
		})
		return provider, err == nil && resp.Success
	})
}

// fallbackResponse builds the degraded response returned when no provider
// call succeeded. Diagnostics from the underlying attempt survive alongside
// the deterministic payload.
func (g *Gateway) fallbackResponse(req *Request, provider, model string, attempts int, latencyMS int64, err error) *Response {
	return &Response{
		Content:      req.Fallback,
		Success:      false,
		Provider:     provider,
		Model:        model,
		LatencyMS:    latencyMS,
		Attempts:     attempts,
		Error:        err.Error(),
		FromFallback: true,
	}
}
