package llm

import (
	"strings"
	"sync"
)

const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// ProviderConfig holds the configuration needed for provider resolution.
// This avoids import cycles by not importing the config package.
type ProviderConfig struct {
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	OpenAIOrg     string

	GeminiAPIKey   string
	GeminiEndpoint string
	GeminiModel    string

	AnthropicAPIKey string
	AnthropicModel  string

	OllamaHost  string
	OllamaModel string
}

// ProviderRegistry manages LLM provider selection and credential checks.
// Client creation and caching is handled by the caller to avoid import cycles.
type ProviderRegistry struct {
	enabledProviders map[string]bool
	mu               sync.RWMutex
	config           *ProviderConfig
}

// NewProviderRegistry creates a new ProviderRegistry with the given config
// and enabled providers.
func NewProviderRegistry(providerConfig *ProviderConfig, enabledProviders []string) *ProviderRegistry {
	enabledMap := make(map[string]bool)
	for _, p := range enabledProviders {
		enabledMap[strings.ToLower(p)] = true
	}

	return &ProviderRegistry{
		enabledProviders: enabledMap,
		config:           providerConfig,
	}
}

// ParseModel splits a "provider:model_name" identifier into its parts.
// "google" is an alias for the Gemini provider; a bare model name defaults to
// OpenAI for backward compatibility. An unknown provider is caller misuse and
// yields a non-retryable input error.
func ParseModel(model string) (provider, name string, err error) {
	if strings.TrimSpace(model) == "" {
		return "", "", NewInputError("model identifier is required")
	}

	provider = ProviderOpenAI
	name = model
	if idx := strings.Index(model, ":"); idx >= 0 {
		provider = strings.ToLower(model[:idx])
		name = model[idx+1:]
	}

	if provider == "google" {
		provider = ProviderGemini
	}

	switch provider {
	case ProviderOpenAI, ProviderGemini, ProviderAnthropic, ProviderOllama:
	default:
		return "", "", NewInputError("unsupported provider %q in model %q", provider, model)
	}

	if strings.TrimSpace(name) == "" {
		return "", "", NewInputError("model name is required in %q", model)
	}

	return provider, name, nil
}

// Providers returns the canonical list of supported provider names.
func Providers() []string {
	return []string{ProviderOpenAI, ProviderGemini, ProviderAnthropic, ProviderOllama}
}

// IsProviderEnabled checks if a provider is in the enabled providers list.
func (r *ProviderRegistry) IsProviderEnabled(provider string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabledProviders[provider]
}

// EnabledProviders returns the enabled provider names.
func (r *ProviderRegistry) EnabledProviders() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]string, 0, len(r.enabledProviders))
	for p := range r.enabledProviders {
		providers = append(providers, p)
	}
	return providers
}

// IsProviderConfigured checks if a provider has the required credentials.
func (r *ProviderRegistry) IsProviderConfigured(provider string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isProviderConfiguredUnlocked(provider)
}

// DefaultModel returns the provider-local default model name used for health
// probes and requests that omit a model.
func (r *ProviderRegistry) DefaultModel(provider string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	switch provider {
	case ProviderOpenAI:
		if r.config.OpenAIModel != "" {
			return r.config.OpenAIModel
		}
		return "gpt-4o-mini"
	case ProviderGemini:
		if r.config.GeminiModel != "" {
			return r.config.GeminiModel
		}
		return "gemini-1.5-flash"
	case ProviderAnthropic:
		if r.config.AnthropicModel != "" {
			return r.config.AnthropicModel
		}
		return "claude-haiku-4-5"
	case ProviderOllama:
		return r.config.OllamaModel
	default:
		return ""
	}
}

// isProviderConfiguredUnlocked is the unlocked version of IsProviderConfigured.
// Must be called with r.mu already locked.
func (r *ProviderRegistry) isProviderConfiguredUnlocked(provider string) bool {
	// Environment variables are resolved into ProviderConfig once at startup
	// by the config package; nothing ambient is read here.
	switch provider {
	case ProviderOpenAI:
		return r.config.OpenAIAPIKey != ""
	case ProviderGemini:
		return r.config.GeminiAPIKey != ""
	case ProviderAnthropic:
		return r.config.AnthropicAPIKey != ""
	case ProviderOllama:
		// Ollama doesn't require an API key, just a host (which has a default),
		// but it does need a model to send requests to.
		return r.config.OllamaModel != ""
	default:
		return false
	}
}
