// Package config loads protocol wizard configuration from a YAML file with
// environment variable overrides. Environment is read exactly once, at load
// time; the rest of the program sees only the resolved Config.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/mbsoft31/protocol-wizard/llm"
)

// LLMConfig holds retry and timeout settings for LLM calls.
type LLMConfig struct {
	MaxRetries       int     `yaml:"max_retries,omitempty"`
	TimeoutSeconds   int     `yaml:"timeout_seconds,omitempty"`
	BaseDelaySeconds float64 `yaml:"base_delay_seconds,omitempty"`
	MaxDelaySeconds  float64 `yaml:"max_delay_seconds,omitempty"`
	Temperature      float64 `yaml:"temperature,omitempty"`
}

// OpenAIConfig represents configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey       string `yaml:"api_key,omitempty"`
	BaseURL      string `yaml:"base_url,omitempty"`     // Custom base URL (default: official API)
	Model        string `yaml:"model,omitempty"`        // Default model name
	Organization string `yaml:"organization,omitempty"` // Organization ID
}

// GeminiConfig represents configuration for the Google Gemini provider.
type GeminiConfig struct {
	APIKey   string `yaml:"api_key,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"` // Custom endpoint (default: generative language API)
	Model    string `yaml:"model,omitempty"`
}

// AnthropicConfig represents configuration for the Anthropic provider.
type AnthropicConfig struct {
	APIKey string `yaml:"api_key,omitempty"`
	Model  string `yaml:"model,omitempty"`
}

// OllamaConfig represents configuration for the Ollama provider.
type OllamaConfig struct {
	Host  string `yaml:"host,omitempty"` // Ollama host (default: "http://localhost:11434")
	Model string `yaml:"model,omitempty"`
}

// Config is the full protocol wizard configuration.
type Config struct {
	// Default model in "provider:model" form, used when a request names none.
	DefaultModel string `yaml:"default_model,omitempty"`

	// Directory whose files override embedded prompt templates.
	PromptsDir string `yaml:"prompts_dir,omitempty"`

	// Providers that may be routed to. Defaults to all supported providers.
	Providers []string `yaml:"providers,omitempty"`

	LLM LLMConfig `yaml:"llm,omitempty"`

	OpenAI    OpenAIConfig    `yaml:"openai,omitempty"`
	Gemini    GeminiConfig    `yaml:"gemini,omitempty"`
	Anthropic AnthropicConfig `yaml:"anthropic,omitempty"`
	Ollama    OllamaConfig    `yaml:"ollama,omitempty"`
}

// GetConfigPath returns the default config file path.
// Can be overridden via PROTOWIZARD_CONFIG_PATH environment variable.
func GetConfigPath() string {
	if envPath := os.Getenv("PROTOWIZARD_CONFIG_PATH"); envPath != "" {
		return expandPath(envPath)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./.protowizard/config.yaml"
	}
	return filepath.Join(homeDir, ".protowizard", "config.yaml")
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[2:])
	}
	return path
}

// Load reads configuration from the YAML file at path, layered on defaults,
// with environment variables taking final precedence. A missing file is not
// an error; defaults plus environment apply.
func Load(path string) (*Config, error) {
	defaults := Config{
		DefaultModel: "gemini:gemini-1.5-flash",
		Providers:    llm.Providers(),
		LLM: LLMConfig{
			MaxRetries:       3,
			TimeoutSeconds:   60,
			BaseDelaySeconds: 1.0,
			MaxDelaySeconds:  10.0,
			Temperature:      0.0,
		},
		OpenAI: OpenAIConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-1.5-flash",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-haiku-4-5",
		},
		Ollama: OllamaConfig{
			Host:  "http://localhost:11434",
			Model: "llama3.2:3b",
		},
	}

	expandedPath := expandPath(path)
	if _, err := os.Stat(expandedPath); err == nil {
		configYAML, err := os.ReadFile(expandedPath) //#nosec 304 -- intentional file read for config
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", expandedPath, err)
		}

		var fileConfig Config
		if err := yaml.Unmarshal(configYAML, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %q: %w", expandedPath, err)
		}

		// Merge file config onto defaults
		if err := mergo.Merge(&defaults, fileConfig, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge config: %w", err)
		}
	}

	applyEnvOverrides(&defaults)
	return &defaults, nil
}

// applyEnvOverrides is the single place environment variables are consulted.
func applyEnvOverrides(cfg *Config) {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, key string) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setFloat := func(dst *float64, key string) {
		if v := os.Getenv(key); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = f
			}
		}
	}

	setString(&cfg.DefaultModel, "DEFAULT_MODEL")
	setString(&cfg.PromptsDir, "PROMPTS_DIR")

	setInt(&cfg.LLM.MaxRetries, "LLM_MAX_RETRIES")
	setInt(&cfg.LLM.TimeoutSeconds, "LLM_TIMEOUT_SECONDS")
	setFloat(&cfg.LLM.BaseDelaySeconds, "LLM_BASE_DELAY")
	setFloat(&cfg.LLM.MaxDelaySeconds, "LLM_MAX_DELAY")
	setFloat(&cfg.LLM.Temperature, "LLM_TEMPERATURE")

	setString(&cfg.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&cfg.OpenAI.BaseURL, "OPENAI_BASE_URL")
	setString(&cfg.Gemini.APIKey, "GOOGLE_API_KEY")
	setString(&cfg.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	setString(&cfg.Ollama.Host, "OLLAMA_HOST")
	setString(&cfg.Ollama.Model, "OLLAMA_MODEL")
}

// LLMDefaults converts the retry settings into the llm package's Config.
func (c *Config) LLMDefaults() llm.Config {
	return llm.Config{
		MaxRetries:  c.LLM.MaxRetries,
		Timeout:     time.Duration(c.LLM.TimeoutSeconds) * time.Second,
		BaseDelay:   time.Duration(c.LLM.BaseDelaySeconds * float64(time.Second)),
		MaxDelay:    time.Duration(c.LLM.MaxDelaySeconds * float64(time.Second)),
		Temperature: c.LLM.Temperature,
	}
}

// ProviderConfig converts the provider sections into the llm registry's
// credential view.
func (c *Config) ProviderConfig() llm.ProviderConfig {
	return llm.ProviderConfig{
		OpenAIAPIKey:    c.OpenAI.APIKey,
		OpenAIBaseURL:   c.OpenAI.BaseURL,
		OpenAIModel:     c.OpenAI.Model,
		OpenAIOrg:       c.OpenAI.Organization,
		GeminiAPIKey:    c.Gemini.APIKey,
		GeminiEndpoint:  c.Gemini.Endpoint,
		GeminiModel:     c.Gemini.Model,
		AnthropicAPIKey: c.Anthropic.APIKey,
		AnthropicModel:  c.Anthropic.Model,
		OllamaHost:      c.Ollama.Host,
		OllamaModel:     c.Ollama.Model,
	}
}
