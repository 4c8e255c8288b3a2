package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/mbsoft31/protocol-wizard/llm"
)

// Client implements the llm.Client interface for a local or remote Ollama
// server.
type Client struct {
	client *api.Client
	model  string // Default model to use if not specified in request
}

// NewClient creates a new Client.
// If host is empty, it will use the default from environment (OLLAMA_HOST or http://localhost:11434).
func NewClient(host, model string) (*Client, error) {
	var client *api.Client
	var err error

	if host != "" {
		baseURL, err := parseHost(host)
		if err != nil {
			return nil, fmt.Errorf("invalid host: %w", err)
		}
		client = api.NewClient(baseURL, &http.Client{})
	} else {
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
	}

	return &Client{
		client: client,
		model:  model,
	}, nil
}

// parseHost parses a host string into a URL.
func parseHost(host string) (*url.URL, error) {
	// If host doesn't have a scheme, add http://
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return url.Parse(host)
}

// Complete implements llm.Client.Complete.
func (c *Client) Complete(ctx context.Context, prompt, model string, temperature float64) (*llm.Completion, error) {
	if model == "" {
		model = c.model
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	chatReq := &api.ChatRequest{
		Model: model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: prompt,
			},
		},
		Stream: new(bool), // false for non-streaming
		Options: map[string]any{
			"temperature": temperature,
		},
	}

	var chatResp api.ChatResponse
	err := c.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		chatResp = resp
		return nil
	})
	if err != nil {
		// A local server that is down or mid-load is worth retrying.
		return nil, llm.NewProviderError("ollama chat request failed", err)
	}

	if chatResp.Message.Content == "" {
		return nil, llm.NewExtractionError("empty message content in Ollama response")
	}

	var tokens *int64
	if chatResp.PromptEvalCount > 0 || chatResp.EvalCount > 0 {
		total := int64(chatResp.PromptEvalCount) + int64(chatResp.EvalCount)
		tokens = &total
	}

	return &llm.Completion{
		Text:       chatResp.Message.Content,
		TokensUsed: tokens,
	}, nil
}
