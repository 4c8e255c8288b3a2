package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/mbsoft31/protocol-wizard/llm"
)

// Protocol drafts and query lists fit comfortably under this ceiling.
const defaultMaxTokens = 4096

const defaultRetryAfter = 60 * time.Second

// Client implements the llm.Client interface for Anthropic's messages API.
type Client struct {
	client *anthropic.Client
	model  string
}

// NewClient creates a new Client with the given API key.
func NewClient(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Client{
		client: &client,
		model:  model,
	}, nil
}

// Complete implements llm.Client.Complete.
func (c *Client) Complete(ctx context.Context, prompt, model string, temperature float64) (*llm.Completion, error) {
	if model == "" {
		model = c.model
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: defaultMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Temperature: anthropic.Float(temperature),
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, convertAnthropicError(err)
	}

	var sb strings.Builder
	for _, blockUnion := range message.Content {
		if block, ok := blockUnion.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(block.Text)
		}
	}
	text := sb.String()
	if text == "" {
		return nil, llm.NewExtractionError("no text blocks in Anthropic response")
	}

	tokens := message.Usage.InputTokens + message.Usage.OutputTokens

	return &llm.Completion{
		Text:       text,
		TokensUsed: &tokens,
	}, nil
}

// convertAnthropicError converts Anthropic SDK errors to llm.Error types.
func convertAnthropicError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return llm.NewProviderError("Anthropic API error", err)
	}

	switch apiErr.StatusCode {
	case http.StatusTooManyRequests:
		retryAfter := defaultRetryAfter
		return llm.NewRateLimitError(
			fmt.Sprintf("Anthropic rate limit: %s", apiErr.Error()),
			&retryAfter,
			err,
		)
	case http.StatusBadRequest:
		return llm.NewInvalidRequestError(
			fmt.Sprintf("Anthropic invalid request: %s", apiErr.Error()),
			apiErr.StatusCode,
			err,
		)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, 529:
		// 529 is Anthropic's overloaded_error
		return &llm.Error{
			Type:        llm.ErrorTypeProvider,
			Message:     fmt.Sprintf("Anthropic server error: %s", apiErr.Error()),
			Retryable:   true,
			StatusCode:  apiErr.StatusCode,
			ProviderErr: err,
		}
	default:
		return &llm.Error{
			Type:        llm.ErrorTypeProvider,
			Message:     fmt.Sprintf("Anthropic API error: %s", apiErr.Error()),
			Retryable:   false,
			StatusCode:  apiErr.StatusCode,
			ProviderErr: err,
		}
	}
}
