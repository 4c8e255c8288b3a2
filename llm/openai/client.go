package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mbsoft31/protocol-wizard/llm"
)

// OpenAI API errors don't directly expose retry-after headers
// We'll use a default retry after duration for rate limits
const defaultRetryAfter = 60 * time.Second

// Client implements the llm.Client interface for OpenAI's chat completion API.
type Client struct {
	client *openai.Client
	model  string // Default model to use if not specified in request
}

// NewClient creates a new Client.
// If apiKey is empty, it will return an error.
// If baseURL is empty, it will use the default OpenAI API endpoint.
func NewClient(apiKey, baseURL, model, organization string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	config := openai.DefaultConfig(apiKey)

	// Set custom base URL if provided
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	// Set organization if provided
	if organization != "" {
		config.OrgID = organization
	}

	return &Client{
		client: openai.NewClientWithConfig(config),
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

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: float32(temperature),
	}

	chatResp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, convertOpenAIError(err)
	}

	if len(chatResp.Choices) == 0 {
		return nil, llm.NewExtractionError("no choices in OpenAI response")
	}

	text := chatResp.Choices[0].Message.Content
	if text == "" {
		return nil, llm.NewExtractionError("empty message content in OpenAI response")
	}

	tokens := int64(chatResp.Usage.TotalTokens)

	return &llm.Completion{
		Text:       text,
		TokensUsed: &tokens,
	}, nil
}

// convertOpenAIError converts OpenAI API errors to llm.Error types.
func convertOpenAIError(err error) error {
	if err == nil {
		return nil
	}

	// Check if it's an OpenAI API error using errors.As
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		// Not an OpenAI API error, return as provider error
		return llm.NewProviderError("OpenAI API error", err)
	}

	// Map status codes to error types
	switch apiErr.HTTPStatusCode {
	case http.StatusTooManyRequests:
		// Rate limit error
		retryAfter := defaultRetryAfter
		return llm.NewRateLimitError(
			fmt.Sprintf("OpenAI rate limit: %s", apiErr.Message),
			&retryAfter,
			err,
		)
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		// Invalid request
		return &llm.Error{
			Type:        llm.ErrorTypeInvalidRequest,
			Message:     fmt.Sprintf("OpenAI invalid request: %s", apiErr.Message),
			Retryable:   false,
			StatusCode:  apiErr.HTTPStatusCode,
			ProviderErr: err,
		}
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		// Server errors - potentially retryable
		return &llm.Error{
			Type:        llm.ErrorTypeProvider,
			Message:     fmt.Sprintf("OpenAI server error: %s", apiErr.Message),
			Retryable:   true,
			StatusCode:  apiErr.HTTPStatusCode,
			ProviderErr: err,
		}
	default:
		// Other errors
		return &llm.Error{
			Type:        llm.ErrorTypeProvider,
			Message:     fmt.Sprintf("OpenAI API error: %s", apiErr.Message),
			Retryable:   false,
			StatusCode:  apiErr.HTTPStatusCode,
			ProviderErr: err,
		}
	}
}
