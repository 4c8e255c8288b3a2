package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mbsoft31/protocol-wizard/llm"
)

const defaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"

// Gemini rate limit responses carry retry info in the body, not a header we
// can rely on, so rate limits back off for a fixed window.
const defaultRetryAfter = 60 * time.Second

// Client implements the llm.Client interface against Google's Gemini
// generateContent API. Google does not publish an official Go SDK client we
// depend on, so requests go over plain HTTP.
type Client struct {
	apiKey     string
	endpoint   string
	model      string
	httpClient *http.Client
}

// NewClient creates a new Client. If endpoint is empty the public
// generative language API endpoint is used.
func NewClient(apiKey, endpoint, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Client{
		apiKey:   apiKey,
		endpoint: endpoint,
		model:    model,
		// Per-call deadlines come from the caller's context.
		httpClient: &http.Client{},
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

	body := map[string]any{
		"contents": []map[string]any{
			{
				"parts": []map[string]any{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]any{
			"temperature": temperature,
		},
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.endpoint, model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, llm.NewProviderError("Gemini request failed", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, llm.NewProviderError("failed to read Gemini response", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, parseGeminiError(httpResp.StatusCode, respBody)
	}

	text, tokens, err := ExtractText(respBody)
	if err != nil {
		return nil, err
	}

	return &llm.Completion{
		Text:       text,
		TokensUsed: tokens,
	}, nil
}

// parseGeminiError converts Gemini error responses to llm.Error types.
// Gemini wraps errors in a {"error": {...}} envelope.
func parseGeminiError(statusCode int, body []byte) error {
	var errResp struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}

	message := string(body)
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	}

	switch statusCode {
	case http.StatusTooManyRequests:
		retryAfter := defaultRetryAfter
		return llm.NewRateLimitError(
			fmt.Sprintf("Gemini rate limit: %s", message),
			&retryAfter,
			nil,
		)
	case http.StatusBadRequest:
		return llm.NewInvalidRequestError(
			fmt.Sprintf("Gemini invalid request: %s", message),
			statusCode,
			nil,
		)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return &llm.Error{
			Type:       llm.ErrorTypeProvider,
			Message:    fmt.Sprintf("Gemini server error: %s", message),
			Retryable:  true,
			StatusCode: statusCode,
		}
	default:
		return &llm.Error{
			Type:       llm.ErrorTypeProvider,
			Message:    fmt.Sprintf("Gemini API error: %s", message),
			Retryable:  false,
			StatusCode: statusCode,
		}
	}
}
