package gemini

import (
	"errors"
	"testing"

	"github.com/mbsoft31/protocol-wizard/llm"
)

func TestExtractTextFromCandidates(t *testing.T) {
	body := []byte(`{
		"candidates": [
			{"content": {"parts": [{"text": "hello "}, {"text": "world"}]}, "finishReason": "STOP"}
		],
		"usageMetadata": {"promptTokenCount": 10, "candidatesTokenCount": 5, "totalTokenCount": 15}
	}`)

	text, tokens, err := ExtractText(body)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if text != "hello world" {
		t.Errorf("Expected concatenated parts, got %q", text)
	}
	if tokens == nil || *tokens != 15 {
		t.Errorf("Expected 15 tokens, got %v", tokens)
	}
}

func TestExtractTextTopLevelField(t *testing.T) {
	body := []byte(`{"text": "direct answer"}`)

	text, tokens, err := ExtractText(body)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if text != "direct answer" {
		t.Errorf("Expected top-level text, got %q", text)
	}
	if tokens != nil {
		t.Errorf("Expected nil tokens without usage metadata, got %v", tokens)
	}
}

func TestExtractTextPrefersDirectField(t *testing.T) {
	body := []byte(`{
		"text": "preferred",
		"candidates": [{"content": {"parts": [{"text": "ignored"}]}}]
	}`)

	text, _, err := ExtractText(body)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if text != "preferred" {
		t.Errorf("Expected the direct text field to win, got %q", text)
	}
}

func TestExtractTextEmptyResponse(t *testing.T) {
	cases := [][]byte{
		[]byte(`{}`),
		[]byte(`{"candidates": []}`),
		[]byte(`{"candidates": [{"content": {"parts": []}}]}`),
		[]byte(`not json`),
	}

	for i, body := range cases {
		_, _, err := ExtractText(body)
		if err == nil {
			t.Errorf("case %d: expected error for unusable body", i)
			continue
		}
		var llmErr *llm.Error
		if !errors.As(err, &llmErr) || llmErr.Type != llm.ErrorTypeExtraction {
			t.Errorf("case %d: expected extraction error, got %v", i, err)
		}
		if !llm.IsRetryableError(err) {
			t.Errorf("case %d: extraction errors should be retryable", i)
		}
	}
}
