package gemini

import (
	"encoding/json"
	"strings"

	"github.com/mbsoft31/protocol-wizard/llm"
)

// generateContentResponse mirrors the subset of the generateContent reply we
// consume. Gemini has shipped both a candidates envelope and, on some
// endpoints, a bare top-level text field, so extraction tries both shapes.
type generateContentResponse struct {
	Text       string `json:"text"`
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int64 `json:"promptTokenCount"`
		CandidatesTokenCount int64 `json:"candidatesTokenCount"`
		TotalTokenCount      int64 `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// ExtractText pulls the generated text out of a generateContent response
// body. It tries a direct top-level text field first, then the
// candidates/content/parts path, concatenating all parts of the first
// candidate. A response with neither yields a retryable extraction error,
// since empty replies from Gemini are usually transient.
func ExtractText(body []byte) (string, *int64, error) {
	var resp generateContentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", nil, llm.NewExtractionError("failed to parse Gemini response: " + err.Error())
	}

	var tokens *int64
	if resp.UsageMetadata.TotalTokenCount > 0 {
		total := resp.UsageMetadata.TotalTokenCount
		tokens = &total
	}

	if resp.Text != "" {
		return resp.Text, tokens, nil
	}

	if len(resp.Candidates) > 0 {
		var sb strings.Builder
		for _, part := range resp.Candidates[0].Content.Parts {
			sb.WriteString(part.Text)
		}
		if text := sb.String(); text != "" {
			return text, tokens, nil
		}
	}

	return "", nil, llm.NewExtractionError("no text in Gemini response")
}
