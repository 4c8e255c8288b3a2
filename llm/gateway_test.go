package llm

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// fakeClient scripts Complete results for gateway tests.
type fakeClient struct {
	calls   int
	failFor int // fail this many calls before succeeding
	err     error
	text    string
}

func (f *fakeClient) Complete(ctx context.Context, prompt, model string, temperature float64) (*Completion, error) {
	f.calls++
	if f.calls <= f.failFor {
		err := f.err
		if err == nil {
			err = NewProviderError("scripted failure", nil)
		}
		return nil, err
	}
	return &Completion{Text: f.text}, nil
}

func testGateway(clients map[string]Client, providerCfg *ProviderConfig) *Gateway {
	defaults := Config{
		MaxRetries: 3,
		Timeout:    time.Second,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
	}
	registry := NewProviderRegistry(providerCfg, Providers())
	return NewGateway(registry, clients, defaults, zerolog.Nop())
}

func TestGenerateSuccess(t *testing.T) {
	client := &fakeClient{text: `{"ok":true}`}
	gw := testGateway(map[string]Client{ProviderOpenAI: client}, &ProviderConfig{OpenAIAPIKey: "sk-test"})

	resp, err := gw.Generate(context.Background(), &Request{
		Prompt: "draft a protocol",
		Model:  "openai:gpt-4o-mini",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !resp.Success {
		t.Error("Expected success")
	}
	if resp.FromFallback {
		t.Error("Expected a real response, not fallback")
	}
	if resp.Content != `{"ok":true}` {
		t.Errorf("Unexpected content %q", resp.Content)
	}
	if resp.Provider != ProviderOpenAI || resp.Model != "gpt-4o-mini" {
		t.Errorf("Unexpected provider/model %s/%s", resp.Provider, resp.Model)
	}
	if resp.Attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", resp.Attempts)
	}
}

func TestGenerateRecoversWithinRetryBudget(t *testing.T) {
	client := &fakeClient{text: "recovered", failFor: 2}
	gw := testGateway(map[string]Client{ProviderOpenAI: client}, &ProviderConfig{OpenAIAPIKey: "sk-test"})

	resp, err := gw.Generate(context.Background(), &Request{
		Prompt: "draft a protocol",
		Model:  "openai:gpt-4o-mini",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !resp.Success {
		t.Fatalf("Expected success after retries, got error %q", resp.Error)
	}
	if resp.Attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", resp.Attempts)
	}
}

func TestGenerateFallbackAfterExhaustion(t *testing.T) {
	client := &fakeClient{failFor: 100}
	gw := testGateway(map[string]Client{ProviderOpenAI: client}, &ProviderConfig{OpenAIAPIKey: "sk-test"})

	resp, err := gw.Generate(context.Background(), &Request{
		Prompt:   "draft a protocol",
		Model:    "openai:gpt-4o-mini",
		Fallback: `{"fallback":true}`,
	})
	if err != nil {
		t.Fatalf("Provider failure should not be an error: %v", err)
	}

	if resp.Success {
		t.Error("Expected failure after exhaustion")
	}
	if !resp.FromFallback {
		t.Error("Expected fallback response")
	}
	if resp.Content != `{"fallback":true}` {
		t.Errorf("Expected fallback payload, got %q", resp.Content)
	}
	if resp.Attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", resp.Attempts)
	}
	if resp.Error == "" {
		t.Error("Expected diagnostics in Error field")
	}
	if client.calls != 3 {
		t.Errorf("Expected 3 client calls, got %d", client.calls)
	}
}

func TestGenerateMissingCredentialSkipsNetwork(t *testing.T) {
	client := &fakeClient{text: "should not be called"}
	gw := testGateway(map[string]Client{ProviderGemini: client}, &ProviderConfig{})

	resp, err := gw.Generate(context.Background(), &Request{
		Prompt:   "draft a protocol",
		Model:    "gemini:gemini-1.5-flash",
		Fallback: "canned",
	})
	if err != nil {
		t.Fatalf("Missing credential should degrade, not error: %v", err)
	}

	if client.calls != 0 {
		t.Errorf("Expected no provider calls, got %d", client.calls)
	}
	if !resp.FromFallback || resp.Content != "canned" {
		t.Errorf("Expected fallback response, got %+v", resp)
	}
	if resp.Attempts != 0 {
		t.Errorf("Expected 0 attempts, got %d", resp.Attempts)
	}
	if !strings.Contains(resp.Error, "credential") {
		t.Errorf("Expected a credential diagnostic, got %q", resp.Error)
	}
}

func TestGenerateInputErrors(t *testing.T) {
	gw := testGateway(map[string]Client{}, &ProviderConfig{})

	cases := []*Request{
		nil,
		{Prompt: "", Model: "openai:gpt-4o-mini"},
		{Prompt: "   ", Model: "openai:gpt-4o-mini"},
		{Prompt: "hello", Model: "mystery:model"},
	}
	for i, req := range cases {
		resp, err := gw.Generate(context.Background(), req)
		if err == nil {
			t.Errorf("case %d: expected input error, got response %+v", i, resp)
			continue
		}
		if !IsInputError(err) {
			t.Errorf("case %d: expected input error, got %v", i, err)
		}
	}
}

func TestGenerateStopsEarlyOnInvalidRequest(t *testing.T) {
	client := &fakeClient{failFor: 100, err: NewInvalidRequestError("model not found", 400, nil)}
	gw := testGateway(map[string]Client{ProviderOpenAI: client}, &ProviderConfig{OpenAIAPIKey: "sk-test"})

	resp, err := gw.Generate(context.Background(), &Request{
		Prompt:   "draft a protocol",
		Model:    "openai:nope",
		Fallback: "canned",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if client.calls != 1 {
		t.Errorf("Expected a single attempt for a 400, got %d", client.calls)
	}
	if !resp.FromFallback {
		t.Error("Expected fallback response")
	}
}

func TestCheckProviderHealth(t *testing.T) {
	healthy := &fakeClient{text: "ok"}
	broken := &fakeClient{failFor: 100}
	gw := testGateway(
		map[string]Client{ProviderOpenAI: healthy, ProviderGemini: broken},
		&ProviderConfig{OpenAIAPIKey: "sk-test", GeminiAPIKey: "g-test"},
	)

	health := gw.CheckProviderHealth(context.Background())

	if len(health) != 2 {
		t.Fatalf("Expected 2 configured providers, got %v", health)
	}
	if !health[ProviderOpenAI] {
		t.Error("Expected openai healthy")
	}
	if health[ProviderGemini] {
		t.Error("Expected gemini unhealthy")
	}
	if broken.calls != 1 {
		t.Errorf("Health probe should make a single attempt, got %d", broken.calls)
	}
}
