package protocol

import (
	"encoding/json"
	"strings"
	"testing"
)

func validDoc(t *testing.T) Document {
	t.Helper()
	var doc Document
	if err := json.Unmarshal([]byte(FallbackDraftJSON), &doc); err != nil {
		t.Fatalf("Failed to parse fallback draft: %v", err)
	}
	return doc
}

func TestValidateAcceptsFallbackDraft(t *testing.T) {
	result := Validate(validDoc(t))
	if !result.Valid {
		t.Errorf("Fallback draft should validate, got errors %v", result.Errors)
	}
}

func TestValidateReportsAllViolations(t *testing.T) {
	result := Validate(Document{})
	if result.Valid {
		t.Fatal("Empty document should not validate")
	}
	if len(result.Errors) < 4 {
		t.Errorf("Expected violations for every missing section, got %v", result.Errors)
	}
}

func TestValidateYears(t *testing.T) {
	doc := validDoc(t)
	screening := doc["screening"].(map[string]any)

	screening["years"] = []any{float64(2025), float64(2015)}
	result := Validate(doc)
	if result.Valid {
		t.Error("Reversed year range should not validate")
	}
	found := false
	for _, e := range result.Errors {
		if e.Path == "/screening/years" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a /screening/years violation, got %v", result.Errors)
	}

	screening["years"] = []any{float64(2015)}
	if Validate(doc).Valid {
		t.Error("Single-element years should not validate")
	}
}

func TestValidateToleratesUnknownFields(t *testing.T) {
	doc := validDoc(t)
	doc["custom_extension"] = map[string]any{"anything": true}
	if result := Validate(doc); !result.Valid {
		t.Errorf("Unknown fields must pass through, got errors %v", result.Errors)
	}
}

func TestValidateSubjectText(t *testing.T) {
	if err := ValidateSubjectText("plant disease detection in the field"); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if err := ValidateSubjectText(""); err == nil {
		t.Error("Empty subject should be rejected")
	}
	if err := ValidateSubjectText("   \n\t"); err == nil {
		t.Error("Whitespace-only subject should be rejected")
	}
	if err := ValidateSubjectText(strings.Repeat("x", MaxSubjectTextLength+1)); err == nil {
		t.Error("Oversized subject should be rejected")
	}
	if err := ValidateSubjectText("nice topic <script>alert(1)</script>"); err == nil {
		t.Error("Markup injection should be rejected")
	}
}

func TestValidateQueryReadiness(t *testing.T) {
	proto := &Protocol{
		Keywords: Keywords{Include: []string{"AI"}},
		Sources:  []string{"arxiv", "PubMed"},
	}
	if err := ValidateQueryReadiness(proto); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}

	if err := ValidateQueryReadiness(nil); err == nil {
		t.Error("Nil protocol should be rejected")
	}

	noKeywords := &Protocol{Sources: []string{"arxiv"}}
	if err := ValidateQueryReadiness(noKeywords); err == nil {
		t.Error("Protocol without inclusion keywords should be rejected")
	}

	badSource := &Protocol{
		Keywords: Keywords{Include: []string{"AI"}},
		Sources:  []string{"arxiv", "geocities"},
	}
	err := ValidateQueryReadiness(badSource)
	if err == nil {
		t.Fatal("Unknown source should be rejected")
	}
	if !strings.Contains(err.Error(), "geocities") {
		t.Errorf("Error should name the offending source, got %v", err)
	}
}
