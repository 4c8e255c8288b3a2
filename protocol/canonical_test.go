package protocol

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCanonicalizeExactForm(t *testing.T) {
	doc := Document{
		"sources": []any{"arxiv", "pubmed"},
		"screening": map[string]any{
			"years":     []any{2020, 2025},
			"languages": []any{"en", "fr"},
		},
		"keywords": map[string]any{
			"include": []any{"AI", "ML"},
			"exclude": []any{"robotics"},
		},
	}

	got, err := Canonicalize(doc)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := `{"keywords":{"exclude":["robotics"],"include":["AI","ML"]},` +
		`"screening":{"languages":["en","fr"],"years":[2020,2025]},` +
		`"sources":["arxiv","pubmed"]}`
	if got != want {
		t.Errorf("Canonical form mismatch:\n got  %s\n want %s", got, want)
	}
}

func TestCanonicalizeStableOrdering(t *testing.T) {
	a := Document{"b": 2, "a": 1, "c": map[string]any{"y": 1, "x": 2}}
	b := Document{"c": map[string]any{"x": 2, "y": 1}, "b": 2, "a": 1}

	sa, err := Canonicalize(a)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	sb, err := Canonicalize(b)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if sa != sb {
		t.Errorf("Equal documents canonicalized differently:\n %s\n %s", sa, sb)
	}
}

func TestCanonicalizeNonASCIIVerbatim(t *testing.T) {
	got, err := Canonicalize(Document{"title": "détection des maladies", "note": "甲"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if strings.Contains(got, `\u`) {
		t.Errorf("Expected raw UTF-8, got escapes: %s", got)
	}
	if !strings.Contains(got, "détection") || !strings.Contains(got, "甲") {
		t.Errorf("Expected non-ASCII verbatim, got %s", got)
	}
}

func TestCanonicalizeNoHTMLEscaping(t *testing.T) {
	got, err := Canonicalize(Document{"q": "a<b & c>d"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := `{"q":"a<b & c>d"}`
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestCanonicalizeTypedStructMatchesDocument(t *testing.T) {
	typed := &Protocol{
		ResearchQuestions: []string{"How does X affect Y?"},
		Keywords:          Keywords{Include: []string{"AI"}, Exclude: []string{"robotics"}},
		Screening: Screening{
			InclusionCriteria: []string{"Has ML method"},
			ExclusionCriteria: []string{"Review paper"},
			Years:             [2]int{2020, 2025},
			Languages:         []string{"en"},
			DocTypes:          []string{"journal"},
		},
		Sources: []string{"arxiv"},
	}

	data, err := json.Marshal(typed)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	fromTyped, err := Canonicalize(typed)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	fromDoc, err := Canonicalize(doc)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if fromTyped != fromDoc {
		t.Errorf("Typed and decoded forms hash differently:\n %s\n %s", fromTyped, fromDoc)
	}
}

func TestSHA256Hex(t *testing.T) {
	// Well-known digest of the empty string.
	if got := SHA256Hex(""); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("Unexpected digest %s", got)
	}
}

func TestHashKeyOrderIndependent(t *testing.T) {
	h1, err := Hash(Document{"a": 1, "b": []any{"x", "y"}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	h2, err := Hash(Document{"b": []any{"x", "y"}, "a": 1})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if h1 != h2 {
		t.Errorf("Hashes differ for equal documents: %s vs %s", h1, h2)
	}

	h3, err := Hash(Document{"b": []any{"y", "x"}, "a": 1})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if h1 == h3 {
		t.Error("Array order is significant and must change the hash")
	}
}
