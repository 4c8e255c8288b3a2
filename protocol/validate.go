package protocol

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// ValidationError is one schema violation, located by a JSON-pointer-ish
// path.
type ValidationError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationResult is the outcome of validating a document. Valid is true
// exactly when Errors is empty.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors"`
}

// MaxSubjectTextLength bounds the subject description accepted by draft
// operations.
const MaxSubjectTextLength = 10000

// Sources the downstream harvesting stage knows how to fetch from.
var knownSources = []string{
	"openalex", "crossref", "pubmed", "arxiv",
	"scopus", "web_of_science", "ieee", "acm",
}

// Validate checks a protocol document against the expected structure and
// reports every violation rather than stopping at the first. It never
// rejects unknown fields; extra keys pass through freezing and hashing.
func Validate(doc Document) *ValidationResult {
	var errs []ValidationError
	add := func(path, format string, args ...any) {
		errs = append(errs, ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if v, ok := doc["research_questions"]; !ok {
		add("/research_questions", "required field missing")
	} else if qs := asSlice(v); qs == nil {
		add("/research_questions", "must be an array of strings")
	} else if len(qs) == 0 {
		add("/research_questions", "must not be empty")
	}

	kw, ok := doc["keywords"].(map[string]any)
	if !ok {
		add("/keywords", "required object missing")
	} else {
		if asSlice(kw["include"]) == nil {
			add("/keywords/include", "must be an array of strings")
		}
		if asSlice(kw["exclude"]) == nil {
			add("/keywords/exclude", "must be an array of strings")
		}
	}

	scr, ok := doc["screening"].(map[string]any)
	if !ok {
		add("/screening", "required object missing")
	} else {
		for _, field := range []string{"inclusion_criteria", "exclusion_criteria", "languages", "doc_types"} {
			if asSlice(scr[field]) == nil {
				add("/screening/"+field, "must be an array of strings")
			}
		}
		if years := asSlice(scr["years"]); len(years) != 2 {
			add("/screening/years", "must be a [from, to] pair")
		} else {
			from, okFrom := asInt(years[0])
			to, okTo := asInt(years[1])
			if !okFrom || !okTo {
				add("/screening/years", "must contain integers")
			} else if from > to {
				add("/screening/years", "from year %d is after to year %d", from, to)
			}
		}
	}

	if srcs := asSlice(doc["sources"]); srcs == nil {
		add("/sources", "must be an array of strings")
	} else if len(srcs) == 0 {
		add("/sources", "must not be empty")
	}

	return &ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// ValidateSubjectText checks a subject description before it is embedded in
// a prompt. Rejects empty input, oversized input, and markup that has no
// business in a research topic description.
func ValidateSubjectText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("subject text cannot be empty")
	}
	if len(text) > MaxSubjectTextLength {
		return fmt.Errorf("subject text too long, maximum %d characters", MaxSubjectTextLength)
	}

	lower := strings.ToLower(text)
	for _, pattern := range []string{"<?php", "<script", "javascript:", "data:text/html"} {
		if strings.Contains(lower, pattern) {
			return fmt.Errorf("subject text contains potentially malicious content")
		}
	}
	return nil
}

// ValidateQueryReadiness checks that a protocol has enough substance to
// derive search queries from: inclusion keywords and recognized sources.
func ValidateQueryReadiness(p *Protocol) error {
	if p == nil {
		return fmt.Errorf("protocol is required")
	}
	if len(p.Keywords.Include) == 0 {
		return fmt.Errorf("protocol must have at least one inclusion keyword")
	}
	if len(p.Sources) == 0 {
		return fmt.Errorf("protocol must name at least one source")
	}

	invalid := lo.Filter(p.Sources, func(s string, _ int) bool {
		return !lo.Contains(knownSources, strings.ToLower(s))
	})
	if len(invalid) > 0 {
		return fmt.Errorf("invalid sources: %s (valid sources: %s)",
			strings.Join(invalid, ", "), strings.Join(knownSources, ", "))
	}
	return nil
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}
