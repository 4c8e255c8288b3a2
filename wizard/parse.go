package wizard

import (
	"encoding/json"
	"strings"

	"github.com/mbsoft31/protocol-wizard/protocol"
)

// StripCodeFences removes markdown code fences from model output. Models
// routinely wrap JSON in ```json blocks no matter how the prompt pleads.
func StripCodeFences(text string) string {
	t := text
	t = strings.ReplaceAll(t, "```jsonl", "")
	t = strings.ReplaceAll(t, "```json", "")
	t = strings.ReplaceAll(t, "```", "")
	return strings.TrimSpace(t)
}

// NormalizeJSONL accepts JSONL text or a single JSON array and returns the
// contained objects. Empty lines, code fences, and non-object entries are
// dropped rather than treated as errors; a model that got most lines right
// still yields its good lines.
func NormalizeJSONL(raw string) []protocol.Document {
	cleaned := StripCodeFences(raw)

	var arr []any
	if err := json.Unmarshal([]byte(cleaned), &arr); err == nil {
		objs := make([]protocol.Document, 0, len(arr))
		for _, item := range arr {
			if obj, ok := item.(map[string]any); ok {
				objs = append(objs, obj)
			}
		}
		return objs
	}

	var objs []protocol.Document
	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var v any
		if err := json.Unmarshal([]byte(line), &v); err != nil {
			continue
		}
		if obj, ok := v.(map[string]any); ok {
			objs = append(objs, obj)
		}
	}
	return objs
}
