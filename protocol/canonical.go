package protocol

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Document is a protocol (or any JSON document) in its generic decoded form.
// Canonicalization and freezing operate on Documents so that unknown fields
// survive the round trip and contribute to the hash.
type Document = map[string]any

// Canonicalize renders v as a canonical JSON string: every object's keys
// sorted recursively, no insignificant whitespace, non-ASCII characters
// emitted verbatim. Equal documents canonicalize to byte-identical strings
// regardless of field order, so the string is a stable hashing target.
func Canonicalize(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("canonicalize: marshal: %w", err)
	}

	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return "", fmt.Errorf("canonicalize: unmarshal: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	// Raw UTF-8, no < style escaping.
	enc.SetEscapeHTML(false)
	if err := enc.Encode(deepSort(decoded)); err != nil {
		return "", fmt.Errorf("canonicalize: encode: %w", err)
	}

	// Encode appends a newline.
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// deepSort rebuilds a decoded JSON value with map keys in sorted order at
// every nesting level. Go's encoder already sorts map keys, but sorting
// explicitly keeps the canonical form independent of encoder internals.
func deepSort(v any) any {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sorted := make(map[string]any, len(val))
		for _, k := range keys {
			sorted[k] = deepSort(val[k])
		}
		return sorted
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepSort(item)
		}
		return out
	default:
		return v
	}
}

// SHA256Hex returns the lowercase hex SHA-256 digest of s.
func SHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Hash canonicalizes v and hashes the result. This is the protocol identity
// used in freeze manifests.
func Hash(v any) (string, error) {
	canonical, err := Canonicalize(v)
	if err != nil {
		return "", err
	}
	return SHA256Hex(canonical), nil
}
