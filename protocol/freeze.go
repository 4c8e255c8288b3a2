package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// DefaultFreezeNote is stamped into manifests unless the caller supplies
// their own.
const DefaultFreezeNote = "Freeze before data harvesting; include this hash in PRISMA/methods."

// Swappable for deterministic manifests in tests.
var timeNow = time.Now

// Freeze produces the final, hash-identified form of a protocol document.
// When refinements are present, the refined inclusion and exclusion criteria
// replace the draft's screening criteria; an absent refined list leaves the
// draft's criteria in place. Everything else in the document is untouched.
// The returned document is a deep copy, and the manifest carries its
// canonical SHA-256 and the freeze timestamp.
func Freeze(doc Document, refinements *Refinements, sourceFiles []string) (Document, *Manifest, error) {
	frozen, err := deepCopy(doc)
	if err != nil {
		return nil, nil, err
	}

	if refinements != nil {
		screening, _ := frozen["screening"].(map[string]any)
		if screening == nil {
			screening = map[string]any{}
		}
		mergeCriteria(screening, "inclusion_criteria", refinements.InclusionCriteriaRefined)
		mergeCriteria(screening, "exclusion_criteria", refinements.ExclusionCriteriaRefined)
		frozen["screening"] = screening
	}

	checksum, err := Hash(frozen)
	if err != nil {
		return nil, nil, err
	}

	if len(sourceFiles) == 0 {
		sourceFiles = []string{"inline"}
	}

	manifest := &Manifest{
		FrozenAtUTC:    UTCNowISO(),
		ProtocolSHA256: checksum,
		SourceFiles:    sourceFiles,
		Notes:          DefaultFreezeNote,
	}
	return frozen, manifest, nil
}

// UTCNowISO returns the current UTC time in RFC 3339 form with a trailing Z
// and exactly six fractional digits, the timestamp format manifests use.
func UTCNowISO() string {
	return timeNow().UTC().Format("2006-01-02T15:04:05.000000Z07:00")
}

// deepCopy clones a document through a JSON round trip so nested maps and
// slices are not shared with the input.
func deepCopy(doc Document) (Document, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("freeze: marshal: %w", err)
	}
	var out Document
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("freeze: unmarshal: %w", err)
	}
	if out == nil {
		out = Document{}
	}
	return out, nil
}

// mergeCriteria substitutes a screening criteria list only when the refined
// list is present. A refinements object that omits a field (nil slice) must
// not wipe the draft's criteria; missing base criteria settle to an empty
// list.
func mergeCriteria(screening map[string]any, key string, refined []string) {
	if refined != nil {
		screening[key] = toAnySlice(refined)
		return
	}
	if _, ok := screening[key]; !ok {
		screening[key] = []any{}
	}
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
