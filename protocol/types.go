// Package protocol defines systematic-review protocol documents and the
// canonicalization, freezing, and validation machinery that makes their
// hashes reproducible across implementations.
package protocol

// Picos captures the PICOC framing of a review protocol. All facets are
// optional; a draft may arrive with only partial framing.
type Picos struct {
	Population   []string `json:"population,omitempty"`
	Intervention []string `json:"intervention,omitempty"`
	Comparison   []string `json:"comparison,omitempty"`
	Outcomes     []string `json:"outcomes,omitempty"`
	Context      []string `json:"context,omitempty"`
}

// Keywords holds the search vocabulary for a protocol.
type Keywords struct {
	Include  []string            `json:"include"`
	Exclude  []string            `json:"exclude"`
	Synonyms map[string][]string `json:"synonyms,omitempty"`
}

// Screening holds the study screening rules. Years is an inclusive
// [from, to] pair.
type Screening struct {
	InclusionCriteria []string `json:"inclusion_criteria"`
	ExclusionCriteria []string `json:"exclusion_criteria"`
	Years             [2]int   `json:"years"`
	Languages         []string `json:"languages"`
	DocTypes          []string `json:"doc_types"`
}

// Protocol is a full review protocol document.
type Protocol struct {
	ResearchQuestions []string          `json:"research_questions"`
	Picos             *Picos            `json:"picos,omitempty"`
	Keywords          Keywords          `json:"keywords"`
	Screening         Screening         `json:"screening"`
	Sources           []string          `json:"sources"`
	Rationales        map[string]string `json:"rationales,omitempty"`
}

// Borderline suggested labels.
const (
	SuggestedInclude = "INCLUDE"
	SuggestedExclude = "EXCLUDE"
	SuggestedMaybe   = "MAYBE"
)

// BorderlineExample is a study description whose screening decision is
// genuinely debatable, with the suggested label and reasoning.
type BorderlineExample struct {
	Text      string `json:"text"`
	Suggested string `json:"suggested"`
	Why       string `json:"why"`
}

// Refinements is the output of a criteria refinement pass over a draft
// protocol.
type Refinements struct {
	InclusionCriteriaRefined []string            `json:"inclusion_criteria_refined"`
	ExclusionCriteriaRefined []string            `json:"exclusion_criteria_refined"`
	BorderlineExamples       []BorderlineExample `json:"borderline_examples"`
	RisksAndAmbiguities      []string            `json:"risks_and_ambiguities"`
}

// Query is one search-engine-native query candidate derived from a protocol.
// Native and Budget are provider-specific and pass through untouched.
type Query struct {
	Family    string         `json:"family"`
	Provider  string         `json:"provider"`
	Native    map[string]any `json:"native"`
	Budget    map[string]any `json:"budget"`
	Rationale string         `json:"rationale"`
}

// Manifest records the provenance of a frozen protocol: when it was frozen,
// the hash that identifies it, and where its inputs came from.
type Manifest struct {
	FrozenAtUTC    string   `json:"frozen_at_utc"`
	ProtocolSHA256 string   `json:"protocol_sha256"`
	SourceFiles    []string `json:"source_files"`
	Notes          string   `json:"notes,omitempty"`
}
