package protocol

// Deterministic payloads returned when no LLM output is usable. They keep the
// draft/refine pipeline moving offline and double as worked examples of the
// expected output shapes.

// FallbackDraftJSON is a complete protocol draft for the plant disease
// detection running example.
const FallbackDraftJSON = `{
  "research_questions": [
    "How do deep models generalize from lab to field for plant disease detection?"
  ],
  "picos": {
    "population": ["crop plants"],
    "intervention": ["deep learning detection"],
    "comparison": ["lab vs field"],
    "outcomes": ["accuracy drop"],
    "context": ["field conditions"]
  },
  "keywords": {
    "include": [
      "plant disease detection",
      "domain shift",
      "field images",
      "lab-to-field",
      "generalization"
    ],
    "exclude": ["yield prediction", "irrigation only"],
    "synonyms": {"domain shift": ["dataset shift", "external validity"]}
  },
  "screening": {
    "inclusion_criteria": [
      "disease detection task",
      "machine/deep learning method",
      "includes field images or lab-to-field evaluation"
    ],
    "exclusion_criteria": [
      "yield-only studies",
      "pure irrigation optimization",
      "simulation-only with no field data"
    ],
    "years": [2015, 2025],
    "languages": ["en", "fr", "ar"],
    "doc_types": ["journal", "conference", "preprint"]
  },
  "sources": ["openalex", "crossref", "pubmed", "arxiv"],
  "rationales": {
    "scope": "Focus on robustness and domain shift.",
    "risks": "Non-English coverage might be thin; RS may drift scope."
  }
}`

// FallbackRefinementsJSON is the matching refinement payload.
const FallbackRefinementsJSON = `{
  "inclusion_criteria_refined": [
    "ML vision for plant disease detection",
    "has field images or lab-to-field eval"
  ],
  "exclusion_criteria_refined": [
    "yield-only",
    "irrigation-only",
    "pure simulation"
  ],
  "borderline_examples": [
    {
      "text": "Greenhouse + small field pilot",
      "suggested": "MAYBE",
      "why": "pilot may qualify"
    }
  ],
  "risks_and_ambiguities": ["Remote sensing scope creep"]
}`
