// Package wizard orchestrates the protocol pipeline: drafting a protocol
// from a subject description, refining its screening criteria, deriving
// search queries, and freezing the result under a reproducible hash.
package wizard

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mbsoft31/protocol-wizard/llm"
	"github.com/mbsoft31/protocol-wizard/prompts"
	"github.com/mbsoft31/protocol-wizard/protocol"
)

// Checklist handed to the human reviewer alongside every draft.
const DraftChecklist = `# HIL Checklist (Protocol Draft)

- [ ] Do research questions match the topic?
- [ ] Inclusion criteria testable? Any vague words to replace?
- [ ] Exclusion criteria complete? Add domain-specific negatives.
- [ ] Years/languages/doc types OK?
- [ ] Sources sufficient?
- [ ] Risks acknowledged?

Edit outputs/protocol_draft.json and re-run refine.
`

// Generator is the slice of the LLM gateway the wizard needs.
type Generator interface {
	Generate(ctx context.Context, req *llm.Request) (*llm.Response, error)
	CheckProviderHealth(ctx context.Context) map[string]bool
}

// Service runs the draft, refine, queries, and freeze operations.
type Service struct {
	gateway      Generator
	prompts      *prompts.Library
	defaultModel string
	logger       zerolog.Logger
}

// NewService creates a Service. defaultModel is used when a request does not
// name a model.
func NewService(gateway Generator, library *prompts.Library, defaultModel string, logger zerolog.Logger) *Service {
	return &Service{
		gateway:      gateway,
		prompts:      library,
		defaultModel: defaultModel,
		logger:       logger.With().Str("component", "wizard").Logger(),
	}
}

// DraftResult is the outcome of drafting a protocol.
type DraftResult struct {
	Protocol     protocol.Document          `json:"protocol"`
	Checklist    string                     `json:"checklist"`
	FromFallback bool                       `json:"from_fallback"`
	Validation   *protocol.ValidationResult `json:"validation"`
	LLM          *llm.Response              `json:"llm,omitempty"`
}

// Draft turns a subject description into a protocol draft. Provider failures
// and unparseable model output degrade to the deterministic fallback draft;
// only invalid input surfaces as an error.
func (s *Service) Draft(ctx context.Context, subjectText, model string) (*DraftResult, error) {
	if err := protocol.ValidateSubjectText(subjectText); err != nil {
		return nil, llm.NewInputError("%s", err.Error())
	}

	prompt, err := s.prompts.ExtractProtocol(subjectText)
	if err != nil {
		return nil, err
	}

	logger := s.requestLogger("draft")
	resp, err := s.gateway.Generate(ctx, &llm.Request{
		Prompt:   prompt,
		Model:    s.resolveModel(model),
		Fallback: protocol.FallbackDraftJSON,
	})
	if err != nil {
		return nil, err
	}

	fromFallback := resp.FromFallback
	doc, parseErr := parseDocument(resp.Content)
	if parseErr != nil {
		logger.Warn().Err(parseErr).Msg("Draft output not parseable, using fallback")
		fromFallback = true
		if doc, parseErr = parseDocument(protocol.FallbackDraftJSON); parseErr != nil {
			return nil, fmt.Errorf("parse fallback draft: %w", parseErr)
		}
	}

	validation := protocol.Validate(doc)
	logger.Info().
		Bool("from_fallback", fromFallback).
		Bool("valid", validation.Valid).
		Msg("Draft complete")

	return &DraftResult{
		Protocol:     doc,
		Checklist:    DraftChecklist,
		FromFallback: fromFallback,
		Validation:   validation,
		LLM:          resp,
	}, nil
}

// RefineResult is the outcome of refining a protocol's screening criteria.
type RefineResult struct {
	Refinements  *protocol.Refinements `json:"refinements"`
	FromFallback bool                  `json:"from_fallback"`
	LLM          *llm.Response         `json:"llm,omitempty"`
}

// Refine audits a draft's screening criteria and proposes refined criteria
// with borderline examples.
func (s *Service) Refine(ctx context.Context, proto *protocol.Protocol, model string) (*RefineResult, error) {
	if proto == nil {
		return nil, llm.NewInputError("protocol is required")
	}

	protoJSON, err := json.MarshalIndent(proto, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal protocol: %w", err)
	}

	prompt, err := s.prompts.RefineCriteria(string(protoJSON))
	if err != nil {
		return nil, err
	}

	logger := s.requestLogger("refine")
	resp, err := s.gateway.Generate(ctx, &llm.Request{
		Prompt:   prompt,
		Model:    s.resolveModel(model),
		Fallback: protocol.FallbackRefinementsJSON,
	})
	if err != nil {
		return nil, err
	}

	fromFallback := resp.FromFallback
	refinements, parseErr := parseRefinements(resp.Content)
	if parseErr != nil {
		logger.Warn().Err(parseErr).Msg("Refine output not parseable, using fallback")
		fromFallback = true
		if refinements, parseErr = parseRefinements(protocol.FallbackRefinementsJSON); parseErr != nil {
			return nil, fmt.Errorf("parse fallback refinements: %w", parseErr)
		}
	}

	logger.Info().Bool("from_fallback", fromFallback).Msg("Refine complete")
	return &RefineResult{
		Refinements:  refinements,
		FromFallback: fromFallback,
		LLM:          resp,
	}, nil
}

// QueriesResult is the outcome of deriving search queries from a protocol.
type QueriesResult struct {
	Queries      []protocol.Query `json:"queries"`
	FromFallback bool             `json:"from_fallback"`
	LLM          *llm.Response    `json:"llm,omitempty"`
}

// Queries derives provider-native search queries from a protocol. There is
// no deterministic query fallback; if nothing usable comes back the result
// is an empty list flagged as fallback.
func (s *Service) Queries(ctx context.Context, proto *protocol.Protocol, model string) (*QueriesResult, error) {
	if err := protocol.ValidateQueryReadiness(proto); err != nil {
		return nil, llm.NewInputError("%s", err.Error())
	}

	protoJSON, err := json.MarshalIndent(proto, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal protocol: %w", err)
	}

	prompt, err := s.prompts.Queries(string(protoJSON))
	if err != nil {
		return nil, err
	}

	logger := s.requestLogger("queries")
	resp, err := s.gateway.Generate(ctx, &llm.Request{
		Prompt: prompt,
		Model:  s.resolveModel(model),
	})
	if err != nil {
		return nil, err
	}

	if resp.FromFallback {
		logger.Warn().Msg("No LLM output for queries, returning empty list")
		return &QueriesResult{Queries: []protocol.Query{}, FromFallback: true, LLM: resp}, nil
	}

	docs := NormalizeJSONL(resp.Content)
	queries := make([]protocol.Query, 0, len(docs))
	for _, doc := range docs {
		q, err := decodeQuery(doc)
		if err != nil {
			logger.Warn().Err(err).Msg("Skipping malformed query candidate")
			continue
		}
		queries = append(queries, q)
	}

	logger.Info().Int("queries", len(queries)).Msg("Queries complete")
	return &QueriesResult{
		Queries:      queries,
		FromFallback: len(queries) == 0,
		LLM:          resp,
	}, nil
}

// FreezeResult is the outcome of freezing a protocol.
type FreezeResult struct {
	Protocol protocol.Document  `json:"protocol"`
	Manifest *protocol.Manifest `json:"manifest"`
}

// Freeze finalizes a protocol document, merging refined criteria when
// present, and returns it with its provenance manifest. No LLM is involved.
func (s *Service) Freeze(doc protocol.Document, refinements *protocol.Refinements, sourceFiles []string) (*FreezeResult, error) {
	if doc == nil {
		return nil, llm.NewInputError("protocol is required")
	}

	frozen, manifest, err := protocol.Freeze(doc, refinements, sourceFiles)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("protocol_sha256", manifest.ProtocolSHA256).
		Str("frozen_at_utc", manifest.FrozenAtUTC).
		Msg("Protocol frozen")
	return &FreezeResult{Protocol: frozen, Manifest: manifest}, nil
}

// Health probes every configured provider.
func (s *Service) Health(ctx context.Context) map[string]bool {
	return s.gateway.CheckProviderHealth(ctx)
}

func (s *Service) resolveModel(model string) string {
	if model != "" {
		return model
	}
	return s.defaultModel
}

func (s *Service) requestLogger(operation string) zerolog.Logger {
	return s.logger.With().
		Str("operation", operation).
		Str("request_id", uuid.NewString()).
		Logger()
}

func parseDocument(raw string) (protocol.Document, error) {
	var doc protocol.Document
	if err := json.Unmarshal([]byte(StripCodeFences(raw)), &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("document is null")
	}
	return doc, nil
}

func parseRefinements(raw string) (*protocol.Refinements, error) {
	var ref protocol.Refinements
	if err := json.Unmarshal([]byte(StripCodeFences(raw)), &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}

func decodeQuery(doc protocol.Document) (protocol.Query, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return protocol.Query{}, err
	}
	var q protocol.Query
	if err := json.Unmarshal(data, &q); err != nil {
		return protocol.Query{}, err
	}
	return q, nil
}
