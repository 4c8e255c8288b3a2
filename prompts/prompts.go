// Package prompts holds the LLM prompt templates for the protocol pipeline.
// Defaults are embedded in the binary; a Library may point at a directory
// whose files override the embedded templates one-for-one.
package prompts

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

//go:embed templates/*.txt
var templates embed.FS

// Template file names, shared between the embedded set and override
// directories.
const (
	ExtractProtocolFile = "01_extract_protocol.txt"
	RefineCriteriaFile  = "02_refine_criteria.txt"
	QueriesFile         = "03_queries.txt"
)

// Library resolves and renders prompt templates.
type Library struct {
	overrideDir string
}

// NewLibrary creates a Library. If overrideDir is non-empty, template files
// found there take precedence over the embedded defaults; missing files fall
// back silently.
func NewLibrary(overrideDir string) *Library {
	return &Library{overrideDir: overrideDir}
}

// ExtractProtocol renders the protocol drafting prompt for a subject
// description.
func (l *Library) ExtractProtocol(subjectText string) (string, error) {
	return l.render(ExtractProtocolFile, "{subject_text}", subjectText)
}

// RefineCriteria renders the criteria refinement prompt for a protocol
// serialized as JSON.
func (l *Library) RefineCriteria(protocolJSON string) (string, error) {
	return l.render(RefineCriteriaFile, "{protocol_json}", protocolJSON)
}

// Queries renders the query generation prompt for a protocol serialized as
// JSON.
func (l *Library) Queries(protocolJSON string) (string, error) {
	return l.render(QueriesFile, "{protocol_json}", protocolJSON)
}

func (l *Library) render(name, placeholder, value string) (string, error) {
	raw, err := l.load(name)
	if err != nil {
		return "", err
	}
	if !strings.Contains(raw, placeholder) {
		return "", fmt.Errorf("prompt template %s is missing placeholder %s", name, placeholder)
	}
	return strings.ReplaceAll(raw, placeholder, value), nil
}

func (l *Library) load(name string) (string, error) {
	if l.overrideDir != "" {
		data, err := os.ReadFile(filepath.Join(l.overrideDir, name))
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("read prompt override %s: %w", name, err)
		}
	}

	data, err := templates.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("read embedded prompt %s: %w", name, err)
	}
	return string(data), nil
}
