// Package schemas validates structured LLM output against embedded JSON
// Schemas before it is unmarshaled. Every inference call that expects
// structured data names one of these schemas.
package schemas

import (
	"fmt"
	"strings"
	"sync"

	"embed"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed *.json
var schemaFiles embed.FS

// Schema names, one per structured inference contract.
const (
	EngineerDNA    = "engineer_dna"
	CompanyCrawl   = "company_crawl"
	RoleDiscovery  = "role_discovery"
	ExtractedJD    = "extracted_jd"
	BeautifiedJD   = "beautified_jd"
	MatchScores    = "match_scores"
	Contradictions = "contradictions"
	ChallengeGrade = "challenge_grade"
)

var (
	compiled   = make(map[string]*gojsonschema.Schema)
	compiledMu sync.RWMutex
)

// FieldError is a single validation error at a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError reports schema violations in an LLM response.
type ValidationError struct {
	Schema string
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "response does not match schema %s:", e.Schema)
	for _, fe := range e.Errors {
		fmt.Fprintf(&sb, " %s: %s;", fe.Field, fe.Message)
	}
	return sb.String()
}

// Validate checks a JSON document against the named schema.
func Validate(name, document string) error {
	schema, err := load(name)
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(document))
	if err != nil {
		return fmt.Errorf("failed to validate against schema %s: %w", name, err)
	}
	if result.Valid() {
		return nil
	}

	ve := &ValidationError{Schema: name}
	for _, desc := range result.Errors() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return ve
}

func load(name string) (*gojsonschema.Schema, error) {
	compiledMu.RLock()
	if s, ok := compiled[name]; ok {
		compiledMu.RUnlock()
		return s, nil
	}
	compiledMu.RUnlock()

	data, err := schemaFiles.ReadFile(name + ".json")
	if err != nil {
		return nil, fmt.Errorf("unknown schema %q: %w", name, err)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
	}

	compiledMu.Lock()
	compiled[name] = schema
	compiledMu.Unlock()
	return schema, nil
}
