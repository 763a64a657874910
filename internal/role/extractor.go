// Package role covers the job posting lifecycle: extraction from raw
// sources, beautification into a candidate-facing description and the
// dimension weight handling that gates activation.
package role

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/matchforge/matchforge/internal/fetch"
	"github.com/matchforge/matchforge/internal/llm"
	"github.com/matchforge/matchforge/internal/prompts"
	"github.com/matchforge/matchforge/internal/schemas"
	"github.com/matchforge/matchforge/internal/types"
)

// Fetcher retrieves readable text for a URL.
type Fetcher interface {
	Content(ctx context.Context, urlStr string, contentSelectors []string) (string, error)
}

// Extractor turns a job posting URL or pasted text into an ExtractedJD.
// The raw posting text is always kept verbatim so a role can be
// re-extracted or re-beautified later.
type Extractor struct {
	fetcher Fetcher
	client  llm.Client
	logger  *zap.Logger
}

func NewExtractor(fetcher Fetcher, client llm.Client, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{fetcher: fetcher, client: client, logger: log}
}

// FromURL fetches the posting page and extracts structured fields from it.
func (e *Extractor) FromURL(ctx context.Context, urlStr string) (*types.ExtractedJD, error) {
	text, err := e.fetcher.Content(ctx, urlStr, fetch.JobPostingSelectors())
	if err != nil {
		return nil, fmt.Errorf("jd extraction from %s: %w", urlStr, err)
	}
	return e.FromText(ctx, "", text)
}

// FromText extracts structured fields from pasted posting text. titleHint
// may be empty.
func (e *Extractor) FromText(ctx context.Context, titleHint, rawText string) (*types.ExtractedJD, error) {
	if rawText == "" {
		return nil, fmt.Errorf("jd extraction: empty posting text")
	}

	prompt := prompts.Format(prompts.MustGet("roles.json", "extract-jd"), map[string]string{
		"TitleHint": titleHint,
		"RawText":   rawText,
	})
	raw, err := e.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, fmt.Errorf("jd extraction: %w", err)
	}
	if err := schemas.Validate(schemas.ExtractedJD, raw); err != nil {
		return nil, fmt.Errorf("jd extraction: %w", err)
	}

	var jd types.ExtractedJD
	if err := json.Unmarshal([]byte(raw), &jd); err != nil {
		return nil, fmt.Errorf("jd extraction: %w", err)
	}
	jd.RawText = rawText
	return &jd, nil
}
