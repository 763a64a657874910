// Package contradiction cross-checks company questionnaire answers against
// highlights extracted from the company's own crawled pages.
package contradiction

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/matchforge/matchforge/internal/llm"
	"github.com/matchforge/matchforge/internal/prompts"
	"github.com/matchforge/matchforge/internal/schemas"
	"github.com/matchforge/matchforge/internal/types"
)

// sectionTopics maps each questionnaire section to the crawl-highlight
// topics it is checked against. Sections absent from the map are never
// contradiction-checked.
var sectionTopics = map[string][]types.HighlightTopic{
	"culture":       {types.TopicCulture, types.TopicValues, types.TopicTeam, types.TopicHiring},
	"mission":       {types.TopicMission, types.TopicValues, types.TopicProduct},
	"team_dynamics": {types.TopicTeam, types.TopicCulture},
}

// Detector runs contradiction checks with a single inference call per
// section save.
type Detector struct {
	client llm.Client
	logger *zap.Logger
}

func NewDetector(client llm.Client, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{client: client, logger: logger}
}

type detectionResponse struct {
	Contradictions []struct {
		QuestionID string `json:"question_id"`
		Detail     string `json:"detail"`
	} `json:"contradictions"`
}

// Detect compares the answers of one questionnaire section against the
// topic-filtered crawl highlights. Sections with no mapped topics (the
// technical section) and sections with no matching evidence return no
// contradictions without an inference call.
func (d *Detector) Detect(ctx context.Context, section string, answers types.QuestionnaireSection, crawl *types.CrawlData) ([]types.Contradiction, error) {
	topics, ok := sectionTopics[section]
	if !ok || len(answers) == 0 {
		return nil, nil
	}
	highlights := crawl.HighlightsForTopics(topics)
	if len(highlights) == 0 {
		return nil, nil
	}

	prompt := prompts.Format(prompts.MustGet("contradictions.json", "detect-contradictions"), map[string]string{
		"Section":    section,
		"Answers":    formatAnswers(answers),
		"Highlights": formatHighlights(highlights),
	})

	raw, err := d.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("contradiction detection for section %q: %w", section, err)
	}
	if err := schemas.Validate(schemas.Contradictions, raw); err != nil {
		return nil, fmt.Errorf("contradiction detection for section %q: %w", section, err)
	}

	var resp detectionResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("contradiction detection for section %q: %w", section, err)
	}

	var found []types.Contradiction
	for _, c := range resp.Contradictions {
		if _, answered := answers[c.QuestionID]; !answered {
			d.logger.Warn("dropping contradiction for unknown question id",
				zap.String("section", section), zap.String("question_id", c.QuestionID))
			continue
		}
		found = append(found, types.Contradiction{
			QuestionID: c.QuestionID,
			Section:    section,
			Detail:     c.Detail,
		})
	}
	return found, nil
}

// Merge folds freshly detected contradictions for one section into the
// stored list. Entries for other sections are kept untouched. Entries for
// question ids answered in this save are replaced wholesale by the fresh
// set, resolved or not. Resolved entries of this section whose question was
// not part of the save are preserved.
func Merge(existing, fresh []types.Contradiction, section string, answeredIDs []string) []types.Contradiction {
	answered := make(map[string]bool, len(answeredIDs))
	for _, id := range answeredIDs {
		answered[id] = true
	}

	var merged []types.Contradiction
	for _, c := range existing {
		if c.Section == section && answered[c.QuestionID] {
			continue
		}
		merged = append(merged, c)
	}
	return append(merged, fresh...)
}

func formatAnswers(answers types.QuestionnaireSection) string {
	ids := make([]string, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var sb strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&sb, "%s: %s\n", id, answers[id])
	}
	return sb.String()
}

func formatHighlights(highlights []types.Highlight) string {
	var sb strings.Builder
	for _, h := range highlights {
		fmt.Fprintf(&sb, "[%s] %s\n", h.Topic, h.Text)
	}
	return sb.String()
}
