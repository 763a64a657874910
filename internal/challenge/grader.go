// Package challenge grades take-home submissions and resolves final scores
// across auto and human grading.
package challenge

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/matchforge/matchforge/internal/config"
	"github.com/matchforge/matchforge/internal/llm"
	"github.com/matchforge/matchforge/internal/prompts"
	"github.com/matchforge/matchforge/internal/schemas"
)

// Grade is the machine verdict on a submission.
type Grade struct {
	Score     int
	Reasoning string
}

// Grader scores submissions with a single inference call.
type Grader struct {
	client llm.Client
	logger *zap.Logger
}

func NewGrader(client llm.Client, log *zap.Logger) *Grader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Grader{client: client, logger: log}
}

type gradeResponse struct {
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

// Grade scores one submission against the challenge prompt. File-only
// submissions are still graded, with an explicit note that only effort can
// be judged.
func (g *Grader) Grade(ctx context.Context, challengePrompt, responseText, linkURL string) (*Grade, error) {
	submission := buildSubmission(responseText, linkURL)

	prompt := prompts.Format(prompts.MustGet("grading.json", "grade-submission"), map[string]string{
		"Prompt":     challengePrompt,
		"Submission": submission,
	})
	raw, err := g.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("grade submission: %w", err)
	}
	if err := schemas.Validate(schemas.ChallengeGrade, raw); err != nil {
		return nil, fmt.Errorf("grade submission: %w", err)
	}
	var resp gradeResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("grade submission: %w", err)
	}

	return &Grade{Score: clampRound(resp.Score), Reasoning: resp.Reasoning}, nil
}

// FinalScore resolves the stored final score after a human review under the
// configured policy. humanScore is nil while no review exists.
func FinalScore(policy config.ScorePolicy, autoScore int, humanScore *int) int {
	if humanScore == nil {
		return autoScore
	}
	if policy == config.ScorePolicyBlend {
		return int(math.Round(float64(autoScore+*humanScore) / 2))
	}
	return *humanScore
}

func buildSubmission(responseText, linkURL string) string {
	var parts []string
	if responseText != "" {
		parts = append(parts, "TEXT RESPONSE:\n"+responseText)
	}
	if linkURL != "" {
		parts = append(parts, "LINK: "+linkURL)
	}
	if len(parts) == 0 {
		return "Only a file was provided and its content is unavailable; judge apparent effort only."
	}
	return strings.Join(parts, "\n\n")
}

func clampRound(score float64) int {
	n := int(math.Round(score))
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
