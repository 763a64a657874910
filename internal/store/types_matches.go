package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/matchforge/matchforge/internal/types"
)

// Match is a scored (role, engineer) pair. At most one row exists per pair.
type Match struct {
	ID         uuid.UUID `json:"id"`
	RoleID     uuid.UUID `json:"role_id"`
	EngineerID uuid.UUID `json:"engineer_id"`

	OverallScore    int                   `json:"overall_score"`
	DimensionScores types.DimensionScores `json:"dimension_scores"`
	HighlightQuote  string                `json:"highlight_quote"`
	DisplayRank     int                   `json:"display_rank"`

	Feedback         types.MatchFeedback    `json:"feedback,omitempty"`
	FeedbackCategory types.FeedbackCategory `json:"feedback_category,omitempty"`
	FeedbackReason   string                 `json:"feedback_reason,omitempty"`

	EngineerDecision  types.EngineerDecision `json:"engineer_decision,omitempty"`
	EngineerDecidedAt *time.Time             `json:"engineer_decided_at,omitempty"`

	ChallengeResponse types.ChallengeResponse `json:"challenge_response,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// ChallengeSubmission is the single submission allowed per match.
type ChallengeSubmission struct {
	ID      uuid.UUID `json:"id"`
	MatchID uuid.UUID `json:"match_id"` // unique

	ResponseText string `json:"response_text,omitempty"`
	LinkURL      string `json:"link_url,omitempty"`
	FileURL      string `json:"file_url,omitempty"`

	AutoScore     int    `json:"auto_score"`
	AutoReasoning string `json:"auto_reasoning"`

	HumanScore    *int   `json:"human_score,omitempty"`
	HumanFeedback string `json:"human_feedback,omitempty"`
	ReviewedBy    string `json:"reviewed_by,omitempty"`

	FinalScore int `json:"final_score"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
