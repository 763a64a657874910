package store

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matchforge/matchforge/internal/status"
	"github.com/matchforge/matchforge/internal/types"
)

// Role is a persisted job role belonging to one company hiring profile.
type Role struct {
	ID        uuid.UUID `json:"id"`
	CompanyID uuid.UUID `json:"company_id"`

	Title    string `json:"title"`
	Location string `json:"location,omitempty"`

	Status status.Role `json:"status"`

	SourceURL     string `json:"source_url,omitempty"`
	SourceContent string `json:"source_content,omitempty"` // verbatim raw posting text

	BeautifiedJD *types.BeautifiedJD `json:"beautified_jd,omitempty"`
	JDFeedback   *types.JDFeedback   `json:"jd_feedback,omitempty"`

	Weights    types.DimensionWeights    `json:"dimension_weights"`
	RawWeights types.RawDimensionWeights `json:"dimension_weights_raw"`

	ChallengeEnabled bool   `json:"challenge_enabled"`
	ChallengePrompt  string `json:"challenge_prompt,omitempty"`

	PublicSlug string `json:"public_slug"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SearchText flattens the role content searched by keyword exclusions:
// title, raw posting text and the beautified description.
func (r *Role) SearchText() string {
	var sb strings.Builder
	sb.WriteString(strings.ToLower(r.Title))
	sb.WriteString(" ")
	sb.WriteString(strings.ToLower(r.SourceContent))
	sb.WriteString(" ")
	sb.WriteString(r.BeautifiedJD.SearchText())
	return sb.String()
}

// RoleCandidate is a role joined with the company fields the exclusion
// filters need.
type RoleCandidate struct {
	Role
	CompanyName   string `json:"company_name"`
	CompanyDomain string `json:"company_domain"`
}
