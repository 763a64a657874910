package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/matchforge/matchforge/internal/status"
	"github.com/matchforge/matchforge/internal/types"
)

// Engineer is the persisted engineer profile.
type Engineer struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"` // stored lowercased, unique

	CodeHostURL  string `json:"code_host_url,omitempty"`
	PortfolioURL string `json:"portfolio_url,omitempty"`
	ResumeURL    string `json:"resume_url,omitempty"`

	Status status.Engineer `json:"status"`

	DNA            *types.DNA            `json:"dna,omitempty"`
	ProfileSummary *types.ProfileSummary `json:"profile_summary,omitempty"`

	Questionnaire types.EngineerQuestionnaire `json:"questionnaire"`
	Priorities    types.PriorityRatings       `json:"priorities"`

	Preferences types.MatchingPreferences `json:"matching_preferences"`

	CrawlError string `json:"crawl_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Links returns the non-empty external links in a stable order.
func (e *Engineer) Links() []string {
	var links []string
	for _, l := range []string{e.CodeHostURL, e.PortfolioURL, e.ResumeURL} {
		if l != "" {
			links = append(links, l)
		}
	}
	return links
}
