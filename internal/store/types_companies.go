package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/matchforge/matchforge/internal/status"
	"github.com/matchforge/matchforge/internal/types"
)

// Company is the persisted company hiring profile, one per company.
type Company struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`

	WebsiteURL string `json:"website_url,omitempty"`
	CareersURL string `json:"careers_url,omitempty"`
	Domain     string `json:"domain,omitempty"` // e.g. "acme.example", used by exclusion filters
	Location   string `json:"location,omitempty"`

	Status status.Company `json:"status"`

	CrawlData            *types.CrawlData  `json:"crawl_data,omitempty"`
	DNA                  *types.CompanyDNA `json:"company_dna,omitempty"`
	TechnicalEnvironment string            `json:"technical_environment,omitempty"`

	Questionnaire   types.CompanyQuestionnaire `json:"questionnaire"`
	DiscoveredRoles []types.DiscoveredRole     `json:"discovered_roles,omitempty"`
	Contradictions  []types.Contradiction      `json:"contradictions,omitempty"`

	CrawlError string `json:"crawl_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CrawlLinks returns the company URLs worth crawling, in a stable order.
func (c *Company) CrawlLinks() []string {
	var links []string
	for _, l := range []string{c.WebsiteURL, c.CareersURL} {
		if l != "" {
			links = append(links, l)
		}
	}
	return links
}
