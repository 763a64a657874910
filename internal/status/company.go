package status

import "fmt"

// Company is the lifecycle status of a company hiring profile.
//
//	draft ──► crawling ──► discovering_roles ──► questionnaire ──► complete
//	                │                                ▲                │
//	                └────────────────────────────────┘                │
//	                          questionnaire ◄─────────────────────────┘
type Company string

// Company hiring profile statuses.
const (
	CompanyDraft            Company = "draft"
	CompanyCrawling         Company = "crawling"
	CompanyDiscoveringRoles Company = "discovering_roles"
	CompanyQuestionnaire    Company = "questionnaire"
	CompanyComplete         Company = "complete"
)

var companyTransitions = map[Company][]Company{
	CompanyDraft:    {CompanyCrawling, CompanyQuestionnaire},
	CompanyCrawling: {CompanyDiscoveringRoles, CompanyQuestionnaire},
	// A company may leave discovering_roles without reviewing any
	// discovered role; low-confidence crawls fall back this way.
	CompanyDiscoveringRoles: {CompanyQuestionnaire},
	CompanyQuestionnaire:    {CompanyComplete},
	CompanyComplete:         {CompanyQuestionnaire},
}

// ParseCompany converts a raw string to a Company status.
func ParseCompany(s string) (Company, error) {
	st := Company(s)
	switch st {
	case CompanyDraft, CompanyCrawling, CompanyDiscoveringRoles, CompanyQuestionnaire, CompanyComplete:
		return st, nil
	}
	return "", fmt.Errorf("unknown company status %q", s)
}

// Transition validates moving a company hiring profile from → to.
func (from Company) Transition(to Company) error {
	if !transitionAllowed(companyTransitions, from, to) {
		return &TransitionError{Entity: "company", From: string(from), To: string(to)}
	}
	return nil
}
