package status

import "fmt"

// Engineer is the lifecycle status of an engineer profile.
//
//	draft ──► crawling ──► questionnaire ──► complete
//	  │                         ▲                │
//	  └─────────────────────────┘ (no links)     │
//	            questionnaire ◄──────────────────┘ (edit re-entry)
type Engineer string

// Engineer profile statuses.
const (
	EngineerDraft         Engineer = "draft"
	EngineerCrawling      Engineer = "crawling"
	EngineerQuestionnaire Engineer = "questionnaire"
	EngineerComplete      Engineer = "complete"
)

var engineerTransitions = map[Engineer][]Engineer{
	EngineerDraft:         {EngineerCrawling, EngineerQuestionnaire},
	EngineerCrawling:      {EngineerQuestionnaire},
	EngineerQuestionnaire: {EngineerComplete},
	EngineerComplete:      {EngineerQuestionnaire},
}

// ParseEngineer converts a raw string to an Engineer status.
func ParseEngineer(s string) (Engineer, error) {
	st := Engineer(s)
	switch st {
	case EngineerDraft, EngineerCrawling, EngineerQuestionnaire, EngineerComplete:
		return st, nil
	}
	return "", fmt.Errorf("unknown engineer status %q", s)
}

// Transition validates moving an engineer profile from → to.
func (from Engineer) Transition(to Engineer) error {
	if !transitionAllowed(engineerTransitions, from, to) {
		return &TransitionError{Entity: "engineer", From: string(from), To: string(to)}
	}
	return nil
}
