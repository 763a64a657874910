package types

import "fmt"

// MatchFeedback is the company-side verdict on a match.
type MatchFeedback string

// Match feedback values; empty means no feedback yet.
const (
	FeedbackNone    MatchFeedback = ""
	FeedbackNotAFit MatchFeedback = "not_a_fit"
	FeedbackApplied MatchFeedback = "applied"
)

// FeedbackCategory qualifies a not_a_fit verdict and drives the
// preference learner.
type FeedbackCategory string

// Feedback categories recognized by the preference learner.
const (
	CategoryWrongLocation         FeedbackCategory = "wrong_location"
	CategoryCompanyNotInteresting FeedbackCategory = "company_not_interesting"
	CategoryOther                 FeedbackCategory = "other"
)

// Validate checks a feedback value and its category pairing: categories
// only accompany not_a_fit.
func (f MatchFeedback) Validate(category FeedbackCategory) error {
	switch f {
	case FeedbackNotAFit:
		switch category {
		case "", CategoryWrongLocation, CategoryCompanyNotInteresting, CategoryOther:
			return nil
		}
		return fmt.Errorf("unknown feedback category %q", category)
	case FeedbackApplied:
		if category != "" {
			return fmt.Errorf("feedback %q does not take a category", f)
		}
		return nil
	case FeedbackNone:
		return fmt.Errorf("feedback value required")
	}
	return fmt.Errorf("unknown feedback value %q", f)
}

// EngineerDecision is the engineer-side verdict on a match.
type EngineerDecision string

// Engineer decision values; empty means undecided.
const (
	DecisionNone          EngineerDecision = ""
	DecisionInterested    EngineerDecision = "interested"
	DecisionNotInterested EngineerDecision = "not_interested"
)

// ChallengeResponse records whether the engineer accepted the challenge.
type ChallengeResponse string

// Challenge response values; empty means no response yet.
const (
	ChallengeNone     ChallengeResponse = ""
	ChallengeAccepted ChallengeResponse = "accepted"
	ChallengeDeclined ChallengeResponse = "declined"
)
