package server

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/matchforge/matchforge/internal/types"
)

var validate = validator.New()

func validateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}

// CreateEngineerRequest is the engineer onboarding payload.
type CreateEngineerRequest struct {
	Name         string `json:"name" validate:"required,min=1"`
	Email        string `json:"email" validate:"required,email"`
	CodeHostURL  string `json:"code_host_url" validate:"omitempty,url"`
	PortfolioURL string `json:"portfolio_url" validate:"omitempty,url"`
	ResumeURL    string `json:"resume_url" validate:"omitempty,url"`
}

// Validate validates the request
func (r *CreateEngineerRequest) Validate() error { return validateStruct(r) }

// EngineerQuestionnaireRequest carries the finished questionnaire and
// priority ratings.
type EngineerQuestionnaireRequest struct {
	Questionnaire types.EngineerQuestionnaire `json:"questionnaire"`
	Priorities    types.PriorityRatings       `json:"priorities"`
}

// Validate validates the request
func (r *EngineerQuestionnaireRequest) Validate() error { return validateStruct(r) }

// PreferenceRequest adds a manual exclusion rule.
type PreferenceRequest struct {
	Kind  string `json:"kind" validate:"required,oneof=location company company_domain keyword"`
	Value string `json:"value" validate:"required"`
}

// Validate validates the request
func (r *PreferenceRequest) Validate() error { return validateStruct(r) }

// RemovePreferenceRequest removes an exclusion rule by value.
type RemovePreferenceRequest struct {
	Value string `json:"value" validate:"required"`
}

// Validate validates the request
func (r *RemovePreferenceRequest) Validate() error { return validateStruct(r) }

// CreateCompanyRequest is the company onboarding payload.
type CreateCompanyRequest struct {
	Name       string `json:"name" validate:"required,min=1"`
	WebsiteURL string `json:"website_url" validate:"omitempty,url"`
	CareersURL string `json:"careers_url" validate:"omitempty,url"`
	Domain     string `json:"domain"`
	Location   string `json:"location"`
}

// Validate validates the request
func (r *CreateCompanyRequest) Validate() error { return validateStruct(r) }

// SectionRequest carries the answers for one questionnaire section.
type SectionRequest struct {
	Answers types.QuestionnaireSection `json:"answers" validate:"required,min=1"`
}

// Validate validates the request
func (r *SectionRequest) Validate() error { return validateStruct(r) }

// ResolveContradictionRequest names the question whose contradictions the
// company has reviewed and stands by.
type ResolveContradictionRequest struct {
	QuestionID string `json:"question_id" validate:"required"`
}

// Validate validates the request
func (r *ResolveContradictionRequest) Validate() error { return validateStruct(r) }

// CreateRoleRequest creates a draft role from a posting URL or raw text.
type CreateRoleRequest struct {
	CompanyID uuid.UUID `json:"company_id" validate:"required"`
	SourceURL string    `json:"source_url" validate:"omitempty,url"`
	RawText   string    `json:"raw_text"`
	TitleHint string    `json:"title_hint"`

	Weights types.RawDimensionWeights `json:"weights"`

	ChallengeEnabled bool   `json:"challenge_enabled"`
	ChallengePrompt  string `json:"challenge_prompt"`
}

// Validate validates the request
func (r *CreateRoleRequest) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}
	if r.SourceURL == "" && r.RawText == "" {
		return fmt.Errorf("validation error: either source_url or raw_text is required")
	}
	if r.ChallengeEnabled && r.ChallengePrompt == "" {
		return fmt.Errorf("validation error: challenge_prompt is required when the challenge is enabled")
	}
	return nil
}

// WeightsRequest replaces a role's dimension weights.
type WeightsRequest struct {
	Weights types.RawDimensionWeights `json:"weights"`
}

// Validate validates the request
func (r *WeightsRequest) Validate() error { return validateStruct(r) }

// JDFeedbackRequest carries structured critique for re-beautification.
type JDFeedbackRequest struct {
	Feedback types.JDFeedback `json:"feedback"`
}

// Validate validates the request
func (r *JDFeedbackRequest) Validate() error {
	if r.Feedback.Empty() {
		return fmt.Errorf("validation error: feedback must not be empty")
	}
	return nil
}

// MatchFeedbackRequest is the company verdict on a match.
type MatchFeedbackRequest struct {
	Feedback types.MatchFeedback    `json:"feedback" validate:"required,oneof=not_a_fit applied"`
	Category types.FeedbackCategory `json:"category" validate:"omitempty,oneof=wrong_location company_not_interesting other"`
	Reason   string                 `json:"reason"`
}

// Validate validates the request
func (r *MatchFeedbackRequest) Validate() error { return validateStruct(r) }

// DecisionRequest is the engineer verdict on a match.
type DecisionRequest struct {
	Decision types.EngineerDecision `json:"decision" validate:"required,oneof=interested not_interested"`
}

// Validate validates the request
func (r *DecisionRequest) Validate() error { return validateStruct(r) }

// ChallengeResponseRequest records the engineer's answer to a challenge offer.
type ChallengeResponseRequest struct {
	Response types.ChallengeResponse `json:"response" validate:"required,oneof=accepted declined"`
}

// Validate validates the request
func (r *ChallengeResponseRequest) Validate() error { return validateStruct(r) }

// SubmissionRequest is the engineer's challenge submission.
type SubmissionRequest struct {
	ResponseText string `json:"response_text"`
	LinkURL      string `json:"link_url" validate:"omitempty,url"`
	FileURL      string `json:"file_url" validate:"omitempty,url"`
}

// Validate validates the request
func (r *SubmissionRequest) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}
	if r.ResponseText == "" && r.LinkURL == "" && r.FileURL == "" {
		return fmt.Errorf("validation error: a text response, link or file is required")
	}
	return nil
}

// ReviewRequest is the human review of a graded submission.
type ReviewRequest struct {
	Score    int    `json:"score" validate:"min=0,max=100"`
	Feedback string `json:"feedback"`
	Reviewer string `json:"reviewer" validate:"required"`
}

// Validate validates the request
func (r *ReviewRequest) Validate() error { return validateStruct(r) }

// RecomputeRequest forces a fresh score for one role and engineer pair.
type RecomputeRequest struct {
	RoleID     uuid.UUID `json:"role_id" validate:"required"`
	EngineerID uuid.UUID `json:"engineer_id" validate:"required"`
}

// Validate validates the request
func (r *RecomputeRequest) Validate() error { return validateStruct(r) }
