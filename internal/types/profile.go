package types

// DNA is the structured summary extracted from an engineer's crawled links.
type DNA struct {
	TopSkills             []string `json:"top_skills"`
	SenioritySignal       string   `json:"seniority_signal"`
	YearsExperienceSignal string   `json:"years_experience_signal"`
}

// ProfileSummary is the snapshot generated alongside the DNA.
type ProfileSummary struct {
	Snapshot       string   `json:"snapshot"`
	BestFitSignals []string `json:"best_fit_signals"`
}

// QuestionnaireSection maps question ids to free-text answers.
type QuestionnaireSection map[string]string

// EngineerQuestionnaire holds the five free-text engineer sections.
type EngineerQuestionnaire struct {
	WorkPreferences QuestionnaireSection `json:"work_preferences"`
	CareerGrowth    QuestionnaireSection `json:"career_growth"`
	Strengths       QuestionnaireSection `json:"strengths"`
	GrowthAreas     QuestionnaireSection `json:"growth_areas"`
	DealBreakers    QuestionnaireSection `json:"deal_breakers"`
}

// PriorityRatings are the four 1-5 ratings an engineer assigns during
// onboarding.
type PriorityRatings struct {
	Mission     int `json:"mission" validate:"min=1,max=5"`
	Technical   int `json:"technical" validate:"min=1,max=5"`
	Culture     int `json:"culture" validate:"min=1,max=5"`
	Environment int `json:"environment" validate:"min=1,max=5"`
}
