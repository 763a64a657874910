package types

// Contradiction is a detected mismatch between a questionnaire answer and
// crawl-derived evidence covering the same topic.
type Contradiction struct {
	QuestionID string `json:"question_id"`
	Section    string `json:"section"`
	Detail     string `json:"detail"`
	Resolved   bool   `json:"resolved"`
}
