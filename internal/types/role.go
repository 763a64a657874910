package types

import "strings"

// ExtractedJD is the structured form of a raw job posting. RawText is the
// verbatim posting text and is always preserved for re-extraction.
type ExtractedJD struct {
	Title          string            `json:"title"`
	RawText        string            `json:"raw_text"`
	Location       string            `json:"location"`
	EmploymentType string            `json:"employment_type"`
	Requirements   map[string]string `json:"requirements"`
}

// Sentiment qualifies a prose section of a beautified job description.
type Sentiment string

// Sentiment values for beautified JD prose sections.
const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNone     Sentiment = "none"
)

// ParseSentiment normalizes a raw sentiment string, defaulting to none.
func ParseSentiment(s string) Sentiment {
	switch Sentiment(strings.ToLower(strings.TrimSpace(s))) {
	case SentimentPositive:
		return SentimentPositive
	case SentimentNegative:
		return SentimentNegative
	}
	return SentimentNone
}

// ProseSection is one of the three narrative sections of a beautified JD.
type ProseSection struct {
	Text      string    `json:"text"`
	Sentiment Sentiment `json:"sentiment"`
}

// BeautifiedJD is the polished, presentable rewrite of a job posting.
type BeautifiedJD struct {
	Requirements map[string]string `json:"requirements"`
	TeamContext  ProseSection      `json:"team_context"`
	WorkingVibe  ProseSection      `json:"working_vibe"`
	CultureCheck ProseSection      `json:"culture_check"`
}

// SearchText flattens the beautified JD into one lowercase string for
// keyword exclusion matching.
func (b *BeautifiedJD) SearchText() string {
	if b == nil {
		return ""
	}
	var sb strings.Builder
	for k, v := range b.Requirements {
		sb.WriteString(k)
		sb.WriteString(" ")
		sb.WriteString(v)
		sb.WriteString(" ")
	}
	sb.WriteString(b.TeamContext.Text)
	sb.WriteString(" ")
	sb.WriteString(b.WorkingVibe.Text)
	sb.WriteString(" ")
	sb.WriteString(b.CultureCheck.Text)
	return strings.ToLower(sb.String())
}

// JDFeedbackItem is a single critique note with an optional sentiment.
type JDFeedbackItem struct {
	Note      string    `json:"note"`
	Sentiment Sentiment `json:"sentiment,omitempty"`
}

// JDFeedback is the structured critique driving re-beautification. Keys in
// Requirements refer to requirement fields; keys in Sections are one of
// team_context, working_vibe, culture_check.
type JDFeedback struct {
	Requirements map[string]JDFeedbackItem `json:"requirements,omitempty"`
	Sections     map[string]JDFeedbackItem `json:"sections,omitempty"`
}

// Empty reports whether the feedback carries no critique at all.
func (f *JDFeedback) Empty() bool {
	return f == nil || (len(f.Requirements) == 0 && len(f.Sections) == 0)
}
