package types

import "strings"

// HighlightTopic tags a crawl highlight with the theme it evidences.
type HighlightTopic string

// Highlight topics assigned during company crawl synthesis.
const (
	TopicCulture HighlightTopic = "culture"
	TopicValues  HighlightTopic = "values"
	TopicTeam    HighlightTopic = "team"
	TopicHiring  HighlightTopic = "hiring"
	TopicMission HighlightTopic = "mission"
	TopicProduct HighlightTopic = "product"
	TopicTech    HighlightTopic = "tech"
)

// Highlight is a single crawl-derived statement about a company.
type Highlight struct {
	Topic HighlightTopic `json:"topic"`
	Text  string         `json:"text"`
}

// CrawlData is the raw synthesis persisted after a company crawl.
type CrawlData struct {
	Synthesis  string      `json:"synthesis"`
	Highlights []Highlight `json:"highlights"`
}

// HighlightsForTopics returns the highlights whose topic is in the given set.
func (c *CrawlData) HighlightsForTopics(topics []HighlightTopic) []Highlight {
	if c == nil || len(topics) == 0 {
		return nil
	}
	want := make(map[HighlightTopic]bool, len(topics))
	for _, t := range topics {
		want[t] = true
	}
	var out []Highlight
	for _, h := range c.Highlights {
		if want[HighlightTopic(strings.ToLower(string(h.Topic)))] {
			out = append(out, h)
		}
	}
	return out
}

// CompanyDNA is the structured company summary extracted from crawled pages.
type CompanyDNA struct {
	Summary   string   `json:"summary"`
	Mission   string   `json:"mission"`
	Values    []string `json:"values"`
	TechStack []string `json:"tech_stack"`
}

// CompanyQuestionnaire holds the four company sections.
type CompanyQuestionnaire struct {
	Culture      QuestionnaireSection `json:"culture"`
	Mission      QuestionnaireSection `json:"mission"`
	TeamDynamics QuestionnaireSection `json:"team_dynamics"`
	Technical    QuestionnaireSection `json:"technical"`
}

// Section returns the named section, or nil for unknown names.
func (q *CompanyQuestionnaire) Section(name string) QuestionnaireSection {
	switch name {
	case "culture":
		return q.Culture
	case "mission":
		return q.Mission
	case "team_dynamics":
		return q.TeamDynamics
	case "technical":
		return q.Technical
	}
	return nil
}

// SetSection replaces the named section, reporting whether the name is known.
func (q *CompanyQuestionnaire) SetSection(name string, answers QuestionnaireSection) bool {
	switch name {
	case "culture":
		q.Culture = answers
	case "mission":
		q.Mission = answers
	case "team_dynamics":
		q.TeamDynamics = answers
	case "technical":
		q.Technical = answers
	default:
		return false
	}
	return true
}

// DiscoveredRole is a candidate job posting found on crawled career pages.
type DiscoveredRole struct {
	URL            string  `json:"url"`
	Title          string  `json:"title"`
	RawText        string  `json:"raw_text"`
	SourcePlatform string  `json:"source_platform"`
	Confidence     float64 `json:"confidence"` // 0-1
}
