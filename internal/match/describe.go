package match

import (
	"fmt"
	"sort"
	"strings"

	"github.com/matchforge/matchforge/internal/store"
	"github.com/matchforge/matchforge/internal/types"
)

// describeRole renders the role side of the scoring prompt.
func describeRole(r *store.Role) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\n", r.Title)
	if r.Location != "" {
		fmt.Fprintf(&sb, "Location: %s\n", r.Location)
	}
	if jd := r.BeautifiedJD; jd != nil {
		if len(jd.Requirements) > 0 {
			sb.WriteString("Requirements:\n")
			for _, k := range sortedKeys(jd.Requirements) {
				fmt.Fprintf(&sb, "- %s: %s\n", k, jd.Requirements[k])
			}
		}
		writeSection(&sb, "Team context", jd.TeamContext)
		writeSection(&sb, "Working vibe", jd.WorkingVibe)
		writeSection(&sb, "Culture check", jd.CultureCheck)
	} else if r.SourceContent != "" {
		fmt.Fprintf(&sb, "Raw posting:\n%s\n", r.SourceContent)
	}
	return sb.String()
}

func writeSection(sb *strings.Builder, label string, s types.ProseSection) {
	if s.Text == "" {
		return
	}
	fmt.Fprintf(sb, "%s (%s): %s\n", label, s.Sentiment, s.Text)
}

func describeWeights(w types.DimensionWeights) string {
	var sb strings.Builder
	for _, d := range types.Dimensions {
		fmt.Fprintf(&sb, "%s: %.1f\n", d, w.Get(d))
	}
	return sb.String()
}

// describeEngineer renders the engineer side of the scoring prompt: DNA,
// summary, questionnaire answers and priority ratings.
func describeEngineer(e *store.Engineer) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Name: %s\n", e.Name)
	if e.DNA != nil {
		fmt.Fprintf(&sb, "Top skills: %s\n", strings.Join(e.DNA.TopSkills, ", "))
		fmt.Fprintf(&sb, "Seniority: %s\n", e.DNA.SenioritySignal)
		fmt.Fprintf(&sb, "Experience: %s\n", e.DNA.YearsExperienceSignal)
	}
	if e.ProfileSummary != nil {
		fmt.Fprintf(&sb, "Snapshot: %s\n", e.ProfileSummary.Snapshot)
		if len(e.ProfileSummary.BestFitSignals) > 0 {
			fmt.Fprintf(&sb, "Best fit: %s\n", strings.Join(e.ProfileSummary.BestFitSignals, "; "))
		}
	}

	writeAnswers(&sb, "Work preferences", e.Questionnaire.WorkPreferences)
	writeAnswers(&sb, "Career growth", e.Questionnaire.CareerGrowth)
	writeAnswers(&sb, "Strengths", e.Questionnaire.Strengths)
	writeAnswers(&sb, "Growth areas", e.Questionnaire.GrowthAreas)
	writeAnswers(&sb, "Deal breakers", e.Questionnaire.DealBreakers)

	p := e.Priorities
	fmt.Fprintf(&sb, "Priorities (1-5): mission=%d technical=%d culture=%d environment=%d\n",
		p.Mission, p.Technical, p.Culture, p.Environment)
	return sb.String()
}

func writeAnswers(sb *strings.Builder, label string, answers types.QuestionnaireSection) {
	if len(answers) == 0 {
		return
	}
	fmt.Fprintf(sb, "%s:\n", label)
	for _, id := range sortedKeys(answers) {
		fmt.Fprintf(sb, "- %s: %s\n", id, answers[id])
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
