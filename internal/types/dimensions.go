// Package types defines the domain objects shared across the matching core:
// extracted profile data, job descriptions, dimension scores and weights,
// matching preferences and contradictions.
package types

import "math"

// Dimension is one of the five fixed axes a role/engineer pair is scored on.
type Dimension string

// The five scoring dimensions. The set is fixed; weights and scores are
// always keyed by all five.
const (
	DimensionMission     Dimension = "mission"
	DimensionTechnical   Dimension = "technical"
	DimensionCulture     Dimension = "culture"
	DimensionEnvironment Dimension = "environment"
	DimensionDNA         Dimension = "dna"
)

// Dimensions lists the five scoring dimensions in canonical order.
var Dimensions = []Dimension{
	DimensionMission,
	DimensionTechnical,
	DimensionCulture,
	DimensionEnvironment,
	DimensionDNA,
}

// DimensionScores holds the per-dimension scores for a match, each 0-100.
type DimensionScores struct {
	Mission     int `json:"mission"`
	Technical   int `json:"technical"`
	Culture     int `json:"culture"`
	Environment int `json:"environment"`
	DNA         int `json:"dna"`
}

// Get returns the score for a dimension.
func (s DimensionScores) Get(d Dimension) int {
	switch d {
	case DimensionMission:
		return s.Mission
	case DimensionTechnical:
		return s.Technical
	case DimensionCulture:
		return s.Culture
	case DimensionEnvironment:
		return s.Environment
	case DimensionDNA:
		return s.DNA
	}
	return 0
}

// Clamp bounds every dimension score to [0, 100].
func (s DimensionScores) Clamp() DimensionScores {
	return DimensionScores{
		Mission:     clampScore(s.Mission),
		Technical:   clampScore(s.Technical),
		Culture:     clampScore(s.Culture),
		Environment: clampScore(s.Environment),
		DNA:         clampScore(s.DNA),
	}
}

// OverallScore computes the weighted overall score,
// round(sum(score_d * weight_d / 100)), for the five fixed dimensions.
func OverallScore(scores DimensionScores, weights DimensionWeights) int {
	total := 0.0
	for _, d := range Dimensions {
		total += float64(scores.Get(d)) * weights.Get(d) / 100.0
	}
	return int(math.Round(total))
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
