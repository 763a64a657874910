package types

import (
	"fmt"
	"math"
)

// Weight sum tolerance: normalized weights must sum to 100 within ±1.
const (
	weightSumTarget    = 100.0
	weightSumTolerance = 1.0
)

// DimensionWeights holds the normalized per-dimension weights for a role.
// Each weight is a float in [0, 100] and the five must sum to 100±1.
type DimensionWeights struct {
	Mission     float64 `json:"mission"`
	Technical   float64 `json:"technical"`
	Culture     float64 `json:"culture"`
	Environment float64 `json:"environment"`
	DNA         float64 `json:"dna"`
}

// RawDimensionWeights is the human-friendly input form: five integers 1-10
// that are normalized into DimensionWeights.
type RawDimensionWeights struct {
	Mission     int `json:"mission" validate:"min=1,max=10"`
	Technical   int `json:"technical" validate:"min=1,max=10"`
	Culture     int `json:"culture" validate:"min=1,max=10"`
	Environment int `json:"environment" validate:"min=1,max=10"`
	DNA         int `json:"dna" validate:"min=1,max=10"`
}

// Get returns the weight for a dimension.
func (w DimensionWeights) Get(d Dimension) float64 {
	switch d {
	case DimensionMission:
		return w.Mission
	case DimensionTechnical:
		return w.Technical
	case DimensionCulture:
		return w.Culture
	case DimensionEnvironment:
		return w.Environment
	case DimensionDNA:
		return w.DNA
	}
	return 0
}

// Sum returns the total of the five weights.
func (w DimensionWeights) Sum() float64 {
	return w.Mission + w.Technical + w.Culture + w.Environment + w.DNA
}

// Validate rejects weight sets whose sum is outside [99, 101] or with any
// negative weight.
func (w DimensionWeights) Validate() error {
	for _, d := range Dimensions {
		if w.Get(d) < 0 {
			return fmt.Errorf("dimension weight %s is negative: %.2f", d, w.Get(d))
		}
	}
	sum := w.Sum()
	if math.Abs(sum-weightSumTarget) > weightSumTolerance {
		return fmt.Errorf("dimension weights must sum to %.0f±%.0f, got %.2f",
			weightSumTarget, weightSumTolerance, sum)
	}
	return nil
}

// Normalize converts raw 1-10 ratings into weights summing to exactly 100.
func (r RawDimensionWeights) Normalize() (DimensionWeights, error) {
	values := []int{r.Mission, r.Technical, r.Culture, r.Environment, r.DNA}
	total := 0
	for i, v := range values {
		if v < 1 || v > 10 {
			return DimensionWeights{}, fmt.Errorf("raw weight for %s must be 1-10, got %d", Dimensions[i], v)
		}
		total += v
	}

	scale := weightSumTarget / float64(total)
	return DimensionWeights{
		Mission:     float64(r.Mission) * scale,
		Technical:   float64(r.Technical) * scale,
		Culture:     float64(r.Culture) * scale,
		Environment: float64(r.Environment) * scale,
		DNA:         float64(r.DNA) * scale,
	}, nil
}
