package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDimensionWeights_Validate_AcceptsExactSum(t *testing.T) {
	w := DimensionWeights{Mission: 20, Technical: 30, Culture: 20, Environment: 15, DNA: 15}
	assert.NoError(t, w.Validate())
}

func TestDimensionWeights_Validate_RejectsOverweight(t *testing.T) {
	w := DimensionWeights{Mission: 50, Technical: 50, Culture: 30, Environment: 10, DNA: 10}
	err := w.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sum")
}

func TestDimensionWeights_Validate_Tolerance(t *testing.T) {
	// 100±1 is accepted, anything further out is not.
	w := DimensionWeights{Mission: 20.5, Technical: 30, Culture: 20, Environment: 15, DNA: 15}
	assert.NoError(t, w.Validate()) // sum 100.5

	w.Mission = 22
	assert.Error(t, w.Validate()) // sum 102
}

func TestDimensionWeights_Validate_RejectsNegative(t *testing.T) {
	w := DimensionWeights{Mission: -5, Technical: 55, Culture: 20, Environment: 15, DNA: 15}
	assert.Error(t, w.Validate())
}

func TestRawDimensionWeights_Normalize(t *testing.T) {
	raw := RawDimensionWeights{Mission: 2, Technical: 3, Culture: 2, Environment: 2, DNA: 1}
	w, err := raw.Normalize()
	require.NoError(t, err)
	assert.InDelta(t, 100.0, w.Sum(), 0.001)
	assert.InDelta(t, 20.0, w.Mission, 0.001)
	assert.InDelta(t, 30.0, w.Technical, 0.001)
	assert.NoError(t, w.Validate())
}

func TestRawDimensionWeights_Normalize_RejectsOutOfRange(t *testing.T) {
	raw := RawDimensionWeights{Mission: 0, Technical: 3, Culture: 2, Environment: 2, DNA: 1}
	_, err := raw.Normalize()
	assert.Error(t, err)

	raw = RawDimensionWeights{Mission: 11, Technical: 3, Culture: 2, Environment: 2, DNA: 1}
	_, err = raw.Normalize()
	assert.Error(t, err)
}

func TestOverallScore(t *testing.T) {
	weights := DimensionWeights{Mission: 20, Technical: 30, Culture: 20, Environment: 15, DNA: 15}
	scores := DimensionScores{Mission: 80, Technical: 90, Culture: 70, Environment: 60, DNA: 50}

	// 80*0.2 + 90*0.3 + 70*0.2 + 60*0.15 + 50*0.15 = 16+27+14+9+7.5 = 73.5 → 74
	assert.Equal(t, 74, OverallScore(scores, weights))
}

func TestOverallScore_Extremes(t *testing.T) {
	weights := DimensionWeights{Mission: 20, Technical: 20, Culture: 20, Environment: 20, DNA: 20}

	assert.Equal(t, 0, OverallScore(DimensionScores{}, weights))
	assert.Equal(t, 100, OverallScore(DimensionScores{Mission: 100, Technical: 100, Culture: 100, Environment: 100, DNA: 100}, weights))
}

func TestDimensionScores_Clamp(t *testing.T) {
	s := DimensionScores{Mission: -10, Technical: 150, Culture: 50, Environment: 0, DNA: 100}
	clamped := s.Clamp()
	assert.Equal(t, 0, clamped.Mission)
	assert.Equal(t, 100, clamped.Technical)
	assert.Equal(t, 50, clamped.Culture)
	assert.Equal(t, 100, clamped.DNA)
}
