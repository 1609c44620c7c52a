package utils

import (
	"testing"

	"curbfinder/internal/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twinPeaks = "9q8ytwheyxsh"

func TestCurbScoreCalculator_Score(t *testing.T) {
	calc := NewCurbScoreCalculator(1, 1)

	tests := []struct {
		name        string
		candidate   string
		designation int
		expected    float64
		tolerance   float64
	}{
		{name: "Exact match uses epsilon distance", candidate: twinPeaks, designation: 6, expected: 6 / SelfDistanceKm, tolerance: 1e-6},
		{name: "Civic Center", candidate: "9q8yykvq6nhv", designation: 6, expected: 6 / 5.12, tolerance: 0.01},
		{name: "Tenderloin", candidate: "9q8yyqr3h670", designation: 9, expected: 9 / 5.93, tolerance: 0.01},
		{name: "Zero designation", candidate: "9q8yykvq6nhv", designation: 0, expected: 0, tolerance: 0},
		{name: "Zero designation at exact match", candidate: twinPeaks, designation: 0, expected: 0, tolerance: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := calc.Score(twinPeaks, tt.candidate, tt.designation)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, score, tt.tolerance)
		})
	}
}

func TestCurbScoreCalculator_SelfBeatsAnyOtherPosition(t *testing.T) {
	calc := NewCurbScoreCalculator(1, 1)

	self, err := calc.Score(twinPeaks, twinPeaks, 3)
	require.NoError(t, err)

	// The adjacent full-precision cell is a couple of centimetres away.
	for _, other := range []string{"9q8ytwheyxsk", "9q8ytwheyxs5", "9q8yykvq6nhv"} {
		score, err := calc.Score(twinPeaks, other, 3)
		require.NoError(t, err)
		assert.Greater(t, self, score, "candidate %s", other)
	}
}

func TestCurbScoreCalculator_Weights(t *testing.T) {
	base, err := NewCurbScoreCalculator(1, 1).Score(twinPeaks, "9q8yykvq6nhv", 6)
	require.NoError(t, err)

	designationHeavy, err := NewCurbScoreCalculator(2, 1).Score(twinPeaks, "9q8yykvq6nhv", 6)
	require.NoError(t, err)
	assert.InDelta(t, base*2, designationHeavy, 1e-9)

	distanceHeavy, err := NewCurbScoreCalculator(1, 4).Score(twinPeaks, "9q8yykvq6nhv", 6)
	require.NoError(t, err)
	assert.InDelta(t, base/4, distanceHeavy, 1e-9)
}

func TestNewCurbScoreCalculator_DefaultsWeights(t *testing.T) {
	calc := NewCurbScoreCalculator(0, -1)
	assert.Equal(t, 1.0, calc.DesignationWeight)
	assert.Equal(t, 1.0, calc.DistanceWeight)
}

func TestCurbScoreCalculator_InvalidCandidate(t *testing.T) {
	_, err := NewCurbScoreCalculator(1, 1).Score(twinPeaks, "not-a-geohash", 5)
	assert.ErrorIs(t, err, entities.ErrInvalidPositionCode)
}
