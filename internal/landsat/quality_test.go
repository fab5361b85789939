package landsat

import (
	"math"
	"testing"

	"github.com/forest-guardian/landsat-toa/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQAScore(t *testing.T) {
	tests := []struct {
		code   uint16
		cloud  Confidence
		cirrus Confidence
		score  int
	}{
		{0, ConfidenceNone, ConfidenceNone, 0},
		{2720, ConfidenceNone, ConfidenceNone, 0},
		{0b0100000000000000, ConfidenceLow, ConfidenceNone, 1},
		{0b0001000000000000, ConfidenceNone, ConfidenceLow, 1},
		{0b1010000000000000, ConfidenceMedium, ConfidenceMedium, 4},
		{53248, ConfidenceHigh, ConfidenceLow, 4},
		{0xFFFF, ConfidenceHigh, ConfidenceHigh, 6},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.cloud, CloudConfidenceOf(tt.code), "cloud of %016b", tt.code)
		assert.Equal(t, tt.cirrus, CirrusConfidenceOf(tt.code), "cirrus of %016b", tt.code)
		assert.Equal(t, tt.score, QAScore(tt.code), "score of %016b", tt.code)
	}
}

func TestQAScoreRange(t *testing.T) {
	for code := 0; code <= math.MaxUint16; code += 97 {
		score := QAScore(uint16(code))
		assert.GreaterOrEqual(t, score, 0)
		assert.LessOrEqual(t, score, MaxQAScore)
	}
}

func TestMaskPolicies(t *testing.T) {
	low := uint16(0b0100000000000000)   // score 1
	mixed := uint16(0b0110000000000000) // cloud 1, cirrus 2, score 3
	high := uint16(0b1100000000000000)  // cloud 3, score 3

	assert.False(t, DefaultMaskPolicy.Masked(low))
	assert.True(t, DefaultMaskPolicy.Masked(mixed))
	assert.True(t, DefaultMaskPolicy.Masked(high))

	cloud := CloudConfidence{Min: ConfidenceMedium}
	assert.False(t, cloud.Masked(low))
	assert.False(t, cloud.Masked(mixed))
	assert.True(t, cloud.Masked(high))

	assert.Equal(t, "score>2", DefaultMaskPolicy.String())
	assert.Equal(t, "cloud>=medium", cloud.String())
}

func TestCloudFilter(t *testing.T) {
	grid, err := raster.GridFromRows([][]float64{{1, 2}, {3, math.NaN()}})
	require.NoError(t, err)
	q := QualityCodes{Rows: 2, Cols: 2, Codes: []uint16{0, 0xFFFF, 0b0100000000000000, 0}}

	filtered, err := CloudFilter(grid, q, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, filtered.Data[0])
	assert.True(t, math.IsNaN(filtered.Data[1]))
	assert.Equal(t, 3.0, filtered.Data[2])
	assert.True(t, math.IsNaN(filtered.Data[3]))
	assert.Equal(t, 2.0, grid.Data[1])

	masked := MaskedCells(q, nil)
	assert.Equal(t, 0.0, masked.Data[0])
	assert.True(t, math.IsNaN(masked.Data[1]))

	assert.Equal(t, []int{0, 6, 1, 0}, q.Scores().Data)

	_, err = CloudFilter(raster.NewGrid(3, 2, 1), q, nil)
	assert.ErrorIs(t, err, raster.ErrShapeMismatch)
}
