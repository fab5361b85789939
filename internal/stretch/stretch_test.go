package stretch

import (
	"math"
	"testing"

	"github.com/forest-guardian/landsat-toa/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grid(t *testing.T, rows [][]float64) raster.Grid {
	t.Helper()
	g, err := raster.GridFromRows(rows)
	require.NoError(t, err)
	return g
}

func TestLinear(t *testing.T) {
	g := grid(t, [][]float64{{0.1, 0.35}, {0.6, math.NaN()}})

	b, err := Linear(g, DefaultScale)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), b.Data[0])
	assert.Equal(t, uint8(127), b.Data[1])
	assert.Equal(t, uint8(255), b.Data[2])
	assert.Equal(t, []bool{false, false, false, true}, b.Invalid)
	assert.True(t, math.IsNaN(g.Data[3]))

	b, err = Linear(g, 100)
	require.NoError(t, err)
	assert.Equal(t, uint8(100), b.Data[2])
}

func TestLinearConstantGrid(t *testing.T) {
	b, err := Linear(raster.NewGrid(2, 2, 0.4), DefaultScale)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 0, 0, 0}, b.Data)
}

func TestLinearErrors(t *testing.T) {
	_, err := Linear(raster.NewGrid(1, 1, 1), 0)
	assert.ErrorIs(t, err, ErrScale)
	_, err = Linear(raster.NewGrid(1, 1, 1), 256)
	assert.ErrorIs(t, err, ErrScale)
	_, err = Linear(raster.NewGrid(2, 2, math.NaN()), DefaultScale)
	assert.ErrorIs(t, err, raster.ErrNoValidSamples)
}

func TestPercentile(t *testing.T) {
	g := grid(t, [][]float64{{0, 1, 2, 3, 4, 5, 6, 7, 8, 100}})

	full, err := Percentile(g, 100, DefaultScale)
	require.NoError(t, err)
	linear, err := Linear(g, DefaultScale)
	require.NoError(t, err)
	assert.Equal(t, linear, full)

	clipped, err := Percentile(g, 80, DefaultScale)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), clipped.Data[0])
	assert.Equal(t, uint8(255), clipped.Data[9])
	// the outlier no longer compresses the rest of the range
	assert.Greater(t, clipped.Data[5], linear.Data[5])

	_, err = Percentile(g, 101, DefaultScale)
	assert.ErrorIs(t, err, ErrPercentile)
	_, err = Percentile(g, -1, DefaultScale)
	assert.ErrorIs(t, err, ErrPercentile)
}

func TestStretchesKeepInfiniteCellsInvalid(t *testing.T) {
	g := grid(t, [][]float64{{0, 1, math.Inf(1)}, {0.5, math.Inf(-1), math.NaN()}})

	linear, err := Linear(g, DefaultScale)
	require.NoError(t, err)
	full, err := Percentile(g, 100, DefaultScale)
	require.NoError(t, err)
	assert.Equal(t, linear, full)
	assert.Equal(t, []bool{false, false, true, false, true, true}, full.Invalid)

	clipped, err := Percentile(g, 50, DefaultScale)
	require.NoError(t, err)
	assert.True(t, clipped.Invalid[2])
	assert.Equal(t, uint8(0), clipped.Data[2])

	eq, err := HistogramEqualize(g)
	require.NoError(t, err)
	assert.True(t, math.IsInf(eq.Data[2], 1))
	assert.True(t, math.IsInf(eq.Data[4], -1))
}

func TestEqualizeReflectance(t *testing.T) {
	g := grid(t, [][]float64{{0.05, 0.1, 0.2}, {0.35, 0.5, math.NaN()}})

	b, err := Equalize(g, DefaultScale)
	require.NoError(t, err)
	assert.Equal(t, []uint8{51, 102, 153, 204, 255, 0}, b.Data)
	assert.Equal(t, []bool{false, false, false, false, false, true}, b.Invalid)

	_, err = Equalize(raster.NewGrid(1, 1, math.NaN()), DefaultScale)
	assert.ErrorIs(t, err, raster.ErrNoValidSamples)
}

func TestHistogramEqualize(t *testing.T) {
	g := grid(t, [][]float64{{0, 0, 1, 1}, {0.5, -3, 300, math.NaN()}})

	eq, err := HistogramEqualize(g)
	require.NoError(t, err)
	// bin 0 holds 3 of the 5 in-range values, bin 1 the other 2
	assert.InDelta(t, 153, eq.Data[0], 1e-9)
	assert.InDelta(t, 204, eq.Data[4], 1e-9)
	assert.InDelta(t, 255, eq.Data[2], 1e-9)
	assert.InDelta(t, eq.Data[0], eq.Data[5], 1e-9)
	assert.InDelta(t, 255, eq.Data[6], 1e-9)
	assert.True(t, math.IsNaN(eq.Data[7]))
	assert.Greater(t, eq.Data[4], eq.Data[0])
	assert.Less(t, eq.Data[4], eq.Data[2])

	_, err = HistogramEqualize(raster.NewGrid(1, 2, -1))
	assert.ErrorIs(t, err, raster.ErrNoValidSamples)
}

func TestGamma(t *testing.T) {
	identity, err := GammaTable(1)
	require.NoError(t, err)
	for i, v := range identity {
		assert.Equal(t, uint8(i), v)
	}

	lut, err := GammaTable(2)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), lut[0])
	assert.Equal(t, uint8(128), lut[64])
	assert.Equal(t, uint8(255), lut[255])

	b := raster.ByteGrid{Rows: 1, Cols: 2, Data: []uint8{64, 64}, Invalid: []bool{false, true}}
	out, err := Gamma(b, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint8{128, 0}, out.Data)
	assert.Equal(t, []bool{false, true}, out.Invalid)
	assert.Equal(t, uint8(64), b.Data[0])

	for _, g := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := GammaTable(g)
		assert.ErrorIs(t, err, ErrGamma)
	}
}
