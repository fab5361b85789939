package raster

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridFromRows(t *testing.T) {
	g, err := GridFromRows([][]float64{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)
	assert.Equal(t, [2]int{2, 3}, g.Shape())
	assert.Equal(t, 6.0, g.At(1, 2))
	assert.Equal(t, [][]float64{{1, 2, 3}, {4, 5, 6}}, g.Rows2D())

	_, err = GridFromRows([][]float64{{1, 2}, {3}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
	var sm *ShapeMismatchError
	require.ErrorAs(t, err, &sm)
	assert.Equal(t, 1, sm.Index)
}

func TestGridValidAndMinMax(t *testing.T) {
	g, err := GridFromRows([][]float64{{math.NaN(), 2, math.Inf(1)}, {-1, 5, math.NaN()}})
	require.NoError(t, err)

	assert.Equal(t, []float64{2, -1, 5}, g.Valid())
	assert.Equal(t, 3, g.ValidCount())
	mn, mx, ok := g.MinMax()
	assert.True(t, ok)
	assert.Equal(t, -1.0, mn)
	assert.Equal(t, 5.0, mx)

	_, _, ok = NewGrid(2, 2, math.NaN()).MinMax()
	assert.False(t, ok)
}

func TestGridMapDoesNotModifyInput(t *testing.T) {
	g := NewGrid(2, 2, 1)
	doubled := g.Map(func(v float64) float64 { return v * 2 })
	assert.Equal(t, []float64{2, 2, 2, 2}, doubled.Data)
	assert.Equal(t, []float64{1, 1, 1, 1}, g.Data)

	masked := g.MaskWhere(func(i int, _ float64) bool { return i == 0 })
	assert.True(t, math.IsNaN(masked.Data[0]))
	assert.Equal(t, 1.0, g.Data[0])
}

func TestSameShape(t *testing.T) {
	assert.NoError(t, SameShape("op", NewGrid(2, 3, 0), NewGrid(2, 3, 1)))

	err := SameShape("op", NewGrid(2, 3, 0), NewGrid(3, 2, 0))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	assert.Contains(t, err.Error(), "2x3")
}

func TestByteGridFloat(t *testing.T) {
	b := ByteGrid{Rows: 1, Cols: 3, Data: []uint8{0, 10, 255}, Invalid: []bool{false, true, false}}
	f := b.Float()
	assert.Equal(t, 0.0, f.Data[0])
	assert.True(t, math.IsNaN(f.Data[1]))
	assert.Equal(t, 255.0, f.Data[2])
}

func TestParseWindow(t *testing.T) {
	w, err := ParseWindow("")
	require.NoError(t, err)
	assert.Nil(t, w)

	w, err = ParseWindow(" 10:20:5:15 ")
	require.NoError(t, err)
	assert.Equal(t, Window{Top: 10, Bottom: 20, Left: 5, Right: 15}, *w)
	assert.Equal(t, 10, w.Rows())
	assert.Equal(t, 10, w.Cols())
	assert.Equal(t, "10:20:5:15", w.String())

	for _, s := range []string{"1:2:3", "a:2:3:4", "5:5:0:1", "-1:2:0:1"} {
		_, err := ParseWindow(s)
		assert.ErrorIs(t, err, ErrInvalidWindow, s)
	}
}
