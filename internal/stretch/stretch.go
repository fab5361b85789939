// Package stretch rescales reflectance grids to an 8-bit display range.
// Every function is pure: inputs are never modified.
package stretch

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/forest-guardian/landsat-toa/internal/raster"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultScale      = 255
	DefaultPercentile = 95.0
	histogramBins     = 256
)

var (
	ErrScale      = errors.New("scale must be in (0, 255]")
	ErrPercentile = errors.New("percentile must be in [0, 100]")
	ErrGamma      = errors.New("gamma must be positive")
)

// Linear maps the finite values of g onto [0, scale] using their own minimum and
// maximum; the minimum becomes 0 and the maximum becomes scale. Results are
// truncated to 8 bits. A grid whose valid cells are all equal maps to 0.
func Linear(g raster.Grid, scale int) (raster.ByteGrid, error) {
	if scale <= 0 || scale > 255 {
		return raster.ByteGrid{}, fmt.Errorf("%w: %d", ErrScale, scale)
	}
	mn, mx, ok := g.MinMax()
	if !ok {
		return raster.ByteGrid{}, fmt.Errorf("linear stretch: %w", raster.ErrNoValidSamples)
	}
	return linear(g, mn, mx, scale), nil
}

func linear(g raster.Grid, mn, mx float64, scale int) raster.ByteGrid {
	out := raster.ByteGrid{
		Rows:    g.Rows,
		Cols:    g.Cols,
		Data:    make([]uint8, len(g.Data)),
		Invalid: make([]bool, len(g.Data)),
	}
	span := mx - mn
	for i, v := range g.Data {
		if !raster.IsValid(v) {
			out.Invalid[i] = true
			continue
		}
		if span == 0 {
			continue
		}
		t := (v - mn) / span
		out.Data[i] = uint8(math.Min(t*float64(scale), float64(scale)))
	}
	return out
}

// Percentile clips values above the p-th percentile of the valid cells to that
// percentile, then applies Linear. p = 100 is the same as Linear.
func Percentile(g raster.Grid, p float64, scale int) (raster.ByteGrid, error) {
	if p < 0 || p > 100 || math.IsNaN(p) {
		return raster.ByteGrid{}, fmt.Errorf("%w: %v", ErrPercentile, p)
	}
	if scale <= 0 || scale > 255 {
		return raster.ByteGrid{}, fmt.Errorf("%w: %d", ErrScale, scale)
	}
	values := g.Valid()
	if len(values) == 0 {
		return raster.ByteGrid{}, fmt.Errorf("percentile stretch: %w", raster.ErrNoValidSamples)
	}
	sort.Float64s(values)
	limit := quantile(values, p/100)

	clipped := g.Map(func(v float64) float64 {
		if !raster.IsValid(v) {
			return v
		}
		if v > limit {
			return limit
		}
		return v
	})
	return linear(clipped, values[0], limit, scale), nil
}

// quantile interpolates linearly between the closest ranks of sorted values.
func quantile(sorted []float64, q float64) float64 {
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	return stat.Quantile(q, stat.LinInterp, sorted, nil)
}

// HistogramEqualize builds a 256-bin histogram of the valid values over [0, 256]
// and remaps every cell through the cumulative distribution, interpolating
// linearly between bin lower edges. Values below 0 or above 255 take the end
// values of the lookup table; non-finite cells are returned unchanged.
func HistogramEqualize(g raster.Grid) (raster.Grid, error) {
	counts := make([]float64, histogramBins)
	for _, v := range g.Data {
		if !raster.IsValid(v) || v < 0 || v > histogramBins {
			continue
		}
		bin := int(v)
		if bin == histogramBins {
			bin = histogramBins - 1
		}
		counts[bin]++
	}
	cdf := make([]float64, histogramBins)
	floats.CumSum(cdf, counts)
	total := cdf[histogramBins-1]
	if total == 0 {
		return raster.Grid{}, fmt.Errorf("histogram equalization: %w in [0, 256]", raster.ErrNoValidSamples)
	}
	lut := make([]float64, histogramBins)
	for i, c := range cdf {
		lut[i] = 255 * c / total
	}

	return g.Map(func(v float64) float64 {
		if !raster.IsValid(v) {
			return v
		}
		return interpolate(v, lut)
	}), nil
}

// Equalize stretches g linearly onto [0, scale] and then equalizes the 8-bit
// values, so reflectance in any range spreads over the full histogram.
func Equalize(g raster.Grid, scale int) (raster.ByteGrid, error) {
	b, err := Linear(g, scale)
	if err != nil {
		return raster.ByteGrid{}, err
	}
	eq, err := HistogramEqualize(b.Float())
	if err != nil {
		return raster.ByteGrid{}, err
	}
	out := raster.ByteGrid{Rows: b.Rows, Cols: b.Cols, Data: make([]uint8, len(b.Data)), Invalid: b.Invalid}
	for i, v := range eq.Data {
		if out.Invalid[i] {
			continue
		}
		out.Data[i] = uint8(math.Round(math.Min(v, 255)))
	}
	return out, nil
}

// interpolate evaluates the piecewise linear function through (i, lut[i]).
func interpolate(x float64, lut []float64) float64 {
	last := len(lut) - 1
	if x <= 0 {
		return lut[0]
	}
	if x >= float64(last) {
		return lut[last]
	}
	i := int(x)
	frac := x - float64(i)
	return lut[i] + frac*(lut[i+1]-lut[i])
}

// GammaTable returns the 256-entry lookup table 255*(i/255)^(1/gamma).
func GammaTable(gamma float64) ([256]uint8, error) {
	var lut [256]uint8
	if !(gamma > 0) || math.IsInf(gamma, 0) {
		return lut, fmt.Errorf("%w: %v", ErrGamma, gamma)
	}
	inv := 1 / gamma
	for i := range lut {
		lut[i] = uint8(math.Round(255 * math.Pow(float64(i)/255, inv)))
	}
	return lut, nil
}

// Gamma applies GammaTable to an 8-bit grid.
func Gamma(b raster.ByteGrid, gamma float64) (raster.ByteGrid, error) {
	lut, err := GammaTable(gamma)
	if err != nil {
		return raster.ByteGrid{}, err
	}
	out := raster.ByteGrid{Rows: b.Rows, Cols: b.Cols, Data: make([]uint8, len(b.Data))}
	if b.Invalid != nil {
		out.Invalid = make([]bool, len(b.Invalid))
		copy(out.Invalid, b.Invalid)
	}
	for i, v := range b.Data {
		if out.Invalid != nil && out.Invalid[i] {
			continue
		}
		out.Data[i] = lut[v]
	}
	return out, nil
}
