package stats

import (
	"math/rand"
	"sort"

	"github.com/forest-guardian/landsat-toa/internal/raster"
	"gonum.org/v1/gonum/stat"
)

// Scale standardizes the valid cells of g to zero mean and unit (population)
// standard deviation. Invalid cells stay NaN. A constant grid maps to zeros.
func Scale(g raster.Grid) raster.Grid {
	values := g.Valid()
	if len(values) == 0 {
		return g.Clone()
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if std == 0 {
		std = 1
	}
	return g.Map(func(v float64) float64 {
		if !raster.IsValid(v) {
			return v
		}
		return (v - mean) / std
	})
}

// ValueCount is the number of cells holding one 8-bit value.
type ValueCount struct {
	Value uint8 `csv:"value"`
	Count int   `csv:"count"`
}

// FrequencyCount counts the valid values of an 8-bit grid. The result lists only
// values that occur, ordered by ascending count (ties by value).
func FrequencyCount(b raster.ByteGrid) []ValueCount {
	var counts [256]int
	for i, v := range b.Data {
		if b.Invalid != nil && b.Invalid[i] {
			continue
		}
		counts[v]++
	}
	result := make([]ValueCount, 0, 256)
	for v, c := range counts {
		if c > 0 {
			result = append(result, ValueCount{Value: uint8(v), Count: c})
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count < result[j].Count
	})
	return result
}

// Subsample draws n values without replacement. It returns values unchanged when
// n <= 0 or n >= len(values).
func Subsample(values []float64, n int, seed int64) []float64 {
	if n <= 0 || n >= len(values) {
		return values
	}
	rng := rand.New(rand.NewSource(seed))
	idx := rng.Perm(len(values))[:n]
	out := make([]float64, n)
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}

// TwoStepSample splits the grid extent into step[0] x step[1] blocks and draws
// total/blocks random cells from each complete block (with replacement). A draw
// is kept only when every grid is valid there. Each sample holds one value per grid.
func TwoStepSample(grids []raster.Grid, total int, step [2]int, seed int64) ([][]float64, error) {
	if len(grids) == 0 || step[0] <= 0 || step[1] <= 0 {
		return nil, nil
	}
	for _, g := range grids[1:] {
		if err := raster.SameShape("two step sample", grids[0], g); err != nil {
			return nil, err
		}
	}
	rows, cols := grids[0].Rows, grids[0].Cols
	blocks := (rows / step[0]) * (cols / step[1])
	if blocks == 0 {
		return nil, nil
	}
	perBlock := total / blocks
	rng := rand.New(rand.NewSource(seed))

	var samples [][]float64
	for top := 0; top+step[0] <= rows; top += step[0] {
		for left := 0; left+step[1] <= cols; left += step[1] {
			for n := 0; n < perBlock; n++ {
				r := top + rng.Intn(step[0])
				c := left + rng.Intn(step[1])
				sample := make([]float64, len(grids))
				ok := true
				for b, g := range grids {
					v := g.At(r, c)
					if !raster.IsValid(v) {
						ok = false
						break
					}
					sample[b] = v
				}
				if ok {
					samples = append(samples, sample)
				}
			}
		}
	}
	return samples, nil
}
