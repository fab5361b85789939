package stats

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/forest-guardian/landsat-toa/internal/raster"
	"gonum.org/v1/gonum/floats"
)

const (
	DefaultSeed   = 1332
	maxIterations = 300
	tolerance     = 1e-4
	minEstimatedK = 3
	maxEstimatedK = 9
)

var ErrClusterCount = errors.New("invalid cluster count")

// Clusters is the result of KMeans over a band stack.
type Clusters struct {
	Centers [][]float64
	// Labels holds the cluster index of every cell valid in all bands and NaN elsewhere.
	Labels  raster.Grid
	Inertia float64
}

// stack returns one feature row per cell that is valid in every grid, and the
// cell index of each row.
func stack(grids []raster.Grid) ([][]float64, []int, error) {
	if len(grids) == 0 {
		return nil, nil, fmt.Errorf("%w: no bands", ErrClusterCount)
	}
	for _, g := range grids[1:] {
		if err := raster.SameShape("kmeans", grids[0], g); err != nil {
			return nil, nil, err
		}
	}
	var rows [][]float64
	var cells []int
	for i := range grids[0].Data {
		row := make([]float64, len(grids))
		ok := true
		for b, g := range grids {
			if !raster.IsValid(g.Data[i]) {
				ok = false
				break
			}
			row[b] = g.Data[i]
		}
		if ok {
			rows = append(rows, row)
			cells = append(cells, i)
		}
	}
	return rows, cells, nil
}

// KMeans clusters the cells of a band stack into k groups with Lloyd's algorithm
// seeded by k-means++. Only cells valid in every band take part.
func KMeans(grids []raster.Grid, k int, seed int64) (Clusters, error) {
	x, cells, err := stack(grids)
	if err != nil {
		return Clusters{}, err
	}
	centers, labels, inertia, err := lloyd(x, k, seed)
	if err != nil {
		return Clusters{}, err
	}
	out := raster.NewGrid(grids[0].Rows, grids[0].Cols, math.NaN())
	for i, cell := range cells {
		out.Data[cell] = float64(labels[i])
	}
	return Clusters{Centers: centers, Labels: out, Inertia: inertia}, nil
}

// EstimateK picks the k in [3, 9] with the largest Calinski-Harabasz statistic.
func EstimateK(grids []raster.Grid, seed int64) (int, error) {
	x, _, err := stack(grids)
	if err != nil {
		return 0, err
	}
	return estimateK(x, seed)
}

func estimateK(x [][]float64, seed int64) (int, error) {
	n := len(x)
	if n <= minEstimatedK {
		return 0, fmt.Errorf("%w: %d samples are too few to estimate k", ErrClusterCount, n)
	}
	_, _, total, err := lloyd(x, 1, seed)
	if err != nil {
		return 0, err
	}

	bestK, bestCH := 0, math.Inf(-1)
	for k := minEstimatedK; k <= maxEstimatedK && k < n; k++ {
		_, _, within, err := lloyd(x, k, seed)
		if err != nil {
			return 0, err
		}
		ch := ((total - within) / float64(k-1)) / (within / float64(n-k))
		if ch > bestCH {
			bestK, bestCH = k, ch
		}
	}
	// identical samples give 0/0 for every k
	if bestK == 0 {
		bestK = minEstimatedK
	}
	return bestK, nil
}

func lloyd(x [][]float64, k int, seed int64) ([][]float64, []int, float64, error) {
	n := len(x)
	if k < 1 || k > n {
		return nil, nil, 0, fmt.Errorf("%w: k=%d with %d samples", ErrClusterCount, k, n)
	}
	rng := rand.New(rand.NewSource(seed))
	centers := initCenters(x, k, rng)
	labels := make([]int, n)
	dim := len(x[0])

	for iter := 0; iter < maxIterations; iter++ {
		for i, row := range x {
			labels[i], _ = nearest(row, centers)
		}

		next := make([][]float64, k)
		counts := make([]int, k)
		for c := range next {
			next[c] = make([]float64, dim)
		}
		for i, row := range x {
			floats.Add(next[labels[i]], row)
			counts[labels[i]]++
		}
		for c := range next {
			if counts[c] > 0 {
				floats.Scale(1/float64(counts[c]), next[c])
			}
		}
		reseedEmpty(x, next, counts)

		shift := 0.0
		for c := range centers {
			shift += sq(floats.Distance(centers[c], next[c], 2))
		}
		centers = next
		if shift <= tolerance*tolerance {
			break
		}
	}

	inertia := 0.0
	for i, row := range x {
		var d float64
		labels[i], d = nearest(row, centers)
		inertia += d
	}
	return centers, labels, inertia, nil
}

// initCenters is k-means++ seeding.
func initCenters(x [][]float64, k int, rng *rand.Rand) [][]float64 {
	centers := make([][]float64, 0, k)
	centers = append(centers, clone(x[rng.Intn(len(x))]))
	dist := make([]float64, len(x))
	for len(centers) < k {
		sum := 0.0
		for i, row := range x {
			_, dist[i] = nearest(row, centers)
			sum += dist[i]
		}
		if sum == 0 {
			centers = append(centers, clone(x[rng.Intn(len(x))]))
			continue
		}
		target := rng.Float64() * sum
		idx := len(x) - 1
		for i, d := range dist {
			target -= d
			if target <= 0 {
				idx = i
				break
			}
		}
		centers = append(centers, clone(x[idx]))
	}
	return centers
}

// nearest returns the closest center and the squared distance to it.
func nearest(row []float64, centers [][]float64) (int, float64) {
	best, bestDist := 0, math.Inf(1)
	for c, center := range centers {
		d := sq(floats.Distance(row, center, 2))
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist
}

// reseedEmpty moves each empty cluster to the sample farthest from the
// clusters placed so far, so several empty clusters land on distinct samples.
func reseedEmpty(x, centers [][]float64, counts []int) {
	placed := make([][]float64, 0, len(centers))
	for c, n := range counts {
		if n > 0 {
			placed = append(placed, centers[c])
		}
	}
	for c, n := range counts {
		if n > 0 {
			continue
		}
		if len(placed) == 0 {
			copy(centers[c], x[0])
		} else {
			copy(centers[c], farthest(x, placed))
		}
		placed = append(placed, centers[c])
	}
}

func farthest(x [][]float64, centers [][]float64) []float64 {
	idx, far := 0, -1.0
	for i, row := range x {
		if _, d := nearest(row, centers); d > far {
			idx, far = i, d
		}
	}
	return x[idx]
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

func sq(v float64) float64 {
	return v * v
}
