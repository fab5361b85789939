package landsat

import (
	"fmt"
	"sort"

	"github.com/forest-guardian/landsat-toa/internal/raster"
	"gonum.org/v1/gonum/stat"
)

// BandSummary describes the valid cells of a reflectance grid.
type BandSummary struct {
	Scene      string  `json:"scene" csv:"scene"`
	Band       int     `json:"band" csv:"band"`
	Rows       int     `json:"rows" csv:"rows"`
	Cols       int     `json:"cols" csv:"cols"`
	ValidCells int     `json:"valid_cells" csv:"valid_cells"`
	Min        float64 `json:"min" csv:"min"`
	Max        float64 `json:"max" csv:"max"`
	Mean       float64 `json:"mean" csv:"mean"`
	StdDev     float64 `json:"std_dev" csv:"std_dev"`
	P95        float64 `json:"p95" csv:"p95"`
	DayOfYear  int     `json:"day_of_year" csv:"day_of_year"`
}

// Summarize computes the descriptive statistics of grid's valid cells.
func Summarize(scene string, band int, grid raster.Grid) (BandSummary, error) {
	values := grid.Valid()
	if len(values) == 0 {
		return BandSummary{}, fmt.Errorf("summarize %s band %d: %w", scene, band, raster.ErrNoValidSamples)
	}
	sort.Float64s(values)
	mean, std := stat.MeanStdDev(values, nil)
	if len(values) == 1 {
		std = 0
	}
	return BandSummary{
		Scene:      scene,
		Band:       band,
		Rows:       grid.Rows,
		Cols:       grid.Cols,
		ValidCells: len(values),
		Min:        values[0],
		Max:        values[len(values)-1],
		Mean:       mean,
		StdDev:     std,
		P95:        stat.Quantile(0.95, stat.LinInterp, values, nil),
	}, nil
}
