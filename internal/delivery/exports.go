package delivery

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/forest-guardian/landsat-toa/internal/landsat"
	"github.com/forest-guardian/landsat-toa/internal/raster"
	"github.com/forest-guardian/landsat-toa/internal/stats"
	"github.com/forest-guardian/landsat-toa/internal/stretch"
	"github.com/forest-guardian/landsat-toa/output"
)

// Sampling of a band for density plots.
const (
	DensitySamples = 10000
	densityBlock   = 100
)

// WriteFrequencies stretches grid to 8 bits and writes its value counts as CSV.
func WriteFrequencies(grid raster.Grid, path string) ([]stats.ValueCount, error) {
	stretched, err := stretch.Linear(grid, stretch.DefaultScale)
	if err != nil {
		return nil, err
	}
	counts := stats.FrequencyCount(stretched)
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create output folder: %w", err)
	}
	if err := writeCSV(path, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// WriteSummaries writes band summaries as CSV.
func WriteSummaries(summaries []landsat.BandSummary, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create output folder: %w", err)
	}
	return writeCSV(path, &summaries)
}

// SampleValues draws up to DensitySamples valid values of grid, spread over
// blocks of the extent. Grids smaller than one block fall back to a uniform
// subsample.
func SampleValues(grid raster.Grid, seed int64) ([]float64, error) {
	step := [2]int{min(densityBlock, grid.Rows), min(densityBlock, grid.Cols)}
	samples, err := stats.TwoStepSample([]raster.Grid{grid}, DensitySamples, step, seed)
	if err != nil {
		return nil, err
	}
	values := make([]float64, len(samples))
	for i, s := range samples {
		values[i] = s[0]
	}
	if len(values) < 2 {
		values = stats.Subsample(grid.Valid(), DensitySamples, seed)
	}
	return values, nil
}

// DensityPlot samples grid and saves its kernel density.
func DensityPlot(grid raster.Grid, title, path string) error {
	values, err := SampleValues(grid, stats.DefaultSeed)
	if err != nil {
		return err
	}
	return output.DensityPlot(values, title, "Reflectance", path)
}
