package landsat

import (
	"github.com/forest-guardian/landsat-toa/internal/raster"
)

// DefaultWDRVIAlpha is the NIR weighting of the Wide Dynamic Range Vegetation Index.
const DefaultWDRVIAlpha = 0.2

// Landsat 8 OLI band numbers used by the index products.
const (
	BandBlue = 2
	BandRed  = 4
	BandNIR  = 5
)

// WDRVI computes (alpha*nir - red) / (alpha*nir + red) per cell. Invalid inputs and
// zero denominators give NaN or ±Inf following IEEE arithmetic.
func WDRVI(red, nir raster.Grid, alpha float64) (raster.Grid, error) {
	if err := raster.SameShape("wdrvi", red, nir); err != nil {
		return raster.Grid{}, err
	}
	out := raster.Grid{Rows: red.Rows, Cols: red.Cols, Data: make([]float64, len(red.Data))}
	for i := range out.Data {
		n := alpha * nir.Data[i]
		out.Data[i] = (n - red.Data[i]) / (n + red.Data[i])
	}
	return out, nil
}

// NormalizedDifference computes (a - b) / (a + b) per cell, e.g. NDVI from NIR and red.
func NormalizedDifference(a, b raster.Grid) (raster.Grid, error) {
	return WDRVI(b, a, 1)
}
