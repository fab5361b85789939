package raster

import (
	"fmt"
	"math"

	"github.com/airbusgeo/godal"
)

// SpatialRef is what a derived grid needs to be written back as a GeoTIFF:
// the six affine coefficients and the WKT projection.
type SpatialRef struct {
	GeoTransform [6]float64
	Projection   string
}

// PixelToGeo returns the projected coordinates of the centre of pixel (x, y).
func (r SpatialRef) PixelToGeo(x, y int) (float64, float64) {
	gt := r.GeoTransform
	px := float64(x) + 0.5
	py := float64(y) + 0.5
	return gt[0] + gt[1]*px + gt[2]*py, gt[3] + gt[4]*px + gt[5]*py
}

// GeoToPixel maps projected coordinates to the pixel containing them.
// Rotated geotransforms are not supported.
func (r SpatialRef) GeoToPixel(gx, gy float64, rows, cols int) (int, int, error) {
	gt := r.GeoTransform
	if gt[2] != 0 || gt[4] != 0 {
		return 0, 0, fmt.Errorf("rotated geotransform %v is not supported", gt)
	}
	col := int(math.Floor((gx - gt[0]) / gt[1]))
	row := int(math.Floor((gy - gt[3]) / gt[5]))
	if col < 0 || col >= cols || row < 0 || row >= rows {
		return 0, 0, fmt.Errorf("coordinates (%f, %f) are out of bounds for the image", gx, gy)
	}
	return col, row, nil
}

// Window returns the reference of the sub-grid selected by w. A nil window
// returns r unchanged.
func (r SpatialRef) Window(w *Window) SpatialRef {
	if w == nil {
		return r
	}
	gt := r.GeoTransform
	left, top := float64(w.Left), float64(w.Top)
	gt[0] += gt[1]*left + gt[2]*top
	gt[3] += gt[4]*left + gt[5]*top
	return SpatialRef{GeoTransform: gt, Projection: r.Projection}
}

// Bounds returns the projected extent of a rows x cols grid as minX, minY, maxX, maxY.
func (r SpatialRef) Bounds(rows, cols int) [4]float64 {
	gt := r.GeoTransform
	xs := []float64{gt[0], gt[0] + gt[1]*float64(cols), gt[0] + gt[2]*float64(rows), gt[0] + gt[1]*float64(cols) + gt[2]*float64(rows)}
	ys := []float64{gt[3], gt[3] + gt[4]*float64(cols), gt[3] + gt[5]*float64(rows), gt[3] + gt[4]*float64(cols) + gt[5]*float64(rows)}
	b := [4]float64{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	for i := range xs {
		b[0] = math.Min(b[0], xs[i])
		b[1] = math.Min(b[1], ys[i])
		b[2] = math.Max(b[2], xs[i])
		b[3] = math.Max(b[3], ys[i])
	}
	return b
}

// PixelToLonLat reprojects the centre of pixel (x, y) to WGS84.
func (r SpatialRef) PixelToLonLat(x, y int) (lon, lat float64, err error) {
	gx, gy := r.PixelToGeo(x, y)
	if r.Projection == "" {
		return gx, gy, nil
	}

	srcSR, err := godal.NewSpatialRefFromWKT(r.Projection)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse projection: %w", err)
	}
	defer srcSR.Close()
	dstSR, err := godal.NewSpatialRefFromEPSG(4326)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create WGS84 reference: %w", err)
	}
	defer dstSR.Close()
	tr, err := godal.NewTransform(srcSR, dstSR)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create transform: %w", err)
	}
	defer tr.Close()

	xs := []float64{gx}
	ys := []float64{gy}
	if err := tr.TransformEx(xs, ys, nil, nil); err != nil {
		return 0, 0, fmt.Errorf("transform error: %w", err)
	}
	return xs[0], ys[0], nil
}
