package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/forest-guardian/landsat-toa/internal/raster"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	log "github.com/sirupsen/logrus"
)

// PixelValue is one grid cell exported as a point feature.
type PixelValue struct {
	X, Y  int
	Value float64
}

// CollectPixels returns the valid cells of g.
func CollectPixels(g raster.Grid) []PixelValue {
	pixels := make([]PixelValue, 0, g.ValidCount())
	for y := 0; y < g.Rows; y++ {
		for x := 0; x < g.Cols; x++ {
			if v := g.At(y, x); raster.IsValid(v) {
				pixels = append(pixels, PixelValue{X: x, Y: y, Value: v})
			}
		}
	}
	return pixels
}

// PixelsGeoJSON builds a point FeatureCollection in WGS84 from pixels, with the
// cell value stored under property.
func PixelsGeoJSON(pixels []PixelValue, ref raster.SpatialRef, property string) (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	for _, p := range pixels {
		lon, lat, err := ref.PixelToLonLat(p.X, p.Y)
		if err != nil {
			return nil, err
		}
		f := geojson.NewFeature(orb.Point{lon, lat})
		f.Properties["x"] = p.X
		f.Properties["y"] = p.Y
		f.Properties[property] = p.Value
		fc.Append(f)
	}
	return fc, nil
}

// WritePixelsGeoJSON writes PixelsGeoJSON to path.
func WritePixelsGeoJSON(pixels []PixelValue, ref raster.SpatialRef, property, path string) error {
	fc, err := PixelsGeoJSON(pixels, ref, property)
	if err != nil {
		return err
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode GeoJSON: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create output folder: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.WithField("path", path).Infof("GeoJSON created with %d features", len(fc.Features))
	return nil
}
