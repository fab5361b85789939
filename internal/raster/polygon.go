package raster

import (
	"errors"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"gonum.org/v1/gonum/floats"
)

var ErrNoPolygon = errors.New("no polygon feature found")

// LoadPolygon returns the first polygon (or multipolygon) feature of a GeoJSON file.
// If property is not empty, only features whose property value equals want are considered.
func LoadPolygon(path, property, want string) (orb.MultiPolygon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &NotFoundError{Path: path, Err: err}
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode GeoJSON %s: %w", path, err)
	}

	for _, feature := range fc.Features {
		if property != "" && fmt.Sprint(feature.Properties[property]) != want {
			continue
		}
		switch g := feature.Geometry.(type) {
		case orb.Polygon:
			return orb.MultiPolygon{g}, nil
		case orb.MultiPolygon:
			return g, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", path, ErrNoPolygon)
}

// ClipToPolygon returns a copy of grid where every cell whose centre lies
// outside polygon is NaN. The polygon must be expressed in the grid's projected
// coordinates.
func ClipToPolygon(grid Grid, ref SpatialRef, polygon orb.MultiPolygon) Grid {
	bound := polygon.Bound()
	return grid.MaskWhere(func(i int, _ float64) bool {
		gx, gy := ref.PixelToGeo(i%grid.Cols, i/grid.Cols)
		point := orb.Point{gx, gy}
		return !bound.Contains(point) || !planar.MultiPolygonContains(polygon, point)
	})
}

// PolygonMean averages the valid cells whose centre lies inside polygon. It
// returns the mean and the number of cells that contributed.
func PolygonMean(grid Grid, ref SpatialRef, polygon orb.MultiPolygon) (float64, int, error) {
	values := ClipToPolygon(grid, ref, polygon).Valid()
	if len(values) == 0 {
		return 0, 0, fmt.Errorf("polygon mean: %w", ErrNoValidSamples)
	}
	return floats.Sum(values) / float64(len(values)), len(values), nil
}
