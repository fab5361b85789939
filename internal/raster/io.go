package raster

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/airbusgeo/godal"
)

// Window is a half-open pixel sub-window: rows [Top, Bottom), columns [Left, Right).
// Readers take a *Window; nil selects the full raster.
type Window struct {
	Top    int
	Bottom int
	Left   int
	Right  int
}

func (w Window) Rows() int { return w.Bottom - w.Top }
func (w Window) Cols() int { return w.Right - w.Left }

func (w Window) String() string {
	return fmt.Sprintf("%d:%d:%d:%d", w.Top, w.Bottom, w.Left, w.Right)
}

// ParseWindow reads "top:bottom:left:right". An empty string selects the full
// raster and returns nil.
func ParseWindow(s string) (*Window, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return nil, fmt.Errorf("%w: %q is not top:bottom:left:right", ErrInvalidWindow, s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidWindow, s, err)
		}
		v[i] = n
	}
	w := &Window{Top: v[0], Bottom: v[1], Left: v[2], Right: v[3]}
	if w.Top < 0 || w.Left < 0 || w.Top >= w.Bottom || w.Left >= w.Right {
		return nil, fmt.Errorf("%w: %q is empty or negative", ErrInvalidWindow, s)
	}
	return w, nil
}

func (w Window) check(sizeX, sizeY int) error {
	if w.Top < 0 || w.Left < 0 || w.Bottom > sizeY || w.Right > sizeX || w.Top >= w.Bottom || w.Left >= w.Right {
		return fmt.Errorf("%w: rows [%d,%d) cols [%d,%d) outside %dx%d raster",
			ErrInvalidWindow, w.Top, w.Bottom, w.Left, w.Right, sizeY, sizeX)
	}
	return nil
}

// open wraps godal.Open, dropping GDAL warnings and mapping failures to NotFoundError.
func open(path string) (*godal.Dataset, error) {
	ds, err := godal.Open(path, godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
		if ec == godal.CE_Warning {
			return nil
		}
		return fmt.Errorf("gdal error %d: %s", code, msg)
	}))
	if err != nil {
		return nil, &NotFoundError{Path: path, Err: err}
	}
	return ds, nil
}

func firstBand(ds *godal.Dataset, path string) (godal.Band, error) {
	bands := ds.Bands()
	if len(bands) == 0 {
		return godal.Band{}, fmt.Errorf("%s: %w", path, ErrEmptyRaster)
	}
	return bands[0], nil
}

func resolveWindow(band godal.Band, window *Window) (Window, error) {
	sizeX := band.Structure().SizeX
	sizeY := band.Structure().SizeY
	if window == nil {
		return Window{Top: 0, Bottom: sizeY, Left: 0, Right: sizeX}, nil
	}
	if err := window.check(sizeX, sizeY); err != nil {
		return Window{}, err
	}
	return *window, nil
}

// ReadBand reads the first band of the raster at path into a float grid, restricted
// to window when it is not nil. No value is treated as invalid here.
func ReadBand(path string, window *Window) (Grid, error) {
	ds, err := open(path)
	if err != nil {
		return Grid{}, err
	}
	defer ds.Close()

	band, err := firstBand(ds, path)
	if err != nil {
		return Grid{}, err
	}
	w, err := resolveWindow(band, window)
	if err != nil {
		return Grid{}, err
	}

	data := make([]float64, w.Rows()*w.Cols())
	if err := band.Read(w.Left, w.Top, data, w.Cols(), w.Rows()); err != nil {
		return Grid{}, fmt.Errorf("failed to read raster data from %s: %w", path, err)
	}
	return Grid{Rows: w.Rows(), Cols: w.Cols(), Data: data}, nil
}

// ReadCodes reads the first band as unsigned 16-bit codes.
func ReadCodes(path string, window *Window) (rows, cols int, codes []uint16, err error) {
	ds, err := open(path)
	if err != nil {
		return 0, 0, nil, err
	}
	defer ds.Close()

	band, err := firstBand(ds, path)
	if err != nil {
		return 0, 0, nil, err
	}
	w, err := resolveWindow(band, window)
	if err != nil {
		return 0, 0, nil, err
	}

	codes = make([]uint16, w.Rows()*w.Cols())
	if err := band.Read(w.Left, w.Top, codes, w.Cols(), w.Rows()); err != nil {
		return 0, 0, nil, fmt.Errorf("failed to read codes from %s: %w", path, err)
	}
	return w.Rows(), w.Cols(), codes, nil
}

// ReadSpatialRef returns the geotransform and WKT projection of an existing raster.
func ReadSpatialRef(path string) (SpatialRef, error) {
	ds, err := open(path)
	if err != nil {
		return SpatialRef{}, err
	}
	defer ds.Close()

	gt, err := ds.GeoTransform()
	if err != nil {
		return SpatialRef{}, fmt.Errorf("failed to get GeoTransform of %s: %w", path, err)
	}
	return SpatialRef{GeoTransform: gt, Projection: ds.Projection()}, nil
}

// ReadGeoTIFF reads a single band raster together with its spatial reference.
func ReadGeoTIFF(path string) (Grid, SpatialRef, error) {
	grid, err := ReadBand(path, nil)
	if err != nil {
		return Grid{}, SpatialRef{}, err
	}
	ref, err := ReadSpatialRef(path)
	if err != nil {
		return Grid{}, SpatialRef{}, err
	}
	return grid, ref, nil
}

// WriteGeoTIFF writes grid as a single band Float32 GeoTIFF. Invalid cells are
// written as NaN, which is also declared as the band nodata value.
func WriteGeoTIFF(path string, grid Grid, ref SpatialRef) error {
	if grid.Rows == 0 || grid.Cols == 0 {
		return fmt.Errorf("cannot write %s: %w", path, ErrNoValidSamples)
	}
	ds, err := godal.Create(godal.GTiff, path, 1, godal.Float32, grid.Cols, grid.Rows)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := ds.SetGeoTransform(ref.GeoTransform); err != nil {
		ds.Close()
		return fmt.Errorf("failed to set GeoTransform on %s: %w", path, err)
	}
	if ref.Projection != "" {
		if err := ds.SetProjection(ref.Projection); err != nil {
			ds.Close()
			return fmt.Errorf("failed to set projection on %s: %w", path, err)
		}
	}

	band := ds.Bands()[0]
	if err := band.SetNoData(math.NaN()); err != nil {
		ds.Close()
		return fmt.Errorf("failed to set nodata on %s: %w", path, err)
	}

	data := make([]float32, len(grid.Data))
	for i, v := range grid.Data {
		data[i] = float32(v)
	}
	if err := band.Write(0, 0, data, grid.Cols, grid.Rows); err != nil {
		ds.Close()
		return fmt.Errorf("failed to write raster data to %s: %w", path, err)
	}

	if err := ds.Close(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}
