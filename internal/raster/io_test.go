package raster

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/airbusgeo/godal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	godal.RegisterAll()
	os.Exit(m.Run())
}

var testRef = SpatialRef{GeoTransform: [6]float64{300000, 30, 0, 4500000, 0, -30}}

func utmRef(t *testing.T) (SpatialRef, *godal.SpatialRef) {
	t.Helper()
	sr, err := godal.NewSpatialRefFromEPSG(32633)
	require.NoError(t, err)
	t.Cleanup(sr.Close)
	wkt, err := sr.WKT()
	require.NoError(t, err)
	return SpatialRef{GeoTransform: testRef.GeoTransform, Projection: wkt}, sr
}

func TestGeoTIFFRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.TIF")
	grid, err := GridFromRows([][]float64{{0.1, 0.2, math.NaN()}, {0.4, 0.5, 0.6}})
	require.NoError(t, err)
	want, wantSR := utmRef(t)

	require.NoError(t, WriteGeoTIFF(path, grid, want))

	got, ref, err := ReadGeoTIFF(path)
	require.NoError(t, err)
	assert.Equal(t, grid.Shape(), got.Shape())
	assert.Equal(t, want.GeoTransform, ref.GeoTransform)
	require.NotEmpty(t, ref.Projection)
	gotSR, err := godal.NewSpatialRefFromWKT(ref.Projection)
	require.NoError(t, err)
	defer gotSR.Close()
	assert.True(t, gotSR.IsSame(wantSR), ref.Projection)
	for i, v := range grid.Data {
		if math.IsNaN(v) {
			assert.True(t, math.IsNaN(got.Data[i]), "cell %d", i)
			continue
		}
		assert.InDelta(t, v, got.Data[i], 1e-6, "cell %d", i)
	}
}

func TestReadBandWindow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.TIF")
	grid := NewGrid(4, 5, 0)
	for i := range grid.Data {
		grid.Data[i] = float64(i)
	}
	require.NoError(t, WriteGeoTIFF(path, grid, testRef))

	got, err := ReadBand(path, &Window{Top: 1, Bottom: 3, Left: 2, Right: 4})
	require.NoError(t, err)
	assert.Equal(t, [2]int{2, 2}, got.Shape())
	assert.Equal(t, []float64{7, 8, 12, 13}, got.Data)

	_, err = ReadBand(path, &Window{Top: 0, Bottom: 5, Left: 0, Right: 5})
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestReadCodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qa.TIF")
	grid, err := GridFromRows([][]float64{{2720, 53248}, {0, 16384}})
	require.NoError(t, err)
	require.NoError(t, WriteGeoTIFF(path, grid, testRef))

	rows, cols, codes, err := ReadCodes(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, []uint16{2720, 53248, 0, 16384}, codes)
}

func TestMissingFile(t *testing.T) {
	_, err := ReadBand(filepath.Join(t.TempDir(), "missing.TIF"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Contains(t, nf.Path, "missing.TIF")

	_, err = ReadSpatialRef(filepath.Join(t.TempDir(), "missing.TIF"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWriteEmptyGrid(t *testing.T) {
	err := WriteGeoTIFF(filepath.Join(t.TempDir(), "empty.TIF"), Grid{}, testRef)
	assert.ErrorIs(t, err, ErrNoValidSamples)
}
