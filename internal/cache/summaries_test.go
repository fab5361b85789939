package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/airbusgeo/godal"
	"github.com/forest-guardian/landsat-toa/internal/landsat"
	"github.com/forest-guardian/landsat-toa/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	godal.RegisterAll()
	os.Exit(m.Run())
}

type countingCache struct {
	*FileCache[landsat.BandSummary]
	gets, hits, sets int
}

func (c *countingCache) Get(key string) (landsat.BandSummary, bool) {
	c.gets++
	v, ok := c.FileCache.Get(key)
	if ok {
		c.hits++
	}
	return v, ok
}

func (c *countingCache) Set(key string, data landsat.BandSummary) error {
	c.sets++
	return c.FileCache.Set(key, data)
}

const summaryMTL = `DATE_ACQUIRED = 2020-02-01
SUN_ELEVATION = 30.0
REFLECTANCE_MULT_BAND_4 = 2.0000E-05
REFLECTANCE_ADD_BAND_4 = -0.100000
END
`

func TestSummaryStore(t *testing.T) {
	dir := t.TempDir()
	scene := landsat.DefaultNaming(dir).Scene("S")
	ref := raster.SpatialRef{GeoTransform: [6]float64{0, 30, 0, 0, 0, -30}}
	band, err := raster.GridFromRows([][]float64{{10000, 20000}, {0, 15000}})
	require.NoError(t, err)
	require.NoError(t, raster.WriteGeoTIFF(scene.BandPath(4), band, ref))
	require.NoError(t, os.WriteFile(scene.MetadataPath(), []byte(summaryMTL), 0644))

	c := &countingCache{FileCache: NewFileCacheAt[landsat.BandSummary](filepath.Join(dir, "cache"))}
	store := NewSummaryStore(c)
	opts := landsat.ReflectanceOptions{SkipCloudFilter: true}

	first, err := store.Summary(scene, 4, opts)
	require.NoError(t, err)
	assert.Equal(t, 3, first.ValidCells)
	assert.InDelta(t, 0.2, first.Min, 1e-6)
	assert.InDelta(t, 0.6, first.Max, 1e-6)
	assert.Equal(t, 32, first.DayOfYear)

	second, err := store.Summary(scene, 4, opts)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, c.gets)
	assert.Equal(t, 1, c.hits)
	assert.Equal(t, 1, c.sets)

	_, err = store.Summary(scene, 5, opts)
	assert.ErrorIs(t, err, raster.ErrNotFound)
}

func TestSummaryStoreKeys(t *testing.T) {
	dir := t.TempDir()
	scene := landsat.DefaultNaming(dir).Scene("S")
	ref := raster.SpatialRef{GeoTransform: [6]float64{0, 30, 0, 0, 0, -30}}
	band, err := raster.GridFromRows([][]float64{{10000, 20000}, {0, 15000}})
	require.NoError(t, err)
	require.NoError(t, raster.WriteGeoTIFF(scene.BandPath(4), band, ref))
	require.NoError(t, raster.WriteGeoTIFF(scene.QualityPath(), raster.NewGrid(2, 2, 0), ref))
	require.NoError(t, os.WriteFile(scene.MetadataPath(), []byte(summaryMTL), 0644))

	c := &countingCache{FileCache: NewFileCacheAt[landsat.BandSummary](filepath.Join(dir, "cache"))}
	store := NewSummaryStore(c)

	_, err = store.Summary(scene, 4, landsat.ReflectanceOptions{})
	require.NoError(t, err)
	_, err = store.Summary(scene, 4, landsat.ReflectanceOptions{Policy: landsat.DefaultMaskPolicy})
	require.NoError(t, err)
	assert.Equal(t, 1, c.hits)

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(scene.MetadataPath(), later, later))
	_, err = store.Summary(scene, 4, landsat.ReflectanceOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, c.hits)

	require.NoError(t, os.Chtimes(scene.QualityPath(), later, later))
	_, err = store.Summary(scene, 4, landsat.ReflectanceOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, c.hits)
	assert.Equal(t, 3, c.sets)
}
