package delivery

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/airbusgeo/godal"
	"github.com/forest-guardian/landsat-toa/internal/landsat"
	"github.com/forest-guardian/landsat-toa/internal/raster"
	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	godal.RegisterAll()
	os.Exit(m.Run())
}

const testMTL = `DATE_ACQUIRED = 2021-06-01
SUN_ELEVATION = 30.0
REFLECTANCE_MULT_BAND_4 = 2.0000E-05
REFLECTANCE_ADD_BAND_4 = -0.100000
REFLECTANCE_MULT_BAND_5 = 2.0000E-05
REFLECTANCE_ADD_BAND_5 = -0.100000
END
`

const cloudyCode = 53248

// writeScene creates a 4x4 scene whose top half is bright in NIR and whose
// bottom half is bright in red. Cell (0, 3) has no data and cell (3, 3) is cloudy.
func writeScene(t *testing.T, root, id string) landsat.Scene {
	t.Helper()
	scene := landsat.DefaultNaming(root).Scene(id)
	ref := raster.SpatialRef{GeoTransform: [6]float64{600000, 30, 0, 5000000, 0, -30}}

	red := raster.NewGrid(4, 4, 10000)
	nir := raster.NewGrid(4, 4, 20000)
	qa := raster.NewGrid(4, 4, 2720)
	for i := 8; i < 16; i++ {
		red.Data[i] = 20000
		nir.Data[i] = 30000
	}
	red.Data[3] = 0
	nir.Data[3] = 0
	qa.Data[15] = cloudyCode

	require.NoError(t, raster.WriteGeoTIFF(scene.BandPath(landsat.BandRed), red, ref))
	require.NoError(t, raster.WriteGeoTIFF(scene.BandPath(landsat.BandNIR), nir, ref))
	require.NoError(t, raster.WriteGeoTIFF(scene.QualityPath(), qa, ref))
	require.NoError(t, os.WriteFile(scene.MetadataPath(), []byte(testMTL), 0644))
	return scene
}

func TestBuildProductTOA(t *testing.T) {
	dir := t.TempDir()
	scene := writeScene(t, dir, "S1")
	out := filepath.Join(dir, "toa.TIF")

	result, err := BuildProduct(context.Background(), Request{Scene: scene, Product: ProductTOA, Band: 4, Output: out})
	require.NoError(t, err)
	assert.Equal(t, ProductResult{Output: out, Rows: 4, Cols: 4, ValidCells: 14}, result)

	grid, ref, err := raster.ReadGeoTIFF(out)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, grid.At(0, 0), 1e-6)
	assert.InDelta(t, 0.6, grid.At(2, 0), 1e-6)
	assert.True(t, math.IsNaN(grid.At(0, 3)))
	assert.True(t, math.IsNaN(grid.At(3, 3)))
	assert.Equal(t, 600000.0, ref.GeoTransform[0])
}

func TestBuildProductWindowedIndex(t *testing.T) {
	dir := t.TempDir()
	scene := writeScene(t, dir, "S1")
	out := filepath.Join(dir, "wdrvi.TIF")
	window := &raster.Window{Top: 1, Bottom: 3, Left: 1, Right: 3}

	result, err := BuildProduct(context.Background(), Request{Scene: scene, Product: "WDRVI", Window: window, Output: out})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Rows)
	assert.Equal(t, 4, result.ValidCells)

	grid, ref, err := raster.ReadGeoTIFF(out)
	require.NoError(t, err)
	// red 0.2, nir 0.6 on top; red 0.6, nir 1.0 below
	assert.InDelta(t, -0.25, grid.At(0, 0), 1e-6)
	assert.InDelta(t, -0.5, grid.At(1, 0), 1e-6)
	assert.Equal(t, 600030.0, ref.GeoTransform[0])
	assert.Equal(t, 4999970.0, ref.GeoTransform[3])

	ndvi := filepath.Join(dir, "ndvi.TIF")
	_, err = BuildProduct(context.Background(), Request{Scene: scene, Product: ProductNDVI, Window: window, Output: ndvi})
	require.NoError(t, err)
	grid, _, err = raster.ReadGeoTIFF(ndvi)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, grid.At(0, 0), 1e-6)
	assert.InDelta(t, 0.25, grid.At(1, 0), 1e-6)
}

func TestBuildProductPreview(t *testing.T) {
	dir := t.TempDir()
	scene := writeScene(t, dir, "S1")

	result, err := BuildProduct(context.Background(), Request{Scene: scene, Product: ProductPreview, Band: 5, Output: filepath.Join(dir, "b5")})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "b5.png"), result.Output)
	assert.FileExists(t, result.Output)
}

func TestBuildProductErrors(t *testing.T) {
	dir := t.TempDir()
	scene := writeScene(t, dir, "S1")

	_, err := BuildProduct(context.Background(), Request{Scene: scene, Product: "evi", Output: filepath.Join(dir, "x.TIF")})
	assert.Error(t, err)

	_, err = BuildProduct(context.Background(), Request{Scene: scene, Product: ProductTOA, Band: 3, Output: filepath.Join(dir, "x.TIF")})
	assert.ErrorIs(t, err, landsat.ErrMissingParameter)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = BuildProduct(ctx, Request{Scene: scene, Product: ProductWDRVI, Output: filepath.Join(dir, "x.TIF")})
	assert.ErrorIs(t, err, context.Canceled)
}

func writeJobs(t *testing.T, path string, jobs []*Job) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, gocsv.MarshalFile(&jobs, f))
}

func TestRunBatch(t *testing.T) {
	dir := t.TempDir()
	scenes := filepath.Join(dir, "scenes")
	require.NoError(t, os.MkdirAll(scenes, 0755))
	writeScene(t, scenes, "S1")
	writeScene(t, scenes, "S2")

	jobsPath := filepath.Join(dir, "jobs.csv")
	writeJobs(t, jobsPath, []*Job{
		{Scene: "S1", Product: ProductTOA, Band: 4},
		{Scene: "S2", Product: ProductWDRVI, Window: "0:2:0:2"},
		{Scene: "MISSING", Product: ProductNDVI},
		{Scene: "S1", Product: ProductTOA, Band: 5, Window: "bad"},
		{Scene: "S2", Product: ProductPreview, Band: 4, Output: "previews/s2.png"},
	})

	outDir := filepath.Join(dir, "out")
	resultsPath := filepath.Join(outDir, "results.csv")
	results, err := RunBatch(context.Background(), jobsPath, BatchOptions{
		Naming:      landsat.DefaultNaming(scenes),
		OutputDir:   outDir,
		Workers:     3,
		ResultsPath: resultsPath,
	})
	require.NoError(t, err)
	require.Len(t, results, 5)

	assert.Equal(t, StatusOK, results[0].Status)
	assert.Equal(t, filepath.Join(outDir, "S1_toa_B4.TIF"), results[0].Output)
	assert.Equal(t, 14, results[0].ValidCells)

	assert.Equal(t, StatusOK, results[1].Status)
	assert.Equal(t, 2, results[1].Rows)
	assert.Equal(t, filepath.Join(outDir, "S2_wdrvi.TIF"), results[1].Output)

	assert.Equal(t, StatusFailed, results[2].Status)
	assert.Contains(t, results[2].Error, "MISSING")

	assert.Equal(t, StatusFailed, results[3].Status)
	assert.Contains(t, results[3].Error, "invalid window")

	assert.Equal(t, StatusOK, results[4].Status)
	assert.FileExists(t, filepath.Join(outDir, "previews", "s2.png"))

	f, err := os.Open(resultsPath)
	require.NoError(t, err)
	defer f.Close()
	var written []*JobResult
	require.NoError(t, gocsv.UnmarshalFile(f, &written))
	require.Len(t, written, 5)
	assert.Equal(t, results[2].Error, written[2].Error)
}

func TestRunBatchAllFailed(t *testing.T) {
	dir := t.TempDir()
	jobsPath := filepath.Join(dir, "jobs.csv")
	writeJobs(t, jobsPath, []*Job{{Scene: "A", Product: ProductTOA, Band: 4}, {Scene: "B", Product: "evi"}})

	results, err := RunBatch(context.Background(), jobsPath, BatchOptions{Naming: landsat.DefaultNaming(dir), OutputDir: dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 jobs failed")
	assert.Len(t, results, 2)

	_, err = RunBatch(context.Background(), filepath.Join(dir, "missing.csv"), BatchOptions{})
	assert.ErrorIs(t, err, raster.ErrNotFound)
}

func TestWriteResultsTo(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, WriteResultsTo(&sb, []*JobResult{{Scene: "S1", Product: ProductTOA, Band: 4, Status: StatusOK}}))
	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "scene,product,band,output,status,error,rows,cols,valid_cells,duration_ms", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "S1,toa,4,,ok,"))
}

func TestRunClustering(t *testing.T) {
	dir := t.TempDir()
	scene := writeScene(t, dir, "S1")

	report, err := RunClustering(context.Background(), ClusterRequest{
		Scene:     scene,
		Bands:     []int{landsat.BandRed, landsat.BandNIR},
		K:         2,
		OutputDir: filepath.Join(dir, "clusters"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.K)
	require.Len(t, report.Sizes, 2)
	assert.Equal(t, 14, report.Sizes[0].Cells+report.Sizes[1].Cells)
	assert.ElementsMatch(t, []int{7, 7}, []int{report.Sizes[0].Cells, report.Sizes[1].Cells})
	assert.InDelta(t, 0, report.Inertia, 1e-9)
	assert.FileExists(t, report.LabelsPath)
	assert.FileExists(t, report.ImagePath)
	assert.FileExists(t, report.CSVPath)
	assert.Contains(t, FormatClusterReport(report), "Clusters: 2")

	_, err = RunClustering(context.Background(), ClusterRequest{Scene: scene})
	assert.Error(t, err)
}

func TestExports(t *testing.T) {
	dir := t.TempDir()
	grid, err := raster.GridFromRows([][]float64{{0, 0.5, 1}, {1, math.NaN(), 1}})
	require.NoError(t, err)

	counts, err := WriteFrequencies(grid, filepath.Join(dir, "freq", "b4.csv"))
	require.NoError(t, err)
	require.Len(t, counts, 3)
	assert.Equal(t, uint8(255), counts[2].Value)
	assert.Equal(t, 3, counts[2].Count)
	assert.FileExists(t, filepath.Join(dir, "freq", "b4.csv"))

	values, err := SampleValues(grid, 1)
	require.NoError(t, err)
	assert.NotEmpty(t, values)
	for _, v := range values {
		assert.False(t, math.IsNaN(v))
	}

	summary, err := landsat.Summarize("S1", 4, grid)
	require.NoError(t, err)
	require.NoError(t, WriteSummaries([]landsat.BandSummary{summary}, filepath.Join(dir, "summaries.csv")))
	data, err := os.ReadFile(filepath.Join(dir, "summaries.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "scene,band,rows,cols,valid_cells"))
}
