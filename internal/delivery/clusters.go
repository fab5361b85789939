package delivery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/forest-guardian/landsat-toa/internal/landsat"
	"github.com/forest-guardian/landsat-toa/internal/raster"
	"github.com/forest-guardian/landsat-toa/internal/stats"
	"github.com/forest-guardian/landsat-toa/output"
	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ClusterRequest clusters the reflectance of several bands of one scene.
type ClusterRequest struct {
	Scene   landsat.Scene
	Bands   []int
	Window  *raster.Window
	Options landsat.ReflectanceOptions
	// K is the number of clusters; zero estimates it.
	K    int
	Seed int64
	// Standardize z-scores every band before clustering.
	Standardize bool
	OutputDir   string
}

// ClusterSize describes one cluster in the report CSV.
type ClusterSize struct {
	Cluster int     `csv:"cluster"`
	Cells   int     `csv:"cells"`
	Share   float64 `csv:"share"`
	Center  string  `csv:"center"`
}

type ClusterReport struct {
	Scene      string
	Bands      []int
	K          int
	Inertia    float64
	Sizes      []ClusterSize
	LabelsPath string
	ImagePath  string
	CSVPath    string
}

// RunClustering reads the bands concurrently, clusters the cells valid in all
// of them and writes the label GeoTIFF, a legend image and a cluster CSV.
func RunClustering(ctx context.Context, req ClusterRequest) (*ClusterReport, error) {
	if len(req.Bands) == 0 {
		return nil, fmt.Errorf("%w: no bands", stats.ErrClusterCount)
	}
	md, err := req.Scene.Metadata()
	if err != nil {
		return nil, err
	}
	opts := req.Options
	opts.Window = req.Window

	grids := make([]raster.Grid, len(req.Bands))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, band := range req.Bands {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			grid, err := req.Scene.ReflectanceWith(md, band, opts)
			if err != nil {
				return err
			}
			if req.Standardize {
				grid = stats.Scale(grid)
			}
			grids[i] = grid
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seed := req.Seed
	if seed == 0 {
		seed = stats.DefaultSeed
	}
	k := req.K
	if k == 0 {
		k, err = stats.EstimateK(grids, seed)
		if err != nil {
			return nil, err
		}
		log.WithField("scene", req.Scene.ID).Infof("estimated %d clusters", k)
	}
	clusters, err := stats.KMeans(grids, k, seed)
	if err != nil {
		return nil, err
	}

	report := &ClusterReport{
		Scene:   req.Scene.ID,
		Bands:   req.Bands,
		K:       k,
		Inertia: clusters.Inertia,
		Sizes:   clusterSizes(clusters),
	}
	if req.OutputDir == "" {
		return report, nil
	}

	if err := os.MkdirAll(req.OutputDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create output folder: %w", err)
	}
	ref, err := req.Scene.SpatialRef(req.Bands[0])
	if err != nil {
		return nil, err
	}
	base := fmt.Sprintf("%s_kmeans_%d", req.Scene.ID, k)
	report.LabelsPath = filepath.Join(req.OutputDir, base+".TIF")
	if err := raster.WriteGeoTIFF(report.LabelsPath, clusters.Labels, ref.Window(req.Window)); err != nil {
		return nil, err
	}
	report.ImagePath = filepath.Join(req.OutputDir, base+".png")
	if err := output.SaveImage(output.LabelsWithLegend(clusters.Labels, k), report.ImagePath); err != nil {
		return nil, err
	}
	report.CSVPath = filepath.Join(req.OutputDir, base+".csv")
	if err := writeCSV(report.CSVPath, &report.Sizes); err != nil {
		return nil, err
	}
	return report, nil
}

func clusterSizes(c stats.Clusters) []ClusterSize {
	sizes := make([]ClusterSize, len(c.Centers))
	total := 0
	for _, v := range c.Labels.Data {
		if raster.IsValid(v) {
			sizes[int(v)].Cells++
			total++
		}
	}
	for i := range sizes {
		sizes[i].Cluster = i
		if total > 0 {
			sizes[i].Share = float64(sizes[i].Cells) / float64(total)
		}
		center := make([]string, len(c.Centers[i]))
		for j, v := range c.Centers[i] {
			center[j] = fmt.Sprintf("%.4f", v)
		}
		sizes[i].Center = strings.Join(center, " ")
	}
	return sizes
}

// FormatClusterReport renders a report for the console and notifications.
func FormatClusterReport(r *ClusterReport) string {
	if r == nil {
		return "No clustering data available."
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**Scene %s, bands %v:**\n", r.Scene, r.Bands))
	sb.WriteString(fmt.Sprintf("- Clusters: %d (inertia %.4f)\n", r.K, r.Inertia))
	for _, s := range r.Sizes {
		sb.WriteString(fmt.Sprintf("  • cluster %d: %d cells (%.1f%%), center [%s]\n", s.Cluster, s.Cells, s.Share*100, s.Center))
	}
	return sb.String()
}

func writeCSV(path string, rows interface{}) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()
	if err := gocsv.MarshalFile(rows, file); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
