package delivery

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/forest-guardian/landsat-toa/internal/landsat"
	"github.com/forest-guardian/landsat-toa/internal/raster"
	"github.com/forest-guardian/landsat-toa/internal/stretch"
	"github.com/forest-guardian/landsat-toa/output"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Product names accepted in batch jobs.
const (
	ProductTOA     = "toa"
	ProductWDRVI   = "wdrvi"
	ProductNDVI    = "ndvi"
	ProductPreview = "preview"
)

// Request describes one product of one scene.
type Request struct {
	Scene   landsat.Scene
	Product string
	// Band is used by toa and preview.
	Band    int
	Window  *raster.Window
	Options landsat.ReflectanceOptions
	// Alpha is the WDRVI weighting; zero selects landsat.DefaultWDRVIAlpha.
	Alpha  float64
	Output string
}

// ProductResult is what BuildProduct wrote.
type ProductResult struct {
	Output     string
	Rows, Cols int
	ValidCells int
}

// BuildProduct computes the requested product and writes it to req.Output.
// Raster products are written as GeoTIFF; previews as PNG or JPEG.
func BuildProduct(ctx context.Context, req Request) (ProductResult, error) {
	opts := req.Options
	opts.Window = req.Window

	logger := log.WithFields(log.Fields{"scene": req.Scene.ID, "product": req.Product, "band": req.Band})

	var (
		grid raster.Grid
		ref  raster.SpatialRef
		err  error
	)
	switch strings.ToLower(req.Product) {
	case ProductTOA, ProductPreview:
		grid, err = req.Scene.Reflectance(req.Band, opts)
		if err != nil {
			return ProductResult{}, err
		}
		ref, err = req.Scene.SpatialRef(req.Band)
	case ProductWDRVI, ProductNDVI:
		grid, err = vegetationIndex(ctx, req.Scene, strings.ToLower(req.Product), req.Alpha, opts)
		if err != nil {
			return ProductResult{}, err
		}
		ref, err = req.Scene.SpatialRef(landsat.BandRed)
	default:
		return ProductResult{}, fmt.Errorf("unknown product %q", req.Product)
	}
	if err != nil {
		return ProductResult{}, err
	}
	ref = ref.Window(req.Window)

	path := req.Output
	if strings.ToLower(req.Product) == ProductPreview {
		path, err = writePreview(grid, path)
	} else {
		err = raster.WriteGeoTIFF(path, grid, ref)
	}
	if err != nil {
		return ProductResult{}, err
	}

	result := ProductResult{Output: path, Rows: grid.Rows, Cols: grid.Cols, ValidCells: grid.ValidCount()}
	logger.WithField("path", path).Debugf("product written, %d valid cells", result.ValidCells)
	return result, nil
}

// vegetationIndex loads red and NIR reflectance concurrently and combines them.
func vegetationIndex(ctx context.Context, scene landsat.Scene, product string, alpha float64, opts landsat.ReflectanceOptions) (raster.Grid, error) {
	if err := ctx.Err(); err != nil {
		return raster.Grid{}, err
	}
	md, err := scene.Metadata()
	if err != nil {
		return raster.Grid{}, err
	}

	var (
		red, nir raster.Grid
		g        errgroup.Group
	)
	g.Go(func() error {
		var err error
		red, err = scene.ReflectanceWith(md, landsat.BandRed, opts)
		return err
	})
	g.Go(func() error {
		var err error
		nir, err = scene.ReflectanceWith(md, landsat.BandNIR, opts)
		return err
	})
	if err := g.Wait(); err != nil {
		return raster.Grid{}, err
	}

	if product == ProductNDVI {
		return landsat.NormalizedDifference(nir, red)
	}
	if alpha == 0 {
		alpha = landsat.DefaultWDRVIAlpha
	}
	return landsat.WDRVI(red, nir, alpha)
}

func writePreview(grid raster.Grid, path string) (string, error) {
	stretched, err := stretch.Percentile(grid, stretch.DefaultPercentile, stretch.DefaultScale)
	if err != nil {
		return "", err
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
		path += ".png"
	}
	return path, output.SaveImage(output.RenderByteGrid(stretched), path)
}
