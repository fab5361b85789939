package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/forest-guardian/landsat-toa/internal/cache"
	"github.com/forest-guardian/landsat-toa/internal/delivery"
	"github.com/forest-guardian/landsat-toa/internal/landsat"
	"github.com/forest-guardian/landsat-toa/internal/properties"
	"github.com/forest-guardian/landsat-toa/internal/raster"
	"github.com/forest-guardian/landsat-toa/internal/stretch"
	"github.com/forest-guardian/landsat-toa/internal/ui"
	"github.com/forest-guardian/landsat-toa/output"
	cli "gopkg.in/urfave/cli.v1"
)

func sceneFrom(c *cli.Context) (landsat.Scene, error) {
	id := c.String("scene")
	if id == "" {
		return landsat.Scene{}, cli.NewExitError("--scene is required", 1)
	}
	return properties.Naming().Scene(id), nil
}

func reflectanceOptions(c *cli.Context) (landsat.ReflectanceOptions, error) {
	window, err := raster.ParseWindow(c.String("window"))
	if err != nil {
		return landsat.ReflectanceOptions{}, err
	}
	return landsat.ReflectanceOptions{
		Window:          window,
		SkipCloudFilter: c.Bool("no-cloud-filter"),
		Policy:          properties.MaskPolicy(),
	}, nil
}

func outputFrom(c *cli.Context, def string) string {
	if out := c.String("out"); out != "" {
		return out
	}
	return def
}

func buildAction(c *cli.Context, product string, band int) error {
	scene, err := sceneFrom(c)
	if err != nil {
		return err
	}
	opts, err := reflectanceOptions(c)
	if err != nil {
		return err
	}
	def := fmt.Sprintf("%s_%s.TIF", scene.ID, product)
	if band > 0 {
		def = fmt.Sprintf("%s_B%d_%s.TIF", scene.ID, band, product)
	}
	result, err := delivery.BuildProduct(context.Background(), delivery.Request{
		Scene:   scene,
		Product: product,
		Band:    band,
		Window:  opts.Window,
		Options: opts,
		Alpha:   c.Float64("alpha"),
		Output:  outputFrom(c, def),
	})
	if err != nil {
		return err
	}
	fmt.Printf("%s: %dx%d, %d valid cells\n", result.Output, result.Rows, result.Cols, result.ValidCells)
	return nil
}

func toaAction(c *cli.Context) error {
	if c.Int("band") <= 0 {
		return cli.NewExitError("--band is required", 1)
	}
	return buildAction(c, delivery.ProductTOA, c.Int("band"))
}

func indexAction(c *cli.Context) error {
	kind := strings.ToLower(c.String("kind"))
	if kind != delivery.ProductWDRVI && kind != delivery.ProductNDVI {
		return cli.NewExitError(fmt.Sprintf("unknown index %q", kind), 1)
	}
	return buildAction(c, kind, 0)
}

func previewAction(c *cli.Context) error {
	scene, err := sceneFrom(c)
	if err != nil {
		return err
	}
	band := c.Int("band")
	if band <= 0 {
		return cli.NewExitError("--band is required", 1)
	}
	opts, err := reflectanceOptions(c)
	if err != nil {
		return err
	}
	grid, err := scene.Reflectance(band, opts)
	if err != nil {
		return err
	}

	var stretched raster.ByteGrid
	switch c.String("stretch") {
	case "linear":
		stretched, err = stretch.Linear(grid, stretch.DefaultScale)
	case "percentile":
		stretched, err = stretch.Percentile(grid, c.Float64("percentile"), stretch.DefaultScale)
	case "equalize":
		stretched, err = stretch.Equalize(grid, stretch.DefaultScale)
	default:
		return cli.NewExitError(fmt.Sprintf("unknown stretch %q", c.String("stretch")), 1)
	}
	if err != nil {
		return err
	}
	if gamma := c.Float64("gamma"); gamma != 1 {
		if stretched, err = stretch.Gamma(stretched, gamma); err != nil {
			return err
		}
	}

	path := outputFrom(c, fmt.Sprintf("%s_B%d.png", scene.ID, band))
	if err := output.SaveImage(output.RenderByteGrid(stretched), path); err != nil {
		return err
	}
	if freq := c.String("frequencies"); freq != "" {
		if _, err := delivery.WriteFrequencies(stretched.Float(), freq); err != nil {
			return err
		}
	}
	fmt.Println(path)
	return nil
}

func summaryAction(c *cli.Context) error {
	scene, err := sceneFrom(c)
	if err != nil {
		return err
	}
	bands, err := ui.ParseBands(c.String("bands"))
	if err != nil {
		return err
	}
	opts, err := reflectanceOptions(c)
	if err != nil {
		return err
	}

	store := cache.NewSummaryStore(cache.NewFileCache[landsat.BandSummary]("summaries"))
	summaries := make([]landsat.BandSummary, 0, len(bands))
	for _, band := range bands {
		summary, err := store.Summary(scene, band, opts)
		if err != nil {
			return err
		}
		summaries = append(summaries, summary)
	}
	if out := c.String("out"); out != "" {
		return delivery.WriteSummaries(summaries, out)
	}
	for _, s := range summaries {
		fmt.Printf("band %d: valid %d, min %.4f, max %.4f, mean %.4f, std %.4f, p95 %.4f\n",
			s.Band, s.ValidCells, s.Min, s.Max, s.Mean, s.StdDev, s.P95)
	}
	return nil
}

func qualityAction(c *cli.Context) error {
	scene, err := sceneFrom(c)
	if err != nil {
		return err
	}
	window, err := raster.ParseWindow(c.String("window"))
	if err != nil {
		return err
	}
	scores, err := scene.QualityScores(window)
	if err != nil {
		return err
	}
	ref, err := raster.ReadSpatialRef(scene.QualityPath())
	if err != nil {
		return err
	}
	path := outputFrom(c, scene.ID+"_qa_score.TIF")
	if err := raster.WriteGeoTIFF(path, scores.Float(), ref.Window(window)); err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func batchAction(c *cli.Context) error {
	jobs := c.String("jobs")
	if jobs == "" {
		return cli.NewExitError("--jobs is required", 1)
	}
	results, err := delivery.RunBatch(context.Background(), jobs, delivery.BatchOptions{
		Naming:          properties.Naming(),
		OutputDir:       c.String("out"),
		Workers:         properties.Workers(),
		Policy:          properties.MaskPolicy(),
		SkipCloudFilter: c.Bool("no-cloud-filter"),
		ResultsPath:     c.String("results"),
		Notify:          c.Bool("notify"),
	})
	if err != nil {
		return err
	}
	if c.String("results") == "" {
		return delivery.WriteResultsTo(os.Stdout, results)
	}
	return nil
}

func metadataAction(c *cli.Context) error {
	scene, err := sceneFrom(c)
	if err != nil {
		return err
	}
	md, err := scene.Metadata()
	if err != nil {
		return err
	}
	for _, key := range md.Keys() {
		value, _ := md.Get(key)
		fmt.Printf("%s = %s\n", key, value)
	}
	return nil
}
