package ui

import (
	"fmt"
	"image"

	"github.com/forest-guardian/landsat-toa/internal/cache"
	"github.com/forest-guardian/landsat-toa/internal/delivery"
	"github.com/forest-guardian/landsat-toa/internal/landsat"
	"github.com/forest-guardian/landsat-toa/internal/stretch"
	"github.com/forest-guardian/landsat-toa/output"
	"github.com/schollz/progressbar/v3"
)

// SceneSummary handles the UI for summarizing the reflectance of several bands.
// Summaries are cached per band file.
func SceneSummary() {
	scene, err := SelectScene()
	if err != nil {
		PrintError(err.Error())
		return
	}
	bands, err := ReadBands("Enter the bands (e.g. 2,3,4,5): ")
	if err != nil {
		PrintError(err.Error())
		return
	}
	opts, err := ReadReflectanceOptions()
	if err != nil {
		PrintError(err.Error())
		return
	}
	withPanel := ReadYesNo("Create a preview panel and flip-book video?")

	resultPath, err := CreateResultDirectory(scene.ID, "summary")
	if err != nil {
		PrintError(err.Error())
		return
	}

	store := cache.NewSummaryStore(cache.NewFileCache[landsat.BandSummary]("summaries"))
	progressBar := progressbar.Default(int64(len(bands)), "Summarizing bands")
	var (
		summaries  []landsat.BandSummary
		images     []image.Image
		titles     []string
		imagePaths []string
	)
	for _, band := range bands {
		summary, err := store.Summary(scene, band, opts)
		if err != nil {
			PrintError(fmt.Sprintf("Error summarizing band %d: %s", band, err.Error()))
			return
		}
		summaries = append(summaries, summary)

		if withPanel {
			grid, err := scene.Reflectance(band, opts)
			if err != nil {
				PrintError(err.Error())
				return
			}
			stretched, err := stretch.Percentile(grid, stretch.DefaultPercentile, stretch.DefaultScale)
			if err != nil {
				PrintError(err.Error())
				return
			}
			img := output.RenderByteGrid(stretched)
			path := resultFile(resultPath, scene.ID, fmt.Sprintf("B%d.png", band))
			if err := output.SaveImage(img, path); err != nil {
				PrintError(err.Error())
				return
			}
			images = append(images, img)
			titles = append(titles, fmt.Sprintf("Band %d", band))
			imagePaths = append(imagePaths, path)
		}
		progressBar.Add(1)
	}

	csvPath := resultFile(resultPath, scene.ID, "summary.csv")
	if err := delivery.WriteSummaries(summaries, csvPath); err != nil {
		PrintError(err.Error())
		return
	}

	fmt.Printf("\n%s%-6s %-10s %-10s %-10s %-10s %-10s%s\n", ColorGreen, "band", "valid", "min", "max", "mean", "p95", ColorReset)
	for _, s := range summaries {
		fmt.Printf("%s%-6d %-10d %-10.4f %-10.4f %-10.4f %-10.4f%s\n", ColorGreen, s.Band, s.ValidCells, s.Min, s.Max, s.Mean, s.P95, ColorReset)
	}

	message := fmt.Sprintf("Summary located at: %s", csvPath)
	if withPanel {
		panelPath := resultFile(resultPath, scene.ID, "panel.png")
		if err := output.SavePanel(images, titles, 4, panelPath); err != nil {
			PrintError(err.Error())
			return
		}
		videoPath := resultFile(resultPath, scene.ID, "bands.avi")
		if err := output.CreateVideoFromImages(imagePaths, videoPath, 1); err != nil {
			PrintError(err.Error())
			return
		}
		message += fmt.Sprintf("\nPanel located at: %s\nVideo located at: %s", panelPath, videoPath)
	}
	PrintSuccess(message)
}
