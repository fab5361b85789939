package ui

import (
	"fmt"

	"github.com/forest-guardian/landsat-toa/internal/landsat"
	"github.com/forest-guardian/landsat-toa/internal/properties"
	"github.com/forest-guardian/landsat-toa/internal/raster"
	"github.com/forest-guardian/landsat-toa/internal/stretch"
	"github.com/forest-guardian/landsat-toa/output"
)

// InspectPixel handles the UI for printing the reflectance of one pixel in
// several bands, together with its location and quality code.
func InspectPixel() {
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
	x, y, err := ReadPixel("Enter the pixel coordinates (x,y): ")
	if err != nil {
		PrintError(err.Error())
		return
	}

	md, err := scene.Metadata()
	if err != nil {
		PrintError(err.Error())
		return
	}
	window := &raster.Window{Top: y, Bottom: y + 1, Left: x, Right: x + 1}
	opts := landsat.ReflectanceOptions{Window: window, SkipCloudFilter: true}

	ref, err := scene.SpatialRef(bands[0])
	if err != nil {
		PrintError(err.Error())
		return
	}
	lon, lat, err := ref.PixelToLonLat(x, y)
	if err != nil {
		PrintError(err.Error())
		return
	}
	quality, err := scene.ReadQuality(window)
	if err != nil {
		PrintError(err.Error())
		return
	}
	code := quality.Codes[0]

	fmt.Printf("\n%sPixel (%d, %d) at lon %.6f, lat %.6f%s\n", ColorGreen, x, y, lon, lat, ColorReset)
	fmt.Printf("%sQA code %d: cloud %s, cirrus %s, score %d, masked by %s: %t%s\n", ColorGreen,
		code, landsat.CloudConfidenceOf(code), landsat.CirrusConfidenceOf(code), landsat.QAScore(code),
		properties.MaskPolicy(), properties.MaskPolicy().Masked(code), ColorReset)
	for _, band := range bands {
		grid, err := scene.ReflectanceWith(md, band, opts)
		if err != nil {
			PrintError(err.Error())
			return
		}
		fmt.Printf("%s- band %d: %.5f%s\n", ColorGreen, band, grid.Data[0], ColorReset)
	}

	if !ReadYesNo("Save a preview with the pixel marked?") {
		return
	}
	grid, err := scene.ReflectanceWith(md, bands[0], landsat.ReflectanceOptions{SkipCloudFilter: true})
	if err != nil {
		PrintError(err.Error())
		return
	}
	stretched, err := stretch.Percentile(grid, stretch.DefaultPercentile, stretch.DefaultScale)
	if err != nil {
		PrintError(err.Error())
		return
	}
	resultPath, err := CreateResultDirectory(scene.ID, "pixels")
	if err != nil {
		PrintError(err.Error())
		return
	}
	imagePath := resultFile(resultPath, scene.ID, fmt.Sprintf("B%d_%d_%d.png", bands[0], x, y))
	if err := output.SaveImage(output.MarkPixel(output.RenderByteGrid(stretched), x, y), imagePath); err != nil {
		PrintError(err.Error())
		return
	}
	PrintSuccess(fmt.Sprintf("Preview located at: %s", imagePath))
}
