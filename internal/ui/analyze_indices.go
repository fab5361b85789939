package ui

import (
	"context"
	"fmt"

	"github.com/forest-guardian/landsat-toa/internal/delivery"
	"github.com/forest-guardian/landsat-toa/internal/landsat"
	"github.com/forest-guardian/landsat-toa/internal/raster"
	"github.com/forest-guardian/landsat-toa/output"
)

// AnalyzeIndices handles the UI for computing WDRVI or NDVI of a scene
func AnalyzeIndices() {
	scene, err := SelectScene()
	if err != nil {
		PrintError(err.Error())
		return
	}

	product := delivery.ProductWDRVI
	if ReadYesNo("Compute NDVI instead of WDRVI?") {
		product = delivery.ProductNDVI
	}
	alpha := landsat.DefaultWDRVIAlpha
	if product == delivery.ProductWDRVI {
		alpha, err = ReadFloat(fmt.Sprintf("Enter the WDRVI alpha (default %.1f): ", landsat.DefaultWDRVIAlpha), landsat.DefaultWDRVIAlpha)
		if err != nil {
			PrintError(err.Error())
			return
		}
	}
	opts, err := ReadReflectanceOptions()
	if err != nil {
		PrintError(err.Error())
		return
	}
	cm, err := output.ParseColormap(orDefault(ReadString("Enter the colormap (RdYlGn, BlGnRd, gray): "), "RdYlGn"))
	if err != nil {
		PrintError(err.Error())
		return
	}

	resultPath, err := CreateResultDirectory(scene.ID, product)
	if err != nil {
		PrintError(err.Error())
		return
	}
	result, err := delivery.BuildProduct(context.Background(), delivery.Request{
		Scene:   scene,
		Product: product,
		Window:  opts.Window,
		Options: opts,
		Alpha:   alpha,
		Output:  resultFile(resultPath, scene.ID, product+".TIF"),
	})
	if err != nil {
		PrintError(fmt.Sprintf("Error computing %s: %s", product, err.Error()))
		return
	}

	grid, _, err := raster.ReadGeoTIFF(result.Output)
	if err != nil {
		PrintError(err.Error())
		return
	}
	imagePath := resultFile(resultPath, scene.ID, product+".png")
	if err := output.SaveImage(output.RenderGrid(grid, cm, -1, 1), imagePath); err != nil {
		PrintError(fmt.Sprintf("Error creating image: %s", err.Error()))
		return
	}
	densityPath := resultFile(resultPath, scene.ID, product+"_density.png")
	if err := delivery.DensityPlot(grid, fmt.Sprintf("%s %s", scene.ID, product), densityPath); err != nil {
		PrintWarning(fmt.Sprintf("No density plot: %s", err.Error()))
		densityPath = "-"
	}

	PrintSuccess(fmt.Sprintf("Successful analysis!\nIndex located at: %s\nImage located at: %s\nDensity plot located at: %s",
		result.Output, imagePath, densityPath))
}

func orDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
