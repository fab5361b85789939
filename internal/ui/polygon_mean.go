package ui

import (
	"context"
	"fmt"

	"github.com/forest-guardian/landsat-toa/internal/delivery"
	"github.com/forest-guardian/landsat-toa/internal/landsat"
	"github.com/forest-guardian/landsat-toa/internal/properties"
	"github.com/forest-guardian/landsat-toa/internal/raster"
	"github.com/forest-guardian/landsat-toa/output"
)

// PolygonMean handles the UI for averaging an index inside a GeoJSON polygon
// and exporting the covered pixels.
func PolygonMean() {
	PrintWarning("- The '.geojson' file should be present in data/geojsons folder and use the scene projection.\n- Leave the property empty to use the first polygon.")

	scene, err := SelectScene()
	if err != nil {
		PrintError(err.Error())
		return
	}
	name := ReadString("Enter the geojson file name: ")
	property := ReadString("Enter the feature property to match (optional): ")
	want := ""
	if property != "" {
		want = ReadString("Enter the property value: ")
	}
	polygon, err := raster.LoadPolygon(properties.DataPath("geojsons", name), property, want)
	if err != nil {
		PrintError(err.Error())
		return
	}

	product := delivery.ProductNDVI
	if !ReadYesNo("Use NDVI instead of WDRVI?") {
		product = delivery.ProductWDRVI
	}
	resultPath, err := CreateResultDirectory(scene.ID, "polygon")
	if err != nil {
		PrintError(err.Error())
		return
	}
	result, err := delivery.BuildProduct(context.Background(), delivery.Request{
		Scene:   scene,
		Product: product,
		Options: landsat.ReflectanceOptions{Policy: properties.MaskPolicy()},
		Output:  resultFile(resultPath, scene.ID, product+".TIF"),
	})
	if err != nil {
		PrintError(err.Error())
		return
	}
	grid, ref, err := raster.ReadGeoTIFF(result.Output)
	if err != nil {
		PrintError(err.Error())
		return
	}

	mean, n, err := raster.PolygonMean(grid, ref, polygon)
	if err != nil {
		PrintError(err.Error())
		return
	}
	inside := raster.ClipToPolygon(grid, ref, polygon)
	geojsonPath := resultFile(resultPath, scene.ID, product+"_polygon.geojson")
	if err := output.WritePixelsGeoJSON(output.CollectPixels(inside), ref, product, geojsonPath); err != nil {
		PrintError(err.Error())
		return
	}
	PrintSuccess(fmt.Sprintf("Mean %s inside the polygon: %.5f over %d pixels\nPixels located at: %s", product, mean, n, geojsonPath))
}
