package ui

import (
	"context"
	"fmt"

	"github.com/forest-guardian/landsat-toa/internal/delivery"
)

// ConvertBand handles the UI for converting one band to TOA reflectance
func ConvertBand() {
	PrintWarning("- Scene files (<scene>_B<n>.TIF, <scene>_BQA.TIF, <scene>_MTL.TXT) should be present in the scene folder.")

	scene, err := SelectScene()
	if err != nil {
		PrintError(err.Error())
		return
	}
	band, err := ReadBand("Enter the band number: ")
	if err != nil {
		PrintError(err.Error())
		return
	}
	opts, err := ReadReflectanceOptions()
	if err != nil {
		PrintError(err.Error())
		return
	}

	resultPath, err := CreateResultDirectory(scene.ID, "toa")
	if err != nil {
		PrintError(err.Error())
		return
	}

	req := delivery.Request{Scene: scene, Band: band, Window: opts.Window, Options: opts}
	req.Product = delivery.ProductTOA
	req.Output = resultFile(resultPath, scene.ID, fmt.Sprintf("B%d_toa.TIF", band))
	tiff, err := delivery.BuildProduct(context.Background(), req)
	if err != nil {
		PrintError(fmt.Sprintf("Error converting band: %s", err.Error()))
		return
	}

	req.Product = delivery.ProductPreview
	req.Output = resultFile(resultPath, scene.ID, fmt.Sprintf("B%d_toa.png", band))
	preview, err := delivery.BuildProduct(context.Background(), req)
	if err != nil {
		PrintError(fmt.Sprintf("Error creating preview: %s", err.Error()))
		return
	}

	PrintSuccess(fmt.Sprintf("Successful conversion! %d of %d cells valid.\nReflectance located at: %s\nPreview located at: %s",
		tiff.ValidCells, tiff.Rows*tiff.Cols, tiff.Output, preview.Output))
}
