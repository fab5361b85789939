package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/forest-guardian/landsat-toa/internal/delivery"
	"github.com/forest-guardian/landsat-toa/internal/properties"
)

// RunBatch handles the UI for running a CSV of product jobs
func RunBatch() {
	PrintWarning("The input should be a '.csv' file present in data/batch folder with the columns scene,product,band,window,output.\nProducts: toa, wdrvi, ndvi, preview. Results are written to data/result/batch.")

	name := ReadString("Enter the batch file name: ")
	if name == "" {
		PrintError("batch file name cannot be empty")
		return
	}
	jobsPath := properties.DataPath("batch", name)
	outputDir := properties.DataPath("result", "batch", strings.TrimSuffix(name, filepath.Ext(name)))
	resultsPath := filepath.Join(outputDir, fmt.Sprintf("results_%s.csv", time.Now().Format("2006-01-02_150405")))

	results, err := delivery.RunBatch(context.Background(), jobsPath, delivery.BatchOptions{
		Naming:      properties.Naming(),
		OutputDir:   outputDir,
		Workers:     properties.Workers(),
		Policy:      properties.MaskPolicy(),
		ResultsPath: resultsPath,
		Progress:    true,
		Notify:      true,
	})
	if err != nil {
		PrintError(fmt.Sprintf("Error running batch: %s", err.Error()))
		return
	}

	failed := 0
	for _, r := range results {
		if r.Status == delivery.StatusFailed {
			failed++
			PrintError(fmt.Sprintf("%s %s: %s", r.Scene, r.Product, r.Error))
		}
	}
	PrintSuccess(fmt.Sprintf("Batch finished: %d jobs, %d failed.\nResults located at: %s", len(results), failed, resultsPath))
}
