package ui

import (
	"context"
	"fmt"

	"github.com/forest-guardian/landsat-toa/internal/delivery"
	"github.com/forest-guardian/landsat-toa/internal/stats"
)

// ClusterScene handles the UI for k-means clustering of a band stack
func ClusterScene() {
	scene, err := SelectScene()
	if err != nil {
		PrintError(err.Error())
		return
	}
	bands, err := ReadBands("Enter the bands to cluster (e.g. 2,3,4,5): ")
	if err != nil {
		PrintError(err.Error())
		return
	}
	k, err := ReadInt("Enter the number of clusters (0 to estimate): ", 0, 20)
	if err != nil {
		PrintError(err.Error())
		return
	}
	if k == 1 {
		PrintError("at least 2 clusters are needed")
		return
	}
	opts, err := ReadReflectanceOptions()
	if err != nil {
		PrintError(err.Error())
		return
	}

	resultPath, err := CreateResultDirectory(scene.ID, "kmeans")
	if err != nil {
		PrintError(err.Error())
		return
	}
	report, err := delivery.RunClustering(context.Background(), delivery.ClusterRequest{
		Scene:       scene,
		Bands:       bands,
		Window:      opts.Window,
		Options:     opts,
		K:           k,
		Seed:        stats.DefaultSeed,
		Standardize: ReadYesNo("Standardize the bands first?"),
		OutputDir:   resultPath,
	})
	if err != nil {
		PrintError(fmt.Sprintf("Error clustering scene: %s", err.Error()))
		return
	}

	fmt.Println(delivery.FormatClusterReport(report))
	PrintSuccess(fmt.Sprintf("Successful clustering!\nLabels located at: %s\nImage located at: %s\nClusters located at: %s",
		report.LabelsPath, report.ImagePath, report.CSVPath))
}
