package ui

import (
	"errors"
	"fmt"
	"os"
)

type menuOption struct {
	title   string
	handler func()
}

// ShowMenu displays the main menu and handles user input
func ShowMenu() {
	menuOptions := []menuOption{
		{"Convert a band to top-of-atmosphere reflectance", ConvertBand},
		{"Compute a vegetation index (WDRVI or NDVI)", AnalyzeIndices},
		{"Summarize scene bands", SceneSummary},
		{"Cluster scene bands with k-means", ClusterScene},
		{"Inspect a pixel", InspectPixel},
		{"Average an index inside a polygon", PolygonMean},
		{"Run a batch of products", RunBatch},
		{"View the list of available scenes", ListScenes},
		{"View scene metadata", ShowMetadata},
		{"Exit the application", func() { fmt.Println("Exiting..."); os.Exit(0) }},
	}

	for {
		fmt.Println("\033[34m===================\033[0m")
		for i, opt := range menuOptions {
			fmt.Printf("\033[34m%d. %s\033[0m\n", i+1, opt.title)
		}

		choice, err := ReadInt("Please enter your choice: ", 1, len(menuOptions))
		if errors.Is(err, ErrInputClosed) {
			fmt.Println("\nExiting...")
			return
		}
		if err != nil {
			PrintError(err.Error())
			continue
		}

		menuOptions[choice-1].handler()
	}
}
