package ui

import (
	"fmt"
	"strings"

	"github.com/forest-guardian/landsat-toa/internal/landsat"
	"github.com/forest-guardian/landsat-toa/internal/properties"
)

// ListScenes handles the UI for viewing the scenes in the scene folder
func ListScenes() {
	naming := properties.Naming()
	scenes, err := ScenesIn(naming)
	if err != nil {
		PrintError(fmt.Sprintf("Error reading scene folder: %s", err.Error()))
		return
	}

	PrintWarning(fmt.Sprintf("To add a new scene, copy its band, %s and %s files to '%s'.", naming.QualitySuffix, naming.MetadataSuffix, naming.SceneRoot))

	fmt.Printf("\n%sAvailable scenes:%s\n", ColorGreen, ColorReset)
	for _, scene := range scenes {
		fmt.Printf("%s- %s%s\n", ColorGreen, scene, ColorReset)
	}
}

// ShowMetadata handles the UI for printing metadata entries of a scene
func ShowMetadata() {
	scene, err := SelectScene()
	if err != nil {
		PrintError(err.Error())
		return
	}
	md, err := scene.Metadata()
	if err != nil {
		PrintError(err.Error())
		return
	}
	filter := strings.ToUpper(ReadString("Enter a key filter (e.g. REFLECTANCE, empty for the main parameters): "))

	fmt.Printf("\n%s%d entries in %s%s\n", ColorGreen, md.Len(), scene.MetadataPath(), ColorReset)
	if date, err := md.AcquisitionDate(); err == nil {
		fmt.Printf("%sAcquired %s (day %d)%s\n", ColorGreen, date.Format("2006-01-02"), date.YearDay(), ColorReset)
	}
	if filter == "" {
		for band := 1; band <= 9; band++ {
			p, err := landsat.ReflectanceParametersFor(md, band)
			if err != nil {
				continue
			}
			fmt.Printf("%s- band %d: mult %g, add %g, sun elevation %g%s\n", ColorGreen, band, p.Mult, p.Add, p.SunElevation, ColorReset)
		}
		return
	}
	for _, key := range md.Keys() {
		if strings.Contains(key, filter) {
			value, _ := md.Get(key)
			fmt.Printf("%s- %s = %s%s\n", ColorGreen, key, value, ColorReset)
		}
	}
}
