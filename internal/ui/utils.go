package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/forest-guardian/landsat-toa/internal/landsat"
	"github.com/forest-guardian/landsat-toa/internal/properties"
	"github.com/forest-guardian/landsat-toa/internal/raster"
)

// Colors for consistent UI
const (
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorReset  = "\033[0m"
)

var (
	stdin       = bufio.NewReader(os.Stdin)
	inputClosed bool
)

// ErrInputClosed is returned once stdin has no more answers to give.
var ErrInputClosed = errors.New("input closed")

// PrintWarning displays a warning message with consistent formatting
func PrintWarning(message string) {
	fmt.Printf("%s\nWarning:%s\n", ColorYellow, ColorReset)
	fmt.Printf("%s%s%s\n", ColorYellow, message, ColorReset)
}

// PrintError displays an error message with consistent formatting
func PrintError(message string) {
	fmt.Printf("\n%sError: %s%s\n", ColorRed, message, ColorReset)
}

// PrintSuccess displays a success message with consistent formatting
func PrintSuccess(message string) {
	fmt.Printf("\n%s%s%s\n", ColorGreen, message, ColorReset)
}

// PrintInfo displays an info message with consistent formatting
func PrintInfo(message string) {
	fmt.Printf("%s%s%s", ColorBlue, message, ColorReset)
}

// ReadString reads a string from stdin with trimming
func ReadString(prompt string) string {
	PrintInfo(prompt)
	input, err := stdin.ReadString('\n')
	if errors.Is(err, io.EOF) {
		inputClosed = true
	}
	return strings.TrimSpace(input)
}

// ReadInt reads an integer from stdin with validation
func ReadInt(prompt string, min, max int) (int, error) {
	input := ReadString(prompt)
	if input == "" && inputClosed {
		return 0, ErrInputClosed
	}
	value, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", input)
	}
	if value < min || value > max {
		return 0, fmt.Errorf("value must be between %d and %d", min, max)
	}
	return value, nil
}

// ReadFloat reads a float, returning def for an empty answer.
func ReadFloat(prompt string, def float64) (float64, error) {
	input := ReadString(prompt)
	if input == "" {
		return def, nil
	}
	value, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", input)
	}
	return value, nil
}

// ReadYesNo returns true for answers starting with y.
func ReadYesNo(prompt string) bool {
	return strings.HasPrefix(strings.ToLower(ReadString(prompt+" (y/N): ")), "y")
}

// ReadBand reads a band number between 1 and 11.
func ReadBand(prompt string) (int, error) {
	return ReadInt(prompt, 1, 11)
}

// ReadBands reads a comma separated list of band numbers.
func ReadBands(prompt string) ([]int, error) {
	return ParseBands(ReadString(prompt))
}

// ParseBands parses "4,5,6" into band numbers.
func ParseBands(input string) ([]int, error) {
	var bands []int
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		band, err := strconv.Atoi(part)
		if err != nil || band < 1 || band > 11 {
			return nil, fmt.Errorf("invalid band: %s", part)
		}
		bands = append(bands, band)
	}
	if len(bands) == 0 {
		return nil, fmt.Errorf("no bands given")
	}
	return bands, nil
}

// ReadWindow reads an optional top:bottom:left:right window.
func ReadWindow() (*raster.Window, error) {
	return raster.ParseWindow(ReadString("Enter the window top:bottom:left:right (empty for the full scene): "))
}

// ReadPixel reads one x,y pixel coordinate.
func ReadPixel(prompt string) (int, int, error) {
	input := ReadString(prompt)
	parts := strings.Split(input, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid format %q. Please use x,y", input)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid x coordinate")
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid y coordinate")
	}
	return x, y, nil
}

// ScenesIn lists the scene identifiers under root, i.e. the prefixes of every
// metadata file matching naming.
func ScenesIn(naming landsat.Naming) ([]string, error) {
	entries, err := os.ReadDir(naming.SceneRoot)
	if err != nil {
		return nil, &raster.NotFoundError{Path: naming.SceneRoot, Err: err}
	}
	var scenes []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, naming.MetadataSuffix) {
			continue
		}
		scenes = append(scenes, strings.TrimSuffix(name, naming.MetadataSuffix))
	}
	sort.Strings(scenes)
	return scenes, nil
}

// SelectScene lists the available scenes and returns the chosen one.
func SelectScene() (landsat.Scene, error) {
	naming := properties.Naming()
	scenes, err := ScenesIn(naming)
	if err != nil {
		return landsat.Scene{}, err
	}
	if len(scenes) == 0 {
		return landsat.Scene{}, fmt.Errorf("no scenes found in %s", naming.SceneRoot)
	}

	fmt.Printf("%s\nAvailable scenes:%s\n", ColorGreen, ColorReset)
	for i, scene := range scenes {
		fmt.Printf("%s%d. %s%s\n", ColorGreen, i+1, scene, ColorReset)
	}
	choice, err := ReadInt("Enter the number of the scene: ", 1, len(scenes))
	if err != nil {
		return landsat.Scene{}, err
	}
	fmt.Printf("%sYou selected the scene: %s%s\n", ColorGreen, scenes[choice-1], ColorReset)
	return naming.Scene(scenes[choice-1]), nil
}

// ReadReflectanceOptions asks for the window and the cloud filter.
func ReadReflectanceOptions() (landsat.ReflectanceOptions, error) {
	window, err := ReadWindow()
	if err != nil {
		return landsat.ReflectanceOptions{}, err
	}
	return landsat.ReflectanceOptions{
		Window:          window,
		SkipCloudFilter: ReadYesNo("Skip the cloud filter?"),
		Policy:          properties.MaskPolicy(),
	}, nil
}

// CreateResultDirectory creates $ROOT_PATH/data/result/<scene>/<resultType>.
func CreateResultDirectory(scene, resultType string) (string, error) {
	resultPath := properties.DataPath("result", scene, resultType)
	if err := os.MkdirAll(resultPath, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create result folder: %v", err)
	}
	return resultPath, nil
}

func resultFile(dir, scene, name string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s", scene, name))
}
