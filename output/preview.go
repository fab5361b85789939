package output

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/forest-guardian/landsat-toa/internal/properties"
	"github.com/forest-guardian/landsat-toa/internal/raster"
	log "github.com/sirupsen/logrus"
)

var transparent = color.RGBA{}

// RenderPreview paints g through cm over its own valid range.
func RenderPreview(g raster.Grid, cm Colormap) *image.RGBA {
	mn, mx, _ := g.MinMax()
	return RenderGrid(g, cm, mn, mx)
}

// RenderGrid paints a float grid through cm over the display range [min, max].
// Invalid cells are transparent.
func RenderGrid(g raster.Grid, cm Colormap, min, max float64) *image.RGBA {
	if cm == nil {
		cm = DefaultColormap
	}
	img := image.NewRGBA(image.Rect(0, 0, g.Cols, g.Rows))
	for y := 0; y < g.Rows; y++ {
		for x := 0; x < g.Cols; x++ {
			v := g.At(y, x)
			if !raster.IsValid(v) {
				img.SetRGBA(x, y, transparent)
				continue
			}
			img.SetRGBA(x, y, cm.Color(cm.Normalize(v, min, max)))
		}
	}
	return img
}

// RenderByteGrid paints an 8-bit grid in grey levels.
func RenderByteGrid(b raster.ByteGrid) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Cols, b.Rows))
	for y := 0; y < b.Rows; y++ {
		for x := 0; x < b.Cols; x++ {
			i := y*b.Cols + x
			if b.Invalid != nil && b.Invalid[i] {
				img.SetRGBA(x, y, transparent)
				continue
			}
			v := b.Data[i]
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

// RenderLabels paints k-means labels with the cluster palette.
func RenderLabels(labels raster.Grid) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, labels.Cols, labels.Rows))
	palette := properties.ClusterColors
	for y := 0; y < labels.Rows; y++ {
		for x := 0; x < labels.Cols; x++ {
			v := labels.At(y, x)
			if !raster.IsValid(v) {
				img.SetRGBA(x, y, transparent)
				continue
			}
			c := palette[int(v)%len(palette)]
			img.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}
	return img
}

// SaveImage writes img as PNG or JPEG depending on the extension of path,
// creating the parent directory.
func SaveImage(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create output folder: %w", err)
	}
	outputFile, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer outputFile.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(outputFile, img, &jpeg.Options{Quality: 100})
	default:
		err = png.Encode(outputFile, img)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	log.WithField("path", path).Info("image created")
	return nil
}
