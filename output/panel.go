package output

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/forest-guardian/landsat-toa/internal/properties"
	"github.com/forest-guardian/landsat-toa/internal/raster"
)

const (
	panelTitleHeight = 24
	panelGap         = 10
)

// Panel lays images out side by side, at most columns per row, each with its
// title drawn above it.
func Panel(images []image.Image, titles []string, columns int) (image.Image, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("no images provided")
	}
	if len(titles) != 0 && len(titles) != len(images) {
		return nil, fmt.Errorf("%d titles for %d images", len(titles), len(images))
	}
	if columns <= 0 || columns > len(images) {
		columns = len(images)
	}
	rows := int(math.Ceil(float64(len(images)) / float64(columns)))

	cellW, cellH := 0, 0
	for _, img := range images {
		b := img.Bounds()
		cellW = max(cellW, b.Dx())
		cellH = max(cellH, b.Dy())
	}
	cellH += panelTitleHeight

	width := columns*cellW + (columns+1)*panelGap
	height := rows*cellH + (rows+1)*panelGap
	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	for i, img := range images {
		x := panelGap + (i%columns)*(cellW+panelGap)
		y := panelGap + (i/columns)*(cellH+panelGap)
		if len(titles) > 0 {
			dc.SetRGB(0, 0, 0)
			dc.DrawStringAnchored(titles[i], float64(x)+float64(cellW)/2, float64(y)+panelTitleHeight/2, 0.5, 0.5)
		}
		dc.DrawImage(img, x, y+panelTitleHeight)
	}
	return dc.Image(), nil
}

// SavePanel renders Panel into path.
func SavePanel(images []image.Image, titles []string, columns int, path string) error {
	img, err := Panel(images, titles, columns)
	if err != nil {
		return err
	}
	return SaveImage(img, path)
}

// MarkPixel circles pixel (x, y) on a copy of img.
func MarkPixel(img image.Image, x, y int) image.Image {
	b := img.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy())
	dc.DrawImage(img, 0, 0)

	radius := math.Max(3, float64(min(b.Dx(), b.Dy()))/50)
	dc.SetRGB(1, 0, 0)
	dc.SetLineWidth(2)
	dc.DrawCircle(float64(x)+0.5, float64(y)+0.5, radius)
	dc.Stroke()
	return dc.Image()
}

// LabelsWithLegend renders k-means labels with a legend of the k clusters
// below the image.
func LabelsWithLegend(labels raster.Grid, k int) image.Image {
	const (
		legendSpacing = 20
		legendX       = 10
	)
	img := RenderLabels(labels)
	width := max(labels.Cols, 120)
	legendHeight := k*legendSpacing + 10
	totalHeight := labels.Rows + legendHeight

	dc := gg.NewContext(width, totalHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.DrawImage(img, 0, 0)

	palette := properties.ClusterColors
	for i := 0; i < k; i++ {
		y := labels.Rows + 5 + i*legendSpacing
		c := palette[i%len(palette)]
		dc.SetColor(color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
		dc.DrawRectangle(legendX, float64(y), 15, 15)
		dc.Fill()

		dc.SetRGB(0, 0, 0)
		dc.DrawRectangle(legendX, float64(y), 15, 15)
		dc.SetLineWidth(1)
		dc.Stroke()
		dc.DrawStringAnchored(fmt.Sprintf("Cluster %d", i), legendX+20, float64(y)+7, 0, 0.5)
	}
	return dc.Image()
}
