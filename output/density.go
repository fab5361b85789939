package output

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// DensityPoints is the number of points the kernel density is evaluated at.
const DensityPoints = 100

// ScottBandwidth is the Gaussian kernel bandwidth n^(-1/5) * std.
func ScottBandwidth(values []float64) float64 {
	std := stat.StdDev(values, nil)
	return std * math.Pow(float64(len(values)), -0.2)
}

// KDE evaluates a Gaussian kernel density estimate of values at n evenly
// spaced points spanning their range.
func KDE(values []float64, n int) (plotter.XYs, error) {
	if len(values) < 2 {
		return nil, fmt.Errorf("kernel density needs at least 2 values, got %d", len(values))
	}
	h := ScottBandwidth(values)
	if h == 0 || math.IsNaN(h) {
		return nil, fmt.Errorf("kernel density of constant values is undefined")
	}

	xs := make([]float64, n)
	floats.Span(xs, floats.Min(values), floats.Max(values))
	norm := 1 / (float64(len(values)) * h * math.Sqrt(2*math.Pi))

	pts := make(plotter.XYs, n)
	for i, x := range xs {
		var sum float64
		for _, v := range values {
			u := (x - v) / h
			sum += math.Exp(-0.5 * u * u)
		}
		pts[i] = plotter.XY{X: x, Y: sum * norm}
	}
	return pts, nil
}

// DensityPlot saves a KDE curve of values as a PNG.
func DensityPlot(values []float64, title, xLabel, path string) error {
	pts, err := KDE(values, DensityPoints)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = "Density"

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Width = vg.Points(1)
	p.Add(line)
	return savePlot(p, path)
}

// HistogramPlot saves a histogram of values with the given number of bins.
func HistogramPlot(values []float64, bins int, title, xLabel, path string) error {
	if len(values) == 0 {
		return fmt.Errorf("no values to plot")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = "Count"

	hist, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return err
	}
	p.Add(hist)
	return savePlot(p, path)
}

func savePlot(p *plot.Plot, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create output folder: %w", err)
	}
	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot %s: %w", path, err)
	}
	return nil
}
