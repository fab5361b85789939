package output

import (
	"fmt"
	"image/color"
	"math"
)

// Colormap is either a NamedColormap or an ExplicitColormap.
type Colormap interface {
	// Color maps v, already normalized to [0, 1], to a colour.
	Color(norm float64) color.RGBA
	// Normalize maps a data value to [0, 1] given the display range.
	Normalize(v, min, max float64) float64
	isColormap()
}

// NamedColormap selects one of the built-in ramps by name. The data range comes
// from the caller.
type NamedColormap struct {
	Name string
}

// Norm fixes the data range of an ExplicitColormap.
type Norm struct {
	Min float64
	Max float64
}

// ExplicitColormap is a custom ramp with its own normalization, independent of
// the range passed by the caller.
type ExplicitColormap struct {
	Stops []color.RGBA
	Norm  Norm
}

var namedRamps = map[string][]color.RGBA{
	"gray":   {{0, 0, 0, 255}, {255, 255, 255, 255}},
	"RdYlGn": {{165, 0, 38, 255}, {255, 255, 191, 255}, {0, 104, 55, 255}},
	"BlGnRd": {{0, 0, 255, 255}, {0, 255, 0, 255}, {255, 0, 0, 255}},
}

// DefaultColormap is the ramp used for index products.
var DefaultColormap Colormap = NamedColormap{Name: "RdYlGn"}

func (c NamedColormap) Color(norm float64) color.RGBA {
	stops, ok := namedRamps[c.Name]
	if !ok {
		stops = namedRamps["gray"]
	}
	return ramp(stops, norm)
}

func (c NamedColormap) Normalize(v, min, max float64) float64 {
	return normalize(v, min, max)
}

func (NamedColormap) isColormap() {}

func (c ExplicitColormap) Color(norm float64) color.RGBA {
	if len(c.Stops) == 0 {
		return namedRamps["gray"][0]
	}
	return ramp(c.Stops, norm)
}

// Normalize ignores min and max and uses the colormap's own Norm.
func (c ExplicitColormap) Normalize(v, _, _ float64) float64 {
	return normalize(v, c.Norm.Min, c.Norm.Max)
}

func (ExplicitColormap) isColormap() {}

// ParseColormap accepts a ramp name.
func ParseColormap(name string) (Colormap, error) {
	if _, ok := namedRamps[name]; !ok {
		return nil, fmt.Errorf("unknown colormap %q", name)
	}
	return NamedColormap{Name: name}, nil
}

func normalize(value, min, max float64) float64 {
	if max == min {
		return 0
	}
	norm := (value - min) / (max - min)
	if norm < 0 {
		return 0
	}
	if norm > 1 {
		return 1
	}
	return norm
}

func ramp(stops []color.RGBA, norm float64) color.RGBA {
	if len(stops) == 1 || math.IsNaN(norm) {
		return stops[0]
	}
	pos := norm * float64(len(stops)-1)
	i := int(math.Floor(pos))
	if i >= len(stops)-1 {
		return stops[len(stops)-1]
	}
	if i < 0 {
		return stops[0]
	}
	t := pos - float64(i)
	a, b := stops[i], stops[i+1]
	lerp := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + t*(float64(y)-float64(x))))
	}
	return color.RGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: 255}
}
