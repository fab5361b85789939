package raster

import (
	"math"
)

// Grid is a row-major 2-D float raster. NaN marks an invalid cell.
type Grid struct {
	Rows int
	Cols int
	Data []float64
}

// NewGrid returns a grid of the given size with every cell set to fill.
func NewGrid(rows, cols int, fill float64) Grid {
	data := make([]float64, rows*cols)
	if fill != 0 {
		for i := range data {
			data[i] = fill
		}
	}
	return Grid{Rows: rows, Cols: cols, Data: data}
}

// GridFromRows copies a slice of rows into a Grid. All rows must have the same length.
func GridFromRows(rows [][]float64) (Grid, error) {
	if len(rows) == 0 {
		return Grid{}, nil
	}
	cols := len(rows[0])
	g := Grid{Rows: len(rows), Cols: cols, Data: make([]float64, 0, len(rows)*cols)}
	for i, row := range rows {
		if len(row) != cols {
			return Grid{}, &ShapeMismatchError{
				Op:    "rows",
				Left:  [2]int{1, cols},
				Right: [2]int{1, len(row)},
				Index: i,
			}
		}
		g.Data = append(g.Data, row...)
	}
	return g, nil
}

func (g Grid) At(row, col int) float64 {
	return g.Data[row*g.Cols+col]
}

func (g Grid) Shape() [2]int {
	return [2]int{g.Rows, g.Cols}
}

// Clone returns a deep copy.
func (g Grid) Clone() Grid {
	data := make([]float64, len(g.Data))
	copy(data, g.Data)
	return Grid{Rows: g.Rows, Cols: g.Cols, Data: data}
}

// Rows2D returns the grid as a slice of row slices backed by a fresh copy.
func (g Grid) Rows2D() [][]float64 {
	c := g.Clone()
	result := make([][]float64, c.Rows)
	for i := range result {
		result[i] = c.Data[i*c.Cols : (i+1)*c.Cols]
	}
	return result
}

// Map applies fn to every cell and returns a new grid.
func (g Grid) Map(fn func(float64) float64) Grid {
	out := Grid{Rows: g.Rows, Cols: g.Cols, Data: make([]float64, len(g.Data))}
	for i, v := range g.Data {
		out.Data[i] = fn(v)
	}
	return out
}

// Valid returns the finite values of the grid in row-major order.
func (g Grid) Valid() []float64 {
	values := make([]float64, 0, len(g.Data))
	for _, v := range g.Data {
		if isValid(v) {
			values = append(values, v)
		}
	}
	return values
}

// ValidCount counts the finite cells.
func (g Grid) ValidCount() int {
	n := 0
	for _, v := range g.Data {
		if isValid(v) {
			n++
		}
	}
	return n
}

// MinMax returns the smallest and largest finite values. ok is false when the
// grid has no finite cell.
func (g Grid) MinMax() (min, max float64, ok bool) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range g.Data {
		if !isValid(v) {
			continue
		}
		ok = true
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if !ok {
		return 0, 0, false
	}
	return min, max, true
}

// MaskWhere returns a copy of g with every cell for which invalid returns true set to NaN.
func (g Grid) MaskWhere(invalid func(i int, v float64) bool) Grid {
	out := g.Clone()
	for i, v := range out.Data {
		if invalid(i, v) {
			out.Data[i] = math.NaN()
		}
	}
	return out
}

// IsValid reports whether v is a usable sample.
func IsValid(v float64) bool {
	return isValid(v)
}

func isValid(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// SameShape fails with a ShapeMismatchError when the grids differ in dimensions.
func SameShape(op string, a, b Grid) error {
	if a.Rows != b.Rows || a.Cols != b.Cols {
		return &ShapeMismatchError{Op: op, Left: a.Shape(), Right: b.Shape()}
	}
	return nil
}

// IntGrid holds integer codes or scores, one per pixel.
type IntGrid struct {
	Rows int
	Cols int
	Data []int
}

func (g IntGrid) At(row, col int) int {
	return g.Data[row*g.Cols+col]
}

func (g IntGrid) Shape() [2]int {
	return [2]int{g.Rows, g.Cols}
}

func (g IntGrid) Float() Grid {
	out := Grid{Rows: g.Rows, Cols: g.Cols, Data: make([]float64, len(g.Data))}
	for i, v := range g.Data {
		out.Data[i] = float64(v)
	}
	return out
}

// ByteGrid is an 8-bit display raster. Invalid cells hold 0 and are flagged in Invalid.
type ByteGrid struct {
	Rows    int
	Cols    int
	Data    []uint8
	Invalid []bool
}

func (b ByteGrid) At(row, col int) uint8 {
	return b.Data[row*b.Cols+col]
}

func (b ByteGrid) Shape() [2]int {
	return [2]int{b.Rows, b.Cols}
}

// Float converts the 8-bit grid back to floats, invalid cells becoming NaN.
func (b ByteGrid) Float() Grid {
	out := Grid{Rows: b.Rows, Cols: b.Cols, Data: make([]float64, len(b.Data))}
	for i, v := range b.Data {
		if b.Invalid != nil && b.Invalid[i] {
			out.Data[i] = math.NaN()
			continue
		}
		out.Data[i] = float64(v)
	}
	return out
}
