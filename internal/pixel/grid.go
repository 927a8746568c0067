package pixel

import "math"

// Grid is a real-valued response buffer. Values are never clamped, so a
// gradient or Laplacian response keeps its sign and full magnitude.
type Grid struct {
	width  int
	height int
	vals   []float64
}

// NewGrid allocates a zeroed width×height grid.
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, Invalidf("grid dimensions %dx%d", width, height)
	}
	return &Grid{width: width, height: height, vals: make([]float64, width*height)}, nil
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Contains reports whether (x, y) addresses a stored cell.
func (g *Grid) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

// At returns the value at (x, y), or outside for coordinates beyond the grid.
func (g *Grid) At(x, y int, outside float64) float64 {
	if !g.Contains(x, y) {
		return outside
	}
	return g.vals[y*g.width+x]
}

// Set stores v at (x, y). Writes outside the grid are ignored.
func (g *Grid) Set(x, y int, v float64) {
	if g.Contains(x, y) {
		g.vals[y*g.width+x] = v
	}
}

// Max returns the largest value in the grid.
func (g *Grid) Max() float64 {
	m := math.Inf(-1)
	for _, v := range g.vals {
		if v > m {
			m = v
		}
	}
	return m
}

// Min returns the smallest value in the grid.
func (g *Grid) Min() float64 {
	m := math.Inf(1)
	for _, v := range g.vals {
		if v < m {
			m = v
		}
	}
	return m
}

// Values returns a copy of the row-major values.
func (g *Grid) Values() []float64 {
	out := make([]float64, len(g.vals))
	copy(out, g.vals)
	return out
}
