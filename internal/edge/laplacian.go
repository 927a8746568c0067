package edge

import (
	"fmt"
	"math"

	"github.com/ironsheep/pixel-tools-mcp/internal/convolution"
	"github.com/ironsheep/pixel-tools-mcp/internal/pixel"
)

// Laplacian kernels.
var (
	// Laplacian8 uses all eight neighbors.
	Laplacian8 = pixel.MustKernel([][]float64{
		{1, 1, 1},
		{1, -8, 1},
		{1, 1, 1},
	}, pixel.AnchorCenter)

	// Laplacian4 uses the four edge-adjacent neighbors.
	Laplacian4 = pixel.MustKernel([][]float64{
		{0, 1, 0},
		{1, -4, 1},
		{0, 1, 0},
	}, pixel.AnchorCenter)
)

// AxialMode selects how the top/bottom and left/right pairs are tested.
type AxialMode int

const (
	// AxialThreshold applies the same magnitude threshold to all four pairs.
	AxialThreshold AxialMode = iota
	// AxialSignOnly tests the axial pairs for a sign change only, as if
	// their magnitude threshold were missing and always satisfied.
	AxialSignOnly
	// AxialNever never counts the axial pairs, which is how a comparison
	// against a missing threshold evaluates at runtime. Only the two
	// diagonals can then make a pixel an edge.
	AxialNever
)

func (m AxialMode) String() string {
	switch m {
	case AxialThreshold:
		return "threshold"
	case AxialSignOnly:
		return "sign-only"
	case AxialNever:
		return "never"
	}
	return fmt.Sprintf("axial(%d)", int(m))
}

// ParseAxialMode converts a configuration name into an AxialMode.
func ParseAxialMode(s string) (AxialMode, error) {
	for _, m := range []AxialMode{AxialThreshold, AxialSignOnly, AxialNever} {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, pixel.Invalidf("unknown axial mode %q", s)
}

// LaplacianOptions tunes the zero-crossing detector.
type LaplacianOptions struct {
	// Kernel is the Laplacian used for the response; Laplacian8 by default.
	Kernel pixel.Kernel
	// Factor scales the largest response into the crossing threshold.
	Factor float64
	// MinPairs is how many antipodal pairs must cross for an edge.
	MinPairs int
	// Axial controls the top/bottom and left/right comparisons.
	Axial AxialMode
}

// DefaultLaplacianOptions returns the 8-neighbor kernel, factor 0.04, two
// pairs and a uniform threshold.
func DefaultLaplacianOptions() LaplacianOptions {
	return LaplacianOptions{Kernel: Laplacian8, Factor: 0.04, MinPairs: 2, Axial: AxialThreshold}
}

// Validate reports options the detector cannot run with.
func (o LaplacianOptions) Validate() error {
	if o.Kernel.Size() != 3 || o.Kernel.Anchor() != pixel.AnchorCenter {
		return pixel.Invalidf("laplacian kernel must be a centered 3x3")
	}
	if math.IsNaN(o.Factor) || math.IsInf(o.Factor, 0) || o.Factor < 0 {
		return pixel.Invalidf("laplacian factor %v", o.Factor)
	}
	if o.MinPairs < 1 || o.MinPairs > 4 {
		return pixel.Invalidf("laplacian min pairs %d not in [1,4]", o.MinPairs)
	}
	if o.Axial < AxialThreshold || o.Axial > AxialNever {
		return pixel.Invalidf("laplacian axial mode %d", int(o.Axial))
	}
	return nil
}

// CrossingThreshold returns Factor times the largest value of resp.
func CrossingThreshold(resp *pixel.Grid, factor float64) float64 {
	return factor * resp.Max()
}

// Laplacian marks zero crossings of the Laplacian response.
//
// For every pixel the 3×3 window of the response (zero outside) supplies
// four antipodal pairs: the two diagonals, top/bottom and left/right. A pair
// crosses when its values have strictly opposite signs and differ by more
// than the crossing threshold. The pixel is an edge when at least MinPairs
// pairs cross.
func Laplacian(buf *pixel.Buffer, opts LaplacianOptions) (*pixel.Buffer, error) {
	mask, _, err := ZeroCrossings(buf, opts)
	return mask, err
}

// ZeroCrossings is Laplacian that also returns the crossing threshold it
// derived from the response.
func ZeroCrossings(buf *pixel.Buffer, opts LaplacianOptions) (*pixel.Buffer, float64, error) {
	if err := opts.Validate(); err != nil {
		return nil, 0, fmt.Errorf("laplacian: %w", err)
	}
	resp, err := convolution.Apply(buf, opts.Kernel)
	if err != nil {
		return nil, 0, fmt.Errorf("laplacian: %w", err)
	}
	threshold := CrossingThreshold(resp, opts.Factor)

	out, err := pixel.NewBuffer(buf.Width(), buf.Height())
	if err != nil {
		return nil, 0, err
	}
	for y := 0; y < buf.Height(); y++ {
		for x := 0; x < buf.Width(); x++ {
			if crossings(resp, x, y, threshold, opts.Axial) >= opts.MinPairs {
				out.Set(x, y, 255)
			}
		}
	}
	return out, threshold, nil
}

// crossings counts the antipodal pairs around (x, y) that change sign.
func crossings(resp *pixel.Grid, x, y int, threshold float64, axial AxialMode) int {
	at := func(dx, dy int) float64 { return resp.At(x+dx, y+dy, 0) }

	n := 0
	if crosses(at(-1, -1), at(1, 1), threshold) {
		n++
	}
	if crosses(at(1, -1), at(-1, 1), threshold) {
		n++
	}

	switch axial {
	case AxialThreshold:
		if crosses(at(0, -1), at(0, 1), threshold) {
			n++
		}
		if crosses(at(-1, 0), at(1, 0), threshold) {
			n++
		}
	case AxialSignOnly:
		if oppositeSigns(at(0, -1), at(0, 1)) {
			n++
		}
		if oppositeSigns(at(-1, 0), at(1, 0)) {
			n++
		}
	}
	return n
}

func crosses(a, b, threshold float64) bool {
	return oppositeSigns(a, b) && math.Abs(a-b) > threshold
}

func oppositeSigns(a, b float64) bool {
	return (a < 0 && b > 0) || (a > 0 && b < 0)
}
