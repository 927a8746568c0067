package edge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ironsheep/pixel-tools-mcp/internal/convolution"
	"github.com/ironsheep/pixel-tools-mcp/internal/pixel"
)

// Operator is a pair of gradient kernels with a magnitude threshold.
type Operator struct {
	Name      string
	X         pixel.Kernel
	Y         pixel.Kernel
	Threshold int
}

// Default magnitude thresholds.
const (
	RobertsThreshold = 10
	PrewittThreshold = 50
	SobelThreshold   = 90
	ScharrThreshold  = 90
)

// Roberts returns the 2×2 Roberts cross. Its kernels are anchored at the
// top-left cell, so the footprint of pixel (x,y) is (x..x+1, y..y+1).
func Roberts() Operator {
	return Operator{
		Name: "roberts",
		X: pixel.MustKernel([][]float64{
			{1, 0},
			{0, -1},
		}, pixel.AnchorTopLeft),
		Y: pixel.MustKernel([][]float64{
			{0, 1},
			{-1, 0},
		}, pixel.AnchorTopLeft),
		Threshold: RobertsThreshold,
	}
}

// Prewitt returns the 3×3 Prewitt operator.
func Prewitt() Operator {
	return Operator{
		Name: "prewitt",
		X: pixel.MustKernel([][]float64{
			{-1, 0, 1},
			{-1, 0, 1},
			{-1, 0, 1},
		}, pixel.AnchorCenter),
		Y: pixel.MustKernel([][]float64{
			{-1, -1, -1},
			{0, 0, 0},
			{1, 1, 1},
		}, pixel.AnchorCenter),
		Threshold: PrewittThreshold,
	}
}

// Sobel returns the 3×3 Sobel operator.
func Sobel() Operator {
	return Operator{
		Name: "sobel",
		X: pixel.MustKernel([][]float64{
			{-1, 0, 1},
			{-2, 0, 2},
			{-1, 0, 1},
		}, pixel.AnchorCenter),
		Y: pixel.MustKernel([][]float64{
			{-1, -2, -1},
			{0, 0, 0},
			{1, 2, 1},
		}, pixel.AnchorCenter),
		Threshold: SobelThreshold,
	}
}

// Scharr returns the 3×3 Scharr operator.
func Scharr() Operator {
	return Operator{
		Name: "scharr",
		X: pixel.MustKernel([][]float64{
			{3, 10, 3},
			{0, 0, 0},
			{-3, -10, -3},
		}, pixel.AnchorCenter),
		Y: pixel.MustKernel([][]float64{
			{3, 0, -3},
			{10, 0, -10},
			{3, 0, -3},
		}, pixel.AnchorCenter),
		Threshold: ScharrThreshold,
	}
}

var operators = map[string]func() Operator{
	"roberts": Roberts,
	"prewitt": Prewitt,
	"sobel":   Sobel,
	"scharr":  Scharr,
}

// Names lists the operator names accepted by Lookup, sorted.
func Names() []string {
	names := make([]string, 0, len(operators))
	for n := range operators {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the operator with the given case-insensitive name and its
// default threshold.
func Lookup(name string) (Operator, error) {
	ctor, ok := operators[strings.ToLower(name)]
	if !ok {
		return Operator{}, pixel.Invalidf("unknown edge operator %q (want one of %s)", name, strings.Join(Names(), ", "))
	}
	return ctor(), nil
}

// WithAnchor re-anchors both kernels. It lets the Roberts cross switch
// between the top-left footprint and the bottom-right one.
func (op Operator) WithAnchor(a pixel.Anchor) (Operator, error) {
	x, err := op.X.WithAnchor(a)
	if err != nil {
		return Operator{}, err
	}
	y, err := op.Y.WithAnchor(a)
	if err != nil {
		return Operator{}, err
	}
	op.X, op.Y = x, y
	return op, nil
}

// Gradient returns the per-pixel magnitude floor(sqrt(gx² + gy²)).
func Gradient(buf *pixel.Buffer, op Operator) (*pixel.Grid, error) {
	gx, err := convolution.Apply(buf, op.X)
	if err != nil {
		return nil, fmt.Errorf("%s gradient: %w", op.Name, err)
	}
	gy, err := convolution.Apply(buf, op.Y)
	if err != nil {
		return nil, fmt.Errorf("%s gradient: %w", op.Name, err)
	}
	return convolution.Magnitude(gx, gy)
}

// Detect marks pixels whose gradient magnitude is strictly above the
// operator threshold.
func Detect(buf *pixel.Buffer, op Operator) (*pixel.Buffer, error) {
	if op.Threshold < 0 {
		return nil, fmt.Errorf("%s: %w", op.Name, pixel.Invalidf("negative threshold %d", op.Threshold))
	}
	mag, err := Gradient(buf, op)
	if err != nil {
		return nil, err
	}
	return Mask(mag, op)
}

// Mask thresholds a magnitude computed by Gradient: pixels strictly above
// op.Threshold become 255.
func Mask(mag *pixel.Grid, op Operator) (*pixel.Buffer, error) {
	if err := pixel.CheckGrid(mag); err != nil {
		return nil, fmt.Errorf("%s: %w", op.Name, err)
	}
	if op.Threshold < 0 {
		return nil, fmt.Errorf("%s: %w", op.Name, pixel.Invalidf("negative threshold %d", op.Threshold))
	}

	out, err := pixel.NewBuffer(mag.Width(), mag.Height())
	if err != nil {
		return nil, err
	}
	limit := float64(op.Threshold)
	for y := 0; y < mag.Height(); y++ {
		for x := 0; x < mag.Width(); x++ {
			if mag.At(x, y, 0) > limit {
				out.Set(x, y, 255)
			}
		}
	}
	return out, nil
}
