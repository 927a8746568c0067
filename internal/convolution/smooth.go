package convolution

import (
	"fmt"
	"math"

	"github.com/ironsheep/pixel-tools-mcp/internal/pixel"
)

// Preset smoothing kernels.
var (
	// Identity3 leaves interior pixels unchanged.
	Identity3 = pixel.MustKernel([][]float64{
		{0, 0, 0},
		{0, 1, 0},
		{0, 0, 0},
	}, pixel.AnchorCenter)

	// Smoothing3 is a weighted 3×3 average; its weights sum to 6.
	Smoothing3 = pixel.MustKernel([][]float64{
		{0.5, 0.75, 0.5},
		{0.75, 1, 0.75},
		{0.5, 0.75, 0.5},
	}, pixel.AnchorCenter)

	// Gaussian5 is a 5×5 Gaussian table normalised close to 1.
	Gaussian5 = pixel.MustKernel([][]float64{
		{0.000789, 0.006581, 0.013347, 0.006581, 0.000789},
		{0.006581, 0.054901, 0.111345, 0.054901, 0.006581},
		{0.013347, 0.11345, 0.225821, 0.111345, 0.013347},
		{0.006581, 0.054901, 0.111345, 0.054901, 0.006581},
		{0.000789, 0.006581, 0.013347, 0.006581, 0.000789},
	}, pixel.AnchorCenter)
)

// Preset pairs a named kernel with the divisor it is meant to be used with.
type Preset struct {
	Kernel  pixel.Kernel
	Divisor float64
}

// Presets lists the kernels addressable by name from the tool interface.
var Presets = map[string]Preset{
	"identity":  {Identity3, 1},
	"smooth3":   {Smoothing3, 6},
	"gaussian5": {Gaussian5, 1},
}

// Smooth convolves buf with kernel, divides by divisor, floors and clamps the
// result to [0,255].
func Smooth(buf *pixel.Buffer, kernel pixel.Kernel, divisor float64) (*pixel.Buffer, error) {
	if divisor == 0 || math.IsNaN(divisor) || math.IsInf(divisor, 0) {
		return nil, fmt.Errorf("smooth: %w", pixel.Invalidf("divisor %v", divisor))
	}
	resp, err := Apply(buf, kernel)
	if err != nil {
		return nil, err
	}

	out, err := pixel.NewBuffer(buf.Width(), buf.Height())
	if err != nil {
		return nil, err
	}
	for y := 0; y < buf.Height(); y++ {
		for x := 0; x < buf.Width(); x++ {
			out.Set(x, y, clampByte(math.Floor(resp.At(x, y, 0)/divisor)))
		}
	}
	return out, nil
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
