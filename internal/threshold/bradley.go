package threshold

import (
	"fmt"
	"math"

	"github.com/ironsheep/pixel-tools-mcp/internal/pixel"
)

// BradleyOptions tunes the adaptive thresholder.
type BradleyOptions struct {
	// Sensitivity is t in ratio = 1 − t. A pixel is foreground when it is
	// brighter than ratio times its window mean, so a larger t marks more
	// pixels as foreground. Must be finite and below 1.
	Sensitivity float64 `toml:"sensitivity" json:"sensitivity"`

	// WindowDivisor sets the window half-size s = width / WindowDivisor.
	WindowDivisor int `toml:"window_divisor" json:"window_divisor"`
}

// DefaultBradleyOptions returns t = 0.15 and a divisor of 16.
func DefaultBradleyOptions() BradleyOptions {
	return BradleyOptions{Sensitivity: 0.15, WindowDivisor: 16}
}

// Validate reports options that cannot produce a mask.
func (o BradleyOptions) Validate() error {
	if math.IsNaN(o.Sensitivity) || math.IsInf(o.Sensitivity, 0) || o.Sensitivity >= 1 {
		return pixel.Invalidf("bradley sensitivity %v must be finite and below 1", o.Sensitivity)
	}
	if o.WindowDivisor <= 0 {
		return pixel.Invalidf("bradley window divisor %d must be positive", o.WindowDivisor)
	}
	return nil
}

// Bradley thresholds buf against local window means.
//
// For each pixel the window spans s pixels on every side (clipped to the
// buffer) and its sum comes from an integral image in constant time. The
// pixel becomes 255 when value·area > windowSum·(1 − Sensitivity), else 0.
func Bradley(buf *pixel.Buffer, opts BradleyOptions) (*pixel.Buffer, error) {
	if err := pixel.Check(buf); err != nil {
		return nil, fmt.Errorf("bradley: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("bradley: %w", err)
	}

	integral, err := pixel.NewIntegral(buf)
	if err != nil {
		return nil, fmt.Errorf("bradley: %w", err)
	}

	width, height := buf.Width(), buf.Height()
	s := width / opts.WindowDivisor
	ratio := 1 - opts.Sensitivity

	out, err := pixel.NewBuffer(width, height)
	if err != nil {
		return nil, err
	}
	for y := 0; y < height; y++ {
		y1 := max(y-s, 0)
		y2 := min(y+s, height-1)
		for x := 0; x < width; x++ {
			x1 := max(x-s, 0)
			x2 := min(x+s, width-1)
			area := int64((x2 - x1 + 1) * (y2 - y1 + 1))
			sum := integral.RectSum(x1, y1, x2, y2)

			value := int64(buf.At(x, y, 0))
			if float64(value*area) > float64(sum)*ratio {
				out.Set(x, y, 255)
			}
		}
	}
	return out, nil
}
