package corner

import (
	"fmt"
	"math"

	"github.com/ironsheep/pixel-tools-mcp/internal/pixel"
)

// Keypoint is a detected corner.
type Keypoint struct {
	X        int     `json:"x"`
	Y        int     `json:"y"`
	Response float64 `json:"response"`
}

// MoravecOptions tunes the detector.
type MoravecOptions struct {
	// Window is the odd patch size w.
	Window int `toml:"window" json:"window"`
	// Threshold zeroes responses that do not exceed it.
	Threshold float64 `toml:"threshold" json:"threshold"`
	// Suppression is the odd side of the non-maximum suppression window.
	Suppression int `toml:"suppression" json:"suppression"`
}

// DefaultMoravecOptions returns a 5×5 patch, threshold 40000 and a 31×31
// suppression window.
func DefaultMoravecOptions() MoravecOptions {
	return MoravecOptions{Window: 5, Threshold: 40000, Suppression: 31}
}

// Validate reports options the detector cannot run with.
func (o MoravecOptions) Validate() error {
	if o.Window < 1 || o.Window%2 == 0 {
		return pixel.Invalidf("moravec window %d must be odd and positive", o.Window)
	}
	if o.Suppression < 1 || o.Suppression%2 == 0 {
		return pixel.Invalidf("moravec suppression %d must be odd and positive", o.Suppression)
	}
	if math.IsNaN(o.Threshold) || o.Threshold < 0 {
		return pixel.Invalidf("moravec threshold %v", o.Threshold)
	}
	return nil
}

// Shifts are the eight unit displacements tried for every patch.
var Shifts = [8][2]int{
	{0, -1}, {0, 1}, {-1, 0}, {1, 0},
	{-1, -1}, {1, -1}, {1, 1}, {-1, 1},
}

// Response returns the thresholded Moravec response of buf.
//
// The raw response at (x, y) is the minimum over Shifts of
// Σ (I(u+dx, v+dy) − I(u, v))² for (u, v) in the w×w patch centered on
// (x, y). Values not above opts.Threshold become 0.
func Response(buf *pixel.Buffer, opts MoravecOptions) (*pixel.Grid, error) {
	if err := pixel.Check(buf); err != nil {
		return nil, fmt.Errorf("moravec: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("moravec: %w", err)
	}

	width, height := buf.Width(), buf.Height()
	r := (opts.Window - 1) / 2

	minimum := make([]int64, width*height)
	for i := range minimum {
		minimum[i] = math.MaxInt64
	}

	// Outside the image both samples read white, so squared differences are
	// zero more than one pixel beyond the border. The table only needs that
	// one pixel of padding; RectSum clips the rest of a large patch.
	p := min(r, 1)
	for _, s := range Shifts {
		dx, dy := s[0], s[1]
		ssd, err := pixel.NewIntegralFunc(width+2*p, height+2*p, func(px, py int) int64 {
			u, v := px-p, py-p
			d := int64(buf.At(u+dx, v+dy, pixel.WhitePad)) - int64(buf.At(u, v, pixel.WhitePad))
			return d * d
		})
		if err != nil {
			return nil, fmt.Errorf("moravec: %w", err)
		}

		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				// Patch (x-r..x+r) sits at padded columns x-r+p..x+r+p.
				sum := ssd.RectSum(x-r+p, y-r+p, x+r+p, y+r+p)
				if i := y*width + x; sum < minimum[i] {
					minimum[i] = sum
				}
			}
		}
	}

	out, err := pixel.NewGrid(width, height)
	if err != nil {
		return nil, err
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if v := float64(minimum[y*width+x]); v > opts.Threshold {
				out.Set(x, y, v)
			}
		}
	}
	return out, nil
}

// Detect runs Response followed by Suppress.
func Detect(buf *pixel.Buffer, opts MoravecOptions) ([]Keypoint, error) {
	resp, err := Response(buf, opts)
	if err != nil {
		return nil, err
	}
	return Suppress(resp, opts.Suppression)
}
