package threshold

import (
	"fmt"

	"github.com/ironsheep/pixel-tools-mcp/internal/pixel"
)

// Bins is the number of histogram bins, one per 8-bit intensity.
const Bins = 256

// OtsuResult holds the chosen cut and the mask it produces.
type OtsuResult struct {
	// Threshold is T*: pixels below it become 0, the rest 255.
	Threshold int `json:"threshold"`

	// Variance is the between-class variance reached at Threshold.
	// It is 0 when no bin split the image into two non-empty classes.
	Variance float64 `json:"variance"`

	// Histogram counts the pixels at each intensity.
	Histogram [Bins]int `json:"-"`

	// Mask is the binarized image.
	Mask *pixel.Buffer `json:"-"`
}

// Histogram counts how many pixels hold each intensity.
func Histogram(buf *pixel.Buffer) ([Bins]int, error) {
	var h [Bins]int
	if err := pixel.Check(buf); err != nil {
		return h, fmt.Errorf("histogram: %w", err)
	}
	for y := 0; y < buf.Height(); y++ {
		for x := 0; x < buf.Width(); x++ {
			h[buf.At(x, y, 0)]++
		}
	}
	return h, nil
}

// OtsuLevel scans the histogram once with running class statistics and
// returns the bin t maximizing w1·w2·(M1−M2)², where class 1 holds every
// intensity <= t, together with that variance.
//
// Bins that leave either class empty are skipped. When several bins reach
// the same maximum the last one wins, so the cut lands just below the next
// occupied intensity. A histogram with a single occupied bin yields 0.
func OtsuLevel(h [Bins]int) (int, float64) {
	var n, total float64
	for t, c := range h {
		n += float64(c)
		total += float64(t * c)
	}

	best, gmax := 0, -1.0
	var n1, s1 float64
	for t := 0; t < Bins; t++ {
		nt := float64(h[t])
		n1 += nt
		s1 += float64(t) * nt
		n2 := n - n1
		if n1 == 0 || n2 == 0 {
			continue
		}
		s2 := total - s1

		w1 := n1 / n
		w2 := 1 - w1
		m1 := s1 / n1
		m2 := s2 / n2
		g := w1 * w2 * (m1 - m2) * (m1 - m2)
		if g >= gmax {
			gmax = g
			best = t
		}
	}

	if gmax < 0 {
		return 0, 0
	}
	return best, gmax
}

// Otsu computes the global threshold of buf and the matching mask.
func Otsu(buf *pixel.Buffer) (*OtsuResult, error) {
	h, err := Histogram(buf)
	if err != nil {
		return nil, fmt.Errorf("otsu: %w", err)
	}
	t, g := OtsuLevel(h)

	mask, err := Binarize(buf, t)
	if err != nil {
		return nil, fmt.Errorf("otsu: %w", err)
	}
	return &OtsuResult{Threshold: t, Variance: g, Histogram: h, Mask: mask}, nil
}

// Binarize maps pixels below t to 0 and all others to 255.
func Binarize(buf *pixel.Buffer, t int) (*pixel.Buffer, error) {
	if err := pixel.Check(buf); err != nil {
		return nil, err
	}
	out, err := pixel.NewBuffer(buf.Width(), buf.Height())
	if err != nil {
		return nil, err
	}
	for y := 0; y < buf.Height(); y++ {
		for x := 0; x < buf.Width(); x++ {
			if int(buf.At(x, y, 0)) >= t {
				out.Set(x, y, 255)
			}
		}
	}
	return out, nil
}
