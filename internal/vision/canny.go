package vision

import (
	"math"

	"github.com/ironsheep/pixel-tools-mcp/internal/pixel"
)

// canny runs Canny edge detection on an already smoothed buffer.
//
// # Algorithm
//
//  1. Gradient: 3×3 Sobel in x and y with replicated borders,
//     magnitude = sqrt(Gx² + Gy²), direction = atan2(Gy, Gx).
//
//  2. Non-maximum suppression: a pixel survives only if its magnitude is at
//     least that of both neighbors along the gradient direction, quantised
//     to 0°, 45°, 90° or 135°. The outermost ring is dropped.
//
//  3. Hysteresis: pixels at or above high are edges; pixels at or above low
//     are edges when 8-connected to one.
//
// Smoothing is left to the caller so both backends see the same input.
func canny(buf *pixel.Buffer, low, high float64) (*pixel.Buffer, error) {
	width, height := buf.Width(), buf.Height()

	at := func(x, y int) float64 {
		return float64(buf.At(clamp(x, 0, width-1), clamp(y, 0, height-1), 0))
	}

	magnitude := make([]float64, width*height)
	direction := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gx := at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1)
			gy := at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1)
			magnitude[y*width+x] = math.Sqrt(gx*gx + gy*gy)
			direction[y*width+x] = math.Atan2(gy, gx)
		}
	}

	mag := func(x, y int) float64 { return magnitude[y*width+x] }

	suppressed := make([]float64, width*height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			angle := direction[y*width+x]
			m := mag(x, y)

			var n1, n2 float64
			switch {
			case (angle >= -math.Pi/8 && angle < math.Pi/8) || angle >= 7*math.Pi/8 || angle < -7*math.Pi/8:
				n1, n2 = mag(x-1, y), mag(x+1, y)
			case (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8):
				n1, n2 = mag(x-1, y-1), mag(x+1, y+1)
			case (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8):
				n1, n2 = mag(x, y-1), mag(x, y+1)
			default:
				n1, n2 = mag(x+1, y-1), mag(x-1, y+1)
			}

			if m >= n1 && m >= n2 {
				suppressed[y*width+x] = m
			}
		}
	}

	out, err := pixel.NewBuffer(width, height)
	if err != nil {
		return nil, err
	}

	// Grow from strong pixels through weak ones.
	var stack []int
	for i, v := range suppressed {
		if v > 0 && v >= high {
			out.Set(i%width, i/width, 255)
			stack = append(stack, i)
		}
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%width, i/width
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if !out.Contains(nx, ny) || out.At(nx, ny, 0) == 255 {
					continue
				}
				if v := suppressed[ny*width+nx]; v > 0 && v >= low {
					out.Set(nx, ny, 255)
					stack = append(stack, ny*width+nx)
				}
			}
		}
	}

	return out, nil
}

// clamp constrains val to [lo, hi].
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
