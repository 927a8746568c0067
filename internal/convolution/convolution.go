// Package convolution implements 2D kernel correlation over pixel buffers.
//
// Apply produces an unclamped real-valued response, which is what gradient
// and Laplacian operators need. Smooth divides and clamps the response back
// into an 8-bit buffer for filtering.
//
// Neighbors outside the buffer read as 0 (zero padding). Odd kernels are
// centered on the pixel; the 2×2 Roberts kernel is anchored at its top-left
// cell, so its footprint covers rows row…row+1 and columns col…col+1.
package convolution

import (
	"fmt"
	"math"

	"github.com/ironsheep/pixel-tools-mcp/internal/pixel"
)

// Apply correlates buf with kernel and returns the raw response.
//
// For every pixel the response is the sum of neighbor(i,j)·kernel[i][j] over
// the kernel footprint, where the footprint position follows the kernel's
// anchor.
func Apply(buf *pixel.Buffer, kernel pixel.Kernel) (*pixel.Grid, error) {
	if err := pixel.Check(buf); err != nil {
		return nil, fmt.Errorf("convolution: %w", err)
	}
	if kernel.Size() == 0 {
		return nil, fmt.Errorf("convolution: %w", pixel.Invalidf("empty kernel"))
	}

	width, height := buf.Width(), buf.Height()
	out, err := pixel.NewGrid(width, height)
	if err != nil {
		return nil, err
	}

	size := kernel.Size()
	off := kernel.Offset()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum float64
			for i := 0; i < size; i++ {
				for j := 0; j < size; j++ {
					sum += float64(buf.At(x+off+j, y+off+i, pixel.ZeroPad)) * kernel.At(i, j)
				}
			}
			out.Set(x, y, sum)
		}
	}
	return out, nil
}

// CombineMagnitude merges two gradient responses into one integer magnitude,
// floor(sqrt(a² + b²)).
func CombineMagnitude(a, b float64) int {
	return int(math.Floor(math.Sqrt(a*a + b*b)))
}

// Magnitude applies CombineMagnitude cell by cell to two same-sized responses.
func Magnitude(gx, gy *pixel.Grid) (*pixel.Grid, error) {
	if err := pixel.CheckSameSize(gx, gy); err != nil {
		return nil, fmt.Errorf("magnitude: %w", err)
	}
	out, err := pixel.NewGrid(gx.Width(), gx.Height())
	if err != nil {
		return nil, err
	}
	for y := 0; y < gx.Height(); y++ {
		for x := 0; x < gx.Width(); x++ {
			out.Set(x, y, float64(CombineMagnitude(gx.At(x, y, 0), gy.At(x, y, 0))))
		}
	}
	return out, nil
}
