package corner

import (
	"fmt"

	"github.com/ironsheep/pixel-tools-mcp/internal/pixel"
)

// outsideResponse is what the suppression window reads beyond the image.
const outsideResponse = float64(pixel.WhitePad)

// Suppress keeps every non-zero cell of resp that equals the maximum of the
// size×size window centered on it. Cells outside resp read as 255.
//
// Ties are not broken: on a flat maximum every cell reaching the maximum is
// returned. Keypoints are listed in row-major order.
func Suppress(resp *pixel.Grid, size int) ([]Keypoint, error) {
	if err := pixel.CheckGrid(resp); err != nil {
		return nil, fmt.Errorf("suppress: %w", err)
	}
	if size < 1 || size%2 == 0 {
		return nil, fmt.Errorf("suppress: %w", pixel.Invalidf("window %d must be odd and positive", size))
	}

	local := LocalMax(resp, size)
	width, height := resp.Width(), resp.Height()

	var keypoints []Keypoint
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := resp.At(x, y, 0)
			if v != 0 && v == local[y*width+x] {
				keypoints = append(keypoints, Keypoint{X: x, Y: y, Response: v})
			}
		}
	}
	return keypoints, nil
}

// LocalMax returns, row-major, the maximum of the size×size window around
// every cell, counting cells outside the grid as 255.
//
// The rectangle maximum is the maximum of row maxima, so one horizontal and
// one vertical sliding pass replace the size² scan per cell.
func LocalMax(resp *pixel.Grid, size int) []float64 {
	width, height := resp.Width(), resp.Height()
	half := (size - 1) / 2

	rows := make([]float64, width*height)
	line := make([]float64, width)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			line[x] = resp.At(x, y, 0)
		}
		slidingMax(line, half, rows[y*width:(y+1)*width])
	}

	out := make([]float64, width*height)
	col := make([]float64, height)
	colMax := make([]float64, height)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			col[y] = rows[y*width+x]
		}
		slidingMax(col, half, colMax)
		for y := 0; y < height; y++ {
			out[y*width+x] = colMax[y]
		}
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x-half < 0 || y-half < 0 || x+half >= width || y+half >= height {
				if i := y*width + x; out[i] < outsideResponse {
					out[i] = outsideResponse
				}
			}
		}
	}
	return out
}

// slidingMax writes into out the maximum of in[i-half..i+half], clipped to
// the slice, using a monotonic deque of indices.
func slidingMax(in []float64, half int, out []float64) {
	n := len(in)
	dq := make([]int, 0, n)
	head, next := 0, 0
	for i := 0; i < n; i++ {
		for hi := min(i+half, n-1); next <= hi; next++ {
			for len(dq) > head && in[dq[len(dq)-1]] <= in[next] {
				dq = dq[:len(dq)-1]
			}
			dq = append(dq, next)
		}
		for dq[head] < i-half {
			head++
		}
		out[i] = in[dq[head]]
	}
}
