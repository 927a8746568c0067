package vision

import (
	"math"

	"github.com/ironsheep/pixel-tools-mcp/internal/corner"
	"github.com/ironsheep/pixel-tools-mcp/internal/pixel"
)

// harris computes R = det(M) − k·trace(M)² where M is the structure tensor
// of 3×3 Sobel derivatives summed over a BlockSize window, normalises R to
// 0..255 by min/max, rounds, dilates the result with a Spread ellipse and
// keeps values above Ratio·255.
//
// Borders reflect without repeating the edge pixel, and the block window
// covers offsets −BlockSize/2 .. BlockSize−1−BlockSize/2, matching the usual
// OpenCV conventions so the normalised map lines up with cornerHarris.
func harris(buf *pixel.Buffer, opts HarrisOptions) ([]corner.Keypoint, error) {
	width, height := buf.Width(), buf.Height()
	at := func(x, y int) float64 {
		return float64(buf.At(reflect101(x, width), reflect101(y, height), 0))
	}

	ixx := make([]float64, width*height)
	iyy := make([]float64, width*height)
	ixy := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gx := at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1)
			gy := at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1)
			i := y*width + x
			ixx[i], iyy[i], ixy[i] = gx*gx, gy*gy, gx*gy
		}
	}

	lo := -(opts.BlockSize / 2)
	hi := lo + opts.BlockSize - 1
	response := make([]float64, width*height)
	rmin, rmax := math.Inf(1), math.Inf(-1)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var a, b, c float64
			for dy := lo; dy <= hi; dy++ {
				for dx := lo; dx <= hi; dx++ {
					j := reflect101(y+dy, height)*width + reflect101(x+dx, width)
					a += ixx[j]
					b += ixy[j]
					c += iyy[j]
				}
			}
			r := a*c - b*b - opts.K*(a+c)*(a+c)
			response[y*width+x] = r
			rmin = math.Min(rmin, r)
			rmax = math.Max(rmax, r)
		}
	}

	if rmax == rmin {
		return nil, nil
	}

	// Rounding is monotone, so dilating the rounded map equals rounding the
	// dilated one.
	norm := make([]uint8, width*height)
	for i, r := range response {
		norm[i] = uint8(math.Round((r - rmin) / (rmax - rmin) * 255))
	}
	spread, err := pixel.FromSlice(width, height, norm)
	if err != nil {
		return nil, err
	}
	if opts.Spread > 1 {
		if spread, err = morph(spread, opts.Spread, true); err != nil {
			return nil, err
		}
	}

	cut := opts.Ratio * 255
	var keypoints []corner.Keypoint
	for i, v := range spread.Pix() {
		if float64(v) > cut {
			keypoints = append(keypoints, corner.Keypoint{X: i % width, Y: i / width, Response: float64(v)})
		}
	}
	return keypoints, nil
}

// reflect101 maps i into [0, n) by mirroring about the edge pixels:
// −1 → 1, n → n−2.
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}
