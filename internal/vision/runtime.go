// Package vision wraps the general-purpose image processing the analysis
// operators lean on: grayscale conversion, Gaussian blur, morphology, Canny,
// Harris and FAST.
//
// A Runtime is an explicit handle. The server opens one at startup, passes
// it to whatever needs it and closes it on shutdown, so backends that hold
// native resources never live in package globals.
package vision

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/ironsheep/pixel-tools-mcp/internal/corner"
	"github.com/ironsheep/pixel-tools-mcp/internal/pixel"
)

// ErrUnsupported is returned when a backend cannot perform an operation or
// the backend itself is not compiled into the binary.
var ErrUnsupported = errors.New("unsupported by vision backend")

// Backend names accepted by Open.
const (
	BackendNative = "native"
	BackendOpenCV = "opencv"
)

// Runtime is a loaded vision backend.
//
// All methods take and return single-channel buffers. Implementations must
// not modify their inputs.
type Runtime interface {
	// Name returns the backend name.
	Name() string

	// Grayscale converts a decoded image to a luminance buffer.
	Grayscale(img image.Image) (*pixel.Buffer, error)

	// GaussianBlur smooths buf with an odd size×size Gaussian kernel.
	GaussianBlur(buf *pixel.Buffer, size int) (*pixel.Buffer, error)

	// Dilate grows bright regions using an odd size×size elliptical
	// structuring element. Pixels outside the image are ignored.
	Dilate(buf *pixel.Buffer, size int) (*pixel.Buffer, error)

	// Erode shrinks bright regions using an odd size×size elliptical
	// structuring element. Pixels outside the image are ignored.
	Erode(buf *pixel.Buffer, size int) (*pixel.Buffer, error)

	// Canny returns a {0,255} edge mask using hysteresis thresholds
	// low <= high on the gradient magnitude.
	Canny(buf *pixel.Buffer, low, high float64) (*pixel.Buffer, error)

	// Harris returns the pixels whose normalised Harris response, dilated
	// by an opts.Spread ellipse, exceeds opts.Ratio times the strongest
	// response.
	Harris(buf *pixel.Buffer, opts HarrisOptions) ([]corner.Keypoint, error)

	// FAST returns FAST-9 keypoints for the given intensity threshold.
	FAST(buf *pixel.Buffer, threshold int, nonmax bool) ([]corner.Keypoint, error)

	// Close releases backend resources. The runtime must not be used after.
	Close() error
}

// Open returns the runtime for a backend name. An empty name selects the
// native backend.
func Open(backend string) (Runtime, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendNative:
		return NewNative(), nil
	case BackendOpenCV:
		return openOpenCV()
	default:
		return nil, fmt.Errorf("unknown vision backend %q", backend)
	}
}

// HarrisOptions configures Harris corner detection.
type HarrisOptions struct {
	// BlockSize is the side of the window the structure tensor is summed
	// over.
	BlockSize int `toml:"block_size" json:"block_size"`
	// K is the Harris free parameter.
	K float64 `toml:"k" json:"k"`
	// Ratio selects responses above Ratio × the maximum response.
	Ratio float64 `toml:"ratio" json:"ratio"`
	// Spread is the side of the elliptical dilation applied to the
	// normalised response before the cut. 0 and 1 leave it as is.
	Spread int `toml:"spread" json:"spread"`
}

// DefaultHarrisOptions returns blockSize 2, k 0.04, ratio 0.45 and a 10×10
// spread.
func DefaultHarrisOptions() HarrisOptions {
	return HarrisOptions{BlockSize: 2, K: 0.04, Ratio: 0.45, Spread: 10}
}

// Validate reports options Harris cannot run with.
func (o HarrisOptions) Validate() error {
	if o.BlockSize < 1 {
		return pixel.Invalidf("harris block size %d", o.BlockSize)
	}
	if o.Ratio < 0 || o.Ratio >= 1 {
		return pixel.Invalidf("harris ratio %v must be in [0,1)", o.Ratio)
	}
	if o.Spread < 0 {
		return pixel.Invalidf("harris spread %d", o.Spread)
	}
	return nil
}

// maxSize is the largest kernel size accepted for buf. A window of that size
// covers the whole image from every pixel, so nothing larger changes the
// result.
func maxSize(buf *pixel.Buffer) int {
	return 2*max(buf.Width(), buf.Height()) + 1
}

func checkOddSize(op string, size, limit int) error {
	if size < 1 || size%2 == 0 {
		return pixel.Invalidf("%s size %d must be odd and positive", op, size)
	}
	if size > limit {
		return pixel.Invalidf("%s size %d exceeds %d for this image", op, size, limit)
	}
	return nil
}

func checkCanny(low, high float64) error {
	if low < 0 || high < low {
		return pixel.Invalidf("canny thresholds low=%v high=%v", low, high)
	}
	return nil
}
