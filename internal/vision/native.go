package vision

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/pixel-tools-mcp/internal/corner"
	"github.com/ironsheep/pixel-tools-mcp/internal/pixel"
)

// Native is the pure Go backend. It needs no system libraries and is always
// available.
//
// Blur comes from bild and grayscale conversion from imaging. Morphology,
// Canny and Harris are implemented here. FAST is not available.
type Native struct{}

// NewNative returns the pure Go backend.
func NewNative() *Native { return &Native{} }

// Name implements Runtime.
func (n *Native) Name() string { return BackendNative }

// Grayscale converts img using ITU-R BT.601 luma weights.
func (n *Native) Grayscale(img image.Image) (*pixel.Buffer, error) {
	if img == nil {
		return nil, pixel.Invalidf("nil image")
	}
	return pixel.FromImage(imaging.Grayscale(img))
}

// GaussianBlur implements Runtime. The kernel radius is (size-1)/2 and
// edges are clamped.
func (n *Native) GaussianBlur(buf *pixel.Buffer, size int) (*pixel.Buffer, error) {
	if err := checkUnary("gaussian blur", buf, size); err != nil {
		return nil, err
	}
	if size == 1 {
		return buf.Clone(), nil
	}
	return pixel.FromImage(blur.Gaussian(buf.Gray(), float64((size-1)/2)))
}

// Dilate implements Runtime. See morph.go.
func (n *Native) Dilate(buf *pixel.Buffer, size int) (*pixel.Buffer, error) {
	if err := checkUnary("dilate", buf, size); err != nil {
		return nil, err
	}
	if size == 1 {
		return buf.Clone(), nil
	}
	return morph(buf, size, true)
}

// Erode implements Runtime. See morph.go.
func (n *Native) Erode(buf *pixel.Buffer, size int) (*pixel.Buffer, error) {
	if err := checkUnary("erode", buf, size); err != nil {
		return nil, err
	}
	if size == 1 {
		return buf.Clone(), nil
	}
	return morph(buf, size, false)
}

// Canny implements Runtime. See canny.go.
func (n *Native) Canny(buf *pixel.Buffer, low, high float64) (*pixel.Buffer, error) {
	if err := pixel.Check(buf); err != nil {
		return nil, fmt.Errorf("canny: %w", err)
	}
	if err := checkCanny(low, high); err != nil {
		return nil, fmt.Errorf("canny: %w", err)
	}
	return canny(buf, low, high)
}

// Harris implements Runtime. See harris.go.
func (n *Native) Harris(buf *pixel.Buffer, opts HarrisOptions) ([]corner.Keypoint, error) {
	if err := pixel.Check(buf); err != nil {
		return nil, fmt.Errorf("harris: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("harris: %w", err)
	}
	limit := maxSize(buf)
	if opts.BlockSize > limit {
		return nil, fmt.Errorf("harris: %w", pixel.Invalidf("block size %d exceeds %d for this image", opts.BlockSize, limit))
	}
	if opts.Spread > limit {
		return nil, fmt.Errorf("harris: %w", pixel.Invalidf("spread %d exceeds %d for this image", opts.Spread, limit))
	}
	return harris(buf, opts)
}

// FAST is not implemented by the native backend.
func (n *Native) FAST(buf *pixel.Buffer, threshold int, nonmax bool) ([]corner.Keypoint, error) {
	return nil, fmt.Errorf("fast: %w: backend %s", ErrUnsupported, BackendNative)
}

// Close implements Runtime. The native backend holds nothing.
func (n *Native) Close() error { return nil }

func checkUnary(op string, buf *pixel.Buffer, size int) error {
	if err := pixel.Check(buf); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := checkOddSize(op, size, maxSize(buf)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
