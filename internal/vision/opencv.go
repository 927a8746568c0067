//go:build opencv

package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ironsheep/pixel-tools-mcp/internal/corner"
	"github.com/ironsheep/pixel-tools-mcp/internal/pixel"
)

// OpenCV is the gocv backend. It needs the OpenCV shared libraries at build
// and run time and is compiled only with the opencv build tag.
//
// Harris is delegated to the native implementation, which mirrors
// cornerHarris followed by min/max normalisation and dilation.
type OpenCV struct {
	native *Native
}

func openOpenCV() (Runtime, error) {
	return &OpenCV{native: NewNative()}, nil
}

// Name implements Runtime.
func (o *OpenCV) Name() string { return BackendOpenCV }

// Grayscale implements Runtime via cvtColor.
func (o *OpenCV) Grayscale(img image.Image) (*pixel.Buffer, error) {
	if img == nil {
		return nil, pixel.Invalidf("nil image")
	}
	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("grayscale: %w", err)
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	return fromMat(gray)
}

// GaussianBlur implements Runtime. Sigma is derived from the kernel size.
func (o *OpenCV) GaussianBlur(buf *pixel.Buffer, size int) (*pixel.Buffer, error) {
	if err := checkUnary("gaussian blur", buf, size); err != nil {
		return nil, err
	}
	return apply(buf, func(src gocv.Mat, dst *gocv.Mat) {
		gocv.GaussianBlur(src, dst, image.Point{X: size, Y: size}, 0, 0, gocv.BorderDefault)
	})
}

// Dilate implements Runtime with a size×size ellipse.
func (o *OpenCV) Dilate(buf *pixel.Buffer, size int) (*pixel.Buffer, error) {
	if err := checkUnary("dilate", buf, size); err != nil {
		return nil, err
	}
	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: size, Y: size})
	defer kernel.Close()
	return apply(buf, func(src gocv.Mat, dst *gocv.Mat) {
		gocv.Dilate(src, dst, kernel)
	})
}

// Erode implements Runtime with a size×size ellipse.
func (o *OpenCV) Erode(buf *pixel.Buffer, size int) (*pixel.Buffer, error) {
	if err := checkUnary("erode", buf, size); err != nil {
		return nil, err
	}
	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: size, Y: size})
	defer kernel.Close()
	return apply(buf, func(src gocv.Mat, dst *gocv.Mat) {
		gocv.Erode(src, dst, kernel)
	})
}

// Canny implements Runtime.
func (o *OpenCV) Canny(buf *pixel.Buffer, low, high float64) (*pixel.Buffer, error) {
	if err := pixel.Check(buf); err != nil {
		return nil, fmt.Errorf("canny: %w", err)
	}
	if err := checkCanny(low, high); err != nil {
		return nil, fmt.Errorf("canny: %w", err)
	}
	return apply(buf, func(src gocv.Mat, dst *gocv.Mat) {
		gocv.Canny(src, dst, float32(low), float32(high))
	})
}

// Harris implements Runtime.
func (o *OpenCV) Harris(buf *pixel.Buffer, opts HarrisOptions) ([]corner.Keypoint, error) {
	return o.native.Harris(buf, opts)
}

// FAST implements Runtime with the 9/16 segment test.
func (o *OpenCV) FAST(buf *pixel.Buffer, threshold int, nonmax bool) ([]corner.Keypoint, error) {
	if err := pixel.Check(buf); err != nil {
		return nil, fmt.Errorf("fast: %w", err)
	}
	if threshold < 0 || threshold > 255 {
		return nil, fmt.Errorf("fast: %w", pixel.Invalidf("threshold %d", threshold))
	}

	src, err := toMat(buf)
	if err != nil {
		return nil, fmt.Errorf("fast: %w", err)
	}
	defer src.Close()

	detector := gocv.NewFastFeatureDetectorWithParams(threshold, nonmax, gocv.FastFeatureDetectorType9To16)
	defer detector.Close()

	found := detector.Detect(src)
	keypoints := make([]corner.Keypoint, 0, len(found))
	for _, kp := range found {
		keypoints = append(keypoints, corner.Keypoint{
			X:        int(kp.X + 0.5),
			Y:        int(kp.Y + 0.5),
			Response: kp.Response,
		})
	}
	return keypoints, nil
}

// Close implements Runtime.
func (o *OpenCV) Close() error { return nil }

func toMat(buf *pixel.Buffer) (gocv.Mat, error) {
	return gocv.NewMatFromBytes(buf.Height(), buf.Width(), gocv.MatTypeCV8UC1, buf.Pix())
}

func fromMat(m gocv.Mat) (*pixel.Buffer, error) {
	if m.Empty() {
		return nil, fmt.Errorf("empty result matrix")
	}
	if m.Channels() != 1 {
		return nil, fmt.Errorf("expected 1-channel matrix, got %d channels", m.Channels())
	}
	return pixel.FromSlice(m.Cols(), m.Rows(), m.ToBytes())
}

// apply runs op on a matrix copy of buf and converts the result back.
func apply(buf *pixel.Buffer, op func(src gocv.Mat, dst *gocv.Mat)) (*pixel.Buffer, error) {
	src, err := toMat(buf)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()

	op(src, &dst)
	return fromMat(dst)
}
