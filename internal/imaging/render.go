package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/pixel-tools-mcp/internal/corner"
	"github.com/ironsheep/pixel-tools-mcp/internal/pixel"
)

// DefaultMarkerColor is the keypoint marker color.
const DefaultMarkerColor = "#ff0000"

// MarkerRadius is the radius of the circle drawn around each keypoint.
const MarkerRadius = 5

// ImageResult is an image encoded as base64 PNG.
type ImageResult struct {
	// Width of the image in pixels.
	Width int `json:"width"`

	// Height of the image in pixels.
	Height int `json:"height"`

	// ImageBase64 is the PNG encoding of the image in standard base64.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`
}

// EncodeImage encodes img as a base64 PNG.
func EncodeImage(img image.Image) (*ImageResult, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &ImageResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// EncodeBuffer encodes a pixel buffer as a grayscale PNG.
func EncodeBuffer(b *pixel.Buffer) (*ImageResult, error) {
	if err := pixel.Check(b); err != nil {
		return nil, err
	}
	return EncodeImage(b.Gray())
}

// NormalizeGrid maps a response grid linearly onto 0..255 so its minimum is
// black and its maximum white. A constant grid maps to black.
func NormalizeGrid(g *pixel.Grid) (*pixel.Buffer, error) {
	if err := pixel.CheckGrid(g); err != nil {
		return nil, err
	}
	out, err := pixel.NewBuffer(g.Width(), g.Height())
	if err != nil {
		return nil, err
	}

	lo, hi := g.Min(), g.Max()
	if hi == lo {
		return out, nil
	}
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			v := (g.At(x, y, lo) - lo) / (hi - lo) * 255
			out.Set(x, y, uint8(v+0.5))
		}
	}
	return out, nil
}

// EncodeGrid normalizes a response grid and encodes it as a grayscale PNG.
func EncodeGrid(g *pixel.Grid) (*ImageResult, error) {
	b, err := NormalizeGrid(g)
	if err != nil {
		return nil, err
	}
	return EncodeImage(b.Gray())
}

// ParseColor converts a hex color string such as "#ff0000" or "f00".
func ParseColor(hex string) (color.NRGBA, error) {
	if hex == "" {
		hex = DefaultMarkerColor
	}
	if hex[0] != '#' {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// DrawKeypoints renders the buffer in gray and outlines every keypoint with
// a circle of MarkerRadius in the given color. Circles are clipped at the
// image border.
func DrawKeypoints(b *pixel.Buffer, keypoints []corner.Keypoint, hex string) (*image.NRGBA, error) {
	if err := pixel.Check(b); err != nil {
		return nil, err
	}
	c, err := ParseColor(hex)
	if err != nil {
		return nil, err
	}

	canvas := imaging.Clone(b.Gray())
	for _, kp := range keypoints {
		drawCircle(canvas, kp.X, kp.Y, MarkerRadius, c)
	}
	return canvas, nil
}

// drawCircle draws a one pixel wide circle outline with the midpoint
// algorithm.
func drawCircle(img *image.NRGBA, cx, cy, r int, c color.NRGBA) {
	x, y := r, 0
	d := 1 - r
	for x >= y {
		for _, p := range [8][2]int{
			{x, y}, {y, x}, {-y, x}, {-x, y},
			{-x, -y}, {-y, -x}, {y, -x}, {x, -y},
		} {
			pt := image.Pt(cx+p[0], cy+p[1])
			if pt.In(img.Bounds()) {
				img.SetNRGBA(pt.X, pt.Y, c)
			}
		}
		y++
		if d < 0 {
			d += 2*y + 1
		} else {
			x--
			d += 2*(y-x) + 1
		}
	}
}
