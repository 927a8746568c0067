package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/ironsheep/pixel-tools-mcp/internal/corner"
	"github.com/ironsheep/pixel-tools-mcp/internal/pixel"
)

// decodeResult decodes the PNG carried by an ImageResult.
func decodeResult(t *testing.T, r *ImageResult) image.Image {
	t.Helper()
	if r.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", r.MimeType)
	}
	data, err := base64.StdEncoding.DecodeString(r.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode png: %v", err)
	}
	if img.Bounds().Dx() != r.Width || img.Bounds().Dy() != r.Height {
		t.Errorf("decoded %v, result claims %dx%d", img.Bounds(), r.Width, r.Height)
	}
	return img
}

func grayAt(img image.Image, x, y int) uint8 {
	return color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
}

func TestEncodeBuffer(t *testing.T) {
	b, _ := pixel.NewBuffer(4, 3)
	b.Set(1, 2, 200)

	res, err := EncodeBuffer(b)
	if err != nil {
		t.Fatalf("EncodeBuffer failed: %v", err)
	}
	img := decodeResult(t, res)
	if v := grayAt(img, 1, 2); v != 200 {
		t.Errorf("pixel (1,2): got %d, want 200", v)
	}
	if v := grayAt(img, 0, 0); v != 0 {
		t.Errorf("pixel (0,0): got %d, want 0", v)
	}

	if _, err := EncodeBuffer(nil); err == nil {
		t.Error("EncodeBuffer should fail for a nil buffer")
	}
}

func TestNormalizeGrid(t *testing.T) {
	g, _ := pixel.NewGrid(3, 1)
	g.Set(0, 0, -50)
	g.Set(1, 0, 25)
	g.Set(2, 0, 100)

	b, err := NormalizeGrid(g)
	if err != nil {
		t.Fatalf("NormalizeGrid failed: %v", err)
	}
	want := []uint8{0, 128, 255}
	for x, w := range want {
		if v := b.At(x, 0, 0); v != w {
			t.Errorf("x=%d: got %d, want %d", x, v, w)
		}
	}

	flat, _ := pixel.NewGrid(2, 2)
	flat.Set(0, 0, 7)
	flat.Set(1, 0, 7)
	flat.Set(0, 1, 7)
	flat.Set(1, 1, 7)
	b, err = NormalizeGrid(flat)
	if err != nil {
		t.Fatalf("NormalizeGrid failed: %v", err)
	}
	if b.Count(0) != 4 {
		t.Error("constant grid should normalize to black")
	}
}

func TestEncodeGrid(t *testing.T) {
	g, _ := pixel.NewGrid(5, 5)
	g.Set(2, 2, 1e6)

	res, err := EncodeGrid(g)
	if err != nil {
		t.Fatalf("EncodeGrid failed: %v", err)
	}
	img := decodeResult(t, res)
	if v := grayAt(img, 2, 2); v != 255 {
		t.Errorf("peak: got %d, want 255", v)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		input   string
		want    color.NRGBA
		wantErr bool
	}{
		{"#ff0000", color.NRGBA{255, 0, 0, 255}, false},
		{"00ff00", color.NRGBA{0, 255, 0, 255}, false},
		{"#00f", color.NRGBA{0, 0, 255, 255}, false},
		{"", color.NRGBA{255, 0, 0, 255}, false},
		{"#gggggg", color.NRGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseColor(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseColor(%q) should fail", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseColor(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDrawKeypoints(t *testing.T) {
	b, _ := pixel.NewBuffer(20, 20)
	b.Fill(128)

	img, err := DrawKeypoints(b, []corner.Keypoint{{X: 10, Y: 10}, {X: 1, Y: 1}}, "#00ff00")
	if err != nil {
		t.Fatalf("DrawKeypoints failed: %v", err)
	}

	green := color.NRGBA{0, 255, 0, 255}
	gray := color.NRGBA{128, 128, 128, 255}

	// Points on the circle of radius 5.
	for _, p := range []image.Point{{15, 10}, {5, 10}, {10, 15}, {10, 5}} {
		if got := img.NRGBAAt(p.X, p.Y); got != green {
			t.Errorf("circle point %v: got %v, want green", p, got)
		}
	}
	// The center and far pixels keep the gray rendering.
	if got := img.NRGBAAt(10, 10); got != gray {
		t.Errorf("center: got %v, want gray", got)
	}
	if got := img.NRGBAAt(19, 0); got != gray {
		t.Errorf("far corner: got %v, want gray", got)
	}
	// A clipped circle near the border still draws its visible part.
	if got := img.NRGBAAt(6, 1); got != green {
		t.Errorf("clipped circle point: got %v, want green", got)
	}
	// The source buffer is untouched.
	if b.Count(128) != 400 {
		t.Error("DrawKeypoints modified its input")
	}

	if _, err := DrawKeypoints(b, nil, "not-a-color"); err == nil {
		t.Error("DrawKeypoints should fail for an invalid color")
	}
}

func TestHistogramChart(t *testing.T) {
	var hist [256]int
	hist[40] = 300
	hist[200] = 500

	res, err := HistogramChart(hist, 120)
	if err != nil {
		t.Fatalf("HistogramChart failed: %v", err)
	}
	decodeResult(t, res)

	var empty [256]int
	if _, err := HistogramChart(empty, -1); err != nil {
		t.Errorf("empty histogram failed: %v", err)
	}
}
