package imaging

import (
	"image"
	"image/color"
	"testing"
)

// createQuadrantImage returns an image whose quadrants are red, green, blue
// and white, clockwise from the top-left.
func createQuadrantImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.RGBA
			switch {
			case x < width/2 && y < height/2:
				c = color.RGBA{255, 0, 0, 255}
			case y < height/2:
				c = color.RGBA{0, 255, 0, 255}
			case x >= width/2:
				c = color.RGBA{255, 255, 255, 255}
			default:
				c = color.RGBA{0, 0, 255, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestCrop(t *testing.T) {
	img := createQuadrantImage(100, 100)

	cropped, err := Crop(img, Region{X1: 50, Y1: 0, X2: 100, Y2: 50})
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}

	b := cropped.Bounds()
	if b.Min != (image.Point{}) || b.Dx() != 50 || b.Dy() != 50 {
		t.Errorf("bounds: got %v, want (0,0)-(50,50)", b)
	}

	r, g, bl, _ := cropped.At(10, 10).RGBA()
	if r>>8 != 0 || g>>8 != 255 || bl>>8 != 0 {
		t.Errorf("top-right quadrant should be green, got %d,%d,%d", r>>8, g>>8, bl>>8)
	}
}

func TestCrop_FullImage(t *testing.T) {
	img := createQuadrantImage(40, 30)

	cropped, err := Crop(img, Region{X1: 0, Y1: 0, X2: 40, Y2: 30})
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	if cropped.Bounds().Dx() != 40 || cropped.Bounds().Dy() != 30 {
		t.Errorf("dimensions: got %v, want 40x30", cropped.Bounds())
	}
}

func TestCrop_OutOfBounds(t *testing.T) {
	img := createQuadrantImage(100, 100)

	tests := []struct {
		name   string
		region Region
	}{
		{"x1 negative", Region{-1, 0, 50, 50}},
		{"y1 negative", Region{0, -1, 50, 50}},
		{"x2 too large", Region{0, 0, 101, 50}},
		{"y2 too large", Region{0, 0, 50, 101}},
		{"all out of bounds", Region{-1, -1, 200, 200}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Crop(img, tt.region); err == nil {
				t.Error("Crop should fail for out-of-bounds coordinates")
			}
		})
	}
}

func TestCrop_InvalidRegion(t *testing.T) {
	img := createQuadrantImage(100, 100)

	tests := []struct {
		name   string
		region Region
	}{
		{"x1 equals x2", Region{50, 0, 50, 50}},
		{"y1 equals y2", Region{0, 50, 50, 50}},
		{"x1 greater than x2", Region{60, 0, 50, 50}},
		{"y1 greater than y2", Region{0, 60, 50, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Crop(img, tt.region); err == nil {
				t.Error("Crop should fail for an empty region")
			}
		})
	}
}

func TestScale(t *testing.T) {
	img := createQuadrantImage(100, 60)

	tests := []struct {
		name   string
		factor float64
		w, h   int
	}{
		{"up", 2.0, 200, 120},
		{"down", 0.5, 50, 30},
		{"identity", 1.0, 100, 60},
		{"non-positive ignored", 0, 100, 60},
		{"floors at one pixel", 0.001, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Scale(img, tt.factor)
			if out.Bounds().Dx() != tt.w || out.Bounds().Dy() != tt.h {
				t.Errorf("got %dx%d, want %dx%d", out.Bounds().Dx(), out.Bounds().Dy(), tt.w, tt.h)
			}
		})
	}
}
