package vision

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/pixel-tools-mcp/internal/pixel"
)

func filled(t *testing.T, w, h int, v uint8) *pixel.Buffer {
	t.Helper()
	b, err := pixel.NewBuffer(w, h)
	if err != nil {
		t.Fatalf("NewBuffer failed: %v", err)
	}
	b.Fill(v)
	return b
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		want    string
		wantErr bool
	}{
		{"empty selects native", "", BackendNative, false},
		{"native", "native", BackendNative, false},
		{"case insensitive", " Native ", BackendNative, false},
		{"unknown", "halide", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := Open(tt.backend)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Open(%q) expected error", tt.backend)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open(%q) failed: %v", tt.backend, err)
			}
			defer rt.Close()
			if rt.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", rt.Name(), tt.want)
			}
		})
	}
}

func TestNative_Grayscale(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	img.Set(0, 0, color.NRGBA{255, 255, 255, 255})
	img.Set(1, 0, color.NRGBA{0, 0, 0, 255})
	img.Set(2, 0, color.NRGBA{255, 0, 0, 255})

	buf, err := NewNative().Grayscale(img)
	if err != nil {
		t.Fatalf("Grayscale failed: %v", err)
	}
	if buf.At(0, 0, 0) != 255 || buf.At(1, 0, 0) != 0 {
		t.Errorf("white/black = %d/%d, want 255/0", buf.At(0, 0, 0), buf.At(1, 0, 0))
	}
	// BT.601 puts pure red near 76.
	if v := buf.At(2, 0, 0); v < 70 || v > 82 {
		t.Errorf("red luma = %d, want about 76", v)
	}

	if _, err := NewNative().Grayscale(nil); !errors.Is(err, pixel.ErrInvalidInput) {
		t.Errorf("nil image error = %v, want ErrInvalidInput", err)
	}
}

func TestNative_GaussianBlur(t *testing.T) {
	rt := NewNative()

	flat := filled(t, 12, 12, 100)
	out, err := rt.GaussianBlur(flat, 5)
	if err != nil {
		t.Fatalf("GaussianBlur failed: %v", err)
	}
	for y := 0; y < 12; y++ {
		for x := 0; x < 12; x++ {
			if v := out.At(x, y, 0); v < 99 || v > 101 {
				t.Fatalf("flat image blurred to %d at (%d,%d)", v, x, y)
			}
		}
	}

	spot := filled(t, 11, 11, 0)
	spot.Set(5, 5, 255)
	out, err = rt.GaussianBlur(spot, 5)
	if err != nil {
		t.Fatalf("GaussianBlur failed: %v", err)
	}
	if out.At(5, 5, 0) >= 255 || out.At(6, 5, 0) == 0 {
		t.Errorf("spot not spread: center %d neighbor %d", out.At(5, 5, 0), out.At(6, 5, 0))
	}
	if spot.At(6, 5, 0) != 0 {
		t.Error("input modified")
	}

	same, err := rt.GaussianBlur(spot, 1)
	if err != nil {
		t.Fatalf("GaussianBlur(1) failed: %v", err)
	}
	if !same.Equal(spot) {
		t.Error("size 1 blur should be the identity")
	}

	if _, err := rt.GaussianBlur(spot, 4); !errors.Is(err, pixel.ErrInvalidInput) {
		t.Errorf("even size error = %v, want ErrInvalidInput", err)
	}
}

func TestNative_Morphology(t *testing.T) {
	rt := NewNative()

	dot := filled(t, 9, 9, 0)
	dot.Set(4, 4, 255)
	grown, err := rt.Dilate(dot, 3)
	if err != nil {
		t.Fatalf("Dilate failed: %v", err)
	}
	if grown.At(5, 4, 0) != 255 || grown.At(4, 3, 0) != 255 {
		t.Error("dilate did not grow the dot")
	}
	if grown.At(0, 0, 0) != 0 {
		t.Error("dilate reached the far corner")
	}

	hole := filled(t, 9, 9, 255)
	hole.Set(4, 4, 0)
	shrunk, err := rt.Erode(hole, 3)
	if err != nil {
		t.Fatalf("Erode failed: %v", err)
	}
	if shrunk.At(5, 4, 0) != 0 || shrunk.At(4, 5, 0) != 0 {
		t.Error("erode did not grow the hole")
	}
	if shrunk.At(8, 0, 0) != 255 {
		t.Error("erode reached the far corner")
	}

	if _, err := rt.Erode(nil, 3); !errors.Is(err, pixel.ErrInvalidInput) {
		t.Errorf("nil buffer error = %v, want ErrInvalidInput", err)
	}
}

func TestNative_SizeBoundedByImage(t *testing.T) {
	rt := NewNative()
	img := filled(t, 8, 6, 90)

	ops := []struct {
		name string
		run  func(*pixel.Buffer, int) (*pixel.Buffer, error)
	}{
		{"blur", rt.GaussianBlur},
		{"dilate", rt.Dilate},
		{"erode", rt.Erode},
	}
	for _, op := range ops {
		t.Run(op.name, func(t *testing.T) {
			// 2*8+1 is the widest window that can still matter.
			if _, err := op.run(img, 17); err != nil {
				t.Errorf("size 17 failed: %v", err)
			}
			for _, size := range []int{19, 2000000000001} {
				if _, err := op.run(img, size); !errors.Is(err, pixel.ErrInvalidInput) {
					t.Errorf("size %d error = %v, want ErrInvalidInput", size, err)
				}
			}
		})
	}

	opts := DefaultHarrisOptions()
	opts.BlockSize = 1 << 30
	if _, err := rt.Harris(img, opts); !errors.Is(err, pixel.ErrInvalidInput) {
		t.Errorf("harris block size error = %v, want ErrInvalidInput", err)
	}
}

func TestNative_Canny(t *testing.T) {
	b := filled(t, 16, 16, 0)
	for y := 0; y < 16; y++ {
		for x := 8; x < 16; x++ {
			b.Set(x, y, 255)
		}
	}

	mask, err := NewNative().Canny(b, 50, 150)
	if err != nil {
		t.Fatalf("Canny failed: %v", err)
	}
	if !mask.IsBinary() {
		t.Fatal("canny output is not binary")
	}
	for y := 1; y < 15; y++ {
		if mask.At(7, y, 0) != 255 || mask.At(8, y, 0) != 255 {
			t.Fatalf("row %d: step columns not marked", y)
		}
		if mask.At(3, y, 0) != 0 || mask.At(12, y, 0) != 0 {
			t.Fatalf("row %d: flat region marked", y)
		}
	}

	flat := filled(t, 10, 10, 128)
	mask, err = NewNative().Canny(flat, 50, 150)
	if err != nil {
		t.Fatalf("Canny failed: %v", err)
	}
	if mask.Count(255) != 0 {
		t.Errorf("flat image produced %d edge pixels", mask.Count(255))
	}

	if _, err := NewNative().Canny(flat, 100, 50); !errors.Is(err, pixel.ErrInvalidInput) {
		t.Errorf("inverted thresholds error = %v, want ErrInvalidInput", err)
	}
}

func TestNative_CannyHysteresis(t *testing.T) {
	// A step whose contrast drops halfway down: the weak half survives only
	// because it touches the strong half.
	b := filled(t, 16, 16, 0)
	for y := 0; y < 16; y++ {
		v := uint8(255)
		if y >= 8 {
			v = 30
		}
		for x := 8; x < 16; x++ {
			b.Set(x, y, v)
		}
	}

	mask, err := NewNative().Canny(b, 50, 300)
	if err != nil {
		t.Fatalf("Canny failed: %v", err)
	}
	if mask.At(8, 12, 0) != 255 {
		t.Error("weak edge connected to a strong edge was dropped")
	}

	mask, err = NewNative().Canny(b, 50, 2000)
	if err != nil {
		t.Fatalf("Canny failed: %v", err)
	}
	if mask.Count(255) != 0 {
		t.Errorf("no strong seed but %d edge pixels", mask.Count(255))
	}
}

func TestNative_Harris(t *testing.T) {
	b := filled(t, 32, 32, 255)
	for y := 10; y < 22; y++ {
		for x := 10; x < 22; x++ {
			b.Set(x, y, 0)
		}
	}

	// Without the spread every keypoint sits on a response peak.
	opts := DefaultHarrisOptions()
	opts.Spread = 1
	kps, err := NewNative().Harris(b, opts)
	if err != nil {
		t.Fatalf("Harris failed: %v", err)
	}
	if len(kps) == 0 {
		t.Fatal("no corners found")
	}

	corners := []image.Point{{10, 10}, {21, 10}, {10, 21}, {21, 21}}
	hit := make([]bool, len(corners))
	for _, kp := range kps {
		near := false
		for i, c := range corners {
			if abs(kp.X-c.X) <= 2 && abs(kp.Y-c.Y) <= 2 {
				hit[i] = true
				near = true
			}
		}
		if !near {
			t.Errorf("keypoint %+v is not near a square corner", kp)
		}
	}
	for i, ok := range hit {
		if !ok {
			t.Errorf("corner %v not detected", corners[i])
		}
	}

	kps, err = NewNative().Harris(filled(t, 8, 8, 40), DefaultHarrisOptions())
	if err != nil {
		t.Fatalf("Harris failed: %v", err)
	}
	if len(kps) != 0 {
		t.Errorf("flat image gave %d corners", len(kps))
	}

	if _, err := NewNative().Harris(b, HarrisOptions{BlockSize: 0, K: 0.04, Ratio: 0.5}); !errors.Is(err, pixel.ErrInvalidInput) {
		t.Errorf("zero block size error = %v, want ErrInvalidInput", err)
	}
}

func TestNative_HarrisSpread(t *testing.T) {
	b := filled(t, 40, 40, 255)
	for y := 12; y < 28; y++ {
		for x := 12; x < 28; x++ {
			b.Set(x, y, 0)
		}
	}

	opts := DefaultHarrisOptions()
	opts.Spread = 1
	peaks, err := NewNative().Harris(b, opts)
	if err != nil {
		t.Fatalf("Harris failed: %v", err)
	}
	spread, err := NewNative().Harris(b, DefaultHarrisOptions())
	if err != nil {
		t.Fatalf("Harris failed: %v", err)
	}
	if len(spread) <= len(peaks) {
		t.Fatalf("spread kept %d keypoints, peaks alone %d", len(spread), len(peaks))
	}

	at := map[image.Point]bool{}
	for _, kp := range spread {
		at[image.Point{X: kp.X, Y: kp.Y}] = true
	}
	for _, kp := range peaks {
		if !at[image.Point{X: kp.X, Y: kp.Y}] {
			t.Errorf("peak %+v lost by the spread", kp)
		}
	}
	// A 10×10 ellipse reaches at most 5 pixels from its anchor.
	for _, kp := range spread {
		near := false
		for _, p := range peaks {
			if abs(kp.X-p.X) <= 5 && abs(kp.Y-p.Y) <= 5 {
				near = true
				break
			}
		}
		if !near {
			t.Errorf("keypoint %+v is not within the spread of any peak", kp)
		}
	}

	bad := DefaultHarrisOptions()
	bad.Spread = -1
	if _, err := NewNative().Harris(b, bad); !errors.Is(err, pixel.ErrInvalidInput) {
		t.Errorf("negative spread error = %v, want ErrInvalidInput", err)
	}
}

func TestNative_FASTUnsupported(t *testing.T) {
	_, err := NewNative().FAST(filled(t, 8, 8, 0), 45, true)
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("FAST error = %v, want ErrUnsupported", err)
	}
}

func TestReflect101(t *testing.T) {
	tests := []struct{ i, n, want int }{
		{-1, 5, 1},
		{-2, 5, 2},
		{0, 5, 0},
		{4, 5, 4},
		{5, 5, 3},
		{6, 5, 2},
		{-3, 1, 0},
		{-1, 2, 1},
		{2, 2, 0},
	}
	for _, tt := range tests {
		if got := reflect101(tt.i, tt.n); got != tt.want {
			t.Errorf("reflect101(%d, %d) = %d, want %d", tt.i, tt.n, got, tt.want)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
