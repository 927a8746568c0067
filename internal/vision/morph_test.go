package vision

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/ironsheep/pixel-tools-mcp/internal/pixel"
)

// halfWidths lists the run half-widths of an odd ellipse top to bottom.
func halfWidths(spans []span) []int {
	out := make([]int, len(spans))
	for i, s := range spans {
		out[i] = s.hi
	}
	return out
}

func TestEllipse(t *testing.T) {
	tests := []struct {
		size int
		want []int
	}{
		{1, []int{0}},
		{3, []int{0, 1, 0}},
		{5, []int{0, 2, 2, 2, 0}},
		{7, []int{0, 2, 3, 3, 3, 2, 0}},
	}
	for _, tt := range tests {
		spans := ellipse(tt.size)
		if got := halfWidths(spans); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ellipse(%d) half-widths = %v, want %v", tt.size, got, tt.want)
		}
		for _, s := range spans {
			if s.lo != -s.hi {
				t.Errorf("ellipse(%d) row %d is not symmetric: %+v", tt.size, s.dy, s)
			}
		}
	}

	// Even sizes keep the anchor at size/2, so the last row and column are
	// one short of the first.
	want := []span{
		{-5, 0, 0}, {-4, -3, 3}, {-3, -4, 4}, {-2, -5, 4}, {-1, -5, 4},
		{0, -5, 4}, {1, -5, 4}, {2, -5, 4}, {3, -4, 4}, {4, -3, 3},
	}
	if got := ellipse(10); !reflect.DeepEqual(got, want) {
		t.Errorf("ellipse(10) = %v, want %v", got, want)
	}
}

// naiveMorph scans the full ellipse around every pixel.
func naiveMorph(buf *pixel.Buffer, size int, dilate bool) *pixel.Buffer {
	out, _ := pixel.NewBuffer(buf.Width(), buf.Height())
	for y := 0; y < buf.Height(); y++ {
		for x := 0; x < buf.Width(); x++ {
			best := buf.At(x, y, 0)
			for _, s := range ellipse(size) {
				for u := x + s.lo; u <= x+s.hi; u++ {
					v := y + s.dy
					if !buf.Contains(u, v) {
						continue
					}
					c := buf.At(u, v, 0)
					if (dilate && c > best) || (!dilate && c < best) {
						best = c
					}
				}
			}
			out.Set(x, y, best)
		}
	}
	return out
}

func TestMorph_MatchesNaive(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pix := make([]uint8, 23*17)
	for i := range pix {
		pix[i] = uint8(rng.Intn(256))
	}
	img, err := pixel.FromSlice(23, 17, pix)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}

	rt := NewNative()
	for _, size := range []int{3, 5, 7, 11, 47} {
		dilated, err := rt.Dilate(img, size)
		if err != nil {
			t.Fatalf("Dilate(%d) failed: %v", size, err)
		}
		if !dilated.Equal(naiveMorph(img, size, true)) {
			t.Errorf("Dilate(%d) differs from the direct scan", size)
		}

		eroded, err := rt.Erode(img, size)
		if err != nil {
			t.Fatalf("Erode(%d) failed: %v", size, err)
		}
		if !eroded.Equal(naiveMorph(img, size, false)) {
			t.Errorf("Erode(%d) differs from the direct scan", size)
		}
	}
}

func TestMorph_EvenSize(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	pix := make([]uint8, 19*14)
	for i := range pix {
		pix[i] = uint8(rng.Intn(256))
	}
	img, _ := pixel.FromSlice(19, 14, pix)

	got, err := morph(img, 10, true)
	if err != nil {
		t.Fatalf("morph failed: %v", err)
	}
	if !got.Equal(naiveMorph(img, 10, true)) {
		t.Error("even-size dilation differs from the direct scan")
	}
}

func TestDilate_DotTakesEllipseShape(t *testing.T) {
	dot := filled(t, 9, 9, 0)
	dot.Set(4, 4, 255)

	grown, err := NewNative().Dilate(dot, 5)
	if err != nil {
		t.Fatalf("Dilate failed: %v", err)
	}
	want := []string{
		".........",
		".........",
		"....#....",
		"..#####..",
		"..#####..",
		"..#####..",
		"....#....",
		".........",
		".........",
	}
	for y, row := range want {
		for x, c := range row {
			on := grown.At(x, y, 0) == 255
			if on != (c == '#') {
				t.Errorf("pixel (%d,%d) set = %v, want %v", x, y, on, c == '#')
			}
		}
	}
}
