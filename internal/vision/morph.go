package vision

import (
	"math"

	"github.com/ironsheep/pixel-tools-mcp/internal/pixel"
)

// span is one row of a structuring element: columns lo..hi, relative to the
// anchor, on row dy.
type span struct{ dy, lo, hi int }

// ellipse returns the rows of a size×size elliptical structuring element
// anchored at (size/2, size/2). It is the shape OpenCV builds for
// MORPH_ELLIPSE, so both backends agree. Even sizes lean up and left.
func ellipse(size int) []span {
	r := size / 2
	spans := make([]span, size)
	for i := range spans {
		dy := i - r
		dx := 0
		if r > 0 {
			dx = int(math.RoundToEven(float64(r) * math.Sqrt(float64(r*r-dy*dy)/float64(r*r))))
		}
		spans[i] = span{dy: dy, lo: -dx, hi: min(dx, size-1-r)}
	}
	return spans
}

// morph dilates (max) or erodes (min) buf with the size×size ellipse.
// Samples outside the image are ignored.
func morph(buf *pixel.Buffer, size int, dilate bool) (*pixel.Buffer, error) {
	width, height := buf.Width(), buf.Height()
	src := buf.Pix()
	out := make([]uint8, width*height)

	keep := func(a, b uint8) bool { return a < b }
	if dilate {
		keep = func(a, b uint8) bool { return a > b }
	}

	spans := ellipse(size)
	run := make([]uint8, width)
	var queue []int
	for y := 0; y < height; y++ {
		acc := out[y*width : (y+1)*width]
		copy(acc, src[y*width:(y+1)*width])
		for _, s := range spans {
			v := y + s.dy
			if v < 0 || v >= height {
				continue
			}
			queue = slide(src[v*width:(v+1)*width], run, s.lo, s.hi, keep, queue)
			for x, c := range run {
				if keep(c, acc[x]) {
					acc[x] = c
				}
			}
		}
	}
	return pixel.FromSlice(width, height, out)
}

// slide writes to out[x] the extreme of in[x+lo..x+hi] under keep, reading
// only indices inside in. lo <= 0 <= hi. queue is scratch space and is
// returned for reuse.
func slide(in, out []uint8, lo, hi int, keep func(a, b uint8) bool, queue []int) []int {
	queue = queue[:0]
	head, next := 0, 0
	for x := range out {
		for ; next < len(in) && next-hi <= x; next++ {
			for len(queue) > head && !keep(in[queue[len(queue)-1]], in[next]) {
				queue = queue[:len(queue)-1]
			}
			queue = append(queue, next)
		}
		for queue[head]-lo < x {
			head++
		}
		out[x] = in[queue[head]]
	}
	return queue
}
