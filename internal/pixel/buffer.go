package pixel

import (
	"image"
	"image/color"
)

// Border sentinels for Buffer.At.
const (
	// ZeroPad treats everything outside the buffer as black.
	ZeroPad uint8 = 0
	// WhitePad treats everything outside the buffer as white background.
	WhitePad uint8 = 255
)

// Buffer is a bounds-checked single-channel intensity grid.
//
// Values are 8-bit intensities in [0,255] stored row-major. A Buffer whose
// values are all 0 or 255 is a binary mask (see IsBinary).
//
// Operators never modify their input buffer; they allocate and fill a new
// one and hand it back to the caller.
type Buffer struct {
	width  int
	height int
	pix    []uint8
}

// NewBuffer allocates a black width×height buffer.
//
// Returns an error wrapping ErrInvalidInput if either dimension is not
// positive.
func NewBuffer(width, height int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, Invalidf("buffer dimensions %dx%d", width, height)
	}
	return &Buffer{width: width, height: height, pix: make([]uint8, width*height)}, nil
}

// FromSlice builds a buffer from row-major intensities. The slice is copied.
func FromSlice(width, height int, pix []uint8) (*Buffer, error) {
	b, err := NewBuffer(width, height)
	if err != nil {
		return nil, err
	}
	if len(pix) != width*height {
		return nil, Invalidf("%d values for a %dx%d buffer", len(pix), width, height)
	}
	copy(b.pix, pix)
	return b, nil
}

// FromImage extracts channel 0 of img into a new buffer.
//
// For *image.Gray the gray level is used directly. For every other color
// model the non-premultiplied red component is taken, which is the first
// channel of an RGBA source. Converting color to luminance is the job of
// the vision runtime, not of this function.
func FromImage(img image.Image) (*Buffer, error) {
	if img == nil {
		return nil, Invalidf("nil image")
	}
	bounds := img.Bounds()
	b, err := NewBuffer(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}

	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < b.height; y++ {
			off := g.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(b.pix[y*b.width:(y+1)*b.width], g.Pix[off:off+b.width])
		}
		return b, nil
	}

	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			b.pix[y*b.width+x] = c.R
		}
	}
	return b, nil
}

// Width returns the number of columns.
func (b *Buffer) Width() int { return b.width }

// Height returns the number of rows.
func (b *Buffer) Height() int { return b.height }

// Contains reports whether (x, y) addresses a stored pixel.
func (b *Buffer) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.width && y < b.height
}

// At returns the intensity at (x, y), or outside when the coordinate falls
// outside the buffer.
func (b *Buffer) At(x, y int, outside uint8) uint8 {
	if !b.Contains(x, y) {
		return outside
	}
	return b.pix[y*b.width+x]
}

// Set stores v at (x, y). Writes outside the buffer are ignored.
func (b *Buffer) Set(x, y int, v uint8) {
	if b.Contains(x, y) {
		b.pix[y*b.width+x] = v
	}
}

// Fill sets every pixel to v.
func (b *Buffer) Fill(v uint8) {
	for i := range b.pix {
		b.pix[i] = v
	}
}

// Pix returns a copy of the row-major intensities.
func (b *Buffer) Pix() []uint8 {
	out := make([]uint8, len(b.pix))
	copy(out, b.pix)
	return out
}

// Sum returns the total of all intensities.
func (b *Buffer) Sum() int64 {
	var s int64
	for _, v := range b.pix {
		s += int64(v)
	}
	return s
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	return &Buffer{width: b.width, height: b.height, pix: b.Pix()}
}

// Equal reports whether both buffers have the same size and contents.
func (b *Buffer) Equal(o *Buffer) bool {
	if b == nil || o == nil {
		return b == o
	}
	if b.width != o.width || b.height != o.height {
		return false
	}
	for i, v := range b.pix {
		if o.pix[i] != v {
			return false
		}
	}
	return true
}

// IsBinary reports whether every value is 0 or 255.
func (b *Buffer) IsBinary() bool {
	for _, v := range b.pix {
		if v != 0 && v != 255 {
			return false
		}
	}
	return true
}

// Count returns how many pixels equal v.
func (b *Buffer) Count(v uint8) int {
	n := 0
	for _, p := range b.pix {
		if p == v {
			n++
		}
	}
	return n
}

// Gray converts the buffer to an *image.Gray anchored at the origin.
func (b *Buffer) Gray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, b.width, b.height))
	copy(img.Pix, b.pix)
	return img
}
