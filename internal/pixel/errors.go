package pixel

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is wrapped by every error caused by a nil, empty or
// mismatched buffer, or by an out-of-range parameter.
var ErrInvalidInput = errors.New("invalid input")

// Invalidf returns an error wrapping ErrInvalidInput. Operator packages use
// it to reject their own parameters.
func Invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Check returns an error if b is nil or has no pixels.
func Check(b *Buffer) error {
	if b == nil {
		return Invalidf("nil buffer")
	}
	if b.width <= 0 || b.height <= 0 || len(b.pix) != b.width*b.height {
		return Invalidf("empty buffer %dx%d", b.width, b.height)
	}
	return nil
}

// CheckGrid returns an error if g is nil or has no cells.
func CheckGrid(g *Grid) error {
	if g == nil {
		return Invalidf("nil grid")
	}
	if g.width <= 0 || g.height <= 0 || len(g.vals) != g.width*g.height {
		return Invalidf("empty grid %dx%d", g.width, g.height)
	}
	return nil
}

// CheckSameSize returns an error unless both grids exist and share dimensions.
func CheckSameSize(a, b *Grid) error {
	if err := CheckGrid(a); err != nil {
		return err
	}
	if err := CheckGrid(b); err != nil {
		return err
	}
	if a.width != b.width || a.height != b.height {
		return Invalidf("dimension mismatch %dx%d vs %dx%d", a.width, a.height, b.width, b.height)
	}
	return nil
}
