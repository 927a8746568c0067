package vision

import (
	"fmt"

	"github.com/ironsheep/pixel-tools-mcp/internal/pixel"
)

// Opening erodes then dilates with the same structuring element.
func Opening(rt Runtime, buf *pixel.Buffer, size int) (*pixel.Buffer, error) {
	eroded, err := rt.Erode(buf, size)
	if err != nil {
		return nil, err
	}
	return rt.Dilate(eroded, size)
}

// Closing dilates then erodes with the same structuring element.
func Closing(rt Runtime, buf *pixel.Buffer, size int) (*pixel.Buffer, error) {
	dilated, err := rt.Dilate(buf, size)
	if err != nil {
		return nil, err
	}
	return rt.Erode(dilated, size)
}

// Skeleton thins the bright regions of buf with a 3×3 cross. Every round
// keeps what an opening of the current image removes, then erodes it, until
// nothing bright is left or erosion no longer changes the image.
func Skeleton(rt Runtime, buf *pixel.Buffer) (*pixel.Buffer, error) {
	if err := pixel.Check(buf); err != nil {
		return nil, fmt.Errorf("skeleton: %w", err)
	}
	skeleton, err := pixel.NewBuffer(buf.Width(), buf.Height())
	if err != nil {
		return nil, err
	}

	area := buf.Width() * buf.Height()
	current := buf
	for {
		eroded, err := rt.Erode(current, 3)
		if err != nil {
			return nil, fmt.Errorf("skeleton: %w", err)
		}
		opened, err := rt.Dilate(eroded, 3)
		if err != nil {
			return nil, fmt.Errorf("skeleton: %w", err)
		}
		residue, err := pixel.Subtract(current, opened)
		if err != nil {
			return nil, err
		}
		if skeleton, err = pixel.Or(skeleton, residue); err != nil {
			return nil, err
		}

		if eroded.Count(0) == area || eroded.Equal(current) {
			return skeleton, nil
		}
		current = eroded
	}
}

// ConditionalDilate rebuilds the parts of a mask that survive erosion with a
// size×size ellipse. The eroded marker is dilated with a 3×3 cross and ANDed
// with buf until it stops changing or rounds reaches limit. A limit of 0
// runs to stability.
//
// On a binary mask the marker only grows, so at most width×height rounds
// run. The same ceiling applies to gray input.
func ConditionalDilate(rt Runtime, buf *pixel.Buffer, size, limit int) (*pixel.Buffer, error) {
	if err := pixel.Check(buf); err != nil {
		return nil, fmt.Errorf("conditional dilation: %w", err)
	}
	if limit < 0 {
		return nil, fmt.Errorf("conditional dilation: %w", pixel.Invalidf("negative round limit %d", limit))
	}
	if ceiling := buf.Width() * buf.Height(); limit == 0 || limit > ceiling {
		limit = ceiling
	}

	marker, err := rt.Erode(buf, size)
	if err != nil {
		return nil, fmt.Errorf("conditional dilation: %w", err)
	}
	for round := 0; round < limit; round++ {
		grown, err := rt.Dilate(marker, 3)
		if err != nil {
			return nil, fmt.Errorf("conditional dilation: %w", err)
		}
		next, err := pixel.And(grown, buf)
		if err != nil {
			return nil, err
		}
		if next.Equal(marker) {
			break
		}
		marker = next
	}
	return marker, nil
}
