package pixel

// Subtract returns a − b per pixel, saturating at 0.
func Subtract(a, b *Buffer) (*Buffer, error) {
	return combine(a, b, func(x, y uint8) uint8 {
		if x < y {
			return 0
		}
		return x - y
	})
}

// And returns the bitwise AND of a and b.
func And(a, b *Buffer) (*Buffer, error) {
	return combine(a, b, func(x, y uint8) uint8 { return x & y })
}

// Or returns the bitwise OR of a and b.
func Or(a, b *Buffer) (*Buffer, error) {
	return combine(a, b, func(x, y uint8) uint8 { return x | y })
}

func combine(a, b *Buffer, fn func(x, y uint8) uint8) (*Buffer, error) {
	if err := Check(a); err != nil {
		return nil, err
	}
	if err := Check(b); err != nil {
		return nil, err
	}
	if a.width != b.width || a.height != b.height {
		return nil, Invalidf("dimension mismatch %dx%d vs %dx%d", a.width, a.height, b.width, b.height)
	}
	out := &Buffer{width: a.width, height: a.height, pix: make([]uint8, len(a.pix))}
	for i, v := range a.pix {
		out.pix[i] = fn(v, b.pix[i])
	}
	return out, nil
}
