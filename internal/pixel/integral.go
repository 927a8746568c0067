package pixel

// Integral is a summed-area table: cell (x, y) holds the sum of every source
// value with row <= y and column <= x.
type Integral struct {
	width  int
	height int
	sums   []int64
}

// NewIntegral builds the summed-area table of a buffer.
func NewIntegral(b *Buffer) (*Integral, error) {
	if err := Check(b); err != nil {
		return nil, err
	}
	return NewIntegralFunc(b.width, b.height, func(x, y int) int64 {
		return int64(b.pix[y*b.width+x])
	})
}

// NewIntegralFunc builds the summed-area table of an arbitrary integer field
// of the given size. value is called exactly once per cell in row-major
// order.
func NewIntegralFunc(width, height int, value func(x, y int) int64) (*Integral, error) {
	if width <= 0 || height <= 0 {
		return nil, Invalidf("integral dimensions %dx%d", width, height)
	}
	sums := make([]int64, width*height)

	var row int64
	for x := 0; x < width; x++ {
		row += value(x, 0)
		sums[x] = row
	}
	for y := 1; y < height; y++ {
		row = 0
		line := y * width
		for x := 0; x < width; x++ {
			row += value(x, y)
			sums[line+x] = sums[line-width+x] + row
		}
	}

	return &Integral{width: width, height: height, sums: sums}, nil
}

// Width returns the number of columns.
func (in *Integral) Width() int { return in.width }

// Height returns the number of rows.
func (in *Integral) Height() int { return in.height }

// At returns the cumulative sum at (x, y).
func (in *Integral) At(x, y int) int64 {
	return in.sums[y*in.width+x]
}

// RectSum returns the sum of the source over the inclusive rectangle
// (x1,y1)-(x2,y2).
//
// The rectangle is clipped to the table first, and an empty rectangle sums
// to 0. Terms that would reference row -1 or column -1 are omitted.
func (in *Integral) RectSum(x1, y1, x2, y2 int) int64 {
	if x1 < 0 {
		x1 = 0
	}
	if y1 < 0 {
		y1 = 0
	}
	if x2 >= in.width {
		x2 = in.width - 1
	}
	if y2 >= in.height {
		y2 = in.height - 1
	}
	if x1 > x2 || y1 > y2 {
		return 0
	}

	w := in.width
	sum := in.sums[y2*w+x2]
	if y1 > 0 {
		sum -= in.sums[(y1-1)*w+x2]
		if x1 > 0 {
			sum += in.sums[(y1-1)*w+x1-1]
		}
	}
	if x1 > 0 {
		sum -= in.sums[y2*w+x1-1]
	}
	return sum
}
