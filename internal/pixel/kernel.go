package pixel

import "fmt"

// Anchor selects where a kernel's footprint sits relative to the pixel being
// computed.
type Anchor int

const (
	// AnchorCenter centers an odd-sized kernel: rows row-r … row+r.
	AnchorCenter Anchor = iota
	// AnchorTopLeft puts the pixel at kernel cell [0][0]: rows row … row+size-1.
	// The Roberts cross uses this anchor.
	AnchorTopLeft
	// AnchorBottomRight puts the pixel at the last kernel cell: rows
	// row-size+1 … row.
	AnchorBottomRight
)

// String returns the configuration name of the anchor.
func (a Anchor) String() string {
	switch a {
	case AnchorCenter:
		return "center"
	case AnchorTopLeft:
		return "top-left"
	case AnchorBottomRight:
		return "bottom-right"
	default:
		return fmt.Sprintf("anchor(%d)", int(a))
	}
}

// ParseAnchor converts a configuration name into an Anchor.
func ParseAnchor(s string) (Anchor, error) {
	switch s {
	case "center":
		return AnchorCenter, nil
	case "top-left":
		return AnchorTopLeft, nil
	case "bottom-right":
		return AnchorBottomRight, nil
	}
	return 0, Invalidf("unknown anchor %q", s)
}

// Kernel is a square correlation matrix with an anchor.
type Kernel struct {
	size   int
	coeffs []float64
	anchor Anchor
}

// NewKernel builds a kernel from rows of coefficients.
//
// The matrix must be square and non-empty. AnchorCenter additionally requires
// an odd size, since an even kernel has no center cell.
func NewKernel(rows [][]float64, anchor Anchor) (Kernel, error) {
	n := len(rows)
	if n == 0 {
		return Kernel{}, Invalidf("empty kernel")
	}
	coeffs := make([]float64, 0, n*n)
	for i, row := range rows {
		if len(row) != n {
			return Kernel{}, Invalidf("kernel row %d has %d columns, want %d", i, len(row), n)
		}
		coeffs = append(coeffs, row...)
	}
	k := Kernel{size: n, coeffs: coeffs}
	return k.WithAnchor(anchor)
}

// MustKernel is like NewKernel but panics on error. It is meant for
// package-level kernel tables.
func MustKernel(rows [][]float64, anchor Anchor) Kernel {
	k, err := NewKernel(rows, anchor)
	if err != nil {
		panic(err)
	}
	return k
}

// WithAnchor returns a copy of the kernel using anchor a.
func (k Kernel) WithAnchor(a Anchor) (Kernel, error) {
	switch a {
	case AnchorCenter:
		if k.size%2 == 0 {
			return Kernel{}, Invalidf("centered kernel needs odd size, got %d", k.size)
		}
	case AnchorTopLeft, AnchorBottomRight:
	default:
		return Kernel{}, Invalidf("unknown anchor %d", int(a))
	}
	return Kernel{size: k.size, coeffs: k.coeffs, anchor: a}, nil
}

// Size returns the kernel side length.
func (k Kernel) Size() int { return k.size }

// Anchor returns the footprint anchor.
func (k Kernel) Anchor() Anchor { return k.anchor }

// At returns the coefficient at row i, column j.
func (k Kernel) At(i, j int) float64 { return k.coeffs[i*k.size+j] }

// Offset returns the displacement of kernel cell [0][0] from the anchored
// pixel, applied to both rows and columns.
func (k Kernel) Offset() int {
	switch k.anchor {
	case AnchorTopLeft:
		return 0
	case AnchorBottomRight:
		return -(k.size - 1)
	default:
		return -(k.size - 1) / 2
	}
}

// Sum returns the sum of all coefficients.
func (k Kernel) Sum() float64 {
	var s float64
	for _, c := range k.coeffs {
		s += c
	}
	return s
}
