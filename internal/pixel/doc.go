// Package pixel provides the single-channel buffers every operator in this
// module reads and writes.
//
// A Buffer holds 8-bit intensities, a Grid holds unclamped real-valued
// responses (convolution output, corner scores), a Kernel holds square
// correlation coefficients and an Integral answers rectangular sums in
// constant time.
//
// # Coordinate System
//
// Coordinates are 0-based with (0,0) at the top-left corner. X increases
// rightward (columns), Y increases downward (rows). Storage is row-major.
//
// # Out-of-range Access
//
// Neighbor reads never index storage directly. Buffer.At and Grid.At take the
// sentinel returned for coordinates outside the buffer, so each operator
// chooses its border policy once and uses it for the whole computation:
//   - ZeroPad (0) for convolution and the Laplacian detector
//   - WhitePad (255) for Moravec, which assumes a white background
//
// # Error Handling
//
// Constructors and operators report nil, zero-sized or mismatched buffers with
// an error wrapping ErrInvalidInput. Check it with errors.Is.
package pixel
