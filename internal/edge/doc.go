// Package edge finds intensity edges in single-channel buffers.
//
// Two families are provided:
//
//   - Directional gradient operators (Roberts, Prewitt, Sobel, Scharr) pair a
//     horizontal and a vertical kernel, combine the two responses into
//     floor(sqrt(gx² + gy²)) and keep pixels whose magnitude exceeds the
//     operator threshold.
//   - The Laplacian detector convolves with a discrete Laplacian and marks
//     pixels whose 3×3 neighborhood contains sign changes larger than a
//     threshold derived from the strongest response.
//
// All kernels read out-of-range neighbors as 0. Results are {0,255} masks
// with 255 marking an edge.
package edge
