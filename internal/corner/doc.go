// Package corner implements the Moravec corner detector.
//
// For every pixel the detector measures how much a w×w patch changes when it
// is shifted by one pixel in each of the eight compass directions. A corner
// changes in every direction, so the response is the smallest of the eight
// sums of squared differences. Weak responses are zeroed and the survivors
// are thinned by non-maximum suppression.
//
// Samples outside the image read as 255: inputs are assumed to sit on a
// white background, so the image border itself does not look like a corner.
//
// The directional sums come from one integral image per direction and the
// suppression window uses a separable sliding maximum. Both return exactly
// what the direct nested-loop definition returns.
package corner
