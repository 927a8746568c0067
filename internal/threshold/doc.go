// Package threshold turns single-channel buffers into binary masks.
//
// Otsu picks one global cut by maximizing the between-class variance of the
// intensity histogram. Bradley compares every pixel with the mean of a
// square window around it, read from an integral image, which copes with
// uneven lighting that defeats a single global cut.
//
// Both return a new buffer whose values are 0 (background) or 255
// (foreground). The input buffer is never modified.
package threshold
