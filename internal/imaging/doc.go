// Package imaging handles image I/O around the pixel operators: loading and
// caching decoded files, cropping a region of interest, and rendering
// operator output back to base64 PNG.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner,
// X increasing rightward and Y increasing downward. For regions, (x1,y1) is
// inclusive and (x2,y2) exclusive.
//
// # Rendering
//
//   - EncodeBuffer writes a pixel buffer as a grayscale PNG.
//   - EncodeGrid stretches a real-valued response grid onto 0..255 first.
//   - DrawKeypoints circles detected corners on a gray rendering.
//   - HistogramChart plots an intensity histogram with a threshold line.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The other functions are stateless.
package imaging
