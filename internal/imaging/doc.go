// Package imaging loads, scales and encodes screenshots.
//
// It wraps github.com/disintegration/imaging for decoding, resampling and encoding,
// and github.com/anthonynsimon/bild for the filters applied before OCR. All functions
// work with standard image.Image values and a coordinate system where (0,0) is the
// top-left corner.
//
// # Orientation
//
// Open and ImageCache.Load apply EXIF orientation while decoding, so the pixel grid
// (and therefore every bounding box a backend reports) matches the image as a viewer
// displays it.
//
// # Scaling
//
// Three sizes of the same screenshot are in play during a run:
//   - the source image, the coordinate space of DetectedElement bounding boxes;
//   - the upload image, produced by Downscale for vision backends, whose factor maps
//     backend coordinates back to source pixels;
//   - the display image, produced by ResizeTo at the layout scale and embedded in
//     the output document.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The other functions are stateless and never
// modify their input image.
package imaging
