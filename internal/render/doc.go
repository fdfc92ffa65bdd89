// Package render draws a layout plan as an SVG document.
//
// Render is a pure transform: the same plan, image and options always produce the
// same document. The screenshot is embedded as a data URI at its scaled size, offset
// by the left margin; boxes, connectors, badges and labels are drawn over and around
// it with github.com/ajstarks/svgo, which XML-escapes all text content.
//
// Colors come from a Palette derived from a single accent color with
// github.com/lucasb-eyer/go-colorful. With DistinctColors each element gets its own
// hue so neighbouring connectors are easier to tell apart.
package render
