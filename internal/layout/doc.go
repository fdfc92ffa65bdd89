// Package layout places translated labels in the margins beside a screenshot.
//
// Compute turns a merged element list and the scaled image size into a Plan: one
// Placement per element plus the Canvas geometry. The renderer draws exactly what the
// plan says; layout never touches pixels or markup.
//
// # Canvas
//
// The canvas is the scaled image with a margin on each side and, when a title is
// present, a fixed margin below:
//
//	+--------+-----------------+---------+
//	| left   |                 | right   |
//	| labels |     image       | labels  |
//	|        |                 |         |
//	+--------+-----------------+---------+
//	|            title margin            |
//	+------------------------------------+
//
// A margin is as wide as its longest label plus a fixed padding, so labels are never
// truncated. A side without labels has a zero-width margin.
//
// # Stacking
//
// Labels are processed in order of their box's top edge, floating labels last. Each
// side keeps the y of its previous label, starting at zero, and a label is placed at
// max(natural y, previous y + spacing). The spacing is MinSpacing, or the plate height
// when the font is too large for it, so labels on one side are always at least
// MinSpacing apart and their plates never overlap. The first label on a side is pushed
// down far enough for its plate to start inside the canvas. Canvas height grows when stacking pushes labels below the
// image.
//
// # Numbering
//
// Label numbers are 1-based positions in the input, so they stay stable whatever the
// vertical order ends up being.
package layout
