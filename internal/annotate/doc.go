// Package annotate defines the annotation data model and the translation merge.
//
// A screenshot's annotation data is an AnalysisResult: an ordered list of
// DetectedElement values plus an optional source language and title. Elements come
// from a detection backend (text with a location) and are enriched by a translation
// backend (text with a translation) through Merge.
//
// # Absent Values
//
// Two sentinels are used and must be preserved:
//   - A nil Translation means "no translation yet". A translation equal to the text
//     means "identified but not translated" and is treated as absent by Merge.
//   - A nil BoundingBox, an all-zero box, and a zero-area box all mean "no known
//     location". Such elements are floating labels.
//
// Inverted boxes (x1 > x2 or y1 > y2) are accepted and normalized by swapping through
// DetectedElement.Box.
package annotate
