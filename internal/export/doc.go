// Package export writes rendered documents as SVG, PNG or PDF, to a local file or
// to an S3 bucket.
//
// SVG is written as rendered. PNG and PDF are produced by loading the SVG into
// headless Chrome through chromedp: PNG is a screenshot of the svg element and PDF
// is Chrome's print output sized to the document. Chrome (or chromium, or
// headless-shell) must be installed for those two formats.
//
// Destinations of the form s3://bucket/key are uploaded with the AWS SDK's
// s3manager, using the default credential chain.
package export
