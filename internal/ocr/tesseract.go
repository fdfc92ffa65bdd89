package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/labelingo/internal/annotate"
	"github.com/ironsheep/labelingo/internal/backend"
	imgutil "github.com/ironsheep/labelingo/internal/imaging"
)

// Name is the configuration tag of the Tesseract detector.
const Name = "tesseract"

// DefaultLanguage is used for language codes Tesseract has no mapping for.
const DefaultLanguage = "eng"

var tesseractLanguages = map[string]string{
	"en": "eng",
	"fr": "fra",
	"de": "deu",
	"es": "spa",
	"it": "ita",
	"pt": "por",
	"zh": "chi_sim",
	"ja": "jpn",
	"ko": "kor",
}

// TesseractLanguage maps a two-letter language code to a Tesseract language code.
// Three-letter codes and "chi_*" variants are assumed to be Tesseract codes already.
func TesseractLanguage(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if tl, ok := tesseractLanguages[code]; ok {
		return tl
	}
	if len(code) == 3 || strings.HasPrefix(code, "chi_") {
		return code
	}
	return DefaultLanguage
}

// Options configures the detector.
type Options struct {
	// TessdataPrefix overrides the directory holding *.traineddata files.
	TessdataPrefix string

	// MinConfidence drops lines Tesseract is less sure of, 0 to 100.
	MinConfidence float64
}

// Tesseract detects text lines with a local Tesseract installation.
type Tesseract struct {
	opts Options
}

// New returns a Tesseract detector.
func New(opts Options) *Tesseract {
	return &Tesseract{opts: opts}
}

func (t *Tesseract) Name() string { return Name }

// Version is bumped whenever line grouping or preprocessing changes.
func (t *Tesseract) Version() string { return "2" }

// Detect finds text lines in img.
//
// The image is upscaled, converted to grayscale and contrast-boosted before OCR
// (see imaging.PrepareForOCR); returned boxes are in img's own pixel coordinates.
// Each element's translation is set to its text, marking it as identified but not
// yet translated. Blank lines are dropped.
//
// Parameters:
//   - img: The screenshot.
//   - lang: Two-letter code of the expected source language; "" means English.
//
// Returns:
//   - []annotate.DetectedElement: One element per text line, in reading order.
//   - error: A *backend.Error if Tesseract is missing, the language data is not
//     installed, or recognition fails.
func (t *Tesseract) Detect(ctx context.Context, img image.Image, lang string) ([]annotate.DetectedElement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prepared, factor := imgutil.PrepareForOCR(img)
	data, err := imgutil.Encode(prepared, "png", 0)
	if err != nil {
		return nil, backend.Wrap(Name, "detect", err, false)
	}

	lines, err := t.recognize(data, TesseractLanguage(lang))
	if err != nil {
		return nil, backend.Wrap(Name, "detect", err, false)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	origin := img.Bounds().Min
	elements := make([]annotate.DetectedElement, 0, len(lines))
	for _, line := range lines {
		box := annotate.BBox{
			X1: float64(line.Box.Min.X)/factor + float64(origin.X),
			Y1: float64(line.Box.Min.Y)/factor + float64(origin.Y),
			X2: float64(line.Box.Max.X)/factor + float64(origin.X),
			Y2: float64(line.Box.Max.Y)/factor + float64(origin.Y),
		}
		elements = append(elements, annotate.NewElement(line.Word, line.Word, &box))
	}
	return elements, nil
}

// DetectRegion runs Detect on the rectangle (x1,y1)-(x2,y2) of img. Returned boxes
// are relative to img, not to the region.
func (t *Tesseract) DetectRegion(ctx context.Context, img image.Image, x1, y1, x2, y2 int, lang string) ([]annotate.DetectedElement, error) {
	r := image.Rect(x1, y1, x2, y2).Intersect(img.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("region (%d,%d)-(%d,%d) is outside the image", x1, y1, x2, y2)
	}

	elements, err := t.Detect(ctx, imaging.Crop(img, r), lang)
	if err != nil {
		return nil, err
	}
	for i := range elements {
		b := *elements[i].BoundingBox
		b.X1 += float64(r.Min.X)
		b.X2 += float64(r.Min.X)
		b.Y1 += float64(r.Min.Y)
		b.Y2 += float64(r.Min.Y)
		elements[i].BoundingBox = &b
	}
	return elements, nil
}

// recognize returns the non-blank text lines of a PNG with trimmed text.
func (t *Tesseract) recognize(png []byte, language string) ([]gosseract.BoundingBox, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if t.opts.TessdataPrefix != "" {
		client.TessdataPrefix = t.opts.TessdataPrefix
	}
	if err := client.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImageFromBytes(png); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	lines := make([]gosseract.BoundingBox, 0, len(boxes))
	for _, box := range boxes {
		box.Word = strings.Join(strings.Fields(box.Word), " ")
		if box.Word == "" || box.Confidence < 0 || box.Confidence < t.opts.MinConfidence {
			continue
		}
		lines = append(lines, box)
	}
	return lines, nil
}
