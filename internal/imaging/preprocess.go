package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// OCR preprocessing defaults.
const (
	// MinOCRHeight is the height below which screenshots are upscaled before OCR.
	// Tesseract loses small UI text below roughly 20px glyphs.
	MinOCRHeight = 1000

	// OCRContrast is the contrast change applied before OCR.
	OCRContrast = 0.3
)

// PrepareForOCR returns a grayscale, contrast-boosted copy of img and the factor it
// was scaled by. Small images are upscaled so their height reaches MinOCRHeight;
// divide OCR coordinates by the factor to map them back to img.
func PrepareForOCR(img image.Image) (image.Image, float64) {
	factor := 1.0
	out := img
	if h := img.Bounds().Dy(); h > 0 && h < MinOCRHeight {
		factor = float64(MinOCRHeight) / float64(h)
		w := int(float64(img.Bounds().Dx())*factor + 0.5)
		out = imaging.Resize(img, w, MinOCRHeight, imaging.CatmullRom)
	}

	gray := effect.Grayscale(out)
	return adjust.Contrast(gray, OCRContrast), factor
}
