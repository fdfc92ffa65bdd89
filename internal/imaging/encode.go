package imaging

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ResizeTo scales img to exactly w×h pixels with Lanczos resampling. The image is
// returned unchanged when it already has that size or the size is not positive.
func ResizeTo(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if w <= 0 || h <= 0 || (b.Dx() == w && b.Dy() == h) {
		return img
	}
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

// Downscale shrinks img so its long edge is at most longEdge and its short edge at
// most shortEdge, preserving aspect ratio. A non-positive limit is ignored. It
// returns the resized image and the factor applied, which is never above 1.
//
// Vision backends use this to bound upload size; the factor maps their coordinates
// back to the source image.
func Downscale(img image.Image, longEdge, shortEdge int) (image.Image, float64) {
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	if w == 0 || h == 0 {
		return img, 1
	}
	long, short := max(w, h), min(w, h)

	factor := 1.0
	if longEdge > 0 {
		factor = min(factor, float64(longEdge)/long)
	}
	if shortEdge > 0 {
		factor = min(factor, float64(shortEdge)/short)
	}
	if factor >= 1 {
		return img, 1
	}

	nw := max(1, int(w*factor+0.5))
	nh := max(1, int(h*factor+0.5))
	return imaging.Resize(img, nw, nh, imaging.Lanczos), factor
}

// Encode writes img as "jpeg" or "png". Quality applies to JPEG only.
func Encode(img image.Image, format string, quality int) ([]byte, error) {
	var f imaging.Format
	switch format {
	case "jpeg", "jpg":
		f = imaging.JPEG
	case "png":
		f = imaging.PNG
	default:
		return nil, fmt.Errorf("unsupported image format: %s", format)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, f, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// DataURI encodes img and returns it as a base64 data URI.
func DataURI(img image.Image, format string, quality int) (string, error) {
	data, err := Encode(img, format, quality)
	if err != nil {
		return "", err
	}
	mime := "image/png"
	if format != "png" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// Fingerprint returns the hex SHA-256 of the concatenated parts. Parts are length
// prefixed so ("ab","c") and ("a","bc") differ.
func Fingerprint(parts ...[]byte) string {
	h := sha256.New()
	for _, p := range parts {
		fmt.Fprintf(h, "%d:", len(p))
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ImageFingerprint fingerprints img's decoded pixels together with extra request
// parts. Re-encoding a screenshot does not change its fingerprint.
func ImageFingerprint(img image.Image, parts ...string) string {
	nrgba := imaging.Clone(img)
	b := nrgba.Bounds()
	all := make([][]byte, 0, len(parts)+2)
	all = append(all, []byte(fmt.Sprintf("%dx%d", b.Dx(), b.Dy())), nrgba.Pix)
	for _, p := range parts {
		all = append(all, []byte(p))
	}
	return Fingerprint(all...)
}
