package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func solidImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestResizeTo(t *testing.T) {
	src := solidImage(200, 100, color.White)

	got := ResizeTo(src, 100, 50)
	if got.Bounds().Dx() != 100 || got.Bounds().Dy() != 50 {
		t.Errorf("ResizeTo: got %v, want 100x50", got.Bounds())
	}

	if ResizeTo(src, 200, 100) != src {
		t.Error("ResizeTo to the same size should return the input")
	}
	if ResizeTo(src, 0, 10) != src {
		t.Error("ResizeTo with a zero size should return the input")
	}
}

func TestDownscale(t *testing.T) {
	tests := []struct {
		name       string
		w, h       int
		long       int
		short      int
		wantW      int
		wantH      int
		wantFactor float64
	}{
		{"within limits", 800, 600, 2048, 768, 800, 600, 1},
		{"long edge bound", 4000, 1000, 2000, 0, 2000, 500, 0.5},
		{"short edge bound", 1600, 1200, 2048, 600, 800, 600, 0.5},
		{"portrait", 1000, 3136, 1568, 0, 500, 1568, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, factor := Downscale(solidImage(tt.w, tt.h, color.Black), tt.long, tt.short)
			if got.Bounds().Dx() != tt.wantW || got.Bounds().Dy() != tt.wantH {
				t.Errorf("size: got %dx%d, want %dx%d", got.Bounds().Dx(), got.Bounds().Dy(), tt.wantW, tt.wantH)
			}
			if factor != tt.wantFactor {
				t.Errorf("factor: got %v, want %v", factor, tt.wantFactor)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	src := solidImage(20, 10, color.RGBA{200, 30, 30, 255})

	data, err := Encode(src, "png", 0)
	if err != nil {
		t.Fatalf("Encode png failed: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("png output does not decode: %v", err)
	}

	data, err = Encode(src, "jpeg", 85)
	if err != nil {
		t.Fatalf("Encode jpeg failed: %v", err)
	}
	if _, err := jpeg.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("jpeg output does not decode: %v", err)
	}

	if _, err := Encode(src, "bmp", 0); err == nil {
		t.Error("Encode should reject unsupported formats")
	}
}

func TestDataURI(t *testing.T) {
	uri, err := DataURI(solidImage(4, 4, color.White), "png", 0)
	if err != nil {
		t.Fatalf("DataURI failed: %v", err)
	}
	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(uri, prefix) {
		t.Fatalf("unexpected prefix: %.40s", uri)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, prefix))
	if err != nil {
		t.Fatalf("payload is not base64: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(raw)); err != nil {
		t.Errorf("payload is not a PNG: %v", err)
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte("ab"), []byte("c"))
	b := Fingerprint([]byte("a"), []byte("bc"))
	if a == b {
		t.Error("Fingerprint should separate parts")
	}
	if len(a) != 64 {
		t.Errorf("Fingerprint length: got %d, want 64", len(a))
	}
	if a != Fingerprint([]byte("ab"), []byte("c")) {
		t.Error("Fingerprint should be deterministic")
	}
}

func TestImageFingerprint(t *testing.T) {
	red := solidImage(20, 10, color.RGBA{255, 0, 0, 255})
	blue := solidImage(20, 10, color.RGBA{0, 0, 255, 255})

	if ImageFingerprint(red, "fr") != ImageFingerprint(solidImage(20, 10, color.RGBA{255, 0, 0, 255}), "fr") {
		t.Error("identical pixels should share a fingerprint")
	}
	if ImageFingerprint(red, "fr") == ImageFingerprint(blue, "fr") {
		t.Error("different pixels should differ")
	}
	if ImageFingerprint(red, "fr") == ImageFingerprint(red, "de") {
		t.Error("request parts should change the fingerprint")
	}
	if ImageFingerprint(solidImage(10, 20, color.RGBA{255, 0, 0, 255})) == ImageFingerprint(red) {
		t.Error("dimensions should change the fingerprint")
	}
}

func TestPrepareForOCR(t *testing.T) {
	src := solidImage(300, 200, color.RGBA{10, 200, 10, 255})

	out, factor := PrepareForOCR(src)

	if factor != 5 {
		t.Errorf("factor: got %v, want 5", factor)
	}
	if out.Bounds().Dy() != MinOCRHeight || out.Bounds().Dx() != 1500 {
		t.Errorf("size: got %v", out.Bounds())
	}
	r, g, b, _ := out.At(10, 10).RGBA()
	if r != g || g != b {
		t.Errorf("output should be gray, got %d,%d,%d", r, g, b)
	}

	big := solidImage(100, MinOCRHeight+10, color.White)
	if _, factor := PrepareForOCR(big); factor != 1 {
		t.Errorf("large images should not be scaled, got factor %v", factor)
	}
}
