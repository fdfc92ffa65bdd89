package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/labelingo/internal/render"
)

// Output formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// ErrUnsupportedFormat is returned for formats other than svg, png and pdf.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	switch format {
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	default:
		return "image/svg+xml"
	}
}

// DefaultOutput returns "<dir>/<stem>-annotated.<format>" for an input image path.
func DefaultOutput(input, format string) string {
	ext := filepath.Ext(input)
	stem := strings.TrimSuffix(input, ext)
	return stem + "-annotated." + format
}

// NormalizeOutput replaces or adds the extension of path so it matches format.
// Paths whose extension already matches, in any case, are returned unchanged.
func NormalizeOutput(path, format string) string {
	ext := filepath.Ext(path)
	if strings.EqualFold(strings.TrimPrefix(ext, "."), format) {
		return path
	}
	switch strings.ToLower(ext) {
	case ".svg", ".png", ".pdf":
		path = strings.TrimSuffix(path, ext)
	}
	return path + "." + format
}

// Exporter writes documents. The zero value writes SVG to local files; PNG and PDF
// use a Chrome rasterizer and s3:// destinations an S3 uploader, created on first
// use.
type Exporter struct {
	Raster   Rasterizer
	Uploader Uploader

	// Region is the AWS region for the default uploader.
	Region string

	Logger logrus.FieldLogger

	rasterOnce sync.Once
	uploadOnce sync.Once
	uploadErr  error
}

// Encode returns doc in the given format.
func (e *Exporter) Encode(ctx context.Context, doc *render.Document, format string) ([]byte, error) {
	switch format {
	case FormatSVG, "":
		return []byte(doc.SVG), nil
	case FormatPNG:
		return e.raster().PNG(ctx, doc.SVG, doc.Width, doc.Height)
	case FormatPDF:
		return e.raster().PDF(ctx, doc.SVG, doc.Width, doc.Height)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// Write encodes doc and stores it at dest, a file path or an s3:// URL. It returns
// where the document ended up.
func (e *Exporter) Write(ctx context.Context, doc *render.Document, dest, format string) (string, error) {
	if format == "" {
		format = FormatSVG
	}
	data, err := e.Encode(ctx, doc, format)
	if err != nil {
		return "", err
	}

	if bucket, key, ok := ParseS3URL(dest); ok {
		up, err := e.uploader()
		if err != nil {
			return "", err
		}
		loc, err := up.Upload(ctx, bucket, key, bytes.NewReader(data), ContentType(format))
		if err != nil {
			return "", err
		}
		e.logger().WithFields(logrus.Fields{"location": loc, "bytes": len(data)}).Debug("uploaded document")
		return loc, nil
	}

	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", dest, err)
	}
	e.logger().WithFields(logrus.Fields{"path": dest, "bytes": len(data)}).Debug("wrote document")
	return dest, nil
}

func (e *Exporter) raster() Rasterizer {
	e.rasterOnce.Do(func() {
		if e.Raster == nil {
			e.Raster = &Chrome{NoSandbox: os.Geteuid() == 0}
		}
	})
	return e.Raster
}

func (e *Exporter) uploader() (Uploader, error) {
	e.uploadOnce.Do(func() {
		if e.Uploader == nil {
			e.Uploader, e.uploadErr = NewS3Uploader(e.Region)
		}
	})
	return e.Uploader, e.uploadErr
}

func (e *Exporter) logger() logrus.FieldLogger {
	if e.Logger == nil {
		return logrus.StandardLogger()
	}
	return e.Logger
}
