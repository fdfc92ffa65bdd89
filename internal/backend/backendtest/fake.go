// Package backendtest provides in-memory backends for tests.
package backendtest

import (
	"context"
	"image"
	"sync/atomic"

	"github.com/ironsheep/labelingo/internal/annotate"
	"github.com/ironsheep/labelingo/internal/backend"
)

// Detector returns fixed elements and counts calls.
type Detector struct {
	Elements []annotate.DetectedElement
	Err      error
	calls    atomic.Int32
}

func (d *Detector) Name() string { return "fake-detector" }

func (d *Detector) Detect(ctx context.Context, _ image.Image, _ string) ([]annotate.DetectedElement, error) {
	d.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.Err != nil {
		return nil, d.Err
	}
	out := make([]annotate.DetectedElement, len(d.Elements))
	copy(out, d.Elements)
	return out, nil
}

// Calls returns how many times Detect ran.
func (d *Detector) Calls() int { return int(d.calls.Load()) }

// Translator returns a fixed scene and counts calls.
type Translator struct {
	Scene backend.Scene
	Err   error
	calls atomic.Int32
}

func (t *Translator) Name() string { return "fake-translator" }

func (t *Translator) Translate(ctx context.Context, _ image.Image, _ string) (*backend.Scene, error) {
	t.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if t.Err != nil {
		return nil, t.Err
	}
	s := t.Scene
	return &s, nil
}

// Calls returns how many times Translate ran.
func (t *Translator) Calls() int { return int(t.calls.Load()) }

// Box is shorthand for a bounding box pointer.
func Box(x1, y1, x2, y2 float64) *annotate.BBox {
	return &annotate.BBox{X1: x1, Y1: y1, X2: x2, Y2: y2}
}
