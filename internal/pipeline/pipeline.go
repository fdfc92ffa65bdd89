// Package pipeline runs the whole annotation of a screenshot: detection and
// translation, merging, layout and rendering.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/labelingo/internal/annotate"
	"github.com/ironsheep/labelingo/internal/backend"
	"github.com/ironsheep/labelingo/internal/imaging"
	"github.com/ironsheep/labelingo/internal/layout"
	"github.com/ironsheep/labelingo/internal/logging"
	"github.com/ironsheep/labelingo/internal/render"
)

// Default display limits for the scaled screenshot.
const (
	DefaultMaxWidth  = 1200
	DefaultMaxHeight = 1600
)

// ErrNoTranslator is returned by Run when the pipeline has no translation backend.
var ErrNoTranslator = errors.New("no translation backend configured")

// Pipeline holds the backends and settings shared by every run. It is safe for
// concurrent use once configured.
type Pipeline struct {
	// Detector locates text. Nil skips detection: the translator's own located
	// elements are used, and text it could not locate becomes floating labels.
	Detector backend.Detector

	Translator backend.Translator

	Layout layout.Options
	Render render.Options

	// MaxWidth and MaxHeight bound the displayed screenshot. Zero means the default.
	MaxWidth  int
	MaxHeight int

	// Concurrency bounds RunBatch. Zero means 1.
	Concurrency int

	// Images caches decoded screenshots. Nil decodes on every run.
	Images *imaging.ImageCache

	Logger logrus.FieldLogger
}

// Request describes one screenshot to annotate.
type Request struct {
	ImagePath string

	// Image, when set, is used instead of reading ImagePath.
	Image image.Image

	// TargetLanguage is the language labels are translated into.
	TargetLanguage string

	// SourceLanguage is a hint for the detector. When empty, translation runs
	// first and its detected source language is passed to the detector.
	SourceLanguage string

	// Title overrides the title suggested by the translator.
	Title string
}

// Result is one annotated screenshot.
type Result struct {
	RunID     string                  `json:"run_id"`
	ImagePath string                  `json:"image_path,omitempty"`
	Document  *render.Document        `json:"document"`
	Analysis  annotate.AnalysisResult `json:"analysis"`
	Plan      layout.Plan             `json:"plan"`
	Report    annotate.MergeReport    `json:"report"`
}

func (p *Pipeline) logger() logrus.FieldLogger {
	if p.Logger == nil {
		return logrus.StandardLogger()
	}
	return p.Logger
}

// Run annotates one screenshot.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	runID := logging.NewRunID()
	log := p.logger().WithFields(logrus.Fields{"run_id": runID, "image": req.ImagePath})
	start := time.Now()

	img, err := p.load(req)
	if err != nil {
		return nil, err
	}

	analysis, report, err := p.Analyze(ctx, img, req.TargetLanguage, req.SourceLanguage)
	if err != nil {
		return nil, err
	}
	if req.Title != "" {
		analysis.Title = req.Title
	}

	plan, doc, err := p.Compose(img, analysis.Elements, analysis.Title)
	if err != nil {
		return nil, err
	}

	entry := log.WithFields(logrus.Fields{
		"elements":    len(analysis.Elements),
		"floating":    len(report.TranslatedOnly),
		"source_lang": analysis.SourceLanguage,
		"duration":    time.Since(start).Round(time.Millisecond),
	})
	if plan.Sanitized > 0 {
		entry.WithField("sanitized", plan.Sanitized).Warn("normalized inverted bounding boxes")
	}
	entry.Info("annotated screenshot")

	return &Result{
		RunID:     runID,
		ImagePath: req.ImagePath,
		Document:  doc,
		Analysis:  *analysis,
		Plan:      plan,
		Report:    report,
	}, nil
}

func (p *Pipeline) load(req Request) (image.Image, error) {
	if req.Image != nil {
		return req.Image, nil
	}
	if req.ImagePath == "" {
		return nil, errors.New("no image given")
	}
	if p.Images != nil {
		return p.Images.Load(req.ImagePath)
	}
	return imaging.Open(req.ImagePath)
}

// Analyze runs the backends on img and merges their results.
//
// With a source language hint, detection and translation run concurrently and the
// first failure cancels the other. Without one, translation runs first so the
// detector can be told which language to read. Without a detector, the
// translator's located elements are used directly.
func (p *Pipeline) Analyze(ctx context.Context, img image.Image, targetLang, sourceLang string) (*annotate.AnalysisResult, annotate.MergeReport, error) {
	if p.Translator == nil {
		return nil, annotate.MergeReport{}, ErrNoTranslator
	}

	var (
		scene    *backend.Scene
		detected []annotate.DetectedElement
	)

	translate := func(ctx context.Context) error {
		s, err := p.Translator.Translate(ctx, img, targetLang)
		if err != nil {
			return fmt.Errorf("translation failed: %w", err)
		}
		scene = s
		return nil
	}
	detect := func(ctx context.Context, lang string) error {
		d, err := p.Detector.Detect(ctx, img, lang)
		if err != nil {
			return fmt.Errorf("detection failed: %w", err)
		}
		detected = d
		return nil
	}

	switch {
	case p.Detector == nil:
		if err := translate(ctx); err != nil {
			return nil, annotate.MergeReport{}, err
		}
		detected = scene.Located
	case sourceLang != "":
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return translate(gctx) })
		g.Go(func() error { return detect(gctx, sourceLang) })
		if err := g.Wait(); err != nil {
			return nil, annotate.MergeReport{}, err
		}
	default:
		if err := translate(ctx); err != nil {
			return nil, annotate.MergeReport{}, err
		}
		if err := detect(ctx, scene.SourceLanguage); err != nil {
			return nil, annotate.MergeReport{}, err
		}
	}

	report := annotate.Compare(detected, scene.Elements)
	log := p.logger()
	if len(report.DetectedOnly) > 0 || len(report.TranslatedOnly) > 0 {
		log.WithFields(logrus.Fields{
			"matched":         report.Matched,
			"detected_only":   report.DetectedOnly,
			"translated_only": report.TranslatedOnly,
		}).Debug("detection and translation disagree")
	}

	return &annotate.AnalysisResult{
		Elements:       annotate.Merge(detected, scene.Elements),
		SourceLanguage: scene.SourceLanguage,
		Title:          scene.Title,
	}, report, nil
}

// Compose lays out elements over img and renders the document. It calls no
// backend.
func (p *Pipeline) Compose(img image.Image, elements []annotate.DetectedElement, title string) (layout.Plan, *render.Document, error) {
	b := img.Bounds()
	maxW, maxH := p.MaxWidth, p.MaxHeight
	if maxW <= 0 {
		maxW = DefaultMaxWidth
	}
	if maxH <= 0 {
		maxH = DefaultMaxHeight
	}

	plan := layout.Compute(layout.Input{
		Elements:     elements,
		SourceWidth:  b.Dx(),
		SourceHeight: b.Dy(),
		Scale:        layout.FitScale(float64(b.Dx()), float64(b.Dy()), float64(maxW), float64(maxH)),
		Title:        title,
	}, p.Layout)

	doc, err := render.Render(plan, img, p.Render)
	if err != nil {
		return layout.Plan{}, nil, fmt.Errorf("render failed: %w", err)
	}
	return plan, doc, nil
}
