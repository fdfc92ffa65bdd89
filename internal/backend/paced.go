package backend

import (
	"context"
	"image"

	"github.com/ironsheep/labelingo/internal/annotate"
	"github.com/ironsheep/labelingo/internal/resilience"
)

func versionOf(b any) string {
	if vb, ok := b.(Versioned); ok {
		return vb.Version()
	}
	return "1"
}

// PacedDetector waits for the limiter before each call and retries transient
// failures.
type PacedDetector struct {
	Detector
	limiter *resilience.Limiter
	retry   resilience.RetryConfig
}

// NewPacedDetector wraps d. A nil limiter does not pace.
func NewPacedDetector(d Detector, limiter *resilience.Limiter, retry resilience.RetryConfig) *PacedDetector {
	return &PacedDetector{Detector: d, limiter: limiter, retry: retry}
}

func (p *PacedDetector) Version() string { return versionOf(p.Detector) }

func (p *PacedDetector) Detect(ctx context.Context, img image.Image, lang string) ([]annotate.DetectedElement, error) {
	var out []annotate.DetectedElement
	err := resilience.Retry(ctx, p.retry, func() error {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}
		var err error
		out, err = p.Detector.Detect(ctx, img, lang)
		return err
	})
	return out, err
}

// PacedTranslator is the Translator counterpart of PacedDetector.
type PacedTranslator struct {
	Translator
	limiter *resilience.Limiter
	retry   resilience.RetryConfig
}

// NewPacedTranslator wraps t. A nil limiter does not pace.
func NewPacedTranslator(t Translator, limiter *resilience.Limiter, retry resilience.RetryConfig) *PacedTranslator {
	return &PacedTranslator{Translator: t, limiter: limiter, retry: retry}
}

func (p *PacedTranslator) Version() string { return versionOf(p.Translator) }

func (p *PacedTranslator) Translate(ctx context.Context, img image.Image, targetLang string) (*Scene, error) {
	var out *Scene
	err := resilience.Retry(ctx, p.retry, func() error {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}
		var err error
		out, err = p.Translator.Translate(ctx, img, targetLang)
		return err
	})
	return out, err
}
