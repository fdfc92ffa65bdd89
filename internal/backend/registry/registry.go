// Package registry builds the detection and translation backends named in the
// configuration.
package registry

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/labelingo/internal/backend"
	"github.com/ironsheep/labelingo/internal/backend/claude"
	"github.com/ironsheep/labelingo/internal/backend/gemini"
	"github.com/ironsheep/labelingo/internal/backend/openai"
	"github.com/ironsheep/labelingo/internal/cache"
	"github.com/ironsheep/labelingo/internal/config"
	"github.com/ironsheep/labelingo/internal/ocr"
	"github.com/ironsheep/labelingo/internal/resilience"
)

// Backends is the result of Build. Detector is nil when detection is skipped,
// either because it is disabled or because the translator locates text itself.
type Backends struct {
	Detector   backend.Detector
	Translator backend.Translator
	Store      cache.Store

	closers []func() error
}

// Close releases backend connections and the cache store.
func (b *Backends) Close() error {
	var first error
	for _, c := range b.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Build creates the configured backends, wrapped in the configured cache. With
// noCache set, responses are neither read from nor written to the cache.
func Build(ctx context.Context, cfg *config.Config, noCache bool, log logrus.FieldLogger) (*Backends, error) {
	b := &Backends{}

	store, closeStore, err := NewStore(ctx, cfg.Cache, noCache, log)
	if err != nil {
		return nil, err
	}
	b.Store = store
	if closeStore != nil {
		b.closers = append(b.closers, closeStore)
	}

	// Hosted backends share one limiter.
	limiter := resilience.NewLimiter(cfg.RequestsPerSecond, max(1, cfg.Concurrency))
	retry := resilience.LLMRetryConfig()
	retry.Logger = log

	tr, err := NewTranslator(ctx, cfg, b)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.Translator = backend.NewCachedTranslator(backend.NewPacedTranslator(tr, limiter, retry), store, log)

	if cfg.DetectBackend != config.BackendNone && cfg.DetectBackend != cfg.TranslateBackend {
		d, err := NewDetector(ctx, cfg, b)
		if err != nil {
			b.Close()
			return nil, err
		}
		if cfg.DetectBackend != config.BackendTesseract {
			d = backend.NewPacedDetector(d, limiter, retry)
		}
		b.Detector = backend.NewCachedDetector(d, store, log)
	}

	log.WithFields(logrus.Fields{
		"detector":   detectorName(b.Detector),
		"translator": tr.Name(),
		"cache":      cacheKind(cfg.Cache.Kind, noCache),
	}).Debug("backends ready")
	return b, nil
}

// NewDetector returns the detector named by cfg.DetectBackend, unwrapped.
func NewDetector(ctx context.Context, cfg *config.Config, b *Backends) (backend.Detector, error) {
	switch cfg.DetectBackend {
	case config.BackendTesseract:
		return ocr.New(ocr.Options{}), nil
	case config.BackendClaude:
		return claude.New(claude.Config{APIKey: cfg.Claude.APIKey, Model: cfg.Claude.Model})
	case config.BackendGemini:
		c, err := gemini.New(ctx, gemini.Config{APIKey: cfg.Gemini.APIKey, Model: cfg.Gemini.Model})
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, c.Close)
		return c, nil
	default:
		return nil, fmt.Errorf("unknown detection backend %q", cfg.DetectBackend)
	}
}

// NewTranslator returns the translator named by cfg.TranslateBackend, unwrapped.
func NewTranslator(ctx context.Context, cfg *config.Config, b *Backends) (backend.Translator, error) {
	switch cfg.TranslateBackend {
	case config.BackendOpenAI:
		return openai.New(openai.Config{APIKey: cfg.OpenAI.APIKey, Model: cfg.OpenAI.Model})
	case config.BackendClaude:
		return claude.New(claude.Config{APIKey: cfg.Claude.APIKey, Model: cfg.Claude.Model})
	case config.BackendGemini:
		c, err := gemini.New(ctx, gemini.Config{APIKey: cfg.Gemini.APIKey, Model: cfg.Gemini.Model})
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, c.Close)
		return c, nil
	default:
		return nil, fmt.Errorf("unknown translation backend %q", cfg.TranslateBackend)
	}
}

// NewStore returns the configured response cache and, for stores holding a
// connection, a close function.
func NewStore(ctx context.Context, cfg config.CacheConfig, noCache bool, log logrus.FieldLogger) (cache.Store, func() error, error) {
	if noCache {
		return cache.NopStore{}, nil, nil
	}
	switch cfg.Kind {
	case config.CacheNone:
		return cache.NopStore{}, nil, nil
	case config.CacheMemory:
		return cache.NewMemoryStore(cfg.Policy()), nil, nil
	case config.CacheRedis:
		s, err := cache.NewRedisStore(ctx, cache.RedisOptions{
			Address:  cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Policy:   cfg.Policy(),
		}, log)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		s, err := cache.NewFileStore(cfg.Dir, cfg.Policy())
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	}
}

func detectorName(d backend.Detector) string {
	if d == nil {
		return config.BackendNone
	}
	return d.Name()
}

func cacheKind(kind string, noCache bool) string {
	if noCache {
		return config.CacheNone
	}
	return kind
}
