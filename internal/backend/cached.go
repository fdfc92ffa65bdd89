package backend

import (
	"context"
	"image"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/labelingo/internal/annotate"
	"github.com/ironsheep/labelingo/internal/cache"
	"github.com/ironsheep/labelingo/internal/imaging"
)

// Versioned is implemented by backends whose response format can change. The
// version is part of the cache namespace.
type Versioned interface {
	Version() string
}

func namespace(name string, b any) string {
	return name + "-v" + versionOf(b)
}

// CachedDetector serves Detect from a cache.Store when possible.
type CachedDetector struct {
	Detector
	store cache.Store
	log   logrus.FieldLogger
}

// NewCachedDetector wraps d. A nil store disables caching.
func NewCachedDetector(d Detector, store cache.Store, log logrus.FieldLogger) *CachedDetector {
	if store == nil {
		store = cache.NopStore{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CachedDetector{Detector: d, store: store, log: log}
}

// Detect returns the cached elements for img and lang, calling the wrapped detector
// only on a miss. Successful results are stored; errors are never cached.
func (c *CachedDetector) Detect(ctx context.Context, img image.Image, lang string) ([]annotate.DetectedElement, error) {
	ns := namespace(c.Name(), c.Detector)
	key := imaging.ImageFingerprint(img, "detect", lang, PromptVersion)

	var elements []annotate.DetectedElement
	if lookup(ctx, c.store, c.log, ns, key, &elements) {
		return elements, nil
	}

	elements, err := c.Detector.Detect(ctx, img, lang)
	if err != nil {
		return nil, err
	}
	store(ctx, c.store, c.log, ns, key, elements)
	return elements, nil
}

// CachedTranslator serves Translate from a cache.Store when possible.
type CachedTranslator struct {
	Translator
	store cache.Store
	log   logrus.FieldLogger
}

// NewCachedTranslator wraps t. A nil store disables caching.
func NewCachedTranslator(t Translator, store cache.Store, log logrus.FieldLogger) *CachedTranslator {
	if store == nil {
		store = cache.NopStore{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CachedTranslator{Translator: t, store: store, log: log}
}

// Translate returns the cached scene for img and targetLang, calling the wrapped
// translator only on a miss. Successful results are stored; errors are never cached.
func (c *CachedTranslator) Translate(ctx context.Context, img image.Image, targetLang string) (*Scene, error) {
	ns := namespace(c.Name(), c.Translator)
	key := imaging.ImageFingerprint(img, "translate", targetLang, PromptVersion)

	var scene Scene
	if lookup(ctx, c.store, c.log, ns, key, &scene) {
		return &scene, nil
	}

	got, err := c.Translator.Translate(ctx, img, targetLang)
	if err != nil {
		return nil, err
	}
	store(ctx, c.store, c.log, ns, key, got)
	return got, nil
}

// lookup decodes a cached value into out. Unreadable entries are deleted and
// reported as misses; cache errors never fail the request.
func lookup(ctx context.Context, s cache.Store, log logrus.FieldLogger, ns, key string, out any) bool {
	entry := log.WithFields(logrus.Fields{"namespace": ns, "key": key[:12]})

	data, ok, err := s.Get(ctx, ns, key)
	if err != nil {
		entry.WithError(err).Warn("cache read failed")
		return false
	}
	if !ok {
		entry.Debug("cache miss")
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		entry.WithError(err).Warn("discarding corrupt cache entry")
		if err := s.Delete(ctx, ns, key); err != nil {
			entry.WithError(err).Warn("cache delete failed")
		}
		return false
	}
	entry.Debug("cache hit")
	return true
}

func store(ctx context.Context, s cache.Store, log logrus.FieldLogger, ns, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.WithError(err).Warn("failed to encode cache entry")
		return
	}
	if err := s.Set(ctx, ns, key, data); err != nil {
		log.WithError(err).WithField("namespace", ns).Warn("cache write failed")
	}
}
