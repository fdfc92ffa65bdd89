package imaging

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// writeScreenshot encodes a solid PNG named name in a temp directory and returns
// its path.
func writeScreenshot(t *testing.T, dir, name string, w, h int) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create screenshot: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, solidImage(w, h, color.RGBA{200, 200, 200, 255})); err != nil {
		t.Fatalf("failed to encode screenshot: %v", err)
	}
	return path
}

func TestNewImageCacheSize(t *testing.T) {
	if c := NewImageCache(); c.maxEntries != DefaultCacheEntries {
		t.Errorf("maxEntries: got %d, want %d", c.maxEntries, DefaultCacheEntries)
	}
	if c := NewImageCacheSize(0); c.maxEntries != 1 {
		t.Errorf("maxEntries below 1 should become 1, got %d", c.maxEntries)
	}
}

func TestImageCache_Load(t *testing.T) {
	cache := NewImageCache()
	path := writeScreenshot(t, t.TempDir(), "menu.png", 120, 80)

	first, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if b := first.Bounds(); b.Dx() != 120 || b.Dy() != 80 {
		t.Errorf("size: got %dx%d, want 120x80", b.Dx(), b.Dy())
	}

	second, err := cache.Load(path)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if first != second {
		t.Error("unchanged file should come from the cache")
	}
}

func TestImageCache_ReloadsChangedFile(t *testing.T) {
	cache := NewImageCache()
	dir := t.TempDir()
	path := writeScreenshot(t, dir, "dialog.png", 40, 40)

	if _, err := cache.Load(path); err != nil {
		t.Fatal(err)
	}

	writeScreenshot(t, dir, "dialog.png", 64, 32)
	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}

	img, err := cache.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 32 {
		t.Errorf("retaken screenshot not reloaded: got %dx%d", b.Dx(), b.Dy())
	}
	if cache.Len() != 1 {
		t.Errorf("reload should replace the entry, cache holds %d", cache.Len())
	}
}

func TestImageCache_EvictsOldestWhenFull(t *testing.T) {
	cache := NewImageCacheSize(2)
	dir := t.TempDir()
	paths := []string{
		writeScreenshot(t, dir, "a.png", 10, 10),
		writeScreenshot(t, dir, "b.png", 11, 10),
		writeScreenshot(t, dir, "c.png", 12, 10),
	}

	for _, p := range paths {
		if _, err := cache.Load(p); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
	}

	if cache.Len() != 2 {
		t.Fatalf("Len: got %d, want 2", cache.Len())
	}
	cache.mu.RLock()
	_, oldest := cache.entries[paths[0]]
	_, newest := cache.entries[paths[2]]
	cache.mu.RUnlock()
	if oldest || !newest {
		t.Errorf("eviction order wrong: oldest cached %v, newest cached %v", oldest, newest)
	}
}

func TestImageCache_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "broken.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := map[string]string{
		"missing file": filepath.Join(dir, "missing.png"),
		"not an image": garbage,
	}
	for name, path := range tests {
		t.Run(name, func(t *testing.T) {
			cache := NewImageCache()
			if _, err := cache.Load(path); err == nil {
				t.Error("expected error")
			}
			if cache.Len() != 0 {
				t.Error("failed loads must not be cached")
			}
		})
	}
}

func TestImageCache_EvictAndClear(t *testing.T) {
	cache := NewImageCache()
	dir := t.TempDir()
	a := writeScreenshot(t, dir, "a.png", 20, 20)
	b := writeScreenshot(t, dir, "b.png", 20, 20)
	for _, p := range []string{a, b} {
		if _, err := cache.Load(p); err != nil {
			t.Fatal(err)
		}
	}

	cache.Evict(a)
	cache.Evict(filepath.Join(dir, "never-loaded.png"))
	if cache.Len() != 1 || len(cache.order) != 1 || cache.order[0] != b {
		t.Errorf("after Evict: len %d, order %v", cache.Len(), cache.order)
	}

	cache.Clear()
	if cache.Len() != 0 || len(cache.order) != 0 {
		t.Error("Clear should empty the cache")
	}
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	cache := NewImageCacheSize(2)
	dir := t.TempDir()
	paths := []string{
		writeScreenshot(t, dir, "a.png", 30, 30),
		writeScreenshot(t, dir, "b.png", 30, 30),
		writeScreenshot(t, dir, "c.png", 30, 30),
	}

	var wg sync.WaitGroup
	errs := make(chan error, 60)
	for i := 0; i < 60; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(paths[i%len(paths)]); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Load error: %v", err)
	}
	if cache.Len() > 2 {
		t.Errorf("cache exceeded its bound: %d", cache.Len())
	}
}

func TestLoadImageInfo(t *testing.T) {
	cache := NewImageCache()
	path := writeScreenshot(t, t.TempDir(), "settings.png", 200, 150)

	info, err := LoadImageInfo(cache, path)
	if err != nil {
		t.Fatalf("LoadImageInfo failed: %v", err)
	}
	if info.Width != 200 || info.Height != 150 || info.Format != "png" {
		t.Errorf("info: %+v", info)
	}
	if info.FileSizeBytes <= 0 {
		t.Error("FileSizeBytes should be positive")
	}

	if _, err := LoadImageInfo(cache, filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFormatName(t *testing.T) {
	tests := map[string]string{
		"shot.png":  "png",
		"shot.PNG":  "png",
		"shot.jpg":  "jpeg",
		"shot.jpeg": "jpeg",
		"shot.gif":  "gif",
		"shot.tiff": "tiff",
		"shot.xyz":  "unknown",
		"shot":      "unknown",
	}
	for path, want := range tests {
		if got := FormatName(path); got != want {
			t.Errorf("FormatName(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestGetDimensions(t *testing.T) {
	cache := NewImageCache()
	path := writeScreenshot(t, t.TempDir(), "toolbar.png", 300, 40)

	dims, err := GetDimensions(cache, path)
	if err != nil {
		t.Fatalf("GetDimensions failed: %v", err)
	}
	if dims.Width != 300 || dims.Height != 40 {
		t.Errorf("dimensions: %+v", dims)
	}
}
