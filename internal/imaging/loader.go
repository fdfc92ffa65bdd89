package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
)

// DefaultCacheEntries bounds an ImageCache created with NewImageCache.
const DefaultCacheEntries = 32

// ImageCache keeps decoded screenshots in memory, keyed by file path.
//
// An entry is reused only while the file's size and modification time are unchanged,
// so a screenshot retaken under the same name is decoded again. Images carry their
// EXIF orientation already applied.
//
// At most maxEntries images are held; the oldest entry is dropped first. ImageCache is
// safe for concurrent use.
type ImageCache struct {
	mu         sync.RWMutex
	entries    map[string]cachedImage
	order      []string
	maxEntries int
}

type cachedImage struct {
	img     image.Image
	size    int64
	modTime time.Time
}

func (e cachedImage) fresh(fi os.FileInfo) bool {
	return e.size == fi.Size() && e.modTime.Equal(fi.ModTime())
}

// NewImageCache creates an empty cache holding up to DefaultCacheEntries images.
func NewImageCache() *ImageCache {
	return NewImageCacheSize(DefaultCacheEntries)
}

// NewImageCacheSize creates an empty cache holding up to maxEntries images. A value
// below 1 is treated as 1.
func NewImageCacheSize(maxEntries int) *ImageCache {
	return &ImageCache{
		entries:    make(map[string]cachedImage),
		maxEntries: max(1, maxEntries),
	}
}

// Load returns the decoded image at path, from the cache when the file is unchanged.
// The key is the path string as given.
func (c *ImageCache) Load(path string) (image.Image, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	c.mu.RLock()
	e, ok := c.entries[path]
	c.mu.RUnlock()
	if ok && e.fresh(fi) {
		return e.img, nil
	}

	img, err := Open(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(path)
	for len(c.order) >= c.maxEntries {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}
	c.entries[path] = cachedImage{img: img, size: fi.Size(), modTime: fi.ModTime()}
	c.order = append(c.order, path)

	return img, nil
}

// remove drops path from the cache. The caller holds the write lock.
func (c *ImageCache) remove(path string) {
	if _, ok := c.entries[path]; !ok {
		return
	}
	delete(c.entries, path)
	for i, p := range c.order {
		if p == path {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]cachedImage)
	c.order = nil
	c.mu.Unlock()
}

// Evict removes one image from the cache. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	c.remove(path)
	c.mu.Unlock()
}

// Open decodes an image file and applies its EXIF orientation.
func Open(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// ImageInfo describes a screenshot file.
type ImageInfo struct {
	// Width and Height are in pixels, after EXIF orientation.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Format is the lower-case format name implied by the file extension, or
	// "unknown".
	Format string `json:"format"`

	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads path through cache and reports its size and format.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	b := img.Bounds()
	return &ImageInfo{
		Width:         b.Dx(),
		Height:        b.Dy(),
		Format:        FormatName(path),
		FileSizeBytes: fi.Size(),
	}, nil
}

// FormatName returns "png", "jpeg", "gif", "tiff" or "bmp" for path's extension, or
// "unknown".
func FormatName(path string) string {
	f, err := imaging.FormatFromFilename(path)
	if err != nil {
		return "unknown"
	}
	return strings.ToLower(f.String())
}

// DimensionsResult is the oriented size of a screenshot.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions loads path through cache and returns its size.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &DimensionsResult{Width: b.Dx(), Height: b.Dy()}, nil
}
