package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// ImageCache keeps decoded images in memory, keyed by cleaned file path, so
// that successive tool calls on one file decode it once. Entries stay until
// Evict or Clear. Safe for concurrent use.
//
//	cache := imaging.NewImageCache()
//	img, err := cache.Load("/path/to/scan.png")
//	if err != nil {
//	    return err
//	}
//	cache.Evict("/path/to/scan.png")
type ImageCache struct {
	mu      sync.RWMutex
	entries map[string]cachedImage
}

// cachedImage is a decoded image plus the size of the file it came from.
type cachedImage struct {
	img  image.Image
	size int64
}

// NewImageCache creates an empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{entries: make(map[string]cachedImage)}
}

// Load returns the decoded image at path, reading it on first use. PNG,
// JPEG, GIF, BMP, TIFF and WebP are recognised by content. EXIF orientation
// is applied.
func (c *ImageCache) Load(path string) (image.Image, error) {
	e, err := c.load(path)
	if err != nil {
		return nil, err
	}
	return e.img, nil
}

func (c *ImageCache) load(path string) (cachedImage, error) {
	key := filepath.Clean(path)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return e, nil
	}

	stat, err := os.Stat(key)
	if err != nil {
		return cachedImage{}, fmt.Errorf("failed to load image: %w", err)
	}
	img, err := imaging.Open(key, imaging.AutoOrientation(true))
	if err != nil {
		return cachedImage{}, fmt.Errorf("failed to load image: %w", err)
	}
	e = cachedImage{img: img, size: stat.Size()}

	c.mu.Lock()
	// A concurrent load of the same file may have won; keep its entry.
	if prev, ok := c.entries[key]; ok {
		e = prev
	} else {
		c.entries[key] = e
	}
	c.mu.Unlock()
	return e, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops every cached image.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
}

// Evict drops the cached image for path, if any. The next Load reads the
// file again.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.entries, filepath.Clean(path))
	c.mu.Unlock()
}

// ImageInfo is the metadata reported by the image_load tool.
type ImageInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// Format comes from the file extension: "png", "jpeg", "gif", "bmp",
	// "tiff" or "unknown".
	Format string `json:"format"`

	// ColorModel names the decoded pixel layout, e.g. "gray", "rgba".
	ColorModel string `json:"color_model"`

	// ColorDepth is "8-bit" or "16-bit" per channel.
	ColorDepth    string `json:"color_depth"`
	HasAlpha      bool   `json:"has_alpha"`
	FileSizeBytes int64  `json:"file_size_bytes"`
}

// LoadImageInfo reports the metadata of the image at path, loading it
// through cache. The format comes from the file extension.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	e, err := cache.load(path)
	if err != nil {
		return nil, err
	}

	format := "unknown"
	if f, err := imaging.FormatFromFilename(path); err == nil {
		format = strings.ToLower(f.String())
	}
	model, depth, alpha := describeModel(e.img)

	b := e.img.Bounds()
	return &ImageInfo{
		Width:         b.Dx(),
		Height:        b.Dy(),
		Format:        format,
		ColorModel:    model,
		ColorDepth:    depth,
		HasAlpha:      alpha,
		FileSizeBytes: e.size,
	}, nil
}

func describeModel(img image.Image) (model, depth string, alpha bool) {
	switch img.(type) {
	case *image.Gray:
		return "gray", "8-bit", false
	case *image.Gray16:
		return "gray", "16-bit", false
	case *image.RGBA, *image.NRGBA:
		return "rgba", "8-bit", true
	case *image.RGBA64, *image.NRGBA64:
		return "rgba", "16-bit", true
	case *image.Paletted:
		return "paletted", "8-bit", true
	case *image.YCbCr:
		return "ycbcr", "8-bit", false
	case *image.CMYK:
		return "cmyk", "8-bit", false
	default:
		return "unknown", "8-bit", false
	}
}

// DimensionsResult is the size of an image in pixels.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions returns the size of the image at path.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	return &DimensionsResult{Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}, nil
}
