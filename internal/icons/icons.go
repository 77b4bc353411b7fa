// Package icons maps weather condition codes to icon assets and loads them.
package icons

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// Size is the icon size class requested by a layout.
type Size string

const (
	SizeCurrent  Size = "current"
	SizeForecast Size = "forecast"
)

// Pixels returns the edge length of the asset for this size class.
func (s Size) Pixels() int {
	if s == SizeCurrent {
		return 80
	}
	return 44
}

// Resolver maps (code, size, night) to an asset path under Dir.
type Resolver struct {
	Dir string
	// Ext is the asset extension including the dot; ".png" when empty.
	Ext string
}

// NewResolver returns a resolver for dir using format ("png", "svg", ...).
func NewResolver(dir, format string) *Resolver {
	format = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), ".")
	if format == "" {
		format = "png"
	}
	return &Resolver{Dir: dir, Ext: "." + format}
}

// Resolve returns the path of the asset for a condition code. The night flag is
// accepted for night variants but the current naming scheme only encodes the code
// and the pixel dimension: icon_<code>_<px><ext>.
func (r *Resolver) Resolve(code string, size Size, isNight bool) string {
	_ = isNight
	ext := r.Ext
	if ext == "" {
		ext = ".png"
	}
	return filepath.Join(r.Dir, fmt.Sprintf("icon_%s_%d%s", code, size.Pixels(), ext))
}

// Source is what layouts use to obtain icons. Load returns ok=false when the
// icon should simply be skipped.
type Source interface {
	Load(code string, size Size, isNight bool) (image.Image, bool)
}

// Loader resolves and decodes icon assets from disk.
type Loader struct {
	resolver *Resolver
	cache    map[string]image.Image
}

// NewLoader builds a loader around r. Decoded icons are cached per path.
func NewLoader(r *Resolver) *Loader {
	return &Loader{resolver: r, cache: make(map[string]image.Image)}
}

// Load implements Source. A missing or undecodable asset is not an error: the
// icon is skipped and, for decode failures, a warning is logged.
func (l *Loader) Load(code string, size Size, isNight bool) (image.Image, bool) {
	if code == "" {
		return nil, false
	}
	path := l.resolver.Resolve(code, size, isNight)
	if img, ok := l.cache[path]; ok {
		return img, true
	}
	if _, err := os.Stat(path); err != nil {
		return nil, false
	}
	img, err := loadImage(path, size.Pixels())
	if err != nil {
		log.Printf("WARN: icon %s skipped: %v", path, err)
		return nil, false
	}
	l.cache[path] = img
	return img, true
}

// loadImage decodes an image by extension; SVGs are rasterized at px×px.
func loadImage(path string, px int) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return png.Decode(bytes.NewReader(data))
	case ".jpg", ".jpeg":
		return jpeg.Decode(bytes.NewReader(data))
	case ".gif":
		return gif.Decode(bytes.NewReader(data))
	case ".svg":
		return rasterizeSVG(data, px)
	default:
		return nil, fmt.Errorf("unsupported image format: %s", filepath.Ext(path))
	}
}

func rasterizeSVG(data []byte, px int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	icon.SetTarget(0, 0, float64(px), float64(px))

	rgba := image.NewRGBA(image.Rect(0, 0, px, px))
	scanner := rasterx.NewScannerGV(px, px, rgba, rgba.Bounds())
	dasher := rasterx.NewDasher(px, px, scanner)
	icon.Draw(dasher, 1.0)
	return rgba, nil
}
