// Package render turns a weather snapshot into a monochrome canvas. Layouts are
// interchangeable templates selected by a configuration key.
package render

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/i474232898/epaper-weather-display/internal/canvas"
	"github.com/i474232898/epaper-weather-display/internal/icons"
	"github.com/i474232898/epaper-weather-display/internal/weather"
)

// Registry keys of the built-in templates.
const (
	KeyClassicSingle = "classic_single_display"
	KeySplitAmPm     = "split_am_pm"

	// FallbackKey is used when the configured key is unknown.
	FallbackKey = KeySplitAmPm
)

// Template is a layout strategy. Render must not fail: a nil snapshot produces
// the "Weather Unavailable" placeholder.
type Template interface {
	Name() string
	Render(snap *weather.Snapshot, width, height int) *canvas.Canvas
	// FooterY is the top of the "Updated:" stamp line for a canvas of this height.
	FooterY(height int) int
}

// Deps are the collaborators every template is constructed with.
type Deps struct {
	Fonts        *Fonts
	Icons        icons.Source
	LocationName string
}

func (d Deps) validate() error {
	if d.Fonts == nil {
		return ErrNoFonts
	}
	if d.Icons == nil {
		return errors.New("icon source is required")
	}
	return nil
}

// Factory builds a template from its dependencies.
type Factory func(Deps) (Template, error)

// Registry maps configuration keys to template factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry holding the built-in templates and their
// short aliases.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(KeyClassicSingle, NewClassicSingle)
	r.Register("classic", NewClassicSingle)
	r.Register(KeySplitAmPm, NewSplitAmPm)
	r.Register("split", NewSplitAmPm)
	return r
}

// Register adds or replaces a factory. Keys are case-insensitive.
func (r *Registry) Register(key string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[normalizeKey(key)] = f
}

// Keys lists the registered keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.factories))
	for k := range r.factories {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Resolve builds the template registered under key. An unknown key logs a warning
// and falls back to FallbackKey. Any factory error is returned to the caller; the
// process cannot render without a template.
func (r *Registry) Resolve(key string, deps Deps) (Template, error) {
	r.mu.RLock()
	f, ok := r.factories[normalizeKey(key)]
	if !ok {
		log.Printf("WARN: template %q not found, falling back to %s", key, FallbackKey)
		f, ok = r.factories[FallbackKey]
	}
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("resolve template %q: fallback %s not registered", key, FallbackKey)
	}
	t, err := f(deps)
	if err != nil {
		return nil, fmt.Errorf("resolve template %q: %w", key, err)
	}
	return t, nil
}

// Resolve builds a template from the default registry.
func Resolve(key string, deps Deps) (Template, error) {
	return DefaultRegistry().Resolve(key, deps)
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
