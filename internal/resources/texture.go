package resources

import (
	"fmt"
	"image"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/orialis/voidreach/internal/logger"
	"github.com/orialis/voidreach/internal/media"
	"github.com/orialis/voidreach/internal/render"
)

// TextureResource loads a matrix of image files keyed by
// (type x quality) variant. Each cell is fetched at most once; cells
// load independently and a cell is either absent or fully loaded,
// never partial.
type TextureResource struct {
	tracker
	fetcher Fetcher

	name      string
	format    string // filename format with {type} and {quality} placeholders
	types     []string
	qualities []string
	mipmap    bool

	mu        sync.Mutex
	requested map[string]map[string]bool
	loaded    map[string]map[string]image.Image
	managed   map[string]map[string]*render.ManagedTexture
}

// NewTexture declares a texture resource. format names the image files
// with {type} and {quality} placeholders, e.g. "hull_{type}_{quality}.png".
func NewTexture(fetcher Fetcher, name, format string, types, qualities []string, mipmap bool) *TextureResource {
	return &TextureResource{
		fetcher:   fetcher,
		name:      name,
		format:    format,
		types:     types,
		qualities: qualities,
		mipmap:    mipmap,
		requested: make(map[string]map[string]bool),
		loaded:    make(map[string]map[string]image.Image),
		managed:   make(map[string]map[string]*render.ManagedTexture),
	}
}

func (t *TextureResource) Name() string             { return t.name }
func (t *TextureResource) Category() media.Category { return media.Textures }

// Types returns the declared type suffixes.
func (t *TextureResource) Types() []string { return t.types }

// Qualities returns the declared quality suffixes.
func (t *TextureResource) Qualities() []string { return t.qualities }

// cells expands a request into its (type, quality) cross-product,
// defaulting absent fields to everything declared.
func (t *TextureResource) cells(params *Params) (types, qualities []string) {
	types, qualities = t.types, t.qualities
	if params != nil && params.Types != nil {
		types = params.Types
	}
	if params != nil && params.Qualities != nil {
		qualities = params.Qualities
	}
	return types, qualities
}

// RequiresReload reports whether any requested cell has neither been
// loaded nor has a fetch in flight. A cell that was ever requested is
// covered for good, so overlapping requests never double-fetch.
func (t *TextureResource) RequiresReload(params *Params) bool {
	types, qualities := t.cells(params)

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, typ := range types {
		for _, q := range qualities {
			if !t.requested[typ][q] {
				return true
			}
		}
	}
	return false
}

// RequestFiles fetches every requested cell not yet covered. The batch
// is registered with the tracker before any fetch is issued so an
// early completion cannot settle the resource while the rest of the
// batch is still going out.
func (t *TextureResource) RequestFiles(params *Params) {
	types, qualities := t.cells(params)

	type cell struct{ typ, quality string }
	var missing []cell

	t.mu.Lock()
	for _, typ := range types {
		for _, q := range qualities {
			if t.requested[typ][q] {
				continue
			}
			if t.requested[typ] == nil {
				t.requested[typ] = make(map[string]bool)
			}
			t.requested[typ][q] = true
			missing = append(missing, cell{typ, q})
		}
	}
	t.mu.Unlock()

	if len(missing) == 0 {
		return
	}
	t.markRequested()
	t.begin(len(missing))

	for _, c := range missing {
		typ, quality := c.typ, c.quality
		file := t.filename(typ, quality)
		t.fetcher.FetchImage(media.Textures, file, func(img image.Image, err error) {
			if err != nil {
				logger.Error("texture fetch failed",
					zap.String("texture", t.name), zap.String("file", file), zap.Error(err))
			} else {
				t.mu.Lock()
				if t.loaded[typ] == nil {
					t.loaded[typ] = make(map[string]image.Image)
				}
				t.loaded[typ][quality] = img
				t.mu.Unlock()
			}
			t.fileDone(err)
		})
	}
}

func (t *TextureResource) filename(typ, quality string) string {
	file := strings.ReplaceAll(t.format, "{type}", typ)
	return strings.ReplaceAll(file, "{quality}", quality)
}

// WhenReady queues fn for the resource's next settlement.
func (t *TextureResource) WhenReady(fn func()) { t.whenReady(fn) }

// ManagedTexture returns the cached GPU wrapper for one (type, quality)
// cell, building it on first use. It fails while the resource is not
// ready and when the cell holds no loaded image.
func (t *TextureResource) ManagedTexture(typ, quality string) (*render.ManagedTexture, error) {
	if !t.IsReadyToUse() {
		if err := t.err(); err != nil {
			return nil, fmt.Errorf("texture %q: load failed: %w", t.name, err)
		}
		return nil, fmt.Errorf("texture %q is not ready to use (%s)", t.name, t.State())
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.loaded[typ]) == 0 {
		return nil, fmt.Errorf("texture %q has no loaded data for type %q", t.name, typ)
	}
	img, ok := t.loaded[typ][quality]
	if !ok {
		return nil, fmt.Errorf("texture %q has no loaded data for %q/%q", t.name, typ, quality)
	}

	if m := t.managed[typ][quality]; m != nil {
		return m, nil
	}
	if t.managed[typ] == nil {
		t.managed[typ] = make(map[string]*render.ManagedTexture)
	}
	m := render.NewManagedTexture(t.filename(typ, quality), img, t.mipmap)
	t.managed[typ][quality] = m
	return m, nil
}
