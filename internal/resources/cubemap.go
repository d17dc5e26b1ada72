package resources

import (
	"fmt"
	"image"
	"sync"

	"go.uber.org/zap"

	"github.com/orialis/voidreach/internal/logger"
	"github.com/orialis/voidreach/internal/media"
	"github.com/orialis/voidreach/internal/render"
)

// CubemapResource loads exactly six face images as one atomic unit.
// There is no partial-face request: the whole set is fetched in a
// single batch and readiness means all six faces completed.
type CubemapResource struct {
	tracker
	fetcher Fetcher

	name string
	// Face filenames in the fixed order posX, negX, posY, negY, posZ, negZ.
	files [render.FaceCount]string

	mu      sync.Mutex
	faces   [render.FaceCount]image.Image
	managed *render.ManagedCubemap
}

// NewCubemap declares a cubemap resource from its six face filenames,
// ordered posX, negX, posY, negY, posZ, negZ.
func NewCubemap(fetcher Fetcher, name string, files [render.FaceCount]string) *CubemapResource {
	return &CubemapResource{
		fetcher: fetcher,
		name:    name,
		files:   files,
	}
}

func (c *CubemapResource) Name() string             { return c.name }
func (c *CubemapResource) Category() media.Category { return media.Cubemaps }

// RequiresReload is true only before the single face batch has been
// issued. While the batch is in flight, and after it settles, the
// request is covered, so re-entrant request paths cannot double-fetch.
func (c *CubemapResource) RequiresReload(_ *Params) bool {
	switch c.State() {
	case Unrequested, Requested:
		return true
	}
	return false
}

// RequestFiles issues all six face fetches in one batch. Completion is
// a counter reaching six; face arrival order does not matter.
func (c *CubemapResource) RequestFiles(_ *Params) {
	c.markRequested()
	c.begin(render.FaceCount)

	for i, file := range c.files {
		face, name := i, file
		c.fetcher.FetchImage(media.Cubemaps, name, func(img image.Image, err error) {
			if err != nil {
				logger.Error("cubemap face fetch failed",
					zap.String("cubemap", c.name), zap.String("file", name), zap.Error(err))
			} else {
				c.mu.Lock()
				c.faces[face] = img
				c.mu.Unlock()
			}
			c.fileDone(err)
		})
	}
}

func (c *CubemapResource) WhenReady(fn func()) { c.whenReady(fn) }

// ManagedCubemap returns the cached GPU wrapper, building it once from
// the six faces in their fixed order. It fails while the resource is
// not ready.
func (c *CubemapResource) ManagedCubemap() (*render.ManagedCubemap, error) {
	if !c.IsReadyToUse() {
		if err := c.err(); err != nil {
			return nil, fmt.Errorf("cubemap %q: load failed: %w", c.name, err)
		}
		return nil, fmt.Errorf("cubemap %q is not ready to use (%s)", c.name, c.State())
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.managed == nil {
		c.managed = render.NewManagedCubemap(c.name, c.faces)
	}
	return c.managed, nil
}
