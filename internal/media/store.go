// Package media handles retrieval of asset files for the graphics
// resource subsystem.
//
// A Store resolves (category, name) pairs against mounted pak archives
// first and loose files under the asset root second. Fetches are
// fire-and-forget: each runs on its own goroutine and invokes the
// supplied completion callback exactly once, with either the payload or
// an error.
package media

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/orialis/voidreach/internal/logger"
	"github.com/orialis/voidreach/pkg/pak"
)

// Category names the asset kind; it selects the subdirectory under the
// asset root and the path prefix inside archives.
type Category string

// Asset categories.
const (
	Textures Category = "textures"
	Cubemaps Category = "cubemaps"
	Shaders  Category = "shaders"
	Models   Category = "models"
	Missions Category = "missions"
	Music    Category = "music"
)

// Config holds store settings.
type Config struct {
	// Root is the base directory for loose asset files.
	Root string
	// Archives lists pak archives mounted over the root. Later archives
	// take priority, and all archives take priority over loose files.
	Archives []string
	// Watch enables cache invalidation when loose files change on disk.
	Watch bool
}

// Store provides asset file retrieval with caching.
type Store struct {
	root     string
	archives []*pak.Archive
	cache    *Cache
	watcher  *watcher
}

// NewStore creates a store, mounting the configured archives.
func NewStore(cfg Config) (*Store, error) {
	s := &Store{
		root:  cfg.Root,
		cache: NewCache(),
	}

	for _, path := range cfg.Archives {
		a, err := pak.Open(path)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("mounting archive %s: %w", path, err)
		}
		s.archives = append(s.archives, a)
		logger.Info("archive mounted", zap.String("path", path), zap.Int("files", len(a.List())))
	}

	if cfg.Watch {
		w, err := newWatcher(cfg.Root, s.cache)
		if err != nil {
			logger.Warn("asset watcher unavailable", zap.Error(err))
		} else {
			s.watcher = w
		}
	}

	return s, nil
}

// Close unmounts all archives and stops the watcher.
func (s *Store) Close() {
	if s.watcher != nil {
		s.watcher.close()
		s.watcher = nil
	}
	for _, a := range s.archives {
		a.Close()
	}
	s.archives = nil
	s.cache.Clear()
}

// Stats returns cache hit/miss counters.
func (s *Store) Stats() (hits, misses int) {
	return s.cache.Stats()
}

// read resolves and reads one asset file synchronously.
func (s *Store) read(category Category, name string) ([]byte, error) {
	key := string(category) + "/" + name

	if data, ok := s.cache.Get(key); ok {
		return data, nil
	}

	// Archives are searched in reverse mount order.
	for i := len(s.archives) - 1; i >= 0; i-- {
		data, err := s.archives[i].Read(key)
		if err == nil {
			s.cache.Set(key, data)
			return data, nil
		}
	}

	path := filepath.Join(s.root, string(category), name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("asset not found: %s", key)
	}
	s.cache.Set(key, data)
	return data, nil
}

// ReadBytes reads an asset's raw contents synchronously.
func (s *Store) ReadBytes(category Category, name string) ([]byte, error) {
	return s.read(category, name)
}

// ReadText reads a text asset synchronously.
func (s *Store) ReadText(category Category, name string) (string, error) {
	data, err := s.read(category, name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FetchText retrieves a text asset asynchronously. The callback is
// invoked exactly once from a separate goroutine.
func (s *Store) FetchText(category Category, name string, done func(string, error)) {
	go func() {
		done(s.ReadText(category, name))
	}()
}

// FetchImage retrieves and decodes an image asset asynchronously. The
// callback is invoked exactly once from a separate goroutine.
func (s *Store) FetchImage(category Category, name string, done func(image.Image, error)) {
	go func() {
		data, err := s.read(category, name)
		if err != nil {
			done(nil, err)
			return
		}
		img, err := decodeImage(name, data)
		if err != nil {
			done(nil, fmt.Errorf("decoding %s/%s: %w", category, name, err))
			return
		}
		done(img, nil)
	}()
}
