package media

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/orialis/voidreach/internal/logger"
)

// watcher invalidates cached entries when loose asset files change on
// disk, so edited textures and shaders are picked up on the next load.
type watcher struct {
	root string
	fsw  *fsnotify.Watcher
	done chan struct{}
}

func newWatcher(root string, cache *Cache) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the root and every subdirectory. fsnotify does not
	// recurse on its own.
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
	if err != nil {
		fsw.Close()
		return nil, err
	}

	w := &watcher{
		root: root,
		fsw:  fsw,
		done: make(chan struct{}),
	}
	go w.run(cache)

	logger.Info("watching asset directory", zap.String("root", root))
	return w, nil
}

func (w *watcher) run(cache *Cache) {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				// New subdirectories need their own watch.
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					w.fsw.Add(ev.Name)
				}
			}
			rel, err := filepath.Rel(w.root, ev.Name)
			if err != nil {
				continue
			}
			key := filepath.ToSlash(rel)
			cache.Invalidate(key)
			logger.Debug("asset changed", zap.String("file", key))
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("asset watcher error", zap.Error(err))
		}
	}
}

func (w *watcher) close() {
	close(w.done)
	w.fsw.Close()
}
