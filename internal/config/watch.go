package config

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// CatalogWatcher reloads the agent catalog when its file changes, so a
// roster edit takes effect without restarting. Reloads that fail
// validation are skipped and the previous catalog stays active.
type CatalogWatcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// WatchCatalog watches the catalog file and calls onReload with each
// successfully loaded revision. The containing directory is watched
// because editors typically replace the file rather than write in place.
func WatchCatalog(path string, onReload func(*Catalog)) (*CatalogWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create catalog watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &CatalogWatcher{watcher: watcher, done: make(chan struct{})}
	go w.loop(path, onReload)
	return w, nil
}

func (w *CatalogWatcher) loop(path string, onReload func(*Catalog)) {
	base := filepath.Base(path)
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			catalog, err := LoadCatalog(path)
			if err != nil {
				log.Printf("[config] catalog reload skipped: %v", err)
				continue
			}
			log.Printf("[config] catalog reloaded: %d agents", len(catalog.Agents))
			onReload(catalog)
		case <-w.watcher.Errors:
			// Keep watching.
		}
	}
}

// Close stops the watcher.
func (w *CatalogWatcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
