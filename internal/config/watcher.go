package config

import (
	"log"
	"os"
	"sync"
	"time"

	"github.com/lazypower/seastate/internal/engine"
)

// Watcher is an engine.SettingsSource backed by the config file. Each call
// to Settings re-reads the file if its modification time or size changed.
// A file that fails to parse is logged and the previous settings are kept.
type Watcher struct {
	path string

	mu       sync.Mutex
	cfg      Config
	settings engine.Settings
	modTime  time.Time
	size     int64
}

// NewWatcher returns a watcher seeded with cfg, which should be the result
// of Load(path).
func NewWatcher(path string, cfg Config) (*Watcher, error) {
	s, err := cfg.Engine.Settings()
	if err != nil {
		return nil, err
	}
	w := &Watcher{path: path, cfg: cfg, settings: s}
	if fi, err := os.Stat(path); err == nil {
		w.modTime, w.size = fi.ModTime(), fi.Size()
	}
	return w, nil
}

// Settings implements engine.SettingsSource.
func (w *Watcher) Settings() engine.Settings {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reloadLocked()
	return w.settings
}

// Config returns the most recently loaded configuration.
func (w *Watcher) Config() Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cfg
}

func (w *Watcher) reloadLocked() {
	fi, err := os.Stat(w.path)
	if err != nil {
		return
	}
	if fi.ModTime().Equal(w.modTime) && fi.Size() == w.size {
		return
	}
	w.modTime, w.size = fi.ModTime(), fi.Size()

	cfg, err := Load(w.path)
	if err != nil {
		log.Printf("config: reload %s: %v (keeping previous settings)", w.path, err)
		return
	}
	s, err := cfg.Engine.Settings()
	if err != nil {
		log.Printf("config: reload %s: %v (keeping previous settings)", w.path, err)
		return
	}
	w.cfg, w.settings = cfg, s
	log.Printf("config: reloaded %s", w.path)
}
