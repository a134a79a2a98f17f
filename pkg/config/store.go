package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Store holds the live configuration. Readers take a snapshot per use and
// never observe a partially applied reload.
type Store struct {
	current atomic.Pointer[Config]
}

// NewStore returns a store holding cfg.
func NewStore(cfg *Config) *Store {
	s := &Store{}
	s.current.Store(cfg)
	return s
}

// Snapshot returns the current configuration. Callers must not mutate it.
func (s *Store) Snapshot() *Config {
	return s.current.Load()
}

// Replace swaps in a new configuration.
func (s *Store) Replace(cfg *Config) {
	s.current.Store(cfg)
}

// Watch reloads path into the store whenever it is written, until ctx is done.
// The parent directory is watched so editors that replace the file by rename
// are picked up. A reload that fails to parse keeps the previous config.
// apply, if non-nil, runs on every reloaded config before it is swapped in,
// so command-line overrides outlive edits to the file.
func (s *Store) Watch(ctx context.Context, path string, apply func(*Config), logger *zap.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create config watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("could not watch %s: %w", dir, err)
	}

	go func() {
		defer watcher.Close()
		target := filepath.Clean(path)

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}

				cfg, err := Load(path)
				if err != nil {
					logger.Warn("config reload failed, keeping previous", zap.String("path", path), zap.Error(err))
					continue
				}
				if apply != nil {
					apply(cfg)
				}
				s.Replace(cfg)
				logger.Info("config reloaded",
					zap.String("path", path),
					zap.String("model", cfg.Provider.Model),
					zap.Bool("credential_set", cfg.Provider.APIKey != ""),
				)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher error", zap.Error(err))
			}
		}
	}()

	return nil
}
