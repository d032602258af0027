// internal/infrastructure/config/settings.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"flightdeck-service/internal/usecase"
	"flightdeck-service/pkg/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
)

// Settings is the optional TOML tuning file. Missing fields keep their
// defaults; environment configuration always wins over settings for
// connection-level values, this file only carries pipeline tuning.
type Settings struct {
	PageSize          int      `toml:"page_size"`
	DebounceMillis    int      `toml:"debounce_millis"`
	PrefetchThreshold int      `toml:"prefetch_threshold"`
	DateFormats       []string `toml:"date_formats"`
	SnapshotLimit     int      `toml:"snapshot_limit"`
	RunLogLimit       int      `toml:"run_log_limit"`
}

// Tuning converts the file values onto a base tuning, leaving zero-valued
// fields alone.
func (s Settings) Tuning(base usecase.Tuning) usecase.Tuning {
	if s.PageSize > 0 {
		base.PageSize = s.PageSize
	}
	if s.DebounceMillis > 0 {
		base.Debounce = time.Duration(s.DebounceMillis) * time.Millisecond
	}
	if s.PrefetchThreshold > 0 {
		base.PrefetchThreshold = s.PrefetchThreshold
	}
	if len(s.DateFormats) > 0 {
		base.DateFormats = s.DateFormats
	}
	if s.SnapshotLimit > 0 {
		base.SnapshotLimit = s.SnapshotLimit
	}
	if s.RunLogLimit > 0 {
		base.RunLogLimit = s.RunLogLimit
	}
	return base
}

// LoadSettings reads the TOML settings file.
func LoadSettings(path string) (Settings, error) {
	var s Settings
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("failed to read settings file: %w", err)
	}
	if err := toml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to parse settings file: %w", err)
	}
	return s, nil
}

// WatchSettings re-reads the settings file whenever it changes and hands the
// result to apply. Editors replacing the file atomically emit create/rename
// events, so the parent directory is watched rather than the file itself.
// The watcher stops when stop is closed.
func WatchSettings(path string, log logger.Logger, stop <-chan struct{}, apply func(Settings)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create settings watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-stop:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				s, err := LoadSettings(path)
				if err != nil {
					log.Warn("settings reload failed", "error", err)
					continue
				}
				log.Info("settings reloaded", "path", path)
				apply(s)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("settings watcher error", "error", err)
			}
		}
	}()
	return nil
}
