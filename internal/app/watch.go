// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MKhiriev/go-resource-keeper/internal/schema"
)

// reloadDelay collapses the burst of events an editor produces for a
// single save.
const reloadDelay = 100 * time.Millisecond

// WatchDefinitions loads path and re-applies it whenever it changes until
// ctx is done. The parent directory is watched so that files replaced by
// rename are followed. A file that fails to parse on reload is logged and
// the previous definitions stay in place.
//
// The returned channel is closed once watching has stopped.
func (a *App) WatchDefinitions(ctx context.Context, path string) (<-chan struct{}, error) {
	if err := a.LoadDefinitions(path); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating file watcher: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("error resolving %s: %w", path, err)
	}
	if err = watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("error watching %s: %w", path, err)
	}

	done := make(chan struct{})
	go a.watch(ctx, watcher, abs, done)

	a.logger.Info().Str("path", abs).Msg("watching definitions file")
	return done, nil
}

func (a *App) watch(ctx context.Context, watcher *fsnotify.Watcher, path string, done chan<- struct{}) {
	defer close(done)
	defer watcher.Close()

	timer := time.NewTimer(reloadDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(reloadDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			a.logger.Warn().Err(err).Str("path", path).Msg("file watcher error")

		case <-timer.C:
			a.reload(ctx, path)
		}
	}
}

func (a *App) reload(ctx context.Context, path string) {
	defs, err := schema.LoadDefinitions(path)
	if err != nil {
		a.logger.Error().Err(err).Str("path", path).Msg("definitions not reloaded")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return
	}
	a.applyDefinitions(ctx, defs)
	a.logger.Info().Str("path", path).Int("resources", len(defs)).Msg("definitions reloaded")
}
