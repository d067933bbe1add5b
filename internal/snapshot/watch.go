package snapshot

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// debounce groups the bursts of events editors produce on save.
const debounce = 100 * time.Millisecond

// Watch reloads the snapshot from path whenever the file changes and calls
// notify after each successful reload. It blocks until ctx is done.
//
// The parent directory is watched rather than the file so that editors
// replacing the file on save are still seen. A snapshot that fails to
// parse is logged and the previous one is kept.
func (h *Host) Watch(ctx context.Context, path string, notify func(*Snapshot)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	reload := func() {
		snap, err := Load(abs)
		if err != nil {
			h.logger.Warn("snapshot reload failed", zap.String("path", abs), zap.Error(err))
			return
		}
		h.Replace(snap)
		h.logger.Info("snapshot reloaded", zap.String("path", abs),
			zap.Int("collections", len(snap.Collections)),
			zap.Int("sheets", len(snap.Sheets)))
		if notify != nil {
			notify(snap)
		}
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if name, _ := filepath.Abs(event.Name); name != abs {
				continue
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, reload)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			h.logger.Warn("watcher error", zap.Error(err))
		}
	}
}
