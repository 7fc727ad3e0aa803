package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/leg100/rtable/internal/logging"
)

// Watch notifies on the returned channel whenever the file at path is written,
// created, removed or renamed, until the context is canceled. The file's
// directory is watched rather than the file, because saves replace the file.
func Watch(ctx context.Context, path string, logger logging.Interface) (<-chan struct{}, error) {
	if logger == nil {
		logger = logging.Discard
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	logger.Debug("watching path", "path", path)

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		defer watcher.Close()

		removalMask := fsnotify.Remove | fsnotify.Rename
		mask := fsnotify.Create | fsnotify.Write | removalMask
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(evt.Name) != filepath.Clean(path) || evt.Op&mask == 0 {
					continue
				}
				logger.Debug("registered file event", "event", evt.String())
				select {
				case ch <- struct{}{}:
				default:
					// a notification is already pending
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("watching file", "path", path, "error", err)
			}
		}
	}()
	return ch, nil
}
