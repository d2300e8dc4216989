package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the file at path whenever it is written or replaced and
// calls fn with the result. Reload failures are passed to fn as well; the
// caller keeps its previous configuration in that case.
//
// The parent directory is watched, so editors that save by renaming a
// temporary file are picked up. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, fn func(Config, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watch: %w", err)
	}
	defer watcher.Close()

	path = filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("config: watch %s: %w", path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			fn(Load(path))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fn(Config{}, fmt.Errorf("config: watch %s: %w", path, err))
		}
	}
}
