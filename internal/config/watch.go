package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"tradetrack/internal/logger"
)

// Watch reloads the file on every write and hands the fresh config to
// onChange. A file that fails to reload keeps the previous config; the error
// is logged and watching continues. Blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: editors replace files on save, which drops the
	// watch when pointed at the file itself.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	target := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cfg, err := Load(path)
			if err != nil {
				logger.Warnf("[config] reload failed, keeping previous: %v", err)
				continue
			}
			logger.Infof("[config] reloaded from %s", path)
			if onChange != nil {
				onChange(cfg)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("[config] watch error: %v", err)
		}
	}
}
