package main

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watchConfig calls apply with the reloaded config each time the file at
// path is written, until ctx is done. Invalid files are logged and skipped.
// The directory is watched so editors that replace the file are seen.
func watchConfig(ctx context.Context, path string, logger *slog.Logger, apply func(Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return err
	}

	go func() {
		defer func() {
			if err := w.Close(); err != nil {
				logger.Debug("config watcher close failed", "err", err)
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(path) || !ev.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				cfg, err := loadConfig(path)
				if err == nil {
					err = cfg.validate()
				}
				if err != nil {
					logger.Warn("config reload skipped", "path", path, "err", err)
					continue
				}
				logger.Info("config reloaded", "path", path)
				apply(cfg)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher error", "err", err)
			}
		}
	}()
	return nil
}
