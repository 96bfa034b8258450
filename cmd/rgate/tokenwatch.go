package main

import (
	"os"

	"github.com/fsnotify/fsnotify"

	"github.com/sammck-go/rgate/logging"
)

// watchAuthToken watches path for writes and re-reads it into cfg's live
// token on every change, so a rotated credential takes effect on the pool's
// very next dial without a process restart. It runs until done is closed.
func watchAuthToken(logger logging.Logger, path string, cfg *config, done <-chan struct{}) {
	if path == "" {
		return
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.WLogf("auth token watch disabled: %s", err)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		logger.WLogf("auth token watch disabled: %s", err)
		return
	}

	for {
		select {
		case <-done:
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			data, err := os.ReadFile(path)
			if err != nil {
				logger.WLogf("re-reading auth token file %s: %s", path, err)
				continue
			}
			cfg.setToken(trimToken(data))
			logger.ILogf("auth token reloaded from %s", path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.WLogf("auth token watch error: %s", err)
		}
	}
}
