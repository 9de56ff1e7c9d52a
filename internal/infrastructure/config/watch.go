package config

import (
	"context"

	"github.com/fsnotify/fsnotify"

	"garage-dashboard/internal/infrastructure/logger"
)

// Watch reloads path on every write and hands the new Config to onChange
// until ctx is cancelled. A reload that fails to parse or validate is logged
// and the previous config stays active.
func Watch(ctx context.Context, path string, log logger.Logger, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	log = log.WithField("component", "config")
	log.Infof("Watching %s for changes", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// editors that save atomically show up as Create
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Load(path)
			if err != nil {
				log.Errorf("Reload of %s failed, keeping previous config: %v", path, err)
				continue
			}

			log.Infof("Reloaded %s", path)
			onChange(cfg)

			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Errorf("Config watcher error: %v", err)
		}
	}
}
