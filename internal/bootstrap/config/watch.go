package config

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"zhujian/internal/bootstrap/logging"
	"zhujian/internal/errs"
)

// WatchFile invokes onChange whenever the config file is rewritten.
// The watcher runs until ctx is cancelled. onChange runs on the watcher
// goroutine; keep it cheap (typically: re-Load and swap a holder).
func WatchFile(ctx context.Context, configFile string, onChange func()) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if strings.TrimSpace(configFile) == "" {
		return errors.New("config file is required")
	}
	if onChange == nil {
		return errors.New("onChange is required")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errs.Wrap(err, "create fsnotify watcher")
	}

	// Watch the directory: editors replace files, which drops the inode watch.
	dir := filepath.Dir(configFile)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return errs.Wrapf(err, "watch config directory %q", dir)
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config.watch"))
	target := filepath.Clean(configFile)

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				logging.Info(logCtx, "config file changed", slog.String("path", ev.Name))
				onChange()
			case werr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Warn(logCtx, "config watcher error", slog.Any("err", errs.Loggable(werr)))
			}
		}
	}()

	return nil
}
