package marker

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/workflow-telemetry/internal/errors"
	"git.home.luguber.info/inful/workflow-telemetry/internal/logfields"
)

// Wait blocks until the named marker exists and holds a valid timestamp, or ctx ends.
// Markers written by Write appear through a rename, which watchers report as Create.
func (d Dir) Wait(ctx context.Context, name string, kind Kind, logger *slog.Logger) (time.Time, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := d.Path(name, kind)
	dir := filepath.Dir(p)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return time.Time{}, errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityFatal, "create marker directory").
			WithContext("path", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return time.Time{}, errors.Wrap(err, errors.CategoryRuntime, errors.SeverityFatal, "create file watcher")
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(dir); err != nil {
		return time.Time{}, errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityFatal, "watch marker directory").
			WithContext("path", dir)
	}

	// Check after the watch is armed so a marker written in between is not missed.
	if t, err := d.Read(name, kind); err == nil {
		return t, nil
	}

	logger.Info("Waiting for marker", logfields.Marker(p))
	for {
		select {
		case <-ctx.Done():
			return time.Time{}, errors.Wrap(ctx.Err(), errors.CategoryRuntime, errors.SeverityError, "gave up waiting for marker").
				WithContext("path", p)
		case event, ok := <-watcher.Events:
			if !ok {
				return time.Time{}, errors.New(errors.CategoryRuntime, errors.SeverityError, "file watcher closed")
			}
			if filepath.Clean(event.Name) != filepath.Clean(p) {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			t, err := d.Read(name, kind)
			if err != nil {
				logger.Debug("Marker not readable yet", logfields.Marker(p), logfields.Error(err))
				continue
			}
			return t, nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return time.Time{}, errors.New(errors.CategoryRuntime, errors.SeverityError, "file watcher closed")
			}
			logger.Warn("File watcher error", logfields.Error(err))
		}
	}
}
