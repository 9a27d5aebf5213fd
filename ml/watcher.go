package ml

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"flightdelay/monitoring"
)

// WatchSnapshot hot-reloads the classifier whenever its artifact is
// rewritten on disk, e.g. after an offline training run pushes a new
// snapshot. The parent directory is watched because atomic renames
// replace the file node. Returns a stop function.
func WatchSnapshot(model *DelayModel, path string) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	target := filepath.Clean(path)
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if err := model.Reload(); err != nil {
					zap.L().Error("model reload failed", zap.String("path", target), zap.Error(err))
					continue
				}
				monitoring.Default().ModelReloaded()
				zap.L().Info("model reloaded from snapshot",
					zap.String("path", target), zap.Int64("generation", model.Generation()))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				zap.L().Error("model watcher error", zap.Error(err))
			}
		}
	}()

	return func() { watcher.Close() }, nil
}
