package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch processes images that appear in dir after the initial batch. Create
// events are debounced so half-written files settle before OCR runs; files
// are still processed one at a time, in arrival order. Returns when the
// context is cancelled.
func (r *Runner) Watch(ctx context.Context, dir string, onRecord func(), table *Table, failures *[]Failure) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	r.logger().Info("watching for new images", "dir", dir)

	pending := map[string]time.Time{}
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create == fsnotify.Create {
				name := filepath.Base(ev.Name)
				if isSupportedExt(name) {
					pending[name] = time.Now()
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.logger().Warn("watch error", "error", err)
		case now := <-ticker.C:
			for name, seen := range pending {
				if now.Sub(seen) < 300*time.Millisecond {
					continue
				}
				delete(pending, name)
				rec, err := r.ProcessOne(ctx, filepath.Join(dir, name))
				if err != nil {
					*failures = append(*failures, Failure{Image: name, Err: err})
					r.logger().Warn("skipping image", "image", name, "error", err)
					if r.Store != nil {
						_ = r.Store.SaveFailure(name, err.Error())
					}
					continue
				}
				table.Append(rec)
				r.logger().Info("processed image", "image", name)
				if r.Store != nil {
					_ = r.Store.SaveRecord(rec)
				}
				if onRecord != nil {
					onRecord()
				}
			}
		}
	}
}
