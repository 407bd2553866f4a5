package indexer

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/eristoddle/mdquery-sub000/internal/scanner"
)

// EventCallback is called after a watcher-driven index change.
// kind is one of "added", "updated", "removed".
type EventCallback func(kind, path string)

// Watch starts an fsnotify watcher on root and keeps the store synced as
// files change, until ctx is cancelled. It calls cb (if non-nil) after each
// successful index mutation.
//
// New directories created at runtime are added to the watch list. Rename
// events trigger a debounced reconciliation sync that removes stale records
// whose files no longer exist on disk.
func (ix *Indexer) Watch(ctx context.Context, root string, cb EventCallback) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, absRoot); err != nil {
		return err
	}

	ix.logger.Info("watcher: started", slog.String("root", absRoot))

	// reconcileTimer debounces the rename reconciliation sync.
	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			ix.logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			if _, err := ix.SyncDirectory(absRoot, true); err != nil {
				ix.logger.Warn("watcher: reconcile failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			path := ev.Name

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, path); addErr != nil {
						ix.logger.Warn("watcher: add new dir failed",
							slog.String("path", path), slog.String("error", addErr.Error()))
					}
					ix.indexNewDir(path, cb)
					continue
				}
			}

			if !scanner.Supported(path) {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				existed, getErr := ix.db.GetFile(path)
				if idxErr := ix.IndexFile(path); idxErr != nil {
					ix.logger.Warn("watcher: index failed", slog.String("path", path), slog.String("error", idxErr.Error()))
					continue
				}
				kind := "updated"
				if getErr == nil && existed == nil {
					kind = "added"
				}
				ix.logger.Debug("watcher: indexed", slog.String("path", path), slog.String("op", kind))
				if cb != nil {
					cb(kind, path)
				}

			case ev.Op&fsnotify.Remove != 0:
				if delErr := ix.db.InvalidateFile(path); delErr != nil {
					ix.logger.Warn("watcher: invalidate failed", slog.String("path", path), slog.String("error", delErr.Error()))
					continue
				}
				ix.logger.Debug("watcher: removed", slog.String("path", path))
				if cb != nil {
					cb("removed", path)
				}

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify fires Rename on the OLD path only; the new path
				// arrives as a separate Create event. Invalidate the old
				// record now and schedule a reconcile for stragglers.
				if delErr := ix.db.InvalidateFile(path); delErr != nil {
					ix.logger.Warn("watcher: rename invalidate failed", slog.String("path", path), slog.String("error", delErr.Error()))
				} else {
					ix.logger.Debug("watcher: rename old removed", slog.String("path", path))
					if cb != nil {
						cb("removed", path)
					}
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			ix.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// indexNewDir indexes any markdown files already in a newly created directory.
func (ix *Indexer) indexNewDir(dir string, cb EventCallback) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !scanner.Supported(path) {
			return nil
		}
		if idxErr := ix.IndexFile(path); idxErr == nil {
			ix.logger.Debug("watcher: indexed from new dir", slog.String("path", path))
			if cb != nil {
				cb("added", path)
			}
		}
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
