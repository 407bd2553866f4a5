package indexer

import (
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
)

// SyncStats reports the three-way diff outcome of SyncDirectory.
type SyncStats struct {
	Added     int `json:"added"`
	Updated   int `json:"updated"`
	Removed   int `json:"removed"`
	Unchanged int `json:"unchanged"`
	Errored   int `json:"errored"`
}

// SyncDirectory brings the store in line with the directory tree under
// root. The current on-disk set and the recorded set are diffed three ways:
// disk-only paths are indexed, store-only paths are invalidated, and paths
// present in both run through the change detector. A file that disappears
// mid-sync counts as removed: the disk miss is authoritative for this pass.
// Per-file failures are counted and do not abort the batch.
func (ix *Indexer) SyncDirectory(root string, recursive bool) (SyncStats, error) {
	var stats SyncStats

	diskList, err := ix.scan.Scan(root, recursive)
	if err != nil {
		return stats, err
	}
	disk := make(map[string]struct{}, len(diskList))
	for _, p := range diskList {
		disk[p] = struct{}{}
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return stats, err
	}
	stored, err := ix.db.PathsUnder(absRoot)
	if err != nil {
		return stats, err
	}
	if !recursive {
		for p := range stored {
			if filepath.Dir(p) != absRoot {
				delete(stored, p)
			}
		}
	}

	union := make([]string, 0, len(disk)+len(stored))
	for p := range disk {
		union = append(union, p)
	}
	for p := range stored {
		if _, ok := disk[p]; !ok {
			union = append(union, p)
		}
	}
	sort.Strings(union)

	for _, p := range union {
		_, onDisk := disk[p]
		_, inStore := stored[p]

		switch {
		case onDisk && !inStore:
			if err := ix.IndexFile(p); err != nil {
				stats.Errored++
				ix.logger.Warn("sync: add failed", slog.String("path", p), slog.String("error", err.Error()))
				continue
			}
			stats.Added++

		case !onDisk && inStore:
			if err := ix.db.InvalidateFile(p); err != nil {
				stats.Errored++
				ix.logger.Warn("sync: remove failed", slog.String("path", p), slog.String("error", err.Error()))
				continue
			}
			stats.Removed++

		default:
			record, err := ix.db.GetFile(p)
			if err != nil {
				return stats, err
			}
			reindex, err := ShouldReindex(p, record)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					if invErr := ix.db.InvalidateFile(p); invErr == nil {
						stats.Removed++
						continue
					}
				}
				stats.Errored++
				ix.logger.Warn("sync: detect failed", slog.String("path", p), slog.String("error", err.Error()))
				continue
			}
			if !reindex {
				stats.Unchanged++
				continue
			}
			if err := ix.IndexFile(p); err != nil {
				stats.Errored++
				ix.logger.Warn("sync: update failed", slog.String("path", p), slog.String("error", err.Error()))
				continue
			}
			stats.Updated++
		}
	}

	ix.logger.Info("sync complete", slog.String("root", absRoot),
		slog.Int("added", stats.Added), slog.Int("updated", stats.Updated),
		slog.Int("removed", stats.Removed), slog.Int("unchanged", stats.Unchanged),
		slog.Int("errored", stats.Errored))
	return stats, nil
}
