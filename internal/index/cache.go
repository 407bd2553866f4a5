package index

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/eristoddle/mdquery-sub000/internal/apperr"
)

// DefaultMaxAge is the advisory staleness window: once the last successful
// update is older than this, IsValid treats the cache as stale.
const DefaultMaxAge = 24 * time.Hour

// CleanupStats reports what CleanupOrphans removed, per category.
type CleanupStats struct {
	FilesChecked       int `json:"files_checked"`
	FilesRemoved       int `json:"files_removed"`
	FrontmatterRemoved int `json:"frontmatter_removed"`
	TagsRemoved        int `json:"tags_removed"`
	LinksRemoved       int `json:"links_removed"`
	ContentRemoved     int `json:"content_removed"`
}

// IsValid reports whether the store is schema-compatible, structurally
// sound, and fresh enough. The returned reason is empty when valid. Age is
// an advisory staleness signal, not a hard block on reads.
func (db *DB) IsValid(maxAge time.Duration) (bool, string) {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	if err := db.conn.Ping(); err != nil {
		return false, "store unreachable: " + err.Error()
	}

	var version string
	err := db.conn.QueryRow(`SELECT value FROM cache_metadata WHERE key = ?`, metaSchemaVersion).Scan(&version)
	if err != nil {
		return false, "schema version missing"
	}
	if version != SchemaVersion {
		return false, fmt.Sprintf("schema version mismatch: have %s, want %s", version, SchemaVersion)
	}

	for _, table := range requiredTables {
		var n int
		if err := db.conn.QueryRow(`SELECT count(*) FROM ` + table).Scan(&n); err != nil {
			return false, fmt.Sprintf("structural check failed on %s: %v", table, err)
		}
	}

	last, err := db.LastUpdated()
	if err != nil {
		return false, "last-updated timestamp unreadable"
	}
	if !last.IsZero() && time.Since(last) > maxAge {
		return false, fmt.Sprintf("stale: last updated %s ago", time.Since(last).Round(time.Second))
	}
	return true, ""
}

// LastUpdated returns the timestamp of the last successful write batch, or
// the zero time if the store has never been written.
func (db *DB) LastUpdated() (time.Time, error) {
	var raw string
	err := db.conn.QueryRow(`SELECT value FROM cache_metadata WHERE key = ?`, metaLastUpdated).Scan(&raw)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("index: read last_updated: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("index: unparseable last_updated %q: %w", raw, apperr.ErrStorageCorruption)
	}
	return t, nil
}

// InvalidateFile removes one file record and its derived rows. A path that
// was never indexed is a no-op, not an error.
func (db *DB) InvalidateFile(path string) error {
	_, err := db.DeleteFile(path)
	return err
}

// InvalidateDirectory removes every file record whose path falls under
// root, returning the count removed.
func (db *DB) InvalidateDirectory(root string) (int, error) {
	paths, err := db.PathsUnder(root)
	if err != nil {
		return 0, err
	}
	removed := 0
	for p := range paths {
		ok, err := db.DeleteFile(p)
		if err != nil {
			return removed, err
		}
		if ok {
			removed++
		}
	}
	return removed, nil
}

// CleanupOrphans makes two passes: first every file record whose path no
// longer exists on disk is removed together with its derived rows, then
// each derived table is defensively swept for rows whose file reference
// does not resolve, guarding against interrupted transactions.
func (db *DB) CleanupOrphans() (CleanupStats, error) {
	var stats CleanupStats

	paths, err := db.AllPaths()
	if err != nil {
		return stats, err
	}
	for p := range paths {
		stats.FilesChecked++
		_, statErr := os.Stat(p)
		if statErr == nil {
			continue
		}
		if !errors.Is(statErr, fs.ErrNotExist) {
			// Permission or I/O trouble is not evidence of deletion.
			continue
		}
		ok, err := db.DeleteFile(p)
		if err != nil {
			return stats, err
		}
		if ok {
			stats.FilesRemoved++
		}
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return stats, fmt.Errorf("index: begin sweep tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	counts := map[string]*int{
		"frontmatter": &stats.FrontmatterRemoved,
		"tags":        &stats.TagsRemoved,
		"links":       &stats.LinksRemoved,
		"content":     &stats.ContentRemoved,
	}
	for _, table := range derivedTables {
		res, err := tx.Exec(`DELETE FROM ` + table + ` WHERE file_id NOT IN (SELECT id FROM files)`)
		if err != nil {
			return stats, fmt.Errorf("index: sweep %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		*counts[table] += int(n)
	}
	if _, err := ftsOrphanSweep(tx); err != nil {
		return stats, err
	}
	if err := touchLastUpdated(tx); err != nil {
		return stats, err
	}
	return stats, tx.Commit()
}

// Vacuum reclaims space after heavy churn. The store stays valid and
// queryable afterward.
func (db *DB) Vacuum() error {
	if _, err := db.conn.Exec(`VACUUM`); err != nil {
		return fmt.Errorf("index: vacuum: %w", err)
	}
	return nil
}
