//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not compiled in; full-text search falls back to LIKE over the
	// content table, which is populated either way.
	return nil
}

func ftsReplace(_ *sql.Tx, _ int64, _ string, _ ContentRow) error { return nil }

func ftsDelete(_ *sql.Tx, _ int64) {}

func ftsOrphanSweep(_ *sql.Tx) (int64, error) { return 0, nil }

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT files.path, content.title, substr(content.body, 1, 200)
		FROM content JOIN files ON files.id = content.file_id
		WHERE content.title LIKE ? OR content.body LIKE ? OR content.headings LIKE ?
		LIMIT ?
	`, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Path, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
