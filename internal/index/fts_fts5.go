//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS content_fts USING fts5(
			file_id UNINDEXED,
			path UNINDEXED,
			title,
			body,
			headings,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsReplace(tx *sql.Tx, fileID int64, path string, c ContentRow) error {
	_, _ = tx.Exec(`DELETE FROM content_fts WHERE file_id = ?`, fileID)
	_, err := tx.Exec(`INSERT INTO content_fts (file_id, path, title, body, headings) VALUES (?, ?, ?, ?, ?)`,
		fileID, path, c.Title, c.Body, c.Headings)
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, fileID int64) {
	_, _ = tx.Exec(`DELETE FROM content_fts WHERE file_id = ?`, fileID)
}

func ftsOrphanSweep(tx *sql.Tx) (int64, error) {
	res, err := tx.Exec(`DELETE FROM content_fts WHERE file_id NOT IN (SELECT id FROM files)`)
	if err != nil {
		return 0, fmt.Errorf("index: sweep fts orphans: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Search performs an FTS5 full-text search over title, body, and headings.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT path,
		       title,
		       snippet(content_fts, 3, '<b>', '</b>', '...', 64)
		FROM content_fts
		WHERE content_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
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
