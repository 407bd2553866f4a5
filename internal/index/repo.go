package index

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/eristoddle/mdquery-sub000/internal/apperr"
)

// FileRow represents a row in the files table.
type FileRow struct {
	ID           int64
	Path         string
	Filename     string
	Directory    string
	ModifiedAt   time.Time
	CreatedAt    *time.Time
	SizeBytes    int64
	Fingerprint  string
	WordCount    int
	HeadingCount int
	IndexedAt    time.Time
}

// FrontmatterRow is one stored frontmatter entry.
type FrontmatterRow struct {
	Key   string
	Value string
	Kind  string
}

// TagRow is one stored tag entry.
type TagRow struct {
	Tag    string
	Source string
}

// LinkRow is one stored link entry.
type LinkRow struct {
	Text     string
	Target   string
	Kind     string
	Internal bool
}

// ContentRow is the full-text surface for one file.
type ContentRow struct {
	Title    string
	Body     string
	Headings string
}

// DerivedRows bundles everything replaced together with a file record.
type DerivedRows struct {
	Frontmatter []FrontmatterRow
	Tags        []TagRow
	Links       []LinkRow
	Content     ContentRow
}

// SearchResult represents one full-text search hit.
type SearchResult struct {
	Path    string
	Title   string
	Snippet string
}

// TagCount pairs a tag with the number of files carrying it.
type TagCount struct {
	Tag   string
	Count int
}

// ReplaceFile writes the file record and all of its derived rows in one
// transaction. Existing derived rows for the path are deleted first; this
// delete-then-insert replace is the only mutation pattern, so a re-parse can
// never leave stale leftover fields. The cache-metadata timestamp is
// advanced inside the same transaction.
func (db *DB) ReplaceFile(row FileRow, d DerivedRows) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO files (path, filename, directory, modified_at, created_at, size_bytes, fingerprint, word_count, heading_count, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			filename      = excluded.filename,
			directory     = excluded.directory,
			modified_at   = excluded.modified_at,
			created_at    = excluded.created_at,
			size_bytes    = excluded.size_bytes,
			fingerprint   = excluded.fingerprint,
			word_count    = excluded.word_count,
			heading_count = excluded.heading_count,
			indexed_at    = excluded.indexed_at
	`, row.Path, row.Filename, row.Directory, row.ModifiedAt, row.CreatedAt,
		row.SizeBytes, row.Fingerprint, row.WordCount, row.HeadingCount, row.IndexedAt)
	if err != nil {
		return fmt.Errorf("index: upsert file: %w", err)
	}

	var fileID int64
	if err := tx.QueryRow(`SELECT id FROM files WHERE path = ?`, row.Path).Scan(&fileID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("index: upserted row missing for %s: %w", row.Path, apperr.ErrConsistency)
		}
		return fmt.Errorf("index: resolve file id: %w", err)
	}

	for _, table := range derivedTables {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE file_id = ?`, fileID); err != nil {
			return fmt.Errorf("index: clear %s: %w", table, err)
		}
	}

	if len(d.Frontmatter) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO frontmatter (file_id, key, value, value_kind) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare frontmatter insert: %w", err)
		}
		defer stmt.Close()
		for _, fm := range d.Frontmatter {
			if _, err := stmt.Exec(fileID, fm.Key, fm.Value, fm.Kind); err != nil {
				return fmt.Errorf("index: insert frontmatter: %w", err)
			}
		}
	}

	if len(d.Tags) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO tags (file_id, tag, source) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare tag insert: %w", err)
		}
		defer stmt.Close()
		for _, t := range d.Tags {
			if _, err := stmt.Exec(fileID, t.Tag, t.Source); err != nil {
				return fmt.Errorf("index: insert tag: %w", err)
			}
		}
	}

	if len(d.Links) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO links (file_id, link_text, link_target, link_kind, is_internal) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare link insert: %w", err)
		}
		defer stmt.Close()
		for _, l := range d.Links {
			if _, err := stmt.Exec(fileID, l.Text, l.Target, l.Kind, l.Internal); err != nil {
				return fmt.Errorf("index: insert link: %w", err)
			}
		}
	}

	_, err = tx.Exec(`INSERT INTO content (file_id, title, body, headings) VALUES (?, ?, ?, ?)`,
		fileID, d.Content.Title, d.Content.Body, d.Content.Headings)
	if err != nil {
		return fmt.Errorf("index: insert content: %w", err)
	}

	if err := ftsReplace(tx, fileID, row.Path, d.Content); err != nil {
		return err
	}

	if err := touchLastUpdated(tx); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteFile removes the file record and all derived rows for exactly one
// path, reporting whether anything was removed.
func (db *DB) DeleteFile(path string) (bool, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return false, fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var fileID int64
	err = tx.QueryRow(`SELECT id FROM files WHERE path = ?`, path).Scan(&fileID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("index: lookup %s: %w", path, err)
	}

	for _, table := range derivedTables {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE file_id = ?`, fileID); err != nil {
			return false, fmt.Errorf("index: clear %s: %w", table, err)
		}
	}
	ftsDelete(tx, fileID)
	if _, err := tx.Exec(`DELETE FROM files WHERE id = ?`, fileID); err != nil {
		return false, fmt.Errorf("index: delete file row: %w", err)
	}
	if err := touchLastUpdated(tx); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

// GetFile returns the stored record for path, or nil if never indexed.
func (db *DB) GetFile(path string) (*FileRow, error) {
	var row FileRow
	var created sql.NullTime
	err := db.conn.QueryRow(`
		SELECT id, path, filename, directory, modified_at, created_at, size_bytes, fingerprint, word_count, heading_count, indexed_at
		FROM files WHERE path = ?
	`, path).Scan(&row.ID, &row.Path, &row.Filename, &row.Directory, &row.ModifiedAt,
		&created, &row.SizeBytes, &row.Fingerprint, &row.WordCount, &row.HeadingCount, &row.IndexedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get %s: %w", path, err)
	}
	if created.Valid {
		row.CreatedAt = &created.Time
	}
	return &row, nil
}

// ListFiles returns a page of file records sorted by path, plus the total count.
func (db *DB) ListFiles(limit, offset int) ([]FileRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM files`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count files: %w", err)
	}
	rows, err := db.conn.Query(`
		SELECT id, path, filename, directory, modified_at, created_at, size_bytes, fingerprint, word_count, heading_count, indexed_at
		FROM files ORDER BY path LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list files: %w", err)
	}
	defer rows.Close()

	var out []FileRow
	for rows.Next() {
		var r FileRow
		var created sql.NullTime
		if err := rows.Scan(&r.ID, &r.Path, &r.Filename, &r.Directory, &r.ModifiedAt,
			&created, &r.SizeBytes, &r.Fingerprint, &r.WordCount, &r.HeadingCount, &r.IndexedAt); err != nil {
			return nil, 0, err
		}
		if created.Valid {
			r.CreatedAt = &created.Time
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// AllPaths returns every indexed file path.
func (db *DB) AllPaths() (map[string]struct{}, error) {
	return db.pathSet(`SELECT path FROM files`)
}

// PathsUnder returns every indexed path that falls under root.
func (db *DB) PathsUnder(root string) (map[string]struct{}, error) {
	prefix := normalizeRoot(root)
	return db.pathSet(`SELECT path FROM files WHERE path LIKE ? ESCAPE '\'`, likePrefix(prefix)+"%")
}

func (db *DB) pathSet(query string, args ...any) (map[string]struct{}, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("index: paths: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out[p] = struct{}{}
	}
	return out, rows.Err()
}

// FrontmatterFor returns the stored frontmatter entries for a path.
func (db *DB) FrontmatterFor(path string) ([]FrontmatterRow, error) {
	rows, err := db.conn.Query(`
		SELECT f.key, f.value, f.value_kind
		FROM frontmatter f JOIN files ON files.id = f.file_id
		WHERE files.path = ? ORDER BY f.key
	`, path)
	if err != nil {
		return nil, fmt.Errorf("index: frontmatter for %s: %w", path, err)
	}
	defer rows.Close()
	var out []FrontmatterRow
	for rows.Next() {
		var r FrontmatterRow
		if err := rows.Scan(&r.Key, &r.Value, &r.Kind); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// TagsFor returns the stored tags for a path.
func (db *DB) TagsFor(path string) ([]TagRow, error) {
	rows, err := db.conn.Query(`
		SELECT t.tag, t.source
		FROM tags t JOIN files ON files.id = t.file_id
		WHERE files.path = ? ORDER BY t.tag
	`, path)
	if err != nil {
		return nil, fmt.Errorf("index: tags for %s: %w", path, err)
	}
	defer rows.Close()
	var out []TagRow
	for rows.Next() {
		var r TagRow
		if err := rows.Scan(&r.Tag, &r.Source); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LinksFor returns the stored links for a path.
func (db *DB) LinksFor(path string) ([]LinkRow, error) {
	rows, err := db.conn.Query(`
		SELECT l.link_text, l.link_target, l.link_kind, l.is_internal
		FROM links l JOIN files ON files.id = l.file_id
		WHERE files.path = ?
	`, path)
	if err != nil {
		return nil, fmt.Errorf("index: links for %s: %w", path, err)
	}
	defer rows.Close()
	var out []LinkRow
	for rows.Next() {
		var r LinkRow
		var text sql.NullString
		if err := rows.Scan(&text, &r.Target, &r.Kind, &r.Internal); err != nil {
			return nil, err
		}
		r.Text = text.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// TagCounts returns every tag with the number of files carrying it.
func (db *DB) TagCounts() ([]TagCount, error) {
	rows, err := db.conn.Query(`SELECT tag, count(*) FROM tags GROUP BY tag ORDER BY count(*) DESC, tag`)
	if err != nil {
		return nil, fmt.Errorf("index: tag counts: %w", err)
	}
	defer rows.Close()
	var out []TagCount
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

// touchLastUpdated advances the cache-metadata timestamp inside tx. The
// stored value only moves forward.
func touchLastUpdated(tx *sql.Tx) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := tx.Exec(`
		INSERT INTO cache_metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value WHERE excluded.value > value
	`, metaLastUpdated, now)
	if err != nil {
		return fmt.Errorf("index: touch last_updated: %w", err)
	}
	return nil
}

// normalizeRoot cleans a directory path and ensures a trailing separator so
// prefix matching cannot cross sibling directories (/a/b vs /a/bc).
func normalizeRoot(root string) string {
	cleaned := filepath.Clean(root)
	if !strings.HasSuffix(cleaned, string(filepath.Separator)) {
		cleaned += string(filepath.Separator)
	}
	return cleaned
}

// likePrefix escapes LIKE metacharacters in a literal path prefix.
func likePrefix(p string) string {
	p = strings.ReplaceAll(p, `\`, `\\`)
	p = strings.ReplaceAll(p, `%`, `\%`)
	p = strings.ReplaceAll(p, `_`, `\_`)
	return p
}
