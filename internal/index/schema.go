// Package index provides the SQLite-backed derived store for parsed
// markdown files, with optional FTS5 full-text search and the cache
// bookkeeping that keeps the store faithful to the filesystem.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/eristoddle/mdquery-sub000/internal/apperr"
)

// SchemaVersion is stamped into cache_metadata and checked by IsValid.
const SchemaVersion = "1"

// Cache metadata keys.
const (
	metaSchemaVersion = "schema_version"
	metaLastUpdated   = "last_updated"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS files (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	path          TEXT NOT NULL UNIQUE,
	filename      TEXT NOT NULL,
	directory     TEXT NOT NULL,
	modified_at   DATETIME NOT NULL,
	created_at    DATETIME,
	size_bytes    INTEGER NOT NULL DEFAULT 0,
	fingerprint   TEXT NOT NULL DEFAULT '',
	word_count    INTEGER NOT NULL DEFAULT 0,
	heading_count INTEGER NOT NULL DEFAULT 0,
	indexed_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_files_directory ON files(directory);

CREATE TABLE IF NOT EXISTS frontmatter (
	file_id    INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL DEFAULT '',
	value_kind TEXT NOT NULL DEFAULT 'string'
);

CREATE INDEX IF NOT EXISTS idx_frontmatter_file ON frontmatter(file_id);
CREATE INDEX IF NOT EXISTS idx_frontmatter_key ON frontmatter(key);

CREATE TABLE IF NOT EXISTS tags (
	file_id INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
	tag     TEXT NOT NULL,
	source  TEXT NOT NULL DEFAULT 'unknown',
	UNIQUE(file_id, tag)
);

CREATE INDEX IF NOT EXISTS idx_tags_tag ON tags(tag);

CREATE TABLE IF NOT EXISTS links (
	file_id     INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
	link_text   TEXT,
	link_target TEXT NOT NULL,
	link_kind   TEXT NOT NULL DEFAULT 'markdown',
	is_internal INTEGER NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_links_file ON links(file_id);
CREATE INDEX IF NOT EXISTS idx_links_target ON links(link_target);

CREATE TABLE IF NOT EXISTS content (
	file_id  INTEGER NOT NULL UNIQUE REFERENCES files(id) ON DELETE CASCADE,
	title    TEXT NOT NULL DEFAULT '',
	body     TEXT NOT NULL DEFAULT '',
	headings TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS cache_metadata (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// requiredTables is checked by the structural self-check in IsValid.
var requiredTables = []string{"files", "frontmatter", "tags", "links", "content", "cache_metadata"}

// derivedTables are the tables swept for orphaned rows.
var derivedTables = []string{"frontmatter", "tags", "links", "content"}

// DB wraps a sql.DB with derived-store operations. It is a single logical
// writer: callers must serialize mutating operations.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens (or creates) the SQLite store and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w: %v", apperr.ErrStorageConnection, err)
	}
	db := &DB{conn: conn, path: dsn}
	if err := db.Initialize(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Initialize creates the schema if absent and stamps the schema version.
// It is idempotent on an existing, structurally valid store.
func (db *DB) Initialize() error {
	if _, err := db.conn.Exec(coreSchemaSQL); err != nil {
		return fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(db.conn); err != nil {
		return fmt.Errorf("index: apply fts schema: %w", err)
	}
	_, err := db.conn.Exec(`INSERT OR IGNORE INTO cache_metadata (key, value) VALUES (?, ?)`,
		metaSchemaVersion, SchemaVersion)
	if err != nil {
		return fmt.Errorf("index: stamp schema version: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the store's DSN path.
func (db *DB) Path() string {
	return db.path
}
