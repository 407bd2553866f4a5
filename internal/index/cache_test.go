package index

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/eristoddle/mdquery-sub000/internal/apperr"
)

func TestIsValid_FreshStore(t *testing.T) {
	db := testDB(t)
	ok, reason := db.IsValid(0)
	if !ok {
		t.Errorf("fresh store invalid: %s", reason)
	}
}

func TestIsValid_VersionMismatch(t *testing.T) {
	db := testDB(t)
	if _, err := db.conn.Exec(`UPDATE cache_metadata SET value = '999' WHERE key = ?`, metaSchemaVersion); err != nil {
		t.Fatal(err)
	}
	ok, reason := db.IsValid(0)
	if ok {
		t.Fatal("store with wrong schema version reported valid")
	}
	if reason == "" {
		t.Error("expected a reason for the mismatch")
	}
}

func TestIsValid_StaleAfterMaxAge(t *testing.T) {
	db := testDB(t)
	old := time.Now().Add(-48 * time.Hour).UTC().Format(time.RFC3339Nano)
	if _, err := db.conn.Exec(`INSERT INTO cache_metadata (key, value) VALUES (?, ?)`, metaLastUpdated, old); err != nil {
		t.Fatal(err)
	}
	if ok, _ := db.IsValid(24 * time.Hour); ok {
		t.Error("48h-old store should be stale under a 24h window")
	}
	if ok, reason := db.IsValid(72 * time.Hour); !ok {
		t.Errorf("48h-old store should pass a 72h window: %s", reason)
	}
}

func TestIsValid_NeverWrittenIsNotStale(t *testing.T) {
	db := testDB(t)
	if ok, reason := db.IsValid(time.Nanosecond); !ok {
		t.Errorf("never-written store reported stale: %s", reason)
	}
}

func TestLastUpdated_AdvancesOnWrite(t *testing.T) {
	db := testDB(t)
	before, err := db.LastUpdated()
	if err != nil {
		t.Fatal(err)
	}
	if !before.IsZero() {
		t.Fatalf("unwritten store has last_updated %v", before)
	}

	if err := db.ReplaceFile(sampleRow("/vault/t.md"), DerivedRows{}); err != nil {
		t.Fatal(err)
	}
	after, err := db.LastUpdated()
	if err != nil {
		t.Fatal(err)
	}
	if after.IsZero() {
		t.Error("last_updated not stamped by write")
	}
}

func TestLastUpdated_Monotonic(t *testing.T) {
	db := testDB(t)
	future := time.Now().Add(time.Hour).UTC().Format(time.RFC3339Nano)
	if _, err := db.conn.Exec(`INSERT INTO cache_metadata (key, value) VALUES (?, ?)`, metaLastUpdated, future); err != nil {
		t.Fatal(err)
	}
	if err := db.ReplaceFile(sampleRow("/vault/m.md"), DerivedRows{}); err != nil {
		t.Fatal(err)
	}
	got, err := db.LastUpdated()
	if err != nil {
		t.Fatal(err)
	}
	want, _ := time.Parse(time.RFC3339Nano, future)
	if got.Before(want) {
		t.Errorf("last_updated moved backward: %v < %v", got, want)
	}
}

func TestLastUpdated_GarbageValueIsCorruption(t *testing.T) {
	db := testDB(t)
	if _, err := db.conn.Exec(`INSERT INTO cache_metadata (key, value) VALUES (?, 'not-a-timestamp')`, metaLastUpdated); err != nil {
		t.Fatal(err)
	}

	_, err := db.LastUpdated()
	if !errors.Is(err, apperr.ErrStorageCorruption) {
		t.Errorf("err = %v, want ErrStorageCorruption", err)
	}
	if ok, reason := db.IsValid(0); ok || reason == "" {
		t.Errorf("valid = %v, reason = %q, want invalid with reason", ok, reason)
	}
}

func TestInvalidateDirectory(t *testing.T) {
	db := testDB(t)
	for _, p := range []string{"/vault/a.md", "/vault/sub/b.md", "/other/c.md"} {
		_ = db.ReplaceFile(sampleRow(p), sampleDerived())
	}

	n, err := db.InvalidateDirectory("/vault")
	if err != nil {
		t.Fatalf("InvalidateDirectory: %v", err)
	}
	if n != 2 {
		t.Errorf("removed %d, want 2", n)
	}
	if got, _ := db.GetFile("/other/c.md"); got == nil {
		t.Error("file outside the directory was removed")
	}
}

func TestCleanupOrphans_RemovesDeletedFiles(t *testing.T) {
	db := testDB(t)
	dir := t.TempDir()

	keep := filepath.Join(dir, "keep.md")
	gone := filepath.Join(dir, "gone.md")
	for _, p := range []string{keep, gone} {
		if err := os.WriteFile(p, []byte("# x\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		_ = db.ReplaceFile(sampleRow(p), sampleDerived())
	}
	if err := os.Remove(gone); err != nil {
		t.Fatal(err)
	}

	stats, err := db.CleanupOrphans()
	if err != nil {
		t.Fatalf("CleanupOrphans: %v", err)
	}
	if stats.FilesChecked != 2 || stats.FilesRemoved != 1 {
		t.Errorf("stats = %+v, want 2 checked, 1 removed", stats)
	}
	if got, _ := db.GetFile(gone); got != nil {
		t.Error("deleted file still in store")
	}
	if got, _ := db.GetFile(keep); got == nil {
		t.Error("surviving file was removed")
	}

	// Deleting a file record must not leave any derived rows behind.
	for _, table := range derivedTables {
		var n int
		_ = db.conn.QueryRow(`SELECT count(*) FROM `+table+` WHERE file_id NOT IN (SELECT id FROM files)`).Scan(&n)
		if n != 0 {
			t.Errorf("%s has %d dangling rows", table, n)
		}
	}
}

func TestCleanupOrphans_SweepsDanglingRows(t *testing.T) {
	db := testDB(t)

	// Simulate an interrupted write by planting rows that reference no file.
	// One pooled connection keeps the pragma in force for the inserts.
	db.conn.SetMaxOpenConns(1)
	if _, err := db.conn.Exec(`PRAGMA foreign_keys = OFF`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.conn.Exec(`INSERT INTO tags (file_id, tag, source) VALUES (9999, 'dangling', 'content')`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.conn.Exec(`INSERT INTO links (file_id, link_text, link_target, link_kind, is_internal) VALUES (9999, '', 'x.md', 'markdown', 1)`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.conn.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		t.Fatal(err)
	}

	stats, err := db.CleanupOrphans()
	if err != nil {
		t.Fatalf("CleanupOrphans: %v", err)
	}
	if stats.TagsRemoved != 1 || stats.LinksRemoved != 1 {
		t.Errorf("stats = %+v, want 1 tag and 1 link swept", stats)
	}
}

func TestVacuum_StoreStaysValid(t *testing.T) {
	db := testDB(t)
	_ = db.ReplaceFile(sampleRow("/vault/v.md"), sampleDerived())
	if _, err := db.DeleteFile("/vault/v.md"); err != nil {
		t.Fatal(err)
	}
	if err := db.Vacuum(); err != nil {
		t.Fatalf("Vacuum: %v", err)
	}
	if ok, reason := db.IsValid(0); !ok {
		t.Errorf("store invalid after vacuum: %s", reason)
	}
}
