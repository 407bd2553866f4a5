package checksum

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSumAndFileAgree(t *testing.T) {
	data := []byte("the quick brown fox\n")
	path := filepath.Join(t.TempDir(), "f.md")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	fromFile, err := File(path)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if fromFile != Sum(data) {
		t.Errorf("File = %s, Sum = %s", fromFile, Sum(data))
	}
	if len(fromFile) != 64 {
		t.Errorf("digest length = %d, want 64 hex chars", len(fromFile))
	}
}

func TestFile_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.md")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := File(path)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if got != Sum(nil) {
		t.Errorf("empty digest mismatch")
	}
}

func TestFile_MissingIsError(t *testing.T) {
	if _, err := File(filepath.Join(t.TempDir(), "absent.md")); err == nil {
		t.Fatal("expected error for missing file, got digest")
	}
}
