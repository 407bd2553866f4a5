package scanner

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/eristoddle/mdquery-sub000/internal/apperr"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestScan_FiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b.md", "a.markdown", "c.mdx", "ignore.txt", "noext")

	got, err := New(nil).Scan(dir, false)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d files: %v", len(got), got)
	}
	if !sort.StringsAreSorted(got) {
		t.Errorf("output not sorted: %v", got)
	}
	if filepath.Base(got[0]) != "a.markdown" {
		t.Errorf("got[0] = %s", got[0])
	}
}

func TestScan_RecursiveFlag(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "top.md", "sub/nested.md", "sub/deep/leaf.md")

	flat, err := New(nil).Scan(dir, false)
	if err != nil {
		t.Fatalf("Scan flat: %v", err)
	}
	if len(flat) != 1 {
		t.Errorf("non-recursive got %v, want only top.md", flat)
	}

	all, err := New(nil).Scan(dir, true)
	if err != nil {
		t.Fatalf("Scan recursive: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("recursive got %v, want 3 files", all)
	}
}

func TestScan_MissingRoot(t *testing.T) {
	_, err := New(nil).Scan(filepath.Join(t.TempDir(), "nope"), true)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestScan_FileRoot(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "lone.md")
	_, err := New(nil).Scan(filepath.Join(dir, "lone.md"), true)
	if !errors.Is(err, apperr.ErrUnsupportedFile) {
		t.Errorf("err = %v, want ErrUnsupportedFile", err)
	}
}

func TestSupported(t *testing.T) {
	yes := []string{"a.md", "b.MD", "c.markdown", "d.mdx", "e.mkd", "f.mdown"}
	for _, p := range yes {
		if !Supported(p) {
			t.Errorf("Supported(%q) = false", p)
		}
	}
	no := []string{"a.txt", "b.html", "c", "d.md.bak"}
	for _, p := range no {
		if Supported(p) {
			t.Errorf("Supported(%q) = true", p)
		}
	}
}
