// Package indexer orchestrates scanning, change detection, parsing, and
// storage for single files, whole directories, incremental syncs, and full
// rebuilds.
package indexer

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/eristoddle/mdquery-sub000/internal/apperr"
	"github.com/eristoddle/mdquery-sub000/internal/checksum"
	"github.com/eristoddle/mdquery-sub000/internal/index"
	"github.com/eristoddle/mdquery-sub000/internal/parser"
	"github.com/eristoddle/mdquery-sub000/internal/scanner"
)

// Stats reports the outcome of a batch indexing operation.
type Stats struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Errored   int `json:"errored"`
}

// Indexer drives the parse-and-store pipeline against one derived store.
// Mutating operations must be serialized by the caller.
type Indexer struct {
	db     *index.DB
	scan   *scanner.Scanner
	logger *slog.Logger
}

// New creates an Indexer. A nil logger falls back to slog.Default.
func New(db *index.DB, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{db: db, scan: scanner.New(logger), logger: logger}
}

// IndexFile parses one file and replaces its record and derived rows in a
// single transaction.
func (ix *Indexer) IndexFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("indexer: resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("indexer: %s: %w", path, apperr.ErrNotFound)
		}
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("indexer: %s: %w", path, apperr.ErrAccessDenied)
		}
		return fmt.Errorf("indexer: stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("indexer: %s is not a regular file: %w", path, apperr.ErrUnsupportedFile)
	}
	if !scanner.Supported(abs) {
		return fmt.Errorf("indexer: %s: %w", path, apperr.ErrUnsupportedFile)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("indexer: read %s: %w", path, apperr.ErrAccessDenied)
		}
		return fmt.Errorf("indexer: read %s: %w", path, err)
	}

	text, err := decodeText(data)
	if err != nil {
		return err
	}

	doc := parser.Parse([]byte(text))
	row, derived := buildRows(abs, info, data, doc)
	if err := ix.db.ReplaceFile(row, derived); err != nil {
		return err
	}
	ix.logger.Debug("indexed", slog.String("path", abs),
		slog.Int("words", doc.WordCount), slog.Int("headings", len(doc.Headings)))
	return nil
}

// IndexDirectory enumerates candidates under root and indexes the ones the
// change detector flags. Per-file errors are counted and logged; the batch
// continues.
func (ix *Indexer) IndexDirectory(root string, recursive bool) (Stats, error) {
	var stats Stats
	paths, err := ix.scan.Scan(root, recursive)
	if err != nil {
		return stats, err
	}
	for _, p := range paths {
		stored, err := ix.db.GetFile(p)
		if err != nil {
			return stats, err
		}
		reindex, err := ShouldReindex(p, stored)
		if err != nil {
			stats.Errored++
			ix.logger.Warn("change detection failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		if !reindex {
			stats.Skipped++
			continue
		}
		if err := ix.IndexFile(p); err != nil {
			stats.Errored++
			ix.logger.Warn("index failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		stats.Processed++
	}
	return stats, nil
}

// RebuildIndex deletes every record under root and re-indexes from scratch.
func (ix *Indexer) RebuildIndex(root string, recursive bool) (Stats, error) {
	// Stored paths are absolute; a relative root would match nothing.
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Stats{}, fmt.Errorf("indexer: resolve %s: %w", root, err)
	}
	removed, err := ix.db.InvalidateDirectory(absRoot)
	if err != nil {
		return Stats{}, err
	}
	ix.logger.Info("rebuild: invalidated", slog.String("root", absRoot), slog.Int("removed", removed))
	return ix.IndexDirectory(absRoot, recursive)
}

// RemoveFile deletes the record and derived rows for exactly one path,
// reporting whether anything was removed.
func (ix *Indexer) RemoveFile(path string) (bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("indexer: resolve %s: %w", path, err)
	}
	return ix.db.DeleteFile(abs)
}

// buildRows assembles the store rows from a parsed document.
func buildRows(abs string, info fs.FileInfo, raw []byte, doc *parser.Document) (index.FileRow, index.DerivedRows) {
	row := index.FileRow{
		Path:         abs,
		Filename:     filepath.Base(abs),
		Directory:    filepath.Dir(abs),
		ModifiedAt:   info.ModTime(),
		CreatedAt:    createdFrom(doc),
		SizeBytes:    info.Size(),
		Fingerprint:  checksum.Sum(raw),
		WordCount:    doc.WordCount,
		HeadingCount: len(doc.Headings),
		IndexedAt:    time.Now().UTC(),
	}

	var derived index.DerivedRows
	keys := make([]string, 0, len(doc.Frontmatter))
	for k := range doc.Frontmatter {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := doc.Frontmatter[k]
		derived.Frontmatter = append(derived.Frontmatter, index.FrontmatterRow{
			Key:   k,
			Value: v.Text(),
			Kind:  v.Kind.String(),
		})
	}
	for _, t := range doc.Tags {
		derived.Tags = append(derived.Tags, index.TagRow{Tag: t.Name, Source: t.Source})
	}
	for _, l := range doc.Links {
		derived.Links = append(derived.Links, index.LinkRow{
			Text: l.Text, Target: l.Target, Kind: l.Kind, Internal: l.Internal,
		})
	}
	derived.Content = index.ContentRow{
		Title:    doc.Title,
		Body:     doc.Sanitized,
		Headings: doc.HeadingText(),
	}
	return row, derived
}

// createdFrom pulls an optional creation time out of frontmatter, where
// markdown files usually carry it ("created" or "date").
func createdFrom(doc *parser.Document) *time.Time {
	for _, key := range []string{"created", "date"} {
		v, ok := doc.Frontmatter[key]
		if !ok {
			continue
		}
		if v.Kind == parser.KindDate || v.Kind == parser.KindStringDate {
			t := v.Time
			return &t
		}
	}
	return nil
}
