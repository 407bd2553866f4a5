// Package scanner enumerates indexable markdown files under a root directory.
package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/eristoddle/mdquery-sub000/internal/apperr"
)

// supportedExtensions is the set of file extensions treated as markdown.
var supportedExtensions = map[string]struct{}{
	".md":       {},
	".markdown": {},
	".mdx":      {},
	".mdown":    {},
	".mkd":      {},
}

// Supported reports whether path has a markdown extension.
func Supported(path string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Scanner lists candidate files for indexing.
type Scanner struct {
	logger *slog.Logger
}

// New creates a Scanner. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{logger: logger}
}

// Scan returns the absolute paths of all regular markdown files under root,
// sorted and deduplicated. With recursive false only direct children are
// considered. Subdirectories that cannot be read are skipped with a warning.
func (s *Scanner) Scan(root string, recursive bool) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("scanner: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("scanner: root %s: %w", root, apperr.ErrNotFound)
		}
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("scanner: root %s: %w", root, apperr.ErrAccessDenied)
		}
		return nil, fmt.Errorf("scanner: stat root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scanner: root %s is not a directory: %w", root, apperr.ErrUnsupportedFile)
	}

	seen := make(map[string]struct{})
	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrPermission) {
				s.logger.Warn("scanner: skipping unreadable entry",
					slog.String("path", p), slog.String("error", walkErr.Error()))
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			return walkErr
		}
		if d.IsDir() {
			if !recursive && p != abs {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !Supported(d.Name()) {
			return nil
		}
		seen[p] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanner: walk %s: %w", abs, err)
	}

	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}
