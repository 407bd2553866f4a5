package indexer

import (
	"os"

	"github.com/eristoddle/mdquery-sub000/internal/checksum"
	"github.com/eristoddle/mdquery-sub000/internal/index"
)

// ShouldReindex decides whether a file needs re-parsing. A missing stored
// record always reindexes. Otherwise the filesystem mtime is compared first
// (the cheap path), and only when mtime has not advanced is the content
// fingerprint computed and compared, which catches mtime-preserving copies
// and clock skew. A file that cannot be stat'ed or read is a hard error for
// that file; no substitute fingerprint is ever produced.
func ShouldReindex(path string, stored *index.FileRow) (bool, error) {
	if stored == nil {
		return true, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if info.ModTime().After(stored.ModifiedAt) {
		return true, nil
	}
	sum, err := checksum.File(path)
	if err != nil {
		return false, err
	}
	return sum != stored.Fingerprint, nil
}
