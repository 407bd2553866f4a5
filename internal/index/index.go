package index

import "time"

// FileIndex defines the interface for derived-store operations. Consumers
// should depend on this interface rather than the concrete *DB type to
// facilitate testing with mocks.
type FileIndex interface {
	ReplaceFile(row FileRow, d DerivedRows) error
	DeleteFile(path string) (bool, error)
	GetFile(path string) (*FileRow, error)
	ListFiles(limit, offset int) ([]FileRow, int, error)
	AllPaths() (map[string]struct{}, error)
	PathsUnder(root string) (map[string]struct{}, error)
	FrontmatterFor(path string) ([]FrontmatterRow, error)
	TagsFor(path string) ([]TagRow, error)
	LinksFor(path string) ([]LinkRow, error)
	TagCounts() ([]TagCount, error)
	Search(query string, limit int) ([]SearchResult, error)

	InvalidateFile(path string) error
	InvalidateDirectory(root string) (int, error)
	CleanupOrphans() (CleanupStats, error)
	IsValid(maxAge time.Duration) (bool, string)
	LastUpdated() (time.Time, error)
	Vacuum() error
	Close() error
}

// Verify *DB satisfies FileIndex at compile time.
var _ FileIndex = (*DB)(nil)
