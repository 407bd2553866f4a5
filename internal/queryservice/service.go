// Package queryservice mediates between the transport layers (HTTP, MCP)
// and the derived store. Reads go straight to the store; all mutation is
// funneled through the indexer.
package queryservice

import (
	"context"
	"time"

	"github.com/eristoddle/mdquery-sub000/internal/apperr"
	"github.com/eristoddle/mdquery-sub000/internal/index"
	"github.com/eristoddle/mdquery-sub000/internal/indexer"
)

// FileDetail is the full derived representation of one file.
type FileDetail struct {
	Path         string                 `json:"path"`
	Filename     string                 `json:"filename"`
	Directory    string                 `json:"directory"`
	Title        string                 `json:"title,omitempty"`
	ModifiedAt   time.Time              `json:"modified_at"`
	CreatedAt    *time.Time             `json:"created_at,omitempty"`
	SizeBytes    int64                  `json:"size_bytes"`
	Fingerprint  string                 `json:"fingerprint"`
	WordCount    int                    `json:"word_count"`
	HeadingCount int                    `json:"heading_count"`
	IndexedAt    time.Time              `json:"indexed_at"`
	Frontmatter  []index.FrontmatterRow `json:"frontmatter,omitempty"`
	Tags         []index.TagRow         `json:"tags,omitempty"`
	Links        []index.LinkRow        `json:"links,omitempty"`
}

// FileSummary is a lightweight list item.
type FileSummary struct {
	Path         string    `json:"path"`
	Filename     string    `json:"filename"`
	ModifiedAt   time.Time `json:"modified_at"`
	WordCount    int       `json:"word_count"`
	HeadingCount int       `json:"heading_count"`
	IndexedAt    time.Time `json:"indexed_at"`
}

// StatusReport describes cache health for callers deciding whether to rebuild.
type StatusReport struct {
	Valid       bool      `json:"valid"`
	Reason      string    `json:"reason,omitempty"`
	FileCount   int       `json:"file_count"`
	LastUpdated time.Time `json:"last_updated"`
	StorePath   string    `json:"store_path"`
}

// Service coordinates store reads and indexer operations.
type Service struct {
	db *index.DB
	ix *indexer.Indexer
}

// NewService creates a query service.
func NewService(db *index.DB, ix *indexer.Indexer) *Service {
	return &Service{db: db, ix: ix}
}

// GetFile returns the stored record and derived rows for one path.
func (s *Service) GetFile(_ context.Context, path string) (*FileDetail, error) {
	row, err := s.db.GetFile(path)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apperr.ErrNotFound
	}
	fm, err := s.db.FrontmatterFor(path)
	if err != nil {
		return nil, err
	}
	tags, err := s.db.TagsFor(path)
	if err != nil {
		return nil, err
	}
	links, err := s.db.LinksFor(path)
	if err != nil {
		return nil, err
	}

	detail := &FileDetail{
		Path:         row.Path,
		Filename:     row.Filename,
		Directory:    row.Directory,
		ModifiedAt:   row.ModifiedAt,
		CreatedAt:    row.CreatedAt,
		SizeBytes:    row.SizeBytes,
		Fingerprint:  row.Fingerprint,
		WordCount:    row.WordCount,
		HeadingCount: row.HeadingCount,
		IndexedAt:    row.IndexedAt,
		Frontmatter:  fm,
		Tags:         tags,
		Links:        links,
	}
	for _, entry := range fm {
		if entry.Key == "title" {
			detail.Title = entry.Value
		}
	}
	return detail, nil
}

// ListFiles returns a page of indexed files plus the total count.
func (s *Service) ListFiles(_ context.Context, limit, offset int) ([]FileSummary, int, error) {
	rows, total, err := s.db.ListFiles(limit, offset)
	if err != nil {
		return nil, 0, err
	}
	out := make([]FileSummary, len(rows))
	for i, r := range rows {
		out[i] = FileSummary{
			Path:         r.Path,
			Filename:     r.Filename,
			ModifiedAt:   r.ModifiedAt,
			WordCount:    r.WordCount,
			HeadingCount: r.HeadingCount,
			IndexedAt:    r.IndexedAt,
		}
	}
	return out, total, nil
}

// Search runs a full-text query over title, body, and headings.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Tags returns every tag with its file count.
func (s *Service) Tags(_ context.Context) ([]index.TagCount, error) {
	return s.db.TagCounts()
}

// Status evaluates cache validity and returns a health report.
func (s *Service) Status(_ context.Context, maxAge time.Duration) (StatusReport, error) {
	valid, reason := s.db.IsValid(maxAge)
	last, err := s.db.LastUpdated()
	if err != nil {
		return StatusReport{}, err
	}
	_, total, err := s.db.ListFiles(1, 0)
	if err != nil {
		return StatusReport{}, err
	}
	return StatusReport{
		Valid:       valid,
		Reason:      reason,
		FileCount:   total,
		LastUpdated: last,
		StorePath:   s.db.Path(),
	}, nil
}

// IndexDirectory runs an incremental indexing pass. The caller is
// responsible for serializing mutating operations.
func (s *Service) IndexDirectory(_ context.Context, root string, recursive bool) (indexer.Stats, error) {
	return s.ix.IndexDirectory(root, recursive)
}

// SyncDirectory runs a three-way diff sync against disk.
func (s *Service) SyncDirectory(_ context.Context, root string, recursive bool) (indexer.SyncStats, error) {
	return s.ix.SyncDirectory(root, recursive)
}
