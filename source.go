package docmirror

import (
	"context"
	"time"
)

// SourceEntry is the persisted per-page record written into the source
// manifest at run end. Entries are keyed by URL, unique within a
// domain-scoped manifest; the full set from the previous run is the diff
// baseline for the next.
type SourceEntry struct {
	URL          string `json:"url"`
	Title        string `json:"title"`
	Order        int    `json:"order"`
	FetchedAt    string `json:"fetched_at"`
	ETag         string `json:"etag,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
	Hash         string `json:"hash,omitempty"`
	Status       int    `json:"status,omitempty"`
}

// SourceManifest is the machine-readable sources.json document.
type SourceManifest struct {
	GeneratedAt string        `json:"generated_at"`
	TotalPages  int           `json:"total_pages"`
	Project     string        `json:"manifest_name"`
	Sources     []SourceEntry `json:"sources"`
}

// SourceEntryFromPage builds the manifest entry for a converted page.
func SourceEntryFromPage(p *Page) SourceEntry {
	return SourceEntry{
		URL:          p.URL,
		Title:        p.Title,
		Order:        p.Order,
		FetchedAt:    p.FetchedAt.UTC().Format(time.RFC3339),
		ETag:         p.ETag,
		LastModified: p.LastModified,
		Hash:         p.ContentHash,
		Status:       p.Status,
	}
}

// AssembleResult summarizes what the assembler persisted for one run.
type AssembleResult struct {
	FilesWritten int

	// Pages that could not be mapped to a path or failed to write.
	Skipped []string

	// Manifest entries for every page written, in index order.
	Sources []SourceEntry

	// Empty reports the distinct "nothing to assemble" condition: the run
	// completed but no page had content to persist.
	Empty bool
}

// Assembler persists converted pages to their derived filesystem paths and
// produces the run-level index and source manifest. WritePage is safe to
// call from a single coordinator goroutine as page conversions complete;
// writes are immediate per page to bound peak memory.
type Assembler interface {
	// WritePage persists one converted page. A write failure is recorded
	// and returned but must not abort assembly of remaining pages.
	WritePage(ctx context.Context, page *Page) error

	// Finalize writes the index and source manifest and commits the output
	// tree. Partial output from a canceled run is valid output.
	Finalize(ctx context.Context) (*AssembleResult, error)

	// Abort discards any uncommitted output.
	Abort() error
}
