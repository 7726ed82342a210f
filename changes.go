package docmirror

import "context"

// ChangeKind identifies what changed on a page between two runs. Kinds are
// evaluated in priority order; etag fires only when the content hash did
// not, and last_modified only when no other signal fired.
type ChangeKind string

// Change kinds, in detection priority order.
const (
	ChangeContent      ChangeKind = "content"
	ChangeTitle        ChangeKind = "title"
	ChangeStatus       ChangeKind = "status"
	ChangeETag         ChangeKind = "etag"
	ChangeLastModified ChangeKind = "last_modified"
)

// PageRef identifies a page within a change set.
type PageRef struct {
	URL   string
	Title string
}

// PageChange is a modified page with the ordered list of triggered signals.
type PageChange struct {
	URL     string
	Title   string
	Changes []ChangeKind
}

// ChangeSet partitions the union of previous and current manifest URLs into
// four disjoint, exhaustive groups.
type ChangeSet struct {
	Added     []PageRef
	Modified  []PageChange
	Removed   []PageRef
	Unchanged []PageRef
}

// Total returns the number of added, modified and removed pages.
func (c *ChangeSet) Total() int {
	return len(c.Added) + len(c.Modified) + len(c.Removed)
}

// Differ computes the change set between two source manifests.
type Differ interface {
	Diff(previous, current []SourceEntry) *ChangeSet
}

// ChangeTracker persists change history between runs for one project. Load
// must be called before the run replaces the prior output tree; Record is
// called after the new tree is committed.
type ChangeTracker interface {
	// Load reads the previous run's source manifest. A missing manifest is
	// normal first-run behavior and yields an empty baseline, not an error.
	Load(ctx context.Context) ([]SourceEntry, error)

	// Record diffs current against the loaded baseline, appends a changelog
	// entry, and returns the change set with its version label.
	Record(ctx context.Context, current []SourceEntry) (*ChangeSet, string, error)
}
