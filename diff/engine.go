// Package diff computes change sets between source manifests and persists
// a per-domain changelog across runs.
package diff

import (
	"sort"

	"github.com/fwojciec/docmirror"
)

// Ensure Engine implements docmirror.Differ at compile time.
var _ docmirror.Differ = (*Engine)(nil)

// Engine partitions the union of previous and current manifest URLs into
// added, modified, removed and unchanged. It is a pure function of its
// inputs; output slices are sorted by URL for deterministic changelogs.
type Engine struct{}

// NewEngine creates a new Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Diff compares two manifests keyed by URL.
func (e *Engine) Diff(previous, current []docmirror.SourceEntry) *docmirror.ChangeSet {
	prev := entryMap(previous)
	curr := entryMap(current)

	cs := &docmirror.ChangeSet{}

	for _, url := range sortedKeys(curr) {
		c := curr[url]
		p, existed := prev[url]
		if !existed {
			cs.Added = append(cs.Added, docmirror.PageRef{URL: url, Title: c.Title})
			continue
		}
		if kinds := detectChanges(c, p); len(kinds) > 0 {
			cs.Modified = append(cs.Modified, docmirror.PageChange{
				URL:     url,
				Title:   c.Title,
				Changes: kinds,
			})
		} else {
			cs.Unchanged = append(cs.Unchanged, docmirror.PageRef{URL: url, Title: c.Title})
		}
	}

	for _, url := range sortedKeys(prev) {
		if _, ok := curr[url]; !ok {
			cs.Removed = append(cs.Removed, docmirror.PageRef{URL: url, Title: prev[url].Title})
		}
	}

	return cs
}

// detectChanges returns the triggered change signals in priority order.
// ETag fires only when both runs carried one and the content hash did not
// already flag the page; Last-Modified fires only when nothing else did.
func detectChanges(current, previous docmirror.SourceEntry) []docmirror.ChangeKind {
	var kinds []docmirror.ChangeKind

	if current.Hash != "" && previous.Hash != "" && current.Hash != previous.Hash {
		kinds = append(kinds, docmirror.ChangeContent)
	}
	if current.Title != previous.Title {
		kinds = append(kinds, docmirror.ChangeTitle)
	}
	if current.Status != previous.Status {
		kinds = append(kinds, docmirror.ChangeStatus)
	}
	if current.ETag != "" && previous.ETag != "" && current.ETag != previous.ETag {
		if len(kinds) == 0 || kinds[0] != docmirror.ChangeContent {
			kinds = append(kinds, docmirror.ChangeETag)
		}
	}
	if len(kinds) == 0 &&
		current.LastModified != "" && previous.LastModified != "" &&
		current.LastModified != previous.LastModified {
		kinds = append(kinds, docmirror.ChangeLastModified)
	}

	return kinds
}

func entryMap(entries []docmirror.SourceEntry) map[string]docmirror.SourceEntry {
	m := make(map[string]docmirror.SourceEntry, len(entries))
	for _, e := range entries {
		m[e.URL] = e
	}
	return m
}

func sortedKeys(m map[string]docmirror.SourceEntry) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
