package discover

import (
	"sync"

	"github.com/fwojciec/docmirror"
)

// Record is the per-run discovery bookkeeping: the claimed URL set, the
// filter partition counters, and accumulated discovery errors. All methods
// are safe for concurrent use; claims and counter updates are atomic with
// respect to each other.
type Record struct {
	mu      sync.Mutex
	claimed map[string]bool
	stats   docmirror.DiscoveryStats
	errors  []docmirror.DiscoveryError
}

// NewRecord creates an empty Record.
func NewRecord() *Record {
	return &Record{claimed: make(map[string]bool)}
}

// TryClaim marks url as discovered. It returns false if the URL was
// already claimed, so each URL is scheduled exactly once.
func (r *Record) TryClaim(url string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.claimed[url] {
		return false
	}
	r.claimed[url] = true
	return true
}

// CountSitemapURL records the filter outcome for one sitemap URL. Exactly
// one of the outcome methods must be called per URL so the partition stays
// exhaustive.
func (r *Record) CountSitemapURL(outcome filterOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.TotalSitemapURLs++
	switch outcome {
	case outcomeAccepted:
		r.stats.Accepted++
		r.stats.SitemapDiscovered++
	case outcomeSkippedScope:
		r.stats.SkippedScope++
	case outcomeSkippedNotDoc:
		r.stats.SkippedNotDoc++
	case outcomeSkippedDuplicate:
		r.stats.SkippedDuplicate++
	}
}

// CountCrawlAccepted records one page accepted by the crawl fallback.
func (r *Record) CountCrawlAccepted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.Accepted++
	r.stats.CrawlDiscovered++
}

// AddError appends a non-fatal discovery error.
func (r *Record) AddError(url string, kind docmirror.DiscoveryErrorKind, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, docmirror.DiscoveryError{
		URL:     url,
		Kind:    kind,
		Message: message,
	})
}

// Stats returns a copy of the partition counters.
func (r *Record) Stats() docmirror.DiscoveryStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Errors returns the accumulated discovery errors.
func (r *Record) Errors() []docmirror.DiscoveryError {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]docmirror.DiscoveryError, len(r.errors))
	copy(out, r.errors)
	return out
}

type filterOutcome int

const (
	outcomeAccepted filterOutcome = iota
	outcomeSkippedScope
	outcomeSkippedNotDoc
	outcomeSkippedDuplicate
)
