package docmirror

import "context"

// DiscoverySource records which strategy produced the accepted URL set.
type DiscoverySource string

// Discovery strategies.
const (
	SourceSitemap DiscoverySource = "sitemap"
	SourceCrawl   DiscoverySource = "crawl"
	SourceNone    DiscoverySource = ""
)

// DiscoveredPage is one accepted URL with its deterministic chapter and
// order assignment. Pages found by the crawl fallback carry the body that
// was fetched during traversal so the pipeline does not re-fetch them.
type DiscoveredPage struct {
	URL     string
	Chapter string
	Order   int

	// Set only for crawl-discovered pages.
	Body         string
	Status       int
	ETag         string
	LastModified string
}

// Prefetched reports whether the page body was already fetched during
// discovery.
func (p *DiscoveredPage) Prefetched() bool {
	return p.Body != ""
}

// DiscoveryErrorKind classifies a non-fatal discovery failure.
type DiscoveryErrorKind string

// Discovery error kinds.
const (
	DiscoveryErrRobots  DiscoveryErrorKind = "robots"
	DiscoveryErrSitemap DiscoveryErrorKind = "sitemap"
	DiscoveryErrParse   DiscoveryErrorKind = "parse"
	DiscoveryErrCrawl   DiscoveryErrorKind = "crawl"
)

// DiscoveryError records one failed discovery fetch or parse. Discovery
// errors trigger fallback to the next strategy; they never abort the run.
type DiscoveryError struct {
	URL     string
	Kind    DiscoveryErrorKind
	Message string
}

// DiscoveryStats holds the filter partition counts for one run. The four
// skip/accept counters partition the total sitemap URL set exhaustively.
type DiscoveryStats struct {
	TotalSitemapURLs int
	Accepted         int
	SkippedScope     int
	SkippedNotDoc    int
	SkippedDuplicate int

	SitemapDiscovered int
	CrawlDiscovered   int
}

// Discovery is the outcome of running the discovery state machine for one
// base URL.
type Discovery struct {
	Pages  []DiscoveredPage
	Source DiscoverySource
	Stats  DiscoveryStats
	Errors []DiscoveryError

	// CompleteFailure is set when both the sitemap strategy and the crawl
	// fallback produced zero accepted URLs. It is distinct from a partial
	// "discovered but nothing matched" outcome and must be surfaced to the
	// caller for remediation.
	CompleteFailure bool
}

// Discoverer turns a base URL into an ordered, deduplicated, chapter-tagged
// set of page URLs using a layered fallback strategy: robots.txt sitemap
// directives, then /sitemap.xml, then a bounded internal-link crawl.
type Discoverer interface {
	Discover(ctx context.Context, baseURL string) (*Discovery, error)
}
