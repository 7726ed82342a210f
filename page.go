package docmirror

import (
	"context"
	"time"
)

// Sentinel values for pages whose URL carries no ordering information.
const (
	UnorderedPosition = 999
	DefaultChapter    = "Other"
)

// Page represents one discovered and fetched documentation page as it moves
// through the pipeline. A Page is created when a discovered URL is fetched,
// mutated in place through the normalize and convert stages, and becomes
// immutable once written to disk. The next run creates a fresh Page for the
// same URL and compares it against the persisted prior record.
type Page struct {
	URL          string
	Status       int
	FetchedAt    time.Time
	ETag         string
	LastModified string

	Title string

	// Progressive transformation. RawHTML is cleared after conversion to
	// bound memory on large sites.
	RawHTML     string
	CleanedHTML string
	Markdown    string

	// Discovery-assigned position within the chapter.
	Order   int
	Chapter string

	// Hash of the whitespace-normalized cleaned HTML, used for change
	// detection between runs.
	ContentHash string
}

// Validate returns an error if the page contains invalid fields.
func (p *Page) Validate() error {
	if p.URL == "" {
		return Errorf(EINVALID, "page URL required")
	}
	return nil
}

// FetchResult holds the response for a single fetched URL. A result is
// returned for any completed HTTP exchange, including error statuses;
// fetch implementations return an error only for transport-level failures.
type FetchResult struct {
	Status       int
	ETag         string
	LastModified string
	Body         string
}

// Fetcher retrieves documents over the network. It is the supplied
// fetch-and-parse capability the pipeline consumes; implementations handle
// timeouts and response-size ceilings.
type Fetcher interface {
	// Fetch retrieves the given URL. The context controls timeout and
	// cancellation.
	Fetch(ctx context.Context, url string) (*FetchResult, error)

	// Close releases any resources held by the fetcher.
	Close() error
}

// ExtractResult holds the title and content area extracted from a page.
type ExtractResult struct {
	// Title is the page heading text.
	Title string

	// ContentHTML is the main content area, still un-normalized.
	// Empty when no content selector matched.
	ContentHTML string
}

// Extractor locates the title and main content area within raw page HTML.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}

// Normalizer cleans extracted content HTML in preparation for Markdown
// conversion: boilerplate removal, heading repair, code block and admonition
// normalization, and URL absolutization. Implementations are pure functions
// of (html, pageURL) with no side effects.
type Normalizer interface {
	Normalize(html, pageURL string) (string, error)
}

// Attribution identifies the origin of a converted page for the
// source-attribution trailer.
type Attribution struct {
	URL       string
	FetchedAt time.Time
}

// Converter converts normalized HTML into final Markdown text.
type Converter interface {
	// Convert transforms cleaned HTML into Markdown and appends a
	// source-attribution trailer. A page with no content yields an empty
	// body but still receives the trailer.
	Convert(html string, src Attribution) (string, error)
}

// DomainLimiter provides per-domain rate limiting for fetches.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain, or
	// the context is canceled.
	Wait(ctx context.Context, domain string) error
}

// LinkExtractor extracts same-host link URLs from page HTML, used by the
// crawl-fallback discovery strategy.
type LinkExtractor interface {
	// ExtractLinks parses HTML and returns absolute same-host URLs resolved
	// against baseURL, in document order, capped at limit (0 = no cap).
	ExtractLinks(html, baseURL string, limit int) ([]string, error)
}
