package discover

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/fwojciec/docmirror"
)

// Ensure Discoverer implements docmirror.Discoverer at compile time.
var _ docmirror.Discoverer = (*Discoverer)(nil)

// Crawl fallback bounds. Hard backstops against unbounded traversal.
const (
	DefaultCrawlDepth        = 3
	DefaultCrawlMaxURLs      = 500
	DefaultCrawlMaxPageLinks = 100
)

// maxSitemaps caps how many sitemap documents one run will fetch,
// including sitemapindex children.
const maxSitemaps = 50

// state is the position of the discovery state machine.
type state int

const (
	stateDiscovering state = iota
	stateSitemapParsing
	stateCrawlFallback
	stateClosed
)

// Discoverer implements layered page discovery: robots.txt Sitemap
// directives, then well-known sitemap locations, then a bounded
// breadth-first crawl when no sitemap produced an accepted URL.
type Discoverer struct {
	fetcher docmirror.Fetcher
	links   docmirror.LinkExtractor

	policy        Policy
	orderMode     OrderMode
	crawlDepth    int
	crawlMaxURLs  int
	crawlMaxLinks int
}

// Option configures a Discoverer.
type Option func(*Discoverer)

// WithPolicy sets the documentation-URL policy.
func WithPolicy(p Policy) Option {
	return func(d *Discoverer) { d.policy = p }
}

// WithOrderMode sets the chapter ordering mode.
func WithOrderMode(m OrderMode) Option {
	return func(d *Discoverer) { d.orderMode = m }
}

// WithCrawlLimits overrides the crawl fallback bounds. Zero values keep
// the defaults.
func WithCrawlLimits(depth, maxURLs, maxLinksPerPage int) Option {
	return func(d *Discoverer) {
		if depth > 0 {
			d.crawlDepth = depth
		}
		if maxURLs > 0 {
			d.crawlMaxURLs = maxURLs
		}
		if maxLinksPerPage > 0 {
			d.crawlMaxLinks = maxLinksPerPage
		}
	}
}

// NewDiscoverer creates a Discoverer that fetches with fetcher and expands
// the crawl frontier with links.
func NewDiscoverer(fetcher docmirror.Fetcher, links docmirror.LinkExtractor, opts ...Option) *Discoverer {
	d := &Discoverer{
		fetcher:       fetcher,
		links:         links,
		policy:        Policy{Mode: ModeStrict},
		orderMode:     OrderLexicon,
		crawlDepth:    DefaultCrawlDepth,
		crawlMaxURLs:  DefaultCrawlMaxURLs,
		crawlMaxLinks: DefaultCrawlMaxPageLinks,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Discover runs the state machine for baseURL. Individual fetch or parse
// failures are recorded and trigger fallback; they never abort discovery.
// A Discovery with CompleteFailure set means both strategies produced zero
// accepted URLs.
func (d *Discoverer) Discover(ctx context.Context, baseURL string) (*docmirror.Discovery, error) {
	base, err := url.Parse(baseURL)
	if err != nil || !base.IsAbs() || base.Hostname() == "" {
		return nil, docmirror.Errorf(docmirror.EINVALID, "invalid base URL %q", baseURL)
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	rec := NewRecord()

	var pages []docmirror.DiscoveredPage
	source := docmirror.SourceNone

	for st := stateDiscovering; st != stateClosed; {
		switch st {
		case stateDiscovering:
			st = stateSitemapParsing

		case stateSitemapParsing:
			accepted, err := d.collectSitemapURLs(ctx, baseURL, rec)
			if err != nil {
				return nil, err
			}
			if len(accepted) > 0 {
				pages = assignChapters(accepted, d.orderMode)
				source = docmirror.SourceSitemap
				st = stateClosed
				break
			}
			st = stateCrawlFallback

		case stateCrawlFallback:
			crawled, err := d.crawl(ctx, baseURL, rec)
			if err != nil {
				return nil, err
			}
			if len(crawled) > 0 {
				pages = crawled
				source = docmirror.SourceCrawl
			}
			st = stateClosed
		}
	}

	return &docmirror.Discovery{
		Pages:           pages,
		Source:          source,
		Stats:           rec.Stats(),
		Errors:          rec.Errors(),
		CompleteFailure: len(pages) == 0,
	}, nil
}

// sitemapSeeds returns the sitemap URLs to try: robots.txt directives
// when available, otherwise the well-known locations.
func (d *Discoverer) sitemapSeeds(ctx context.Context, baseURL string, rec *Record) []string {
	robotsURL := baseURL + "/robots.txt"

	res, err := d.fetcher.Fetch(ctx, robotsURL)
	switch {
	case err != nil:
		rec.AddError(robotsURL, docmirror.DiscoveryErrRobots, err.Error())
	case res.Status != http.StatusOK:
		rec.AddError(robotsURL, docmirror.DiscoveryErrRobots, fmt.Sprintf("HTTP %d", res.Status))
	default:
		if sitemaps := sitemapsFromRobots(res.Body); len(sitemaps) > 0 {
			return sitemaps
		}
	}

	return []string{
		baseURL + "/sitemap.xml",
		baseURL + "/docs/sitemap.xml",
		baseURL + "/sitemap_index.xml",
	}
}

// sitemapsFromRobots extracts Sitemap: directive values from robots.txt.
func sitemapsFromRobots(body string) []string {
	var sitemaps []string
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(strings.ToLower(line), "sitemap:") {
			if u := strings.TrimSpace(line[len("sitemap:"):]); u != "" {
				sitemaps = append(sitemaps, u)
			}
		}
	}
	return sitemaps
}

// collectSitemapURLs fetches and parses every reachable sitemap, then runs
// each listed URL through the filter chain: in-scope, is-documentation,
// not already claimed. The four outcome counters partition the listed URL
// set exhaustively.
func (d *Discoverer) collectSitemapURLs(ctx context.Context, baseURL string, rec *Record) ([]string, error) {
	seeds := d.sitemapSeeds(ctx, baseURL, rec)

	seen := make(map[string]bool)
	var listed []string
	queue := append([]string(nil), seeds...)

	for len(queue) > 0 && len(seen) < maxSitemaps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sitemapURL := queue[0]
		queue = queue[1:]
		if seen[sitemapURL] {
			continue
		}
		seen[sitemapURL] = true

		res, err := d.fetcher.Fetch(ctx, sitemapURL)
		if err != nil {
			rec.AddError(sitemapURL, docmirror.DiscoveryErrSitemap, err.Error())
			continue
		}
		if res.Status != http.StatusOK {
			rec.AddError(sitemapURL, docmirror.DiscoveryErrSitemap, fmt.Sprintf("HTTP %d", res.Status))
			continue
		}

		contents, err := parseSitemap(res.Body)
		if err != nil {
			rec.AddError(sitemapURL, docmirror.DiscoveryErrParse, err.Error())
			continue
		}

		queue = append(queue, contents.children...)
		listed = append(listed, contents.pageURLs...)
	}

	var accepted []string
	for _, u := range listed {
		switch {
		case !InScope(baseURL, u):
			rec.CountSitemapURL(outcomeSkippedScope)
		case !d.policy.IsDocumentation(u):
			rec.CountSitemapURL(outcomeSkippedNotDoc)
		case !rec.TryClaim(u):
			rec.CountSitemapURL(outcomeSkippedDuplicate)
		default:
			rec.CountSitemapURL(outcomeAccepted)
			accepted = append(accepted, u)
		}
	}
	return accepted, nil
}

// crawl performs the breadth-first fallback traversal from the base URL.
// Pages matching the documentation heuristic are accepted with their
// fetched body attached so the pipeline does not fetch them again.
func (d *Discoverer) crawl(ctx context.Context, baseURL string, rec *Record) ([]docmirror.DiscoveredPage, error) {
	f := newFrontier(uint(d.crawlMaxURLs)*2, 0.001)
	f.push(crawlLink{URL: baseURL, Depth: 0})

	var accepted []docmirror.DiscoveredPage
	chapterSeq := make(map[string]int)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(accepted) >= d.crawlMaxURLs {
			break
		}

		link, ok := f.pop()
		if !ok {
			break
		}

		res, err := d.fetcher.Fetch(ctx, link.URL)
		if err != nil {
			rec.AddError(link.URL, docmirror.DiscoveryErrCrawl, err.Error())
			continue
		}
		if res.Status >= 400 {
			rec.AddError(link.URL, docmirror.DiscoveryErrCrawl, fmt.Sprintf("HTTP %d", res.Status))
			continue
		}

		if d.policy.IsDocumentation(link.URL) && InScope(baseURL, link.URL) && rec.TryClaim(link.URL) {
			info := ExtractChapter(link.URL, d.orderMode)
			order := chapterSeq[info.Chapter]
			chapterSeq[info.Chapter]++

			accepted = append(accepted, docmirror.DiscoveredPage{
				URL:          link.URL,
				Chapter:      info.Chapter,
				Order:        order,
				Body:         res.Body,
				Status:       res.Status,
				ETag:         res.ETag,
				LastModified: res.LastModified,
			})
			rec.CountCrawlAccepted()
		}

		if link.Depth >= d.crawlDepth {
			continue
		}
		found, err := d.links.ExtractLinks(res.Body, link.URL, d.crawlMaxLinks)
		if err != nil {
			rec.AddError(link.URL, docmirror.DiscoveryErrCrawl, err.Error())
			continue
		}
		for _, u := range found {
			if InScope(baseURL, u) {
				f.push(crawlLink{URL: u, Depth: link.Depth + 1})
			}
		}
	}

	return accepted, nil
}

// assignChapters groups accepted sitemap URLs by chapter, sorts each group
// by (heuristic order, url), and assigns a dense 0-based order within the
// chapter. The result is deterministic for a fixed input set.
func assignChapters(urls []string, mode OrderMode) []docmirror.DiscoveredPage {
	type entry struct {
		url  string
		info ChapterInfo
	}

	groups := make(map[string][]entry)
	for _, u := range urls {
		info := ExtractChapter(u, mode)
		groups[info.Chapter] = append(groups[info.Chapter], entry{url: u, info: info})
	}

	chapters := make([]string, 0, len(groups))
	for name := range groups {
		chapters = append(chapters, name)
	}
	sort.Slice(chapters, func(i, j int) bool {
		oi := groups[chapters[i]][0].info.Order
		oj := groups[chapters[j]][0].info.Order
		if oi != oj {
			return oi < oj
		}
		return chapters[i] < chapters[j]
	})

	var pages []docmirror.DiscoveredPage
	for _, name := range chapters {
		entries := groups[name]
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].info.Order != entries[j].info.Order {
				return entries[i].info.Order < entries[j].info.Order
			}
			return entries[i].url < entries[j].url
		})
		for i, e := range entries {
			pages = append(pages, docmirror.DiscoveredPage{
				URL:     e.url,
				Chapter: name,
				Order:   i,
			})
		}
	}
	return pages
}
