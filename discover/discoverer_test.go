package discover_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/fwojciec/docmirror"
	"github.com/fwojciec/docmirror/discover"
	"github.com/fwojciec/docmirror/goquery"
	"github.com/fwojciec/docmirror/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// siteFetcher serves canned responses by URL; anything else is a
// transport failure.
func siteFetcher(responses map[string]*docmirror.FetchResult) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) (*docmirror.FetchResult, error) {
			if res, ok := responses[url]; ok {
				return res, nil
			}
			return nil, docmirror.Errorf(docmirror.EUNAVAILABLE, "request to %s failed", url)
		},
	}
}

func ok(body string) *docmirror.FetchResult {
	return &docmirror.FetchResult{Status: http.StatusOK, Body: body}
}

func urlset(urls ...string) string {
	s := `<?xml version="1.0" encoding="UTF-8"?><urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`
	for _, u := range urls {
		s += "<url><loc>" + u + "</loc></url>"
	}
	return s + "</urlset>"
}

func TestDiscoverer_SitemapFromRobots(t *testing.T) {
	t.Parallel()

	fetcher := siteFetcher(map[string]*docmirror.FetchResult{
		"https://example.com/robots.txt": ok("User-agent: *\nSitemap: https://example.com/custom-sitemap.xml\n"),
		"https://example.com/custom-sitemap.xml": ok(urlset(
			"https://example.com/docs/guide/intro",
			"https://example.com/docs/guide/advanced",
		)),
	})

	d := discover.NewDiscoverer(fetcher, goquery.NewLinkExtractor())
	disc, err := d.Discover(context.Background(), "https://example.com")
	require.NoError(t, err)

	assert.Equal(t, docmirror.SourceSitemap, disc.Source)
	assert.False(t, disc.CompleteFailure)
	require.Len(t, disc.Pages, 2)
	assert.Equal(t, "Guide", disc.Pages[0].Chapter)
}

func TestDiscoverer_FilterPartitionIsExhaustive(t *testing.T) {
	t.Parallel()

	fetcher := siteFetcher(map[string]*docmirror.FetchResult{
		"https://example.com/robots.txt": ok("Sitemap: https://example.com/sitemap.xml\n"),
		"https://example.com/sitemap.xml": ok(urlset(
			"https://example.com/docs/guide/intro",
			"https://example.com/docs/guide/advanced",
			"https://example.com/docs/guide/intro", // duplicate
			"https://example.com/blog/announcement",
			"https://other.example.org/docs/elsewhere",
		)),
	})

	d := discover.NewDiscoverer(fetcher, goquery.NewLinkExtractor())
	disc, err := d.Discover(context.Background(), "https://example.com")
	require.NoError(t, err)

	stats := disc.Stats
	assert.Equal(t, 5, stats.TotalSitemapURLs)
	assert.Equal(t, 2, stats.Accepted)
	assert.Equal(t, 1, stats.SkippedScope)
	assert.Equal(t, 1, stats.SkippedNotDoc)
	assert.Equal(t, 1, stats.SkippedDuplicate)
	assert.Equal(t, stats.TotalSitemapURLs,
		stats.Accepted+stats.SkippedScope+stats.SkippedNotDoc+stats.SkippedDuplicate)
}

func TestDiscoverer_TwoDocsOneBlog(t *testing.T) {
	t.Parallel()

	fetcher := siteFetcher(map[string]*docmirror.FetchResult{
		"https://example.com/robots.txt": ok("Sitemap: https://example.com/sitemap.xml\n"),
		"https://example.com/sitemap.xml": ok(urlset(
			"https://example.com/docs/guide/setup",
			"https://example.com/blog/news",
			"https://example.com/docs/guide/install",
		)),
	})

	d := discover.NewDiscoverer(fetcher, goquery.NewLinkExtractor())
	disc, err := d.Discover(context.Background(), "https://example.com")
	require.NoError(t, err)

	require.Len(t, disc.Pages, 2)
	assert.Equal(t, 1, disc.Stats.SkippedNotDoc)

	// Dense 0-based order within the chapter, sorted by URL.
	assert.Equal(t, "Guide", disc.Pages[0].Chapter)
	assert.Equal(t, "https://example.com/docs/guide/install", disc.Pages[0].URL)
	assert.Equal(t, 0, disc.Pages[0].Order)
	assert.Equal(t, "https://example.com/docs/guide/setup", disc.Pages[1].URL)
	assert.Equal(t, 1, disc.Pages[1].Order)
}

func TestDiscoverer_Deterministic(t *testing.T) {
	t.Parallel()

	responses := map[string]*docmirror.FetchResult{
		"https://example.com/robots.txt": ok("Sitemap: https://example.com/sitemap.xml\n"),
		"https://example.com/sitemap.xml": ok(urlset(
			"https://example.com/docs/api/auth",
			"https://example.com/docs/introduction/welcome",
			"https://example.com/docs/faq/billing",
			"https://example.com/docs/api/errors",
		)),
	}

	var first []docmirror.DiscoveredPage
	for i := 0; i < 3; i++ {
		d := discover.NewDiscoverer(siteFetcher(responses), goquery.NewLinkExtractor())
		disc, err := d.Discover(context.Background(), "https://example.com")
		require.NoError(t, err)
		if first == nil {
			first = disc.Pages
			continue
		}
		assert.Equal(t, first, disc.Pages)
	}

	// Lexicon ordering puts Introduction before API before FAQ.
	assert.Equal(t, "Introduction", first[0].Chapter)
	assert.Equal(t, "API", first[1].Chapter)
	assert.Equal(t, "FAQ", first[3].Chapter)
}

func TestDiscoverer_SitemapIndexRecursion(t *testing.T) {
	t.Parallel()

	index := `<?xml version="1.0"?><sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
<sitemap><loc>https://example.com/sitemap-a.xml</loc></sitemap>
<sitemap><loc>https://example.com/sitemap-b.xml</loc></sitemap>
</sitemapindex>`

	fetcher := siteFetcher(map[string]*docmirror.FetchResult{
		"https://example.com/robots.txt":    ok("Sitemap: https://example.com/sitemap.xml\n"),
		"https://example.com/sitemap.xml":   ok(index),
		"https://example.com/sitemap-a.xml": ok(urlset("https://example.com/docs/guide/a")),
		"https://example.com/sitemap-b.xml": ok(urlset("https://example.com/docs/guide/b")),
	})

	d := discover.NewDiscoverer(fetcher, goquery.NewLinkExtractor())
	disc, err := d.Discover(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Len(t, disc.Pages, 2)
}

func TestDiscoverer_MalformedSitemapContributesZero(t *testing.T) {
	t.Parallel()

	fetcher := siteFetcher(map[string]*docmirror.FetchResult{
		"https://example.com/robots.txt": ok(
			"Sitemap: https://example.com/broken.xml\nSitemap: https://example.com/good.xml\n"),
		"https://example.com/broken.xml": ok("<urlset><url><loc>https://example.com/docs/x"),
		"https://example.com/good.xml":   ok(urlset("https://example.com/docs/guide/ok")),
	})

	d := discover.NewDiscoverer(fetcher, goquery.NewLinkExtractor())
	disc, err := d.Discover(context.Background(), "https://example.com")
	require.NoError(t, err)

	assert.Len(t, disc.Pages, 1)
	require.NotEmpty(t, disc.Errors)
	assert.Equal(t, docmirror.DiscoveryErrParse, disc.Errors[0].Kind)
}

func TestDiscoverer_CrawlFallback(t *testing.T) {
	t.Parallel()

	home := `<html><body>
<a href="/docs/guide/intro">intro</a>
<a href="/about">about</a>
</body></html>`
	intro := `<html><body>
<h1>Intro</h1>
<a href="/docs/guide/advanced">advanced</a>
</body></html>`

	fetcher := siteFetcher(map[string]*docmirror.FetchResult{
		"https://example.com":                     ok(home),
		"https://example.com/about":               ok("<html><body>about</body></html>"),
		"https://example.com/docs/guide/intro":    ok(intro),
		"https://example.com/docs/guide/advanced": ok("<html><body><h1>Advanced</h1></body></html>"),
	})

	d := discover.NewDiscoverer(fetcher, goquery.NewLinkExtractor())
	disc, err := d.Discover(context.Background(), "https://example.com")
	require.NoError(t, err)

	assert.Equal(t, docmirror.SourceCrawl, disc.Source)
	assert.False(t, disc.CompleteFailure)
	require.Len(t, disc.Pages, 2)

	// Crawl-discovered pages carry their fetched body.
	assert.True(t, disc.Pages[0].Prefetched())
	assert.Equal(t, "https://example.com/docs/guide/intro", disc.Pages[0].URL)
	assert.Equal(t, 0, disc.Pages[0].Order)
	assert.Equal(t, 1, disc.Pages[1].Order)
	assert.Equal(t, 2, disc.Stats.CrawlDiscovered)
}

func TestDiscoverer_CrawlRespectsURLCap(t *testing.T) {
	t.Parallel()

	responses := map[string]*docmirror.FetchResult{}
	var links string
	for i := 0; i < 10; i++ {
		u := fmt.Sprintf("https://example.com/docs/guide/page-%d", i)
		links += fmt.Sprintf(`<a href="%s">p</a>`, u)
		responses[u] = ok("<html><body><h1>Page</h1></body></html>")
	}
	responses["https://example.com"] = ok("<html><body>" + links + "</body></html>")

	d := discover.NewDiscoverer(siteFetcher(responses), goquery.NewLinkExtractor(),
		discover.WithCrawlLimits(3, 4, 100))
	disc, err := d.Discover(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Len(t, disc.Pages, 4)
}

func TestDiscoverer_CompleteFailure(t *testing.T) {
	t.Parallel()

	// Nothing resolves: robots fails, sitemaps fail, crawl finds nothing.
	fetcher := siteFetcher(map[string]*docmirror.FetchResult{})

	d := discover.NewDiscoverer(fetcher, goquery.NewLinkExtractor())
	disc, err := d.Discover(context.Background(), "https://example.com")
	require.NoError(t, err)

	assert.True(t, disc.CompleteFailure)
	assert.Equal(t, docmirror.SourceNone, disc.Source)
	assert.Empty(t, disc.Pages)

	kinds := make(map[docmirror.DiscoveryErrorKind]int)
	for _, e := range disc.Errors {
		kinds[e.Kind]++
	}
	assert.NotZero(t, kinds[docmirror.DiscoveryErrRobots])
	assert.NotZero(t, kinds[docmirror.DiscoveryErrSitemap])
}

func TestDiscoverer_InvalidBaseURL(t *testing.T) {
	t.Parallel()

	d := discover.NewDiscoverer(siteFetcher(nil), goquery.NewLinkExtractor())
	_, err := d.Discover(context.Background(), "not a url")
	require.Error(t, err)
	assert.Equal(t, docmirror.EINVALID, docmirror.ErrorCode(err))
}
