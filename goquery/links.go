package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docmirror"
)

// Ensure LinkExtractor implements docmirror.LinkExtractor at compile time.
var _ docmirror.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor collects same-host hyperlinks from page HTML for crawl
// frontier expansion.
type LinkExtractor struct{}

// NewLinkExtractor creates a new LinkExtractor.
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{}
}

// ExtractLinks returns up to limit absolute same-host URLs found in anchor
// tags, in document order, with fragments stripped and duplicates removed.
// A limit of zero or less means no cap.
func (e *LinkExtractor) ExtractLinks(rawHTML, baseURL string, limit int) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, docmirror.Errorf(docmirror.EINVALID, "failed to parse HTML: %v", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil || !base.IsAbs() {
		return nil, docmirror.Errorf(docmirror.EINVALID, "invalid base URL %q", baseURL)
	}

	seen := make(map[string]bool)
	var links []string

	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || isNonNavigable(href) {
			return true
		}

		abs := resolveAgainst(baseURL, href)
		if abs == "" {
			return true
		}

		u, err := url.Parse(abs)
		if err != nil || !isSameHost(base, u) {
			return true
		}
		u.Fragment = ""
		normalized := u.String()

		if seen[normalized] {
			return true
		}
		seen[normalized] = true
		links = append(links, normalized)

		return limit <= 0 || len(links) < limit
	})

	return links, nil
}

// isNonNavigable reports whether a href value cannot lead to a page.
func isNonNavigable(href string) bool {
	lower := strings.ToLower(href)
	return strings.HasPrefix(lower, "#") ||
		strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "tel:") ||
		strings.HasPrefix(lower, "javascript:") ||
		strings.HasPrefix(lower, "data:")
}

// isSameHost treats www-prefixed and bare hostnames as the same host.
func isSameHost(a, b *url.URL) bool {
	return strings.TrimPrefix(strings.ToLower(a.Hostname()), "www.") ==
		strings.TrimPrefix(strings.ToLower(b.Hostname()), "www.")
}

// resolveAgainst resolves ref relative to base, returning "" when either
// part does not parse.
func resolveAgainst(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	resolved := b.ResolveReference(r)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}
