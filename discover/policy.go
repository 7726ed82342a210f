// Package discover turns a base URL into an ordered, deduplicated,
// chapter-tagged set of documentation page URLs. It runs an explicit state
// machine: robots.txt sitemap directives, then well-known sitemap
// locations, then a bounded internal-link crawl when sitemaps yield
// nothing.
package discover

import (
	"net/url"
	"strings"
)

// Mode selects how aggressively URLs are classified as documentation.
type Mode string

// Documentation-URL policy modes.
const (
	// ModeStrict accepts only URLs whose path contains /docs/.
	ModeStrict Mode = "strict"

	// ModeBroad accepts an extended set of documentation path markers.
	ModeBroad Mode = "broad"

	// ModePermissive additionally accepts any URL on a documentation
	// subdomain such as docs.example.com.
	ModePermissive Mode = "permissive"
)

// Path markers recognized in broad and permissive modes.
var broadMarkers = []string{
	"/docs/", "/documentation/", "/guide/", "/guides/",
	"/api/", "/reference/", "/manual/", "/handbook/",
	"/learn/", "/tutorial/", "/tutorials/",
}

// Hostname prefixes that mark a whole site as documentation.
var docHostPrefixes = []string{"docs.", "developer.", "developers."}

// Policy decides whether a URL looks like a documentation page.
type Policy struct {
	Mode Mode
}

// IsDocumentation reports whether rawURL matches the policy's
// documentation heuristic.
func (p Policy) IsDocumentation(rawURL string) bool {
	lower := strings.ToLower(rawURL)

	switch p.Mode {
	case ModeBroad:
		return containsAny(lower, broadMarkers)
	case ModePermissive:
		if containsAny(lower, broadMarkers) {
			return true
		}
		u, err := url.Parse(rawURL)
		if err != nil {
			return false
		}
		host := strings.ToLower(u.Hostname())
		for _, prefix := range docHostPrefixes {
			if strings.HasPrefix(host, prefix) {
				return true
			}
		}
		return false
	default:
		return strings.Contains(lower, "/docs/")
	}
}

// InScope reports whether rawURL starts with the base URL.
func InScope(baseURL, rawURL string) bool {
	return strings.HasPrefix(rawURL, strings.TrimSuffix(baseURL, "/"))
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
