// Package fs persists converted pages to their derived filesystem layout
// and produces the run-level index and source manifest.
package fs

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/fwojciec/docmirror"
)

var docsMarkerRe = regexp.MustCompile(`(?i)/docs/(.*)`)

// Characters substituted in derived paths.
var unsafePathChars = strings.NewReplacer("?", "-", "#", "-", ":", "-")

// PagePath converts a page URL into a relative output path. The part of
// the URL path after the /docs/ marker becomes the file path; when no
// marker exists, basePath (the base URL's own path prefix) is tried as a
// fallback. URLs that map to neither are rejected rather than written to
// an arbitrary location.
//
//	https://x.com/a/docs/foo/bar/ -> foo/bar/index.md
//	https://x.com/a/docs/guide    -> guide.md
func PagePath(rawURL, basePath string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", docmirror.Errorf(docmirror.EINVALID, "invalid page URL %q", rawURL)
	}

	rel, found := "", false
	if m := docsMarkerRe.FindStringSubmatch(u.Path); m != nil {
		rel, found = m[1], true
	} else if basePath != "" && basePath != "/" {
		prefix := "/" + strings.Trim(basePath, "/") + "/"
		switch {
		case strings.HasPrefix(u.Path, prefix):
			rel, found = strings.TrimPrefix(u.Path, prefix), true
		case u.Path+"/" == prefix:
			found = true
		}
	}
	if !found {
		return "", docmirror.Errorf(docmirror.ENOTFOUND, "no documentation path in %q", rawURL)
	}

	rel = unsafePathChars.Replace(rel)

	switch {
	case rel == "":
		rel = "index.md"
	case strings.HasSuffix(rel, "/"):
		rel += "index.md"
	case path.Ext(rel) == "":
		rel += ".md"
	}

	// Never allow a derived path to escape the output tree.
	clean := path.Clean(rel)
	if clean == ".." || strings.HasPrefix(clean, "../") || path.IsAbs(clean) {
		return "", docmirror.Errorf(docmirror.EINVALID, "unsafe derived path %q", rel)
	}
	return clean, nil
}
