package discover

import (
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/docmirror"
)

// sitemapContents is the result of parsing one sitemap document: either a
// list of page URLs (<urlset>) or a list of child sitemaps (<sitemapindex>).
type sitemapContents struct {
	pageURLs []string
	children []string
}

// parseSitemap parses sitemap XML, handling both urlset and sitemapindex
// roots.
func parseSitemap(data string) (*sitemapContents, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(data); err != nil {
		return nil, docmirror.Errorf(docmirror.EINVALID, "parsing sitemap XML: %v", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, docmirror.Errorf(docmirror.EINVALID, "empty sitemap XML")
	}

	contents := &sitemapContents{}

	if root.Tag == "sitemapindex" {
		for _, sm := range root.SelectElements("sitemap") {
			if u := locText(sm); u != "" {
				contents.children = append(contents.children, u)
			}
		}
		return contents, nil
	}

	for _, urlEl := range root.SelectElements("url") {
		if u := locText(urlEl); u != "" {
			contents.pageURLs = append(contents.pageURLs, u)
		}
	}
	return contents, nil
}

func locText(el *etree.Element) string {
	loc := el.SelectElement("loc")
	if loc == nil {
		return ""
	}
	return strings.TrimSpace(loc.Text())
}
