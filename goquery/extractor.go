package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docmirror"
)

// Ensure Extractor implements docmirror.Extractor at compile time.
var _ docmirror.Extractor = (*Extractor)(nil)

// DefaultTitleSelectors locate the page title, tried in order.
var DefaultTitleSelectors = []string{"h1", ".title", ".page-title"}

// DefaultContentSelectors locate the main content region, tried in order.
var DefaultContentSelectors = []string{
	"main", "article", ".content", ".prose", ".markdown-body", ".doc-content",
}

// Extractor pulls the title and main content area out of a raw page using
// CSS selectors. When no content selector matches, an optional Fallback
// extractor is consulted before giving up on the whole body.
type Extractor struct {
	TitleSelectors   []string
	ContentSelectors []string

	// Fallback handles pages whose markup matches none of the content
	// selectors. May be nil.
	Fallback docmirror.Extractor
}

// NewExtractor creates an Extractor with the default selector sets.
func NewExtractor() *Extractor {
	return &Extractor{
		TitleSelectors:   DefaultTitleSelectors,
		ContentSelectors: DefaultContentSelectors,
	}
}

// Extract returns the page title and the HTML of the main content region.
// The title falls back to the document <title> text, then to "Untitled".
func (e *Extractor) Extract(rawHTML string) (*docmirror.ExtractResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, docmirror.Errorf(docmirror.EINVALID, "failed to parse HTML: %v", err)
	}

	title := e.extractTitle(doc)

	for _, sel := range e.ContentSelectors {
		s := doc.Find(sel).First()
		if s.Length() == 0 {
			continue
		}
		content, err := s.Html()
		if err != nil {
			return nil, docmirror.Errorf(docmirror.EINTERNAL, "failed to render content: %v", err)
		}
		if strings.TrimSpace(s.Text()) == "" {
			continue
		}
		return &docmirror.ExtractResult{Title: title, ContentHTML: content}, nil
	}

	if e.Fallback != nil {
		res, err := e.Fallback.Extract(rawHTML)
		if err == nil && res != nil && strings.TrimSpace(res.ContentHTML) != "" {
			if res.Title == "" || res.Title == "Untitled" {
				res.Title = title
			}
			return res, nil
		}
	}

	// Last resort: the whole body.
	body, err := doc.Find("body").Html()
	if err != nil {
		return nil, docmirror.Errorf(docmirror.EINTERNAL, "failed to render body: %v", err)
	}
	return &docmirror.ExtractResult{Title: title, ContentHTML: body}, nil
}

func (e *Extractor) extractTitle(doc *goquery.Document) string {
	for _, sel := range e.TitleSelectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	if text := strings.TrimSpace(doc.Find("title").First().Text()); text != "" {
		return text
	}
	return "Untitled"
}
