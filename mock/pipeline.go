package mock

import "github.com/fwojciec/docmirror"

var (
	_ docmirror.Extractor     = (*Extractor)(nil)
	_ docmirror.Normalizer    = (*Normalizer)(nil)
	_ docmirror.Converter     = (*Converter)(nil)
	_ docmirror.LinkExtractor = (*LinkExtractor)(nil)
)

// Extractor is a mock implementation of docmirror.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*docmirror.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*docmirror.ExtractResult, error) {
	return e.ExtractFn(html)
}

// Normalizer is a mock implementation of docmirror.Normalizer.
type Normalizer struct {
	NormalizeFn func(html, pageURL string) (string, error)
}

func (n *Normalizer) Normalize(html, pageURL string) (string, error) {
	return n.NormalizeFn(html, pageURL)
}

// Converter is a mock implementation of docmirror.Converter.
type Converter struct {
	ConvertFn func(html string, src docmirror.Attribution) (string, error)
}

func (c *Converter) Convert(html string, src docmirror.Attribution) (string, error) {
	return c.ConvertFn(html, src)
}

// LinkExtractor is a mock implementation of docmirror.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(html, baseURL string, limit int) ([]string, error)
}

func (l *LinkExtractor) ExtractLinks(html, baseURL string, limit int) ([]string, error) {
	return l.ExtractLinksFn(html, baseURL, limit)
}
