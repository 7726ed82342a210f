// Package rod provides a browser-backed implementation of docmirror.Fetcher
// for documentation sites that render their content with JavaScript.
package rod

import (
	"context"
	"net/http"

	"github.com/fwojciec/docmirror"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure Fetcher implements docmirror.Fetcher at compile time.
var _ docmirror.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
//
// The browser has no access to response headers, so results carry no ETag
// or Last-Modified validators; change detection for rendered pages relies
// on content hashing alone.
type Fetcher struct {
	browser *rod.Browser
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher() (*Fetcher, error) {
	l := launcher.New().Headless(true)
	u, err := l.Launch()
	if err != nil {
		return nil, docmirror.Errorf(docmirror.EUNAVAILABLE, "launching browser: %v", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill() // Clean up launched process on connection failure
		return nil, docmirror.Errorf(docmirror.EUNAVAILABLE, "connecting to browser: %v", err)
	}

	return &Fetcher{browser: browser}, nil
}

// Fetch navigates to the URL and returns the rendered HTML. A page that
// renders at all is reported with status 200; navigation failures are
// returned as errors.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*docmirror.FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := f.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, docmirror.Errorf(docmirror.EUNAVAILABLE, "creating page: %v", err)
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return nil, docmirror.Errorf(docmirror.EUNAVAILABLE, "navigating to %s: %v", url, err)
	}

	if err := page.WaitLoad(); err != nil {
		return nil, docmirror.Errorf(docmirror.EUNAVAILABLE, "waiting for %s to load: %v", url, err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, docmirror.Errorf(docmirror.EINTERNAL, "reading rendered HTML: %v", err)
	}

	return &docmirror.FetchResult{
		Status: http.StatusOK,
		Body:   html,
	}, nil
}

// Close releases browser resources.
func (f *Fetcher) Close() error {
	return f.browser.Close()
}
