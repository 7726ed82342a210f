// Package crawl orchestrates a scrape run: discovery, concurrent page
// fetching, the normalize/convert pipeline, and assembly of the output
// tree, with per-domain rate limiting and retry.
package crawl

import (
	"context"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/fwojciec/docmirror"
	"golang.org/x/sync/errgroup"
)

// maxErrorExamples bounds how many example URLs the error summary keeps
// per failure kind.
const maxErrorExamples = 5

// Runner coordinates one scrape run against a documentation site.
type Runner struct {
	Discoverer docmirror.Discoverer
	Fetcher    docmirror.Fetcher
	Extractor  docmirror.Extractor
	Normalizer docmirror.Normalizer
	Converter  docmirror.Converter
	Assembler  docmirror.Assembler

	// Tracker, when set, diffs the run against the previous manifest and
	// records a changelog entry.
	Tracker docmirror.ChangeTracker

	// Limiter, when set, paces fetches per domain.
	Limiter docmirror.DomainLimiter

	Concurrency int
	RetryDelays []time.Duration
}

// Result holds the outcome of a scrape run.
type Result struct {
	Found        int
	Scraped      int
	Failed       int
	FilesWritten int

	// DiscoveryFailed is set when neither sitemaps nor the crawl fallback
	// produced any documentation URLs.
	DiscoveryFailed bool

	Source docmirror.DiscoverySource

	// Discovery is the full discovery outcome, kept for the run summary.
	Discovery *docmirror.Discovery

	// Changes and Version are set when a Tracker is configured.
	Changes *docmirror.ChangeSet
	Version string

	Errors *ErrorSummary
}

// ErrorSummary aggregates run failures by kind, keeping a bounded number
// of example URLs for each.
type ErrorSummary struct {
	Counts   map[string]int      `json:"counts"`
	Examples map[string][]string `json:"examples"`
}

// NewErrorSummary creates an empty summary.
func NewErrorSummary() *ErrorSummary {
	return &ErrorSummary{
		Counts:   make(map[string]int),
		Examples: make(map[string][]string),
	}
}

// Record counts one failure of the given kind.
func (s *ErrorSummary) Record(kind, url string) {
	s.Counts[kind]++
	if len(s.Examples[kind]) < maxErrorExamples {
		s.Examples[kind] = append(s.Examples[kind], url)
	}
}

// Total returns the total failure count across kinds.
func (s *ErrorSummary) Total() int {
	total := 0
	for _, n := range s.Counts {
		total += n
	}
	return total
}

// ProgressEvent reports progress during a run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting run progress.
type ProgressFunc func(event ProgressEvent)

// pageResult holds the outcome of processing a single discovered page.
type pageResult struct {
	url  string
	kind string
	page *docmirror.Page
	err  error
}

// Failure kinds for the error summary.
const (
	failFetch   = "fetch"
	failStatus  = "status"
	failExtract = "extract"
	failConvert = "convert"
	failWrite   = "write"
)

// Run executes a full scrape of the manifest's site. Page processing runs
// concurrently; writes go through a single coordinator so each page is
// persisted as soon as it converts. Cancellation stops dispatch, finalizes
// whatever was written, and returns the context error alongside the
// partial result.
func (r *Runner) Run(ctx context.Context, m *docmirror.Manifest, progress ProgressFunc) (*Result, error) {
	result := &Result{Errors: NewErrorSummary()}

	// The baseline must be captured before assembly replaces the prior
	// output tree.
	if r.Tracker != nil {
		if _, err := r.Tracker.Load(ctx); err != nil {
			return nil, err
		}
	}

	disc, err := r.Discoverer.Discover(ctx, m.URL)
	if err != nil {
		return nil, err
	}
	result.Source = disc.Source
	result.Discovery = disc
	result.Found = len(disc.Pages)

	if disc.CompleteFailure {
		result.DiscoveryFailed = true
		_ = r.Assembler.Abort()
		return result, docmirror.Errorf(docmirror.EDISCOVERY,
			"no documentation pages found at %s", m.URL)
	}

	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	total := len(disc.Pages)
	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: total})
	}

	resultCh := make(chan pageResult, concurrency)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for _, dp := range disc.Pages {
			dp := dp
			g.Go(func() error {
				resultCh <- r.processPage(gctx, dp)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	// Single-writer coordinator. Pages are written as they complete; the
	// assembler orders the index deterministically at finalize time.
	var completed atomic.Int64
	for pr := range resultCh {
		completed.Add(1)

		if pr.err != nil {
			result.Failed++
			result.Errors.Record(pr.kind, pr.url)
			if progress != nil {
				progress(ProgressEvent{
					Type:      ProgressFailed,
					Completed: int(completed.Load()),
					Total:     total,
					URL:       pr.url,
					Error:     pr.err,
				})
			}
			continue
		}

		if err := r.Assembler.WritePage(ctx, pr.page); err != nil {
			result.Failed++
			result.Errors.Record(failWrite, pr.url)
			if progress != nil {
				progress(ProgressEvent{
					Type:      ProgressFailed,
					Completed: int(completed.Load()),
					Total:     total,
					URL:       pr.url,
					Error:     err,
				})
			}
			continue
		}

		result.Scraped++
		if progress != nil {
			progress(ProgressEvent{
				Type:      ProgressCompleted,
				Completed: int(completed.Load()),
				Total:     total,
				URL:       pr.url,
			})
		}
	}

	// Partial output from a canceled run is still committed.
	assembled, err := r.Assembler.Finalize(ctx)
	if err != nil {
		return result, err
	}
	// Skipped pages already surfaced as WritePage errors in the
	// coordinator loop, so they are not counted again here.
	result.FilesWritten = assembled.FilesWritten

	if r.Tracker != nil && !assembled.Empty {
		cs, version, err := r.Tracker.Record(ctx, assembled.Sources)
		if err != nil {
			return result, err
		}
		result.Changes = cs
		result.Version = version
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})
	}

	if ctx.Err() != nil {
		return result, ctx.Err()
	}
	return result, nil
}

// processPage runs one discovered page through fetch, extract, normalize
// and convert. Pages discovered by the crawl fallback carry a prefetched
// body and skip the network round trip.
func (r *Runner) processPage(ctx context.Context, dp docmirror.DiscoveredPage) pageResult {
	pr := pageResult{url: dp.URL}

	page := &docmirror.Page{
		URL:     dp.URL,
		Chapter: dp.Chapter,
		Order:   dp.Order,
	}

	if dp.Prefetched() {
		page.RawHTML = dp.Body
		page.Status = dp.Status
		page.ETag = dp.ETag
		page.LastModified = dp.LastModified
		page.FetchedAt = time.Now().UTC()
	} else {
		if r.Limiter != nil {
			u, err := url.Parse(dp.URL)
			if err != nil {
				pr.kind = failFetch
				pr.err = docmirror.Errorf(docmirror.EINVALID, "invalid page URL %q: %v", dp.URL, err)
				return pr
			}
			if err := r.Limiter.Wait(ctx, u.Host); err != nil {
				pr.kind = failFetch
				pr.err = err
				return pr
			}
		}

		delays := r.RetryDelays
		if delays == nil {
			delays = DefaultRetryDelays()
		}
		res, err := FetchWithRetryDelays(ctx, dp.URL, r.Fetcher.Fetch, nil, delays)
		if err != nil {
			pr.kind = failFetch
			pr.err = err
			return pr
		}
		page.RawHTML = res.Body
		page.Status = res.Status
		page.ETag = res.ETag
		page.LastModified = res.LastModified
		page.FetchedAt = time.Now().UTC()
	}

	if page.Status < 200 || page.Status >= 300 {
		pr.kind = failStatus
		pr.err = docmirror.Errorf(docmirror.EUNAVAILABLE, "%s returned status %d", dp.URL, page.Status)
		return pr
	}

	extracted, err := r.Extractor.Extract(page.RawHTML)
	if err != nil {
		pr.kind = failExtract
		pr.err = err
		return pr
	}
	page.Title = extracted.Title

	cleaned, err := r.Normalizer.Normalize(extracted.ContentHTML, dp.URL)
	if err != nil {
		pr.kind = failExtract
		pr.err = err
		return pr
	}
	page.CleanedHTML = cleaned
	page.ContentHash = ContentHash(cleaned)

	markdown, err := r.Converter.Convert(cleaned, docmirror.Attribution{
		URL:       dp.URL,
		FetchedAt: page.FetchedAt,
	})
	if err != nil {
		pr.kind = failConvert
		pr.err = err
		return pr
	}
	page.Markdown = markdown
	page.RawHTML = ""

	pr.page = page
	return pr
}
