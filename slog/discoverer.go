package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docmirror"
)

// Ensure LoggingDiscoverer implements docmirror.Discoverer.
var _ docmirror.Discoverer = (*LoggingDiscoverer)(nil)

// LoggingDiscoverer wraps a Discoverer with debug logging.
type LoggingDiscoverer struct {
	next   docmirror.Discoverer
	logger *slog.Logger
}

// NewLoggingDiscoverer creates a new LoggingDiscoverer.
func NewLoggingDiscoverer(next docmirror.Discoverer, logger *slog.Logger) *LoggingDiscoverer {
	return &LoggingDiscoverer{next: next, logger: logger}
}

// Discover delegates to the wrapped discoverer and logs the outcome.
func (d *LoggingDiscoverer) Discover(ctx context.Context, baseURL string) (disc *docmirror.Discovery, err error) {
	defer func(begin time.Time) {
		pages, source, failures := 0, "", 0
		if disc != nil {
			pages = len(disc.Pages)
			source = string(disc.Source)
			failures = len(disc.Errors)
		}
		d.logger.Info("discovery",
			"url", baseURL,
			"pages", pages,
			"source", source,
			"failures", failures,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return d.next.Discover(ctx, baseURL)
}
