package main

import (
	"fmt"

	"github.com/fwojciec/docmirror"
)

// Run executes the preview command.
func (c *PreviewCmd) Run(deps *Dependencies) error {
	disc, err := deps.Discoverer.Discover(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docmirror.ErrorMessage(err))
		return err
	}

	for _, page := range disc.Pages {
		fmt.Fprintf(deps.Stdout, "%-24s %3d  %s\n", page.Chapter, page.Order, page.URL)
	}

	fmt.Fprintf(deps.Stdout, "\n%d pages via %s", len(disc.Pages), disc.Source)
	if disc.Stats.TotalSitemapURLs > 0 {
		fmt.Fprintf(deps.Stdout, " (%d sitemap URLs: %d accepted, %d out of scope, %d not docs, %d duplicates)",
			disc.Stats.TotalSitemapURLs, disc.Stats.Accepted, disc.Stats.SkippedScope,
			disc.Stats.SkippedNotDoc, disc.Stats.SkippedDuplicate)
	}
	fmt.Fprintln(deps.Stdout)

	for _, derr := range disc.Errors {
		fmt.Fprintf(deps.Stderr, "  %s %s: %s\n", derr.Kind, derr.URL, derr.Message)
	}

	if disc.CompleteFailure {
		err := docmirror.Errorf(docmirror.EDISCOVERY, "no documentation pages found at %s", c.URL)
		fmt.Fprintf(deps.Stderr, "error: %s\n", docmirror.ErrorMessage(err))
		return err
	}
	return nil
}
