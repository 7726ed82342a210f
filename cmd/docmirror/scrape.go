package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/docmirror"
	"github.com/fwojciec/docmirror/crawl"
	"github.com/fwojciec/docmirror/diff"
	"github.com/fwojciec/docmirror/fs"
)

// Run executes the scrape command.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	m, err := c.manifest()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docmirror.ErrorMessage(err))
		return err
	}

	base, err := url.Parse(m.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: invalid URL %q: %v\n", m.URL, err)
		return err
	}

	outputDir := deps.Config.OutputDir
	assembler := fs.NewAssembler(outputDir, m.Name,
		fs.WithOutputMode(m.Output.Mode),
		fs.WithBasePath(base.Path),
	)
	tracker := diff.NewTracker(filepath.Join(outputDir, m.Name), m.URL, deps.Differ)

	concurrency := deps.Config.Concurrency
	if c.Concurrency > 0 {
		concurrency = c.Concurrency
	}

	runner := &crawl.Runner{
		Discoverer:  deps.Discoverer,
		Fetcher:     deps.Fetcher,
		Extractor:   deps.Extractor,
		Normalizer:  deps.Normalizer,
		Converter:   deps.Converter,
		Assembler:   assembler,
		Tracker:     tracker,
		Limiter:     deps.Limiter,
		Concurrency: concurrency,
	}

	run := &docmirror.Run{Project: m.Name, SourceURL: m.URL, StartedAt: time.Now().UTC()}
	if err := deps.Runs.CreateRun(deps.Ctx, run); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docmirror.ErrorMessage(err))
		return err
	}

	writeProgress := crawl.NewProgressFileWriter(filepath.Join(outputDir, m.Name+".progress.json"))
	progress := func(event crawl.ProgressEvent) {
		writeProgress(event)
		switch event.Type {
		case crawl.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "  Found %d pages\n", event.Total)
		case crawl.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", event.URL, event.Error)
		}
	}

	result, runErr := runner.Run(deps.Ctx, m, progress)

	if result != nil {
		run.Found = result.Found
		run.Scraped = result.Scraped
		run.Failed = result.Failed
		run.FilesWritten = result.FilesWritten
		run.DiscoveryFailed = result.DiscoveryFailed
		if err := deps.Runs.FinishRun(deps.Ctx, run); err != nil {
			fmt.Fprintf(deps.Stderr, "warning: recording run: %s\n", docmirror.ErrorMessage(err))
		}
		if err := crawl.WriteSummary(filepath.Join(outputDir, m.Name+".summary.json"), m, result); err != nil {
			fmt.Fprintf(deps.Stderr, "warning: %s\n", docmirror.ErrorMessage(err))
		}
	}

	if runErr != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docmirror.ErrorMessage(runErr))
		return runErr
	}

	fmt.Fprintf(deps.Stdout, "  Wrote %d files to %s (%d scraped, %d failed)\n",
		result.FilesWritten, filepath.Join(outputDir, m.Name), result.Scraped, result.Failed)
	if result.Changes != nil {
		fmt.Fprintf(deps.Stdout, "  Version %s: +%d added, ~%d modified, -%d removed\n",
			result.Version, len(result.Changes.Added), len(result.Changes.Modified),
			len(result.Changes.Removed))
	}

	return nil
}

// manifest resolves the run configuration from either the manifest file or
// the name+url arguments.
func (c *ScrapeCmd) manifest() (*docmirror.Manifest, error) {
	if c.Manifest != "" {
		data, err := os.ReadFile(c.Manifest)
		if err != nil {
			return nil, docmirror.Errorf(docmirror.EINVALID, "reading manifest %s: %v", c.Manifest, err)
		}
		m, err := docmirror.ParseManifest(data)
		if err != nil {
			return nil, err
		}
		if c.Output != "" {
			m.Output.Mode = docmirror.OutputMode(c.Output)
			if err := m.Validate(); err != nil {
				return nil, err
			}
		}
		return m, nil
	}

	if c.Name == "" || c.URL == "" {
		return nil, docmirror.Errorf(docmirror.EINVALID, "either --manifest or both name and url are required")
	}
	m := &docmirror.Manifest{
		Name:   c.Name,
		URL:    c.URL,
		Output: docmirror.OutputOptions{Mode: docmirror.OutputMode(c.Output)},
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
