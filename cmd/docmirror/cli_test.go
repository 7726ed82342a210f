package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/docmirror"
	main "github.com/fwojciec/docmirror/cmd/docmirror"
	"github.com/fwojciec/docmirror/config"
	"github.com/fwojciec/docmirror/diff"
	"github.com/fwojciec/docmirror/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLI_HelpShowsAllCommands(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	parser, err := kong.New(cli,
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	require.NoError(t, err)

	_, _ = parser.Parse([]string{"--help"})

	helpOutput := stdout.String()
	for _, cmd := range []string{"scrape", "preview", "runs"} {
		assert.Contains(t, helpOutput, cmd, "Help should mention %s command", cmd)
	}
}

func newScrapeDeps(t *testing.T, pages []docmirror.DiscoveredPage) *main.Dependencies {
	t.Helper()

	cfg := config.Default()
	cfg.OutputDir = t.TempDir()

	return &main.Dependencies{
		Ctx:    context.Background(),
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
		Config: cfg,
		Runs: &mock.RunService{
			CreateRunFn: func(ctx context.Context, run *docmirror.Run) error {
				run.ID = "run-1"
				return nil
			},
			FinishRunFn: func(ctx context.Context, run *docmirror.Run) error { return nil },
		},
		Discoverer: &mock.Discoverer{
			DiscoverFn: func(ctx context.Context, baseURL string) (*docmirror.Discovery, error) {
				return &docmirror.Discovery{
					Pages:           pages,
					Source:          docmirror.SourceSitemap,
					CompleteFailure: len(pages) == 0,
				}, nil
			},
		},
		Fetcher: &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (*docmirror.FetchResult, error) {
				return &docmirror.FetchResult{Status: 200, Body: "<main><h1>Page</h1><p>body</p></main>"}, nil
			},
		},
		Extractor: &mock.Extractor{
			ExtractFn: func(html string) (*docmirror.ExtractResult, error) {
				return &docmirror.ExtractResult{Title: "Page", ContentHTML: html}, nil
			},
		},
		Normalizer: &mock.Normalizer{
			NormalizeFn: func(html, pageURL string) (string, error) { return html, nil },
		},
		Converter: &mock.Converter{
			ConvertFn: func(html string, src docmirror.Attribution) (string, error) {
				return "# Page\n\nbody\n", nil
			},
		},
		Differ: diff.NewEngine(),
	}
}

func TestCmdScrape(t *testing.T) {
	t.Parallel()

	t.Run("scrapes and assembles output tree", func(t *testing.T) {
		t.Parallel()

		deps := newScrapeDeps(t, []docmirror.DiscoveredPage{
			{URL: "https://x.com/docs/guide/intro", Chapter: "Guide", Order: 0},
			{URL: "https://x.com/docs/guide/setup", Chapter: "Guide", Order: 1},
		})

		cmd := &main.ScrapeCmd{Name: "x", URL: "https://x.com/docs/"}
		require.NoError(t, cmd.Run(deps))

		outDir := filepath.Join(deps.Config.OutputDir, "x")
		for _, name := range []string{"README.md", "sources.json", "changelog.md", "guide/intro.md"} {
			_, err := os.Stat(filepath.Join(outDir, name))
			assert.NoError(t, err, "expected %s in output tree", name)
		}

		stdout := deps.Stdout.(*bytes.Buffer).String()
		assert.Contains(t, stdout, "Found 2 pages")
		assert.Contains(t, stdout, "Wrote")
		assert.Contains(t, stdout, "added")

		_, err := os.Stat(filepath.Join(deps.Config.OutputDir, "x.summary.json"))
		assert.NoError(t, err)
	})

	t.Run("requires manifest or name and url", func(t *testing.T) {
		t.Parallel()

		deps := newScrapeDeps(t, nil)
		cmd := &main.ScrapeCmd{Name: "x"}
		err := cmd.Run(deps)
		require.Error(t, err)
		assert.Equal(t, docmirror.EINVALID, docmirror.ErrorCode(err))
	})

	t.Run("reads manifest file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "manifest.json")
		manifest := `{"name": "x", "url": "https://x.com/docs/", "output": {"mode": "directory"}}`
		require.NoError(t, os.WriteFile(path, []byte(manifest), 0644))

		deps := newScrapeDeps(t, []docmirror.DiscoveredPage{
			{URL: "https://x.com/docs/intro", Chapter: "Other", Order: 0},
		})

		cmd := &main.ScrapeCmd{Manifest: path}
		require.NoError(t, cmd.Run(deps))

		_, err := os.Stat(filepath.Join(deps.Config.OutputDir, "x", "intro.md"))
		assert.NoError(t, err)
	})

	t.Run("reports discovery failure", func(t *testing.T) {
		t.Parallel()

		deps := newScrapeDeps(t, nil)
		cmd := &main.ScrapeCmd{Name: "x", URL: "https://x.com/docs/"}
		err := cmd.Run(deps)
		require.Error(t, err)
		assert.Equal(t, docmirror.EDISCOVERY, docmirror.ErrorCode(err))
	})
}

func TestCmdPreview(t *testing.T) {
	t.Parallel()

	t.Run("lists discovered pages with stats", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Discoverer: &mock.Discoverer{
				DiscoverFn: func(ctx context.Context, baseURL string) (*docmirror.Discovery, error) {
					return &docmirror.Discovery{
						Pages: []docmirror.DiscoveredPage{
							{URL: "https://x.com/docs/a", Chapter: "Guide", Order: 0},
						},
						Source: docmirror.SourceSitemap,
						Stats: docmirror.DiscoveryStats{
							TotalSitemapURLs: 3, Accepted: 1, SkippedScope: 1, SkippedNotDoc: 1,
						},
					}, nil
				},
			},
		}

		cmd := &main.PreviewCmd{URL: "https://x.com/docs/"}
		require.NoError(t, cmd.Run(deps))

		out := stdout.String()
		assert.Contains(t, out, "https://x.com/docs/a")
		assert.Contains(t, out, "1 pages via sitemap")
		assert.Contains(t, out, "3 sitemap URLs")
	})

	t.Run("fails when nothing was discovered", func(t *testing.T) {
		t.Parallel()

		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: &bytes.Buffer{},
			Discoverer: &mock.Discoverer{
				DiscoverFn: func(ctx context.Context, baseURL string) (*docmirror.Discovery, error) {
					return &docmirror.Discovery{CompleteFailure: true}, nil
				},
			},
		}

		cmd := &main.PreviewCmd{URL: "https://x.com/docs/"}
		err := cmd.Run(deps)
		require.Error(t, err)
		assert.Equal(t, docmirror.EDISCOVERY, docmirror.ErrorCode(err))
	})
}

func TestCmdRuns(t *testing.T) {
	t.Parallel()

	t.Run("prints run history", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Runs: &mock.RunService{
				FindRunsFn: func(ctx context.Context, filter docmirror.RunFilter) ([]*docmirror.Run, error) {
					return []*docmirror.Run{
						{ID: "1", Project: "x", Found: 10, Scraped: 9, Failed: 1, FilesWritten: 9},
					}, nil
				},
			},
		}

		cmd := &main.RunsCmd{Limit: 20}
		require.NoError(t, cmd.Run(deps))

		out := stdout.String()
		assert.Contains(t, out, "PROJECT")
		assert.Contains(t, out, "x")
		assert.Contains(t, out, "incomplete")
	})

	t.Run("reports empty history", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Runs: &mock.RunService{
				FindRunsFn: func(ctx context.Context, filter docmirror.RunFilter) ([]*docmirror.Run, error) {
					return nil, nil
				},
			},
		}

		cmd := &main.RunsCmd{Limit: 20}
		require.NoError(t, cmd.Run(deps))
		assert.Contains(t, stdout.String(), "No runs recorded.")
	})
}
