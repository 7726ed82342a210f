package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/fwojciec/docmirror"
	"github.com/fwojciec/docmirror/mock"
	docslog "github.com/fwojciec/docmirror/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingDiscoverer_Discover(t *testing.T) {
	t.Parallel()

	t.Run("logs discovery outcome", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Discoverer{
			DiscoverFn: func(ctx context.Context, baseURL string) (*docmirror.Discovery, error) {
				return &docmirror.Discovery{
					Pages: []docmirror.DiscoveredPage{
						{URL: "https://example.com/docs/a"},
						{URL: "https://example.com/docs/b"},
					},
					Source: docmirror.SourceSitemap,
				}, nil
			},
		}

		discoverer := docslog.NewLoggingDiscoverer(inner, logger)
		disc, err := discoverer.Discover(context.Background(), "https://example.com/docs/")

		require.NoError(t, err)
		assert.Len(t, disc.Pages, 2)
		output := buf.String()
		assert.Contains(t, output, "discovery")
		assert.Contains(t, output, "url=https://example.com/docs/")
		assert.Contains(t, output, "pages=2")
		assert.Contains(t, output, "source=sitemap")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs failed discovery", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Discoverer{
			DiscoverFn: func(ctx context.Context, baseURL string) (*docmirror.Discovery, error) {
				return nil, docmirror.Errorf(docmirror.EINVALID, "invalid base URL")
			},
		}

		discoverer := docslog.NewLoggingDiscoverer(inner, logger)
		_, err := discoverer.Discover(context.Background(), "not-a-url")

		require.Error(t, err)
		assert.Contains(t, buf.String(), "pages=0")
	})
}
