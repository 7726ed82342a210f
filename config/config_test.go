package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/docmirror"
	"github.com/fwojciec/docmirror/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 2.0, cfg.RateLimit)
	assert.Equal(t, "strict", cfg.PolicyMode)
	assert.Equal(t, "lexicon", cfg.OrderMode)
	assert.Equal(t, 3, cfg.CrawlDepth)
	assert.Equal(t, 500, cfg.CrawlMaxURLs)
	assert.Equal(t, "directory", cfg.OutputMode)
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := `
concurrency: 4
policy_mode: broad
output_mode: single
rate_limit: 0.5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, "broad", cfg.PolicyMode)
	assert.Equal(t, "single", cfg.OutputMode)
	assert.Equal(t, 0.5, cfg.RateLimit)

	// Untouched fields keep their defaults.
	assert.Equal(t, "lexicon", cfg.OrderMode)
	assert.Equal(t, 500, cfg.CrawlMaxURLs)
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("concurency: 4\n"), 0644))

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Equal(t, docmirror.EINVALID, docmirror.ErrorCode(err))
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"zero concurrency", "concurrency: 0\n"},
		{"negative rate limit", "rate_limit: -1\n"},
		{"unknown policy mode", "policy_mode: lenient\n"},
		{"unknown order mode", "order_mode: numeric\n"},
		{"unknown output mode", "output_mode: zip\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "settings.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := config.Load(path)
			require.Error(t, err)
			assert.Equal(t, docmirror.EINVALID, docmirror.ErrorCode(err))
		})
	}
}
