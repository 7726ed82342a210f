package docmirror_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fwojciec/docmirror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := docmirror.Errorf(docmirror.ENOTFOUND, "page %q not found", "intro")

	assert.Equal(t, docmirror.ENOTFOUND, docmirror.ErrorCode(err))
	assert.Equal(t, "page \"intro\" not found", docmirror.ErrorMessage(err))
}

func TestErrorCode(t *testing.T) {
	t.Parallel()

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, docmirror.ErrorCode(nil))
	})

	t.Run("foreign error maps to internal", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, docmirror.EINTERNAL, docmirror.ErrorCode(errors.New("boom")))
	})

	t.Run("wrapped application error", func(t *testing.T) {
		t.Parallel()
		inner := docmirror.Errorf(docmirror.EINVALID, "bad input")
		wrapped := fmt.Errorf("loading manifest: %w", inner)
		assert.Equal(t, docmirror.EINVALID, docmirror.ErrorCode(wrapped))
	})
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, docmirror.ErrorMessage(nil))
}

func TestManifest_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		manifest docmirror.Manifest
		wantErr  bool
	}{
		{
			name:     "valid",
			manifest: docmirror.Manifest{Name: "x", URL: "https://x.com/docs/"},
		},
		{
			name:     "missing name",
			manifest: docmirror.Manifest{URL: "https://x.com/docs/"},
			wantErr:  true,
		},
		{
			name:     "missing url",
			manifest: docmirror.Manifest{Name: "x"},
			wantErr:  true,
		},
		{
			name:     "relative url",
			manifest: docmirror.Manifest{Name: "x", URL: "/docs/"},
			wantErr:  true,
		},
		{
			name: "unknown output mode",
			manifest: docmirror.Manifest{
				Name: "x", URL: "https://x.com/docs/",
				Output: docmirror.OutputOptions{Mode: "zip"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.manifest.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, docmirror.EINVALID, docmirror.ErrorCode(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestManifest_ValidateDefaultsOutputMode(t *testing.T) {
	t.Parallel()

	m := docmirror.Manifest{Name: "x", URL: "https://x.com/docs/"}
	require.NoError(t, m.Validate())
	assert.Equal(t, docmirror.OutputDirectory, m.Output.Mode)
}

func TestParseManifest(t *testing.T) {
	t.Parallel()

	t.Run("valid JSON", func(t *testing.T) {
		t.Parallel()

		m, err := docmirror.ParseManifest([]byte(`{"name": "x", "url": "https://x.com/docs/", "output": {"mode": "bundle"}}`))
		require.NoError(t, err)
		assert.Equal(t, "x", m.Name)
		assert.Equal(t, docmirror.OutputBundle, m.Output.Mode)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		t.Parallel()

		_, err := docmirror.ParseManifest([]byte(`{not json`))
		require.Error(t, err)
		assert.Equal(t, docmirror.EINVALID, docmirror.ErrorCode(err))
	})
}

func TestSourceEntryFromPage(t *testing.T) {
	t.Parallel()

	fetched := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	page := &docmirror.Page{
		URL:          "https://x.com/docs/a",
		Title:        "A",
		Order:        3,
		FetchedAt:    fetched,
		ETag:         `"v1"`,
		LastModified: "Mon, 01 Jan 2026 00:00:00 GMT",
		ContentHash:  "abc123",
		Status:       200,
	}

	entry := docmirror.SourceEntryFromPage(page)
	assert.Equal(t, "https://x.com/docs/a", entry.URL)
	assert.Equal(t, "2026-08-26T12:00:00Z", entry.FetchedAt)
	assert.Equal(t, "abc123", entry.Hash)
	assert.Equal(t, 3, entry.Order)
}

func TestChangeSet_Total(t *testing.T) {
	t.Parallel()

	cs := docmirror.ChangeSet{
		Added:     []docmirror.PageRef{{URL: "a"}},
		Modified:  []docmirror.PageChange{{URL: "b"}},
		Removed:   []docmirror.PageRef{{URL: "c"}, {URL: "d"}},
		Unchanged: []docmirror.PageRef{{URL: "e"}},
	}
	assert.Equal(t, 4, cs.Total())
}

func TestDiscoveredPage_Prefetched(t *testing.T) {
	t.Parallel()

	assert.False(t, (&docmirror.DiscoveredPage{URL: "https://x.com/docs/a"}).Prefetched())
	assert.True(t, (&docmirror.DiscoveredPage{URL: "https://x.com/docs/a", Body: "<p>x</p>"}).Prefetched())
}

func TestRun_Validate(t *testing.T) {
	t.Parallel()

	valid := docmirror.Run{Project: "x", SourceURL: "https://x.com/docs/"}
	assert.NoError(t, valid.Validate())

	noProject := docmirror.Run{SourceURL: "https://x.com/docs/"}
	assert.Error(t, noProject.Validate())

	noURL := docmirror.Run{Project: "x"}
	assert.Error(t, noURL.Validate())
}
