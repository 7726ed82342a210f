package discover_test

import (
	"testing"

	"github.com/fwojciec/docmirror"
	"github.com/fwojciec/docmirror/discover"
	"github.com/stretchr/testify/assert"
)

func TestExtractChapter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		url         string
		mode        discover.OrderMode
		wantChapter string
		wantOrder   int
	}{
		{
			name:        "segment after docs marker",
			url:         "https://example.com/docs/getting-started/install",
			mode:        discover.OrderLexicon,
			wantChapter: "Getting Started",
			wantOrder:   3,
		},
		{
			name:        "abbreviation expanded",
			url:         "https://example.com/docs/api/auth",
			mode:        discover.OrderLexicon,
			wantChapter: "API",
			wantOrder:   60,
		},
		{
			name:        "unknown chapter falls back past lexicon",
			url:         "https://example.com/docs/widgets/intro",
			mode:        discover.OrderLexicon,
			wantChapter: "Widgets",
			wantOrder:   500 + int('w'),
		},
		{
			name:        "alpha mode uses first byte",
			url:         "https://example.com/docs/guide/intro",
			mode:        discover.OrderAlpha,
			wantChapter: "Guide",
			wantOrder:   int('g'),
		},
		{
			name:        "no marker",
			url:         "https://example.com/blog/post",
			mode:        discover.OrderLexicon,
			wantChapter: docmirror.DefaultChapter,
			wantOrder:   docmirror.UnorderedPosition,
		},
		{
			name:        "marker with nothing after it",
			url:         "https://example.com/docs/",
			mode:        discover.OrderLexicon,
			wantChapter: docmirror.DefaultChapter,
			wantOrder:   docmirror.UnorderedPosition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			info := discover.ExtractChapter(tt.url, tt.mode)
			assert.Equal(t, tt.wantChapter, info.Chapter)
			assert.Equal(t, tt.wantOrder, info.Order)
		})
	}
}

func TestFormatSlug(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Getting Started", discover.FormatSlug("getting-started"))
	assert.Equal(t, "HTTP API Reference", discover.FormatSlug("http_api_reference"))
	assert.Equal(t, "CLI", discover.FormatSlug("cli"))
}

func TestPolicy_IsDocumentation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		mode discover.Mode
		url  string
		want bool
	}{
		{"strict accepts /docs/", discover.ModeStrict, "https://example.com/docs/guide", true},
		{"strict rejects /guide/", discover.ModeStrict, "https://example.com/guide/intro", false},
		{"broad accepts /guide/", discover.ModeBroad, "https://example.com/guide/intro", true},
		{"broad rejects /blog/", discover.ModeBroad, "https://example.com/blog/post", false},
		{"permissive accepts docs subdomain", discover.ModePermissive, "https://docs.example.com/anything", true},
		{"permissive rejects plain host", discover.ModePermissive, "https://example.com/blog/post", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := discover.Policy{Mode: tt.mode}
			assert.Equal(t, tt.want, p.IsDocumentation(tt.url))
		})
	}
}

func TestRecord_TryClaim(t *testing.T) {
	t.Parallel()

	rec := discover.NewRecord()
	assert.True(t, rec.TryClaim("https://example.com/docs/a"))
	assert.False(t, rec.TryClaim("https://example.com/docs/a"))
	assert.True(t, rec.TryClaim("https://example.com/docs/b"))
}
