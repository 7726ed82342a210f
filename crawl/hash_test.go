package crawl_test

import (
	"testing"

	"github.com/fwojciec/docmirror/crawl"
	"github.com/stretchr/testify/assert"
)

func TestContentHash(t *testing.T) {
	t.Parallel()

	t.Run("deterministic", func(t *testing.T) {
		t.Parallel()
		a := crawl.ContentHash("<p>hello world</p>")
		b := crawl.ContentHash("<p>hello world</p>")
		assert.Equal(t, a, b)
		assert.Len(t, a, 16)
	})

	t.Run("whitespace insensitive", func(t *testing.T) {
		t.Parallel()
		a := crawl.ContentHash("<p>hello   world</p>")
		b := crawl.ContentHash("<p>hello\n\tworld</p>")
		assert.Equal(t, a, b)
	})

	t.Run("content sensitive", func(t *testing.T) {
		t.Parallel()
		a := crawl.ContentHash("<p>hello world</p>")
		b := crawl.ContentHash("<p>goodbye world</p>")
		assert.NotEqual(t, a, b)
	})
}
