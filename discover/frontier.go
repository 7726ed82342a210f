package discover

import (
	"strings"
	"sync"

	"github.com/fwojciec/docmirror/bloom"
)

// crawlLink is one URL queued for the crawl fallback's breadth-first
// traversal.
type crawlLink struct {
	URL   string
	Depth int
}

// frontier is a FIFO crawl queue with Bloom filter deduplication. URL
// fragments are stripped before deduplication, so URLs differing only by
// fragment are considered duplicates. Safe for concurrent use.
type frontier struct {
	mu    sync.Mutex
	seen  *bloom.Filter
	queue []crawlLink
}

// newFrontier creates a frontier sized for n expected URLs with the given
// false positive rate.
func newFrontier(n uint, fpRate float64) *frontier {
	return &frontier{seen: bloom.NewFilter(n, fpRate)}
}

// push adds a link to the frontier. It returns false if the URL has
// already been seen.
func (f *frontier) push(link crawlLink) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	link.URL = stripFragment(link.URL)
	if f.seen.Test(link.URL) {
		return false
	}
	f.seen.Add(link.URL)
	f.queue = append(f.queue, link)
	return true
}

// pop returns the next link in breadth-first order. The bool result is
// false when the frontier is empty.
func (f *frontier) pop() (crawlLink, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return crawlLink{}, false
	}
	link := f.queue[0]
	f.queue = f.queue[1:]
	return link, true
}

func stripFragment(url string) string {
	if idx := strings.Index(url, "#"); idx != -1 {
		return url[:idx]
	}
	return url
}
