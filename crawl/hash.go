package crawl

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ContentHash computes the change-detection hash of cleaned page HTML.
// Whitespace runs are normalized first so that formatting-only differences
// between runs do not register as content changes.
func ContentHash(html string) string {
	normalized := strings.Join(strings.Fields(html), " ")
	return fmt.Sprintf("%016x", xxhash.Sum64String(normalized))
}
