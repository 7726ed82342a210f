package discover

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/fwojciec/docmirror"
)

// OrderMode selects how chapters are ranked for ordering.
type OrderMode string

// Chapter ordering modes.
const (
	// OrderLexicon ranks chapters by a fixed lexicon of common
	// documentation section names.
	OrderLexicon OrderMode = "lexicon"

	// OrderAlpha ranks chapters by the first byte of their slug.
	OrderAlpha OrderMode = "alpha"
)

// Path segments treated as the documentation base when locating chapters.
var chapterBaseMarkers = []string{"docs"}

// Common section names ranked so conventional reading order survives
// alphabetical sitemaps.
var orderLexicon = map[string]int{
	"introduction":    1,
	"overview":        2,
	"getting-started": 3,
	"quickstart":      4,
	"installation":    5,
	"setup":           6,
	"configuration":   10,
	"basics":          15,
	"concepts":        20,
	"guides":          30,
	"tutorials":       35,
	"examples":        40,
	"advanced":        50,
	"api":             60,
	"reference":       65,
	"integrations":    70,
	"deployment":      75,
	"security":        80,
	"troubleshooting": 90,
	"faq":             95,
}

// Slug words rendered as acronyms rather than title case.
var slugAbbreviations = map[string]string{
	"api":   "API",
	"sdk":   "SDK",
	"ui":    "UI",
	"cli":   "CLI",
	"url":   "URL",
	"http":  "HTTP",
	"https": "HTTPS",
	"json":  "JSON",
	"xml":   "XML",
}

var slugSplitRe = regexp.MustCompile(`[-_]`)

// ChapterInfo is the chapter assignment derived from a URL's path.
type ChapterInfo struct {
	Chapter string
	Order   int
}

// ExtractChapter derives the chapter name and heuristic order from the
// path segment following the first documentation-base marker. URLs with
// no marker, or nothing after it, land in the "Other" chapter with the
// unordered sentinel.
func ExtractChapter(rawURL string, mode OrderMode) ChapterInfo {
	info := ChapterInfo{
		Chapter: docmirror.DefaultChapter,
		Order:   docmirror.UnorderedPosition,
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return info
	}

	var parts []string
	for _, part := range strings.Split(u.Path, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}

	markerIdx := -1
	for i, part := range parts {
		for _, marker := range chapterBaseMarkers {
			if strings.EqualFold(part, marker) {
				markerIdx = i
				break
			}
		}
		if markerIdx >= 0 {
			break
		}
	}

	if markerIdx < 0 || markerIdx+1 >= len(parts) {
		return info
	}

	slug := strings.ToLower(parts[markerIdx+1])
	info.Chapter = FormatSlug(slug)
	info.Order = heuristicOrder(slug, mode)
	return info
}

// heuristicOrder ranks a chapter slug. Lexicon mode falls back to
// 500 plus the first byte so unknown chapters sort after known ones
// while staying alphabetical among themselves.
func heuristicOrder(slug string, mode OrderMode) int {
	if slug == "" {
		return docmirror.UnorderedPosition
	}
	if mode == OrderAlpha {
		return int(slug[0])
	}
	if rank, ok := orderLexicon[slug]; ok {
		return rank
	}
	return 500 + int(slug[0])
}

// FormatSlug converts a URL slug into a readable title, expanding known
// abbreviations.
func FormatSlug(slug string) string {
	words := slugSplitRe.Split(strings.ToLower(slug), -1)
	for i, word := range words {
		if abbr, ok := slugAbbreviations[word]; ok {
			words[i] = abbr
			continue
		}
		if word != "" {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}
