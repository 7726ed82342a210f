// Package goquery provides CSS-selector based HTML processing: content
// normalization, title/content-area extraction, and link extraction.
package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docmirror"
	"golang.org/x/net/html"
)

// Ensure Normalizer implements docmirror.Normalizer at compile time.
var _ docmirror.Normalizer = (*Normalizer)(nil)

// Selector block-list for structural and noise elements. Hoisted to
// package scope; read-only.
var removeSelectors = []string{
	"header", "footer", "nav", ".nav", "#nav",
	".header", ".footer", ".navigation", ".navbar",
	".breadcrumb", ".breadcrumbs",
	".sidebar-toggle", ".menu-toggle",
	".advertisement", ".ads", ".ad",
	".popup", ".modal", ".overlay",
	".social-share", ".social-sharing",
	".comment-form", ".comments",
	".edit-page", ".edit-link",
	".github-link", ".edit-on-github",
	".back-to-top",
	"script", "style", "noscript",
	".search-box", ".search-form",
	".table-of-contents.mobile",
}

// Classes that mark duplicated or hidden variants of content.
var noiseClasses = []string{
	"mobile-only", "desktop-only", "print-only",
	"visually-hidden", "sr-only",
}

// Code block shapes seen across documentation generators.
var codeSelectors = []string{
	"pre code",
	"pre.highlight",
	".highlight pre",
	".code-block pre",
	".codehilite pre",
}

// Admonition containers, including framework-specific class prefixes.
var admonitionSelectors = []string{
	".admonition", ".note", ".warning", ".tip", ".info",
	".alert", ".callout", ".highlight-note", ".highlight-warning",
	`[class*="admonition-"]`, `[class*="alert-"]`,
}

var admonitionTypes = []string{"note", "warning", "tip", "info", "caution", "important"}

// Bootstrap-style alert suffixes mapped to admonition types.
var alertTypeMap = map[string]string{
	"info":    "info",
	"warning": "warning",
	"danger":  "warning",
	"success": "tip",
}

var languagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^language-(\w+)$`),
	regexp.MustCompile(`^lang-(\w+)$`),
	regexp.MustCompile(`^highlight-(\w+)$`),
	regexp.MustCompile(`^(\w+)$`),
}

// Class tokens that look like bare language names but are not.
var nonLanguageTokens = map[string]bool{
	"highlight":  true,
	"code":       true,
	"pre":        true,
	"chroma":     true,
	"sourcecode": true,
	"snippet":    true,
	"line":       true,
}

var languageAliases = map[string]string{
	"js":     "javascript",
	"ts":     "typescript",
	"py":     "python",
	"rb":     "ruby",
	"sh":     "bash",
	"yml":    "yaml",
	"golang": "go",
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Normalizer cleans extracted content HTML so it converts predictably to
// Markdown. It is a pure function of (html, pageURL); no network access,
// no shared mutable state.
type Normalizer struct{}

// NewNormalizer creates a new Normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize applies the cleanup passes in order: block-list and comment
// removal, empty-block pruning, heading-hierarchy repair, code block and
// admonition normalization, whitespace collapsing, and URL absolutization.
func (n *Normalizer) Normalize(rawHTML, pageURL string) (string, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", docmirror.Errorf(docmirror.EINVALID, "failed to parse HTML: %v", err)
	}

	removeUnwanted(doc)
	removeComments(docNode(doc))
	dropEmptyBlocks(doc)
	repairHeadings(doc)
	normalizeCodeBlocks(doc)
	normalizeAdmonitions(doc)
	collapseWhitespace(docNode(doc), false)
	absolutizeURLs(doc, pageURL)

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", docmirror.Errorf(docmirror.EINTERNAL, "failed to render HTML: %v", err)
	}
	return out, nil
}

// docNode returns the root node of a parsed document.
func docNode(doc *goquery.Document) *html.Node {
	return doc.Selection.Nodes[0]
}

func removeUnwanted(doc *goquery.Document) {
	for _, sel := range removeSelectors {
		doc.Find(sel).Remove()
	}
	for _, class := range noiseClasses {
		doc.Find("." + class).Remove()
	}
}

// removeComments strips comment nodes from the tree rooted at n.
func removeComments(n *html.Node) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if c.Type == html.CommentNode {
			n.RemoveChild(c)
			continue
		}
		removeComments(c)
	}
}

// dropEmptyBlocks removes paragraphs, divs and spans with no text and no
// embedded media. Passes repeat until stable so blocks emptied by an inner
// removal are pruned too.
func dropEmptyBlocks(doc *goquery.Document) {
	for {
		removed := 0
		doc.Find("p, div, span").Each(func(_ int, s *goquery.Selection) {
			if strings.TrimSpace(s.Text()) != "" {
				return
			}
			if s.Find("img, svg, iframe, video, embed, object").Length() > 0 {
				return
			}
			s.Remove()
			removed++
		})
		if removed == 0 {
			return
		}
	}
}

// repairHeadings renames headings so the hierarchy never skips more than
// one level (h1 followed by h3 becomes h1 followed by h2).
func repairHeadings(doc *goquery.Document) {
	prev := 0
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		level := int(s.Nodes[0].Data[1] - '0')
		if prev > 0 && level > prev+1 {
			level = prev + 1
			s.Nodes[0].Data = "h" + string(rune('0'+level))
		}
		prev = level
	})
}

// normalizeCodeBlocks rewrites recognized code block shapes to the
// canonical <pre><code class="language-X"> form.
func normalizeCodeBlocks(doc *goquery.Document) {
	for _, sel := range codeSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			var pre, code *goquery.Selection
			if goquery.NodeName(s) == "code" && goquery.NodeName(s.Parent()) == "pre" {
				code = s
				pre = s.Parent()
			} else {
				pre = s
				code = s.Find("code").First()
				if code.Length() == 0 {
					content := s.Text()
					s.SetHtml("<code>" + html.EscapeString(content) + "</code>")
					code = s.Find("code").First()
				}
			}

			lang := inferLanguage(code, pre)
			if lang != "" {
				code.SetAttr("class", "language-"+lang)
				pre.SetAttr("class", "highlight")
			} else {
				pre.RemoveAttr("class")
			}
		})
	}
}

// inferLanguage extracts a programming language from class names on the
// code element, its pre parent, and the pre's own parent.
func inferLanguage(scopes ...*goquery.Selection) string {
	var classes []string
	for _, s := range scopes {
		if s == nil || s.Length() == 0 {
			continue
		}
		for _, el := range []*goquery.Selection{s, s.Parent()} {
			if attr, ok := el.Attr("class"); ok {
				classes = append(classes, strings.Fields(attr)...)
			}
		}
	}

	for _, class := range classes {
		lower := strings.ToLower(class)
		for _, pattern := range languagePatterns {
			m := pattern.FindStringSubmatch(lower)
			if m == nil {
				continue
			}
			lang := m[1]
			if nonLanguageTokens[lang] {
				break
			}
			if alias, ok := languageAliases[lang]; ok {
				return alias
			}
			return lang
		}
	}
	return ""
}

// normalizeAdmonitions converts recognized callout containers into a
// uniform blockquote with a bolded type label.
func normalizeAdmonitions(doc *goquery.Document) {
	for _, sel := range admonitionSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			// Skip nodes detached by an earlier outer replacement.
			if s.Parent().Length() == 0 {
				return
			}
			kind := admonitionType(s)
			inner, err := s.Html()
			if err != nil {
				return
			}
			label := strings.ToUpper(kind[:1]) + kind[1:]
			s.ReplaceWithHtml("<blockquote><p><strong>" + label + ":</strong></p>" + inner + "</blockquote>")
		})
	}
}

// admonitionType determines the callout kind from element classes.
func admonitionType(s *goquery.Selection) string {
	attr, _ := s.Attr("class")
	classes := strings.Fields(strings.ToLower(attr))

	for _, class := range classes {
		for _, kind := range admonitionTypes {
			if strings.Contains(class, kind) {
				return kind
			}
		}
	}
	for _, class := range classes {
		if suffix, ok := strings.CutPrefix(class, "alert-"); ok {
			if kind, ok := alertTypeMap[suffix]; ok {
				return kind
			}
			return "note"
		}
	}
	return "note"
}

// collapseWhitespace collapses runs of whitespace in text nodes. Content
// inside pre and code is exempt.
func collapseWhitespace(n *html.Node, inCode bool) {
	if n.Type == html.ElementNode && (n.Data == "pre" || n.Data == "code") {
		inCode = true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode && !inCode {
			c.Data = whitespaceRe.ReplaceAllString(c.Data, " ")
			continue
		}
		collapseWhitespace(c, inCode)
	}
}

// absolutizeURLs rewrites relative href and src values against the page's
// own URL.
func absolutizeURLs(doc *goquery.Document, pageURL string) {
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if href == "" || hasURLScheme(href) || strings.HasPrefix(href, "#") {
			return
		}
		if abs := resolveAgainst(pageURL, href); abs != "" {
			s.SetAttr("href", abs)
		}
	})
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if src == "" || hasURLScheme(src) || strings.HasPrefix(src, "data:") {
			return
		}
		if abs := resolveAgainst(pageURL, src); abs != "" {
			s.SetAttr("src", abs)
		}
	})
}

func hasURLScheme(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "mailto:")
}
