// Package htmltomarkdown converts normalized HTML content into Markdown
// documents with source attribution.
package htmltomarkdown

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docmirror"
)

// Ensure Converter implements docmirror.Converter at compile time.
var _ docmirror.Converter = (*Converter)(nil)

var (
	headingRe    = regexp.MustCompile(`^(#{1,6}) (.*)$`)
	multiBlankRe = regexp.MustCompile(`\n{3,}`)
)

// Converter wraps html-to-markdown with pre and post processing passes
// that keep code blocks and images byte-exact through the conversion.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
		converter.WithEscapeMode(converter.EscapeModeDisabled),
	)
	return &Converter{conv: conv}
}

// Convert transforms HTML content into Markdown and appends a source
// attribution trailer. Code blocks and images are lifted out before
// conversion and spliced back afterwards so their contents pass through
// untouched.
func (c *Converter) Convert(html string, src docmirror.Attribution) (string, error) {
	trailer := fmt.Sprintf("<!-- source: %s | fetched: %s -->",
		src.URL, src.FetchedAt.UTC().Format(time.RFC3339))

	if strings.TrimSpace(html) == "" {
		return trailer + "\n", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", docmirror.Errorf(docmirror.EINVALID, "failed to parse HTML: %v", err)
	}

	codeBlocks := liftCodeBlocks(doc)
	images := liftImages(doc)

	body, err := doc.Find("body").Html()
	if err != nil {
		return "", docmirror.Errorf(docmirror.EINTERNAL, "failed to render HTML: %v", err)
	}

	md, err := c.conv.ConvertString(body)
	if err != nil {
		return "", docmirror.Errorf(docmirror.EINTERNAL, "markdown conversion failed: %v", err)
	}

	md = normalizeHeadings(md)
	// Collapse runs of blank lines before splicing code blocks back in so
	// blank lines inside fences survive untouched.
	md = multiBlankRe.ReplaceAllString(md, "\n\n")
	md = restorePlaceholders(md, codeBlockToken, codeBlocks)
	md = restorePlaceholders(md, imageToken, images)
	md = strings.TrimSpace(md)

	if md == "" {
		return trailer + "\n", nil
	}
	return md + "\n\n" + trailer + "\n", nil
}

const (
	codeBlockToken = "@@CODEBLOCK:%d@@"
	imageToken     = "@@IMG:%d@@"
)

var codeLangRe = regexp.MustCompile(`^language-(\S+)$`)

// liftCodeBlocks replaces each <pre> with a placeholder paragraph and
// returns the fenced Markdown to splice back in, indexed by placeholder
// number.
func liftCodeBlocks(doc *goquery.Document) []string {
	var blocks []string
	doc.Find("pre").Each(func(_ int, s *goquery.Selection) {
		code := s.Find("code").First()
		content := s.Text()
		lang := ""
		if code.Length() > 0 {
			content = code.Text()
			if class, ok := code.Attr("class"); ok {
				for _, token := range strings.Fields(class) {
					if m := codeLangRe.FindStringSubmatch(token); m != nil {
						lang = m[1]
						break
					}
				}
			}
		}

		fence := "```"
		if strings.Contains(content, "```") {
			fence = "````"
		}
		block := fence + lang + "\n" + strings.Trim(content, "\n") + "\n" + fence

		idx := len(blocks)
		blocks = append(blocks, block)
		s.ReplaceWithHtml(fmt.Sprintf("<p>"+codeBlockToken+"</p>", idx))
	})
	return blocks
}

// liftImages replaces each <img> with a placeholder and returns the
// Markdown image syntax to splice back in.
func liftImages(doc *goquery.Document) []string {
	var images []string
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if src == "" {
			s.Remove()
			return
		}
		alt, _ := s.Attr("alt")

		md := fmt.Sprintf("![%s](%s)", alt, src)
		if title, ok := s.Attr("title"); ok && title != "" {
			md = fmt.Sprintf("![%s](%s %q)", alt, src, title)
		}

		idx := len(images)
		images = append(images, md)
		s.ReplaceWithHtml(fmt.Sprintf(imageToken, idx))
	})
	return images
}

// restorePlaceholders substitutes lifted fragments back into the converted
// Markdown.
func restorePlaceholders(md, tokenFormat string, fragments []string) string {
	for i, frag := range fragments {
		md = strings.ReplaceAll(md, fmt.Sprintf(tokenFormat, i), frag)
	}
	return md
}

// normalizeHeadings promotes the first heading to level one and demotes
// any later level-one headings to level two.
func normalizeHeadings(md string) string {
	lines := strings.Split(md, "\n")
	first := true
	inFence := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		m := headingRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if first {
			lines[i] = "# " + m[2]
			first = false
			continue
		}
		if len(m[1]) == 1 {
			lines[i] = "## " + m[2]
		}
	}
	return strings.Join(lines, "\n")
}
