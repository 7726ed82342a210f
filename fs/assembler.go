package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/fwojciec/docmirror"
)

// Ensure Assembler implements docmirror.Assembler at compile time.
var _ docmirror.Assembler = (*Assembler)(nil)

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// pageMeta is what the assembler retains per written page. The Markdown
// body is kept only for the single and bundle output modes.
type pageMeta struct {
	relPath string
	chapter string
	order   int
	title   string
	url     string
	md      string
	entry   docmirror.SourceEntry
}

// Assembler writes one Markdown file per page into a temporary directory
// and atomically renames it over the previous output on Finalize, so an
// interrupted run never corrupts the prior mirror. Methods are intended to
// be called from a single coordinator goroutine.
type Assembler struct {
	baseDir  string
	project  string
	mode     docmirror.OutputMode
	basePath string

	pages        []pageMeta
	skipped      []string
	filesWritten int
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithOutputMode selects the output layout. Defaults to OutputDirectory.
func WithOutputMode(mode docmirror.OutputMode) AssemblerOption {
	return func(a *Assembler) { a.mode = mode }
}

// WithBasePath sets the base URL path prefix used to derive file paths for
// URLs without a /docs/ marker.
func WithBasePath(p string) AssemblerOption {
	return func(a *Assembler) { a.basePath = p }
}

// NewAssembler creates an Assembler writing to baseDir/project. Pages are
// staged in baseDir/project.tmp until Finalize.
func NewAssembler(baseDir, project string, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		baseDir: baseDir,
		project: project,
		mode:    docmirror.OutputDirectory,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Assembler) tempDir() string  { return filepath.Join(a.baseDir, a.project+".tmp") }
func (a *Assembler) finalDir() string { return filepath.Join(a.baseDir, a.project) }

// WritePage persists one converted page. Pages whose URL cannot be mapped
// to a path, and pages that fail to write, are recorded as skipped; the
// returned error lets the caller count the failure without aborting the
// run.
func (a *Assembler) WritePage(ctx context.Context, page *docmirror.Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if page.Markdown == "" {
		a.skipped = append(a.skipped, page.URL)
		return docmirror.Errorf(docmirror.EINVALID, "page %s has no content", page.URL)
	}

	relPath, err := PagePath(page.URL, a.basePath)
	if err != nil {
		a.skipped = append(a.skipped, page.URL)
		return err
	}

	meta := pageMeta{
		relPath: relPath,
		chapter: page.Chapter,
		order:   page.Order,
		title:   page.Title,
		url:     page.URL,
		entry:   docmirror.SourceEntryFromPage(page),
	}

	if a.mode == docmirror.OutputDirectory {
		fullPath := filepath.Join(a.tempDir(), relPath)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			a.skipped = append(a.skipped, page.URL)
			return docmirror.Errorf(docmirror.EINTERNAL, "creating %s: %v", filepath.Dir(fullPath), err)
		}
		if err := os.WriteFile(fullPath, []byte(FormatPage(page)), 0644); err != nil {
			a.skipped = append(a.skipped, page.URL)
			return docmirror.Errorf(docmirror.EINTERNAL, "writing %s: %v", fullPath, err)
		}
		a.filesWritten++
	} else {
		// Single and bundle modes concatenate at Finalize.
		meta.md = page.Markdown
	}

	a.pages = append(a.pages, meta)
	return nil
}

// FormatPage renders a page with its front matter block.
func FormatPage(page *docmirror.Page) string {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: %q\n", page.Title)
	fmt.Fprintf(&b, "url: %s\n", page.URL)
	fmt.Fprintf(&b, "fetched_at: %s\n", page.FetchedAt.UTC().Format(time.RFC3339))
	b.WriteString("---\n\n")
	b.WriteString(page.Markdown)
	return b.String()
}

// Finalize writes the index and source manifest and commits the staged
// tree over the previous output. When no page had content the previous
// output is left untouched and the Empty condition is reported.
func (a *Assembler) Finalize(ctx context.Context) (*docmirror.AssembleResult, error) {
	if len(a.pages) == 0 {
		_ = a.Abort()
		return &docmirror.AssembleResult{
			Skipped: a.skipped,
			Empty:   true,
		}, nil
	}

	a.sortPages()

	switch a.mode {
	case docmirror.OutputSingle:
		if err := a.writeSingle(); err != nil {
			return nil, err
		}
	case docmirror.OutputBundle:
		if err := a.writeBundles(); err != nil {
			return nil, err
		}
	}

	if err := a.writeReadme(); err != nil {
		return nil, err
	}

	sources := make([]docmirror.SourceEntry, 0, len(a.pages))
	for _, p := range a.pages {
		sources = append(sources, p.entry)
	}
	if err := a.writeSources(sources); err != nil {
		return nil, err
	}

	if err := a.commit(); err != nil {
		return nil, err
	}

	return &docmirror.AssembleResult{
		FilesWritten: a.filesWritten,
		Skipped:      a.skipped,
		Sources:      sources,
	}, nil
}

// Abort discards the staged output tree.
func (a *Assembler) Abort() error {
	return os.RemoveAll(a.tempDir())
}

// sortPages orders pages by chapter ("Other" last), then (order, url)
// within the chapter.
func (a *Assembler) sortPages() {
	sort.Slice(a.pages, func(i, j int) bool {
		pi, pj := a.pages[i], a.pages[j]
		if pi.chapter != pj.chapter {
			if pi.chapter == docmirror.DefaultChapter {
				return false
			}
			if pj.chapter == docmirror.DefaultChapter {
				return true
			}
			return pi.chapter < pj.chapter
		}
		if pi.order != pj.order {
			return pi.order < pj.order
		}
		return pi.url < pj.url
	})
}

// chapterNames returns the distinct chapters in sorted page order.
func (a *Assembler) chapterNames() []string {
	var names []string
	for _, p := range a.pages {
		if len(names) == 0 || names[len(names)-1] != p.chapter {
			names = append(names, p.chapter)
		}
	}
	return names
}

func (a *Assembler) writeReadme() error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", a.project)

	for _, chapter := range a.chapterNames() {
		fmt.Fprintf(&b, "## %s\n\n", chapter)
		for _, p := range a.pages {
			if p.chapter != chapter {
				continue
			}
			title := p.title
			if title == "" {
				title = p.relPath
			}
			fmt.Fprintf(&b, "- [%s](%s)\n", title, a.indexTarget(p))
		}
		b.WriteString("\n")
	}

	return a.stageFile("README.md", b.String())
}

// indexTarget is the link target for a page in the README index.
func (a *Assembler) indexTarget(p pageMeta) string {
	switch a.mode {
	case docmirror.OutputSingle:
		return a.project + ".md"
	case docmirror.OutputBundle:
		return bundleFilename(a.chapterNames(), p.chapter)
	default:
		return p.relPath
	}
}

func (a *Assembler) writeSources(sources []docmirror.SourceEntry) error {
	manifest := docmirror.SourceManifest{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		TotalPages:  len(sources),
		Project:     a.project,
		Sources:     sources,
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return docmirror.Errorf(docmirror.EINTERNAL, "encoding sources.json: %v", err)
	}
	return a.stageFile("sources.json", string(data)+"\n")
}

// writeSingle concatenates every page into one document. Headings of
// pages outside the first chapter are demoted one level so the document
// keeps a single top-level structure.
func (a *Assembler) writeSingle() error {
	chapters := a.chapterNames()
	var b strings.Builder

	for i, chapter := range chapters {
		for _, p := range a.pages {
			if p.chapter != chapter {
				continue
			}
			md := p.md
			if i > 0 {
				md = demoteHeadings(md)
			}
			b.WriteString(md)
			b.WriteString("\n\n")
		}
	}

	if err := a.stageFile(a.project+".md", b.String()); err != nil {
		return err
	}
	a.filesWritten++
	return nil
}

// writeBundles writes one numbered file per chapter.
func (a *Assembler) writeBundles() error {
	chapters := a.chapterNames()
	for _, chapter := range chapters {
		var b strings.Builder
		for _, p := range a.pages {
			if p.chapter != chapter {
				continue
			}
			b.WriteString(p.md)
			b.WriteString("\n\n")
		}
		if err := a.stageFile(bundleFilename(chapters, chapter), b.String()); err != nil {
			return err
		}
		a.filesWritten++
	}
	return nil
}

// bundleFilename is NN-slug.md with NN the chapter's 1-based position.
func bundleFilename(chapters []string, chapter string) string {
	for i, name := range chapters {
		if name == chapter {
			return fmt.Sprintf("%02d-%s.md", i+1, slugify(chapter))
		}
	}
	return slugify(chapter) + ".md"
}

func slugify(s string) string {
	return strings.Trim(slugRe.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// demoteHeadings shifts every ATX heading down one level, clamped at h6.
// Fenced code blocks are left alone.
func demoteHeadings(md string) string {
	lines := strings.Split(md, "\n")
	inFence := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence || !strings.HasPrefix(line, "#") {
			continue
		}
		level := 0
		for level < len(line) && line[level] == '#' {
			level++
		}
		if level >= 6 || level >= len(line) || line[level] != ' ' {
			continue
		}
		lines[i] = "#" + line
	}
	return strings.Join(lines, "\n")
}

func (a *Assembler) stageFile(name, content string) error {
	if err := os.MkdirAll(a.tempDir(), 0755); err != nil {
		return docmirror.Errorf(docmirror.EINTERNAL, "creating %s: %v", a.tempDir(), err)
	}
	path := filepath.Join(a.tempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return docmirror.Errorf(docmirror.EINTERNAL, "writing %s: %v", path, err)
	}
	return nil
}

// commit atomically replaces the previous output with the staged tree.
func (a *Assembler) commit() error {
	if err := os.RemoveAll(a.finalDir()); err != nil {
		return docmirror.Errorf(docmirror.EINTERNAL, "removing %s: %v", a.finalDir(), err)
	}
	if err := os.Rename(a.tempDir(), a.finalDir()); err != nil {
		return docmirror.Errorf(docmirror.EINTERNAL, "committing %s: %v", a.finalDir(), err)
	}
	return nil
}
