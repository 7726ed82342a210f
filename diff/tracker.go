package diff

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/docmirror"
)

// Ensure Tracker implements docmirror.ChangeTracker at compile time.
var _ docmirror.ChangeTracker = (*Tracker)(nil)

// Hostname prefixes dropped when deriving the changelog's domain label.
var domainPrefixes = map[string]bool{
	"www": true, "docs": true, "api": true,
	"blog": true, "help": true, "support": true,
}

var domainCleanRe = regexp.MustCompile(`[^a-zA-Z0-9\-_]`)

// Tracker persists the change history for one project. Finalizing a run
// replaces the whole output directory, so Load must run first to capture
// the previous manifest and changelog; Record then writes the new
// changelog entry into the committed tree.
type Tracker struct {
	outputDir string
	domain    string
	differ    docmirror.Differ

	// Captured by Load.
	previous       []docmirror.SourceEntry
	priorChangelog string

	now func() time.Time
}

// NewTracker creates a Tracker for the project output directory. The
// changelog is labeled with the domain derived from sourceURL.
func NewTracker(outputDir, sourceURL string, differ docmirror.Differ) *Tracker {
	return &Tracker{
		outputDir: outputDir,
		domain:    DomainLabel(sourceURL),
		differ:    differ,
		now:       time.Now,
	}
}

func (t *Tracker) sourcesPath() string   { return filepath.Join(t.outputDir, "sources.json") }
func (t *Tracker) changelogPath() string { return filepath.Join(t.outputDir, "changelog.md") }

// Load reads the previous run's source manifest and changelog. A missing
// manifest is normal first-run behavior: the baseline is empty.
func (t *Tracker) Load(ctx context.Context) ([]docmirror.SourceEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if data, err := os.ReadFile(t.changelogPath()); err == nil {
		t.priorChangelog = string(data)
	}

	data, err := os.ReadFile(t.sourcesPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, docmirror.Errorf(docmirror.EINTERNAL, "reading %s: %v", t.sourcesPath(), err)
	}

	var manifest docmirror.SourceManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, docmirror.Errorf(docmirror.EINTERNAL, "parsing %s: %v", t.sourcesPath(), err)
	}

	t.previous = manifest.Sources
	return manifest.Sources, nil
}

// Record diffs current against the loaded baseline, prepends a changelog
// entry, and returns the change set with its version label.
func (t *Tracker) Record(ctx context.Context, current []docmirror.SourceEntry) (*docmirror.ChangeSet, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	cs := t.differ.Diff(t.previous, current)
	version := t.nextVersion()

	content := t.buildChangelog(cs, version, len(current))

	if err := os.MkdirAll(t.outputDir, 0755); err != nil {
		return nil, "", docmirror.Errorf(docmirror.EINTERNAL, "creating %s: %v", t.outputDir, err)
	}
	if err := os.WriteFile(t.changelogPath(), []byte(content), 0644); err != nil {
		return nil, "", docmirror.Errorf(docmirror.EINTERNAL, "writing changelog: %v", err)
	}

	return cs, version, nil
}

// nextVersion is today's date, with a -N suffix counting up from the
// highest same-day version already in the changelog.
func (t *Tracker) nextVersion() string {
	base := t.now().UTC().Format("2006.01.02")

	re := regexp.MustCompile(`(?m)^## (` + regexp.QuoteMeta(base) + `(?:-(\d+))?) - `)
	matches := re.FindAllStringSubmatch(t.priorChangelog, -1)
	if len(matches) == 0 {
		return base
	}

	maxSeq := 0
	for _, m := range matches {
		if m[2] == "" {
			continue
		}
		if n, err := strconv.Atoi(m[2]); err == nil && n > maxSeq {
			maxSeq = n
		}
	}
	return fmt.Sprintf("%s-%d", base, maxSeq+1)
}

// buildChangelog renders the new entry followed by the prior entries,
// newest first.
func (t *Tracker) buildChangelog(cs *docmirror.ChangeSet, version string, totalPages int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Changelog - %s\n\n", t.domain)
	fmt.Fprintf(&b, "## %s - %s\n\n", version, t.now().UTC().Format("2006-01-02 15:04:05 UTC"))

	b.WriteString("### Summary\n\n")
	fmt.Fprintf(&b, "- **Total pages:** %d\n", totalPages)
	fmt.Fprintf(&b, "- **Changes:** %d\n", cs.Total())
	fmt.Fprintf(&b, "  - Added: %d\n", len(cs.Added))
	fmt.Fprintf(&b, "  - Modified: %d\n", len(cs.Modified))
	fmt.Fprintf(&b, "  - Removed: %d\n", len(cs.Removed))
	fmt.Fprintf(&b, "  - Unchanged: %d\n\n", len(cs.Unchanged))

	if len(cs.Added) > 0 {
		b.WriteString("### Added Pages\n\n")
		for _, p := range cs.Added {
			fmt.Fprintf(&b, "- [%s](%s)\n", orUntitled(p.Title), p.URL)
		}
		b.WriteString("\n")
	}

	if len(cs.Modified) > 0 {
		b.WriteString("### Modified Pages\n\n")
		for _, p := range cs.Modified {
			kinds := make([]string, len(p.Changes))
			for i, k := range p.Changes {
				kinds[i] = string(k)
			}
			fmt.Fprintf(&b, "- [%s](%s) - %s\n", orUntitled(p.Title), p.URL, strings.Join(kinds, ", "))
		}
		b.WriteString("\n")
	}

	if len(cs.Removed) > 0 {
		b.WriteString("### Removed Pages\n\n")
		for _, p := range cs.Removed {
			fmt.Fprintf(&b, "- [%s](%s)\n", orUntitled(p.Title), p.URL)
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n")

	if prior := priorEntries(t.priorChangelog); prior != "" {
		b.WriteString("\n")
		b.WriteString(prior)
	}

	return b.String()
}

// priorEntries strips the header from an existing changelog, keeping every
// recorded entry.
func priorEntries(changelog string) string {
	idx := strings.Index(changelog, "\n## ")
	if idx < 0 {
		return ""
	}
	return strings.TrimPrefix(changelog[idx:], "\n")
}

func orUntitled(title string) string {
	if title == "" {
		return "Untitled"
	}
	return title
}

// DomainLabel derives the changelog label from a source URL: the hostname
// without its port, minus a leading www/docs/api/blog/help/support label,
// reduced to the first remaining part.
func DomainLabel(sourceURL string) string {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return "unknown"
	}
	host := strings.ToLower(u.Hostname())
	parts := strings.Split(host, ".")

	if len(parts) < 2 {
		return host
	}
	if domainPrefixes[parts[0]] && len(parts) > 2 {
		parts = parts[1:]
	}
	return strings.ToLower(domainCleanRe.ReplaceAllString(parts[0], "-"))
}
