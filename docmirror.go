// Package docmirror turns a documentation website into a local Markdown
// archive. It discovers pages through sitemaps (falling back to a bounded
// internal-link crawl), cleans and converts each page to Markdown, writes
// the result to a deterministic file layout with an index and a source
// manifest, and tracks changes between runs in a per-domain changelog.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, htmltomarkdown/, sqlite/).
package docmirror
