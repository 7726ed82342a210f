package docmirror

import (
	"encoding/json"
	"net/url"
)

// OutputMode selects the assembler's file layout.
type OutputMode string

// Supported output layouts.
const (
	// OutputDirectory writes one Markdown file per page at its derived path.
	OutputDirectory OutputMode = "directory"

	// OutputSingle concatenates all pages into a single file, demoting
	// headings of non-first chapters by one level.
	OutputSingle OutputMode = "single"

	// OutputBundle writes one numbered file per chapter.
	OutputBundle OutputMode = "bundle"
)

// OutputOptions configures the assembler layout.
type OutputOptions struct {
	Mode OutputMode `json:"mode"`
}

// Manifest is the run configuration: which site to scrape and how to lay
// out the output. It is distinct from the source manifest the run produces.
type Manifest struct {
	Name   string        `json:"name"`
	URL    string        `json:"url"`
	Output OutputOptions `json:"output"`
}

// ParseManifest decodes a manifest from JSON and validates it.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, Errorf(EINVALID, "invalid manifest JSON: %v", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate returns an error if the manifest contains invalid fields.
// A missing output mode defaults to OutputDirectory.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return Errorf(EINVALID, "manifest name required")
	}
	if m.URL == "" {
		return Errorf(EINVALID, "manifest url required")
	}
	u, err := url.Parse(m.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Errorf(EINVALID, "manifest url must be absolute: %q", m.URL)
	}
	switch m.Output.Mode {
	case "":
		m.Output.Mode = OutputDirectory
	case OutputDirectory, OutputSingle, OutputBundle:
	default:
		return Errorf(EINVALID, "unknown output mode %q", m.Output.Mode)
	}
	return nil
}
