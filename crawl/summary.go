package crawl

import (
	"encoding/json"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/fwojciec/docmirror"
)

// runSummary is the machine-readable end-of-run report written next to
// the output tree.
type runSummary struct {
	Project         string                     `json:"project"`
	SourceURL       string                     `json:"source_url"`
	GeneratedAt     string                     `json:"generated_at"`
	Source          string                     `json:"discovery_source"`
	Found           int                        `json:"found"`
	Scraped         int                        `json:"scraped"`
	Failed          int                        `json:"failed"`
	FilesWritten    int                        `json:"files_written"`
	Chapters        map[string]int             `json:"chapters"`
	URLs            []string                   `json:"urls"`
	DiscoveryErrors []docmirror.DiscoveryError `json:"discovery_errors,omitempty"`
	Errors          *ErrorSummary              `json:"errors,omitempty"`
}

// WriteSummary writes the end-of-run report to path as JSON.
func WriteSummary(path string, m *docmirror.Manifest, result *Result) error {
	s := runSummary{
		Project:      m.Name,
		SourceURL:    m.URL,
		GeneratedAt:  time.Now().UTC().Format(time.RFC3339),
		Source:       string(result.Source),
		Found:        result.Found,
		Scraped:      result.Scraped,
		Failed:       result.Failed,
		FilesWritten: result.FilesWritten,
		Chapters:     make(map[string]int),
	}

	if result.Discovery != nil {
		for _, p := range result.Discovery.Pages {
			s.Chapters[p.Chapter]++
			s.URLs = append(s.URLs, p.URL)
		}
		sort.Strings(s.URLs)
		s.DiscoveryErrors = result.Discovery.Errors
	}
	if result.Errors != nil && result.Errors.Total() > 0 {
		s.Errors = result.Errors
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return docmirror.Errorf(docmirror.EINTERNAL, "encoding run summary: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return docmirror.Errorf(docmirror.EINTERNAL, "writing run summary: %v", err)
	}
	return nil
}

// progressFile is the transient status document external observers poll
// while a run is in flight.
type progressFile struct {
	Status    string `json:"status"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Failed    int    `json:"failed"`
	LastURL   string `json:"last_url,omitempty"`
	UpdatedAt string `json:"updated_at"`
}

// NewProgressFileWriter returns a ProgressFunc that mirrors progress
// events into a status file at path. Write failures are ignored; the file
// carries no run semantics.
func NewProgressFileWriter(path string) ProgressFunc {
	var mu sync.Mutex
	var failed int

	return func(event ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()

		status := "running"
		switch event.Type {
		case ProgressStarted:
			status = "starting"
		case ProgressFailed:
			failed++
		case ProgressFinished:
			status = "finished"
		}

		data, err := json.Marshal(progressFile{
			Status:    status,
			Completed: event.Completed,
			Total:     event.Total,
			Failed:    failed,
			LastURL:   event.URL,
			UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			return
		}
		_ = os.WriteFile(path, data, 0644)
	}
}
