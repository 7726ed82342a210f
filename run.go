package docmirror

import (
	"context"
	"time"
)

// Run records the outcome of one scrape for the run history.
type Run struct {
	ID         string    `json:"id"`
	Project    string    `json:"project"`
	SourceURL  string    `json:"sourceUrl"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`

	Found           int  `json:"found"`
	Scraped         int  `json:"scraped"`
	Failed          int  `json:"failed"`
	FilesWritten    int  `json:"filesWritten"`
	DiscoveryFailed bool `json:"discoveryFailed"`
}

// Validate returns an error if the run contains invalid fields.
func (r *Run) Validate() error {
	if r.Project == "" {
		return Errorf(EINVALID, "run project required")
	}
	if r.SourceURL == "" {
		return Errorf(EINVALID, "run source URL required")
	}
	return nil
}

// RunFilter represents a filter for FindRuns.
type RunFilter struct {
	Project *string `json:"project"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RunService persists run history.
type RunService interface {
	// CreateRun records the start of a run and assigns its ID.
	CreateRun(ctx context.Context, run *Run) error

	// FinishRun stores the final counts for a run.
	// Returns ENOTFOUND if the run does not exist.
	FinishRun(ctx context.Context, run *Run) error

	// FindRuns retrieves runs matching the filter, newest first.
	FindRuns(ctx context.Context, filter RunFilter) ([]*Run, error)
}
