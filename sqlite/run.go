package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fwojciec/docmirror"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ docmirror.RunService = (*RunService)(nil)

// RunService implements docmirror.RunService using SQLite.
type RunService struct {
	db *DB
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db}
}

// CreateRun records the start of a run and assigns its ID.
func (s *RunService) CreateRun(ctx context.Context, run *docmirror.Run) error {
	if err := run.Validate(); err != nil {
		return err
	}

	run.ID = uuid.New().String()
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, project, source_url, started_at)
		VALUES (?, ?, ?, ?)
	`, run.ID, run.Project, run.SourceURL, run.StartedAt.UTC().Format(time.RFC3339))

	return err
}

// FinishRun stores the final counts for a run.
func (s *RunService) FinishRun(ctx context.Context, run *docmirror.Run) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET finished_at = ?, found = ?, scraped = ?, failed = ?,
		    files_written = ?, discovery_failed = ?
		WHERE id = ?
	`, run.FinishedAt.UTC().Format(time.RFC3339), run.Found, run.Scraped,
		run.Failed, run.FilesWritten, boolToInt(run.DiscoveryFailed), run.ID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return docmirror.Errorf(docmirror.ENOTFOUND, "run not found")
	}
	return nil
}

// FindRuns retrieves runs matching the filter, newest first.
func (s *RunService) FindRuns(ctx context.Context, filter docmirror.RunFilter) ([]*docmirror.Run, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`
		SELECT id, project, source_url, started_at, finished_at,
		       found, scraped, failed, files_written, discovery_failed
		FROM runs WHERE 1=1
	`)

	if filter.Project != nil {
		query.WriteString(" AND project = ?")
		args = append(args, *filter.Project)
	}

	query.WriteString(" ORDER BY started_at DESC, id DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*docmirror.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func scanRun(rows *sql.Rows) (*docmirror.Run, error) {
	var run docmirror.Run
	var startedAt, finishedAt string
	var discoveryFailed int

	if err := rows.Scan(&run.ID, &run.Project, &run.SourceURL, &startedAt, &finishedAt,
		&run.Found, &run.Scraped, &run.Failed, &run.FilesWritten, &discoveryFailed); err != nil {
		return nil, err
	}

	var err error
	run.StartedAt, err = parseRFC3339(startedAt, "started_at")
	if err != nil {
		return nil, err
	}
	if finishedAt != "" {
		run.FinishedAt, err = parseRFC3339(finishedAt, "finished_at")
		if err != nil {
			return nil, err
		}
	}
	run.DiscoveryFailed = discoveryFailed != 0

	return &run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
