package main

import (
	"fmt"

	"github.com/fwojciec/docmirror"
)

// Run executes the runs command.
func (c *RunsCmd) Run(deps *Dependencies) error {
	filter := docmirror.RunFilter{Limit: c.Limit}
	if c.Project != "" {
		filter.Project = &c.Project
	}

	runs, err := deps.Runs.FindRuns(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docmirror.ErrorMessage(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(deps.Stdout, "%-20s %-16s %6s %8s %6s %6s  %s\n",
		"STARTED", "PROJECT", "FOUND", "SCRAPED", "FAILED", "FILES", "STATUS")
	for _, run := range runs {
		status := "ok"
		if run.DiscoveryFailed {
			status = "discovery failed"
		} else if run.FinishedAt.IsZero() {
			status = "incomplete"
		}
		fmt.Fprintf(deps.Stdout, "%-20s %-16s %6d %8d %6d %6d  %s\n",
			run.StartedAt.Format("2006-01-02 15:04:05"), run.Project,
			run.Found, run.Scraped, run.Failed, run.FilesWritten, status)
	}

	return nil
}
