package mock

import (
	"context"

	"github.com/fwojciec/docmirror"
)

var _ docmirror.RunService = (*RunService)(nil)

// RunService is a mock implementation of docmirror.RunService.
type RunService struct {
	CreateRunFn func(ctx context.Context, run *docmirror.Run) error
	FinishRunFn func(ctx context.Context, run *docmirror.Run) error
	FindRunsFn  func(ctx context.Context, filter docmirror.RunFilter) ([]*docmirror.Run, error)
}

func (s *RunService) CreateRun(ctx context.Context, run *docmirror.Run) error {
	return s.CreateRunFn(ctx, run)
}

func (s *RunService) FinishRun(ctx context.Context, run *docmirror.Run) error {
	return s.FinishRunFn(ctx, run)
}

func (s *RunService) FindRuns(ctx context.Context, filter docmirror.RunFilter) ([]*docmirror.Run, error) {
	return s.FindRunsFn(ctx, filter)
}
