package mock

import (
	"context"

	"github.com/fwojciec/docmirror"
)

var _ docmirror.Assembler = (*Assembler)(nil)

// Assembler is a mock implementation of docmirror.Assembler.
type Assembler struct {
	WritePageFn func(ctx context.Context, page *docmirror.Page) error
	FinalizeFn  func(ctx context.Context) (*docmirror.AssembleResult, error)
	AbortFn     func() error
}

func (a *Assembler) WritePage(ctx context.Context, page *docmirror.Page) error {
	return a.WritePageFn(ctx, page)
}

func (a *Assembler) Finalize(ctx context.Context) (*docmirror.AssembleResult, error) {
	return a.FinalizeFn(ctx)
}

func (a *Assembler) Abort() error {
	if a.AbortFn == nil {
		return nil
	}
	return a.AbortFn()
}
