package mock

import (
	"context"

	"github.com/fwojciec/docmirror"
)

var (
	_ docmirror.Differ        = (*Differ)(nil)
	_ docmirror.ChangeTracker = (*ChangeTracker)(nil)
)

// Differ is a mock implementation of docmirror.Differ.
type Differ struct {
	DiffFn func(previous, current []docmirror.SourceEntry) *docmirror.ChangeSet
}

func (d *Differ) Diff(previous, current []docmirror.SourceEntry) *docmirror.ChangeSet {
	return d.DiffFn(previous, current)
}

// ChangeTracker is a mock implementation of docmirror.ChangeTracker.
type ChangeTracker struct {
	LoadFn   func(ctx context.Context) ([]docmirror.SourceEntry, error)
	RecordFn func(ctx context.Context, current []docmirror.SourceEntry) (*docmirror.ChangeSet, string, error)
}

func (t *ChangeTracker) Load(ctx context.Context) ([]docmirror.SourceEntry, error) {
	return t.LoadFn(ctx)
}

func (t *ChangeTracker) Record(ctx context.Context, current []docmirror.SourceEntry) (*docmirror.ChangeSet, string, error) {
	return t.RecordFn(ctx, current)
}
