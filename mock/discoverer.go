package mock

import (
	"context"

	"github.com/fwojciec/docmirror"
)

var _ docmirror.Discoverer = (*Discoverer)(nil)

// Discoverer is a mock implementation of docmirror.Discoverer.
type Discoverer struct {
	DiscoverFn func(ctx context.Context, baseURL string) (*docmirror.Discovery, error)
}

func (d *Discoverer) Discover(ctx context.Context, baseURL string) (*docmirror.Discovery, error) {
	return d.DiscoverFn(ctx, baseURL)
}
