package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// RunBatch annotates several screenshots with at most Concurrency runs in flight.
// Results are in request order. The first failure cancels the remaining runs and
// is returned with the failing image's path.
func (p *Pipeline) RunBatch(ctx context.Context, reqs []Request) ([]*Result, error) {
	results := make([]*Result, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, p.Concurrency))

	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			res, err := p.Run(gctx, req)
			if err != nil {
				return fmt.Errorf("%s: %w", req.ImagePath, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
