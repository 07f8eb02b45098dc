// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Workers is a batch of workers sharing a concurrency limit.
type Workers struct {
	workers []Worker
	limit   int
}

// New creates a batch running at most limit workers at once. A limit
// below one runs them one by one.
func New(limit int, workers ...Worker) *Workers {
	if limit < 1 {
		limit = 1
	}
	return &Workers{workers: workers, limit: limit}
}

func (w *Workers) Add(workers ...Worker) {
	w.workers = append(w.workers, workers...)
}

func (w *Workers) Len() int {
	return len(w.workers)
}

// Run starts every worker and waits for all of them. The first error
// cancels the context handed to the rest and is returned.
func (w *Workers) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.limit)

	for _, worker := range w.workers {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return worker.Run(ctx)
		})
	}

	return g.Wait()
}
