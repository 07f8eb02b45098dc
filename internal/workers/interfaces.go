// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package workers runs batches of independent jobs with bounded
// concurrency.
package workers

import "context"

// Worker is one unit of work. Run should return promptly once ctx is
// done.
type Worker interface {
	Run(ctx context.Context) error
}

// WorkerFunc adapts a plain function to [Worker].
type WorkerFunc func(ctx context.Context) error

func (f WorkerFunc) Run(ctx context.Context) error {
	return f(ctx)
}
