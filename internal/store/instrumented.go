// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-resource-keeper/internal/metrics"
	"github.com/MKhiriev/go-resource-keeper/models"
)

// instrumentedAdapter records the outcome and latency of every record
// operation.
type instrumentedAdapter struct {
	Adapter
	metrics *metrics.Metrics
}

func newInstrumentedAdapter(next Adapter, m *metrics.Metrics) *instrumentedAdapter {
	return &instrumentedAdapter{Adapter: next, metrics: m}
}

func (a *instrumentedAdapter) Model(ctx context.Context, name string, schema models.Schema) error {
	start := time.Now()
	err := a.Adapter.Model(ctx, name, schema)
	a.metrics.RecordStorageOperation("model", name, err, time.Since(start))
	return err
}

func (a *instrumentedAdapter) Find(ctx context.Context, name, id string) (models.Record, error) {
	start := time.Now()
	rec, err := a.Adapter.Find(ctx, name, id)
	a.metrics.RecordStorageOperation("find", name, err, time.Since(start))
	return rec, err
}

func (a *instrumentedAdapter) FindMany(ctx context.Context, name string, q models.Query) ([]models.Record, error) {
	start := time.Now()
	recs, err := a.Adapter.FindMany(ctx, name, q)
	a.metrics.RecordStorageOperation("find_many", name, err, time.Since(start))
	return recs, err
}

func (a *instrumentedAdapter) Create(ctx context.Context, name string, rec models.Record) (models.Record, error) {
	start := time.Now()
	created, err := a.Adapter.Create(ctx, name, rec)
	a.metrics.RecordStorageOperation("create", name, err, time.Since(start))
	return created, err
}

func (a *instrumentedAdapter) Update(ctx context.Context, name, id string, rec models.Record) (models.Record, error) {
	start := time.Now()
	updated, err := a.Adapter.Update(ctx, name, id, rec)
	a.metrics.RecordStorageOperation("update", name, err, time.Since(start))
	return updated, err
}

func (a *instrumentedAdapter) Delete(ctx context.Context, name, id string) error {
	start := time.Now()
	err := a.Adapter.Delete(ctx, name, id)
	a.metrics.RecordStorageOperation("delete", name, err, time.Since(start))
	return err
}
