// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/MKhiriev/go-resource-keeper/internal/logger"
	"github.com/MKhiriev/go-resource-keeper/models"
)

type memoryTable struct {
	schema  models.Schema
	records map[string]models.Record
	order   []string
}

// memoryAdapter keeps records in process memory. It is the default adapter
// and loses all data on exit.
type memoryAdapter struct {
	mu     sync.RWMutex
	tables map[string]*memoryTable
	logger *logger.Logger
}

// NewMemoryAdapter returns an empty in-memory [Adapter].
func NewMemoryAdapter(log *logger.Logger) Adapter {
	return &memoryAdapter{
		tables: make(map[string]*memoryTable),
		logger: log,
	}
}

func (m *memoryAdapter) Connect(context.Context) error {
	m.logger.Debug().Str("func", "memoryAdapter.Connect").Msg("using in-memory storage")
	return nil
}

func (m *memoryAdapter) Close() error {
	return nil
}

func (m *memoryAdapter) Model(_ context.Context, name string, schema models.Schema) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if table, ok := m.tables[name]; ok {
		table.schema = schema.Clone()
		return nil
	}

	m.tables[name] = &memoryTable{
		schema:  schema.Clone(),
		records: make(map[string]models.Record),
	}
	return nil
}

// table must be called with m.mu held.
func (m *memoryAdapter) table(name string) (*memoryTable, error) {
	table, ok := m.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownResource, name)
	}
	return table, nil
}

func (m *memoryAdapter) Find(_ context.Context, name, id string) (models.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	table, err := m.table(name)
	if err != nil {
		return nil, err
	}

	rec, ok := table.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s %q", ErrNotFound, name, id)
	}
	return rec.Clone(), nil
}

func (m *memoryAdapter) FindMany(_ context.Context, name string, q models.Query) ([]models.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	table, err := m.table(name)
	if err != nil {
		return nil, err
	}
	if err = checkQuery(table.schema, q); err != nil {
		return nil, err
	}

	all := make([]models.Record, 0, len(table.order))
	for _, id := range table.order {
		all = append(all, table.records[id])
	}

	found := ApplyQuery(all, q)
	out := make([]models.Record, len(found))
	for i, rec := range found {
		out[i] = rec.Clone()
	}
	return out, nil
}

func (m *memoryAdapter) Create(_ context.Context, name string, rec models.Record) (models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	table, err := m.table(name)
	if err != nil {
		return nil, err
	}

	stored := prepareRecord(rec)
	id := stored.ID()
	if _, exists := table.records[id]; exists {
		return nil, fmt.Errorf("%w: %s %q", ErrConflict, name, id)
	}

	table.records[id] = stored
	table.order = append(table.order, id)

	return stored.Clone(), nil
}

func (m *memoryAdapter) Update(_ context.Context, name, id string, rec models.Record) (models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	table, err := m.table(name)
	if err != nil {
		return nil, err
	}
	if _, exists := table.records[id]; !exists {
		return nil, fmt.Errorf("%w: %s %q", ErrNotFound, name, id)
	}

	stored := rec.Clone()
	if stored == nil {
		stored = models.Record{}
	}
	stored.SetID(id)
	table.records[id] = stored

	return stored.Clone(), nil
}

func (m *memoryAdapter) Delete(_ context.Context, name, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	table, err := m.table(name)
	if err != nil {
		return err
	}
	if _, exists := table.records[id]; !exists {
		return fmt.Errorf("%w: %s %q", ErrNotFound, name, id)
	}

	delete(table.records, id)
	table.order = slices.DeleteFunc(table.order, func(v string) bool { return v == id })
	return nil
}
