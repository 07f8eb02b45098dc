// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"

	"github.com/MKhiriev/go-resource-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/adapter_mock.go -package=mock

// Adapter is a pluggable persistence backend. Resources must be passed to
// Model before any record operation on them.
//
// Records handed to and returned by an adapter always carry their id under
// [models.IDKey]. Create generates an id when the record has none.
type Adapter interface {
	// Connect opens the backend. Connection failures are returned as-is.
	Connect(ctx context.Context) error
	// Close releases the backend.
	Close() error

	// Model prepares storage for a resource. It is idempotent and may be
	// called again with a changed schema.
	Model(ctx context.Context, name string, schema models.Schema) error

	Find(ctx context.Context, name, id string) (models.Record, error)
	FindMany(ctx context.Context, name string, query models.Query) ([]models.Record, error)
	Create(ctx context.Context, name string, record models.Record) (models.Record, error)
	// Update replaces the stored record with id as a whole.
	Update(ctx context.Context, name, id string, record models.Record) (models.Record, error)
	Delete(ctx context.Context, name, id string) error
}

// ErrorClassificator inspects driver errors of a SQL backend.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
	// IsUniqueViolation reports whether err is a primary key or unique
	// constraint violation.
	IsUniqueViolation(err error) bool
}
