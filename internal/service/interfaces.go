// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/MKhiriev/go-resource-keeper/models"
)

// Result is the outcome of a read: the requested records and the related
// records sideloaded by include, keyed by resource name.
type Result struct {
	Records []models.Record
	Linked  map[string][]models.Record
}

// ResourceService runs transform hooks and validation around the storage
// adapter and keeps inverse relationships in sync.
//
// r is the inbound HTTP request handed to transform hooks; it may be nil.
type ResourceService interface {
	// Query converts query string values into a storage query and the list
	// of relationships to include.
	Query(name string, values url.Values) (models.Query, []string, error)

	Find(ctx context.Context, r *http.Request, name string, ids []string, include []string) (Result, error)
	FindMany(ctx context.Context, r *http.Request, name string, query models.Query, include []string) (Result, error)
	// Related returns the name of the related resource and the records
	// referenced by field relation of record id.
	Related(ctx context.Context, r *http.Request, name, id, relation string) (string, []models.Record, error)

	Create(ctx context.Context, r *http.Request, name string, records []models.Record) ([]models.Record, error)
	// Replace overwrites the records ids with records, pairwise.
	Replace(ctx context.Context, r *http.Request, name string, ids []string, records []models.Record) ([]models.Record, error)
	// Patch applies a JSON Patch (array body) or JSON Merge Patch (object
	// body) to each of the records ids.
	Patch(ctx context.Context, r *http.Request, name string, ids []string, patch []byte) ([]models.Record, error)
	Delete(ctx context.Context, r *http.Request, name string, ids []string) error
}
