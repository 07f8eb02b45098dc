// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"net/url"

	"github.com/MKhiriev/go-resource-keeper/models"
)

// ResourceClient reads and writes records of any resource, addressed by
// its plural name.
type ResourceClient interface {
	// SetToken attaches a bearer token to every following request.
	SetToken(token string)

	// Find fetches records by id, in the order requested.
	Find(ctx context.Context, plural string, ids ...string) ([]models.Record, error)
	// FindMany lists a collection. params carries sort, limit, offset,
	// ids and filter[field] parameters.
	FindMany(ctx context.Context, plural string, params url.Values) ([]models.Record, error)
	// Related fetches the records linked from id through relation.
	Related(ctx context.Context, plural, id, relation string) ([]models.Record, error)

	// Create stores records and returns them as saved, ids included.
	Create(ctx context.Context, plural string, records ...models.Record) ([]models.Record, error)
	// Update replaces the record with id as a whole.
	Update(ctx context.Context, plural, id string, record models.Record) (models.Record, error)
	// Patch merges patch into the record with id (RFC 7386).
	Patch(ctx context.Context, plural, id string, patch map[string]any) (models.Record, error)
	// Delete removes records by id.
	Delete(ctx context.Context, plural string, ids ...string) error
}
