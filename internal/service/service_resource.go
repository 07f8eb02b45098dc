// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/MKhiriev/go-resource-keeper/internal/hooks"
	"github.com/MKhiriev/go-resource-keeper/internal/logger"
	"github.com/MKhiriev/go-resource-keeper/internal/schema"
	"github.com/MKhiriev/go-resource-keeper/internal/store"
	"github.com/MKhiriev/go-resource-keeper/internal/validators"
	"github.com/MKhiriev/go-resource-keeper/models"
)

type resourceService struct {
	resources  *schema.Registry
	transforms *hooks.Registry
	adapter    store.Adapter

	logger *logger.Logger
}

func NewResourceService(resources *schema.Registry, transforms *hooks.Registry, adapter store.Adapter, logger *logger.Logger) ResourceService {
	return &resourceService{
		resources:  resources,
		transforms: transforms,
		adapter:    adapter,
		logger:     logger,
	}
}

func (s *resourceService) resource(name string) (schema.Resource, error) {
	res, ok := s.resources.Get(name)
	if !ok {
		return schema.Resource{}, fmt.Errorf("%w: %q", schema.ErrUnknownResource, name)
	}
	return res, nil
}

func hookRequest(r *http.Request, method, name string) *hooks.Request {
	return &hooks.Request{Method: method, Resource: name, HTTP: r}
}

func (s *resourceService) Find(ctx context.Context, r *http.Request, name string, ids []string, include []string) (Result, error) {
	res, err := s.resource(name)
	if err != nil {
		return Result{}, err
	}
	if err = checkInclude(res, include); err != nil {
		return Result{}, err
	}

	recs, err := s.load(ctx, name, ids)
	if err != nil {
		return Result{}, err
	}

	return s.read(ctx, r, res, recs, include)
}

func (s *resourceService) FindMany(ctx context.Context, r *http.Request, name string, query models.Query, include []string) (Result, error) {
	res, err := s.resource(name)
	if err != nil {
		return Result{}, err
	}
	if err = checkInclude(res, include); err != nil {
		return Result{}, err
	}

	recs, err := s.adapter.FindMany(ctx, name, query)
	if err != nil {
		return Result{}, err
	}

	return s.read(ctx, r, res, recs, include)
}

// read applies the after transforms and sideloads include.
func (s *resourceService) read(ctx context.Context, r *http.Request, res schema.Resource, recs []models.Record, include []string) (Result, error) {
	out, err := s.transforms.RunAfterMany(ctx, hookRequest(r, http.MethodGet, res.Name), recs)
	if err != nil {
		return Result{}, err
	}

	linked, err := s.sideload(ctx, r, res, out, include)
	if err != nil {
		return Result{}, err
	}

	return Result{Records: out, Linked: linked}, nil
}

// load fetches ids in the given order. Every id must exist.
func (s *resourceService) load(ctx context.Context, name string, ids []string) ([]models.Record, error) {
	if len(ids) == 1 {
		rec, err := s.adapter.Find(ctx, name, ids[0])
		if err != nil {
			return nil, err
		}
		return []models.Record{rec}, nil
	}

	found, err := s.adapter.FindMany(ctx, name, models.Query{IDs: ids})
	if err != nil {
		return nil, err
	}

	ordered := store.OrderByIDs(found, ids)
	if len(ordered) < len(uniqueIDs(ids)) {
		return nil, fmt.Errorf("%w: %s %v", store.ErrNotFound, name, missingIDs(ordered, ids))
	}
	return ordered, nil
}

func (s *resourceService) Related(ctx context.Context, r *http.Request, name, id, relation string) (string, []models.Record, error) {
	res, err := s.resource(name)
	if err != nil {
		return "", nil, err
	}

	field, ok := res.Schema[relation]
	if !ok || !field.IsRelationship() {
		return "", nil, fmt.Errorf("%w: %s.%s", ErrUnknownRelation, name, relation)
	}

	owner, err := s.adapter.Find(ctx, name, id)
	if err != nil {
		return "", nil, err
	}
	owner, err = s.transforms.RunAfter(ctx, hookRequest(r, http.MethodGet, name), owner)
	if err != nil {
		return "", nil, err
	}
	if owner == nil {
		return "", nil, fmt.Errorf("%w: %s %q", store.ErrNotFound, name, id)
	}

	ids := owner.RefIDs(relation)
	if len(ids) == 0 {
		return field.Ref, []models.Record{}, nil
	}

	found, err := s.adapter.FindMany(ctx, field.Ref, models.Query{IDs: ids})
	if err != nil {
		return "", nil, err
	}

	related, err := s.transforms.RunAfterMany(ctx, hookRequest(r, http.MethodGet, field.Ref), store.OrderByIDs(found, ids))
	if err != nil {
		return "", nil, err
	}
	return field.Ref, related, nil
}

func (s *resourceService) Create(ctx context.Context, r *http.Request, name string, records []models.Record) ([]models.Record, error) {
	res, err := s.resource(name)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoRecordsProvided
	}

	req := hookRequest(r, http.MethodPost, name)
	validator := validators.NewRecordValidator(res.Schema)

	created := make([]models.Record, 0, len(records))
	for _, rec := range records {
		prepared, err := s.prepare(ctx, req, validator, rec)
		if err != nil {
			return nil, err
		}

		stored, err := s.adapter.Create(ctx, name, prepared)
		if err != nil {
			return nil, err
		}

		s.syncInverse(ctx, res, nil, stored)
		created = append(created, stored)
	}

	return s.transforms.RunAfterMany(ctx, req, created)
}

func (s *resourceService) Replace(ctx context.Context, r *http.Request, name string, ids []string, records []models.Record) ([]models.Record, error) {
	res, err := s.resource(name)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoRecordsProvided
	}
	if len(records) != len(ids) {
		return nil, fmt.Errorf("%w: %d ids, %d records", ErrInvalidDataProvided, len(ids), len(records))
	}

	req := hookRequest(r, http.MethodPut, name)
	validator := validators.NewRecordValidator(res.Schema)

	updated := make([]models.Record, 0, len(records))
	for i, rec := range records {
		id := ids[i]
		if rec.ID() != "" && rec.ID() != id {
			return nil, fmt.Errorf("%w: %q != %q", ErrIDMismatch, rec.ID(), id)
		}

		old, err := s.adapter.Find(ctx, name, id)
		if err != nil {
			return nil, err
		}

		next := rec.Clone()
		next.SetID(id)
		stored, err := s.update(ctx, req, validator, res, old, next)
		if err != nil {
			return nil, err
		}
		updated = append(updated, stored)
	}

	return s.transforms.RunAfterMany(ctx, req, updated)
}

func (s *resourceService) Patch(ctx context.Context, r *http.Request, name string, ids []string, patch []byte) ([]models.Record, error) {
	res, err := s.resource(name)
	if err != nil {
		return nil, err
	}

	apply, err := decodePatch(patch)
	if err != nil {
		return nil, err
	}

	req := hookRequest(r, http.MethodPatch, name)
	validator := validators.NewRecordValidator(res.Schema)

	updated := make([]models.Record, 0, len(ids))
	for _, id := range ids {
		old, err := s.adapter.Find(ctx, name, id)
		if err != nil {
			return nil, err
		}

		next, err := apply(old)
		if err != nil {
			return nil, err
		}
		if next.ID() != id {
			return nil, fmt.Errorf("%w: %q", ErrPatchChangeID, id)
		}

		stored, err := s.update(ctx, req, validator, res, old, next)
		if err != nil {
			return nil, err
		}
		updated = append(updated, stored)
	}

	return s.transforms.RunAfterMany(ctx, req, updated)
}

func (s *resourceService) Delete(ctx context.Context, r *http.Request, name string, ids []string) error {
	res, err := s.resource(name)
	if err != nil {
		return err
	}

	req := hookRequest(r, http.MethodDelete, name)
	for _, id := range ids {
		old, err := s.adapter.Find(ctx, name, id)
		if err != nil {
			return err
		}

		if _, err = s.transforms.RunBefore(ctx, req, old.Clone()); err != nil {
			return err
		}

		if err = s.adapter.Delete(ctx, name, id); err != nil {
			return err
		}

		s.syncInverse(ctx, res, old, nil)
	}
	return nil
}

// prepare runs the before transforms and normalizes the result against the
// resource schema.
func (s *resourceService) prepare(ctx context.Context, req *hooks.Request, validator *validators.RecordValidator, rec models.Record) (models.Record, error) {
	transformed, err := s.transforms.RunBefore(ctx, req, rec.Clone())
	if err != nil {
		return nil, err
	}

	normalized, err := validator.Normalize(transformed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	return normalized, nil
}

func (s *resourceService) update(ctx context.Context, req *hooks.Request, validator *validators.RecordValidator, res schema.Resource, old, next models.Record) (models.Record, error) {
	id := old.ID()

	prepared, err := s.prepare(ctx, req, validator, next)
	if err != nil {
		return nil, err
	}

	stored, err := s.adapter.Update(ctx, res.Name, id, prepared)
	if err != nil {
		return nil, err
	}

	s.syncInverse(ctx, res, old, stored)
	return stored, nil
}

func uniqueIDs(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func missingIDs(found []models.Record, ids []string) []string {
	present := make(map[string]struct{}, len(found))
	for _, rec := range found {
		present[rec.ID()] = struct{}{}
	}

	var missing []string
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
