// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/MKhiriev/go-resource-keeper/internal/logger"
	"github.com/MKhiriev/go-resource-keeper/internal/schema"
	"github.com/MKhiriev/go-resource-keeper/internal/store"
	"github.com/MKhiriev/go-resource-keeper/models"
)

func checkInclude(res schema.Resource, include []string) error {
	for _, rel := range include {
		if field, ok := res.Schema[rel]; !ok || !field.IsRelationship() {
			return fmt.Errorf("%w: %s.%s", ErrUnknownRelation, res.Name, rel)
		}
	}
	return nil
}

// sideload loads the records referenced by the include relationships of
// recs, keyed by the related resource name.
func (s *resourceService) sideload(ctx context.Context, r *http.Request, res schema.Resource, recs []models.Record, include []string) (map[string][]models.Record, error) {
	if len(include) == 0 || len(recs) == 0 {
		return nil, nil
	}

	linked := make(map[string][]models.Record)
	seen := make(map[string]map[string]struct{})

	for _, rel := range include {
		ref := res.Schema[rel].Ref

		var ids []string
		for _, rec := range recs {
			for _, id := range rec.RefIDs(rel) {
				if _, dup := seen[ref][id]; dup || slices.Contains(ids, id) {
					continue
				}
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			continue
		}

		found, err := s.adapter.FindMany(ctx, ref, models.Query{IDs: ids})
		if err != nil {
			return nil, err
		}
		found, err = s.transforms.RunAfterMany(ctx, hookRequest(r, http.MethodGet, ref), store.OrderByIDs(found, ids))
		if err != nil {
			return nil, err
		}

		if seen[ref] == nil {
			seen[ref] = make(map[string]struct{})
		}
		for _, rec := range found {
			seen[ref][rec.ID()] = struct{}{}
		}
		linked[ref] = append(linked[ref], found...)
	}

	return linked, nil
}

// syncInverse updates the inverse side of every relationship of res whose
// ids changed between old and next. A nil old means the record was created,
// a nil next means it was deleted. Failures are logged and do not fail the
// request.
func (s *resourceService) syncInverse(ctx context.Context, res schema.Resource, old, next models.Record) {
	id := old.ID()
	if next != nil {
		id = next.ID()
	}

	for _, name := range res.Schema.Relationships() {
		field := res.Schema[name]
		if field.Inverse == "" {
			continue
		}

		related, ok := s.resources.Get(field.Ref)
		if !ok {
			continue
		}
		inverse, ok := related.Schema[field.Inverse]
		if !ok {
			continue
		}

		var before, after []string
		if old != nil {
			before = old.RefIDs(name)
		}
		if next != nil {
			after = next.RefIDs(name)
		}

		for _, rid := range difference(after, before) {
			s.link(ctx, res, name, field, inverse, rid, id)
		}
		for _, rid := range difference(before, after) {
			s.unlink(ctx, field, inverse, rid, id)
		}
	}
}

// link makes related record rid point back at id through the inverse field.
func (s *resourceService) link(ctx context.Context, res schema.Resource, name string, field, inverse models.Field, rid, id string) {
	rec, err := s.adapter.Find(ctx, field.Ref, rid)
	if err != nil {
		s.logSyncError(ctx, err, field.Ref, rid)
		return
	}

	if inverse.Many {
		ids := rec.RefIDs(field.Inverse)
		if slices.Contains(ids, id) {
			return
		}
		rec[field.Inverse] = append(ids, id)
	} else {
		previous, _ := rec[field.Inverse].(string)
		if previous == id {
			return
		}
		rec[field.Inverse] = id
		if previous != "" {
			// rid moves away from its previous owner
			s.detach(ctx, res.Name, name, previous, rid)
		}
	}

	if _, err = s.adapter.Update(ctx, field.Ref, rid, rec); err != nil {
		s.logSyncError(ctx, err, field.Ref, rid)
	}
}

// unlink removes id from the inverse field of related record rid.
func (s *resourceService) unlink(ctx context.Context, field, inverse models.Field, rid, id string) {
	rec, err := s.adapter.Find(ctx, field.Ref, rid)
	if err != nil {
		s.logSyncError(ctx, err, field.Ref, rid)
		return
	}

	if inverse.Many {
		ids := rec.RefIDs(field.Inverse)
		if !slices.Contains(ids, id) {
			return
		}
		rec[field.Inverse] = slices.DeleteFunc(ids, func(v string) bool { return v == id })
	} else {
		if current, _ := rec[field.Inverse].(string); current != id {
			return
		}
		rec[field.Inverse] = nil
	}

	if _, err = s.adapter.Update(ctx, field.Ref, rid, rec); err != nil {
		s.logSyncError(ctx, err, field.Ref, rid)
	}
}

// detach removes rid from field name of record owner of resource resName.
func (s *resourceService) detach(ctx context.Context, resName, name, owner, rid string) {
	rec, err := s.adapter.Find(ctx, resName, owner)
	if err != nil {
		s.logSyncError(ctx, err, resName, owner)
		return
	}

	ids := rec.RefIDs(name)
	if !slices.Contains(ids, rid) {
		return
	}

	res, _ := s.resources.Get(resName)
	if res.Schema[name].Many {
		rec[name] = slices.DeleteFunc(ids, func(v string) bool { return v == rid })
	} else {
		rec[name] = nil
	}

	if _, err = s.adapter.Update(ctx, resName, owner, rec); err != nil {
		s.logSyncError(ctx, err, resName, owner)
	}
}

func (s *resourceService) logSyncError(ctx context.Context, err error, name, id string) {
	event := logger.FromContext(ctx).Warn()
	if !errors.Is(err, store.ErrNotFound) {
		event = logger.FromContext(ctx).Error()
	}
	event.Err(err).
		Str("func", "resourceService.syncInverse").
		Str("resource", name).
		Str("id", id).
		Msg("failed to update inverse relationship")
}

// difference returns the items of a that are not in b.
func difference(a, b []string) []string {
	var out []string
	for _, v := range a {
		if !slices.Contains(b, v) && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
