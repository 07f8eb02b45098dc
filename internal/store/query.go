// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"

	"github.com/MKhiriev/go-resource-keeper/internal/utils"
	"github.com/MKhiriev/go-resource-keeper/models"
)

// prepareRecord copies rec and makes sure it carries an id.
func prepareRecord(rec models.Record) models.Record {
	out := rec.Clone()
	if out == nil {
		out = models.Record{}
	}
	if out.ID() == "" {
		out.SetID(utils.NewID())
	} else {
		out.SetID(out.ID())
	}
	return out
}

// checkQuery rejects filters and sort keys that are not part of schema.
func checkQuery(schema models.Schema, q models.Query) error {
	for field := range q.Filter {
		if _, ok := schema[field]; !ok && field != models.IDKey {
			return fmt.Errorf("%w: unknown filter field %q", ErrInvalidQuery, field)
		}
	}
	for _, s := range q.Sort {
		if _, ok := schema[s.Field]; !ok && s.Field != models.IDKey {
			return fmt.Errorf("%w: unknown sort field %q", ErrInvalidQuery, s.Field)
		}
	}
	return nil
}

// ApplyQuery filters, sorts and pages recs in memory. recs must be in
// storage order; the result keeps that order unless q.Sort is set.
func ApplyQuery(recs []models.Record, q models.Query) []models.Record {
	out := make([]models.Record, 0, len(recs))

	var ids map[string]struct{}
	if len(q.IDs) > 0 {
		ids = make(map[string]struct{}, len(q.IDs))
		for _, id := range q.IDs {
			ids[id] = struct{}{}
		}
	}

	for _, rec := range recs {
		if ids != nil {
			if _, ok := ids[rec.ID()]; !ok {
				continue
			}
		}
		if !matches(rec, q.Filter) {
			continue
		}
		out = append(out, rec)
	}

	if len(q.Sort) > 0 {
		slices.SortStableFunc(out, func(a, b models.Record) int {
			for _, s := range q.Sort {
				c := compareValues(a[s.Field], b[s.Field])
				if s.Desc {
					c = -c
				}
				if c != 0 {
					return c
				}
			}
			return 0
		})
	}

	return page(out, q.Offset, q.Limit)
}

// OrderByIDs reorders recs to follow ids. Records whose id is not listed
// are dropped.
func OrderByIDs(recs []models.Record, ids []string) []models.Record {
	byID := make(map[string]models.Record, len(recs))
	for _, rec := range recs {
		byID[rec.ID()] = rec
	}

	out := make([]models.Record, 0, len(ids))
	for _, id := range ids {
		if rec, ok := byID[id]; ok {
			out = append(out, rec)
			delete(byID, id)
		}
	}
	return out
}

func page(recs []models.Record, offset, limit int) []models.Record {
	if offset > 0 {
		if offset >= len(recs) {
			return []models.Record{}
		}
		recs = recs[offset:]
	}
	if limit > 0 && limit < len(recs) {
		recs = recs[:limit]
	}
	return recs
}

func matches(rec models.Record, filter map[string]any) bool {
	for field, want := range filter {
		got := rec[field]
		if field == models.IDKey {
			got = rec.ID()
		}
		if !valueMatches(got, want) {
			return false
		}
	}
	return true
}

// valueMatches compares a stored value with a filter value. A list of ids
// matches when it contains the wanted id.
func valueMatches(got, want any) bool {
	if reflect.DeepEqual(got, want) {
		return true
	}
	if s, ok := want.(string); ok {
		return slices.Contains(models.ToStringSlice(got), s)
	}
	return false
}

// compareValues orders nil first, then numbers, strings and booleans.
// Values of other kinds compare equal.
func compareValues(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}

	switch av := a.(type) {
	case float64:
		return cmp.Compare(av, b.(float64))
	case string:
		return cmp.Compare(av, b.(string))
	case bool:
		switch {
		case av == b.(bool):
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	}
	return 0
}

func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case float64:
		return 1
	case string:
		return 2
	case bool:
		return 3
	default:
		return 4
	}
}
