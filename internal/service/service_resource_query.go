// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/MKhiriev/go-resource-keeper/internal/validators"
	"github.com/MKhiriev/go-resource-keeper/models"
)

// Query string parameters understood by [ResourceService.Query].
const (
	ParamIDs     = "ids"
	ParamSort    = "sort"
	ParamLimit   = "limit"
	ParamOffset  = "offset"
	ParamInclude = "include"

	filterPrefix = "filter["
)

func (s *resourceService) Query(name string, values url.Values) (models.Query, []string, error) {
	res, err := s.resource(name)
	if err != nil {
		return models.Query{}, nil, err
	}
	validator := validators.NewRecordValidator(res.Schema)

	var q models.Query
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		value := vals[0]

		switch {
		case key == ParamIDs:
			q.IDs = SplitList(value)
		case key == ParamSort:
			for _, item := range SplitList(value) {
				field, desc := strings.CutPrefix(item, "-")
				if field != models.IDKey {
					if _, ok := res.Schema[field]; !ok {
						return models.Query{}, nil, fmt.Errorf("%w: sort field %q", ErrInvalidQuery, field)
					}
				}
				q.Sort = append(q.Sort, models.SortField{Field: field, Desc: desc})
			}
		case key == ParamLimit:
			if q.Limit, err = nonNegative(key, value); err != nil {
				return models.Query{}, nil, err
			}
		case key == ParamOffset:
			if q.Offset, err = nonNegative(key, value); err != nil {
				return models.Query{}, nil, err
			}
		case strings.HasPrefix(key, filterPrefix) && strings.HasSuffix(key, "]"):
			field := key[len(filterPrefix) : len(key)-1]
			coerced, err := validator.Coerce(field, value)
			if err != nil {
				return models.Query{}, nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
			}
			if q.Filter == nil {
				q.Filter = make(map[string]any)
			}
			q.Filter[field] = coerced
		}
	}

	var include []string
	if raw := values.Get(ParamInclude); raw != "" {
		include = SplitList(raw)
		if err = checkInclude(res, include); err != nil {
			return models.Query{}, nil, err
		}
	}

	return q, include, nil
}

// SplitList splits a comma separated list, dropping empty items.
func SplitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func nonNegative(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", ErrInvalidQuery, key)
	}
	return n, nil
}

type patchFunc func(models.Record) (models.Record, error)

// decodePatch accepts an RFC 6902 JSON Patch (array) or an RFC 7386 JSON
// Merge Patch (object).
func decodePatch(body []byte) (patchFunc, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrInvalidPatch)
	}

	switch body[0] {
	case '[':
		patch, err := jsonpatch.DecodePatch(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPatch, err)
		}
		return func(rec models.Record) (models.Record, error) {
			return applyPatch(rec, patch.Apply)
		}, nil
	case '{':
		if !json.Valid(body) {
			return nil, fmt.Errorf("%w: malformed merge patch", ErrInvalidPatch)
		}
		return func(rec models.Record) (models.Record, error) {
			return applyPatch(rec, func(doc []byte) ([]byte, error) {
				return jsonpatch.MergePatch(doc, body)
			})
		}, nil
	default:
		return nil, fmt.Errorf("%w: expected a JSON array or object", ErrInvalidPatch)
	}
}

func applyPatch(rec models.Record, apply func([]byte) ([]byte, error)) (models.Record, error) {
	doc, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPatch, err)
	}

	patched, err := apply(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPatch, err)
	}

	var out models.Record
	if err = json.Unmarshal(patched, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPatch, err)
	}
	if out == nil {
		return nil, fmt.Errorf("%w: patch removed the record", ErrInvalidPatch)
	}
	return out, nil
}
