// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"fmt"
	"reflect"
)

// Reserved keys. They are never accepted as schema field names.
const (
	IDKey    = "id"
	HrefKey  = "href"
	LinksKey = "links"
)

// Record is a single resource instance as seen by adapters and hooks.
// Relationship fields hold a string id (belongs-to) or a []string of ids
// (has-many).
type Record map[string]any

// ID returns the record identifier or an empty string when it is not set.
func (r Record) ID() string {
	switch id := r[IDKey].(type) {
	case string:
		return id
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}

// SetID stores id under [IDKey].
func (r Record) SetID(id string) {
	r[IDKey] = id
}

// Clone returns a deep copy of the record. Nested maps and slices are copied
// so that hooks and adapters can mutate the result freely.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

// RefIDs returns the related ids stored under field, regardless of whether
// the value is a single id, a []string, or a decoded []any.
func (r Record) RefIDs(field string) []string {
	return ToStringSlice(r[field])
}

// ToStringSlice converts a relationship value into a list of ids. Values of
// unexpected types are skipped.
func ToStringSlice(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}

	// named slice types such as bson primitive.A
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil
	}
	out := make([]string, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		if s, ok := rv.Index(i).Interface().(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case Record:
		return val.Clone()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	default:
		return v
	}
}
