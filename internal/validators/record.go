// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/MKhiriev/go-resource-keeper/models"
)

// dateLayouts are tried in order when a date arrives as a string.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// RecordValidator checks records against a single resource schema.
type RecordValidator struct {
	schema models.Schema
}

// NewRecordValidator returns a validator for records of schema s.
func NewRecordValidator(s models.Schema) *RecordValidator {
	return &RecordValidator{schema: s}
}

// Validate implements [Validator]. obj must be a models.Record. When fields
// are given only those keys are checked and required fields are not
// enforced.
func (v *RecordValidator) Validate(_ context.Context, obj any, fields ...string) error {
	var rec models.Record
	switch value := obj.(type) {
	case models.Record:
		rec = value
	case *models.Record:
		rec = *value
	case map[string]any:
		rec = value
	default:
		return ErrUnsupportedType
	}

	if len(fields) > 0 {
		for _, name := range fields {
			if _, err := v.normalizeField(name, rec[name]); err != nil {
				return err
			}
		}
		return nil
	}

	_, err := v.Normalize(rec)
	return err
}

// Normalize checks every field of rec and returns a copy with values in
// their canonical form: numbers as float64, dates as RFC 3339 strings,
// buffers as base64 strings and references as string ids or []string.
// The id key is kept as a string; other reserved keys are dropped.
func (v *RecordValidator) Normalize(rec models.Record) (models.Record, error) {
	out := make(models.Record, len(rec))

	for name, value := range rec {
		switch name {
		case models.IDKey:
			if value != nil {
				out[name] = rec.ID()
			}
			continue
		case models.HrefKey, models.LinksKey:
			continue
		}

		normalized, err := v.normalizeField(name, value)
		if err != nil {
			return nil, err
		}
		out[name] = normalized
	}

	for name, field := range v.schema {
		if field.Required && out[name] == nil {
			return nil, fmt.Errorf("%w: %q", ErrRequiredField, name)
		}
	}

	return out, nil
}

func (v *RecordValidator) normalizeField(name string, value any) (any, error) {
	field, ok := v.schema[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if value == nil {
		return nil, nil
	}

	normalized, err := normalizeValue(field, value)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidFieldValue, name, err)
	}
	return normalized, nil
}

// Coerce converts a raw query-string value into the type of field, so that
// it compares equal to stored values.
func (v *RecordValidator) Coerce(name, raw string) (any, error) {
	if name == models.IDKey {
		return raw, nil
	}

	field, ok := v.schema[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}

	switch field.Type {
	case models.StringType, models.RefType:
		return raw, nil
	case models.NumberType:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidFieldValue, name, err)
		}
		return f, nil
	case models.BooleanType:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidFieldValue, name, err)
		}
		return b, nil
	case models.DateType:
		d, err := normalizeDate(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidFieldValue, name, err)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrNotFilterable, name)
	}
}

func normalizeValue(field models.Field, value any) (any, error) {
	if field.IsRelationship() {
		return normalizeRef(field, value)
	}

	switch field.Type {
	case models.StringType:
		if s, ok := value.(string); ok {
			return s, nil
		}
	case models.NumberType:
		return normalizeNumber(value)
	case models.BooleanType:
		if b, ok := value.(bool); ok {
			return b, nil
		}
	case models.DateType:
		return normalizeDate(value)
	case models.BufferType:
		switch b := value.(type) {
		case []byte:
			return base64.StdEncoding.EncodeToString(b), nil
		case string:
			if _, err := base64.StdEncoding.DecodeString(b); err != nil {
				return nil, err
			}
			return b, nil
		}
	case models.ObjectType:
		if m, ok := toMap(value); ok {
			return m, nil
		}
	case models.ArrayType:
		if a, ok := toSlice(value); ok {
			return a, nil
		}
	}

	return nil, fmt.Errorf("expected %s, got %T", field.Type, value)
}

func normalizeRef(field models.Field, value any) (any, error) {
	if !field.Many {
		if s, ok := value.(string); ok {
			return s, nil
		}
		return nil, fmt.Errorf("expected %s id, got %T", field.Ref, value)
	}

	items, ok := toSlice(value)
	if !ok {
		if s, isString := value.(string); isString {
			items = []any{s}
		} else {
			return nil, fmt.Errorf("expected list of %s ids, got %T", field.Ref, value)
		}
	}

	ids := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok || s == "" {
			return nil, fmt.Errorf("expected %s id, got %T", field.Ref, item)
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		ids = append(ids, s)
	}
	return ids, nil
}

func normalizeNumber(value any) (any, error) {
	switch n := value.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	default:
		return nil, fmt.Errorf("expected number, got %T", value)
	}
}

func normalizeDate(value any) (any, error) {
	switch d := value.(type) {
	case time.Time:
		return d.UTC().Format(time.RFC3339Nano), nil
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, d); err == nil {
				return t.UTC().Format(time.RFC3339Nano), nil
			}
		}
		return nil, fmt.Errorf("unrecognized date %q", d)
	case float64:
		// milliseconds since epoch
		return time.UnixMilli(int64(d)).UTC().Format(time.RFC3339Nano), nil
	default:
		return nil, fmt.Errorf("expected date, got %T", value)
	}
}

func toMap(value any) (map[string]any, bool) {
	switch m := value.(type) {
	case map[string]any:
		return m, true
	case models.Record:
		return m, true
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func toSlice(value any) ([]any, bool) {
	if a, ok := value.([]any); ok {
		return a, true
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
