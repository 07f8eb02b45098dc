// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package schema

import (
	"fmt"
	"strings"

	"github.com/MKhiriev/go-resource-keeper/models"
)

// Parse converts a loose definition into a [models.Schema]. raw may be a
// models.Schema, a map[string]models.Field or a map[string]any as decoded
// from YAML or JSON. The result is not scrubbed, see [Scrub].
func Parse(raw any) (models.Schema, error) {
	switch def := raw.(type) {
	case nil:
		return models.Schema{}, nil
	case models.Schema:
		return def.Clone(), nil
	case map[string]models.Field:
		return models.Schema(def).Clone(), nil
	case map[string]any:
		out := make(models.Schema, len(def))
		for name, value := range def {
			field, err := parseField(value)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", name, err)
			}
			out[name] = field
		}
		return out, nil
	case map[string]string:
		out := make(models.Schema, len(def))
		for name, value := range def {
			out[name] = parseTypeName(value)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unsupported schema definition %T", ErrInvalidDefinition, raw)
	}
}

func parseField(value any) (models.Field, error) {
	switch v := value.(type) {
	case models.Field:
		return v, nil
	case string:
		return parseTypeName(v), nil
	case []string:
		items := make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}
		return parseList(items)
	case []any:
		return parseList(v)
	case map[string]any:
		return parseMap(v)
	default:
		return models.Field{}, fmt.Errorf("%w: unsupported value %T", ErrInvalidDefinition, value)
	}
}

func parseTypeName(name string) models.Field {
	t := models.FieldType(strings.ToLower(strings.TrimSpace(name)))
	if t.IsPrimitive() {
		return models.Field{Type: t}
	}
	return models.Field{Type: models.RefType, Ref: strings.TrimSpace(name)}
}

func parseList(items []any) (models.Field, error) {
	if len(items) != 1 {
		return models.Field{}, fmt.Errorf("%w: list definitions take exactly one element", ErrInvalidDefinition)
	}

	inner, err := parseField(items[0])
	if err != nil {
		return models.Field{}, err
	}

	if inner.Type.IsPrimitive() {
		return models.Field{Type: models.ArrayType}, nil
	}
	inner.Many = true
	return inner, nil
}

func parseMap(m map[string]any) (models.Field, error) {
	var field models.Field

	if ref, ok := m["ref"]; ok {
		s, ok := ref.(string)
		if !ok || s == "" {
			return field, fmt.Errorf("%w: ref must be a resource name", ErrInvalidDefinition)
		}
		field.Type = models.RefType
		field.Ref = s
	}

	if t, ok := m["type"]; ok {
		s, ok := t.(string)
		if !ok {
			return field, fmt.Errorf("%w: type must be a string", ErrInvalidDefinition)
		}
		switch {
		case field.Ref == "" && models.FieldType(s) == models.RefType:
			return field, fmt.Errorf("%w: type ref needs a ref key", ErrInvalidDefinition)
		case field.Ref == "":
			field = parseTypeName(s)
		case models.FieldType(s) != models.RefType:
			return field, fmt.Errorf("%w: type %q conflicts with ref", ErrInvalidDefinition, s)
		}
	}

	if field.Type == "" {
		return field, fmt.Errorf("%w: either type or ref is required", ErrInvalidDefinition)
	}

	var err error
	if field.Many, err = boolKey(m, "many"); err != nil {
		return field, err
	}
	if field.Required, err = boolKey(m, "required"); err != nil {
		return field, err
	}

	if inv, ok := m["inverse"]; ok {
		s, ok := inv.(string)
		if !ok {
			return field, fmt.Errorf("%w: inverse must be a field name", ErrInvalidDefinition)
		}
		field.Inverse = s
	}

	return field, nil
}

func boolKey(m map[string]any, key string) (bool, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s must be a boolean", ErrInvalidDefinition, key)
	}
	return b, nil
}
