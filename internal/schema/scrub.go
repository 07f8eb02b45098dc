// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package schema

import (
	"fmt"
	"regexp"

	"github.com/MKhiriev/go-resource-keeper/models"
)

var fieldRegexp = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_-]*$`)

// ReservedFields are keys owned by the serializer. A schema may not declare them.
var ReservedFields = []string{models.IDKey, models.HrefKey, models.LinksKey}

// IsReserved reports whether name is one of [ReservedFields].
func IsReserved(name string) bool {
	for _, r := range ReservedFields {
		if name == r {
			return true
		}
	}
	return false
}

// Scrub returns a copy of s that is safe to store. It fails on reserved
// field names, malformed field names and unknown types.
func Scrub(s models.Schema) (models.Schema, error) {
	out := make(models.Schema, len(s))

	for name, field := range s {
		if IsReserved(name) {
			return nil, fmt.Errorf("%w: %q", ErrReservedField, name)
		}
		if !fieldRegexp.MatchString(name) {
			return nil, fmt.Errorf("%w: field name %q", ErrInvalidDefinition, name)
		}

		switch {
		case field.Type == models.RefType:
			if field.Ref == "" {
				return nil, fmt.Errorf("%w: field %q has no ref", ErrInvalidDefinition, name)
			}
		case field.Type.IsPrimitive():
			if field.Ref != "" || field.Many || field.Inverse != "" {
				return nil, fmt.Errorf("%w: primitive field %q carries relationship options", ErrInvalidDefinition, name)
			}
		default:
			return nil, fmt.Errorf("%w: %q on field %q", ErrUnknownType, field.Type, name)
		}

		out[name] = field
	}

	return out, nil
}
