// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "sort"

// FieldType names the primitive kind of a schema field. Relationship fields
// carry [RefType].
type FieldType string

const (
	StringType  FieldType = "string"
	NumberType  FieldType = "number"
	BooleanType FieldType = "boolean"
	DateType    FieldType = "date"
	BufferType  FieldType = "buffer"
	ObjectType  FieldType = "object"
	ArrayType   FieldType = "array"
	RefType     FieldType = "ref"
)

// PrimitiveTypes lists every non-relationship field type accepted in a schema.
var PrimitiveTypes = []FieldType{
	StringType,
	NumberType,
	BooleanType,
	DateType,
	BufferType,
	ObjectType,
	ArrayType,
}

// IsPrimitive reports whether t is one of [PrimitiveTypes].
func (t FieldType) IsPrimitive() bool {
	for _, p := range PrimitiveTypes {
		if p == t {
			return true
		}
	}
	return false
}

// Field describes a single attribute of a resource.
//
// A relationship field has Type == [RefType] and names the related resource
// in Ref:
//   - belongs-to: Many == false, the record stores a single related id;
//   - has-many:   Many == true, the record stores an array of related ids.
//
// Inverse optionally names the field on the related resource that points
// back at this one. Both sides are kept in sync by the service layer.
type Field struct {
	Type     FieldType `json:"type" yaml:"type"`
	Ref      string    `json:"ref,omitempty" yaml:"ref,omitempty"`
	Many     bool      `json:"many,omitempty" yaml:"many,omitempty"`
	Inverse  string    `json:"inverse,omitempty" yaml:"inverse,omitempty"`
	Required bool      `json:"required,omitempty" yaml:"required,omitempty"`
}

// IsRelationship reports whether the field references another resource.
func (f Field) IsRelationship() bool {
	return f.Type == RefType && f.Ref != ""
}

// Schema maps field names to their definitions.
type Schema map[string]Field

// Names returns the schema's field names in lexical order.
func (s Schema) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Relationships returns the names of all relationship fields in lexical order.
func (s Schema) Relationships() []string {
	names := make([]string, 0, len(s))
	for _, name := range s.Names() {
		if s[name].IsRelationship() {
			names = append(names, name)
		}
	}
	return names
}

// Clone returns a copy of the schema that shares no map with s.
func (s Schema) Clone() Schema {
	if s == nil {
		return nil
	}
	out := make(Schema, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
