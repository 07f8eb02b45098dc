// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// SortField is one ordering criterion of a [Query].
type SortField struct {
	Field string
	Desc  bool
}

// Query narrows a collection read. The zero value selects every record in
// adapter order.
type Query struct {
	// IDs restricts the result to the given record ids.
	IDs []string

	// Filter holds equality constraints keyed by field name. Values are
	// already coerced to the field's schema type.
	Filter map[string]any

	Sort   []SortField
	Limit  int
	Offset int
}

// IsZero reports whether the query has no constraints at all.
func (q Query) IsZero() bool {
	return len(q.IDs) == 0 && len(q.Filter) == 0 && len(q.Sort) == 0 && q.Limit == 0 && q.Offset == 0
}
