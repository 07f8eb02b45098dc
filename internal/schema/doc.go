// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package schema turns loose resource definitions into validated
// [models.Schema] values and keeps the registry of declared resources.
//
// A definition maps field names to one of:
//   - a primitive type name ("string", "number", "boolean", "date",
//     "buffer", "object", "array");
//   - any other string, which is a belongs-to reference to that resource;
//   - a one-element list, which is a has-many reference (or a typed array
//     when the element is a primitive name);
//   - a map with explicit type, ref, many, inverse and required keys.
//
// Every schema stored in a [Registry] is a scrubbed copy. The caller's value
// is never retained.
package schema
