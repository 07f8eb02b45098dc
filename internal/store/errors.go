// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import "errors"

// Sentinel errors returned by adapters to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrNotFound is returned when a record with the requested id does not
	// exist.
	ErrNotFound = errors.New("record was not found")

	// ErrConflict is returned when a record with the same id already exists.
	ErrConflict = errors.New("record already exists")

	// ErrUnknownResource is returned when an operation targets a resource
	// that was never passed to Model.
	ErrUnknownResource = errors.New("resource is not modeled")

	// ErrNotConnected is returned by adapters used before Connect.
	ErrNotConnected = errors.New("adapter is not connected")

	// ErrInvalidQuery is returned when a query references a field the
	// resource does not have.
	ErrInvalidQuery = errors.New("invalid query")
)

// Low-level database operation errors. These are returned (or wrapped) by
// SQL adapter methods when a SQL-level operation fails before any domain
// logic can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) or DDL fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row fails.
	ErrScanningRow = errors.New("failed to scan record row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan record rows")

	// ErrEncodingRecord is returned when a record cannot be converted to or
	// from its stored JSON form.
	ErrEncodingRecord = errors.New("failed to encode record")
)
