// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package schema

import "errors"

var (
	ErrReservedField       = errors.New("reserved field name")
	ErrUnknownType         = errors.New("unknown field type")
	ErrInvalidDefinition   = errors.New("invalid field definition")
	ErrInvalidName         = errors.New("invalid resource name")
	ErrResourceExists      = errors.New("resource already exists")
	ErrUnknownResource     = errors.New("unknown resource")
	ErrUnresolvedReference = errors.New("reference to unregistered resource")
	ErrInvalidInverse      = errors.New("invalid inverse field")
	ErrPluralConflict      = errors.New("plural name already in use")
)
