// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks records against resource schemas before they
// reach an adapter.
package validators

import "context"

// Validator checks a value. When fields are given only those fields are
// checked, which is how query filters are validated.
type Validator interface {
	Validate(ctx context.Context, value any, fields ...string) error
}
