// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidFieldValue = errors.New("invalid field value")
	ErrRequiredField     = errors.New("required field is missing")
	ErrNotFilterable     = errors.New("field cannot be used as a filter")
)
