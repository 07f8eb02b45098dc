// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import "errors"

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")
	ErrNoRecordsProvided   = errors.New("no records provided")
	ErrIDMismatch          = errors.New("record id does not match the request")

	ErrInvalidPatch  = errors.New("invalid patch document")
	ErrPatchChangeID = errors.New("patch must not change the record id")

	ErrUnknownRelation = errors.New("unknown relationship")
	ErrInvalidQuery    = errors.New("invalid query parameter")
)
