// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import "errors"

var (
	ErrBadRequest           = errors.New("bad request")
	ErrUnauthorized         = errors.New("client unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrTooManyRequests      = errors.New("too many requests")
	ErrInternalServerError  = errors.New("internal server error")

	// ErrUnexpectedResponse is returned when a successful response does not
	// hold the expected collection.
	ErrUnexpectedResponse = errors.New("unexpected response")

	ErrInvalidAddress = errors.New("invalid server address")
)
