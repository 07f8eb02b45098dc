// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

// Sentinel errors produced by the transport layer itself. Callers can match
// against them with [errors.Is].
var (
	// ErrInvalidBody is returned when a request body is not a valid
	// document or exceeds the size limit.
	ErrInvalidBody = errors.New("invalid request body")

	// ErrMissingCollection is returned when a write body has no collection
	// keyed by the resource's plural name.
	ErrMissingCollection = errors.New("request body has no collection for this resource")

	// ErrUnsupportedMediaType is returned for writes whose Content-Type is
	// not JSON.
	ErrUnsupportedMediaType = errors.New("content type must be JSON")

	// ErrEmptyAuthorizationHeader is returned by the auth middleware when the
	// incoming write request does not include an "Authorization" header.
	ErrEmptyAuthorizationHeader = errors.New("empty `Authorization` header")

	// ErrInvalidToken is returned when the bearer token cannot be verified.
	ErrInvalidToken = errors.New("invalid bearer token")

	// ErrRateLimited is returned when the token bucket is empty.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrNotFound answers paths that match no route.
	ErrNotFound = errors.New("route not found")
)
