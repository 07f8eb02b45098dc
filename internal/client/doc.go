// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client is a Go client for the resource API.
//
// It speaks the document format of the server: records are sent and
// received keyed by the resource's plural name, and error responses are
// mapped to the sentinel errors of this package so callers can use
// [errors.Is] (e.g. [ErrNotFound] for 404, [ErrConflict] for 409).
package client
