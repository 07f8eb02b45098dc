// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package server runs the HTTP server of the resource API.
//
// It owns the listener lifecycle: startup, signal handling and graceful
// shutdown, which waits for in-flight requests up to a deadline.
package server
