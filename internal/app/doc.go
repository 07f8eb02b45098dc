// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app is the registration facade of the resource server.
//
// An [App] owns the resource registry, the transform registry, the storage
// adapter and the HTTP handler. Resources are declared in code with
// [App.Resource] or loaded from a definitions file, transforms are attached
// with [App.Before] and [App.After], and the route table follows every
// change.
//
// A resource that fails to register is logged and skipped; the rest of the
// application keeps working. Failing to connect the adapter is returned to
// the caller.
package app
