// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package http serves the registered resources as a JSON REST API.
//
// Every resource gets a collection route (/<plural>), an item route
// (/<plural>/{ids}, ids comma separated) and, when it has relationships, a
// related route (/<plural>/{ids}/{relation}). The readOnly marker drops the
// write routes and noIndex drops the collection listing; removed routes
// answer 404. The route table is rebuilt whenever the registry changes.
//
// Bodies use the document format of [models.Document]: records are keyed by
// the resource's plural name, relationship values travel under "links" and
// every record carries its "href". Tracing, access logging, metrics, gzip,
// CORS, rate limiting and bearer authentication of writes are handled here
// before requests reach the service layer.
package http
