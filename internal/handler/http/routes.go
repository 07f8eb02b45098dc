// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MKhiriev/go-resource-keeper/internal/schema"
)

// MetricsPath serves the Prometheus registry when metrics are enabled.
const MetricsPath = "/" + schema.MetricsPlural

// Init builds a fresh route table for the resources registered right now.
func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID, h.withLogging, h.withMetrics, withGZip)

	if h.cfg.App.CORSEnabled() {
		router.Use(withCORS(defaultCORSConfig()))
	}
	if h.limiter != nil {
		router.Use(h.withRateLimit)
	}
	if h.cfg.Server.RequestTimeout > 0 {
		router.Use(middleware.Timeout(h.cfg.Server.RequestTimeout))
	}
	router.Use(middleware.GetHead)

	if h.metrics != nil && h.cfg.App.Metrics {
		router.Method(http.MethodGet, MetricsPath, h.metrics.Handler())
	}

	for _, res := range h.resources.Resources() {
		h.mountResource(router, res)
	}

	router.NotFound(h.notFound)
	router.MethodNotAllowed(h.checkHTTPMethod(router))

	return router
}

// mountResource registers the routes of res. readOnly drops every write
// route and noIndex drops the collection listing.
func (h *Handler) mountResource(router chi.Router, res schema.Resource) {
	base := h.collectionPath(res.Plural)
	item := base + "/{" + idsParam + "}"

	writes := router.With(h.auth)
	bodyWrites := writes.With(h.requireJSON)

	if !res.NoIndex {
		router.Get(base, h.index(res))
	}
	router.Get(item, h.show(res))
	if len(res.Schema.Relationships()) > 0 {
		router.Get(item+"/{"+relationParam+"}", h.related(res))
	}

	if res.ReadOnly {
		return
	}
	bodyWrites.Post(base, h.create(res))
	bodyWrites.Put(item, h.replace(res))
	bodyWrites.Patch(item, h.patch(res))
	writes.Delete(item, h.remove(res))
}
