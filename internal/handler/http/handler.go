// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/MKhiriev/go-resource-keeper/internal/config"
	"github.com/MKhiriev/go-resource-keeper/internal/logger"
	"github.com/MKhiriev/go-resource-keeper/internal/metrics"
	"github.com/MKhiriev/go-resource-keeper/internal/schema"
	"github.com/MKhiriev/go-resource-keeper/internal/service"
)

// Handler serves the routes of every registered resource. The route table
// is rebuilt by [Handler.Rebuild] and swapped atomically, so registrations
// made while serving take effect for the next request.
type Handler struct {
	services  *service.Services
	resources *schema.Registry
	cfg       *config.StructuredConfig
	metrics   *metrics.Metrics
	limiter   *rate.Limiter

	router atomic.Pointer[chi.Mux]

	logger *logger.Logger
}

// NewHandler builds the handler and its first route table. m may be nil.
func NewHandler(services *service.Services, resources *schema.Registry, cfg *config.StructuredConfig, m *metrics.Metrics, logger *logger.Logger) *Handler {
	h := &Handler{
		services:  services,
		resources: resources,
		cfg:       cfg,
		metrics:   m,
		logger:    logger,
	}
	if cfg.Server.RateLimit > 0 {
		h.limiter = rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), max(cfg.Server.RateBurst, 1))
	}

	h.Rebuild()
	logger.Info().Msg("http handler created")
	return h
}

// Rebuild regenerates the route table from the resource registry.
func (h *Handler) Rebuild() {
	h.router.Store(h.Init())
	h.logger.Debug().Int("resources", len(h.resources.Names())).Msg("routes rebuilt")
}

// ServeHTTP dispatches to the current route table.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.Load().ServeHTTP(w, r)
}

// Routes lists "METHOD pattern" for every route of the current table.
func (h *Handler) Routes() []string {
	var out []string
	_ = chi.Walk(h.router.Load(), func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		out = append(out, method+" "+route)
		return nil
	})
	return out
}

// prefix is the namespace path prefix, "" or "/ns".
func (h *Handler) prefix() string {
	ns := strings.Trim(h.cfg.App.Namespace, "/")
	if ns == "" {
		return ""
	}
	return "/" + ns
}

// collectionPath is the route of a resource collection.
func (h *Handler) collectionPath(plural string) string {
	return h.prefix() + "/" + plural
}

// absoluteURL prefixes path with the configured base URL.
func (h *Handler) absoluteURL(path string) string {
	return strings.TrimRight(h.cfg.App.BaseURL, "/") + path
}
