// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// checkHTTPMethod returns the router's MethodNotAllowed handler.
//
// Chi answers 405 when a path matches a route but the method is not
// handled. Routes removed by the readOnly and noIndex markers must look
// like they never existed, so an unhandled method is answered with 404
// instead.
//
// If the method IS registered for a route whose pattern equals the raw
// request path, the request is forwarded to the router's normal pipeline.
// Parameterised patterns never match literally, so those always get 404.
func (h *Handler) checkHTTPMethod(router *chi.Mux) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var foundRoute chi.Route
		for _, route := range router.Routes() {
			if route.Pattern == r.URL.Path {
				foundRoute = route
				break
			}
		}

		if _, ok := foundRoute.Handlers[r.Method]; !ok {
			h.writeError(w, r, fmt.Errorf("%w: %s %s", ErrNotFound, r.Method, r.URL.Path))
			return
		}

		router.ServeHTTP(w, r)
	}
}
