// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "net/http"

// withRateLimit answers 429 once the server-wide token bucket is empty.
func (h *Handler) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			h.writeError(w, r, ErrRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}
