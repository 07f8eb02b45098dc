// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// requireJSON rejects write bodies whose Content-Type is not JSON with 415.
// application/json and any +json suffix (json-patch, merge-patch) pass.
func (h *Handler) requireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType := r.Header.Get("Content-Type")
		if !isJSONMediaType(contentType) {
			h.writeError(w, r, fmt.Errorf("%w: got %q", ErrUnsupportedMediaType, contentType))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isJSONMediaType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
