// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"fmt"
	"net/http"

	"github.com/MKhiriev/go-resource-keeper/internal/utils"
)

// auth enforces bearer authentication on write routes when a token sign key
// is configured; otherwise it is a pass-through.
//
// The token must be an HS256 JWT signed with App.TokenSignKey (and issued by
// App.TokenIssuer when set). On success the "sub" claim is stored in the
// request context under [utils.SubjectCtxKey] so transforms can read it.
// Failures are answered with 401.
func (h *Handler) auth(next http.Handler) http.Handler {
	signKey, issuer := h.cfg.App.TokenSignKey, h.cfg.App.TokenIssuer
	if signKey == "" {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			h.writeError(w, r, ErrEmptyAuthorizationHeader)
			return
		}

		tokenString, err := utils.ParseBearerToken(authHeader)
		if err != nil {
			h.writeError(w, r, fmt.Errorf("%w: %w", ErrInvalidToken, err))
			return
		}

		subject, err := utils.ValidateAndParseJWTToken(tokenString, signKey, issuer)
		if err != nil {
			h.writeError(w, r, fmt.Errorf("%w: %w", ErrInvalidToken, err))
			return
		}

		next.ServeHTTP(w, r.WithContext(utils.WithSubject(r.Context(), subject)))
	})
}
