// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-resource-keeper/internal/hooks"
	"github.com/MKhiriev/go-resource-keeper/internal/logger"
	"github.com/MKhiriev/go-resource-keeper/internal/schema"
	"github.com/MKhiriev/go-resource-keeper/internal/service"
	"github.com/MKhiriev/go-resource-keeper/internal/store"
	"github.com/MKhiriev/go-resource-keeper/internal/utils"
	"github.com/MKhiriev/go-resource-keeper/internal/validators"
)

var errorStatusMap = map[error]int{
	ErrInvalidBody:              http.StatusBadRequest,
	ErrMissingCollection:        http.StatusBadRequest,
	ErrUnsupportedMediaType:     http.StatusUnsupportedMediaType,
	ErrEmptyAuthorizationHeader: http.StatusUnauthorized,
	ErrInvalidToken:             http.StatusUnauthorized,
	ErrRateLimited:              http.StatusTooManyRequests,
	ErrNotFound:                 http.StatusNotFound,

	service.ErrInvalidDataProvided: http.StatusBadRequest,
	service.ErrNoRecordsProvided:   http.StatusBadRequest,
	service.ErrIDMismatch:          http.StatusBadRequest,
	service.ErrInvalidPatch:        http.StatusBadRequest,
	service.ErrPatchChangeID:       http.StatusBadRequest,
	service.ErrUnknownRelation:     http.StatusBadRequest,
	service.ErrInvalidQuery:        http.StatusBadRequest,

	validators.ErrUnknownField:      http.StatusBadRequest,
	validators.ErrInvalidFieldValue: http.StatusBadRequest,
	validators.ErrRequiredField:     http.StatusBadRequest,
	validators.ErrNotFilterable:     http.StatusBadRequest,

	hooks.ErrForbidden:        http.StatusForbidden,
	schema.ErrUnknownResource: http.StatusNotFound,

	store.ErrNotFound:        http.StatusNotFound,
	store.ErrUnknownResource: http.StatusNotFound,
	store.ErrConflict:        http.StatusConflict,
	store.ErrInvalidQuery:    http.StatusBadRequest,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// writeError logs err and answers with the mapped status. The detail field
// carries err's message unless the server runs in production.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFromError(err)

	log := logger.FromRequest(r)
	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).Int("status", status).Str("func", "*Handler.writeError").Msg("request failed")

	body := errorResponse{Error: http.StatusText(status)}
	if !h.cfg.App.Production {
		body.Detail = err.Error()
	}
	if _, werr := utils.WriteJSON(w, body, status); werr != nil {
		log.Err(werr).Str("func", "*Handler.writeError").Msg("failed to write error response")
	}
}
