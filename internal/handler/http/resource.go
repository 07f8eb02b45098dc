// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-resource-keeper/internal/logger"
	"github.com/MKhiriev/go-resource-keeper/internal/schema"
	"github.com/MKhiriev/go-resource-keeper/internal/service"
	"github.com/MKhiriev/go-resource-keeper/internal/utils"
	"github.com/MKhiriev/go-resource-keeper/models"
)

const (
	idsParam      = "ids"
	relationParam = "relation"
)

func (h *Handler) index(res schema.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, include, err := h.services.ResourceService.Query(res.Name, r.URL.Query())
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		result, err := h.services.ResourceService.FindMany(r.Context(), r, res.Name, q, include)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		h.writeDocument(w, r, h.document(res, result.Records, result.Linked), http.StatusOK)
	}
}

func (h *Handler) show(res schema.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := requestIDs(r)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		include := service.SplitList(r.URL.Query().Get(service.ParamInclude))

		result, err := h.services.ResourceService.Find(r.Context(), r, res.Name, ids, include)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		h.writeDocument(w, r, h.document(res, result.Records, result.Linked), http.StatusOK)
	}
}

func (h *Handler) related(res schema.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := requestIDs(r)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		if len(ids) != 1 {
			h.writeError(w, r, fmt.Errorf("%w: related records are served for a single id", ErrNotFound))
			return
		}

		ref, recs, err := h.services.ResourceService.Related(r.Context(), r, res.Name, ids[0], chi.URLParam(r, relationParam))
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		refRes, ok := h.resources.Get(ref)
		if !ok {
			h.writeError(w, r, fmt.Errorf("%w: %q", schema.ErrUnknownResource, ref))
			return
		}
		h.writeDocument(w, r, h.document(refRes, recs, nil), http.StatusOK)
	}
}

func (h *Handler) create(res schema.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := decodeRecords(res, http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		created, err := h.services.ResourceService.Create(r.Context(), r, res.Name, recs)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		ids := make([]string, 0, len(created))
		for _, rec := range created {
			ids = append(ids, rec.ID())
		}
		if len(ids) > 0 {
			w.Header().Set("Location", h.recordURL(res.Plural, ids...))
		}

		h.writeDocument(w, r, h.document(res, created, nil), http.StatusCreated)
	}
}

func (h *Handler) replace(res schema.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := requestIDs(r)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		recs, err := decodeRecords(res, http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		updated, err := h.services.ResourceService.Replace(r.Context(), r, res.Name, ids, recs)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		h.writeDocument(w, r, h.document(res, updated, nil), http.StatusOK)
	}
}

func (h *Handler) patch(res schema.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := requestIDs(r)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			h.writeError(w, r, fmt.Errorf("%w: %w", ErrInvalidBody, err))
			return
		}
		body, err = patchBody(res, body)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		updated, err := h.services.ResourceService.Patch(r.Context(), r, res.Name, ids, body)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		h.writeDocument(w, r, h.document(res, updated, nil), http.StatusOK)
	}
}

func (h *Handler) remove(res schema.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := requestIDs(r)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		if err = h.services.ResourceService.Delete(r.Context(), r, res.Name, ids); err != nil {
			h.writeError(w, r, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, r, fmt.Errorf("%w: %s %s", ErrNotFound, r.Method, r.URL.Path))
}

func (h *Handler) writeDocument(w http.ResponseWriter, r *http.Request, doc models.Document, status int) {
	if _, err := utils.WriteJSON(w, doc, status); err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.writeDocument").Msg("failed to write response")
	}
}

// requestIDs returns the comma separated ids of the {ids} path segment.
func requestIDs(r *http.Request) ([]string, error) {
	raw := chi.URLParam(r, idsParam)
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}

	ids := service.SplitList(raw)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no ids in path", ErrNotFound)
	}
	return ids, nil
}
