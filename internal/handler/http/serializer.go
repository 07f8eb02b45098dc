// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"github.com/MKhiriev/go-resource-keeper/internal/schema"
	"github.com/MKhiriev/go-resource-keeper/models"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 4 << 20

// document renders recs of res, the link templates of its relationships and
// the sideloaded records in linked (keyed by resource name).
func (h *Handler) document(res schema.Resource, recs []models.Record, linked map[string][]models.Record) models.Document {
	doc := models.Document{
		Collections: map[string][]models.Record{res.Plural: h.encodeRecords(res, recs)},
		Links:       h.linkTemplates(res),
	}

	for name, related := range linked {
		lres, ok := h.resources.Get(name)
		if !ok {
			continue
		}
		if doc.Linked == nil {
			doc.Linked = make(map[string][]models.Record, len(linked))
		}
		doc.Linked[lres.Plural] = h.encodeRecords(lres, related)
	}

	return doc
}

func (h *Handler) encodeRecords(res schema.Resource, recs []models.Record) []models.Record {
	out := make([]models.Record, 0, len(recs))
	for _, rec := range recs {
		out = append(out, h.encodeRecord(res, rec))
	}
	return out
}

// encodeRecord moves relationship values under "links" and adds the
// record's href.
func (h *Handler) encodeRecord(res schema.Resource, rec models.Record) models.Record {
	out := make(models.Record, len(rec)+2)
	links := make(map[string]any)

	for key, value := range rec {
		switch key {
		case models.HrefKey, models.LinksKey:
			continue
		}
		if field, ok := res.Schema[key]; ok && field.IsRelationship() {
			continue
		}
		out[key] = value
	}

	for _, name := range res.Schema.Relationships() {
		ids := rec.RefIDs(name)
		if res.Schema[name].Many {
			if ids == nil {
				ids = []string{}
			}
			links[name] = ids
			continue
		}
		if len(ids) > 0 {
			links[name] = ids[0]
		} else {
			links[name] = nil
		}
	}

	if id := rec.ID(); id != "" {
		out[models.HrefKey] = h.recordURL(res.Plural, id)
	}
	if len(links) > 0 {
		out[models.LinksKey] = links
	}
	return out
}

// linkTemplates describes where the targets of every relationship of res
// can be fetched, keyed "<plural>.<field>".
func (h *Handler) linkTemplates(res schema.Resource) map[string]models.LinkTemplate {
	rels := res.Schema.Relationships()
	if len(rels) == 0 {
		return nil
	}

	out := make(map[string]models.LinkTemplate, len(rels))
	for _, name := range rels {
		refPlural := schema.Plural(res.Schema[name].Ref)
		if ref, ok := h.resources.Get(res.Schema[name].Ref); ok {
			refPlural = ref.Plural
		}

		key := res.Plural + "." + name
		out[key] = models.LinkTemplate{
			Href: h.absoluteURL(h.collectionPath(refPlural)) + "/{" + key + "}",
			Type: refPlural,
		}
	}
	return out
}

func (h *Handler) recordURL(plural string, ids ...string) string {
	path := h.collectionPath(plural) + "/"
	for i, id := range ids {
		if i > 0 {
			path += ","
		}
		path += url.PathEscape(id)
	}
	return h.absoluteURL(path)
}

// decodeRecords reads a write body of the form {"<plural>": [...]} or
// {"<plural>": {...}}. The singular resource name is accepted as the key
// too.
func decodeRecords(res schema.Resource, body io.Reader) ([]models.Record, error) {
	var doc models.Document
	if err := json.NewDecoder(body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}

	recs, ok := doc.Collections[res.Plural]
	if !ok {
		recs, ok = doc.Collections[res.Name]
	}
	if !ok {
		return nil, fmt.Errorf("%w: expected key %q", ErrMissingCollection, res.Plural)
	}

	for _, rec := range recs {
		if rec == nil {
			return nil, fmt.Errorf("%w: null record", ErrInvalidBody)
		}
		foldLinks(rec)
	}
	return recs, nil
}

// foldLinks moves the entries of rec["links"] back to top-level fields
// unless the field is already set, and drops href.
func foldLinks(rec models.Record) {
	if links, ok := rec[models.LinksKey].(map[string]any); ok {
		for name, value := range links {
			if _, set := rec[name]; !set {
				rec[name] = value
			}
		}
	}
	delete(rec, models.LinksKey)
	delete(rec, models.HrefKey)
}

// patchBody unwraps a PATCH body sent in document form, {"<plural>": [rec]},
// into a merge patch. A bare merge patch gets its links folded into fields.
// JSON Patch arrays are returned unchanged.
func patchBody(res schema.Resource, body []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return body, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return body, nil
	}
	if !isPatchDocument(res, raw) {
		return foldPatchLinks(body, raw)
	}

	recs, err := decodeRecords(res, bytes.NewReader(trimmed))
	if err != nil {
		return nil, err
	}
	if len(recs) != 1 {
		return nil, fmt.Errorf("%w: a patch document must hold exactly one record", ErrInvalidBody)
	}
	return json.Marshal(recs[0])
}

func isPatchDocument(res schema.Resource, raw map[string]json.RawMessage) bool {
	if len(raw) != 1 {
		return false
	}
	if _, ok := raw[res.Plural]; !ok {
		return false
	}
	// a resource field named like the collection keeps its merge patch meaning
	_, field := res.Schema[res.Plural]
	return !field
}

// foldPatchLinks rewrites a bare merge patch carrying links or href so the
// relationship ids land on their fields.
func foldPatchLinks(body []byte, raw map[string]json.RawMessage) ([]byte, error) {
	_, hasLinks := raw[models.LinksKey]
	_, hasHref := raw[models.HrefKey]
	if !hasLinks && !hasHref {
		return body, nil
	}

	var patch models.Record
	if err := json.Unmarshal(body, &patch); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	foldLinks(patch)
	return json.Marshal(patch)
}
