// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"fmt"
)

// Top-level document keys that can never be used as a collection name.
const (
	DocumentLinksKey  = "links"
	DocumentLinkedKey = "linked"
	DocumentMetaKey   = "meta"
)

// LinkTemplate describes where the records of a relationship live.
type LinkTemplate struct {
	Href string `json:"href"`
	Type string `json:"type"`
}

// Document is the JSON body exchanged over HTTP:
//
//	{
//	  "people": [{"id": "1", "name": "Ann", "links": {"pets": ["2"]}}],
//	  "links":  {"people.pets": {"href": "/pets/{people.pets}", "type": "pets"}},
//	  "linked": {"pets": [{"id": "2", "name": "Rex"}]}
//	}
//
// Every top-level key other than links, linked and meta is a collection of
// records keyed by the resource's plural name.
type Document struct {
	Collections map[string][]Record
	Links       map[string]LinkTemplate
	Linked      map[string][]Record
	Meta        map[string]any
}

// MarshalJSON flattens the collections into the top-level object.
func (d Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Collections)+3)
	for name, records := range d.Collections {
		if records == nil {
			records = []Record{}
		}
		out[name] = records
	}
	if len(d.Links) > 0 {
		out[DocumentLinksKey] = d.Links
	}
	if len(d.Linked) > 0 {
		out[DocumentLinkedKey] = d.Linked
	}
	if len(d.Meta) > 0 {
		out[DocumentMetaKey] = d.Meta
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts either an array of records or a single record object
// under each collection key.
func (d *Document) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	d.Collections = make(map[string][]Record, len(raw))
	for key, value := range raw {
		switch key {
		case DocumentLinksKey:
			if err := json.Unmarshal(value, &d.Links); err != nil {
				return fmt.Errorf("decoding %q: %w", key, err)
			}
		case DocumentLinkedKey:
			if err := json.Unmarshal(value, &d.Linked); err != nil {
				return fmt.Errorf("decoding %q: %w", key, err)
			}
		case DocumentMetaKey:
			if err := json.Unmarshal(value, &d.Meta); err != nil {
				return fmt.Errorf("decoding %q: %w", key, err)
			}
		default:
			records, err := decodeCollection(value)
			if err != nil {
				return fmt.Errorf("decoding collection %q: %w", key, err)
			}
			d.Collections[key] = records
		}
	}
	return nil
}

func decodeCollection(value json.RawMessage) ([]Record, error) {
	var many []Record
	if err := json.Unmarshal(value, &many); err == nil {
		return many, nil
	}

	var one Record
	if err := json.Unmarshal(value, &one); err != nil {
		return nil, err
	}
	return []Record{one}, nil
}
