// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-resource-keeper/internal/schema"
	"github.com/MKhiriev/go-resource-keeper/models"
)

func mustResource(t *testing.T, env *testEnv, name string) schema.Resource {
	t.Helper()
	res, ok := env.resources.Get(name)
	require.True(t, ok, name)
	return res
}

func TestEncodeRecord(t *testing.T) {
	env := newTestEnv(t)
	person := mustResource(t, env, "person")
	pet := mustResource(t, env, "pet")

	tests := []struct {
		name string
		res  schema.Resource
		rec  models.Record
		want models.Record
	}{
		{
			name: "has many",
			res:  person,
			rec:  models.Record{"id": "a", "name": "Ann", "pets": []any{"p1", "p2"}},
			want: models.Record{
				"id":    "a",
				"name":  "Ann",
				"href":  "/people/a",
				"links": map[string]any{"pets": []string{"p1", "p2"}},
			},
		},
		{
			name: "empty has many",
			res:  person,
			rec:  models.Record{"id": "a"},
			want: models.Record{"id": "a", "href": "/people/a", "links": map[string]any{"pets": []string{}}},
		},
		{
			name: "belongs to",
			res:  pet,
			rec:  models.Record{"id": "p1", "owner": "a"},
			want: models.Record{"id": "p1", "href": "/pets/p1", "links": map[string]any{"owner": "a"}},
		},
		{
			name: "empty belongs to",
			res:  pet,
			rec:  models.Record{"id": "p1"},
			want: models.Record{"id": "p1", "href": "/pets/p1", "links": map[string]any{"owner": nil}},
		},
		{
			name: "stale href and links are replaced",
			res:  pet,
			rec:  models.Record{"id": "p 1", "href": "/old", "links": map[string]any{"x": 1}},
			want: models.Record{"id": "p 1", "href": "/pets/p%201", "links": map[string]any{"owner": nil}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, env.handler.encodeRecord(tt.res, tt.rec))
		})
	}
}

func TestDocument_LinkedUsesPlurals(t *testing.T) {
	env := newTestEnv(t)
	person := mustResource(t, env, "person")

	doc := env.handler.document(person,
		[]models.Record{{"id": "a", "pets": []string{"p1"}}},
		map[string][]models.Record{"pet": {{"id": "p1", "owner": "a"}}, "ghost": {{"id": "g"}}},
	)

	require.Contains(t, doc.Collections, "people")
	require.Contains(t, doc.Linked, "pets")
	assert.NotContains(t, doc.Linked, "ghost")
	assert.Equal(t, "/pets/p1", doc.Linked["pets"][0]["href"])
	assert.Equal(t, map[string]models.LinkTemplate{
		"people.pets": {Href: "/pets/{people.pets}", Type: "pets"},
	}, doc.Links)
}

func TestLinkTemplates_NoRelationships(t *testing.T) {
	env := newTestEnv(t)
	res, err := env.resources.Add("tag", models.Schema{"label": {Type: models.StringType}}, models.ResourceOptions{})
	require.NoError(t, err)

	assert.Nil(t, env.handler.linkTemplates(res))
}

func TestDecodeRecords(t *testing.T) {
	env := newTestEnv(t)
	person := mustResource(t, env, "person")

	tests := []struct {
		name    string
		body    string
		want    []models.Record
		wantErr error
	}{
		{
			name: "plural array",
			body: `{"people":[{"name":"Ann"},{"name":"Bob"}]}`,
			want: []models.Record{{"name": "Ann"}, {"name": "Bob"}},
		},
		{
			name: "single object under the name",
			body: `{"person":{"name":"Ann"}}`,
			want: []models.Record{{"name": "Ann"}},
		},
		{
			name: "links folded and href dropped",
			body: `{"people":[{"id":"a","href":"/x","links":{"pets":["p1"]}}]}`,
			want: []models.Record{{"id": "a", "pets": []any{"p1"}}},
		},
		{
			name: "explicit field wins over links",
			body: `{"people":[{"pets":["p2"],"links":{"pets":["p1"]}}]}`,
			want: []models.Record{{"pets": []any{"p2"}}},
		},
		{name: "wrong key", body: `{"pets":[{}]}`, wantErr: ErrMissingCollection},
		{name: "not json", body: `people`, wantErr: ErrInvalidBody},
		{name: "null record", body: `{"people":[null]}`, wantErr: ErrInvalidBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeRecords(person, strings.NewReader(tt.body))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPatchBody(t *testing.T) {
	env := newTestEnv(t)
	person := mustResource(t, env, "person")

	tests := []struct {
		name    string
		body    string
		want    string
		wantErr error
	}{
		{name: "json patch untouched", body: `[{"op":"remove","path":"/age"}]`, want: `[{"op":"remove","path":"/age"}]`},
		{name: "merge patch untouched", body: `{"age":3}`, want: `{"age":3}`},
		{name: "document unwrapped", body: `{"people":[{"age":3,"links":{"pets":[]}}]}`, want: `{"age":3,"pets":[]}`},
		{name: "document with two records", body: `{"people":[{},{}]}`, wantErr: ErrInvalidBody},
		{name: "merge patch links folded", body: `{"links":{"pets":[]}}`, want: `{"pets":[]}`},
		{name: "merge patch field wins over link", body: `{"pets":["p1"],"links":{"pets":[]},"href":"x"}`, want: `{"pets":["p1"]}`},
		{name: "merge patch href dropped", body: `{"name":"Ann","href":"/people/a"}`, want: `{"name":"Ann"}`},
		{name: "empty body untouched", body: ``, want: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := patchBody(person, []byte(tt.body))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.want == "" {
				assert.Empty(t, got)
				return
			}
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}
