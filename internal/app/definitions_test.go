// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package app

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-resource-keeper/internal/schema"
	"github.com/MKhiriev/go-resource-keeper/models"
)

const petsYAML = `
resources:
  person:
    fields:
      name: string
      password: string
      pets: {ref: pet, many: true, inverse: owner}
    hooks:
      before: [trim, timestamps]
      after: ["omit:password"]
  pet:
    fields:
      name: string
      owner: {ref: person, inverse: pets}
    noIndex: true
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func definitionsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resources.yaml")
	writeFile(t, path, content)
	return path
}

func TestLoadDefinitions(t *testing.T) {
	a := newMemoryApp(t, nil)
	require.NoError(t, a.LoadDefinitions(definitionsFile(t, petsYAML)))

	names := []string{}
	for _, res := range a.Resources() {
		names = append(names, res.Name)
	}
	assert.Equal(t, []string{"person", "pet"}, names)

	person := a.Resources()[0]
	assert.Equal(t, models.DateType, person.Schema["createdAt"].Type)
	assert.Equal(t, models.DateType, person.Schema["updatedAt"].Type)

	rr := serve(a, http.MethodPost, "/people", `{"people":[{"id":"a","name":"  Ann ","password":"secret"}]}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var doc struct {
		People []map[string]any `json:"people"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &doc))
	require.Len(t, doc.People, 1)
	assert.Equal(t, "Ann", doc.People[0]["name"])
	assert.NotContains(t, doc.People[0], "password")
	assert.Contains(t, doc.People[0], "createdAt")
	assert.Contains(t, doc.People[0], "updatedAt")

	assert.Equal(t, http.StatusNotFound, serve(a, http.MethodGet, "/pets", "").Code)
	assert.Equal(t, http.StatusCreated, serve(a, http.MethodPost, "/pets", `{"pets":[{"id":"p1","owner":"a"}]}`).Code)
	assert.Equal(t, http.StatusOK, serve(a, http.MethodGet, "/people/a/pets", "").Code)
}

func TestLoadDefinitions_BadResourceSkipped(t *testing.T) {
	a := newMemoryApp(t, nil)

	err := a.LoadDefinitions(definitionsFile(t, `
resources:
  good:
    fields: {label: string}
  badhook:
    fields: {label: string}
    hooks: {before: [shout]}
  badfield:
    fields: {label: {type: string, ref: 3}}
  reserved:
    fields: {links: string}
`))
	require.NoError(t, err)

	require.Len(t, a.Resources(), 1)
	assert.Equal(t, "good", a.Resources()[0].Name)
}

func TestLoadDefinitions_FileErrors(t *testing.T) {
	a := newMemoryApp(t, nil)

	assert.Error(t, a.LoadDefinitions(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.ErrorIs(t, a.LoadDefinitions(definitionsFile(t, "resources: [a, b]")), schema.ErrInvalidDefinition)
	assert.Empty(t, a.Resources())
}

func TestLoadDefinitions_ReloadReplacesAndRemoves(t *testing.T) {
	a := newMemoryApp(t, nil)
	path := definitionsFile(t, petsYAML)
	require.NoError(t, a.LoadDefinitions(path))

	writeFile(t, path, `
resources:
  person:
    fields:
      name: string
      nickname: string
    readOnly: true
`)
	require.NoError(t, a.LoadDefinitions(path))

	require.Len(t, a.Resources(), 1)
	person := a.Resources()[0]
	assert.True(t, person.ReadOnly)
	assert.Contains(t, person.Schema, "nickname")
	assert.NotContains(t, person.Schema, "createdAt")

	assert.Equal(t, http.StatusNotFound, serve(a, http.MethodGet, "/pets/p1", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(a, http.MethodPost, "/people", `{"people":[{}]}`).Code)
	before, after := a.transforms.Count("person")
	assert.Zero(t, before)
	assert.Zero(t, after)
}

func TestLoadDefinitions_KeepsCodeResources(t *testing.T) {
	a := newMemoryApp(t, nil)
	require.NoError(t, a.Resource("tag", models.Schema{"label": {Type: models.StringType}}))

	path := definitionsFile(t, petsYAML)
	require.NoError(t, a.LoadDefinitions(path))
	writeFile(t, path, "resources: {}\n")
	require.NoError(t, a.LoadDefinitions(path))

	require.Len(t, a.Resources(), 1)
	assert.Equal(t, "tag", a.Resources()[0].Name)
}

func TestWatchDefinitions(t *testing.T) {
	a := newMemoryApp(t, nil)
	path := definitionsFile(t, "resources:\n  tag:\n    fields: {label: string}\n")

	ctx, cancel := context.WithCancel(context.Background())
	done, err := a.WatchDefinitions(ctx, path)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, serve(a, http.MethodGet, "/tags", "").Code)

	writeFile(t, path, "resources:\n  tag:\n    fields: {label: string}\n  note:\n    fields: {text: string}\n")

	assert.Eventually(t, func() bool {
		return serve(a, http.MethodGet, "/notes", "").Code == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	// a broken file keeps the previous definitions
	writeFile(t, path, "resources: [")
	time.Sleep(3 * reloadDelay)
	assert.Equal(t, http.StatusOK, serve(a, http.MethodGet, "/notes", "").Code)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatchDefinitions_MissingFile(t *testing.T) {
	a := newMemoryApp(t, nil)

	_, err := a.WatchDefinitions(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
