// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-resource-keeper/internal/hooks"
	"github.com/MKhiriev/go-resource-keeper/internal/logger"
	"github.com/MKhiriev/go-resource-keeper/internal/store"
	"github.com/MKhiriev/go-resource-keeper/models"
)

type linksFixture struct {
	svc        ResourceService
	adapter    store.Adapter
	transforms *hooks.Registry
}

func newLinksFixture(t *testing.T) linksFixture {
	t.Helper()
	ctx := context.Background()

	reg := newTestRegistry(t)
	adapter := store.NewMemoryAdapter(logger.Nop())
	require.NoError(t, adapter.Connect(ctx))
	for _, res := range reg.Resources() {
		require.NoError(t, adapter.Model(ctx, res.Name, res.Schema))
	}

	transforms := hooks.NewRegistry()
	return linksFixture{
		svc:        NewResourceService(reg, transforms, adapter, logger.Nop()),
		adapter:    adapter,
		transforms: transforms,
	}
}

func (f linksFixture) create(t *testing.T, name string, rec models.Record) models.Record {
	t.Helper()

	created, err := f.svc.Create(context.Background(), nil, name, []models.Record{rec})
	require.NoError(t, err)
	require.Len(t, created, 1)
	return created[0]
}

func (f linksFixture) get(t *testing.T, name, id string) models.Record {
	t.Helper()

	rec, err := f.adapter.Find(context.Background(), name, id)
	require.NoError(t, err)
	return rec
}

// ── Inverse sync ─────────────────────────────────────────────────────────────

func TestInverse_HasManyCreateSetsOwner(t *testing.T) {
	f := newLinksFixture(t)

	f.create(t, "pet", models.Record{"id": "p1", "name": "Rex"})
	f.create(t, "pet", models.Record{"id": "p2", "name": "Tom"})
	f.create(t, "person", models.Record{"id": "a", "name": "Ann", "pets": []any{"p1", "p2"}})

	assert.Equal(t, "a", f.get(t, "pet", "p1")["owner"])
	assert.Equal(t, "a", f.get(t, "pet", "p2")["owner"])
}

func TestInverse_BelongsToCreateAppends(t *testing.T) {
	f := newLinksFixture(t)

	f.create(t, "person", models.Record{"id": "a", "name": "Ann"})
	f.create(t, "pet", models.Record{"id": "p1", "owner": "a"})
	f.create(t, "pet", models.Record{"id": "p2", "owner": "a"})

	assert.Equal(t, []string{"p1", "p2"}, f.get(t, "person", "a").RefIDs("pets"))
}

func TestInverse_ReplaceUnlinks(t *testing.T) {
	f := newLinksFixture(t)
	ctx := context.Background()

	f.create(t, "pet", models.Record{"id": "p1"})
	f.create(t, "pet", models.Record{"id": "p2"})
	f.create(t, "person", models.Record{"id": "a", "pets": []any{"p1", "p2"}})

	_, err := f.svc.Replace(ctx, nil, "person", []string{"a"}, []models.Record{{"pets": []any{"p2"}}})
	require.NoError(t, err)

	assert.Nil(t, f.get(t, "pet", "p1")["owner"])
	assert.Equal(t, "a", f.get(t, "pet", "p2")["owner"])
}

func TestInverse_MoveBelongsTo(t *testing.T) {
	f := newLinksFixture(t)
	ctx := context.Background()

	f.create(t, "person", models.Record{"id": "a"})
	f.create(t, "person", models.Record{"id": "b"})
	f.create(t, "pet", models.Record{"id": "p1", "owner": "a"})

	_, err := f.svc.Patch(ctx, nil, "pet", []string{"p1"}, []byte(`{"owner":"b"}`))
	require.NoError(t, err)

	assert.Empty(t, f.get(t, "person", "a").RefIDs("pets"))
	assert.Equal(t, []string{"p1"}, f.get(t, "person", "b").RefIDs("pets"))
}

func TestInverse_ClaimDetachesPreviousOwner(t *testing.T) {
	f := newLinksFixture(t)

	f.create(t, "person", models.Record{"id": "a"})
	f.create(t, "pet", models.Record{"id": "p1", "owner": "a"})
	require.Equal(t, []string{"p1"}, f.get(t, "person", "a").RefIDs("pets"))

	f.create(t, "person", models.Record{"id": "b", "pets": []any{"p1"}})

	assert.Equal(t, "b", f.get(t, "pet", "p1")["owner"])
	assert.Empty(t, f.get(t, "person", "a").RefIDs("pets"))
	assert.Equal(t, []string{"p1"}, f.get(t, "person", "b").RefIDs("pets"))
}

func TestInverse_DeleteClearsRelated(t *testing.T) {
	f := newLinksFixture(t)
	ctx := context.Background()

	f.create(t, "pet", models.Record{"id": "p1"})
	f.create(t, "person", models.Record{"id": "a", "pets": []any{"p1"}})
	require.Equal(t, "a", f.get(t, "pet", "p1")["owner"])

	require.NoError(t, f.svc.Delete(ctx, nil, "person", []string{"a"}))

	assert.Nil(t, f.get(t, "pet", "p1")["owner"])
	_, err := f.adapter.Find(ctx, "person", "a")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestInverse_MissingRelatedIsIgnored(t *testing.T) {
	f := newLinksFixture(t)

	created := f.create(t, "person", models.Record{"id": "a", "pets": []any{"ghost"}})
	assert.Equal(t, []string{"ghost"}, created.RefIDs("pets"))
}

// ── Include / Related ────────────────────────────────────────────────────────

func TestFind_Include(t *testing.T) {
	f := newLinksFixture(t)
	ctx := context.Background()

	f.create(t, "pet", models.Record{"id": "p1", "name": "Rex"})
	f.create(t, "pet", models.Record{"id": "p2", "name": "Tom"})
	f.create(t, "person", models.Record{"id": "a", "pets": []any{"p2", "p1"}})
	f.create(t, "person", models.Record{"id": "b", "pets": []any{"p1"}})

	f.transforms.After("pet", func(_ context.Context, req *hooks.Request, rec models.Record) (models.Record, error) {
		assert.Equal(t, http.MethodGet, req.Method)
		rec["seen"] = true
		return rec, nil
	})

	res, err := f.svc.FindMany(ctx, nil, "person", models.Query{}, []string{"pets"})
	require.NoError(t, err)
	require.Len(t, res.Records, 2)

	pets := res.Linked["pet"]
	require.Len(t, pets, 2)
	ids := []string{pets[0].ID(), pets[1].ID()}
	assert.ElementsMatch(t, []string{"p1", "p2"}, ids)
	assert.Equal(t, true, pets[0]["seen"])
}

func TestFind_IncludeEmpty(t *testing.T) {
	f := newLinksFixture(t)

	f.create(t, "person", models.Record{"id": "a"})

	res, err := f.svc.Find(context.Background(), nil, "person", []string{"a"}, []string{"pets"})
	require.NoError(t, err)
	assert.Empty(t, res.Linked)
}

func TestRelated(t *testing.T) {
	f := newLinksFixture(t)
	ctx := context.Background()

	f.create(t, "pet", models.Record{"id": "p1", "name": "Rex"})
	f.create(t, "pet", models.Record{"id": "p2", "name": "Tom"})
	f.create(t, "person", models.Record{"id": "a", "pets": []any{"p2", "p1"}})

	ref, recs, err := f.svc.Related(ctx, nil, "person", "a", "pets")
	require.NoError(t, err)
	assert.Equal(t, "pet", ref)
	require.Len(t, recs, 2)
	assert.Equal(t, "p2", recs[0].ID())
	assert.Equal(t, "p1", recs[1].ID())

	ref, recs, err = f.svc.Related(ctx, nil, "pet", "p1", "owner")
	require.NoError(t, err)
	assert.Equal(t, "person", ref)
	require.Len(t, recs, 1)
	assert.Equal(t, "a", recs[0].ID())
}

func TestRelated_Errors(t *testing.T) {
	f := newLinksFixture(t)
	ctx := context.Background()

	f.create(t, "person", models.Record{"id": "a", "name": "Ann"})

	_, _, err := f.svc.Related(ctx, nil, "person", "a", "name")
	assert.ErrorIs(t, err, ErrUnknownRelation)

	_, _, err = f.svc.Related(ctx, nil, "person", "zzz", "pets")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, recs, err := f.svc.Related(ctx, nil, "person", "a", "pets")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRelated_HiddenOwner(t *testing.T) {
	f := newLinksFixture(t)

	f.create(t, "person", models.Record{"id": "a"})
	f.transforms.After("person", func(context.Context, *hooks.Request, models.Record) (models.Record, error) {
		return nil, nil
	})

	_, _, err := f.svc.Related(context.Background(), nil, "person", "a", "pets")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func Test_difference(t *testing.T) {
	assert.Equal(t, []string{"a", "c"}, difference([]string{"a", "b", "c", "a"}, []string{"b"}))
	assert.Nil(t, difference(nil, []string{"a"}))
	assert.Nil(t, difference([]string{"a"}, []string{"a"}))
}
