// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/MKhiriev/go-resource-keeper/internal/config"
	"github.com/MKhiriev/go-resource-keeper/internal/logger"
	"github.com/MKhiriev/go-resource-keeper/models"
)

const testNamespace = "resources.person"

func newTestMongoAdapter(mt *mtest.T) *mongoAdapter {
	a := newMongoAdapter(config.DB{}, logger.Nop())
	a.db = mt.DB
	a.schemas["person"] = testSchema()
	return a
}

func TestMongoAdapter(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("model", func(mt *mtest.T) {
		a := newTestMongoAdapter(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		require.NoError(mt, a.Model(context.Background(), "pet", models.Schema{"name": {Type: models.StringType}}))

		_, _, err := a.collection("pet")
		assert.NoError(mt, err)
	})

	mt.Run("find", func(mt *mtest.T) {
		a := newTestMongoAdapter(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNamespace, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "1"},
			{Key: "name", Value: "Ann"},
			{Key: "age", Value: int32(30)},
			{Key: "pets", Value: bson.A{"2", "3"}},
		}))

		rec, err := a.Find(context.Background(), "person", "1")
		require.NoError(mt, err)
		assert.Equal(mt, models.Record{
			"id":   "1",
			"name": "Ann",
			"age":  30.0,
			"pets": []any{"2", "3"},
		}, rec)
	})

	mt.Run("find not found", func(mt *mtest.T) {
		a := newTestMongoAdapter(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNamespace, mtest.FirstBatch))

		_, err := a.Find(context.Background(), "person", "9")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("find many", func(mt *mtest.T) {
		a := newTestMongoAdapter(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNamespace, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "1"}, {Key: "name", Value: "Ann"}},
			bson.D{{Key: "_id", Value: "2"}, {Key: "name", Value: "Bob"}},
		))

		recs, err := a.FindMany(context.Background(), "person", models.Query{
			Filter: map[string]any{"pets": "7"},
			Sort:   []models.SortField{{Field: "name"}},
			Limit:  2,
		})
		require.NoError(mt, err)
		require.Len(mt, recs, 2)
		assert.Equal(mt, "2", recs[1].ID())
	})

	mt.Run("find many invalid query", func(mt *mtest.T) {
		a := newTestMongoAdapter(mt)

		_, err := a.FindMany(context.Background(), "person", models.Query{Filter: map[string]any{"color": "red"}})
		assert.ErrorIs(mt, err, ErrInvalidQuery)
	})

	mt.Run("create", func(mt *mtest.T) {
		a := newTestMongoAdapter(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		rec, err := a.Create(context.Background(), "person", models.Record{"name": "Ann"})
		require.NoError(mt, err)
		assert.NotEmpty(mt, rec.ID())
		assert.Equal(mt, "Ann", rec["name"])
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		a := newTestMongoAdapter(mt)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		_, err := a.Create(context.Background(), "person", models.Record{"id": "1"})
		assert.ErrorIs(mt, err, ErrConflict)
	})

	mt.Run("update", func(mt *mtest.T) {
		a := newTestMongoAdapter(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		rec, err := a.Update(context.Background(), "person", "1", models.Record{"name": "Bob"})
		require.NoError(mt, err)
		assert.Equal(mt, models.Record{"id": "1", "name": "Bob"}, rec)
	})

	mt.Run("update not found", func(mt *mtest.T) {
		a := newTestMongoAdapter(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		_, err := a.Update(context.Background(), "person", "1", models.Record{})
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("delete", func(mt *mtest.T) {
		a := newTestMongoAdapter(mt)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)

		require.NoError(mt, a.Delete(context.Background(), "person", "1"))
		assert.ErrorIs(mt, a.Delete(context.Background(), "person", "1"), ErrNotFound)
	})

	mt.Run("unknown resource", func(mt *mtest.T) {
		a := newTestMongoAdapter(mt)

		_, err := a.Find(context.Background(), "ghost", "1")
		assert.ErrorIs(mt, err, ErrUnknownResource)
	})
}

func TestMongoAdapter_NotConnected(t *testing.T) {
	a := newMongoAdapter(config.DB{}, logger.Nop())

	assert.ErrorIs(t, a.Model(context.Background(), "person", testSchema()), ErrNotConnected)
	_, err := a.Find(context.Background(), "person", "1")
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.NoError(t, a.Close())
}

func Test_fromDocument(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	oid := primitive.NewObjectID()

	rec := fromDocument(bson.M{
		"_id":     oid,
		"count":   int64(3),
		"nested":  bson.M{"list": primitive.A{int32(1)}},
		"ordered": primitive.D{{Key: "a", Value: "b"}},
		"at":      primitive.NewDateTimeFromTime(at),
	})

	assert.Equal(t, oid.Hex(), rec.ID())
	assert.Equal(t, 3.0, rec["count"])
	assert.Equal(t, map[string]any{"list": []any{1.0}}, rec["nested"])
	assert.Equal(t, map[string]any{"a": "b"}, rec["ordered"])
	assert.Equal(t, "2024-01-02T03:04:05Z", rec["at"])
}

func Test_toDocument(t *testing.T) {
	doc := toDocument(models.Record{"id": "1", "name": "Ann"})
	assert.Equal(t, bson.M{"_id": "1", "name": "Ann"}, doc)
}
