// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MKhiriev/go-resource-keeper/internal/config"
	"github.com/MKhiriev/go-resource-keeper/internal/logger"
	"github.com/MKhiriev/go-resource-keeper/models"
)

const (
	mongoIDKey            = "_id"
	mongoSchemaCollection = "_schemas"
)

// mongoAdapter stores every resource in its own collection. The record id
// is the document _id.
type mongoAdapter struct {
	cfg    config.DB
	client *mongo.Client
	db     *mongo.Database

	mu      sync.RWMutex
	schemas map[string]models.Schema

	logger *logger.Logger
}

// NewMongoAdapter returns an [Adapter] backed by MongoDB.
func NewMongoAdapter(cfg config.DB, log *logger.Logger) Adapter {
	return newMongoAdapter(cfg, log)
}

func newMongoAdapter(cfg config.DB, log *logger.Logger) *mongoAdapter {
	return &mongoAdapter{
		cfg:     cfg,
		schemas: make(map[string]models.Schema),
		logger:  log,
	}
}

// Connect opens the client and pings the primary.
func (a *mongoAdapter) Connect(ctx context.Context) error {
	if a.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.ConnectTimeout)
		defer cancel()
	}

	clientOptions := options.Client().ApplyURI(a.cfg.ConnectionString(config.AdapterMongoDB))
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		a.logger.Err(err).Str("func", "mongoAdapter.Connect").Msg("error connecting database")
		return fmt.Errorf("error connecting mongodb: %w", err)
	}

	if err = client.Ping(ctx, nil); err != nil {
		a.logger.Err(err).Str("func", "mongoAdapter.Connect").Msg("error connecting database (ping)")
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("error connecting mongodb: %w", err)
	}

	name := a.cfg.Name
	if name == "" {
		name = config.DefaultDBName
	}

	a.client = client
	a.db = client.Database(name)
	a.logger.Debug().Str("func", "mongoAdapter.Connect").Msg("connected to database successfully")
	return nil
}

func (a *mongoAdapter) Close() error {
	if a.client == nil {
		return nil
	}
	return a.client.Disconnect(context.Background())
}

// Model records the schema in the catalog collection. Collections are
// created lazily by MongoDB on first insert.
func (a *mongoAdapter) Model(ctx context.Context, name string, schema models.Schema) error {
	if a.db == nil {
		return ErrNotConnected
	}

	definition := bson.M{}
	for field, def := range schema {
		definition[field] = bson.M{
			"type":     string(def.Type),
			"ref":      def.Ref,
			"many":     def.Many,
			"inverse":  def.Inverse,
			"required": def.Required,
		}
	}

	_, err := a.db.Collection(mongoSchemaCollection).ReplaceOne(ctx,
		bson.M{mongoIDKey: name},
		bson.M{mongoIDKey: name, "definition": definition},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "mongoAdapter.Model").
			Str("resource", name).
			Msg("failed to save resource schema")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	a.mu.Lock()
	a.schemas[name] = schema.Clone()
	a.mu.Unlock()

	return nil
}

func (a *mongoAdapter) collection(name string) (*mongo.Collection, models.Schema, error) {
	if a.db == nil {
		return nil, nil, ErrNotConnected
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	s, ok := a.schemas[name]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownResource, name)
	}
	return a.db.Collection(name), s, nil
}

func (a *mongoAdapter) Find(ctx context.Context, name, id string) (models.Record, error) {
	coll, _, err := a.collection(name)
	if err != nil {
		return nil, err
	}

	var raw bson.M
	err = coll.FindOne(ctx, bson.M{mongoIDKey: id}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s %q", ErrNotFound, name, id)
	}
	if err != nil {
		a.logError(ctx, err, "mongoAdapter.Find", name)
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return fromDocument(raw), nil
}

func (a *mongoAdapter) FindMany(ctx context.Context, name string, q models.Query) ([]models.Record, error) {
	coll, schema, err := a.collection(name)
	if err != nil {
		return nil, err
	}
	if err = checkQuery(schema, q); err != nil {
		return nil, err
	}

	filter := bson.M{}
	if len(q.IDs) > 0 {
		filter[mongoIDKey] = bson.M{"$in": q.IDs}
	}
	for field, value := range q.Filter {
		if field == models.IDKey {
			field = mongoIDKey
			if ids, ok := filter[field]; ok {
				// ids and an id filter must both hold
				filter["$and"] = bson.A{bson.M{field: ids}, bson.M{field: value}}
				delete(filter, field)
				continue
			}
		}
		// equality on an array field matches any element
		filter[field] = value
	}

	opts := options.Find()
	if len(q.Sort) > 0 {
		sort := make(bson.D, 0, len(q.Sort))
		for _, s := range q.Sort {
			field := s.Field
			if field == models.IDKey {
				field = mongoIDKey
			}
			dir := 1
			if s.Desc {
				dir = -1
			}
			sort = append(sort, bson.E{Key: field, Value: dir})
		}
		opts.SetSort(sort)
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	if q.Offset > 0 {
		opts.SetSkip(int64(q.Offset))
	}

	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		a.logError(ctx, err, "mongoAdapter.FindMany", name)
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	var raws []bson.M
	if err = cursor.All(ctx, &raws); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	results := make([]models.Record, 0, len(raws))
	for _, raw := range raws {
		results = append(results, fromDocument(raw))
	}
	return results, nil
}

func (a *mongoAdapter) Create(ctx context.Context, name string, rec models.Record) (models.Record, error) {
	coll, _, err := a.collection(name)
	if err != nil {
		return nil, err
	}

	stored := prepareRecord(rec)
	if _, err = coll.InsertOne(ctx, toDocument(stored)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: %s %q", ErrConflict, name, stored.ID())
		}
		a.logError(ctx, err, "mongoAdapter.Create", name)
		return nil, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return stored, nil
}

func (a *mongoAdapter) Update(ctx context.Context, name, id string, rec models.Record) (models.Record, error) {
	coll, _, err := a.collection(name)
	if err != nil {
		return nil, err
	}

	stored := rec.Clone()
	if stored == nil {
		stored = models.Record{}
	}
	stored.SetID(id)

	result, err := coll.ReplaceOne(ctx, bson.M{mongoIDKey: id}, toDocument(stored))
	if err != nil {
		a.logError(ctx, err, "mongoAdapter.Update", name)
		return nil, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if result.MatchedCount == 0 {
		return nil, fmt.Errorf("%w: %s %q", ErrNotFound, name, id)
	}

	return stored, nil
}

func (a *mongoAdapter) Delete(ctx context.Context, name, id string) error {
	coll, _, err := a.collection(name)
	if err != nil {
		return err
	}

	result, err := coll.DeleteOne(ctx, bson.M{mongoIDKey: id})
	if err != nil {
		a.logError(ctx, err, "mongoAdapter.Delete", name)
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s %q", ErrNotFound, name, id)
	}
	return nil
}

func (a *mongoAdapter) logError(ctx context.Context, err error, fn, name string) {
	logger.FromContext(ctx).Err(err).
		Str("func", fn).
		Str("resource", name).
		Bool("retryable", mongo.IsNetworkError(err) || mongo.IsTimeout(err)).
		Msg("database operation failed")
}

// toDocument moves the record id to _id.
func toDocument(rec models.Record) bson.M {
	doc := make(bson.M, len(rec))
	for k, v := range rec {
		if k == models.IDKey {
			continue
		}
		doc[k] = v
	}
	doc[mongoIDKey] = rec.ID()
	return doc
}

// fromDocument converts a decoded document back to a record with plain Go
// values.
func fromDocument(raw bson.M) models.Record {
	rec := make(models.Record, len(raw))
	for k, v := range raw {
		if k == mongoIDKey {
			continue
		}
		rec[k] = fromBSON(v)
	}

	switch id := raw[mongoIDKey].(type) {
	case string:
		rec.SetID(id)
	case primitive.ObjectID:
		rec.SetID(id.Hex())
	case nil:
	default:
		rec.SetID(fmt.Sprint(id))
	}
	return rec
}

func fromBSON(v any) any {
	switch val := v.(type) {
	case primitive.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = fromBSON(item)
		}
		return out
	case bson.M:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = fromBSON(item)
		}
		return out
	case primitive.D:
		out := make(map[string]any, len(val))
		for _, e := range val {
			out[e.Key] = fromBSON(e.Value)
		}
		return out
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case primitive.DateTime:
		return val.Time().UTC().Format(time.RFC3339Nano)
	default:
		return v
	}
}
