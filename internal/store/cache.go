// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/MKhiriev/go-resource-keeper/internal/logger"
	"github.com/MKhiriev/go-resource-keeper/internal/metrics"
	"github.com/MKhiriev/go-resource-keeper/models"
)

// recordCache holds single records keyed by resource and id.
type recordCache interface {
	// Get reports a miss with ok == false and a nil error.
	Get(ctx context.Context, name, id string) (rec models.Record, ok bool, err error)
	Set(ctx context.Context, name string, rec models.Record) error
	Delete(ctx context.Context, name, id string) error
	Ping(ctx context.Context) error
	Close() error
}

// cachedAdapter serves Find from a read-through cache and invalidates
// entries on every write. Collection reads always reach the adapter.
type cachedAdapter struct {
	Adapter
	cache   recordCache
	group   singleflight.Group
	flights flightGenerations
	metrics *metrics.Metrics
	logger  *logger.Logger
}

func newCachedAdapter(next Adapter, cache recordCache, m *metrics.Metrics, log *logger.Logger) *cachedAdapter {
	return &cachedAdapter{
		Adapter: next,
		cache:   cache,
		metrics: m,
		logger:  log,
	}
}

func (c *cachedAdapter) Connect(ctx context.Context) error {
	if err := c.Adapter.Connect(ctx); err != nil {
		return err
	}
	if err := c.cache.Ping(ctx); err != nil {
		return fmt.Errorf("error connecting cache: %w", err)
	}
	return nil
}

func (c *cachedAdapter) Close() error {
	cacheErr := c.cache.Close()
	if err := c.Adapter.Close(); err != nil {
		return err
	}
	return cacheErr
}

func (c *cachedAdapter) Find(ctx context.Context, name, id string) (models.Record, error) {
	rec, ok, err := c.cache.Get(ctx, name, id)
	if err != nil {
		c.warn(ctx, err, "cachedAdapter.Find", name)
	}
	if ok {
		c.metrics.RecordCacheHit(name)
		return rec, nil
	}
	c.metrics.RecordCacheMiss(name)

	key := flightKey(name, id)
	v, err, _ := c.group.Do(key, func() (any, error) {
		gen := c.flights.begin(key)
		defer c.flights.end(key)

		found, err := c.Adapter.Find(ctx, name, id)
		if err != nil {
			return nil, err
		}
		// a write landing while the adapter was read makes found stale
		if c.flights.changed(key, gen) {
			return found, nil
		}
		if err := c.cache.Set(ctx, name, found); err != nil {
			c.warn(ctx, err, "cachedAdapter.Find", name)
		}
		if c.flights.changed(key, gen) {
			c.drop(ctx, name, id)
		}
		return found, nil
	})
	if err != nil {
		return nil, err
	}

	// callers sharing a flight must not share the map
	return v.(models.Record).Clone(), nil
}

func (c *cachedAdapter) Create(ctx context.Context, name string, rec models.Record) (models.Record, error) {
	created, err := c.Adapter.Create(ctx, name, rec)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, name, created.ID())
	return created, nil
}

func (c *cachedAdapter) Update(ctx context.Context, name, id string, rec models.Record) (models.Record, error) {
	c.invalidate(ctx, name, id)
	updated, err := c.Adapter.Update(ctx, name, id, rec)
	c.invalidate(ctx, name, id)
	return updated, err
}

func (c *cachedAdapter) Delete(ctx context.Context, name, id string) error {
	err := c.Adapter.Delete(ctx, name, id)
	c.invalidate(ctx, name, id)
	return err
}

func (c *cachedAdapter) invalidate(ctx context.Context, name, id string) {
	key := flightKey(name, id)
	c.flights.bump(key)
	c.group.Forget(key)
	c.drop(ctx, name, id)
}

func (c *cachedAdapter) drop(ctx context.Context, name, id string) {
	if err := c.cache.Delete(ctx, name, id); err != nil {
		c.warn(ctx, err, "cachedAdapter.invalidate", name)
	}
}

func flightKey(name, id string) string {
	return name + "\x00" + id
}

// flightGenerations counts writes per key while a cache fill for that key
// is running. Keys without a running fill are not tracked.
type flightGenerations struct {
	mu      sync.Mutex
	entries map[string]*flightGeneration
}

type flightGeneration struct {
	gen     uint64
	readers int
}

func (f *flightGenerations) begin(key string) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.entries == nil {
		f.entries = make(map[string]*flightGeneration)
	}
	e, ok := f.entries[key]
	if !ok {
		e = &flightGeneration{}
		f.entries[key] = e
	}
	e.readers++
	return e.gen
}

func (f *flightGenerations) end(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.entries[key]
	if !ok {
		return
	}
	if e.readers--; e.readers == 0 {
		delete(f.entries, key)
	}
}

func (f *flightGenerations) bump(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if e, ok := f.entries[key]; ok {
		e.gen++
	}
}

func (f *flightGenerations) changed(key string, gen uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.entries[key]
	return ok && e.gen != gen
}

func (c *cachedAdapter) warn(ctx context.Context, err error, fn, name string) {
	logger.FromContext(ctx).Warn().Err(err).
		Str("func", fn).
		Str("resource", name).
		Msg("record cache failure")
}
