// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-resource-keeper/internal/logger"
	"github.com/MKhiriev/go-resource-keeper/internal/metrics"
	"github.com/MKhiriev/go-resource-keeper/models"
)

// countingAdapter counts Find calls reaching the wrapped adapter.
type countingAdapter struct {
	Adapter
	finds atomic.Int32
}

func (c *countingAdapter) Find(ctx context.Context, name, id string) (models.Record, error) {
	c.finds.Add(1)
	return c.Adapter.Find(ctx, name, id)
}

func newTestCachedAdapter(t *testing.T) (*cachedAdapter, *countingAdapter, *metrics.Metrics) {
	t.Helper()

	inner := &countingAdapter{Adapter: newTestMemoryAdapter(t)}
	m := metrics.NewMetrics()
	return newCachedAdapter(inner, newLRUCache(16, time.Minute), m, logger.Nop()), inner, m
}

func TestCachedAdapter_FindReadsThrough(t *testing.T) {
	ctx := context.Background()
	c, inner, m := newTestCachedAdapter(t)

	_, err := c.Create(ctx, "person", models.Record{"id": "1", "name": "Ann"})
	require.NoError(t, err)

	for range 3 {
		rec, err := c.Find(ctx, "person", "1")
		require.NoError(t, err)
		assert.Equal(t, "Ann", rec["name"])
	}

	assert.Equal(t, int32(1), inner.finds.Load())
	assert.InDelta(t, 2, testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues("person")), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CacheMissesTotal.WithLabelValues("person")), 0.001)
}

func TestCachedAdapter_WritesInvalidate(t *testing.T) {
	ctx := context.Background()
	c, inner, _ := newTestCachedAdapter(t)

	_, err := c.Create(ctx, "person", models.Record{"id": "1", "name": "Ann"})
	require.NoError(t, err)
	_, err = c.Find(ctx, "person", "1")
	require.NoError(t, err)

	_, err = c.Update(ctx, "person", "1", models.Record{"name": "Bob"})
	require.NoError(t, err)

	rec, err := c.Find(ctx, "person", "1")
	require.NoError(t, err)
	assert.Equal(t, "Bob", rec["name"])
	assert.Equal(t, int32(2), inner.finds.Load())

	require.NoError(t, c.Delete(ctx, "person", "1"))
	_, err = c.Find(ctx, "person", "1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCachedAdapter_NotFoundIsNotCached(t *testing.T) {
	ctx := context.Background()
	c, inner, _ := newTestCachedAdapter(t)

	_, err := c.Find(ctx, "person", "1")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = c.Create(ctx, "person", models.Record{"id": "1"})
	require.NoError(t, err)

	_, err = c.Find(ctx, "person", "1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.finds.Load())
}

func TestCachedAdapter_ConcurrentFindsReturnCopies(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCachedAdapter(t)

	_, err := c.Create(ctx, "person", models.Record{"id": "1", "name": "Ann"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := c.Find(ctx, "person", "1")
			if assert.NoError(t, err) {
				rec["name"] = "mutated"
			}
		}()
	}
	wg.Wait()

	rec, err := c.Find(ctx, "person", "1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", rec["name"])
}

func TestLRUCache(t *testing.T) {
	ctx := context.Background()
	c := newLRUCache(2, time.Minute)

	require.NoError(t, c.Set(ctx, "person", models.Record{"id": "1"}))
	require.NoError(t, c.Set(ctx, "person", models.Record{"id": "2"}))
	require.NoError(t, c.Set(ctx, "person", models.Record{"id": "3"}))

	_, ok, err := c.Get(ctx, "person", "1")
	require.NoError(t, err)
	assert.False(t, ok, "oldest entry must be evicted")

	rec, ok, err := c.Get(ctx, "person", "3")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "3", rec.ID())

	require.NoError(t, c.Delete(ctx, "person", "3"))
	_, ok, _ = c.Get(ctx, "person", "3")
	assert.False(t, ok)

	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}

// gatedAdapter holds an armed Find after it has read the record, so a
// write can land before the read returns.
type gatedAdapter struct {
	Adapter
	armed   atomic.Bool
	read    chan struct{}
	release chan struct{}
}

func (g *gatedAdapter) Find(ctx context.Context, name, id string) (models.Record, error) {
	rec, err := g.Adapter.Find(ctx, name, id)
	if g.armed.CompareAndSwap(true, false) {
		close(g.read)
		<-g.release
	}
	return rec, err
}

func TestCachedAdapter_WriteDuringFillIsNotCached(t *testing.T) {
	ctx := context.Background()
	inner := &gatedAdapter{
		Adapter: newTestMemoryAdapter(t),
		read:    make(chan struct{}),
		release: make(chan struct{}),
	}
	c := newCachedAdapter(inner, newLRUCache(16, time.Minute), metrics.NewMetrics(), logger.Nop())

	_, err := c.Create(ctx, "person", models.Record{"id": "1", "name": "Ann"})
	require.NoError(t, err)

	inner.armed.Store(true)
	done := make(chan models.Record)
	go func() {
		rec, err := c.Find(ctx, "person", "1")
		assert.NoError(t, err)
		done <- rec
	}()

	<-inner.read
	_, err = c.Update(ctx, "person", "1", models.Record{"name": "Bob"})
	require.NoError(t, err)
	close(inner.release)

	// the racing read may see the old value but must not cache it
	assert.Equal(t, "Ann", (<-done)["name"])

	rec, err := c.Find(ctx, "person", "1")
	require.NoError(t, err)
	assert.Equal(t, "Bob", rec["name"])
	assert.Empty(t, c.flights.entries)
}

// hookedCache runs beforeSet ahead of every Set.
type hookedCache struct {
	recordCache
	beforeSet func()
}

func (h *hookedCache) Set(ctx context.Context, name string, rec models.Record) error {
	if h.beforeSet != nil {
		h.beforeSet()
	}
	return h.recordCache.Set(ctx, name, rec)
}

func TestCachedAdapter_WriteBeforeSetDropsEntry(t *testing.T) {
	ctx := context.Background()
	cache := &hookedCache{recordCache: newLRUCache(16, time.Minute)}
	c := newCachedAdapter(newTestMemoryAdapter(t), cache, metrics.NewMetrics(), logger.Nop())

	_, err := c.Create(ctx, "person", models.Record{"id": "1", "name": "Ann"})
	require.NoError(t, err)

	var once sync.Once
	cache.beforeSet = func() {
		once.Do(func() {
			_, err := c.Update(ctx, "person", "1", models.Record{"name": "Bob"})
			assert.NoError(t, err)
		})
	}

	_, err = c.Find(ctx, "person", "1")
	require.NoError(t, err)

	_, ok, err := cache.Get(ctx, "person", "1")
	require.NoError(t, err)
	assert.False(t, ok, "stale fill must be dropped")

	rec, err := c.Find(ctx, "person", "1")
	require.NoError(t, err)
	assert.Equal(t, "Bob", rec["name"])
}
