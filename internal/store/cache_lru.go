// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/MKhiriev/go-resource-keeper/models"
)

// lruCache is an in-process [recordCache] with a fixed capacity and
// per-entry expiry.
type lruCache struct {
	cache *lru.LRU[string, models.Record]
}

func newLRUCache(size int, ttl time.Duration) *lruCache {
	if size <= 0 {
		size = 1
	}
	return &lruCache{
		cache: lru.NewLRU[string, models.Record](size, nil, ttl),
	}
}

func cacheKey(name, id string) string {
	return "resource:" + name + ":" + id
}

func (c *lruCache) Get(_ context.Context, name, id string) (models.Record, bool, error) {
	rec, ok := c.cache.Get(cacheKey(name, id))
	if !ok {
		return nil, false, nil
	}
	return rec.Clone(), true, nil
}

func (c *lruCache) Set(_ context.Context, name string, rec models.Record) error {
	c.cache.Add(cacheKey(name, rec.ID()), rec.Clone())
	return nil
}

func (c *lruCache) Delete(_ context.Context, name, id string) error {
	c.cache.Remove(cacheKey(name, id))
	return nil
}

func (c *lruCache) Ping(context.Context) error {
	return nil
}

func (c *lruCache) Close() error {
	c.cache.Purge()
	return nil
}
