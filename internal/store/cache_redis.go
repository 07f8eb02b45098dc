// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/MKhiriev/go-resource-keeper/models"
)

// redisCache is a [recordCache] shared between server instances. Records
// are stored as JSON.
type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func newRedisCache(redisURL string, ttl time.Duration) (*redisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolTimeout = 4 * time.Second

	return &redisCache{
		client: redis.NewClient(opts),
		ttl:    ttl,
	}, nil
}

func (c *redisCache) Get(ctx context.Context, name, id string) (models.Record, bool, error) {
	key := cacheKey(name, id)

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var rec models.Record
	if err = json.Unmarshal(data, &rec); err != nil {
		// drop corrupt entries
		c.client.Del(ctx, key)
		return nil, false, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return rec, true, nil
}

func (c *redisCache) Set(ctx context.Context, name string, rec models.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	return c.client.Set(ctx, cacheKey(name, rec.ID()), data, c.ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, name, id string) error {
	return c.client.Del(ctx, cacheKey(name, id)).Err()
}

func (c *redisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *redisCache) Close() error {
	return c.client.Close()
}
