// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"fmt"

	"github.com/MKhiriev/go-resource-keeper/internal/config"
	"github.com/MKhiriev/go-resource-keeper/internal/logger"
	"github.com/MKhiriev/go-resource-keeper/internal/metrics"
)

// NewAdapter builds the adapter selected by cfg.Storage, wrapped with the
// configured read cache and, when m is not nil, with storage metrics.
// Nothing is connected yet.
func NewAdapter(cfg *config.StructuredConfig, m *metrics.Metrics, log *logger.Logger) (Adapter, error) {
	var adapter Adapter
	switch cfg.Storage.Adapter {
	case config.AdapterMemory, "":
		adapter = NewMemoryAdapter(log)
	case config.AdapterPostgres:
		adapter = NewPostgresAdapter(cfg.Storage.DB, log)
	case config.AdapterSQLite:
		adapter = NewSQLiteAdapter(cfg.Storage.DB, log)
	case config.AdapterMongoDB:
		adapter = NewMongoAdapter(cfg.Storage.DB, log)
	default:
		return nil, fmt.Errorf("unknown storage adapter %q", cfg.Storage.Adapter)
	}

	if m != nil {
		adapter = newInstrumentedAdapter(adapter, m)
	}

	switch cfg.Storage.Cache.Kind {
	case config.CacheNone, "":
	case config.CacheLRU:
		adapter = newCachedAdapter(adapter, newLRUCache(cfg.Storage.Cache.Size, cfg.Storage.Cache.TTL), m, log)
	case config.CacheRedis:
		cache, err := newRedisCache(cfg.Storage.Cache.RedisURL, cfg.Storage.Cache.TTL)
		if err != nil {
			return nil, err
		}
		adapter = newCachedAdapter(adapter, cache, m, log)
	default:
		return nil, fmt.Errorf("unknown cache kind %q", cfg.Storage.Cache.Kind)
	}

	log.Info().
		Str("func", "store.NewAdapter").
		Str("adapter", cfg.Storage.Adapter).
		Str("cache", cfg.Storage.Cache.Kind).
		Msg("storage adapter configured")

	return adapter, nil
}
