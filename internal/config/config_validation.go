// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// validate checks that the final merged [StructuredConfig] satisfies all
// invariants before it is used at startup.
func (cfg *StructuredConfig) validate() error {
	if !slices.Contains([]string{AdapterMemory, AdapterPostgres, AdapterSQLite, AdapterMongoDB}, cfg.Storage.Adapter) {
		return fmt.Errorf("%w: unknown adapter %q", ErrInvalidStorageConfigs, cfg.Storage.Adapter)
	}

	if !slices.Contains([]string{CacheNone, CacheLRU, CacheRedis}, cfg.Storage.Cache.Kind) {
		return fmt.Errorf("%w: unknown cache kind %q", ErrInvalidStorageConfigs, cfg.Storage.Cache.Kind)
	}

	if cfg.Storage.Cache.Kind == CacheRedis && cfg.Storage.Cache.RedisURL == "" {
		return fmt.Errorf("%w: redis cache requires a redis URL", ErrInvalidStorageConfigs)
	}

	if cfg.Storage.Adapter != AdapterMemory && cfg.Storage.DB.ConnectionString(cfg.Storage.Adapter) == "" {
		return fmt.Errorf("%w: no connection parameters for %s", ErrInvalidStorageConfigs, cfg.Storage.Adapter)
	}

	if strings.ContainsAny(cfg.App.Namespace, " ?#") {
		return fmt.Errorf("%w: namespace %q", ErrInvalidAppConfigs, cfg.App.Namespace)
	}

	if cfg.App.BaseURL != "" {
		u, err := url.Parse(cfg.App.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: base url %q", ErrInvalidAppConfigs, cfg.App.BaseURL)
		}
	}

	if cfg.Server.RequestTimeout < 0 || cfg.Server.RateLimit < 0 || cfg.Server.RateBurst < 0 {
		return ErrInvalidServerConfigs
	}

	return nil
}
