// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "time"

// Default values applied to every field that no configuration source set.
const (
	DefaultAdapter        = AdapterMemory
	DefaultDBName         = "resources"
	DefaultHTTPAddress    = "localhost:8080"
	DefaultRequestTimeout = 30 * time.Second
	DefaultConnectTimeout = 10 * time.Second
	DefaultCacheKind      = CacheNone
	DefaultCacheTTL       = 5 * time.Minute
	DefaultCacheSize      = 1024
	DefaultDotEnvPath     = ".env"
)

// Defaults returns a fresh copy of the built-in configuration.
func Defaults() *StructuredConfig {
	cors := true
	return &StructuredConfig{
		App: App{
			CORS: &cors,
		},
		Storage: Storage{
			Adapter: DefaultAdapter,
			DB: DB{
				Name:           DefaultDBName,
				ConnectTimeout: DefaultConnectTimeout,
			},
			Cache: Cache{
				Kind: DefaultCacheKind,
				TTL:  DefaultCacheTTL,
				Size: DefaultCacheSize,
			},
		},
		Server: Server{
			HTTPAddress:    DefaultHTTPAddress,
			RequestTimeout: DefaultRequestTimeout,
		},
		DotEnvPath: DefaultDotEnvPath,
	}
}
