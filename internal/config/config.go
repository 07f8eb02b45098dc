// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"os"
	"time"
)

// Supported storage adapters.
const (
	AdapterMemory   = "memory"
	AdapterPostgres = "postgres"
	AdapterSQLite   = "sqlite"
	AdapterMongoDB  = "mongodb"
)

// Supported read caches placed in front of the storage adapter.
const (
	CacheNone  = "none"
	CacheLRU   = "lru"
	CacheRedis = "redis"
)

// StructuredConfig is the top-level configuration container for the
// resource server. It is populated by merging, in order, built-in defaults,
// an optional .env file, environment variables, command-line flags, and an
// optional JSON file.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds the routing and serialization settings of the generated API.
	App App `envPrefix:"APP_"`

	// Storage selects the persistence adapter and its connection parameters.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds network address, timeout and throttling settings.
	Server Server `envPrefix:"SERVER_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`

	// DotEnvPath is the .env file loaded before the environment is parsed.
	// A missing file is not an error.
	DotEnvPath string `env:"DOTENV"`
}

// App holds settings that shape the HTTP surface of registered resources.
type App struct {
	// Namespace is a path prefix for every resource route (e.g. "api/v1").
	// Env: APP_NAMESPACE
	Namespace string `env:"NAMESPACE"`

	// BaseURL is prepended to link templates and Location headers
	// (e.g. "https://example.com"). Empty means host-relative links.
	// Env: APP_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// Production hides error details from responses and raises the log level.
	// Env: APP_PRODUCTION
	Production bool `env:"PRODUCTION"`

	// CORS toggles the CORS header middleware. Nil means "use the default",
	// which is enabled.
	// Env: APP_CORS
	CORS *bool `env:"CORS"`

	// Metrics exposes Prometheus metrics on /metrics.
	// Env: APP_METRICS
	Metrics bool `env:"METRICS"`

	// SchemaFile is a YAML or JSON file with resource definitions that are
	// registered at startup.
	// Env: APP_SCHEMA_FILE
	SchemaFile string `env:"SCHEMA_FILE"`

	// WatchSchema re-applies SchemaFile whenever it changes on disk.
	// Env: APP_WATCH_SCHEMA
	WatchSchema bool `env:"WATCH_SCHEMA"`

	// TokenSignKey enables bearer authentication of mutating routes when
	// non-empty. Tokens must be HS256 JWTs signed with this key.
	// Env: APP_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the expected "iss" claim of bearer tokens. Empty skips
	// the issuer check.
	// Env: APP_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`
}

// CORSEnabled resolves the CORS toggle, treating nil as enabled.
func (a App) CORSEnabled() bool {
	return a.CORS == nil || *a.CORS
}

// Storage groups the persistence settings.
type Storage struct {
	// Adapter is one of memory, postgres, sqlite or mongodb.
	// Env: STORAGE_ADAPTER
	Adapter string `env:"ADAPTER"`

	// DB holds the database connection parameters.
	DB DB `envPrefix:"DB_"`

	// Cache configures an optional read cache in front of the adapter.
	Cache Cache `envPrefix:"CACHE_"`
}

// DB holds connection settings for the selected adapter. When DSN is empty
// a connection string is assembled from the remaining fields, see
// [DB.ConnectionString].
type DB struct {
	// DSN is a complete connection string. It takes precedence over every
	// other field.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`

	// Env: STORAGE_DB_HOST
	Host string `env:"HOST"`

	// Env: STORAGE_DB_PORT
	Port int `env:"PORT"`

	// Env: STORAGE_DB_USERNAME
	Username string `env:"USERNAME"`

	// Env: STORAGE_DB_PASSWORD
	Password string `env:"PASSWORD"`

	// Name is the database name.
	// Env: STORAGE_DB_NAME
	Name string `env:"NAME"`

	// Flags are extra connection parameters in query string form
	// (e.g. "sslmode=disable").
	// Env: STORAGE_DB_FLAGS
	Flags string `env:"FLAGS"`

	// Path is the database file used by the sqlite adapter.
	// Env: STORAGE_DB_PATH
	Path string `env:"PATH"`

	// ConnectTimeout bounds the initial connection and ping.
	// Env: STORAGE_DB_CONNECT_TIMEOUT
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT"`
}

// Cache configures the optional read cache.
type Cache struct {
	// Kind is one of none, lru or redis.
	// Env: STORAGE_CACHE_KIND
	Kind string `env:"KIND"`

	// TTL is the lifetime of a cached record.
	// Env: STORAGE_CACHE_TTL
	TTL time.Duration `env:"TTL"`

	// Size is the maximum number of records kept by the lru cache.
	// Env: STORAGE_CACHE_SIZE
	Size int `env:"SIZE"`

	// RedisURL is the redis:// URL used by the redis cache.
	// Env: STORAGE_CACHE_REDIS_URL
	RedisURL string `env:"REDIS_URL"`
}

// Server holds network and timeout settings for the inbound transport layer.
type Server struct {
	// HTTPAddress is the TCP address the HTTP server listens on.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout is the maximum duration of a single request.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// RateLimit is the sustained number of requests per second accepted by
	// the server. Zero disables rate limiting.
	// Env: SERVER_RATE_LIMIT
	RateLimit float64 `env:"RATE_LIMIT"`

	// RateBurst is the token bucket size used together with RateLimit.
	// Env: SERVER_RATE_BURST
	RateBurst int `env:"RATE_BURST"`
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources. Later sources override earlier
// non-zero fields; fields left zero by every source take their default.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withDotEnv().
		withEnv().
		withFlags(os.Args[1:]).
		withJSON().
		build()
}
