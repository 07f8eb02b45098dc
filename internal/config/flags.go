// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses configuration flags from args (normally os.Args[1:]).
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-c/-config json file path with configs
//	-adapter storage adapter (memory, postgres, sqlite, mongodb)
//	-d database DSN
//	-db-path sqlite database file
//	-namespace route prefix
//	-base-url absolute URL prepended to links
//	-production hide error details and log at info level
//	-cors enable or disable CORS headers
//	-schema resource definitions file
//	-watch-schema re-apply the definitions file on change
//	-cache read cache (none, lru, redis)
//	-redis-url redis URL for the redis cache
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-rate-limit requests per second, 0 disables
//	-metrics expose /metrics
func ParseFlags(args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)

	var serverAddress NetAddress
	var jsonConfigPath string
	var adapter, databaseDSN, dbPath string
	var namespace, baseURL, schemaFile string
	var production, watchSchema, metrics bool
	var cors *bool
	var cacheKind, redisURL string
	var requestTimeout time.Duration
	var rateLimit float64

	fs.Var(&serverAddress, "a", "Net address host:port")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	fs.StringVar(&adapter, "adapter", "", "Storage adapter: memory, postgres, sqlite, mongodb")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.StringVar(&dbPath, "db-path", "", "SQLite database file")
	fs.StringVar(&namespace, "namespace", "", "Route namespace")
	fs.StringVar(&baseURL, "base-url", "", "Base URL for links")
	fs.BoolVar(&production, "production", false, "Production mode")
	fs.Func("cors", "Enable CORS headers (true/false)", func(s string) error {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		cors = &v
		return nil
	})
	fs.StringVar(&schemaFile, "schema", "", "Resource definitions file (YAML or JSON)")
	fs.BoolVar(&watchSchema, "watch-schema", false, "Re-apply the definitions file on change")
	fs.StringVar(&cacheKind, "cache", "", "Read cache: none, lru, redis")
	fs.StringVar(&redisURL, "redis-url", "", "Redis URL for the redis cache")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	fs.Float64Var(&rateLimit, "rate-limit", 0, "Requests per second, 0 disables")
	fs.BoolVar(&metrics, "metrics", false, "Expose Prometheus metrics on /metrics")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return &StructuredConfig{
		App: App{
			Namespace:   namespace,
			BaseURL:     baseURL,
			Production:  production,
			CORS:        cors,
			Metrics:     metrics,
			SchemaFile:  schemaFile,
			WatchSchema: watchSchema,
		},
		Storage: Storage{
			Adapter: adapter,
			DB: DB{
				DSN:  databaseDSN,
				Path: dbPath,
			},
			Cache: Cache{
				Kind:     cacheKind,
				RedisURL: redisURL,
			},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
			RateLimit:      rateLimit,
		},
		JSONFilePath: jsonConfigPath,
	}, nil
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// Set parses the input string of form host:port and populates the NetAddress.
// The host may be empty, an IPv4 or bracketed IPv6 address, or a hostname.
// The port must be in range 1-65535.
func (a *NetAddress) Set(s string) error {
	host, rawPort, err := net.SplitHostPort(s)
	if err != nil {
		return fmt.Errorf("need address in a form `host:port`: %w", err)
	}

	port, err := strconv.Atoi(rawPort)
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be in range 1-65535")
	}

	if host != "" && net.ParseIP(host) == nil && !isHostname(host) {
		return fmt.Errorf("incorrect host provided: %q", host)
	}

	a.Host = host
	a.Port = port
	return nil
}

// isHostname reports whether host is made of dot separated labels of
// letters, digits and inner hyphens.
func isHostname(host string) bool {
	if len(host) > 253 {
		return false
	}
	for _, label := range strings.Split(strings.TrimSuffix(host, "."), ".") {
		if label == "" || len(label) > 63 || label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for _, r := range label {
			isAlnum := r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
			if !isAlnum && r != '-' {
				return false
			}
		}
	}
	return true
}
