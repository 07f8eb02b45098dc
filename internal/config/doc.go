// Package config provides configuration loading, merging, and validation
// facilities for the resource server.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. .env file (loaded into the environment)
//  2. Environment variables
//  3. Command-line flags
//  4. JSON config file
//
// Fields that no source sets fall back to [Defaults]. The main entry point
// is [GetStructuredConfig].
package config
