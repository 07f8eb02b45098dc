// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"errors"
	"fmt"
	"io/fs"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
)

type configBuilder struct {
	configs []*StructuredConfig
	err     error
}

func newConfigBuilder() *configBuilder {
	return &configBuilder{
		configs: make([]*StructuredConfig, 0, 4),
	}
}

// build merges the collected configs in order, later non-zero fields
// overriding earlier ones, then fills every field still zero from [Defaults].
func (b *configBuilder) build() (*StructuredConfig, error) {
	if b.err != nil {
		return nil, fmt.Errorf("error occured during building config: %w", b.err)
	}

	config := new(StructuredConfig)
	for _, cfg := range b.configs {
		if err := mergo.Merge(config, cfg, mergo.WithOverride, mergo.WithoutDereference); err != nil {
			return nil, fmt.Errorf("error merging configs: %w", err)
		}
	}

	return WithDefaults(config)
}

// WithDefaults returns a copy of cfg in which every field left zero is taken
// from [Defaults], and validates the result. A nil cfg yields the defaults.
func WithDefaults(cfg *StructuredConfig) (*StructuredConfig, error) {
	merged := new(StructuredConfig)
	if cfg != nil {
		*merged = *cfg
		if cfg.App.CORS != nil {
			cors := *cfg.App.CORS
			merged.App.CORS = &cors
		}
	}

	// a non-nil pointer is a set value, even when it points at false
	if err := mergo.Merge(merged, Defaults(), mergo.WithoutDereference); err != nil {
		return nil, fmt.Errorf("error applying default configs: %w", err)
	}

	if err := merged.validate(); err != nil {
		return nil, err
	}

	return merged, nil
}

// withDotEnv loads variables from a .env file into the process environment
// so that withEnv picks them up. Variables already set are not overwritten.
func (b *configBuilder) withDotEnv() *configBuilder {
	path := DefaultDotEnvPath
	envOnly := &StructuredConfig{}
	if err := parseEnv(envOnly); err == nil && envOnly.DotEnvPath != "" {
		path = envOnly.DotEnvPath
	}

	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		b.err = errors.Join(b.err, fmt.Errorf("error loading %s: %w", path, err))
	}

	return b
}

func (b *configBuilder) withEnv() *configBuilder {
	envCfg := &StructuredConfig{}
	if err := parseEnv(envCfg); err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.configs = append(b.configs, envCfg)
	return b
}

func (b *configBuilder) withFlags(args []string) *configBuilder {
	flags, err := ParseFlags(args)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.configs = append(b.configs, flags)
	return b
}

func (b *configBuilder) withJSON() *configBuilder {
	var jsonPath string
	for _, cfg := range b.configs {
		if cfg.JSONFilePath != "" {
			jsonPath = cfg.JSONFilePath
		}
	}

	if jsonPath == "" {
		return b
	}

	jsonCfg, err := parseJSON(jsonPath)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}
	b.configs = append(b.configs, jsonCfg)

	return b
}
