// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig is the on-disk layout of the JSON config file.
type StructuredJSONConfig struct {
	App struct {
		Namespace    string `json:"namespace"`
		BaseURL      string `json:"base_url"`
		Production   bool   `json:"production"`
		CORS         *bool  `json:"cors,omitempty"`
		Metrics      bool   `json:"metrics"`
		SchemaFile   string `json:"schema_file"`
		WatchSchema  bool   `json:"watch_schema"`
		TokenSignKey string `json:"token_sign_key"`
		TokenIssuer  string `json:"token_issuer"`
	} `json:"app,omitempty"`

	Storage struct {
		Adapter string `json:"adapter"`

		DB struct {
			DSN            string   `json:"dsn"`
			Host           string   `json:"host"`
			Port           int      `json:"port"`
			Username       string   `json:"username"`
			Password       string   `json:"password"`
			Name           string   `json:"name"`
			Flags          string   `json:"flags"`
			Path           string   `json:"path"`
			ConnectTimeout Duration `json:"connect_timeout"`
		} `json:"db,omitempty"`

		Cache struct {
			Kind     string   `json:"kind"`
			TTL      Duration `json:"ttl"`
			Size     int      `json:"size"`
			RedisURL string   `json:"redis_url"`
		} `json:"cache,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
		RateLimit      float64  `json:"rate_limit"`
		RateBurst      int      `json:"rate_burst"`
	} `json:"server,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			Namespace:    jsonCfg.App.Namespace,
			BaseURL:      jsonCfg.App.BaseURL,
			Production:   jsonCfg.App.Production,
			CORS:         jsonCfg.App.CORS,
			Metrics:      jsonCfg.App.Metrics,
			SchemaFile:   jsonCfg.App.SchemaFile,
			WatchSchema:  jsonCfg.App.WatchSchema,
			TokenSignKey: jsonCfg.App.TokenSignKey,
			TokenIssuer:  jsonCfg.App.TokenIssuer,
		},
		Storage: Storage{
			Adapter: jsonCfg.Storage.Adapter,
			DB: DB{
				DSN:            jsonCfg.Storage.DB.DSN,
				Host:           jsonCfg.Storage.DB.Host,
				Port:           jsonCfg.Storage.DB.Port,
				Username:       jsonCfg.Storage.DB.Username,
				Password:       jsonCfg.Storage.DB.Password,
				Name:           jsonCfg.Storage.DB.Name,
				Flags:          jsonCfg.Storage.DB.Flags,
				Path:           jsonCfg.Storage.DB.Path,
				ConnectTimeout: time.Duration(jsonCfg.Storage.DB.ConnectTimeout),
			},
			Cache: Cache{
				Kind:     jsonCfg.Storage.Cache.Kind,
				TTL:      time.Duration(jsonCfg.Storage.Cache.TTL),
				Size:     jsonCfg.Storage.Cache.Size,
				RedisURL: jsonCfg.Storage.Cache.RedisURL,
			},
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
			RateLimit:      jsonCfg.Server.RateLimit,
			RateBurst:      jsonCfg.Server.RateBurst,
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
