// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-resource-keeper/internal/app"
	"github.com/MKhiriev/go-resource-keeper/internal/config"
	"github.com/MKhiriev/go-resource-keeper/internal/logger"
	"github.com/MKhiriev/go-resource-keeper/internal/server"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("resource-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	a, err := app.New(cfg, nil, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating app")
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err = a.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("error connecting to storage")
	}

	if path := cfg.App.SchemaFile; path != "" {
		if cfg.App.WatchSchema {
			_, err = a.WatchDefinitions(ctx, path)
		} else {
			err = a.LoadDefinitions(path)
		}
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("error loading resource definitions")
		}
	}

	srv, err := server.NewServer(a.Handler(), cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
