// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/MKhiriev/go-resource-keeper/internal/client"
	"github.com/MKhiriev/go-resource-keeper/internal/logger"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

// clientConfig is read from the environment first; flags override it.
type clientConfig struct {
	Address   string        `env:"API_ADDRESS" envDefault:"localhost:8080"`
	Namespace string        `env:"API_NAMESPACE"`
	Token     string        `env:"API_TOKEN"`
	Timeout   time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	Workers   int           `env:"IMPORT_WORKERS" envDefault:"4"`
	Version   bool
}

func main() {
	log := logger.NewLogger("resource-client")
	logger.SetProduction(true)

	var cfg clientConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatal().Err(err).Msg("error parsing environment")
	}

	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	fs.StringVar(&cfg.Address, "a", cfg.Address, "API address")
	fs.StringVar(&cfg.Namespace, "n", cfg.Namespace, "route namespace")
	fs.StringVar(&cfg.Token, "t", cfg.Token, "bearer token")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "request timeout")
	fs.IntVar(&cfg.Workers, "w", cfg.Workers, "parallel creates for import")
	fs.BoolVar(&cfg.Version, "version", false, "print build info and exit")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: %s [flags] <command> <plural> [args]\n\n%s\n\nflags:\n", os.Args[0], client.Usage)
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[1:])

	if cfg.Version {
		printBuildInfo()
		return
	}

	c, err := client.New(client.Config{
		Address:   cfg.Address,
		Namespace: cfg.Namespace,
		Timeout:   cfg.Timeout,
		Token:     cfg.Token,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating client")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err = client.NewCommands(c, os.Stdout, cfg.Workers).Run(ctx, fs.Args()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, client.ErrUsage) {
			fs.Usage()
			os.Exit(2)
		}
		os.Exit(1)
	}
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
