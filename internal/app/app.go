// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-resource-keeper/internal/config"
	handler "github.com/MKhiriev/go-resource-keeper/internal/handler/http"
	"github.com/MKhiriev/go-resource-keeper/internal/hooks"
	"github.com/MKhiriev/go-resource-keeper/internal/logger"
	"github.com/MKhiriev/go-resource-keeper/internal/metrics"
	"github.com/MKhiriev/go-resource-keeper/internal/schema"
	"github.com/MKhiriev/go-resource-keeper/internal/service"
	"github.com/MKhiriev/go-resource-keeper/internal/store"
	"github.com/MKhiriev/go-resource-keeper/models"
)

// App ties the registries, the storage adapter and the HTTP handler
// together. It is safe for concurrent use.
type App struct {
	cfg        *config.StructuredConfig
	adapter    store.Adapter
	resources  *schema.Registry
	transforms *hooks.Registry
	metrics    *metrics.Metrics
	handler    *handler.Handler
	logger     *logger.Logger

	mu        sync.Mutex
	connected bool
	closed    bool

	// fileResources are the resources registered from a definitions file.
	// A reload removes those the file no longer lists.
	fileResources map[string]struct{}
}

// New merges cfg over the defaults and builds an App. When adapter is nil
// the adapter selected by cfg.Storage is created. Nothing is connected until
// [App.Connect].
func New(cfg *config.StructuredConfig, adapter store.Adapter, log *logger.Logger) (*App, error) {
	merged, err := config.WithDefaults(cfg)
	if err != nil {
		return nil, fmt.Errorf("error applying configuration: %w", err)
	}
	logger.SetProduction(merged.App.Production)

	var m *metrics.Metrics
	if merged.App.Metrics {
		m = metrics.NewMetrics()
	}

	if adapter == nil {
		adapter, err = store.NewAdapter(merged, m, log)
		if err != nil {
			return nil, fmt.Errorf("error creating storage adapter: %w", err)
		}
	}

	a := &App{
		cfg:           merged,
		adapter:       adapter,
		resources:     schema.NewRegistry(),
		transforms:    hooks.NewRegistry(),
		metrics:       m,
		logger:        log,
		fileResources: make(map[string]struct{}),
	}

	services := service.NewServices(a.resources, a.transforms, adapter, log)
	a.handler = handler.NewHandler(services, a.resources, merged, m, log)

	log.Info().
		Str("adapter", merged.Storage.Adapter).
		Str("namespace", merged.App.Namespace).
		Bool("production", merged.App.Production).
		Msg("app created")

	return a, nil
}

// Config returns the effective configuration.
func (a *App) Config() *config.StructuredConfig {
	return a.cfg
}

// Handler serves the API of every registered resource.
func (a *App) Handler() *handler.Handler {
	return a.handler
}

// Resources lists the registered resources in registration order.
func (a *App) Resources() []schema.Resource {
	return a.resources.Resources()
}

// Resource registers name with schema s. At most one options value is
// used. On failure the error is logged, counted and returned, and the
// resource is not served.
func (a *App) Resource(name string, s models.Schema, opts ...models.ResourceOptions) error {
	var o models.ResourceOptions
	if len(opts) > 0 {
		o = opts[0]
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}
	if err := a.register(context.Background(), name, s, o, false); err != nil {
		return err
	}
	a.refresh()
	return nil
}

// Before attaches transforms that run before persistence. names is a space
// separated list of resources, "*" for all.
func (a *App) Before(names string, fns ...hooks.Transform) *App {
	a.transforms.Before(names, fns...)
	return a
}

// After attaches transforms that run on every record before it is written
// to a response.
func (a *App) After(names string, fns ...hooks.Transform) *App {
	a.transforms.After(names, fns...)
	return a
}

// ReadOnly removes the write routes of names.
func (a *App) ReadOnly(names ...string) *App {
	a.mark(names, a.resources.SetReadOnly, "readOnly")
	return a
}

// NoIndex removes the collection listing of names.
func (a *App) NoIndex(names ...string) *App {
	a.mark(names, a.resources.SetNoIndex, "noIndex")
	return a
}

func (a *App) mark(names []string, set func(string, bool) error, marker string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, name := range names {
		if err := set(name, true); err != nil {
			a.logger.Warn().Err(err).Str("resource", name).Str("marker", marker).Msg("marker ignored")
		}
	}
	a.refresh()
}

// Connect opens the storage adapter and prepares storage for every
// registered resource. A connection failure is returned; a resource the
// adapter cannot model is logged and dropped.
func (a *App) Connect(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case a.closed:
		return ErrClosed
	case a.connected:
		return ErrAlreadyConnected
	}

	if err := a.adapter.Connect(ctx); err != nil {
		return fmt.Errorf("error connecting storage adapter: %w", err)
	}
	a.connected = true

	for _, res := range a.resources.Resources() {
		if err := a.adapter.Model(ctx, res.Name, res.Schema); err != nil {
			a.resources.Remove(res.Name)
			_ = a.registrationFailed(res.Name, fmt.Errorf("error modeling resource: %w", err))
		}
	}
	a.refresh()

	a.logger.Info().Int("resources", len(a.resources.Names())).Msg("storage connected")
	return nil
}

// Close releases the storage adapter. Later calls are no-ops.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	if !a.connected {
		return nil
	}
	if err := a.adapter.Close(); err != nil {
		return fmt.Errorf("error closing storage adapter: %w", err)
	}
	return nil
}

// register adds or, with replace, overwrites a resource. It must be called
// with a.mu held.
func (a *App) register(ctx context.Context, name string, s models.Schema, o models.ResourceOptions, replace bool) error {
	var (
		res schema.Resource
		err error
	)
	if replace {
		res, err = a.resources.Replace(name, s, o)
	} else {
		res, err = a.resources.Add(name, s, o)
	}
	if err != nil {
		return a.registrationFailed(name, err)
	}

	if a.connected {
		if err = a.adapter.Model(ctx, res.Name, res.Schema); err != nil {
			a.resources.Remove(res.Name)
			return a.registrationFailed(name, fmt.Errorf("error modeling resource: %w", err))
		}
	}

	a.logger.Info().
		Str("resource", res.Name).
		Str("plural", res.Plural).
		Bool("readOnly", res.ReadOnly).
		Bool("noIndex", res.NoIndex).
		Msg("resource registered")
	return nil
}

func (a *App) registrationFailed(name string, err error) error {
	a.metrics.RecordRegistrationError()
	a.logger.Error().Err(err).Str("resource", name).Msg("resource skipped")
	return fmt.Errorf("resource %q: %w", name, err)
}

// refresh checks relationships and rebuilds the route table. It must be
// called with a.mu held.
func (a *App) refresh() {
	if err := a.resources.Validate(); err != nil {
		for _, e := range unjoin(err) {
			a.logger.Warn().Err(e).Msg("unresolved relationship")
		}
	}
	a.metrics.SetResourcesRegistered(len(a.resources.Names()))
	a.handler.Rebuild()
}

func unjoin(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
