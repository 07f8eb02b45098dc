// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package app

import (
	"context"

	"github.com/MKhiriev/go-resource-keeper/internal/hooks"
	"github.com/MKhiriev/go-resource-keeper/internal/schema"
	"github.com/MKhiriev/go-resource-keeper/models"
)

// LoadDefinitions registers the resources of a YAML or JSON definitions
// file together with their built-in transforms. Loading the same file again
// replaces the definitions it registered before and removes those it no
// longer lists.
//
// An unreadable or malformed file is returned. A single bad resource is
// logged and skipped.
func (a *App) LoadDefinitions(path string) error {
	defs, err := schema.LoadDefinitions(path)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}
	a.applyDefinitions(context.Background(), defs)
	return nil
}

// applyDefinitions must be called with a.mu held.
func (a *App) applyDefinitions(ctx context.Context, defs []schema.Definition) {
	listed := make(map[string]struct{}, len(defs))

	for _, def := range defs {
		listed[def.Name] = struct{}{}
		if err := a.applyDefinition(ctx, def); err != nil {
			continue
		}
		a.fileResources[def.Name] = struct{}{}
	}

	for name := range a.fileResources {
		if _, ok := listed[name]; ok {
			continue
		}
		a.resources.Remove(name)
		a.transforms.Reset(name)
		delete(a.fileResources, name)
		a.logger.Info().Str("resource", name).Msg("resource removed from definitions")
	}

	a.refresh()
}

func (a *App) applyDefinition(ctx context.Context, def schema.Definition) error {
	s, err := def.Schema()
	if err != nil {
		return a.registrationFailed(def.Name, err)
	}

	before, err := builtins(def.Hooks.Before)
	if err != nil {
		return a.registrationFailed(def.Name, err)
	}
	after, err := builtins(def.Hooks.After)
	if err != nil {
		return a.registrationFailed(def.Name, err)
	}

	if hooks.UsesTimestamps(def.Hooks.Before) {
		addTimestampFields(s)
	}

	_, known := a.fileResources[def.Name]
	if err = a.register(ctx, def.Name, s, def.Options(), known); err != nil {
		return err
	}

	a.transforms.Reset(def.Name)
	a.transforms.Before(def.Name, before...)
	a.transforms.After(def.Name, after...)
	return nil
}

func builtins(specs []string) ([]hooks.Transform, error) {
	out := make([]hooks.Transform, 0, len(specs))
	for _, spec := range specs {
		fn, err := hooks.Builtin(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, fn)
	}
	return out, nil
}

// addTimestampFields declares the date fields written by the timestamps
// transform unless the schema already has them.
func addTimestampFields(s models.Schema) {
	for _, name := range []string{hooks.CreatedAtField, hooks.UpdatedAtField} {
		if _, ok := s[name]; !ok {
			s[name] = models.Field{Type: models.DateType}
		}
	}
}
