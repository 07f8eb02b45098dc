// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package schema

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/MKhiriev/go-resource-keeper/models"
)

// Resource is a registered, scrubbed resource definition.
type Resource struct {
	Name     string
	Plural   string
	Schema   models.Schema
	ReadOnly bool
	NoIndex  bool
}

func (r Resource) clone() Resource {
	r.Schema = r.Schema.Clone()
	return r
}

// Registry holds every declared resource. It is safe for concurrent use;
// readers always receive copies.
type Registry struct {
	mu        sync.RWMutex
	resources map[string]Resource
	order     []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		resources: make(map[string]Resource),
	}
}

// Add registers a new resource. The schema is scrubbed and copied; the
// plural defaults to the inflected name unless opts.Plural is set.
func (r *Registry) Add(name string, s models.Schema, opts models.ResourceOptions) (Resource, error) {
	res, err := newResource(name, s, opts)
	if err != nil {
		return Resource{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.resources[name]; ok {
		return Resource{}, fmt.Errorf("%w: %q", ErrResourceExists, name)
	}
	if err = r.checkPlural(name, res.Plural); err != nil {
		return Resource{}, err
	}

	r.resources[name] = res
	r.order = append(r.order, name)

	return res.clone(), nil
}

// Replace registers name or overwrites its existing definition in place,
// keeping its position in registration order.
func (r *Registry) Replace(name string, s models.Schema, opts models.ResourceOptions) (Resource, error) {
	res, err := newResource(name, s, opts)
	if err != nil {
		return Resource{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err = r.checkPlural(name, res.Plural); err != nil {
		return Resource{}, err
	}

	if _, ok := r.resources[name]; !ok {
		r.order = append(r.order, name)
	}
	r.resources[name] = res

	return res.clone(), nil
}

func newResource(name string, s models.Schema, opts models.ResourceOptions) (Resource, error) {
	if !ValidName(name) {
		return Resource{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	scrubbed, err := Scrub(s)
	if err != nil {
		return Resource{}, err
	}

	plural := opts.Plural
	if plural == "" {
		plural = Plural(name)
	}
	if !ValidName(plural) || isReservedPlural(plural) {
		return Resource{}, fmt.Errorf("%w: plural %q", ErrInvalidName, plural)
	}

	return Resource{
		Name:     name,
		Plural:   plural,
		Schema:   scrubbed,
		ReadOnly: opts.ReadOnly,
		NoIndex:  opts.NoIndex,
	}, nil
}

// checkPlural must be called with r.mu held.
func (r *Registry) checkPlural(name, plural string) error {
	for other, res := range r.resources {
		if other != name && res.Plural == plural {
			return fmt.Errorf("%w: %q is used by %q", ErrPluralConflict, plural, other)
		}
	}
	return nil
}

// Get returns a copy of the named resource.
func (r *Registry) Get(name string) (Resource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.resources[name]
	if !ok {
		return Resource{}, false
	}
	return res.clone(), true
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.resources[name]
	return ok
}

// ByPlural looks a resource up by its collection name.
func (r *Registry) ByPlural(plural string) (Resource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, res := range r.resources {
		if res.Plural == plural {
			return res.clone(), true
		}
	}
	return Resource{}, false
}

// Names returns resource names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.order)
}

// Resources returns copies of all resources in registration order.
func (r *Registry) Resources() []Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Resource, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.resources[name].clone())
	}
	return out
}

// SetReadOnly toggles the readOnly marker of name.
func (r *Registry) SetReadOnly(name string, readOnly bool) error {
	return r.update(name, func(res *Resource) { res.ReadOnly = readOnly })
}

// SetNoIndex toggles the noIndex marker of name.
func (r *Registry) SetNoIndex(name string, noIndex bool) error {
	return r.update(name, func(res *Resource) { res.NoIndex = noIndex })
}

func (r *Registry) update(name string, fn func(*Resource)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.resources[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownResource, name)
	}
	fn(&res)
	r.resources[name] = res
	return nil
}

// Remove drops name from the registry. It reports whether name was present.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.resources[name]; !ok {
		return false
	}
	delete(r.resources, name)
	r.order = slices.DeleteFunc(r.order, func(n string) bool { return n == name })
	return true
}

// Validate checks relationships across the registry: every ref must name a
// registered resource, and every inverse must name a relationship field on
// that resource pointing back. All problems are joined into one error.
func (r *Registry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var errs []error
	for _, name := range r.order {
		res := r.resources[name]
		for _, fieldName := range res.Schema.Relationships() {
			field := res.Schema[fieldName]

			target, ok := r.resources[field.Ref]
			if !ok {
				errs = append(errs, fmt.Errorf("%w: %s.%s -> %q", ErrUnresolvedReference, name, fieldName, field.Ref))
				continue
			}

			if field.Inverse == "" {
				continue
			}
			inverse, ok := target.Schema[field.Inverse]
			if !ok || !inverse.IsRelationship() || inverse.Ref != name {
				errs = append(errs, fmt.Errorf("%w: %s.%s -> %s.%s", ErrInvalidInverse, name, fieldName, field.Ref, field.Inverse))
			}
		}
	}

	return errors.Join(errs...)
}
