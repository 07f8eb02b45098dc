// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package hooks keeps the before/after transform functions attached to
// resources and runs them around persistence.
//
// Transforms registered under [Global] run for every resource, ahead of the
// resource's own transforms. Within each group the registration order is
// kept.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/MKhiriev/go-resource-keeper/models"
)

// Global is the resource name that attaches a transform to every resource.
const Global = "*"

// ErrForbidden aborts a request. It is also returned when a before transform
// yields a nil record.
var ErrForbidden = errors.New("forbidden by transform")

// Request describes the call a transform runs for.
type Request struct {
	// Method is the HTTP method of the request (GET for reads).
	Method string
	// Resource is the name of the resource the record belongs to.
	Resource string
	// HTTP is the inbound request. It is nil for calls made outside a
	// request, such as inverse link updates.
	HTTP *http.Request
}

// Transform receives a record and returns the record to continue with.
// Returning a nil record drops it from a response (after) or rejects the
// request (before).
type Transform func(ctx context.Context, req *Request, rec models.Record) (models.Record, error)

// Registry maps resource names to their before and after transforms.
type Registry struct {
	mu     sync.RWMutex
	before map[string][]Transform
	after  map[string][]Transform
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		before: make(map[string][]Transform),
		after:  make(map[string][]Transform),
	}
}

// Before registers fns to run prior to persistence for every resource named
// in the space-separated list names.
func (r *Registry) Before(names string, fns ...Transform) {
	r.add(r.before, names, fns)
}

// After registers fns to run on every record prior to writing a response.
func (r *Registry) After(names string, fns ...Transform) {
	r.add(r.after, names, fns)
}

func (r *Registry) add(target map[string][]Transform, names string, fns []Transform) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range strings.Fields(names) {
		for _, fn := range fns {
			if fn != nil {
				target[name] = append(target[name], fn)
			}
		}
	}
}

// Reset removes the transforms attached to name. Global transforms are
// only removed when name is [Global].
func (r *Registry) Reset(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.before, name)
	delete(r.after, name)
}

// Count returns the number of before and after transforms that apply to
// resource, global ones included.
func (r *Registry) Count(resource string) (before, after int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.before[Global]) + len(r.before[resource]), len(r.after[Global]) + len(r.after[resource])
}

// RunBefore applies the before transforms for req.Resource to rec. A nil
// result from any transform stops the chain with [ErrForbidden].
func (r *Registry) RunBefore(ctx context.Context, req *Request, rec models.Record) (models.Record, error) {
	out, err := r.run(ctx, r.chain(r.before, req.Resource), req, rec)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("%w: %s %s", ErrForbidden, req.Method, req.Resource)
	}
	return out, nil
}

// RunAfter applies the after transforms for req.Resource to rec. A nil
// result with a nil error means the record must not be rendered.
func (r *Registry) RunAfter(ctx context.Context, req *Request, rec models.Record) (models.Record, error) {
	return r.run(ctx, r.chain(r.after, req.Resource), req, rec)
}

// RunAfterMany applies the after transforms to every record and drops the
// ones a transform discarded.
func (r *Registry) RunAfterMany(ctx context.Context, req *Request, recs []models.Record) ([]models.Record, error) {
	chain := r.chain(r.after, req.Resource)
	if len(chain) == 0 {
		return recs, nil
	}

	out := make([]models.Record, 0, len(recs))
	for _, rec := range recs {
		transformed, err := r.run(ctx, chain, req, rec)
		if err != nil {
			return nil, err
		}
		if transformed != nil {
			out = append(out, transformed)
		}
	}
	return out, nil
}

func (r *Registry) chain(hooks map[string][]Transform, resource string) []Transform {
	r.mu.RLock()
	defer r.mu.RUnlock()

	global, own := hooks[Global], hooks[resource]
	if resource == Global {
		own = nil
	}

	chain := make([]Transform, 0, len(global)+len(own))
	chain = append(chain, global...)
	return append(chain, own...)
}

func (r *Registry) run(ctx context.Context, chain []Transform, req *Request, rec models.Record) (models.Record, error) {
	for _, fn := range chain {
		var err error
		rec, err = fn(ctx, req, rec)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, nil
		}
	}
	return rec, nil
}
