// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package hooks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/MKhiriev/go-resource-keeper/models"
)

// Field names written by the timestamps transform.
const (
	CreatedAtField = "createdAt"
	UpdatedAtField = "updatedAt"
)

// ErrUnknownTransform is returned by [Builtin] for names it does not know.
var ErrUnknownTransform = errors.New("unknown built-in transform")

// now is replaced in tests.
var now = time.Now

// Builtin resolves a named transform as used in definitions files:
//
//	trim              trims whitespace from every string value
//	timestamps        sets createdAt on POST and updatedAt on every write
//	omit:<field>      removes field
//	hash:<field>      replaces field with its bcrypt hash
//	lowercase:<field> lower-cases field
func Builtin(spec string) (Transform, error) {
	name, field, hasField := strings.Cut(strings.TrimSpace(spec), ":")

	switch name {
	case "trim":
		return trim, nil
	case "timestamps":
		return timestamps, nil
	}

	if !hasField || field == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransform, spec)
	}

	switch name {
	case "omit":
		return omit(field), nil
	case "hash":
		return hash(field), nil
	case "lowercase":
		return lowercase(field), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransform, spec)
	}
}

// UsesTimestamps reports whether any of specs is the timestamps transform.
func UsesTimestamps(specs []string) bool {
	for _, s := range specs {
		if strings.TrimSpace(s) == "timestamps" {
			return true
		}
	}
	return false
}

func trim(_ context.Context, _ *Request, rec models.Record) (models.Record, error) {
	for k, v := range rec {
		if s, ok := v.(string); ok {
			rec[k] = strings.TrimSpace(s)
		}
	}
	return rec, nil
}

func timestamps(_ context.Context, req *Request, rec models.Record) (models.Record, error) {
	ts := now().UTC()
	if req.Method == http.MethodPost {
		if _, ok := rec[CreatedAtField]; !ok {
			rec[CreatedAtField] = ts
		}
	}
	if req.Method != http.MethodDelete {
		rec[UpdatedAtField] = ts
	}
	return rec, nil
}

func omit(field string) Transform {
	return func(_ context.Context, _ *Request, rec models.Record) (models.Record, error) {
		delete(rec, field)
		return rec, nil
	}
}

func hash(field string) Transform {
	return func(_ context.Context, req *Request, rec models.Record) (models.Record, error) {
		if req.Method == http.MethodDelete {
			return rec, nil
		}
		s, ok := rec[field].(string)
		if !ok || s == "" || isBcrypt(s) {
			return rec, nil
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(s), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("error hashing %s: %w", field, err)
		}
		rec[field] = string(hashed)
		return rec, nil
	}
}

func isBcrypt(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}

func lowercase(field string) Transform {
	return func(_ context.Context, _ *Request, rec models.Record) (models.Record, error) {
		if s, ok := rec[field].(string); ok {
			rec[field] = strings.ToLower(s)
		}
		return rec, nil
	}
}
