// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// ResourceOptions are per-resource settings supplied at registration time.
type ResourceOptions struct {
	// Plural overrides the inflected collection name used in routes and
	// response documents.
	Plural string `json:"plural,omitempty" yaml:"plural,omitempty"`

	// ReadOnly removes every mutating route (POST, PUT, PATCH, DELETE).
	ReadOnly bool `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`

	// NoIndex removes the collection listing route.
	NoIndex bool `json:"noIndex,omitempty" yaml:"noIndex,omitempty"`
}
