// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package utils provides general-purpose helpers shared by the transport
// and client layers: context keys, JSON response writing, record and trace
// ids, bearer token handling and the HTTP client used by the Go client.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// SubjectCtxKey is the key under which the auth middleware stores the "sub"
// claim of a verified bearer token. Transforms read it through
// [GetSubjectFromContext] on hooks.Request.HTTP.
var SubjectCtxKey = contextKey("subject")

// WithSubject returns a copy of ctx carrying subject.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, SubjectCtxKey, subject)
}

// GetSubjectFromContext retrieves the authenticated subject from the context.
//
// Returns the subject and an ok flag:
//   - ok == true  — value is found and is a non-empty string
//   - ok == false — value is missing or has an unexpected type
func GetSubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(SubjectCtxKey).(string)
	return subject, ok && subject != ""
}
