// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package hooks

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/MKhiriev/go-resource-keeper/models"
)

func runBuiltin(t *testing.T, spec, method string, rec models.Record) models.Record {
	t.Helper()
	fn, err := Builtin(spec)
	require.NoError(t, err)
	out, err := fn(context.Background(), &Request{Method: method, Resource: "user"}, rec)
	require.NoError(t, err)
	return out
}

func TestBuiltin_Unknown(t *testing.T) {
	for _, spec := range []string{"nope", "omit", "omit:", "upper:name"} {
		t.Run(spec, func(t *testing.T) {
			_, err := Builtin(spec)
			assert.ErrorIs(t, err, ErrUnknownTransform)
		})
	}
}

func TestBuiltin_Trim(t *testing.T) {
	out := runBuiltin(t, "trim", http.MethodPost, models.Record{"name": "  Ann \n", "age": 3})
	assert.Equal(t, "Ann", out["name"])
	assert.Equal(t, 3, out["age"])
}

func TestBuiltin_Timestamps(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = time.Now })

	out := runBuiltin(t, "timestamps", http.MethodPost, models.Record{})
	assert.Equal(t, fixed, out[CreatedAtField])
	assert.Equal(t, fixed, out[UpdatedAtField])

	out = runBuiltin(t, "timestamps", http.MethodPatch, models.Record{})
	assert.NotContains(t, out, CreatedAtField)
	assert.Equal(t, fixed, out[UpdatedAtField])

	out = runBuiltin(t, "timestamps", http.MethodDelete, models.Record{})
	assert.NotContains(t, out, UpdatedAtField)
}

func TestBuiltin_Omit(t *testing.T) {
	out := runBuiltin(t, "omit:password", http.MethodGet, models.Record{"password": "x", "name": "Ann"})
	assert.NotContains(t, out, "password")
	assert.Equal(t, "Ann", out["name"])
}

func TestBuiltin_Hash(t *testing.T) {
	out := runBuiltin(t, "hash:password", http.MethodPost, models.Record{"password": "secret"})
	hashed, ok := out["password"].(string)
	require.True(t, ok)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hashed), []byte("secret")))

	// already hashed values are kept
	again := runBuiltin(t, "hash:password", http.MethodPut, models.Record{"password": hashed})
	assert.Equal(t, hashed, again["password"])
}

func TestBuiltin_Lowercase(t *testing.T) {
	out := runBuiltin(t, "lowercase:email", http.MethodPost, models.Record{"email": "Ann@Example.COM"})
	assert.Equal(t, "ann@example.com", out["email"])
}

func TestUsesTimestamps(t *testing.T) {
	assert.True(t, UsesTimestamps([]string{"trim", " timestamps"}))
	assert.False(t, UsesTimestamps([]string{"trim"}))
}
