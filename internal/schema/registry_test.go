// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-resource-keeper/models"
)

func personSchema() models.Schema {
	return models.Schema{
		"name": {Type: models.StringType},
		"pets": {Type: models.RefType, Ref: "pet", Many: true, Inverse: "owner"},
	}
}

func petSchema() models.Schema {
	return models.Schema{
		"name":  {Type: models.StringType},
		"owner": {Type: models.RefType, Ref: "person", Inverse: "pets"},
	}
}

func TestScrub_ReservedFields(t *testing.T) {
	for _, name := range ReservedFields {
		t.Run(name, func(t *testing.T) {
			_, err := Scrub(models.Schema{name: {Type: models.StringType}})
			assert.ErrorIs(t, err, ErrReservedField)
		})
	}
}

func TestScrub_UnknownType(t *testing.T) {
	_, err := Scrub(models.Schema{"x": {Type: "uuid"}})
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestScrub_PrimitiveWithRelationshipOptions(t *testing.T) {
	_, err := Scrub(models.Schema{"x": {Type: models.StringType, Many: true}})
	assert.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestScrub_DottedFieldName(t *testing.T) {
	_, err := Scrub(models.Schema{"a.b": {Type: models.StringType}})
	assert.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestScrub_ReturnsCopy(t *testing.T) {
	in := personSchema()
	out, err := Scrub(in)
	require.NoError(t, err)

	delete(out, "name")
	assert.Contains(t, in, "name")
}

func TestRegistry_Add(t *testing.T) {
	r := NewRegistry()

	res, err := r.Add("person", personSchema(), models.ResourceOptions{})
	require.NoError(t, err)
	assert.Equal(t, "person", res.Name)
	assert.Equal(t, "people", res.Plural)
	assert.True(t, r.Has("person"))

	_, err = r.Add("person", personSchema(), models.ResourceOptions{})
	assert.ErrorIs(t, err, ErrResourceExists)
}

func TestRegistry_Add_DoesNotRetainCallerSchema(t *testing.T) {
	r := NewRegistry()
	s := personSchema()

	_, err := r.Add("person", s, models.ResourceOptions{})
	require.NoError(t, err)

	s["injected"] = models.Field{Type: models.StringType}
	got, ok := r.Get("person")
	require.True(t, ok)
	assert.NotContains(t, got.Schema, "injected")

	got.Schema["mutated"] = models.Field{Type: models.StringType}
	again, _ := r.Get("person")
	assert.NotContains(t, again.Schema, "mutated")
}

func TestRegistry_Add_Errors(t *testing.T) {
	tests := []struct {
		name    string
		resName string
		schema  models.Schema
		opts    models.ResourceOptions
		wantErr error
	}{
		{"reserved field", "person", models.Schema{"href": {Type: models.StringType}}, models.ResourceOptions{}, ErrReservedField},
		{"invalid name", "9lives", models.Schema{}, models.ResourceOptions{}, ErrInvalidName},
		{"name with slash", "a/b", models.Schema{}, models.ResourceOptions{}, ErrInvalidName},
		{"reserved plural", "thing", models.Schema{}, models.ResourceOptions{Plural: "linked"}, ErrInvalidName},
		{"metrics route by inflection", "metric", models.Schema{}, models.ResourceOptions{}, ErrInvalidName},
		{"metrics route explicit", "gauge", models.Schema{}, models.ResourceOptions{Plural: "metrics"}, ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			_, err := r.Add(tt.resName, tt.schema, tt.opts)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, r.Has(tt.resName))
		})
	}
}

func TestRegistry_PluralConflict(t *testing.T) {
	r := NewRegistry()
	_, err := r.Add("person", personSchema(), models.ResourceOptions{})
	require.NoError(t, err)

	_, err = r.Add("human", models.Schema{}, models.ResourceOptions{Plural: "people"})
	assert.ErrorIs(t, err, ErrPluralConflict)
}

func TestRegistry_CustomPlural(t *testing.T) {
	r := NewRegistry()
	_, err := r.Add("datum", models.Schema{}, models.ResourceOptions{Plural: "data_points"})
	require.NoError(t, err)

	res, ok := r.ByPlural("data_points")
	require.True(t, ok)
	assert.Equal(t, "datum", res.Name)

	_, ok = r.ByPlural("data")
	assert.False(t, ok)
}

func TestRegistry_OrderAndRemove(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"person", "pet", "house"} {
		_, err := r.Add(name, models.Schema{}, models.ResourceOptions{})
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"person", "pet", "house"}, r.Names())

	assert.True(t, r.Remove("pet"))
	assert.False(t, r.Remove("pet"))
	assert.Equal(t, []string{"person", "house"}, r.Names())

	resources := r.Resources()
	require.Len(t, resources, 2)
	assert.Equal(t, "houses", resources[1].Plural)
}

func TestRegistry_Replace(t *testing.T) {
	r := NewRegistry()
	_, err := r.Add("person", personSchema(), models.ResourceOptions{})
	require.NoError(t, err)
	_, err = r.Add("pet", petSchema(), models.ResourceOptions{})
	require.NoError(t, err)

	res, err := r.Replace("person", models.Schema{"nick": {Type: models.StringType}}, models.ResourceOptions{ReadOnly: true})
	require.NoError(t, err)
	assert.True(t, res.ReadOnly)
	assert.Equal(t, []string{"person", "pet"}, r.Names())

	got, _ := r.Get("person")
	assert.Contains(t, got.Schema, "nick")
	assert.NotContains(t, got.Schema, "pets")

	_, err = r.Replace("house", models.Schema{}, models.ResourceOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"person", "pet", "house"}, r.Names())
}

func TestRegistry_Markers(t *testing.T) {
	r := NewRegistry()
	_, err := r.Add("person", personSchema(), models.ResourceOptions{})
	require.NoError(t, err)

	require.NoError(t, r.SetReadOnly("person", true))
	require.NoError(t, r.SetNoIndex("person", true))

	res, _ := r.Get("person")
	assert.True(t, res.ReadOnly)
	assert.True(t, res.NoIndex)

	assert.ErrorIs(t, r.SetReadOnly("ghost", true), ErrUnknownResource)
	assert.ErrorIs(t, r.SetNoIndex("ghost", true), ErrUnknownResource)
}

func TestRegistry_Validate(t *testing.T) {
	t.Run("consistent", func(t *testing.T) {
		r := NewRegistry()
		_, _ = r.Add("person", personSchema(), models.ResourceOptions{})
		_, _ = r.Add("pet", petSchema(), models.ResourceOptions{})
		assert.NoError(t, r.Validate())
	})

	t.Run("unresolved reference", func(t *testing.T) {
		r := NewRegistry()
		_, _ = r.Add("person", personSchema(), models.ResourceOptions{})
		assert.ErrorIs(t, r.Validate(), ErrUnresolvedReference)
	})

	t.Run("inverse points nowhere", func(t *testing.T) {
		r := NewRegistry()
		_, _ = r.Add("person", personSchema(), models.ResourceOptions{})
		_, _ = r.Add("pet", models.Schema{"name": {Type: models.StringType}}, models.ResourceOptions{})
		assert.ErrorIs(t, r.Validate(), ErrInvalidInverse)
	})
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "people", Plural("person"))
	assert.Equal(t, "pets", Plural("pet"))
	assert.Equal(t, "boxes", Plural("box"))
}
