// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package typegen

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dacolabs/jsonschema-tools/jsonschema"
)

func resolved(t *testing.T, text string) *jsonschema.Schema {
	t.Helper()
	s, err := jsonschema.Parse([]byte(text), "")
	require.NoError(t, err)
	require.NoError(t, jsonschema.NewResolver(nil).ResolveSchema(context.Background(), s))
	return s
}

func TestResolvePrimitives(t *testing.T) {
	for _, tt := range []struct {
		schema   string
		required bool
		want     string
		nullable bool
		rendered string
	}{
		{`{"type":"string"}`, true, "string", false, "string"},
		{`{"type":"string"}`, false, "string", true, "*string"},
		{`{"type":["string","null"]}`, true, "string", true, "*string"},
		{`{"type":"string","format":"date-time"}`, true, "time.Time", false, "time.Time"},
		{`{"type":"string","format":"uuid"}`, false, "uuid.UUID", true, "*uuid.UUID"},
		{`{"type":"string","format":"email"}`, true, "string", false, "string"},
		{`{"type":"integer"}`, true, "int64", false, "int64"},
		{`{"type":"integer","format":"int32"}`, true, "int32", false, "int32"},
		{`{"type":"number"}`, true, "float64", false, "float64"},
		{`{"type":["integer","number"]}`, true, "float64", false, "float64"},
		{`{"type":"boolean"}`, true, "bool", false, "bool"},
		{`{"type":"file"}`, true, "[]byte", false, "[]byte"},
		{`{}`, true, "any", false, "any"},
		{`{}`, false, "any", true, "any"},
		{`{"type":["string","integer"]}`, true, "any", false, "any"},
		{`{"type":"array","items":{"type":"string"}}`, true, "[]string", false, "[]string"},
		{`{"type":"array","items":{"type":["integer","null"]}}`, false, "[]*int64", true, "[]*int64"},
		{`{"type":"array"}`, true, "[]any", false, "[]any"},
		{`{"type":"array","items":[{"type":"string"}],"additionalItems":false}`, true, "[]string", false, "[]string"},
		{`{"type":"array","items":[{"type":"string"},{"type":"integer"}]}`, true, "[]any", false, "[]any"},
		{`{"type":"object","additionalProperties":{"type":"integer"}}`, true, "map[string]int64", false, "map[string]int64"},
		{`{"type":"object"}`, true, "map[string]any", false, "map[string]any"},
	} {
		t.Run(tt.schema, func(t *testing.T) {
			r := NewResolver(DefaultSettings(), nil)
			d, err := r.Resolve(resolved(t, tt.schema), tt.required, "X")
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Name)
			assert.Equal(t, tt.nullable, d.IsNullable)
			assert.Equal(t, tt.rendered, r.Render(d))
			assert.Empty(t, r.Registry().Types(), "no named types for %s", tt.schema)
		})
	}
}

func TestResolveCollections(t *testing.T) {
	r := NewResolver(DefaultSettings(), nil)
	d, err := r.Resolve(resolved(t, `{"type":"array","items":{"type":"string"}}`), true, "")
	require.NoError(t, err)
	assert.True(t, d.IsCollection)
	assert.False(t, d.IsMap)
	require.NotNil(t, d.Item)
	assert.Equal(t, TypeDescriptor{Name: "string"}, *d.Item)

	d, err = r.Resolve(resolved(t, `{"type":"object","additionalProperties":{"type":"boolean"}}`), true, "")
	require.NoError(t, err)
	assert.True(t, d.IsMap)
	assert.False(t, d.IsCollection)
	require.NotNil(t, d.Item)
	assert.Equal(t, "bool", d.Item.Name)
}

const petStore = `{
	"type": "object",
	"properties": {
		"pet": {"$ref": "#/definitions/Pet"},
		"person": {"$ref": "#/definitions/Person"}
	},
	"definitions": {
		"Pet": {
			"type": "object",
			"description": "A pet.",
			"properties": {
				"name": {"type": "string", "description": "The pet's name."},
				"tag": {"type": "string"},
				"kind": {"type": "string", "enum": ["cat", "dog"]},
				"owner": {"$ref": "#/definitions/Person"}
			},
			"required": ["name", "kind"]
		},
		"Person": {
			"type": "object",
			"properties": {
				"pets": {"type": "array", "items": {"$ref": "#/definitions/Pet"}},
				"friend": {"$ref": "#/definitions/Person"}
			}
		}
	}
}`

func TestResolveClasses(t *testing.T) {
	root := resolved(t, petStore)
	r := NewResolver(DefaultSettings(), nil)
	d, err := r.Resolve(root, true, "Store")
	require.NoError(t, err)
	assert.Equal(t, TypeDescriptor{Name: "Store"}, d)

	types := r.Registry().Types()
	var names []string
	for _, typ := range types {
		names = append(names, typ.Name)
	}
	assert.Equal(t, []string{"Store", "Pet", "PetKind", "Person"}, names)

	pet := types[1]
	assert.Equal(t, KindClass, pet.Kind)
	assert.Equal(t, "A pet.", pet.Description)
	assert.Same(t, root.Definitions["Pet"], pet.Schema)
	var fields []string
	for _, f := range pet.Fields {
		fields = append(fields, f.Name+" "+r.Render(f.Type))
	}
	assert.Equal(t, []string{"name string", "tag *string", "kind PetKind", "owner *Person"}, fields)
	assert.True(t, pet.Fields[0].Required)
	assert.Equal(t, "The pet's name.", pet.Fields[0].Description)
	assert.False(t, pet.Fields[1].Required)

	kind := types[2]
	assert.Equal(t, KindEnum, kind.Kind)
	assert.Equal(t, []EnumValue{{"Cat", "cat"}, {"Dog", "dog"}}, kind.Values)

	person := types[3]
	fields = nil
	for _, f := range person.Fields {
		fields = append(fields, f.Name+" "+r.Render(f.Type))
	}
	assert.Equal(t, []string{"pets []Pet", "friend *Person"}, fields)

	// The same node always gets the same type; the first hint wins.
	d, err = r.Resolve(root.Definitions["Pet"], true, "Other")
	require.NoError(t, err)
	assert.Equal(t, "Pet", d.Name)
	assert.Len(t, r.Registry().Types(), 4)

	// A distinct node with the same content is a distinct type.
	d, err = r.Resolve(root.Definitions["Pet"].CloneSchemas(), true, "Pet")
	require.NoError(t, err)
	assert.Equal(t, "Pet2", d.Name)
}

func TestResolveEnums(t *testing.T) {
	for _, tt := range []struct {
		schema string
		want   []EnumValue
	}{
		{`{"type":"string","enum":["red","dark-blue","2xl"]}`,
			[]EnumValue{{"Red", "red"}, {"DarkBlue", "dark-blue"}, {"Value2xl", "2xl"}}},
		{`{"type":"integer","enum":[1,-1,2]}`,
			[]EnumValue{{"Value1", int64(1)}, {"ValueMinus1", int64(-1)}, {"Value2", int64(2)}}},
		{`{"type":"integer","enum":[1,-1,2],"x-enumNames":["one","minus one","two"]}`,
			[]EnumValue{{"One", int64(1)}, {"MinusOne", int64(-1)}, {"Two", int64(2)}}},
		{`{"type":["string","null"],"enum":["a",null,"A"]}`,
			[]EnumValue{{"A", "a"}, {"A2", "A"}}},
	} {
		r := NewResolver(DefaultSettings(), nil)
		d, err := r.Resolve(resolved(t, tt.schema), true, "Color")
		require.NoError(t, err, tt.schema)
		assert.Equal(t, "Color", d.Name)
		typ, ok := r.Registry().Lookup(r.Registry().Types()[0].Schema)
		require.True(t, ok)
		assert.Equal(t, KindEnum, typ.Kind)
		assert.Equal(t, tt.want, typ.Values, tt.schema)
	}

	r := NewResolver(DefaultSettings(), nil)
	d, err := r.Resolve(resolved(t, `{"type":["string","null"],"enum":["a",null]}`), true, "E")
	require.NoError(t, err)
	assert.True(t, d.IsNullable)
	assert.Equal(t, "*E", r.Render(d))
}

func TestResolveInheritance(t *testing.T) {
	root := resolved(t, `{
		"definitions": {
			"Animal": {
				"type": "object",
				"discriminator": "kind",
				"properties": {"kind": {"type": "string"}, "name": {"type": "string"}},
				"required": ["kind"]
			},
			"Dog": {
				"allOf": [
					{"$ref": "#/definitions/Animal"},
					{"properties": {"bark": {"type": "boolean"}}, "required": ["bark"]}
				]
			},
			"Cat": {
				"type": "object",
				"properties": {"lives": {"type": "integer"}},
				"allOf": [{"$ref": "#/definitions/Animal"}]
			},
			"Tagged": {"type": "object", "properties": {"tag": {"type": "string"}}},
			"TaggedDog": {
				"allOf": [{"$ref": "#/definitions/Dog"}, {"$ref": "#/definitions/Tagged"}]
			}
		}
	}`)
	r := NewResolver(DefaultSettings(), nil)

	d, err := r.Resolve(root.Definitions["Dog"], true, "Dog")
	require.NoError(t, err)
	dog, ok := r.Registry().Lookup(root.Definitions["Dog"])
	require.True(t, ok)
	assert.Equal(t, "Dog", d.Name)
	require.NotNil(t, dog.Base)
	animal := dog.Base
	assert.Equal(t, "Animal", animal.Name)
	assert.Equal(t, "kind", animal.Discriminator)
	require.Len(t, dog.Fields, 1)
	assert.Equal(t, "bark", dog.Fields[0].Name)
	assert.True(t, dog.Fields[0].Required)

	_, err = r.Resolve(root.Definitions["Cat"], true, "Cat")
	require.NoError(t, err)
	cat, _ := r.Registry().Lookup(root.Definitions["Cat"])
	assert.Same(t, animal, cat.Base)
	assert.Equal(t, []*Type{dog, cat}, animal.Derived)

	// With two referenced objects there is no single base: both are flattened.
	_, err = r.Resolve(root.Definitions["TaggedDog"], true, "TaggedDog")
	require.NoError(t, err)
	td, _ := r.Registry().Lookup(root.Definitions["TaggedDog"])
	assert.Nil(t, td.Base)
	var fields []string
	for _, f := range td.Fields {
		fields = append(fields, f.Name)
	}
	assert.Equal(t, []string{"kind", "name", "bark", "tag"}, fields)
	assert.Len(t, animal.Derived, 2)
}

func TestResolveReferenceHints(t *testing.T) {
	root := resolved(t, `{
		"properties": {
			"a": {"$ref": "#/definitions/Shared"},
			"b": {"type": "object", "properties": {"x": {"type": "string"}}}
		},
		"definitions": {"Shared": {"type": "object", "properties": {"y": {"type": "string"}}}}
	}`)
	r := NewResolver(DefaultSettings(), nil)
	_, err := r.Resolve(root, true, "")
	require.NoError(t, err)
	var names []string
	for _, typ := range r.Registry().Types() {
		names = append(names, typ.Name)
	}
	assert.Equal(t, []string{"Anonymous", "Shared", "AnonymousB"}, names)
}

func TestResolveErrors(t *testing.T) {
	settings := DefaultSettings()
	settings.AnyType = ""
	r := NewResolver(settings, nil)

	for _, schema := range []string{`{}`, `{"type":["string","integer"]}`, `{"type":"array"}`} {
		_, err := r.Resolve(resolved(t, schema), true, "X")
		var ute *UnsupportedTypeError
		require.True(t, errors.As(err, &ute), "%s: got %v", schema, err)
	}

	_, err := r.Resolve(resolved(t, `{}`), true, "X")
	assert.EqualError(t, err, "unsupported type none for <anonymous schema>")

	_, err = r.Resolve(resolved(t, `{"type":"object","properties":{"p":{}}}`), true, "X")
	assert.ErrorContains(t, err, `property "p" of X`)

	_, err = r.Resolve(&jsonschema.Schema{Ref: "#/definitions/missing"}, true, "X")
	var ure *jsonschema.UnresolvedReferenceError
	assert.True(t, errors.As(err, &ure))
}

func TestRefName(t *testing.T) {
	for ref, want := range map[string]string{
		"":                                      "",
		"#":                                     "",
		"#/definitions/Pet":                     "Pet",
		"#/definitions/a~1b":                    "a/b",
		"pet.json":                              "pet",
		"schemas/pet.v1.json#":                  "pet",
		"https://x.org/a/b.json#/definitions/C": "C",
	} {
		assert.Equal(t, want, refName(ref), ref)
	}
}

func TestSettingsMerge(t *testing.T) {
	s := Settings{IntegerType: "int", Formats: map[string]string{"date": "civil.Date", "uuid": "string"}}
	m := s.Merge(DefaultSettings())
	assert.Equal(t, "int", m.IntegerType)
	assert.Equal(t, "string", m.StringType)
	assert.Equal(t, "civil.Date", m.Formats["date"])
	assert.Equal(t, "string", m.Formats["uuid"])
	assert.Equal(t, "time.Time", m.Formats["date-time"])
	// The defaults are not modified.
	assert.Equal(t, "uuid.UUID", DefaultSettings().Formats["uuid"])
}
