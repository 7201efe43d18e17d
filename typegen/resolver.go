// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package typegen

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dacolabs/jsonschema-tools/jsonschema"
)

// An UnsupportedTypeError is returned for a schema whose type has no
// target type and no fallback.
type UnsupportedTypeError struct {
	Schema *jsonschema.Schema
	Type   jsonschema.Type
}

func (e *UnsupportedTypeError) Error() string {
	t := e.Type.String()
	if e.Type == jsonschema.TypeNone {
		t = "none"
	}
	return fmt.Sprintf("unsupported type %s for %s", t, e.Schema)
}

// A Resolver maps schemas to target types.
// The schemas must have been resolved with a [jsonschema.Resolver].
type Resolver struct {
	settings Settings
	registry *Registry
}

// NewResolver returns a resolver that allocates named types in registry,
// or in a new registry with the default name generator if registry is nil.
func NewResolver(settings Settings, registry *Registry) *Resolver {
	if registry == nil {
		registry = NewRegistry(nil)
	}
	return &Resolver{settings: settings, registry: registry}
}

// Registry returns the registry in which r allocates types.
func (r *Resolver) Registry() *Registry { return r.registry }

// Resolve returns the target type of s.
//
// The type is nullable when isRequired is false or the schema allows null.
// Objects and enumerations get named types, whose names come from hint
// unless s is a reference to a definition, whose name is used instead.
// Resolving the same schema again returns the same named type.
func (r *Resolver) Resolve(s *jsonschema.Schema, isRequired bool, hint string) (TypeDescriptor, error) {
	actual, err := s.ActualSchema()
	if err != nil {
		return TypeDescriptor{}, err
	}
	if name := refName(s.Ref); name != "" {
		hint = name
	}
	d, err := r.resolve(actual, hint)
	if err != nil {
		return TypeDescriptor{}, err
	}
	d.IsNullable = !isRequired || actual.Type.Has(jsonschema.TypeNull)
	return d, nil
}

func (r *Resolver) resolve(s *jsonschema.Schema, hint string) (TypeDescriptor, error) {
	t := s.Type &^ jsonschema.TypeNull
	switch {
	case s.IsEnumeration():
		typ := r.enum(s, hint)
		return TypeDescriptor{Name: typ.Name}, nil

	case s.IsDictionary():
		item, err := r.Resolve(s.AdditionalProperties, true, hint+"Value")
		if err != nil {
			return TypeDescriptor{}, err
		}
		return TypeDescriptor{Name: fmt.Sprintf(r.settings.MapFormat, r.Render(item)), IsMap: true, Item: &item}, nil

	case t == jsonschema.TypeArray:
		item, err := r.arrayItem(s, hint)
		if err != nil {
			return TypeDescriptor{}, err
		}
		return TypeDescriptor{Name: fmt.Sprintf(r.settings.ArrayFormat, r.Render(item)), IsCollection: true, Item: &item}, nil

	case t == jsonschema.TypeObject || (t == jsonschema.TypeNone && (s.NumProperties() > 0 || len(s.AllOf) > 0)):
		if s.NumProperties() == 0 && len(s.AllOf) == 0 && s.AdditionalProperties == nil && r.settings.AnyType != "" {
			// A free-form object.
			item := TypeDescriptor{Name: r.settings.AnyType}
			return TypeDescriptor{Name: fmt.Sprintf(r.settings.MapFormat, item.Name), IsMap: true, Item: &item}, nil
		}
		typ, err := r.class(s, hint)
		if err != nil {
			return TypeDescriptor{}, err
		}
		return TypeDescriptor{Name: typ.Name}, nil

	case t == jsonschema.TypeString:
		return r.primitive(s, r.settings.StringType), nil
	case t == jsonschema.TypeInteger:
		return r.primitive(s, r.settings.IntegerType), nil
	case t == jsonschema.TypeNumber, t == jsonschema.TypeNumber|jsonschema.TypeInteger:
		return r.primitive(s, r.settings.NumberType), nil
	case t == jsonschema.TypeBoolean:
		return TypeDescriptor{Name: r.settings.BooleanType}, nil
	case t == jsonschema.TypeFile:
		return TypeDescriptor{Name: r.settings.FileType}, nil
	}
	if r.settings.AnyType == "" {
		return TypeDescriptor{}, &UnsupportedTypeError{Schema: s, Type: s.Type}
	}
	return TypeDescriptor{Name: r.settings.AnyType}, nil
}

func (r *Resolver) primitive(s *jsonschema.Schema, name string) TypeDescriptor {
	if f, ok := r.settings.Formats[s.Format]; ok && s.Format != "" {
		name = f
	}
	return TypeDescriptor{Name: name}
}

func (r *Resolver) arrayItem(s *jsonschema.Schema, hint string) (TypeDescriptor, error) {
	switch {
	case s.Items != nil:
		return r.Resolve(s.Items, true, hint+"Item")
	case len(s.ItemsArray) == 1 && s.AdditionalItems.IsFalse():
		return r.Resolve(s.ItemsArray[0], true, hint+"Item")
	}
	if r.settings.AnyType == "" {
		return TypeDescriptor{}, &UnsupportedTypeError{Schema: s, Type: s.Type}
	}
	return TypeDescriptor{Name: r.settings.AnyType}, nil
}

// Render returns d as a type expression, wrapping nullable named and
// primitive types with the nullable format.
func (r *Resolver) Render(d TypeDescriptor) string {
	if !d.IsNullable || d.IsCollection || d.IsMap || d.Name == r.settings.AnyType || r.settings.NullableFormat == "" {
		return d.Name
	}
	return fmt.Sprintf(r.settings.NullableFormat, d.Name)
}

// class allocates the class for s and fills it in the first time.
// The class is allocated before its fields are resolved, so recursive
// schemas refer to it by name.
func (r *Resolver) class(s *jsonschema.Schema, hint string) (*Type, error) {
	typ, created := r.registry.Allocate(s, hint)
	if !created {
		return typ, nil
	}
	typ.Kind = KindClass
	typ.Description = s.Description
	if d := s.Discriminator; d != nil {
		typ.Discriminator = d.PropertyName
		typ.Mapping = d.Mapping
	}

	// Exactly one referenced object in allOf is the base class;
	// everything else in allOf is flattened into this class.
	var refs []*jsonschema.Schema
	for _, sub := range s.AllOf {
		actual, err := sub.ActualSchema()
		if err != nil {
			return nil, err
		}
		if sub.HasReference() && isObject(actual) {
			refs = append(refs, sub)
		}
	}
	var base *jsonschema.Schema
	if len(refs) == 1 {
		base = refs[0]
		actual, _ := base.ActualSchema()
		bt, err := r.class(actual, refName(base.Ref))
		if err != nil {
			return nil, err
		}
		typ.Base = bt
		bt.Derived = append(bt.Derived, typ)
	}
	var flatten []*jsonschema.Schema
	for _, sub := range s.AllOf {
		if sub != base {
			flatten = append(flatten, sub)
		}
	}

	seen := map[string]bool{}
	visited := map[*jsonschema.Schema]bool{}
	var addFields func(owner *jsonschema.Schema, nested bool) error
	addFields = func(owner *jsonschema.Schema, nested bool) error {
		if visited[owner] {
			return nil
		}
		visited[owner] = true
		for name, prop := range owner.Properties() {
			if seen[name] {
				continue
			}
			seen[name] = true
			d, err := r.Resolve(prop, prop.IsRequired(), typ.Name+Identifier(name))
			if err != nil {
				return fmt.Errorf("property %q of %s: %w", name, typ.Name, err)
			}
			desc := prop.Description
			if actual, err := prop.ActualSchema(); err == nil && desc == "" {
				desc = actual.Description
			}
			typ.Fields = append(typ.Fields, &Field{Name: name, Type: d, Required: prop.IsRequired(), Description: desc})
		}
		if !nested {
			return nil
		}
		// A flattened schema brings the members of its own allOf.
		for _, sub := range owner.AllOf {
			actual, err := sub.ActualSchema()
			if err != nil {
				return err
			}
			if err := addFields(actual, true); err != nil {
				return err
			}
		}
		return nil
	}
	if err := addFields(s, false); err != nil {
		return nil, err
	}
	for _, sub := range flatten {
		actual, err := sub.ActualSchema()
		if err != nil {
			return nil, err
		}
		if err := addFields(actual, true); err != nil {
			return nil, err
		}
	}
	return typ, nil
}

func isObject(s *jsonschema.Schema) bool {
	return s.Type.Has(jsonschema.TypeObject) ||
		(s.Type == jsonschema.TypeNone && (s.NumProperties() > 0 || len(s.AllOf) > 0))
}

func (r *Resolver) enum(s *jsonschema.Schema, hint string) *Type {
	typ, created := r.registry.Allocate(s, hint)
	if !created {
		return typ
	}
	typ.Kind = KindEnum
	typ.Description = s.Description
	used := map[string]bool{}
	for i, v := range s.Enum {
		if v == nil {
			continue
		}
		if n, ok := v.(json.Number); ok {
			if i, err := n.Int64(); err == nil {
				v = i
			} else if f, err := n.Float64(); err == nil {
				v = f
			}
		}
		if f, ok := v.(float64); ok && f == math.Trunc(f) && math.Abs(f) < 1<<63 {
			v = int64(f)
		}
		var name string
		if len(s.EnumNames) == len(s.Enum) {
			name = Identifier(s.EnumNames[i])
		}
		if str, ok := v.(string); ok && name == "" {
			name = Identifier(str)
		}
		if name == "" {
			name = Identifier(strings.ReplaceAll(fmt.Sprint(v), "-", "Minus "))
		}
		if name == "" || startsWithDigit(name) || (!isString(v) && len(s.EnumNames) != len(s.Enum)) {
			name = "Value" + name
		}
		base := name
		for j := 2; used[name]; j++ {
			name = base + strconv.Itoa(j)
		}
		used[name] = true
		typ.Values = append(typ.Values, EnumValue{Name: name, Value: v})
	}
	return typ
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

// refName returns the last segment of a reference, such as "Pet" for
// "#/definitions/Pet" or "pet" for "pet.json".
func refName(ref string) string {
	if ref == "" {
		return ""
	}
	doc, frag, _ := strings.Cut(ref, "#")
	if frag != "" && frag != "/" {
		seg := frag[strings.LastIndexByte(frag, '/')+1:]
		return strings.NewReplacer("~1", "/", "~0", "~").Replace(seg)
	}
	doc = doc[strings.LastIndexAny(doc, `/\`)+1:]
	if i := strings.IndexByte(doc, '.'); i > 0 {
		doc = doc[:i]
	}
	return doc
}
