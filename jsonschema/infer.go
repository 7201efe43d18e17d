// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// This file contains functions that infer a schema from a Go type.

package jsonschema

import (
	"encoding/json"
	"fmt"
	"math"
	"path"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// An AnnotationKind is a kind of annotation that may appear in the
// "jsonschema" struct tag of a field.
type AnnotationKind int

const (
	AnnotationRequired AnnotationKind = iota + 1
	AnnotationFormat
	AnnotationDescription
	AnnotationEnum
	AnnotationMinimum
	AnnotationMaximum
	AnnotationPattern
)

var annotationNames = map[string]AnnotationKind{
	"required":    AnnotationRequired,
	"format":      AnnotationFormat,
	"description": AnnotationDescription,
	"enum":        AnnotationEnum,
	"minimum":     AnnotationMinimum,
	"maximum":     AnnotationMaximum,
	"pattern":     AnnotationPattern,
}

func (k AnnotationKind) String() string {
	for name, kk := range annotationNames {
		if kk == k {
			return name
		}
	}
	return fmt.Sprintf("AnnotationKind(%d)", int(k))
}

// An Annotation is one parsed element of a "jsonschema" struct tag.
type Annotation struct {
	Kind  AnnotationKind
	Value string
}

// ParseAnnotations parses a "jsonschema" struct tag of the form
//
//	required,format=email,enum=a|b,minimum=0,description=free text
//
// A description extends to the end of the tag, so it may contain commas.
func ParseAnnotations(tag string) ([]Annotation, error) {
	var anns []Annotation
	for tag != "" {
		part, rest, _ := strings.Cut(tag, ",")
		name, value, _ := strings.Cut(part, "=")
		kind, ok := annotationNames[strings.TrimSpace(name)]
		if !ok {
			return nil, fmt.Errorf("unknown annotation %q", name)
		}
		if kind == AnnotationDescription {
			_, value, _ = strings.Cut(tag, "=")
			rest = ""
		}
		if kind != AnnotationRequired && value == "" {
			return nil, fmt.Errorf("annotation %q needs a value", name)
		}
		anns = append(anns, Annotation{kind, value})
		tag = rest
	}
	return anns, nil
}

// A TypeDescription overrides how a Go type is described in a schema.
type TypeDescription struct {
	Type     Type
	Format   string
	Nullable bool
}

// A TypeDescriptionProvider supplies descriptions for Go types that
// inference should not derive from the type's structure.
type TypeDescriptionProvider interface {
	DescribeType(t reflect.Type) (TypeDescription, bool)
}

// ForOptions are options for [For] and [ForType].
type ForOptions struct {
	// Provider, if set, is consulted for every type before the built-in rules.
	Provider TypeDescriptionProvider
}

// For constructs a JSON schema object for the given type argument.
//
// It translates Go types into compatible JSON schema types, as follows.
// These defaults can be overridden by a [TypeDescriptionProvider].
//   - Strings have schema type "string".
//   - Bools have schema type "boolean".
//   - Signed and unsigned integer types have schema type "integer".
//   - Floating point types have schema type "number".
//   - Slices and arrays have schema type "array", and a corresponding schema
//     for items.
//   - Maps with string key have schema type "object", and corresponding
//     schema for additionalProperties.
//   - Named structs are added to "definitions" and referenced with $ref;
//     other structs have schema type "object" with properties inline.
//   - Some types in the standard library that implement json.Marshaler
//     translate to schemas that match the values to which they marshal.
//     For example, [time.Time] translates to a string with format date-time.
//   - Pointers add "null" to the type of the pointed-to schema.
//
// Fields are required unless their json tag has omitempty or omitzero,
// or the "jsonschema" tag says "required".
//
// References in the result are already linked.
func For[T any](opts *ForOptions) (*Schema, error) {
	return ForType(reflect.TypeFor[T](), opts)
}

// ForType is like [For], but takes a [reflect.Type].
func ForType(t reflect.Type, opts *ForOptions) (*Schema, error) {
	if opts == nil {
		opts = &ForOptions{}
	}
	inf := &inference{
		opts:  opts,
		names: map[reflect.Type]string{},
		used:  map[string]bool{},
		defs:  map[string]*Schema{},
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	var root *Schema
	var err error
	if t.Kind() == reflect.Struct && t.Name() != "" {
		inf.root = t
		inf.rootSchema = &Schema{}
		err = inf.fillStruct(inf.rootSchema, t)
		root = inf.rootSchema
	} else {
		root, err = inf.schemaFor(t)
	}
	if err != nil {
		return nil, fmt.Errorf("ForType(%s): %w", t, err)
	}
	if len(inf.defs) > 0 {
		root.Definitions = inf.defs
	}
	return root, nil
}

// inference is the state of one call to ForType.
type inference struct {
	opts       *ForOptions
	root       reflect.Type
	rootSchema *Schema
	names      map[reflect.Type]string // definition names of named structs
	used       map[string]bool
	defs       map[string]*Schema
}

var (
	timeType       = reflect.TypeFor[time.Time]()
	uuidType       = reflect.TypeFor[uuid.UUID]()
	rawMessageType = reflect.TypeFor[json.RawMessage]()
)

func (inf *inference) schemaFor(t reflect.Type) (*Schema, error) {
	if p := inf.opts.Provider; p != nil {
		if d, ok := p.DescribeType(t); ok {
			s := &Schema{Type: d.Type, Format: d.Format}
			if d.Nullable && s.Type != TypeNone {
				s.Type |= TypeNull
			}
			return s, nil
		}
	}

	switch t {
	case timeType:
		return &Schema{Type: TypeString, Format: "date-time"}, nil
	case uuidType:
		return &Schema{Type: TypeString, Format: "uuid"}, nil
	case rawMessageType:
		return &Schema{}, nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return &Schema{Type: TypeBoolean}, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &Schema{Type: TypeInteger}, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		s := &Schema{Type: TypeInteger, Minimum: Ptr(0.0)}
		if t.Size() < 8 {
			s.Maximum = Ptr(float64(uint64(math.MaxUint64) >> (64 - 8*t.Size())))
		}
		return s, nil

	case reflect.Float32, reflect.Float64:
		return &Schema{Type: TypeNumber}, nil

	case reflect.String:
		return &Schema{Type: TypeString}, nil

	case reflect.Interface:
		return &Schema{}, nil

	case reflect.Pointer:
		s, err := inf.schemaFor(t.Elem())
		if err != nil {
			return nil, err
		}
		// A $ref cannot be widened in place.
		if !s.HasReference() && s.Type != TypeNone {
			s.Type |= TypeNull
		}
		return s, nil

	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 && t.Kind() == reflect.Slice {
			return &Schema{Type: TypeString, Format: "byte"}, nil
		}
		items, err := inf.schemaFor(t.Elem())
		if err != nil {
			return nil, err
		}
		s := &Schema{Type: TypeArray, Items: items}
		if t.Kind() == reflect.Array {
			s.MinItems = Ptr(t.Len())
			s.MaxItems = Ptr(t.Len())
		}
		return s, nil

	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("unsupported map key type %v", t.Key())
		}
		ap, err := inf.schemaFor(t.Elem())
		if err != nil {
			return nil, err
		}
		return &Schema{Type: TypeObject, AdditionalProperties: ap}, nil

	case reflect.Struct:
		if t.Name() == "" {
			s := &Schema{}
			return s, inf.fillStruct(s, t)
		}
		return inf.structRef(t)
	}
	return nil, fmt.Errorf("type %v is unsupported by jsonschema", t)
}

// structRef returns a reference to the definition of the named struct t,
// creating the definition the first time.
func (inf *inference) structRef(t reflect.Type) (*Schema, error) {
	if t == inf.root {
		ref := &Schema{Ref: "#"}
		ref.SetReference(inf.rootSchema)
		return ref, nil
	}
	name, ok := inf.names[t]
	if !ok {
		name = inf.definitionName(t)
		inf.names[t] = name
		def := &Schema{}
		inf.defs[name] = def
		// The definition is registered before it is filled,
		// so recursive types refer to it.
		if err := inf.fillStruct(def, t); err != nil {
			return nil, err
		}
	}
	ref := &Schema{Ref: "#/definitions/" + name}
	ref.SetReference(inf.defs[name])
	return ref, nil
}

func (inf *inference) definitionName(t reflect.Type) string {
	name := t.Name()
	if pkg := path.Base(t.PkgPath()); inf.used[name] && pkg != "." && pkg != "/" {
		name = strings.ToUpper(pkg[:1]) + pkg[1:] + name
	}
	base := name
	for i := 2; inf.used[name]; i++ {
		name = base + strconv.Itoa(i)
	}
	inf.used[name] = true
	return name
}

func (inf *inference) fillStruct(s *Schema, t reflect.Type) error {
	s.Type = TypeObject
	s.AdditionalProperties = falseSchema()
	for _, field := range reflect.VisibleFields(t) {
		if field.Anonymous {
			continue
		}
		info := fieldJSONInfo(field)
		if info.omit {
			continue
		}
		if s.Property(info.name) != nil {
			// A field of the outer struct already has this name.
			continue
		}
		prop, err := inf.schemaFor(field.Type)
		if err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
		s.SetProperty(info.name, prop)
		required := !info.settings["omitempty"] && !info.settings["omitzero"]

		if tag, ok := field.Tag.Lookup("jsonschema"); ok {
			anns, err := ParseAnnotations(tag)
			if err != nil {
				return fmt.Errorf("field %s: %w", field.Name, err)
			}
			for _, a := range anns {
				if a.Kind == AnnotationRequired {
					required = true
					continue
				}
				if err := applyAnnotation(prop, a); err != nil {
					return fmt.Errorf("field %s: %w", field.Name, err)
				}
			}
		}
		if required {
			if err := s.SetRequiredProperty(info.name, true); err != nil {
				return err
			}
		}
	}
	return nil
}

func applyAnnotation(s *Schema, a Annotation) error {
	switch a.Kind {
	case AnnotationFormat:
		s.Format = a.Value
	case AnnotationDescription:
		s.Description = a.Value
	case AnnotationPattern:
		s.Pattern = a.Value
	case AnnotationMinimum, AnnotationMaximum:
		f, err := strconv.ParseFloat(a.Value, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", a.Kind, err)
		}
		if a.Kind == AnnotationMinimum {
			s.Minimum = &f
		} else {
			s.Maximum = &f
		}
	case AnnotationEnum:
		for _, v := range strings.Split(a.Value, "|") {
			switch {
			case s.Type.Has(TypeInteger):
				n, err := strconv.ParseInt(v, 10, 64)
				if err != nil {
					return fmt.Errorf("enum: %w", err)
				}
				s.Enum = append(s.Enum, n)
			case s.Type.Has(TypeNumber):
				f, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return fmt.Errorf("enum: %w", err)
				}
				s.Enum = append(s.Enum, f)
			default:
				s.Enum = append(s.Enum, v)
			}
		}
	}
	return nil
}
