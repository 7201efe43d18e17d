// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package jsonschema

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"maps"
	"math/big"
	"reflect"
	"slices"

	"gopkg.in/yaml.v3"
)

// A Schema is a JSON schema object, following draft 4:
// https://datatracker.ietf.org/doc/html/draft-fge-json-schema-validation-00
//
// A Schema is one node of a possibly cyclic graph. Nodes are linked
// structurally, through sub-schema fields, and by reference, through $ref.
// References are linked by a [Resolver]; after that, [Schema.ActualSchema]
// follows them.
//
// Object properties are kept in declaration order and are accessed with
// [Schema.SetProperty], [Schema.Property] and [Schema.Properties]. Each
// property schema knows the object schema that owns it, so whether a
// property is required is a question asked of the owner's required set.
//
// Nil and empty slices are both left out when a schema is written.
// An empty Enum places no constraint on instances, although draft 4
// requires at least one value.
//
// Numbers in Enum and in the numeric keywords are compared exactly as they
// were written. Decoded enum numbers are [json.Number] values.
type Schema struct {
	// core
	ID          string             `json:"id,omitempty"`
	SchemaURI   string             `json:"$schema,omitempty"`
	Ref         string             `json:"$ref,omitempty"`
	Definitions map[string]*Schema `json:"definitions,omitempty"`

	// metadata
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
	Default     json.RawMessage `json:"default,omitempty"`

	// validation
	Type      Type     `json:"-"`
	Format    string   `json:"format,omitempty"`
	Enum      []any    `json:"enum,omitempty"`
	EnumNames []string `json:"x-enumNames,omitempty"`

	MultipleOf *float64 `json:"multipleOf,omitempty"`
	Minimum    *float64 `json:"minimum,omitempty"`
	Maximum    *float64 `json:"maximum,omitempty"`
	// Draft 4 exclusive bounds are flags on Minimum and Maximum.
	// The numeric form of later drafts is accepted on input.
	ExclusiveMinimum bool   `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum bool   `json:"exclusiveMaximum,omitempty"`
	MinLength        *int   `json:"minLength,omitempty"`
	MaxLength        *int   `json:"maxLength,omitempty"`
	Pattern          string `json:"pattern,omitempty"`

	// arrays
	// Use Items for a single schema, or ItemsArray for a tuple; never both.
	Items      *Schema   `json:"-"`
	ItemsArray []*Schema `json:"-"`
	// AdditionalItems applies to elements past the end of ItemsArray.
	AdditionalItems *Schema `json:"additionalItems,omitempty"`
	MinItems        *int    `json:"minItems,omitempty"`
	MaxItems        *int    `json:"maxItems,omitempty"`
	UniqueItems     bool    `json:"uniqueItems,omitempty"`

	// objects
	MinProperties     *int               `json:"minProperties,omitempty"`
	MaxProperties     *int               `json:"maxProperties,omitempty"`
	PatternProperties map[string]*Schema `json:"patternProperties,omitempty"`
	// AdditionalProperties is nil when additional properties are allowed
	// without constraint. The false schema forbids them.
	AdditionalProperties *Schema        `json:"additionalProperties,omitempty"`
	Discriminator        *Discriminator `json:"discriminator,omitempty"`

	// logic
	AllOf []*Schema `json:"allOf,omitempty"`
	AnyOf []*Schema `json:"anyOf,omitempty"`
	OneOf []*Schema `json:"oneOf,omitempty"`
	Not   *Schema   `json:"not,omitempty"`

	// Extra holds keywords this package does not interpret, such as
	// vendor extensions. They are kept on a round trip.
	Extra map[string]any `json:"-"`

	// DocumentPath is the file path or URL the schema was loaded from.
	// It is set on document roots and is the base for relative references.
	DocumentPath string `json:"-"`

	// See properties.go.
	props         map[string]*Schema
	propOrder     []string
	propsDeclared bool
	required      []string
	owner         *Schema
	propName      string
	implicit      bool

	// reference is the schema that Ref denotes, once resolved.
	reference *Schema

	// The numeric keywords as written in the document.
	exactMultipleOf, exactMinimum, exactMaximum *exactNumber
}

// An exactNumber is a decoded JSON number together with its float64
// approximation. It stands for the float64 field only while that field
// still holds f.
type exactNumber struct {
	text json.Number
	rat  *big.Rat
	f    float64
}

func decodeNumber(n json.Number) (float64, *exactNumber, error) {
	f, err := n.Float64()
	if err != nil {
		return 0, nil, err
	}
	r, ok := new(big.Rat).SetString(n.String())
	if !ok {
		return 0, nil, fmt.Errorf("invalid number %q", n)
	}
	return f, &exactNumber{text: n, rat: r, f: f}, nil
}

func (e *exactNumber) holds(f *float64) bool {
	return e != nil && f != nil && e.f == *f
}

// ratValue returns the exact value of *f, preferring the decoded text.
func ratValue(f *float64, e *exactNumber) *big.Rat {
	if e.holds(f) {
		return e.rat
	}
	return ratOf(*f)
}

// jsonValue returns the value to encode for f: the decoded number if it
// still applies, with integers in plain form, else f itself.
func jsonValue(f *float64, e *exactNumber) any {
	switch {
	case f == nil:
		return nil
	case e.holds(f) && e.rat.IsInt():
		return json.Number(e.rat.Num().String())
	case e.holds(f):
		return e.text
	}
	return *f
}

// A Discriminator names the property whose value selects the concrete
// schema of a polymorphic object. The Swagger 2.0 string form is accepted.
type Discriminator struct {
	PropertyName string            `json:"propertyName"`
	Mapping      map[string]string `json:"mapping,omitempty"`
}

func (d *Discriminator) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		*d = Discriminator{}
		return json.Unmarshal(data, &d.PropertyName)
	}
	type plain Discriminator
	return json.Unmarshal(data, (*plain)(d))
}

// falseSchema returns a new Schema tree that fails to validate any value.
func falseSchema() *Schema {
	return &Schema{Not: &Schema{}}
}

// String returns a short description of the schema.
func (s *Schema) String() string {
	switch {
	case s.ID != "":
		return s.ID
	case s.Ref != "":
		return "$ref " + s.Ref
	case s.Title != "":
		return s.Title
	case s.propName != "":
		return fmt.Sprintf("property %s", s.propName)
	}
	return "<anonymous schema>"
}

// HasReference reports whether s redirects to another schema.
func (s *Schema) HasReference() bool {
	return s.Ref != "" || s.reference != nil
}

// Reference returns the schema that s refers to, or nil if s has no
// reference or the reference has not been resolved.
func (s *Schema) Reference() *Schema { return s.reference }

// SetReference links s to target. A nil target clears the link.
func (s *Schema) SetReference(target *Schema) { s.reference = target }

// ActualSchema follows the chain of references starting at s and returns
// the first schema that is not itself a reference. It returns s when s has
// no reference.
func (s *Schema) ActualSchema() (*Schema, error) {
	var (
		cur  = s
		seen map[*Schema]bool
		refs []string
	)
	for cur.HasReference() {
		if cur.reference == nil {
			return nil, &UnresolvedReferenceError{Ref: cur.Ref}
		}
		if seen == nil {
			seen = map[*Schema]bool{}
		}
		refs = append(refs, cmp.Or(cur.Ref, "<reference>"))
		if seen[cur] {
			return nil, &CyclicReferenceError{Refs: refs}
		}
		seen[cur] = true
		cur = cur.reference
	}
	return cur, nil
}

// IsDictionary reports whether s describes a map from strings to values of a
// single schema: an object with an additional-properties schema and no
// declared properties.
func (s *Schema) IsDictionary() bool {
	return s.Type.Has(TypeObject) &&
		s.AdditionalProperties != nil && !s.AdditionalProperties.IsFalse() &&
		s.NumProperties() == 0
}

// IsEnumeration reports whether s is a string or integer enumeration.
func (s *Schema) IsEnumeration() bool {
	if len(s.Enum) == 0 {
		return false
	}
	t := s.Type &^ TypeNull
	return t == TypeString || t == TypeInteger
}

// IsFalse reports whether s is the schema that validates nothing.
func (s *Schema) IsFalse() bool {
	return s != nil && isFalseSchema(*s)
}

// AllowsAdditionalProperties reports whether properties not matched by
// the declared or pattern properties are accepted.
func (s *Schema) AllowsAdditionalProperties() bool {
	return !s.AdditionalProperties.IsFalse()
}

// CloneSchemas returns a copy of s.
// The copy is shallow except for sub-schemas, which are themselves copied with CloneSchemas.
// Properties of the copy are owned by the copy. Resolved references are
// shared with s.
func (s *Schema) CloneSchemas() *Schema {
	if s == nil {
		return nil
	}
	s2 := *s
	s2.owner, s2.propName = nil, ""
	v := reflect.ValueOf(&s2)
	for _, info := range schemaFieldInfos {
		fv := v.Elem().FieldByIndex(info.sf.Index)
		switch info.sf.Type {
		case schemaType:
			sscss := fv.Interface().(*Schema)
			fv.Set(reflect.ValueOf(sscss.CloneSchemas()))

		case schemaSliceType:
			slice := fv.Interface().([]*Schema)
			slice = slices.Clone(slice)
			for i, ss := range slice {
				slice[i] = ss.CloneSchemas()
			}
			fv.Set(reflect.ValueOf(slice))

		case schemaMapType:
			m := fv.Interface().(map[string]*Schema)
			m = maps.Clone(m)
			for k, ss := range m {
				m[k] = ss.CloneSchemas()
			}
			fv.Set(reflect.ValueOf(m))
		}
	}
	s2.props, s2.propOrder = nil, nil
	s2.required = slices.Clone(s.required)
	for _, name := range s.propOrder {
		p := s.props[name]
		c := p.CloneSchemas()
		s2.SetProperty(name, c)
		c.implicit = p.implicit
	}
	return &s2
}

func (s *Schema) basicChecks() error {
	if s.Items != nil && s.ItemsArray != nil {
		return errors.New("both Items and ItemsArray are set; at most one should be")
	}
	if s.ExclusiveMinimum && s.Minimum == nil {
		return errors.New("exclusiveMinimum is set without minimum")
	}
	if s.ExclusiveMaximum && s.Maximum == nil {
		return errors.New("exclusiveMaximum is set without maximum")
	}
	if len(s.EnumNames) > len(s.Enum) {
		return fmt.Errorf("%d enum names for %d enum values", len(s.EnumNames), len(s.Enum))
	}
	return nil
}

type schemaWithoutMethods Schema // doesn't implement json.{Unm,M}arshaler

func (s Schema) MarshalJSON() ([]byte, error) {
	// NOTE: Use a value receiver here to avoid the encoding/json bugs
	// described in golang/go#22967, golang/go#33993, and golang/go#55890.
	// With a pointer receiver, MarshalJSON is only called for Schema in
	// some cases (for example when the field value is addressable, or not
	// stored as a map value), which leads to inconsistent JSON encoding.
	// A value receiver makes Schema itself implement json.Marshaler and
	// ensures that encoding/json always calls this method.
	if err := s.basicChecks(); err != nil {
		return nil, err
	}
	var typ any
	if s.Type != TypeNone {
		typ = s.Type
	}

	var items any
	switch {
	case s.Items != nil:
		items = s.Items
	case s.ItemsArray != nil:
		items = s.ItemsArray
	}

	ms := struct {
		Type       any            `json:"type,omitempty"`
		Properties json.Marshaler `json:"properties,omitempty"`
		Required   []string       `json:"required,omitempty"`
		Items      any            `json:"items,omitempty"`
		MultipleOf any            `json:"multipleOf,omitempty"`
		Minimum    any            `json:"minimum,omitempty"`
		Maximum    any            `json:"maximum,omitempty"`
		*schemaWithoutMethods
	}{
		Type:                 typ,
		Required:             s.required,
		Items:                items,
		MultipleOf:           jsonValue(s.MultipleOf, s.exactMultipleOf),
		Minimum:              jsonValue(s.Minimum, s.exactMinimum),
		Maximum:              jsonValue(s.Maximum, s.exactMaximum),
		schemaWithoutMethods: (*schemaWithoutMethods)(&s),
	}
	// Marshal properties, even if there are none, once the keyword was declared.
	if s.propsDeclared || s.hasExplicitProperties() {
		ms.Properties = orderedProperties{&s}
	}

	bs, err := marshalStructWithMap(&ms, "Extra")
	if err != nil {
		return nil, err
	}
	// Marshal {} as true and {"not": {}} as false.
	// It is wasteful to do this here instead of earlier, but much easier.
	switch {
	case bytes.Equal(bs, []byte(`{}`)):
		bs = []byte("true")
	case bytes.Equal(bs, []byte(`{"not":true}`)):
		bs = []byte("false")
	}
	return bs, nil
}

// orderedProperties marshals the declared properties of a schema in declaration order.
type orderedProperties struct {
	s *Schema
}

func (op orderedProperties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for name, prop := range op.s.explicitProperties() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		keyBytes, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := json.Marshal(prop)
		if err != nil {
			return nil, err
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *Schema) UnmarshalJSON(data []byte) error {
	*s = Schema{}
	// A JSON boolean is a valid schema.
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		if !b {
			// false is the schema that validates nothing.
			*s = *falseSchema()
		}
		// true is the empty schema, which validates everything.
		return nil
	}

	ms := struct {
		Type             json.RawMessage `json:"type,omitempty"`
		Properties       json.RawMessage `json:"properties,omitempty"`
		Required         []string        `json:"required,omitempty"`
		Items            json.RawMessage `json:"items,omitempty"`
		Enum             json.RawMessage `json:"enum,omitempty"`
		MultipleOf       json.RawMessage `json:"multipleOf,omitempty"`
		Minimum          json.RawMessage `json:"minimum,omitempty"`
		Maximum          json.RawMessage `json:"maximum,omitempty"`
		ExclusiveMinimum json.RawMessage `json:"exclusiveMinimum,omitempty"`
		ExclusiveMaximum json.RawMessage `json:"exclusiveMaximum,omitempty"`
		MinLength        *integer        `json:"minLength,omitempty"`
		MaxLength        *integer        `json:"maxLength,omitempty"`
		MinItems         *integer        `json:"minItems,omitempty"`
		MaxItems         *integer        `json:"maxItems,omitempty"`
		MinProperties    *integer        `json:"minProperties,omitempty"`
		MaxProperties    *integer        `json:"maxProperties,omitempty"`

		*schemaWithoutMethods
	}{
		schemaWithoutMethods: (*schemaWithoutMethods)(s),
	}
	if err := unmarshalStructWithMap(data, &ms, "Extra"); err != nil {
		return err
	}
	if err := s.Type.UnmarshalJSON(ms.Type); err != nil {
		return err
	}

	// Unmarshal "items" as either Items or ItemsArray.
	if len(ms.Items) > 0 {
		var err error
		switch ms.Items[0] {
		case '[':
			var schemas []*Schema
			err = json.Unmarshal(ms.Items, &schemas)
			s.ItemsArray = schemas
		default:
			var schema Schema
			err = json.Unmarshal(ms.Items, &schema)
			s.Items = &schema
		}
		if err != nil {
			return err
		}
	}

	// Enum numbers keep their exact value.
	if len(ms.Enum) > 0 && !bytes.Equal(ms.Enum, []byte("null")) {
		dec := json.NewDecoder(bytes.NewReader(ms.Enum))
		dec.UseNumber()
		var enum []any
		if err := dec.Decode(&enum); err != nil {
			return fmt.Errorf("enum: %w", err)
		}
		s.Enum = enum
	}

	number := func(raw json.RawMessage, dst **float64, exact **exactNumber, name string) error {
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			return nil
		}
		var n json.Number
		if raw[0] == '"' || json.Unmarshal(raw, &n) != nil {
			return fmt.Errorf("invalid value for %q: %s", name, raw)
		}
		f, e, err := decodeNumber(n)
		if err != nil {
			return fmt.Errorf("invalid value for %q: %w", name, err)
		}
		*dst, *exact = &f, e
		return nil
	}
	if err := number(ms.MultipleOf, &s.MultipleOf, &s.exactMultipleOf, "multipleOf"); err != nil {
		return err
	}
	if err := number(ms.Minimum, &s.Minimum, &s.exactMinimum, "minimum"); err != nil {
		return err
	}
	if err := number(ms.Maximum, &s.Maximum, &s.exactMaximum, "maximum"); err != nil {
		return err
	}

	// Draft 4 uses a boolean flag; later drafts put the bound itself in the keyword.
	exclusive := func(raw json.RawMessage, flag *bool, bound **float64, exact **exactNumber, name string) error {
		if len(raw) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, flag); err == nil {
			return nil
		}
		if err := number(raw, bound, exact, name); err != nil {
			return err
		}
		*flag = true
		return nil
	}
	if err := exclusive(ms.ExclusiveMinimum, &s.ExclusiveMinimum, &s.Minimum, &s.exactMinimum, "exclusiveMinimum"); err != nil {
		return err
	}
	if err := exclusive(ms.ExclusiveMaximum, &s.ExclusiveMaximum, &s.Maximum, &s.exactMaximum, "exclusiveMaximum"); err != nil {
		return err
	}

	if len(ms.Properties) > 0 && !bytes.Equal(ms.Properties, []byte("null")) {
		keys, vals, err := objectKeys(ms.Properties)
		if err != nil {
			return fmt.Errorf("properties: %w", err)
		}
		s.propsDeclared = true
		for _, k := range keys {
			p := new(Schema)
			if err := json.Unmarshal(vals[k], p); err != nil {
				return err
			}
			s.SetProperty(k, p)
		}
	}
	for _, name := range ms.Required {
		if _, ok := s.props[name]; !ok {
			p := new(Schema)
			s.SetProperty(name, p)
			p.implicit = true
		}
		if err := s.SetRequiredProperty(name, true); err != nil {
			return err
		}
	}

	set := func(dst **int, src *integer) {
		if src != nil {
			*dst = Ptr(int(*src))
		}
	}

	set(&s.MinLength, ms.MinLength)
	set(&s.MaxLength, ms.MaxLength)
	set(&s.MinItems, ms.MinItems)
	set(&s.MaxItems, ms.MaxItems)
	set(&s.MinProperties, ms.MinProperties)
	set(&s.MaxProperties, ms.MaxProperties)

	return nil
}

// MarshalYAML implements yaml.Marshaler.
// The YAML form has the same keys, in the same order, as the JSON form;
// the empty schema is written as true and the false schema as false.
func (s Schema) MarshalYAML() (any, error) {
	data, err := s.MarshalJSON()
	if err != nil {
		return nil, err
	}
	switch {
	case bytes.Equal(data, []byte("true")):
		return true, nil
	case bytes.Equal(data, []byte("false")):
		return false, nil
	}
	return jsonToYAMLNode(data)
}

// UnmarshalYAML implements yaml.Unmarshaler.
// It accepts the same documents as UnmarshalJSON, in YAML syntax.
func (s *Schema) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag != "!!bool" {
			return fmt.Errorf("expected mapping or boolean, got scalar: %s", node.Value)
		}
	case yaml.MappingNode, yaml.AliasNode:
	default:
		return fmt.Errorf("expected mapping or boolean, got kind %v", node.Kind)
	}
	var buf bytes.Buffer
	if err := writeYAMLNode(&buf, node); err != nil {
		return err
	}
	return s.UnmarshalJSON(buf.Bytes())
}

// isEmptySchema checks if s is the empty schema (validates everything).
func isEmptySchema(s Schema) bool {
	return reflect.DeepEqual(s, Schema{})
}

// isFalseSchema checks if s is the false schema (validates nothing).
// The false schema is represented as {not: {}}.
func isFalseSchema(s Schema) bool {
	if s.Not == nil {
		return false
	}
	// Check that Not is an empty schema and all other fields are zero
	sCopy := s
	sCopy.Not = nil
	sCopy.owner, sCopy.propName = nil, ""
	return isEmptySchema(*s.Not) && isEmptySchema(sCopy)
}

// every applies f preorder to every schema under s including s.
// It stops when f returns false.
func (s *Schema) every(f func(*Schema) bool) bool {
	return f(s) && s.everyChild(func(s *Schema) bool { return s.every(f) })
}

// everyChild reports whether f is true for every immediate child schema of s.
// Properties come first, in declaration order.
func (s *Schema) everyChild(f func(*Schema) bool) bool {
	for _, name := range s.propOrder {
		if !f(s.props[name]) {
			return false
		}
	}
	v := reflect.ValueOf(s)
	for _, info := range schemaFieldInfos {
		fv := v.Elem().FieldByIndex(info.sf.Index)
		switch info.sf.Type {
		case schemaType:
			// A field that contains an individual schema. A nil is valid: it just means the field isn't present.
			c := fv.Interface().(*Schema)
			if c != nil && !f(c) {
				return false
			}

		case schemaSliceType:
			slice := fv.Interface().([]*Schema)
			for _, c := range slice {
				if !f(c) {
					return false
				}
			}

		case schemaMapType:
			// Sort keys for determinism.
			m := fv.Interface().(map[string]*Schema)
			for _, k := range slices.Sorted(maps.Keys(m)) {
				if !f(m[k]) {
					return false
				}
			}
		}
	}

	return true
}

// All returns an iterator over s and every schema beneath it, in preorder.
// References are not followed.
func (s *Schema) All() iter.Seq[*Schema] {
	return func(yield func(*Schema) bool) { s.every(yield) }
}

// children wraps everyChild in an iterator.
func (s *Schema) children() iter.Seq[*Schema] {
	return func(yield func(*Schema) bool) { s.everyChild(yield) }
}

var (
	schemaType      = reflect.TypeFor[*Schema]()
	schemaSliceType = reflect.TypeFor[[]*Schema]()
	schemaMapType   = reflect.TypeFor[map[string]*Schema]()
)

type structFieldInfo struct {
	sf       reflect.StructField
	jsonName string
}

var (
	// the sub-schema fields of Schema, sorted by JSON name
	schemaFieldInfos []structFieldInfo
	// map from JSON name to field, for JSON pointer traversal
	schemaFieldMap = map[string]reflect.StructField{}
)

func init() {
	for _, sf := range reflect.VisibleFields(reflect.TypeFor[Schema]()) {
		switch sf.Type {
		case schemaType, schemaSliceType, schemaMapType:
		default:
			continue
		}
		info := fieldJSONInfo(sf)
		if !info.omit {
			schemaFieldInfos = append(schemaFieldInfos, structFieldInfo{sf, info.name})
		} else if sf.Name == "Items" || sf.Name == "ItemsArray" {
			// "items" is split into two fields to handle the union type;
			// both are still children under the "items" keyword.
			schemaFieldInfos = append(schemaFieldInfos, structFieldInfo{sf, "items"})
		}
	}
	slices.SortStableFunc(schemaFieldInfos, func(i1, i2 structFieldInfo) int {
		return cmp.Compare(i1.jsonName, i2.jsonName)
	})
	for _, info := range schemaFieldInfos {
		if info.jsonName != "items" {
			schemaFieldMap[info.jsonName] = info.sf
		}
	}
}

// Parse decodes a schema document written in JSON or YAML and records
// documentPath as its location. YAML is assumed unless the text starts
// like a JSON object or boolean.
func Parse(data []byte, documentPath string) (*Schema, error) {
	s := new(Schema)
	var err error
	if isJSON(data) {
		err = json.Unmarshal(data, s)
	} else {
		var jdata []byte
		if jdata, err = yamlToJSON(data); err == nil {
			err = json.Unmarshal(jdata, s)
		}
	}
	if err != nil {
		if documentPath != "" {
			return nil, fmt.Errorf("parsing %s: %w", documentPath, err)
		}
		return nil, err
	}
	s.DocumentPath = documentPath
	return s, nil
}
