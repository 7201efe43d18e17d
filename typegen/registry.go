// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package typegen

import (
	"slices"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/dacolabs/jsonschema-tools/jsonschema"
)

// A Kind is the kind of a named type.
type Kind int

const (
	KindClass Kind = iota
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindEnum:
		return "enum"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// MarshalText writes the kind's name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// A Type is a named type allocated for a schema.
type Type struct {
	Name        string             `json:"name"`
	Kind        Kind               `json:"kind"`
	Schema      *jsonschema.Schema `json:"-"`
	Description string             `json:"description,omitempty"`

	// Fields of a class, in declaration order.
	Fields []*Field `json:"fields,omitempty"`
	// Base is the class a class extends, if any.
	Base *Type `json:"-"`
	// Derived lists the classes that extend this one.
	Derived []*Type `json:"-"`
	// Discriminator is the property whose value selects a derived class.
	Discriminator string `json:"discriminator,omitempty"`
	// Mapping maps discriminator values to schema references.
	Mapping map[string]string `json:"mapping,omitempty"`

	// Values of an enum.
	Values []EnumValue `json:"values,omitempty"`
}

// A Field is one property of a class.
type Field struct {
	// Name is the property name in the schema.
	Name        string         `json:"name"`
	Type        TypeDescriptor `json:"type"`
	Required    bool           `json:"required,omitempty"`
	Description string         `json:"description,omitempty"`
}

// An EnumValue is a member of an enum.
type EnumValue struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// A NameGenerator proposes a type name for a schema.
// The hint is derived from where the schema was found and may be empty.
type NameGenerator interface {
	Generate(s *jsonschema.Schema, hint string) string
}

// NameGeneratorFunc adapts a function to a [NameGenerator].
type NameGeneratorFunc func(s *jsonschema.Schema, hint string) string

func (f NameGeneratorFunc) Generate(s *jsonschema.Schema, hint string) string { return f(s, hint) }

// DefaultNameGenerator makes exported Go identifiers from the hint, or
// from the schema title when there is no hint.
var DefaultNameGenerator NameGenerator = NameGeneratorFunc(func(s *jsonschema.Schema, hint string) string {
	if hint == "" && s != nil {
		hint = s.Title
	}
	name := Identifier(hint)
	switch {
	case name == "":
		return "Anonymous"
	case startsWithDigit(name):
		return "T" + name
	}
	return name
})

// Identifier capitalizes each run of letters and digits in s and drops
// everything else, so that "pet-owner id" becomes "PetOwnerId".
// The result may start with a digit, and is "" if s has no letters or digits.
func Identifier(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

// A Registry allocates one named type per distinct schema node.
// Nodes are distinguished by identity, not content.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	gen      NameGenerator
	bySchema map[*jsonschema.Schema]*Type
	names    map[string]bool
	types    []*Type
}

// NewRegistry returns an empty registry that names types with gen,
// or with [DefaultNameGenerator] if gen is nil.
func NewRegistry(gen NameGenerator) *Registry {
	if gen == nil {
		gen = DefaultNameGenerator
	}
	return &Registry{
		gen:      gen,
		bySchema: map[*jsonschema.Schema]*Type{},
		names:    map[string]bool{},
	}
}

// Allocate returns the type for s, creating it if s has none yet.
// The name of a new type is generated from hint; if another type already
// has that name, a numeric suffix is added, as in "Foo2".
// created reports whether the type was created by this call.
func (r *Registry) Allocate(s *jsonschema.Schema, hint string) (t *Type, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.bySchema[s]; ok {
		return t, false
	}
	base := r.gen.Generate(s, hint)
	name := base
	for i := 2; r.names[name]; i++ {
		name = base + strconv.Itoa(i)
	}
	t = &Type{Name: name, Schema: s}
	r.names[name] = true
	r.bySchema[s] = t
	r.types = append(r.types, t)
	return t, true
}

// Lookup returns the type allocated for s.
func (r *Registry) Lookup(s *jsonschema.Schema) (*Type, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.bySchema[s]
	return t, ok
}

// Types returns the allocated types in allocation order.
func (r *Registry) Types() []*Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.types)
}
