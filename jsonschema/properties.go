// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package jsonschema

import (
	"fmt"
	"iter"
	"slices"
)

// SetProperty declares a property of s, replacing any property with the same
// name. The property keeps its position if it was already declared and is
// appended otherwise. prop becomes owned by s; if it belonged to another
// object schema, it is removed from that schema first.
func (s *Schema) SetProperty(name string, prop *Schema) {
	if prop == nil {
		s.RemoveProperty(name)
		return
	}
	if prop.owner != nil && (prop.owner != s || prop.propName != name) {
		prop.owner.detach(prop.propName)
	}
	if s.props == nil {
		s.props = map[string]*Schema{}
	}
	if old, ok := s.props[name]; ok {
		if old != prop {
			old.owner, old.propName = nil, ""
		}
	} else {
		s.propOrder = append(s.propOrder, name)
	}
	s.props[name] = prop
	prop.owner, prop.propName, prop.implicit = s, name, false
}

// Property returns the property schema with the given name, or nil.
func (s *Schema) Property(name string) *Schema {
	return s.props[name]
}

// RemoveProperty removes a property and its required flag.
// It reports whether the property existed.
func (s *Schema) RemoveProperty(name string) bool {
	p, ok := s.props[name]
	if !ok {
		return false
	}
	s.detach(name)
	p.owner, p.propName = nil, ""
	return true
}

func (s *Schema) detach(name string) {
	delete(s.props, name)
	s.propOrder = slices.DeleteFunc(s.propOrder, func(n string) bool { return n == name })
	s.required = slices.DeleteFunc(s.required, func(n string) bool { return n == name })
}

// Properties iterates over the properties of s in declaration order.
// It includes properties created only because they were listed in "required".
func (s *Schema) Properties() iter.Seq2[string, *Schema] {
	return func(yield func(string, *Schema) bool) {
		for _, name := range s.propOrder {
			if !yield(name, s.props[name]) {
				return
			}
		}
	}
}

// explicitProperties is like Properties but skips implicit properties.
func (s *Schema) explicitProperties() iter.Seq2[string, *Schema] {
	return func(yield func(string, *Schema) bool) {
		for name, p := range s.Properties() {
			if p.implicit {
				continue
			}
			if !yield(name, p) {
				return
			}
		}
	}
}

func (s *Schema) hasExplicitProperties() bool {
	return s.NumProperties() > 0
}

// NumProperties returns the number of properties declared under "properties".
func (s *Schema) NumProperties() int {
	n := 0
	for range s.explicitProperties() {
		n++
	}
	return n
}

// RequiredProperties returns the names of the required properties, in the
// order they were marked required.
func (s *Schema) RequiredProperties() []string {
	return slices.Clone(s.required)
}

// SetRequiredProperty marks the named property of s as required or not.
// The property must already be declared.
func (s *Schema) SetRequiredProperty(name string, required bool) error {
	if _, ok := s.props[name]; !ok {
		return fmt.Errorf("property %q is not declared", name)
	}
	has := slices.Contains(s.required, name)
	switch {
	case required && !has:
		s.required = append(s.required, name)
	case !required && has:
		s.required = slices.DeleteFunc(s.required, func(n string) bool { return n == name })
	}
	return nil
}

// Owner returns the object schema that declares s as a property, or nil.
func (s *Schema) Owner() *Schema { return s.owner }

// PropertyName returns the name under which s is declared by its owner.
func (s *Schema) PropertyName() string { return s.propName }

// IsRequired reports whether s is a property that its owner requires.
// It is always false for a schema that is not a property.
func (s *Schema) IsRequired() bool {
	return s.owner != nil && slices.Contains(s.owner.required, s.propName)
}

// SetRequired sets the required flag of the property s in its owner.
func (s *Schema) SetRequired(required bool) error {
	if s.owner == nil {
		return fmt.Errorf("%s is not a property", s)
	}
	return s.owner.SetRequiredProperty(s.propName, required)
}
