// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package jsonschema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Type is a set of JSON types. A schema whose Type has several bits set
// accepts a value of any of those types. The zero Type accepts every value.
type Type uint16

const (
	TypeNone Type = 0

	TypeArray Type = 1 << iota
	TypeBoolean
	TypeInteger
	TypeNull
	TypeNumber
	TypeObject
	TypeString
	// TypeFile is the Swagger 2.0 file type. It is validated as a string.
	TypeFile
)

// typeNames lists the flags in the order they are written to "type".
var typeNames = []struct {
	t    Type
	name string
}{
	{TypeArray, "array"},
	{TypeBoolean, "boolean"},
	{TypeInteger, "integer"},
	{TypeNull, "null"},
	{TypeNumber, "number"},
	{TypeObject, "object"},
	{TypeString, "string"},
	{TypeFile, "file"},
}

// Has reports whether t contains every flag in u.
func (t Type) Has(u Type) bool { return u != TypeNone && t&u == u }

// Names returns the JSON names of the flags in t.
func (t Type) Names() []string {
	var names []string
	for _, tn := range typeNames {
		if t&tn.t != 0 {
			names = append(names, tn.name)
		}
	}
	return names
}

func (t Type) String() string {
	if t == TypeNone {
		return "none"
	}
	return strings.Join(t.Names(), "|")
}

// ParseType returns the flag for a single JSON type name.
func ParseType(name string) (Type, error) {
	for _, tn := range typeNames {
		if tn.name == name {
			return tn.t, nil
		}
	}
	return TypeNone, fmt.Errorf("unknown type %q", name)
}

// MarshalJSON writes a single type as a string and a union as an array.
func (t Type) MarshalJSON() ([]byte, error) {
	names := t.Names()
	switch len(names) {
	case 0:
		return []byte("null"), nil
	case 1:
		return json.Marshal(names[0])
	}
	return json.Marshal(names)
}

func (t *Type) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	var names []string
	switch data[0] {
	case '"':
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		names = []string{name}
	case '[':
		if err := json.Unmarshal(data, &names); err != nil {
			return fmt.Errorf(`invalid value for "type": %w`, err)
		}
	case 'n':
		*t = TypeNone
		return nil
	default:
		return fmt.Errorf(`invalid value for "type": %q`, data)
	}
	return t.setNames(names)
}

func (t *Type) setNames(names []string) error {
	var res Type
	for _, n := range names {
		u, err := ParseType(n)
		if err != nil {
			return err
		}
		res |= u
	}
	*t = res
	return nil
}
