// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package typegen maps resolved JSON schemas to the types of a target
// language, for use by code generators.
//
// A [Resolver] turns a schema into a [TypeDescriptor]. Object and
// enumeration schemas become named types, which are allocated in a
// [Registry] as a side effect; a generator renders one declaration for each
// of [Registry.Types].
package typegen

import (
	"fmt"
	"maps"
)

// Settings describe the target language.
// Each *Type field is the name of a type; each *Format field is a
// fmt format with one %s verb for an element type.
type Settings struct {
	StringType  string `json:"stringType" mapstructure:"string_type"`
	NumberType  string `json:"numberType" mapstructure:"number_type"`
	IntegerType string `json:"integerType" mapstructure:"integer_type"`
	BooleanType string `json:"booleanType" mapstructure:"boolean_type"`
	FileType    string `json:"fileType" mapstructure:"file_type"`
	// AnyType is used for schemas without a single type.
	// If it is empty, such schemas are an error.
	AnyType string `json:"anyType" mapstructure:"any_type"`

	ArrayFormat    string `json:"arrayFormat" mapstructure:"array_format"`
	MapFormat      string `json:"mapFormat" mapstructure:"map_format"`
	NullableFormat string `json:"nullableFormat" mapstructure:"nullable_format"`

	// Formats maps a "format" value to the type used for primitives with
	// that format, in place of the type's default.
	Formats map[string]string `json:"formats" mapstructure:"formats"`
}

// DefaultSettings returns settings for Go.
func DefaultSettings() Settings {
	return Settings{
		StringType:     "string",
		NumberType:     "float64",
		IntegerType:    "int64",
		BooleanType:    "bool",
		FileType:       "[]byte",
		AnyType:        "any",
		ArrayFormat:    "[]%s",
		MapFormat:      "map[string]%s",
		NullableFormat: "*%s",
		Formats: map[string]string{
			"date-time": "time.Time",
			"uuid":      "uuid.UUID",
			"guid":      "uuid.UUID",
			"byte":      "[]byte",
			"base64":    "[]byte",
			"time-span": "time.Duration",
			"int32":     "int32",
			"int64":     "int64",
			"float":     "float32",
			"double":    "float64",
		},
	}
}

// Merge returns s with every empty field replaced by the one in defaults.
// Formats are combined, with those of s taking precedence.
func (s Settings) Merge(defaults Settings) Settings {
	fill := func(p *string, d string) {
		if *p == "" {
			*p = d
		}
	}
	fill(&s.StringType, defaults.StringType)
	fill(&s.NumberType, defaults.NumberType)
	fill(&s.IntegerType, defaults.IntegerType)
	fill(&s.BooleanType, defaults.BooleanType)
	fill(&s.FileType, defaults.FileType)
	fill(&s.AnyType, defaults.AnyType)
	fill(&s.ArrayFormat, defaults.ArrayFormat)
	fill(&s.MapFormat, defaults.MapFormat)
	fill(&s.NullableFormat, defaults.NullableFormat)
	formats := maps.Clone(defaults.Formats)
	if formats == nil {
		formats = map[string]string{}
	}
	maps.Copy(formats, s.Formats)
	s.Formats = formats
	return s
}

// A TypeDescriptor describes the target type of a schema.
type TypeDescriptor struct {
	// Name is the type, without the nullable wrapping.
	Name       string `json:"name"`
	IsNullable bool   `json:"nullable,omitempty"`
	// IsCollection is set for arrays, and IsMap for dictionaries;
	// Item then describes the element type.
	IsCollection bool            `json:"collection,omitempty"`
	IsMap        bool            `json:"map,omitempty"`
	Item         *TypeDescriptor `json:"item,omitempty"`
}

func (d TypeDescriptor) String() string {
	if d.IsNullable {
		return fmt.Sprintf("%s (nullable)", d.Name)
	}
	return d.Name
}
