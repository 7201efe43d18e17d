// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package jsonschema

import (
	"fmt"
	"strings"
)

// An ErrorKind classifies a validation failure.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota

	KindStringExpected
	KindNumberExpected
	KindIntegerExpected
	KindBooleanExpected
	KindObjectExpected
	KindArrayExpected
	KindNullExpected

	KindPatternMismatch
	KindStringTooShort
	KindStringTooLong

	KindNumberTooSmall
	KindNumberTooBig
	KindIntegerTooSmall
	KindIntegerTooBig
	KindNumberNotMultipleOf
	KindIntegerNotMultipleOf

	KindValueNotInEnumeration

	KindPropertyRequired
	KindNoAdditionalPropertiesAllowed
	KindTooManyProperties
	KindTooFewProperties

	KindTooManyItems
	KindTooFewItems
	KindItemsNotUnique
	KindTooManyItemsInTuple

	KindNotAllOf
	KindNotAnyOf
	KindNotOneOf
	KindExcludedSchemaValidates

	KindDateTimeExpected
	KindDateExpected
	KindTimeExpected
	KindTimeSpanExpected
	KindEmailExpected
	KindURIExpected
	KindGUIDExpected
	KindUUIDExpected
	KindIPv4Expected
	KindIPv6Expected
	KindHostnameExpected
	KindBase64Expected

	numKinds
)

var kindNames = [numKinds]string{
	KindUnknown:                       "Unknown",
	KindStringExpected:                "StringExpected",
	KindNumberExpected:                "NumberExpected",
	KindIntegerExpected:               "IntegerExpected",
	KindBooleanExpected:               "BooleanExpected",
	KindObjectExpected:                "ObjectExpected",
	KindArrayExpected:                 "ArrayExpected",
	KindNullExpected:                  "NullExpected",
	KindPatternMismatch:               "PatternMismatch",
	KindStringTooShort:                "StringTooShort",
	KindStringTooLong:                 "StringTooLong",
	KindNumberTooSmall:                "NumberTooSmall",
	KindNumberTooBig:                  "NumberTooBig",
	KindIntegerTooSmall:               "IntegerTooSmall",
	KindIntegerTooBig:                 "IntegerTooBig",
	KindNumberNotMultipleOf:           "NumberNotMultipleOf",
	KindIntegerNotMultipleOf:          "IntegerNotMultipleOf",
	KindValueNotInEnumeration:         "ValueNotInEnumeration",
	KindPropertyRequired:              "PropertyRequired",
	KindNoAdditionalPropertiesAllowed: "NoAdditionalPropertiesAllowed",
	KindTooManyProperties:             "TooManyProperties",
	KindTooFewProperties:              "TooFewProperties",
	KindTooManyItems:                  "TooManyItems",
	KindTooFewItems:                   "TooFewItems",
	KindItemsNotUnique:                "ItemsNotUnique",
	KindTooManyItemsInTuple:           "TooManyItemsInTuple",
	KindNotAllOf:                      "NotAllOf",
	KindNotAnyOf:                      "NotAnyOf",
	KindNotOneOf:                      "NotOneOf",
	KindExcludedSchemaValidates:       "ExcludedSchemaValidates",
	KindDateTimeExpected:              "DateTimeExpected",
	KindDateExpected:                  "DateExpected",
	KindTimeExpected:                  "TimeExpected",
	KindTimeSpanExpected:              "TimeSpanExpected",
	KindEmailExpected:                 "EmailExpected",
	KindURIExpected:                   "UriExpected",
	KindGUIDExpected:                  "GuidExpected",
	KindUUIDExpected:                  "UuidExpected",
	KindIPv4Expected:                  "IpV4Expected",
	KindIPv6Expected:                  "IpV6Expected",
	KindHostnameExpected:              "HostnameExpected",
	KindBase64Expected:                "Base64Expected",
}

func (k ErrorKind) String() string {
	if k < 0 || k >= numKinds {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText writes the kind's name, so kinds read well in JSON output.
func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// A ValidationError describes one way an instance fails to match a schema.
type ValidationError struct {
	Kind ErrorKind `json:"kind"`
	// Property is the name of the property or the "[i]" index the error
	// is about, if any.
	Property string `json:"property,omitempty"`
	// Path locates the value in the instance, as in "a.b[2].c".
	// It is empty for the instance itself.
	Path string `json:"path"`
	// Schema is the schema that failed.
	Schema *Schema `json:"-"`
	// Branches holds the errors of the failing branches of an
	// allOf, anyOf or oneOf.
	Branches []BranchErrors `json:"branches,omitempty"`
}

// BranchErrors are the errors from validating against one branch of a
// composition keyword.
type BranchErrors struct {
	Index  int               `json:"index"`
	Errors []ValidationError `json:"errors"`
}

func (e ValidationError) Error() string {
	var b strings.Builder
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Property != "" && e.Property != e.Path {
		fmt.Fprintf(&b, " (%s)", e.Property)
	}
	return b.String()
}

// Format writes e and, indented beneath it, the errors of its branches.
func (e ValidationError) Format(f fmt.State, verb rune) {
	if verb != 'v' || !f.Flag('+') || len(e.Branches) == 0 {
		fmt.Fprint(f, e.Error())
		return
	}
	e.write(f, "")
}

func (e ValidationError) write(f fmt.State, indent string) {
	fmt.Fprintf(f, "%s%s", indent, e.Error())
	for _, br := range e.Branches {
		fmt.Fprintf(f, "\n%s  branch %d:", indent, br.Index)
		for _, sub := range br.Errors {
			fmt.Fprint(f, "\n")
			sub.write(f, indent+"    ")
		}
	}
}
