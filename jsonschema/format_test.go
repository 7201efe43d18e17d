// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package jsonschema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinFormats(t *testing.T) {
	for _, tt := range []struct {
		format  string
		valid   []string
		invalid []string
	}{
		{
			format: "date-time",
			valid: []string{
				"2024-02-29T13:45:00Z",
				"2024-02-29T13:45:00.1234567+02:00",
				"2024-02-29T13:45:00",
				"2024-02-29 13:45",
				"2024-02-29",
				"2024-02",
				"2024",
			},
			invalid: []string{"", "yesterday", "2024-13-01", "24-01-01", "2024-02-29T25:00:00Z"},
		},
		{
			format:  "date",
			valid:   []string{"2024-02-29", "1999-12-31"},
			invalid: []string{"2023-02-29", "2024-2-1", "2024-02-29T00:00:00Z", "2024-02"},
		},
		{
			format:  "time",
			valid:   []string{"13:45:00", "00:00:00.1234567", "23:59:59Z", "08:30:00+0130", "08:30:00-05:00"},
			invalid: []string{"24:00:00", "13:60:00", "1:45:00", "13:45", "13:45:00.12345678"},
		},
		{
			format:  "time-span",
			valid:   []string{"12:30", "1.12:30:15", "-00:00:01.5", "3", "-10", "1h30m", "250ms"},
			invalid: []string{"", "25:00", "12:60", "1.2.3", "abc", "10 minutes"},
		},
		{
			format:  "email",
			valid:   []string{"a@b.c", "first.last+tag@example.co.uk", "x@localhost"},
			invalid: []string{"", "plain", "@example.com", "a@", "a b@example.com", "a@-example.com"},
		},
		{
			format:  "uri",
			valid:   []string{"https://example.com/a?b=c", "urn:isbn:0451450523", "file:///tmp/x"},
			invalid: []string{"", "/relative/path", "example.com", "%zz"},
		},
		{
			format:  "uuid",
			valid:   []string{"123e4567-e89b-12d3-a456-426614174000", "123E4567-E89B-12D3-A456-426614174000", "{123e4567-e89b-12d3-a456-426614174000}"},
			invalid: []string{"", "123e4567", "123e4567-e89b-12d3-a456-42661417400z"},
		},
		{
			format:  "guid",
			valid:   []string{"00000000-0000-0000-0000-000000000000"},
			invalid: []string{"not-a-guid"},
		},
		{
			format:  "ipv4",
			valid:   []string{"127.0.0.1", "255.255.255.255", "0.0.0.0"},
			invalid: []string{"", "256.0.0.1", "1.2.3", "1.2.3.4.5", "::1"},
		},
		{
			format:  "ipv6",
			valid:   []string{"::1", "2001:db8::8a2e:370:7334", "::ffff:192.0.2.1"},
			invalid: []string{"", "127.0.0.1", "2001:db8::g", "1:2:3:4:5:6:7:8:9"},
		},
		{
			format:  "hostname",
			valid:   []string{"localhost", "example.com", "a-b.example.com.", "1.example"},
			invalid: []string{"", "-a.com", "a..com", "under_score.com", strings.Repeat("a", 64) + ".com", strings.Repeat("a.", 128) + "a"},
		},
		{
			format:  "base64",
			valid:   []string{"", "YQ==", "YWI=", "YWJj", "YWJjZA=="},
			invalid: []string{"YQ", "YQ=", "Y===Q", "a b="},
		},
		{
			format:  "byte",
			valid:   []string{"aGVsbG8gd29ybGQ="},
			invalid: []string{"hello"},
		},
	} {
		t.Run(tt.format, func(t *testing.T) {
			f, ok := NewFormatRegistry().Lookup(tt.format)
			require.True(t, ok, "format %q is not registered", tt.format)
			assert.Equal(t, tt.format, f.Format())
			for _, s := range tt.valid {
				assert.True(t, f.IsValid(s), "%q should be valid", s)
			}
			for _, s := range tt.invalid {
				assert.False(t, f.IsValid(s), "%q should be invalid", s)
			}
		})
	}
}

func TestFormatKinds(t *testing.T) {
	r := NewFormatRegistry()
	for format, kind := range map[string]ErrorKind{
		"date-time": KindDateTimeExpected,
		"date":      KindDateExpected,
		"time":      KindTimeExpected,
		"time-span": KindTimeSpanExpected,
		"email":     KindEmailExpected,
		"uri":       KindURIExpected,
		"guid":      KindGUIDExpected,
		"uuid":      KindUUIDExpected,
		"ipv4":      KindIPv4Expected,
		"ipv6":      KindIPv6Expected,
		"hostname":  KindHostnameExpected,
		"base64":    KindBase64Expected,
		"byte":      KindBase64Expected,
	} {
		f, ok := r.Lookup(format)
		require.True(t, ok, format)
		assert.Equal(t, kind, f.Kind(), format)
	}
	assert.Len(t, r.Formats(), 13)
}

func TestFormatRegistry(t *testing.T) {
	r := NewFormatRegistry()
	_, ok := r.Lookup("phone")
	assert.False(t, ok)

	r.Register(NewFormat("phone", KindPatternMismatch, func(s string) bool { return strings.HasPrefix(s, "+") }))
	f, ok := r.Lookup("phone")
	require.True(t, ok)
	assert.True(t, f.IsValid("+12345"))
	assert.False(t, f.IsValid("12345"))

	// A registered format replaces a built-in one.
	r.Register(NewFormat("email", KindEmailExpected, func(string) bool { return true }))
	f, _ = r.Lookup("email")
	assert.True(t, f.IsValid("not an email"))

	// Other registries are unaffected.
	f, _ = NewFormatRegistry().Lookup("email")
	assert.False(t, f.IsValid("not an email"))

	var zero FormatRegistry
	zero.Register(NewFormat("x", KindUnknown, func(string) bool { return false }))
	assert.Equal(t, []string{"x"}, zero.Formats())
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "PropertyRequired", KindPropertyRequired.String())
	assert.Equal(t, "IpV4Expected", KindIPv4Expected.String())
	assert.Equal(t, "ErrorKind(999)", ErrorKind(999).String())
	text, err := KindNotOneOf.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "NotOneOf", string(text))
	for k := range numKinds {
		assert.NotEmpty(t, k.String(), "kind %d has no name", int(k))
	}
}
