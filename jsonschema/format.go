// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package jsonschema

import (
	"maps"
	"net"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cast"
)

// A FormatValidator checks strings against one value of the "format" keyword.
type FormatValidator interface {
	// Format is the keyword value, such as "date-time".
	Format() string
	// Kind is reported when a string is not valid.
	Kind() ErrorKind
	IsValid(s string) bool
}

// NewFormat returns a FormatValidator that reports valid strings with isValid.
func NewFormat(format string, kind ErrorKind, isValid func(string) bool) FormatValidator {
	return funcFormat{format, kind, isValid}
}

type funcFormat struct {
	format  string
	kind    ErrorKind
	isValid func(string) bool
}

func (f funcFormat) Format() string        { return f.format }
func (f funcFormat) Kind() ErrorKind       { return f.kind }
func (f funcFormat) IsValid(s string) bool { return f.isValid(s) }

// A FormatRegistry maps format names to validators.
// It is safe for concurrent use.
type FormatRegistry struct {
	mu      sync.RWMutex
	formats map[string]FormatValidator
}

// NewFormatRegistry returns a registry holding the built-in formats:
// date-time, date, time, time-span, email, uri, guid, uuid, ipv4, ipv6,
// hostname, base64 and byte.
func NewFormatRegistry() *FormatRegistry {
	r := &FormatRegistry{formats: map[string]FormatValidator{}}
	for _, f := range builtinFormats {
		r.Register(f)
	}
	return r
}

// Register adds f, replacing any validator for the same format.
func (r *FormatRegistry) Register(f FormatValidator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.formats == nil {
		r.formats = map[string]FormatValidator{}
	}
	r.formats[f.Format()] = f
}

// Lookup returns the validator for format.
func (r *FormatRegistry) Lookup(format string) (FormatValidator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.formats[format]
	return f, ok
}

// Formats returns the registered format names, sorted.
func (r *FormatRegistry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.formats))
}

var builtinFormats = []FormatValidator{
	NewFormat("date-time", KindDateTimeExpected, isDateTime),
	NewFormat("date", KindDateExpected, isDate),
	NewFormat("time", KindTimeExpected, timeRE.MatchString),
	NewFormat("time-span", KindTimeSpanExpected, isTimeSpan),
	NewFormat("email", KindEmailExpected, emailRE.MatchString),
	NewFormat("uri", KindURIExpected, isURI),
	NewFormat("guid", KindGUIDExpected, isUUID),
	NewFormat("uuid", KindUUIDExpected, isUUID),
	NewFormat("ipv4", KindIPv4Expected, ipv4RE.MatchString),
	NewFormat("ipv6", KindIPv6Expected, isIPv6),
	NewFormat("hostname", KindHostnameExpected, isHostname),
	NewFormat("base64", KindBase64Expected, isBase64),
	NewFormat("byte", KindBase64Expected, isBase64),
}

// dateTimeLayouts are the accepted date-time forms, most specific first.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.9999999Z0700",
	"2006-01-02T15:04:05.9999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.9999999Z07:00",
	"2006-01-02 15:04:05.9999999",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006-01",
	"2006",
}

func isDateTime(s string) bool {
	for _, layout := range dateTimeLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func isDate(s string) bool {
	const layout = "2006-01-02"
	t, err := time.Parse(layout, s)
	return err == nil && t.Format(layout) == s
}

var (
	timeRE  = regexp.MustCompile(`^(?:[01]\d|2[0-3]):[0-5]\d:[0-5]\d(?:\.\d{1,7})?(?:Z|[+-](?:[01]\d|2[0-3]):?[0-5]\d)?$`)
	emailRE = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")
	ipv4RE  = regexp.MustCompile(`^(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)$`)
	labelRE = regexp.MustCompile(`^[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`)
	b64RE   = regexp.MustCompile(`^[a-zA-Z0-9+/]*={0,3}$`)
	// [-][d.]hh:mm[:ss[.fffffff]]
	timeSpanRE = regexp.MustCompile(`^-?(?:(\d+)\.)?(\d{1,2}):(\d{1,2})(?::(\d{1,2})(?:\.\d{1,7})?)?$`)
	daysRE     = regexp.MustCompile(`^-?\d+$`)
)

func isURI(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.IsAbs()
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func isIPv6(s string) bool {
	return strings.Contains(s, ":") && net.ParseIP(s) != nil
}

func isHostname(s string) bool {
	if s == "" || len(s) > 255 {
		return false
	}
	for _, label := range strings.Split(strings.TrimSuffix(s, "."), ".") {
		if !labelRE.MatchString(label) {
			return false
		}
	}
	return true
}

func isBase64(s string) bool {
	return len(s)%4 == 0 && b64RE.MatchString(s)
}

// isTimeSpan accepts [-][d.]hh:mm[:ss[.fffffff]], a whole number of days,
// or a Go duration such as "1h30m".
func isTimeSpan(s string) bool {
	if m := timeSpanRE.FindStringSubmatch(s); m != nil {
		limits := []int{0, 0, 23, 59, 59}
		for i := 2; i < len(m); i++ {
			if m[i] == "" {
				continue
			}
			n, err := strconv.Atoi(m[i])
			if err != nil || n > limits[i] {
				return false
			}
		}
		return true
	}
	if daysRE.MatchString(s) {
		return true
	}
	if strings.ContainsAny(s, "nsuµmh") {
		_, err := cast.ToDurationE(s)
		return err == nil
	}
	return false
}
