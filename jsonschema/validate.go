// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package jsonschema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"math"
	"math/big"
	"reflect"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"
)

// ValidateOptions are options for [NewValidator].
type ValidateOptions struct {
	// Formats checks the "format" keyword. If nil, the built-in formats
	// of [NewFormatRegistry] are used.
	Formats *FormatRegistry
	// Strict makes an array schema without "items" a schema error.
	Strict bool
	// Logger receives debug records. If nil, nothing is logged.
	Logger *slog.Logger
}

// A Validator checks instances against resolved schemas.
// It never modifies a schema, and is safe for concurrent use.
type Validator struct {
	formats  *FormatRegistry
	strict   bool
	logger   *slog.Logger
	patterns *xsync.MapOf[string, *regexp2.Regexp]
}

// NewValidator returns a Validator with the given options.
// A nil opts is equivalent to a zero ValidateOptions.
func NewValidator(opts *ValidateOptions) *Validator {
	if opts == nil {
		opts = &ValidateOptions{}
	}
	v := &Validator{
		formats:  opts.Formats,
		strict:   opts.Strict,
		logger:   opts.Logger,
		patterns: xsync.NewMapOf[string, *regexp2.Regexp](),
	}
	if v.formats == nil {
		v.formats = NewFormatRegistry()
	}
	if v.logger == nil {
		v.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return v
}

var defaultValidator = sync.OnceValue(func() *Validator { return NewValidator(nil) })

// Validate validates instance against s with a Validator that has default options.
func Validate(s *Schema, instance any) ([]ValidationError, error) {
	return defaultValidator().Validate(s, instance)
}

// Validate reports the ways instance fails to match s. An empty result
// means instance is valid.
//
// The instance is a value as produced by encoding/json: nil, bool, string,
// float64 or json.Number, []any or map[string]any. Other Go values are
// converted by encoding them as JSON.
//
// The error is non-nil only when s itself cannot be used: an unresolved or
// cyclic reference, an invalid pattern, or, in strict mode, an array schema
// without items.
func (v *Validator) Validate(s *Schema, instance any) ([]ValidationError, error) {
	return v.ValidateProperty(s, instance, "", "")
}

// ValidateProperty is like Validate, but reports errors as though instance
// were the value of property at path within a larger instance.
func (v *Validator) ValidateProperty(s *Schema, instance any, property, path string) ([]ValidationError, error) {
	inst, err := normalize(instance)
	if err != nil {
		return nil, err
	}
	st := &validation{v: v, active: map[activeKey]bool{}}
	return st.validate(s, inst, property, path)
}

// ValidateJSON validates the JSON text data against s.
// Numbers are compared without loss of precision.
func (v *Validator) ValidateJSON(s *Schema, data []byte) ([]ValidationError, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var inst any
	if err := dec.Decode(&inst); err != nil {
		return nil, fmt.Errorf("decoding instance: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("decoding instance: unexpected data after top-level value")
	}
	return v.Validate(s, inst)
}

// ValidateDocument validates a JSON or YAML document against s.
func (v *Validator) ValidateDocument(s *Schema, data []byte) ([]ValidationError, error) {
	if !isJSON(data) && !isJSONScalar(data) {
		var err error
		if data, err = yamlToJSON(data); err != nil {
			return nil, fmt.Errorf("decoding instance: %w", err)
		}
	}
	return v.ValidateJSON(s, data)
}

func isJSONScalar(data []byte) bool {
	var x any
	return json.Unmarshal(data, &x) == nil
}

type activeKey struct {
	s    *Schema
	path string
}

// validation is the state of a single call to Validate.
type validation struct {
	v *Validator
	// schemas being applied to the value at a path, to catch schemas that
	// apply themselves without descending into the instance
	active map[activeKey]bool
}

func (st *validation) validate(schema *Schema, inst any, property, path string) ([]ValidationError, error) {
	s, err := schema.ActualSchema()
	if err != nil {
		return nil, err
	}
	key := activeKey{s, path}
	if st.active[key] {
		return nil, fmt.Errorf("schema %s applies itself to %q without end", s, path)
	}
	st.active[key] = true
	defer delete(st.active, key)

	var errs []ValidationError
	add := func(kind ErrorKind, property, path string) {
		errs = append(errs, ValidationError{Kind: kind, Property: property, Path: path, Schema: s})
	}

	// type
	if kind, ok := checkType(s.Type, inst); !ok {
		add(kind, property, path)
	}

	// format
	if str, ok := inst.(string); ok && s.Format != "" &&
		(s.Type == TypeNone || s.Type&(TypeString|TypeFile) != 0) {
		if f, ok := st.v.formats.Lookup(s.Format); ok && !f.IsValid(str) {
			add(f.Kind(), property, path)
		}
	}

	// string
	if str, ok := inst.(string); ok {
		if s.Pattern != "" {
			ok, err := st.v.match(s.Pattern, str)
			if err != nil {
				return nil, err
			}
			if !ok {
				add(KindPatternMismatch, property, path)
			}
		}
		if s.MinLength != nil || s.MaxLength != nil {
			n := utf16Len(str)
			if s.MinLength != nil && n < *s.MinLength {
				add(KindStringTooShort, property, path)
			}
			if s.MaxLength != nil && n > *s.MaxLength {
				add(KindStringTooLong, property, path)
			}
		}
	}

	// number
	if n, ok := inst.(*big.Rat); ok {
		integerKinds := s.Type.Has(TypeInteger) && !s.Type.Has(TypeNumber)
		if s.Minimum != nil {
			if c := n.Cmp(ratValue(s.Minimum, s.exactMinimum)); c < 0 || (c == 0 && s.ExclusiveMinimum) {
				add(pick(integerKinds, KindIntegerTooSmall, KindNumberTooSmall), property, path)
			}
		}
		if s.Maximum != nil {
			if c := n.Cmp(ratValue(s.Maximum, s.exactMaximum)); c > 0 || (c == 0 && s.ExclusiveMaximum) {
				add(pick(integerKinds, KindIntegerTooBig, KindNumberTooBig), property, path)
			}
		}
		if s.MultipleOf != nil {
			if m := ratValue(s.MultipleOf, s.exactMultipleOf); m.Sign() > 0 && !new(big.Rat).Quo(n, m).IsInt() {
				add(pick(integerKinds, KindIntegerNotMultipleOf, KindNumberNotMultipleOf), property, path)
			}
		}
	}

	// enum
	if len(s.Enum) > 0 {
		found := false
		for _, e := range s.Enum {
			ne, err := normalize(e)
			if err != nil {
				return nil, fmt.Errorf("enum value %v: %w", e, err)
			}
			if equalValues(inst, ne) {
				found = true
				break
			}
		}
		if !found {
			add(KindValueNotInEnumeration, property, path)
		}
	}

	// object
	if obj, ok := inst.(map[string]any); ok {
		oerrs, err := st.validateObject(s, obj, property, path)
		if err != nil {
			return nil, err
		}
		errs = append(errs, oerrs...)
	}

	// array
	if st.v.strict && s.Type.Has(TypeArray) && s.Items == nil && s.ItemsArray == nil {
		return nil, fmt.Errorf("array schema %s has no items", s)
	}
	if arr, ok := inst.([]any); ok {
		aerrs, err := st.validateArray(s, arr, property, path)
		if err != nil {
			return nil, err
		}
		errs = append(errs, aerrs...)
	}

	// composition
	cerrs, err := st.validateComposition(s, inst, property, path)
	if err != nil {
		return nil, err
	}
	errs = append(errs, cerrs...)
	return errs, nil
}

func (st *validation) validateObject(s *Schema, obj map[string]any, property, path string) ([]ValidationError, error) {
	var errs []ValidationError
	for name, prop := range s.Properties() {
		ppath := joinPath(path, name)
		val, ok := obj[name]
		if !ok {
			if prop.IsRequired() {
				errs = append(errs, ValidationError{Kind: KindPropertyRequired, Property: name, Path: ppath, Schema: s})
			}
			continue
		}
		perrs, err := st.validate(prop, val, name, ppath)
		if err != nil {
			return nil, err
		}
		errs = append(errs, perrs...)
	}

	patterns := slices.Sorted(maps.Keys(s.PatternProperties))
	for _, key := range slices.Sorted(maps.Keys(obj)) {
		kpath := joinPath(path, key)
		matched := false
		for _, p := range patterns {
			ok, err := st.v.match(p, key)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			matched = true
			perrs, err := st.validate(s.PatternProperties[p], obj[key], key, kpath)
			if err != nil {
				return nil, err
			}
			errs = append(errs, perrs...)
		}
		if matched || s.Property(key) != nil || s.AdditionalProperties == nil {
			continue
		}
		if s.AdditionalProperties.IsFalse() {
			errs = append(errs, ValidationError{Kind: KindNoAdditionalPropertiesAllowed, Property: key, Path: kpath, Schema: s})
			continue
		}
		aerrs, err := st.validate(s.AdditionalProperties, obj[key], key, kpath)
		if err != nil {
			return nil, err
		}
		errs = append(errs, aerrs...)
	}

	if s.MaxProperties != nil && len(obj) > *s.MaxProperties {
		errs = append(errs, ValidationError{Kind: KindTooManyProperties, Property: property, Path: path, Schema: s})
	}
	if s.MinProperties != nil && len(obj) < *s.MinProperties {
		errs = append(errs, ValidationError{Kind: KindTooFewProperties, Property: property, Path: path, Schema: s})
	}
	return errs, nil
}

func (st *validation) validateArray(s *Schema, arr []any, property, path string) ([]ValidationError, error) {
	var errs []ValidationError
	item := func(is *Schema, i int) error {
		idx := "[" + strconv.Itoa(i) + "]"
		ierrs, err := st.validate(is, arr[i], idx, path+idx)
		errs = append(errs, ierrs...)
		return err
	}
	switch {
	case s.Items != nil:
		for i := range arr {
			if err := item(s.Items, i); err != nil {
				return nil, err
			}
		}
	case s.ItemsArray != nil:
		for i := range arr {
			if i < len(s.ItemsArray) {
				if err := item(s.ItemsArray[i], i); err != nil {
					return nil, err
				}
				continue
			}
			if s.AdditionalItems == nil {
				break
			}
			if s.AdditionalItems.IsFalse() {
				errs = append(errs, ValidationError{Kind: KindTooManyItemsInTuple, Property: property, Path: path, Schema: s})
				break
			}
			if err := item(s.AdditionalItems, i); err != nil {
				return nil, err
			}
		}
	}

	if s.MaxItems != nil && len(arr) > *s.MaxItems {
		errs = append(errs, ValidationError{Kind: KindTooManyItems, Property: property, Path: path, Schema: s})
	}
	if s.MinItems != nil && len(arr) < *s.MinItems {
		errs = append(errs, ValidationError{Kind: KindTooFewItems, Property: property, Path: path, Schema: s})
	}
	if s.UniqueItems && !uniqueValues(arr) {
		errs = append(errs, ValidationError{Kind: KindItemsNotUnique, Property: property, Path: path, Schema: s})
	}
	return errs, nil
}

func (st *validation) validateComposition(s *Schema, inst any, property, path string) ([]ValidationError, error) {
	var errs []ValidationError
	branches := func(subs []*Schema) (failed []BranchErrors, matches int, err error) {
		for i, sub := range subs {
			berrs, err := st.validate(sub, inst, property, path)
			if err != nil {
				return nil, 0, err
			}
			if len(berrs) == 0 {
				matches++
				continue
			}
			failed = append(failed, BranchErrors{Index: i, Errors: berrs})
		}
		return failed, matches, nil
	}
	composite := func(kind ErrorKind, failed []BranchErrors) {
		errs = append(errs, ValidationError{Kind: kind, Property: property, Path: path, Schema: s, Branches: failed})
	}

	if len(s.AllOf) > 0 {
		failed, _, err := branches(s.AllOf)
		if err != nil {
			return nil, err
		}
		if len(failed) > 0 {
			composite(KindNotAllOf, failed)
		}
	}
	if len(s.AnyOf) > 0 {
		failed, matches, err := branches(s.AnyOf)
		if err != nil {
			return nil, err
		}
		if matches == 0 {
			composite(KindNotAnyOf, failed)
		}
	}
	if len(s.OneOf) > 0 {
		failed, matches, err := branches(s.OneOf)
		if err != nil {
			return nil, err
		}
		if matches != 1 {
			composite(KindNotOneOf, failed)
		}
	}
	if s.Not != nil {
		nerrs, err := st.validate(s.Not, inst, property, path)
		if err != nil {
			return nil, err
		}
		if len(nerrs) == 0 {
			errs = append(errs, ValidationError{Kind: KindExcludedSchemaValidates, Property: property, Path: path, Schema: s})
		}
	}
	return errs, nil
}

// match reports whether pattern, an ECMAScript regular expression,
// matches somewhere in s.
func (v *Validator) match(pattern, s string) (bool, error) {
	re, ok := v.patterns.Load(pattern)
	if !ok {
		var err error
		re, err = regexp2.Compile(pattern, regexp2.ECMAScript)
		if err != nil {
			return false, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		re, _ = v.patterns.LoadOrStore(pattern, re)
		v.logger.Debug("compiled pattern", "pattern", pattern)
	}
	return re.MatchString(s)
}

// typeChecks lists the flags in the order their errors are preferred.
var typeChecks = []struct {
	t    Type
	kind ErrorKind
}{
	{TypeString, KindStringExpected},
	{TypeNumber, KindNumberExpected},
	{TypeInteger, KindIntegerExpected},
	{TypeBoolean, KindBooleanExpected},
	{TypeObject, KindObjectExpected},
	{TypeArray, KindArrayExpected},
	{TypeNull, KindNullExpected},
	{TypeFile, KindStringExpected},
}

// checkType reports whether inst has one of the types in t, and if not,
// the kind of error for the first of them.
func checkType(t Type, inst any) (ErrorKind, bool) {
	if t == TypeNone {
		return KindUnknown, true
	}
	kind := KindUnknown
	for _, c := range typeChecks {
		if !t.Has(c.t) {
			continue
		}
		if hasType(c.t, inst) {
			return KindUnknown, true
		}
		if kind == KindUnknown {
			kind = c.kind
		}
	}
	return kind, false
}

func hasType(t Type, inst any) bool {
	switch t {
	case TypeString, TypeFile:
		_, ok := inst.(string)
		return ok
	case TypeNumber:
		_, ok := inst.(*big.Rat)
		return ok
	case TypeInteger:
		n, ok := inst.(*big.Rat)
		return ok && n.IsInt()
	case TypeBoolean:
		_, ok := inst.(bool)
		return ok
	case TypeObject:
		_, ok := inst.(map[string]any)
		return ok
	case TypeArray:
		_, ok := inst.([]any)
		return ok
	case TypeNull:
		return inst == nil
	}
	return false
}

// normalize converts a Go value to the form the validator works on:
// nil, bool, string, *big.Rat, []any or map[string]any.
func normalize(x any) (any, error) {
	switch x := x.(type) {
	case nil, bool, string:
		return x, nil
	case *big.Rat:
		return x, nil
	case json.Number:
		r, ok := new(big.Rat).SetString(string(x))
		if !ok {
			return nil, fmt.Errorf("invalid number %q", x)
		}
		return r, nil
	case float64:
		return floatRat(x)
	case float32:
		return floatRat(float64(x))
	case int:
		return new(big.Rat).SetInt64(int64(x)), nil
	case int8:
		return new(big.Rat).SetInt64(int64(x)), nil
	case int16:
		return new(big.Rat).SetInt64(int64(x)), nil
	case int32:
		return new(big.Rat).SetInt64(int64(x)), nil
	case int64:
		return new(big.Rat).SetInt64(x), nil
	case uint:
		return new(big.Rat).SetUint64(uint64(x)), nil
	case uint8:
		return new(big.Rat).SetUint64(uint64(x)), nil
	case uint16:
		return new(big.Rat).SetUint64(uint64(x)), nil
	case uint32:
		return new(big.Rat).SetUint64(uint64(x)), nil
	case uint64:
		return new(big.Rat).SetUint64(x), nil
	case time.Time:
		return x.Format(time.RFC3339Nano), nil
	case uuid.UUID:
		return x.String(), nil
	case []any:
		res := make([]any, len(x))
		for i, e := range x {
			ne, err := normalize(e)
			if err != nil {
				return nil, err
			}
			res[i] = ne
		}
		return res, nil
	case map[string]any:
		res := make(map[string]any, len(x))
		for k, e := range x {
			ne, err := normalize(e)
			if err != nil {
				return nil, err
			}
			res[k] = ne
		}
		return res, nil
	}
	if rv := reflect.ValueOf(x); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, nil
	}
	// Anything else goes through its JSON form.
	data, err := json.Marshal(x)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return normalize(v)
}

func floatRat(f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%v is not a JSON number", f)
	}
	return ratOf(f), nil
}

// ratOf converts f through its shortest decimal form, so that 0.1 is
// exactly one tenth.
func ratOf(f float64) *big.Rat {
	r, _ := new(big.Rat).SetString(strconv.FormatFloat(f, 'g', -1, 64))
	return r
}

// equalValues reports whether two normalized values are equal as JSON values.
func equalValues(a, b any) bool {
	switch a := a.(type) {
	case *big.Rat:
		b, ok := b.(*big.Rat)
		return ok && a.Cmp(b) == 0
	case []any:
		b, ok := b.([]any)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if !equalValues(a[i], b[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		b, ok := b.(map[string]any)
		if !ok || len(a) != len(b) {
			return false
		}
		for k, av := range a {
			bv, ok := b[k]
			if !ok || !equalValues(av, bv) {
				return false
			}
		}
		return true
	}
	return a == b
}

func uniqueValues(arr []any) bool {
	for i := range arr {
		for j := i + 1; j < len(arr); j++ {
			if equalValues(arr[i], arr[j]) {
				return false
			}
		}
	}
	return true
}

// utf16Len returns the length of s in UTF-16 code units.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// joinPath appends a property name to a dotted path.
func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func pick(cond bool, a, b ErrorKind) ErrorKind {
	if cond {
		return a
	}
	return b
}
