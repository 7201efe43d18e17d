// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package jsonschema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

type jsonInfo struct {
	omit     bool
	name     string
	settings map[string]bool
}

// fieldJSONInfo reports how the encoding/json package treats the field.
func fieldJSONInfo(sf reflect.StructField) jsonInfo {
	if !sf.IsExported() {
		return jsonInfo{omit: true}
	}
	tag, ok := sf.Tag.Lookup("json")
	if !ok {
		return jsonInfo{name: sf.Name}
	}
	name, rest, _ := strings.Cut(tag, ",")
	if name == "-" && rest == "" {
		return jsonInfo{omit: true}
	}
	if name == "" {
		name = sf.Name
	}
	info := jsonInfo{name: name}
	if rest != "" {
		info.settings = map[string]bool{}
		for _, s := range strings.Split(rest, ",") {
			info.settings[s] = true
		}
	}
	return info
}

// jsonNames returns the set of JSON names that encoding/json would use
// for the visible fields of the struct type t.
func jsonNames(t reflect.Type) map[string]bool {
	names := map[string]bool{}
	for _, sf := range reflect.VisibleFields(t) {
		if sf.Anonymous {
			continue
		}
		if info := fieldJSONInfo(sf); !info.omit {
			names[info.name] = true
		}
	}
	return names
}

// marshalStructWithMap marshals its first argument to JSON, treating the field named
// mapField as an embedded map. The first argument must be a pointer to a struct.
// The type of mapField must be map[string]any, and it must have a "-" json tag.
func marshalStructWithMap[T any](s *T, mapField string) ([]byte, error) {
	sv := reflect.ValueOf(s).Elem()
	m, _ := sv.FieldByName(mapField).Interface().(map[string]any)
	structBytes, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return structBytes, nil
	}
	names := jsonNames(sv.Type())
	for k := range m {
		if names[k] {
			return nil, fmt.Errorf("%s key %q duplicates a schema keyword", mapField, k)
		}
	}
	mapBytes, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	if bytes.Equal(structBytes, []byte("{}")) {
		return mapBytes, nil
	}
	// Splice the two objects: drop the struct's closing brace and the map's opening brace.
	res := append(structBytes[:len(structBytes)-1:len(structBytes)-1], ',')
	return append(res, mapBytes[1:]...), nil
}

// unmarshalStructWithMap is the inverse of marshalStructWithMap.
// T has the same restrictions as in that function.
func unmarshalStructWithMap[T any](data []byte, v *T, mapField string) error {
	if err := json.Unmarshal(data, v); err != nil {
		return err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	for k := range jsonNames(reflect.TypeFor[T]()) {
		delete(m, k)
	}
	if len(m) == 0 {
		return nil
	}
	reflect.ValueOf(v).Elem().FieldByName(mapField).Set(reflect.ValueOf(m))
	return nil
}

// objectKeys returns the keys of the JSON object data in document order,
// along with the undecoded value of each key.
func objectKeys(data []byte) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("expected object, got %v", tok)
	}
	var keys []string
	vals := map[string]json.RawMessage{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, err
		}
		if _, dup := vals[key]; !dup {
			keys = append(keys, key)
		}
		vals[key] = raw
	}
	return keys, vals, nil
}

type integer int32 // for the integer-valued fields of Schema

func (ip *integer) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		// nothing to do
		return nil
	}
	// If there is a decimal point, src is a floating-point number.
	var i int64
	if bytes.ContainsRune(data, '.') {
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return errors.New("not a number")
		}
		i = int64(f)
		if float64(i) != f {
			return errors.New("not an integer value")
		}
	} else {
		if err := json.Unmarshal(data, &i); err != nil {
			return errors.New("cannot be unmarshaled into an int")
		}
	}
	// Ensure behavior is the same on both 32-bit and 64-bit systems.
	if i < math.MinInt32 || i > math.MaxInt32 {
		return errors.New("integer is out of range")
	}
	*ip = integer(i)
	return nil
}

// Ptr returns a pointer to a new variable whose value is x.
func Ptr[T any](x T) *T { return &x }

// yamlToJSON converts a YAML document to JSON, keeping the key order of mappings.
func yamlToJSON(data []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := writeYAMLNode(&buf, &node); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeYAMLNode(buf *bytes.Buffer, n *yaml.Node) error {
	switch n.Kind {
	case 0:
		buf.WriteString("null")
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			buf.WriteString("null")
			return nil
		}
		return writeYAMLNode(buf, n.Content[0])
	case yaml.AliasNode:
		return writeYAMLNode(buf, n.Alias)
	case yaml.MappingNode:
		buf.WriteByte('{')
		for i := 0; i+1 < len(n.Content); i += 2 {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(n.Content[i].Value)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeYAMLNode(buf, n.Content[i+1]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, c := range n.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeYAMLNode(buf, c); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return err
		}
		if f, ok := v.(float64); ok && (math.IsInf(f, 0) || math.IsNaN(f)) {
			return fmt.Errorf("line %d: %s is not representable in JSON", n.Line, n.Value)
		}
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(b)
	default:
		return fmt.Errorf("line %d: unexpected YAML node kind %v", n.Line, n.Kind)
	}
	return nil
}

// jsonToYAMLNode converts JSON text to a block-style YAML node, keeping key order.
func jsonToYAMLNode(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	n := &doc
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	clearStyle(n)
	return n, nil
}

func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		clearStyle(c)
	}
}

// isJSON reports whether data looks like a JSON text rather than YAML.
func isJSON(data []byte) bool {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return false
	}
	switch data[0] {
	case '{', '[':
		return true
	}
	return bytes.Equal(data, []byte("true")) || bytes.Equal(data, []byte("false"))
}
