// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package jsonschema

import (
	"bytes"
	"fmt"
	"sync"

	metaschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// draft4MetaSchemaURL is the id of the draft-4 meta-schema.
const draft4MetaSchemaURL = "http://json-schema.org/draft-04/schema"

var draft4MetaSchema = sync.OnceValues(func() (*metaschema.Schema, error) {
	return metaschema.NewCompiler().Compile(draft4MetaSchemaURL)
})

// CheckMetaSchema reports whether the JSON or YAML schema document in data
// is a valid draft-4 schema, as judged by the draft-4 meta-schema.
func CheckMetaSchema(data []byte) error {
	ms, err := draft4MetaSchema()
	if err != nil {
		return fmt.Errorf("compiling meta-schema: %w", err)
	}
	if !isJSON(data) {
		if data, err = yamlToJSON(data); err != nil {
			return err
		}
	}
	doc, err := metaschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return err
	}
	if err := ms.Validate(doc); err != nil {
		return fmt.Errorf("not a draft-4 schema: %w", err)
	}
	return nil
}
