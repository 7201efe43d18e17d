// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package jsonschema

import (
	"testing"

	"github.com/xeipuuv/gojsonschema"
)

// TestOracle checks that an independent draft-4 validator agrees with
// this one about which instances are valid.
func TestOracle(t *testing.T) {
	const draft4 = `"$schema":"http://json-schema.org/draft-04/schema#",`
	for _, tt := range validateTests {
		if !tt.oracle {
			continue
		}
		t.Run(tt.name, func(t *testing.T) {
			// Every schema in the table is a non-empty object.
			schemaText := "{" + draft4 + tt.schema[1:]
			if tt.schema == `{}` {
				schemaText = `{"$schema":"http://json-schema.org/draft-04/schema#"}`
			}
			res, err := gojsonschema.Validate(
				gojsonschema.NewStringLoader(schemaText),
				gojsonschema.NewStringLoader(tt.instance))
			if err != nil {
				t.Fatal(err)
			}

			s := mustResolve(t, schemaText, nil)
			errs, err := NewValidator(nil).ValidateJSON(s, []byte(tt.instance))
			if err != nil {
				t.Fatal(err)
			}
			if got, want := len(errs) == 0, res.Valid(); got != want {
				t.Errorf("valid = %t, oracle says %t (%v); errors: %v", got, want, res.Errors(), errs)
			}
		})
	}
}
