// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"

	"github.com/scott-cotton/cli"

	"github.com/dacolabs/jsonschema-tools/jsonschema"
)

func resolve(cfg *ResolveConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Resolve.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: resolve requires exactly one schema, got %v", cli.ErrUsage, args)
	}
	_, r, err := cfg.load(args[0], cfg.Meta)
	if err != nil {
		return err
	}
	return printDocuments(cc.Out, r.Documents())
}

// printDocuments prints the location and reference count of each
// document, followed by the total.
func printDocuments(w io.Writer, docs []*jsonschema.Schema) error {
	total := 0
	for _, doc := range docs {
		n := 0
		for s := range doc.All() {
			if s.HasReference() {
				n++
			}
		}
		total += n
		loc := doc.DocumentPath
		if loc == "" {
			loc = "(inline)"
		}
		if _, err := fmt.Fprintf(w, "%s\t%d references\n", loc, n); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d documents, %d references\n", len(docs), total)
	return err
}
