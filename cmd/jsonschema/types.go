// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/scott-cotton/cli"

	"github.com/dacolabs/jsonschema-tools/jsonschema"
	"github.com/dacolabs/jsonschema-tools/typegen"
)

func types(cfg *TypesConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Types.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: types requires exactly one schema, got %v", cli.ErrUsage, args)
	}
	schema, _, err := cfg.load(args[0], false)
	if err != nil {
		return err
	}
	res := typegen.NewResolver(cfg.cfg.Types, nil)
	root, err := resolveTypes(res, schema, rootHint(args[0]))
	if err != nil {
		return err
	}
	if cfg.JSON {
		return printTypesJSON(cc.Out, root, res.Registry().Types())
	}
	return printTypes(cc.Out, res, root)
}

// resolveTypes resolves the root schema and then each of its definitions,
// so that definitions the root does not use also get types.
func resolveTypes(res *typegen.Resolver, schema *jsonschema.Schema, hint string) (typegen.TypeDescriptor, error) {
	root, err := res.Resolve(schema, true, hint)
	if err != nil {
		return typegen.TypeDescriptor{}, err
	}
	for _, name := range slices.Sorted(maps.Keys(schema.Definitions)) {
		if _, err := res.Resolve(schema.Definitions[name], true, name); err != nil {
			return typegen.TypeDescriptor{}, fmt.Errorf("definition %s: %w", name, err)
		}
	}
	return root, nil
}

// rootHint names the root type after its file.
func rootHint(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base
}

func printTypes(w io.Writer, res *typegen.Resolver, root typegen.TypeDescriptor) error {
	var b strings.Builder
	fmt.Fprintf(&b, "root %s\n", res.Render(root))
	for _, t := range res.Registry().Types() {
		fmt.Fprintf(&b, "\n%s %s", t.Kind, t.Name)
		if t.Base != nil {
			fmt.Fprintf(&b, " extends %s", t.Base.Name)
		}
		if t.Discriminator != "" {
			fmt.Fprintf(&b, " (discriminator %s)", t.Discriminator)
		}
		b.WriteString("\n")
		for _, f := range t.Fields {
			fmt.Fprintf(&b, "\t%s %s\n", f.Name, res.Render(f.Type))
		}
		for _, v := range t.Values {
			fmt.Fprintf(&b, "\t%s = %#v\n", v.Name, v.Value)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func printTypesJSON(w io.Writer, root typegen.TypeDescriptor, ts []*typegen.Type) error {
	type jsonType struct {
		*typegen.Type
		Base string `json:"base,omitempty"`
	}
	out := struct {
		Root  typegen.TypeDescriptor `json:"root"`
		Types []jsonType             `json:"types"`
	}{Root: root}
	for _, t := range ts {
		jt := jsonType{Type: t}
		if t.Base != nil {
			jt.Base = t.Base.Name
		}
		out.Types = append(out.Types, jt)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
