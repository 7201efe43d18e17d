// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/scott-cotton/cli"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
	"gopkg.in/yaml.v3"

	"github.com/dacolabs/jsonschema-tools/jsonschema"
)

func format(cfg *FmtConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Fmt.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: fmt requires exactly one schema, got %v", cli.ErrUsage, args)
	}
	in, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	out, err := reformat(in, args[0], cfg.YAML)
	if err != nil {
		return err
	}
	if !cfg.Diff {
		_, err := cc.Out.Write(out)
		return err
	}
	d, differs := lineDiff(string(in), string(out))
	if !differs {
		return nil
	}
	if _, err := io.WriteString(cc.Out, d); err != nil {
		return err
	}
	return cli.ExitCodeErr(1)
}

// reformat parses a schema document and writes it back in canonical form.
// References are kept as written.
func reformat(data []byte, path string, asYAML bool) ([]byte, error) {
	s, err := jsonschema.Parse(data, path)
	if err != nil {
		return nil, err
	}
	if asYAML {
		return yaml.Marshal(s)
	}
	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// lineDiff returns a line-oriented diff of a and b, with removed lines
// prefixed by "-", added lines by "+" and common lines by " ".
// It reports whether a and b differ.
func lineDiff(a, b string) (string, bool) {
	dmp := diffpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)
	var sb strings.Builder
	differs := false
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffpatch.DiffDelete:
			prefix = "-"
			differs = true
		case diffpatch.DiffInsert:
			prefix = "+"
			differs = true
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix)
			sb.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				sb.WriteString("\n")
			}
		}
	}
	return sb.String(), differs
}
