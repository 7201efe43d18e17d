// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"
	"golang.org/x/sync/errgroup"

	"github.com/dacolabs/jsonschema-tools/jsonschema"
)

func validate(cfg *ValidateConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Validate.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: validate requires a schema", cli.ErrUsage)
	}
	schema, _, err := cfg.load(args[0], false)
	if err != nil {
		return err
	}
	v := jsonschema.NewValidator(cfg.cfg.ValidateOptions(cfg.logger))

	var results []fileResult
	if files := args[1:]; len(files) == 0 {
		data, err := io.ReadAll(cc.In)
		if err != nil {
			return err
		}
		errs, err := v.ValidateDocument(schema, data)
		if err != nil {
			return fmt.Errorf("stdin: %w", err)
		}
		results = []fileResult{{name: "-", errs: errs}}
	} else if results, err = validateFiles(cfg, v, schema, files); err != nil {
		return err
	}

	p := newPrinter(cc.Out, isTerminal(cc.Out))
	if invalid := p.report(results, cfg.Quiet); invalid > 0 {
		return cli.ExitCodeErr(1)
	}
	return nil
}

type fileResult struct {
	name string
	errs []jsonschema.ValidationError
}

// validateFiles validates files concurrently, returning results in the
// order of files.
func validateFiles(cfg *ValidateConfig, v *jsonschema.Validator, schema *jsonschema.Schema, files []string) ([]fileResult, error) {
	results := make([]fileResult, len(files))
	g, ctx := errgroup.WithContext(cfg.ctx)
	g.SetLimit(cfg.cfg.Validate.Workers)
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			errs, err := v.ValidateDocument(schema, data)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			cfg.logger.Debug("validated", "file", file, "errors", len(errs))
			results[i] = fileResult{name: file, errs: errs}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

type printer struct {
	w           io.Writer
	good, bad   *color.Color
	path, faint *color.Color
}

func newPrinter(w io.Writer, colored bool) *printer {
	p := &printer{
		w:     w,
		good:  color.New(color.FgGreen),
		bad:   color.New(color.FgRed, color.Bold),
		path:  color.New(color.FgCyan),
		faint: color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.good, p.bad, p.path, p.faint} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// report prints results and returns the number of invalid files.
func (p *printer) report(results []fileResult, quiet bool) int {
	invalid := 0
	for _, r := range results {
		if len(r.errs) == 0 {
			if !quiet {
				fmt.Fprintf(p.w, "%s: %s\n", r.name, p.good.Sprint("ok"))
			}
			continue
		}
		invalid++
		if quiet {
			fmt.Fprintln(p.w, r.name)
			continue
		}
		noun := "errors"
		if len(r.errs) == 1 {
			noun = "error"
		}
		fmt.Fprintf(p.w, "%s: %s\n", r.name, p.bad.Sprintf("%d %s", len(r.errs), noun))
		for _, e := range r.errs {
			p.printError(e, "  ")
		}
	}
	return invalid
}

func (p *printer) printError(e jsonschema.ValidationError, indent string) {
	if e.Path != "" {
		fmt.Fprintf(p.w, "%s%s: ", indent, p.path.Sprint(e.Path))
	} else {
		fmt.Fprint(p.w, indent)
	}
	fmt.Fprint(p.w, p.bad.Sprint(e.Kind))
	if e.Property != "" && e.Property != e.Path {
		fmt.Fprintf(p.w, " (%s)", e.Property)
	}
	fmt.Fprintln(p.w)
	for _, br := range e.Branches {
		fmt.Fprintf(p.w, "%s  %s\n", indent, p.faint.Sprintf("branch %d:", br.Index))
		for _, sub := range br.Errors {
			p.printError(sub, indent+strings.Repeat(" ", 4))
		}
	}
}
