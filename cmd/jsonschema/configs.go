// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"

	"github.com/dacolabs/jsonschema-tools/internal/config"
	"github.com/dacolabs/jsonschema-tools/jsonschema"
)

type MainConfig struct {
	ConfigFile string `cli:"name=config desc='configuration file (default: nearest .jsonschema.{toml,yaml,yml,json})'"`
	Verbose    bool   `cli:"name=v desc='log debug records'"`

	ctx    context.Context
	cfg    config.Config
	logger *slog.Logger

	Main *cli.Command
}

// load loads and resolves the schema document at path.
func (cfg *MainConfig) load(path string, checkMeta bool) (*jsonschema.Schema, *jsonschema.Resolver, error) {
	opts := cfg.cfg.ResolveOptions(cfg.logger)
	opts.CheckMetaSchema = opts.CheckMetaSchema || checkMeta
	r := jsonschema.NewResolver(opts)
	s, err := r.Load(cfg.ctx, path)
	if err != nil {
		return nil, nil, err
	}
	return s, r, nil
}

type ValidateConfig struct {
	*MainConfig
	Quiet bool `cli:"name=q desc='print only the names of invalid files'"`

	Validate *cli.Command
}

type ResolveConfig struct {
	*MainConfig
	Meta bool `cli:"name=meta desc='check every document against the draft-4 meta-schema'"`

	Resolve *cli.Command
}

type TypesConfig struct {
	*MainConfig
	JSON bool `cli:"name=json desc='print the types as JSON'"`

	Types *cli.Command
}

type FmtConfig struct {
	*MainConfig
	Diff bool `cli:"name=d desc='print a diff against the input instead of the result'"`
	YAML bool `cli:"name=yaml desc='write YAML instead of JSON'"`

	Fmt *cli.Command
}

// newLogger returns a logger writing to w at the configured level,
// or at debug level if verbose is set.
func newLogger(w io.Writer, c config.Log, verbose bool) (*slog.Logger, error) {
	level, err := log.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	if verbose {
		level = log.DebugLevel
	}
	formatter := log.TextFormatter
	switch c.Format {
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	}
	return slog.New(log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       formatter,
		Prefix:          "jsonschema",
		ReportTimestamp: false,
	})), nil
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
