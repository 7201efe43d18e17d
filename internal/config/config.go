// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package config loads the configuration of the jsonschema command.
//
// Configuration comes from three layers, later ones winning: built-in
// defaults, a project file named by [FileNames], and environment variables
// of the form JSONSCHEMA_<SECTION>_<KEY>, as in JSONSCHEMA_RESOLVE_MAX_DEPTH.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cast"

	"github.com/dacolabs/jsonschema-tools/jsonschema"
	"github.com/dacolabs/jsonschema-tools/typegen"
)

// EnvPrefix prefixes the environment variables that override settings.
const EnvPrefix = "JSONSCHEMA_"

// FileNames are the project configuration files, in order of preference.
var FileNames = []string{".jsonschema.toml", ".jsonschema.yaml", ".jsonschema.yml", ".jsonschema.json"}

// Config is the configuration of the jsonschema command.
type Config struct {
	Resolve  Resolve          `mapstructure:"resolve"`
	Validate Validate         `mapstructure:"validate"`
	Types    typegen.Settings `mapstructure:"types"`
	Log      Log              `mapstructure:"log"`
}

// Resolve configures how documents are loaded.
type Resolve struct {
	MaxDepth        int  `mapstructure:"max_depth" validate:"gte=1,lte=1024"`
	CheckMetaSchema bool `mapstructure:"check_meta_schema"`
	// Root is the directory against which relative file references of
	// documents without a location are read.
	Root string `mapstructure:"root"`
	// Offline rejects http(s) references.
	Offline bool          `mapstructure:"offline"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

// Validate configures instance validation.
type Validate struct {
	Strict bool `mapstructure:"strict"`
	// Workers bounds how many instances are validated at once.
	Workers int `mapstructure:"workers" validate:"gte=1,lte=256"`
}

// Log configures diagnostics.
type Log struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json logfmt"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Resolve: Resolve{
			MaxDepth: 32,
			Timeout:  30 * time.Second,
		},
		Validate: Validate{
			Workers: runtime.GOMAXPROCS(0),
		},
		Types: typegen.DefaultSettings(),
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// Find returns the first of [FileNames] found in dir or one of its
// parents, or "" if there is none.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		for _, name := range FileNames {
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p); err == nil {
				return p, nil
			} else if !errors.Is(err, fs.ErrNotExist) {
				return "", err
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Load returns the configuration read from the file at path, or from the
// file found by [Find] in the current directory if path is empty,
// overridden by the environment and merged over [Default].
func Load(path string) (Config, error) {
	if path == "" {
		var err error
		if path, err = Find("."); err != nil {
			return Config{}, err
		}
	}
	raw := map[string]any{}
	if path != "" {
		var err error
		if raw, err = readFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(raw, os.Environ()); err != nil {
		return Config{}, err
	}

	var loaded Config
	if err := decode(raw, &loaded); err != nil {
		if path != "" {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
		return Config{}, err
	}
	cfg := Default()
	loaded.Types = loaded.Types.Merge(cfg.Types)
	if err := mergo.Merge(&cfg, loaded, mergo.WithOverride); err != nil {
		return Config{}, err
	}
	if err := cfg.Check(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	raw := map[string]any{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &raw)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	case ".json":
		err = json.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("%s: unsupported configuration format %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if raw == nil {
		// An empty YAML document.
		raw = map[string]any{}
	}
	return raw, nil
}

var sections = map[string]bool{"resolve": true, "validate": true, "types": true, "log": true}

// applyEnv sets raw[section][key] for each JSONSCHEMA_SECTION_KEY=value
// in environ. Variables naming an unknown section are ignored.
func applyEnv(raw map[string]any, environ []string) error {
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		section, key, ok := strings.Cut(strings.ToLower(strings.TrimPrefix(name, EnvPrefix)), "_")
		if !ok || key == "" || !sections[section] {
			continue
		}
		sec := map[string]any{}
		if v := raw[section]; v != nil {
			m, err := cast.ToStringMapE(v)
			if err != nil {
				return fmt.Errorf("section %s: %w", section, err)
			}
			sec = m
		}
		sec[key] = value
		raw[section] = sec
	}
	return nil
}

func decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(mapstructure.StringToTimeDurationHookFunc()),
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// Check reports whether c holds acceptable values.
func (c Config) Check() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ResolveOptions returns resolver options for c.
// Relative file references are read from c.Resolve.Root.
func (c Config) ResolveOptions(logger *slog.Logger) *jsonschema.ResolveOptions {
	fetcher := jsonschema.MultiFetcher{File: jsonschema.FileFetcher{Root: c.Resolve.Root}}
	if !c.Resolve.Offline {
		fetcher.HTTP = &jsonschema.HTTPFetcher{Client: &http.Client{Timeout: c.Resolve.Timeout}}
	}
	return &jsonschema.ResolveOptions{
		Fetcher:         fetcher,
		MaxDepth:        c.Resolve.MaxDepth,
		CheckMetaSchema: c.Resolve.CheckMetaSchema,
		Logger:          logger,
	}
}

// ValidateOptions returns validator options for c.
func (c Config) ValidateOptions(logger *slog.Logger) *jsonschema.ValidateOptions {
	return &jsonschema.ValidateOptions{
		Strict: c.Validate.Strict,
		Logger: logger,
	}
}
