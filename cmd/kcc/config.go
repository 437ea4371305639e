// Copyright (C) 2017 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/gpuforge/kcc/core/codegen"
	"github.com/gpuforge/kcc/core/codegen/compiler"
	"github.com/gpuforge/kcc/core/codegen/frontend"
	"github.com/gpuforge/kcc/core/os/shell"
)

// configName is the file searched for from the working directory upwards.
const configName = "kcc.toml"

type config struct {
	Frontend     frontendConfig     `toml:"frontend"`
	Disassembler disassemblerConfig `toml:"disassembler"`
	Codegen      codegenConfig      `toml:"codegen"`
	Log          logConfig          `toml:"log"`
}

type frontendConfig struct {
	Path        string            `toml:"path"`
	IncludeDirs []string          `toml:"include_dirs"`
	Args        []string          `toml:"args"`
	ScratchDir  string            `toml:"scratch_dir"`
	Env         map[string]string `toml:"env"`
}

type disassemblerConfig struct {
	Path string   `toml:"path"`
	Args []string `toml:"args"`
}

type codegenConfig struct {
	Features string   `toml:"features"`
	Passes   []string `toml:"passes"`
}

type logConfig struct {
	Level string `toml:"level"`
	Style string `toml:"style"`
}

func defaultConfig() config {
	return config{
		Frontend:     frontendConfig{Path: frontend.DefaultDriver},
		Disassembler: disassemblerConfig{Path: compiler.DefaultDisassembler, Args: []string{"-d"}},
		Codegen:      codegenConfig{Features: codegen.DefaultFeatures},
		Log:          logConfig{Level: "info", Style: "brief"},
	}
}

func findConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, errors.Wrap(err, "resolving start directory")
	}
	for {
		candidate := filepath.Join(dir, configName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !os.IsNotExist(err) {
			return "", false, errors.Wrapf(err, "stat %q", candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// loadConfig decodes the file at path over the defaults. Relative paths in
// the file are resolved against the file's directory.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return config{}, errors.Wrapf(err, "%s: failed to parse TOML", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	root := filepath.Dir(path)
	for i, dir := range cfg.Frontend.IncludeDirs {
		cfg.Frontend.IncludeDirs[i] = resolve(root, dir)
	}
	cfg.Frontend.ScratchDir = resolve(root, cfg.Frontend.ScratchDir)
	return cfg, nil
}

func resolve(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, filepath.FromSlash(path))
}

// newFrontend returns the frontend described by the configuration. The
// include directory of the HIP installation named by the environment, with
// the configured overrides applied, is searched before the configured ones.
func (c config) newFrontend() *frontend.Frontend {
	f := frontend.New()
	f.Driver = shell.Command(c.Frontend.Path)
	env := shell.CloneEnv()
	for k, v := range c.Frontend.Env {
		env.Set(k, v)
	}
	if len(c.Frontend.Env) > 0 {
		f.Driver = f.Driver.Env(env)
	}
	f.IncludeDirs = nil
	if root := frontend.SDKRoot(env); root != "" {
		f.IncludeDirs = append(f.IncludeDirs, filepath.Join(root, "include"))
	}
	f.IncludeDirs = append(f.IncludeDirs, c.Frontend.IncludeDirs...)
	f.Args = c.Frontend.Args
	f.ScratchDir = c.Frontend.ScratchDir
	return f
}

// options returns the compiler options described by the configuration.
func (c config) options() []compiler.Option {
	return []compiler.Option{
		compiler.WithFrontend(c.newFrontend()),
		compiler.WithFeatures(c.Codegen.Features),
		compiler.WithPasses(c.Codegen.Passes...),
		compiler.WithDisassembler(shell.Command(c.Disassembler.Path, c.Disassembler.Args...)),
		compiler.WithScratchDir(c.Frontend.ScratchDir),
	}
}
