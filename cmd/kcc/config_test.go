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
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/gpuforge/kcc/core/assert"
	"github.com/gpuforge/kcc/core/codegen"
	"github.com/gpuforge/kcc/core/log"
)

const sampleConfig = `
[frontend]
path = "/opt/rocm/llvm/bin/clang"
include_dirs = ["include", "/opt/rocm/hipcub/include"]
args = ["-DWAVE=32"]
scratch_dir = "tmp"

[frontend.env]
HIP_PATH = "/opt/rocm"

[disassembler]
path = "/opt/rocm/llvm/bin/llvm-objdump"

[codegen]
passes = ["mem2reg", "instcombine"]

[log]
level = "debug"
`

func writeFile(t *testing.T, path, content string) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestFindConfig(t *testing.T) {
	ctx := log.Testing(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, configName), sampleConfig)
	nested := filepath.Join(root, "kernels", "reduce")
	os.MkdirAll(nested, 0755)

	path, ok, err := findConfig(nested)
	assert.For(ctx, "err").ThatError(err).Succeeded()
	assert.For(ctx, "found").That(ok).Equals(true)
	assert.For(ctx, "path").ThatString(path).Equals(filepath.Join(root, configName))
}

func TestLoadConfig(t *testing.T) {
	ctx := log.Testing(t)
	root := t.TempDir()
	path := filepath.Join(root, configName)
	writeFile(t, path, sampleConfig)

	cfg, err := loadConfig(path)
	if !assert.For(ctx, "err").ThatError(err).Succeeded() {
		return
	}
	assert.For(ctx, "driver").ThatString(cfg.Frontend.Path).Equals("/opt/rocm/llvm/bin/clang")
	assert.For(ctx, "includes").ThatSlice(cfg.Frontend.IncludeDirs).Equals([]string{
		filepath.Join(root, "include"), "/opt/rocm/hipcub/include",
	})
	assert.For(ctx, "scratch").ThatString(cfg.Frontend.ScratchDir).Equals(filepath.Join(root, "tmp"))
	assert.For(ctx, "env").ThatString(cfg.Frontend.Env["HIP_PATH"]).Equals("/opt/rocm")
	assert.For(ctx, "disasm args").ThatSlice(cfg.Disassembler.Args).Equals([]string{"-d"})
	assert.For(ctx, "features").ThatString(cfg.Codegen.Features).Equals(codegen.DefaultFeatures)
	assert.For(ctx, "passes").ThatSlice(cfg.Codegen.Passes).Equals([]string{"mem2reg", "instcombine"})
	assert.For(ctx, "level").ThatString(cfg.Log.Level).Equals("debug")
	assert.For(ctx, "style").ThatString(cfg.Log.Style).Equals("brief")

	f := cfg.newFrontend()
	assert.For(ctx, "driver name").ThatString(f.Driver.Name).Equals("/opt/rocm/llvm/bin/clang")
	assert.For(ctx, "driver env").ThatString(f.Driver.Environment.Get("HIP_PATH")).Equals("/opt/rocm")
	assert.For(ctx, "frontend includes").ThatSlice(f.IncludeDirs).Equals([]string{
		filepath.Join("/opt/rocm", "include"), filepath.Join(root, "include"), "/opt/rocm/hipcub/include",
	})
	assert.For(ctx, "options").ThatSlice(cfg.options()).IsLength(5)
}

func TestFrontendSDKIncludes(t *testing.T) {
	ctx := log.Testing(t)
	t.Setenv("HIP_PATH", "")
	t.Setenv("ROCM_PATH", "")
	cfg := defaultConfig()
	cfg.Frontend.IncludeDirs = []string{"/src/include"}
	assert.For(ctx, "no sdk").ThatSlice(cfg.newFrontend().IncludeDirs).Equals([]string{"/src/include"})

	t.Setenv("ROCM_PATH", "/opt/rocm-6.1.0")
	assert.For(ctx, "rocm").ThatSlice(cfg.newFrontend().IncludeDirs).Equals([]string{
		filepath.Join("/opt/rocm-6.1.0", "include"), "/src/include",
	})
	f := cfg.newFrontend()
	assert.For(ctx, "inherited env").That(f.Driver.Environment == nil).Equals(true)
}

func TestLoadConfigUnknownKey(t *testing.T) {
	ctx := log.Testing(t)
	path := filepath.Join(t.TempDir(), configName)
	writeFile(t, path, "[codegen]\nopt_level = 2\n")
	_, err := loadConfig(path)
	assert.For(ctx, "err").ThatError(err).Failed()
	assert.For(ctx, "message").ThatString(err.Error()).Contains("codegen.opt_level")
}

func TestLoadConfigMalformed(t *testing.T) {
	ctx := log.Testing(t)
	path := filepath.Join(t.TempDir(), configName)
	writeFile(t, path, "[codegen\n")
	_, err := loadConfig(path)
	assert.For(ctx, "err").ThatError(err).Failed()
	assert.For(ctx, "message").ThatString(err.Error()).Contains("failed to parse TOML")
}

func TestOutputPath(t *testing.T) {
	ctx := log.Testing(t)
	for _, test := range []struct {
		pattern, input, arch string
		archs                int
		expect               string
		fails                bool
	}{
		{"", "k/add.hip", "gfx1100", 1, "k/add.gfx1100.hsaco", false},
		{"", "add.hip", "gfx90a:xnack+", 2, "add.gfx90a_xnack+.hsaco", false},
		{"out/{arch}.co", "add.hip", "gfx1100", 2, "out/gfx1100.co", false},
		{"add.co", "add.hip", "gfx1100", 1, "add.co", false},
		{"add.co", "add.hip", "gfx1100", 2, "", true},
	} {
		got, err := outputPath(test.pattern, test.input, test.arch, test.archs)
		if test.fails {
			assert.For(ctx, "%v %v", test.pattern, test.archs).ThatError(err).Failed()
			continue
		}
		assert.For(ctx, "%v %v", test.pattern, test.arch).ThatString(got).Equals(test.expect)
	}
}

func TestLogHandler(t *testing.T) {
	ctx := log.Testing(t)
	buf := &bytes.Buffer{}
	handler, filter, err := newLogHandler(buf, logConfig{Level: "warning", Style: "raw"}, "off")
	if !assert.For(ctx, "err").ThatError(err).Succeeded() {
		return
	}
	assert.For(ctx, "info").That(filter.ShowSeverity(log.Info)).Equals(false)
	assert.For(ctx, "error").That(filter.ShowSeverity(log.Error)).Equals(true)

	handler.Handle(&log.Message{Text: "s_endpgm", Severity: log.Error})
	assert.For(ctx, "output").ThatString(buf.String()).Equals("s_endpgm\n")

	_, _, err = newLogHandler(buf, logConfig{Level: "info", Style: "fancy"}, "off")
	assert.For(ctx, "style").ThatError(err).Failed()
	_, _, err = newLogHandler(buf, logConfig{Level: "loud", Style: "raw"}, "off")
	assert.For(ctx, "level").ThatError(err).Failed()
	_, _, err = newLogHandler(buf, logConfig{Level: "info", Style: "raw"}, "rainbow")
	assert.For(ctx, "color").ThatError(err).Failed()
}

func TestColorEnabled(t *testing.T) {
	ctx := log.Testing(t)
	buf := &bytes.Buffer{}
	auto, err := colorEnabled(buf, "auto")
	assert.For(ctx, "auto err").ThatError(err).Succeeded()
	assert.For(ctx, "auto on buffer").That(auto).Equals(false)
	on, _ := colorEnabled(buf, "on")
	assert.For(ctx, "on").That(on).Equals(true)
	off, _ := colorEnabled(buf, "off")
	assert.For(ctx, "off").That(off).Equals(false)
}
