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

package frontend_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/gpuforge/kcc/core/assert"
	"github.com/gpuforge/kcc/core/codegen/amdgpu"
	"github.com/gpuforge/kcc/core/codegen/frontend"
	"github.com/gpuforge/kcc/core/log"
	"github.com/gpuforge/kcc/core/os/shell"
	"github.com/gpuforge/kcc/core/os/shell/stub"
)

const (
	source = `__global__ void k(int* p) { p[0] = 1; }`
	ir     = "; ModuleID = 'kernel.hip'\ntarget triple = \"amdgcn-amd-amdhsa\"\n"
)

func newFrontend(dir string, target shell.Target) *frontend.Frontend {
	f := frontend.New()
	f.Driver = f.Driver.On(target)
	f.ScratchDir = dir
	return f
}

func TestArguments(t *testing.T) {
	ctx := log.Testing(t)
	f := frontend.New()
	f.IncludeDirs = []string{"/opt/rocm/include", "inc"}
	f.Args = []string{"-DN=4"}
	got := f.Arguments(amdgpu.Architecture("gfx1100"), "/tmp/k.hip")
	assert.For(ctx, "args").ThatSlice(got).Equals([]string{
		"-x", "hip",
		"-target", "amdgcn-amd-amdhsa",
		"-mcpu=gfx1100",
		"--cuda-device-only",
		"-nogpulib",
		"-S", "-emit-llvm",
		"-O3",
		"-I", "/opt/rocm/include",
		"-I", "inc",
		"-DN=4",
		"-o", "-", "/tmp/k.hip",
	})
}

func TestSDKIncludeDir(t *testing.T) {
	ctx := log.Testing(t)
	t.Setenv("HIP_PATH", "")
	t.Setenv("ROCM_PATH", "")
	assert.For(ctx, "none").ThatSlice(frontend.New().IncludeDirs).IsEmpty()

	t.Setenv("ROCM_PATH", "/opt/rocm-6.1.0")
	assert.For(ctx, "rocm").ThatSlice(frontend.New().IncludeDirs).Equals([]string{
		filepath.Join("/opt/rocm-6.1.0", "include"),
	})

	t.Setenv("HIP_PATH", "/opt/hip")
	assert.For(ctx, "hip").ThatSlice(frontend.New().IncludeDirs).Equals([]string{
		filepath.Join("/opt/hip", "include"),
	})
	args := frontend.New().Arguments("gfx90a", "k.hip")
	assert.For(ctx, "args").ThatSlice(args[len(args)-5:]).Equals([]string{
		"-I", filepath.Join("/opt/hip", "include"), "-o", "-", "k.hip",
	})
}

func TestTranslate(t *testing.T) {
	ctx := log.Testing(t)
	dir := t.TempDir()
	var path string
	f := newFrontend(dir, stub.Func(func(cmd shell.Cmd) error {
		path = cmd.Args[len(cmd.Args)-1]
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if string(data) != source {
			return errors.New("source mismatch")
		}
		_, err = io.WriteString(cmd.Stdout, ir)
		return err
	}))

	got, err := f.Translate(ctx, source, "gfx1100")
	assert.For(ctx, "err").ThatError(err).Succeeded()
	assert.For(ctx, "ir").ThatString(got).Equals(ir)
	_, err = os.Stat(path)
	assert.For(ctx, "source removed").That(os.IsNotExist(err)).Equals(true)
}

func TestTranslateFailure(t *testing.T) {
	ctx := log.Testing(t)
	dir := t.TempDir()
	diag := "kernel.hip:1:36: error: expected ';' after expression\n1 error generated.\n"
	exit := errors.New("exit status 1")
	f := newFrontend(dir, &stub.Response{Stderr: diag, WaitErr: exit})

	got, err := f.Translate(ctx, "__global__ void k() { int x = 1 }", "gfx90a")
	assert.For(ctx, "ir").ThatString(got).Equals("")
	assert.For(ctx, "err").ThatError(err).Is(frontend.ErrFrontend)
	assert.For(ctx, "cause").ThatError(err).Is(exit)

	var fe *frontend.Error
	if assert.For(ctx, "as").That(errors.As(err, &fe)).Equals(true) {
		assert.For(ctx, "diagnostics").ThatString(fe.Diagnostics).Equals(diag)
		assert.For(ctx, "arch").That(fe.Arch).Equals(amdgpu.Architecture("gfx90a"))
	}
	assert.For(ctx, "message").ThatString(err.Error()).Contains("expected ';' after expression")

	entries, _ := os.ReadDir(dir)
	assert.For(ctx, "scratch dir").ThatSlice(entries).IsEmpty()
}

func TestTranslateMissingDriver(t *testing.T) {
	ctx := log.Testing(t)
	dir := t.TempDir()
	missing := errors.New("executable file not found in $PATH")
	f := newFrontend(dir, &stub.Response{StartErr: missing})

	_, err := f.Translate(ctx, source, "gfx1100")
	assert.For(ctx, "err").ThatError(err).Is(frontend.ErrFrontend)
	assert.For(ctx, "cause").ThatError(err).Is(missing)
	entries, _ := os.ReadDir(dir)
	assert.For(ctx, "scratch dir").ThatSlice(entries).IsEmpty()
}

func TestTranslateBadScratchDir(t *testing.T) {
	ctx := log.Testing(t)
	f := newFrontend("/nonexistent/scratch", &stub.Response{Stdout: ir})
	_, err := f.Translate(ctx, source, "gfx1100")
	assert.For(ctx, "err").ThatError(err).Is(frontend.ErrFrontend)
}
