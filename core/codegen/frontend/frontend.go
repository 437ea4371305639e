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

// Package frontend translates kernel source into textual LLVM IR by running
// an external compiler driver.
package frontend

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gpuforge/kcc/core/codegen/amdgpu"
	"github.com/gpuforge/kcc/core/fault"
	"github.com/gpuforge/kcc/core/log"
	"github.com/gpuforge/kcc/core/os/shell"
)

// ErrFrontend is matched by every *Error.
const ErrFrontend = fault.Const("Frontend failed")

// Error is returned when the source could not be translated to IR.
type Error struct {
	// Arch is the architecture the source was being translated for.
	Arch amdgpu.Architecture
	// Diagnostics is the driver's diagnostic output, unmodified.
	Diagnostics string
	// Cause is the process failure.
	Cause error
}

func (e *Error) Error() string {
	if e.Diagnostics == "" {
		return fmt.Sprintf("%v for %v\n   Cause: %v", ErrFrontend, e.Arch, e.Cause)
	}
	return fmt.Sprintf("%v for %v:\n%v", ErrFrontend, e.Arch, e.Diagnostics)
}

func (e *Error) Unwrap() error        { return e.Cause }
func (e *Error) Is(target error) bool { return target == ErrFrontend }

// Frontend runs a HIP capable clang driver in device-only mode.
type Frontend struct {
	// Driver is the base command. Arguments are appended to it.
	Driver shell.Cmd
	// IncludeDirs are added to the header search path.
	IncludeDirs []string
	// Args are extra driver arguments placed before the output flags.
	Args []string
	// ScratchDir holds the transient source files. Empty means os.TempDir.
	ScratchDir string
}

// DefaultDriver is the driver used when none is configured.
const DefaultDriver = "clang"

// SDKVars are the environment variables naming the HIP installation, in the
// order they are consulted.
var SDKVars = []string{"HIP_PATH", "ROCM_PATH"}

// New returns a Frontend running the default driver from the PATH.
// If a HIP installation is named by the environment its include directory
// is searched.
func New() *Frontend {
	f := &Frontend{Driver: shell.Command(DefaultDriver)}
	if root := SDKRoot(shell.CloneEnv()); root != "" {
		f.IncludeDirs = []string{filepath.Join(root, "include")}
	}
	return f
}

// SDKRoot returns the first non-empty SDKVars value in env.
func SDKRoot(env *shell.Env) string {
	for _, key := range SDKVars {
		if root := env.Get(key); root != "" {
			return root
		}
	}
	return ""
}

// Arguments returns the driver arguments used to translate the file at path
// for arch.
func (f *Frontend) Arguments(arch amdgpu.Architecture, path string) []string {
	args := []string{
		"-x", "hip",
		"-target", arch.Triple().String(),
		"-mcpu=" + arch.String(),
		"--cuda-device-only",
		"-nogpulib",
		"-S", "-emit-llvm",
		"-O3",
	}
	for _, dir := range f.IncludeDirs {
		args = append(args, "-I", dir)
	}
	args = append(args, f.Args...)
	return append(args, "-o", "-", path)
}

// Translate returns the IR text produced by the driver for source.
// The source is written to a transient file which is removed before
// Translate returns, whatever the outcome.
func (f *Frontend) Translate(ctx context.Context, source string, arch amdgpu.Architecture) (string, error) {
	ctx = log.Enter(ctx, "Translate")

	file, err := os.CreateTemp(f.ScratchDir, "kernel-*.hip")
	if err != nil {
		return "", &Error{Arch: arch, Cause: log.Err(ctx, err, "Creating source file")}
	}
	path := file.Name()
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			log.W(ctx, "Couldn't remove source file %v: %v", path, rmErr)
		}
	}()

	errs := fault.One{}
	_, werr := file.WriteString(source)
	errs.Collect(werr)
	errs.Collect(file.Close())
	if err := errs.First(); err != nil {
		return "", &Error{Arch: arch, Cause: log.Errf(ctx, err, "Writing source file %v", path)}
	}

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := f.Driver.With(f.Arguments(arch, path)...).Capture(stdout, stderr)
	if err := cmd.Run(ctx); err != nil {
		return "", &Error{Arch: arch, Diagnostics: stderr.String(), Cause: err}
	}
	if stderr.Len() > 0 {
		log.D(ctx, "Frontend diagnostics:\n%v", stderr.String())
	}
	return stdout.String(), nil
}
