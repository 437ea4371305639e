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

package compiler

import (
	"github.com/gpuforge/kcc/core/codegen"
	"github.com/gpuforge/kcc/core/codegen/frontend"
	"github.com/gpuforge/kcc/core/os/shell"
)

// Option configures a Compiler under construction.
type Option func(*options)

type options struct {
	frontend     *frontend.Frontend
	passes       []string
	features     string
	disassembler shell.Cmd
	scratchDir   string
	objectWriter codegen.ObjectWriter
}

// DefaultDisassembler is the disassembler command used when none is given.
const DefaultDisassembler = "llvm-objdump"

func defaults() options {
	return options{
		frontend:     frontend.New(),
		features:     codegen.DefaultFeatures,
		disassembler: shell.Command(DefaultDisassembler, "-d"),
	}
}

// WithFrontend sets the frontend that translates source to IR.
func WithFrontend(f *frontend.Frontend) Option {
	return func(o *options) { o.frontend = f }
}

// WithPasses replaces the default optimization passes.
func WithPasses(passes ...string) Option {
	return func(o *options) { o.passes = passes }
}

// WithFeatures replaces the default subtarget features.
func WithFeatures(features string) Option {
	return func(o *options) { o.features = features }
}

// WithDisassembler sets the base disassembler command. The triple, processor
// and stdin marker are appended to it.
func WithDisassembler(cmd shell.Cmd) Option {
	return func(o *options) { o.disassembler = cmd }
}

// WithScratchDir sets where the transient IR files are written.
func WithScratchDir(dir string) Option {
	return func(o *options) { o.scratchDir = dir }
}

// WithObjectWriter replaces the function that lowers optimized modules to
// object files.
func WithObjectWriter(w codegen.ObjectWriter) Option {
	return func(o *options) { o.objectWriter = w }
}
