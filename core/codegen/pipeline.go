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

package codegen

import (
	"context"
	"strings"

	"github.com/gpuforge/kcc/core/log"

	"tinygo.org/x/go-llvm"
)

// DefaultPasses is the pass list used by a pipeline created without passes.
var DefaultPasses = []string{
	"mem2reg",
	"amdgpu-promote-alloca",
	"instcombine",
	"reassociate",
}

// Pipeline is an ordered list of optimization passes.
// Each pass runs once, in order, every time the pipeline is applied.
type Pipeline struct {
	passes []string
}

// NewPipeline returns a pipeline running passes. With no passes the
// DefaultPasses are used.
func NewPipeline(passes ...string) *Pipeline {
	if len(passes) == 0 {
		passes = DefaultPasses
	}
	return &Pipeline{passes: append([]string{}, passes...)}
}

// Passes returns a copy of the pipeline's pass list.
func (p *Pipeline) Passes() []string { return append([]string{}, p.passes...) }

// String returns the textual pipeline description handed to LLVM.
func (p *Pipeline) String() string { return strings.Join(p.passes, ",") }

// Apply runs the pipeline over m. The machine supplies the target specific
// passes and cost models.
func (p *Pipeline) Apply(ctx context.Context, m *Module, machine *Machine) error {
	ctx = log.Enter(ctx, "Optimize")
	opts := llvm.NewPassBuilderOptions()
	defer opts.Dispose()
	if err := m.llvm.RunPasses(p.String(), machine.llvm, opts); err != nil {
		return &OptimizationError{Module: m.name, Pipeline: p.String(), Cause: err}
	}
	log.D(ctx, "Ran %v over %v", p, m.name)
	return nil
}
